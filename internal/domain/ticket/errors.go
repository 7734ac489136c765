package ticket

import "errors"

var (
	// ErrAlreadyClaimed is returned when claiming a ticket that already has
	// a claimer.
	ErrAlreadyClaimed = errors.New("ticket is already claimed")

	// ErrTicketClosed is returned for operations that require an open ticket.
	ErrTicketClosed = errors.New("ticket is closed")

	// ErrDuplicateOpenTicket is returned when the ledger's uniqueness
	// constraint rejects a second open ticket for the same guild/user pair.
	ErrDuplicateOpenTicket = errors.New("user already has an open ticket in this guild")

	// ErrNotFound is returned when no matching open ticket exists.
	ErrNotFound = errors.New("ticket not found")
)
