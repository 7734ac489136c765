package ticket

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a ticket.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

func (s Status) IsValid() bool {
	return s == StatusOpen || s == StatusClosed
}

func (s Status) String() string {
	return string(s)
}

// Ticket is a support ticket backed by a dedicated guild channel. A user may
// hold at most one open ticket per guild; the persistence layer enforces this
// with a unique index, the entity only guards local transitions.
type Ticket struct {
	id        uint
	guildID   string
	userID    string
	channelID string
	number    int
	category  string
	claimedBy *string
	status    Status
	createdAt time.Time
	closedAt  *time.Time
	closedBy  *string
}

func NewTicket(guildID, userID, channelID string, number int, category string) (*Ticket, error) {
	if guildID == "" {
		return nil, fmt.Errorf("guild ID is required")
	}
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if channelID == "" {
		return nil, fmt.Errorf("channel ID is required")
	}
	if number <= 0 {
		return nil, fmt.Errorf("ticket number must be positive")
	}

	return &Ticket{
		guildID:   guildID,
		userID:    userID,
		channelID: channelID,
		number:    number,
		category:  category,
		status:    StatusOpen,
		createdAt: time.Now().UTC(),
	}, nil
}

func ReconstructTicket(
	id uint,
	guildID, userID, channelID string,
	number int,
	category string,
	claimedBy *string,
	status Status,
	createdAt time.Time,
	closedAt *time.Time,
	closedBy *string,
) (*Ticket, error) {
	if id == 0 {
		return nil, fmt.Errorf("ticket ID cannot be zero")
	}
	if guildID == "" {
		return nil, fmt.Errorf("guild ID is required")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid status: %s", status)
	}

	return &Ticket{
		id:        id,
		guildID:   guildID,
		userID:    userID,
		channelID: channelID,
		number:    number,
		category:  category,
		claimedBy: claimedBy,
		status:    status,
		createdAt: createdAt,
		closedAt:  closedAt,
		closedBy:  closedBy,
	}, nil
}

func (t *Ticket) ID() uint             { return t.id }
func (t *Ticket) GuildID() string      { return t.guildID }
func (t *Ticket) UserID() string       { return t.userID }
func (t *Ticket) ChannelID() string    { return t.channelID }
func (t *Ticket) Number() int          { return t.number }
func (t *Ticket) Category() string     { return t.category }
func (t *Ticket) ClaimedBy() *string   { return t.claimedBy }
func (t *Ticket) Status() Status       { return t.status }
func (t *Ticket) CreatedAt() time.Time { return t.createdAt }
func (t *Ticket) ClosedAt() *time.Time { return t.closedAt }
func (t *Ticket) ClosedBy() *string    { return t.closedBy }

func (t *Ticket) IsOpen() bool {
	return t.status == StatusOpen
}

func (t *Ticket) IsClaimed() bool {
	return t.claimedBy != nil
}

func (t *Ticket) SetID(id uint) error {
	if t.id != 0 {
		return fmt.Errorf("ticket ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("ticket ID cannot be zero")
	}
	t.id = id
	return nil
}

// Claim assigns a single responder. A second claim is rejected, never
// overwritten.
func (t *Ticket) Claim(userID string) error {
	if userID == "" {
		return fmt.Errorf("claimer ID is required")
	}
	if !t.IsOpen() {
		return ErrTicketClosed
	}
	if t.claimedBy != nil {
		return ErrAlreadyClaimed
	}
	t.claimedBy = &userID
	return nil
}

// Close transitions the ticket to closed. Closing an already-closed ticket is
// a no-op.
func (t *Ticket) Close(closedBy string) error {
	if closedBy == "" {
		return fmt.Errorf("closer ID is required")
	}
	if !t.IsOpen() {
		return nil
	}
	now := time.Now().UTC()
	t.status = StatusClosed
	t.closedAt = &now
	t.closedBy = &closedBy
	return nil
}
