package ticket

import "context"

// Stats aggregates per-guild ticket counts. Open + Closed == Total holds for
// any sequence of creates and closes.
type Stats struct {
	Total  int64
	Open   int64
	Closed int64
}

// Repository is the persisted ticket ledger. It is the sole writer of the
// tickets table. Save relies on unique indexes (one open ticket per
// guild/user, channel never reused) and surfaces violations as
// ErrDuplicateOpenTicket; Claim and Close are atomic conditional updates.
type Repository interface {
	Save(ctx context.Context, t *Ticket) error
	AssignChannel(ctx context.Context, id uint, channelID string) error
	FindByChannel(ctx context.Context, channelID string) (*Ticket, error)
	FindOpenByChannel(ctx context.Context, channelID string) (*Ticket, error)
	FindOpenByUser(ctx context.Context, guildID, userID string) (*Ticket, error)
	ListOpenByGuild(ctx context.Context, guildID string) ([]*Ticket, error)
	CountByGuild(ctx context.Context, guildID string) (int64, error)
	Claim(ctx context.Context, channelID, userID string) error
	Close(ctx context.Context, channelID, closedBy string) error
	Delete(ctx context.Context, id uint) error
	Stats(ctx context.Context, guildID string) (*Stats, error)
}
