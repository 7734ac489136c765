package welcome

import "context"

// Settings is the per-guild welcome/goodbye configuration row. A row is
// created on first configuration write and never deleted automatically;
// disabling just flips Enabled.
type Settings struct {
	GuildID          string
	Enabled          bool
	ChannelID        *string
	Title            *string
	Description      *string
	Footer           *string
	Color            *string
	Image            *string
	Thumbnail        *string
	AutoDeleteAfter  *int
	GoodbyeEnabled   bool
	GoodbyeChannelID *string
	GoodbyeMessage   *string
}

// Patch enumerates every writable settings field. Nil fields are preserved on
// upsert. Columns are a fixed set; caller input never reaches column names.
type Patch struct {
	Enabled          *bool
	ChannelID        *string
	Title            *string
	Description      *string
	Footer           *string
	Color            *string
	Image            *string
	Thumbnail        *string
	AutoDeleteAfter  *int
	GoodbyeEnabled   *bool
	GoodbyeChannelID *string
	GoodbyeMessage   *string
}

// IsZero reports whether the patch carries no fields. An empty patch upsert
// is a no-op update (or creates an all-defaults row).
func (p Patch) IsZero() bool {
	return p.Enabled == nil && p.ChannelID == nil && p.Title == nil &&
		p.Description == nil && p.Footer == nil && p.Color == nil &&
		p.Image == nil && p.Thumbnail == nil && p.AutoDeleteAfter == nil &&
		p.GoodbyeEnabled == nil && p.GoodbyeChannelID == nil && p.GoodbyeMessage == nil
}

// Repository stores per-guild welcome configuration. Upsert is a single
// atomic insert-or-update statement keyed by guild ID. Get returns
// (nil, nil) when no row exists.
type Repository interface {
	Get(ctx context.Context, guildID string) (*Settings, error)
	Upsert(ctx context.Context, guildID string, patch Patch) error
	Delete(ctx context.Context, guildID string) error
}
