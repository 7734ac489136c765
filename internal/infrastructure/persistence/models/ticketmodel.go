package models

// TicketModel is the persisted ticket ledger row.
//
// OpenMarker is 1 while the ticket is open and NULL once closed. The
// composite unique index on (guild_id, user_id, open_marker) therefore
// admits at most one open ticket per user per guild while allowing any
// number of closed rows, since NULLs never collide in a unique index.
type TicketModel struct {
	ID         uint    `gorm:"primaryKey"`
	GuildID    string  `gorm:"size:32;not null;index:idx_guild_user_open,unique;index"`
	UserID     string  `gorm:"size:32;not null;index:idx_guild_user_open,unique"`
	OpenMarker *uint8  `gorm:"index:idx_guild_user_open,unique"`
	ChannelID  string  `gorm:"size:32;not null;uniqueIndex"`
	Number     int     `gorm:"not null"`
	Category   string  `gorm:"size:100"`
	ClaimedBy  *string `gorm:"size:32"`
	Status     string  `gorm:"size:20;not null;default:open;index"`
	CreatedAt  int64   `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt  int64   `gorm:"autoUpdateTime:milli;not null"`
	ClosedAt   *int64
	ClosedBy   *string `gorm:"size:32"`

	// Note: no foreign keys; guild/user/channel IDs are platform snowflakes.
}

func (TicketModel) TableName() string {
	return "tickets"
}
