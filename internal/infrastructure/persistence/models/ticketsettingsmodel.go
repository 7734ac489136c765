package models

// TicketSettingsModel is the one-row-per-guild ticket configuration.
type TicketSettingsModel struct {
	GuildID        string  `gorm:"primaryKey;size:32"`
	ManagerRoleID  *string `gorm:"size:32"`
	LogChannelID   *string `gorm:"size:32"`
	CategoryID     *string `gorm:"size:32"`
	PanelChannelID *string `gorm:"size:32"`
	UpdatedAt      int64   `gorm:"autoUpdateTime:milli;not null"`
}

func (TicketSettingsModel) TableName() string {
	return "ticket_settings"
}
