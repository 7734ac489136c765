package models

// WelcomeSettingsModel is the one-row-per-guild welcome/goodbye configuration.
type WelcomeSettingsModel struct {
	GuildID          string  `gorm:"primaryKey;size:32"`
	Enabled          bool    `gorm:"not null;default:false"`
	ChannelID        *string `gorm:"size:32"`
	Title            *string `gorm:"size:256"`
	Description      *string `gorm:"type:text"`
	Footer           *string `gorm:"size:256"`
	Color            *string `gorm:"size:32"`
	Image            *string `gorm:"size:512"`
	Thumbnail        *string `gorm:"size:512"`
	AutoDeleteAfter  *int
	GoodbyeEnabled   bool    `gorm:"not null;default:false"`
	GoodbyeChannelID *string `gorm:"size:32"`
	GoodbyeMessage   *string `gorm:"type:text"`
	UpdatedAt        int64   `gorm:"autoUpdateTime:milli;not null"`
}

func (WelcomeSettingsModel) TableName() string {
	return "welcome_settings"
}
