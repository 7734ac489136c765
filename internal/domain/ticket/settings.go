package ticket

import "context"

// Settings is the per-guild ticket configuration row.
type Settings struct {
	GuildID        string
	ManagerRoleID  *string
	LogChannelID   *string
	CategoryID     *string
	PanelChannelID *string
}

// SettingsPatch enumerates the writable settings fields. Nil fields are left
// untouched by Upsert; the column set is fixed, never derived from caller
// input.
type SettingsPatch struct {
	ManagerRoleID  *string
	LogChannelID   *string
	CategoryID     *string
	PanelChannelID *string
}

// SettingsRepository stores per-guild ticket configuration with atomic
// insert-or-update semantics keyed by guild ID.
type SettingsRepository interface {
	Get(ctx context.Context, guildID string) (*Settings, error)
	Upsert(ctx context.Context, guildID string, patch SettingsPatch) error
}
