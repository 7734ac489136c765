package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rubybot/internal/domain/ticket"
	"rubybot/internal/infrastructure/persistence/models"
)

// TicketSettingsRepository stores per-guild ticket configuration. Upsert is a
// single INSERT ... ON CONFLICT statement; concurrent first writes for the
// same guild cannot both insert.
type TicketSettingsRepository struct {
	db *gorm.DB
}

func NewTicketSettingsRepository(db *gorm.DB) *TicketSettingsRepository {
	return &TicketSettingsRepository{db: db}
}

func (r *TicketSettingsRepository) Get(ctx context.Context, guildID string) (*ticket.Settings, error) {
	var model models.TicketSettingsModel
	err := r.db.WithContext(ctx).
		Where("guild_id = ?", guildID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ticket settings: %w", err)
	}

	return &ticket.Settings{
		GuildID:        model.GuildID,
		ManagerRoleID:  model.ManagerRoleID,
		LogChannelID:   model.LogChannelID,
		CategoryID:     model.CategoryID,
		PanelChannelID: model.PanelChannelID,
	}, nil
}

func (r *TicketSettingsRepository) Upsert(ctx context.Context, guildID string, patch ticket.SettingsPatch) error {
	model := models.TicketSettingsModel{
		GuildID:        guildID,
		ManagerRoleID:  patch.ManagerRoleID,
		LogChannelID:   patch.LogChannelID,
		CategoryID:     patch.CategoryID,
		PanelChannelID: patch.PanelChannelID,
	}

	// Only supplied fields are written on conflict; the rest keep their
	// stored values. Column names are fixed here, never caller-derived.
	assignments := map[string]interface{}{}
	if patch.ManagerRoleID != nil {
		assignments["manager_role_id"] = *patch.ManagerRoleID
	}
	if patch.LogChannelID != nil {
		assignments["log_channel_id"] = *patch.LogChannelID
	}
	if patch.CategoryID != nil {
		assignments["category_id"] = *patch.CategoryID
	}
	if patch.PanelChannelID != nil {
		assignments["panel_channel_id"] = *patch.PanelChannelID
	}

	updates := map[string]interface{}{"updated_at": time.Now().UnixMilli()}
	for column, value := range assignments {
		updates[column] = value
	}

	conflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.Assignments(updates),
	}
	if len(assignments) == 0 {
		conflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "guild_id"}},
			DoNothing: true,
		}
	}

	err := r.db.WithContext(ctx).
		Clauses(conflict).
		Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert ticket settings: %w", err)
	}
	return nil
}
