package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rubybot/internal/domain/welcome"
	"rubybot/internal/infrastructure/persistence/models"
)

// WelcomeSettingsRepository stores per-guild welcome/goodbye configuration.
// Writes go through a single atomic upsert; a patch only touches the columns
// it names, preserving everything else.
type WelcomeSettingsRepository struct {
	db *gorm.DB
}

func NewWelcomeSettingsRepository(db *gorm.DB) *WelcomeSettingsRepository {
	return &WelcomeSettingsRepository{db: db}
}

func (r *WelcomeSettingsRepository) Get(ctx context.Context, guildID string) (*welcome.Settings, error) {
	var model models.WelcomeSettingsModel
	err := r.db.WithContext(ctx).
		Where("guild_id = ?", guildID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get welcome settings: %w", err)
	}

	return &welcome.Settings{
		GuildID:          model.GuildID,
		Enabled:          model.Enabled,
		ChannelID:        model.ChannelID,
		Title:            model.Title,
		Description:      model.Description,
		Footer:           model.Footer,
		Color:            model.Color,
		Image:            model.Image,
		Thumbnail:        model.Thumbnail,
		AutoDeleteAfter:  model.AutoDeleteAfter,
		GoodbyeEnabled:   model.GoodbyeEnabled,
		GoodbyeChannelID: model.GoodbyeChannelID,
		GoodbyeMessage:   model.GoodbyeMessage,
	}, nil
}

func (r *WelcomeSettingsRepository) Upsert(ctx context.Context, guildID string, patch welcome.Patch) error {
	model := models.WelcomeSettingsModel{GuildID: guildID}
	assignments := map[string]interface{}{}

	if patch.Enabled != nil {
		model.Enabled = *patch.Enabled
		assignments["enabled"] = *patch.Enabled
	}
	if patch.ChannelID != nil {
		model.ChannelID = patch.ChannelID
		assignments["channel_id"] = *patch.ChannelID
	}
	if patch.Title != nil {
		model.Title = patch.Title
		assignments["title"] = *patch.Title
	}
	if patch.Description != nil {
		model.Description = patch.Description
		assignments["description"] = *patch.Description
	}
	if patch.Footer != nil {
		model.Footer = patch.Footer
		assignments["footer"] = *patch.Footer
	}
	if patch.Color != nil {
		model.Color = patch.Color
		assignments["color"] = *patch.Color
	}
	if patch.Image != nil {
		model.Image = patch.Image
		assignments["image"] = *patch.Image
	}
	if patch.Thumbnail != nil {
		model.Thumbnail = patch.Thumbnail
		assignments["thumbnail"] = *patch.Thumbnail
	}
	if patch.AutoDeleteAfter != nil {
		model.AutoDeleteAfter = patch.AutoDeleteAfter
		assignments["auto_delete_after"] = *patch.AutoDeleteAfter
	}
	if patch.GoodbyeEnabled != nil {
		model.GoodbyeEnabled = *patch.GoodbyeEnabled
		assignments["goodbye_enabled"] = *patch.GoodbyeEnabled
	}
	if patch.GoodbyeChannelID != nil {
		model.GoodbyeChannelID = patch.GoodbyeChannelID
		assignments["goodbye_channel_id"] = *patch.GoodbyeChannelID
	}
	if patch.GoodbyeMessage != nil {
		model.GoodbyeMessage = patch.GoodbyeMessage
		assignments["goodbye_message"] = *patch.GoodbyeMessage
	}

	// gorm does not append autoUpdateTime columns to a custom DoUpdates
	// list, so the conflict path has to refresh the timestamp itself.
	assignments["updated_at"] = time.Now().UnixMilli()

	conflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.Assignments(assignments),
	}
	if patch.IsZero() {
		// Zero-field patch: create the defaults row if missing, otherwise
		// leave the existing row untouched.
		conflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "guild_id"}},
			DoNothing: true,
		}
	}

	err := r.db.WithContext(ctx).
		Clauses(conflict).
		Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert welcome settings: %w", err)
	}
	return nil
}

func (r *WelcomeSettingsRepository) Delete(ctx context.Context, guildID string) error {
	err := r.db.WithContext(ctx).
		Where("guild_id = ?", guildID).
		Delete(&models.WelcomeSettingsModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete welcome settings: %w", err)
	}
	return nil
}
