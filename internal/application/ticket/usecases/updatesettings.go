package usecases

import (
	"context"

	"rubybot/internal/domain/ticket"
	apperrors "rubybot/internal/shared/errors"
	"rubybot/internal/shared/logger"
)

type UpdateSettingsCommand struct {
	GuildID string
	Patch   ticket.SettingsPatch
}

// UpdateSettingsUseCase persists a partial ticket settings change. Only the
// fields set on the patch are written; everything else keeps its stored
// value.
type UpdateSettingsUseCase struct {
	settingsRepo ticket.SettingsRepository
	logger       logger.Interface
}

func NewUpdateSettingsUseCase(settingsRepo ticket.SettingsRepository, logger logger.Interface) *UpdateSettingsUseCase {
	return &UpdateSettingsUseCase{
		settingsRepo: settingsRepo,
		logger:       logger,
	}
}

func (uc *UpdateSettingsUseCase) Execute(ctx context.Context, cmd UpdateSettingsCommand) error {
	if cmd.GuildID == "" {
		return apperrors.NewValidationError("guild ID is required")
	}

	if err := uc.settingsRepo.Upsert(ctx, cmd.GuildID, cmd.Patch); err != nil {
		uc.logger.Errorw("failed to update ticket settings", "guild_id", cmd.GuildID, "error", err)
		return apperrors.NewInternalError("failed to update ticket settings")
	}

	uc.logger.Infow("ticket settings updated", "guild_id", cmd.GuildID)
	return nil
}
