package usecases

import (
	"context"

	"rubybot/internal/infrastructure/cache"
	apperrors "rubybot/internal/shared/errors"
	"rubybot/internal/shared/logger"
)

type CancelCloseCommand struct {
	ChannelID string
}

type CancelCloseUseCase struct {
	pendingStore cache.PendingCloseStore
	logger       logger.Interface
}

func NewCancelCloseUseCase(pendingStore cache.PendingCloseStore, logger logger.Interface) *CancelCloseUseCase {
	return &CancelCloseUseCase{
		pendingStore: pendingStore,
		logger:       logger,
	}
}

// Execute withdraws a pending close request. Cancelling when nothing is
// pending is a no-op.
func (uc *CancelCloseUseCase) Execute(ctx context.Context, cmd CancelCloseCommand) error {
	if cmd.ChannelID == "" {
		return apperrors.NewValidationError("channel ID is required")
	}
	if err := uc.pendingStore.Cancel(ctx, cmd.ChannelID); err != nil {
		uc.logger.Warnw("failed to cancel pending close", "channel_id", cmd.ChannelID, "error", err)
	}
	return nil
}
