package usecases

import (
	"context"
	"errors"
	"fmt"

	"rubybot/internal/domain/ticket"
	"rubybot/internal/infrastructure/cache"
	apperrors "rubybot/internal/shared/errors"
	"rubybot/internal/shared/logger"
)

type ConfirmCloseCommand struct {
	ChannelID   string
	ConfirmedBy string
}

type ConfirmCloseResult struct {
	Number   int
	ClosedBy string
}

type ConfirmCloseUseCase struct {
	ticketRepo   ticket.Repository
	pendingStore cache.PendingCloseStore
	gateway      GuildGateway
	logger       logger.Interface
}

func NewConfirmCloseUseCase(
	ticketRepo ticket.Repository,
	pendingStore cache.PendingCloseStore,
	gateway GuildGateway,
	logger logger.Interface,
) *ConfirmCloseUseCase {
	return &ConfirmCloseUseCase{
		ticketRepo:   ticketRepo,
		pendingStore: pendingStore,
		gateway:      gateway,
		logger:       logger,
	}
}

// Execute completes the close flow. Consuming the pending request is atomic,
// so only one confirmation wins; an expired or missing request is rejected
// and the ticket stays open.
func (uc *ConfirmCloseUseCase) Execute(ctx context.Context, cmd ConfirmCloseCommand) (*ConfirmCloseResult, error) {
	if cmd.ChannelID == "" || cmd.ConfirmedBy == "" {
		return nil, apperrors.NewValidationError("channel ID and confirmer are required")
	}

	if _, err := uc.pendingStore.Take(ctx, cmd.ChannelID); err != nil {
		if errors.Is(err, cache.ErrNoPendingClose) {
			return nil, apperrors.NewConflictError("close confirmation expired, request the close again")
		}
		uc.logger.Errorw("failed to take pending close", "channel_id", cmd.ChannelID, "error", err)
		return nil, apperrors.NewUnavailableError("failed to check close confirmation")
	}

	t, err := uc.ticketRepo.FindOpenByChannel(ctx, cmd.ChannelID)
	if err != nil {
		if errors.Is(err, ticket.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("no open ticket for this channel")
		}
		uc.logger.Errorw("failed to find ticket", "channel_id", cmd.ChannelID, "error", err)
		return nil, apperrors.NewInternalError("failed to find ticket")
	}

	if err := uc.ticketRepo.Close(ctx, cmd.ChannelID, cmd.ConfirmedBy); err != nil {
		uc.logger.Errorw("failed to close ticket", "channel_id", cmd.ChannelID, "error", err)
		return nil, apperrors.NewInternalError("failed to close ticket")
	}

	closedName := fmt.Sprintf("closed-ticket-%d", t.Number())
	if err := uc.gateway.RenameChannel(ctx, cmd.ChannelID, closedName); err != nil {
		uc.logger.Warnw("failed to rename closed ticket channel", "channel_id", cmd.ChannelID, "error", err)
	}

	uc.logger.Infow("ticket closed", "channel_id", cmd.ChannelID, "number", t.Number(), "closed_by", cmd.ConfirmedBy)

	return &ConfirmCloseResult{
		Number:   t.Number(),
		ClosedBy: cmd.ConfirmedBy,
	}, nil
}
