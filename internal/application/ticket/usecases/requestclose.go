package usecases

import (
	"context"
	"errors"

	"rubybot/internal/domain/ticket"
	"rubybot/internal/infrastructure/cache"
	apperrors "rubybot/internal/shared/errors"
	"rubybot/internal/shared/logger"
)

type RequestCloseCommand struct {
	ChannelID   string
	RequestedBy string
}

type RequestCloseResult struct {
	Number int
}

type RequestCloseUseCase struct {
	ticketRepo   ticket.Repository
	pendingStore cache.PendingCloseStore
	logger       logger.Interface
}

func NewRequestCloseUseCase(
	ticketRepo ticket.Repository,
	pendingStore cache.PendingCloseStore,
	logger logger.Interface,
) *RequestCloseUseCase {
	return &RequestCloseUseCase{
		ticketRepo:   ticketRepo,
		pendingStore: pendingStore,
		logger:       logger,
	}
}

// Execute starts the close flow: the ticket stays open until someone confirms
// within the expiry window.
func (uc *RequestCloseUseCase) Execute(ctx context.Context, cmd RequestCloseCommand) (*RequestCloseResult, error) {
	if cmd.ChannelID == "" || cmd.RequestedBy == "" {
		return nil, apperrors.NewValidationError("channel ID and requester are required")
	}

	t, err := uc.ticketRepo.FindOpenByChannel(ctx, cmd.ChannelID)
	if err != nil {
		if errors.Is(err, ticket.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("no open ticket for this channel")
		}
		uc.logger.Errorw("failed to find ticket", "channel_id", cmd.ChannelID, "error", err)
		return nil, apperrors.NewInternalError("failed to find ticket")
	}

	if err := uc.pendingStore.Put(ctx, cmd.ChannelID, cmd.RequestedBy); err != nil {
		uc.logger.Errorw("failed to store pending close", "channel_id", cmd.ChannelID, "error", err)
		return nil, apperrors.NewUnavailableError("failed to start close confirmation")
	}

	uc.logger.Infow("close requested", "channel_id", cmd.ChannelID, "requested_by", cmd.RequestedBy)

	return &RequestCloseResult{Number: t.Number()}, nil
}
