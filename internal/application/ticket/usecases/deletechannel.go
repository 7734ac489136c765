package usecases

import (
	"context"
	"errors"
	"time"

	"rubybot/internal/domain/ticket"
	apperrors "rubybot/internal/shared/errors"
	"rubybot/internal/shared/logger"
)

// deleteGraceDelay gives people a moment to read the teardown notice before
// the channel disappears.
const deleteGraceDelay = 5 * time.Second

type DeleteChannelCommand struct {
	ChannelID string
}

type DeleteChannelResult struct {
	Number int
}

type DeleteChannelUseCase struct {
	ticketRepo ticket.Repository
	gateway    GuildGateway
	logger     logger.Interface
	graceDelay time.Duration
}

func NewDeleteChannelUseCase(
	ticketRepo ticket.Repository,
	gateway GuildGateway,
	logger logger.Interface,
) *DeleteChannelUseCase {
	return &DeleteChannelUseCase{
		ticketRepo: ticketRepo,
		gateway:    gateway,
		logger:     logger,
		graceDelay: deleteGraceDelay,
	}
}

// Execute tears down a ticket channel after a short grace delay. The ledger
// row is kept; only the channel goes away.
func (uc *DeleteChannelUseCase) Execute(ctx context.Context, cmd DeleteChannelCommand) (*DeleteChannelResult, error) {
	if cmd.ChannelID == "" {
		return nil, apperrors.NewValidationError("channel ID is required")
	}

	t, err := uc.ticketRepo.FindByChannel(ctx, cmd.ChannelID)
	if err != nil {
		if errors.Is(err, ticket.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("this channel is not a ticket")
		}
		uc.logger.Errorw("failed to find ticket", "channel_id", cmd.ChannelID, "error", err)
		return nil, apperrors.NewInternalError("failed to find ticket")
	}

	select {
	case <-ctx.Done():
		return nil, apperrors.NewInternalError("delete cancelled")
	case <-time.After(uc.graceDelay):
	}

	if err := uc.gateway.DeleteChannel(ctx, cmd.ChannelID); err != nil {
		uc.logger.Errorw("failed to delete ticket channel", "channel_id", cmd.ChannelID, "error", err)
		return nil, apperrors.NewInternalError("failed to delete ticket channel")
	}

	uc.logger.Infow("ticket channel deleted", "channel_id", cmd.ChannelID, "number", t.Number())

	return &DeleteChannelResult{Number: t.Number()}, nil
}
