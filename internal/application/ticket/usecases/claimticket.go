package usecases

import (
	"context"
	"errors"

	"rubybot/internal/domain/ticket"
	apperrors "rubybot/internal/shared/errors"
	"rubybot/internal/shared/logger"
)

type ClaimTicketCommand struct {
	ChannelID string
	UserID    string
}

type ClaimTicketResult struct {
	Number    int
	ClaimedBy string
}

type ClaimTicketUseCase struct {
	ticketRepo ticket.Repository
	logger     logger.Interface
}

func NewClaimTicketUseCase(ticketRepo ticket.Repository, logger logger.Interface) *ClaimTicketUseCase {
	return &ClaimTicketUseCase{
		ticketRepo: ticketRepo,
		logger:     logger,
	}
}

// Execute claims the ticket for the handling staff member. The first claim
// wins; later claims are rejected without overwriting the claimer.
func (uc *ClaimTicketUseCase) Execute(ctx context.Context, cmd ClaimTicketCommand) (*ClaimTicketResult, error) {
	if cmd.ChannelID == "" || cmd.UserID == "" {
		return nil, apperrors.NewValidationError("channel ID and user ID are required")
	}

	if err := uc.ticketRepo.Claim(ctx, cmd.ChannelID, cmd.UserID); err != nil {
		switch {
		case errors.Is(err, ticket.ErrAlreadyClaimed):
			return nil, apperrors.NewConflictError("this ticket is already claimed")
		case errors.Is(err, ticket.ErrNotFound):
			return nil, apperrors.NewNotFoundError("no open ticket for this channel")
		default:
			uc.logger.Errorw("failed to claim ticket", "channel_id", cmd.ChannelID, "error", err)
			return nil, apperrors.NewInternalError("failed to claim ticket")
		}
	}

	t, err := uc.ticketRepo.FindOpenByChannel(ctx, cmd.ChannelID)
	if err != nil {
		uc.logger.Errorw("failed to load claimed ticket", "channel_id", cmd.ChannelID, "error", err)
		return nil, apperrors.NewInternalError("failed to load claimed ticket")
	}

	uc.logger.Infow("ticket claimed", "channel_id", cmd.ChannelID, "claimed_by", cmd.UserID)

	return &ClaimTicketResult{
		Number:    t.Number(),
		ClaimedBy: cmd.UserID,
	}, nil
}
