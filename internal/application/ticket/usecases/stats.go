package usecases

import (
	"context"

	"rubybot/internal/domain/ticket"
	apperrors "rubybot/internal/shared/errors"
	"rubybot/internal/shared/logger"
)

type TicketStatsQuery struct {
	GuildID string
}

type TicketStatsResult struct {
	Total  int64
	Open   int64
	Closed int64
}

type TicketStatsUseCase struct {
	ticketRepo ticket.Repository
	logger     logger.Interface
}

func NewTicketStatsUseCase(ticketRepo ticket.Repository, logger logger.Interface) *TicketStatsUseCase {
	return &TicketStatsUseCase{
		ticketRepo: ticketRepo,
		logger:     logger,
	}
}

func (uc *TicketStatsUseCase) Execute(ctx context.Context, query TicketStatsQuery) (*TicketStatsResult, error) {
	if query.GuildID == "" {
		return nil, apperrors.NewValidationError("guild ID is required")
	}

	stats, err := uc.ticketRepo.Stats(ctx, query.GuildID)
	if err != nil {
		uc.logger.Errorw("failed to load ticket stats", "guild_id", query.GuildID, "error", err)
		return nil, apperrors.NewInternalError("failed to load ticket stats")
	}

	return &TicketStatsResult{
		Total:  stats.Total,
		Open:   stats.Open,
		Closed: stats.Closed,
	}, nil
}
