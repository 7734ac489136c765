package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"rubybot/internal/domain/ticket"
	apperrors "rubybot/internal/shared/errors"
	"rubybot/internal/shared/logger"
)

// transcriptMessageLimit bounds how much history a transcript fetches.
const transcriptMessageLimit = 500

type TranscriptCommand struct {
	ChannelID string
}

type TranscriptResult struct {
	Number       int
	FileName     string
	Content      string
	MessageCount int
}

type TranscriptUseCase struct {
	ticketRepo ticket.Repository
	gateway    GuildGateway
	logger     logger.Interface
}

func NewTranscriptUseCase(
	ticketRepo ticket.Repository,
	gateway GuildGateway,
	logger logger.Interface,
) *TranscriptUseCase {
	return &TranscriptUseCase{
		ticketRepo: ticketRepo,
		gateway:    gateway,
		logger:     logger,
	}
}

// Execute exports the channel history as a flat text transcript, oldest
// message first. Works on closed tickets too; the channel just has to still
// exist.
func (uc *TranscriptUseCase) Execute(ctx context.Context, cmd TranscriptCommand) (*TranscriptResult, error) {
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

	messages, err := uc.gateway.ChannelHistory(ctx, cmd.ChannelID, transcriptMessageLimit)
	if err != nil {
		uc.logger.Errorw("failed to fetch channel history", "channel_id", cmd.ChannelID, "error", err)
		return nil, apperrors.NewInternalError("failed to fetch channel history")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Transcript of ticket #%d\n\n", t.Number())
	for _, m := range messages {
		fmt.Fprintf(&b, "[%s] %s: %s\n", m.Timestamp, m.AuthorName, m.Content)
	}

	fileName := fmt.Sprintf("transcript-ticket-%d-%s.txt", t.Number(), uuid.NewString()[:8])

	uc.logger.Infow("transcript generated",
		"channel_id", cmd.ChannelID,
		"number", t.Number(),
		"messages", len(messages),
	)

	return &TranscriptResult{
		Number:       t.Number(),
		FileName:     fileName,
		Content:      b.String(),
		MessageCount: len(messages),
	}, nil
}
