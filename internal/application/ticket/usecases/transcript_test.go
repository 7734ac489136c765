package usecases

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rubybot/internal/domain/ticket"
	apperrors "rubybot/internal/shared/errors"
)

func TestTranscriptUseCase_Execute(t *testing.T) {
	t.Run("renders history oldest first", func(t *testing.T) {
		mockRepo := &mockTicketRepository{
			FindByChannelFunc: func(ctx context.Context, channelID string) (*ticket.Ticket, error) {
				return openTicket(1, "guild-1", "user-1", channelID, 12), nil
			},
		}
		mockGateway := &mockGuildGateway{
			ChannelHistoryFunc: func(ctx context.Context, channelID string, limit int) ([]ChannelMessage, error) {
				assert.Equal(t, transcriptMessageLimit, limit)
				return []ChannelMessage{
					{AuthorName: "alice", Content: "hello", Timestamp: "2026-08-01T10:00:00Z"},
					{AuthorName: "bob", Content: "hi there", Timestamp: "2026-08-01T10:01:00Z"},
				}, nil
			},
		}

		useCase := NewTranscriptUseCase(mockRepo, mockGateway, &mockLogger{})
		result, err := useCase.Execute(context.Background(), TranscriptCommand{ChannelID: "channel-1"})

		require.NoError(t, err)
		assert.Equal(t, 12, result.Number)
		assert.Equal(t, 2, result.MessageCount)
		assert.True(t, strings.HasPrefix(result.FileName, "transcript-ticket-12-"))
		assert.True(t, strings.HasSuffix(result.FileName, ".txt"))
		assert.Contains(t, result.Content, "Transcript of ticket #12")
		assert.Less(t,
			strings.Index(result.Content, "alice: hello"),
			strings.Index(result.Content, "bob: hi there"),
		)
	})

	t.Run("works on a closed ticket", func(t *testing.T) {
		mockRepo := &mockTicketRepository{
			FindByChannelFunc: func(ctx context.Context, channelID string) (*ticket.Ticket, error) {
				closedAt := time.Now().UTC()
				closedBy := "staff-1"
				return ticket.ReconstructTicket(1, "guild-1", "user-1", channelID, 3, "general",
					nil, ticket.StatusClosed, time.Now().Add(-time.Hour), &closedAt, &closedBy)
			},
		}

		useCase := NewTranscriptUseCase(mockRepo, &mockGuildGateway{}, &mockLogger{})
		result, err := useCase.Execute(context.Background(), TranscriptCommand{ChannelID: "channel-1"})

		require.NoError(t, err)
		assert.Equal(t, 3, result.Number)
	})

	t.Run("non-ticket channel maps to not found", func(t *testing.T) {
		useCase := NewTranscriptUseCase(&mockTicketRepository{}, &mockGuildGateway{}, &mockLogger{})
		_, err := useCase.Execute(context.Background(), TranscriptCommand{ChannelID: "channel-random"})
		assert.True(t, apperrors.IsNotFoundError(err))
	})
}

func TestDeleteChannelUseCase_Execute(t *testing.T) {
	t.Run("deletes after the grace delay", func(t *testing.T) {
		var deletedChannel string
		mockRepo := &mockTicketRepository{
			FindByChannelFunc: func(ctx context.Context, channelID string) (*ticket.Ticket, error) {
				return openTicket(1, "guild-1", "user-1", channelID, 2), nil
			},
		}
		mockGateway := &mockGuildGateway{
			DeleteChannelFunc: func(ctx context.Context, channelID string) error {
				deletedChannel = channelID
				return nil
			},
		}

		useCase := NewDeleteChannelUseCase(mockRepo, mockGateway, &mockLogger{})
		useCase.graceDelay = time.Millisecond

		result, err := useCase.Execute(context.Background(), DeleteChannelCommand{ChannelID: "channel-1"})

		require.NoError(t, err)
		assert.Equal(t, 2, result.Number)
		assert.Equal(t, "channel-1", deletedChannel)
	})

	t.Run("cancelled context aborts before deleting", func(t *testing.T) {
		deleteCalled := false
		mockRepo := &mockTicketRepository{
			FindByChannelFunc: func(ctx context.Context, channelID string) (*ticket.Ticket, error) {
				return openTicket(1, "guild-1", "user-1", channelID, 2), nil
			},
		}
		mockGateway := &mockGuildGateway{
			DeleteChannelFunc: func(ctx context.Context, channelID string) error {
				deleteCalled = true
				return nil
			},
		}

		useCase := NewDeleteChannelUseCase(mockRepo, mockGateway, &mockLogger{})
		useCase.graceDelay = time.Minute

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := useCase.Execute(ctx, DeleteChannelCommand{ChannelID: "channel-1"})

		assert.Error(t, err)
		assert.False(t, deleteCalled)
	})

	t.Run("non-ticket channel maps to not found", func(t *testing.T) {
		useCase := NewDeleteChannelUseCase(&mockTicketRepository{}, &mockGuildGateway{}, &mockLogger{})
		useCase.graceDelay = time.Millisecond

		_, err := useCase.Execute(context.Background(), DeleteChannelCommand{ChannelID: "channel-random"})
		assert.True(t, apperrors.IsNotFoundError(err))
	})
}

func TestTicketStatsUseCase_Execute(t *testing.T) {
	mockRepo := &mockTicketRepository{
		StatsFunc: func(ctx context.Context, guildID string) (*ticket.Stats, error) {
			return &ticket.Stats{Total: 10, Open: 3, Closed: 7}, nil
		},
	}

	useCase := NewTicketStatsUseCase(mockRepo, &mockLogger{})
	result, err := useCase.Execute(context.Background(), TicketStatsQuery{GuildID: "guild-1"})

	require.NoError(t, err)
	assert.Equal(t, int64(10), result.Total)
	assert.Equal(t, int64(3), result.Open)
	assert.Equal(t, int64(7), result.Closed)

	_, err = useCase.Execute(context.Background(), TicketStatsQuery{})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestUpdateSettingsUseCase_Execute(t *testing.T) {
	var upsertedGuild string
	var upsertedPatch ticket.SettingsPatch
	mockSettings := &mockSettingsRepository{
		UpsertFunc: func(ctx context.Context, guildID string, patch ticket.SettingsPatch) error {
			upsertedGuild = guildID
			upsertedPatch = patch
			return nil
		},
	}

	roleID := "role-1"
	useCase := NewUpdateSettingsUseCase(mockSettings, &mockLogger{})
	err := useCase.Execute(context.Background(), UpdateSettingsCommand{
		GuildID: "guild-1",
		Patch:   ticket.SettingsPatch{ManagerRoleID: &roleID},
	})

	require.NoError(t, err)
	assert.Equal(t, "guild-1", upsertedGuild)
	require.NotNil(t, upsertedPatch.ManagerRoleID)
	assert.Equal(t, "role-1", *upsertedPatch.ManagerRoleID)
	assert.Nil(t, upsertedPatch.LogChannelID)

	err = useCase.Execute(context.Background(), UpdateSettingsCommand{})
	assert.True(t, apperrors.IsValidationError(err))
}
