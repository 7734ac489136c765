package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rubybot/internal/domain/ticket"
	"rubybot/internal/infrastructure/cache"
	apperrors "rubybot/internal/shared/errors"
)

func TestClaimTicketUseCase_Execute(t *testing.T) {
	t.Run("successful claim", func(t *testing.T) {
		mockRepo := &mockTicketRepository{
			FindOpenByChannelFunc: func(ctx context.Context, channelID string) (*ticket.Ticket, error) {
				return openTicket(1, "guild-1", "user-1", channelID, 4), nil
			},
		}

		useCase := NewClaimTicketUseCase(mockRepo, &mockLogger{})
		result, err := useCase.Execute(context.Background(), ClaimTicketCommand{
			ChannelID: "channel-1",
			UserID:    "staff-1",
		})

		require.NoError(t, err)
		assert.Equal(t, 4, result.Number)
		assert.Equal(t, "staff-1", result.ClaimedBy)
	})

	t.Run("already claimed maps to conflict", func(t *testing.T) {
		mockRepo := &mockTicketRepository{
			ClaimFunc: func(ctx context.Context, channelID, userID string) error {
				return ticket.ErrAlreadyClaimed
			},
		}

		useCase := NewClaimTicketUseCase(mockRepo, &mockLogger{})
		_, err := useCase.Execute(context.Background(), ClaimTicketCommand{
			ChannelID: "channel-1",
			UserID:    "staff-2",
		})

		assert.True(t, apperrors.IsConflictError(err))
	})

	t.Run("no open ticket maps to not found", func(t *testing.T) {
		mockRepo := &mockTicketRepository{
			ClaimFunc: func(ctx context.Context, channelID, userID string) error {
				return ticket.ErrNotFound
			},
		}

		useCase := NewClaimTicketUseCase(mockRepo, &mockLogger{})
		_, err := useCase.Execute(context.Background(), ClaimTicketCommand{
			ChannelID: "channel-1",
			UserID:    "staff-1",
		})

		assert.True(t, apperrors.IsNotFoundError(err))
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		useCase := NewClaimTicketUseCase(&mockTicketRepository{}, &mockLogger{})
		_, err := useCase.Execute(context.Background(), ClaimTicketCommand{ChannelID: "channel-1"})
		assert.True(t, apperrors.IsValidationError(err))
	})
}

func TestRequestCloseUseCase_Execute(t *testing.T) {
	t.Run("stores the pending request", func(t *testing.T) {
		var putChannel, putRequester string
		mockRepo := &mockTicketRepository{
			FindOpenByChannelFunc: func(ctx context.Context, channelID string) (*ticket.Ticket, error) {
				return openTicket(1, "guild-1", "user-1", channelID, 7), nil
			},
		}
		mockStore := &mockPendingCloseStore{
			PutFunc: func(ctx context.Context, channelID, requestedBy string) error {
				putChannel, putRequester = channelID, requestedBy
				return nil
			},
		}

		useCase := NewRequestCloseUseCase(mockRepo, mockStore, &mockLogger{})
		result, err := useCase.Execute(context.Background(), RequestCloseCommand{
			ChannelID:   "channel-1",
			RequestedBy: "staff-1",
		})

		require.NoError(t, err)
		assert.Equal(t, 7, result.Number)
		assert.Equal(t, "channel-1", putChannel)
		assert.Equal(t, "staff-1", putRequester)
	})

	t.Run("no open ticket maps to not found", func(t *testing.T) {
		useCase := NewRequestCloseUseCase(&mockTicketRepository{}, &mockPendingCloseStore{}, &mockLogger{})
		_, err := useCase.Execute(context.Background(), RequestCloseCommand{
			ChannelID:   "channel-none",
			RequestedBy: "staff-1",
		})

		assert.True(t, apperrors.IsNotFoundError(err))
	})
}

func TestConfirmCloseUseCase_Execute(t *testing.T) {
	t.Run("closes the ticket and renames the channel", func(t *testing.T) {
		var closedBy, renamedTo string
		mockRepo := &mockTicketRepository{
			FindOpenByChannelFunc: func(ctx context.Context, channelID string) (*ticket.Ticket, error) {
				return openTicket(1, "guild-1", "user-1", channelID, 7), nil
			},
			CloseFunc: func(ctx context.Context, channelID, by string) error {
				closedBy = by
				return nil
			},
		}
		mockStore := &mockPendingCloseStore{
			TakeFunc: func(ctx context.Context, channelID string) (string, error) {
				return "staff-1", nil
			},
		}
		mockGateway := &mockGuildGateway{
			RenameChannelFunc: func(ctx context.Context, channelID, name string) error {
				renamedTo = name
				return nil
			},
		}

		useCase := NewConfirmCloseUseCase(mockRepo, mockStore, mockGateway, &mockLogger{})
		result, err := useCase.Execute(context.Background(), ConfirmCloseCommand{
			ChannelID:   "channel-1",
			ConfirmedBy: "staff-2",
		})

		require.NoError(t, err)
		assert.Equal(t, 7, result.Number)
		assert.Equal(t, "staff-2", result.ClosedBy)
		assert.Equal(t, "staff-2", closedBy, "the confirmer is recorded, not the requester")
		assert.Equal(t, "closed-ticket-7", renamedTo)
	})

	t.Run("expired confirmation maps to conflict and leaves the ticket open", func(t *testing.T) {
		closeCalled := false
		mockRepo := &mockTicketRepository{
			CloseFunc: func(ctx context.Context, channelID, by string) error {
				closeCalled = true
				return nil
			},
		}
		mockStore := &mockPendingCloseStore{
			TakeFunc: func(ctx context.Context, channelID string) (string, error) {
				return "", cache.ErrNoPendingClose
			},
		}

		useCase := NewConfirmCloseUseCase(mockRepo, mockStore, &mockGuildGateway{}, &mockLogger{})
		_, err := useCase.Execute(context.Background(), ConfirmCloseCommand{
			ChannelID:   "channel-1",
			ConfirmedBy: "staff-1",
		})

		assert.True(t, apperrors.IsConflictError(err))
		assert.False(t, closeCalled)
	})

	t.Run("rename failure does not fail the close", func(t *testing.T) {
		mockRepo := &mockTicketRepository{
			FindOpenByChannelFunc: func(ctx context.Context, channelID string) (*ticket.Ticket, error) {
				return openTicket(1, "guild-1", "user-1", channelID, 7), nil
			},
		}
		mockStore := &mockPendingCloseStore{
			TakeFunc: func(ctx context.Context, channelID string) (string, error) {
				return "staff-1", nil
			},
		}
		mockGateway := &mockGuildGateway{
			RenameChannelFunc: func(ctx context.Context, channelID, name string) error {
				return assert.AnError
			},
		}

		useCase := NewConfirmCloseUseCase(mockRepo, mockStore, mockGateway, &mockLogger{})
		result, err := useCase.Execute(context.Background(), ConfirmCloseCommand{
			ChannelID:   "channel-1",
			ConfirmedBy: "staff-1",
		})

		require.NoError(t, err)
		assert.Equal(t, 7, result.Number)
	})
}

func TestCancelCloseUseCase_Execute(t *testing.T) {
	t.Run("cancels the pending request", func(t *testing.T) {
		var cancelledChannel string
		mockStore := &mockPendingCloseStore{
			CancelFunc: func(ctx context.Context, channelID string) error {
				cancelledChannel = channelID
				return nil
			},
		}

		useCase := NewCancelCloseUseCase(mockStore, &mockLogger{})
		err := useCase.Execute(context.Background(), CancelCloseCommand{ChannelID: "channel-1"})

		require.NoError(t, err)
		assert.Equal(t, "channel-1", cancelledChannel)
	})

	t.Run("store failure is swallowed", func(t *testing.T) {
		mockStore := &mockPendingCloseStore{
			CancelFunc: func(ctx context.Context, channelID string) error {
				return assert.AnError
			},
		}

		useCase := NewCancelCloseUseCase(mockStore, &mockLogger{})
		assert.NoError(t, useCase.Execute(context.Background(), CancelCloseCommand{ChannelID: "channel-1"}))
	})
}
