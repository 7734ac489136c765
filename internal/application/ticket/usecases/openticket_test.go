package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rubybot/internal/domain/ticket"
	apperrors "rubybot/internal/shared/errors"
)

func TestOpenTicketUseCase_Execute_Success(t *testing.T) {
	var savedChannelID string
	var assignedChannelID string

	mockRepo := &mockTicketRepository{
		SaveFunc: func(ctx context.Context, tk *ticket.Ticket) error {
			savedChannelID = tk.ChannelID()
			return tk.SetID(1)
		},
		CountByGuildFunc: func(ctx context.Context, guildID string) (int64, error) {
			return 4, nil
		},
		AssignChannelFunc: func(ctx context.Context, id uint, channelID string) error {
			assignedChannelID = channelID
			return nil
		},
	}
	var createdName string
	mockGateway := &mockGuildGateway{
		CreateTicketChannelFunc: func(ctx context.Context, guildID, categoryID, name, openerID, managerRoleID string) (string, error) {
			createdName = name
			return "channel-new", nil
		},
	}

	useCase := NewOpenTicketUseCase(mockRepo, &mockSettingsRepository{}, mockGateway, &mockLogger{})
	result, err := useCase.Execute(context.Background(), OpenTicketCommand{
		GuildID: "guild-1",
		UserID:  "user-1",
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, uint(1), result.TicketID)
	assert.Equal(t, 5, result.Number, "number follows the guild ticket count")
	assert.Equal(t, "channel-new", result.ChannelID)
	assert.False(t, result.Existing)
	assert.Equal(t, "ticket-5", createdName)
	assert.Equal(t, "channel-new", assignedChannelID)
	assert.True(t, strings.HasPrefix(savedChannelID, "pending-"),
		"row must be inserted before the channel exists")
}

func TestOpenTicketUseCase_Execute_ValidationErrors(t *testing.T) {
	useCase := NewOpenTicketUseCase(&mockTicketRepository{}, &mockSettingsRepository{}, &mockGuildGateway{}, &mockLogger{})

	tests := []struct {
		name string
		cmd  OpenTicketCommand
	}{
		{"missing guild ID", OpenTicketCommand{UserID: "user-1"}},
		{"missing user ID", OpenTicketCommand{GuildID: "guild-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := useCase.Execute(context.Background(), tt.cmd)
			assert.True(t, apperrors.IsValidationError(err))
		})
	}
}

func TestOpenTicketUseCase_Execute_ExistingTicketReturned(t *testing.T) {
	existing := openTicket(7, "guild-1", "user-1", "channel-7", 3)
	saveCalled := false

	mockRepo := &mockTicketRepository{
		FindOpenByUserFunc: func(ctx context.Context, guildID, userID string) (*ticket.Ticket, error) {
			return existing, nil
		},
		SaveFunc: func(ctx context.Context, tk *ticket.Ticket) error {
			saveCalled = true
			return nil
		},
	}

	useCase := NewOpenTicketUseCase(mockRepo, &mockSettingsRepository{}, &mockGuildGateway{}, &mockLogger{})
	result, err := useCase.Execute(context.Background(), OpenTicketCommand{
		GuildID: "guild-1",
		UserID:  "user-1",
	})

	require.NoError(t, err)
	assert.True(t, result.Existing)
	assert.Equal(t, uint(7), result.TicketID)
	assert.Equal(t, "channel-7", result.ChannelID)
	assert.False(t, saveCalled, "no second row for a user with an open ticket")
}

func TestOpenTicketUseCase_Execute_DuplicateRaceReturnsWinner(t *testing.T) {
	winner := openTicket(9, "guild-1", "user-1", "channel-9", 2)
	lookups := 0

	mockRepo := &mockTicketRepository{
		FindOpenByUserFunc: func(ctx context.Context, guildID, userID string) (*ticket.Ticket, error) {
			lookups++
			if lookups == 1 {
				// Nothing open when we first check; the race happens on insert.
				return nil, ticket.ErrNotFound
			}
			return winner, nil
		},
		SaveFunc: func(ctx context.Context, tk *ticket.Ticket) error {
			return fmt.Errorf("%w: UNIQUE constraint failed", ticket.ErrDuplicateOpenTicket)
		},
	}

	useCase := NewOpenTicketUseCase(mockRepo, &mockSettingsRepository{}, &mockGuildGateway{}, &mockLogger{})
	result, err := useCase.Execute(context.Background(), OpenTicketCommand{
		GuildID: "guild-1",
		UserID:  "user-1",
	})

	require.NoError(t, err)
	assert.True(t, result.Existing)
	assert.Equal(t, uint(9), result.TicketID)
	assert.Equal(t, "channel-9", result.ChannelID)
}

func TestOpenTicketUseCase_Execute_RollbackOnChannelFailure(t *testing.T) {
	var deletedID uint

	mockRepo := &mockTicketRepository{
		SaveFunc: func(ctx context.Context, tk *ticket.Ticket) error {
			return tk.SetID(11)
		},
		DeleteFunc: func(ctx context.Context, id uint) error {
			deletedID = id
			return nil
		},
	}
	mockGateway := &mockGuildGateway{
		CreateTicketChannelFunc: func(ctx context.Context, guildID, categoryID, name, openerID, managerRoleID string) (string, error) {
			return "", errors.New("missing permission")
		},
	}

	useCase := NewOpenTicketUseCase(mockRepo, &mockSettingsRepository{}, mockGateway, &mockLogger{})
	_, err := useCase.Execute(context.Background(), OpenTicketCommand{
		GuildID: "guild-1",
		UserID:  "user-1",
	})

	require.Error(t, err)
	assert.Equal(t, uint(11), deletedID, "orphaned row must be rolled back")
}

func TestOpenTicketUseCase_Execute_InfrastructureCreatedOnFirstUse(t *testing.T) {
	var cachedPatch ticket.SettingsPatch
	mockSettings := &mockSettingsRepository{
		UpsertFunc: func(ctx context.Context, guildID string, patch ticket.SettingsPatch) error {
			cachedPatch = patch
			return nil
		},
	}
	mockGateway := &mockGuildGateway{
		FindCategoryFunc: func(ctx context.Context, guildID, name string) (string, error) {
			return "", nil
		},
		CreateCategoryFunc: func(ctx context.Context, guildID, name string) (string, error) {
			return "category-created", nil
		},
		FindRoleFunc: func(ctx context.Context, guildID, name string) (string, error) {
			return "", nil
		},
		CreateRoleFunc: func(ctx context.Context, guildID, name string) (string, error) {
			return "role-created", nil
		},
	}
	mockRepo := &mockTicketRepository{
		SaveFunc: func(ctx context.Context, tk *ticket.Ticket) error {
			return tk.SetID(1)
		},
	}

	useCase := NewOpenTicketUseCase(mockRepo, mockSettings, mockGateway, &mockLogger{})
	_, err := useCase.Execute(context.Background(), OpenTicketCommand{
		GuildID: "guild-1",
		UserID:  "user-1",
	})

	require.NoError(t, err)
	require.NotNil(t, cachedPatch.CategoryID)
	assert.Equal(t, "category-created", *cachedPatch.CategoryID)
	require.NotNil(t, cachedPatch.ManagerRoleID)
	assert.Equal(t, "role-created", *cachedPatch.ManagerRoleID)
}
