package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"rubybot/internal/domain/ticket"
	apperrors "rubybot/internal/shared/errors"
	"rubybot/internal/shared/logger"
)

const (
	ticketCategoryName = "Tickets"
	managerRoleName    = "Support Team"
	defaultCategory    = "general"
)

type OpenTicketCommand struct {
	GuildID  string
	UserID   string
	Category string
}

type OpenTicketResult struct {
	TicketID  uint
	Number    int
	ChannelID string
	Existing  bool
}

type OpenTicketUseCase struct {
	ticketRepo   ticket.Repository
	settingsRepo ticket.SettingsRepository
	gateway      GuildGateway
	logger       logger.Interface
}

func NewOpenTicketUseCase(
	ticketRepo ticket.Repository,
	settingsRepo ticket.SettingsRepository,
	gateway GuildGateway,
	logger logger.Interface,
) *OpenTicketUseCase {
	return &OpenTicketUseCase{
		ticketRepo:   ticketRepo,
		settingsRepo: settingsRepo,
		gateway:      gateway,
		logger:       logger,
	}
}

// Execute opens a ticket for the user. The ledger row is inserted with a
// placeholder channel reference before the channel is provisioned, so the
// unique index arbitrates concurrent opens: the loser gets the winner's
// ticket back instead of a second row. A failed channel provision rolls the
// row back.
func (uc *OpenTicketUseCase) Execute(ctx context.Context, cmd OpenTicketCommand) (*OpenTicketResult, error) {
	uc.logger.Infow("executing open ticket use case", "guild_id", cmd.GuildID, "user_id", cmd.UserID)

	if cmd.GuildID == "" || cmd.UserID == "" {
		return nil, apperrors.NewValidationError("guild ID and user ID are required")
	}

	existing, err := uc.ticketRepo.FindOpenByUser(ctx, cmd.GuildID, cmd.UserID)
	if err == nil {
		return &OpenTicketResult{
			TicketID:  existing.ID(),
			Number:    existing.Number(),
			ChannelID: existing.ChannelID(),
			Existing:  true,
		}, nil
	}
	if !errors.Is(err, ticket.ErrNotFound) {
		uc.logger.Errorw("failed to check existing ticket", "error", err)
		return nil, apperrors.NewInternalError("failed to check existing ticket")
	}

	categoryID, managerRoleID, err := uc.ensureInfrastructure(ctx, cmd.GuildID)
	if err != nil {
		uc.logger.Errorw("failed to prepare ticket infrastructure", "guild_id", cmd.GuildID, "error", err)
		return nil, apperrors.NewInternalError("failed to prepare ticket infrastructure")
	}

	count, err := uc.ticketRepo.CountByGuild(ctx, cmd.GuildID)
	if err != nil {
		uc.logger.Errorw("failed to count tickets", "guild_id", cmd.GuildID, "error", err)
		return nil, apperrors.NewInternalError("failed to number ticket")
	}
	number := int(count) + 1

	category := cmd.Category
	if category == "" {
		category = defaultCategory
	}

	// Placeholder satisfies the channel uniqueness constraint until the real
	// channel exists.
	placeholder := "pending-" + uuid.NewString()
	newTicket, err := ticket.NewTicket(cmd.GuildID, cmd.UserID, placeholder, number, category)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := uc.ticketRepo.Save(ctx, newTicket); err != nil {
		if errors.Is(err, ticket.ErrDuplicateOpenTicket) {
			winner, findErr := uc.ticketRepo.FindOpenByUser(ctx, cmd.GuildID, cmd.UserID)
			if findErr != nil {
				uc.logger.Errorw("failed to load winning ticket after duplicate", "error", findErr)
				return nil, apperrors.NewConflictError("you already have an open ticket")
			}
			return &OpenTicketResult{
				TicketID:  winner.ID(),
				Number:    winner.Number(),
				ChannelID: winner.ChannelID(),
				Existing:  true,
			}, nil
		}
		uc.logger.Errorw("failed to save ticket", "error", err)
		return nil, apperrors.NewInternalError("failed to save ticket")
	}

	channelName := fmt.Sprintf("ticket-%d", number)
	channelID, err := uc.gateway.CreateTicketChannel(ctx, cmd.GuildID, categoryID, channelName, cmd.UserID, managerRoleID)
	if err != nil {
		uc.logger.Errorw("failed to create ticket channel, rolling back", "ticket_id", newTicket.ID(), "error", err)
		if delErr := uc.ticketRepo.Delete(ctx, newTicket.ID()); delErr != nil {
			uc.logger.Errorw("failed to roll back ticket row", "ticket_id", newTicket.ID(), "error", delErr)
		}
		return nil, apperrors.NewInternalError("failed to create ticket channel")
	}

	if err := uc.ticketRepo.AssignChannel(ctx, newTicket.ID(), channelID); err != nil {
		uc.logger.Errorw("failed to bind channel to ticket", "ticket_id", newTicket.ID(), "error", err)
		return nil, apperrors.NewInternalError("failed to bind channel to ticket")
	}

	uc.logger.Infow("ticket opened", "ticket_id", newTicket.ID(), "number", number, "channel_id", channelID)

	return &OpenTicketResult{
		TicketID:  newTicket.ID(),
		Number:    number,
		ChannelID: channelID,
	}, nil
}

// ensureInfrastructure resolves the ticket category and manager role, creating
// them on first use and caching the IDs in guild settings.
func (uc *OpenTicketUseCase) ensureInfrastructure(ctx context.Context, guildID string) (string, string, error) {
	var categoryID, managerRoleID string

	settings, err := uc.settingsRepo.Get(ctx, guildID)
	if err != nil {
		return "", "", err
	}
	if settings != nil {
		if settings.CategoryID != nil {
			categoryID = *settings.CategoryID
		}
		if settings.ManagerRoleID != nil {
			managerRoleID = *settings.ManagerRoleID
		}
	}

	patch := ticket.SettingsPatch{}

	if categoryID == "" {
		categoryID, err = uc.gateway.FindCategory(ctx, guildID, ticketCategoryName)
		if err != nil {
			return "", "", err
		}
		if categoryID == "" {
			categoryID, err = uc.gateway.CreateCategory(ctx, guildID, ticketCategoryName)
			if err != nil {
				return "", "", err
			}
		}
		patch.CategoryID = &categoryID
	}

	if managerRoleID == "" {
		managerRoleID, err = uc.gateway.FindRole(ctx, guildID, managerRoleName)
		if err != nil {
			return "", "", err
		}
		if managerRoleID == "" {
			managerRoleID, err = uc.gateway.CreateRole(ctx, guildID, managerRoleName)
			if err != nil {
				return "", "", err
			}
		}
		patch.ManagerRoleID = &managerRoleID
	}

	if patch.CategoryID != nil || patch.ManagerRoleID != nil {
		if err := uc.settingsRepo.Upsert(ctx, guildID, patch); err != nil {
			uc.logger.Warnw("failed to cache ticket infrastructure IDs", "guild_id", guildID, "error", err)
		}
	}

	return categoryID, managerRoleID, nil
}
