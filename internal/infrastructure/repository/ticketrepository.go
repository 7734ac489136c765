package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"rubybot/internal/domain/ticket"
	"rubybot/internal/infrastructure/persistence/mappers"
	"rubybot/internal/infrastructure/persistence/models"
	apperrors "rubybot/internal/shared/errors"
)

// TicketRepository is the gorm-backed ticket ledger. Uniqueness is enforced
// by the indexes on the tickets table, not by read-then-write checks: a
// losing concurrent insert surfaces as ErrDuplicateOpenTicket, and claim and
// close are single conditional UPDATE statements.
type TicketRepository struct {
	db     *gorm.DB
	mapper mappers.TicketMapper
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{
		db:     db,
		mapper: mappers.NewTicketMapper(),
	}
}

func (r *TicketRepository) Save(ctx context.Context, t *ticket.Ticket) error {
	model := r.mapper.ToModel(t)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return fmt.Errorf("%w: %v", ticket.ErrDuplicateOpenTicket, err)
		}
		return fmt.Errorf("failed to save ticket: %w", err)
	}

	return t.SetID(model.ID)
}

// AssignChannel binds the real channel ID to a row created with a
// placeholder. The ledger row is inserted before the channel exists so the
// unique indexes arbitrate concurrent opens.
func (r *TicketRepository) AssignChannel(ctx context.Context, id uint, channelID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.TicketModel{}).
		Where("id = ?", id).
		Update("channel_id", channelID)
	if result.Error != nil {
		return fmt.Errorf("failed to assign channel: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ticket.ErrNotFound
	}
	return nil
}

// FindByChannel returns the ticket bound to a channel regardless of status.
// Used by transcript and teardown, which still apply to closed tickets.
func (r *TicketRepository) FindByChannel(ctx context.Context, channelID string) (*ticket.Ticket, error) {
	var model models.TicketModel
	err := r.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ticket.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ticket by channel: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

// FindOpenByChannel returns the open ticket bound to a channel. Closed
// tickets are invisible to this lookup; their channels are expected to be
// deleted shortly after closing.
func (r *TicketRepository) FindOpenByChannel(ctx context.Context, channelID string) (*ticket.Ticket, error) {
	var model models.TicketModel
	err := r.db.WithContext(ctx).
		Where("channel_id = ? AND status = ?", channelID, ticket.StatusOpen.String()).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ticket.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ticket by channel: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

func (r *TicketRepository) FindOpenByUser(ctx context.Context, guildID, userID string) (*ticket.Ticket, error) {
	var model models.TicketModel
	err := r.db.WithContext(ctx).
		Where("guild_id = ? AND user_id = ? AND status = ?", guildID, userID, ticket.StatusOpen.String()).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ticket.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ticket by user: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

func (r *TicketRepository) ListOpenByGuild(ctx context.Context, guildID string) ([]*ticket.Ticket, error) {
	var ticketModels []models.TicketModel
	err := r.db.WithContext(ctx).
		Where("guild_id = ? AND status = ?", guildID, ticket.StatusOpen.String()).
		Order("created_at DESC").
		Find(&ticketModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list open tickets: %w", err)
	}

	tickets := make([]*ticket.Ticket, len(ticketModels))
	for i, model := range ticketModels {
		t, err := r.mapper.ToDomain(&model)
		if err != nil {
			return nil, err
		}
		tickets[i] = t
	}
	return tickets, nil
}

func (r *TicketRepository) CountByGuild(ctx context.Context, guildID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TicketModel{}).
		Where("guild_id = ?", guildID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return count, nil
}

// Claim sets the claimer only when no claimer exists yet. The conditional
// UPDATE closes the check-then-act race: the affected-row count decides the
// outcome, not a prior read.
func (r *TicketRepository) Claim(ctx context.Context, channelID, userID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.TicketModel{}).
		Where("channel_id = ? AND status = ? AND claimed_by IS NULL", channelID, ticket.StatusOpen.String()).
		Update("claimed_by", userID)
	if result.Error != nil {
		return fmt.Errorf("failed to claim ticket: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		existing, err := r.FindOpenByChannel(ctx, channelID)
		if err != nil {
			return err
		}
		if existing.IsClaimed() {
			return ticket.ErrAlreadyClaimed
		}
		return ticket.ErrNotFound
	}

	return nil
}

// Close transitions an open ticket to closed and clears its open marker so
// the guild/user slot frees up. Closing an already-closed ticket is a no-op.
func (r *TicketRepository) Close(ctx context.Context, channelID, closedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&models.TicketModel{}).
		Where("channel_id = ? AND status = ?", channelID, ticket.StatusOpen.String()).
		Updates(map[string]interface{}{
			"status":      ticket.StatusClosed.String(),
			"open_marker": nil,
			"closed_at":   time.Now().UnixMilli(),
			"closed_by":   closedBy,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to close ticket: %w", result.Error)
	}
	return nil
}

// Delete removes a ledger row. Used only to roll back a create whose channel
// provisioning failed.
func (r *TicketRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.TicketModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete ticket: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ticket.ErrNotFound
	}
	return nil
}

func (r *TicketRepository) Stats(ctx context.Context, guildID string) (*ticket.Stats, error) {
	var stats ticket.Stats

	err := r.db.WithContext(ctx).
		Model(&models.TicketModel{}).
		Where("guild_id = ?", guildID).
		Count(&stats.Total).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets: %w", err)
	}

	err = r.db.WithContext(ctx).
		Model(&models.TicketModel{}).
		Where("guild_id = ? AND status = ?", guildID, ticket.StatusOpen.String()).
		Count(&stats.Open).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count open tickets: %w", err)
	}

	stats.Closed = stats.Total - stats.Open
	return &stats, nil
}
