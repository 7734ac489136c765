package mappers

import (
	"time"

	"rubybot/internal/domain/ticket"
	"rubybot/internal/infrastructure/persistence/models"
)

// TicketMapper handles the conversion between Ticket domain entities and
// persistence models.
type TicketMapper interface {
	ToModel(t *ticket.Ticket) *models.TicketModel
	ToDomain(model *models.TicketModel) (*ticket.Ticket, error)
}

type ticketMapper struct{}

func NewTicketMapper() TicketMapper {
	return &ticketMapper{}
}

func (m *ticketMapper) ToModel(t *ticket.Ticket) *models.TicketModel {
	model := &models.TicketModel{
		ID:        t.ID(),
		GuildID:   t.GuildID(),
		UserID:    t.UserID(),
		ChannelID: t.ChannelID(),
		Number:    t.Number(),
		Category:  t.Category(),
		ClaimedBy: t.ClaimedBy(),
		Status:    t.Status().String(),
		CreatedAt: t.CreatedAt().UnixMilli(),
		ClosedBy:  t.ClosedBy(),
	}

	if t.IsOpen() {
		marker := uint8(1)
		model.OpenMarker = &marker
	}

	if t.ClosedAt() != nil {
		closedAt := t.ClosedAt().UnixMilli()
		model.ClosedAt = &closedAt
	}

	return model
}

func (m *ticketMapper) ToDomain(model *models.TicketModel) (*ticket.Ticket, error) {
	var closedAt *time.Time
	if model.ClosedAt != nil {
		t := time.UnixMilli(*model.ClosedAt).UTC()
		closedAt = &t
	}

	return ticket.ReconstructTicket(
		model.ID,
		model.GuildID,
		model.UserID,
		model.ChannelID,
		model.Number,
		model.Category,
		model.ClaimedBy,
		ticket.Status(model.Status),
		time.UnixMilli(model.CreatedAt).UTC(),
		closedAt,
		model.ClosedBy,
	)
}
