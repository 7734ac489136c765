package usecases

import (
	"context"

	"rubybot/internal/domain/ticket"
	"rubybot/internal/infrastructure/cache"
	"rubybot/internal/shared/logger"
)

type mockTicketRepository struct {
	SaveFunc              func(ctx context.Context, t *ticket.Ticket) error
	AssignChannelFunc     func(ctx context.Context, id uint, channelID string) error
	FindByChannelFunc     func(ctx context.Context, channelID string) (*ticket.Ticket, error)
	FindOpenByChannelFunc func(ctx context.Context, channelID string) (*ticket.Ticket, error)
	FindOpenByUserFunc    func(ctx context.Context, guildID, userID string) (*ticket.Ticket, error)
	ListOpenByGuildFunc   func(ctx context.Context, guildID string) ([]*ticket.Ticket, error)
	CountByGuildFunc      func(ctx context.Context, guildID string) (int64, error)
	ClaimFunc             func(ctx context.Context, channelID, userID string) error
	CloseFunc             func(ctx context.Context, channelID, closedBy string) error
	DeleteFunc            func(ctx context.Context, id uint) error
	StatsFunc             func(ctx context.Context, guildID string) (*ticket.Stats, error)
}

func (m *mockTicketRepository) Save(ctx context.Context, t *ticket.Ticket) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, t)
	}
	return nil
}

func (m *mockTicketRepository) AssignChannel(ctx context.Context, id uint, channelID string) error {
	if m.AssignChannelFunc != nil {
		return m.AssignChannelFunc(ctx, id, channelID)
	}
	return nil
}

func (m *mockTicketRepository) FindByChannel(ctx context.Context, channelID string) (*ticket.Ticket, error) {
	if m.FindByChannelFunc != nil {
		return m.FindByChannelFunc(ctx, channelID)
	}
	return nil, ticket.ErrNotFound
}

func (m *mockTicketRepository) FindOpenByChannel(ctx context.Context, channelID string) (*ticket.Ticket, error) {
	if m.FindOpenByChannelFunc != nil {
		return m.FindOpenByChannelFunc(ctx, channelID)
	}
	return nil, ticket.ErrNotFound
}

func (m *mockTicketRepository) FindOpenByUser(ctx context.Context, guildID, userID string) (*ticket.Ticket, error) {
	if m.FindOpenByUserFunc != nil {
		return m.FindOpenByUserFunc(ctx, guildID, userID)
	}
	return nil, ticket.ErrNotFound
}

func (m *mockTicketRepository) ListOpenByGuild(ctx context.Context, guildID string) ([]*ticket.Ticket, error) {
	if m.ListOpenByGuildFunc != nil {
		return m.ListOpenByGuildFunc(ctx, guildID)
	}
	return nil, nil
}

func (m *mockTicketRepository) CountByGuild(ctx context.Context, guildID string) (int64, error) {
	if m.CountByGuildFunc != nil {
		return m.CountByGuildFunc(ctx, guildID)
	}
	return 0, nil
}

func (m *mockTicketRepository) Claim(ctx context.Context, channelID, userID string) error {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(ctx, channelID, userID)
	}
	return nil
}

func (m *mockTicketRepository) Close(ctx context.Context, channelID, closedBy string) error {
	if m.CloseFunc != nil {
		return m.CloseFunc(ctx, channelID, closedBy)
	}
	return nil
}

func (m *mockTicketRepository) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockTicketRepository) Stats(ctx context.Context, guildID string) (*ticket.Stats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, guildID)
	}
	return &ticket.Stats{}, nil
}

type mockSettingsRepository struct {
	GetFunc    func(ctx context.Context, guildID string) (*ticket.Settings, error)
	UpsertFunc func(ctx context.Context, guildID string, patch ticket.SettingsPatch) error
}

func (m *mockSettingsRepository) Get(ctx context.Context, guildID string) (*ticket.Settings, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, guildID)
	}
	return nil, nil
}

func (m *mockSettingsRepository) Upsert(ctx context.Context, guildID string, patch ticket.SettingsPatch) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, guildID, patch)
	}
	return nil
}

type mockGuildGateway struct {
	FindCategoryFunc        func(ctx context.Context, guildID, name string) (string, error)
	CreateCategoryFunc      func(ctx context.Context, guildID, name string) (string, error)
	FindRoleFunc            func(ctx context.Context, guildID, name string) (string, error)
	CreateRoleFunc          func(ctx context.Context, guildID, name string) (string, error)
	CreateTicketChannelFunc func(ctx context.Context, guildID, categoryID, name, openerID, managerRoleID string) (string, error)
	RenameChannelFunc       func(ctx context.Context, channelID, name string) error
	DeleteChannelFunc       func(ctx context.Context, channelID string) error
	ChannelHistoryFunc      func(ctx context.Context, channelID string, limit int) ([]ChannelMessage, error)
}

func (m *mockGuildGateway) FindCategory(ctx context.Context, guildID, name string) (string, error) {
	if m.FindCategoryFunc != nil {
		return m.FindCategoryFunc(ctx, guildID, name)
	}
	return "category-1", nil
}

func (m *mockGuildGateway) CreateCategory(ctx context.Context, guildID, name string) (string, error) {
	if m.CreateCategoryFunc != nil {
		return m.CreateCategoryFunc(ctx, guildID, name)
	}
	return "category-1", nil
}

func (m *mockGuildGateway) FindRole(ctx context.Context, guildID, name string) (string, error) {
	if m.FindRoleFunc != nil {
		return m.FindRoleFunc(ctx, guildID, name)
	}
	return "role-1", nil
}

func (m *mockGuildGateway) CreateRole(ctx context.Context, guildID, name string) (string, error) {
	if m.CreateRoleFunc != nil {
		return m.CreateRoleFunc(ctx, guildID, name)
	}
	return "role-1", nil
}

func (m *mockGuildGateway) CreateTicketChannel(ctx context.Context, guildID, categoryID, name, openerID, managerRoleID string) (string, error) {
	if m.CreateTicketChannelFunc != nil {
		return m.CreateTicketChannelFunc(ctx, guildID, categoryID, name, openerID, managerRoleID)
	}
	return "channel-1", nil
}

func (m *mockGuildGateway) RenameChannel(ctx context.Context, channelID, name string) error {
	if m.RenameChannelFunc != nil {
		return m.RenameChannelFunc(ctx, channelID, name)
	}
	return nil
}

func (m *mockGuildGateway) DeleteChannel(ctx context.Context, channelID string) error {
	if m.DeleteChannelFunc != nil {
		return m.DeleteChannelFunc(ctx, channelID)
	}
	return nil
}

func (m *mockGuildGateway) ChannelHistory(ctx context.Context, channelID string, limit int) ([]ChannelMessage, error) {
	if m.ChannelHistoryFunc != nil {
		return m.ChannelHistoryFunc(ctx, channelID, limit)
	}
	return nil, nil
}

type mockPendingCloseStore struct {
	PutFunc    func(ctx context.Context, channelID, requestedBy string) error
	TakeFunc   func(ctx context.Context, channelID string) (string, error)
	CancelFunc func(ctx context.Context, channelID string) error
}

func (m *mockPendingCloseStore) Put(ctx context.Context, channelID, requestedBy string) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, channelID, requestedBy)
	}
	return nil
}

func (m *mockPendingCloseStore) Take(ctx context.Context, channelID string) (string, error) {
	if m.TakeFunc != nil {
		return m.TakeFunc(ctx, channelID)
	}
	return "", cache.ErrNoPendingClose
}

func (m *mockPendingCloseStore) Cancel(ctx context.Context, channelID string) error {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, channelID)
	}
	return nil
}

type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)                   {}
func (m *mockLogger) Info(msg string, args ...any)                    {}
func (m *mockLogger) Warn(msg string, args ...any)                    {}
func (m *mockLogger) Error(msg string, args ...any)                   {}
func (m *mockLogger) With(args ...any) logger.Interface               { return m }
func (m *mockLogger) Named(name string) logger.Interface              { return m }
func (m *mockLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (m *mockLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Errorw(msg string, keysAndValues ...interface{}) {}

func openTicket(id uint, guildID, userID, channelID string, number int) *ticket.Ticket {
	t, err := ticket.NewTicket(guildID, userID, channelID, number, "general")
	if err != nil {
		panic(err)
	}
	if err := t.SetID(id); err != nil {
		panic(err)
	}
	return t
}
