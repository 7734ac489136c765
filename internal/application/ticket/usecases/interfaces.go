package usecases

import "context"

// ChannelMessage is one entry of channel history consumed by transcripts.
type ChannelMessage struct {
	AuthorID   string
	AuthorName string
	Content    string
	Timestamp  string
}

// GuildGateway is the Discord surface the ticket lifecycle drives. The bot
// layer adapts the REST client to it.
type GuildGateway interface {
	FindCategory(ctx context.Context, guildID, name string) (string, error)
	CreateCategory(ctx context.Context, guildID, name string) (string, error)
	FindRole(ctx context.Context, guildID, name string) (string, error)
	CreateRole(ctx context.Context, guildID, name string) (string, error)
	CreateTicketChannel(ctx context.Context, guildID, categoryID, name, openerID, managerRoleID string) (string, error)
	RenameChannel(ctx context.Context, channelID, name string) error
	DeleteChannel(ctx context.Context, channelID string) error
	ChannelHistory(ctx context.Context, channelID string, limit int) ([]ChannelMessage, error)
}

type OpenTicketExecutor interface {
	Execute(ctx context.Context, cmd OpenTicketCommand) (*OpenTicketResult, error)
}

type ClaimTicketExecutor interface {
	Execute(ctx context.Context, cmd ClaimTicketCommand) (*ClaimTicketResult, error)
}

type RequestCloseExecutor interface {
	Execute(ctx context.Context, cmd RequestCloseCommand) (*RequestCloseResult, error)
}

type ConfirmCloseExecutor interface {
	Execute(ctx context.Context, cmd ConfirmCloseCommand) (*ConfirmCloseResult, error)
}

type CancelCloseExecutor interface {
	Execute(ctx context.Context, cmd CancelCloseCommand) error
}

type TranscriptExecutor interface {
	Execute(ctx context.Context, cmd TranscriptCommand) (*TranscriptResult, error)
}

type DeleteChannelExecutor interface {
	Execute(ctx context.Context, cmd DeleteChannelCommand) (*DeleteChannelResult, error)
}

type TicketStatsExecutor interface {
	Execute(ctx context.Context, query TicketStatsQuery) (*TicketStatsResult, error)
}

type UpdateSettingsExecutor interface {
	Execute(ctx context.Context, cmd UpdateSettingsCommand) error
}
