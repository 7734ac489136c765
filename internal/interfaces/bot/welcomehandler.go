package bot

import (
	"context"
	"fmt"
	"strings"

	appwelcome "rubybot/internal/application/welcome"
	domainwelcome "rubybot/internal/domain/welcome"
	"rubybot/internal/infrastructure/discord"
	"rubybot/internal/shared/constants"
	"rubybot/internal/shared/logger"
)

// WelcomeHandler answers the /welcome command and forwards member events to
// the welcome service.
type WelcomeHandler struct {
	client  *discord.Client
	service *appwelcome.Service
	logger  logger.Interface
}

func NewWelcomeHandler(client *discord.Client, service *appwelcome.Service, logger logger.Interface) *WelcomeHandler {
	return &WelcomeHandler{
		client:  client,
		service: service,
		logger:  logger,
	}
}

// HandleCommand dispatches /welcome subcommands.
func (h *WelcomeHandler) HandleCommand(ctx context.Context, i *discord.Interaction) error {
	switch i.Data.Subcommand() {
	case "setup":
		return h.handleSetup(ctx, i)
	case "goodbye":
		return h.handleGoodbye(ctx, i)
	case "disable":
		return h.handleDisable(ctx, i)
	case "test":
		return h.handleTest(ctx, i)
	case "status":
		return h.handleStatus(ctx, i)
	case "reset":
		return h.handleReset(ctx, i)
	default:
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, constants.EmoteError+" Unknown welcome subcommand.", true)
	}
}

// handleSetup enables welcomes and applies whichever options were provided.
// Omitted options keep their stored values.
func (h *WelcomeHandler) handleSetup(ctx context.Context, i *discord.Interaction) error {
	enabled := true
	patch := domainwelcome.Patch{Enabled: &enabled}

	channelID := i.ChannelID
	if opt := i.Data.Option("channel"); opt != nil {
		channelID = opt.StringValue()
	}
	patch.ChannelID = &channelID

	if opt := i.Data.Option("title"); opt != nil {
		v := opt.StringValue()
		patch.Title = &v
	}
	if opt := i.Data.Option("description"); opt != nil {
		v := opt.StringValue()
		patch.Description = &v
	}
	if opt := i.Data.Option("footer"); opt != nil {
		v := opt.StringValue()
		patch.Footer = &v
	}
	if opt := i.Data.Option("color"); opt != nil {
		v := opt.StringValue()
		patch.Color = &v
	}
	if opt := i.Data.Option("image"); opt != nil {
		v := opt.StringValue()
		patch.Image = &v
	}
	if opt := i.Data.Option("thumbnail"); opt != nil {
		v := opt.StringValue()
		patch.Thumbnail = &v
	}
	if opt := i.Data.Option("autodelete"); opt != nil {
		v := int(opt.IntValue())
		patch.AutoDeleteAfter = &v
	}

	if err := h.service.UpdateSettings(ctx, i.GuildID, patch); err != nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, userErrorMessage(err), true)
	}
	return h.client.RespondWithMessage(ctx, i.ID, i.Token,
		fmt.Sprintf("%s Welcome messages enabled in <#%s>.", constants.EmoteSuccess, channelID), true)
}

func (h *WelcomeHandler) handleGoodbye(ctx context.Context, i *discord.Interaction) error {
	enabled := true
	patch := domainwelcome.Patch{GoodbyeEnabled: &enabled}

	channelID := i.ChannelID
	if opt := i.Data.Option("channel"); opt != nil {
		channelID = opt.StringValue()
	}
	patch.GoodbyeChannelID = &channelID

	if opt := i.Data.Option("message"); opt != nil {
		v := opt.StringValue()
		patch.GoodbyeMessage = &v
	}

	if err := h.service.UpdateSettings(ctx, i.GuildID, patch); err != nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, userErrorMessage(err), true)
	}
	return h.client.RespondWithMessage(ctx, i.ID, i.Token,
		fmt.Sprintf("%s Goodbye messages enabled in <#%s>.", constants.EmoteSuccess, channelID), true)
}

func (h *WelcomeHandler) handleDisable(ctx context.Context, i *discord.Interaction) error {
	disabled := false
	patch := domainwelcome.Patch{Enabled: &disabled}

	if err := h.service.UpdateSettings(ctx, i.GuildID, patch); err != nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, userErrorMessage(err), true)
	}
	return h.client.RespondWithMessage(ctx, i.ID, i.Token, constants.EmoteSuccess+" Welcome messages disabled.", true)
}

// handleTest fires the welcome flow for the invoking user so admins can see
// the rendered result.
func (h *WelcomeHandler) handleTest(ctx context.Context, i *discord.Interaction) error {
	user := interactionUser(i)
	if user == nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, constants.EmoteError+" Could not resolve your user.", true)
	}

	guild, err := h.client.GetGuild(ctx, i.GuildID)
	if err != nil {
		h.logger.Warnw("failed to fetch guild for welcome test", "guild_id", i.GuildID, "error", err)
		guild = &discord.Guild{ID: i.GuildID, Name: "this server"}
	}

	if err := h.service.OnMemberJoin(ctx, appwelcome.MemberEvent{
		GuildID:     i.GuildID,
		UserID:      user.ID,
		Username:    user.Username,
		GuildName:   guild.Name,
		MemberCount: guild.MemberCount,
	}); err != nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, userErrorMessage(err), true)
	}
	return h.client.RespondWithMessage(ctx, i.ID, i.Token, constants.EmoteSuccess+" Test welcome sent.", true)
}

func (h *WelcomeHandler) handleStatus(ctx context.Context, i *discord.Interaction) error {
	settings, err := h.service.GetSettings(ctx, i.GuildID)
	if err != nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, userErrorMessage(err), true)
	}
	if settings == nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token,
			constants.EmoteInfo+" Welcome messages are not configured.", true)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Enabled: %v\n", settings.Enabled)
	if settings.ChannelID != nil {
		fmt.Fprintf(&b, "Channel: <#%s>\n", *settings.ChannelID)
	}
	if settings.Title != nil {
		fmt.Fprintf(&b, "Title: %s\n", *settings.Title)
	}
	if settings.Description != nil {
		fmt.Fprintf(&b, "Description: %s\n", *settings.Description)
	}
	if settings.AutoDeleteAfter != nil {
		fmt.Fprintf(&b, "Auto-delete after: %ds\n", *settings.AutoDeleteAfter)
	}
	fmt.Fprintf(&b, "Goodbye enabled: %v", settings.GoodbyeEnabled)

	return h.client.RespondToInteraction(ctx, i.ID, i.Token, discord.InteractionResponse{
		Type: discord.CallbackTypeChannelMessage,
		Data: &discord.InteractionResponseData{
			Embeds: []discord.Embed{{
				Title:       constants.EmoteWave + " Welcome settings",
				Description: b.String(),
				Color:       constants.ColorBlue,
			}},
			Flags: discord.MessageFlagEphemeral,
		},
	})
}

func (h *WelcomeHandler) handleReset(ctx context.Context, i *discord.Interaction) error {
	if err := h.service.Reset(ctx, i.GuildID); err != nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, userErrorMessage(err), true)
	}
	return h.client.RespondWithMessage(ctx, i.ID, i.Token, constants.EmoteSuccess+" Welcome settings reset.", true)
}

// OnMemberAdd forwards a gateway member join to the welcome service.
func (h *WelcomeHandler) OnMemberAdd(ctx context.Context, guildID string, member *discord.Member, guildName string, memberCount int) error {
	if member == nil || member.User == nil || member.User.Bot {
		return nil
	}
	return h.service.OnMemberJoin(ctx, appwelcome.MemberEvent{
		GuildID:     guildID,
		UserID:      member.User.ID,
		Username:    member.User.Username,
		GuildName:   guildName,
		MemberCount: memberCount,
	})
}

// OnMemberRemove forwards a gateway member leave to the welcome service.
func (h *WelcomeHandler) OnMemberRemove(ctx context.Context, guildID string, user *discord.User, guildName string, memberCount int) error {
	if user == nil || user.Bot {
		return nil
	}
	return h.service.OnMemberLeave(ctx, appwelcome.MemberEvent{
		GuildID:     guildID,
		UserID:      user.ID,
		Username:    user.Username,
		GuildName:   guildName,
		MemberCount: memberCount,
	})
}
