package bot

import (
	"context"
	"strconv"
	"sync"

	ticketusecases "rubybot/internal/application/ticket/usecases"
	appwelcome "rubybot/internal/application/welcome"
	"rubybot/internal/infrastructure/discord"
)

// GuildGatewayAdapter implements the application-facing Discord ports on top
// of the REST client.
type GuildGatewayAdapter struct {
	client *discord.Client

	// botID arrives on the READY worker goroutine while other event
	// workers may already be provisioning channels.
	mu    sync.RWMutex
	botID string
}

func NewGuildGatewayAdapter(client *discord.Client) *GuildGatewayAdapter {
	return &GuildGatewayAdapter{client: client}
}

// SetBotID records the bot's own user ID once READY delivers it. Ticket
// channel overwrites need it.
func (a *GuildGatewayAdapter) SetBotID(botID string) {
	a.mu.Lock()
	a.botID = botID
	a.mu.Unlock()
}

func (a *GuildGatewayAdapter) getBotID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.botID
}

func (a *GuildGatewayAdapter) FindCategory(ctx context.Context, guildID, name string) (string, error) {
	channels, err := a.client.GetGuildChannels(ctx, guildID)
	if err != nil {
		return "", err
	}
	for _, ch := range channels {
		if ch.Type == discord.ChannelTypeGuildCategory && ch.Name == name {
			return ch.ID, nil
		}
	}
	return "", nil
}

func (a *GuildGatewayAdapter) CreateCategory(ctx context.Context, guildID, name string) (string, error) {
	ch, err := a.client.CreateGuildChannel(ctx, guildID, discord.ChannelCreate{
		Name: name,
		Type: discord.ChannelTypeGuildCategory,
	})
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

func (a *GuildGatewayAdapter) FindRole(ctx context.Context, guildID, name string) (string, error) {
	roles, err := a.client.GetGuildRoles(ctx, guildID)
	if err != nil {
		return "", err
	}
	for _, r := range roles {
		if r.Name == name {
			return r.ID, nil
		}
	}
	return "", nil
}

func (a *GuildGatewayAdapter) CreateRole(ctx context.Context, guildID, name string) (string, error) {
	role, err := a.client.CreateGuildRole(ctx, guildID, name, 0)
	if err != nil {
		return "", err
	}
	return role.ID, nil
}

// CreateTicketChannel creates a text channel only the opener, the manager
// role and the bot can see.
func (a *GuildGatewayAdapter) CreateTicketChannel(ctx context.Context, guildID, categoryID, name, openerID, managerRoleID string) (string, error) {
	memberAllow := strconv.Itoa(discord.PermissionViewChannel |
		discord.PermissionSendMessages |
		discord.PermissionReadHistory |
		discord.PermissionAttachFiles)

	overwrites := []discord.PermissionOverwrite{
		{
			// @everyone shares its ID with the guild.
			ID:   guildID,
			Type: discord.OverwriteTypeRole,
			Deny: strconv.Itoa(discord.PermissionViewChannel),
		},
		{
			ID:    openerID,
			Type:  discord.OverwriteTypeMember,
			Allow: memberAllow,
		},
		{
			ID:    managerRoleID,
			Type:  discord.OverwriteTypeRole,
			Allow: memberAllow,
		},
	}
	if botID := a.getBotID(); botID != "" {
		overwrites = append(overwrites, discord.PermissionOverwrite{
			ID:    botID,
			Type:  discord.OverwriteTypeMember,
			Allow: strconv.Itoa(discord.PermissionViewChannel | discord.PermissionSendMessages | discord.PermissionManageChannels | discord.PermissionManageMessages),
		})
	}

	ch, err := a.client.CreateGuildChannel(ctx, guildID, discord.ChannelCreate{
		Name:                 name,
		Type:                 discord.ChannelTypeGuildText,
		ParentID:             categoryID,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

func (a *GuildGatewayAdapter) RenameChannel(ctx context.Context, channelID, name string) error {
	return a.client.ModifyChannelName(ctx, channelID, name)
}

func (a *GuildGatewayAdapter) DeleteChannel(ctx context.Context, channelID string) error {
	return a.client.DeleteChannel(ctx, channelID)
}

// ChannelHistory pages backwards through the channel and returns up to limit
// messages, oldest first.
func (a *GuildGatewayAdapter) ChannelHistory(ctx context.Context, channelID string, limit int) ([]ticketusecases.ChannelMessage, error) {
	const pageSize = 100

	var collected []discord.Message
	before := ""
	for len(collected) < limit {
		want := limit - len(collected)
		if want > pageSize {
			want = pageSize
		}
		page, err := a.client.GetChannelMessages(ctx, channelID, want, before)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		collected = append(collected, page...)
		before = page[len(page)-1].ID
	}

	// The API returns newest first; transcripts read top down.
	out := make([]ticketusecases.ChannelMessage, 0, len(collected))
	for i := len(collected) - 1; i >= 0; i-- {
		m := collected[i]
		entry := ticketusecases.ChannelMessage{
			Content:   m.Content,
			Timestamp: m.Timestamp,
		}
		if m.Author != nil {
			entry.AuthorID = m.Author.ID
			entry.AuthorName = m.Author.Username
		}
		out = append(out, entry)
	}
	return out, nil
}

// SendEmbed implements the welcome messenger.
func (a *GuildGatewayAdapter) SendEmbed(ctx context.Context, channelID string, embed appwelcome.Embed) (string, error) {
	e := discord.Embed{
		Title:       embed.Title,
		Description: embed.Description,
		Color:       embed.Color,
	}
	if embed.Footer != "" {
		e.Footer = &discord.EmbedFooter{Text: embed.Footer}
	}
	if embed.Image != "" {
		e.Image = &discord.EmbedImage{URL: embed.Image}
	}
	if embed.Thumbnail != "" {
		e.Thumbnail = &discord.EmbedThumbnail{URL: embed.Thumbnail}
	}

	msg, err := a.client.CreateMessage(ctx, channelID, discord.MessageCreate{Embeds: []discord.Embed{e}})
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (a *GuildGatewayAdapter) SendMessage(ctx context.Context, channelID, content string) (string, error) {
	msg, err := a.client.CreateMessage(ctx, channelID, discord.MessageCreate{Content: content})
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (a *GuildGatewayAdapter) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return a.client.DeleteMessage(ctx, channelID, messageID)
}
