package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"rubybot/internal/infrastructure/discord"
	"rubybot/internal/shared/logger"
)

type guildInfo struct {
	name        string
	memberCount int
}

// EventRouter is the single dispatch point for gateway events. Routing is a
// compile-time switch over event types and command names; nothing is looked
// up dynamically, so an unhandled event can't reach handler code by name
// collision.
type EventRouter struct {
	ticket  *TicketHandler
	welcome *WelcomeHandler
	music   *MusicHandler
	player  *PlayerAdapter
	logger  logger.Interface

	onReady   func(botUserID string)
	readyOnce sync.Once

	fetchGuild func(ctx context.Context, guildID string) (*discord.Guild, error)

	mu     sync.Mutex
	guilds map[string]*guildInfo
}

func NewEventRouter(
	ticket *TicketHandler,
	welcome *WelcomeHandler,
	music *MusicHandler,
	player *PlayerAdapter,
	client *discord.Client,
	onReady func(botUserID string),
	logger logger.Interface,
) *EventRouter {
	return &EventRouter{
		ticket:     ticket,
		welcome:    welcome,
		music:      music,
		player:     player,
		fetchGuild: client.GetGuild,
		onReady:    onReady,
		logger:     logger,
		guilds:     make(map[string]*guildInfo),
	}
}

// HandleEvent implements the gateway event handler.
func (r *EventRouter) HandleEvent(ctx context.Context, event *discord.Event) error {
	switch event.Type {
	case "READY":
		return r.handleReady(event.Data)
	case "GUILD_CREATE":
		return r.handleGuildCreate(event.Data)
	case "INTERACTION_CREATE":
		return r.handleInteraction(ctx, event.Data)
	case "GUILD_MEMBER_ADD":
		return r.handleMemberAdd(ctx, event.Data)
	case "GUILD_MEMBER_REMOVE":
		return r.handleMemberRemove(ctx, event.Data)
	case "VOICE_STATE_UPDATE":
		return r.handleVoiceStateUpdate(event.Data)
	case "VOICE_SERVER_UPDATE":
		return r.handleVoiceServerUpdate(ctx, event.Data)
	default:
		return nil
	}
}

func (r *EventRouter) handleReady(data json.RawMessage) error {
	var ready struct {
		User *discord.User `json:"user"`
	}
	if err := json.Unmarshal(data, &ready); err != nil {
		return fmt.Errorf("failed to decode READY: %w", err)
	}
	if ready.User == nil {
		return fmt.Errorf("READY without user")
	}

	r.logger.Infow("gateway ready", "bot_user_id", ready.User.ID, "username", ready.User.Username)
	r.readyOnce.Do(func() {
		if r.onReady != nil {
			r.onReady(ready.User.ID)
		}
	})
	return nil
}

func (r *EventRouter) handleGuildCreate(data json.RawMessage) error {
	var guild discord.Guild
	if err := json.Unmarshal(data, &guild); err != nil {
		return fmt.Errorf("failed to decode GUILD_CREATE: %w", err)
	}

	r.mu.Lock()
	r.guilds[guild.ID] = &guildInfo{name: guild.Name, memberCount: guild.MemberCount}
	r.mu.Unlock()

	r.logger.Infow("guild available", "guild_id", guild.ID, "name", guild.Name, "members", guild.MemberCount)
	return nil
}

func (r *EventRouter) handleInteraction(ctx context.Context, data json.RawMessage) error {
	var interaction discord.Interaction
	if err := json.Unmarshal(data, &interaction); err != nil {
		return fmt.Errorf("failed to decode INTERACTION_CREATE: %w", err)
	}
	if interaction.Data == nil {
		return nil
	}

	switch interaction.Type {
	case discord.InteractionTypeApplicationCommand:
		switch interaction.Data.Name {
		case "ticket":
			return r.ticket.HandleCommand(ctx, &interaction)
		case "welcome":
			return r.welcome.HandleCommand(ctx, &interaction)
		case "play", "skip", "stop", "pause", "resume", "volume", "loop", "shuffle", "remove", "nowplaying", "queue":
			return r.music.HandleCommand(ctx, &interaction)
		default:
			return nil
		}
	case discord.InteractionTypeMessageComponent:
		if strings.HasPrefix(interaction.Data.CustomID, "ticket_") {
			return r.ticket.HandleComponent(ctx, &interaction)
		}
		return nil
	default:
		return nil
	}
}

func (r *EventRouter) handleMemberAdd(ctx context.Context, data json.RawMessage) error {
	var member discord.Member
	if err := json.Unmarshal(data, &member); err != nil {
		return fmt.Errorf("failed to decode GUILD_MEMBER_ADD: %w", err)
	}
	var scope struct {
		GuildID string `json:"guild_id"`
	}
	if err := json.Unmarshal(data, &scope); err != nil {
		return fmt.Errorf("failed to decode GUILD_MEMBER_ADD guild: %w", err)
	}

	name, count := r.adjustMemberCount(ctx, scope.GuildID, 1)
	return r.welcome.OnMemberAdd(ctx, scope.GuildID, &member, name, count)
}

func (r *EventRouter) handleMemberRemove(ctx context.Context, data json.RawMessage) error {
	var payload struct {
		GuildID string        `json:"guild_id"`
		User    *discord.User `json:"user"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("failed to decode GUILD_MEMBER_REMOVE: %w", err)
	}

	name, count := r.adjustMemberCount(ctx, payload.GuildID, -1)
	return r.welcome.OnMemberRemove(ctx, payload.GuildID, payload.User, name, count)
}

func (r *EventRouter) handleVoiceStateUpdate(data json.RawMessage) error {
	var state discord.VoiceState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("failed to decode VOICE_STATE_UPDATE: %w", err)
	}
	r.music.HandleVoiceStateUpdate(&state)
	r.player.HandleVoiceStateUpdate(&state)
	return nil
}

func (r *EventRouter) handleVoiceServerUpdate(ctx context.Context, data json.RawMessage) error {
	var update discord.VoiceServerUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		return fmt.Errorf("failed to decode VOICE_SERVER_UPDATE: %w", err)
	}
	r.player.HandleVoiceServerUpdate(ctx, &update)
	return nil
}

// adjustMemberCount updates the cached count and returns the guild name and
// new count for template rendering. When the member event raced GUILD_CREATE
// the guild is fetched over REST instead; that count already reflects the
// change, so no delta is applied.
func (r *EventRouter) adjustMemberCount(ctx context.Context, guildID string, delta int) (string, int) {
	r.mu.Lock()
	if info, ok := r.guilds[guildID]; ok {
		info.memberCount += delta
		if info.memberCount < 0 {
			info.memberCount = 0
		}
		name, count := info.name, info.memberCount
		r.mu.Unlock()
		return name, count
	}
	r.mu.Unlock()

	guild, err := r.fetchGuild(ctx, guildID)
	if err != nil {
		r.logger.Warnw("failed to fetch guild for member event", "guild_id", guildID, "error", err)
		return "", 0
	}
	count := guild.ApproximateMemberCount
	if count == 0 {
		count = guild.MemberCount
	}

	r.mu.Lock()
	r.guilds[guildID] = &guildInfo{name: guild.Name, memberCount: count}
	r.mu.Unlock()
	return guild.Name, count
}
