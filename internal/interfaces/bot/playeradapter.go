package bot

import (
	"context"
	"fmt"
	"sync"

	"rubybot/internal/infrastructure/discord"
	"rubybot/internal/infrastructure/lavalink"
	"rubybot/internal/shared/logger"
)

// PlayerAdapter bridges the music service to the Lavalink node and the
// Discord voice gateway. It also tracks the voice handshake: the bot's own
// voice state plus the voice server token are forwarded to the node so it
// can stream into the channel.
type PlayerAdapter struct {
	client *lavalink.Client
	logger logger.Interface

	mu            sync.Mutex
	gateway       *discord.Gateway
	node          *lavalink.Node
	botID         string
	voiceSessions map[string]string
}

func NewPlayerAdapter(client *lavalink.Client, log logger.Interface) *PlayerAdapter {
	return &PlayerAdapter{
		client:        client,
		logger:        log,
		voiceSessions: make(map[string]string),
	}
}

// BindGateway attaches the voice gateway. The gateway is constructed after
// the adapter because the event router sits between them.
func (a *PlayerAdapter) BindGateway(gateway *discord.Gateway) {
	a.mu.Lock()
	a.gateway = gateway
	a.mu.Unlock()
}

// AttachNode wires the node session once it exists. The node needs the bot
// user ID, which is only known after READY.
func (a *PlayerAdapter) AttachNode(node *lavalink.Node, botID string) {
	a.mu.Lock()
	a.node = node
	a.botID = botID
	a.mu.Unlock()
}

func (a *PlayerAdapter) sessionID() (string, error) {
	a.mu.Lock()
	node := a.node
	a.mu.Unlock()
	if node == nil {
		return "", fmt.Errorf("audio node not connected")
	}
	sessionID := node.SessionID()
	if sessionID == "" {
		return "", fmt.Errorf("audio node session not ready")
	}
	return sessionID, nil
}

func (a *PlayerAdapter) Load(ctx context.Context, identifier string) ([]lavalink.Track, error) {
	if a.client == nil {
		return nil, fmt.Errorf("audio node not configured")
	}
	return a.client.LoadTracks(ctx, identifier)
}

func (a *PlayerAdapter) Play(ctx context.Context, guildID, encoded string) error {
	sessionID, err := a.sessionID()
	if err != nil {
		return err
	}
	return a.client.UpdatePlayer(ctx, sessionID, guildID, lavalink.PlayerUpdate{
		Track: &lavalink.PlayerTrack{Encoded: &encoded},
	})
}

func (a *PlayerAdapter) Stop(ctx context.Context, guildID string) error {
	sessionID, err := a.sessionID()
	if err != nil {
		return err
	}
	return a.client.UpdatePlayer(ctx, sessionID, guildID, lavalink.PlayerUpdate{
		Track: &lavalink.PlayerTrack{Encoded: nil},
	})
}

func (a *PlayerAdapter) Pause(ctx context.Context, guildID string, paused bool) error {
	sessionID, err := a.sessionID()
	if err != nil {
		return err
	}
	return a.client.UpdatePlayer(ctx, sessionID, guildID, lavalink.PlayerUpdate{
		Paused: &paused,
	})
}

func (a *PlayerAdapter) SetVolume(ctx context.Context, guildID string, volume int) error {
	sessionID, err := a.sessionID()
	if err != nil {
		return err
	}
	return a.client.UpdatePlayer(ctx, sessionID, guildID, lavalink.PlayerUpdate{
		Volume: &volume,
	})
}

func (a *PlayerAdapter) Destroy(ctx context.Context, guildID string) error {
	sessionID, err := a.sessionID()
	if err != nil {
		return err
	}
	return a.client.DestroyPlayer(ctx, sessionID, guildID)
}

func (a *PlayerAdapter) JoinVoice(guildID, channelID string) error {
	a.mu.Lock()
	gateway := a.gateway
	a.mu.Unlock()
	if gateway == nil {
		return fmt.Errorf("gateway not bound")
	}
	return gateway.UpdateVoiceState(guildID, channelID)
}

func (a *PlayerAdapter) LeaveVoice(guildID string) error {
	a.mu.Lock()
	gateway := a.gateway
	a.mu.Unlock()
	if gateway == nil {
		return fmt.Errorf("gateway not bound")
	}
	return gateway.UpdateVoiceState(guildID, "")
}

// HandleVoiceStateUpdate records the bot's own voice session per guild.
func (a *PlayerAdapter) HandleVoiceStateUpdate(state *discord.VoiceState) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.botID == "" || state.UserID != a.botID {
		return
	}
	if state.ChannelID == "" {
		delete(a.voiceSessions, state.GuildID)
		return
	}
	a.voiceSessions[state.GuildID] = state.SessionID
}

// HandleVoiceServerUpdate forwards the voice credentials to the node so it
// can take over the audio connection.
func (a *PlayerAdapter) HandleVoiceServerUpdate(ctx context.Context, update *discord.VoiceServerUpdate) {
	a.mu.Lock()
	voiceSession := a.voiceSessions[update.GuildID]
	a.mu.Unlock()

	if voiceSession == "" {
		a.logger.Warnw("voice server update without a known voice session", "guild_id", update.GuildID)
		return
	}

	sessionID, err := a.sessionID()
	if err != nil {
		a.logger.Warnw("voice server update before node ready", "guild_id", update.GuildID, "error", err)
		return
	}

	err = a.client.UpdatePlayer(ctx, sessionID, update.GuildID, lavalink.PlayerUpdate{
		Voice: &lavalink.VoiceServer{
			Token:     update.Token,
			Endpoint:  update.Endpoint,
			SessionID: voiceSession,
		},
	})
	if err != nil {
		a.logger.Errorw("failed to hand voice credentials to node", "guild_id", update.GuildID, "error", err)
	}
}
