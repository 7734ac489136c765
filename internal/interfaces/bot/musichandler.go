package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	appmusic "rubybot/internal/application/music"
	"rubybot/internal/infrastructure/discord"
	"rubybot/internal/shared/constants"
	"rubybot/internal/shared/logger"
)

// MusicHandler answers the music slash commands. It tracks member voice
// states from the gateway so /play knows which channel to join.
type MusicHandler struct {
	client  *discord.Client
	service *appmusic.Service
	logger  logger.Interface

	mu        sync.Mutex
	userVoice map[string]string
}

func NewMusicHandler(client *discord.Client, service *appmusic.Service, logger logger.Interface) *MusicHandler {
	return &MusicHandler{
		client:    client,
		service:   service,
		logger:    logger,
		userVoice: make(map[string]string),
	}
}

// HandleVoiceStateUpdate keeps the member -> voice channel map current.
func (h *MusicHandler) HandleVoiceStateUpdate(state *discord.VoiceState) {
	key := state.GuildID + ":" + state.UserID
	h.mu.Lock()
	defer h.mu.Unlock()
	if state.ChannelID == "" {
		delete(h.userVoice, key)
		return
	}
	h.userVoice[key] = state.ChannelID
}

func (h *MusicHandler) voiceChannelOf(guildID, userID string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.userVoice[guildID+":"+userID]
}

// HandleCommand dispatches the music commands.
func (h *MusicHandler) HandleCommand(ctx context.Context, i *discord.Interaction) error {
	switch i.Data.Name {
	case "play":
		return h.handlePlay(ctx, i)
	case "skip":
		return h.handleSkip(ctx, i)
	case "stop":
		return h.handleStop(ctx, i)
	case "pause":
		return h.handlePause(ctx, i, true)
	case "resume":
		return h.handlePause(ctx, i, false)
	case "volume":
		return h.handleVolume(ctx, i)
	case "loop":
		return h.handleLoop(ctx, i)
	case "shuffle":
		return h.handleShuffle(ctx, i)
	case "remove":
		return h.handleRemove(ctx, i)
	case "nowplaying":
		return h.handleNowPlaying(ctx, i)
	case "queue":
		return h.handleQueue(ctx, i)
	default:
		return nil
	}
}

func (h *MusicHandler) handlePlay(ctx context.Context, i *discord.Interaction) error {
	query := ""
	if opt := i.Data.Option("query"); opt != nil {
		query = opt.StringValue()
	}
	userID := interactionUserID(i)

	if err := h.client.DeferInteraction(ctx, i.ID, i.Token, false); err != nil {
		return err
	}

	result, err := h.service.Play(ctx, appmusic.PlayCommand{
		GuildID:        i.GuildID,
		VoiceChannelID: h.voiceChannelOf(i.GuildID, userID),
		Query:          query,
		RequestedBy:    userID,
	})
	if err != nil {
		return h.client.CreateFollowupMessage(ctx, i.Token, discord.InteractionResponseData{
			Content: userErrorMessage(err),
			Flags:   discord.MessageFlagEphemeral,
		})
	}

	content := fmt.Sprintf("%s Now playing **%s** by %s", constants.EmoteMusic, result.Track.Title, result.Track.Author)
	if result.Queued {
		content = fmt.Sprintf("%s Queued **%s** at position %d", constants.EmoteMusic, result.Track.Title, result.Position)
	}
	return h.client.CreateFollowupMessage(ctx, i.Token, discord.InteractionResponseData{Content: content})
}

func (h *MusicHandler) handleSkip(ctx context.Context, i *discord.Interaction) error {
	next, err := h.service.Skip(ctx, i.GuildID)
	if err != nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, userErrorMessage(err), true)
	}
	if next == nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, constants.EmoteMusic+" Skipped, the queue is empty.", false)
	}
	return h.client.RespondWithMessage(ctx, i.ID, i.Token,
		fmt.Sprintf("%s Skipped, now playing **%s**.", constants.EmoteMusic, next.Title), false)
}

func (h *MusicHandler) handleStop(ctx context.Context, i *discord.Interaction) error {
	if err := h.service.Stop(ctx, i.GuildID); err != nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, userErrorMessage(err), true)
	}
	return h.client.RespondWithMessage(ctx, i.ID, i.Token, constants.EmoteMusic+" Playback stopped and queue cleared.", false)
}

func (h *MusicHandler) handlePause(ctx context.Context, i *discord.Interaction, paused bool) error {
	if err := h.service.Pause(ctx, i.GuildID, paused); err != nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, userErrorMessage(err), true)
	}
	verb := "resumed"
	if paused {
		verb = "paused"
	}
	return h.client.RespondWithMessage(ctx, i.ID, i.Token, constants.EmoteMusic+" Playback "+verb+".", false)
}

func (h *MusicHandler) handleVolume(ctx context.Context, i *discord.Interaction) error {
	volume := 100
	if opt := i.Data.Option("level"); opt != nil {
		volume = int(opt.IntValue())
	}
	if err := h.service.SetVolume(ctx, i.GuildID, volume); err != nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, userErrorMessage(err), true)
	}
	return h.client.RespondWithMessage(ctx, i.ID, i.Token,
		fmt.Sprintf("%s Volume set to %d%%.", constants.EmoteMusic, volume), false)
}

func (h *MusicHandler) handleLoop(ctx context.Context, i *discord.Interaction) error {
	mode := "off"
	if opt := i.Data.Option("mode"); opt != nil {
		mode = opt.StringValue()
	}
	if err := h.service.SetLoop(i.GuildID, mode); err != nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, userErrorMessage(err), true)
	}
	return h.client.RespondWithMessage(ctx, i.ID, i.Token,
		fmt.Sprintf("%s Loop mode set to %s.", constants.EmoteMusic, mode), false)
}

func (h *MusicHandler) handleShuffle(ctx context.Context, i *discord.Interaction) error {
	if err := h.service.Shuffle(i.GuildID); err != nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, userErrorMessage(err), true)
	}
	return h.client.RespondWithMessage(ctx, i.ID, i.Token, constants.EmoteMusic+" Queue shuffled.", false)
}

func (h *MusicHandler) handleRemove(ctx context.Context, i *discord.Interaction) error {
	position := 0
	if opt := i.Data.Option("position"); opt != nil {
		position = int(opt.IntValue())
	}
	removed, err := h.service.Remove(i.GuildID, position)
	if err != nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, userErrorMessage(err), true)
	}
	return h.client.RespondWithMessage(ctx, i.ID, i.Token,
		fmt.Sprintf("%s Removed **%s** from the queue.", constants.EmoteMusic, removed.Title), false)
}

func (h *MusicHandler) handleNowPlaying(ctx context.Context, i *discord.Interaction) error {
	current := h.service.NowPlaying(i.GuildID)
	if current == nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, constants.EmoteInfo+" Nothing is playing.", true)
	}
	return h.client.RespondToInteraction(ctx, i.ID, i.Token, discord.InteractionResponse{
		Type: discord.CallbackTypeChannelMessage,
		Data: &discord.InteractionResponseData{
			Embeds: []discord.Embed{{
				Title:       constants.EmoteMusic + " Now playing",
				Description: fmt.Sprintf("**%s**\nby %s\n%s", current.Title, current.Author, formatDuration(current.Length)),
				Color:       constants.ColorPurple,
				Footer:      &discord.EmbedFooter{Text: "Requested by " + current.RequestedBy},
			}},
		},
	})
}

func (h *MusicHandler) handleQueue(ctx context.Context, i *discord.Interaction) error {
	view := h.service.Queue(i.GuildID)
	if view.Current == nil && len(view.Tracks) == 0 {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, constants.EmoteInfo+" The queue is empty.", true)
	}

	var b strings.Builder
	if view.Current != nil {
		fmt.Fprintf(&b, "Now: **%s** by %s\n", view.Current.Title, view.Current.Author)
	}
	for idx, t := range view.Tracks {
		if idx >= 10 {
			fmt.Fprintf(&b, "… and %d more\n", len(view.Tracks)-idx)
			break
		}
		fmt.Fprintf(&b, "%d. %s — %s\n", idx+1, t.Title, t.Author)
	}
	fmt.Fprintf(&b, "Loop: %s", view.Loop)

	return h.client.RespondToInteraction(ctx, i.ID, i.Token, discord.InteractionResponse{
		Type: discord.CallbackTypeChannelMessage,
		Data: &discord.InteractionResponseData{
			Embeds: []discord.Embed{{
				Title:       constants.EmoteMusic + " Queue",
				Description: b.String(),
				Color:       constants.ColorPurple,
			}},
		},
	})
}

func formatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
