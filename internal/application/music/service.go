package music

import (
	"context"
	"strings"
	"sync"
	"time"

	domain "rubybot/internal/domain/music"
	"rubybot/internal/infrastructure/lavalink"
	apperrors "rubybot/internal/shared/errors"
	"rubybot/internal/shared/logger"
)

const (
	minVolume = 0
	maxVolume = 200
)

// Player drives the audio node. The bot layer adapts the Lavalink client and
// node session to it.
type Player interface {
	Load(ctx context.Context, identifier string) ([]lavalink.Track, error)
	Play(ctx context.Context, guildID, encoded string) error
	Stop(ctx context.Context, guildID string) error
	Pause(ctx context.Context, guildID string, paused bool) error
	SetVolume(ctx context.Context, guildID string, volume int) error
	Destroy(ctx context.Context, guildID string) error
}

// VoiceGateway joins and leaves voice channels through the Discord gateway.
type VoiceGateway interface {
	JoinVoice(guildID, channelID string) error
	LeaveVoice(guildID string) error
}

type PlayCommand struct {
	GuildID        string
	VoiceChannelID string
	Query          string
	RequestedBy    string
}

type PlayResult struct {
	Track    domain.Track
	Queued   bool
	Position int
}

type QueueView struct {
	Current *domain.Track
	Tracks  []domain.Track
	Loop    domain.LoopMode
}

// Service holds one queue per guild and dispatches playback to the node.
// Audio streaming itself is fully delegated; this layer only decides what
// plays next.
type Service struct {
	player Player
	voice  VoiceGateway
	logger logger.Interface

	mu     sync.Mutex
	queues map[string]*domain.Queue
}

func NewService(player Player, voice VoiceGateway, log logger.Interface) *Service {
	return &Service{
		player: player,
		voice:  voice,
		logger: log,
		queues: make(map[string]*domain.Queue),
	}
}

// Play resolves the query, enqueues the first match and starts playback when
// the player is idle. Plain text queries are searched; URLs load directly.
func (s *Service) Play(ctx context.Context, cmd PlayCommand) (*PlayResult, error) {
	if cmd.GuildID == "" || cmd.Query == "" {
		return nil, apperrors.NewValidationError("guild ID and query are required")
	}
	if cmd.VoiceChannelID == "" {
		return nil, apperrors.NewValidationError("join a voice channel first")
	}

	identifier := cmd.Query
	if !strings.HasPrefix(identifier, "http://") && !strings.HasPrefix(identifier, "https://") {
		identifier = "ytsearch:" + identifier
	}

	tracks, err := s.player.Load(ctx, identifier)
	if err != nil {
		s.logger.Errorw("failed to load tracks", "guild_id", cmd.GuildID, "query", cmd.Query, "error", err)
		return nil, apperrors.NewUnavailableError("failed to reach the audio node")
	}
	if len(tracks) == 0 {
		return nil, apperrors.NewNotFoundError("no tracks found for that query")
	}

	track := domain.Track{
		Encoded:     tracks[0].Encoded,
		Title:       tracks[0].Info.Title,
		Author:      tracks[0].Info.Author,
		URI:         tracks[0].Info.URI,
		Length:      tracks[0].Info.Length,
		RequestedBy: cmd.RequestedBy,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.queueLocked(cmd.GuildID)
	q.Enqueue(track)

	if q.Current() != nil {
		return &PlayResult{Track: track, Queued: true, Position: q.Len()}, nil
	}

	if err := s.voice.JoinVoice(cmd.GuildID, cmd.VoiceChannelID); err != nil {
		s.logger.Errorw("failed to join voice channel", "guild_id", cmd.GuildID, "error", err)
		return nil, apperrors.NewUnavailableError("failed to join the voice channel")
	}

	next := q.Next()
	if err := s.player.Play(ctx, cmd.GuildID, next.Encoded); err != nil {
		s.logger.Errorw("failed to start playback", "guild_id", cmd.GuildID, "error", err)
		return nil, apperrors.NewUnavailableError("failed to start playback")
	}

	return &PlayResult{Track: track}, nil
}

// Skip drops the current track and starts the next one, or stops when the
// queue is empty.
func (s *Service) Skip(ctx context.Context, guildID string) (*domain.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.queueLocked(guildID)
	if q.Current() == nil {
		return nil, apperrors.NewNotFoundError("nothing is playing")
	}

	next := q.Skip()
	if next == nil {
		if err := s.player.Stop(ctx, guildID); err != nil {
			s.logger.Warnw("failed to stop playback after skip", "guild_id", guildID, "error", err)
		}
		return nil, nil
	}

	if err := s.player.Play(ctx, guildID, next.Encoded); err != nil {
		s.logger.Errorw("failed to play next track", "guild_id", guildID, "error", err)
		return nil, apperrors.NewUnavailableError("failed to play the next track")
	}
	return next, nil
}

// Stop clears the queue, destroys the player and leaves the voice channel.
func (s *Service) Stop(ctx context.Context, guildID string) error {
	s.mu.Lock()
	q := s.queueLocked(guildID)
	q.Clear()
	s.mu.Unlock()

	if err := s.player.Destroy(ctx, guildID); err != nil {
		s.logger.Warnw("failed to destroy player", "guild_id", guildID, "error", err)
	}
	if err := s.voice.LeaveVoice(guildID); err != nil {
		s.logger.Warnw("failed to leave voice channel", "guild_id", guildID, "error", err)
	}
	return nil
}

// Pause pauses or resumes playback.
func (s *Service) Pause(ctx context.Context, guildID string, paused bool) error {
	s.mu.Lock()
	current := s.queueLocked(guildID).Current()
	s.mu.Unlock()
	if current == nil {
		return apperrors.NewNotFoundError("nothing is playing")
	}

	if err := s.player.Pause(ctx, guildID, paused); err != nil {
		s.logger.Errorw("failed to set pause state", "guild_id", guildID, "paused", paused, "error", err)
		return apperrors.NewUnavailableError("failed to update playback")
	}
	return nil
}

// SetVolume sets the player volume between 0 and 200.
func (s *Service) SetVolume(ctx context.Context, guildID string, volume int) error {
	if volume < minVolume || volume > maxVolume {
		return apperrors.NewValidationError("volume must be between 0 and 200")
	}
	if err := s.player.SetVolume(ctx, guildID, volume); err != nil {
		s.logger.Errorw("failed to set volume", "guild_id", guildID, "volume", volume, "error", err)
		return apperrors.NewUnavailableError("failed to set volume")
	}
	return nil
}

// SetLoop switches the loop mode for the guild queue.
func (s *Service) SetLoop(guildID, mode string) error {
	loop, ok := domain.ParseLoopMode(mode)
	if !ok {
		return apperrors.NewValidationError("loop mode must be off, track or queue")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.queueLocked(guildID).SetLoop(loop)
	return nil
}

// Remove drops the queued track at the given one-based position.
func (s *Service) Remove(guildID string, position int) (*domain.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.queueLocked(guildID)
	removed, ok := q.Remove(position - 1)
	if !ok {
		return nil, apperrors.NewValidationError("no queued track at that position")
	}
	return removed, nil
}

// Shuffle randomizes the pending tracks.
func (s *Service) Shuffle(guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.queueLocked(guildID)
	if q.Len() < 2 {
		return apperrors.NewValidationError("not enough queued tracks to shuffle")
	}
	q.Shuffle()
	return nil
}

// NowPlaying returns the current track, or nil when idle.
func (s *Service) NowPlaying(guildID string) *domain.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queueLocked(guildID).Current()
}

// Queue returns a snapshot of the guild queue.
func (s *Service) Queue(guildID string) *QueueView {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.queueLocked(guildID)
	return &QueueView{
		Current: q.Current(),
		Tracks:  q.Tracks(),
		Loop:    q.Loop(),
	}
}

// OnTrackEnd advances the queue when the node reports a finished track.
// Stopped and replaced tracks were ended deliberately and don't advance.
func (s *Service) OnTrackEnd(guildID, reason string) {
	if reason == lavalink.TrackEndReasonStopped || reason == lavalink.TrackEndReasonReplaced {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.mu.Lock()
	next := s.queueLocked(guildID).Next()
	s.mu.Unlock()

	if next == nil {
		_ = s.Stop(ctx, guildID)
		return
	}

	if err := s.player.Play(ctx, guildID, next.Encoded); err != nil {
		s.logger.Errorw("failed to play next track", "guild_id", guildID, "error", err)
	}
}

// OnTrackException logs the failure and moves on to the next track.
func (s *Service) OnTrackException(guildID, message string) {
	s.logger.Warnw("track playback failed", "guild_id", guildID, "reason", message)
	s.OnTrackEnd(guildID, lavalink.TrackEndReasonFinished)
}

func (s *Service) queueLocked(guildID string) *domain.Queue {
	q, ok := s.queues[guildID]
	if !ok {
		q = domain.NewQueue()
		s.queues[guildID] = q
	}
	return q
}
