package music

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rubybot/internal/infrastructure/lavalink"
	apperrors "rubybot/internal/shared/errors"
	"rubybot/internal/shared/logger"
)

type mockPlayer struct {
	LoadFunc      func(ctx context.Context, identifier string) ([]lavalink.Track, error)
	PlayFunc      func(ctx context.Context, guildID, encoded string) error
	StopFunc      func(ctx context.Context, guildID string) error
	PauseFunc     func(ctx context.Context, guildID string, paused bool) error
	SetVolumeFunc func(ctx context.Context, guildID string, volume int) error
	DestroyFunc   func(ctx context.Context, guildID string) error
}

func (m *mockPlayer) Load(ctx context.Context, identifier string) ([]lavalink.Track, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, identifier)
	}
	return []lavalink.Track{{
		Encoded: "enc-default",
		Info:    lavalink.TrackInfo{Title: "default", Author: "someone", Length: 1000},
	}}, nil
}

func (m *mockPlayer) Play(ctx context.Context, guildID, encoded string) error {
	if m.PlayFunc != nil {
		return m.PlayFunc(ctx, guildID, encoded)
	}
	return nil
}

func (m *mockPlayer) Stop(ctx context.Context, guildID string) error {
	if m.StopFunc != nil {
		return m.StopFunc(ctx, guildID)
	}
	return nil
}

func (m *mockPlayer) Pause(ctx context.Context, guildID string, paused bool) error {
	if m.PauseFunc != nil {
		return m.PauseFunc(ctx, guildID, paused)
	}
	return nil
}

func (m *mockPlayer) SetVolume(ctx context.Context, guildID string, volume int) error {
	if m.SetVolumeFunc != nil {
		return m.SetVolumeFunc(ctx, guildID, volume)
	}
	return nil
}

func (m *mockPlayer) Destroy(ctx context.Context, guildID string) error {
	if m.DestroyFunc != nil {
		return m.DestroyFunc(ctx, guildID)
	}
	return nil
}

type mockVoiceGateway struct {
	JoinVoiceFunc  func(guildID, channelID string) error
	LeaveVoiceFunc func(guildID string) error
}

func (m *mockVoiceGateway) JoinVoice(guildID, channelID string) error {
	if m.JoinVoiceFunc != nil {
		return m.JoinVoiceFunc(guildID, channelID)
	}
	return nil
}

func (m *mockVoiceGateway) LeaveVoice(guildID string) error {
	if m.LeaveVoiceFunc != nil {
		return m.LeaveVoiceFunc(guildID)
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

func playCmd(query string) PlayCommand {
	return PlayCommand{
		GuildID:        "guild-1",
		VoiceChannelID: "voice-1",
		Query:          query,
		RequestedBy:    "user-1",
	}
}

func TestService_Play(t *testing.T) {
	t.Run("plain text query is searched", func(t *testing.T) {
		var loaded string
		player := &mockPlayer{
			LoadFunc: func(ctx context.Context, identifier string) ([]lavalink.Track, error) {
				loaded = identifier
				return []lavalink.Track{{Encoded: "enc-1", Info: lavalink.TrackInfo{Title: "song"}}}, nil
			},
		}

		svc := NewService(player, &mockVoiceGateway{}, &mockLogger{})
		result, err := svc.Play(context.Background(), playCmd("never gonna give you up"))

		require.NoError(t, err)
		assert.Equal(t, "ytsearch:never gonna give you up", loaded)
		assert.False(t, result.Queued)
		assert.Equal(t, "song", result.Track.Title)
	})

	t.Run("URL query loads directly", func(t *testing.T) {
		var loaded string
		player := &mockPlayer{
			LoadFunc: func(ctx context.Context, identifier string) ([]lavalink.Track, error) {
				loaded = identifier
				return []lavalink.Track{{Encoded: "enc-1"}}, nil
			},
		}

		svc := NewService(player, &mockVoiceGateway{}, &mockLogger{})
		_, err := svc.Play(context.Background(), playCmd("https://example.com/watch?v=abc"))

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/watch?v=abc", loaded)
	})

	t.Run("idle player joins voice and starts playback", func(t *testing.T) {
		var joinedChannel, playedEncoded string
		player := &mockPlayer{
			PlayFunc: func(ctx context.Context, guildID, encoded string) error {
				playedEncoded = encoded
				return nil
			},
		}
		voice := &mockVoiceGateway{
			JoinVoiceFunc: func(guildID, channelID string) error {
				joinedChannel = channelID
				return nil
			},
		}

		svc := NewService(player, voice, &mockLogger{})
		result, err := svc.Play(context.Background(), playCmd("song"))

		require.NoError(t, err)
		assert.Equal(t, "voice-1", joinedChannel)
		assert.Equal(t, "enc-default", playedEncoded)
		assert.False(t, result.Queued)
	})

	t.Run("busy player queues the track", func(t *testing.T) {
		playCalls := 0
		player := &mockPlayer{
			PlayFunc: func(ctx context.Context, guildID, encoded string) error {
				playCalls++
				return nil
			},
		}

		svc := NewService(player, &mockVoiceGateway{}, &mockLogger{})
		_, err := svc.Play(context.Background(), playCmd("first"))
		require.NoError(t, err)

		result, err := svc.Play(context.Background(), playCmd("second"))
		require.NoError(t, err)
		assert.True(t, result.Queued)
		assert.Equal(t, 1, result.Position)
		assert.Equal(t, 1, playCalls, "queued track must not interrupt playback")
	})

	t.Run("no results maps to not found", func(t *testing.T) {
		player := &mockPlayer{
			LoadFunc: func(ctx context.Context, identifier string) ([]lavalink.Track, error) {
				return nil, nil
			},
		}

		svc := NewService(player, &mockVoiceGateway{}, &mockLogger{})
		_, err := svc.Play(context.Background(), playCmd("nothing"))
		assert.True(t, apperrors.IsNotFoundError(err))
	})

	t.Run("requires a voice channel", func(t *testing.T) {
		svc := NewService(&mockPlayer{}, &mockVoiceGateway{}, &mockLogger{})
		cmd := playCmd("song")
		cmd.VoiceChannelID = ""

		_, err := svc.Play(context.Background(), cmd)
		assert.True(t, apperrors.IsValidationError(err))
	})
}

func TestService_Skip(t *testing.T) {
	t.Run("skip advances to the next track", func(t *testing.T) {
		svc := NewService(&mockPlayer{}, &mockVoiceGateway{}, &mockLogger{})
		_, err := svc.Play(context.Background(), playCmd("first"))
		require.NoError(t, err)
		_, err = svc.Play(context.Background(), playCmd("second"))
		require.NoError(t, err)

		next, err := svc.Skip(context.Background(), "guild-1")
		require.NoError(t, err)
		require.NotNil(t, next)
	})

	t.Run("skip with empty queue stops playback", func(t *testing.T) {
		stopped := false
		player := &mockPlayer{
			StopFunc: func(ctx context.Context, guildID string) error {
				stopped = true
				return nil
			},
		}

		svc := NewService(player, &mockVoiceGateway{}, &mockLogger{})
		_, err := svc.Play(context.Background(), playCmd("only"))
		require.NoError(t, err)

		next, err := svc.Skip(context.Background(), "guild-1")
		require.NoError(t, err)
		assert.Nil(t, next)
		assert.True(t, stopped)
	})

	t.Run("skip with nothing playing maps to not found", func(t *testing.T) {
		svc := NewService(&mockPlayer{}, &mockVoiceGateway{}, &mockLogger{})
		_, err := svc.Skip(context.Background(), "guild-1")
		assert.True(t, apperrors.IsNotFoundError(err))
	})
}

func TestService_Stop(t *testing.T) {
	destroyed := false
	left := false
	player := &mockPlayer{
		DestroyFunc: func(ctx context.Context, guildID string) error {
			destroyed = true
			return nil
		},
	}
	voice := &mockVoiceGateway{
		LeaveVoiceFunc: func(guildID string) error {
			left = true
			return nil
		},
	}

	svc := NewService(player, voice, &mockLogger{})
	_, err := svc.Play(context.Background(), playCmd("song"))
	require.NoError(t, err)

	require.NoError(t, svc.Stop(context.Background(), "guild-1"))
	assert.True(t, destroyed)
	assert.True(t, left)
	assert.Nil(t, svc.NowPlaying("guild-1"))
}

func TestService_SetVolume(t *testing.T) {
	svc := NewService(&mockPlayer{}, &mockVoiceGateway{}, &mockLogger{})

	assert.NoError(t, svc.SetVolume(context.Background(), "guild-1", 100))
	assert.True(t, apperrors.IsValidationError(svc.SetVolume(context.Background(), "guild-1", -1)))
	assert.True(t, apperrors.IsValidationError(svc.SetVolume(context.Background(), "guild-1", 201)))
}

func TestService_SetLoop(t *testing.T) {
	svc := NewService(&mockPlayer{}, &mockVoiceGateway{}, &mockLogger{})

	require.NoError(t, svc.SetLoop("guild-1", "track"))
	view := svc.Queue("guild-1")
	assert.Equal(t, "track", string(view.Loop))

	assert.True(t, apperrors.IsValidationError(svc.SetLoop("guild-1", "banana")))
}

func TestService_Shuffle(t *testing.T) {
	svc := NewService(&mockPlayer{}, &mockVoiceGateway{}, &mockLogger{})

	err := svc.Shuffle("guild-1")
	assert.True(t, apperrors.IsValidationError(err), "empty queue cannot shuffle")

	for _, q := range []string{"a", "b", "c"} {
		_, err := svc.Play(context.Background(), playCmd(q))
		require.NoError(t, err)
	}

	assert.NoError(t, svc.Shuffle("guild-1"))
	assert.Len(t, svc.Queue("guild-1").Tracks, 2)
}

func TestService_Remove(t *testing.T) {
	player := &mockPlayer{
		LoadFunc: func(ctx context.Context, identifier string) ([]lavalink.Track, error) {
			return []lavalink.Track{{Encoded: "enc", Info: lavalink.TrackInfo{Title: identifier}}}, nil
		},
	}
	svc := NewService(player, &mockVoiceGateway{}, &mockLogger{})
	for _, q := range []string{"https://one", "https://two", "https://three"} {
		_, err := svc.Play(context.Background(), playCmd(q))
		require.NoError(t, err)
	}

	removed, err := svc.Remove("guild-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "https://two", removed.Title)
	assert.Len(t, svc.Queue("guild-1").Tracks, 1)

	_, err = svc.Remove("guild-1", 9)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestService_OnTrackEnd(t *testing.T) {
	t.Run("finished track advances the queue", func(t *testing.T) {
		var played []string
		player := &mockPlayer{
			PlayFunc: func(ctx context.Context, guildID, encoded string) error {
				played = append(played, encoded)
				return nil
			},
			LoadFunc: func(ctx context.Context, identifier string) ([]lavalink.Track, error) {
				return []lavalink.Track{{Encoded: "enc:" + identifier}}, nil
			},
		}

		svc := NewService(player, &mockVoiceGateway{}, &mockLogger{})
		_, err := svc.Play(context.Background(), playCmd("https://one"))
		require.NoError(t, err)
		_, err = svc.Play(context.Background(), playCmd("https://two"))
		require.NoError(t, err)

		svc.OnTrackEnd("guild-1", lavalink.TrackEndReasonFinished)

		require.Len(t, played, 2)
		assert.Equal(t, "enc:https://two", played[1])
	})

	t.Run("stopped track does not advance", func(t *testing.T) {
		playCalls := 0
		player := &mockPlayer{
			PlayFunc: func(ctx context.Context, guildID, encoded string) error {
				playCalls++
				return nil
			},
		}

		svc := NewService(player, &mockVoiceGateway{}, &mockLogger{})
		_, err := svc.Play(context.Background(), playCmd("song"))
		require.NoError(t, err)

		svc.OnTrackEnd("guild-1", lavalink.TrackEndReasonStopped)
		assert.Equal(t, 1, playCalls)
	})

	t.Run("exhausted queue tears the player down", func(t *testing.T) {
		destroyed := false
		player := &mockPlayer{
			DestroyFunc: func(ctx context.Context, guildID string) error {
				destroyed = true
				return nil
			},
		}

		svc := NewService(player, &mockVoiceGateway{}, &mockLogger{})
		_, err := svc.Play(context.Background(), playCmd("song"))
		require.NoError(t, err)

		svc.OnTrackEnd("guild-1", lavalink.TrackEndReasonFinished)
		assert.True(t, destroyed)
	})
}
