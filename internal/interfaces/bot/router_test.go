package bot

import (
	"context"
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rubybot/internal/infrastructure/discord"
	"rubybot/internal/shared/logger"
)

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

func newTestRouter(fetch func(ctx context.Context, guildID string) (*discord.Guild, error)) *EventRouter {
	return &EventRouter{
		fetchGuild: fetch,
		logger:     &mockLogger{},
		guilds:     make(map[string]*guildInfo),
	}
}

func TestEventRouter_AdjustMemberCount(t *testing.T) {
	ctx := context.Background()

	t.Run("cached guild applies the delta", func(t *testing.T) {
		router := newTestRouter(func(ctx context.Context, guildID string) (*discord.Guild, error) {
			t.Fatal("cached guild must not trigger a fetch")
			return nil, nil
		})
		router.guilds["guild-1"] = &guildInfo{name: "Ruby Lounge", memberCount: 49}

		name, count := router.adjustMemberCount(ctx, "guild-1", 1)
		assert.Equal(t, "Ruby Lounge", name)
		assert.Equal(t, 50, count)

		name, count = router.adjustMemberCount(ctx, "guild-1", -1)
		assert.Equal(t, "Ruby Lounge", name)
		assert.Equal(t, 49, count)
	})

	t.Run("cache miss falls back to the REST guild", func(t *testing.T) {
		fetches := 0
		router := newTestRouter(func(ctx context.Context, guildID string) (*discord.Guild, error) {
			fetches++
			assert.Equal(t, "guild-1", guildID)
			return &discord.Guild{ID: guildID, Name: "Ruby Lounge", ApproximateMemberCount: 50}, nil
		})

		name, count := router.adjustMemberCount(ctx, "guild-1", 1)
		assert.Equal(t, "Ruby Lounge", name)
		assert.Equal(t, 50, count, "REST count already includes the join")
		require.Equal(t, 1, fetches)

		// The fetched guild is cached; the next event adjusts locally.
		name, count = router.adjustMemberCount(ctx, "guild-1", 1)
		assert.Equal(t, "Ruby Lounge", name)
		assert.Equal(t, 51, count)
		assert.Equal(t, 1, fetches)
	})

	t.Run("gateway count used when the REST count is absent", func(t *testing.T) {
		router := newTestRouter(func(ctx context.Context, guildID string) (*discord.Guild, error) {
			return &discord.Guild{ID: guildID, Name: "Ruby Lounge", MemberCount: 12}, nil
		})

		_, count := router.adjustMemberCount(ctx, "guild-1", 1)
		assert.Equal(t, 12, count)
	})

	t.Run("fetch failure renders without guild context", func(t *testing.T) {
		router := newTestRouter(func(ctx context.Context, guildID string) (*discord.Guild, error) {
			return nil, errors.New("boom")
		})

		name, count := router.adjustMemberCount(ctx, "guild-1", 1)
		assert.Empty(t, name)
		assert.Zero(t, count)
	})
}

func TestTruncateUTF8(t *testing.T) {
	t.Run("short string untouched", func(t *testing.T) {
		assert.Equal(t, "hello", truncateUTF8("hello", 10))
	})

	t.Run("ascii cut at the limit", func(t *testing.T) {
		assert.Equal(t, "hel", truncateUTF8("hello", 3))
	})

	t.Run("multi-byte rune never split", func(t *testing.T) {
		s := "abécd" // é is two bytes, starting at index 2
		got := truncateUTF8(s, 3)
		assert.Equal(t, "ab", got)
		assert.True(t, utf8.ValidString(got))
	})

	t.Run("cut lands on a rune boundary", func(t *testing.T) {
		s := "ééé"
		got := truncateUTF8(s, 4)
		assert.Equal(t, "éé", got)
		assert.True(t, utf8.ValidString(got))
	})
}
