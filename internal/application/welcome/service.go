package welcome

import (
	"context"
	"time"

	domain "rubybot/internal/domain/welcome"
	"rubybot/internal/infrastructure/discord"
	apperrors "rubybot/internal/shared/errors"
	"rubybot/internal/shared/goroutine"
	"rubybot/internal/shared/logger"
)

// Default templates used when a guild enables welcomes without customizing
// them.
const (
	defaultTitle       = "Welcome!"
	defaultDescription = "Welcome {user} to {server}!"
	defaultGoodbye     = "{username} has left {server}."
)

// Embed is the rendered welcome message handed to the messenger.
type Embed struct {
	Title       string
	Description string
	Footer      string
	Color       int
	Image       string
	Thumbnail   string
}

// Messenger is the Discord surface the welcome flow needs.
type Messenger interface {
	SendEmbed(ctx context.Context, channelID string, embed Embed) (string, error)
	SendMessage(ctx context.Context, channelID, content string) (string, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

// MemberEvent describes a member joining or leaving a guild.
type MemberEvent struct {
	GuildID     string
	UserID      string
	Username    string
	GuildName   string
	MemberCount int
}

// Service renders and dispatches welcome and goodbye messages from per-guild
// settings.
type Service struct {
	repo      domain.Repository
	messenger Messenger
	logger    logger.Interface
}

func NewService(repo domain.Repository, messenger Messenger, log logger.Interface) *Service {
	return &Service{
		repo:      repo,
		messenger: messenger,
		logger:    log,
	}
}

// OnMemberJoin sends the configured welcome message. Missing or disabled
// settings make this a silent no-op; a permission rejection from Discord is
// logged and swallowed so the event loop keeps running.
func (s *Service) OnMemberJoin(ctx context.Context, ev MemberEvent) error {
	settings, err := s.repo.Get(ctx, ev.GuildID)
	if err != nil {
		s.logger.Errorw("failed to load welcome settings", "guild_id", ev.GuildID, "error", err)
		return apperrors.NewInternalError("failed to load welcome settings")
	}
	if settings == nil || !settings.Enabled || settings.ChannelID == nil {
		return nil
	}

	p := Placeholders{
		Mention:     "<@" + ev.UserID + ">",
		Username:    ev.Username,
		ServerName:  ev.GuildName,
		MemberCount: ev.MemberCount,
	}

	title := defaultTitle
	if settings.Title != nil {
		title = *settings.Title
	}
	description := defaultDescription
	if settings.Description != nil {
		description = *settings.Description
	}

	embed := Embed{
		Title:       Render(title, p),
		Description: Render(description, p),
		Color:       ParseColor(stringValue(settings.Color)),
	}
	if settings.Footer != nil {
		embed.Footer = Render(*settings.Footer, p)
	}
	if settings.Image != nil {
		embed.Image = *settings.Image
	}
	if settings.Thumbnail != nil {
		embed.Thumbnail = *settings.Thumbnail
	}

	messageID, err := s.messenger.SendEmbed(ctx, *settings.ChannelID, embed)
	if err != nil {
		if discord.IsPermissionError(err) {
			s.logger.Warnw("missing permission to send welcome message",
				"guild_id", ev.GuildID,
				"channel_id", *settings.ChannelID,
			)
			return nil
		}
		s.logger.Errorw("failed to send welcome message", "guild_id", ev.GuildID, "error", err)
		return apperrors.NewInternalError("failed to send welcome message")
	}

	if settings.AutoDeleteAfter != nil && *settings.AutoDeleteAfter > 0 {
		s.scheduleDelete(*settings.ChannelID, messageID, time.Duration(*settings.AutoDeleteAfter)*time.Second)
	}

	return nil
}

// OnMemberLeave sends the configured goodbye message when enabled.
func (s *Service) OnMemberLeave(ctx context.Context, ev MemberEvent) error {
	settings, err := s.repo.Get(ctx, ev.GuildID)
	if err != nil {
		s.logger.Errorw("failed to load welcome settings", "guild_id", ev.GuildID, "error", err)
		return apperrors.NewInternalError("failed to load welcome settings")
	}
	if settings == nil || !settings.GoodbyeEnabled || settings.GoodbyeChannelID == nil {
		return nil
	}

	message := defaultGoodbye
	if settings.GoodbyeMessage != nil {
		message = *settings.GoodbyeMessage
	}
	rendered := Render(message, Placeholders{
		Mention:     "<@" + ev.UserID + ">",
		Username:    ev.Username,
		ServerName:  ev.GuildName,
		MemberCount: ev.MemberCount,
	})

	if _, err := s.messenger.SendMessage(ctx, *settings.GoodbyeChannelID, rendered); err != nil {
		if discord.IsPermissionError(err) {
			s.logger.Warnw("missing permission to send goodbye message",
				"guild_id", ev.GuildID,
				"channel_id", *settings.GoodbyeChannelID,
			)
			return nil
		}
		s.logger.Errorw("failed to send goodbye message", "guild_id", ev.GuildID, "error", err)
		return apperrors.NewInternalError("failed to send goodbye message")
	}

	return nil
}

// UpdateSettings applies a partial settings change for the guild.
func (s *Service) UpdateSettings(ctx context.Context, guildID string, patch domain.Patch) error {
	if guildID == "" {
		return apperrors.NewValidationError("guild ID is required")
	}
	if err := s.repo.Upsert(ctx, guildID, patch); err != nil {
		s.logger.Errorw("failed to update welcome settings", "guild_id", guildID, "error", err)
		return apperrors.NewInternalError("failed to update welcome settings")
	}
	return nil
}

// GetSettings returns the guild settings, or nil when never configured.
func (s *Service) GetSettings(ctx context.Context, guildID string) (*domain.Settings, error) {
	settings, err := s.repo.Get(ctx, guildID)
	if err != nil {
		s.logger.Errorw("failed to load welcome settings", "guild_id", guildID, "error", err)
		return nil, apperrors.NewInternalError("failed to load welcome settings")
	}
	return settings, nil
}

// Reset removes all welcome configuration for the guild.
func (s *Service) Reset(ctx context.Context, guildID string) error {
	if err := s.repo.Delete(ctx, guildID); err != nil {
		s.logger.Errorw("failed to reset welcome settings", "guild_id", guildID, "error", err)
		return apperrors.NewInternalError("failed to reset welcome settings")
	}
	return nil
}

func (s *Service) scheduleDelete(channelID, messageID string, after time.Duration) {
	goroutine.SafeGo(s.logger, "welcome-auto-delete", func() {
		time.Sleep(after)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.messenger.DeleteMessage(ctx, channelID, messageID); err != nil {
			s.logger.Warnw("failed to auto-delete welcome message",
				"channel_id", channelID,
				"message_id", messageID,
				"error", err,
			)
		}
	})
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
