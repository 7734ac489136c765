package bot

import (
	"context"

	"rubybot/internal/infrastructure/discord"
)

// slashCommands is the full command surface the bot registers on startup.
func slashCommands() []discord.ApplicationCommand {
	return []discord.ApplicationCommand{
		{
			Name:        "ticket",
			Description: "Support ticket management",
			Options: []discord.ApplicationCommandOption{
				{
					Type:        discord.OptionTypeSubcommand,
					Name:        "open",
					Description: "Open a support ticket",
					Options: []discord.ApplicationCommandOption{
						{Type: discord.OptionTypeString, Name: "category", Description: "What the ticket is about"},
					},
				},
				{Type: discord.OptionTypeSubcommand, Name: "close", Description: "Request closing this ticket"},
				{Type: discord.OptionTypeSubcommand, Name: "claim", Description: "Claim this ticket"},
				{Type: discord.OptionTypeSubcommand, Name: "transcript", Description: "Export this ticket's transcript"},
				{Type: discord.OptionTypeSubcommand, Name: "delete", Description: "Delete this ticket channel"},
				{Type: discord.OptionTypeSubcommand, Name: "stats", Description: "Show ticket statistics"},
				{
					Type:        discord.OptionTypeSubcommand,
					Name:        "setup",
					Description: "Post the ticket panel and save settings",
					Options: []discord.ApplicationCommandOption{
						{Type: discord.OptionTypeChannel, Name: "channel", Description: "Channel for the panel"},
						{Type: discord.OptionTypeRole, Name: "role", Description: "Ticket manager role"},
						{Type: discord.OptionTypeChannel, Name: "logs", Description: "Ticket log channel"},
					},
				},
			},
		},
		{
			Name:        "welcome",
			Description: "Welcome and goodbye messages",
			Options: []discord.ApplicationCommandOption{
				{
					Type:        discord.OptionTypeSubcommand,
					Name:        "setup",
					Description: "Enable and configure welcome messages",
					Options: []discord.ApplicationCommandOption{
						{Type: discord.OptionTypeChannel, Name: "channel", Description: "Welcome channel"},
						{Type: discord.OptionTypeString, Name: "title", Description: "Embed title template"},
						{Type: discord.OptionTypeString, Name: "description", Description: "Embed description template"},
						{Type: discord.OptionTypeString, Name: "footer", Description: "Embed footer template"},
						{Type: discord.OptionTypeString, Name: "color", Description: "Embed color (name or hex)"},
						{Type: discord.OptionTypeString, Name: "image", Description: "Embed image URL"},
						{Type: discord.OptionTypeString, Name: "thumbnail", Description: "Embed thumbnail URL"},
						{Type: discord.OptionTypeInteger, Name: "autodelete", Description: "Delete the message after N seconds"},
					},
				},
				{
					Type:        discord.OptionTypeSubcommand,
					Name:        "goodbye",
					Description: "Enable and configure goodbye messages",
					Options: []discord.ApplicationCommandOption{
						{Type: discord.OptionTypeChannel, Name: "channel", Description: "Goodbye channel"},
						{Type: discord.OptionTypeString, Name: "message", Description: "Goodbye message template"},
					},
				},
				{Type: discord.OptionTypeSubcommand, Name: "disable", Description: "Disable welcome messages"},
				{Type: discord.OptionTypeSubcommand, Name: "test", Description: "Send a test welcome message"},
				{Type: discord.OptionTypeSubcommand, Name: "status", Description: "Show the current settings"},
				{Type: discord.OptionTypeSubcommand, Name: "reset", Description: "Remove all welcome settings"},
			},
		},
		{
			Name:        "play",
			Description: "Play a track or add it to the queue",
			Options: []discord.ApplicationCommandOption{
				{Type: discord.OptionTypeString, Name: "query", Description: "Search text or URL", Required: true},
			},
		},
		{Name: "skip", Description: "Skip the current track"},
		{Name: "stop", Description: "Stop playback and clear the queue"},
		{Name: "pause", Description: "Pause playback"},
		{Name: "resume", Description: "Resume playback"},
		{
			Name:        "volume",
			Description: "Set the playback volume",
			Options: []discord.ApplicationCommandOption{
				{Type: discord.OptionTypeInteger, Name: "level", Description: "Volume between 0 and 200", Required: true},
			},
		},
		{
			Name:        "loop",
			Description: "Set the loop mode",
			Options: []discord.ApplicationCommandOption{
				{Type: discord.OptionTypeString, Name: "mode", Description: "off, track or queue", Required: true},
			},
		},
		{Name: "shuffle", Description: "Shuffle the queue"},
		{
			Name:        "remove",
			Description: "Remove a track from the queue",
			Options: []discord.ApplicationCommandOption{
				{Type: discord.OptionTypeInteger, Name: "position", Description: "Queue position to remove", Required: true},
			},
		},
		{Name: "nowplaying", Description: "Show the current track"},
		{Name: "queue", Description: "Show the queue"},
	}
}

// registerCommands overwrites the global command set.
func registerCommands(ctx context.Context, client *discord.Client) error {
	return client.RegisterGlobalCommands(ctx, slashCommands())
}
