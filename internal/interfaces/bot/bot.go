package bot

import (
	"context"
	"time"

	appmusic "rubybot/internal/application/music"
	ticketusecases "rubybot/internal/application/ticket/usecases"
	appwelcome "rubybot/internal/application/welcome"
	"rubybot/internal/domain/ticket"
	"rubybot/internal/domain/welcome"
	"rubybot/internal/infrastructure/cache"
	"rubybot/internal/infrastructure/config"
	"rubybot/internal/infrastructure/discord"
	"rubybot/internal/infrastructure/lavalink"
	"rubybot/internal/shared/goroutine"
	"rubybot/internal/shared/logger"
)

// Bot wires the gateway, the REST client, the audio node and all handlers
// into one runnable unit.
type Bot struct {
	cfg    *config.Config
	logger logger.Interface

	client         *discord.Client
	gateway        *discord.Gateway
	guildAdapter   *GuildGatewayAdapter
	playerAdapter  *PlayerAdapter
	presence       *PresenceRotator
	musicService   *appmusic.Service
	lavalinkClient *lavalink.Client
	node           *lavalink.Node

	runCtx context.Context
}

// New builds the full bot from its persistence dependencies.
func New(
	cfg *config.Config,
	ticketRepo ticket.Repository,
	ticketSettings ticket.SettingsRepository,
	welcomeRepo welcome.Repository,
	pendingStore cache.PendingCloseStore,
	log logger.Interface,
) *Bot {
	client := discord.NewClient(cfg.Bot.Token, cfg.Bot.ApplicationID)
	guildAdapter := NewGuildGatewayAdapter(client)

	var lavalinkClient *lavalink.Client
	if cfg.Lavalink.Enabled {
		lavalinkClient = lavalink.NewClient(cfg.Lavalink)
	}
	playerAdapter := NewPlayerAdapter(lavalinkClient, log)
	musicService := appmusic.NewService(playerAdapter, playerAdapter, log)

	welcomeService := appwelcome.NewService(welcomeRepo, guildAdapter, log)

	ticketHandler := NewTicketHandler(
		client,
		ticketusecases.NewOpenTicketUseCase(ticketRepo, ticketSettings, guildAdapter, log),
		ticketusecases.NewClaimTicketUseCase(ticketRepo, log),
		ticketusecases.NewRequestCloseUseCase(ticketRepo, pendingStore, log),
		ticketusecases.NewConfirmCloseUseCase(ticketRepo, pendingStore, guildAdapter, log),
		ticketusecases.NewCancelCloseUseCase(pendingStore, log),
		ticketusecases.NewTranscriptUseCase(ticketRepo, guildAdapter, log),
		ticketusecases.NewDeleteChannelUseCase(ticketRepo, guildAdapter, log),
		ticketusecases.NewTicketStatsUseCase(ticketRepo, log),
		ticketusecases.NewUpdateSettingsUseCase(ticketSettings, log),
		log,
	)
	welcomeHandler := NewWelcomeHandler(client, welcomeService, log)
	musicHandler := NewMusicHandler(client, musicService, log)

	b := &Bot{
		cfg:            cfg,
		logger:         log,
		client:         client,
		guildAdapter:   guildAdapter,
		playerAdapter:  playerAdapter,
		musicService:   musicService,
		lavalinkClient: lavalinkClient,
	}

	router := NewEventRouter(ticketHandler, welcomeHandler, musicHandler, playerAdapter, client, b.onReady, log)

	intents := discord.IntentGuilds |
		discord.IntentGuildMembers |
		discord.IntentVoiceStates |
		discord.IntentGuildMessages
	b.gateway = discord.NewGateway(cfg.Bot.Token, intents, router, log)
	playerAdapter.BindGateway(b.gateway)
	b.presence = NewPresenceRotator(b.gateway, cfg.Bot.StatusLines, log)

	return b
}

// Start connects the gateway. The rest of the runtime (commands, presence,
// audio node) comes up once READY arrives.
func (b *Bot) Start(ctx context.Context) error {
	b.runCtx = ctx
	return b.gateway.Start(ctx)
}

// Stop tears everything down in reverse order.
func (b *Bot) Stop() {
	b.presence.Stop()
	if b.node != nil {
		b.node.Stop()
	}
	b.gateway.Stop()
	b.logger.Infow("bot stopped")
}

// onReady runs once per process when the gateway first identifies.
func (b *Bot) onReady(botUserID string) {
	b.guildAdapter.SetBotID(botUserID)

	if b.lavalinkClient != nil {
		b.node = lavalink.NewNode(b.cfg.Lavalink, botUserID, b.musicService, b.logger)
		b.playerAdapter.AttachNode(b.node, botUserID)
		if err := b.node.Start(b.runCtx); err != nil {
			b.logger.Errorw("failed to start lavalink node client", "error", err)
		}
	}

	goroutine.SafeGo(b.logger, "register-commands", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := registerCommands(ctx, b.client); err != nil {
			b.logger.Errorw("failed to register slash commands", "error", err)
		} else {
			b.logger.Infow("slash commands registered")
		}
	})

	b.presence.Start(b.runCtx)
}
