package run

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"rubybot/internal/infrastructure/cache"
	"rubybot/internal/infrastructure/config"
	"rubybot/internal/infrastructure/database"
	"rubybot/internal/infrastructure/migration"
	"rubybot/internal/infrastructure/repository"
	"rubybot/internal/interfaces/bot"
	"rubybot/internal/shared/logger"
)

func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot",
		Long:  `Connect to the Discord gateway and serve tickets, welcome messages and music playback.`,
		RunE:  run,
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	log.Infow("starting rubybot", "mode", cfg.Bot.Mode)

	if cfg.Bot.Token == "" {
		return fmt.Errorf("bot token is not configured")
	}

	var db *gorm.DB
	db, err = database.Connect(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Errorw("failed to close database", "error", err)
		}
	}()

	// Schema setup failure is not fatal: the tables usually already exist
	// and per-command persistence errors surface to the member instead of
	// taking the bot down.
	if err := migration.AutoMigrate(db); err != nil {
		log.Errorw("auto-migration failed, continuing degraded", "error", err)
	}

	ticketRepo := repository.NewTicketRepository(db)
	ticketSettingsRepo := repository.NewTicketSettingsRepository(db)
	welcomeRepo := repository.NewWelcomeSettingsRepository(db)

	var pendingStore cache.PendingCloseStore
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pendingStore = cache.NewRedisPendingCloseStore(redisClient)
		log.Infow("using redis pending-close store", "addr", cfg.Redis.GetAddr())
	} else {
		pendingStore = cache.NewMemoryPendingCloseStore()
		log.Infow("using in-memory pending-close store")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bot.New(cfg, ticketRepo, ticketSettingsRepo, welcomeRepo, pendingStore, log)
	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("failed to start bot: %w", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down...")
	cancel()
	b.Stop()
	log.Infow("bot exited gracefully")
	return nil
}
