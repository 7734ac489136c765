package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"rubybot/internal/infrastructure/config"
	"rubybot/internal/infrastructure/database"
	"rubybot/internal/infrastructure/migration"
	"rubybot/internal/shared/logger"
)

func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long:  `Create or update the tickets, ticket_settings and welcome_settings tables.`,
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

	db, err := database.Connect(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Errorw("failed to close database", "error", err)
		}
	}()

	log.Infow("running schema migration")
	if err := migration.AutoMigrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Infow("schema migration completed")
	return nil
}
