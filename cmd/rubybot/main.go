package main

import (
	"os"

	"github.com/spf13/cobra"

	"rubybot/internal/interfaces/cli/migrate"
	"rubybot/internal/interfaces/cli/run"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rubybot",
		Short: "Rubybot - Discord community management bot",
		Long:  `Rubybot manages support tickets, welcome messages and music playback for Discord guilds.`,
	}

	rootCmd.AddCommand(
		run.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
