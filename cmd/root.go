package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/axellelanca/linkshelf/internal/config"
	"github.com/axellelanca/linkshelf/internal/logging"
)

// Cfg holds the loaded configuration. It is set before any subcommand runs.
var Cfg *config.Config

// RootCmd is the base command. Subcommands (run-server, migrate, create-user,
// stats) register themselves from their own init functions.
var RootCmd = &cobra.Command{
	Use:   "linkshelf",
	Short: "A link collection service",
	Long: `linkshelf stores curated collections of links, lets users like,
bookmark and share them, and keeps an eye on the health of saved urls.`,
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig loads the configuration and sets up the global logger.
func initConfig() {
	var err error
	Cfg, err = config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: Cfg.Log.Level, Format: Cfg.Log.Format})
}
