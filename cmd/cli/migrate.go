package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axellelanca/linkshelf/cmd"
	"github.com/axellelanca/linkshelf/internal/logging"
	"github.com/axellelanca/linkshelf/internal/repository"
)

// MigrateCmd creates or updates the database schema.
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Executes database migrations to create or update tables.",
	Long: `This command connects to the configured database (SQLite or MySQL)
and runs GORM automatic migrations for users, collections, links, likes,
views and bookmarks.`,
	Run: func(cmd *cobra.Command, args []string) {
		db, closeDB := openDatabase()
		defer closeDB()

		if err := repository.AutoMigrate(db); err != nil {
			logging.Fatal().Err(err).Msg("Failed to migrate database")
		}
		fmt.Println("Database migrations executed successfully.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(MigrateCmd)
}
