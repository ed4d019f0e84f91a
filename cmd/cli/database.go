package cli

import (
	"gorm.io/gorm"

	"github.com/axellelanca/linkshelf/cmd"
	"github.com/axellelanca/linkshelf/internal/logging"
	"github.com/axellelanca/linkshelf/internal/repository"
)

// openDatabase connects to the configured store and returns a close function.
// It exits the process on failure.
func openDatabase() (*gorm.DB, func()) {
	db, err := repository.OpenDatabase(cmd.Cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to get underlying SQL database")
	}
	return db, func() { sqlDB.Close() }
}
