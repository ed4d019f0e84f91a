package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/axellelanca/linkshelf/cmd"
	apperrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/logging"
	"github.com/axellelanca/linkshelf/internal/repository"
)

// StatsCmd prints the counters of one collection, or global totals when no
// id is given.
var StatsCmd = &cobra.Command{
	Use:   "stats [collection-id]",
	Short: "Get statistics for a collection",
	Long:  `Prints likes, views and links of the given collection, or the number of users when called without an id.`,
	Args:  cobra.MaximumNArgs(1),
	Run:   runStats,
}

func init() {
	cmd.RootCmd.AddCommand(StatsCmd)
}

func runStats(_ *cobra.Command, args []string) {
	db, closeDB := openDatabase()
	defer closeDB()
	ctx := context.Background()

	if len(args) == 0 {
		count, err := repository.NewUserRepository(db).CountUsers(ctx)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to count users")
		}
		fmt.Printf("Users: %d\n", count)
		return
	}

	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		fmt.Printf("Error: invalid collection id %q\n", args[0])
		os.Exit(1)
	}

	c, err := repository.NewCollectionRepository(db).GetCollection(ctx, uint(id))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			fmt.Printf("Error: collection %d not found\n", id)
		} else {
			fmt.Printf("Error retrieving statistics: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("Statistics for collection %d\n", c.ID)
	fmt.Printf("Title: %s\n", c.Title)
	fmt.Printf("Owner: %s\n", c.Owner.Username)
	fmt.Printf("Public: %t\n", c.IsPublic)
	fmt.Printf("Links: %d\n", len(c.Links))
	fmt.Printf("Likes: %d\n", c.LikesCount)
	fmt.Printf("Views: %d\n", c.ViewsCount)
	fmt.Printf("Created: %s\n", c.CreatedAt.Format("2006-01-02 15:04:05"))
}
