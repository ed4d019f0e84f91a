package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axellelanca/linkshelf/cmd"
	"github.com/axellelanca/linkshelf/internal/logging"
	"github.com/axellelanca/linkshelf/internal/repository"
	"github.com/axellelanca/linkshelf/internal/services"
)

var (
	usernameFlag string
	emailFlag    string
	staffFlag    bool
)

// CreateUserCmd creates a local account without going through the identity
// provider, e.g. a staff account.
var CreateUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Creates a user account.",
	Long: `Creates a user together with its empty bookmark and avatar.

Example:
  linkshelf create-user --username=admin --email=admin@example.com --staff`,
	Run: func(cmd *cobra.Command, args []string) {
		db, closeDB := openDatabase()
		defer closeDB()

		users := services.NewUserService(repository.NewUserRepository(db), repository.NewTxManager(db), nil, nil)
		u, err := users.CreateUser(context.Background(), usernameFlag, emailFlag, staffFlag)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create user")
		}

		fmt.Printf("User created successfully:\n")
		fmt.Printf("ID: %d\n", u.ID)
		fmt.Printf("Username: %s\n", u.Username)
		fmt.Printf("Staff: %t\n", u.IsStaff)
	},
}

func init() {
	CreateUserCmd.Flags().StringVar(&usernameFlag, "username", "", "Username of the new account")
	CreateUserCmd.Flags().StringVar(&emailFlag, "email", "", "Email address of the new account")
	CreateUserCmd.Flags().BoolVar(&staffFlag, "staff", false, "Grant staff status")
	CreateUserCmd.MarkFlagRequired("username")
	CreateUserCmd.MarkFlagRequired("email")

	cmd.RootCmd.AddCommand(CreateUserCmd)
}
