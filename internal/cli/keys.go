package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soyeahso/agentdeck/internal/domain"
	"github.com/soyeahso/agentdeck/internal/store"
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys",
	}

	cmd.AddCommand(newKeysCreateCmd())
	cmd.AddCommand(newKeysListCmd())
	return cmd
}

func newKeysCreateCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			users := store.NewUserStore(db)
			user, err := ownerFor(users, username)
			if err != nil {
				return err
			}

			key, token, err := store.NewAPIKeyStore(db).Create(user.ID, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("created api key %q for %s\n", key.Name, user.Username)
			fmt.Printf("\n  %s\n\n", token)
			fmt.Println("store this token now; it cannot be shown again")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "owner username (defaults to the first user)")

	return cmd
}

func newKeysListCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			users := store.NewUserStore(db)
			user, err := ownerFor(users, username)
			if err != nil {
				return err
			}

			keys, err := store.NewAPIKeyStore(db).List(user.ID)
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				fmt.Println("no api keys")
				return nil
			}
			for _, k := range keys {
				state := "active"
				if !k.IsActive {
					state = "disabled"
				}
				fmt.Printf("  %-4d %-20s %-14s %s\n", k.ID, k.Name, k.Prefix, state)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "owner username (defaults to the first user)")

	return cmd
}

func ownerFor(users *store.UserStore, username string) (*domain.User, error) {
	if username != "" {
		return users.GetByUsername(username)
	}
	return users.First()
}
