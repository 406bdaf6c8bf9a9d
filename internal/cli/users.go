package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"qquiz-service/internal/app"
	"qquiz-service/internal/config"
	"qquiz-service/internal/domain"
	"qquiz-service/internal/infra/postgres"
)

// NewUserCmd groups account administration.
func NewUserCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserAddCmd(configPath))
	return cmd
}

func newUserAddCmd(configPath *string) *cobra.Command {
	var (
		username string
		email    string
		password string
		admin    bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			db, err := openBun(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			users := app.NewUserService(postgres.NewStore(db), cfg.Auth.BcryptCost)
			user, err := users.Register(cmd.Context(), username, email, password, admin)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant admin rights")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// NewTokenCmd issues bearer tokens for existing accounts.
func NewTokenCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage API tokens",
	}
	var user string
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue a bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Auth.Secret == "" {
				return errors.New("auth secret not configured")
			}
			db, err := openBun(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			users := app.NewUserService(postgres.NewStore(db), cfg.Auth.BcryptCost)
			account, err := users.ByUsername(cmd.Context(), user)
			if errors.Is(err, domain.ErrUserNotFound) {
				account, err = users.User(cmd.Context(), user)
			}
			if err != nil {
				return fmt.Errorf("find user %q: %w", user, err)
			}

			tokens, err := newTokens(cfg)
			if err != nil {
				return err
			}
			token, err := tokens.Issue(account.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().StringVar(&user, "user", "", "username or user ID")
	_ = issue.MarkFlagRequired("user")
	cmd.AddCommand(issue)
	return cmd
}
