package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/pawcare/pawcare-api/internal/config"
	"github.com/pawcare/pawcare-api/internal/database"
	"github.com/pawcare/pawcare-api/internal/models"
	"github.com/spf13/cobra"
	"github.com/ulule/limiter/v3"
)

// NewRatelimitCmd creates the ratelimit configuration command with get and set subcommands.
func NewRatelimitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Manage the API rate limit",
		Long:  "Read or update the /api rate limit (e.g. 5-S, 20-M). Running servers pick up changes within a minute.",
	}
	cmd.AddCommand(newRatelimitGetCmd())
	cmd.AddCommand(newRatelimitSetCmd())
	return cmd
}

func newRatelimitGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the stored rate limit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			c, err := database.NewRatelimitConfigRepository(db).Get(context.Background())
			if err != nil {
				return fmt.Errorf("get ratelimit config: %w", err)
			}
			out := cmd.OutOrStdout()
			if c == nil {
				fmt.Fprintln(out, "No rate limit stored. Servers use RATE_LIMIT until one is set.")
				return nil
			}
			fmt.Fprintf(out, "Rate: %s (updated %s)\n", c.Rate, c.UpdatedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func newRatelimitSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set RATE",
		Short: "Store a new rate limit",
		Long:  "Update the rate limit (e.g. 5-S, 100-M, 1000-H).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rate := strings.TrimSpace(args[0])
			if _, err := limiter.NewRateFromFormatted(rate); err != nil {
				return fmt.Errorf("invalid rate %q: %w", rate, err)
			}

			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := database.NewRatelimitConfigRepository(db).Set(context.Background(), &models.RatelimitConfig{Rate: rate}); err != nil {
				return fmt.Errorf("set ratelimit config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Rate limit updated.")
			return nil
		},
	}
}

func openDatabase() (*database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}
