package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pawcare/pawcare-api/internal/database"
	"github.com/spf13/cobra"
)

// NewHistoryCmd prints the stored exchanges of one chat session
func NewHistoryCmd() *cobra.Command {
	var (
		session string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show a chat session's stored exchanges",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := uuid.Parse(session)
			if err != nil {
				return fmt.Errorf("--session must be a UUID: %w", err)
			}

			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			exchanges, err := database.NewChatHistoryRepository(db).List(context.Background(), sessionID, limit)
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(exchanges) == 0 {
				fmt.Fprintln(out, "No exchanges stored for this session.")
				return nil
			}
			for _, e := range exchanges {
				fmt.Fprintf(out, "[%s] %s (%s)\n", e.CreatedAt.Format(time.RFC3339), e.Subject, e.Model)
				fmt.Fprintf(out, "  user: %s\n", e.Message)
				fmt.Fprintf(out, "  assistant: %s\n", e.Response)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "Session ID (required)")
	cmd.Flags().IntVar(&limit, "limit", database.DefaultHistoryLimit, "Maximum number of exchanges to show")

	return cmd
}
