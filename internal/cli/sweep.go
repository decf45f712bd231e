package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/desivolt/muzdesk/internal/app"
)

// SweepCmd returns the sweep command.
func SweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "List open tickets older than SLA_HOURS",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			overdue, err := a.Sweep(ctx)
			if err != nil {
				return err
			}
			if len(overdue) == 0 {
				fmt.Printf("%s no overdue tickets\n", color.New(color.FgGreen).Sprint("✓"))
				return nil
			}
			for _, t := range overdue {
				assignee := color.New(color.FgYellow).Sprint("unassigned")
				if t.AssignedTo != nil {
					assignee = *t.AssignedTo
				}
				fmt.Printf("%s %s  %-11s  %s  opened %s\n",
					color.New(color.FgRed).Sprint("!"),
					t.TicketNumber, t.Status, assignee,
					t.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}
