package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/desivolt/muzdesk/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "muzdesk",
		Short: "muzdesk - complaint desk for an appliance repair shop",
		Long: `muzdesk runs the complaint service: customers lodge and track tickets,
the admin assigns them to electricians, electricians resolve them.

Running muzdesk with no subcommand starts the HTTP server.`,
		SilenceUsage: true,
		RunE:         cli.ServeCmd().RunE,
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.MigrateCmd())
	rootCmd.AddCommand(cli.SweepCmd())

	// Account tools
	rootCmd.AddCommand(cli.HashPasswordCmd())
	rootCmd.AddCommand(cli.AccountsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
