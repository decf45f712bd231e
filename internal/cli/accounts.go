package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/desivolt/muzdesk/internal/app"
	"github.com/desivolt/muzdesk/internal/auth"
	"github.com/desivolt/muzdesk/internal/config"
	"github.com/desivolt/muzdesk/internal/domain"
)

// HashPasswordCmd returns the hash-password command.
func HashPasswordCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for the accounts file",
		Long: `Print a bcrypt hash suitable for the password_hash field of ACCOUNTS_FILE.

The password is read from stdin when not given as an argument.

Examples:
  muzdesk hash-password s3cret
  echo -n s3cret | muzdesk hash-password`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && err != io.EOF {
					return err
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return fmt.Errorf("password must not be empty")
			}

			hash, err := auth.HashPassword(password, cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 12, "bcrypt cost")
	return cmd
}

// AccountsCmd returns the accounts command.
func AccountsCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List the allow-listed admin and electrician accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = os.Getenv("ACCOUNTS_FILE")
			}
			accounts, err := app.LoadAccounts(config.AccountsConfig{File: file}, zap.NewNop())
			if err != nil {
				return err
			}
			if file == "" {
				fmt.Fprintln(cmd.OutOrStdout(), color.New(color.FgYellow).Sprint("ACCOUNTS_FILE not set: built-in development accounts"))
			}
			writeAccounts(cmd.OutOrStdout(), accounts)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "accounts file (defaults to ACCOUNTS_FILE)")
	return cmd
}

func writeAccounts(w io.Writer, accounts *config.AccountsFile) {
	for _, acct := range accounts.Accounts {
		role := color.New(color.FgBlue).Sprint(acct.Role)
		if acct.Role == string(domain.RoleAdmin) {
			role = color.New(color.FgMagenta).Sprint(acct.Role)
		}
		secret := color.New(color.FgRed).Sprint("PLAINTEXT")
		if acct.PasswordHash != "" {
			if cost, err := auth.PasswordCost(acct.PasswordHash); err != nil {
				secret = color.New(color.FgRed).Sprint("malformed hash")
			} else {
				secret = color.New(color.FgGreen).Sprintf("hashed, cost %d", cost)
			}
		}
		name := acct.DisplayName
		if name == "" {
			name = acct.Username
		}
		fmt.Fprintf(w, "  %-12s %-20s %s  %s\n", acct.Username, name, role, secret)
	}
	if len(accounts.Prices) > 0 {
		fmt.Fprintf(w, "  %d price override(s)\n", len(accounts.Prices))
	}
}
