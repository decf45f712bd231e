package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/desivolt/muzdesk/internal/auth"
)

func TestHashPasswordCmd(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
	}{
		{name: "argument", args: []string{"s3cret", "--cost", "4"}},
		{name: "stdin", args: []string{"--cost", "4"}, stdin: "s3cret\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := HashPasswordCmd()
			cmd.SetArgs(tt.args)
			cmd.SetIn(strings.NewReader(tt.stdin))
			cmd.SetOut(&out)

			if err := cmd.Execute(); err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			hash := strings.TrimSpace(out.String())
			if err := auth.ComparePassword(hash, "s3cret"); err != nil {
				t.Errorf("printed hash does not verify: %v", err)
			}
		})
	}
}

func TestHashPasswordCmd_Empty(t *testing.T) {
	cmd := HashPasswordCmd()
	cmd.SetArgs([]string{})
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	if err := cmd.Execute(); err == nil {
		t.Error("expected an error for an empty password")
	}
}

func TestAccountsCmd(t *testing.T) {
	color.NoColor = true

	path := filepath.Join(t.TempDir(), "accounts.yaml")
	doc := `accounts:
  - username: owner
    display_name: Shop Owner
    role: admin
    password_hash: $2a$04$abcdefghijklmnopqrstuuJ0sS0c6q3kxv1Yd0S7c4y5eW1V9Hq2e
  - username: raju
    role: electrician
    password: password
prices:
  - appliance: Geyser
    charge: 400
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write accounts file: %v", err)
	}

	var out bytes.Buffer
	cmd := AccountsCmd()
	cmd.SetArgs([]string{"--file", path})
	cmd.SetOut(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"owner", "Shop Owner", "admin", "hashed, cost 4", "raju", "PLAINTEXT", "1 price override(s)"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, got)
		}
	}
}

func TestAccountsCmd_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.yaml")
	if err := os.WriteFile(path, []byte("accounts:\n  - username: x\n    role: customer\n    password: p\n"), 0o600); err != nil {
		t.Fatalf("write accounts file: %v", err)
	}

	cmd := AccountsCmd()
	cmd.SetArgs([]string{"-f", path})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Error("expected a validation error for a customer account")
	}
}
