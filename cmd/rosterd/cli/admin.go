package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rosterhq/rosterd/internal/model"
	"github.com/rosterhq/rosterd/internal/service"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
		Long:  "Create and list administrator accounts able to authenticate against the API.",
	}

	cmd.AddCommand(newAdminCreateCmd())
	cmd.AddCommand(newAdminListCmd())

	return cmd
}

// ---------- admin create ----------

func newAdminCreateCmd() *cobra.Command {
	var (
		username string
		password string
		dataDir  string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new administrator",
		Example: `  rosterd admin create --username admin --password secret123
  rosterd admin create --username admin  # prompts for password`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminCreate(username, password, dataDir)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Administrator username (required)")
	cmd.Flags().StringVar(&password, "password", "", "Administrator password (prompted if omitted)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Data directory for the embedded SQLite database (default: ~/.rosterd)")
	cmd.MarkFlagRequired("username")

	return cmd
}

func runAdminCreate(username, password, dataDir string) error {
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters")
	}

	// Prompt for password if not provided
	if password == "" {
		fmt.Print("Password: ")
		pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()
		password = string(pwBytes)

		fmt.Print("Confirm password: ")
		confirmBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		fmt.Println()

		if password != string(confirmBytes) {
			return fmt.Errorf("passwords do not match")
		}
	}

	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	st, err := openStore(dataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	hash, err := service.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := &model.Admin{
		Username:     username,
		PasswordHash: hash,
	}
	if err := st.CreateAdmin(context.Background(), admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Printf("Created administrator %q (id %d)\n", username, admin.ID)
	return nil
}

// ---------- admin list ----------

func newAdminListCmd() *cobra.Command {
	var (
		jsonOutput bool
		dataDir    string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all administrators",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminList(jsonOutput, dataDir)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Data directory for the embedded SQLite database (default: ~/.rosterd)")

	return cmd
}

func runAdminList(jsonOutput bool, dataDir string) error {
	st, err := openStore(dataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	admins, err := st.ListAdmins(context.Background())
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(admins)
	}

	if len(admins) == 0 {
		fmt.Println("No administrators found. Create one with 'rosterd admin create'.")
		return nil
	}

	fmt.Printf("%-6s %-30s %s\n", "ID", "USERNAME", "CREATED")
	for _, a := range admins {
		fmt.Printf("%-6d %-30s %s\n", a.ID, a.Username, a.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
