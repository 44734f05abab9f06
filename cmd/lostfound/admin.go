package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/config"
	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/store"
)

var (
	adminEmail    string
	adminPassword string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	Long: `Create an admin account in the configured database.

If --password is omitted a random password is generated and printed once.`,
	Args: cobra.NoArgs,
	RunE: runAdminCreate,
}

var adminHashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Print a bcrypt hash for a password",
	Args:  cobra.NoArgs,
	RunE:  runAdminHash,
}

func init() {
	adminCreateCmd.Flags().StringVarP(&adminEmail, "email", "e", "", "admin email (required)")
	adminCreateCmd.Flags().StringVarP(&adminPassword, "password", "p", "", "admin password (generated if empty)")
	adminCreateCmd.MarkFlagRequired("email")

	adminHashCmd.Flags().StringVarP(&adminPassword, "password", "p", "", "password to hash (required)")
	adminHashCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(adminCreateCmd)
	adminCmd.AddCommand(adminHashCmd)
}

func runAdminCreate(cmd *cobra.Command, args []string) error {
	email := strings.TrimSpace(adminEmail)
	if email == "" {
		return fmt.Errorf("email must not be empty")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring database schema: %w", err)
	}

	password := adminPassword
	generated := password == ""
	if generated {
		password, err = generatePassword(16)
		if err != nil {
			return fmt.Errorf("generating password: %w", err)
		}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin, err := store.CreateAdmin(context.Background(), database, email, hash)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Admin account created (id %d):\n", admin.ID)
	fmt.Fprintf(out, "  Email:    %s\n", admin.Email)
	if generated {
		fmt.Fprintf(out, "  Password: %s\n", password)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Save this password, it cannot be recovered.")
	}
	return nil
}

func runAdminHash(cmd *cobra.Command, args []string) error {
	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
