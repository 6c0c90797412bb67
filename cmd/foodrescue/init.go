package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/foodrescue/internal/db"
	"github.com/erazemk/foodrescue/internal/store"
)

func newInitCommand(a *app) *cobra.Command {
	var rotate bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database and print the export key",
		Long: `Create a new database with the schema applied and print the CSV export
key. The key is shown once and cannot be recovered. With --rotate-key an
existing database gets a fresh key instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rotate {
				return a.rotateKey()
			}

			if _, err := os.Stat(a.cfg.DBPath); err == nil {
				return fmt.Errorf("database file %s already exists", a.cfg.DBPath)
			}
			key, err := initDatabase(a.cfg.DBPath)
			if err != nil {
				return err
			}
			printInitResult(a.cfg.DBPath, key)
			return nil
		},
	}

	cmd.Flags().BoolVar(&rotate, "rotate-key", false, "replace the export key of an existing database")
	return cmd
}

func (a *app) rotateKey() error {
	if _, err := os.Stat(a.cfg.DBPath); err != nil {
		return fmt.Errorf("database file %s: %w", a.cfg.DBPath, err)
	}
	database, err := a.openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	key, err := store.RotateExportKey(context.Background(), database)
	if err != nil {
		return err
	}
	fmt.Println("New export key:", key)
	fmt.Println("The previous key no longer works.")
	return nil
}

// initDatabase creates a new database, ensures the schema, and generates the
// session secret and export key. On failure the file is removed.
func initDatabase(path string) (string, error) {
	database, err := db.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	fail := func(err error) (string, error) {
		database.Close()
		os.Remove(path)
		return "", err
	}

	if err := db.EnsureSchema(database); err != nil {
		return fail(fmt.Errorf("ensuring schema: %w", err))
	}

	ctx := context.Background()
	if _, err := store.GetSessionSecret(ctx, database); err != nil {
		return fail(err)
	}
	key, err := store.RotateExportKey(ctx, database)
	if err != nil {
		return fail(err)
	}
	return key, nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, exportKey string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Printf("  Export key: %s\n", exportKey)
	fmt.Println()
	fmt.Println("Save this key, it cannot be recovered.")
	fmt.Println("Send it as X-Export-Key to download surplus.csv.")
}
