// Command foodrescue runs the campus surplus-food rescue service and its
// maintenance tasks.
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/foodrescue/internal/codes"
	"github.com/erazemk/foodrescue/internal/config"
	"github.com/erazemk/foodrescue/internal/db"
	"github.com/erazemk/foodrescue/internal/lifecycle"
	"github.com/erazemk/foodrescue/internal/store"
)

// app carries the resolved configuration to every subcommand.
type app struct {
	configFile string
	envFile    string
	cfg        config.Config
	closeLog   func()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}
	var dbPath, logPath, logLevel, logFormat, timezone string

	cmd := &cobra.Command{
		Use:   "foodrescue",
		Short: "Campus surplus-food rescue",
		Long: `Coordinates surplus-food donations between donors and volunteers:
posting, claiming, code-checked handover, auto-expiry and an impact dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Sources{File: a.configFile, EnvFile: a.envFile})
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("db") {
				cfg.DBPath = dbPath
			}
			if flags.Changed("log") {
				cfg.LogPath = logPath
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("log-format") {
				cfg.LogFormat = logFormat
			}
			if flags.Changed("timezone") {
				cfg.Timezone = timezone
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.cfg = cfg

			level, _ := cfg.Level()
			closeLog, err := setupLogger(cfg.LogPath, level, cfg.LogFormat)
			if err != nil {
				return err
			}
			a.closeLog = closeLog
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.closeLog != nil {
				a.closeLog()
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configFile, "config", "c", "", "YAML config file")
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file (ignored if missing)")
	pf.StringVarP(&dbPath, "db", "d", "", "SQLite database path (default foodrescue.sqlite3)")
	pf.StringVarP(&logPath, "log", "l", "", "log file path (default: stdout/stderr only)")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default info)")
	pf.StringVar(&logFormat, "log-format", "", "text or json (default text)")
	pf.StringVar(&timezone, "timezone", "", "IANA timezone for all timestamps (default Local)")

	cmd.AddCommand(newServeCommand(a))
	cmd.AddCommand(newInitCommand(a))
	cmd.AddCommand(newImportCommand(a))
	cmd.AddCommand(newExportCommand(a))
	cmd.AddCommand(newSummaryCommand(a))

	return cmd
}

// openDB opens the configured database and ensures the schema exists.
func (a *app) openDB() (*sql.DB, error) {
	database, err := db.Open(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return database, nil
}

// postStore builds the record store over database.
func (a *app) postStore(database *sql.DB) *store.PostStore {
	loc, _ := a.cfg.Location()
	return store.NewPostStore(database, store.Options{Location: loc})
}

// engine builds the lifecycle engine over posts.
func (a *app) engine(posts *store.PostStore) *lifecycle.Engine {
	return lifecycle.New(posts, codes.NewIssuer(a.cfg.CodeLength), lifecycle.Limits{
		MinMeals: a.cfg.MinMeals,
		MaxMeals: a.cfg.MaxMeals,
	})
}
