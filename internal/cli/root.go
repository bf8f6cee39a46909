package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mind-engage/history-contest/internal/config"
	"github.com/mind-engage/history-contest/internal/db"
	"github.com/mind-engage/history-contest/internal/exam"
)

var (
	envFile  string
	dbDriver string
	dbDSN    string
	rootCmd  *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "contestctl",
		Short: "Administer the history contest database",
		Long: `contestctl loads question banks and student rosters into the contest
database and inspects seeds, results and the sync event log.

Connection settings come from the same environment (and .env file) as the gateway.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file to read before the environment")
	rootCmd.PersistentFlags().StringVar(&dbDriver, "db-driver", "", "sqlite or postgres (default from DB_DRIVER)")
	rootCmd.PersistentFlags().StringVar(&dbDSN, "db-dsn", "", "database DSN (default from DB_DSN)")
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(seedsCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(exportCmd)

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func loadConfig() config.Config {
	cfg := config.Load(envFile)
	if dbDriver != "" {
		cfg.DBDriver = dbDriver
	}
	if dbDSN != "" {
		cfg.DBDSN = dbDSN
	}
	return cfg
}

// openStore connects to the durable store named by the configuration.
func openStore(ctx context.Context) (*exam.SQLStore, *sql.DB, error) {
	cfg := loadConfig()
	drv := db.Driver(cfg.DBDriver)
	dbh, err := db.Open(ctx, drv, cfg.DBDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", cfg.DBDriver, err)
	}
	return exam.NewSQLStore(dbh, string(drv)), dbh, nil
}
