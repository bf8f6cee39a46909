package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mind-engage/history-contest/internal/report"
	"github.com/mind-engage/history-contest/internal/storage"
	syncx "github.com/mind-engage/history-contest/internal/sync"
)

var seedsCmd = &cobra.Command{
	Use:   "seeds",
	Short: "List question seeds",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, dbh, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer dbh.Close()
		seeds, err := store.ListSeeds(cmd.Context())
		if err != nil {
			return err
		}
		color.Yellow("%d seeds", len(seeds))
		renderSeeds(cmd.OutOrStdout(), seeds)
		return nil
	},
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show student states and scores as last synchronized",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, dbh, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer dbh.Close()
		students, err := store.ListStudents(cmd.Context())
		if err != nil {
			return err
		}
		renderResults(cmd.OutOrStdout(), students)
		return nil
	},
}

var eventsLimit int

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the most recent sync cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, dbh, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer dbh.Close()
		events, err := syncx.NewEventRepo(dbh).Recent(cmd.Context(), eventsLimit)
		if err != nil {
			return err
		}
		renderEvents(cmd.OutOrStdout(), events)
		return nil
	},
}

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the score summary CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, dbh, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer dbh.Close()
		dir := exportDir
		if dir == "" {
			dir = loadConfig().ExportBasePath
		}
		blobs, err := storage.NewFSStore(dir)
		if err != nil {
			return err
		}
		key, err := report.Summary{Students: store, Blobs: blobs}.Write(cmd.Context())
		if err != nil {
			return err
		}
		u, _ := blobs.SignedURL(key)
		fmt.Fprintln(cmd.OutOrStdout(), u)
		return nil
	},
}

func init() {
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 20, "number of events")
	exportCmd.Flags().StringVar(&exportDir, "out", "", "output directory (default EXPORT_BASE_PATH)")
}
