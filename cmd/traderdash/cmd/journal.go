package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/traderdash/analytics"
	"github.com/rustyeddy/traderdash/archive"
	"github.com/rustyeddy/traderdash/config"
	"github.com/rustyeddy/traderdash/internal/render"
	"github.com/rustyeddy/traderdash/view"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Analyse and archive the trade journal",
	Long: `Analyse the backend trade journal and keep a local archive of it.

Subcommands:
  stats  - Performance report, reconciled against the backend aggregate
  export - Write the journal and equity curve to the local archive
  org    - Print the journal (or a report) as Org-mode
  trade  - Show one archived trade by ID
  day    - List archived trades closed on a specific day

Examples:
  traderdash journal stats
  traderdash journal export --type sqlite --db ./journal.sqlite
  traderdash journal day 2024-01-15`,
}

var journalStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the performance report",
	Args:  cobra.NoArgs,
	RunE:  runJournalStats,
}

var journalExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Archive the journal as CSV or SQLite",
	Args:  cobra.NoArgs,
	RunE:  runJournalExport,
}

var journalOrgCmd = &cobra.Command{
	Use:   "org",
	Short: "Print the journal as Org-mode",
	Args:  cobra.NoArgs,
	RunE:  runJournalOrg,
}

var journalTradeCmd = &cobra.Command{
	Use:         "trade <trade-id>",
	Short:       "Show one archived trade",
	Args:        cobra.ExactArgs(1),
	Annotations: mark(ungated),
	RunE:        runJournalTrade,
}

var journalDayCmd = &cobra.Command{
	Use:         "day <YYYY-MM-DD>",
	Short:       "List archived trades closed on a specific day",
	Args:        cobra.ExactArgs(1),
	Annotations: mark(ungated),
	RunE:        runJournalDay,
}

var (
	journalCurve  bool
	journalReport bool
	archiveType   string
	archiveDB     string
	dayUTC        bool
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalStatsCmd)
	journalCmd.AddCommand(journalExportCmd)
	journalCmd.AddCommand(journalOrgCmd)
	journalCmd.AddCommand(journalTradeCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalStatsCmd.Flags().BoolVar(&journalCurve, "curve", false, "also print the equity curve")
	journalOrgCmd.Flags().BoolVar(&journalReport, "report", false, "print a summary report instead of trades")
	journalExportCmd.Flags().StringVarP(&archiveType, "type", "t", "", "override archive.type (csv or sqlite)")
	journalDayCmd.Flags().BoolVar(&dayUTC, "utc", false, "interpret the day in UTC rather than local time")
	journalCmd.PersistentFlags().StringVarP(&archiveDB, "db", "d", "", "override archive.db_path")
}

// archiveConfig is the configured archive with flag overrides applied.
func archiveConfig() config.ArchiveConfig {
	ac := app.Config.Archive
	if archiveType != "" {
		ac.Type = archiveType
	}
	if archiveDB != "" {
		ac.DBPath = archiveDB
	}
	return ac
}

func runJournalStats(cmd *cobra.Command, args []string) error {
	s := view.Fetch(app.Client, view.Journal)(cmd.Context())
	out := cmd.OutOrStdout()
	analytics.PrintReport(out, s.StatsView, s.Buckets)
	if journalCurve {
		fmt.Fprintln(out)
		fmt.Fprintln(out, render.Curve(s.Curve))
	}
	return nil
}

func runJournalExport(cmd *cobra.Command, args []string) error {
	ac := archiveConfig()
	j, err := archive.Open(ac)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer j.Close()

	s := view.Fetch(app.Client, view.ResJournal)(cmd.Context())
	trades, points, err := archive.Sync(j, s.Journal)
	if err != nil {
		return fmt.Errorf("archive journal: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Archived %d trades and %d equity points (%s)\n", trades, points, ac.Type)
	return nil
}

func runJournalOrg(cmd *cobra.Command, args []string) error {
	s := view.Fetch(app.Client, view.Journal)(cmd.Context())
	out := cmd.OutOrStdout()
	if journalReport {
		return archive.WriteReportOrg(out, archive.Report{
			Created: s.At,
			Backend: app.Client.BaseURL(),
			View:    s.StatsView,
			Buckets: s.Buckets,
		})
	}
	fmt.Fprintln(out, archive.FormatTradesOrg(s.Journal))
	return nil
}

func openArchiveDB() (*archive.SQLite, error) {
	j, err := archive.NewSQLite(archiveConfig().DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := openArchiveDB()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.GetTrade(args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), archive.FormatTradeOrg(rec))
	return nil
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	j, err := openArchiveDB()
	if err != nil {
		return err
	}
	defer j.Close()

	loc := time.Local
	if dayUTC {
		loc = time.UTC
	}
	start, end, err := dayBounds(loc, args[0])
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	recs, err := j.ListTradesClosedBetween(start, end)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), archive.FormatTradesOrg(recs))
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}
