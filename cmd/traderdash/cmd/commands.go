package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/rustyeddy/traderdash/backend"
	"github.com/rustyeddy/traderdash/internal/render"
	"github.com/rustyeddy/traderdash/risk"
	"github.com/rustyeddy/traderdash/view"
	"github.com/spf13/cobra"
)

var closeCmd = &cobra.Command{
	Use:   "close <symbol>",
	Short: "Close one broker position",
	Args:  cobra.ExactArgs(1),
	RunE:  runClose,
}

var liquidateCmd = &cobra.Command{
	Use:   "liquidate",
	Short: "Cancel all orders and close every position",
	Long: `Fire the kill switch: the backend cancels all open orders and closes
every position. Asks for confirmation unless --yes is given.`,
	Args: cobra.NoArgs,
	RunE: runLiquidate,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete uploaded data files on the backend",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

var uploadCmd = &cobra.Command{
	Use:   "upload <source> <file>",
	Short: "Upload a CSV for a signal source",
	Long: `Upload a CSV file to the backend for one of its signal sources.

Sources: chatgpt, tradingview, finviz

Example:
  traderdash upload finviz ./screener.csv`,
	Args: cobra.ExactArgs(2),
	RunE: runUpload,
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run the market scanner and list candidates",
	Long: `Run the backend market scanner and list its candidates by section.

With --size each candidate's trade plan is also sized against the account
equity and per-trade risk limit the backend reports.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

var (
	assumeYes bool
	showAfter bool
	scanSize  bool
)

func init() {
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(liquidateCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(scanCmd)

	liquidateCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation")
	clearCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation")
	scanCmd.Flags().BoolVar(&scanSize, "size", false, "size each candidate against the account")
	closeCmd.Flags().BoolVar(&showAfter, "show", false, "print the remaining positions afterwards")
}

func confirm(msg string) (bool, error) {
	if assumeYes {
		return true, nil
	}
	ok := false
	err := survey.AskOne(&survey.Confirm{Message: msg, Default: false}, &ok)
	return ok, err
}

// printNotices writes the model's notices, one per line.
func printNotices(cmd *cobra.Command, m *view.Model) {
	if ns := m.Notices(); len(ns) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), render.Notices(ns))
	}
}

func runClose(cmd *cobra.Command, args []string) error {
	symbol := strings.ToUpper(strings.TrimSpace(args[0]))
	m := app.Model()
	m.Apply(view.Fetch(app.Client, view.ResPositions)(cmd.Context()))

	err := m.ClosePosition(cmd.Context(), symbol)
	printNotices(cmd, m)
	if err != nil {
		return err
	}
	if showAfter {
		s := view.Fetch(app.Client, view.ResPositions)(cmd.Context())
		m.Apply(s)
		fmt.Fprintln(cmd.OutOrStdout(), render.Positions(m.Positions(), m.PositionsState()))
	}
	return nil
}

func runLiquidate(cmd *cobra.Command, args []string) error {
	ok, err := confirm("Cancel all orders and close every position?")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "aborted")
		return nil
	}

	m := app.Model()
	err = m.LiquidateAll(cmd.Context())
	printNotices(cmd, m)
	return err
}

func runClear(cmd *cobra.Command, args []string) error {
	ok, err := confirm("Delete all uploaded data files on the backend?")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "aborted")
		return nil
	}

	m := app.Model()
	err = m.ClearData(cmd.Context())
	printNotices(cmd, m)
	return err
}

func runUpload(cmd *cobra.Command, args []string) error {
	source, path := args[0], args[1]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	m := app.Model()
	err = m.UploadFile(cmd.Context(), source, filepath.Base(path), f)
	printNotices(cmd, m)
	return err
}

func runScan(cmd *cobra.Command, args []string) error {
	m := app.Model()
	res, err := m.RunScan(cmd.Context())
	if err != nil {
		printNotices(cmd, m)
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, render.Scan(res))
	if !scanSize {
		return nil
	}

	m.Apply(view.Fetch(app.Client, view.Portfolio)(cmd.Context()))
	var (
		cands []backend.ScanCandidate
		ds    []risk.Decision
	)
	for _, section := range res.Sections() {
		for _, c := range res[section] {
			cands = append(cands, c)
			ds = append(ds, m.Size(c))
		}
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, render.Sizing(cands, ds))
	return nil
}
