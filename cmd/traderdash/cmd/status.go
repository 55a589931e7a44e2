package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rustyeddy/traderdash/internal/render"
	"github.com/rustyeddy/traderdash/poller"
	"github.com/rustyeddy/traderdash/view"
	"github.com/spf13/cobra"
)

var screens = map[string]view.Resource{
	"control":   view.ControlCenter,
	"portfolio": view.Portfolio,
	"journal":   view.Journal,
	"all":       view.Everything,
}

func parseScreen(name string) (view.Resource, error) {
	res, ok := screens[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown screen %q (control, portfolio, journal, all)", name)
	}
	return res, nil
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Fetch once and print the dashboard",
	Long: `Read the backend once and print a dashboard screen.

Screens:
  control   - system health and uploaded files
  portfolio - health and broker positions
  journal   - trade journal statistics and equity curve
  all       - everything (default)`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "List broker positions",
	Args:  cobra.NoArgs,
	RunE:  runPositions,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the backend and redraw the dashboard",
	Long: `Poll the backend on the configured interval and redraw after every
cycle. Type "r" and Enter to refresh at once, "q" to quit.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	screenName    string
	watchInterval time.Duration
)

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(positionsCmd)
	rootCmd.AddCommand(watchCmd)

	statusCmd.Flags().StringVarP(&screenName, "screen", "s", "all", "screen to show")
	watchCmd.Flags().StringVarP(&screenName, "screen", "s", "all", "screen to show")
	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "i", 0, "override poll.interval")
}

func runStatus(cmd *cobra.Command, args []string) error {
	res, err := parseScreen(screenName)
	if err != nil {
		return err
	}
	s := view.Fetch(app.Client, res)(cmd.Context())
	fmt.Fprintln(cmd.OutOrStdout(), render.Dashboard(s, s.Positions, view.Synced, nil))
	return nil
}

func runPositions(cmd *cobra.Command, args []string) error {
	s := view.Fetch(app.Client, view.ResPositions)(cmd.Context())
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, render.Portfolio(s.Portfolio))
	fmt.Fprintln(out, render.Positions(s.Positions, view.Synced))
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	res, err := parseScreen(screenName)
	if err != nil {
		return err
	}
	interval := watchInterval
	if interval <= 0 {
		if interval, err = app.Config.Poll.IntervalDuration(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := app.Model()
	p := poller.New(interval, view.Fetch(app.Client, res), m.Apply)
	m.SetRefresher(p.Refresh)

	out := cmd.OutOrStdout()
	var drawMu sync.Mutex
	m.Subscribe(func(s view.Snapshot) {
		drawMu.Lock()
		defer drawMu.Unlock()
		fmt.Fprint(out, "\033[2J\033[H")
		fmt.Fprintln(out, render.Dashboard(s, s.Positions, m.PositionsState(), m.Notices()))
	})

	if err := p.Start(ctx); err != nil {
		return err
	}
	defer p.Stop()

	go readKeys(cmd.InOrStdin(), p.Refresh, stop)

	<-ctx.Done()
	return nil
}

// readKeys handles the watch screen's line commands until in closes.
func readKeys(in io.Reader, refresh func() bool, quit func()) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		switch strings.TrimSpace(sc.Text()) {
		case "r":
			refresh()
		case "q":
			quit()
			return
		}
	}
}
