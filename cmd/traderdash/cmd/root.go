package cmd

import (
	"fmt"
	"os"

	"github.com/rustyeddy/traderdash/config"
	"github.com/rustyeddy/traderdash/internal/logger"
	"github.com/spf13/cobra"
)

// Commands carrying this annotation skip config loading and the gate.
const standalone = "standalone"

// Commands carrying this annotation load config but skip the gate.
const ungated = "ungated"

var rootCmd = &cobra.Command{
	Use:   "traderdash",
	Short: "Terminal dashboard for a trading automation backend",
	Long: `traderdash polls a trading automation backend and shows its health,
broker positions, trade journal and scan results.

It can also close positions, fire the liquidation kill switch, upload
signal files and archive the journal locally.

Run "traderdash login" first; every backend command needs the access key.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	cfgFile  string
	logLevel string

	// app is built by setup for each invocation.
	app *App
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
}

func setup(cmd *cobra.Command, args []string) error {
	if annotated(cmd, standalone) {
		return nil
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger.Init(cfg.Log.Level, os.Stderr)

	a, err := NewApp(cfg)
	if err != nil {
		return err
	}
	app = a

	if annotated(cmd, ungated) {
		return nil
	}
	if err := app.Gate.Require(); err != nil {
		return fmt.Errorf("%w (run traderdash login)", err)
	}
	return nil
}

// annotated walks up from cmd looking for key.
func annotated(cmd *cobra.Command, key string) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[key]; ok {
			return true
		}
	}
	return false
}

func mark(key string) map[string]string { return map[string]string{key: ""} }
