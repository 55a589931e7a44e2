package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rustyeddy/traderdash/internal/logger"
	"github.com/rustyeddy/traderdash/internal/stub"
	"github.com/spf13/cobra"
)

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Serve a fake backend with seeded data",
	Long: `Serve an in-memory stand-in for the trading backend, seeded with a
few positions, journal entries and a scan result. Useful for trying the
dashboard without a broker account.

Example:
  traderdash stub --addr :8000 --key secret
  TRADERDASH_BACKEND_URL=http://localhost:8000 traderdash login --key secret`,
	Args:        cobra.NoArgs,
	Annotations: mark(standalone),
	RunE:        runStub,
}

var (
	stubAddr   string
	stubKey    string
	stubHeader string
)

func init() {
	rootCmd.AddCommand(stubCmd)

	stubCmd.Flags().StringVarP(&stubAddr, "addr", "a", ":8000", "listen address")
	stubCmd.Flags().StringVarP(&stubKey, "key", "k", "", "access key to require (empty accepts any)")
	stubCmd.Flags().StringVar(&stubHeader, "header", "X-Admin-Key", "access key header")
}

func runStub(cmd *cobra.Command, args []string) error {
	logger.Init(logLevelOr("info"), os.Stderr)
	gin.SetMode(gin.ReleaseMode)

	s := stub.New(stubHeader, stubKey)
	s.Seed()

	srv := &http.Server{
		Addr:              stubAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	fmt.Fprintf(cmd.OutOrStdout(), "stub backend listening on %s\n", stubAddr)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func logLevelOr(def string) string {
	if logLevel != "" {
		return logLevel
	}
	return def
}
