package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seo-optimizer/auditor/api"
	"github.com/seo-optimizer/auditor/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes the audit engine over HTTP:

  GET  /api/health
  POST /api/analyze     {"url": "...", "fast": false, "cache_ttl_seconds": 3600}
  POST /api/download    {"audit": <result>}
  GET  /api/statistics
  GET  /metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logMode := logging.ModeRelease
	if cfg.Server.Mode == "debug" {
		logMode = logging.ModeDebug
	}
	a, err := newApp(cfg, logMode)
	if err != nil {
		return err
	}
	defer a.close()

	server := api.NewServer(api.Options{
		Auditor:           a.analyzer,
		Statistics:        logging.NewStatistics(cfg.Stats.RequestsFile, a.log.Named("statistics")),
		Monthly:           a.analyzer.Stats(),
		Metrics:           a.metrics,
		Logger:            a.log.Named("http"),
		GinMode:           cfg.Server.Mode,
		DevMode:           cfg.Server.DevMode,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	a.log.Info("server starting", zap.String("addr", "http://localhost:"+cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
	case <-quit:
	}

	a.log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		a.log.Error("server forced to shutdown", zap.Error(err))
	}
	if err := server.Statistics().Save(); err != nil {
		a.log.Warn("failed to save request statistics", zap.Error(err))
	}
	return nil
}
