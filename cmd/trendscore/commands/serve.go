package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/trendscore/internal/api"
	"github.com/wonny/trendscore/internal/api/handlers"
	"github.com/wonny/trendscore/internal/realtime"
	"github.com/wonny/trendscore/internal/scheduler"
	"github.com/wonny/trendscore/internal/scheduler/jobs"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and warm-up scheduler",
	Long: `Starts the HTTP API, the websocket progress stream and the cache warm-up scheduler.

Endpoints:
  GET  /health
  GET  /api/ranking                   - ranked table (query mirrors scan flags)
  GET  /api/ranking/{symbol}          - detail view
  POST /api/cache/invalidate          - clear cache (?rerun=true recomputes defaults)
  GET  /api/scheduler/jobs            - job stats
  POST /api/scheduler/jobs/{name}/run - trigger a job
  GET  /ws/progress                   - run progress stream

Example:
  go run ./cmd/trendscore serve
  go run ./cmd/trendscore serve --port 9000`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "", "API port (default: PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	hub := realtime.NewHub(log)

	a, err := wire(cfg, log, hub)
	if err != nil {
		return err
	}
	defer a.Close()

	if servePort != "" {
		a.cfg.Port = servePort
	}

	// Scheduler
	var sched *scheduler.Scheduler
	if a.cfg.Scheduler.Enabled {
		sched = scheduler.New(log)
		if err := sched.AddJob(jobs.NewWarmupJob(a.runner, a.cfg.Scheduler.WarmupCron, log)); err != nil {
			return err
		}
		if a.memCache != nil {
			if err := sched.AddJob(jobs.NewCacheCleanupJob(a.memCache, log)); err != nil {
				return err
			}
		}
		sched.Start()
		defer sched.Stop()
	}

	h := api.Handlers{
		Ranking: handlers.NewRankingHandler(a.runner, log),
		Cache:   handlers.NewCacheHandler(a.runner, log),
		Hub:     hub,
	}
	if sched != nil {
		h.Scheduler = handlers.NewSchedulerHandler(sched, log)
	}

	server := api.New(a.cfg, log, api.NewRouter(h, log))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-quit:
	}

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Close(ctx)
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
