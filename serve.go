package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/lukemcguire/docscrape/api"
	"github.com/lukemcguire/docscrape/crawler"
	"github.com/lukemcguire/docscrape/logger"
	"github.com/lukemcguire/docscrape/metrics"
	"github.com/lukemcguire/docscrape/output"
	"github.com/lukemcguire/docscrape/task"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the crawl HTTP API",
		Long: `Serve starts the HTTP API:

  POST /api/scrape                 start a crawl
  GET  /api/progress/{task_id}     poll its progress
  GET  /api/result/{task_id}       fetch the result as JSON
  GET  /api/download/{task_id}     download the export
  GET  /api/tasks                  list all tasks
  GET  /health, /metrics

The server shuts down gracefully on SIGINT or SIGTERM. Running crawls are
cancelled and marked as failed.`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}
	cmd.Flags().StringP("address", "a", "", "Listen address (overrides server.address)")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("address"); addr != "" {
		cfg.Server.Address = addr
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	opts := []task.RunnerOption{task.WithLogger(log), task.WithMetrics(m)}
	if cfg.Output.Enabled {
		mirror := output.NewOS(cfg.Output.Dir, log)
		opts = append(opts, task.WithMirror(mirror))
		log.Info("Export mirror enabled", logger.String("dir", mirror.Dir()))
	}
	c := crawler.New(crawlerConfig(cfg.Crawler), crawler.WithLogger(log))
	runner := task.NewRunner(task.NewStore(), c, opts...)

	srv := api.NewServer(api.Config{
		Address:         cfg.Server.Address,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		SubmitRate:      cfg.API.SubmitRate,
		SubmitBurst:     cfg.API.SubmitBurst,
	}, api.NewHandler(ctx, runner, log), m, log)

	err = srv.Run(ctx)
	stop()
	runner.Wait()
	log.Info("Server stopped")
	return err
}
