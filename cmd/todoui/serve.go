package main

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/vango-dev/todoui"
	"github.com/vango-dev/todoui/internal/config"
	"github.com/vango-dev/todoui/internal/errors"
	"github.com/vango-dev/todoui/pkg/pages"
	"github.com/vango-dev/todoui/pkg/server"
	"github.com/vango-dev/todoui/pkg/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		addr     string
		pagesDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run pages live over WebSocket",
		Long: `Serve the page fixtures in the pages directory as live sessions.

Each WebSocket connection to /live/{page} loads the engine on its own
event loop. Prometheus metrics are served at /metrics when enabled.

Examples:
  todoui serve
  todoui serve --addr :9090 --pages ./fixtures
  todoui serve --pages s3://fixtures/todo
  TODOUI_LOGGER_LEVEL=debug todoui serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if pagesDir != "" {
				cfg.Server.PagesDir = pagesDir
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().StringVarP(&pagesDir, "pages", "p", "", "Page fixture directory (default from config)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fixtures, err := pageSource(cfg)
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(cfg.Logger)
	if err != nil {
		return errors.New("T020").Wrap(err)
	}
	defer func() { _ = logger.Sync() }()

	engine := cfg.Engine.Todoui(logger)
	srvCfg := server.DefaultConfig()
	srvCfg.Address = cfg.Server.Addr
	srvCfg.Origin = cfg.Server.Origin
	srvCfg.Pages = fixtures
	srvCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	srvCfg.Logger = logger

	var observers todoui.Observers
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := telemetry.NewMetrics(
			telemetry.WithRegistry(reg),
			telemetry.WithNamespace(cfg.Metrics.Namespace),
		)
		observers = append(observers, metrics)
		srvCfg.Sessions = metrics
		srvCfg.Gatherer = reg
		srvCfg.MetricsPath = cfg.Metrics.Path
	}
	if cfg.Tracing.Enabled {
		tracer := telemetry.NewTracer(telemetry.WithTracerName(cfg.Tracing.TracerName))
		defer tracer.Close()
		observers = append(observers, tracer)
	}
	if len(observers) > 0 {
		engine.Observer = observers
	}
	srvCfg.Engine = engine

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(srvCfg)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(ctx)
	})

	logger.Info("serving pages",
		zap.String("addr", cfg.Server.Addr),
		zap.String("pages", cfg.Server.PagesDir),
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.Bool("tracing", cfg.Tracing.Enabled),
	)
	if err := g.Wait(); err != nil {
		return errors.New("T030").Wrap(err)
	}
	return nil
}

// pageSource opens the fixture directory or S3 location named by
// server.pages_dir.
func pageSource(cfg *config.Config) (fs.FS, error) {
	dir := cfg.Server.PagesDir
	if pages.IsS3URL(dir) {
		bucket, prefix, err := pages.ParseURL(dir)
		if err != nil {
			return nil, errors.New("T020").Wrap(err)
		}
		client := pages.NewClient(pages.ClientConfig{
			Region:    cfg.Server.S3.Region,
			Endpoint:  cfg.Server.S3.Endpoint,
			PathStyle: cfg.Server.S3.PathStyle,
		})
		return pages.NewS3FS(client, bucket, prefix), nil
	}
	st, err := os.Stat(dir)
	if err != nil {
		return nil, errors.New("T031").Wrap(err)
	}
	if !st.IsDir() {
		return nil, errors.New("T031").WithDetail(dir + " is not a directory.")
	}
	return os.DirFS(dir), nil
}
