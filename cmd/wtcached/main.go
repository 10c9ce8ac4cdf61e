// Command wtcached serves a write-through string cache over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/unkn0wn-root/wtcache"
	"github.com/unkn0wn-root/wtcache/internal/config"
	"github.com/unkn0wn-root/wtcache/internal/httpapi"
	wtzap "github.com/unkn0wn-root/wtcache/log/zap"
	"github.com/unkn0wn-root/wtcache/promhooks"
	"github.com/unkn0wn-root/wtcache/task"
)

const metricsNamespace = "wtcached"

var configPath = flag.String("config", "", "path to the INI config file; defaults apply when empty")

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			// no logger yet
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("wtcached exited", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	pool := task.NewPool("wtcached", cfg.Workers, cfg.Queue)
	defer pool.Shutdown()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	hooks := promhooks.New(metricsNamespace)
	if err := hooks.Register(reg); err != nil {
		return err
	}

	c, err := wtcache.New[string, string](wtcache.Options[string, string]{
		Store:    st,
		Executor: pool,
		Logger:   wtzap.New(logger),
		Hooks:    hooks,
	})
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Close(closeCtx); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
	}()
	if err := promhooks.RegisterEntries(reg, metricsNamespace, c.Len); err != nil {
		return err
	}

	if cfg.StatsSchedule != "" {
		jobs := cron.New()
		if err := jobs.AddFunc(cfg.StatsSchedule, func() { logStats(logger, c, pool) }); err != nil {
			return err
		}
		jobs.Start()
		defer jobs.Stop()
	}

	api := httpapi.New(httpapi.Options{
		Cache:   c,
		Logger:  wtzap.New(logger.Named("http")),
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Timeout: 30 * time.Second,
	})
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("store", cfg.Store),
			zap.Int("workers", cfg.Workers))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		api.SetDraining(true)
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func logStats(logger *zap.Logger, c wtcache.Cache[string, string], pool *task.Pool) {
	ps := pool.Stats()
	logger.Info("stats",
		zap.Int("entries", c.Len()),
		zap.Int("workers", ps.Workers),
		zap.Int64("active", ps.Active),
		zap.Int64("completed", ps.Completed),
		zap.Int64("panicked", ps.Panicked),
		zap.Int("pending", ps.Pending))
}
