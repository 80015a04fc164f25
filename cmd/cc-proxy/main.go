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

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/cache-control/internal/config"
	"github.com/Sternrassler/cache-control/pkg/emitter"
	"github.com/Sternrassler/cache-control/pkg/logging"
	"github.com/Sternrassler/cache-control/pkg/options"
	"github.com/Sternrassler/cache-control/pkg/proxy"
	"github.com/Sternrassler/cache-control/pkg/resolver"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "options" {
		if err := runOptionsCommand(os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "cc-proxy options: %v\n", err)
			os.Exit(2)
		}
		return
	}

	var configPath string
	flag.StringVar(&configPath, "config", getEnv("CC_CONFIG", ""), "path to cc-proxy.yaml")
	flag.Parse()

	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Pretty,
		Output: os.Stderr,
	})
	logger := logging.NewLogger("cc-proxy")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

// app holds the wired components of a running proxy.
type app struct {
	holder  *options.Holder
	proxy   *proxy.Proxy
	ready   readyFunc
	cleanup []func() error
}

func (a *app) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		_ = a.cleanup[i]()
	}
}

// build wires the option store, resolver, emitter and proxy from cfg.
func build(cfg *config.Config) (*app, error) {
	a := &app{}

	var store options.Store
	switch cfg.Options.Store {
	case config.StoreRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Options.Redis.Address,
			Password: cfg.Options.Redis.Password,
			DB:       cfg.Options.Redis.DB,
		})
		a.cleanup = append(a.cleanup, redisClient.Close)
		store = options.NewRedisStore(redisClient, cfg.Options.Redis.KeyPrefix, logging.NewLogger("options"))
		a.ready = redisReady(redisClient)
	default:
		store = options.NewFileStore(cfg.Options.Path)
	}

	var fallback *options.SnapshotCache
	if cfg.Options.SnapshotDir != "" {
		var err error
		fallback, err = options.OpenSnapshotCache(cfg.Options.SnapshotDir)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("open snapshot cache: %w", err)
		}
		a.cleanup = append(a.cleanup, fallback.Close)
	}

	a.holder = options.NewHolder(store, fallback, options.HolderConfig{
		Environment: cfg.Environment,
		Retry:       cfg.Options.HolderRetry(),
	}, logging.NewLogger("options"))

	em := emitter.New(resolver.New(logging.NewLogger("resolver")), func() resolver.ConfigSource {
		return a.holder.Current()
	})

	px, err := proxy.New(proxy.Config{
		Origin:  cfg.Server.Origin,
		Timeout: cfg.Server.Timeout,
		Page:    emitter.HeaderPage(cfg.Page.LoggedInCookiePrefixes, cfg.Page.PublicPostTypes),
	}, em, logging.NewLogger("proxy"))
	if err != nil {
		a.close()
		return nil, fmt.Errorf("create proxy: %w", err)
	}
	a.proxy = px

	return a, nil
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	a, err := build(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.holder.Reload(ctx); err != nil {
		logger.Warn().Err(err).Str("serving", a.holder.Current().Origin).Msg("Initial options load failed")
	}
	go a.holder.Run(ctx, cfg.Options.ReloadInterval)

	servers := []*http.Server{
		{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           a.proxy,
			ReadHeaderTimeout: 10 * time.Second,
		},
		{
			Addr:              fmt.Sprintf(":%d", cfg.Server.AdminPort),
			Handler:           newAdminMux(a.holder, a.ready, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			logger.Info().Str("addr", srv.Addr).Msg("Listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("listen %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	logger.Info().
		Str("origin", cfg.Server.Origin).
		Str("environment", cfg.Environment).
		Str("store", cfg.Options.Store).
		Msg("Starting cache-control proxy")

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Str("addr", srv.Addr).Msg("Shutdown failed")
		}
	}
	logger.Info().Msg("Stopped")

	return runErr
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
