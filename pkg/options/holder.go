package options

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// HolderConfig configures a Holder.
type HolderConfig struct {
	// Environment is passed to every snapshot; it gates developer mode.
	Environment string

	// Retry controls how often a failing store is retried per reload.
	Retry RetryConfig
}

// Holder serves the current snapshot and swaps in new ones on reload.
// Current never blocks and never returns nil.
type Holder struct {
	store    Store
	fallback *SnapshotCache
	cfg      HolderConfig
	logger   zerolog.Logger

	current atomic.Pointer[Snapshot]
	loaded  atomic.Bool
	group   singleflight.Group
}

// NewHolder creates a holder serving default settings until the first
// successful reload. fallback may be nil.
func NewHolder(store Store, fallback *SnapshotCache, cfg HolderConfig, logger zerolog.Logger) *Holder {
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = DefaultRetryConfig()
	}
	h := &Holder{
		store:    store,
		fallback: fallback,
		cfg:      cfg,
		logger:   logger,
	}
	h.current.Store(NewSnapshot(Options{}, cfg.Environment, "empty", time.Time{}))
	return h
}

// Current returns the active snapshot.
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Loaded reports whether any reload (or fallback) has succeeded.
func (h *Holder) Loaded() bool {
	return h.loaded.Load()
}

// Reload loads the store and swaps in the result. Concurrent calls share one load.
//
// On failure the active snapshot is kept. If nothing was ever loaded, the
// last known good tree from the fallback cache is activated instead. The
// store error is returned in both cases.
func (h *Holder) Reload(ctx context.Context) error {
	_, err, shared := h.group.Do("reload", func() (any, error) {
		return nil, h.reload(ctx)
	})
	if shared {
		h.logger.Debug().Msg("Joined in-flight options reload")
	}
	return err
}

func (h *Holder) reload(ctx context.Context) error {
	storeName := h.store.Name()

	o, err := loadWithRetry(ctx, h.store, h.cfg.Retry, h.logger)
	empty := errors.Is(err, ErrNoOptions)
	if empty {
		h.logger.Info().Str("store", storeName).Msg("No options stored, using defaults")
		o, err = Options{}, nil
	}

	if err == nil {
		now := time.Now()
		h.activate(NewSnapshot(o, h.cfg.Environment, storeName, now))
		// An empty store leaves the last known good tree in place.
		if h.fallback != nil && !empty {
			if err := h.fallback.Save(o, storeName, now); err != nil {
				h.logger.Warn().Err(err).Msg("Failed to persist last known good options")
			}
		}
		Reloads.WithLabelValues(storeName, "ok").Inc()
		return nil
	}

	if !h.Loaded() && h.fallback != nil {
		cached, savedAt, ferr := h.fallback.LoadWithTime()
		if ferr == nil {
			h.activate(NewSnapshot(cached, h.cfg.Environment, h.fallback.Name(), savedAt))
			Reloads.WithLabelValues(storeName, "fallback").Inc()
			h.logger.Warn().
				Err(err).
				Str("store", storeName).
				Time("saved_at", savedAt).
				Msg("Options store unavailable, serving last known good options")
			return err
		}
		if !errors.Is(ferr, ErrNoOptions) {
			h.logger.Error().Err(ferr).Msg("Failed to read last known good options")
		}
	}

	Reloads.WithLabelValues(storeName, "error").Inc()
	h.logger.Error().
		Err(err).
		Str("store", storeName).
		Str("serving", h.Current().Origin).
		Msg("Options reload failed, keeping current options")
	return err
}

func (h *Holder) activate(s *Snapshot) {
	h.current.Store(s)
	h.loaded.Store(true)
	LoadedTimestamp.Set(float64(s.LoadedAt.Unix()))

	for _, problem := range s.options.Lint() {
		h.logger.Warn().Str("origin", s.Origin).Str("problem", problem).Msg("Option value ignored")
	}

	h.logger.Info().
		Str("origin", s.Origin).
		Bool("developer_mode", s.DeveloperMode()).
		Msg("Options activated")
}

// Run reloads every interval until ctx is cancelled.
func (h *Holder) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_ = h.Reload(ctx)
		}
	}
}
