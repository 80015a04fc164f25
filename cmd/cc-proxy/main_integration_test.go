//go:build integration

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/cache-control/internal/config"
	"github.com/Sternrassler/cache-control/internal/testutil"
	"github.com/Sternrassler/cache-control/pkg/options"
)

func setupTestRedis(t *testing.T) (string, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := redisC.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisC.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cleanup := func() {
		redisC.Terminate(ctx)
	}

	return host + ":" + port.Port(), cleanup
}

// TestFullRequestFlow covers Redis options → reload → proxy → Cache-Control.
func TestFullRequestFlow(t *testing.T) {
	addr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()

	origin := testutil.NewMockOrigin()
	defer origin.Close()
	origin.SetPage("/", testutil.NewFrontPage())
	origin.SetPage("/hello-world/", testutil.NewPostPage("post", 42, "category"))

	cfg := config.DefaultConfig()
	cfg.Server.Origin = origin.URL()
	cfg.Options.Store = config.StoreRedis
	cfg.Options.Redis.Address = addr
	cfg.Options.SnapshotDir = t.TempDir()
	require.NoError(t, cfg.Validate())

	a, err := build(cfg)
	require.NoError(t, err)
	defer a.close()

	admin := newAdminMux(a.holder, a.ready, zerolog.Nop())

	writer := options.NewRedisStore(redis.NewClient(&redis.Options{Addr: addr}), cfg.Options.Redis.KeyPrefix, zerolog.Nop())
	require.NoError(t, writer.Save(ctx, options.Options{
		Global: map[string]any{options.FieldFrontPageCache: "3600"},
		PostTypes: map[string]map[string]any{
			"post": {options.FieldCacheAge: "900"},
		},
		IndividualPosts: []map[string]any{
			{options.FieldPostID: 42, options.FieldCacheAge: "60"},
		},
	}))

	get := func(path string) string {
		w := httptest.NewRecorder()
		a.proxy.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w.Header().Get("Cache-Control")
	}

	// Not loaded yet
	w := httptest.NewRecorder()
	admin.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "max-age=86400, public", get("/"))

	w = httptest.NewRecorder()
	admin.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reload", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = httptest.NewRecorder()
	admin.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "max-age=3600, public", get("/"))
	assert.Equal(t, "max-age=60, public", get("/hello-world/"))

	// Drop the individual override and reload
	require.NoError(t, writer.Save(ctx, options.Options{
		Global: map[string]any{options.FieldFrontPageCache: "3600"},
		PostTypes: map[string]map[string]any{
			"post": {options.FieldCacheAge: "900"},
		},
	}))
	require.NoError(t, a.holder.Reload(ctx))
	assert.Equal(t, "max-age=900, public", get("/hello-world/"))
}

// TestLastKnownGoodAfterRestart checks that a restart with Redis down serves
// the options persisted by the previous process.
func TestLastKnownGoodAfterRestart(t *testing.T) {
	addr, cleanup := setupTestRedis(t)

	ctx := context.Background()
	origin := testutil.NewMockOrigin()
	defer origin.Close()
	origin.SetPage("/", testutil.NewFrontPage())

	cfg := config.DefaultConfig()
	cfg.Server.Origin = origin.URL()
	cfg.Options.Store = config.StoreRedis
	cfg.Options.Redis.Address = addr
	cfg.Options.SnapshotDir = t.TempDir()
	cfg.Options.Retry.MaxAttempts = 1

	writer := options.NewRedisStore(redis.NewClient(&redis.Options{Addr: addr}), "", zerolog.Nop())
	require.NoError(t, writer.Save(ctx, options.Options{
		Global: map[string]any{options.FieldFrontPageCache: "1800"},
	}))

	first, err := build(cfg)
	require.NoError(t, err)
	require.NoError(t, first.holder.Reload(ctx))
	first.close()

	cleanup()

	second, err := build(cfg)
	require.NoError(t, err)
	defer second.close()

	assert.Error(t, second.holder.Reload(ctx))
	assert.Equal(t, "snapshot", second.holder.Current().Origin)

	w := httptest.NewRecorder()
	second.proxy.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "max-age=1800, public", w.Header().Get("Cache-Control"))
}
