package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/cache-control/internal/config"
	"github.com/Sternrassler/cache-control/internal/testutil"
	"github.com/Sternrassler/cache-control/pkg/options"
)

func writeOptions(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache-control.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	healthHandler(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	if string(body) != "OK" {
		t.Errorf("Expected body 'OK', got %s", string(body))
	}
}

func TestReadyEndpoint(t *testing.T) {
	store := options.NewFileStore(writeOptions(t, "global:\n  home_page_cache: \"600\"\n"))
	holder := options.NewHolder(store, nil, options.HolderConfig{}, zerolog.Nop())

	get := func(ready readyFunc) (*http.Response, readyResponse) {
		w := httptest.NewRecorder()
		readyHandler(holder, ready)(w, httptest.NewRequest("GET", "/ready", nil))
		resp := w.Result()
		var body readyResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode /ready: %v", err)
		}
		return resp, body
	}

	t.Run("not_loaded", func(t *testing.T) {
		resp, body := get(nil)
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", resp.StatusCode)
		}
		if body.Ready || body.Origin != "empty" {
			t.Errorf("body = %+v", body)
		}
	})

	if err := holder.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	t.Run("ready", func(t *testing.T) {
		resp, body := get(nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status 200, got %d", resp.StatusCode)
		}
		if !body.Ready || body.Origin != "file" {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("dependency_down", func(t *testing.T) {
		resp, body := get(func(context.Context) error { return errors.New("redis: connection refused") })
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", resp.StatusCode)
		}
		if !strings.Contains(body.Error, "connection refused") {
			t.Errorf("body.Error = %q", body.Error)
		}
	})
}

func TestReloadEndpoint(t *testing.T) {
	path := writeOptions(t, "global:\n  archives_cache: \"120\"\n")
	holder := options.NewHolder(options.NewFileStore(path), nil, options.HolderConfig{
		Retry: options.RetryConfig{MaxAttempts: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, BackoffMultiplier: 1},
	}, zerolog.Nop())
	mux := newAdminMux(holder, nil, zerolog.Nop())

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("POST", "/reload", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("POST /reload status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := holder.Current().ArchivesMaxAge().Seconds(); got != 120 {
		t.Errorf("ArchivesMaxAge = %d, want 120", got)
	}

	// Wrong method
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/reload", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /reload status = %d, want 405", w.Code)
	}

	// Broken file keeps the current options
	if err := os.WriteFile(path, []byte("global: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("POST", "/reload", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("POST /reload status = %d, want 503", w.Code)
	}
	if got := holder.Current().ArchivesMaxAge().Seconds(); got != 120 {
		t.Errorf("ArchivesMaxAge = %d, want 120 kept", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	holder := options.NewHolder(options.NewFileStore("unused.yaml"), nil, options.HolderConfig{}, zerolog.Nop())
	mux := newAdminMux(holder, nil, zerolog.Nop())

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	bodyStr := string(body)
	if !strings.Contains(bodyStr, "# HELP") || !strings.Contains(bodyStr, "# TYPE") {
		t.Error("Expected Prometheus format metrics output")
	}
	if !strings.Contains(bodyStr, "cachecontrol_options_loaded_timestamp_seconds") {
		t.Error("Expected metrics output to contain cachecontrol_options_loaded_timestamp_seconds")
	}
}

func TestBuildServesDecisions(t *testing.T) {
	origin := testutil.NewMockOrigin()
	defer origin.Close()
	origin.SetPage("/", testutil.NewFrontPage())
	origin.SetPage("/events/", testutil.NewArchivePage("event"))

	cfg := config.DefaultConfig()
	cfg.Server.Origin = origin.URL()
	cfg.Environment = "development"
	cfg.Options.Path = writeOptions(t, `
global:
  developer_mode: true
  front_page_cache: "3600"
  archives_cache: "120"
`)
	cfg.Options.SnapshotDir = filepath.Join(t.TempDir(), "snapshot")

	a, err := build(cfg)
	if err != nil {
		t.Fatalf("build() error = %v", err)
	}
	defer a.close()

	if err := a.holder.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	tests := []struct {
		path  string
		want  string
		debug string
	}{
		{"/", "max-age=3600, public", "frontPage"},
		{"/events/", "max-age=120, public", "archive"},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		a.proxy.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))

		if got := w.Header().Get("Cache-Control"); got != tt.want {
			t.Errorf("GET %s Cache-Control = %q, want %q", tt.path, got, tt.want)
		}
		if got := w.Header().Get("X-Debug-Cache-Control-currently-used-config"); got != tt.debug {
			t.Errorf("GET %s currently-used-config = %q, want %q", tt.path, got, tt.debug)
		}
	}
}

func TestBuildRejectsBadSnapshotDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Server.Origin = "http://localhost"
	cfg.Options.SnapshotDir = filepath.Join(blocker, "snapshot")

	if _, err := build(cfg); err == nil {
		t.Error("build() = nil error, want snapshot cache error")
	}
}

func TestOptionsInit(t *testing.T) {
	var out bytes.Buffer
	err := runOptionsCommand([]string{"init", "-post-types", "post,event", "-taxonomies", "category,region", "-templates", "page-wide.php"}, &out)
	if err != nil {
		t.Fatalf("options init error = %v", err)
	}

	o, err := options.DecodeYAML(out.Bytes())
	if err != nil {
		t.Fatalf("DecodeYAML() error = %v\n%s", err, out.String())
	}
	if len(o.PostTypes) != 2 || len(o.Taxonomies) != 2 || len(o.Templates) != 1 {
		t.Errorf("scaffold = %+v", o)
	}
	if _, ok := o.Templates["page-wide"]; !ok {
		t.Errorf("Templates = %v, want page-wide", o.Templates)
	}
}

func TestOptionsLint(t *testing.T) {
	var out bytes.Buffer
	good := writeOptions(t, "global:\n  front_page_cache: \"3600\"\n")
	if err := runOptionsCommand([]string{"lint", "-file", good}, &out); err != nil {
		t.Errorf("options lint error = %v", err)
	}
	if !strings.Contains(out.String(), "ok") {
		t.Errorf("output = %q, want ok", out.String())
	}

	out.Reset()
	bad := writeOptions(t, "global:\n  front_page_cache: 3600\n")
	if err := runOptionsCommand([]string{"lint", "-file", bad}, &out); err == nil {
		t.Error("options lint = nil error for unquoted global age")
	}
	if !strings.Contains(out.String(), "front_page_cache") {
		t.Errorf("output = %q", out.String())
	}
}

func TestOptionsUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	if err := runOptionsCommand([]string{"drop"}, &out); err == nil {
		t.Error("unknown command = nil error")
	}
	if err := runOptionsCommand(nil, &out); err == nil {
		t.Error("missing command = nil error")
	}
}
