package proxy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/cache-control/internal/testutil"
	"github.com/Sternrassler/cache-control/pkg/emitter"
	"github.com/Sternrassler/cache-control/pkg/options"
	"github.com/Sternrassler/cache-control/pkg/page"
	"github.com/Sternrassler/cache-control/pkg/resolver"
)

func testEmitter() *emitter.Emitter {
	snap := options.NewSnapshot(options.Options{
		Global: map[string]any{
			options.FieldFrontPageCache: "3600",
			options.FieldArchivesCache:  "120",
		},
		PostTypes: map[string]map[string]any{
			"post": {options.FieldCacheAge: "900", options.FieldOverriddenByTaxonomy: false},
		},
		Taxonomies: map[string]map[string]any{
			"category": {options.FieldCacheAge: "1800", options.FieldPriority: 1},
		},
	}, "production", "test", time.Now())
	return emitter.New(resolver.New(zerolog.Nop()), func() resolver.ConfigSource { return snap })
}

func newTestProxy(t *testing.T, origin string, timeout time.Duration) *Proxy {
	t.Helper()
	p, err := New(Config{Origin: origin, Timeout: timeout}, testEmitter(), zerolog.Nop())
	require.NoError(t, err)
	return p
}

func do(p http.Handler, method, path string, cookies ...*http.Cookie) *http.Response {
	req := httptest.NewRequest(method, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, req)
	return rec.Result()
}

func TestProxyCacheControl(t *testing.T) {
	origin := testutil.NewMockOrigin()
	defer origin.Close()

	origin.SetPage("/", testutil.NewFrontPage())
	origin.SetPage("/hello-world/", testutil.NewPostPage("post", 12, "category"))
	origin.SetPage("/category/news/", testutil.NewArchivePage("post", "category"))
	origin.SetPage("/checkout/", testutil.NewNoCachePage())

	p := newTestProxy(t, origin.URL(), time.Second)

	tests := []struct {
		name   string
		path   string
		cookie *http.Cookie
		want   []string
	}{
		{"front_page", "/", nil, []string{"max-age=3600, public"}},
		{"post", "/hello-world/", nil, []string{"max-age=900, public"}},
		{"archive_taxonomy", "/category/news/", nil, []string{"max-age=1800, public"}},
		{"unknown_page", "/about/", nil, []string{"max-age=86400, public"}},
		{"upstream_no_cache", "/checkout/", nil, []string{"no-cache"}},
		{"logged_in", "/hello-world/", &http.Cookie{Name: "wordpress_logged_in_0a1b", Value: "admin"}, []string{emitter.NoStoreValue}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cookies []*http.Cookie
			if tt.cookie != nil {
				cookies = append(cookies, tt.cookie)
			}
			resp := do(p, http.MethodGet, tt.path, cookies...)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.want, resp.Header.Values(emitter.HeaderCacheControl))
			for _, h := range []string{page.HeaderPostType, page.HeaderTaxonomies, page.HeaderPostID, page.HeaderFlags} {
				assert.Empty(t, resp.Header.Get(h), "%s must not leave the proxy", h)
			}
		})
	}
}

func TestProxyForwardsRequest(t *testing.T) {
	origin := testutil.NewMockOrigin()
	defer origin.Close()
	origin.SetPage("/post/", testutil.NewPostPage("post", 1))

	p := newTestProxy(t, origin.URL(), time.Second)

	req := httptest.NewRequest(http.MethodGet, "http://www.example.org/post/?p=1", nil)
	req.RemoteAddr = "192.0.2.10:4711"
	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, req)

	resp := rec.Result()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "<html>post</html>", string(body))
	assert.Equal(t, 1, origin.GetRequestCount())

	hdr := origin.GetLastRequestHeader()
	assert.Equal(t, "192.0.2.10", hdr.Get("X-Forwarded-For"))
	assert.Equal(t, "www.example.org", hdr.Get("X-Forwarded-Host"))
}

func TestProxyNonGETPassesThrough(t *testing.T) {
	origin := testutil.NewMockOrigin()
	defer origin.Close()
	origin.SetPage("/wp-comments-post.php", testutil.NewPostPage("post", 3))

	p := newTestProxy(t, origin.URL(), time.Second)
	resp := do(p, http.MethodPost, "/wp-comments-post.php")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(emitter.HeaderCacheControl))
	assert.Empty(t, resp.Header.Get(page.HeaderPostType))
}

func TestProxyOriginDown(t *testing.T) {
	origin := testutil.NewMockOrigin()
	url := origin.URL()
	origin.Close()

	p := newTestProxy(t, url, time.Second)
	resp := do(p, http.MethodGet, "/")

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(emitter.HeaderCacheControl))
}

func TestProxyTimeout(t *testing.T) {
	origin := testutil.NewMockOrigin()
	defer origin.Close()

	slow := testutil.NewPostPage("post", 5)
	slow.Delay = 500 * time.Millisecond
	origin.SetPage("/slow/", slow)

	p := newTestProxy(t, origin.URL(), 50*time.Millisecond)

	start := time.Now()
	resp := do(p, http.MethodGet, "/slow/")

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestProxyCustomPage(t *testing.T) {
	origin := testutil.NewMockOrigin()
	defer origin.Close()
	origin.SetPage("/hello-world/", testutil.NewPostPage("post", 12))

	p, err := New(Config{
		Origin: origin.URL(),
		Page:   emitter.HeaderPage([]string{"wp-postpass_"}, nil),
	}, testEmitter(), zerolog.Nop())
	require.NoError(t, err)

	resp := do(p, http.MethodGet, "/hello-world/", &http.Cookie{Name: "wp-postpass_abc", Value: "x"})
	assert.Equal(t, emitter.NoStoreValue, resp.Header.Get(emitter.HeaderCacheControl))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		emitter *emitter.Emitter
		errMsg  string
	}{
		{"no_emitter", "http://origin", nil, "emitter"},
		{"relative_origin", "/origin", testEmitter(), "absolute"},
		{"bad_origin", "http://[::1", testEmitter(), "parse origin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Config{Origin: tt.origin}, tt.emitter, zerolog.Nop())
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("New() error = %v, want containing %q", err, tt.errMsg)
			}
		})
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorClass
	}{
		{context.DeadlineExceeded, ErrorClassTimeout},
		{context.Canceled, ErrorClassCanceled},
		{timeoutErr{}, ErrorClassTimeout},
		{errors.New("connection refused"), ErrorClassNetwork},
	}

	for _, tt := range tests {
		if got := ClassifyError(tt.err); got != tt.want {
			t.Errorf("ClassifyError(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
