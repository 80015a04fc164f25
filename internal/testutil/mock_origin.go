// Package testutil provides testing utilities for the cache-control proxy.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/Sternrassler/cache-control/pkg/page"
	"github.com/Sternrassler/cache-control/pkg/settings"
)

// MockPage defines the response of one mock origin path.
type MockPage struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Page       page.Snapshot
	Delay      time.Duration
}

// MockOrigin is a configurable mock site that describes its pages with
// X-Page-* headers.
type MockOrigin struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
}

// NewMockOrigin creates a new mock origin server.
func NewMockOrigin() *MockOrigin {
	mock := &MockOrigin{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		// Unknown pages render as a plain post without X-Page-* data.
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html></html>"))
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockOrigin) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockOrigin) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockOrigin) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockOrigin) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetPage configures the response for a path.
func (m *MockOrigin) SetPage(path string, p MockPage) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if p.Delay > 0 {
			select {
			case <-time.After(p.Delay):
			case <-r.Context().Done():
				return
			}
		}

		for key, value := range p.Headers {
			w.Header().Set(key, value)
		}
		page.SetHeaders(w.Header(), p.Page)

		status := p.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		if p.Body != "" {
			w.Write([]byte(p.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockOrigin) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetLastRequestHeader returns the headers of the last request.
func (m *MockOrigin) GetLastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestHeader
}

// NewPostPage creates a 200 response for a single post.
func NewPostPage(postType string, postID int, taxonomies ...string) MockPage {
	return MockPage{
		StatusCode: http.StatusOK,
		Body:       "<html>post</html>",
		Headers:    map[string]string{"Content-Type": "text/html; charset=utf-8"},
		Page:       page.Snapshot{Type: postType, ID: postID, TaxonomyNames: taxonomies},
	}
}

// NewArchivePage creates a 200 response for an archive listing.
func NewArchivePage(postType string, taxonomies ...string) MockPage {
	return MockPage{
		StatusCode: http.StatusOK,
		Body:       "<html>archive</html>",
		Headers:    map[string]string{"Content-Type": "text/html; charset=utf-8"},
		Page:       page.Snapshot{Type: postType, Archive: true, TaxonomyNames: taxonomies},
	}
}

// NewFrontPage creates a 200 response for the site front page.
func NewFrontPage() MockPage {
	return MockPage{
		StatusCode: http.StatusOK,
		Body:       "<html>front</html>",
		Headers:    map[string]string{"Content-Type": "text/html; charset=utf-8"},
		Page:       page.Snapshot{Type: settings.PageType, FrontPage: true},
	}
}

// NewNoCachePage creates a response whose origin already forbids caching.
func NewNoCachePage() MockPage {
	return MockPage{
		StatusCode: http.StatusOK,
		Body:       "<html>checkout</html>",
		Headers: map[string]string{
			"Content-Type":  "text/html; charset=utf-8",
			"Cache-Control": "no-cache",
		},
		Page: page.Snapshot{Type: settings.PageType},
	}
}
