// Package proxy is a reverse proxy that sets Cache-Control on every page the
// origin serves.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/cache-control/pkg/emitter"
	"github.com/Sternrassler/cache-control/pkg/logging"
	"github.com/Sternrassler/cache-control/pkg/page"
)

// Prometheus metrics for proxied requests.
var (
	// RequestsTotal counts proxied requests by method and origin status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cachecontrol_proxy_requests_total",
		Help: "Total proxied requests by method and status",
	}, []string{"method", "status"})

	// RequestDuration tracks origin round trips.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cachecontrol_proxy_request_duration_seconds",
		Help:    "Origin round trip duration in seconds by method",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"method"})

	// OriginErrors counts failed origin round trips by ErrorClass.
	OriginErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cachecontrol_proxy_origin_errors_total",
		Help: "Total origin errors by class",
	}, []string{"class"})
)

// ErrorClass classifies origin failures.
type ErrorClass string

const (
	// ErrorClassTimeout is an origin round trip exceeding Config.Timeout.
	ErrorClassTimeout ErrorClass = "timeout"

	// ErrorClassCanceled is a client that went away.
	ErrorClassCanceled ErrorClass = "canceled"

	// ErrorClassNetwork is any other transport failure.
	ErrorClassNetwork ErrorClass = "network"
)

// ClassifyError returns the ErrorClass of an origin failure.
func ClassifyError(err error) ErrorClass {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ErrorClassCanceled
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorClassTimeout
	}
	return ErrorClassNetwork
}

// Config holds proxy configuration.
type Config struct {
	// Origin is the site behind the proxy (required).
	Origin string

	// Timeout bounds one origin round trip. Zero means 30s.
	Timeout time.Duration

	// Transport is used for origin requests. Nil uses http.DefaultTransport.
	Transport http.RoundTripper

	// Page builds the page context from an origin response. Nil reads the
	// X-Page-* headers and the default logged-in cookie.
	Page emitter.PageFunc
}

// Proxy forwards requests to the origin and decides Cache-Control for the
// responses.
type Proxy struct {
	origin  *url.URL
	timeout time.Duration
	rp      *httputil.ReverseProxy
	emitter *emitter.Emitter
	pageFn  emitter.PageFunc
	logger  zerolog.Logger
}

// New creates a proxy.
func New(cfg Config, em *emitter.Emitter, logger zerolog.Logger) (*Proxy, error) {
	if em == nil {
		return nil, fmt.Errorf("emitter is required")
	}
	origin, err := url.Parse(cfg.Origin)
	if err != nil {
		return nil, fmt.Errorf("parse origin: %w", err)
	}
	if origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("origin must be an absolute URL, got %q", cfg.Origin)
	}

	p := &Proxy{
		origin:  origin,
		timeout: cfg.Timeout,
		emitter: em,
		pageFn:  cfg.Page,
		logger:  logger,
	}
	if p.timeout <= 0 {
		p.timeout = 30 * time.Second
	}
	if p.pageFn == nil {
		p.pageFn = emitter.HeaderPage(page.DefaultLoggedInCookiePrefixes, nil)
	}

	p.rp = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(origin)
			pr.SetXForwarded()
			pr.Out.Host = pr.In.Host
		},
		Transport:      cfg.Transport,
		ModifyResponse: p.modifyResponse,
		ErrorHandler:   p.handleError,
	}

	return p, nil
}

// ServeHTTP implements http.Handler.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), p.timeout)
	defer cancel()

	start := time.Now()
	p.rp.ServeHTTP(w, r.WithContext(ctx))
	RequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
}

func (p *Proxy) modifyResponse(resp *http.Response) error {
	RequestsTotal.WithLabelValues(resp.Request.Method, strconv.Itoa(resp.StatusCode)).Inc()

	// Only page views get a decision.
	if m := resp.Request.Method; m != http.MethodGet && m != http.MethodHead {
		page.StripHeaders(resp.Header)
		return nil
	}

	pc := p.pageFn(resp.Request, resp.Header)
	d := p.emitter.Emit(resp.Header, pc)
	page.StripHeaders(resp.Header)

	logger := logging.WithRequest(p.logger, resp.Request)
	logger.Debug().
		Int("status_code", resp.StatusCode).
		Str("decision", d.String()).
		Msg("Cache-Control decided")

	return nil
}

func (p *Proxy) handleError(w http.ResponseWriter, r *http.Request, err error) {
	class := ClassifyError(err)
	OriginErrors.WithLabelValues(string(class)).Inc()
	RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(http.StatusBadGateway)).Inc()

	logger := logging.WithRequest(p.logger, r)
	logger.Error().
		Err(err).
		Str("error_class", string(class)).
		Msg("Origin request failed")

	http.Error(w, "bad gateway", http.StatusBadGateway)
}
