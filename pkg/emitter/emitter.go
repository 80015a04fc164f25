package emitter

import (
	"net/http"

	"github.com/Sternrassler/cache-control/pkg/diagnostics"
	"github.com/Sternrassler/cache-control/pkg/page"
	"github.com/Sternrassler/cache-control/pkg/resolver"
)

// SourceFunc returns the settings to resolve against. It is called once per
// response and must not return nil.
type SourceFunc func() resolver.ConfigSource

// PageFunc builds the page context of a response from its request and the
// headers the handler set.
type PageFunc func(r *http.Request, h http.Header) page.Context

// Emitter resolves and writes Cache-Control headers.
type Emitter struct {
	resolver *resolver.Resolver
	source   SourceFunc
}

// New creates an emitter.
func New(r *resolver.Resolver, source SourceFunc) *Emitter {
	return &Emitter{resolver: r, source: source}
}

// Emit resolves pc and writes the outcome into h. h is read first as the
// upstream headers; diagnostics are added to it in developer mode.
func (e *Emitter) Emit(h http.Header, pc page.Context) resolver.Decision {
	d := e.resolver.Resolve(pc, e.source(), h, diagnostics.NewSink(h))
	Apply(h, d)
	return d
}

// HeaderPage returns a PageFunc reading the X-Page-* headers set by the
// handler. Requests carrying a cookie with one of cookiePrefixes count as
// logged in.
func HeaderPage(cookiePrefixes, publicPostTypes []string) PageFunc {
	return func(r *http.Request, h http.Header) page.Context {
		s := page.FromHeaders(h)
		if page.HasCookiePrefix(r, cookiePrefixes) {
			s.LoggedIn = true
		}
		s.PublicTypes = publicPostTypes
		return s
	}
}

// Middleware emits Cache-Control for every response of next. The header is
// decided when next first writes its status. X-Page-* headers are removed
// before the response is sent. A nil pageFn uses HeaderPage with the default
// WordPress session cookie.
func (e *Emitter) Middleware(pageFn PageFunc) func(http.Handler) http.Handler {
	if pageFn == nil {
		pageFn = HeaderPage(page.DefaultLoggedInCookiePrefixes, nil)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{
				ResponseWriter: w,
				emit: func(h http.Header) {
					e.Emit(h, pageFn(r, h))
					page.StripHeaders(h)
				},
			}
			next.ServeHTTP(rw, r)
			if !rw.wroteHeader {
				rw.WriteHeader(http.StatusOK)
			}
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	emit        func(h http.Header)
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.emit(w.ResponseWriter.Header())
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) Flush() {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
