// Package emitter turns resolver decisions into Cache-Control headers.
package emitter

import (
	"net/http"
	"strconv"

	"github.com/Sternrassler/cache-control/pkg/resolver"
)

const (
	// HeaderCacheControl is the header written for every cacheable decision.
	HeaderCacheControl = "Cache-Control"

	// NoStoreValue is sent to logged-in users, password protected pages and previews.
	NoStoreValue = "no-cache, no-store, private"
)

// HeaderValue returns the Cache-Control value for d. ok is false when nothing
// should be written because the upstream already declared no-cache.
func HeaderValue(d resolver.Decision) (value string, ok bool) {
	switch d.Visibility {
	case resolver.PrivateNoStore:
		return NoStoreValue, true
	case resolver.PrivateNoCache:
		return "", false
	default:
		maxAge := d.MaxAge
		if maxAge < 0 {
			maxAge = 0
		}
		return "max-age=" + strconv.Itoa(maxAge) + ", public", true
	}
}

// Apply writes the Cache-Control for d into h, replacing any earlier value.
// It reports whether a header was written.
func Apply(h http.Header, d resolver.Decision) bool {
	value, ok := HeaderValue(d)
	if !ok {
		return false
	}
	h.Set(HeaderCacheControl, value)
	return true
}
