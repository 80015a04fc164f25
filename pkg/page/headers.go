package page

import (
	"net/http"
	"strconv"
	"strings"
)

// Headers the origin uses to describe the page it rendered.
const (
	HeaderPostType   = "X-Page-Post-Type"
	HeaderTaxonomies = "X-Page-Taxonomies"
	HeaderTemplate   = "X-Page-Template"
	HeaderPostID     = "X-Page-Post-Id"
	HeaderFlags      = "X-Page-Flags"
)

// Flag values accepted in HeaderFlags.
const (
	FlagAdmin     = "admin"
	FlagArchive   = "archive"
	FlagFrontPage = "front-page"
	FlagHomePage  = "home-page"
	FlagLoggedIn  = "logged-in"
	FlagPreview   = "preview"
	FlagPassword  = "password"
)

// DefaultLoggedInCookiePrefixes identifies WordPress session cookies.
var DefaultLoggedInCookiePrefixes = []string{"wordpress_logged_in_"}

// FromHeaders builds a Snapshot from the X-Page-* headers of an origin response.
// Missing or malformed headers leave the corresponding field unset.
func FromHeaders(h http.Header) Snapshot {
	s := Snapshot{
		Type:          strings.TrimSpace(h.Get(HeaderPostType)),
		TaxonomyNames: splitList(h.Values(HeaderTaxonomies)),
		Template:      strings.TrimSpace(h.Get(HeaderTemplate)),
	}

	if id, err := strconv.Atoi(strings.TrimSpace(h.Get(HeaderPostID))); err == nil && id > 0 {
		s.ID = id
	}

	for _, flag := range splitList(h.Values(HeaderFlags)) {
		switch strings.ToLower(flag) {
		case FlagAdmin:
			s.Admin = true
		case FlagArchive:
			s.Archive = true
		case FlagFrontPage:
			s.FrontPage = true
		case FlagHomePage:
			s.HomePage = true
		case FlagLoggedIn:
			s.LoggedIn = true
		case FlagPreview:
			s.Preview = true
		case FlagPassword:
			s.PasswordRequired = true
		}
	}

	return s
}

// StripHeaders removes the X-Page-* headers so they never reach the client.
func StripHeaders(h http.Header) {
	for _, k := range []string{HeaderPostType, HeaderTaxonomies, HeaderTemplate, HeaderPostID, HeaderFlags} {
		h.Del(k)
	}
}

// SetHeaders writes s as X-Page-* headers. Origins written in Go use it to
// describe their pages to the proxy.
func SetHeaders(h http.Header, s Snapshot) {
	if s.Type != "" {
		h.Set(HeaderPostType, s.Type)
	}
	if len(s.TaxonomyNames) > 0 {
		h.Set(HeaderTaxonomies, strings.Join(s.TaxonomyNames, ","))
	}
	if s.Template != "" {
		h.Set(HeaderTemplate, s.Template)
	}
	if s.ID > 0 {
		h.Set(HeaderPostID, strconv.Itoa(s.ID))
	}

	var flags []string
	for _, f := range []struct {
		on   bool
		name string
	}{
		{s.Admin, FlagAdmin},
		{s.Archive, FlagArchive},
		{s.FrontPage, FlagFrontPage},
		{s.HomePage, FlagHomePage},
		{s.LoggedIn, FlagLoggedIn},
		{s.Preview, FlagPreview},
		{s.PasswordRequired, FlagPassword},
	} {
		if f.on {
			flags = append(flags, f.name)
		}
	}
	if len(flags) > 0 {
		h.Set(HeaderFlags, strings.Join(flags, ","))
	}
}

// HasCookiePrefix reports whether the request carries a cookie whose name
// starts with one of prefixes.
func HasCookiePrefix(r *http.Request, prefixes []string) bool {
	if r == nil || len(prefixes) == 0 {
		return false
	}
	for _, c := range r.Cookies() {
		for _, p := range prefixes {
			p = strings.TrimSpace(p)
			if p != "" && strings.HasPrefix(c.Name, p) {
				return true
			}
		}
	}
	return false
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
