package resolver

import (
	"fmt"

	"github.com/Sternrassler/cache-control/pkg/settings"
)

// Source names the category that produced the final max-age.
type Source string

const (
	SourceDefault        Source = "default"
	SourceIndividualPost Source = "individualPost"
	SourcePostType       Source = "postType"
	SourceTaxonomy       Source = "taxonomy"
	SourceTemplate       Source = "template"
	SourceFrontPage      Source = "frontPage"
	SourceHomePage       Source = "homePage"
	SourceArchive        Source = "archive"
)

func (s Source) String() string { return string(s) }

// Visibility says whether and how the response may be cached.
type Visibility string

const (
	// Public responses get "max-age=N, public".
	Public Visibility = "public"

	// PrivateNoStore responses get "no-cache, no-store, private".
	PrivateNoStore Visibility = "privateNoStore"

	// PrivateNoCache responses keep whatever the upstream set; nothing is written.
	PrivateNoCache Visibility = "privateNoCache"
)

func (v Visibility) String() string { return string(v) }

// Decision is the outcome of one resolution.
type Decision struct {
	MaxAge     int
	Source     Source
	Visibility Visibility
}

// DefaultDecision is returned for pages nothing overrides.
func DefaultDecision() Decision {
	return Decision{
		MaxAge:     settings.DefaultMaxAge,
		Source:     SourceDefault,
		Visibility: Public,
	}
}

// Cacheable reports whether the decision advertises a public max-age.
func (d Decision) Cacheable() bool {
	return d.Visibility == Public
}

func (d Decision) String() string {
	if d.Visibility != Public {
		return string(d.Visibility)
	}
	return fmt.Sprintf("max-age=%d (%s)", d.MaxAge, d.Source)
}
