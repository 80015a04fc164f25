// Package page describes the identity of the page being served: which kind
// of page it is, who is viewing it, and which post type, taxonomies and
// template apply. A Context is a read-only snapshot scoped to one request.
package page

import "strings"

const (
	// UnknownPostType is reported when the page has no post type.
	UnknownPostType = "unknown"

	// NoTaxonomy is the single entry of the taxonomy list of a page without taxonomies.
	NoTaxonomy = "none"

	// DefaultTemplate is reported when the page uses no custom template.
	DefaultTemplate = "default"
)

// Context answers the questions the resolver asks about the current page.
type Context interface {
	IsAdmin() bool
	IsArchivePage() bool
	IsFrontPage() bool
	IsHomePage() bool
	IsLoggedInUser() bool
	IsPreviewPage() bool
	RequiresPassword() bool

	// PostType returns the post type, or "unknown".
	PostType() string

	// Taxonomies returns the taxonomies attached to the page in order, or ["none"].
	Taxonomies() []string

	// TemplateName returns the template file name, or "default".
	TemplateName() string

	// PostID returns the post id, or 0 when it cannot be resolved.
	PostID() int

	// PublicPostTypes lists every public post type of the site.
	PublicPostTypes() []string
}

// Snapshot is an immutable Context built once per request.
type Snapshot struct {
	Admin            bool
	Archive          bool
	FrontPage        bool
	HomePage         bool
	LoggedIn         bool
	Preview          bool
	PasswordRequired bool

	Type          string
	TaxonomyNames []string
	Template      string
	ID            int
	PublicTypes   []string
}

var _ Context = Snapshot{}

func (s Snapshot) IsAdmin() bool          { return s.Admin }
func (s Snapshot) IsArchivePage() bool    { return s.Archive }
func (s Snapshot) IsFrontPage() bool      { return s.FrontPage }
func (s Snapshot) IsHomePage() bool       { return s.HomePage }
func (s Snapshot) IsLoggedInUser() bool   { return s.LoggedIn }
func (s Snapshot) IsPreviewPage() bool    { return s.Preview }
func (s Snapshot) RequiresPassword() bool { return s.PasswordRequired }

func (s Snapshot) PostType() string {
	if strings.TrimSpace(s.Type) == "" {
		return UnknownPostType
	}
	return s.Type
}

func (s Snapshot) Taxonomies() []string {
	names := make([]string, 0, len(s.TaxonomyNames))
	for _, n := range s.TaxonomyNames {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return []string{NoTaxonomy}
	}
	return names
}

func (s Snapshot) TemplateName() string {
	if strings.TrimSpace(s.Template) == "" {
		return DefaultTemplate
	}
	return s.Template
}

func (s Snapshot) PostID() int {
	if s.ID < 0 {
		return 0
	}
	return s.ID
}

func (s Snapshot) PublicPostTypes() []string {
	return append([]string(nil), s.PublicTypes...)
}

// HasTaxonomies reports whether the taxonomy list names at least one real taxonomy.
func HasTaxonomies(c Context) bool {
	names := c.Taxonomies()
	return !(len(names) == 0 || (len(names) == 1 && names[0] == NoTaxonomy))
}
