// Package resolver decides the Cache-Control max-age of a page.
//
// Resolution walks a fixed chain of override categories. Logged-in users,
// password protected pages and previews are never cached publicly, and an
// upstream "no-cache" is never overridden. The front page is resolved on its
// own. Every other page runs the chain: individual post, post type, taxonomy,
// template, archive and finally home page. Each stage may replace the current
// max-age under its own rule.
package resolver

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/cache-control/pkg/diagnostics"
	"github.com/Sternrassler/cache-control/pkg/page"
	"github.com/Sternrassler/cache-control/pkg/settings"
)

// ConfigSource answers typed settings lookups. Implementations must never
// fail: missing or malformed settings come back as defaults.
type ConfigSource interface {
	DeveloperMode() bool
	FrontPageMaxAge() settings.Age
	HomePageMaxAge() settings.Age
	ArchivesMaxAge() settings.Age
	PostTypeSettings(name string) settings.PostTypeSettings
	TaxonomySettings(name string) settings.TaxonomySettings
	TemplateSettings(key string) settings.TemplateSettings
	IndividualPostOverrides() []settings.IndividualPostOverride
}

// Diagnostic keys, written as diagnostics.Prefix + key.
const (
	KeyPostType         = "post-type"
	KeyTaxonomies       = "taxonomies"
	KeyFrontPage        = "front-page"
	KeyHomePage         = "home-page"
	KeyArchive          = "archive"
	KeyIsAdmin          = "is-admin"
	KeyLoggedInUser     = "logged-in-user"
	KeyTemplateName     = "template-name"
	KeyRequiresPassword = "requires-password"
	KeyPostTypes        = "post-types"
	KeyPostID           = "post-id"

	KeyConfiguredCache  = "configured-cache"
	KeyUpstreamNoCache  = "upstream-no-cache"
	KeyFrontPageValue   = "front-page-cache-value"
	KeyIndividualPost   = "individual-post-triggered"
	KeyIndividualMaxAge = "individual-post-max-age"

	KeyPostTypeMaxAge               = "post-type-max-age"
	KeyPostTypeOverridesArchive     = "post-type-overrides-archive"
	KeyPostTypeOverriddenByTaxonomy = "post-type-overridden-by-taxonomy"
	KeyPostTypeOverriddenByTemplate = "post-type-overridden-by-template"

	KeyTaxonomyMaxAge   = "taxonomy-max-age"
	KeyTaxonomyPriority = "taxonomy-priority"
	KeyTaxonomyName     = "taxonomy-name"

	KeyTemplateKey               = "template-key"
	KeyTemplateMaxAge            = "template-max-age"
	KeyTemplateOverridesTaxonomy = "template-overrides-taxonomy"

	KeyArchiveValue  = "archive-cache-value"
	KeyHomePageValue = "home-page-cache-value"

	KeyConfiguredMaxAge           = "configured-max-age"
	KeyConfiguredOverridesArchive = "configured-overrides-archive"
	KeyCurrentConfig              = "currently-used-config"
	KeyFinalMaxAge                = "final-max-age"
)

const upstreamNoCache = "no-cache"

// Resolver computes cache decisions. It holds no per-request state and is
// safe for concurrent use.
type Resolver struct {
	logger zerolog.Logger
}

// New creates a resolver that logs through logger.
func New(logger zerolog.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// resolution is the working state threaded through the chain stages.
type resolution struct {
	maxAge int
	source Source

	// Carried from the post type stage.
	overridesArchive     bool
	overriddenByTaxonomy bool
	overriddenByTemplate bool

	// Best taxonomy candidate found while scanning, reused by the archive stage.
	taxonomyAge      settings.Age
	taxonomyPriority int

	terminated bool
}

func newResolution() *resolution {
	return &resolution{
		maxAge:           settings.DefaultMaxAge,
		source:           SourceDefault,
		taxonomyAge:      settings.Default,
		taxonomyPriority: settings.UnsetPriority,
	}
}

func (s *resolution) set(age settings.Age, source Source) {
	s.maxAge = age.Seconds()
	s.source = source
}

// Resolve computes the decision for pc using the settings in src.
//
// upstream holds the response headers already set by other handlers; it may
// be nil. sink receives diagnostics and is flushed once before returning,
// writing headers only when src reports developer mode. sink may be nil.
func (r *Resolver) Resolve(pc page.Context, src ConfigSource, upstream http.Header, sink *diagnostics.Sink) Decision {
	start := time.Now()

	d := r.resolve(pc, src, upstream, sink)

	sink.Flush(src.DeveloperMode())

	ResolveDuration.Observe(time.Since(start).Seconds())
	Decisions.WithLabelValues(d.Source.String(), d.Visibility.String()).Inc()

	r.logger.Debug().
		Str("post_type", pc.PostType()).
		Int("post_id", pc.PostID()).
		Str("source", d.Source.String()).
		Str("visibility", d.Visibility.String()).
		Int("max_age", d.MaxAge).
		Msg("Resolved cache decision")

	return d
}

func (r *Resolver) resolve(pc page.Context, src ConfigSource, upstream http.Header, sink *diagnostics.Sink) Decision {
	recordPage(pc, sink)

	if reason, private := privateReason(pc); private {
		sink.Add(KeyConfiguredCache, "no-cache ("+reason+")")
		return Decision{
			MaxAge:     settings.DefaultMaxAge,
			Source:     SourceDefault,
			Visibility: PrivateNoStore,
		}
	}

	if hasUpstreamNoCache(upstream) {
		sink.AddBool(KeyUpstreamNoCache, true)
		return Decision{
			MaxAge:     settings.DefaultMaxAge,
			Source:     SourceDefault,
			Visibility: PrivateNoCache,
		}
	}

	state := newResolution()

	if pc.IsFrontPage() {
		frontPageStage(state, src, sink)
	} else {
		individualPostStage(state, pc, src, sink)
		if !state.terminated {
			postTypeStage(state, pc, src, sink)
			taxonomyStage(state, pc, src, sink)
			templateStage(state, pc, src, sink)
			archiveStage(state, pc, src, sink)
			homePageStage(state, pc, src, sink)
		}
		sink.AddInt(KeyConfiguredMaxAge, state.maxAge)
		sink.AddBool(KeyConfiguredOverridesArchive, state.overridesArchive)
	}

	sink.Add(KeyCurrentConfig, state.source.String())
	sink.AddInt(KeyFinalMaxAge, state.maxAge)

	return Decision{
		MaxAge:     state.maxAge,
		Source:     state.source,
		Visibility: Public,
	}
}

func recordPage(pc page.Context, sink *diagnostics.Sink) {
	sink.Add(KeyPostType, pc.PostType())
	sink.Add(KeyTaxonomies, strings.Join(pc.Taxonomies(), ","))
	sink.AddBool(KeyFrontPage, pc.IsFrontPage())
	sink.AddBool(KeyHomePage, pc.IsHomePage())
	sink.AddBool(KeyArchive, pc.IsArchivePage())
	sink.AddBool(KeyIsAdmin, pc.IsAdmin())
	sink.AddBool(KeyLoggedInUser, pc.IsLoggedInUser())
	sink.Add(KeyTemplateName, pc.TemplateName())
	sink.AddBool(KeyRequiresPassword, pc.RequiresPassword())
	sink.Add(KeyPostTypes, strings.Join(pc.PublicPostTypes(), ","))
	sink.AddInt(KeyPostID, pc.PostID())
}

func privateReason(pc page.Context) (string, bool) {
	switch {
	case pc.IsLoggedInUser():
		return "logged in user", true
	case pc.RequiresPassword():
		return "requires password", true
	case pc.IsPreviewPage():
		return "preview", true
	default:
		return "", false
	}
}

// hasUpstreamNoCache matches the literal, case-sensitive "no-cache" in any
// Cache-Control value already set upstream.
func hasUpstreamNoCache(upstream http.Header) bool {
	for _, v := range upstream.Values("Cache-Control") {
		if strings.Contains(v, upstreamNoCache) {
			return true
		}
	}
	return false
}

func frontPageStage(state *resolution, src ConfigSource, sink *diagnostics.Sink) {
	age := src.FrontPageMaxAge()
	if !age.IsDefault() {
		state.set(age, SourceFrontPage)
	}
	sink.Add(KeyFrontPageValue, age.String())
	sink.AddInt(KeyConfiguredMaxAge, state.maxAge)
}

func individualPostStage(state *resolution, pc page.Context, src ConfigSource, sink *diagnostics.Sink) {
	o, ok := settings.FindIndividualOverride(src.IndividualPostOverrides(), pc.PostID())
	if !ok {
		sink.AddBool(KeyIndividualPost, false)
		return
	}

	sink.AddBool(KeyIndividualPost, true)
	sink.Add(KeyIndividualMaxAge, o.MaxAge.String())

	if o.MaxAge.IsDefault() {
		return
	}
	state.set(o.MaxAge, SourceIndividualPost)
	state.terminated = true
}

func postTypeStage(state *resolution, pc page.Context, src ConfigSource, sink *diagnostics.Sink) {
	postType := pc.PostType()
	cfg := src.PostTypeSettings(postType)
	if postType == settings.PageType {
		cfg.OverridesArchive = false
	}

	state.overriddenByTemplate = cfg.OverriddenByTemplate

	if !cfg.MaxAge.IsDefault() {
		state.set(cfg.MaxAge, SourcePostType)
		state.overridesArchive = cfg.OverridesArchive
		state.overriddenByTaxonomy = cfg.OverriddenByTaxonomy
	}

	sink.Add(KeyPostTypeMaxAge, cfg.MaxAge.String())
	sink.AddBool(KeyPostTypeOverridesArchive, cfg.OverridesArchive)
	sink.AddBool(KeyPostTypeOverriddenByTaxonomy, cfg.OverriddenByTaxonomy)
	sink.AddBool(KeyPostTypeOverriddenByTemplate, cfg.OverriddenByTemplate)
}

func taxonomyStage(state *resolution, pc page.Context, src ConfigSource, sink *diagnostics.Sink) {
	if page.HasTaxonomies(pc) {
		for _, name := range pc.Taxonomies() {
			cfg := src.TaxonomySettings(name)
			if cfg.Ignore || cfg.MaxAge.IsDefault() {
				continue
			}
			if cfg.Priority < state.taxonomyPriority {
				state.taxonomyAge = cfg.MaxAge
				state.taxonomyPriority = cfg.Priority
				sink.Add(KeyTaxonomyName, name)
			}
		}
	}

	if !state.taxonomyAge.IsDefault() && state.overriddenByTaxonomy {
		state.set(state.taxonomyAge, SourceTaxonomy)
	}

	sink.Add(KeyTaxonomyMaxAge, state.taxonomyAge.String())
	sink.AddInt(KeyTaxonomyPriority, state.taxonomyPriority)
}

func templateStage(state *resolution, pc page.Context, src ConfigSource, sink *diagnostics.Sink) {
	cfg := settings.TemplateSettings{MaxAge: settings.Default}

	if name := pc.TemplateName(); name != page.DefaultTemplate {
		key := strings.TrimSuffix(name, ".php")
		sink.Add(KeyTemplateKey, key)
		cfg = src.TemplateSettings(key)
	}

	if !cfg.MaxAge.IsDefault() {
		if (state.source == SourcePostType && state.overriddenByTemplate) ||
			(state.source == SourceTaxonomy && cfg.OverridesTaxonomy) {
			state.set(cfg.MaxAge, SourceTemplate)
		}
	}

	sink.Add(KeyTemplateMaxAge, cfg.MaxAge.String())
	sink.AddBool(KeyTemplateOverridesTaxonomy, cfg.OverridesTaxonomy)
}

func archiveStage(state *resolution, pc page.Context, src ConfigSource, sink *diagnostics.Sink) {
	if !pc.IsArchivePage() {
		return
	}

	// A taxonomy candidate wins on archives even when the post type is not
	// overridden by taxonomy.
	if !state.taxonomyAge.IsDefault() {
		state.set(state.taxonomyAge, SourceTaxonomy)
		return
	}

	if state.overridesArchive {
		return
	}

	age := src.ArchivesMaxAge()
	if !age.IsDefault() {
		state.set(age, SourceArchive)
		sink.Add(KeyArchiveValue, age.String())
	}
}

func homePageStage(state *resolution, pc page.Context, src ConfigSource, sink *diagnostics.Sink) {
	if !pc.IsHomePage() {
		return
	}

	age := src.HomePageMaxAge()
	if !age.IsDefault() {
		state.set(age, SourceHomePage)
		sink.Add(KeyHomePageValue, age.String())
	}
}
