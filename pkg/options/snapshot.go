package options

import (
	"slices"
	"strings"
	"time"

	"github.com/Sternrassler/cache-control/pkg/resolver"
	"github.com/Sternrassler/cache-control/pkg/settings"
)

// Environments in which developer mode may be switched on.
var developerEnvironments = []string{"local", "development"}

// DeveloperEnvironment reports whether env allows developer mode.
func DeveloperEnvironment(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	for _, e := range developerEnvironments {
		if e == env {
			return true
		}
	}
	return false
}

// Snapshot is an immutable view of one loaded option tree. It implements
// resolver.ConfigSource and is safe for concurrent use.
type Snapshot struct {
	options     Options
	environment string
	individual  []settings.IndividualPostOverride

	// LoadedAt is when the tree was read from its store.
	LoadedAt time.Time

	// Origin names the store the tree came from.
	Origin string
}

var _ resolver.ConfigSource = (*Snapshot)(nil)

// NewSnapshot wraps o. environment decides whether developer mode may be on.
func NewSnapshot(o Options, environment, origin string, loadedAt time.Time) *Snapshot {
	s := &Snapshot{
		options:     o.Clone(),
		environment: environment,
		LoadedAt:    loadedAt,
		Origin:      origin,
	}
	s.individual = parseIndividualPosts(s.options.IndividualPosts)
	return s
}

// Empty returns a snapshot in which every setting is default.
func Empty() *Snapshot {
	return NewSnapshot(Options{}, "", "empty", time.Time{})
}

// Options returns a copy of the raw tree.
func (s *Snapshot) Options() Options {
	return s.options.Clone()
}

// Environment returns the environment the snapshot was built for.
func (s *Snapshot) Environment() string {
	return s.environment
}

// IsStale returns true if the snapshot is older than maxAge.
// A snapshot that was never loaded is always stale.
func (s *Snapshot) IsStale(maxAge time.Duration) bool {
	if s.LoadedAt.IsZero() {
		return true
	}
	return time.Since(s.LoadedAt) > maxAge
}

// DeveloperMode is on only in a developer environment with the option set.
func (s *Snapshot) DeveloperMode() bool {
	if !DeveloperEnvironment(s.environment) {
		return false
	}
	return settings.ParseBool(s.options.Global[FieldDeveloperMode], false)
}

func (s *Snapshot) FrontPageMaxAge() settings.Age {
	return settings.ParseGlobalAge(s.options.Global[FieldFrontPageCache])
}

func (s *Snapshot) HomePageMaxAge() settings.Age {
	return settings.ParseGlobalAge(s.options.Global[FieldHomePageCache])
}

func (s *Snapshot) ArchivesMaxAge() settings.Age {
	return settings.ParseGlobalAge(s.options.Global[FieldArchivesCache])
}

func (s *Snapshot) PostTypeSettings(name string) settings.PostTypeSettings {
	fields, ok := s.options.PostTypes[name]
	if !ok {
		return settings.DefaultPostTypeSettings()
	}
	return settings.PostTypeSettings{
		MaxAge:               settings.ParseAge(fields[FieldCacheAge]),
		OverridesArchive:     settings.ParseBool(fields[FieldOverrideArchive], false),
		OverriddenByTaxonomy: settings.ParseBool(fields[FieldOverriddenByTaxonomy], true),
		OverriddenByTemplate: settings.ParseBool(fields[FieldOverriddenByTemplate], true),
	}
}

func (s *Snapshot) TaxonomySettings(name string) settings.TaxonomySettings {
	fields, ok := s.options.Taxonomies[name]
	if !ok {
		return settings.DefaultTaxonomySettings()
	}
	return settings.TaxonomySettings{
		Ignore:   settings.ParseBool(fields[FieldCacheIgnore], false),
		MaxAge:   settings.ParseAge(fields[FieldCacheAge]),
		Priority: settings.ParsePriority(fields[FieldPriority]),
	}
}

func (s *Snapshot) TemplateSettings(key string) settings.TemplateSettings {
	fields := s.options.Templates[key]
	return settings.TemplateSettings{
		MaxAge:            settings.ParseAge(fields[FieldCacheAge]),
		OverridesTaxonomy: settings.ParseBool(fields[FieldOverrideTaxonomy], false),
	}
}

// IndividualPostOverrides returns a copy of the parsed overrides in stored order.
func (s *Snapshot) IndividualPostOverrides() []settings.IndividualPostOverride {
	return slices.Clone(s.individual)
}

// Global returns the typed site-wide settings.
func (s *Snapshot) Global() settings.GlobalSettings {
	return settings.GlobalSettings{
		DeveloperMode:   s.DeveloperMode(),
		FrontPageMaxAge: s.FrontPageMaxAge(),
		HomePageMaxAge:  s.HomePageMaxAge(),
		ArchivesMaxAge:  s.ArchivesMaxAge(),
	}
}

// parseIndividualPosts keeps stored order and drops rows without a usable post id.
func parseIndividualPosts(rows []map[string]any) []settings.IndividualPostOverride {
	out := make([]settings.IndividualPostOverride, 0, len(rows))
	for _, row := range rows {
		id := settings.ParsePostID(row[FieldPostID])
		if id == 0 {
			continue
		}
		out = append(out, settings.IndividualPostOverride{
			PostID: id,
			MaxAge: settings.ParseAge(row[FieldCacheAge]),
		})
	}
	return out
}
