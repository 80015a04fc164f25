package options

import (
	"strings"

	"github.com/Sternrassler/cache-control/pkg/settings"
)

// ScaffoldInput names what a site has so Scaffold can lay out its settings.
type ScaffoldInput struct {
	PostTypes  []string
	Taxonomies []string
	Templates  []string
}

// Scaffold returns a fresh option tree with every field present and set to
// what a new install starts with. Every age is "default".
func Scaffold(in ScaffoldInput) Options {
	o := Options{
		Global: map[string]any{
			FieldDeveloperMode:  false,
			FieldFrontPageCache: settings.DefaultKeyword,
			FieldHomePageCache:  settings.DefaultKeyword,
			FieldArchivesCache:  settings.DefaultKeyword,
		},
	}

	for _, name := range cleanNames(in.PostTypes) {
		if o.PostTypes == nil {
			o.PostTypes = make(map[string]map[string]any)
		}
		isPage := name == settings.PageType
		fields := map[string]any{
			FieldCacheAge:             settings.DefaultKeyword,
			FieldOverriddenByTaxonomy: !isPage,
			FieldOverriddenByTemplate: isPage,
		}
		if !isPage {
			fields[FieldOverrideArchive] = false
		}
		o.PostTypes[name] = fields
	}

	taxonomies := cleanNames(in.Taxonomies)
	priority := settings.DefaultTaxonomyPriority(len(taxonomies))
	for _, name := range taxonomies {
		if o.Taxonomies == nil {
			o.Taxonomies = make(map[string]map[string]any)
		}
		o.Taxonomies[name] = map[string]any{
			FieldCacheIgnore: settings.IsDefaultIgnored(name),
			FieldCacheAge:    settings.DefaultKeyword,
			FieldPriority:    priority,
		}
	}

	for _, name := range cleanNames(in.Templates) {
		if o.Templates == nil {
			o.Templates = make(map[string]map[string]any)
		}
		o.Templates[strings.TrimSuffix(name, ".php")] = map[string]any{
			FieldCacheAge:         settings.DefaultKeyword,
			FieldOverrideTaxonomy: false,
		}
	}

	return o
}

func cleanNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
