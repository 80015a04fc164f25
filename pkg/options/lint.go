package options

import (
	"fmt"

	"github.com/Sternrassler/cache-control/pkg/settings"
)

// Lint lists the stored values that will be read as "default" because they
// are malformed. It never changes how the values are resolved.
func (o Options) Lint() []string {
	var problems []string

	for _, field := range []string{FieldFrontPageCache, FieldHomePageCache, FieldArchivesCache} {
		raw, ok := o.Global[field]
		if !ok || raw == nil {
			continue
		}
		if settings.ParseGlobalAge(raw).IsDefault() && raw != settings.DefaultKeyword {
			problems = append(problems, fmt.Sprintf("global.%s: %#v is not a quoted number of seconds", field, raw))
		}
	}

	lintAges := func(group string, entries map[string]map[string]any) {
		for _, name := range sortedNames(entries) {
			raw, ok := entries[name][FieldCacheAge]
			if !ok || raw == nil {
				continue
			}
			if settings.ParseAge(raw).IsDefault() && raw != settings.DefaultKeyword {
				problems = append(problems, fmt.Sprintf("%s.%s.%s: %#v is not a number of seconds", group, name, FieldCacheAge, raw))
			}
		}
	}
	lintAges("post_types", o.PostTypes)
	lintAges("taxonomies", o.Taxonomies)
	lintAges("templates", o.Templates)

	for i, row := range o.IndividualPosts {
		if settings.ParsePostID(row[FieldPostID]) == 0 {
			problems = append(problems, fmt.Sprintf("individual_posts[%d].%s: %#v is not a post id", i, FieldPostID, row[FieldPostID]))
		}
	}

	return problems
}
