package options

import (
	"sort"
)

// Field names inside each settings group.
const (
	FieldDeveloperMode  = "developer_mode"
	FieldFrontPageCache = "front_page_cache"
	FieldHomePageCache  = "home_page_cache"
	FieldArchivesCache  = "archives_cache"

	FieldCacheAge             = "cache_age"
	FieldOverrideArchive      = "override_archive"
	FieldOverriddenByTaxonomy = "overridden_by_taxonomy"
	FieldOverriddenByTemplate = "overridden_by_template"
	FieldCacheIgnore          = "cache_ignore"
	FieldPriority             = "priority"
	FieldOverrideTaxonomy     = "override_taxonomy"
	FieldPostID               = "post_id"
)

// Options is the raw option tree. Values keep whatever type the store
// produced; Snapshot parses them on lookup.
type Options struct {
	Global          map[string]any            `yaml:"global,omitempty" json:"global,omitempty"`
	PostTypes       map[string]map[string]any `yaml:"post_types,omitempty" json:"post_types,omitempty"`
	Taxonomies      map[string]map[string]any `yaml:"taxonomies,omitempty" json:"taxonomies,omitempty"`
	Templates       map[string]map[string]any `yaml:"templates,omitempty" json:"templates,omitempty"`
	IndividualPosts []map[string]any          `yaml:"individual_posts,omitempty" json:"individual_posts,omitempty"`
}

// IsEmpty reports whether no setting is stored at all.
func (o Options) IsEmpty() bool {
	return len(o.Global) == 0 &&
		len(o.PostTypes) == 0 &&
		len(o.Taxonomies) == 0 &&
		len(o.Templates) == 0 &&
		len(o.IndividualPosts) == 0
}

// Clone returns a deep copy of the top two levels of the tree.
func (o Options) Clone() Options {
	return Options{
		Global:          cloneFields(o.Global),
		PostTypes:       cloneGroup(o.PostTypes),
		Taxonomies:      cloneGroup(o.Taxonomies),
		Templates:       cloneGroup(o.Templates),
		IndividualPosts: cloneRows(o.IndividualPosts),
	}
}

func cloneFields(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneGroup(in map[string]map[string]any) map[string]map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]map[string]any, len(in))
	for name, fields := range in {
		out[name] = cloneFields(fields)
	}
	return out
}

func cloneRows(in []map[string]any) []map[string]any {
	if in == nil {
		return nil
	}
	out := make([]map[string]any, len(in))
	for i, row := range in {
		out[i] = cloneFields(row)
	}
	return out
}

func sortedNames(group map[string]map[string]any) []string {
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
