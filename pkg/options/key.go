package options

import (
	"fmt"
	"strings"
)

// DefaultKeyPrefix prefixes every storage key.
const DefaultKeyPrefix = "cachecontrol"

// Group identifies one settings group in storage.
type Group string

const (
	GroupGlobal          Group = "global"
	GroupPostType        Group = "post_type"
	GroupTaxonomy        Group = "taxonomy"
	GroupTemplate        Group = "template"
	GroupIndividualPosts Group = "individual_posts"
)

func (g Group) valid() bool {
	switch g {
	case GroupGlobal, GroupPostType, GroupTaxonomy, GroupTemplate, GroupIndividualPosts:
		return true
	}
	return false
}

// named reports whether the group holds one entry per post type, taxonomy or template.
func (g Group) named() bool {
	return g == GroupPostType || g == GroupTaxonomy || g == GroupTemplate
}

// Key identifies a stored settings entry.
type Key struct {
	// Prefix namespaces the keys (default: "cachecontrol").
	Prefix string

	// Group is the settings group.
	Group Group

	// Name is the post type, taxonomy or template key. Empty for the
	// global and individual post groups, and for the name index of a
	// named group.
	Name string
}

// String generates the storage key.
// Format: prefix:group[:name]
//
// Example:
//
//	cachecontrol:post_type:event
func (k Key) String() string {
	prefix := k.Prefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	parts := []string{prefix, string(k.Group)}
	if k.Name != "" {
		parts = append(parts, k.Name)
	}
	return strings.Join(parts, ":")
}

// IsIndex reports whether the key names the set of entries of a named group.
func (k Key) IsIndex() bool {
	return k.Group.named() && k.Name == ""
}

// ParseKey parses a storage key generated with prefix.
func ParseKey(prefix, s string) (Key, error) {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	rest, ok := strings.CutPrefix(s, prefix+":")
	if !ok {
		return Key{}, fmt.Errorf("%w: %q lacks prefix %q", ErrInvalidKey, s, prefix)
	}

	group, name, _ := strings.Cut(rest, ":")
	k := Key{Prefix: prefix, Group: Group(group), Name: name}
	if !k.Group.valid() {
		return Key{}, fmt.Errorf("%w: unknown group %q", ErrInvalidKey, group)
	}
	if name != "" && !k.Group.named() {
		return Key{}, fmt.Errorf("%w: group %q takes no name", ErrInvalidKey, group)
	}
	return k, nil
}
