// Package settings defines the typed cache settings consumed by the resolver
// and the defensive parsers that turn raw stored option values into them.
package settings

// UnsetPriority is the taxonomy priority used when none is configured.
// Lower numbers win, so an unset taxonomy never beats a configured one.
const UnsetPriority = 999

// PageType is the post type that can never override archive settings.
const PageType = "page"

// PostTypeSettings holds the overrides configured for one post type.
type PostTypeSettings struct {
	MaxAge               Age
	OverridesArchive     bool
	OverriddenByTaxonomy bool
	OverriddenByTemplate bool
}

// DefaultPostTypeSettings returns the settings of an unconfigured post type.
func DefaultPostTypeSettings() PostTypeSettings {
	return PostTypeSettings{
		MaxAge:               Default,
		OverridesArchive:     false,
		OverriddenByTaxonomy: true,
		OverriddenByTemplate: true,
	}
}

// TaxonomySettings holds the overrides configured for one taxonomy.
type TaxonomySettings struct {
	Ignore   bool
	MaxAge   Age
	Priority int
}

// DefaultTaxonomySettings returns the settings of an unconfigured taxonomy.
func DefaultTaxonomySettings() TaxonomySettings {
	return TaxonomySettings{MaxAge: Default, Priority: UnsetPriority}
}

// TemplateSettings holds the overrides configured for one template.
type TemplateSettings struct {
	MaxAge            Age
	OverridesTaxonomy bool
}

// IndividualPostOverride pins the max-age of a single post.
type IndividualPostOverride struct {
	PostID int
	MaxAge Age
}

// GlobalSettings holds the site-wide settings.
type GlobalSettings struct {
	DeveloperMode   bool
	FrontPageMaxAge Age
	HomePageMaxAge  Age
	ArchivesMaxAge  Age
}

// FindIndividualOverride returns the first override matching postID.
// Post id 0 never matches.
func FindIndividualOverride(overrides []IndividualPostOverride, postID int) (IndividualPostOverride, bool) {
	if postID == 0 {
		return IndividualPostOverride{}, false
	}
	for _, o := range overrides {
		if o.PostID == postID {
			return o, true
		}
	}
	return IndividualPostOverride{}, false
}

// DefaultIgnoredTaxonomies are excluded from resolution in a fresh install.
var DefaultIgnoredTaxonomies = []string{"post_tag", "post_format"}

// DefaultTaxonomyPriority returns the priority given to each of n public
// taxonomies in a fresh install.
func DefaultTaxonomyPriority(n int) int {
	if n < 0 {
		return 0
	}
	return n / 2
}

// IsDefaultIgnored reports whether taxonomy is ignored in a fresh install.
func IsDefaultIgnored(taxonomy string) bool {
	for _, t := range DefaultIgnoredTaxonomies {
		if t == taxonomy {
			return true
		}
	}
	return false
}
