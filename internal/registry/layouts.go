package registry

import "slices"

// Layout describes a page archetype: which section types must be present and
// which the user may add or remove.
type Layout struct {
	Name     string
	Required []SectionType
	Optional []SectionType
}

// IsRequired reports whether the base type implied by key belongs to the
// layout's required set. Required sections cannot be hidden or deleted.
func (l *Layout) IsRequired(key string) bool {
	if l == nil {
		return false
	}
	return slices.Contains(l.Required, BaseType(key))
}

// AllowsType reports whether the layout permits sections of type t at all.
func (l *Layout) AllowsType(t SectionType) bool {
	if l == nil {
		return true
	}
	return slices.Contains(l.Required, t) || slices.Contains(l.Optional, t)
}

// DefaultLayouts returns the built-in layout table. Deployments usually
// override this from configuration; the built-ins keep `sitebuilder init`
// and tests self-contained.
func DefaultLayouts() map[string]*Layout {
	return map[string]*Layout{
		"landing": {
			Name:     "landing",
			Required: []SectionType{TypeHero},
			Optional: []SectionType{
				TypeText, TypeImage, TypeGallery, TypeFeatures, TypeTestimonials,
				TypeValues, TypePricing, TypeForm, TypeMission, TypeCTA,
				TypeRichText, TypeFAQ, TypeCategories,
			},
		},
		"catalog": {
			Name:     "catalog",
			Required: []SectionType{TypeHero, TypeCatalog},
			Optional: []SectionType{
				TypeText, TypeFeaturedItems, TypeCategories, TypeSpecifications,
				TypeCTA, TypeRichText, TypeFAQ, TypeBusinessInfo,
			},
		},
		"about": {
			Name:     "about",
			Required: []SectionType{TypeHero, TypeMission},
			Optional: []SectionType{
				TypeText, TypeTeam, TypeValues, TypeTestimonials, TypeGallery,
				TypeRichText, TypeBusinessInfo, TypeCTA,
			},
		},
	}
}
