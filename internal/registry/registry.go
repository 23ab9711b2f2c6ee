// Package registry holds the static lookup tables describing section types
// and page layouts: which types exist, their default data, whether a page may
// contain several instances of them, and which types a layout requires.
//
// Everything in this package is read-only at runtime.
package registry

import (
	"fmt"
	"strconv"
	"strings"
)

// SectionType identifies one kind of page section.
type SectionType string

const (
	TypeHero           SectionType = "hero"
	TypeText           SectionType = "text"
	TypeImage          SectionType = "image"
	TypeGallery        SectionType = "gallery"
	TypeFeatures       SectionType = "features"
	TypeTestimonials   SectionType = "testimonials"
	TypeTeam           SectionType = "team"
	TypeValues         SectionType = "values"
	TypePricing        SectionType = "pricing"
	TypeForm           SectionType = "form"
	TypeSpecifications SectionType = "specifications"
	TypeMission        SectionType = "mission"
	TypeCTA            SectionType = "cta"
	TypeRichText       SectionType = "richText"
	TypeFAQ            SectionType = "faq"
	TypeBusinessInfo   SectionType = "businessInfo"
	TypeCategories     SectionType = "categories"
	TypeCatalog        SectionType = "catalog"
	TypeFeaturedItems  SectionType = "featuredItems"
)

// TypeInfo describes the lifecycle metadata of a section type.
type TypeInfo struct {
	Title         string
	Icon          string
	MultiInstance bool
	DefaultData   map[string]any
}

var typeInfos = map[SectionType]TypeInfo{
	TypeHero:           {Title: "Hero", Icon: "Sparkles", DefaultData: map[string]any{"headline": "", "description": ""}},
	TypeText:           {Title: "Text", Icon: "AlignLeft", DefaultData: map[string]any{"headline": "", "body": ""}},
	TypeImage:          {Title: "Image", Icon: "Image", DefaultData: map[string]any{"url": "", "alt": ""}},
	TypeGallery:        {Title: "Gallery", Icon: "Images", DefaultData: map[string]any{"images": []any{}}},
	// Seeded collections (see seedCollections) are deliberately absent from
	// DefaultData: the engine materializes them on first touch, so a fresh
	// section starts with placeholder content instead of an empty list.
	TypeFeatures:       {Title: "Features", Icon: "Star", DefaultData: map[string]any{"headline": ""}},
	TypeTestimonials:   {Title: "Testimonials", Icon: "Quote", DefaultData: map[string]any{"testimonials": []any{}}},
	TypeTeam:           {Title: "Team", Icon: "Users", DefaultData: map[string]any{"members": []any{}}},
	TypeValues:         {Title: "Values", Icon: "Heart", DefaultData: map[string]any{}},
	TypePricing:        {Title: "Pricing", Icon: "Tag", DefaultData: map[string]any{"plans": []any{}}},
	TypeForm:           {Title: "Form", Icon: "Mail", DefaultData: map[string]any{"headline": "", "fields": []any{}}},
	TypeSpecifications: {Title: "Specifications", Icon: "List", DefaultData: map[string]any{"specs": []any{}}},
	TypeMission:        {Title: "Mission", Icon: "Target", DefaultData: map[string]any{"headline": "", "body": ""}},
	TypeCTA:            {Title: "Call to Action", Icon: "MousePointer", DefaultData: map[string]any{"headline": "", "buttonLabel": ""}},
	TypeRichText:       {Title: "Rich Text", Icon: "FileText", MultiInstance: true, DefaultData: map[string]any{"content": ""}},
	TypeFAQ:            {Title: "FAQ", Icon: "HelpCircle", DefaultData: map[string]any{}},
	TypeBusinessInfo:   {Title: "Business Info", Icon: "Building", DefaultData: map[string]any{"name": "", "address": "", "phone": ""}},
	TypeCategories:     {Title: "Categories", Icon: "Grid", DefaultData: map[string]any{"categories": []any{}}},
	TypeCatalog:        {Title: "Catalog", Icon: "ShoppingBag", DefaultData: map[string]any{"headline": "", "items": []any{}}},
	TypeFeaturedItems:  {Title: "Featured Items", Icon: "Award", DefaultData: map[string]any{}},
}

// Info returns the metadata for a section type.
func Info(t SectionType) (TypeInfo, bool) {
	info, ok := typeInfos[t]
	return info, ok
}

// Known reports whether t is a registered section type.
func Known(t SectionType) bool {
	_, ok := typeInfos[t]
	return ok
}

// IsMultiInstance reports whether a page may hold several sections of type t.
func IsMultiInstance(t SectionType) bool {
	info, ok := typeInfos[t]
	return ok && info.MultiInstance
}

// Types returns all registered section types.
func Types() []SectionType {
	out := make([]SectionType, 0, len(typeInfos))
	for t := range typeInfos {
		out = append(out, t)
	}
	return out
}

// BaseType returns the section type implied by a section key, stripping the
// numeric suffix multi-instance keys carry (richText_2 -> richText). Keys
// minted by duplication (hero_copy) keep their full form: duplicates are
// never treated as the base type.
func BaseType(key string) SectionType {
	if idx := strings.LastIndex(key, "_"); idx > 0 {
		if _, err := strconv.Atoi(key[idx+1:]); err == nil {
			base := key[:idx]
			// richText_copy_1 stays a copy key, richText_1 collapses.
			if !strings.HasSuffix(base, "_copy") {
				return BaseType(base)
			}
		}
	}
	return SectionType(key)
}

// InstanceSuffix returns the numeric instance suffix of a multi-instance key,
// or 0 when the key is the bare type (richText -> 0, richText_2 -> 2).
func InstanceSuffix(key string) int {
	if idx := strings.LastIndex(key, "_"); idx > 0 {
		if n, err := strconv.Atoi(key[idx+1:]); err == nil {
			return n
		}
	}
	return 0
}

// DisplayTitle renders the human-readable title for a section key.
// Additional instances of multi-instance types are numbered starting at 02:
// richText -> "Rich Text", richText_1 -> "Rich Text 02".
func DisplayTitle(key string) string {
	base := BaseType(key)
	info, ok := typeInfos[base]
	if !ok {
		return key
	}
	if info.MultiInstance {
		if n := InstanceSuffix(key); n > 0 {
			return fmt.Sprintf("%s %02d", info.Title, n+1)
		}
	}
	return info.Title
}
