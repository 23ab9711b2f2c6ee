package registry

// Default seed collections. These are the placeholder items a fresh section
// renders before the user has touched it; the mutation engine copies them
// into the document on first edit so they become persisted, editable content.

var seedCollections = map[SectionType]map[string][]map[string]any{
	TypeFeaturedItems: {
		"items": {
			{"id": "seed-featured-1", "icon": "Star", "title": "First featured item", "text": "Tell visitors what makes this item special."},
			{"id": "seed-featured-2", "icon": "Star", "title": "Second featured item", "text": "Tell visitors what makes this item special."},
			{"id": "seed-featured-3", "icon": "Star", "title": "Third featured item", "text": "Tell visitors what makes this item special."},
		},
	},
	TypeFeatures: {
		"features": {
			{"id": "seed-feature-1", "icon": "Zap", "title": "Fast", "text": "Describe this feature."},
			{"id": "seed-feature-2", "icon": "Shield", "title": "Reliable", "text": "Describe this feature."},
			{"id": "seed-feature-3", "icon": "Heart", "title": "Loved", "text": "Describe this feature."},
		},
	},
	TypeValues: {
		"values": {
			{"id": "seed-value-1", "icon": "Heart", "title": "Our first value", "text": "Explain why it matters."},
			{"id": "seed-value-2", "icon": "Users", "title": "Our second value", "text": "Explain why it matters."},
		},
	},
	TypeFAQ: {
		"faqs": {
			{"id": "seed-faq-1", "question": "What is your first question?", "answer": "Answer it here."},
		},
	},
}

// DefaultCollection returns the seed items for a collection inside sections of
// type t, or nil when the collection has no seed. Callers receive fresh copies
// and may mutate the result.
func DefaultCollection(t SectionType, collection string) []map[string]any {
	byName, ok := seedCollections[t]
	if !ok {
		return nil
	}
	seed, ok := byName[collection]
	if !ok {
		return nil
	}
	out := make([]map[string]any, len(seed))
	for i, item := range seed {
		copied := make(map[string]any, len(item))
		for k, v := range item {
			copied[k] = v
		}
		out[i] = copied
	}
	return out
}

// DefaultItemIcon is the icon synthesized when a legacy scalar list entry is
// upgraded to its object form.
const DefaultItemIcon = "Star"
