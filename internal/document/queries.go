package document

import (
	"sort"

	"git.home.luguber.info/inful/sitebuilder/internal/registry"
)

// KeyedSection pairs a section entry with its key for ordered iteration.
type KeyedSection struct {
	Key     string   `json:"key"`
	Section *Section `json:"section"`
}

// SortedSections returns the document's sections sorted by Order ascending.
// Entries are compared by Order first, then by insertion position, so the
// result is a deterministic total order and calling it twice on the same
// document yields identical sequences. Returned sections are deep copies.
func SortedSections(d *Document) []KeyedSection {
	d.mustSections()

	pos := make(map[string]int, len(d.keys))
	for i, k := range d.keys {
		pos[k] = i
	}

	keys := append([]string(nil), d.keys...)
	sort.SliceStable(keys, func(i, j int) bool {
		si, sj := d.sections[keys[i]], d.sections[keys[j]]
		if si.Order != sj.Order {
			return si.Order < sj.Order
		}
		return pos[keys[i]] < pos[keys[j]]
	})

	out := make([]KeyedSection, len(keys))
	for i, k := range keys {
		s, _ := d.Section(k)
		out[i] = KeyedSection{Key: k, Section: s}
	}
	return out
}

// VisibleSections returns the sorted sections with hidden entries filtered out.
func VisibleSections(d *Document) []KeyedSection {
	all := SortedSections(d)
	out := all[:0:0]
	for _, ks := range all {
		if ks.Section.Visible {
			out = append(out, ks)
		}
	}
	return out
}

// MissingSections returns the optional section types of layout that the
// document does not yet contain. Multi-instance types are always offered
// regardless of how many instances exist.
func MissingSections(d *Document, layout *registry.Layout) []registry.SectionType {
	d.mustSections()
	if layout == nil {
		return nil
	}

	present := make(map[registry.SectionType]bool, len(d.keys))
	for _, s := range d.sections {
		present[s.Type] = true
	}

	var out []registry.SectionType
	for _, t := range layout.Optional {
		if registry.IsMultiInstance(t) || !present[t] {
			out = append(out, t)
		}
	}
	return out
}
