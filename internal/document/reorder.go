package document

import (
	"slices"

	"github.com/brunoga/deep"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
)

// Direction indicates a single-step section move.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// renumber rewrites every entry's Order to its 1-based position in
// orderedKeys and adopts that sequence as the new insertion order, leaving no
// duplicate or stale order values behind.
func renumber(d *Document, orderedKeys []string) *Document {
	nd := d.shallowCopy()
	for i, k := range orderedKeys {
		sec := deep.MustCopy(nd.sections[k])
		sec.Order = i + 1
		nd.sections[k] = sec
	}
	nd.keys = append([]string(nil), orderedKeys...)
	return nd
}

// ReorderSectionByDirection swaps the section with its immediate neighbor in
// the current sorted order. A move past either boundary is rejected and
// reported, never wrapped or clamped.
func ReorderSectionByDirection(d *Document, key string, dir Direction) (*Document, error) {
	d.mustSections()
	if _, ok := d.sections[key]; !ok {
		return d, ferrors.NotFoundWarning("section not found").
			WithContext("section", key).Build()
	}
	if dir != DirectionUp && dir != DirectionDown {
		return d, ferrors.ValidationError("unknown move direction").
			WithContext("direction", string(dir)).Build()
	}

	order := sortedKeys(d)
	idx := slices.Index(order, key)

	if dir == DirectionUp {
		if idx == 0 {
			return d, ferrors.BoundaryWarning("cannot move section up").
				WithContext("section", key).Build()
		}
		order[idx-1], order[idx] = order[idx], order[idx-1]
	} else {
		if idx == len(order)-1 {
			return d, ferrors.BoundaryWarning("cannot move section down").
				WithContext("section", key).Build()
		}
		order[idx], order[idx+1] = order[idx+1], order[idx]
	}

	return renumber(d, order), nil
}

// ReorderSectionsByPermutation applies a full new ordering over all existing
// keys, as produced by drag-and-drop, and renumbers every entry. The key set
// of orderedKeys must match the document's exactly.
func ReorderSectionsByPermutation(d *Document, orderedKeys []string) (*Document, error) {
	d.mustSections()
	if len(orderedKeys) != len(d.sections) {
		return d, ferrors.ValidationError("ordering does not cover all sections").
			WithContext("expected", len(d.sections)).
			WithContext("got", len(orderedKeys)).Build()
	}
	seen := sets.New[string]()
	for _, k := range orderedKeys {
		if _, ok := d.sections[k]; !ok {
			return d, ferrors.ValidationError("ordering references unknown section").
				WithContext("section", k).Build()
		}
		if seen.Has(k) {
			return d, ferrors.ValidationError("ordering repeats a section").
				WithContext("section", k).Build()
		}
		seen.Add(k)
	}

	return renumber(d, orderedKeys), nil
}

// sortedKeys returns the section keys in the document's sorted order.
func sortedKeys(d *Document) []string {
	sorted := SortedSections(d)
	out := make([]string, len(sorted))
	for i, ks := range sorted {
		out[i] = ks.Key
	}
	return out
}

// SortedKeys exposes the sorted key order for collaborators that plan
// reorders (drag reconciliation).
func SortedKeys(d *Document) []string {
	d.mustSections()
	return sortedKeys(d)
}
