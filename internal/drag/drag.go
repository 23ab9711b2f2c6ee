// Package drag converts drop gestures into section reorders. The gesture
// recognition itself lives in the UI; this layer receives an already-resolved
// (source, destination) pair and produces either one atomic permutation or,
// for collaborators without a bulk-reorder hook, an equivalent sequence of
// single-step directional moves.
package drag

import (
	"slices"

	"git.home.luguber.info/inful/sitebuilder/internal/document"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Move is a resolved drop gesture.
type Move struct {
	SourceKey      string `json:"sourceKey"`
	DestinationKey string `json:"destinationKey"`
}

// Step is one directional move of the fallback decomposition.
type Step struct {
	Key       string
	Direction document.Direction
}

// PlanOrder computes the new total key order for a move: the source key is
// removed and reinserted at the destination key's former position; no other
// key's relative order changes. A move onto itself or onto an empty
// destination plans no change (nil order, false).
func PlanOrder(current []string, mv Move) ([]string, bool, error) {
	if mv.DestinationKey == "" || mv.SourceKey == mv.DestinationKey {
		return nil, false, nil
	}
	from := slices.Index(current, mv.SourceKey)
	to := slices.Index(current, mv.DestinationKey)
	if from < 0 || to < 0 {
		return nil, false, ferrors.NotFoundWarning("drag references unknown section").
			WithContext("source", mv.SourceKey).
			WithContext("destination", mv.DestinationKey).
			Build()
	}

	order := make([]string, 0, len(current))
	order = append(order, current[:from]...)
	order = append(order, current[from+1:]...)
	order = slices.Insert(order, to, mv.SourceKey)
	return order, true, nil
}

// Reconcile applies a move through the atomic bulk-permutation path. A no-op
// move returns the document unchanged with no error.
func Reconcile(d *document.Document, mv Move) (*document.Document, error) {
	order, changed, err := PlanOrder(document.SortedKeys(d), mv)
	if err != nil || !changed {
		return d, err
	}
	return document.ReorderSectionsByPermutation(d, order)
}

// FallbackSteps decomposes a move into consecutive single-step directional
// moves of the source key. The decomposition reaches the same final order as
// the permutation path but is not atomic.
func FallbackSteps(current []string, mv Move) ([]Step, error) {
	_, changed, err := PlanOrder(current, mv)
	if err != nil || !changed {
		return nil, err
	}
	from := slices.Index(current, mv.SourceKey)
	to := slices.Index(current, mv.DestinationKey)

	dir := document.DirectionUp
	steps := from - to
	if to > from {
		dir = document.DirectionDown
		steps = to - from
	}

	out := make([]Step, steps)
	for i := range out {
		out[i] = Step{Key: mv.SourceKey, Direction: dir}
	}
	return out, nil
}

// ReconcileStepwise applies a move through the fallback path, one directional
// move at a time.
func ReconcileStepwise(d *document.Document, mv Move) (*document.Document, error) {
	steps, err := FallbackSteps(document.SortedKeys(d), mv)
	if err != nil || len(steps) == 0 {
		return d, err
	}
	for _, step := range steps {
		next, err := document.ReorderSectionByDirection(d, step.Key, step.Direction)
		if err != nil {
			return d, err
		}
		d = next
	}
	return d, nil
}
