package drag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/document"
)

func doc(t *testing.T, raw string) *document.Document {
	t.Helper()
	d, err := document.FromJSON([]byte(raw))
	require.NoError(t, err)
	return d
}

const threeSections = `{
	"sections": {
		"hero":     {"type": "hero", "visible": true, "order": 1},
		"cta":      {"type": "cta", "visible": true, "order": 2},
		"richText": {"type": "richText", "visible": true, "order": 3}
	}
}`

func sectionOrders(d *document.Document) map[string]int {
	out := make(map[string]int, d.Len())
	for _, ks := range document.SortedSections(d) {
		out[ks.Key] = ks.Section.Order
	}
	return out
}

func TestPlanOrderMoveSemantics(t *testing.T) {
	current := []string{"hero", "cta", "richText"}

	order, changed, err := PlanOrder(current, Move{SourceKey: "richText", DestinationKey: "hero"})
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, []string{"richText", "hero", "cta"}, order)

	order, changed, err = PlanOrder(current, Move{SourceKey: "hero", DestinationKey: "richText"})
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, []string{"cta", "richText", "hero"}, order)
}

func TestPlanOrderNoop(t *testing.T) {
	current := []string{"hero", "cta"}

	_, changed, err := PlanOrder(current, Move{SourceKey: "hero", DestinationKey: "hero"})
	require.NoError(t, err)
	assert.False(t, changed)

	_, changed, err = PlanOrder(current, Move{SourceKey: "hero"})
	require.NoError(t, err)
	assert.False(t, changed, "cancelled drag without destination is a pure no-op")
}

func TestPlanOrderUnknownKey(t *testing.T) {
	_, _, err := PlanOrder([]string{"hero"}, Move{SourceKey: "ghost", DestinationKey: "hero"})
	require.Error(t, err)
}

// Scenario: add richText to {hero, cta} and drag it to position 1.
func TestAddAndReorderScenario(t *testing.T) {
	d := doc(t, threeSections)

	d, err := Reconcile(d, Move{SourceKey: "richText", DestinationKey: "hero"})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"richText": 1, "hero": 2, "cta": 3}, sectionOrders(d))
}

// The permutation path and the stepwise fallback must agree on final order
// assignments for identical inputs.
func TestReorderEquivalence(t *testing.T) {
	moves := []Move{
		{SourceKey: "richText", DestinationKey: "hero"},
		{SourceKey: "hero", DestinationKey: "richText"},
		{SourceKey: "cta", DestinationKey: "hero"},
		{SourceKey: "hero", DestinationKey: "cta"},
	}

	for _, mv := range moves {
		bulk, err := Reconcile(doc(t, threeSections), mv)
		require.NoError(t, err, "move %+v", mv)

		stepwise, err := ReconcileStepwise(doc(t, threeSections), mv)
		require.NoError(t, err, "move %+v", mv)

		assert.Equal(t, sectionOrders(bulk), sectionOrders(stepwise), "move %+v", mv)
		assert.Equal(t, document.SortedKeys(bulk), document.SortedKeys(stepwise), "move %+v", mv)
	}
}

func TestFallbackStepCount(t *testing.T) {
	current := []string{"a", "b", "c", "d"}

	steps, err := FallbackSteps(current, Move{SourceKey: "a", DestinationKey: "d"})
	require.NoError(t, err)
	require.Len(t, steps, 3)
	for _, s := range steps {
		assert.Equal(t, document.DirectionDown, s.Direction)
		assert.Equal(t, "a", s.Key)
	}

	steps, err = FallbackSteps(current, Move{SourceKey: "d", DestinationKey: "b"})
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, document.DirectionUp, steps[0].Direction)
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	d := doc(t, threeSections)
	before := sectionOrders(d)

	_, err := Reconcile(d, Move{SourceKey: "cta", DestinationKey: "hero"})
	require.NoError(t, err)
	assert.Equal(t, before, sectionOrders(d))
}
