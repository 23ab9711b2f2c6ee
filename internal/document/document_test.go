package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/registry"
)

func mustDoc(t *testing.T, raw string) *Document {
	t.Helper()
	doc, err := FromJSON([]byte(raw))
	require.NoError(t, err)
	return doc
}

const landingJSON = `{
	"sections": {
		"hero": {"type": "hero", "visible": true, "order": 1, "data": {"headline": "Welcome"}},
		"cta":  {"type": "cta", "visible": true, "order": 2, "data": {"headline": "Buy now"}}
	}
}`

func TestFromJSONRebuildsKeyOrder(t *testing.T) {
	doc := mustDoc(t, landingJSON)
	assert.Equal(t, []string{"hero", "cta"}, doc.Keys())
	assert.Equal(t, 2, doc.Len())
}

func TestFromJSONRejectsNullSection(t *testing.T) {
	doc, err := FromJSON([]byte(`{"sections": {"hero": null}}`))
	require.Error(t, err)
	assert.Nil(t, doc)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func TestJSONRoundTrip(t *testing.T) {
	doc := mustDoc(t, landingJSON)
	raw, err := doc.ToJSON()
	require.NoError(t, err)

	again, err := FromJSON(raw)
	require.NoError(t, err)
	assert.True(t, Equal(doc, again))
}

func TestSectionReturnsCopy(t *testing.T) {
	doc := mustDoc(t, landingJSON)
	sec, ok := doc.Section("hero")
	require.True(t, ok)

	sec.Data["headline"] = "mutated"
	fresh, _ := doc.Section("hero")
	assert.Equal(t, "Welcome", fresh.Data["headline"])
}

func TestCloneIsIndependent(t *testing.T) {
	doc := mustDoc(t, landingJSON)
	clone := doc.Clone()
	require.True(t, Equal(doc, clone))

	mutated, err := UpdateSectionData(clone, "hero", Data{"headline": "changed"})
	require.NoError(t, err)
	assert.False(t, Equal(doc, mutated))
	assert.True(t, Equal(doc, clone), "clone itself stays untouched")
}

func TestSortedSectionsDeterministic(t *testing.T) {
	doc := mustDoc(t, `{
		"sections": {
			"cta":  {"type": "cta", "visible": true, "order": 3},
			"hero": {"type": "hero", "visible": true, "order": 1},
			"faq":  {"type": "faq", "visible": true, "order": 2}
		}
	}`)

	first := SortedSections(doc)
	second := SortedSections(doc)

	keys := func(ks []KeyedSection) []string {
		out := make([]string, len(ks))
		for i, k := range ks {
			out[i] = k.Key
		}
		return out
	}

	assert.Equal(t, []string{"hero", "faq", "cta"}, keys(first))
	assert.Equal(t, keys(first), keys(second))
}

func TestSortedSectionsLegacyZeroOrders(t *testing.T) {
	// Entries without explicit order all decode as 0; the tie-break must
	// still give a stable, reproducible total order.
	doc := mustDoc(t, `{
		"sections": {
			"text": {"type": "text", "visible": true},
			"hero": {"type": "hero", "visible": true},
			"faq":  {"type": "faq", "visible": true}
		}
	}`)

	sorted := SortedSections(doc)
	require.Len(t, sorted, 3)
	assert.Equal(t, "faq", sorted[0].Key)
	assert.Equal(t, "hero", sorted[1].Key)
	assert.Equal(t, "text", sorted[2].Key)
}

func TestVisibleSectionsFiltersHidden(t *testing.T) {
	doc := mustDoc(t, `{
		"sections": {
			"hero": {"type": "hero", "visible": true, "order": 1},
			"cta":  {"type": "cta", "visible": false, "order": 2}
		}
	}`)

	visible := VisibleSections(doc)
	require.Len(t, visible, 1)
	assert.Equal(t, "hero", visible[0].Key)
}

func TestMissingSections(t *testing.T) {
	doc := mustDoc(t, landingJSON)
	layout := registry.DefaultLayouts()["landing"]

	missing := MissingSections(doc, layout)
	assert.NotContains(t, missing, registry.TypeCTA, "already present")
	assert.Contains(t, missing, registry.TypeFAQ)
	assert.Contains(t, missing, registry.TypeRichText, "multi-instance always offered")

	withRich, _, err := AddSection(doc, registry.TypeRichText, layout)
	require.NoError(t, err)
	assert.Contains(t, MissingSections(withRich, layout), registry.TypeRichText,
		"multi-instance still offered after adding one")
}

func TestMustSectionsPanicsOnMalformedDocument(t *testing.T) {
	broken := &Document{}
	assert.Panics(t, func() { SortedSections(broken) })
}

func TestEqualComparesValuesAndOrdering(t *testing.T) {
	a := mustDoc(t, landingJSON)
	b := mustDoc(t, landingJSON)
	require.True(t, Equal(a, b), "independently decoded copies are equal")

	// nested data difference
	changed, err := UpdateFieldByPath(b, "hero", "data.headline", "Changed")
	require.NoError(t, err)
	assert.False(t, Equal(a, changed))

	// same entries, different order
	reordered, err := ReorderSectionsByPermutation(b, []string{"cta", "hero"})
	require.NoError(t, err)
	assert.False(t, Equal(a, reordered))

	assert.False(t, Equal(a, nil))
	assert.True(t, Equal(nil, nil))
}
