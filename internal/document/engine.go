package document

import (
	"fmt"

	"github.com/brunoga/deep"
	"github.com/google/uuid"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/registry"
)

// The mutation engine. Every operation takes the current document and returns
// a new one; the input is never modified. On any rejected operation the input
// document is returned unchanged alongside a classified error: warnings mark
// no-ops the host surfaces as notices, errors mark rejected requests.

// cow returns a shallow copy of d in which the entry for key has been
// replaced by a deep copy, ready for in-place mutation. ok is false when the
// key does not exist.
func cow(d *Document, key string) (nd *Document, sec *Section, ok bool) {
	d.mustSections()
	s, exists := d.sections[key]
	if !exists {
		return d, nil, false
	}
	nd = d.shallowCopy()
	sec = deep.MustCopy(s)
	nd.sections[key] = sec
	return nd, sec, true
}

// UpdateSectionData shallow-merges partial into the section's data payload.
// A missing key is a silent no-op: callers only invoke this for keys they
// just read from the document.
func UpdateSectionData(d *Document, key string, partial Data) (*Document, error) {
	nd, sec, ok := cow(d, key)
	if !ok {
		return d, nil
	}
	if sec.Data == nil {
		sec.Data = make(Data, len(partial))
	}
	for k, v := range partial {
		sec.Data[k] = v
	}
	return nd, nil
}

// UpdateFieldByPath sets a single (possibly nested) field in the section's
// data. path is dot-separated; a leading "data." segment is stripped. Missing
// intermediate containers are created.
func UpdateFieldByPath(d *Document, key, path string, value any) (*Document, error) {
	nd, sec, ok := cow(d, key)
	if !ok {
		return d, ferrors.NotFoundWarning("section not found").
			WithContext("section", key).Build()
	}
	segments := splitFieldPath(path)
	if len(segments) == 0 {
		return d, ferrors.ValidationError("empty field path").
			WithContext("section", key).Build()
	}
	if sec.Data == nil {
		sec.Data = Data{}
	}
	updated, err := setAtPath(sec.Data, segments, value)
	if err != nil {
		return d, err
	}
	sec.Data = updated
	return nd, nil
}

// ensureCollection returns the named array from the section's data,
// materializing it first if absent: from the registry's default seed when one
// is documented for this section type, otherwise as an empty list. Seeded
// placeholder content becomes persisted, editable content the first time the
// collection is touched.
func ensureCollection(sec *Section, collection string) []any {
	if sec.Data == nil {
		sec.Data = Data{}
	}
	if existing, ok := sec.Data[collection].([]any); ok {
		return existing
	}
	if seed := registry.DefaultCollection(sec.Type, collection); seed != nil {
		items := make([]any, len(seed))
		for i, item := range seed {
			items[i] = Data(item)
		}
		sec.Data[collection] = items
		return items
	}
	empty := []any{}
	sec.Data[collection] = empty
	return empty
}

// upgradeLegacyItem converts a bare-string list entry into its object form,
// carrying the original string as both title and text.
func upgradeLegacyItem(s string) Data {
	return Data{
		"id":    uuid.NewString(),
		"icon":  registry.DefaultItemIcon,
		"title": s,
		"text":  s,
	}
}

// UpdateRepeatingItem shallow-merges patch into the element at index of the
// named collection inside the section's data. Legacy scalar elements are
// upgraded to object form before the merge. An out-of-bounds index is a
// no-op surfaced as a warning.
func UpdateRepeatingItem(d *Document, key, collection string, index int, patch Data) (*Document, error) {
	nd, sec, ok := cow(d, key)
	if !ok {
		return d, ferrors.NotFoundWarning("section not found").
			WithContext("section", key).Build()
	}
	items := ensureCollection(sec, collection)
	if index < 0 || index >= len(items) {
		return d, ferrors.NotFoundWarning(fmt.Sprintf("%s item index out of range", collection)).
			WithContext("section", key).
			WithContext("index", index).
			WithContext("length", len(items)).
			Build()
	}

	var item Data
	switch v := items[index].(type) {
	case Data:
		item = v
	case string:
		item = upgradeLegacyItem(v)
	default:
		item = Data{}
	}
	for k, v := range patch {
		item[k] = v
	}
	items[index] = item
	sec.Data[collection] = items
	return nd, nil
}

// AddRepeatingItem appends item to the named collection, initializing the
// collection first when absent.
func AddRepeatingItem(d *Document, key, collection string, item any) (*Document, error) {
	nd, sec, ok := cow(d, key)
	if !ok {
		return d, ferrors.NotFoundWarning("section not found").
			WithContext("section", key).Build()
	}
	items := ensureCollection(sec, collection)
	sec.Data[collection] = append(items, item)
	return nd, nil
}

// DeleteRepeatingItem removes the element at index from the named collection.
// An out-of-range index is a no-op surfaced as a warning.
func DeleteRepeatingItem(d *Document, key, collection string, index int) (*Document, error) {
	nd, sec, ok := cow(d, key)
	if !ok {
		return d, ferrors.NotFoundWarning("section not found").
			WithContext("section", key).Build()
	}
	items := ensureCollection(sec, collection)
	if index < 0 || index >= len(items) {
		return d, ferrors.NotFoundWarning(fmt.Sprintf("%s item index out of range", collection)).
			WithContext("section", key).
			WithContext("index", index).
			WithContext("length", len(items)).
			Build()
	}
	sec.Data[collection] = append(items[:index:index], items[index+1:]...)
	return nd, nil
}

// UpdateSectionSettings shallow-merges patch into the section's presentation
// settings. Whether the change is announced to the user is the session's
// concern, not the engine's.
func UpdateSectionSettings(d *Document, key string, patch Data) (*Document, error) {
	nd, sec, ok := cow(d, key)
	if !ok {
		return d, ferrors.NotFoundWarning("section not found").
			WithContext("section", key).Build()
	}
	if sec.Settings == nil {
		sec.Settings = make(Data, len(patch))
	}
	for k, v := range patch {
		sec.Settings[k] = v
	}
	return nd, nil
}

// HideSection marks the section invisible without removing it. Required
// sections cannot be hidden.
func HideSection(d *Document, key string, layout *registry.Layout) (*Document, error) {
	if layout.IsRequired(key) {
		return d, ferrors.ValidationError("required sections cannot be hidden").
			WithContext("section", key).Build()
	}
	nd, sec, ok := cow(d, key)
	if !ok {
		return d, ferrors.NotFoundWarning("section not found").
			WithContext("section", key).Build()
	}
	sec.Visible = false
	return nd, nil
}

// ShowSection marks a hidden section visible again.
func ShowSection(d *Document, key string) (*Document, error) {
	nd, sec, ok := cow(d, key)
	if !ok {
		return d, ferrors.NotFoundWarning("section not found").
			WithContext("section", key).Build()
	}
	sec.Visible = true
	return nd, nil
}

// DeleteSection removes the section entirely. Deletion is terminal; a deleted
// key never resurrects. Required sections cannot be deleted.
func DeleteSection(d *Document, key string, layout *registry.Layout) (*Document, error) {
	d.mustSections()
	if layout.IsRequired(key) {
		return d, ferrors.ValidationError("required sections cannot be deleted").
			WithContext("section", key).Build()
	}
	if _, ok := d.sections[key]; !ok {
		return d, ferrors.NotFoundWarning("section not found").
			WithContext("section", key).Build()
	}
	nd := d.shallowCopy()
	delete(nd.sections, key)
	for i, k := range nd.keys {
		if k == key {
			nd.keys = append(nd.keys[:i:i], nd.keys[i+1:]...)
			break
		}
	}
	return nd, nil
}

// AddSection creates a new section of type t at the end of the page. For
// multi-instance types the key carries a numeric suffix once the bare key is
// taken (richText, richText_1, ...). The minted key is returned.
func AddSection(d *Document, t registry.SectionType, layout *registry.Layout) (*Document, string, error) {
	d.mustSections()
	info, known := registry.Info(t)
	if !known {
		return d, "", ferrors.ValidationError("unknown section type").
			WithContext("type", string(t)).Build()
	}
	if layout != nil && !layout.AllowsType(t) {
		return d, "", ferrors.ValidationError("layout does not allow this section type").
			WithContext("type", string(t)).
			WithContext("layout", layout.Name).Build()
	}

	key := string(t)
	if _, exists := d.sections[key]; exists {
		if !info.MultiInstance {
			return d, "", ferrors.ValidationError("section type already present").
				WithContext("type", string(t)).Build()
		}
		for n := 1; ; n++ {
			candidate := fmt.Sprintf("%s_%d", t, n)
			if _, taken := d.sections[candidate]; !taken {
				key = candidate
				break
			}
		}
	}

	nd := d.shallowCopy()
	nd.sections[key] = &Section{
		Type:     t,
		Visible:  true,
		Order:    d.nextOrder(),
		Settings: Data{},
		Data:     deep.MustCopy(Data(info.DefaultData)),
	}
	nd.keys = append(nd.keys, key)
	return nd, key, nil
}

// DuplicateSection deep-copies the entry under a freshly minted key
// (<source>_copy, <source>_copy_1, ... on collision) appended at the end of
// the page. The new key is returned.
func DuplicateSection(d *Document, key string) (*Document, string, error) {
	d.mustSections()
	src, ok := d.sections[key]
	if !ok {
		return d, "", ferrors.NotFoundWarning("section not found").
			WithContext("section", key).Build()
	}

	copyKey := key + "_copy"
	for n := 1; ; n++ {
		if _, taken := d.sections[copyKey]; !taken {
			break
		}
		copyKey = fmt.Sprintf("%s_copy_%d", key, n)
	}

	nd := d.shallowCopy()
	dup := deep.MustCopy(src)
	dup.Order = d.nextOrder()
	nd.sections[copyKey] = dup
	nd.keys = append(nd.keys, copyKey)
	return nd, copyKey, nil
}
