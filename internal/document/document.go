// Package document holds the in-memory content model for one page: an
// ordered collection of typed sections plus the pure operations that
// transform it. Every operation returns a new Document value; inputs are
// never mutated, so a caller can hold the previous value as a snapshot.
package document

import (
	"bytes"
	"encoding/json"
	"slices"
	"sort"

	"github.com/brunoga/deep"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/registry"
)

// Data is a free-form JSON-like mapping. Section payloads and settings are
// opaque to the engine beyond the paths and collections an operation touches.
type Data = map[string]any

// Section is one content block on a page.
type Section struct {
	Type     registry.SectionType `json:"type"`
	Visible  bool                 `json:"visible"`
	Order    int                  `json:"order"`
	Settings Data                 `json:"settings,omitempty"`
	Data     Data                 `json:"data,omitempty"`
}

// Document is the content of one page: section entries keyed by a unique,
// reorder-stable string. The Order field on each entry is the authoritative
// ordering signal; the internal key sequence only breaks ties for legacy
// documents whose entries all carry Order 0.
type Document struct {
	sections map[string]*Section
	keys     []string // insertion order
}

// New returns an empty document.
func New() *Document {
	return &Document{
		sections: make(map[string]*Section),
		keys:     nil,
	}
}

// Len returns the number of sections.
func (d *Document) Len() int {
	return len(d.keys)
}

// Has reports whether key exists in the document.
func (d *Document) Has(key string) bool {
	_, ok := d.sections[key]
	return ok
}

// Keys returns the section keys in insertion order. The returned slice is a copy.
func (d *Document) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Section returns a deep copy of the entry for key. Mutating the result never
// affects the document.
func (d *Document) Section(key string) (*Section, bool) {
	s, ok := d.sections[key]
	if !ok {
		return nil, false
	}
	return deep.MustCopy(s), true
}

// Clone returns a deep copy of the whole document.
func (d *Document) Clone() *Document {
	out := &Document{
		sections: make(map[string]*Section, len(d.sections)),
		keys:     append([]string(nil), d.keys...),
	}
	for k, s := range d.sections {
		out.sections[k] = deep.MustCopy(s)
	}
	return out
}

// Equal reports deep value equality of two documents, including ordering.
// Section payloads are JSON-shaped values, so each entry is compared by its
// canonical JSON encoding (encoding/json sorts object keys).
func Equal(a, b *Document) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !slices.Equal(a.keys, b.keys) {
		return false
	}
	for k, sa := range a.sections {
		sb, ok := b.sections[k]
		if !ok {
			return false
		}
		ja, err := json.Marshal(sa)
		if err != nil {
			return false
		}
		jb, err := json.Marshal(sb)
		if err != nil {
			return false
		}
		if !bytes.Equal(ja, jb) {
			return false
		}
	}
	return true
}

// shallowCopy duplicates the document container without copying entries.
// Operations replace touched entries with deep copies before mutating them,
// so untouched sections stay structurally shared with the previous value.
func (d *Document) shallowCopy() *Document {
	out := &Document{
		sections: make(map[string]*Section, len(d.sections)),
		keys:     append([]string(nil), d.keys...),
	}
	for k, s := range d.sections {
		out.sections[k] = s
	}
	return out
}

// mustSections panics when the document container is structurally broken.
// This is a programming-contract violation, not a user-driven edge case.
func (d *Document) mustSections() {
	if d == nil || d.sections == nil {
		panic(ferrors.InternalError("document sections container is not initialized").Build())
	}
}

// nextOrder returns the order value a newly added section receives.
func (d *Document) nextOrder() int {
	max := 0
	for _, s := range d.sections {
		if s.Order > max {
			max = s.Order
		}
	}
	return max + 1
}

// wire format

type documentWire struct {
	Sections map[string]*Section `json:"sections"`
}

// MarshalJSON encodes the document. Key ordering inside the JSON object is
// not meaningful; Order fields carry the sequence.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(documentWire{Sections: d.sections})
}

// UnmarshalJSON decodes a document and rebuilds the key sequence from the
// Order fields (ties broken by key, so the result is deterministic regardless
// of JSON object ordering).
func (d *Document) UnmarshalJSON(b []byte) error {
	var wire documentWire
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	d.sections = wire.Sections
	if d.sections == nil {
		d.sections = make(map[string]*Section)
	}
	d.keys = make([]string, 0, len(d.sections))
	for k, sec := range d.sections {
		if sec == nil {
			return ferrors.ValidationError("section is null").
				WithContext("key", k).Build()
		}
		d.keys = append(d.keys, k)
	}
	sort.SliceStable(d.keys, func(i, j int) bool {
		si, sj := d.sections[d.keys[i]], d.sections[d.keys[j]]
		if si.Order != sj.Order {
			return si.Order < sj.Order
		}
		return d.keys[i] < d.keys[j]
	})
	return nil
}

// FromJSON decodes a persisted document snapshot.
func FromJSON(b []byte) (*Document, error) {
	doc := New()
	if err := json.Unmarshal(b, doc); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "failed to decode document").Build()
	}
	return doc, nil
}

// ToJSON encodes the document for persistence.
func (d *Document) ToJSON() ([]byte, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode document").Build()
	}
	return b, nil
}
