package editor

import (
	"git.home.luguber.info/inful/sitebuilder/internal/document"
	"git.home.luguber.info/inful/sitebuilder/internal/drag"
	"git.home.luguber.info/inful/sitebuilder/internal/registry"
)

// Thin wrappers over the mutation engine. Each one routes through apply so
// dirty tracking, notices, and metrics behave identically for every edit.

// UpdateSectionData shallow-merges partial into the section's data.
func (s *Session) UpdateSectionData(key string, partial document.Data) error {
	return s.apply(OpUpdateData, key, false, func(d *document.Document) (*document.Document, error) {
		return document.UpdateSectionData(d, key, partial)
	})
}

// UpdateField sets one (possibly nested) field by dot-separated path.
func (s *Session) UpdateField(key, path string, value any) error {
	return s.apply(OpUpdateField, key, false, func(d *document.Document) (*document.Document, error) {
		return document.UpdateFieldByPath(d, key, path, value)
	})
}

// UpdateRepeatingItem patches the element at index of a repeating collection.
func (s *Session) UpdateRepeatingItem(key, collection string, index int, patch document.Data) error {
	return s.apply(OpUpdateItem, key, false, func(d *document.Document) (*document.Document, error) {
		return document.UpdateRepeatingItem(d, key, collection, index, patch)
	})
}

// AddRepeatingItem appends an item to a repeating collection.
func (s *Session) AddRepeatingItem(key, collection string, item any) error {
	return s.apply(OpAddItem, key, false, func(d *document.Document) (*document.Document, error) {
		return document.AddRepeatingItem(d, key, collection, item)
	})
}

// DeleteRepeatingItem removes the element at index of a repeating collection.
func (s *Session) DeleteRepeatingItem(key, collection string, index int) error {
	return s.apply(OpDeleteItem, key, false, func(d *document.Document) (*document.Document, error) {
		return document.DeleteRepeatingItem(d, key, collection, index)
	})
}

// UpdateSettings shallow-merges presentation settings. Silent updates (batch
// re-application of defaults) skip the change notification; direct user edits
// should not.
func (s *Session) UpdateSettings(key string, patch document.Data, silent bool) error {
	return s.apply(OpUpdateSettings, key, silent, func(d *document.Document) (*document.Document, error) {
		return document.UpdateSectionSettings(d, key, patch)
	})
}

// HideSection hides a section without removing it.
func (s *Session) HideSection(key string) error {
	return s.apply(OpHideSection, key, false, func(d *document.Document) (*document.Document, error) {
		return document.HideSection(d, key, s.layout)
	})
}

// ShowSection reveals a hidden section.
func (s *Session) ShowSection(key string) error {
	return s.apply(OpShowSection, key, false, func(d *document.Document) (*document.Document, error) {
		return document.ShowSection(d, key)
	})
}

// DeleteSection removes a section entirely.
func (s *Session) DeleteSection(key string) error {
	return s.apply(OpDeleteSection, key, false, func(d *document.Document) (*document.Document, error) {
		return document.DeleteSection(d, key, s.layout)
	})
}

// AddSection creates a new section of the given type and returns its key.
func (s *Session) AddSection(t registry.SectionType) (string, error) {
	var minted string
	err := s.apply(OpAddSection, string(t), false, func(d *document.Document) (*document.Document, error) {
		next, key, err := document.AddSection(d, t, s.layout)
		minted = key
		return next, err
	})
	return minted, err
}

// DuplicateSection deep-copies a section under a fresh key and returns it.
func (s *Session) DuplicateSection(key string) (string, error) {
	var minted string
	err := s.apply(OpDuplicateSection, key, false, func(d *document.Document) (*document.Document, error) {
		next, copyKey, err := document.DuplicateSection(d, key)
		minted = copyKey
		return next, err
	})
	return minted, err
}

// ReorderByDirection moves a section one step up or down.
func (s *Session) ReorderByDirection(key string, dir document.Direction) error {
	return s.apply(OpReorderDirection, key, false, func(d *document.Document) (*document.Document, error) {
		return document.ReorderSectionByDirection(d, key, dir)
	})
}

// ReorderByPermutation applies a full new order over all section keys.
func (s *Session) ReorderByPermutation(orderedKeys []string) error {
	return s.apply(OpReorderPermutation, "", false, func(d *document.Document) (*document.Document, error) {
		return document.ReorderSectionsByPermutation(d, orderedKeys)
	})
}

// ApplyMove reconciles a drop gesture through the atomic permutation path.
// A cancelled or same-target drop is a pure no-op.
func (s *Session) ApplyMove(mv drag.Move) error {
	return s.apply(OpMove, mv.SourceKey, false, func(d *document.Document) (*document.Document, error) {
		return drag.Reconcile(d, mv)
	})
}
