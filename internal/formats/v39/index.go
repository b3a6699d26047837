package v39

import (
	"slices"

	"github.com/jward/docdex/internal/formats/importable"
	"github.com/jward/docdex/internal/metadata"
)

// Storage owns a parsed document and the package it was resolved to.
type Storage struct {
	crate *Crate
	pkg   *metadata.Package
}

// NewStorage wraps a parsed document. pkg may be nil.
func NewStorage(c *Crate, pkg *metadata.Package) *Storage {
	return &Storage{crate: c, pkg: pkg}
}

func (s *Storage) Crate() *Crate              { return s.crate }
func (s *Storage) Package() *metadata.Package { return s.pkg }

// CrateVersion returns the version the document declares for its crate.
func (s *Storage) CrateVersion() (string, bool) {
	if s.crate.CrateVersion == nil {
		return "", false
	}
	return *s.crate.CrateVersion, true
}

// Index holds lookups derived from one Storage.
type Index struct {
	storage *Storage
	ids     []uint32
	paths   map[uint32][]string
}

// NewIndex builds the lookups for s.
func NewIndex(s *Storage) *Index {
	c := s.crate
	ids := make([]uint32, 0, len(c.Index))
	for id := range c.Index {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	paths := importable.Paths(c.Root, func(id uint32) (importable.Node[uint32], bool) {
		it, ok := c.Index[id]
		if !ok {
			return importable.Node[uint32]{}, false
		}
		var name string
		if it.Name != nil {
			name = *it.Name
		}
		return it.Inner.Node(name, it.Visibility), true
	})
	return &Index{storage: s, ids: ids, paths: paths}
}

func (ix *Index) Storage() *Storage { return ix.storage }

// Item returns the item with the given id.
func (ix *Index) Item(id uint32) (*Item, bool) {
	it, ok := ix.storage.crate.Index[id]
	if !ok {
		return nil, false
	}
	return &it, true
}

// IDs returns every item id in ascending order.
func (ix *Index) IDs() []uint32 { return ix.ids }

// ImportablePaths returns the sorted paths under which id can be imported.
func (ix *Index) ImportablePaths(id uint32) []string { return ix.paths[id] }
