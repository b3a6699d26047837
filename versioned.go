package docdex

import (
	"log/slog"

	"github.com/jward/docdex/internal/metrics"
)

// Storage owns one parsed document and the package record it was resolved
// to. It is immutable.
type Storage struct {
	arm   revisionArm
	path  string
	inner any
	pkg   *Package
}

// Version returns the document's format revision.
func (s *Storage) Version() uint32 { return s.arm.revision() }

// Path returns the path the document was loaded from.
func (s *Storage) Path() string { return s.path }

// Package returns the resolved package record, or nil.
func (s *Storage) Package() *Package { return s.pkg }

// CrateVersion returns the version the document declares for its crate.
// This is the crate's own version, not the format revision.
func (s *Storage) CrateVersion() (string, bool) {
	return s.arm.crateVersion(s.inner)
}

// Index is the read-only lookup structure derived from one Storage.
type Index struct {
	arm     revisionArm
	storage *Storage
	inner   any
}

// NewIndex builds the index of s. The index keeps s alive.
func NewIndex(s *Storage) *Index {
	return &Index{arm: s.arm, storage: s, inner: s.arm.newIndex(s.inner)}
}

// Version returns the index's format revision, always its Storage's.
func (ix *Index) Version() uint32 { return ix.arm.revision() }

// Storage returns the storage the index was built from.
func (ix *Index) Storage() *Storage { return ix.storage }

// Adapter answers queries over a current index and an optional baseline
// index of the same revision. It owns an in-memory database and must be
// closed. An Adapter is not safe for concurrent use.
type Adapter struct {
	arm      revisionArm
	current  *Index
	baseline *Index
	impl     armAdapter
	logger   *slog.Logger
	metrics  *metrics.Metrics

	open   map[*Rows]struct{}
	closed bool
}

// Version returns the adapter's format revision.
func (a *Adapter) Version() uint32 { return a.arm.revision() }

// Schema returns the tables queries may read. Every table exists in the
// main schema for the current document and in the baseline schema for the
// baseline document; unqualified names refer to main.
func (a *Adapter) Schema() *Schema { return a.arm.schema() }

// Current returns the current index.
func (a *Adapter) Current() *Index { return a.current }

// Baseline returns the baseline index, or nil.
func (a *Adapter) Baseline() *Index { return a.baseline }

// Close ends every open Rows and releases the database. Closing twice is a
// no-op.
func (a *Adapter) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	for r := range a.open {
		r.abort(ErrAdapterClosed)
	}
	return a.impl.Close()
}
