package docdex

import (
	"slices"

	"github.com/jward/docdex/internal/metadata"
	"github.com/jward/docdex/internal/store"
)

//go:generate go run ./cmd/docdex-gen --root . 36 37 39

// revisionArm is one compiled format revision. Values passed in and out as
// any are that revision's own document, storage and index types; handing an
// arm another revision's value is a bug and panics.
type revisionArm interface {
	revision() uint32
	parse(data []byte) (any, error)
	newStorage(doc any, pkg *metadata.Package) any
	crateVersion(storage any) (string, bool)
	newIndex(storage any) any
	newAdapter(current, baseline any, target string) (armAdapter, error)
	schema() *store.Schema
}

// armAdapter is the sealed query store a revision builds.
type armAdapter interface {
	Store() *store.Store
	Close() error
}

// SupportedRevisions returns the compiled revisions in ascending order.
func SupportedRevisions() []uint32 {
	return slices.Clone(supportedRevisions)
}

// IsSupported reports whether rev is a compiled revision.
func IsSupported(rev uint32) bool {
	_, ok := armFor(rev)
	return ok
}

// SchemaFor returns the query schema of a compiled revision.
func SchemaFor(rev uint32) (*Schema, error) {
	arm, ok := armFor(rev)
	if !ok {
		return nil, &UnsupportedFormatError{Revision: rev, Supported: SupportedRevisions()}
	}
	return arm.schema(), nil
}
