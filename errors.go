package docdex

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrAdapterClosed is returned by RunQuery after Close, and by the Err of
// any Rows the Close cut short.
var ErrAdapterClosed = errors.New("docdex: adapter is closed")

// DocumentIOError reports that a document file could not be read.
type DocumentIOError struct {
	Path string
	Err  error
}

func (e *DocumentIOError) Error() string {
	return fmt.Sprintf("docdex: read document %s: %v", e.Path, e.Err)
}

func (e *DocumentIOError) Unwrap() error { return e.Err }

// FormatDetectionError reports a document whose format_version could not be
// determined.
type FormatDetectionError struct {
	Path string
	Err  error
}

func (e *FormatDetectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("docdex: unrecognized document format in %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("docdex: unrecognized document format in %s", e.Path)
}

func (e *FormatDetectionError) Unwrap() error { return e.Err }

// RevisionParsingError reports a document of a supported revision that did
// not decode against that revision's shape.
type RevisionParsingError struct {
	Path     string
	Revision uint32
	Err      error
}

func (e *RevisionParsingError) Error() string {
	return fmt.Sprintf("docdex: parse revision %d document %s: %v", e.Revision, e.Path, e.Err)
}

func (e *RevisionParsingError) Unwrap() error { return e.Err }

// UnsupportedFormatError reports a revision outside the compiled set.
// Supported lists the compiled revisions.
type UnsupportedFormatError struct {
	Revision  uint32
	Supported []uint32
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("docdex: format revision %d is not supported (supported: %s)",
		e.Revision, joinRevisions(e.Supported))
}

// VersionMismatchError reports an adapter built over indexes of different
// revisions.
type VersionMismatchError struct {
	Current  uint32
	Baseline uint32
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("docdex: current revision %d does not match baseline revision %d", e.Current, e.Baseline)
}

// QueryCompilationError reports query text rejected before evaluation.
// Line and Column are 1-based; zero means the position is unknown.
type QueryCompilationError struct {
	Query  string
	Line   int
	Column int
	Reason string
	Err    error
}

func (e *QueryCompilationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("docdex: query compilation failed at %d:%d: %s", e.Line, e.Column, e.Reason)
	}
	return "docdex: query compilation failed: " + e.Reason
}

func (e *QueryCompilationError) Unwrap() error { return e.Err }

// QueryRuntimeError reports a failure after compilation: bad variables or
// an evaluation fault.
type QueryRuntimeError struct {
	Reason string
	Err    error
}

func (e *QueryRuntimeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("docdex: query failed: %s: %v", e.Reason, e.Err)
	}
	return "docdex: query failed: " + e.Reason
}

func (e *QueryRuntimeError) Unwrap() error { return e.Err }

func joinRevisions(revs []uint32) string {
	parts := make([]string, len(revs))
	for i, r := range revs {
		parts[i] = strconv.FormatUint(uint64(r), 10)
	}
	return strings.Join(parts, ", ")
}
