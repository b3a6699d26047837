// Package docdex loads JSON documentation exports whose shape depends on a
// format revision and answers SQL queries over them through one API,
// whichever compiled revision a document uses.
//
// # Pipeline
//
// A document goes through three stages:
//
//  1. Storage: the document's revision is detected from its trailing
//     `"format_version":N` (falling back to a full decode), and the text is
//     parsed by that revision's implementation. A package record resolved
//     from dependency metadata may be attached.
//
//  2. Index: read-only lookups derived from one Storage, including the
//     importable path of every public item.
//
//  3. Adapter: an in-memory SQLite database holding a current Index and,
//     optionally, a baseline Index of the same revision. The revision's
//     tables live in the main schema for the current document and in the
//     baseline schema for the baseline.
//
// # Usage
//
//	l := docdex.NewLoader(docdex.WithTarget("x86_64-unknown-linux-gnu"))
//	cur, err := l.Load("new.json", nil)
//	if err != nil { ... }
//	base, err := l.Load("old.json", nil)
//	if err != nil { ... }
//
//	a, err := l.NewAdapter(docdex.NewIndex(cur), docdex.NewIndex(base))
//	if err != nil { ... } // *VersionMismatchError if revisions differ
//	defer a.Close()
//
//	rows, err := a.RunQuery(ctx, `
//	    SELECT b.name FROM baseline.item b
//	    WHERE b.visibility = 'public'
//	      AND NOT EXISTS (SELECT 1 FROM main.item c WHERE c.name = b.name)`, nil)
//	for row, err := range rows.All() { ... }
//
// # Revisions
//
// The compiled revision set is closed: [SupportedRevisions] lists it, and
// documents of any other revision fail with *UnsupportedFormatError. The
// per-revision dispatch code is generated by cmd/docdex-gen from the
// templates in template/.
package docdex
