package v37

import (
	"fmt"

	"github.com/jward/docdex/internal/formats/shape"
	"github.com/jward/docdex/internal/store"
)

var schema = &store.Schema{
	Revision: Revision,
	Tables: []store.Table{
		{Name: "crate", Columns: []store.Column{
			{Name: "name", Type: "TEXT NOT NULL"},
			{Name: "version", Type: "TEXT"},
			{Name: "format_version", Type: "INTEGER NOT NULL"},
			{Name: "includes_private", Type: "BOOLEAN NOT NULL"},
			{Name: "target_triple", Type: "TEXT"},
		}},
		{Name: "target_feature", Columns: []store.Column{
			{Name: "name", Type: "TEXT NOT NULL"},
			{Name: "globally_enabled", Type: "BOOLEAN NOT NULL"},
		}},
		{Name: "item", Columns: []store.Column{
			{Name: "id", Type: "INTEGER NOT NULL"},
			{Name: "crate_id", Type: "INTEGER NOT NULL"},
			{Name: "name", Type: "TEXT"},
			{Name: "kind", Type: "TEXT NOT NULL"},
			{Name: "visibility", Type: "TEXT NOT NULL"},
			{Name: "docs", Type: "TEXT"},
			{Name: "deprecated", Type: "BOOLEAN NOT NULL"},
			{Name: "deprecation_note", Type: "TEXT"},
		}, Indexes: []string{"id", "name", "kind"}},
		{Name: "importable_path", Columns: []store.Column{
			{Name: "item_id", Type: "INTEGER NOT NULL"},
			{Name: "path", Type: "TEXT NOT NULL"},
		}, Indexes: []string{"item_id", "path"}},
		{Name: "attribute", Columns: []store.Column{
			{Name: "item_id", Type: "INTEGER NOT NULL"},
			{Name: "text", Type: "TEXT NOT NULL"},
		}, Indexes: []string{"item_id"}},
		{Name: "child", Columns: []store.Column{
			{Name: "parent_id", Type: "INTEGER NOT NULL"},
			{Name: "child_id", Type: "INTEGER NOT NULL"},
			{Name: "ordinal", Type: "INTEGER NOT NULL"},
		}, Indexes: []string{"parent_id"}},
	},
}

// Schema returns the tables a revision 37 adapter exposes.
func Schema() *store.Schema { return schema }

// Adapter is a sealed query store over one current index and an optional
// baseline index.
type Adapter struct {
	store *store.Store
}

// NewAdapter loads current, and baseline when non-nil, into a fresh store.
// The target triple comes from each document.
func NewAdapter(current, baseline *Index) (*Adapter, error) {
	var base map[string][][]any
	if baseline != nil {
		base = baseline.rows()
	}
	st, err := store.Build(schema, current.rows(), base)
	if err != nil {
		return nil, fmt.Errorf("v37: build adapter: %w", err)
	}
	return &Adapter{store: st}, nil
}

func (a *Adapter) Store() *store.Store { return a.store }

func (a *Adapter) Close() error { return a.store.Close() }

func (ix *Index) rows() map[string][][]any {
	c := ix.storage.crate
	var triple any
	if c.Target.Triple != "" {
		triple = c.Target.Triple
	}
	out := map[string][][]any{
		"crate": {{c.Name(), shape.StringOrNil(c.CrateVersion), c.FormatVersion, c.IncludesPrivate, triple}},
	}
	for _, f := range c.Target.TargetFeatures {
		out["target_feature"] = append(out["target_feature"], []any{f.Name, f.GloballyEnabled})
	}
	for _, id := range ix.ids {
		it := c.Index[id]
		out["item"] = append(out["item"], []any{
			id, it.CrateID, shape.StringOrNil(it.Name), it.Inner.Kind, it.Visibility.String(),
			shape.StringOrNil(it.Docs), it.Deprecation != nil, it.Deprecation.NoteOrNil(),
		})
		for _, p := range ix.paths[id] {
			out["importable_path"] = append(out["importable_path"], []any{id, p})
		}
		for _, a := range it.Attrs {
			out["attribute"] = append(out["attribute"], []any{id, a})
		}
		for i, child := range it.Inner.Children() {
			out["child"] = append(out["child"], []any{id, child, i})
		}
	}
	return out
}
