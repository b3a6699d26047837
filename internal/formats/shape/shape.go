// Package shape decodes the parts of an item that every document revision
// lays out the same way, parameterized by the revision's id type.
package shape

import (
	"encoding/json"
	"fmt"

	"github.com/jward/docdex/internal/formats/importable"
)

// Inner is an item's kind-tagged body: a JSON object with exactly one key,
// the kind. Only the body fields the index needs are kept; anything else,
// or a field with an unexpected type, is ignored.
type Inner[ID comparable] struct {
	Kind       string
	Items      []ID
	Variants   []ID
	Fields     []ID
	IsStripped bool
	Source     string
	Name       string
	Target     *ID
	IsGlob     bool
}

func (in *Inner[ID]) UnmarshalJSON(data []byte) error {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("inner: %w", err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("inner: want exactly one kind, got %d", len(tagged))
	}
	*in = Inner[ID]{}
	var body json.RawMessage
	for kind, raw := range tagged {
		in.Kind, body = kind, raw
	}

	var fields map[string]json.RawMessage
	if json.Unmarshal(body, &fields) != nil {
		// Scalar and null bodies carry nothing the index reads.
		return nil
	}
	lenient(fields, "items", &in.Items)
	lenient(fields, "variants", &in.Variants)
	lenient(fields, "fields", &in.Fields)
	lenient(fields, "is_stripped", &in.IsStripped)
	lenient(fields, "source", &in.Source)
	lenient(fields, "name", &in.Name)
	lenient(fields, "is_glob", &in.IsGlob)
	var target ID
	if raw, ok := fields["id"]; ok && json.Unmarshal(raw, &target) == nil && string(raw) != "null" {
		in.Target = &target
	}
	return nil
}

func lenient[T any](fields map[string]json.RawMessage, key string, dst *T) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	var v T
	if json.Unmarshal(raw, &v) == nil {
		*dst = v
	}
}

// Children lists the item's members in document order: module or trait
// items, then enum variants, then struct fields.
func (in *Inner[ID]) Children() []ID {
	out := make([]ID, 0, len(in.Items)+len(in.Variants)+len(in.Fields))
	out = append(out, in.Items...)
	out = append(out, in.Variants...)
	return append(out, in.Fields...)
}

// Node converts the item to the importable-path walker's view. A `use`
// whose target lies outside the document is reported as not public so the
// walker skips it.
func (in *Inner[ID]) Node(name string, vis Visibility[ID]) importable.Node[ID] {
	n := importable.Node[ID]{Name: name, Public: vis.Public()}
	switch in.Kind {
	case "module":
		n.Module = true
		n.Items = in.Items
	case "use":
		if in.Target == nil {
			n.Public = false
			break
		}
		n.Use = true
		n.Name = in.Name
		n.Target = *in.Target
		n.Glob = in.IsGlob
	}
	return n
}

// Visibility is either a plain keyword ("public", "default", "crate") or
// {"restricted": {"parent": id, "path": "..."}}.
type Visibility[ID any] struct {
	Kind   string
	Parent ID
	Path   string
}

func (v *Visibility[ID]) UnmarshalJSON(data []byte) error {
	var keyword string
	if json.Unmarshal(data, &keyword) == nil {
		*v = Visibility[ID]{Kind: keyword}
		return nil
	}
	var restricted struct {
		Restricted *struct {
			Parent ID     `json:"parent"`
			Path   string `json:"path"`
		} `json:"restricted"`
	}
	if err := json.Unmarshal(data, &restricted); err != nil {
		return fmt.Errorf("visibility: %w", err)
	}
	if restricted.Restricted == nil {
		return fmt.Errorf("visibility: unrecognized value %s", data)
	}
	*v = Visibility[ID]{Kind: "restricted", Parent: restricted.Restricted.Parent, Path: restricted.Restricted.Path}
	return nil
}

// Public reports whether the item is visible outside its crate.
func (v Visibility[ID]) Public() bool {
	return v.Kind == "public"
}

// String renders the visibility as stored in the item table.
func (v Visibility[ID]) String() string {
	if v.Kind == "restricted" {
		return "restricted(" + v.Path + ")"
	}
	return v.Kind
}

// Deprecation is an item's optional deprecation notice.
type Deprecation struct {
	Since *string `json:"since"`
	Note  *string `json:"note"`
}

// NoteOrNil returns the note as a SQL value.
func (d *Deprecation) NoteOrNil() any {
	if d == nil || d.Note == nil {
		return nil
	}
	return *d.Note
}

// StringOrNil returns *s as a SQL value, or nil.
func StringOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
