// Package v39 reads format revision 39 documents. Attributes are
// structured values instead of source text.
package v39

import (
	"encoding/json"
	"fmt"

	"github.com/jward/docdex/internal/formats/shape"
)

// Revision is the format_version this package reads.
const Revision = 39

// Crate is a parsed revision 39 document.
type Crate struct {
	Root            uint32          `json:"root"`
	CrateVersion    *string         `json:"crate_version"`
	IncludesPrivate bool            `json:"includes_private"`
	Index           map[uint32]Item `json:"index"`
	Target          Target          `json:"target"`
	FormatVersion   uint32          `json:"format_version"`
}

// Target describes the platform the documentation was generated for.
type Target struct {
	Triple         string          `json:"triple"`
	TargetFeatures []TargetFeature `json:"target_features"`
}

type TargetFeature struct {
	Name            string   `json:"name"`
	ImpliesFeatures []string `json:"implies_features"`
	GloballyEnabled bool     `json:"globally_enabled"`
}

// Item is one entry of the crate index.
type Item struct {
	ID          uint32                   `json:"id"`
	CrateID     uint32                   `json:"crate_id"`
	Name        *string                  `json:"name"`
	Visibility  shape.Visibility[uint32] `json:"visibility"`
	Docs        *string                  `json:"docs"`
	Attrs       []Attribute              `json:"attrs"`
	Deprecation *shape.Deprecation       `json:"deprecation"`
	Inner       shape.Inner[uint32]      `json:"inner"`
}

// Attribute is either a bare kind ("non_exhaustive") or an object with a
// single kind key. Value holds a string payload as is and any other
// payload as its JSON text; it is nil for bare kinds and null payloads.
type Attribute struct {
	Kind  string
	Value *string
}

func (a *Attribute) UnmarshalJSON(data []byte) error {
	var kind string
	if json.Unmarshal(data, &kind) == nil {
		*a = Attribute{Kind: kind}
		return nil
	}
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("attribute: %w", err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("attribute: want exactly one kind, got %d", len(tagged))
	}
	for kind, raw := range tagged {
		*a = Attribute{Kind: kind}
		if string(raw) == "null" {
			break
		}
		var s string
		if json.Unmarshal(raw, &s) != nil {
			s = string(raw)
		}
		a.Value = &s
	}
	return nil
}

// Parse decodes a revision 39 document.
func Parse(data []byte) (*Crate, error) {
	var c Crate
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c.FormatVersion != Revision {
		return nil, fmt.Errorf("format_version is %d, want %d", c.FormatVersion, Revision)
	}
	root, ok := c.Index[c.Root]
	if !ok {
		return nil, fmt.Errorf("root item %d is not in the index", c.Root)
	}
	if root.Inner.Kind != "module" {
		return nil, fmt.Errorf("root item %d is a %s, want module", c.Root, root.Inner.Kind)
	}
	return &c, nil
}

// Name returns the crate's name, taken from its root module.
func (c *Crate) Name() string {
	if n := c.Index[c.Root].Name; n != nil {
		return *n
	}
	return ""
}
