// Package v36 reads format revision 36 documents. Item ids are strings and
// the adapter is told the target triple by its caller.
package v36

import (
	"encoding/json"
	"fmt"

	"github.com/jward/docdex/internal/formats/shape"
)

// Revision is the format_version this package reads.
const Revision = 36

// Crate is a parsed revision 36 document.
type Crate struct {
	Root            string          `json:"root"`
	CrateVersion    *string         `json:"crate_version"`
	IncludesPrivate bool            `json:"includes_private"`
	Index           map[string]Item `json:"index"`
	FormatVersion   uint32          `json:"format_version"`
}

// Item is one entry of the crate index.
type Item struct {
	ID          string                   `json:"id"`
	CrateID     uint32                   `json:"crate_id"`
	Name        *string                  `json:"name"`
	Visibility  shape.Visibility[string] `json:"visibility"`
	Docs        *string                  `json:"docs"`
	Attrs       []string                 `json:"attrs"`
	Deprecation *shape.Deprecation       `json:"deprecation"`
	Inner       shape.Inner[string]      `json:"inner"`
}

// Parse decodes a revision 36 document.
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
		return nil, fmt.Errorf("root item %q is not in the index", c.Root)
	}
	if root.Inner.Kind != "module" {
		return nil, fmt.Errorf("root item %q is a %s, want module", c.Root, root.Inner.Kind)
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
