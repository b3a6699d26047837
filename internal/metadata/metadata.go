// Package metadata reads package dependency graphs and picks the package a
// documentation export was generated for.
package metadata

import (
	"encoding/json"
	"fmt"
)

// Graph is a parsed dependency graph: every package record plus the id of
// the root package.
type Graph struct {
	Root     string
	Packages []Package
}

// Package is one record of the graph. Version and ManifestPath are empty
// when the provider omits them.
type Package struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Version      string       `json:"version,omitempty"`
	ManifestPath string       `json:"manifest_path,omitempty"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
}

// Dependency names a package either by filesystem path or by version
// requirement. A non-empty Path takes precedence over Req.
type Dependency struct {
	Name string `json:"name"`
	Req  string `json:"req,omitempty"`
	Path string `json:"path,omitempty"`
}

// IsPath reports whether the dependency refers to a package by path.
func (d Dependency) IsPath() bool {
	return d.Path != ""
}

// RootPackage returns the record whose id is g.Root.
func (g *Graph) RootPackage() (*Package, error) {
	for i := range g.Packages {
		if g.Packages[i].ID == g.Root {
			return &g.Packages[i], nil
		}
	}
	return nil, &MetadataParsingError{Reason: fmt.Sprintf("root package %q is not in the package list", g.Root)}
}

type rawGraph struct {
	Packages []Package `json:"packages"`
	Resolve  *struct {
		Root *string `json:"root"`
	} `json:"resolve"`
}

// ParseGraph decodes provider output of the form
//
//	{"packages": [{"id", "name", "version", "manifest_path",
//	               "dependencies": [{"name", "req", "path"}]}],
//	 "resolve": {"root": "<package id>"}}
//
// Unknown fields are ignored.
func ParseGraph(data []byte) (*Graph, error) {
	var raw rawGraph
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &MetadataParsingError{Reason: "decode metadata", Err: err}
	}
	if raw.Resolve == nil || raw.Resolve.Root == nil || *raw.Resolve.Root == "" {
		return nil, &MetadataParsingError{Reason: "metadata has no root package"}
	}
	g := &Graph{Root: *raw.Resolve.Root, Packages: raw.Packages}
	if _, err := g.RootPackage(); err != nil {
		return nil, err
	}
	return g, nil
}
