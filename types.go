package docdex

import (
	"github.com/jward/docdex/internal/metadata"
	"github.com/jward/docdex/internal/metrics"
	"github.com/jward/docdex/internal/store"
)

// Public type aliases for internal types used in the docdex API. These are
// Go type aliases (=), identical to the internal types at compile time.

type Graph = metadata.Graph
type Package = metadata.Package
type Dependency = metadata.Dependency

type MetadataParsingError = metadata.MetadataParsingError
type PackageNotFoundError = metadata.PackageNotFoundError
type AmbiguousPackageError = metadata.AmbiguousPackageError

type Schema = store.Schema
type Table = store.Table
type Column = store.Column

type Metrics = metrics.Metrics

// NewMetrics creates a metrics registry to pass to WithMetrics.
func NewMetrics() *Metrics { return metrics.New() }

// ParseGraph decodes package-metadata JSON into a dependency graph.
func ParseGraph(data []byte) (*Graph, error) { return metadata.ParseGraph(data) }

// ResolvePackage picks the one package matching the graph root's only
// dependency.
func ResolvePackage(g *Graph) (*Package, error) { return metadata.Resolve(g) }
