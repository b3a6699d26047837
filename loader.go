package docdex

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jward/docdex/internal/metrics"
)

// Loader carries the settings shared by document loading and adapter
// construction: logging, metrics and the default target triple.
type Loader struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	target  string
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMetrics records loads, detection fallbacks and queries in m.
func WithMetrics(m *Metrics) Option {
	return func(l *Loader) {
		l.metrics = m
	}
}

// WithTarget sets the target triple passed to revisions whose documents do
// not record one. Later revisions read the triple from the document and
// ignore this setting.
func WithTarget(triple string) Option {
	return func(l *Loader) {
		l.target = triple
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Document is the raw text of one documentation export and its detected
// format revision.
type Document struct {
	Path     string
	Data     []byte
	Revision uint32
}

// ReadDocument reads path and detects its revision.
func (l *Loader) ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DocumentIOError{Path: path, Err: err}
	}
	return l.ParseDocument(path, data)
}

// ParseDocument detects the revision of in-memory document text. path
// labels the document in errors and logs.
func (l *Loader) ParseDocument(path string, data []byte) (*Document, error) {
	rev, err := l.DetectRevision(path, data)
	if err != nil {
		return nil, err
	}
	return &Document{Path: path, Data: data, Revision: rev}, nil
}

// NewStorage parses doc with its revision's implementation. pkg, the
// package the document was resolved to, may be nil.
func (l *Loader) NewStorage(doc *Document, pkg *Package) (*Storage, error) {
	arm, ok := armFor(doc.Revision)
	if !ok {
		return nil, &UnsupportedFormatError{Revision: doc.Revision, Supported: SupportedRevisions()}
	}
	parsed, err := arm.parse(doc.Data)
	if err != nil {
		return nil, &RevisionParsingError{Path: doc.Path, Revision: doc.Revision, Err: err}
	}
	l.metrics.DocumentLoaded(doc.Revision)
	l.logger.Debug("storage built", "path", doc.Path, "revision", doc.Revision, "package", packageID(pkg))
	return &Storage{
		arm:   arm,
		path:  doc.Path,
		inner: arm.newStorage(parsed, pkg),
		pkg:   pkg,
	}, nil
}

// NewAdapter builds a query adapter over current and an optional baseline.
// Both indexes must share a revision.
func (l *Loader) NewAdapter(current, baseline *Index) (*Adapter, error) {
	if baseline != nil && baseline.Version() != current.Version() {
		return nil, &VersionMismatchError{Current: current.Version(), Baseline: baseline.Version()}
	}
	var base any
	if baseline != nil {
		base = baseline.inner
	}
	impl, err := current.arm.newAdapter(current.inner, base, l.target)
	if err != nil {
		return nil, fmt.Errorf("docdex: build adapter: %w", err)
	}
	l.logger.Debug("adapter built",
		"revision", current.Version(),
		"current", current.storage.path,
		"baseline", baselinePath(baseline))
	return &Adapter{
		arm:      current.arm,
		current:  current,
		baseline: baseline,
		impl:     impl,
		logger:   l.logger,
		metrics:  l.metrics,
		open:     make(map[*Rows]struct{}),
	}, nil
}

// Load reads path, detects its revision and parses it into Storage.
func (l *Loader) Load(path string, pkg *Package) (*Storage, error) {
	doc, err := l.ReadDocument(path)
	if err != nil {
		return nil, err
	}
	return l.NewStorage(doc, pkg)
}

// ReadDocument reads path with a default Loader.
func ReadDocument(path string) (*Document, error) {
	return NewLoader().ReadDocument(path)
}

// ParseDocument detects the revision of data with a default Loader.
func ParseDocument(path string, data []byte) (*Document, error) {
	return NewLoader().ParseDocument(path, data)
}

// NewStorage parses doc with a default Loader.
func NewStorage(doc *Document, pkg *Package) (*Storage, error) {
	return NewLoader().NewStorage(doc, pkg)
}

// NewAdapter builds an adapter with a default Loader, which passes no
// target triple.
func NewAdapter(current, baseline *Index) (*Adapter, error) {
	return NewLoader().NewAdapter(current, baseline)
}

// Load reads and parses path with a default Loader and no package.
func Load(path string) (*Storage, error) {
	return NewLoader().Load(path, nil)
}

func packageID(pkg *Package) string {
	if pkg == nil {
		return ""
	}
	return pkg.ID
}

func baselinePath(ix *Index) string {
	if ix == nil {
		return ""
	}
	return ix.storage.path
}
