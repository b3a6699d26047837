package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"
)

// QueryFunc runs a read-only query and returns its rows as maps.
type QueryFunc func(ctx context.Context, query string, vars map[string]any) ([]map[string]any, error)

// Runtime embeds a Risor VM and evaluates the message expressions of
// checks, with result row columns exposed as globals.
type Runtime struct {
	scriptsDir string
	fsys       fs.FS
	logger     *slog.Logger
	query      QueryFunc
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS configures the Runtime to load scripts from an fs.FS
// instead of from disk. Import statements then resolve inside fsys.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithLogger sets the logger behind the scripts' log object.
func WithLogger(l *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.logger = l
	}
}

// WithQuery exposes fn to scripts as query(sql, vars).
func WithQuery(fn QueryFunc) RuntimeOption {
	return func(r *Runtime) {
		r.query = fn
	}
}

// NewRuntime creates a Runtime. scriptsDir, when not empty, is where
// script paths and import statements resolve.
func NewRuntime(scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		scriptsDir: scriptsDir,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunScript loads and evaluates a Risor script with the standard globals
// plus any extra globals provided by the caller.
func (r *Runtime) RunScript(ctx context.Context, scriptPath string, extraGlobals map[string]any) (object.Object, error) {
	src, err := r.LoadScript(scriptPath)
	if err != nil {
		return nil, err
	}
	return r.eval(ctx, src, scriptPath, extraGlobals)
}

// RunSource evaluates Risor source code directly.
func (r *Runtime) RunSource(ctx context.Context, source string, extraGlobals map[string]any) (object.Object, error) {
	return r.eval(ctx, source, "<inline>", extraGlobals)
}

// reservedGlobals are the globals a result column cannot replace. Such
// columns are still reachable through row.
var reservedGlobals = map[string]bool{"log": true, "query": true, "row": true}

// Render evaluates source with one result row bound and returns the
// result as text. Every column is a global of the same name unless the
// name is not an identifier or is reserved (log, query, row); the whole
// row is also available as the map row.
func (r *Runtime) Render(ctx context.Context, source string, names []string, values []any) (string, error) {
	extra, err := rowGlobals(names, values)
	if err != nil {
		return "", err
	}
	result, err := r.RunSource(ctx, source, extra)
	if err != nil {
		return "", err
	}
	return objectText(result), nil
}

// RenderScript is Render with the source loaded from the script at path.
func (r *Runtime) RenderScript(ctx context.Context, path string, names []string, values []any) (string, error) {
	extra, err := rowGlobals(names, values)
	if err != nil {
		return "", err
	}
	result, err := r.RunScript(ctx, path, extra)
	if err != nil {
		return "", err
	}
	return objectText(result), nil
}

func rowGlobals(names []string, values []any) (map[string]any, error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("runtime: %d column names for %d values", len(names), len(values))
	}
	extra := make(map[string]any, len(names)+1)
	row := make(map[string]object.Object, len(names))
	for i, name := range names {
		obj := toObject(values[i])
		row[name] = obj
		if isIdentifier(name) && !reservedGlobals[name] {
			extra[name] = obj
		}
	}
	extra["row"] = object.NewMap(row)
	return extra, nil
}

func (r *Runtime) eval(ctx context.Context, source, label string, extraGlobals map[string]any) (object.Object, error) {
	globals := r.buildGlobals(extraGlobals)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}

	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	result, err := risor.Eval(ctx, source, opts...)
	if err != nil {
		return nil, fmt.Errorf("runtime: script %s: %w", label, err)
	}
	return result, nil
}

// buildImporter returns nil if neither fs.FS nor scriptsDir is configured.
func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if r.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// LoadScript reads a .risor file and returns its source code.
func (r *Runtime) LoadScript(path string) (string, error) {
	if r.fsys != nil {
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("runtime: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(r.scriptsDir, path)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("runtime: loading script %s: %w", fullPath, err)
	}
	return string(data), nil
}

func (r *Runtime) buildGlobals(extra map[string]any) map[string]any {
	globals := map[string]any{
		"log": mustProxy(&logObject{logger: r.logger}),
	}
	if r.query != nil {
		globals["query"] = makeQueryFn(r.query)
	}
	for k, v := range extra {
		globals[k] = v
	}
	return globals
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
