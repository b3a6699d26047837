package check

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jward/docdex"
	"github.com/jward/docdex/internal/runtime"
)

// Querier runs queries. *docdex.Adapter satisfies it.
type Querier interface {
	RunQuery(ctx context.Context, query string, vars map[string]any) (*docdex.Rows, error)
}

// Finding is one result row of a check with its rendered message.
type Finding struct {
	CheckID string     `json:"check_id"`
	Message string     `json:"message"`
	Row     docdex.Row `json:"row"`
}

// Runner evaluates check definitions.
type Runner struct {
	logger     *slog.Logger
	scriptsDir string
	scriptsFS  fs.FS
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger for run records and script log calls.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithScriptsDir sets where message files and Risor imports resolve.
func WithScriptsDir(dir string) Option {
	return func(r *Runner) { r.scriptsDir = dir }
}

// WithScriptsFS resolves message files and Risor imports in fsys instead
// of the scripts directory.
func WithScriptsFS(fsys fs.FS) Option {
	return func(r *Runner) { r.scriptsFS = fsys }
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes defs in order against q and returns their findings in
// check order, rows in query order. The first failing check stops the
// run; its error keeps the query error type for errors.As.
func (r *Runner) Run(ctx context.Context, q Querier, defs []Definition) ([]Finding, error) {
	opts := []runtime.RuntimeOption{
		runtime.WithLogger(r.logger),
		runtime.WithQuery(queryFunc(q)),
	}
	if r.scriptsFS != nil {
		opts = append(opts, runtime.WithRuntimeFS(r.scriptsFS))
	}
	rt := runtime.NewRuntime(r.scriptsDir, opts...)

	var findings []Finding
	for _, d := range defs {
		rows, err := q.RunQuery(ctx, d.Query, d.Arguments)
		if err != nil {
			return findings, fmt.Errorf("check %s: %w", d.ID, err)
		}
		n := 0
		for row, err := range rows.All() {
			if err != nil {
				return findings, fmt.Errorf("check %s: %w", d.ID, err)
			}
			msg, err := render(ctx, rt, d, row)
			if err != nil {
				return findings, fmt.Errorf("check %s: message: %w", d.ID, err)
			}
			findings = append(findings, Finding{CheckID: d.ID, Message: msg, Row: row})
			n++
		}
		r.logger.Debug("check finished", "id", d.ID, "findings", n)
	}
	return findings, nil
}

func render(ctx context.Context, rt *runtime.Runtime, d Definition, row docdex.Row) (string, error) {
	if d.MessageFile != "" {
		return rt.RenderScript(ctx, d.MessageFile, row.Names(), row.Values())
	}
	return rt.Render(ctx, d.Message, row.Names(), row.Values())
}

// queryFunc exposes q to message scripts, draining each result.
func queryFunc(q Querier) runtime.QueryFunc {
	return func(ctx context.Context, query string, vars map[string]any) ([]map[string]any, error) {
		rows, err := q.RunQuery(ctx, query, vars)
		if err != nil {
			return nil, err
		}
		all, err := docdex.Collect(rows)
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, len(all))
		for i, row := range all {
			out[i] = row.Map()
		}
		return out, nil
	}
}
