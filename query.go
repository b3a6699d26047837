package docdex

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"iter"
	"regexp"
	"slices"
	"strings"

	"github.com/jward/docdex/internal/metrics"
)

// RunQuery compiles query against the adapter's schema, binds vars to its
// named parameters and returns the result rows, produced one at a time as
// the caller pulls them. Every parameter needs a variable and every
// variable must be used. Variables may be nil, strings, booleans, integers,
// floats or byte slices.
//
// Query problems are *QueryCompilationError; variable problems and
// evaluation faults are *QueryRuntimeError.
func (a *Adapter) RunQuery(ctx context.Context, query string, vars map[string]any) (*Rows, error) {
	if a.closed {
		return nil, ErrAdapterClosed
	}
	rows, err := a.runQuery(ctx, query, vars)
	switch err.(type) {
	case nil:
		a.metrics.Query(a.Version(), metrics.OutcomeOK)
	case *QueryCompilationError:
		a.metrics.Query(a.Version(), metrics.OutcomeCompileError)
	default:
		a.metrics.Query(a.Version(), metrics.OutcomeRuntimeError)
	}
	if err != nil {
		a.logger.Debug("query rejected", "revision", a.Version(), "error", err)
		return nil, err
	}
	return rows, nil
}

func (a *Adapter) runQuery(ctx context.Context, query string, vars map[string]any) (*Rows, error) {
	params, err := scanQuery(query)
	if err != nil {
		return nil, err
	}

	stmt, err := a.impl.Store().Prepare(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &QueryRuntimeError{Reason: "prepare", Err: ctx.Err()}
		}
		line, col := sqliteErrorPosition(query, err.Error())
		return nil, &QueryCompilationError{Query: query, Line: line, Column: col, Reason: err.Error(), Err: err}
	}

	args, err := bindVariables(params, vars)
	if err != nil {
		stmt.Close()
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		stmt.Close()
		return nil, &QueryRuntimeError{Reason: "evaluate", Err: err}
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		stmt.Close()
		return nil, &QueryRuntimeError{Reason: "read columns", Err: err}
	}
	if dup := firstDuplicate(cols); dup != "" {
		rows.Close()
		stmt.Close()
		return nil, &QueryCompilationError{Query: query, Reason: fmt.Sprintf("duplicate output column %q; alias it", dup)}
	}

	r := &Rows{adapter: a, stmt: stmt, rows: rows, columns: cols}
	a.open[r] = struct{}{}
	return r, nil
}

func bindVariables(params []string, vars map[string]any) ([]any, error) {
	wanted := make(map[string]bool, len(params))
	args := make([]any, 0, len(params))
	for _, name := range params {
		wanted[name] = true
		v, ok := vars[name]
		if !ok {
			return nil, &QueryRuntimeError{Reason: fmt.Sprintf("missing variable %q", name)}
		}
		if !bindable(v) {
			return nil, &QueryRuntimeError{Reason: fmt.Sprintf("variable %q has unsupported type %T", name, v)}
		}
		args = append(args, sql.Named(name, v))
	}
	var unused []string
	for name := range vars {
		if !wanted[name] {
			unused = append(unused, name)
		}
	}
	if len(unused) > 0 {
		slices.Sort(unused)
		return nil, &QueryRuntimeError{Reason: "unused variables: " + strings.Join(unused, ", ")}
	}
	return args, nil
}

func bindable(v any) bool {
	switch v.(type) {
	case nil, string, bool, []byte,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32,
		float32, float64:
		return true
	}
	return false
}

func firstDuplicate(cols []string) string {
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if seen[c] {
			return c
		}
		seen[c] = true
	}
	return ""
}

var (
	nearTokenRe   = regexp.MustCompile(`near "((?:[^"]|"")*)"`)
	missingNameRe = regexp.MustCompile(`no such (?:column|table|function): ([^\s:]+)`)
)

// sqliteErrorPosition locates the token a SQLite prepare error names. It
// returns zeros when the message names no token found in the query.
func sqliteErrorPosition(query, msg string) (line, col int) {
	if strings.Contains(msg, "incomplete input") {
		return position(query, len(strings.TrimRight(query, " \t\r\n;")))
	}
	var token string
	if m := nearTokenRe.FindStringSubmatch(msg); m != nil {
		token = strings.ReplaceAll(m[1], `""`, `"`)
	} else if m := missingNameRe.FindStringSubmatch(msg); m != nil {
		token = m[1]
	}
	if token == "" {
		return 0, 0
	}
	if i := strings.Index(query, token); i >= 0 {
		return position(query, i)
	}
	if dot := strings.LastIndexByte(token, '.'); dot >= 0 {
		if i := strings.Index(query, token[dot+1:]); i >= 0 {
			return position(query, i)
		}
	}
	return 0, 0
}

// Rows is a lazily evaluated query result. Each Next steps the query once.
// Rows cannot be restarted; once exhausted or closed, run the query again
// for fresh results.
type Rows struct {
	adapter *Adapter
	stmt    *sql.Stmt
	rows    *sql.Rows
	columns []string

	cur  Row
	err  error
	done bool
}

// Columns returns the output column names in order.
func (r *Rows) Columns() []string { return slices.Clone(r.columns) }

// Next advances to the next row. It returns false when the rows are
// exhausted, closed or failed; check Err to tell them apart.
func (r *Rows) Next() bool {
	if r.done {
		return false
	}
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			r.err = &QueryRuntimeError{Reason: "evaluate", Err: err}
		}
		r.Close()
		return false
	}
	values := make([]any, len(r.columns))
	ptrs := make([]any, len(values))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		r.err = &QueryRuntimeError{Reason: "read row", Err: err}
		r.Close()
		return false
	}
	for i, v := range values {
		if b, ok := v.([]byte); ok {
			values[i] = string(b)
		}
	}
	r.cur = Row{names: r.columns, values: values}
	r.adapter.metrics.Row()
	return true
}

// Row returns the row Next advanced to.
func (r *Rows) Row() Row { return r.cur }

// Err returns the error that ended iteration, if any.
func (r *Rows) Err() error { return r.err }

// Close releases the underlying statement. It is safe to call more than
// once and after the rows are exhausted.
func (r *Rows) Close() error {
	if r.done {
		return nil
	}
	r.done = true
	delete(r.adapter.open, r)
	err := r.rows.Close()
	if cerr := r.stmt.Close(); err == nil {
		err = cerr
	}
	return err
}

func (r *Rows) abort(err error) {
	if r.done {
		return
	}
	r.Close()
	r.err = err
}

// All returns a one-shot iterator over the remaining rows. An evaluation
// error is yielded once, last. Breaking out of the loop closes the rows.
func (r *Rows) All() iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		defer r.Close()
		for r.Next() {
			if !yield(r.Row(), nil) {
				return
			}
		}
		if r.err != nil {
			yield(Row{}, r.err)
		}
	}
}

// Collect drains rows into a slice and closes them.
func Collect(rows *Rows) ([]Row, error) {
	var out []Row
	for row, err := range rows.All() {
		if err != nil {
			return out, err
		}
		out = append(out, row)
	}
	return out, nil
}

// Row is one result row: column names and values in output order.
// Text comes back as string, integers as int64, reals as float64,
// BOOLEAN columns as bool and NULL as nil.
type Row struct {
	names  []string
	values []any
}

// Len returns the number of columns.
func (r Row) Len() int { return len(r.names) }

// Names returns the column names in order.
func (r Row) Names() []string { return slices.Clone(r.names) }

// Values returns the values in column order.
func (r Row) Values() []any { return slices.Clone(r.values) }

// Get returns the value of the named column.
func (r Row) Get(name string) (any, bool) {
	i := slices.Index(r.names, name)
	if i < 0 {
		return nil, false
	}
	return r.values[i], true
}

// Map returns the row as a map, losing column order.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.names))
	for i, n := range r.names {
		m[n] = r.values[i]
	}
	return m
}

// MarshalJSON encodes the row as an object whose keys keep column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", n, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
