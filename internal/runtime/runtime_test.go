package runtime

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/risor-io/risor/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Render ---

func TestRender_ColumnsAsGlobals(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("")

	got, err := rt.Render(context.Background(),
		`'{name} ({kind}) was removed from {path}'`,
		[]string{"name", "kind", "path"},
		[]any{"perimeter", "function", "demo::shapes::perimeter"})
	require.NoError(t, err)
	assert.Equal(t, "perimeter (function) was removed from demo::shapes::perimeter", got)
}

func TestRender_RowMap(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("")

	// "old version" is no identifier, so only the row map carries it.
	got, err := rt.Render(context.Background(),
		`row["old version"] + " -> " + row["new"]`,
		[]string{"old version", "new"},
		[]any{"1.1.0", "1.2.0"})
	require.NoError(t, err)
	assert.Equal(t, "1.1.0 -> 1.2.0", got)
}

func TestRender_ValueTypes(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("")

	tests := []struct {
		name   string
		source string
		value  any
		want   string
	}{
		{"int", `v + 1`, int64(41), "42"},
		{"float", `v * 2`, 1.25, "2.5"},
		{"bool", `v`, true, "true"},
		{"nil", `v == nil`, nil, "true"},
		{"bytes", `v`, []byte("raw"), "raw"},
		{"nil result", `nil`, "x", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rt.Render(context.Background(), tt.source, []string{"v"}, []any{tt.value})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_Errors(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("")

	_, err := rt.Render(context.Background(), `missing_column + 1`, []string{"name"}, []any{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runtime: script <inline>")

	_, err = rt.Render(context.Background(), `name`, []string{"name", "extra"}, []any{"x"})
	require.Error(t, err)
}

func TestRender_ReservedColumnsStayInRow(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	rt := NewRuntime("",
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
		WithQuery(func(context.Context, string, map[string]any) ([]map[string]any, error) {
			return []map[string]any{{"n": int64(1)}}, nil
		}))

	names := []string{"log", "query", "row", "name"}
	values := []any{"a", "b", "c", "d"}

	got, err := rt.Render(context.Background(), `
log.Info("still the logger")
len(query("SELECT 1 AS n"))
`, names, values)
	require.NoError(t, err)
	assert.Equal(t, "1", got)

	got, err = rt.Render(context.Background(), `row["log"] + row["query"] + row["row"] + name`, names, values)
	require.NoError(t, err)
	assert.Equal(t, "abcd", got)
	assert.Contains(t, buf.String(), "msg=\"still the logger\"")
}

func TestRenderScript(t *testing.T) {
	t.Parallel()
	mapFS := fstest.MapFS{
		"messages/removed.risor": &fstest.MapFile{Data: []byte(`'{name} was removed'`)},
	}
	rt := NewRuntime("", WithRuntimeFS(mapFS))

	got, err := rt.RenderScript(context.Background(), "messages/removed.risor", []string{"name"}, []any{"Widget"})
	require.NoError(t, err)
	assert.Equal(t, "Widget was removed", got)

	_, err = rt.RenderScript(context.Background(), "messages/absent.risor", []string{"name"}, []any{"Widget"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from fs")

	_, err = rt.RenderScript(context.Background(), "messages/removed.risor", []string{"name"}, nil)
	require.Error(t, err)
}

// --- Host functions ---

func TestQueryHostFunction(t *testing.T) {
	t.Parallel()
	var gotQuery string
	var gotVars map[string]any
	rt := NewRuntime("", WithQuery(func(_ context.Context, q string, vars map[string]any) ([]map[string]any, error) {
		gotQuery, gotVars = q, vars
		return []map[string]any{{"n": int64(3)}}, nil
	}))

	got, err := rt.Render(context.Background(),
		`query("SELECT count(*) AS n FROM item WHERE kind = :kind", {"kind": kind})[0]["n"]`,
		[]string{"kind"}, []any{"struct"})
	require.NoError(t, err)
	assert.Equal(t, "3", got)
	assert.Equal(t, "SELECT count(*) AS n FROM item WHERE kind = :kind", gotQuery)
	assert.Equal(t, map[string]any{"kind": "struct"}, gotVars)
}

func TestQueryHostFunction_Errors(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("", WithQuery(func(context.Context, string, map[string]any) ([]map[string]any, error) {
		return nil, errors.New("no such table: nope")
	}))
	ctx := context.Background()

	_, err := rt.RunSource(ctx, `query("SELECT * FROM nope")`, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such table")

	_, err = rt.RunSource(ctx, `query(1)`, nil)
	require.Error(t, err)

	_, err = rt.RunSource(ctx, `query("SELECT 1", "not a map")`, nil)
	require.Error(t, err)
}

func TestQueryHostFunction_AbsentWithoutOption(t *testing.T) {
	t.Parallel()
	_, err := NewRuntime("").RunSource(context.Background(), `query("SELECT 1")`, nil)
	require.Error(t, err)
}

func TestLogObject_WritesThroughSlog(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	rt := NewRuntime("", WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	_, err := rt.RunSource(context.Background(), `log.Warn("careful")`, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "msg=careful")
	assert.Contains(t, buf.String(), "source=script")
}

func TestToObject(t *testing.T) {
	t.Parallel()
	assert.Equal(t, object.Nil, toObject(nil))
	assert.Equal(t, object.NewInt(7), toObject(7))
	assert.Equal(t, object.NewString("a"), toObject([]byte("a")))
	assert.Equal(t, object.NewString("[1 2]"), toObject([]int{1, 2}))
}

func TestFromObject(t *testing.T) {
	t.Parallel()
	assert.Equal(t, int64(2), fromObject(object.NewInt(2)))
	assert.Equal(t, "s", fromObject(object.NewString("s")))
	assert.Equal(t, true, fromObject(object.NewBool(true)))
	assert.Nil(t, fromObject(object.Nil))
}

func TestIsIdentifier(t *testing.T) {
	t.Parallel()
	for s, want := range map[string]bool{
		"name": true, "_x1": true, "Path": true,
		"": false, "1x": false, "old version": false, "a-b": false,
	} {
		assert.Equal(t, want, isIdentifier(s), s)
	}
}

// --- Scripts ---

func TestRunScript_LoadsFile(t *testing.T) {
	dir := t.TempDir()

	scriptPath := filepath.Join(dir, "test.risor")
	require.NoError(t, os.WriteFile(scriptPath, []byte(`1 + 1`), 0644))

	rt := NewRuntime(dir)
	got, err := rt.RunScript(context.Background(), "test.risor", nil)
	require.NoError(t, err)
	assert.Equal(t, object.NewInt(2), got)
}

func TestRunScript_MissingFile(t *testing.T) {
	rt := NewRuntime(t.TempDir())
	_, err := rt.RunScript(context.Background(), "nonexistent.risor", nil)
	require.Error(t, err)
}

func TestLoadScript(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.risor")
	content := `x := 42`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	rt := NewRuntime(dir)
	got, err := rt.LoadScript(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestLoadScript_FromFSFS(t *testing.T) {
	t.Parallel()

	content := `x := 42`
	mapFS := fstest.MapFS{
		"checks/helpers.risor": &fstest.MapFile{Data: []byte(content)},
	}

	rt := NewRuntime("", WithRuntimeFS(mapFS))

	got, err := rt.LoadScript("checks/helpers.risor")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	// Absolute-style path should be resolved within the FS.
	got, err = rt.LoadScript("/checks/helpers.risor")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	_, err = rt.LoadScript("nonexistent.risor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from fs")
}

// --- Importer wiring ---

func TestImport_FSImporter(t *testing.T) {
	// Risor's FSImporter resolves "fmt_helpers" by trying name + ".risor",
	// so the file must be at the flat path "fmt_helpers.risor" in the FS.
	mapFS := fstest.MapFS{
		"fmt_helpers.risor": &fstest.MapFile{Data: []byte(`
func removed(name, path) {
	return name + " is no longer importable as " + path
}
`)},
	}

	rt := NewRuntime("", WithRuntimeFS(mapFS))

	got, err := rt.Render(context.Background(), `
import fmt_helpers
fmt_helpers.removed(name, path)
`, []string{"name", "path"}, []any{"Widget", "demo::Widget"})
	require.NoError(t, err)
	assert.Equal(t, "Widget is no longer importable as demo::Widget", got)
}

func TestImport_LocalImporter(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "math_utils.risor"), []byte(`
func double(x) {
	return x * 2
}
`), 0644))

	rt := NewRuntime(dir)

	script := `
import math_utils

result := math_utils.double(21)
assert(result == 42, 'expected 42, got {result}')
`
	_, err := rt.RunSource(context.Background(), script, nil)
	require.NoError(t, err)
}

func TestImport_GlobalsAvailableInImportedModules(t *testing.T) {
	// The log global is always available, so imported modules compile
	// against it only if the importer knows the global names.
	mapFS := fstest.MapFS{
		"helper.risor": &fstest.MapFile{Data: []byte(`
func do_log(msg) {
	log.Info(msg)
}
`)},
	}

	rt := NewRuntime("", WithRuntimeFS(mapFS), WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))

	script := `
import helper
helper.do_log("test message")
`
	_, err := rt.RunSource(context.Background(), script, nil)
	require.NoError(t, err)
}

func TestNewRuntime_Defaults(t *testing.T) {
	t.Parallel()

	rt := NewRuntime("/some/dir")
	require.NotNil(t, rt)
	assert.Nil(t, rt.fsys)
	assert.Nil(t, rt.query)
	assert.NotNil(t, rt.logger)
	assert.Equal(t, "/some/dir", rt.scriptsDir)
}
