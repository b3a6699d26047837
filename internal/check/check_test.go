package check

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/docdex"
	"github.com/jward/docdex/checks"
)

var checksGlob = filepath.Join("..", "..", "testdata", "checks", "**", "*.yaml")

func fixture(name string) string {
	return filepath.Join("..", "..", "testdata", "v36", name)
}

// newAdapter pairs two revision 36 fixtures.
func newAdapter(t *testing.T, current, baseline string) *docdex.Adapter {
	t.Helper()
	cur, err := docdex.Load(fixture(current))
	require.NoError(t, err)
	base, err := docdex.Load(fixture(baseline))
	require.NoError(t, err)
	a, err := docdex.NewAdapter(docdex.NewIndex(cur), docdex.NewIndex(base))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func writeCheck(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// =============================================================================
// Definitions
// =============================================================================

func TestLoadDefinitions(t *testing.T) {
	t.Parallel()
	defs, err := LoadDefinitions([]string{checksGlob, checksGlob})
	require.NoError(t, err)

	var ids []string
	for _, d := range defs {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"function_missing", "item_newly_deprecated", "crate_version_unchanged"}, ids,
		"files in lexical order, documents in file order, duplicates matched once")

	fm := defs[0]
	assert.Equal(t, map[string]any{"kind": "function"}, fm.Arguments)
	assert.Contains(t, fm.Query, "baseline.importable_path")
	assert.Equal(t, "'function {name} is no longer importable as {path}'", fm.Message)
	assert.Contains(t, fm.Source, "testdata/checks/function_missing.yaml")
}

func TestLoadDefinitions_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "no match",
			files:   map[string]string{},
			wantErr: "no check files match",
		},
		{
			name: "duplicate id",
			files: map[string]string{
				"a.yaml": "id: same\nquery: SELECT 1\nmessage: x\n",
				"b.yaml": "id: same\nquery: SELECT 2\nmessage: y\n",
			},
			wantErr: "check same defined in both",
		},
		{
			name:    "unknown field",
			files:   map[string]string{"a.yaml": "id: a\nquery: SELECT 1\nmessage: x\nseverity: high\n"},
			wantErr: "failed to parse check file",
		},
		{
			name:    "missing id",
			files:   map[string]string{"a.yaml": "query: SELECT 1\nmessage: x\n"},
			wantErr: "id is required",
		},
		{
			name:    "missing query",
			files:   map[string]string{"a.yaml": "id: a\nmessage: x\n"},
			wantErr: "check a: query is required",
		},
		{
			name:    "missing message",
			files:   map[string]string{"a.yaml": "id: a\nquery: SELECT 1\n"},
			wantErr: "check a: message or message_file is required",
		},
		{
			name:    "both message forms",
			files:   map[string]string{"a.yaml": "id: a\nquery: SELECT 1\nmessage: x\nmessage_file: a.risor\n"},
			wantErr: "check a: message and message_file are exclusive",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			for name, content := range tt.files {
				writeCheck(t, dir, name, content)
			}
			_, err := LoadDefinitions([]string{filepath.Join(dir, "*.yaml")})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadDefinitionsFS(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"b/two.yaml": {Data: []byte("id: two\nquery: SELECT 2\nmessage_file: two.risor\n")},
		"a.yaml":     {Data: []byte("id: one\nquery: SELECT 1\nmessage: \"'one'\"\n")},
		"notes.txt":  {Data: []byte("ignored")},
	}
	defs, err := LoadDefinitionsFS(fsys, []string{"**/*.yaml"})
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "one", defs[0].ID)
	assert.Equal(t, "a.yaml", defs[0].Source)
	assert.Equal(t, "two", defs[1].ID)
	assert.Equal(t, "two.risor", defs[1].MessageFile)
	assert.Equal(t, "b/two.yaml", defs[1].Source)

	_, err = LoadDefinitionsFS(fsys, []string{"*.yml"})
	assert.ErrorContains(t, err, "no check files match")
}

func TestLoadDefinitionsFS_BuiltIn(t *testing.T) {
	t.Parallel()
	defs, err := LoadDefinitionsFS(checks.FS, []string{checks.Pattern})
	require.NoError(t, err)
	var ids []string
	for _, d := range defs {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"item_newly_deprecated", "public_item_missing"}, ids)
}

func TestLoadFile_Missing(t *testing.T) {
	t.Parallel()
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// =============================================================================
// Runner
// =============================================================================

func TestRun_Findings(t *testing.T) {
	t.Parallel()
	defs, err := LoadDefinitions([]string{checksGlob})
	require.NoError(t, err)

	var logs bytes.Buffer
	r := NewRunner(WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	findings, err := r.Run(context.Background(), newAdapter(t, "minimal.json", "baseline.json"), defs)
	require.NoError(t, err)
	require.Len(t, findings, 2)

	assert.Equal(t, "function_missing", findings[0].CheckID)
	assert.Equal(t, "function perimeter is no longer importable as demo::shapes::perimeter", findings[0].Message)
	path, _ := findings[0].Row.Get("path")
	assert.Equal(t, "demo::shapes::perimeter", path)

	assert.Equal(t, "item_newly_deprecated", findings[1].CheckID)
	assert.Equal(t, "Shape is now deprecated: use Widget", findings[1].Message)

	assert.Contains(t, logs.String(), "id=crate_version_unchanged findings=0")
}

func TestRun_SameDocumentTwice(t *testing.T) {
	t.Parallel()
	defs, err := LoadDefinitions([]string{checksGlob})
	require.NoError(t, err)

	findings, err := NewRunner().Run(context.Background(), newAdapter(t, "minimal.json", "minimal.json"), defs)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "crate_version_unchanged", findings[0].CheckID)
	assert.Equal(t, "version 1.2.0 was not bumped", findings[0].Message)
}

func TestRun_MessageCanQuery(t *testing.T) {
	t.Parallel()
	defs := []Definition{{
		ID:      "children",
		Query:   "SELECT id FROM item WHERE kind = 'enum'",
		Message: `len(query("SELECT child_id FROM child WHERE parent_id = :id", {"id": id}))`,
	}}

	findings, err := NewRunner().Run(context.Background(), newAdapter(t, "minimal.json", "baseline.json"), defs)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "2", findings[0].Message)
}

func TestRun_MessageFileFromDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeCheck(t, dir, "messages.risor", "func removed(name) {\n\treturn 'gone: ' + name\n}\n")
	writeCheck(t, dir, "removed.risor", "import messages\n\nmessages.removed(name)\n")

	defs := []Definition{{
		ID:          "removed",
		Query:       "SELECT b.name AS name FROM baseline.item b WHERE b.kind = 'function' AND NOT EXISTS (SELECT 1 FROM main.item c WHERE c.id = b.id)",
		MessageFile: "removed.risor",
	}}
	findings, err := NewRunner(WithScriptsDir(dir)).Run(context.Background(), newAdapter(t, "minimal.json", "baseline.json"), defs)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "gone: perimeter", findings[0].Message)
}

func TestRun_BuiltInChecks(t *testing.T) {
	t.Parallel()
	defs, err := LoadDefinitionsFS(checks.FS, []string{checks.Pattern})
	require.NoError(t, err)

	findings, err := NewRunner(WithScriptsFS(checks.FS)).Run(context.Background(), newAdapter(t, "minimal.json", "baseline.json"), defs)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, "Shape is now deprecated: use Widget", findings[0].Message)
	assert.Equal(t, "public_item_missing", findings[1].CheckID)
	assert.Equal(t, "function perimeter is no longer importable as demo::shapes::perimeter", findings[1].Message)
}

func TestRun_MissingMessageFile(t *testing.T) {
	t.Parallel()
	defs := []Definition{{ID: "lost", Query: "SELECT 1 AS n", MessageFile: "absent.risor"}}
	_, err := NewRunner(WithScriptsFS(fstest.MapFS{})).Run(context.Background(), newAdapter(t, "minimal.json", "baseline.json"), defs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check lost: message")
	assert.Contains(t, err.Error(), "absent.risor")
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()
	a := newAdapter(t, "minimal.json", "baseline.json")
	ctx := context.Background()

	_, err := NewRunner().Run(ctx, a, []Definition{{ID: "bad", Query: "SELECT nope FROM item", Message: "'x'"}})
	var qce *docdex.QueryCompilationError
	require.ErrorAs(t, err, &qce)
	assert.Contains(t, err.Error(), "check bad")

	_, err = NewRunner().Run(ctx, a, []Definition{{ID: "args", Query: "SELECT id FROM item WHERE kind = :kind", Message: "'x'"}})
	var qre *docdex.QueryRuntimeError
	require.ErrorAs(t, err, &qre)

	findings, err := NewRunner().Run(ctx, a, []Definition{
		{ID: "ok", Query: "SELECT 1 AS n", Message: "'one'"},
		{ID: "broken", Query: "SELECT 1 AS n", Message: "undefined_name"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check broken: message")
	assert.Len(t, findings, 1, "findings of earlier checks are returned")

	// A failed message leaves no cursor behind.
	require.NoError(t, a.Close())
}
