package docdex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanQuery_Parameters(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"none", "SELECT 1", nil},
		{"prefixes", "SELECT :a, @b, $c", []string{"a", "b", "c"}},
		{"first use order, deduplicated", "SELECT :z WHERE :a = :z", []string{"z", "a"}},
		{"same prefix repeated", "SELECT $n, $n", []string{"n"}},
		{"inside string", "SELECT ':not' || :yes", []string{"yes"}},
		{"escaped quote", "SELECT 'it''s :not' , :yes", []string{"yes"}},
		{"quoted identifier", `SELECT "col:not" FROM t`, nil},
		{"bracketed identifier", "SELECT [a:b] FROM t", nil},
		{"backtick identifier", "SELECT `x:y` FROM t", nil},
		{"line comment", "SELECT 1 -- :not\n, :yes", []string{"yes"}},
		{"block comment", "SELECT /* :not ? ; */ :yes", []string{"yes"}},
		{"trailing semicolon", "SELECT :a;  -- done\n", []string{"a"}},
		{"with", "WITH x AS (SELECT :v) SELECT * FROM x", []string{"v"}},
		{"values", "values (:v)", []string{"v"}},
		{"leading comment", "-- header\nSELECT 1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := scanQuery(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScanQuery_Rejects(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		query  string
		line   int
		column int
	}{
		{"insert", "INSERT INTO t VALUES (1)", 1, 1},
		{"pragma", "  PRAGMA query_only = OFF", 1, 3},
		{"attach", "ATTACH ':memory:' AS x", 1, 1},
		{"leading paren", "(SELECT 1)", 1, 1},
		{"second statement", "SELECT 1;\nDROP TABLE item", 1, 9},
		{"positional", "SELECT\n  ?", 2, 3},
		{"unterminated string", "SELECT 'abc", 1, 8},
		{"unterminated comment", "SELECT 1 /* abc", 1, 10},
		{"unterminated bracket", "SELECT [abc", 1, 8},
		{"only semicolon", ";", 1, 1},
		{"mixed prefixes", "SELECT :n, $n", 1, 12},
		{"mixed prefixes later line", "SELECT @n\nWHERE :n = 1", 2, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := scanQuery(tt.query)
			var qce *QueryCompilationError
			require.ErrorAs(t, err, &qce)
			assert.Equal(t, tt.line, qce.Line, qce.Reason)
			assert.Equal(t, tt.column, qce.Column, qce.Reason)
		})
	}
}

func TestPosition(t *testing.T) {
	t.Parallel()
	src := "ab\ncdé\nf"
	line, col := position(src, 0)
	assert.Equal(t, [2]int{1, 1}, [2]int{line, col})
	line, col = position(src, 3)
	assert.Equal(t, [2]int{2, 1}, [2]int{line, col})
	// é is two bytes but one column.
	line, col = position(src, len("ab\ncdé"))
	assert.Equal(t, [2]int{2, 4}, [2]int{line, col})
	line, col = position(src, 100)
	assert.Equal(t, [2]int{3, 2}, [2]int{line, col})
}

func TestSQLiteErrorPosition(t *testing.T) {
	t.Parallel()
	q := "SELECT a\nFROM main.widgets"
	line, col := sqliteErrorPosition(q, "no such table: main.widgets")
	assert.Equal(t, [2]int{2, 6}, [2]int{line, col})

	line, col = sqliteErrorPosition(q, `near "FROM": syntax error`)
	assert.Equal(t, [2]int{2, 1}, [2]int{line, col})

	line, col = sqliteErrorPosition("SELECT (1", "incomplete input")
	assert.Equal(t, [2]int{1, 10}, [2]int{line, col})

	line, col = sqliteErrorPosition(q, "something else entirely")
	assert.Zero(t, line)
	assert.Zero(t, col)
}
