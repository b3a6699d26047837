package store

import (
	"fmt"
	"strings"
)

// Column is one typed column of a schema table.
type Column struct {
	Name string
	Type string
}

// Table describes one queryable relation. Indexes lists columns that get a
// single-column index.
type Table struct {
	Name    string
	Columns []Column
	Indexes []string
}

// ColumnNames returns the table's column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Schema is the fixed set of tables a document revision exposes to queries.
type Schema struct {
	Revision uint32
	Tables   []Table
}

// Table returns the table with the given name.
func (s *Schema) Table(name string) (Table, bool) {
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// MustTable is Table for names the caller declared itself.
func (s *Schema) MustTable(name string) Table {
	t, ok := s.Table(name)
	if !ok {
		panic(fmt.Sprintf("store: revision %d schema has no table %q", s.Revision, name))
	}
	return t
}

// DDL renders CREATE statements for every table, qualified with the given
// schema name. An empty name renders unqualified statements.
func (s *Schema) DDL(name string) string {
	prefix := ""
	if name != "" {
		prefix = name + "."
	}
	var b strings.Builder
	for _, t := range s.Tables {
		fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s%s (\n", prefix, t.Name)
		for i, c := range t.Columns {
			sep := ","
			if i == len(t.Columns)-1 {
				sep = ""
			}
			fmt.Fprintf(&b, "  %s %s%s\n", c.Name, c.Type, sep)
		}
		b.WriteString(");\n")
		for _, col := range t.Indexes {
			fmt.Fprintf(&b, "CREATE INDEX IF NOT EXISTS %sidx_%s_%s ON %s(%s);\n", prefix, t.Name, col, t.Name, col)
		}
	}
	return b.String()
}

// String renders the unqualified DDL.
func (s *Schema) String() string {
	return s.DDL("")
}
