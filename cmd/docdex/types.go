package main

import (
	"github.com/jward/docdex"
	"github.com/jward/docdex/internal/check"
)

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command string `json:"command"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// CLIDetection is the detected revision of one document.
type CLIDetection struct {
	Path      string `json:"path"`
	Revision  uint32 `json:"revision"`
	Supported bool   `json:"supported"`
}

// CLIRevisions lists the compiled revisions.
type CLIRevisions struct {
	Revisions []uint32 `json:"revisions"`
}

// CLISchema is the query schema of one revision.
type CLISchema struct {
	Revision uint32     `json:"revision"`
	Tables   []CLITable `json:"tables"`
}

// CLITable is one queryable table.
type CLITable struct {
	Name    string      `json:"name"`
	Columns []CLIColumn `json:"columns"`
}

// CLIColumn is one table column with its SQLite type.
type CLIColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CLIQueryResult is the output of a query.
type CLIQueryResult struct {
	Revision uint32       `json:"revision"`
	Columns  []string     `json:"columns"`
	Rows     []docdex.Row `json:"rows"`
}

// CLICheckResult is the output of a check run.
type CLICheckResult struct {
	Revision uint32          `json:"revision"`
	Checks   int             `json:"checks"`
	Findings []check.Finding `json:"findings"`
}

func schemaToCLI(s *docdex.Schema) CLISchema {
	out := CLISchema{Revision: s.Revision, Tables: make([]CLITable, 0, len(s.Tables))}
	for _, t := range s.Tables {
		ct := CLITable{Name: t.Name, Columns: make([]CLIColumn, 0, len(t.Columns))}
		for _, col := range t.Columns {
			ct.Columns = append(ct.Columns, CLIColumn{Name: col.Name, Type: col.Type})
		}
		out.Tables = append(out.Tables, ct)
	}
	return out
}
