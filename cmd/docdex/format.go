package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jward/docdex"
)

// outputResult marshals a CLIResult to stdout in the selected format.
func (c *cli) outputResult(result CLIResult) error {
	if c.flagFormat == "text" {
		return outputResultText(c.stdout, result)
	}
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func (c *cli) outputError(command string, err error) error {
	c.errorHandled = true
	if c.flagFormat == "text" {
		fmt.Fprintf(c.stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLIDetection:
		formatDetectionsText(w, v)
	case CLIRevisions:
		for _, rev := range v.Revisions {
			fmt.Fprintln(w, rev)
		}
	case []CLISchema:
		formatSchemasText(w, v)
	case *docdex.Package:
		formatPackageText(w, v)
	case CLIQueryResult:
		formatRowsText(w, v.Columns, v.Rows)
	case CLICheckResult:
		formatFindingsText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

func formatDetectionsText(w io.Writer, ds []CLIDetection) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tREVISION\tSUPPORTED")
	for _, d := range ds {
		fmt.Fprintf(tw, "%s\t%d\t%t\n", d.Path, d.Revision, d.Supported)
	}
	tw.Flush()
}

func formatSchemasText(w io.Writer, schemas []CLISchema) {
	for i, s := range schemas {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "Revision %d\n", s.Revision)
		for _, t := range s.Tables {
			cols := make([]string, len(t.Columns))
			for j, col := range t.Columns {
				cols[j] = col.Name + " " + col.Type
			}
			fmt.Fprintf(w, "  %s(%s)\n", t.Name, strings.Join(cols, ", "))
		}
	}
}

func formatPackageText(w io.Writer, pkg *docdex.Package) {
	fmt.Fprintf(w, "Package: %s\n", pkg.Name)
	if pkg.Version != "" {
		fmt.Fprintf(w, "Version: %s\n", pkg.Version)
	}
	if pkg.ManifestPath != "" {
		fmt.Fprintf(w, "Manifest: %s\n", pkg.ManifestPath)
	}
	fmt.Fprintf(w, "ID: %s\n", pkg.ID)
}

// formatRowsText formats query rows as aligned columns.
func formatRowsText(w io.Writer, columns []string, rows []docdex.Row) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(columns, "\t")))
	for _, row := range rows {
		cells := make([]string, 0, row.Len())
		for _, v := range row.Values() {
			cells = append(cells, cellText(v))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

func formatFindingsText(w io.Writer, r CLICheckResult) {
	for _, f := range r.Findings {
		fmt.Fprintf(w, "%s: %s\n", f.CheckID, f.Message)
	}
	fmt.Fprintf(w, "\n%d findings from %d checks\n", len(r.Findings), r.Checks)
}

func cellText(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}
