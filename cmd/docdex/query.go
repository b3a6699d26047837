package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/docdex"
)

func newQueryCmd(c *cli) *cobra.Command {
	var (
		flagBaseline  string
		flagQuery     string
		flagQueryFile string
		flagVars      []string
		flagMetadata  string
	)
	cmd := &cobra.Command{
		Use:   "query CURRENT",
		Short: "Run a SQL query over a document",
		Long: `Run one read-only SQL statement over a document and, with --baseline, a
second document of the same revision. Unqualified tables read the current
document; baseline.<table> reads the baseline. Named parameters (:name,
@name or $name) take their values from --var name=value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := readQuery(flagQuery, flagQueryFile)
			if err != nil {
				return c.outputError("query", err)
			}
			vars, err := parseVars(flagVars)
			if err != nil {
				return c.outputError("query", err)
			}

			a, err := c.openAdapter(args[0], flagBaseline, flagMetadata)
			if err != nil {
				return c.outputError("query", err)
			}
			defer a.Close()

			rows, err := a.RunQuery(cmd.Context(), query, vars)
			if err != nil {
				return c.outputError("query", err)
			}
			columns := rows.Columns()
			all, err := docdex.Collect(rows)
			if err != nil {
				return c.outputError("query", err)
			}
			if all == nil {
				all = []docdex.Row{}
			}
			return c.outputResult(CLIResult{
				Command: "query",
				Results: CLIQueryResult{Revision: a.Version(), Columns: columns, Rows: all},
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&flagBaseline, "baseline", "", "baseline document of the same revision")
	f.StringVarP(&flagQuery, "query", "q", "", "SQL query text")
	f.StringVar(&flagQueryFile, "query-file", "", "file holding the SQL query")
	f.StringArrayVar(&flagVars, "var", nil, "query variable as name=value (repeatable)")
	f.StringVar(&flagMetadata, "metadata", "", "dependency graph JSON file identifying the current document's package")
	return cmd
}

// openAdapter loads the current document, and the baseline when given,
// into a new adapter.
func (c *cli) openAdapter(currentPath, baselinePath, metadataPath string) (*docdex.Adapter, error) {
	pkg, err := resolvePackage(metadataPath)
	if err != nil {
		return nil, err
	}
	current, err := c.loader.Load(currentPath, pkg)
	if err != nil {
		return nil, err
	}
	var baseline *docdex.Index
	if baselinePath != "" {
		s, err := c.loader.Load(baselinePath, nil)
		if err != nil {
			return nil, err
		}
		baseline = docdex.NewIndex(s)
	}
	return c.loader.NewAdapter(docdex.NewIndex(current), baseline)
}

func readQuery(text, file string) (string, error) {
	switch {
	case text != "" && file != "":
		return "", errors.New("use either --query or --query-file, not both")
	case text != "":
		return text, nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading query file: %w", err)
		}
		return string(data), nil
	}
	return "", errors.New("a query is required: pass --query or --query-file")
}

// parseVars parses name=value pairs. Values that read as integers, floats
// or booleans take that type; "null" is NULL; anything else is a string.
// Quote a value ('"42"') to force a string.
func parseVars(pairs []string) (map[string]any, error) {
	vars := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q: must be name=value", pair)
		}
		if _, dup := vars[name]; dup {
			return nil, fmt.Errorf("variable %q given twice", name)
		}
		vars[name] = varValue(value)
	}
	return vars, nil
}

// varValue infers a variable's type from its text: "quoted" is a string,
// null is nil, then integer, finite float, and the words true and false.
// Anything else is a string.
func varValue(s string) any {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	if s == "null" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}
