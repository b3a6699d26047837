package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jward/docdex"
)

func newDetectCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "detect FILE...",
		Short: "Print the format revision of each document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]CLIDetection, 0, len(args))
			for _, path := range args {
				doc, err := c.loader.ReadDocument(path)
				if err != nil {
					return c.outputError("detect", err)
				}
				results = append(results, CLIDetection{
					Path:      path,
					Revision:  doc.Revision,
					Supported: docdex.IsSupported(doc.Revision),
				})
			}
			return c.outputResult(CLIResult{Command: "detect", Results: results})
		},
	}
}

func newRevisionsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "revisions",
		Short: "List the format revisions this build supports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.outputResult(CLIResult{
				Command: "revisions",
				Results: CLIRevisions{Revisions: docdex.SupportedRevisions()},
			})
		},
	}
}

func newSchemaCmd(c *cli) *cobra.Command {
	var flagRevision string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the tables queries can read",
		Long:  "Print the query schema of one revision, or of every supported revision. Each table exists in the main schema for the current document and in the baseline schema for the baseline document.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			revs := docdex.SupportedRevisions()
			if flagRevision != "" {
				n, err := strconv.ParseUint(flagRevision, 10, 32)
				if err != nil {
					return c.outputError("schema", fmt.Errorf("invalid revision %q: must be a non-negative integer", flagRevision))
				}
				revs = []uint32{uint32(n)}
			}

			results := make([]CLISchema, 0, len(revs))
			for _, rev := range revs {
				s, err := docdex.SchemaFor(rev)
				if err != nil {
					return c.outputError("schema", err)
				}
				results = append(results, schemaToCLI(s))
			}
			return c.outputResult(CLIResult{Command: "schema", Results: results})
		},
	}
	cmd.Flags().StringVar(&flagRevision, "revision", "", "revision to describe (default: all)")
	return cmd
}

func newResolveCmd(c *cli) *cobra.Command {
	var flagMetadata string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Pick the package a documentation export was generated for",
		Long:  "Read a dependency graph and print the package matching the root package's single dependency, by path or by version requirement.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, err := resolvePackage(flagMetadata)
			if err != nil {
				return c.outputError("resolve", err)
			}
			return c.outputResult(CLIResult{Command: "resolve", Results: pkg})
		},
	}
	cmd.Flags().StringVar(&flagMetadata, "metadata", "", "dependency graph JSON file")
	_ = cmd.MarkFlagRequired("metadata")
	return cmd
}

// resolvePackage reads and resolves a dependency graph file. An empty path
// resolves to no package.
func resolvePackage(path string) (*docdex.Package, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}
	g, err := docdex.ParseGraph(data)
	if err != nil {
		return nil, err
	}
	return docdex.ResolvePackage(g)
}
