// Command docdex-gen renders the per-revision dispatch sources of the
// docdex package for an explicit list of revisions:
//
//	docdex-gen [--root dir] 36 37 39
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/docdex/internal/codegen"
)

var (
	flagRoot    string
	flagVerbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "docdex-gen VERSION...",
	Short:         "Render the docdex revision dispatch from templates",
	Args:          cobra.MinimumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runGenerate,
}

func init() {
	rootCmd.Flags().StringVar(&flagRoot, "root", ".", "module root holding template/ and receiving the outputs")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "log each rendered output")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	revisions, err := codegen.ParseRevisions(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	return codegen.Generate(cmd.Context(), flagRoot, revisions, codegen.DefaultPairs, codegen.WithLogger(logger))
}
