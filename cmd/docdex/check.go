package main

import (
	"github.com/spf13/cobra"

	"github.com/jward/docdex/checks"
	"github.com/jward/docdex/internal/check"
)

func newCheckCmd(c *cli) *cobra.Command {
	var (
		flagChecks   []string
		flagMetadata string
	)
	cmd := &cobra.Command{
		Use:   "check CURRENT BASELINE",
		Short: "Run check definitions over a document and its baseline",
		Long:  "Run every check definition matched by --checks (or the config's checks patterns, or the built-in checks when neither is set) over two documents of the same revision and print one finding per result row.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns := flagChecks
			if len(patterns) == 0 {
				patterns = c.cfg.Checks
			}
			var (
				defs []check.Definition
				err  error
				opts = []check.Option{check.WithLogger(c.logger)}
			)
			if len(patterns) == 0 {
				c.logger.Debug("no checks configured; using built-in checks")
				defs, err = check.LoadDefinitionsFS(checks.FS, []string{checks.Pattern})
				opts = append(opts, check.WithScriptsFS(checks.FS))
			} else {
				defs, err = check.LoadDefinitions(patterns)
				opts = append(opts, check.WithScriptsDir(c.cfg.Scripts))
			}
			if err != nil {
				return c.outputError("check", err)
			}

			a, err := c.openAdapter(args[0], args[1], flagMetadata)
			if err != nil {
				return c.outputError("check", err)
			}
			defer a.Close()

			runner := check.NewRunner(opts...)
			findings, err := runner.Run(cmd.Context(), a, defs)
			if err != nil {
				return c.outputError("check", err)
			}
			if findings == nil {
				findings = []check.Finding{}
			}
			return c.outputResult(CLIResult{
				Command: "check",
				Results: CLICheckResult{Revision: a.Version(), Checks: len(defs), Findings: findings},
			})
		},
	}
	cmd.Flags().StringArrayVar(&flagChecks, "checks", nil, "check file glob, ** allowed (repeatable)")
	cmd.Flags().StringVar(&flagMetadata, "metadata", "", "dependency graph JSON file identifying the current document's package")
	return cmd
}
