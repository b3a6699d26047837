package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jward/docdex"
	"github.com/jward/docdex/internal/config"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// cli holds the state shared by every command of one invocation.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	flagFormat     string
	flagLogLevel   string
	flagConfig     string
	flagTarget     string
	flagMetricsOut string

	cfg     *config.Config
	logger  *slog.Logger
	metrics *docdex.Metrics
	loader  *docdex.Loader

	// errorHandled is set by outputError so run doesn't double-print.
	errorHandled bool
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := &cli{stdout: stdout, stderr: stderr}
	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if merr := c.writeMetrics(); merr != nil && err == nil {
		err = merr
	}
	if err != nil {
		if !c.errorHandled {
			fmt.Fprintf(stderr, "Error: %s\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:               "docdex",
		Short:             "Load versioned documentation exports and query them",
		Long:              "docdex detects the format revision of documentation export files, loads them into a queryable index and runs SQL queries and checks over one document or a document and its baseline.",
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		// No Run: prints help by default.
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.flagFormat, "format", "json", "output format: json|text")
	pf.StringVar(&c.flagLogLevel, "log-level", "warn", "log level: debug|info|warn|error")
	pf.StringVar(&c.flagConfig, "config", "", "config file (default: docdex.yaml in the working directory or a parent)")
	pf.StringVar(&c.flagTarget, "target", "", "target triple for revisions whose documents do not record one")
	pf.StringVar(&c.flagMetricsOut, "metrics-out", "", "write Prometheus metrics to this textfile on exit")

	root.AddCommand(
		newDetectCmd(c),
		newRevisionsCmd(c),
		newSchemaCmd(c),
		newResolveCmd(c),
		newQueryCmd(c),
		newCheckCmd(c),
	)
	return root
}

// setup layers configuration (defaults, project file, --config, then
// explicit flags) and builds the logger, metrics and document loader.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if err := validateFormat(c.flagFormat); err != nil {
		return err
	}

	boot := slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: (&config.Config{LogLevel: c.flagLogLevel}).Level()}))
	cfg, err := config.NewLoader(boot, "").Load(c.flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = c.flagFormat
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = c.flagLogLevel
	}
	if flags.Changed("target") {
		cfg.Target = c.flagTarget
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	c.flagFormat = cfg.Format
	c.cfg = cfg

	c.logger = slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	c.metrics = docdex.NewMetrics()
	c.loader = docdex.NewLoader(
		docdex.WithLogger(c.logger),
		docdex.WithMetrics(c.metrics),
		docdex.WithTarget(cfg.Target),
	)
	return nil
}

func (c *cli) writeMetrics() error {
	if c.flagMetricsOut == "" || c.metrics == nil {
		return nil
	}
	if err := c.metrics.WriteTextfile(c.flagMetricsOut); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	if slices.Contains(validFormats, format) {
		return nil
	}
	return fmt.Errorf("invalid --format %q: must be one of json, text", format)
}
