package codegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/imports"
)

// Pair maps a template to the file it renders. Arms marks outputs that
// must declare one arm type per revision.
type Pair struct {
	Template string
	Output   string
	Arms     bool
}

// DefaultPairs are the templates of the docdex root package, relative to
// the module root.
var DefaultPairs = []Pair{
	{Template: "template/arms.go.tmpl", Output: "arms_gen.go", Arms: true},
	{Template: "template/dispatch.go.tmpl", Output: "dispatch_gen.go"},
	{Template: "template/arms_test.go.tmpl", Output: "arms_gen_test.go"},
}

// Option configures Generate.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger for generation records.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Generate renders every pair under root for revisions. Nothing is written
// until every output has rendered, parsed and formatted; outputs are then
// staged next to their targets and renamed into place. If a rename fails,
// the outputs already replaced get their previous contents back.
func Generate(ctx context.Context, root string, revisions []int, pairs []Pair, opts ...Option) error {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := ValidateRevisions(revisions); err != nil {
		return err
	}

	rendered := make([][]byte, len(pairs))
	for i, p := range pairs {
		src, err := materialize(ctx, root, p, revisions)
		if err != nil {
			return err
		}
		rendered[i] = src
		o.logger.Debug("rendered", "template", p.Template, "output", p.Output, "bytes", len(src))
	}

	if err := writeAll(root, pairs, rendered); err != nil {
		return err
	}
	o.logger.Info("generated", "outputs", len(pairs), "versions", fmt.Sprint(revisions))
	return nil
}

func materialize(ctx context.Context, root string, p Pair, revisions []int) ([]byte, error) {
	text, err := os.ReadFile(filepath.Join(root, p.Template))
	if err != nil {
		return nil, &TemplateError{Template: p.Template, Err: err}
	}
	src, err := Render(p.Template, string(text), revisions)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(p.Output, ".go") {
		return src, nil
	}
	if err := verify(ctx, p.Output, src, revisions, p.Arms); err != nil {
		return nil, err
	}
	formatted, err := imports.Process(p.Output, src, &imports.Options{
		FormatOnly: true,
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
	})
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", p.Output, err)
	}
	return formatted, nil
}

// writeAll stages every output, then renames the staged files over their
// targets.
func writeAll(root string, pairs []Pair, rendered [][]byte) error {
	staged := make([]string, 0, len(pairs))
	defer func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}()
	for i, p := range pairs {
		tmp, err := stage(filepath.Join(root, p.Output), rendered[i])
		if err != nil {
			return fmt.Errorf("stage %s: %w", p.Output, err)
		}
		staged = append(staged, tmp)
	}

	var done []backup
	for i, p := range pairs {
		target := filepath.Join(root, p.Output)
		prev, err := os.ReadFile(target)
		existed := err == nil
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return errors.Join(fmt.Errorf("read %s: %w", p.Output, err), restore(done))
		}
		if err := os.Rename(staged[i], target); err != nil {
			return errors.Join(fmt.Errorf("write %s: %w", p.Output, err), restore(done))
		}
		done = append(done, backup{path: target, data: prev, existed: existed})
	}
	return nil
}

// backup is the state of an output before it was replaced.
type backup struct {
	path    string
	data    []byte
	existed bool
}

func restore(done []backup) error {
	var errs []error
	for _, b := range done {
		if !b.existed {
			if err := os.Remove(b.path); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if err := os.WriteFile(b.path, b.data, 0644); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func stage(target string, data []byte) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	if err := os.Chmod(f.Name(), 0644); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
