// Package check runs YAML-defined queries against an adapter and renders
// one finding per result row.
package check

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Definition is one check. Query runs with Arguments bound to its named
// parameters; Message is a Risor expression evaluated per result row.
// MessageFile names a .risor script used instead of Message, resolved in
// the runner's scripts directory or filesystem.
type Definition struct {
	ID          string         `yaml:"id" json:"id"`
	Description string         `yaml:"description" json:"description,omitempty"`
	Query       string         `yaml:"query" json:"query"`
	Arguments   map[string]any `yaml:"arguments" json:"arguments,omitempty"`
	Message     string         `yaml:"message" json:"message,omitempty"`
	MessageFile string         `yaml:"message_file" json:"message_file,omitempty"`

	// Source is the file the definition was read from.
	Source string `yaml:"-" json:"source,omitempty"`
}

// Validate reports the first missing required field.
func (d *Definition) Validate() error {
	switch {
	case d.ID == "":
		return errors.New("id is required")
	case d.Query == "":
		return fmt.Errorf("check %s: query is required", d.ID)
	case d.Message == "" && d.MessageFile == "":
		return fmt.Errorf("check %s: message or message_file is required", d.ID)
	case d.Message != "" && d.MessageFile != "":
		return fmt.Errorf("check %s: message and message_file are exclusive", d.ID)
	}
	return nil
}

// LoadDefinitions reads every check file matching patterns. Patterns use
// doublestar syntax, so ** crosses directories. A file may hold several
// YAML documents, one definition each. Files are read in lexical order
// and check ids must be unique across them.
func LoadDefinitions(patterns []string) ([]Definition, error) {
	files, err := globAll(patterns, func(p string) ([]string, error) {
		return doublestar.FilepathGlob(p)
	})
	if err != nil {
		return nil, err
	}
	return loadAll(files, LoadFile)
}

// LoadDefinitionsFS is LoadDefinitions over fsys, with slash-separated
// patterns relative to its root.
func LoadDefinitionsFS(fsys fs.FS, patterns []string) ([]Definition, error) {
	files, err := globAll(patterns, func(p string) ([]string, error) {
		return doublestar.Glob(fsys, p)
	})
	if err != nil {
		return nil, err
	}
	return loadAll(files, func(path string) ([]Definition, error) {
		return LoadFileFS(fsys, path)
	})
}

func globAll(patterns []string, glob func(string) ([]string, error)) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob error: %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no check files match pattern: %s", pattern)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

func loadAll(files []string, load func(string) ([]Definition, error)) ([]Definition, error) {
	var defs []Definition
	seen := make(map[string]string)
	for _, file := range files {
		fileDefs, err := load(file)
		if err != nil {
			return nil, err
		}
		for _, d := range fileDefs {
			if prev, ok := seen[d.ID]; ok {
				return nil, fmt.Errorf("check %s defined in both %s and %s", d.ID, prev, file)
			}
			seen[d.ID] = file
			defs = append(defs, d)
		}
	}
	return defs, nil
}

// LoadFile reads the definitions in one file.
func LoadFile(path string) ([]Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read check file: %w", err)
	}
	defer f.Close()
	return decode(f, filepath.ToSlash(path))
}

// LoadFileFS reads the definitions in one file of fsys.
func LoadFileFS(fsys fs.FS, path string) ([]Definition, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read check file: %w", err)
	}
	defer f.Close()
	return decode(f, path)
}

func decode(r io.Reader, source string) ([]Definition, error) {
	var defs []Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	for {
		var d Definition
		err := dec.Decode(&d)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse check file %s: %w", source, err)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		d.Source = source
		defs = append(defs, d)
	}
	return defs, nil
}
