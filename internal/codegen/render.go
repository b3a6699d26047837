// Package codegen renders the per-revision dispatch sources from templates
// and a list of supported revisions.
package codegen

import (
	"bytes"
	"fmt"
	"math"
	"slices"
	"strconv"
	"text/template"
)

// funcs are the list filters templates use to split revisions at a
// cutoff. Both keep the input order.
var funcs = template.FuncMap{
	"upto":  upto,
	"after": after,
}

// upto returns the revisions in list that are at most n.
func upto(n int, list []int) []int {
	out := make([]int, 0, len(list))
	for _, v := range list {
		if v <= n {
			out = append(out, v)
		}
	}
	return out
}

// after returns the revisions in list that are greater than n.
func after(n int, list []int) []int {
	out := make([]int, 0, len(list))
	for _, v := range list {
		if v > n {
			out = append(out, v)
		}
	}
	return out
}

// Render executes the template text over revisions. The template sees
// one field, .Versions; any other field is an error.
func Render(name, text string, revisions []int) ([]byte, error) {
	tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, &TemplateError{Template: name, Err: err}
	}
	data := map[string]any{"Versions": slices.Clone(revisions)}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, &TemplateError{Template: name, Err: err}
	}
	return buf.Bytes(), nil
}

// ParseRevisions parses revision arguments. They must be decimal
// integers, strictly ascending.
func ParseRevisions(args []string) ([]int, error) {
	revs := make([]int, 0, len(args))
	for _, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid version %q: %w", arg, err)
		}
		revs = append(revs, v)
	}
	if err := ValidateRevisions(revs); err != nil {
		return nil, err
	}
	return revs, nil
}

// ValidateRevisions checks that revs is non-empty, strictly ascending and
// within the range of a revision tag.
func ValidateRevisions(revs []int) error {
	if len(revs) == 0 {
		return fmt.Errorf("at least one version is required")
	}
	for i, v := range revs {
		if v < 0 || int64(v) > math.MaxUint32 {
			return fmt.Errorf("version %d is out of range", v)
		}
		if i > 0 && v <= revs[i-1] {
			return fmt.Errorf("versions must be ascending and unique: %d follows %d", v, revs[i-1])
		}
	}
	return nil
}
