package codegen

import (
	"fmt"
	"strings"
)

// TemplateError is a failure to read, parse or execute a template.
type TemplateError struct {
	Template string
	Err      error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %v", e.Template, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// SyntaxError is rendered Go that does not parse. Line and Column are
// 1-based; Column counts bytes.
type SyntaxError struct {
	Output string
	Line   int
	Column int
	Near   string
}

func (e *SyntaxError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("%s:%d:%d: syntax error", e.Output, e.Line, e.Column)
	}
	return fmt.Sprintf("%s:%d:%d: syntax error near %q", e.Output, e.Line, e.Column, e.Near)
}

// CoverageError is rendered arm source that does not define exactly one
// arm type per revision.
type CoverageError struct {
	Output  string
	Missing []int
	Extra   []string
}

func (e *CoverageError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing arms for %v", e.Missing))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, "unexpected "+strings.Join(e.Extra, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Output, strings.Join(parts, "; "))
}
