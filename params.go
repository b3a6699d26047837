package docdex

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// readOnlyKeywords are the statement keywords a query may start with.
var readOnlyKeywords = map[string]bool{
	"SELECT": true,
	"WITH":   true,
	"VALUES": true,
}

// scanQuery checks the lexical shape of a query and returns its named
// parameters in first-use order, without prefix. A query is a single
// SELECT, WITH or VALUES statement, optionally followed by one semicolon.
// Parameters are written :name, @name or $name, one prefix per name;
// positional ? parameters are rejected.
func scanQuery(query string) ([]string, error) {
	s := &scanner{src: query}
	var (
		params  []string
		prefix  = make(map[string]byte)
		first   string
		ended   bool
		endedAt int
	)

	for s.pos < len(s.src) {
		c := s.src[s.pos]
		start := s.pos
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f':
			s.pos++
			continue
		case c == '-' && s.peek(1) == '-':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
			continue
		case c == '/' && s.peek(1) == '*':
			end := strings.Index(s.src[s.pos+2:], "*/")
			if end < 0 {
				return nil, s.errorAt(start, "unterminated comment")
			}
			s.pos += end + 4
			continue
		}

		if ended {
			return nil, s.errorAt(endedAt, "only one statement is allowed")
		}
		if first == "" && !isIdentStart(c) {
			return nil, s.errorAt(start, "only SELECT, WITH or VALUES statements are allowed")
		}

		switch {
		case c == '\'' || c == '"' || c == '`':
			if !s.skipQuoted(c, c) {
				return nil, s.errorAt(start, "unterminated quoted text")
			}
		case c == '[':
			if !s.skipQuoted('[', ']') {
				return nil, s.errorAt(start, "unterminated bracketed identifier")
			}
		case c == ';':
			ended, endedAt = true, s.pos
			s.pos++
		case c == '?':
			return nil, s.errorAt(start, "positional parameters are not supported; use :name")
		case (c == ':' || c == '@' || c == '$') && isIdentStart(s.peek(1)):
			s.pos++
			name := s.ident()
			prev, ok := prefix[name]
			switch {
			case !ok:
				prefix[name] = c
				params = append(params, name)
			case prev != c:
				return nil, s.errorAt(start, fmt.Sprintf(
					"parameter %c%s conflicts with %c%s; use one prefix per name", c, name, prev, name))
			}
		case isIdentStart(c):
			word := s.ident()
			if first == "" {
				first = strings.ToUpper(word)
				if !readOnlyKeywords[first] {
					return nil, s.errorAt(start, "only SELECT, WITH or VALUES statements are allowed")
				}
			}
		default:
			s.pos++
		}
	}
	if first == "" {
		return nil, &QueryCompilationError{Query: query, Reason: "empty query"}
	}
	return params, nil
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) peek(n int) byte {
	if s.pos+n < len(s.src) {
		return s.src[s.pos+n]
	}
	return 0
}

// skipQuoted advances past a quoted run. A doubled closing quote inside the
// run is an escaped quote.
func (s *scanner) skipQuoted(open, closer byte) bool {
	s.pos++
	for s.pos < len(s.src) {
		if s.src[s.pos] == closer {
			if open == closer && s.peek(1) == closer {
				s.pos += 2
				continue
			}
			s.pos++
			return true
		}
		s.pos++
	}
	return false
}

func (s *scanner) ident() string {
	start := s.pos
	for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
		s.pos++
	}
	return s.src[start:s.pos]
}

func (s *scanner) errorAt(offset int, reason string) *QueryCompilationError {
	line, col := position(s.src, offset)
	return &QueryCompilationError{Query: s.src, Line: line, Column: col, Reason: reason}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= utf8.RuneSelf
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// position converts a byte offset into a 1-based line and column, counting
// columns in runes.
func position(src string, offset int) (line, col int) {
	if offset > len(src) {
		offset = len(src)
	}
	before := src[:offset]
	line = strings.Count(before, "\n") + 1
	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		before = before[i+1:]
	}
	return line, utf8.RuneCountInString(before) + 1
}
