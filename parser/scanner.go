package parser

import (
	"strings"
)

// scanner is a small state machine over SQL bytes. It tracks whether a
// quoted span is open (single, double or backtick) and the parenthesis
// depth outside of quoted spans.
type scanner struct {
	quote   byte
	escaped bool
	depth   int
}

// step consumes c and reports whether c was outside any quoted span.
// Opening and closing quote characters report false.
func (s *scanner) step(c byte) bool {
	if s.quote != 0 {
		switch {
		case s.escaped:
			s.escaped = false
		case c == '\\' && s.quote != '`':
			s.escaped = true
		case c == s.quote:
			s.quote = 0
		}
		return false
	}

	switch c {
	case '\'', '"', '`':
		s.quote = c
		return false
	case '(':
		s.depth++
	case ')':
		s.depth--
	}
	return true
}

// matchClose returns the index of the parenthesis closing the one that
// was opened just before start, or -1 if the text ends first.
func matchClose(text string, start int) int {
	sc := scanner{depth: 1}
	for i := start; i < len(text); i++ {
		if sc.step(text[i]) && sc.depth == 0 {
			return i
		}
	}
	return -1
}

// statementEnd returns the index just past the first unquoted ';' at or
// after start, bounded by limit.
func statementEnd(text string, start, limit int) int {
	var sc scanner
	for i := start; i < limit; i++ {
		if sc.step(text[i]) && text[i] == ';' {
			return i + 1
		}
	}
	return limit
}

// splitDefinitions splits a table body on commas at depth zero.
func splitDefinitions(body string) []string {
	var (
		defs  []string
		sc    scanner
		start int
	)
	for i := 0; i < len(body); i++ {
		if sc.step(body[i]) && body[i] == ',' && sc.depth == 0 {
			defs = append(defs, strings.TrimSpace(body[start:i]))
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(body[start:]); rest != "" {
		defs = append(defs, rest)
	}
	return defs
}

// stripComments removes block, double-dash and hash comments that are not
// inside quoted literals. Line comments keep their trailing newline and
// block comments collapse to a single space.
func stripComments(sql string) string {
	var (
		b  strings.Builder
		sc scanner
	)
	b.Grow(len(sql))

	for i := 0; i < len(sql); i++ {
		c := sql[i]
		if sc.quote == 0 {
			switch {
			case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
				end := strings.Index(sql[i+2:], "*/")
				if end < 0 {
					return b.String()
				}
				i += end + 3
				b.WriteByte(' ')
				continue
			case c == '#' || (c == '-' && i+1 < len(sql) && sql[i+1] == '-'):
				end := strings.IndexByte(sql[i:], '\n')
				if end < 0 {
					return b.String()
				}
				i += end - 1
				continue
			}
		}
		sc.step(c)
		b.WriteByte(c)
	}
	return b.String()
}
