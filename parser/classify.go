package parser

import (
	"strings"
)

type clauseKind int

const (
	clauseColumn clauseKind = iota
	clauseIndex
	clauseForeignKey
)

type clauseRule struct {
	kind     clauseKind
	keywords []string
}

// Rules are evaluated in order; the first keyword that prefixes a clause
// decides its kind. Anything unmatched is a column.
var clauseRules = []clauseRule{
	{kind: clauseForeignKey, keywords: []string{"FOREIGN KEY"}},
	{kind: clauseIndex, keywords: []string{
		"PRIMARY KEY",
		"KEY",
		"INDEX",
		"UNIQUE",
		"CONSTRAINT",
		"FULLTEXT",
		"SPATIAL",
		"CHECK",
	}},
}

// classify expects a whitespace-normalized clause.
func classify(clause string) clauseKind {
	upper := strings.ToUpper(clause)
	for _, rule := range clauseRules {
		for _, kw := range rule.keywords {
			if hasKeyword(upper, kw) {
				return rule.kind
			}
		}
	}
	return clauseColumn
}

// hasKeyword reports whether upper starts with kw as a whole word, so a
// column named key_id is not mistaken for a KEY clause.
func hasKeyword(upper, kw string) bool {
	if !strings.HasPrefix(upper, kw) {
		return false
	}
	if len(upper) == len(kw) {
		return true
	}
	return !isIdentByte(upper[len(kw)])
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		('0' <= c && c <= '9') ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z')
}
