package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/rivaiamin/ddl-compare/schema"
)

var (
	columnPattern  = regexp.MustCompile("^[`\"]?(\\w+)[`\"]?\\s+(.*)$")
	defaultPattern = regexp.MustCompile(`(?i)\bDEFAULT\s+([^\s,]+)`)
)

// parseColumn parses a normalized column clause. It returns nil when the
// clause has no definition after the name.
func parseColumn(line string) *schema.Column {
	m := columnPattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}

	def := m[2]
	col := &schema.Column{
		Name:       m[1],
		Definition: def,
		Type:       columnType(def),
		FullLine:   line,
	}
	if d := defaultPattern.FindStringSubmatch(def); d != nil {
		value := d[1]
		col.Default = &value
	}
	return col
}

// columnType returns the leading type token, with its argument list when
// one follows immediately, lower-cased: "DECIMAL(10, 2) NOT NULL" gives
// "decimal(10, 2)".
func columnType(def string) string {
	end := strings.IndexFunc(def, func(r rune) bool {
		return unicode.IsSpace(r) || r == '('
	})
	switch {
	case end < 0:
		return strings.ToLower(def)
	case end == 0:
		return "unknown"
	}

	if def[end] == '(' {
		if closeIdx := matchClose(def, end+1); closeIdx >= 0 {
			end = closeIdx + 1
		}
	}
	return strings.ToLower(def[:end])
}
