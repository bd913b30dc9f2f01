// Package parser turns CREATE TABLE declarations into a schema.Schema.
//
// The parser is structural only: it finds table declarations, splits
// their bodies into clauses and classifies each clause as a column, an
// index or a foreign key. It never fails; text without recognizable
// declarations yields an empty schema.
package parser

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/rivaiamin/ddl-compare/schema"
)

// Matches: CREATE TABLE [IF NOT EXISTS] [`db`.]`name` (
var createTablePattern = regexp.MustCompile(
	"(?i)CREATE\\s+TABLE\\s+(?:IF\\s+NOT\\s+EXISTS\\s+)?(?:[`\"]?\\w+[`\"]?\\.)?[`\"]?(\\w+)[`\"]?\\s*\\(",
)

// Parse extracts every table declared in sql.
func Parse(sql string) *schema.Schema {
	cleaned := stripComments(sql)
	s := schema.NewSchema()

	pos := 0
	for pos < len(cleaned) {
		loc := findTable(cleaned, pos)
		if loc == nil {
			break
		}
		start := loc[0]
		name := cleaned[loc[2]:loc[3]]
		bodyStart := loc[1]

		var body string
		end := len(cleaned)
		if closeIdx := matchClose(cleaned, bodyStart); closeIdx >= 0 {
			body = cleaned[bodyStart:closeIdx]
			end = statementEnd(cleaned, closeIdx+1, nextTableStart(cleaned, closeIdx+1))
		} else {
			// Unterminated body: the rest of the input belongs to this table.
			body = cleaned[bodyStart:]
			slog.Debug("unterminated table body", "table", name)
		}

		table := parseTableBody(name, body)
		table.FullDeclaration = strings.TrimSpace(cleaned[start:end])
		s.AddTable(table)
		slog.Debug("parsed table",
			"table", name,
			"columns", len(table.ColumnOrder),
			"indexes", len(table.Indexes),
			"foreign_keys", len(table.ForeignKeys))

		pos = end
	}

	return s
}

// nextTableStart bounds the search for a statement separator so that a
// missing ';' does not swallow the following declaration.
func nextTableStart(text string, from int) int {
	if loc := findTable(text, from); loc != nil {
		return loc[0]
	}
	return len(text)
}

// findTable returns the submatch indexes, relative to text, of the first
// CREATE TABLE marker at or after from that is not inside a quoted span.
// from must not be inside a quoted span itself.
func findTable(text string, from int) []int {
	var sc scanner
	i := from
	for _, loc := range createTablePattern.FindAllStringSubmatchIndex(text[from:], -1) {
		for ; i < from+loc[0]; i++ {
			sc.step(text[i])
		}
		if sc.quote != 0 {
			continue
		}
		for j := range loc {
			if loc[j] >= 0 {
				loc[j] += from
			}
		}
		return loc
	}
	return nil
}

func parseTableBody(name, body string) *schema.Table {
	table := schema.NewTable(name)

	for _, def := range splitDefinitions(body) {
		line := strings.Join(strings.Fields(def), " ")
		if line == "" {
			continue
		}

		switch classify(line) {
		case clauseForeignKey:
			table.ForeignKeys = append(table.ForeignKeys, line)
			// Foreign keys are also listed among indexes for consumers that
			// only look at Indexes.
			table.Indexes = append(table.Indexes, line)
		case clauseIndex:
			table.Indexes = append(table.Indexes, line)
		default:
			if col := parseColumn(line); col != nil {
				table.AddColumn(col)
			}
		}
	}

	return table
}
