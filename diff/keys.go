package diff

import (
	"regexp"
	"strings"

	"github.com/rivaiamin/ddl-compare/schema"
)

type KeyKind string

const (
	KeyPrimary  KeyKind = "PRIMARY"
	KeyUnique   KeyKind = "UNIQUE"
	KeyIndex    KeyKind = "INDEX"
	KeyFulltext KeyKind = "FULLTEXT"
	KeySpatial  KeyKind = "SPATIAL"
	KeyForeign  KeyKind = "FOREIGN"
	KeyCheck    KeyKind = "CHECK"
)

// Key is a table-level key or constraint clause. Definition is the
// clause exactly as declared.
type Key struct {
	Kind       KeyKind
	Name       string
	Columns    []string
	Definition string
}

var (
	constraintWord = regexp.MustCompile(`(?i)^CONSTRAINT\b\s*`)
	keyHead        = regexp.MustCompile("(?i)^(PRIMARY\\s+KEY|FOREIGN\\s+KEY|UNIQUE(?:\\s+(?:KEY|INDEX))?|FULLTEXT(?:\\s+(?:KEY|INDEX))?|SPATIAL(?:\\s+(?:KEY|INDEX))?|KEY|INDEX|CHECK)\\b\\s*")
	keyName        = regexp.MustCompile("^([`\"]?\\w+[`\"]?)")
	spaceRun       = regexp.MustCompile(`\s+`)
	defaultUsing   = regexp.MustCompile(`(?i)\s*using\s+btree\b`)
	punctPadding   = regexp.MustCompile(`\s*([(),])\s*`)
	indexType      = regexp.MustCompile(`(?i)^USING\s+\w+\s*`)
	referencesRef  = regexp.MustCompile("(?i)\\bREFERENCES\\s+(?:[`\"]?\\w+[`\"]?\\.)?[`\"]?(\\w+)[`\"]?\\s*\\(([^)]*)\\)")
)

// ParseKey classifies a raw key clause such as
// "UNIQUE KEY uk_email (email)" or
// "CONSTRAINT fk_user FOREIGN KEY (user_id) REFERENCES users(id)".
func ParseKey(def string) Key {
	key := Key{Kind: KeyIndex, Definition: def}
	rest := strings.TrimSpace(def)

	if m := constraintWord.FindString(rest); m != "" {
		rest = rest[len(m):]
		// CONSTRAINT [symbol] PRIMARY KEY ...: the symbol is optional.
		if !keyHead.MatchString(rest) {
			if n := keyName.FindString(rest); n != "" {
				key.Name = unquote(n)
				rest = strings.TrimSpace(rest[len(n):])
			}
		}
	}

	m := keyHead.FindStringSubmatch(rest)
	if m == nil {
		return key
	}
	head := strings.ToUpper(m[1])
	rest = rest[len(m[0]):]

	switch {
	case strings.HasPrefix(head, "PRIMARY"):
		key.Kind = KeyPrimary
		key.Name = "PRIMARY"
	case strings.HasPrefix(head, "FOREIGN"):
		key.Kind = KeyForeign
	case strings.HasPrefix(head, "UNIQUE"):
		key.Kind = KeyUnique
	case strings.HasPrefix(head, "FULLTEXT"):
		key.Kind = KeyFulltext
	case strings.HasPrefix(head, "SPATIAL"):
		key.Kind = KeySpatial
	case head == "CHECK":
		key.Kind = KeyCheck
		return key
	}

	// Index name, unless the column list follows directly. A UNIQUE
	// constraint without an index name takes the constraint name.
	if n := keyName.FindString(rest); n != "" && !strings.EqualFold(n, "USING") {
		if key.Kind != KeyPrimary && key.Kind != KeyForeign {
			key.Name = unquote(n)
		}
		rest = strings.TrimSpace(rest[len(n):])
	}
	if m := indexType.FindString(rest); m != "" {
		rest = rest[len(m):]
	}

	if strings.HasPrefix(rest, "(") {
		if end := closingParen(rest); end > 0 {
			key.Columns = splitColumns(rest[1:end])
		}
	}

	return key
}

// Identity is how the same key is recognized across two schemas: the
// primary key by kind alone, named keys by their name, anonymous keys by
// their normalized text.
func (k Key) Identity() string {
	switch {
	case k.Kind == KeyPrimary:
		return "primary"
	case k.Name == "":
		return string(k.Kind) + ":" + normalizeKey(k.Definition)
	case k.Kind == KeyForeign:
		return "fk:" + strings.ToLower(k.Name)
	case k.Kind == KeyCheck:
		return "check:" + strings.ToLower(k.Name)
	default:
		// index, unique, fulltext and spatial share the index namespace
		return "index:" + strings.ToLower(k.Name)
	}
}

// References returns the table and columns a foreign key points at, with
// identifier quotes removed. ok is false when there is no REFERENCES clause.
func (k Key) References() (table string, columns []string, ok bool) {
	m := referencesRef.FindStringSubmatch(k.Definition)
	if m == nil {
		return "", nil, false
	}
	for _, col := range strings.Split(m[2], ",") {
		if col = unquote(strings.TrimSpace(col)); col != "" {
			columns = append(columns, col)
		}
	}
	return m[1], columns, true
}

// TableKeys returns the indexes and foreign keys of t, deduplicated by
// normalized text, indexes first.
func TableKeys(t *schema.Table) []Key {
	seen := map[string]bool{}
	var keys []Key
	for _, list := range [][]string{t.Indexes, t.ForeignKeys} {
		for _, def := range list {
			norm := normalizeKey(def)
			if seen[norm] {
				continue
			}
			seen[norm] = true
			keys = append(keys, ParseKey(def))
		}
	}
	return keys
}

// PrimaryKeyColumns returns the primary key columns of t, whether declared
// as a table clause or inline on a column. ok is false when t has none.
func PrimaryKeyColumns(t *schema.Table) (cols []string, ok bool) {
	for _, k := range TableKeys(t) {
		if k.Kind == KeyPrimary {
			return k.Columns, true
		}
	}
	for _, c := range t.OrderedColumns() {
		if inlinePrimaryKey(c) {
			return []string{strings.ToLower(c.Name)}, true
		}
	}
	return nil, false
}

func inlinePrimaryKey(c *schema.Column) bool {
	return strings.Contains(strings.ToUpper(c.Definition), "PRIMARY KEY")
}

// closingParen returns the index of the parenthesis matching s[0].
func closingParen(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitColumns splits a key's column list; prefix lengths such as
// name(10) are kept.
func splitColumns(list string) []string {
	var cols []string
	for _, part := range strings.Split(list, ",") {
		part = strings.ToLower(unquote(strings.TrimSpace(part)))
		if part != "" {
			cols = append(cols, part)
		}
	}
	return cols
}

func unquote(ident string) string {
	return strings.Trim(ident, "`\"")
}

// normalizeKey reduces a key clause to a canonical form: identifier quotes
// removed, lower-cased, whitespace collapsed, no padding around
// parentheses and commas, and the default USING BTREE dropped.
func normalizeKey(def string) string {
	s := strings.ToLower(def)
	s = strings.NewReplacer("`", "", "\"", "").Replace(s)
	s = defaultUsing.ReplaceAllString(s, "")
	s = spaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
	return punctPadding.ReplaceAllString(s, "$1")
}

// normalizeDefinition canonicalizes a column definition for comparison:
// whitespace collapsed, identifier quotes removed and everything outside
// string literals ('...' or "...") lower-cased.
func normalizeDefinition(def string) string {
	fields := strings.Join(strings.Fields(def), " ")

	var b strings.Builder
	b.Grow(len(fields))
	var quote byte
	for i := 0; i < len(fields); i++ {
		c := fields[i]
		switch {
		case quote != 0 && c == '\\' && i+1 < len(fields):
			b.WriteByte(c)
			i++
			b.WriteByte(fields[i])
			continue
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '`':
			continue
		case 'A' <= c && c <= 'Z':
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}
