package schema

import (
	"sort"
)

func NewSchema() *Schema {
	return &Schema{
		Tables: map[string]*Table{},
	}
}

func NewTable(name string) *Table {
	return &Table{
		Name:    name,
		Columns: map[string]*Column{},
	}
}

// AddTable registers t under its name. A table declared twice keeps its
// first position but takes the later body.
func (s *Schema) AddTable(t *Table) {
	if s.Tables == nil {
		s.Tables = map[string]*Table{}
	}
	if _, exists := s.Tables[t.Name]; !exists {
		s.TableOrder = append(s.TableOrder, t.Name)
	}
	s.Tables[t.Name] = t
}

// Table returns the named table, or nil.
func (s *Schema) Table(name string) *Table {
	if s == nil {
		return nil
	}
	return s.Tables[name]
}

// Names returns table names in declaration order. Tables missing from
// TableOrder are appended in sorted order.
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}

	seen := make(map[string]bool, len(s.Tables))
	names := make([]string, 0, len(s.Tables))
	for _, name := range s.TableOrder {
		if _, ok := s.Tables[name]; ok && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	var rest []string
	for name := range s.Tables {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)

	return append(names, rest...)
}

// Filter returns a shallow copy holding only the tables keep accepts.
func (s *Schema) Filter(keep func(name string) bool) *Schema {
	out := NewSchema()
	for _, name := range s.Names() {
		if keep(name) {
			out.AddTable(s.Tables[name])
		}
	}
	return out
}

// AddColumn appends c to the table. Redeclaring a column replaces its
// definition but keeps the original position.
func (t *Table) AddColumn(c *Column) {
	if t.Columns == nil {
		t.Columns = map[string]*Column{}
	}
	if existing, ok := t.Columns[c.Name]; ok {
		c.Order = existing.Order
		t.Columns[c.Name] = c
		return
	}
	c.Order = len(t.ColumnOrder)
	t.Columns[c.Name] = c
	t.ColumnOrder = append(t.ColumnOrder, c.Name)
}

// Column returns the named column, or nil.
func (t *Table) Column(name string) *Column {
	if t == nil {
		return nil
	}
	return t.Columns[name]
}

// OrderedColumns returns the columns in declaration order.
func (t *Table) OrderedColumns() []*Column {
	cols := make([]*Column, 0, len(t.ColumnOrder))
	for _, name := range t.ColumnOrder {
		if c, ok := t.Columns[name]; ok {
			cols = append(cols, c)
		}
	}
	return cols
}
