// Package diff compares a source schema against a destination schema and
// lists the operations that turn the destination into the source.
package diff

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/rivaiamin/ddl-compare/schema"
)

type OperationType string

const (
	MissingTable   OperationType = "MISSING_TABLE"
	DropTable      OperationType = "DROP_TABLE"
	AddColumn      OperationType = "ADD_COLUMN"
	ModifyColumn   OperationType = "MODIFY_COLUMN"
	DropColumn     OperationType = "DROP_COLUMN"
	DropPrimaryKey OperationType = "DROP_PRIMARY_KEY"
	DropIndex      OperationType = "DROP_INDEX"
	DropForeignKey OperationType = "DROP_FOREIGN_KEY"
	DropCheck      OperationType = "DROP_CHECK"
	AddIndex       OperationType = "ADD_INDEX"
	AddForeignKey  OperationType = "ADD_FOREIGN_KEY"
)

// Options controls optional comparator behavior. The zero value neither
// reports drops nor positions added columns.
type Options struct {
	DetectDrops         bool
	PreserveColumnOrder bool
}

type Operation struct {
	Type      OperationType
	TableName string
	Table     *schema.Table  // MISSING_TABLE: source table, DROP_TABLE: destination table
	Column    *schema.Column // ADD_COLUMN, MODIFY_COLUMN: source column, DROP_COLUMN: destination column
	OldColumn *schema.Column // MODIFY_COLUMN: destination column
	After     string         // ADD_COLUMN placement when column order is preserved
	First     bool           // ADD_COLUMN placement at the first position
	Key       *Key           // ADD_*: source key, DROP_* key operations: destination key
}

// Stats counts emitted operations by kind.
type Stats struct {
	TablesAdded     int `json:"tablesAdded" yaml:"tables_added"`
	TablesDropped   int `json:"tablesDropped" yaml:"tables_dropped"`
	ColumnsAdded    int `json:"columnsAdded" yaml:"columns_added"`
	ColumnsModified int `json:"columnsModified" yaml:"columns_modified"`
	ColumnsDropped  int `json:"columnsDropped" yaml:"columns_dropped"`
	IndexesAdded    int `json:"indexesAdded" yaml:"indexes_added"`
}

// Total is the number of counted changes.
func (s Stats) Total() int {
	return s.TablesAdded + s.TablesDropped + s.ColumnsAdded + s.ColumnsModified + s.ColumnsDropped + s.IndexesAdded
}

func (s *Stats) record(t OperationType) {
	switch t {
	case MissingTable:
		s.TablesAdded++
	case DropTable:
		s.TablesDropped++
	case AddColumn:
		s.ColumnsAdded++
	case ModifyColumn:
		s.ColumnsModified++
	case DropColumn:
		s.ColumnsDropped++
	case AddIndex, AddForeignKey:
		s.IndexesAdded++
	}
}

type Result struct {
	Operations []Operation
	Stats      Stats
}

// HasChanges reports whether any operation was produced.
func (r *Result) HasChanges() bool {
	return len(r.Operations) > 0
}

type comparator struct {
	opts   Options
	result *Result
}

// Compare walks source tables in declaration order, then (with
// DetectDrops) destination-only tables. Neither schema is modified.
func Compare(source, dest *schema.Schema, opts Options) *Result {
	c := &comparator{opts: opts, result: &Result{}}

	for _, name := range source.Names() {
		src := source.Tables[name]
		dst := dest.Table(name)
		if dst == nil {
			c.add(Operation{Type: MissingTable, TableName: name, Table: src})
			continue
		}
		c.compareTable(name, src, dst)
	}

	if opts.DetectDrops {
		for _, name := range dest.Names() {
			if source.Table(name) == nil {
				c.add(Operation{Type: DropTable, TableName: name, Table: dest.Tables[name]})
			}
		}
	}

	slog.Debug("schemas compared",
		"operations", len(c.result.Operations),
		"changes", c.result.Stats.Total())
	return c.result
}

func (c *comparator) add(ops ...Operation) {
	for _, op := range ops {
		c.result.Operations = append(c.result.Operations, op)
		c.result.Stats.record(op.Type)
	}
}

// compareTable emits, in order: key drops needed by replacements, column
// adds and modifies, column drops, key adds, foreign key adds. A changed
// primary key is therefore always dropped before it is added again.
func (c *comparator) compareTable(name string, src, dst *schema.Table) {
	keyDrops, keyAdds, fkAdds := c.compareKeys(name, src, dst)

	var columns, columnDrops []Operation
	for i, colName := range src.ColumnOrder {
		col := src.Columns[colName]
		if col == nil {
			continue
		}
		old := dst.Column(colName)
		if old == nil {
			op := Operation{Type: AddColumn, TableName: name, Column: col}
			if c.opts.PreserveColumnOrder {
				if i == 0 {
					op.First = true
				} else {
					op.After = src.ColumnOrder[i-1]
				}
			}
			columns = append(columns, op)
			continue
		}
		if columnChanged(col, old) {
			columns = append(columns, Operation{Type: ModifyColumn, TableName: name, Column: col, OldColumn: old})
		}
	}

	if c.opts.DetectDrops {
		for _, colName := range dst.ColumnOrder {
			if src.Column(colName) == nil && dst.Columns[colName] != nil {
				columnDrops = append(columnDrops, Operation{Type: DropColumn, TableName: name, Column: dst.Columns[colName]})
			}
		}
	}

	c.add(keyDrops...)
	c.add(columns...)
	c.add(columnDrops...)
	c.add(keyAdds...)
	c.add(fkAdds...)

	slog.Debug("table compared", "table", name,
		"operations", len(keyDrops)+len(columns)+len(columnDrops)+len(keyAdds)+len(fkAdds))
}

func (c *comparator) compareKeys(name string, src, dst *schema.Table) (drops, adds, fkAdds []Operation) {
	present := map[string]bool{}
	byIdentity := map[string]Key{}
	for _, k := range TableKeys(dst) {
		present[normalizeKey(k.Definition)] = true
		byIdentity[k.Identity()] = k
	}
	dstPK, dstHasPK := PrimaryKeyColumns(dst)
	srcPK, srcHasPK := PrimaryKeyColumns(src)

	srcClause := false
	for _, k := range TableKeys(src) {
		if k.Kind == KeyPrimary {
			srcClause = true
		}
		if present[normalizeKey(k.Definition)] {
			continue
		}
		key := k

		if key.Kind == KeyPrimary {
			if dstHasPK {
				if len(key.Columns) > 0 && slices.Equal(key.Columns, dstPK) {
					continue
				}
				drops = append(drops, dropPrimaryKey(name, byIdentity, dstPK))
			}
		} else if old, ok := byIdentity[key.Identity()]; ok {
			drops = append(drops, Operation{Type: dropOperationFor(old.Kind), TableName: name, Key: &old})
		}

		if key.Kind == KeyForeign {
			fkAdds = append(fkAdds, Operation{Type: AddForeignKey, TableName: name, Key: &key})
		} else {
			adds = append(adds, Operation{Type: AddIndex, TableName: name, Key: &key})
		}
	}

	// A primary key declared on a column arrives through MODIFY COLUMN,
	// so the old one has to go first.
	if !srcClause && srcHasPK && dstHasPK && !slices.Equal(srcPK, dstPK) {
		drops = append(drops, dropPrimaryKey(name, byIdentity, dstPK))
	}

	// Foreign keys go first so no index they rely on disappears under
	// them, and the primary key goes last.
	slices.SortStableFunc(drops, func(a, b Operation) int {
		return dropPriority(a.Type) - dropPriority(b.Type)
	})
	return drops, adds, fkAdds
}

func dropOperationFor(kind KeyKind) OperationType {
	switch kind {
	case KeyPrimary:
		return DropPrimaryKey
	case KeyForeign:
		return DropForeignKey
	case KeyCheck:
		return DropCheck
	default:
		return DropIndex
	}
}

func dropPriority(t OperationType) int {
	switch t {
	case DropForeignKey:
		return 0
	case DropIndex, DropCheck:
		return 1
	default:
		return 2
	}
}

func dropPrimaryKey(table string, byIdentity map[string]Key, dstPK []string) Operation {
	old, ok := byIdentity["primary"]
	if !ok {
		old = inlinePrimaryKeyClause(dstPK)
	}
	return Operation{Type: DropPrimaryKey, TableName: table, Key: &old}
}

// inlinePrimaryKeyClause stands in for a primary key declared on a column.
func inlinePrimaryKeyClause(cols []string) Key {
	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = "`" + col + "`"
	}
	return Key{
		Kind:       KeyPrimary,
		Name:       "PRIMARY",
		Columns:    cols,
		Definition: fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(quoted, ",")),
	}
}

// columnChanged reports whether two declarations of the same column
// differ in type or in normalized definition text.
func columnChanged(src, dst *schema.Column) bool {
	if !strings.EqualFold(src.Type, dst.Type) {
		return true
	}
	return normalizeDefinition(src.Definition) != normalizeDefinition(dst.Definition)
}
