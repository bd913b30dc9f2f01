package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rivaiamin/ddl-compare/diff"
	"github.com/rivaiamin/ddl-compare/schema"
)

var (
	ErrEmptyFile = errors.New("file is empty")
	ErrNotDDL    = errors.New("no CREATE TABLE, ALTER TABLE or DROP TABLE statement found")
)

var (
	ddlKeywords = regexp.MustCompile(`(?i)\b(CREATE|ALTER|DROP)\s+TABLE\b`)
	typeName    = regexp.MustCompile(`^[a-z]+(?:\s+(?:precision|varying))?`)
)

// maxIdentifierLength is the MySQL limit for table, column and index names.
const maxIdentifierLength = 64

// ValidateDDL checks that content looks like declaration text before it is
// handed to the parser.
func ValidateDDL(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyFile
	}
	if !ddlKeywords.MatchString(content) {
		return ErrNotDDL
	}
	return nil
}

// ValidationError represents a validation error with details
type ValidationError struct {
	Type     string `json:"type" yaml:"type"`
	Table    string `json:"table,omitempty" yaml:"table,omitempty"`
	Column   string `json:"column,omitempty" yaml:"column,omitempty"`
	Index    string `json:"index,omitempty" yaml:"index,omitempty"`
	Message  string `json:"message" yaml:"message"`
	Severity string `json:"severity" yaml:"severity"` // "error", "warning", "info"
}

// ValidationResult contains all validation results
type ValidationResult struct {
	Valid    bool              `json:"valid" yaml:"valid"`
	Errors   []ValidationError `json:"errors" yaml:"errors"`
	Warnings []ValidationError `json:"warnings" yaml:"warnings"`
	Info     []ValidationError `json:"info" yaml:"info"`
}

func (r *ValidationResult) addError(e ValidationError) {
	e.Severity = "error"
	r.Errors = append(r.Errors, e)
}

func (r *ValidationResult) addWarning(e ValidationError) {
	e.Severity = "warning"
	r.Warnings = append(r.Warnings, e)
}

// SchemaValidator checks a parsed schema for structural problems and for
// declarations that are likely mistakes.
type SchemaValidator struct{}

func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{}
}

// Validate validates a complete schema. Errors make the schema invalid,
// warnings and info do not.
func (v *SchemaValidator) Validate(s *schema.Schema) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
		Info:     []ValidationError{},
	}

	columns := 0
	for _, name := range s.Names() {
		table := s.Tables[name]
		v.validateTable(name, table, result)
		columns += len(table.Columns)
	}

	// Cross-table validations
	v.validateForeignKeys(s, result)

	result.Info = append(result.Info, ValidationError{
		Type:     "summary",
		Message:  fmt.Sprintf("%d tables, %d columns", len(s.Tables), columns),
		Severity: "info",
	})

	// Update overall validity
	result.Valid = len(result.Errors) == 0

	return result
}

func (v *SchemaValidator) validateTable(name string, table *schema.Table, result *ValidationResult) {
	if table.Name != name {
		result.addError(ValidationError{
			Type:    "table_name",
			Table:   name,
			Message: fmt.Sprintf("Table registered as '%s' is named '%s'", name, table.Name),
		})
	}
	if err := validateIdentifier("table", name); err != nil {
		result.addError(ValidationError{Type: "table_name", Table: name, Message: err.Error()})
	}
	if isReserved(name) {
		result.addWarning(ValidationError{
			Type:    "reserved_name",
			Table:   name,
			Message: fmt.Sprintf("Table name '%s' is a reserved keyword and must always be quoted", name),
		})
	}

	v.validateColumns(table, result)
	v.validateIndexes(table, result)

	// Check for primary key
	if _, ok := diff.PrimaryKeyColumns(table); !ok {
		result.addWarning(ValidationError{
			Type:    "no_primary_key",
			Table:   name,
			Message: fmt.Sprintf("Table '%s' has no primary key defined", name),
		})
	}
}

// validateColumns validates all columns in a table
func (v *SchemaValidator) validateColumns(table *schema.Table, result *ValidationResult) {
	if len(table.ColumnOrder) == 0 {
		result.addError(ValidationError{
			Type:    "no_columns",
			Table:   table.Name,
			Message: fmt.Sprintf("Table '%s' must have at least one column", table.Name),
		})
	}

	seen := make(map[string]bool)
	for i, name := range table.ColumnOrder {
		if seen[name] {
			result.addError(ValidationError{
				Type:    "duplicate_column",
				Table:   table.Name,
				Column:  name,
				Message: fmt.Sprintf("Duplicate column name '%s' in table '%s'", name, table.Name),
			})
			continue
		}
		seen[name] = true

		column := table.Columns[name]
		if column == nil {
			result.addError(ValidationError{
				Type:    "column_order",
				Table:   table.Name,
				Column:  name,
				Message: fmt.Sprintf("Column '%s' is listed in the column order of '%s' but not declared", name, table.Name),
			})
			continue
		}
		if column.Order != i {
			result.addError(ValidationError{
				Type:    "column_order",
				Table:   table.Name,
				Column:  name,
				Message: fmt.Sprintf("Column '%s' has position %d but is listed at %d", name, column.Order, i),
			})
		}

		if err := validateIdentifier("column", name); err != nil {
			result.addError(ValidationError{Type: "column_name", Table: table.Name, Column: name, Message: err.Error()})
		}
		if isReserved(name) {
			result.addWarning(ValidationError{
				Type:    "reserved_name",
				Table:   table.Name,
				Column:  name,
				Message: fmt.Sprintf("Column name '%s' is a reserved keyword and must always be quoted", name),
			})
		}

		if err := validateDataType(column.Type); err != nil {
			result.addWarning(ValidationError{Type: "data_type", Table: table.Name, Column: name, Message: err.Error()})
		}

		if column.Default != nil {
			if err := validateDefaultValue(column.Type, *column.Default); err != nil {
				result.addWarning(ValidationError{Type: "default_value", Table: table.Name, Column: name, Message: err.Error()})
			}
		}
	}

	for name := range table.Columns {
		if !seen[name] {
			result.addError(ValidationError{
				Type:    "column_order",
				Table:   table.Name,
				Column:  name,
				Message: fmt.Sprintf("Column '%s' is declared in '%s' but missing from its column order", name, table.Name),
			})
		}
	}
}

// validateIndexes validates the keys of a table
func (v *SchemaValidator) validateIndexes(table *schema.Table, result *ValidationResult) {
	columnNames := make(map[string]bool)
	for name := range table.Columns {
		columnNames[strings.ToLower(name)] = true
	}

	identities := make(map[string]bool)
	for _, key := range diff.TableKeys(table) {
		if key.Name != "" {
			id := key.Identity()
			if identities[id] {
				result.addError(ValidationError{
					Type:    "duplicate_index",
					Table:   table.Name,
					Index:   key.Name,
					Message: fmt.Sprintf("Duplicate key name '%s' in table '%s'", key.Name, table.Name),
				})
				continue
			}
			identities[id] = true
		}

		for _, col := range key.Columns {
			col = keyColumnName(col)
			if col == "" || columnNames[col] {
				continue
			}
			result.addError(ValidationError{
				Type:    "index_column_not_found",
				Table:   table.Name,
				Index:   key.Name,
				Column:  col,
				Message: fmt.Sprintf("Key '%s' references non-existent column '%s' in table '%s'", key.Definition, col, table.Name),
			})
		}
	}
}

// validateForeignKeys checks that foreign keys point at tables and columns
// of the same schema. A reference outside the schema is only a warning,
// the declaration text may describe part of a database.
func (v *SchemaValidator) validateForeignKeys(s *schema.Schema, result *ValidationResult) {
	for _, name := range s.Names() {
		table := s.Tables[name]
		for _, key := range diff.TableKeys(table) {
			if key.Kind != diff.KeyForeign {
				continue
			}
			refTable, refColumns, ok := key.References()
			if !ok {
				result.addError(ValidationError{
					Type:    "foreign_key",
					Table:   name,
					Index:   key.Name,
					Message: fmt.Sprintf("Foreign key '%s' has no REFERENCES clause", key.Definition),
				})
				continue
			}

			target := s.Table(refTable)
			if target == nil {
				result.addWarning(ValidationError{
					Type:    "foreign_key_table_not_found",
					Table:   name,
					Index:   key.Name,
					Message: fmt.Sprintf("Foreign key references table '%s' which is not declared", refTable),
				})
				continue
			}

			for _, col := range refColumns {
				if target.Column(col) == nil {
					result.addWarning(ValidationError{
						Type:    "foreign_key_column_not_found",
						Table:   name,
						Index:   key.Name,
						Column:  col,
						Message: fmt.Sprintf("Foreign key references non-existent column '%s' in table '%s'", col, refTable),
					})
				}
			}
		}
	}
}

func validateIdentifier(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s name cannot be empty", kind)
	}
	if len(name) > maxIdentifierLength {
		return fmt.Errorf("%s name '%s' is too long (max %d characters)", kind, name, maxIdentifierLength)
	}
	return nil
}

// keyColumnName strips a prefix length from a key column. Functional key
// parts have no column name.
func keyColumnName(col string) string {
	if strings.HasPrefix(col, "(") {
		return ""
	}
	if i := strings.IndexByte(col, '('); i > 0 {
		col = col[:i]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(col, " asc"), " desc"))
}

var validTypes = map[string]bool{
	// Numeric types
	"tinyint": true, "smallint": true, "mediumint": true, "int": true, "integer": true, "bigint": true,
	"decimal": true, "dec": true, "numeric": true, "fixed": true,
	"float": true, "double": true, "double precision": true, "real": true,
	"bit": true, "bool": true, "boolean": true, "serial": true,

	// Date/time types
	"date": true, "datetime": true, "timestamp": true, "time": true, "year": true,

	// String types
	"char": true, "varchar": true, "character": true, "character varying": true,
	"binary": true, "varbinary": true,
	"tinyblob": true, "blob": true, "mediumblob": true, "longblob": true,
	"tinytext": true, "text": true, "mediumtext": true, "longtext": true,
	"enum": true, "set": true,

	// JSON type
	"json": true,

	// Spatial types
	"geometry": true, "point": true, "linestring": true, "polygon": true,
	"multipoint": true, "multilinestring": true, "multipolygon": true, "geometrycollection": true,
}

// validateDataType validates a MySQL data type
func validateDataType(dataType string) error {
	base := typeName.FindString(strings.ToLower(dataType))
	if !validTypes[base] {
		return fmt.Errorf("unsupported data type '%s'", dataType)
	}
	return nil
}

// validateDefaultValue validates default value against data type
func validateDefaultValue(dataType, defaultValue string) error {
	dataType = strings.ToLower(dataType)
	if strings.EqualFold(defaultValue, "NULL") || strings.Contains(defaultValue, "(") {
		return nil
	}
	quoted := strings.HasPrefix(defaultValue, "'") || strings.HasPrefix(defaultValue, "\"")

	switch {
	case strings.Contains(dataType, "int"):
		if !quoted && strings.Contains(defaultValue, ".") {
			return fmt.Errorf("integer type cannot have decimal default value '%s'", defaultValue)
		}
	case strings.Contains(dataType, "char") || strings.HasSuffix(dataType, "text") || strings.HasPrefix(dataType, "enum"):
		if !quoted {
			return fmt.Errorf("string type should have quoted default value '%s'", defaultValue)
		}
	case dataType == "boolean" || dataType == "bool":
		switch strings.ToLower(defaultValue) {
		case "true", "false", "0", "1":
		default:
			return fmt.Errorf("boolean type should have true/false default value, got '%s'", defaultValue)
		}
	}
	return nil
}

var reservedKeywords = map[string]bool{
	"add": true, "all": true, "alter": true, "and": true, "as": true, "by": true,
	"check": true, "column": true, "create": true, "database": true, "default": true,
	"delete": true, "desc": true, "drop": true, "from": true, "group": true, "index": true,
	"insert": true, "key": true, "like": true, "order": true, "primary": true, "range": true,
	"references": true, "select": true, "table": true, "to": true, "unique": true,
	"update": true, "where": true,
}

func isReserved(name string) bool {
	return reservedKeywords[strings.ToLower(name)]
}
