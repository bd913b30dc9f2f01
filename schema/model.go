package schema

// Schema maps table names to their parsed declarations.
type Schema struct {
	Tables     map[string]*Table `yaml:"tables" json:"tables"`
	TableOrder []string          `yaml:"table_order" json:"table_order"`
}

// Table is a single CREATE TABLE declaration.
type Table struct {
	Name            string             `yaml:"name" json:"name"`
	Columns         map[string]*Column `yaml:"columns" json:"columns"`
	Indexes         []string           `yaml:"indexes,omitempty" json:"indexes,omitempty"`
	ForeignKeys     []string           `yaml:"foreign_keys,omitempty" json:"foreign_keys,omitempty"`
	ColumnOrder     []string           `yaml:"column_order" json:"column_order"`
	FullDeclaration string             `yaml:"full_declaration" json:"full_declaration"`
}

type Column struct {
	Name       string  `yaml:"name" json:"name"`
	Definition string  `yaml:"definition" json:"definition"`
	Type       string  `yaml:"type" json:"type"`
	FullLine   string  `yaml:"full_line" json:"full_line"`
	Default    *string `yaml:"default,omitempty" json:"default,omitempty"`
	Order      int     `yaml:"order" json:"order"`
}
