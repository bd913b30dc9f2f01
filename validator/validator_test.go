package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaiamin/ddl-compare/parser"
	"github.com/rivaiamin/ddl-compare/schema"
)

func TestValidateDDL(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"empty", "", ErrEmptyFile},
		{"blank", " \n\t", ErrEmptyFile},
		{"no ddl", "SELECT * FROM users;", ErrNotDDL},
		{"create", "CREATE TABLE users (id INT);", nil},
		{"lower case alter", "alter table users add column x int;", nil},
		{"drop", "DROP TABLE IF EXISTS users;", nil},
		{"split keyword", "CREATE\n  TABLE t (id INT)", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDDL(tt.content)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func types(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Type
	}
	return out
}

func TestValidateCleanSchema(t *testing.T) {
	s := parser.Parse(`
		CREATE TABLE users (
			id INT NOT NULL AUTO_INCREMENT,
			email VARCHAR(100) NOT NULL DEFAULT '',
			active TINYINT(1) DEFAULT 1,
			PRIMARY KEY (id),
			UNIQUE KEY uk_email (email(50))
		);
		CREATE TABLE posts (
			id BIGINT PRIMARY KEY,
			user_id INT,
			CONSTRAINT fk_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
		);
	`)

	result := NewSchemaValidator().Validate(s)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	require.Len(t, result.Info, 1)
	assert.Equal(t, "2 tables, 5 columns", result.Info[0].Message)
}

func TestValidateWarnings(t *testing.T) {
	s := parser.Parse(`
		CREATE TABLE ` + "`order`" + ` (
			id INT,
			label VARCHAR(10) DEFAULT none,
			amount INT DEFAULT 1.5,
			shape WIDGET,
			account_id INT,
			FOREIGN KEY (account_id) REFERENCES accounts (id)
		);
	`)

	result := NewSchemaValidator().Validate(s)

	assert.True(t, result.Valid)
	assert.ElementsMatch(t, []string{
		"reserved_name",
		"default_value",
		"default_value",
		"data_type",
		"no_primary_key",
		"foreign_key_table_not_found",
	}, types(result.Warnings))
	for _, w := range result.Warnings {
		assert.Equal(t, "warning", w.Severity)
		assert.Equal(t, "order", w.Table)
	}
}

func TestValidateForeignKeyColumn(t *testing.T) {
	s := parser.Parse(`
		CREATE TABLE users (id INT PRIMARY KEY);
		CREATE TABLE posts (id INT PRIMARY KEY, user_id INT, FOREIGN KEY (user_id) REFERENCES users (uuid));
	`)

	result := NewSchemaValidator().Validate(s)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "foreign_key_column_not_found", result.Warnings[0].Type)
	assert.Equal(t, "uuid", result.Warnings[0].Column)
}

func TestValidateIndexErrors(t *testing.T) {
	s := parser.Parse(`
		CREATE TABLE t (
			id INT PRIMARY KEY,
			name VARCHAR(10),
			KEY idx_name (name),
			UNIQUE KEY idx_name (id),
			KEY idx_missing (missing DESC)
		);
	`)

	result := NewSchemaValidator().Validate(s)

	assert.False(t, result.Valid)
	assert.Equal(t, []string{"duplicate_index", "index_column_not_found"}, types(result.Errors))
	assert.Equal(t, "missing", result.Errors[1].Column)
	assert.Equal(t, "error", result.Errors[0].Severity)
}

func TestValidateStructure(t *testing.T) {
	s := schema.NewSchema()
	table := schema.NewTable("t")
	table.AddColumn(&schema.Column{Name: "id", Type: "int", Definition: "INT PRIMARY KEY"})
	table.Columns["ghost"] = &schema.Column{Name: "ghost", Type: "int"}
	table.ColumnOrder = append(table.ColumnOrder, "phantom")
	s.AddTable(table)
	s.AddTable(schema.NewTable("empty"))

	result := NewSchemaValidator().Validate(s)

	assert.False(t, result.Valid)
	assert.ElementsMatch(t, []string{"column_order", "column_order", "no_columns"}, types(result.Errors))
}

func TestKeyColumnName(t *testing.T) {
	assert.Equal(t, "name", keyColumnName("name(10)"))
	assert.Equal(t, "name", keyColumnName("name desc"))
	assert.Equal(t, "", keyColumnName("(lower(name))"))
	assert.Equal(t, "id", keyColumnName("id"))
}
