package generator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rivaiamin/ddl-compare/diff"
)

// NoDifferences is the whole script when the two schemas already agree.
const NoDifferences = "-- No schema differences found."

var (
	now   = time.Now
	newID = uuid.NewString
)

// Script renders the operations as a human readable migration script.
// Missing and dropped tables get their own comment-delimited blocks, every
// other operation is an ALTER TABLE statement grouped under a per-table
// header.
func Script(ops []diff.Operation) (string, error) {
	if len(ops) == 0 {
		return NoDifferences, nil
	}

	var blocks []string
	var group []string
	groupTable := ""
	flush := func() {
		if len(group) > 0 {
			blocks = append(blocks, strings.Join(group, "\n"))
			group = nil
		}
		groupTable = ""
	}

	for _, op := range ops {
		stmt, err := statement(op)
		if err != nil {
			return "", err
		}
		switch op.Type {
		case diff.MissingTable:
			flush()
			blocks = append(blocks, fmt.Sprintf("-- MISSING TABLE: %s\n%s", op.TableName, stmt))
		case diff.DropTable:
			flush()
			blocks = append(blocks, fmt.Sprintf("-- TABLE TO DROP: %s\n%s", op.TableName, stmt))
		default:
			if op.TableName != groupTable {
				flush()
				groupTable = op.TableName
				group = append(group, "-- Table: "+op.TableName)
			}
			group = append(group, stmt)
		}
	}
	flush()

	return strings.Join(blocks, "\n\n") + "\n", nil
}

// GenerateSQL converts a list of Operations into raw SQL statements.
func GenerateSQL(ops []diff.Operation) ([]string, error) {
	var sqlStatements []string
	for _, op := range ops {
		stmt, err := statement(op)
		if err != nil {
			return nil, err
		}
		sqlStatements = append(sqlStatements, stmt)
	}
	return sqlStatements, nil
}

// GenerateRollbackSQL converts a list of Operations into the statements that
// undo them, last operation first. Destination definitions carried by the
// operations are used to restore what the migration replaced or dropped.
func GenerateRollbackSQL(ops []diff.Operation) ([]string, error) {
	var sqlStatements []string

	// Process operations in reverse order for rollback
	for i := len(ops) - 1; i >= 0; i-- {
		stmt, err := rollbackStatement(ops[i])
		if err != nil {
			return nil, err
		}
		sqlStatements = append(sqlStatements, stmt)
	}
	return sqlStatements, nil
}

func statement(op diff.Operation) (string, error) {
	alter := "ALTER TABLE " + quote(op.TableName)

	switch op.Type {
	case diff.MissingTable:
		if op.Table == nil {
			return "", missing(op, "table")
		}
		return terminate(op.Table.FullDeclaration), nil

	case diff.DropTable:
		return fmt.Sprintf("DROP TABLE %s;", quote(op.TableName)), nil

	case diff.AddColumn:
		if op.Column == nil {
			return "", missing(op, "column")
		}
		stmt := fmt.Sprintf("%s ADD COLUMN %s %s", alter, quote(op.Column.Name), op.Column.Definition)
		switch {
		case op.First:
			stmt += " FIRST"
		case op.After != "":
			stmt += " AFTER " + quote(op.After)
		}
		return stmt + ";", nil

	case diff.ModifyColumn:
		if op.Column == nil {
			return "", missing(op, "column")
		}
		return fmt.Sprintf("%s MODIFY COLUMN %s %s;", alter, quote(op.Column.Name), op.Column.Definition), nil

	case diff.DropColumn:
		if op.Column == nil {
			return "", missing(op, "column")
		}
		return fmt.Sprintf("%s DROP COLUMN %s;", alter, quote(op.Column.Name)), nil

	case diff.DropPrimaryKey:
		return alter + " DROP PRIMARY KEY;", nil

	case diff.DropIndex, diff.DropForeignKey, diff.DropCheck:
		if op.Key == nil || op.Key.Name == "" {
			return "", missing(op, "key name")
		}
		return fmt.Sprintf("%s DROP %s %s;", alter, dropKeyword(op.Type), quote(op.Key.Name)), nil

	case diff.AddIndex, diff.AddForeignKey:
		if op.Key == nil {
			return "", missing(op, "key")
		}
		return fmt.Sprintf("%s ADD %s;", alter, op.Key.Definition), nil

	default:
		return "", fmt.Errorf("unsupported operation: %s", op.Type)
	}
}

func rollbackStatement(op diff.Operation) (string, error) {
	alter := "ALTER TABLE " + quote(op.TableName)

	switch op.Type {
	case diff.MissingTable:
		return fmt.Sprintf("DROP TABLE %s;", quote(op.TableName)), nil

	case diff.DropTable:
		if op.Table == nil {
			return "", missing(op, "table")
		}
		return terminate(op.Table.FullDeclaration), nil

	case diff.AddColumn:
		if op.Column == nil {
			return "", missing(op, "column")
		}
		return fmt.Sprintf("%s DROP COLUMN %s;", alter, quote(op.Column.Name)), nil

	case diff.ModifyColumn:
		if op.OldColumn == nil {
			return "", missing(op, "previous column")
		}
		return fmt.Sprintf("%s MODIFY COLUMN %s %s;", alter, quote(op.OldColumn.Name), op.OldColumn.Definition), nil

	case diff.DropColumn:
		if op.Column == nil {
			return "", missing(op, "column")
		}
		return fmt.Sprintf("%s ADD COLUMN %s %s;", alter, quote(op.Column.Name), op.Column.Definition), nil

	case diff.DropPrimaryKey, diff.DropIndex, diff.DropForeignKey, diff.DropCheck:
		if op.Key == nil {
			return "", missing(op, "key")
		}
		return fmt.Sprintf("%s ADD %s;", alter, op.Key.Definition), nil

	case diff.AddIndex, diff.AddForeignKey:
		if op.Key == nil {
			return "", missing(op, "key")
		}
		switch {
		case op.Key.Kind == diff.KeyPrimary:
			return alter + " DROP PRIMARY KEY;", nil
		case op.Key.Name == "":
			// the server picks the name of an anonymous key
			return fmt.Sprintf("-- irreversible: %s ADD %s;", alter, op.Key.Definition), nil
		case op.Key.Kind == diff.KeyForeign:
			return fmt.Sprintf("%s DROP FOREIGN KEY %s;", alter, quote(op.Key.Name)), nil
		case op.Key.Kind == diff.KeyCheck:
			return fmt.Sprintf("%s DROP CHECK %s;", alter, quote(op.Key.Name)), nil
		default:
			return fmt.Sprintf("%s DROP INDEX %s;", alter, quote(op.Key.Name)), nil
		}

	default:
		return "", fmt.Errorf("unsupported operation: %s", op.Type)
	}
}

func dropKeyword(t diff.OperationType) string {
	switch t {
	case diff.DropForeignKey:
		return "FOREIGN KEY"
	case diff.DropCheck:
		return "CHECK"
	default:
		return "INDEX"
	}
}

func missing(op diff.Operation, what string) error {
	return fmt.Errorf("%s on %q: missing %s", op.Type, op.TableName, what)
}

func quote(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func terminate(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if !strings.HasSuffix(stmt, ";") {
		stmt += ";"
	}
	return stmt
}

// WriteMigrationFile saves the script into a .sql file with up/down
// sections. An empty path writes a timestamped file under migrations/.
// The down section is left out when there are no rollback statements.
func WriteMigrationFile(path, script string, rollback []string) (string, error) {
	if strings.TrimSpace(script) == "" {
		return "", errors.New("empty migration script")
	}

	timestamp := now().Format("20060102150405")
	if path == "" {
		path = filepath.Join("migrations", timestamp+"_migration.sql")
	}

	// Ensure the target folder exists
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("creating migrations folder: %w", err)
		}
	}

	var b strings.Builder
	b.WriteString("-- Migration: " + timestamp + "\n")
	b.WriteString("-- ID: " + newID() + "\n")
	b.WriteString("-- Description: Auto-generated schema migration\n\n")

	b.WriteString("-- Up Migration\n")
	b.WriteString("-- ============\n")
	b.WriteString(strings.TrimRight(script, "\n") + "\n")

	if len(rollback) > 0 {
		b.WriteString("\n-- Down Migration (Rollback)\n")
		b.WriteString("-- =======================\n")
		for _, stmt := range rollback {
			b.WriteString(stmt + "\n")
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("writing migration file: %w", err)
	}
	return path, nil
}
