package generator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaiamin/ddl-compare/diff"
	"github.com/rivaiamin/ddl-compare/parser"
	"github.com/rivaiamin/ddl-compare/schema"
)

func compare(t *testing.T, src, dst string, opts diff.Options) []diff.Operation {
	t.Helper()
	return diff.Compare(parser.Parse(src), parser.Parse(dst), opts).Operations
}

func TestScriptNoDifferences(t *testing.T) {
	script, err := Script(nil)
	require.NoError(t, err)
	assert.Equal(t, NoDifferences, script)
}

func TestScriptMissingTable(t *testing.T) {
	ops := compare(t, "CREATE TABLE users (id INT PRIMARY KEY)", "", diff.Options{})

	script, err := Script(ops)
	require.NoError(t, err)
	assert.Equal(t, "-- MISSING TABLE: users\nCREATE TABLE users (id INT PRIMARY KEY);\n", script)
}

func TestScriptDropTable(t *testing.T) {
	ops := compare(t, "", "CREATE TABLE old_table (id INT);", diff.Options{DetectDrops: true})

	script, err := Script(ops)
	require.NoError(t, err)
	assert.Contains(t, script, "-- TABLE TO DROP: old_table")
	assert.Contains(t, script, "DROP TABLE `old_table`;")
}

func TestScriptColumnChanges(t *testing.T) {
	ops := compare(t,
		"CREATE TABLE users (id INT PRIMARY KEY, email VARCHAR(200), name VARCHAR(100) NOT NULL);",
		"CREATE TABLE users (id INT PRIMARY KEY, email VARCHAR(100), old_column INT);",
		diff.Options{DetectDrops: true, PreserveColumnOrder: true},
	)

	script, err := Script(ops)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"-- Table: users",
		"ALTER TABLE `users` MODIFY COLUMN `email` VARCHAR(200);",
		"ALTER TABLE `users` ADD COLUMN `name` VARCHAR(100) NOT NULL AFTER `email`;",
		"ALTER TABLE `users` DROP COLUMN `old_column`;",
	}, "\n")+"\n", script)
}

func TestScriptPrimaryKeyDropBeforeAdd(t *testing.T) {
	ops := compare(t,
		"CREATE TABLE absence (user_id INT, subject_id INT, PRIMARY KEY (`user_id`,`subject_id`) USING BTREE);",
		"CREATE TABLE absence (user_id INT, subject_id INT, PRIMARY KEY (`user_id`));",
		diff.Options{},
	)

	script, err := Script(ops)
	require.NoError(t, err)
	drop := strings.Index(script, "DROP PRIMARY KEY")
	add := strings.Index(script, "ADD PRIMARY KEY")
	require.NotEqual(t, -1, drop)
	require.NotEqual(t, -1, add)
	assert.Less(t, drop, add)
}

func TestScriptGroupsByTable(t *testing.T) {
	ops := compare(t, `
		CREATE TABLE a (id INT, x INT);
		CREATE TABLE b (id INT);
		CREATE TABLE c (id INT, y INT, KEY idx_y (y));
	`, `
		CREATE TABLE a (id INT);
		CREATE TABLE c (id INT);
	`, diff.Options{})

	script, err := Script(ops)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"-- Table: a",
		"ALTER TABLE `a` ADD COLUMN `x` INT;",
		"",
		"-- MISSING TABLE: b",
		"CREATE TABLE b (id INT);",
		"",
		"-- Table: c",
		"ALTER TABLE `c` ADD COLUMN `y` INT;",
		"ALTER TABLE `c` ADD KEY idx_y (y);",
	}, "\n")+"\n", script)
}

func TestGenerateSQL(t *testing.T) {
	key := diff.ParseKey("CONSTRAINT fk_user FOREIGN KEY (user_id) REFERENCES users(id)")
	check := diff.ParseKey("CONSTRAINT chk CHECK (a > 0)")
	index := diff.ParseKey("KEY `idx` (a)")

	tests := []struct {
		name string
		op   diff.Operation
		want string
	}{
		{"add first", diff.Operation{Type: diff.AddColumn, TableName: "t", Column: &schema.Column{Name: "a", Definition: "INT"}, First: true},
			"ALTER TABLE `t` ADD COLUMN `a` INT FIRST;"},
		{"drop index", diff.Operation{Type: diff.DropIndex, TableName: "t", Key: &index},
			"ALTER TABLE `t` DROP INDEX `idx`;"},
		{"drop foreign key", diff.Operation{Type: diff.DropForeignKey, TableName: "t", Key: &key},
			"ALTER TABLE `t` DROP FOREIGN KEY `fk_user`;"},
		{"drop check", diff.Operation{Type: diff.DropCheck, TableName: "t", Key: &check},
			"ALTER TABLE `t` DROP CHECK `chk`;"},
		{"add foreign key", diff.Operation{Type: diff.AddForeignKey, TableName: "t", Key: &key},
			"ALTER TABLE `t` ADD CONSTRAINT fk_user FOREIGN KEY (user_id) REFERENCES users(id);"},
		{"quoted name", diff.Operation{Type: diff.DropTable, TableName: "we`ird"},
			"DROP TABLE `we``ird`;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateSQL([]diff.Operation{tt.op})
			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, got)
		})
	}
}

func TestGenerateSQLErrors(t *testing.T) {
	for _, op := range []diff.Operation{
		{Type: "RENAME_TABLE", TableName: "t"},
		{Type: diff.AddColumn, TableName: "t"},
		{Type: diff.DropIndex, TableName: "t", Key: &diff.Key{Kind: diff.KeyIndex}},
		{Type: diff.MissingTable, TableName: "t"},
	} {
		_, err := GenerateSQL([]diff.Operation{op})
		assert.Error(t, err, "op %s", op.Type)
		_, err = Script([]diff.Operation{op})
		assert.Error(t, err, "op %s", op.Type)
	}
}

func TestGenerateRollbackSQL(t *testing.T) {
	ops := compare(t, `
		CREATE TABLE users (
			id INT NOT NULL,
			email VARCHAR(200),
			PRIMARY KEY (id, email),
			KEY idx_email (email),
			FOREIGN KEY (id) REFERENCES accounts(id)
		);
		CREATE TABLE posts (id INT);
	`, `
		CREATE TABLE users (
			id INT NOT NULL,
			email VARCHAR(100),
			legacy INT DEFAULT 0,
			PRIMARY KEY (id)
		);
		CREATE TABLE old (id INT);
	`, diff.Options{DetectDrops: true})

	got, err := GenerateRollbackSQL(ops)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CREATE TABLE old (id INT);",
		"DROP TABLE `posts`;",
		"-- irreversible: ALTER TABLE `users` ADD FOREIGN KEY (id) REFERENCES accounts(id);",
		"ALTER TABLE `users` DROP INDEX `idx_email`;",
		"ALTER TABLE `users` DROP PRIMARY KEY;",
		"ALTER TABLE `users` ADD COLUMN `legacy` INT DEFAULT 0;",
		"ALTER TABLE `users` MODIFY COLUMN `email` VARCHAR(100);",
		"ALTER TABLE `users` ADD PRIMARY KEY (id);",
	}, got)
}

func stubClock(t *testing.T) {
	t.Helper()
	now = func() time.Time { return time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC) }
	newID = func() string { return "9b2c6d1e-0000-4000-8000-000000000001" }
	t.Cleanup(func() {
		now = time.Now
		newID = uuid.NewString
	})
}

func TestWriteMigrationFile(t *testing.T) {
	stubClock(t)

	path := filepath.Join(t.TempDir(), "out", "migration.sql")
	written, err := WriteMigrationFile(path, "ALTER TABLE `t` ADD COLUMN `a` INT;\n", []string{"ALTER TABLE `t` DROP COLUMN `a`;"})
	require.NoError(t, err)
	assert.Equal(t, path, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `-- Migration: 20240501103000
-- ID: 9b2c6d1e-0000-4000-8000-000000000001
-- Description: Auto-generated schema migration

-- Up Migration
-- ============
ALTER TABLE `+"`t` ADD COLUMN `a`"+` INT;

-- Down Migration (Rollback)
-- =======================
ALTER TABLE `+"`t` DROP COLUMN `a`"+`;
`, string(data))
}

func TestWriteMigrationFileDefaultPath(t *testing.T) {
	stubClock(t)
	chdir(t, t.TempDir())

	written, err := WriteMigrationFile("", NoDifferences, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("migrations", "20240501103000_migration.sql"), written)

	data, err := os.ReadFile(written)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Down Migration")
}

func TestWriteMigrationFileEmptyScript(t *testing.T) {
	_, err := WriteMigrationFile(filepath.Join(t.TempDir(), "x.sql"), "  \n", nil)
	assert.Error(t, err)
}
