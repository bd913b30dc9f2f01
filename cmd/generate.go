package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	ddlcompare "github.com/rivaiamin/ddl-compare"
	"github.com/rivaiamin/ddl-compare/generator"
)

var (
	generateFlags    compareFlags
	generateOutput   string
	generateRollback bool
	dryRunGenerate   bool
)

func init() {
	generateFlags.register(generateCmd)
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Migration file to write (default migrations/<timestamp>_migration.sql)")
	generateCmd.Flags().BoolVar(&generateRollback, "rollback", true, "Include a down section with rollback statements")
	generateCmd.Flags().BoolVar(&dryRunGenerate, "dry-run", false, "Preview the SQL that would be generated without writing files")
}

var generateCmd = &cobra.Command{
	Use:   "generate SOURCE DEST",
	Short: "Write a migration file that turns DEST into SOURCE",
	Long: `Compare two schema declarations and write the resulting migration to a
file with an up section and, unless disabled, a down section that reverses it.

Examples:
  ddl-compare generate desired.sql current.sql
  ddl-compare generate desired.sql current.sql -o migrations/002_users.sql
  ddl-compare generate desired.sql current.sql --rollback=false
  ddl-compare generate desired.sql current.sql --dry-run
`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, dest, err := loadPair(args[0], args[1])
		if err != nil {
			return err
		}

		res, err := ddlcompare.Compare(source, dest, generateFlags.options(cmd))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(res.Operations) == 0 {
			fmt.Fprintln(out, "✅ No changes detected.")
			return nil
		}

		rollback := cfg.Rollback
		if cmd.Flags().Changed("rollback") {
			rollback = generateRollback
		}

		var rollbackSqls []string
		if rollback {
			rollbackSqls, err = generator.GenerateRollbackSQL(res.Operations)
			if err != nil {
				return fmt.Errorf("generating rollback SQL: %w", err)
			}
		}

		if dryRunGenerate {
			fmt.Fprintln(out, "\n================ DRY RUN: Migration Preview ================")
			fmt.Fprintln(out, "-- Up Migration SQL --")
			fmt.Fprint(out, res.Script)
			if rollback {
				fmt.Fprintln(out, "\n-- Down Migration (Rollback) SQL --")
				for _, stmt := range rollbackSqls {
					fmt.Fprintln(out, stmt)
				}
			}
			fmt.Fprintln(out, "============================================================")
			fmt.Fprintln(out, "(Dry run only. No files were written.)")
			return nil
		}

		path := generateOutput
		if !cmd.Flags().Changed("output") {
			path = cfg.Output
		}

		filename, err := generator.WriteMigrationFile(path, res.Script, rollbackSqls)
		if err != nil {
			return fmt.Errorf("writing migration file: %w", err)
		}

		fmt.Fprintln(out, "✅ Migration generated:", filename)
		showStats(out, res.Stats)
		return nil
	},
}
