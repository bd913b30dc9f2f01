package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	ddlcompare "github.com/rivaiamin/ddl-compare"
	"github.com/rivaiamin/ddl-compare/diff"
)

var (
	diffFlags  compareFlags
	diffFormat string
	diffStats  bool
	diffVisual bool
)

var diffCmd = &cobra.Command{
	Use:   "diff SOURCE DEST",
	Short: "Show the migration that turns DEST into SOURCE",
	Long: `Compare two schema declarations and print the migration script that
turns DEST into SOURCE. Either file may be "-" for stdin, a .xz compressed
dump, or a YAML snapshot written by "inspect --format yaml".

Examples:
  ddl-compare diff desired.sql current.sql
  ddl-compare diff desired.sql current.sql --detect-drops
  ddl-compare diff desired.sql current.sql --stats
  ddl-compare diff desired.sql current.sql --visual
  ddl-compare diff desired.sql current.sql --format json
`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, dest, err := loadPair(args[0], args[1])
		if err != nil {
			return err
		}

		res, err := ddlcompare.Compare(source, dest, diffFlags.options(cmd))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch diffFormat {
		case "sql":
			if diffVisual {
				showVisualDiff(out, res.Operations)
			} else {
				fmt.Fprintln(out, strings.TrimRight(res.Script, "\n"))
			}
			if diffStats {
				showStats(out, res.Stats)
			}
			return nil
		case "json":
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(res)
		case "yaml":
			encoder := yaml.NewEncoder(out)
			encoder.SetIndent(2)
			if err := encoder.Encode(res); err != nil {
				return err
			}
			return encoder.Close()
		default:
			return fmt.Errorf("unsupported format %q (supported: sql, json, yaml)", diffFormat)
		}
	},
}

func init() {
	diffFlags.register(diffCmd)
	diffCmd.Flags().StringVarP(&diffFormat, "format", "f", "sql", "Output format (sql, json, yaml)")
	diffCmd.Flags().BoolVar(&diffStats, "stats", false, "Print change statistics after the script")
	diffCmd.Flags().BoolVar(&diffVisual, "visual", false, "Show a colored summary instead of the script")
}

func showStats(w io.Writer, stats diff.Stats) {
	fmt.Fprintf(w, "\n📊 Summary:\n")
	fmt.Fprintf(w, "  • Tables added: %d\n", stats.TablesAdded)
	fmt.Fprintf(w, "  • Tables dropped: %d\n", stats.TablesDropped)
	fmt.Fprintf(w, "  • Columns added: %d\n", stats.ColumnsAdded)
	fmt.Fprintf(w, "  • Columns modified: %d\n", stats.ColumnsModified)
	fmt.Fprintf(w, "  • Columns dropped: %d\n", stats.ColumnsDropped)
	fmt.Fprintf(w, "  • Indexes added: %d\n", stats.IndexesAdded)
	fmt.Fprintf(w, "  • Total changes: %d\n", stats.Total())
}

func showVisualDiff(w io.Writer, operations []diff.Operation) {
	if len(operations) == 0 {
		color.New(color.FgGreen).Fprintln(w, "✅ No schema differences found")
		return
	}

	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	blue := color.New(color.FgBlue)

	fmt.Fprintln(w, "🌳 Schema Changes (Visual Diff)")
	fmt.Fprintln(w, strings.Repeat("=", 50))

	current := ""
	for _, op := range operations {
		switch op.Type {
		case diff.MissingTable:
			current = ""
			green.Fprintf(w, "➕ CREATE TABLE %s (%d columns)\n", op.TableName, len(op.Table.ColumnOrder))
			continue
		case diff.DropTable:
			current = ""
			red.Fprintf(w, "❌ DROP TABLE %s\n", op.TableName)
			continue
		}

		if op.TableName != current {
			current = op.TableName
			yellow.Fprintf(w, "⚡ MODIFY TABLE %s\n", op.TableName)
		}

		switch op.Type {
		case diff.AddColumn:
			green.Fprintf(w, "    ➕ ADD %s (%s)", op.Column.Name, op.Column.Type)
			switch {
			case op.First:
				green.Fprint(w, " FIRST")
			case op.After != "":
				green.Fprintf(w, " AFTER %s", op.After)
			}
			fmt.Fprintln(w)
		case diff.ModifyColumn:
			blue.Fprintf(w, "    🔄 MODIFY %s: %s → %s\n", op.Column.Name, op.OldColumn.Definition, op.Column.Definition)
		case diff.DropColumn:
			red.Fprintf(w, "    ❌ DROP %s\n", op.Column.Name)
		case diff.DropPrimaryKey:
			red.Fprintf(w, "    ➖ DROP PRIMARY KEY\n")
		case diff.DropIndex, diff.DropForeignKey, diff.DropCheck:
			red.Fprintf(w, "    ➖ DROP %s %s\n", op.Key.Kind, op.Key.Name)
		case diff.AddIndex, diff.AddForeignKey:
			green.Fprintf(w, "    🔑 ADD %s\n", op.Key.Definition)
		}
	}
}
