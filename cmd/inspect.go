package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/rivaiamin/ddl-compare/diff"
	"github.com/rivaiamin/ddl-compare/loader"
	"github.com/rivaiamin/ddl-compare/schema"
)

var inspectFormat string

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Show how a schema file is parsed",
	Long: `Parse a schema file and print the tables, columns and keys it contains.

The yaml format writes a snapshot that diff, generate and validate accept
in place of a .sql file.

Examples:
  ddl-compare inspect schema.sql
  ddl-compare inspect schema.sql --format yaml > schema.yaml
  ddl-compare inspect schema.sql --format json
  ddl-compare inspect schema.sql --format debug
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loader.LoadSchema(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch inspectFormat {
		case "text":
			showSchema(out, s)
			return nil
		case "yaml":
			return loader.SaveSnapshot(out, s)
		case "json":
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(s)
		case "debug":
			printer := pp.New()
			printer.SetColoringEnabled(!color.NoColor)
			_, err := printer.Fprintln(out, s)
			return err
		default:
			return fmt.Errorf("unsupported format %q (supported: text, yaml, json, debug)", inspectFormat)
		}
	},
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectFormat, "format", "f", "text", "Output format (text, yaml, json, debug)")
}

func showSchema(w io.Writer, s *schema.Schema) {
	if len(s.Tables) == 0 {
		fmt.Fprintln(w, "❌ No tables found")
		return
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	for _, name := range s.Names() {
		t := s.Tables[name]
		bold.Fprintf(w, "📋 %s\n", name)
		for _, c := range t.OrderedColumns() {
			fmt.Fprintf(w, "  • %s %s", c.Name, c.Type)
			if c.Default != nil {
				faint.Fprintf(w, " (default %s)", *c.Default)
			}
			fmt.Fprintln(w)
		}
		if pk, ok := diff.PrimaryKeyColumns(t); ok {
			fmt.Fprintf(w, "  🔑 PRIMARY KEY (%s)\n", strings.Join(pk, ", "))
		}
		for _, k := range diff.TableKeys(t) {
			if k.Kind == diff.KeyPrimary {
				continue
			}
			fmt.Fprintf(w, "  🔗 %s\n", k.Definition)
		}
		fmt.Fprintln(w)
	}

	columns := 0
	for _, t := range s.Tables {
		columns += len(t.Columns)
	}
	fmt.Fprintf(w, "📊 %d table(s), %d column(s)\n", len(s.Tables), columns)
}
