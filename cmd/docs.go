package cmd

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rivaiamin/ddl-compare/diff"
	"github.com/rivaiamin/ddl-compare/loader"
	"github.com/rivaiamin/ddl-compare/schema"
)

var (
	docsFormat string
	docsOutput string
)

var docsCmd = &cobra.Command{
	Use:   "docs FILE",
	Short: "Generate an ERD diagram from a schema file",
	Long: `Generate an entity relationship diagram from the tables and foreign keys
declared in a schema file.

Supported formats:
  - plantuml: PlantUML ERD diagram
  - mermaid: Mermaid ERD diagram
  - graphviz: Graphviz DOT format

Examples:
  ddl-compare docs schema.sql --format plantuml --output erd.puml
  ddl-compare docs schema.sql --format mermaid --output erd.md
  ddl-compare docs schema.sql --format graphviz --output -
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loader.LoadSchema(args[0])
		if err != nil {
			return fmt.Errorf("loading schema: %w", err)
		}
		if len(s.Tables) == 0 {
			return fmt.Errorf("no tables found in %s", args[0])
		}

		var content, output string
		switch docsFormat {
		case "plantuml":
			content, output = generatePlantUMLContent(s), "erd.puml"
		case "mermaid":
			content, output = generateMermaidContent(s), "erd.md"
		case "graphviz":
			content, output = generateGraphvizContent(s), "erd.dot"
		default:
			return fmt.Errorf("unsupported format %q (supported: plantuml, mermaid, graphviz)", docsFormat)
		}
		if docsOutput != "" {
			output = docsOutput
		}

		if output == "-" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), content)
			return err
		}
		if err := os.WriteFile(output, []byte(content), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ ERD saved to: %s\n", output)
		return nil
	},
}

func init() {
	docsCmd.Flags().StringVarP(&docsFormat, "format", "f", "plantuml", "Output format (plantuml, mermaid, graphviz)")
	docsCmd.Flags().StringVarP(&docsOutput, "output", "o", "", "Output file, - for stdout (default: format-specific filename)")
}

// entity is a table reduced to what the diagrams show.
type entity struct {
	name      string
	columns   []entityColumn
	relations []relation
}

type entityColumn struct {
	name, typ    string
	primary      bool
	foreign      bool
	defaultValue *string
}

// relation is a foreign key from the entity to table.
type relation struct {
	table  string
	column string
}

func entities(s *schema.Schema) []entity {
	var out []entity
	for _, name := range s.Names() {
		t := s.Tables[name]
		e := entity{name: name}

		pk, _ := diff.PrimaryKeyColumns(t)
		var fkColumns []string
		for _, k := range diff.TableKeys(t) {
			if k.Kind != diff.KeyForeign {
				continue
			}
			fkColumns = append(fkColumns, k.Columns...)
			if ref, _, ok := k.References(); ok {
				e.relations = append(e.relations, relation{table: ref, column: strings.Join(k.Columns, ", ")})
			}
		}

		for _, c := range t.OrderedColumns() {
			lower := strings.ToLower(c.Name)
			e.columns = append(e.columns, entityColumn{
				name:         c.Name,
				typ:          strings.ToUpper(c.Type),
				primary:      slices.Contains(pk, lower),
				foreign:      slices.Contains(fkColumns, lower),
				defaultValue: c.Default,
			})
		}
		out = append(out, e)
	}
	return out
}

func generatePlantUMLContent(s *schema.Schema) string {
	var content strings.Builder

	content.WriteString("@startuml\n")
	content.WriteString("!theme plain\n")
	content.WriteString("skinparam linetype ortho\n\n")

	all := entities(s)
	for _, e := range all {
		content.WriteString(fmt.Sprintf("entity \"%s\" {\n", e.name))
		for _, col := range e.columns {
			line := fmt.Sprintf("  %s : %s", col.name, col.typ)
			if col.primary {
				line += " <<PK>>"
			}
			if col.foreign {
				line += " <<FK>>"
			}
			if col.defaultValue != nil {
				line += fmt.Sprintf(" <<DEFAULT: %s>>", *col.defaultValue)
			}
			content.WriteString(line + "\n")
		}
		content.WriteString("}\n\n")
	}

	for _, e := range all {
		for _, r := range e.relations {
			content.WriteString(fmt.Sprintf("\"%s\" ||--o{ \"%s\" : \"%s\"\n", r.table, e.name, r.column))
		}
	}

	content.WriteString("@enduml\n")
	return content.String()
}

func generateMermaidContent(s *schema.Schema) string {
	var content strings.Builder

	content.WriteString("# Database Schema ERD\n\n")
	content.WriteString("```mermaid\nerDiagram\n")

	all := entities(s)
	for _, e := range all {
		content.WriteString(fmt.Sprintf("    %s {\n", e.name))
		for _, col := range e.columns {
			line := fmt.Sprintf("        %s %s", mermaidType(col.typ), col.name)
			switch {
			case col.primary && col.foreign:
				line += " PK, FK"
			case col.primary:
				line += " PK"
			case col.foreign:
				line += " FK"
			}
			content.WriteString(line + "\n")
		}
		content.WriteString("    }\n")
	}

	for _, e := range all {
		for _, r := range e.relations {
			content.WriteString(fmt.Sprintf("    %s ||--o{ %s : \"%s\"\n", r.table, e.name, r.column))
		}
	}

	content.WriteString("```\n")
	return content.String()
}

// mermaidType drops the parts of a type Mermaid cannot parse, such as
// "(10,2)" in DECIMAL(10,2).
func mermaidType(typ string) string {
	if i := strings.IndexAny(typ, "( "); i > 0 {
		return typ[:i]
	}
	return typ
}

func generateGraphvizContent(s *schema.Schema) string {
	var content strings.Builder

	content.WriteString("digraph ERD {\n")
	content.WriteString("  rankdir=LR;\n")
	content.WriteString("  node [shape=record];\n\n")

	all := entities(s)
	for _, e := range all {
		content.WriteString(fmt.Sprintf("  \"%s\" [label=\"%s|", e.name, e.name))
		var columns []string
		for _, col := range e.columns {
			line := fmt.Sprintf("%s: %s", col.name, col.typ)
			if col.primary {
				line += " (PK)"
			}
			if col.foreign {
				line += " (FK)"
			}
			columns = append(columns, line)
		}
		content.WriteString(strings.Join(columns, "\\l"))
		content.WriteString("\\l\"];\n")
	}

	for _, e := range all {
		for _, r := range e.relations {
			content.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [label=\"%s\"];\n", r.table, e.name, r.column))
		}
	}

	content.WriteString("}\n")
	return content.String()
}
