package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rivaiamin/ddl-compare/loader"
	"github.com/rivaiamin/ddl-compare/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Check schema declarations for structural problems",
	Long: `Validate one or more schema files before comparing them.

This command checks:
- Table, column and index names (length limits, reserved words)
- Data types and default values
- Duplicate columns and indexes
- Index columns that do not exist in the table
- Foreign key references
- Tables without a primary key

Examples:
  ddl-compare validate schema.sql
  ddl-compare validate desired.sql current.sql
  ddl-compare validate schema.sql --format json
  mysqldump --no-data app | ddl-compare validate -
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if validateFormat != "text" && validateFormat != "json" {
			return fmt.Errorf("unsupported format %q (supported: text, json)", validateFormat)
		}

		failed := 0
		for _, path := range args {
			ok, err := validateFile(cmd.OutOrStdout(), path)
			if err != nil {
				return err
			}
			if !ok {
				failed++
			}
		}

		if failed > 0 {
			return fmt.Errorf("schema validation failed for %d of %d file(s)", failed, len(args))
		}
		return nil
	},
}

var validateFormat string

func init() {
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Output format (text, json)")
}

func validateFile(w io.Writer, path string) (bool, error) {
	s, err := loader.LoadSchema(path)
	if err != nil {
		return false, fmt.Errorf("failed to load schema: %w", err)
	}

	result := validator.NewSchemaValidator().Validate(s)
	if validateFormat == "json" {
		return result.Valid, outputJSON(w, result)
	}
	if path != loader.Stdin {
		fmt.Fprintf(w, "📄 %s\n", path)
	}
	return result.Valid, outputText(w, result)
}

func outputJSON(w io.Writer, result *validator.ValidationResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputText(w io.Writer, result *validator.ValidationResult) error {
	if result.Valid {
		color.New(color.FgGreen).Fprintln(w, "✅ Schema validation passed!")
	} else {
		color.New(color.FgRed).Fprintln(w, "❌ Schema validation failed!")
	}

	printIssues(w, "🔴 Errors", result.Errors)
	printIssues(w, "🟡 Warnings", result.Warnings)
	printIssues(w, "🔵 Info", result.Info)

	fmt.Fprintf(w, "\n📊 Summary:\n")
	fmt.Fprintf(w, "  • Errors: %d\n", len(result.Errors))
	fmt.Fprintf(w, "  • Warnings: %d\n", len(result.Warnings))
	fmt.Fprintf(w, "  • Info: %d\n", len(result.Info))

	if result.Valid {
		fmt.Fprintf(w, "\n🎉 Your schema is valid and ready to compare!\n\n")
	} else {
		fmt.Fprintf(w, "\n💡 Fix the errors above before generating migrations.\n\n")
	}
	return nil
}

func printIssues(w io.Writer, title string, issues []validator.ValidationError) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s (%d):\n", title, len(issues))
	for i, issue := range issues {
		fmt.Fprintf(w, "  %d. ", i+1)
		if issue.Table != "" {
			fmt.Fprintf(w, "[%s]", issue.Table)
		}
		if issue.Column != "" {
			fmt.Fprintf(w, ".%s", issue.Column)
		}
		if issue.Index != "" {
			fmt.Fprintf(w, " (index: %s)", issue.Index)
		}
		fmt.Fprintf(w, ": %s\n", issue.Message)
	}
}
