package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rivaiamin/ddl-compare/config"
	"github.com/rivaiamin/ddl-compare/utils"
)

var (
	configPath string
	cfg        = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "ddl-compare",
	Short: "Compare CREATE TABLE declarations and generate migration scripts",
	Long: `ddl-compare reads two schema declarations (a source and a destination)
and prints the ALTER/CREATE/DROP statements that turn the destination into
the source. It never connects to a database.

Examples:

  ddl-compare diff desired.sql current.sql
  ddl-compare diff desired.sql current.sql --detect-drops --preserve-order
  mysqldump --no-data app | ddl-compare diff desired.sql -
  ddl-compare generate desired.sql current.sql -o migrations/001.sql
  ddl-compare validate desired.sql
  ddl-compare inspect desired.sql --format yaml > snapshot.yaml
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		utils.LoadEnv()
		utils.InitSlog()

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

// Register subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default "+config.DefaultPath+" if present)")

	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(initCmd)
}
