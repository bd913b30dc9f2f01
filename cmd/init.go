package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rivaiamin/ddl-compare/config"
	"github.com/rivaiamin/ddl-compare/utils"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a commented " + config.DefaultPath + " in the current directory",
	Long: `Write an example config file with every setting and its default value.
An existing file is never overwritten.

Examples:
  ddl-compare init
  ddl-compare init --config ci/ddlcompare.yaml`,
	Args: cobra.NoArgs,
	// The config file does not exist yet, so only the environment is loaded.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		utils.LoadEnv()
		utils.InitSlog()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultPath
		}
		if err := config.WriteExample(path); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "✅ Created", path)
		fmt.Fprintln(out, "📝 Edit it to set table filters and comparison defaults")
		fmt.Fprintln(out, "🚀 Run 'ddl-compare diff SOURCE DEST' to compare schemas")
		return nil
	},
}
