package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rivaiamin/ddl-compare/diff"
	"github.com/rivaiamin/ddl-compare/loader"
	"github.com/rivaiamin/ddl-compare/schema"
)

// compareFlags are the comparator switches shared by diff and generate.
type compareFlags struct {
	detectDrops   bool
	preserveOrder bool
}

func (f *compareFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.detectDrops, "detect-drops", false, "Report tables and columns that exist only in DEST")
	cmd.Flags().BoolVar(&f.preserveOrder, "preserve-order", false, "Place added columns with AFTER/FIRST")
}

// options merges the config file and environment with flags set on the
// command line.
func (f *compareFlags) options(cmd *cobra.Command) diff.Options {
	opts := diff.Options{
		DetectDrops:         cfg.DetectDrops,
		PreserveColumnOrder: cfg.PreserveColumnOrder,
	}
	if cmd.Flags().Changed("detect-drops") {
		opts.DetectDrops = f.detectDrops
	}
	if cmd.Flags().Changed("preserve-order") {
		opts.PreserveColumnOrder = f.preserveOrder
	}
	return opts
}

// loadPair loads the source and destination schemas and applies the
// configured table filter to both.
func loadPair(sourcePath, destPath string) (*schema.Schema, *schema.Schema, error) {
	if sourcePath == loader.Stdin && destPath == loader.Stdin {
		return nil, nil, fmt.Errorf("only one of SOURCE and DEST can be read from stdin")
	}

	source, err := loader.LoadSchema(sourcePath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading source: %w", err)
	}
	dest, err := loader.LoadSchema(destPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading destination: %w", err)
	}

	if cfg.Filtered() {
		keep, err := cfg.TableFilter()
		if err != nil {
			return nil, nil, err
		}
		source, dest = source.Filter(keep), dest.Filter(keep)
		slog.Debug("tables filtered", "source", len(source.Tables), "dest", len(dest.Tables))
	}
	return source, dest, nil
}
