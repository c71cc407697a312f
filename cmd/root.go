// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "refactura",
	Short: "Extract canonical fields from XML invoice batches",
	Long: `refactura ingests structured XML invoice documents (CFDI 3.3/4.0,
UBL 2.1, or custom dialects declared in YAML) and extracts a normalized
set of fields per invoice into tabular rows suitable for CSV export.

Files that cannot be parsed or matched to a known dialect produce an
error row; non-fatal anomalies are attached to the record as warnings.
One bad file never affects the rest of the batch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the CLI logger. Output goes to stderr so it never mixes
// with CSV written to stdout (or the MCP stdio transport).
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
