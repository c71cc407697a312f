// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/refactura/refactura/internal/invoice"
)

var dialectsCmd = &cobra.Command{
	Use:   "dialects",
	Short: "List registered invoice dialects in priority order",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := invoice.Default()
		if dialectsPath != "" {
			var err error
			registry, err = invoice.LoadRegistry(dialectsPath)
			if err != nil {
				return err
			}
		}
		for _, name := range registry.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	dialectsCmd.Flags().StringVar(&dialectsPath, "dialects", "", "YAML file with additional dialect definitions")
	rootCmd.AddCommand(dialectsCmd)
}
