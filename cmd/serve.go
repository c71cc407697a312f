// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/refactura/refactura/internal/tool"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extraction engine as an MCP tool over stdio",
	Long: `Serve starts a Model Context Protocol server on stdin/stdout exposing
the extract_invoices tool, so MCP clients can run batch extractions
without shelling out to the CLI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server := mcp.NewServer(&mcp.Implementation{
			Name:    "refactura",
			Version: Version,
		}, nil)
		mcp.AddTool(server, tool.MetadataExtractInvoices, tool.ExtractInvoices)
		return server.Run(cmd.Context(), &mcp.StdioTransport{})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
