// Package mcp serves the game to MCP clients.
package mcp

import (
	"os"

	"github.com/myrjola/murderai/cmd/cli/app"
	"github.com/myrjola/murderai/internal/errors"
	"github.com/myrjola/murderai/internal/mcpserver"
	"github.com/spf13/cobra"
)

// Version is reported to MCP clients.
var Version = "dev"

var Serve = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the game as MCP tools over stdio",
	Long: `Starts an MCP server over stdin and stdout so that an agent can start games, gather evidence and accuse
suspects. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger := app.NewLogger(cmd.ErrOrStderr(), verbose)
		a, err := app.Open(cmd.Context(), os.Environ(), logger)
		if err != nil {
			return errors.Wrap(err, "open app")
		}
		defer func() {
			_ = a.Close()
		}()
		return mcpserver.New(a.Engine, Version, logger).Run(cmd.Context())
	},
}
