package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	mcpadapter "github.com/tinybirdco/forward-migration-checker/internal/adapters/inbound/mcp"
)

func newMCPCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the forward-check MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(v))
	return cmd
}

func newMCPServeCmd(v *viper.Viper) *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the forward-check MCP server (stdio)",
		Long:  "Start the MCP server using stdio transport so AI coding assistants can check a project, plan fixes and apply them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := mcpadapter.NewForwardCheckMCPServer(projectPath, engineOptions(v))
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", defaultProjectPath, "Project path")

	return cmd
}
