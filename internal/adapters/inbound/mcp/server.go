package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/tinybirdco/forward-migration-checker/internal/domain/engine"
)

// NewForwardCheckMCPServer creates an MCP server with the forward-check tools
// and resources registered. projectPath is the Tinybird project they act on.
func NewForwardCheckMCPServer(projectPath string, opts engine.Options) *server.MCPServer {
	s := server.NewMCPServer(
		"forward-check",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath, opts)
	registerResources(s, projectPath, opts)

	return s
}
