// Package mcpserver exposes the gateway over the Model Context Protocol:
// stdio for local agent hosts, SSE for remote ones. It is a thin adapter;
// every rule lives in the gateway.
package mcpserver

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/AltairaLabs/toolgate/internal/gateway"
)

const (
	serverName    = "toolgate"
	serverVersion = "1.0.0"
)

// Server binds the gateway to an MCP server instance.
type Server struct {
	server  *server.MCPServer
	gateway *gateway.Gateway
	logger  *slog.Logger
}

// New creates the MCP binding with all tools, resources, and prompts
// registered.
func New(gw *gateway.Gateway, logger *slog.Logger) *Server {
	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
	)

	s := &Server{server: mcpServer, gateway: gw, logger: logger}
	s.registerTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

// Serve runs the server on stdio until the client disconnects.
func (s *Server) Serve() error {
	s.logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s.server)
}

// ServeSSE runs the server over HTTP/SSE on addr.
func (s *Server) ServeSSE(addr string) error {
	s.logger.Info("starting MCP server over SSE", "address", addr, "base_path", "/mcp")
	sseServer := server.NewSSEServer(s.server,
		server.WithBaseURL("http://"+addr),
		server.WithStaticBasePath("/mcp"),
	)
	return sseServer.Start(addr)
}
