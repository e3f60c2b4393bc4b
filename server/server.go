// Package server exposes the memory and scratchpad stores as MCP tools
// over stdio. Tool results are plain text aimed at LLM agents, not
// structured payloads.
package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/memalpha/memalpha-go/logging"
	"github.com/memalpha/memalpha-go/memory"
	"github.com/memalpha/memalpha-go/scratchpad"
)

// Version is reported to MCP clients during initialization.
const Version = "0.1.0"

// Server wires the stores into an MCP server instance.
type Server struct {
	memories *memory.Store
	pads     *scratchpad.Store
	mcp      *mcp.Server
}

// New builds a server over the given stores and registers all tools.
func New(memories *memory.Store, pads *scratchpad.Store) *Server {
	s := &Server{
		memories: memories,
		pads:     pads,
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    "memalpha",
			Version: Version,
		}, nil),
	}
	s.registerMemoryTools()
	s.registerScratchpadTools()
	return s
}

// Run serves MCP over stdin/stdout until the client disconnects or ctx is
// cancelled. Anything the process wants to log must go to stderr.
func (s *Server) Run(ctx context.Context) error {
	logging.From(ctx).Info("starting MCP server",
		"provider", s.memories.Provider().Name(),
		"model", s.memories.Provider().Model())
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
