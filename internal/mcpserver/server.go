package mcpserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/svenkata/TabChatAPI/internal/domain/tabModel"
	"github.com/svenkata/TabChatAPI/internal/rag/retrieval"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server exposes tab search to MCP clients over stdio.
type Server struct {
	searcher *retrieval.Searcher
	tabs     tabModel.TabStore
	userId   string
	server   *mcp.Server
}

func NewServer(searcher *retrieval.Searcher, tabs tabModel.TabStore, userId string) (*Server, error) {
	if searcher == nil || tabs == nil {
		return nil, errors.New("searcher and tab store are required")
	}

	impl := &mcp.Implementation{
		Name:    "tabchat",
		Version: Version,
	}

	s := &Server{
		searcher: searcher,
		tabs:     tabs,
		userId:   userId,
		server:   mcp.NewServer(impl, nil),
	}

	s.registerTools()

	return s, nil
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
