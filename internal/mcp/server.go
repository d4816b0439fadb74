package mcp

import (
	"context"
	"encoding/json"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"sheetdash/internal/service"
)

// Name is the server name announced during initialization.
const Name = "sheetdash"

// Server exposes the dashboard as MCP tools.
type Server struct {
	svc     *service.Service
	mermaid bool
	inner   *sdk.Server
}

// NewServer creates a new MCP server and registers its tools. mermaid adds
// the rendered charts as extra text blocks to get_dashboard results.
func NewServer(svc *service.Service, version string, mermaid bool) *Server {
	s := &Server{
		svc:     svc,
		mermaid: mermaid,
		inner:   sdk.NewServer(&sdk.Implementation{Name: Name, Version: version}, nil),
	}
	s.registerTools()
	return s
}

// Start serves the stdio transport until the client disconnects or ctx is done.
func (s *Server) Start(ctx context.Context) error {
	log.Info().Msg("MCP Server starting Stdio loop")
	return s.inner.Run(ctx, &sdk.StdioTransport{})
}

// Connect serves an arbitrary transport.
func (s *Server) Connect(ctx context.Context, t sdk.Transport) (*sdk.ServerSession, error) {
	return s.inner.Connect(ctx, t, nil)
}

func formatResult(data any) string {
	out, _ := json.MarshalIndent(data, "", "  ")
	return string(out)
}

func textResult(texts ...string) *sdk.CallToolResult {
	res := &sdk.CallToolResult{}
	for _, t := range texts {
		res.Content = append(res.Content, &sdk.TextContent{Text: t})
	}
	return res
}
