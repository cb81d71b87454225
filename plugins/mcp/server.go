// Package mcp exposes the tool registry as a Model Context Protocol service
// and provides a client that invokes tools on such a service.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/va6996/ecochat/log"
	"github.com/va6996/ecochat/tools"
)

const serverName = "ecochat-tools"

// Server serves every tool in a registry over MCP.
type Server struct {
	mcp      *sdk.Server
	registry *tools.Registry
}

// NewServer registers the registry's tools with a new MCP server.
func NewServer(registry *tools.Registry, version string) *Server {
	s := &Server{
		mcp:      sdk.NewServer(&sdk.Implementation{Name: serverName, Version: version}, nil),
		registry: registry,
	}
	for _, m := range registry.Manifests() {
		schema := m.InputSchema
		if schema == nil {
			schema = &jsonschema.Schema{Type: "object"}
		}
		s.mcp.AddTool(&sdk.Tool{
			Name:        m.Name,
			Description: m.Description,
			InputSchema: schema,
		}, s.handler(m.Name))
	}
	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *sdk.Server {
	return s.mcp
}

// Handler serves the streamable HTTP transport. Sessions are stateless so
// callers need no explicit initialize round trip.
func (s *Server) Handler() http.Handler {
	return sdk.NewStreamableHTTPHandler(func(*http.Request) *sdk.Server {
		return s.mcp
	}, &sdk.StreamableHTTPOptions{Stateless: true})
}

func (s *Server) handler(name string) sdk.ToolHandler {
	return func(ctx context.Context, req *sdk.CallToolRequest) (*sdk.CallToolResult, error) {
		args := map[string]any{}
		if req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return errorResult(tools.Failed(name, fmt.Errorf("invalid arguments: %w", err))), nil
			}
		}

		res, err := s.registry.ExecuteTool(ctx, name, args)
		if err != nil {
			log.Warnf(ctx, "MCP call to %s failed: %v", name, err)
			return errorResult(tools.Failed(name, err)), nil
		}
		return toCallResult(res), nil
	}
}

func toCallResult(res *tools.Result) *sdk.CallToolResult {
	body, err := res.JSON()
	if err != nil {
		body = []byte(res.Text())
	}
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: string(body)}},
		IsError: res.Status == tools.StatusError,
	}
}

func errorResult(res *tools.Result) *sdk.CallToolResult {
	out := toCallResult(res)
	out.IsError = true
	return out
}
