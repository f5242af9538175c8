package mcp

import (
	"context"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewServer(t *testing.T) {
	s := NewServer("feature-engine", "test", zap.NewNop())

	require.NotNil(t, s)
	assert.NotNil(t, s.MCP())
}

func TestRegisterTool(t *testing.T) {
	s := NewServer("feature-engine", "test", zap.NewNop())

	tool := mcplib.NewTool("ping", mcplib.WithDescription("test tool"))
	s.RegisterTool(tool, func(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		return mcplib.NewToolResultText("pong"), nil
	})
}

func TestNewStreamableHTTPServer(t *testing.T) {
	s := NewServer("feature-engine", "test", zap.NewNop())

	assert.NotNil(t, s.NewStreamableHTTPServer())
}
