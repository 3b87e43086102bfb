// ABOUTME: MCP server initialization and configuration
// ABOUTME: Exposes location, live risk and the dashboard to AI agents

package mcp

import (
	"context"
	"fmt"

	"github.com/harper/hazardwatch/internal/dashboard"
	"github.com/harper/hazardwatch/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Locator acquires a one-shot position fix.
type Locator interface {
	AcquireOnce(ctx context.Context) (models.Position, error)
}

// Server wraps MCP server with the dashboard service.
type Server struct {
	mcp       *mcp.Server
	dashboard *dashboard.Service
	locator   Locator
	locale    string
}

// NewServer creates MCP server with all capabilities. locator may be nil when
// no position platform is configured.
func NewServer(svc *dashboard.Service, locator Locator, locale string) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("dashboard service is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "hazardwatch",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:       mcpServer,
		dashboard: svc,
		locator:   locator,
		locale:    locale,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// locate returns a fresh fix, or nil when no locator is configured.
func (s *Server) locate(ctx context.Context) (*models.Position, error) {
	if s.locator == nil {
		return nil, nil
	}
	pos, err := s.locator.AcquireOnce(ctx)
	if err != nil {
		return nil, err
	}
	return &pos, nil
}
