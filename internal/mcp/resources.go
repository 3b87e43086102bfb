// ABOUTME: MCP resource definitions
// ABOUTME: Provides read-only dashboard and GeoJSON history views for AI agents

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harper/hazardwatch/internal/geojson"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	dashboardURI = "hazardwatch://dashboard"
	historyURI   = "hazardwatch://history.geojson"
)

func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		Name:        dashboardURI,
		Description: "Dashboard summary: statistics, status breakdown and recent searches",
		URI:         dashboardURI,
		MIMEType:    "application/json",
	}, s.handleDashboardResource)

	s.mcp.AddResource(&mcp.Resource{
		Name:        historyURI,
		Description: "Search history as a GeoJSON FeatureCollection of risk-coloured points",
		URI:         historyURI,
		MIMEType:    "application/geo+json",
	}, s.handleHistoryResource)
}

func (s *Server) handleDashboardResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	view, err := s.dashboard.Build(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	jsonBytes, _ := json.MarshalIndent(dashboardOutput(view, s.locale), "", "  ") //nolint:errchkjson // output is always serializable

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      dashboardURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		},
	}, nil
}

func (s *Server) handleHistoryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	view, err := s.dashboard.Build(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	data, err := geojson.ToPointsFeatureCollection(view.Searches).ToJSONIndent()
	if err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      historyURI,
				MIMEType: "application/geo+json",
				Text:     string(data),
			},
		},
	}, nil
}
