// ABOUTME: MCP tool definitions and handlers
// ABOUTME: Provides locate, live risk, dashboard and classification tools

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harper/hazardwatch/internal/dashboard"
	"github.com/harper/hazardwatch/internal/location"
	"github.com/harper/hazardwatch/internal/models"
	"github.com/harper/hazardwatch/internal/risk"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// errNoPlatform is returned by tools that need a fix when none can be taken.
var errNoPlatform = errors.New("no position platform configured")

func (s *Server) registerTools() {
	s.registerLocateTool()
	s.registerCurrentRiskTool()
	s.registerDashboardTool()
	s.registerClassifyTool()
}

func textResult(v any) *mcp.CallToolResult {
	jsonBytes, _ := json.MarshalIndent(v, "", "  ") //nolint:errchkjson // output is always serializable
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(jsonBytes)}},
	}
}

// locationError turns a platform failure into the localized user message.
func (s *Server) locationError(err error) error {
	return fmt.Errorf("%s: %w", location.Message(s.locale, err), err)
}

// LocateInput is empty but required for type.
type LocateInput struct{}

// PositionOutput defines output for the locate tool.
type PositionOutput struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

func (s *Server) registerLocateTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "locate",
		Description: "Acquire the device's current position once.",
		InputSchema: map[string]interface{}{
			"type": "object",
		},
	}, s.handleLocate)
}

func (s *Server) handleLocate(ctx context.Context, req *mcp.CallToolRequest, input LocateInput) (*mcp.CallToolResult, PositionOutput, error) {
	pos, err := s.locate(ctx)
	if err != nil {
		return nil, PositionOutput{}, s.locationError(err)
	}
	if pos == nil {
		return nil, PositionOutput{}, errNoPlatform
	}

	output := PositionOutput{Latitude: pos.Latitude, Longitude: pos.Longitude, Accuracy: pos.Accuracy}
	return textResult(output), output, nil
}

// CurrentRiskInput defines input for the current_risk tool. Without
// coordinates the device position is used.
type CurrentRiskInput struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// RiskOutput defines output for risk tools.
type RiskOutput struct {
	Latitude    float64             `json:"latitude"`
	Longitude   float64             `json:"longitude"`
	Probability float64             `json:"probability"`
	Tier        string              `json:"tier"`
	Percent     float64             `json:"percent"`
	Factors     []string            `json:"factors"`
	NearbyRisks []models.NearbyRisk `json:"nearby_risks,omitempty"`
}

func (s *Server) registerCurrentRiskTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "current_risk",
		Description: "Get the sinkhole risk at a coordinate, or at the device's position when none is given. The lookup is recorded in the search history.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"latitude": map[string]interface{}{
					"type":        "number",
					"description": "Latitude coordinate (-90 to 90)",
				},
				"longitude": map[string]interface{}{
					"type":        "number",
					"description": "Longitude coordinate (-180 to 180)",
				},
			},
		},
	}, s.handleCurrentRisk)
}

func (s *Server) handleCurrentRisk(ctx context.Context, req *mcp.CallToolRequest, input CurrentRiskInput) (*mcp.CallToolResult, RiskOutput, error) {
	var pos models.Position
	switch {
	case input.Latitude != nil && input.Longitude != nil:
		pos = models.Position{Latitude: *input.Latitude, Longitude: *input.Longitude}
		if err := pos.Validate(); err != nil {
			return nil, RiskOutput{}, err
		}
	case input.Latitude != nil || input.Longitude != nil:
		return nil, RiskOutput{}, fmt.Errorf("latitude and longitude must be given together")
	default:
		fix, err := s.locate(ctx)
		if err != nil {
			return nil, RiskOutput{}, s.locationError(err)
		}
		if fix == nil {
			return nil, RiskOutput{}, errNoPlatform
		}
		pos = *fix
	}

	current, err := s.dashboard.CurrentRisk(ctx, pos)
	if err != nil {
		return nil, RiskOutput{}, fmt.Errorf("failed to query risk: %w", err)
	}

	factors := current.Record.Factors
	if factors == nil {
		factors = []string{}
	}
	output := RiskOutput{
		Latitude:    pos.Latitude,
		Longitude:   pos.Longitude,
		Probability: risk.Clamp(current.Record.Probability),
		Tier:        current.Classification.Label,
		Percent:     current.Percent,
		Factors:     factors,
		NearbyRisks: current.Record.NearbyRisks,
	}
	return textResult(output), output, nil
}

// DashboardInput defines input for the dashboard_summary tool.
type DashboardInput struct {
	Locate bool `json:"locate,omitempty"`
}

// SearchOutput is one recent search in a dashboard summary.
type SearchOutput struct {
	ID             string   `json:"id"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	Tier           string   `json:"tier"`
	Percent        float64  `json:"percent"`
	SearchedAt     string   `json:"searched_at,omitempty"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}

// ReportOutput is one report in a dashboard summary.
type ReportOutput struct {
	ID         string   `json:"id"`
	Status     string   `json:"status"`
	Confidence *float64 `json:"confidence,omitempty"`
	Tier       string   `json:"tier"`
	Percent    float64  `json:"percent"`
	CreatedAt  string   `json:"created_at,omitempty"`
}

// DashboardOutput defines output for the dashboard_summary tool.
type DashboardOutput struct {
	User         *models.User            `json:"user,omitempty"`
	Position     *models.Position        `json:"position,omitempty"`
	Current      *RiskOutput             `json:"current,omitempty"`
	Summary      models.DashboardSummary `json:"summary"`
	StatusCounts map[string]int          `json:"status_counts"`
	Recent       []SearchOutput          `json:"recent"`
	Reports      []ReportOutput          `json:"reports"`
	SafetyTips   []string                `json:"safety_tips,omitempty"`
	Warnings     []string                `json:"warnings,omitempty"`
}

func (s *Server) registerDashboardTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "dashboard_summary",
		Description: "Summarize the user's hazard dashboard: search and report counts, average risk, status breakdown, the five most recent searches and each report with its confidence tier.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"locate": map[string]interface{}{
					"type":        "boolean",
					"description": "Also acquire the device position and include the live risk there",
				},
			},
		},
	}, s.handleDashboard)
}

func (s *Server) buildView(ctx context.Context, locate bool) (dashboard.View, error) {
	var pos *models.Position
	if locate {
		fix, err := s.locate(ctx)
		if err != nil {
			return dashboard.View{}, s.locationError(err)
		}
		pos = fix
	}
	return s.dashboard.Build(ctx, pos)
}

func (s *Server) handleDashboard(ctx context.Context, req *mcp.CallToolRequest, input DashboardInput) (*mcp.CallToolResult, DashboardOutput, error) {
	view, err := s.buildView(ctx, input.Locate)
	if err != nil {
		return nil, DashboardOutput{}, fmt.Errorf("failed to build dashboard: %w", err)
	}

	output := dashboardOutput(view, s.locale)
	return textResult(output), output, nil
}

func dashboardOutput(view dashboard.View, locale string) DashboardOutput {
	output := DashboardOutput{
		User:         view.User,
		Position:     view.Position,
		Summary:      view.Summary,
		StatusCounts: make(map[string]int, len(view.StatusCounts)),
		Recent:       make([]SearchOutput, 0, len(view.Recent)),
		Reports:      make([]ReportOutput, 0, len(view.ReportRows)),
		Warnings:     view.Warnings,
	}
	for status, n := range view.StatusCounts {
		output.StatusCounts[string(status)] = n
	}
	for _, row := range view.Recent {
		so := SearchOutput{
			ID:             string(row.Entry.ID),
			Latitude:       row.Entry.Latitude,
			Longitude:      row.Entry.Longitude,
			Tier:           row.Classification.Label,
			Percent:        row.Percent,
			DistanceMeters: row.DistanceMeters,
		}
		if !row.Entry.SearchedAt.IsZero() {
			so.SearchedAt = row.Entry.SearchedAt.UTC().Format(time.RFC3339)
		}
		output.Recent = append(output.Recent, so)
	}
	for _, row := range view.ReportRows {
		ro := ReportOutput{
			ID:         string(row.Entry.ID),
			Status:     string(row.Entry.Status),
			Confidence: row.Entry.Confidence,
			Tier:       row.Classification.Label,
			Percent:    row.Percent,
		}
		if !row.Entry.CreatedAt.IsZero() {
			ro.CreatedAt = row.Entry.CreatedAt.UTC().Format(time.RFC3339)
		}
		output.Reports = append(output.Reports, ro)
	}
	if view.Position != nil && view.Current != nil {
		output.Current = &RiskOutput{
			Latitude:    view.Position.Latitude,
			Longitude:   view.Position.Longitude,
			Probability: risk.Clamp(view.Current.Record.Probability),
			Tier:        view.Current.Classification.Label,
			Percent:     view.Current.Percent,
			Factors:     view.Current.Record.Factors,
			NearbyRisks: view.Current.Record.NearbyRisks,
		}
		output.SafetyTips = dashboard.SafetyTips(locale)
	}
	return output
}

// ClassifyInput defines input for the classify_risk tool.
type ClassifyInput struct {
	Probability float64 `json:"probability"`
}

// ClassifyOutput defines output for the classify_risk tool.
type ClassifyOutput struct {
	Probability float64 `json:"probability"`
	Tier        string  `json:"tier"`
	Style       string  `json:"style"`
	Percent     float64 `json:"percent"`
}

func (s *Server) registerClassifyTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "classify_risk",
		Description: "Classify a risk probability as low (<0.3), medium (<0.7) or high.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"probability": map[string]interface{}{
					"type":        "number",
					"description": "Risk probability; values outside 0..1 are clamped",
				},
			},
			"required": []string{"probability"},
		},
	}, s.handleClassify)
}

func (s *Server) handleClassify(_ context.Context, req *mcp.CallToolRequest, input ClassifyInput) (*mcp.CallToolResult, ClassifyOutput, error) {
	c := risk.Classify(input.Probability)
	output := ClassifyOutput{
		Probability: risk.Clamp(input.Probability),
		Tier:        c.Label,
		Style:       c.Style,
		Percent:     risk.Percent(input.Probability),
	}
	return textResult(output), output, nil
}
