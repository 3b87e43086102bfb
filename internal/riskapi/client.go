// ABOUTME: HTTP client for the remote sinkhole risk service
// ABOUTME: Queries current-location risk and the signed-in user's dashboard history

package riskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/harper/hazardwatch/internal/models"
)

// ErrRemoteQueryFailed wraps every failure talking to the risk service.
var ErrRemoteQueryFailed = errors.New("remote query failed")

// DefaultRadiusMeters is the search radius sent with risk queries.
const DefaultRadiusMeters = 1000

// Client talks to the risk service.
type Client struct {
	baseURL    string
	token      string
	radius     float64
	httpClient *http.Client
}

// NewClient creates a client. token is sent as a bearer credential when set.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		radius:     DefaultRadiusMeters,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithRadius sets the search radius in meters.
func (c *Client) WithRadius(meters float64) *Client {
	if meters > 0 {
		c.radius = meters
	}
	return c
}

type riskRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius"`
}

// RiskResponse is the full answer of the risk endpoint.
type RiskResponse struct {
	Location struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	RiskAssessment models.RiskRecord `json:"risk_assessment"`
	Timestamp      models.Timestamp  `json:"timestamp"`
}

// QueryRisk asks the service for the risk at a coordinate.
func (c *Client) QueryRisk(ctx context.Context, lat, lng float64) (models.RiskRecord, error) {
	if err := models.ValidateCoordinates(lat, lng); err != nil {
		return models.RiskRecord{}, fmt.Errorf("%w: %v", ErrRemoteQueryFailed, err)
	}

	body, err := json.Marshal(riskRequest{Latitude: lat, Longitude: lng, Radius: c.radius})
	if err != nil {
		return models.RiskRecord{}, fmt.Errorf("%w: encode request: %v", ErrRemoteQueryFailed, err)
	}

	var resp RiskResponse
	if err := c.do(ctx, http.MethodPost, "/api/location/risk", bytes.NewReader(body), &resp); err != nil {
		return models.RiskRecord{}, err
	}
	return resp.RiskAssessment, nil
}

// QueryDashboard fetches the history of the account behind the token. The
// service resolves the user from the credential, so userID is advisory and
// only checked against the returned user when both are known.
func (c *Client) QueryDashboard(ctx context.Context, userID models.ID) (models.DashboardData, error) {
	var data models.DashboardData
	if err := c.do(ctx, http.MethodGet, "/api/user/dashboard", nil, &data); err != nil {
		return models.DashboardData{}, err
	}
	if userID != "" && data.User != nil && data.User.ID != "" && data.User.ID != userID {
		return models.DashboardData{}, fmt.Errorf("%w: dashboard belongs to user %s, not %s", ErrRemoteQueryFailed, data.User.ID, userID)
	}
	if data.RecentSearches == nil {
		data.RecentSearches = []models.SearchHistoryEntry{}
	}
	if data.Reports == nil {
		data.Reports = []models.ReportEntry{}
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteQueryFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrRemoteQueryFailed, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s %s: %s", ErrRemoteQueryFailed, method, path, errorDetail(resp))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrRemoteQueryFailed, path, err)
	}
	return nil
}

// errorDetail extracts the service's {"detail": ...} message when present.
func errorDetail(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Detail != "" {
		return fmt.Sprintf("status %d: %s", resp.StatusCode, payload.Detail)
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
