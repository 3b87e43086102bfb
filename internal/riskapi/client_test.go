// ABOUTME: Tests for the risk service client
// ABOUTME: Runs a chi router in httptest that mimics the service's endpoints

package riskapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/harper/hazardwatch/internal/models"
)

const testToken = "secret-token"

const dashboardPayload = `{
  "user": {"id": 1, "username": "minji", "email": "minji@example.com", "full_name": "Kim Minji", "created_at": "2024-05-01T09:00:00"},
  "recent_searches": [
    {"id": 12, "latitude": 37.5665, "longitude": 126.978, "risk_probability": 0.35, "searched_at": "2024-05-02T10:11:12.123456"},
    {"id": 11, "latitude": 37.4979, "longitude": 127.0276, "risk_probability": null, "searched_at": "2024-05-01T08:00:00"}
  ],
  "reports": [
    {"id": 3, "confidence": 0.82, "status": "verified", "created_at": "2024-04-30T12:00:00"}
  ]
}`

type fakeService struct {
	lastRequest riskRequest
	riskStatus  int
	delay       time.Duration
}

func (f *fakeService) router() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("Authorization") != "Bearer "+testToken {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"detail":"Invalid token"}`)
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Post("/api/location/risk", func(w http.ResponseWriter, req *http.Request) {
		if f.delay > 0 {
			time.Sleep(f.delay)
		}
		if f.riskStatus != 0 {
			w.WriteHeader(f.riskStatus)
			_, _ = io.WriteString(w, `{"detail":"Risk assessment failed: model offline"}`)
			return
		}
		if err := json.NewDecoder(req.Body).Decode(&f.lastRequest); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, `{
  "location": {"latitude": 37.5665, "longitude": 126.978},
  "risk_assessment": {
    "risk_level": "medium",
    "probability": 0.35,
    "factors": ["Old water pipes in area", "High rainfall last month"],
    "nearby_risks": [{"latitude": 37.5675, "longitude": 126.979, "risk_level": "high", "probability": 0.78}]
  },
  "timestamp": "2024-05-02T10:11:12.123456"
}`)
	})
	r.Get("/api/user/dashboard", func(w http.ResponseWriter, req *http.Request) {
		_, _ = io.WriteString(w, dashboardPayload)
	})
	return r
}

func newTestClient(t *testing.T, svc *fakeService, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(svc.router())
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", token, time.Second)
}

func TestQueryRisk(t *testing.T) {
	svc := &fakeService{}
	c := newTestClient(t, svc, testToken)

	rec, err := c.QueryRisk(context.Background(), 37.5665, 126.978)
	if err != nil {
		t.Fatalf("QueryRisk: %v", err)
	}

	want := models.RiskRecord{
		Probability: 0.35,
		Factors:     []string{"Old water pipes in area", "High rainfall last month"},
		RiskLevel:   "medium",
		NearbyRisks: []models.NearbyRisk{{Latitude: 37.5675, Longitude: 126.979, RiskLevel: "high", Probability: 0.78}},
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("risk record mismatch (-want +got):\n%s", diff)
	}

	if svc.lastRequest.Radius != DefaultRadiusMeters {
		t.Errorf("radius = %v, want %v", svc.lastRequest.Radius, DefaultRadiusMeters)
	}
	if svc.lastRequest.Latitude != 37.5665 || svc.lastRequest.Longitude != 126.978 {
		t.Errorf("request coordinates = %+v", svc.lastRequest)
	}
}

func TestQueryRiskCustomRadius(t *testing.T) {
	svc := &fakeService{}
	c := newTestClient(t, svc, testToken).WithRadius(250)

	if _, err := c.QueryRisk(context.Background(), 37.5, 127.0); err != nil {
		t.Fatalf("QueryRisk: %v", err)
	}
	if svc.lastRequest.Radius != 250 {
		t.Errorf("radius = %v, want 250", svc.lastRequest.Radius)
	}
}

func TestQueryRiskServerError(t *testing.T) {
	svc := &fakeService{riskStatus: http.StatusInternalServerError}
	c := newTestClient(t, svc, testToken)

	_, err := c.QueryRisk(context.Background(), 37.5, 127.0)
	if !errors.Is(err, ErrRemoteQueryFailed) {
		t.Fatalf("expected ErrRemoteQueryFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "model offline") {
		t.Errorf("error should carry the service detail: %v", err)
	}
}

func TestQueryRiskUnauthorized(t *testing.T) {
	c := newTestClient(t, &fakeService{}, "wrong")

	_, err := c.QueryRisk(context.Background(), 37.5, 127.0)
	if !errors.Is(err, ErrRemoteQueryFailed) {
		t.Fatalf("expected ErrRemoteQueryFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error should mention status: %v", err)
	}
}

func TestQueryRiskInvalidCoordinates(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", testToken, time.Second)

	_, err := c.QueryRisk(context.Background(), 91, 0)
	if !errors.Is(err, ErrRemoteQueryFailed) {
		t.Fatalf("expected ErrRemoteQueryFailed, got %v", err)
	}
}

func TestQueryRiskContextCancelled(t *testing.T) {
	svc := &fakeService{delay: 200 * time.Millisecond}
	c := newTestClient(t, svc, testToken)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.QueryRisk(ctx, 37.5, 127.0)
	if !errors.Is(err, ErrRemoteQueryFailed) {
		t.Fatalf("expected ErrRemoteQueryFailed, got %v", err)
	}
}

func TestQueryDashboard(t *testing.T) {
	c := newTestClient(t, &fakeService{}, testToken)

	data, err := c.QueryDashboard(context.Background(), "")
	if err != nil {
		t.Fatalf("QueryDashboard: %v", err)
	}

	if data.User == nil || data.User.Username != "minji" || data.User.ID != "1" {
		t.Errorf("user = %+v", data.User)
	}
	if len(data.RecentSearches) != 2 {
		t.Fatalf("expected 2 searches, got %d", len(data.RecentSearches))
	}
	first := data.RecentSearches[0]
	if first.ID != "12" || first.RiskProbability == nil || *first.RiskProbability != 0.35 {
		t.Errorf("first search = %+v", first)
	}
	if data.RecentSearches[1].RiskProbability != nil {
		t.Errorf("null risk should decode as nil")
	}
	wantAt := time.Date(2024, 5, 2, 10, 11, 12, 123456000, time.UTC)
	if !first.SearchedAt.Equal(wantAt) {
		t.Errorf("searched_at = %v, want %v", first.SearchedAt.Time, wantAt)
	}
	if len(data.Reports) != 1 || data.Reports[0].Status != models.StatusVerified {
		t.Errorf("reports = %+v", data.Reports)
	}
}

func TestQueryDashboardUserMismatch(t *testing.T) {
	c := newTestClient(t, &fakeService{}, testToken)

	_, err := c.QueryDashboard(context.Background(), "2")
	if !errors.Is(err, ErrRemoteQueryFailed) {
		t.Fatalf("expected ErrRemoteQueryFailed, got %v", err)
	}
}

func TestQueryDashboardEmptyListsNotNil(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/user/dashboard", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"user": null, "recent_searches": null, "reports": []}`)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	data, err := NewClient(srv.URL, "", time.Second).QueryDashboard(context.Background(), "")
	if err != nil {
		t.Fatalf("QueryDashboard: %v", err)
	}
	if data.RecentSearches == nil || data.Reports == nil {
		t.Errorf("expected empty non-nil slices, got %+v", data)
	}
}
