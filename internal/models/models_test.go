// ABOUTME: Unit tests for data models
// ABOUTME: Tests constructors, validators, and JSON decoding of remote payloads

package models

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"
)

func TestNewSearchEntry(t *testing.T) {
	risk := 0.42
	before := time.Now().UTC()
	entry := NewSearchEntry(37.5665, 126.978, &risk)

	if entry.ID == "" {
		t.Error("expected generated ID")
	}
	if entry.RiskProbability == nil || *entry.RiskProbability != risk {
		t.Error("expected risk probability 0.42")
	}
	if entry.SearchedAt.Before(before) {
		t.Error("SearchedAt should not precede construction")
	}
}

func TestNewSearchEntry_UniqueIDs(t *testing.T) {
	a := NewSearchEntry(0, 0, nil)
	b := NewSearchEntry(0, 0, nil)
	if a.ID == b.ID {
		t.Error("expected unique IDs")
	}
}

func TestNewReport_DefaultsToPending(t *testing.T) {
	r := NewReport(nil)
	if r.Status != StatusPending {
		t.Errorf("expected pending status, got %s", r.Status)
	}
	if r.Confidence != nil {
		t.Error("expected nil confidence")
	}
}

func TestValidateProbability(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	tests := []struct {
		name    string
		p       *float64
		wantErr bool
	}{
		{"absent", nil, false},
		{"zero", f(0), false},
		{"one", f(1), false},
		{"inside", f(0.35), false},
		{"negative", f(-0.1), true},
		{"above one", f(1.5), true},
		{"nan", f(math.NaN()), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProbability("risk", tt.p)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProbability(%v) error = %v, wantErr %v", tt.p, err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "risk must be between 0 and 1") {
				t.Errorf("unexpected message: %v", err)
			}
		})
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr string
	}{
		{"valid", 37.5665, 126.978, ""},
		{"bounds", 90, -180, ""},
		{"lat too high", 90.1, 0, "latitude"},
		{"lng too low", 0, -180.5, "longitude"},
		{"nan", math.NaN(), 0, "NaN"},
		{"inf", 0, math.Inf(1), "infinite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lng)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParsePermissionState(t *testing.T) {
	for _, s := range []string{"prompt", "granted", "denied"} {
		if _, err := ParsePermissionState(s); err != nil {
			t.Errorf("ParsePermissionState(%q): %v", s, err)
		}
	}
	if _, err := ParsePermissionState("maybe"); err == nil {
		t.Error("expected error for unknown state")
	}
}

func TestParseReportStatus(t *testing.T) {
	got, err := ParseReportStatus("false_positive")
	if err != nil || got != StatusFalsePositive {
		t.Errorf("got %q, %v", got, err)
	}
	if _, err := ParseReportStatus("rejected"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestDashboardData_DecodesServerPayload(t *testing.T) {
	payload := `{
		"user": {"id": 7, "username": "minji", "email": "m@example.com"},
		"recent_searches": [
			{"id": 12, "latitude": 37.55, "longitude": 126.98, "risk_probability": 0.35, "searched_at": "2024-06-01T09:30:00.123456"},
			{"id": 11, "latitude": 37.56, "longitude": 126.97, "risk_probability": null, "searched_at": "2024-06-01T08:00:00"}
		],
		"reports": [
			{"id": "r-1", "confidence": 0.9, "status": "verified", "created_at": "2024-05-30T10:00:00Z"}
		]
	}`

	var data DashboardData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if data.User == nil || data.User.ID != "7" {
		t.Errorf("expected user id 7, got %+v", data.User)
	}
	if len(data.RecentSearches) != 2 {
		t.Fatalf("expected 2 searches, got %d", len(data.RecentSearches))
	}
	first := data.RecentSearches[0]
	if first.ID != "12" {
		t.Errorf("expected id 12, got %q", first.ID)
	}
	if first.SearchedAt.Location() != time.UTC {
		t.Error("expected zone-less timestamp to be UTC")
	}
	if first.SearchedAt.Hour() != 9 || first.SearchedAt.Minute() != 30 {
		t.Errorf("unexpected time %v", first.SearchedAt)
	}
	if data.RecentSearches[1].RiskProbability != nil {
		t.Error("expected absent risk probability")
	}
	if data.Reports[0].Status != StatusVerified {
		t.Errorf("expected verified, got %s", data.Reports[0].Status)
	}
}

func TestTimestamp_RoundTripsAsRFC3339(t *testing.T) {
	ts := Timestamp{Time: time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)}
	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2024-06-01T09:30:00Z"` {
		t.Errorf("unexpected encoding %s", data)
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Error("expected error")
	}
}

func TestID_Short(t *testing.T) {
	if got := ID("42").Short(); got != "42" {
		t.Errorf("got %q", got)
	}
	if got := ID("1234567890").Short(); got != "1234567890" {
		t.Errorf("numeric ids should not be truncated, got %q", got)
	}
	if got := ID("5f1c2a9e-0000").Short(); got != "5f1c2a" {
		t.Errorf("got %q", got)
	}
}
