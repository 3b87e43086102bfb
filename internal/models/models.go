// ABOUTME: Core data models for positions, risk records and history entries
// ABOUTME: Provides validation and constructor functions for new entities

package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// ValidateCoordinates checks if latitude and longitude are within valid ranges.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return fmt.Errorf("coordinates cannot be NaN")
	}
	if math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return fmt.Errorf("coordinates cannot be infinite")
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	return nil
}

// ValidateProbability checks that an optional probability or confidence lies
// in [0,1]. Absent values are valid.
func ValidateProbability(name string, p *float64) error {
	if p == nil {
		return nil
	}
	if !(*p >= 0 && *p <= 1) {
		return fmt.Errorf("%s must be between 0 and 1", name)
	}
	return nil
}

// Position is a single resolved fix. It is replaced wholesale, never patched.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

// Validate checks the fix coordinates.
func (p Position) Validate() error {
	return ValidateCoordinates(p.Latitude, p.Longitude)
}

// PermissionState is the geolocation permission as reported by the platform.
type PermissionState string

const (
	PermissionPrompt  PermissionState = "prompt"
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
)

// ParsePermissionState converts a string to a PermissionState.
func ParsePermissionState(s string) (PermissionState, error) {
	switch PermissionState(s) {
	case PermissionPrompt, PermissionGranted, PermissionDenied:
		return PermissionState(s), nil
	}
	return "", fmt.Errorf("unknown permission state %q", s)
}

// NearbyRisk is a neighbouring hotspot reported alongside a risk record.
type NearbyRisk struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	RiskLevel   string  `json:"risk_level,omitempty"`
	Probability float64 `json:"probability"`
}

// RiskRecord is the remote model's answer for one coordinate.
type RiskRecord struct {
	Probability float64      `json:"probability"`
	Factors     []string     `json:"factors"`
	RiskLevel   string       `json:"risk_level,omitempty"`
	NearbyRisks []NearbyRisk `json:"nearby_risks,omitempty"`
}

// SearchHistoryEntry is one logged risk lookup.
type SearchHistoryEntry struct {
	ID              ID        `json:"id"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	RiskProbability *float64  `json:"risk_probability"`
	SearchedAt      Timestamp `json:"searched_at"`
}

// NewSearchEntry creates a search entry with a generated ID and current timestamp.
func NewSearchEntry(lat, lng float64, risk *float64) *SearchHistoryEntry {
	return &SearchHistoryEntry{
		ID:              ID(uuid.New().String()),
		Latitude:        lat,
		Longitude:       lng,
		RiskProbability: risk,
		SearchedAt:      Timestamp{Time: time.Now().UTC()},
	}
}

// ReportStatus is the review state of an image-analysis report.
type ReportStatus string

const (
	StatusPending       ReportStatus = "pending"
	StatusVerified      ReportStatus = "verified"
	StatusFalsePositive ReportStatus = "false_positive"
)

// ParseReportStatus converts a string to a ReportStatus.
func ParseReportStatus(s string) (ReportStatus, error) {
	switch ReportStatus(s) {
	case StatusPending, StatusVerified, StatusFalsePositive:
		return ReportStatus(s), nil
	}
	return "", fmt.Errorf("unknown report status %q (want pending, verified or false_positive)", s)
}

// ReportEntry is one image-analysis report.
type ReportEntry struct {
	ID         ID           `json:"id"`
	Confidence *float64     `json:"confidence"`
	Status     ReportStatus `json:"status"`
	CreatedAt  Timestamp    `json:"created_at"`
}

// NewReport creates a pending report with a generated ID.
func NewReport(confidence *float64) *ReportEntry {
	return &ReportEntry{
		ID:         ID(uuid.New().String()),
		Confidence: confidence,
		Status:     StatusPending,
		CreatedAt:  Timestamp{Time: time.Now().UTC()},
	}
}

// DashboardData is the history payload owned by the server.
type DashboardData struct {
	User           *User                `json:"user,omitempty"`
	RecentSearches []SearchHistoryEntry `json:"recent_searches"`
	Reports        []ReportEntry        `json:"reports"`
}

// DashboardSummary is derived on every render and never persisted.
type DashboardSummary struct {
	SearchCount        int     `json:"search_count"`
	ReportCount        int     `json:"report_count"`
	AverageRiskPercent float64 `json:"average_risk_percent"`
}

// User is the signed-in account.
type User struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
}
