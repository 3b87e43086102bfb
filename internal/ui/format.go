// ABOUTME: Terminal UI formatting utilities
// ABOUTME: Provides human-readable output for positions, risk tiers and history rows

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harper/hazardwatch/internal/dashboard"
	"github.com/harper/hazardwatch/internal/models"
	"github.com/harper/hazardwatch/internal/risk"
)

var faint = color.New(color.Faint)

// FormatPosition formats a position for terminal display.
func FormatPosition(pos *models.Position) string {
	if pos == nil {
		return faint.Sprint("(no position)")
	}
	coords := fmt.Sprintf("(%.6f, %.6f)", pos.Latitude, pos.Longitude)
	if pos.Accuracy > 0 {
		return fmt.Sprintf("%s %s", color.CyanString(coords), faint.Sprintf("±%.0f m", pos.Accuracy))
	}
	return color.CyanString(coords)
}

// FormatPermission colours a permission state.
func FormatPermission(state models.PermissionState) string {
	switch state {
	case models.PermissionGranted:
		return color.GreenString(string(state))
	case models.PermissionDenied:
		return color.RedString(string(state))
	default:
		return color.YellowString(string(state))
	}
}

// Styled colours s with the classification's style.
func Styled(c risk.Classification, s string) string {
	switch c.Style {
	case "green":
		return color.GreenString(s)
	case "yellow":
		return color.YellowString(s)
	case "red":
		return color.RedString(s)
	}
	return s
}

// FormatRiskValue formats a probability as "medium (35.0%)" in its tier colour.
func FormatRiskValue(p float64) string {
	c := risk.Classify(p)
	return Styled(c, fmt.Sprintf("%s (%.1f%%)", c.Label, risk.Percent(p)))
}

// FormatCurrentRisk formats the live risk with its contributing factors.
func FormatCurrentRisk(cr *dashboard.CurrentRisk) string {
	if cr == nil {
		return faint.Sprint("(no current risk)")
	}
	var sb strings.Builder
	sb.WriteString(Styled(cr.Classification, fmt.Sprintf("%s risk (%.1f%%)", cr.Classification.Label, cr.Percent)))
	for _, f := range cr.Record.Factors {
		sb.WriteString("\n  • ")
		sb.WriteString(f)
	}
	for _, n := range cr.Record.NearbyRisks {
		sb.WriteString(fmt.Sprintf("\n  %s (%.4f, %.4f) %s",
			faint.Sprint("nearby"), n.Latitude, n.Longitude, FormatRiskValue(n.Probability)))
	}
	return sb.String()
}

// FormatSummary formats the three dashboard statistics on one line.
func FormatSummary(s models.DashboardSummary) string {
	return fmt.Sprintf("searches %s  reports %s  average risk %s",
		color.New(color.Bold).Sprint(s.SearchCount),
		color.New(color.Bold).Sprint(s.ReportCount),
		color.New(color.Bold).Sprintf("%.1f%%", s.AverageRiskPercent))
}

// FormatDistance formats meters as "850 m" or "8.6 km".
func FormatDistance(m float64) string {
	if m < 1000 {
		return fmt.Sprintf("%.0f m", m)
	}
	return fmt.Sprintf("%.1f km", m/1000)
}

// FormatSearchRow formats one history search.
func FormatSearchRow(row dashboard.Row) string {
	e := row.Entry
	line := fmt.Sprintf("%s %s %s - %s",
		faint.Sprint(e.ID.Short()),
		fmt.Sprintf("(%.4f, %.4f)", e.Latitude, e.Longitude),
		Styled(row.Classification, fmt.Sprintf("%s %.1f%%", row.Classification.Label, row.Percent)),
		faint.Sprint(FormatRelativeTime(e.SearchedAt.Time)))
	if row.DistanceMeters != nil {
		line += faint.Sprintf(" [%s away]", FormatDistance(*row.DistanceMeters))
	}
	return line
}

// FormatReport formats one report entry.
func FormatReport(r models.ReportEntry) string {
	return FormatReportRow(dashboard.NewReportRow(r))
}

// FormatReportRow formats a report with its confidence in tier colour.
func FormatReportRow(row dashboard.ReportRow) string {
	r := row.Entry
	return fmt.Sprintf("%s %s %s - %s",
		faint.Sprint(r.ID.Short()),
		FormatStatus(r.Status),
		Styled(row.Classification, fmt.Sprintf("confidence %.1f%% %s", row.Percent, row.Classification.Label)),
		faint.Sprint(FormatRelativeTime(r.CreatedAt.Time)))
}

// FormatStatus colours a report status.
func FormatStatus(s models.ReportStatus) string {
	switch s {
	case models.StatusVerified:
		return color.GreenString(string(s))
	case models.StatusFalsePositive:
		return faint.Sprint(string(s))
	default:
		return color.YellowString(string(s))
	}
}

// FormatRelativeTime formats a time as relative to now.
func FormatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "unknown time"
	}
	diff := time.Since(t)

	// Handle future times (clock skew, bad data)
	if diff < 0 {
		return color.YellowString("in the future")
	}

	if diff < time.Minute {
		return "just now"
	}
	if diff < time.Hour {
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	}
	if diff < 24*time.Hour {
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := int(diff.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
