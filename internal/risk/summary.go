// ABOUTME: Dashboard summary and history selection over collaborator snapshots
// ABOUTME: Pure functions, no I/O, safe to re-run on every refresh

package risk

import (
	"github.com/golang/geo/s2"
	"github.com/harper/hazardwatch/internal/models"
	"github.com/shopspring/decimal"
)

// Summarize counts searches and reports and averages search risk.
// Absent risk counts as zero. Summation is exact, so input order never
// changes the result.
func Summarize(searches []models.SearchHistoryEntry, reports []models.ReportEntry) models.DashboardSummary {
	summary := models.DashboardSummary{
		SearchCount: len(searches),
		ReportCount: len(reports),
	}
	if len(searches) == 0 {
		return summary
	}

	sum := decimal.Zero
	for _, s := range searches {
		sum = sum.Add(decimal.NewFromFloat(Value(s.RiskProbability)))
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(searches))))
	summary.AverageRiskPercent = avg.Shift(2).Round(1).InexactFloat64()
	return summary
}

// RecentSearches returns the first n entries in the order received.
// The result is a copy; the source is never reordered or modified.
func RecentSearches(searches []models.SearchHistoryEntry, n int) []models.SearchHistoryEntry {
	if n <= 0 || len(searches) == 0 {
		return []models.SearchHistoryEntry{}
	}
	if n > len(searches) {
		n = len(searches)
	}
	out := make([]models.SearchHistoryEntry, n)
	copy(out, searches[:n])
	return out
}

// CountByStatus tallies reports per review status.
func CountByStatus(reports []models.ReportEntry) map[models.ReportStatus]int {
	counts := map[models.ReportStatus]int{
		models.StatusPending:       0,
		models.StatusVerified:      0,
		models.StatusFalsePositive: 0,
	}
	for _, r := range reports {
		counts[r.Status]++
	}
	return counts
}

// earthRadiusMeters matches the mean radius used by the risk backend.
const earthRadiusMeters = 6371000

// DistanceMeters is the great-circle distance between two coordinates.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lng1)
	b := s2.LatLngFromDegrees(lat2, lng2)
	return a.Distance(b).Radians() * earthRadiusMeters
}
