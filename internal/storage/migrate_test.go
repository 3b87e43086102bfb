// ABOUTME: Tests for migrating dashboard history into local storage
// ABOUTME: Covers ordering, idempotent re-runs, missing IDs and source failures

package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harper/hazardwatch/internal/models"
)

type fakeSource struct {
	data   models.DashboardData
	err    error
	userID models.ID
}

func (f *fakeSource) QueryDashboard(_ context.Context, userID models.ID) (models.DashboardData, error) {
	f.userID = userID
	return f.data, f.err
}

func mustNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func remoteHistory() *fakeSource {
	return &fakeSource{data: models.DashboardData{
		RecentSearches: []models.SearchHistoryEntry{
			*searchAt(37.4979, 127.0276, ptr(0.8), baseTime.Add(2*time.Hour)),
			*searchAt(37.5665, 126.978, nil, baseTime),
		},
		Reports: []models.ReportEntry{
			{ID: "41", Confidence: ptr(0.9), Status: models.StatusVerified, CreatedAt: models.Timestamp{Time: baseTime}},
		},
	}}
}

func TestMigrateData(t *testing.T) {
	src := remoteHistory()
	src.data.RecentSearches[0].ID = "12"
	src.data.RecentSearches[1].ID = "11"
	dst := testDB(t)

	summary, err := MigrateData(context.Background(), src, dst, "7")
	mustNoError(t, err)

	if summary.Searches != 2 || summary.Reports != 1 || summary.Skipped != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if src.userID != "7" {
		t.Errorf("source queried for %q, want 7", src.userID)
	}

	searches, err := dst.RecentSearches(0)
	mustNoError(t, err)
	if len(searches) != 2 || searches[0].ID != "12" {
		t.Fatalf("searches = %+v", searches)
	}
	if searches[1].RiskProbability != nil {
		t.Error("absent risk should stay absent")
	}

	report, err := dst.GetReport("41")
	mustNoError(t, err)
	if report.Status != models.StatusVerified {
		t.Errorf("report status = %s", report.Status)
	}
}

func TestMigrateData_SkipsExisting(t *testing.T) {
	src := remoteHistory()
	src.data.RecentSearches[0].ID = "12"
	src.data.RecentSearches[1].ID = "11"
	dst := testDB(t)

	_, err := MigrateData(context.Background(), src, dst, "")
	mustNoError(t, err)

	summary, err := MigrateData(context.Background(), src, dst, "")
	mustNoError(t, err)
	if summary.Searches != 0 || summary.Reports != 0 || summary.Skipped != 3 {
		t.Errorf("second run summary = %+v", summary)
	}

	searches, _ := dst.RecentSearches(0)
	if len(searches) != 2 {
		t.Errorf("expected no duplicates, got %d searches", len(searches))
	}
}

func TestMigrateData_SkipsIDsHeldByAnotherUser(t *testing.T) {
	src := remoteHistory()
	src.data.RecentSearches[0].ID = "12"
	src.data.RecentSearches[1].ID = "11"
	dst := testDB(t)

	dst.SetUser("other")
	held := searchAt(37.5, 127.0, nil, baseTime)
	held.ID = "12"
	mustNoError(t, dst.RecordSearch(held))
	dst.SetUser(DefaultUserID)

	summary, err := MigrateData(context.Background(), src, dst, "7")
	mustNoError(t, err)
	if summary.Searches != 1 || summary.Reports != 1 || summary.Skipped != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestMigrateData_AssignsMissingIDs(t *testing.T) {
	src := remoteHistory()
	src.data.RecentSearches[0].ID = ""
	src.data.RecentSearches[1].ID = ""
	src.data.Reports[0].ID = ""
	src.data.Reports[0].Status = ""
	dst := testDB(t)

	summary, err := MigrateData(context.Background(), src, dst, "")
	mustNoError(t, err)
	if summary.Searches != 2 || summary.Reports != 1 {
		t.Errorf("summary = %+v", summary)
	}

	reports, _ := dst.RecentReports(0)
	if len(reports) != 1 || reports[0].ID == "" {
		t.Fatalf("reports = %+v", reports)
	}
	if reports[0].Status != models.StatusPending {
		t.Errorf("missing status should default to pending, got %s", reports[0].Status)
	}
}

func TestMigrateData_SourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("offline")}
	dst := testDB(t)

	if _, err := MigrateData(context.Background(), src, dst, ""); err == nil {
		t.Error("expected source error")
	}
}

func TestMigrateData_InvalidEntry(t *testing.T) {
	src := remoteHistory()
	src.data.RecentSearches[1].Latitude = 200
	dst := testDB(t)

	if _, err := MigrateData(context.Background(), src, dst, ""); err == nil {
		t.Error("expected error for invalid coordinates")
	}
}
