// ABOUTME: Data migration from a dashboard history source into local storage
// ABOUTME: Copies searches and reports oldest first, skipping entries already present

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harper/hazardwatch/internal/models"
)

// DashboardSource returns the dashboard history of a user, e.g. the remote API.
type DashboardSource interface {
	QueryDashboard(ctx context.Context, userID models.ID) (models.DashboardData, error)
}

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Searches int
	Reports  int
	Skipped  int
}

// MigrateData copies the dashboard history of userID from src into dst.
// The source lists newest first, so entries are written in reverse to keep
// insertion order chronological. Entries whose ID already exists in dst are
// skipped, which makes repeated pulls safe.
func MigrateData(ctx context.Context, src DashboardSource, dst Repository, userID models.ID) (*MigrateSummary, error) {
	data, err := src.QueryDashboard(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("query source history: %w", err)
	}

	summary := &MigrateSummary{}

	for i := len(data.RecentSearches) - 1; i >= 0; i-- {
		entry := data.RecentSearches[i]
		if entry.ID == "" {
			entry.ID = models.ID(uuid.New().String())
		}
		_, err := dst.GetSearch(entry.ID)
		switch {
		case err == nil:
			summary.Skipped++
			continue
		case !errors.Is(err, ErrNotFound):
			return nil, fmt.Errorf("check search %s: %w", entry.ID, err)
		}
		if err := dst.RecordSearch(&entry); err != nil {
			return nil, fmt.Errorf("copy search %s: %w", entry.ID, err)
		}
		summary.Searches++
	}

	for i := len(data.Reports) - 1; i >= 0; i-- {
		report := data.Reports[i]
		if report.ID == "" {
			report.ID = models.ID(uuid.New().String())
		}
		_, err := dst.GetReport(report.ID)
		switch {
		case err == nil:
			summary.Skipped++
			continue
		case !errors.Is(err, ErrNotFound):
			return nil, fmt.Errorf("check report %s: %w", report.ID, err)
		}
		if report.Status == "" {
			report.Status = models.StatusPending
		}
		if err := dst.CreateReport(&report); err != nil {
			return nil, fmt.Errorf("copy report %s: %w", report.ID, err)
		}
		summary.Reports++
	}

	return summary, nil
}
