// ABOUTME: Repository interfaces for local risk history storage
// ABOUTME: Enables testability and storage backend swapping

package storage

import (
	"context"

	"github.com/harper/hazardwatch/internal/models"
)

// SearchRepository defines operations for logged risk lookups.
type SearchRepository interface {
	RecordSearch(entry *models.SearchHistoryEntry) error
	GetSearch(id models.ID) (*models.SearchHistoryEntry, error)
	RecentSearches(limit int) ([]models.SearchHistoryEntry, error)
}

// ReportRepository defines operations for image-analysis reports.
type ReportRepository interface {
	CreateReport(report *models.ReportEntry) error
	GetReport(id models.ID) (*models.ReportEntry, error)
	UpdateReportStatus(id models.ID, status models.ReportStatus) error
	RecentReports(limit int) ([]models.ReportEntry, error)
}

// Repository combines all repository operations with lifecycle management.
type Repository interface {
	SearchRepository
	ReportRepository
	QueryDashboard(ctx context.Context, userID models.ID) (models.DashboardData, error)
	WithTx(ctx context.Context, fn func(Repository) error) error
	Close() error
	Reset() error
}
