// ABOUTME: Export and import functionality for risk history
// ABOUTME: Supports YAML backup format and markdown export

package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harper/hazardwatch/internal/models"
	"github.com/harper/hazardwatch/internal/risk"
	"gopkg.in/yaml.v3"
)

// BackupVersion is the current backup format version.
const BackupVersion = "1.0"

const backupTool = "hazardwatch"

// Backup represents the YAML backup format.
type Backup struct {
	Version    string         `yaml:"version"`
	ExportedAt time.Time      `yaml:"exported_at"`
	Tool       string         `yaml:"tool"`
	Searches   []SearchBackup `yaml:"searches"`
	Reports    []ReportBackup `yaml:"reports"`
}

// SearchBackup represents a search in the backup format.
type SearchBackup struct {
	ID              string    `yaml:"id"`
	Latitude        float64   `yaml:"latitude"`
	Longitude       float64   `yaml:"longitude"`
	RiskProbability *float64  `yaml:"risk_probability,omitempty"`
	SearchedAt      time.Time `yaml:"searched_at"`
}

// ReportBackup represents a report in the backup format.
type ReportBackup struct {
	ID         string    `yaml:"id"`
	Confidence *float64  `yaml:"confidence,omitempty"`
	Status     string    `yaml:"status"`
	CreatedAt  time.Time `yaml:"created_at"`
}

// ExportToYAML exports all history to YAML format.
func ExportToYAML(repo Repository) ([]byte, error) {
	searches, err := repo.RecentSearches(0)
	if err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}

	reports, err := repo.RecentReports(0)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	backup := Backup{
		Version:    BackupVersion,
		ExportedAt: time.Now().UTC(),
		Tool:       backupTool,
		Searches:   make([]SearchBackup, len(searches)),
		Reports:    make([]ReportBackup, len(reports)),
	}

	for i, s := range searches {
		backup.Searches[i] = SearchBackup{
			ID:              string(s.ID),
			Latitude:        s.Latitude,
			Longitude:       s.Longitude,
			RiskProbability: s.RiskProbability,
			SearchedAt:      s.SearchedAt.UTC(),
		}
	}

	for i, r := range reports {
		backup.Reports[i] = ReportBackup{
			ID:         string(r.ID),
			Confidence: r.Confidence,
			Status:     string(r.Status),
			CreatedAt:  r.CreatedAt.UTC(),
		}
	}

	return yaml.Marshal(backup)
}

// ImportFromYAML restores history from YAML format. The import is all or
// nothing: an entry whose ID already exists, or any invalid entry, leaves
// the history unchanged.
func ImportFromYAML(repo Repository, data []byte) error {
	var backup Backup
	if err := yaml.Unmarshal(data, &backup); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}

	if backup.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version: %s (expected %s)", backup.Version, BackupVersion)
	}

	if backup.Tool != backupTool {
		return fmt.Errorf("wrong tool: %s (expected %s)", backup.Tool, backupTool)
	}

	searches := make([]*models.SearchHistoryEntry, 0, len(backup.Searches))
	for _, sb := range backup.Searches {
		if sb.ID == "" {
			return fmt.Errorf("search without id")
		}
		if err := models.ValidateProbability("risk_probability", sb.RiskProbability); err != nil {
			return fmt.Errorf("search %s: %w", sb.ID, err)
		}
		searches = append(searches, &models.SearchHistoryEntry{
			ID:              models.ID(sb.ID),
			Latitude:        sb.Latitude,
			Longitude:       sb.Longitude,
			RiskProbability: sb.RiskProbability,
			SearchedAt:      models.Timestamp{Time: sb.SearchedAt},
		})
	}

	reports := make([]*models.ReportEntry, 0, len(backup.Reports))
	for _, rb := range backup.Reports {
		status, err := models.ParseReportStatus(rb.Status)
		if err != nil {
			return fmt.Errorf("report %s: %w", rb.ID, err)
		}
		if err := models.ValidateProbability("confidence", rb.Confidence); err != nil {
			return fmt.Errorf("report %s: %w", rb.ID, err)
		}
		reports = append(reports, &models.ReportEntry{
			ID:         models.ID(rb.ID),
			Confidence: rb.Confidence,
			Status:     status,
			CreatedAt:  models.Timestamp{Time: rb.CreatedAt},
		})
	}

	return repo.WithTx(context.Background(), func(tx Repository) error {
		for _, entry := range searches {
			if err := tx.RecordSearch(entry); err != nil {
				return fmt.Errorf("restore search %s: %w", entry.ID, err)
			}
		}
		for _, report := range reports {
			if err := tx.CreateReport(report); err != nil {
				return fmt.Errorf("restore report %s: %w", report.ID, err)
			}
		}
		return nil
	})
}

// ExportToMarkdown renders the history as markdown tables.
func ExportToMarkdown(repo Repository) ([]byte, error) {
	searches, err := repo.RecentSearches(0)
	if err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}
	reports, err := repo.RecentReports(0)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	var sb strings.Builder

	now := time.Now().UTC()
	sb.WriteString(fmt.Sprintf("# Hazard History - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	summary := risk.Summarize(searches, reports)
	sb.WriteString(fmt.Sprintf("Searches: %d, reports: %d, average risk: %.1f%%\n\n",
		summary.SearchCount, summary.ReportCount, summary.AverageRiskPercent))

	sb.WriteString("## Searches\n\n")
	if len(searches) == 0 {
		sb.WriteString("No searches recorded.\n\n")
	} else {
		sb.WriteString("| Date | Coordinates | Risk |\n")
		sb.WriteString("|------|-------------|------|\n")
		for _, s := range searches {
			p := risk.Value(s.RiskProbability)
			sb.WriteString(fmt.Sprintf("| %s | (%.4f, %.4f) | %.1f%% %s |\n",
				s.SearchedAt.Format("2006-01-02 15:04"), s.Latitude, s.Longitude,
				risk.Percent(p), risk.Classify(p).Label))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Reports\n\n")
	if len(reports) == 0 {
		sb.WriteString("No reports filed.\n")
		return []byte(sb.String()), nil
	}
	sb.WriteString("| Date | Confidence | Status |\n")
	sb.WriteString("|------|------------|--------|\n")
	for _, r := range reports {
		p := risk.Value(r.Confidence)
		sb.WriteString(fmt.Sprintf("| %s | %.1f%% %s | %s |\n",
			r.CreatedAt.Format("2006-01-02 15:04"), risk.Percent(p), risk.Classify(p).Label, r.Status))
	}
	sb.WriteString("\n")

	return []byte(sb.String()), nil
}
