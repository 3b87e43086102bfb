// ABOUTME: SQLite storage implementation for risk search and report history
// ABOUTME: Provides local-only persistence using pure Go SQLite driver

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/harper/hazardwatch/internal/models"
	_ "modernc.org/sqlite"
)

// Dashboard limits match what the risk service returns.
const (
	DashboardSearchLimit = 10
	DashboardReportLimit = 5
)

// DefaultUserID owns history when no account is configured.
const DefaultUserID models.ID = "local"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// SQLiteDB implements Repository with a local SQLite database.
type SQLiteDB struct {
	db     *sql.DB
	q      querier
	inTx   bool
	path   string
	userID models.ID
}

// Compile-time check that SQLiteDB implements Repository.
var _ Repository = (*SQLiteDB)(nil)

// DefaultDBPath returns the default database path under the XDG data directory.
func DefaultDBPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "hazardwatch", "history.db")
}

// NewSQLiteDB creates a new SQLite database at the given path.
// Creates the directory and database file if they don't exist.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil { //nolint:gosec // 0750 is appropriate for user data directory
		return nil, fmt.Errorf("create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLiteDB{db: db, q: db, path: path, userID: DefaultUserID}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// SetUser makes subsequent writes and default reads belong to id.
func (s *SQLiteDB) SetUser(id models.ID) {
	if id != "" {
		s.userID = id
	}
}

// migrate creates or updates the database schema.
func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS searches (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			risk_probability REAL,
			searched_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			confidence REAL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_searches_user_time ON searches(user_id, searched_at);
		CREATE INDEX IF NOT EXISTS idx_reports_user_time ON reports(user_id, created_at);
	`
	_, err := s.q.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	if s.inTx {
		return errors.New("close inside transaction")
	}
	return s.db.Close()
}

// WithTx runs fn against a repository bound to one transaction. The
// transaction commits when fn returns nil and rolls back otherwise. Nested
// calls join the outer transaction.
func (s *SQLiteDB) WithTx(ctx context.Context, fn func(Repository) error) error {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&SQLiteDB{db: s.db, q: tx, inTx: true, path: s.path, userID: s.userID}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Reset clears all history from the database.
func (s *SQLiteDB) Reset() error {
	_, err := s.q.Exec("DELETE FROM searches; DELETE FROM reports;")
	return err
}

// RecordSearch stores one risk lookup.
func (s *SQLiteDB) RecordSearch(entry *models.SearchHistoryEntry) error {
	if err := models.ValidateCoordinates(entry.Latitude, entry.Longitude); err != nil {
		return fmt.Errorf("invalid search: %w", err)
	}
	_, err := s.q.Exec(
		`INSERT INTO searches (id, user_id, latitude, longitude, risk_probability, searched_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(entry.ID), string(s.userID), entry.Latitude, entry.Longitude,
		nullFloat(entry.RiskProbability), entry.SearchedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert search: %w", err)
	}
	return nil
}

// RecentSearches returns up to limit searches, newest first. limit <= 0
// returns all of them.
func (s *SQLiteDB) RecentSearches(limit int) ([]models.SearchHistoryEntry, error) {
	return s.searchesFor(s.userID, limit)
}

func (s *SQLiteDB) searchesFor(userID models.ID, limit int) ([]models.SearchHistoryEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.q.Query(
		`SELECT id, latitude, longitude, risk_probability, searched_at
		 FROM searches WHERE user_id = ? ORDER BY searched_at DESC LIMIT ?`,
		string(userID), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query searches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	searches := []models.SearchHistoryEntry{}
	for rows.Next() {
		e, err := scanSearch(rows)
		if err != nil {
			return nil, err
		}
		searches = append(searches, e)
	}
	return searches, rows.Err()
}

// GetSearch retrieves a search by ID, whichever user it belongs to.
func (s *SQLiteDB) GetSearch(id models.ID) (*models.SearchHistoryEntry, error) {
	row := s.q.QueryRow(
		"SELECT id, latitude, longitude, risk_probability, searched_at FROM searches WHERE id = ?",
		string(id),
	)
	e, err := scanSearch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateReport stores a new report.
func (s *SQLiteDB) CreateReport(report *models.ReportEntry) error {
	if _, err := models.ParseReportStatus(string(report.Status)); err != nil {
		return err
	}
	_, err := s.q.Exec(
		`INSERT INTO reports (id, user_id, confidence, status, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		string(report.ID), string(s.userID), nullFloat(report.Confidence),
		string(report.Status), report.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// GetReport retrieves a report by ID.
func (s *SQLiteDB) GetReport(id models.ID) (*models.ReportEntry, error) {
	row := s.q.QueryRow(
		"SELECT id, confidence, status, created_at FROM reports WHERE id = ?",
		string(id),
	)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateReportStatus moves a report to a new review status.
func (s *SQLiteDB) UpdateReportStatus(id models.ID, status models.ReportStatus) error {
	if _, err := models.ParseReportStatus(string(status)); err != nil {
		return err
	}
	res, err := s.q.Exec("UPDATE reports SET status = ? WHERE id = ?", string(status), string(id))
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecentReports returns up to limit reports, newest first. limit <= 0
// returns all of them.
func (s *SQLiteDB) RecentReports(limit int) ([]models.ReportEntry, error) {
	return s.reportsFor(s.userID, limit)
}

func (s *SQLiteDB) reportsFor(userID models.ID, limit int) ([]models.ReportEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.q.Query(
		`SELECT id, confidence, status, created_at
		 FROM reports WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		string(userID), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	reports := []models.ReportEntry{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// QueryDashboard returns the same shape the risk service's dashboard
// endpoint does. An empty userID means the store's own user.
func (s *SQLiteDB) QueryDashboard(ctx context.Context, userID models.ID) (models.DashboardData, error) {
	if err := ctx.Err(); err != nil {
		return models.DashboardData{}, err
	}
	if userID == "" {
		userID = s.userID
	}
	searches, err := s.searchesFor(userID, DashboardSearchLimit)
	if err != nil {
		return models.DashboardData{}, err
	}
	reports, err := s.reportsFor(userID, DashboardReportLimit)
	if err != nil {
		return models.DashboardData{}, err
	}
	return models.DashboardData{RecentSearches: searches, Reports: reports}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSearch(row scanner) (models.SearchHistoryEntry, error) {
	var (
		id   string
		e    models.SearchHistoryEntry
		risk sql.NullFloat64
	)
	if err := row.Scan(&id, &e.Latitude, &e.Longitude, &risk, &e.SearchedAt.Time); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scan search: %w", err)
	}
	e.ID = models.ID(id)
	e.RiskProbability = floatPtr(risk)
	return e, nil
}

func scanReport(row scanner) (models.ReportEntry, error) {
	var (
		id, status string
		r          models.ReportEntry
		confidence sql.NullFloat64
	)
	if err := row.Scan(&id, &confidence, &status, &r.CreatedAt.Time); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scan report: %w", err)
	}
	r.ID = models.ID(id)
	r.Confidence = floatPtr(confidence)
	r.Status = models.ReportStatus(status)
	return r, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
