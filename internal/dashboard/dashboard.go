// ABOUTME: Dashboard assembly from session, live risk and history
// ABOUTME: Degrades to partial views with warnings when a collaborator fails

package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harper/hazardwatch/internal/models"
	"github.com/harper/hazardwatch/internal/risk"
)

// RecentLimit is how many history rows the dashboard shows.
const RecentLimit = 5

// Session is the authenticated session as the dashboard sees it.
type Session struct {
	User    *models.User
	Loading bool
}

// SessionSource supplies the current session.
type SessionSource interface {
	GetSession() Session
}

// StaticSession is a session fixed at construction, e.g. from config.
type StaticSession struct {
	session Session
}

// NewStaticSession creates a session for user. A nil user means signed out.
func NewStaticSession(user *models.User) *StaticSession {
	return &StaticSession{session: Session{User: user}}
}

// GetSession implements SessionSource.
func (s *StaticSession) GetSession() Session {
	return s.session
}

// RiskQuerier answers the risk at a coordinate.
type RiskQuerier interface {
	QueryRisk(ctx context.Context, lat, lng float64) (models.RiskRecord, error)
}

// History returns the dashboard history of a user.
type History interface {
	QueryDashboard(ctx context.Context, userID models.ID) (models.DashboardData, error)
}

// SearchRecorder logs a risk lookup.
type SearchRecorder interface {
	RecordSearch(entry *models.SearchHistoryEntry) error
}

// Row is one history search annotated for display.
type Row struct {
	Entry          models.SearchHistoryEntry `json:"entry"`
	Classification risk.Classification       `json:"classification"`
	Percent        float64                   `json:"percent"`
	// DistanceMeters is set when the current position is known.
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}

// ReportRow is one report with its confidence classified like any risk value.
type ReportRow struct {
	Entry          models.ReportEntry  `json:"entry"`
	Classification risk.Classification `json:"classification"`
	Percent        float64             `json:"percent"`
}

// NewReportRow classifies a report's confidence. Absent confidence counts as 0.
func NewReportRow(r models.ReportEntry) ReportRow {
	p := risk.Value(r.Confidence)
	return ReportRow{
		Entry:          r,
		Classification: risk.Classify(p),
		Percent:        risk.Percent(p),
	}
}

// CurrentRisk is the live risk at the current position.
type CurrentRisk struct {
	Record         models.RiskRecord   `json:"record"`
	Classification risk.Classification `json:"classification"`
	Percent        float64             `json:"percent"`
}

// View is everything a dashboard renders.
type View struct {
	User         *models.User                `json:"user,omitempty"`
	Position     *models.Position            `json:"position,omitempty"`
	Current      *CurrentRisk                `json:"current,omitempty"`
	Summary      models.DashboardSummary     `json:"summary"`
	StatusCounts map[models.ReportStatus]int `json:"status_counts"`
	Recent       []Row                       `json:"recent"`
	Reports      []models.ReportEntry        `json:"-"`
	ReportRows   []ReportRow                 `json:"reports"`
	// Searches is the full received history, used by exports.
	Searches    []models.SearchHistoryEntry `json:"-"`
	Warnings    []string                    `json:"warnings,omitempty"`
	GeneratedAt time.Time                   `json:"generated_at"`
}

// Service builds dashboard views.
type Service struct {
	sessions SessionSource
	risk     RiskQuerier
	history  History
	recorder SearchRecorder
	logger   *log.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder records every successful live lookup as a search.
func WithRecorder(r SearchRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a dashboard service. risk and history may be nil, in
// which case the corresponding sections stay empty.
func NewService(sessions SessionSource, rq RiskQuerier, history History, opts ...Option) *Service {
	s := &Service{
		sessions: sessions,
		risk:     rq,
		history:  history,
		logger:   log.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CurrentRisk queries and classifies the risk at pos, recording the lookup
// when a recorder is configured.
func (s *Service) CurrentRisk(ctx context.Context, pos models.Position) (*CurrentRisk, error) {
	if s.risk == nil {
		return nil, ErrNoRiskService
	}
	rec, err := s.risk.QueryRisk(ctx, pos.Latitude, pos.Longitude)
	if err != nil {
		return nil, err
	}
	if s.recorder != nil {
		p := rec.Probability
		if err := s.recorder.RecordSearch(models.NewSearchEntry(pos.Latitude, pos.Longitude, &p)); err != nil {
			s.logger.Warn("could not record search", "err", err)
		}
	}
	return &CurrentRisk{
		Record:         rec,
		Classification: risk.Classify(rec.Probability),
		Percent:        risk.Percent(rec.Probability),
	}, nil
}

// Build assembles the dashboard for the current session. pos may be nil when
// no position has been acquired yet. Collaborator failures become warnings.
func (s *Service) Build(ctx context.Context, pos *models.Position) (View, error) {
	view := View{
		Recent:       []Row{},
		Reports:      []models.ReportEntry{},
		ReportRows:   []ReportRow{},
		Searches:     []models.SearchHistoryEntry{},
		StatusCounts: risk.CountByStatus(nil),
		GeneratedAt:  s.now().UTC(),
	}

	var session Session
	if s.sessions != nil {
		session = s.sessions.GetSession()
	}
	if session.Loading {
		return view, ErrSessionLoading
	}
	view.User = session.User

	if pos != nil {
		p := *pos
		view.Position = &p
		current, err := s.CurrentRisk(ctx, p)
		switch {
		case err == nil:
			view.Current = current
		case errors.Is(err, ErrNoRiskService):
		default:
			s.logger.Warn("current risk unavailable", "err", err)
			view.Warnings = append(view.Warnings, "current risk unavailable: "+err.Error())
		}
	}

	if s.history != nil {
		var userID models.ID
		if session.User != nil {
			userID = session.User.ID
		}
		data, err := s.history.QueryDashboard(ctx, userID)
		if err != nil {
			s.logger.Warn("history unavailable", "err", err)
			view.Warnings = append(view.Warnings, "history unavailable: "+err.Error())
		} else {
			if view.User == nil {
				view.User = data.User
			}
			if data.RecentSearches != nil {
				view.Searches = data.RecentSearches
			}
			if data.Reports != nil {
				view.Reports = data.Reports
			}
		}
	}

	view.Summary = risk.Summarize(view.Searches, view.Reports)
	view.StatusCounts = risk.CountByStatus(view.Reports)
	for _, r := range view.Reports {
		view.ReportRows = append(view.ReportRows, NewReportRow(r))
	}
	for _, e := range risk.RecentSearches(view.Searches, RecentLimit) {
		p := risk.Value(e.RiskProbability)
		row := Row{
			Entry:          e,
			Classification: risk.Classify(p),
			Percent:        risk.Percent(p),
		}
		if view.Position != nil {
			d := risk.DistanceMeters(view.Position.Latitude, view.Position.Longitude, e.Latitude, e.Longitude)
			row.DistanceMeters = &d
		}
		view.Recent = append(view.Recent, row)
	}

	return view, nil
}
