// ABOUTME: Location session scoping the store, source and permission tracker
// ABOUTME: Open evaluates permission, Close cancels watches and releases listeners

package location

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/harper/hazardwatch/internal/models"
)

// Option configures a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	notifier Notifier
	locale   string
	logger   *log.Logger
}

// WithNotifier sets the sink for user-facing errors.
func WithNotifier(n Notifier) Option {
	return func(c *sessionConfig) { c.notifier = n }
}

// WithLocale selects the message language.
func WithLocale(locale string) Option {
	return func(c *sessionConfig) { c.locale = locale }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *sessionConfig) { c.logger = l }
}

// Session is the location-aware region of the app. It owns the store for
// its lifetime and must be closed to release platform callbacks.
type Session struct {
	store   *Store
	source  *Source
	tracker *Tracker
	logger  *log.Logger

	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

// Open creates a session over platform and evaluates the permission,
// warm-starting acquisition when it is already granted. platform may be nil.
func Open(ctx context.Context, platform Platform, opts ...Option) *Session {
	cfg := sessionConfig{locale: DefaultLocale}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.Default()
	}

	store := NewStore()
	source := NewSource(platform, store, cfg.notifier, cfg.locale, cfg.logger)

	var querier PermissionQuerier
	if q, ok := platform.(PermissionQuerier); ok {
		querier = q
	}

	s := &Session{
		store:   store,
		source:  source,
		tracker: NewTracker(querier, store, source, cfg.logger),
		logger:  cfg.logger,
		subs:    make(map[*Subscription]struct{}),
	}
	s.tracker.Evaluate(ctx)
	return s
}

// Store exposes the session state for reading.
func (s *Session) Store() *Store {
	return s.store
}

// Position returns the latest fix, if any.
func (s *Session) Position() (models.Position, bool) {
	return s.store.Position()
}

// Permission returns the current permission state.
func (s *Session) Permission() models.PermissionState {
	return s.store.Permission()
}

// Loading reports whether a single-shot request is in flight.
func (s *Session) Loading() bool {
	return s.store.Loading()
}

// AcquireOnce requests one fix on behalf of the user.
func (s *Session) AcquireOnce(ctx context.Context) (models.Position, error) {
	if s.isClosed() {
		return models.Position{}, ErrSessionClosed
	}
	return s.source.AcquireOnce(ctx)
}

// Watch starts continuous tracking. It returns nil when the platform is
// unsupported or the session is closed.
func (s *Session) Watch(onUpdate func(models.Position)) *Subscription {
	if s.isClosed() {
		s.logger.Warn("watch requested on closed session")
		return nil
	}

	sub := s.source.Watch(onUpdate)
	if sub == nil {
		return nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.Cancel()
		return nil
	}
	s.subs[sub] = struct{}{}
	sub.onCancel = func() {
		s.mu.Lock()
		delete(s.subs, sub)
		s.mu.Unlock()
	}
	s.mu.Unlock()
	return sub
}

// Refresh re-reads the platform permission, as on a fresh mount.
func (s *Session) Refresh(ctx context.Context) models.PermissionState {
	if s.isClosed() {
		return s.store.Permission()
	}
	return s.tracker.Evaluate(ctx)
}

// ActiveWatches returns the number of live subscriptions.
func (s *Session) ActiveWatches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Close cancels every active watch and releases all listeners.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	subs := make([]*Subscription, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	s.store.releaseListeners()
	return nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
