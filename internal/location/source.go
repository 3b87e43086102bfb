// ABOUTME: Position source wrapping a geolocation platform
// ABOUTME: Single-shot and continuous acquisition written through the store

package location

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/harper/hazardwatch/internal/models"
)

// Notifier receives user-facing error messages. Calls must not block.
type Notifier interface {
	NotifyError(message string)
}

type nopNotifier struct{}

func (nopNotifier) NotifyError(string) {}

// Source acquires fixes from a platform. It caches nothing; every
// observation goes to the store.
type Source struct {
	platform Platform
	store    *Store
	notifier Notifier
	locale   string
	logger   *log.Logger
}

// NewSource creates a source. A nil platform makes every call fail with
// ErrUnsupported.
func NewSource(platform Platform, store *Store, notifier Notifier, locale string, logger *log.Logger) *Source {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = log.Default()
	}
	if locale == "" {
		locale = DefaultLocale
	}
	return &Source{
		platform: platform,
		store:    store,
		notifier: notifier,
		locale:   locale,
		logger:   logger,
	}
}

// AcquireOnce requests a single fix on behalf of the user. Failures are
// notified and returned.
func (s *Source) AcquireOnce(ctx context.Context) (models.Position, error) {
	return s.acquire(ctx, true)
}

func (s *Source) acquire(ctx context.Context, userInitiated bool) (models.Position, error) {
	if s.platform == nil {
		if userInitiated {
			s.notifier.NotifyError(Message(s.locale, ErrUnsupported))
		}
		return models.Position{}, ErrUnsupported
	}

	s.store.beginRequest()
	defer s.store.endRequest()

	ctx, cancel := context.WithTimeout(ctx, OnceOptions.Timeout)
	defer cancel()

	pos, err := s.platform.CurrentPosition(ctx, OnceOptions)
	if err == nil {
		if verr := pos.Validate(); verr != nil {
			err = fmt.Errorf("%w: invalid fix: %v", ErrUnavailable, verr)
		}
	}
	if err != nil {
		err = normalize(err)
		s.observeFailure(err)
		if userInitiated {
			s.notifier.NotifyError(Message(s.locale, err))
		}
		return models.Position{}, err
	}

	s.store.setFix(pos)
	s.logger.Debug("position acquired", "lat", pos.Latitude, "lng", pos.Longitude, "accuracy", pos.Accuracy)
	return pos, nil
}

func (s *Source) observeFailure(err error) {
	if errors.Is(err, ErrPermissionDenied) {
		s.store.apply(EventAcquireDenied)
		return
	}
	s.store.apply(EventAcquireFailed)
}

// Subscription is a live watch. Cancel is safe to call more than once.
type Subscription struct {
	once     sync.Once
	stop     func()
	onCancel func()

	// mu is held for each delivery; stopped is set under it by Cancel.
	mu      sync.Mutex
	stopped bool
}

// Cancel stops delivery and releases the platform watch. It waits for a
// delivery in progress, so once it returns neither the store nor onUpdate
// sees another fix. It must not be called from onUpdate.
func (sub *Subscription) Cancel() {
	if sub == nil {
		return
	}
	sub.once.Do(func() {
		sub.mu.Lock()
		sub.stopped = true
		sub.mu.Unlock()

		if sub.stop != nil {
			sub.stop()
		}
		if sub.onCancel != nil {
			sub.onCancel()
		}
	})
}

// deliver runs fn unless the subscription has been cancelled.
func (sub *Subscription) deliver(fn func()) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.stopped {
		return
	}
	fn()
}

// Watch registers onUpdate for continuous fixes. It returns nil, after one
// notification and without touching the store, if the platform is missing.
// Stream errors are logged and never end the subscription.
func (s *Source) Watch(onUpdate func(models.Position)) *Subscription {
	if s.platform == nil {
		s.notifier.NotifyError(lookup(s.locale, msgWatchUnsupported))
		return nil
	}

	sub := &Subscription{}
	sub.stop = s.platform.WatchPosition(WatchOptions,
		func(pos models.Position) {
			sub.deliver(func() {
				if err := pos.Validate(); err != nil {
					s.logger.Warn("location watch error", "err", fmt.Errorf("%w: invalid fix: %v", ErrUnavailable, err))
					return
				}
				s.store.setFix(pos)
				if onUpdate != nil {
					onUpdate(pos)
				}
			})
		},
		func(err error) {
			sub.deliver(func() {
				err = normalize(err)
				s.observeFailure(err)
				s.logger.Warn("location watch error", "err", err)
			})
		},
	)
	return sub
}
