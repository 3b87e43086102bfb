// ABOUTME: Permission lifecycle state machine and startup probe
// ABOUTME: Re-reads the platform permission and warm-starts acquisition on grant

package location

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/harper/hazardwatch/internal/models"
)

// PermissionEvent is an observation that may move the permission state.
type PermissionEvent int

const (
	EventProbePrompt PermissionEvent = iota
	EventProbeGranted
	EventProbeDenied
	EventFixAcquired
	EventAcquireDenied
	EventAcquireFailed
)

// probeEvent converts a platform answer into the matching event.
func probeEvent(state models.PermissionState) PermissionEvent {
	switch state {
	case models.PermissionGranted:
		return EventProbeGranted
	case models.PermissionDenied:
		return EventProbeDenied
	}
	return EventProbePrompt
}

// Transition is the permission state machine. Probe results are authoritative,
// acquisition outcomes are observed locally, and anything else keeps the state.
func Transition(from models.PermissionState, ev PermissionEvent) models.PermissionState {
	switch ev {
	case EventProbeGranted, EventFixAcquired:
		return models.PermissionGranted
	case EventProbeDenied, EventAcquireDenied:
		return models.PermissionDenied
	case EventProbePrompt:
		return models.PermissionPrompt
	}
	return from
}

// Tracker probes the platform permission and writes the result to the store.
// It keeps no state of its own.
type Tracker struct {
	querier PermissionQuerier
	store   *Store
	source  *Source
	logger  *log.Logger
}

// NewTracker creates a tracker. querier may be nil when the platform cannot
// report its permission, in which case the state stays prompt until a fix.
func NewTracker(querier PermissionQuerier, store *Store, source *Source, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.Default()
	}
	return &Tracker{querier: querier, store: store, source: source, logger: logger}
}

// Evaluate re-reads the platform permission. Entering granted through the
// probe triggers one silent acquisition.
func (t *Tracker) Evaluate(ctx context.Context) models.PermissionState {
	if t.querier == nil {
		return t.store.Permission()
	}

	state, err := t.querier.QueryPermission(ctx)
	if err != nil {
		t.logger.Debug("permission query failed", "err", err)
		return t.store.Permission()
	}

	t.store.apply(probeEvent(state))
	t.logger.Debug("permission probed", "state", state)

	if state == models.PermissionGranted {
		if _, err := t.source.acquire(ctx, false); err != nil {
			t.logger.Debug("warm start failed", "err", err)
		}
	}
	return t.store.Permission()
}
