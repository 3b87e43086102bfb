// ABOUTME: Fixed-position platform for stationary installs and demos
// ABOUTME: Always answers with the configured coordinates

package platform

import (
	"context"
	"time"

	"github.com/harper/hazardwatch/internal/location"
	"github.com/harper/hazardwatch/internal/models"
)

// Fixed reports a configured position.
type Fixed struct {
	fix      models.Position
	interval time.Duration
}

// NewFixed creates a fixed platform. interval controls how often a watch
// re-reports the position.
func NewFixed(fix models.Position, interval time.Duration) *Fixed {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Fixed{fix: fix, interval: interval}
}

// QueryPermission always reports granted; the user supplied the position.
func (p *Fixed) QueryPermission(context.Context) (models.PermissionState, error) {
	return models.PermissionGranted, nil
}

// CurrentPosition implements location.Platform.
func (p *Fixed) CurrentPosition(ctx context.Context, _ location.Options) (models.Position, error) {
	if err := ctx.Err(); err != nil {
		return models.Position{}, err
	}
	return p.fix, nil
}

// WatchPosition implements location.Platform.
func (p *Fixed) WatchPosition(opts location.Options, onFix func(models.Position), onErr func(error)) func() {
	return pollWatch(p.interval, opts, p.CurrentPosition, onFix, onErr)
}
