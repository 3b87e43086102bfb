// ABOUTME: Platform contract for geolocation providers
// ABOUTME: Defines fix options, standard error codes and the permission query

package location

import (
	"context"
	"fmt"
	"time"

	"github.com/harper/hazardwatch/internal/models"
)

// Options are passed to the platform on every call.
type Options struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaximumAge         time.Duration
}

var (
	// OnceOptions favours freshness for an explicit user request.
	OnceOptions = Options{EnableHighAccuracy: true, Timeout: 10 * time.Second, MaximumAge: 5 * time.Minute}

	// WatchOptions tolerates staler, faster answers for background refresh.
	WatchOptions = Options{EnableHighAccuracy: true, Timeout: 5 * time.Second, MaximumAge: time.Minute}
)

// ErrorCode is one of the three standard platform failure codes.
type ErrorCode int

const (
	CodePermissionDenied    ErrorCode = 1
	CodePositionUnavailable ErrorCode = 2
	CodeTimeout             ErrorCode = 3
)

func (c ErrorCode) String() string {
	switch c {
	case CodePermissionDenied:
		return "PERMISSION_DENIED"
	case CodePositionUnavailable:
		return "POSITION_UNAVAILABLE"
	case CodeTimeout:
		return "TIMEOUT"
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// PlatformError is what a platform reports when it cannot produce a fix.
type PlatformError struct {
	Code    ErrorCode
	Message string
}

func (e *PlatformError) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Platform is a geolocation capability. A nil Platform means unsupported.
type Platform interface {
	// CurrentPosition blocks until one fix or an error is available.
	CurrentPosition(ctx context.Context, opts Options) (models.Position, error)

	// WatchPosition starts continuous delivery. Callbacks are invoked
	// sequentially from a single goroutine until stop is called.
	WatchPosition(opts Options, onFix func(models.Position), onErr func(error)) (stop func())
}

// PermissionQuerier is implemented by platforms that can report their
// permission state without requesting a fix.
type PermissionQuerier interface {
	QueryPermission(ctx context.Context) (models.PermissionState, error)
}
