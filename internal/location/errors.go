// ABOUTME: Location acquisition errors
// ABOUTME: Normalizes platform failures into a fixed taxonomy

package location

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned when no geolocation platform is available.
	ErrUnsupported = errors.New("geolocation is not supported")

	// ErrPermissionDenied is returned when the platform refuses access.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrUnavailable is returned when no fix could be obtained.
	ErrUnavailable = errors.New("location unavailable")

	// ErrTimedOut is returned when no fix arrived within the timeout.
	ErrTimedOut = errors.New("location request timed out")

	// ErrSessionClosed is returned for operations on a closed session.
	ErrSessionClosed = errors.New("location session closed")
)

// normalize maps any platform failure onto the taxonomy above.
func normalize(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrUnsupported, ErrPermissionDenied, ErrUnavailable, ErrTimedOut} {
		if errors.Is(err, known) {
			return err
		}
	}

	var pe *PlatformError
	if errors.As(err, &pe) {
		switch pe.Code {
		case CodePermissionDenied:
			return fmt.Errorf("%w: %s", ErrPermissionDenied, pe.Message)
		case CodeTimeout:
			return fmt.Errorf("%w: %s", ErrTimedOut, pe.Message)
		default:
			return fmt.Errorf("%w: %s", ErrUnavailable, pe.Message)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimedOut, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
