// ABOUTME: Dashboard errors
// ABOUTME: Distinguishes a loading session from a missing risk service

package dashboard

import "errors"

// ErrSessionLoading is returned while the session is still being resolved.
var ErrSessionLoading = errors.New("session is loading")

// ErrNoRiskService is returned when no risk service is configured.
var ErrNoRiskService = errors.New("no risk service configured")
