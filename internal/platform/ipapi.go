// ABOUTME: IP-based geolocation platform backed by an ip-api compatible service
// ABOUTME: Coarse fixes gated by the user's configured location consent

package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/harper/hazardwatch/internal/location"
	"github.com/harper/hazardwatch/internal/models"
)

// DefaultIPAPIURL is the public ip-api endpoint.
const DefaultIPAPIURL = "http://ip-api.com/json"

// ipAccuracyMeters is the nominal accuracy of a city-level IP lookup.
const ipAccuracyMeters = 5000

// IPAPI resolves the machine's position from its public IP address.
type IPAPI struct {
	url      string
	consent  models.PermissionState
	interval time.Duration
	client   *http.Client
	cache    fixCache
}

// NewIPAPI creates an IP platform. consent stands in for the user's answer
// to a permission prompt; denied makes every request fail with code 1.
func NewIPAPI(url string, consent models.PermissionState, interval time.Duration, client *http.Client) *IPAPI {
	if url == "" {
		url = DefaultIPAPIURL
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if client == nil {
		client = &http.Client{}
	}
	return &IPAPI{url: url, consent: consent, interval: interval, client: client}
}

type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// QueryPermission reports the configured consent.
func (p *IPAPI) QueryPermission(context.Context) (models.PermissionState, error) {
	return p.consent, nil
}

// CurrentPosition implements location.Platform.
func (p *IPAPI) CurrentPosition(ctx context.Context, opts location.Options) (models.Position, error) {
	if p.consent == models.PermissionDenied {
		return models.Position{}, &location.PlatformError{Code: location.CodePermissionDenied, Message: "location consent denied"}
	}
	if fix, ok := p.cache.get(opts.MaximumAge); ok {
		return fix, nil
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return models.Position{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return models.Position{}, &location.PlatformError{Code: location.CodeTimeout, Message: err.Error()}
		}
		return models.Position{}, &location.PlatformError{Code: location.CodePositionUnavailable, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Position{}, &location.PlatformError{
			Code:    location.CodePositionUnavailable,
			Message: fmt.Sprintf("lookup returned %s", resp.Status),
		}
	}

	var body ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.Position{}, &location.PlatformError{Code: location.CodePositionUnavailable, Message: "decode: " + err.Error()}
	}
	if body.Status != "" && body.Status != "success" {
		return models.Position{}, &location.PlatformError{Code: location.CodePositionUnavailable, Message: body.Message}
	}

	fix := models.Position{Latitude: body.Lat, Longitude: body.Lon, Accuracy: ipAccuracyMeters}
	p.cache.put(fix)
	return fix, nil
}

// WatchPosition polls the lookup service at the configured interval.
func (p *IPAPI) WatchPosition(opts location.Options, onFix func(models.Position), onErr func(error)) func() {
	return pollWatch(p.interval, opts, p.CurrentPosition, onFix, onErr)
}
