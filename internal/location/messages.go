// ABOUTME: Localized user-facing messages for location errors
// ABOUTME: Korean is the default locale, English is the fallback

package location

import "errors"

type messageKey int

const (
	msgGeneric messageKey = iota
	msgUnsupported
	msgWatchUnsupported
	msgPermissionDenied
	msgUnavailable
	msgTimedOut
)

var catalog = map[string]map[messageKey]string{
	"ko": {
		msgGeneric:          "위치 정보를 가져올 수 없습니다.",
		msgUnsupported:      "이 환경에서는 위치 정보를 지원하지 않습니다.",
		msgWatchUnsupported: "위치 서비스가 지원되지 않습니다.",
		msgPermissionDenied: "위치 권한이 거부되었습니다.",
		msgUnavailable:      "위치 정보를 사용할 수 없습니다.",
		msgTimedOut:         "위치 요청 시간이 초과되었습니다.",
	},
	"en": {
		msgGeneric:          "Could not get your location.",
		msgUnsupported:      "Geolocation is not supported here.",
		msgWatchUnsupported: "Location services are not supported.",
		msgPermissionDenied: "Location permission was denied.",
		msgUnavailable:      "Location information is unavailable.",
		msgTimedOut:         "The location request timed out.",
	},
}

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "ko"

func lookup(locale string, key messageKey) string {
	msgs, ok := catalog[locale]
	if !ok {
		msgs = catalog["en"]
	}
	return msgs[key]
}

// Message returns the user-facing text for an acquisition error.
func Message(locale string, err error) string {
	switch {
	case errors.Is(err, ErrUnsupported):
		return lookup(locale, msgUnsupported)
	case errors.Is(err, ErrPermissionDenied):
		return lookup(locale, msgPermissionDenied)
	case errors.Is(err, ErrUnavailable):
		return lookup(locale, msgUnavailable)
	case errors.Is(err, ErrTimedOut):
		return lookup(locale, msgTimedOut)
	}
	return lookup(locale, msgGeneric)
}

// HasLocale reports whether messages exist for locale.
func HasLocale(locale string) bool {
	_, ok := catalog[locale]
	return ok
}
