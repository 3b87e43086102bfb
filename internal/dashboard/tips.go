// ABOUTME: Localized safety guidance shown next to the live risk
// ABOUTME: Falls back to English for unknown locales

package dashboard

var safetyTips = map[string][]string{
	"ko": {
		"도로 상태를 주의 깊게 살펴보세요",
		"의심스러운 균열이나 침하를 발견하면 신고하세요",
		"위험지역은 우회해서 이동하세요",
		"비 온 후에는 특히 주의하세요",
	},
	"en": {
		"Watch the road surface carefully",
		"Report suspicious cracks or subsidence",
		"Detour around high-risk areas",
		"Take extra care after rain",
	},
}

// SafetyTips returns the guidance list for locale.
func SafetyTips(locale string) []string {
	if tips, ok := safetyTips[locale]; ok {
		return append([]string(nil), tips...)
	}
	return append([]string(nil), safetyTips["en"]...)
}
