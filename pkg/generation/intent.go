package generation

import (
	"strings"

	"bakery-support-be/internal/constant"
)

// DetectHandoffIntent reports whether the query is an explicit request for a
// human agent. The signal is per-query; nothing about it is remembered.
func DetectHandoffIntent(query string) string {
	lowered := strings.ToLower(query)
	for _, keyword := range constant.HandoffKeywords {
		if strings.Contains(lowered, keyword) {
			return constant.IntentHandoff
		}
	}
	return ""
}
