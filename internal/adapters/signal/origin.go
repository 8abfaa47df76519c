package signal

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

func normalizeOrigins(origins []string) ([]string, bool) {
	normalized := make([]string, 0, len(origins))
	allowAll := false

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		if trimmed == "*" {
			allowAll = true
			continue
		}
		n, ok := normalizeOrigin(trimmed)
		if !ok {
			log.Warn().Str("module", "signal").Str("origin", origin).Msg("ignoring invalid origin in configuration")
			continue
		}
		normalized = append(normalized, n)
	}
	return normalized, allowAll
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}

// originChecker builds the upgrader's CheckOrigin. Requests without an Origin header
// are not from browsers and pass.
func originChecker(origins []string) func(r *http.Request) bool {
	normalized, allowAll := normalizeOrigins(origins)
	allowed := lo.SliceToMap(normalized, func(o string) (string, struct{}) {
		return o, struct{}{}
	})

	return func(r *http.Request) bool {
		header := r.Header.Get("Origin")
		if header == "" || allowAll {
			return true
		}
		if n, ok := normalizeOrigin(header); ok {
			if _, exists := allowed[n]; exists {
				return true
			}
		}
		log.Warn().Str("module", "signal").Str("origin", header).Msg("blocked WebSocket connection from disallowed origin")
		return false
	}
}
