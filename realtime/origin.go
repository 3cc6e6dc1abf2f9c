package realtime

import "strings"

// OriginGuard decides whether the declared origin of an upgrade request may
// proceed. Browsers attach the Origin header on cross-site websocket opens,
// so checking it here prevents CSRF-style hijacking of the session cookie.
type OriginGuard struct {
	development bool
	allowed     []string
}

func NewOriginGuard(development bool, allowed []string) OriginGuard {
	return OriginGuard{development: development, allowed: allowed}
}

// Allow returns true when the origin may open a connection.
// A missing origin is denied in every mode. Development allows any present
// origin; production requires a prefix match against the allow-list.
func (g OriginGuard) Allow(origin string) bool {
	if origin == "" {
		return false
	}
	if g.development {
		return true
	}
	for _, allowed := range g.allowed {
		if allowed != "" && strings.HasPrefix(origin, allowed) {
			return true
		}
	}
	return false
}
