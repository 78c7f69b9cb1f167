package browser

import (
	"strings"

	"ArticlePublisher/internal/domain"
)

// DomainMatches reports whether a stored cookie belongs to the currently
// navigated domain. The leading dot on host-wide cookies is stripped and the
// match runs as a substring in either direction, so "a.com" matches
// "sub.a.com" and vice versa while "b.com" never does.
func DomainMatches(cookieDomain, currentDomain string) bool {
	clean := strings.TrimPrefix(cookieDomain, ".")
	if clean == "" || currentDomain == "" {
		return false
	}
	return strings.Contains(currentDomain, clean) || strings.Contains(clean, currentDomain)
}

// FilterForDomain splits cookies into those injectable on currentDomain and
// those that must be skipped. Cookies for unrelated domains never reach the
// browser context.
func FilterForDomain(cookies []domain.Cookie, currentDomain string) (matched, skipped []domain.Cookie) {
	for _, c := range cookies {
		if DomainMatches(c.Domain, currentDomain) {
			matched = append(matched, c)
		} else {
			skipped = append(skipped, c)
		}
	}
	return matched, skipped
}
