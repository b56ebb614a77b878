package business

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reviewfunnel/funnel/domain"
)

// MaxSlugLength caps a base slug before any numeric suffix.
const MaxSlugLength = 50

// MaxSlugAttempts bounds the search for a free slug.
const MaxSlugAttempts = 1000

// FallbackSlug is used when a name has no usable characters.
const FallbackSlug = "business"

// ErrSlugExhausted is returned when no free slug was found within
// MaxSlugAttempts candidates.
var ErrSlugExhausted = errors.New("no free slug available")

var reserved = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"admin", "api", "join", "login", "logout", "signup", "register",
		"dashboard", "settings", "account", "pricing", "about", "contact",
		"privacy", "terms", "help", "support", "blog", "docs", "static",
		"assets", "feedback", "review", "reviews", "r", "early-access",
		"webhooks", "health", "healthz", "reset-password", "forgot-password",
	} {
		reserved[w] = struct{}{}
	}
}

// Slugify turns a display name into a URL-safe base slug: lowercase letters,
// digits and single hyphens, no leading or trailing hyphen, at most
// MaxSlugLength characters.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	slug := b.String()
	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}
	if slug == "" {
		return FallbackSlug
	}
	return slug
}

// IsReserved reports whether slug collides with an application route.
func IsReserved(slug string) bool {
	_, ok := reserved[slug]
	return ok
}

// Candidate returns the n-th slug to try for base: base itself, then base-1,
// base-2 and so on.
func Candidate(base string, n int) string {
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}

// NormalizeSlug returns the stored form of a slug typed or linked by a
// visitor: trimmed and lower-cased.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// ValidateSlug checks an explicitly chosen slug is already in canonical form
// and not reserved.
func ValidateSlug(slug string) error {
	if slug == "" || len(slug) > MaxSlugLength+8 {
		return fmt.Errorf("%w: slug must be 1-%d characters", domain.ErrValidation, MaxSlugLength+8)
	}
	for _, r := range slug {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return fmt.Errorf("%w: slug may contain only a-z, 0-9 and '-'", domain.ErrValidation)
		}
	}
	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") || strings.Contains(slug, "--") {
		return fmt.Errorf("%w: slug hyphens must separate words", domain.ErrValidation)
	}
	if IsReserved(slug) {
		return fmt.Errorf("%w: slug %q is reserved", domain.ErrConflict, slug)
	}
	return nil
}
