package business

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/reviewfunnel/funnel/domain"
)

// Platform is a public review site.
type Platform string

// Platform values.
const (
	PlatformGoogle   Platform = "google"
	PlatformYelp     Platform = "yelp"
	PlatformFacebook Platform = "facebook"
	PlatformNextdoor Platform = "nextdoor"
)

// Platforms lists every supported platform in display order.
func Platforms() []Platform {
	return []Platform{PlatformGoogle, PlatformYelp, PlatformFacebook, PlatformNextdoor}
}

// ParsePlatform validates a platform name.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Platforms() {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown platform %q", domain.ErrValidation, s)
}

// String returns the platform name.
func (p Platform) String() string { return string(p) }

// PlatformURLs holds the optional outbound review links of a business.
type PlatformURLs struct {
	urls map[Platform]string
}

// NewPlatformURLs validates and collects review links. Empty values are
// dropped.
func NewPlatformURLs(links map[Platform]string) (PlatformURLs, error) {
	urls := make(map[Platform]string, len(links))
	for p, raw := range links {
		if _, err := ParsePlatform(string(p)); err != nil {
			return PlatformURLs{}, err
		}
		u, err := ValidateURL(raw)
		if err != nil {
			return PlatformURLs{}, fmt.Errorf("%s url: %w", p, err)
		}
		if u != "" {
			urls[p] = u
		}
	}
	return PlatformURLs{urls: urls}, nil
}

// Get returns the link for p, or "".
func (u PlatformURLs) Get(p Platform) string {
	return u.urls[p]
}

// All returns a copy of every configured link.
func (u PlatformURLs) All() map[Platform]string {
	result := make(map[Platform]string, len(u.urls))
	for k, v := range u.urls {
		result[k] = v
	}
	return result
}

// Merge returns links with every non-nil entry of updates applied; a pointer
// to "" removes the link.
func (u PlatformURLs) Merge(updates map[Platform]*string) (PlatformURLs, error) {
	merged := u.All()
	for p, v := range updates {
		if v == nil {
			continue
		}
		merged[p] = *v
	}
	return NewPlatformURLs(merged)
}

// ValidateURL accepts "" or an absolute http(s) URL.
func ValidateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: %q is not an http(s) URL", domain.ErrValidation, raw)
	}
	return u.String(), nil
}
