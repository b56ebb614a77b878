// Package business provides the Business aggregate: a subscriber company with
// a public review page, its platform links and its review templates.
package business

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/reviewfunnel/funnel/domain"
)

// DefaultBrandColor is used when an owner has not picked a color.
const DefaultBrandColor = "#2563eb"

// MaxNameLength bounds the display name.
const MaxNameLength = 120

var brandColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// SubscriptionStatus tracks the paid plan of a business.
type SubscriptionStatus string

// SubscriptionStatus values.
const (
	SubscriptionPending  SubscriptionStatus = "pending"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Survey holds the onboarding survey answers.
type Survey struct {
	industry         string
	monthlyCustomers string
	heardAbout       string
}

// NewSurvey creates a Survey.
func NewSurvey(industry, monthlyCustomers, heardAbout string) Survey {
	return Survey{
		industry:         strings.TrimSpace(industry),
		monthlyCustomers: strings.TrimSpace(monthlyCustomers),
		heardAbout:       strings.TrimSpace(heardAbout),
	}
}

// Industry returns the industry answer.
func (s Survey) Industry() string { return s.industry }

// MonthlyCustomers returns the customer volume answer.
func (s Survey) MonthlyCustomers() string { return s.monthlyCustomers }

// HeardAbout returns the acquisition channel answer.
func (s Survey) HeardAbout() string { return s.heardAbout }

// Completed reports whether any answer was given.
func (s Survey) Completed() bool {
	return s.industry != "" || s.monthlyCustomers != "" || s.heardAbout != ""
}

// Business is a subscriber company. The slug is assigned once at creation and
// only an admin may change it.
type Business struct {
	id               int64
	ownerID          int64
	name             string
	slug             string
	brandColor       string
	logoURL          string
	platformURLs     PlatformURLs
	notifyOnFeedback bool
	subscription     SubscriptionStatus
	customerRef      string
	survey           Survey
	createdAt        time.Time
	updatedAt        time.Time
}

// NewBusiness creates an unsaved Business for an owner. The slug is set by
// the caller once a free one has been found.
func NewBusiness(ownerID int64, name string) (Business, error) {
	name, err := ValidateName(name)
	if err != nil {
		return Business{}, err
	}
	now := time.Now().UTC()
	return Business{
		ownerID:          ownerID,
		name:             name,
		brandColor:       DefaultBrandColor,
		notifyOnFeedback: true,
		subscription:     SubscriptionPending,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// ReconstructBusiness rebuilds a Business from storage.
func ReconstructBusiness(
	id, ownerID int64,
	name, slug, brandColor, logoURL string,
	platformURLs PlatformURLs,
	notifyOnFeedback bool,
	subscription SubscriptionStatus,
	customerRef string,
	survey Survey,
	createdAt, updatedAt time.Time,
) Business {
	return Business{
		id:               id,
		ownerID:          ownerID,
		name:             name,
		slug:             slug,
		brandColor:       brandColor,
		logoURL:          logoURL,
		platformURLs:     platformURLs,
		notifyOnFeedback: notifyOnFeedback,
		subscription:     subscription,
		customerRef:      customerRef,
		survey:           survey,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// ValidateName trims and checks a display name.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: business name is required", domain.ErrValidation)
	}
	if len(name) > MaxNameLength {
		return "", fmt.Errorf("%w: business name exceeds %d characters", domain.ErrValidation, MaxNameLength)
	}
	return name, nil
}

// ID returns the business ID.
func (b Business) ID() int64 { return b.id }

// OwnerID returns the owning user's ID.
func (b Business) OwnerID() int64 { return b.ownerID }

// Name returns the display name.
func (b Business) Name() string { return b.name }

// Slug returns the public URL slug.
func (b Business) Slug() string { return b.slug }

// BrandColor returns the #rrggbb brand color.
func (b Business) BrandColor() string { return b.brandColor }

// LogoURL returns the logo URL, or "".
func (b Business) LogoURL() string { return b.logoURL }

// PlatformURLs returns the outbound review links.
func (b Business) PlatformURLs() PlatformURLs { return b.platformURLs }

// NotifyOnFeedback reports whether the owner is emailed about new feedback.
func (b Business) NotifyOnFeedback() bool { return b.notifyOnFeedback }

// Subscription returns the subscription status.
func (b Business) Subscription() SubscriptionStatus { return b.subscription }

// CustomerRef returns the payment provider's customer id.
func (b Business) CustomerRef() string { return b.customerRef }

// Survey returns the onboarding survey answers.
func (b Business) Survey() Survey { return b.survey }

// CreatedAt returns the creation time.
func (b Business) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last modification time.
func (b Business) UpdatedAt() time.Time { return b.updatedAt }

// IsOwnedBy reports whether userID owns the business.
func (b Business) IsOwnedBy(userID int64) bool { return b.ownerID == userID }

func (b Business) touched() Business {
	b.updatedAt = time.Now().UTC()
	return b
}

// WithSlug returns a copy with the given slug.
func (b Business) WithSlug(slug string) Business {
	b.slug = slug
	return b.touched()
}

// WithOwner returns a copy owned by userID.
func (b Business) WithOwner(userID int64) Business {
	b.ownerID = userID
	return b.touched()
}

// Rename returns a copy with a new display name. The slug is unchanged.
func (b Business) Rename(name string) (Business, error) {
	name, err := ValidateName(name)
	if err != nil {
		return b, err
	}
	b.name = name
	return b.touched(), nil
}

// WithBrandColor returns a copy with a validated brand color.
func (b Business) WithBrandColor(color string) (Business, error) {
	color = strings.TrimSpace(color)
	if !brandColorPattern.MatchString(color) {
		return b, fmt.Errorf("%w: brand color must look like #rrggbb", domain.ErrValidation)
	}
	b.brandColor = strings.ToLower(color)
	return b.touched(), nil
}

// WithLogoURL returns a copy with a validated logo URL; "" clears it.
func (b Business) WithLogoURL(raw string) (Business, error) {
	u, err := ValidateURL(raw)
	if err != nil {
		return b, fmt.Errorf("logo: %w", err)
	}
	b.logoURL = u
	return b.touched(), nil
}

// WithPlatformURLs returns a copy with the given review links.
func (b Business) WithPlatformURLs(urls PlatformURLs) Business {
	b.platformURLs = urls
	return b.touched()
}

// WithNotifyOnFeedback returns a copy with the notification flag set.
func (b Business) WithNotifyOnFeedback(enabled bool) Business {
	b.notifyOnFeedback = enabled
	return b.touched()
}

// WithSurvey returns a copy with the onboarding answers.
func (b Business) WithSurvey(s Survey) Business {
	b.survey = s
	return b.touched()
}

// Activate marks the subscription paid and records the provider customer.
func (b Business) Activate(customerRef string) Business {
	b.subscription = SubscriptionActive
	if customerRef != "" {
		b.customerRef = customerRef
	}
	return b.touched()
}

// Cancel marks the subscription canceled.
func (b Business) Cancel() Business {
	b.subscription = SubscriptionCanceled
	return b.touched()
}
