package jsonapi

import (
	"strconv"
	"time"

	"github.com/reviewfunnel/funnel/domain/account"
	"github.com/reviewfunnel/funnel/domain/billing"
	"github.com/reviewfunnel/funnel/domain/business"
	"github.com/reviewfunnel/funnel/domain/lead"
	"github.com/reviewfunnel/funnel/domain/review"
)

// Resource types.
const (
	TypeBusiness    = "business"
	TypeTemplate    = "review_template"
	TypeReview      = "review"
	TypeFeedback    = "feedback"
	TypeSummary     = "summary"
	TypeLead        = "lead"
	TypeInvite      = "invite_code"
	TypeSignup      = "early_access_signup"
	TypeUser        = "user"
	TypeSession     = "session"
	TypeCheckout    = "checkout_session"
	TypeRating      = "rating"
	TypeWebhook     = "webhook_event"
	TypeInviteCheck = "invite_check"
)

// BusinessAttributes is the owner and operator view of a business.
type BusinessAttributes struct {
	Name             string            `json:"name"`
	Slug             string            `json:"slug"`
	OwnerID          int64             `json:"owner_id"`
	BrandColor       string            `json:"brand_color,omitempty"`
	LogoURL          string            `json:"logo_url,omitempty"`
	PlatformURLs     map[string]string `json:"platform_urls"`
	NotifyOnFeedback bool              `json:"notify_on_feedback"`
	Subscription     string            `json:"subscription"`
	Survey           SurveyAttributes  `json:"survey"`
	CreatedAt        *Timestamp        `json:"created_at,omitempty"`
	UpdatedAt        *Timestamp        `json:"updated_at,omitempty"`
}

// SurveyAttributes are the onboarding answers.
type SurveyAttributes struct {
	Industry         string `json:"industry,omitempty"`
	MonthlyCustomers string `json:"monthly_customers,omitempty"`
	HeardAbout       string `json:"heard_about,omitempty"`
	Completed        bool   `json:"completed"`
}

// PublicBusinessAttributes is what a customer on the review page sees.
type PublicBusinessAttributes struct {
	Name         string            `json:"name"`
	Slug         string            `json:"slug"`
	BrandColor   string            `json:"brand_color,omitempty"`
	LogoURL      string            `json:"logo_url,omitempty"`
	PlatformURLs map[string]string `json:"platform_urls"`
}

// TemplateAttributes is a review template.
type TemplateAttributes struct {
	Platform  string     `json:"platform"`
	Body      string     `json:"body"`
	ReviewURL string     `json:"review_url,omitempty"`
	UpdatedAt *Timestamp `json:"updated_at,omitempty"`
}

// ReviewAttributes is a recorded star rating.
type ReviewAttributes struct {
	Rating    int        `json:"rating"`
	Route     string     `json:"route"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
}

// RatingAttributes answers a rating submission.
type RatingAttributes struct {
	Rating    int                   `json:"rating"`
	Route     string                `json:"route"`
	Templates []*TemplateAttributes `json:"templates,omitempty"`
}

// FeedbackAttributes is private feedback.
type FeedbackAttributes struct {
	Rating     int        `json:"rating,omitempty"`
	Message    string     `json:"message"`
	Name       string     `json:"name,omitempty"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Resolved   bool       `json:"resolved"`
	ResolvedAt *Timestamp `json:"resolved_at,omitempty"`
	CreatedAt  *Timestamp `json:"created_at,omitempty"`
}

// SummaryAttributes are dashboard totals.
type SummaryAttributes struct {
	TotalReviews       int64            `json:"total_reviews"`
	AverageRating      float64          `json:"average_rating"`
	Distribution       map[string]int64 `json:"distribution"`
	FiveStarShare      float64          `json:"five_star_share"`
	TotalFeedback      int64            `json:"total_feedback"`
	UnresolvedFeedback int64            `json:"unresolved_feedback"`
}

// LeadAttributes is a captured prospect.
type LeadAttributes struct {
	Email        string     `json:"email"`
	Name         string     `json:"name,omitempty"`
	BusinessName string     `json:"business_name,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Source       string     `json:"source,omitempty"`
	Message      string     `json:"message,omitempty"`
	Status       string     `json:"status"`
	ConvertedAt  *Timestamp `json:"converted_at,omitempty"`
	CreatedAt    *Timestamp `json:"created_at,omitempty"`
}

// InviteAttributes is an invite code.
type InviteAttributes struct {
	Code      string     `json:"code"`
	Note      string     `json:"note,omitempty"`
	Status    string     `json:"status"`
	UsedBy    int64      `json:"used_by,omitempty"`
	UsedAt    *Timestamp `json:"used_at,omitempty"`
	ExpiresAt *Timestamp `json:"expires_at,omitempty"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
}

// SignupAttributes is an early access signup.
type SignupAttributes struct {
	Email        string     `json:"email"`
	Name         string     `json:"name,omitempty"`
	BusinessName string     `json:"business_name,omitempty"`
	Status       string     `json:"status"`
	AmountCents  int64      `json:"amount_cents,omitempty"`
	PaidAt       *Timestamp `json:"paid_at,omitempty"`
	CreatedAt    *Timestamp `json:"created_at,omitempty"`
}

// UserAttributes is an account without its password hash.
type UserAttributes struct {
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
}

// SessionAttributes is a freshly issued bearer token.
type SessionAttributes struct {
	Token      string         `json:"token"`
	ExpiresAt  *Timestamp     `json:"expires_at"`
	User       UserAttributes `json:"user"`
	BusinessID int64          `json:"business_id,omitempty"`
}

// CheckoutAttributes points the browser at a hosted checkout page.
type CheckoutAttributes struct {
	URL string `json:"url"`
}

// WebhookAttributes acknowledges a webhook delivery.
type WebhookAttributes struct {
	Type      string `json:"type"`
	Duplicate bool   `json:"duplicate"`
}

// ID formats a numeric id.
func ID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func platformURLs(u business.PlatformURLs) map[string]string {
	all := u.All()
	out := make(map[string]string, len(all))
	for p, url := range all {
		out[p.String()] = url
	}
	return out
}

// BusinessResource serializes b for its owner or an operator.
func BusinessResource(b business.Business) *Resource {
	s := b.Survey()
	return NewResource(TypeBusiness, ID(b.ID()), &BusinessAttributes{
		Name:             b.Name(),
		Slug:             b.Slug(),
		OwnerID:          b.OwnerID(),
		BrandColor:       b.BrandColor(),
		LogoURL:          b.LogoURL(),
		PlatformURLs:     platformURLs(b.PlatformURLs()),
		NotifyOnFeedback: b.NotifyOnFeedback(),
		Subscription:     string(b.Subscription()),
		Survey: SurveyAttributes{
			Industry:         s.Industry(),
			MonthlyCustomers: s.MonthlyCustomers(),
			HeardAbout:       s.HeardAbout(),
			Completed:        s.Completed(),
		},
		CreatedAt: At(b.CreatedAt()),
		UpdatedAt: At(b.UpdatedAt()),
	})
}

// PublicBusinessResource serializes b for the public review page.
func PublicBusinessResource(b business.Business) *Resource {
	return NewResource(TypeBusiness, b.Slug(), &PublicBusinessAttributes{
		Name:         b.Name(),
		Slug:         b.Slug(),
		BrandColor:   b.BrandColor(),
		LogoURL:      b.LogoURL(),
		PlatformURLs: platformURLs(b.PlatformURLs()),
	})
}

// BusinessResources serializes a list of businesses.
func BusinessResources(items []business.Business) []*Resource {
	resources := make([]*Resource, len(items))
	for i, item := range items {
		resources[i] = BusinessResource(item)
	}
	return resources
}

func templateAttributes(t business.ReviewTemplate, urls business.PlatformURLs) *TemplateAttributes {
	return &TemplateAttributes{
		Platform:  t.Platform().String(),
		Body:      t.Body(),
		ReviewURL: urls.Get(t.Platform()),
		UpdatedAt: At(t.UpdatedAt()),
	}
}

// TemplatesResponse serializes a business's templates with its review links.
func TemplatesResponse(templates []business.ReviewTemplate, urls business.PlatformURLs) *Document {
	resources := make([]*Resource, len(templates))
	for i, t := range templates {
		resources[i] = NewResource(TypeTemplate, t.Platform().String(), templateAttributes(t, urls))
	}
	return NewListResponse(resources)
}

// TemplateResource serializes a single template.
func TemplateResource(t business.ReviewTemplate) *Resource {
	return NewResource(TypeTemplate, t.Platform().String(), templateAttributes(t, business.PlatformURLs{}))
}

// RatingResource answers a rating with the route and, for five stars, the
// templates to copy.
func RatingResource(r review.Review, b business.Business, templates []business.ReviewTemplate) *Resource {
	attrs := &RatingAttributes{Rating: r.Rating().Int(), Route: string(r.Route())}
	for _, t := range templates {
		attrs.Templates = append(attrs.Templates, templateAttributes(t, b.PlatformURLs()))
	}
	return NewResource(TypeRating, ID(r.ID()), attrs)
}

// ReviewResource serializes a recorded rating.
func ReviewResource(r review.Review) *Resource {
	return NewResource(TypeReview, ID(r.ID()), &ReviewAttributes{
		Rating:    r.Rating().Int(),
		Route:     string(r.Route()),
		CreatedAt: At(r.CreatedAt()),
	})
}

// ReviewResources serializes a list of reviews.
func ReviewResources(items []review.Review) []*Resource {
	resources := make([]*Resource, len(items))
	for i, item := range items {
		resources[i] = ReviewResource(item)
	}
	return resources
}

// FeedbackResource serializes private feedback.
func FeedbackResource(f review.Feedback) *Resource {
	c := f.Contact()
	return NewResource(TypeFeedback, ID(f.ID()), &FeedbackAttributes{
		Rating:     f.Rating().Int(),
		Message:    f.Message(),
		Name:       c.Name(),
		Email:      c.Email(),
		Phone:      c.Phone(),
		Resolved:   f.Resolved(),
		ResolvedAt: At(f.ResolvedAt()),
		CreatedAt:  At(f.CreatedAt()),
	})
}

// FeedbackResources serializes a list of feedback.
func FeedbackResources(items []review.Feedback) []*Resource {
	resources := make([]*Resource, len(items))
	for i, item := range items {
		resources[i] = FeedbackResource(item)
	}
	return resources
}

// SummaryResource serializes dashboard totals.
func SummaryResource(businessID int64, s review.Summary) *Resource {
	dist := make(map[string]int64, review.MaxRating)
	for stars, n := range s.Distribution() {
		dist[strconv.Itoa(stars)] = n
	}
	return NewResource(TypeSummary, ID(businessID), &SummaryAttributes{
		TotalReviews:       s.TotalReviews(),
		AverageRating:      s.AverageRating(),
		Distribution:       dist,
		FiveStarShare:      s.FiveStarShare(),
		TotalFeedback:      s.TotalFeedback(),
		UnresolvedFeedback: s.UnresolvedFeedback(),
	})
}

// LeadResource serializes a lead.
func LeadResource(l lead.Lead) *Resource {
	d := l.Details()
	return NewResource(TypeLead, ID(l.ID()), &LeadAttributes{
		Email:        l.Email(),
		Name:         d.Name,
		BusinessName: d.BusinessName,
		Phone:        d.Phone,
		Source:       d.Source,
		Message:      d.Message,
		Status:       string(l.Status()),
		ConvertedAt:  At(l.ConvertedAt()),
		CreatedAt:    At(l.CreatedAt()),
	})
}

// LeadResources serializes a list of leads.
func LeadResources(items []lead.Lead) []*Resource {
	resources := make([]*Resource, len(items))
	for i, item := range items {
		resources[i] = LeadResource(item)
	}
	return resources
}

// InviteResource serializes an invite code.
func InviteResource(c lead.InviteCode) *Resource {
	return NewResource(TypeInvite, ID(c.ID()), &InviteAttributes{
		Code:      c.Code(),
		Note:      c.Note(),
		Status:    string(c.Status()),
		UsedBy:    c.UsedBy(),
		UsedAt:    At(c.UsedAt()),
		ExpiresAt: At(c.ExpiresAt()),
		CreatedAt: At(c.CreatedAt()),
	})
}

// InviteResources serializes a list of invite codes.
func InviteResources(items []lead.InviteCode) []*Resource {
	resources := make([]*Resource, len(items))
	for i, item := range items {
		resources[i] = InviteResource(item)
	}
	return resources
}

// SignupResource serializes an early access signup.
func SignupResource(s lead.EarlyAccessSignup) *Resource {
	return NewResource(TypeSignup, ID(s.ID()), &SignupAttributes{
		Email:        s.Email(),
		Name:         s.Name(),
		BusinessName: s.BusinessName(),
		Status:       string(s.Status()),
		AmountCents:  s.AmountCents(),
		PaidAt:       At(s.PaidAt()),
		CreatedAt:    At(s.CreatedAt()),
	})
}

// SignupResources serializes a list of early access signups.
func SignupResources(items []lead.EarlyAccessSignup) []*Resource {
	resources := make([]*Resource, len(items))
	for i, item := range items {
		resources[i] = SignupResource(item)
	}
	return resources
}

func userAttributes(u account.User) UserAttributes {
	return UserAttributes{
		Email:     u.Email(),
		Role:      string(u.Role()),
		CreatedAt: At(u.CreatedAt()),
	}
}

// UserResource serializes an account.
func UserResource(u account.User) *Resource {
	attrs := userAttributes(u)
	return NewResource(TypeUser, ID(u.ID()), &attrs)
}

// SessionResource serializes a bearer token for user.
func SessionResource(user account.User, token string, expiresAt time.Time, businessID int64) *Resource {
	return NewResource(TypeSession, ID(user.ID()), &SessionAttributes{
		Token:      token,
		ExpiresAt:  At(expiresAt),
		User:       userAttributes(user),
		BusinessID: businessID,
	})
}

// CheckoutResource serializes a hosted checkout session.
func CheckoutResource(c billing.CheckoutSession) *Resource {
	return NewResource(TypeCheckout, c.ID, &CheckoutAttributes{URL: c.URL})
}
