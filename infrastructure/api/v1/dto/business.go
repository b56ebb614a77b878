package dto

// BusinessUpdateAttributes changes a business profile. Omitted fields are
// left alone.
type BusinessUpdateAttributes struct {
	Name             *string            `json:"name,omitempty"`
	BrandColor       *string            `json:"brand_color,omitempty"`
	LogoURL          *string            `json:"logo_url,omitempty"`
	PlatformURLs     map[string]*string `json:"platform_urls,omitempty"`
	NotifyOnFeedback *bool              `json:"notify_on_feedback,omitempty"`
}

// BusinessUpdateRequest is the body of PATCH /me/business and
// PATCH /admin/businesses/{id}.
type BusinessUpdateRequest = Request[BusinessUpdateAttributes]

// SurveyAttributes are onboarding survey answers.
type SurveyAttributes struct {
	Industry         string `json:"industry"`
	MonthlyCustomers string `json:"monthly_customers"`
	HeardAbout       string `json:"heard_about"`
}

// SurveyRequest is the body of PUT /me/survey.
type SurveyRequest = Request[SurveyAttributes]

// TemplateAttributes is a review template body.
type TemplateAttributes struct {
	Body string `json:"body"`
}

// TemplateRequest is the body of PUT /me/templates/{platform}.
type TemplateRequest = Request[TemplateAttributes]

// FeedbackResolveAttributes marks feedback handled or not.
type FeedbackResolveAttributes struct {
	Resolved bool `json:"resolved"`
}

// FeedbackResolveRequest is the body of PATCH /me/feedback/{id}.
type FeedbackResolveRequest = Request[FeedbackResolveAttributes]

// BusinessCreateAttributes is an operator creating a business.
type BusinessCreateAttributes struct {
	OwnerEmail string `json:"owner_email"`
	Name       string `json:"name"`
	Slug       string `json:"slug,omitempty"`
}

// BusinessCreateRequest is the body of POST /admin/businesses.
type BusinessCreateRequest = Request[BusinessCreateAttributes]

// SlugAttributes sets an explicit slug.
type SlugAttributes struct {
	Slug string `json:"slug"`
}

// SlugRequest is the body of PUT /admin/businesses/{id}/slug.
type SlugRequest = Request[SlugAttributes]
