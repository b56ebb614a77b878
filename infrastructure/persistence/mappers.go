package persistence

import (
	"encoding/json"
	"time"

	"github.com/reviewfunnel/funnel/domain/account"
	"github.com/reviewfunnel/funnel/domain/billing"
	"github.com/reviewfunnel/funnel/domain/business"
	"github.com/reviewfunnel/funnel/domain/lead"
	"github.com/reviewfunnel/funnel/domain/review"
	"github.com/reviewfunnel/funnel/domain/task"
)

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func timeValue(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// UserMapper maps account.User to UserModel.
type UserMapper struct{}

// ToDomain converts a model to a domain user.
func (UserMapper) ToDomain(m UserModel) account.User {
	return account.ReconstructUser(m.ID, m.Email, m.PasswordHash, account.Role(m.Role), m.CreatedAt, m.UpdatedAt)
}

// ToModel converts a domain user to a model.
func (UserMapper) ToModel(u account.User) UserModel {
	return UserModel{
		ID:           u.ID(),
		Email:        u.Email(),
		PasswordHash: u.PasswordHash(),
		Role:         string(u.Role()),
		CreatedAt:    u.CreatedAt(),
		UpdatedAt:    u.UpdatedAt(),
	}
}

// BusinessMapper maps business.Business to BusinessModel.
type BusinessMapper struct{}

// ToDomain converts a model to a domain business. Stored URLs were validated
// on the way in.
func (BusinessMapper) ToDomain(m BusinessModel) business.Business {
	urls, _ := business.NewPlatformURLs(map[business.Platform]string{
		business.PlatformGoogle:   m.GoogleURL,
		business.PlatformYelp:     m.YelpURL,
		business.PlatformFacebook: m.FacebookURL,
		business.PlatformNextdoor: m.NextdoorURL,
	})
	return business.ReconstructBusiness(
		m.ID, m.OwnerID,
		m.Name, m.Slug, m.BrandColor, m.LogoURL,
		urls,
		m.NotifyOnFeedback,
		business.SubscriptionStatus(m.SubscriptionStatus),
		m.CustomerRef,
		business.NewSurvey(m.SurveyIndustry, m.SurveyMonthlyCustomers, m.SurveyHeardAbout),
		m.CreatedAt, m.UpdatedAt,
	)
}

// ToModel converts a domain business to a model.
func (BusinessMapper) ToModel(b business.Business) BusinessModel {
	urls := b.PlatformURLs()
	survey := b.Survey()
	return BusinessModel{
		ID:                     b.ID(),
		OwnerID:                b.OwnerID(),
		Name:                   b.Name(),
		Slug:                   b.Slug(),
		BrandColor:             b.BrandColor(),
		LogoURL:                b.LogoURL(),
		GoogleURL:              urls.Get(business.PlatformGoogle),
		YelpURL:                urls.Get(business.PlatformYelp),
		FacebookURL:            urls.Get(business.PlatformFacebook),
		NextdoorURL:            urls.Get(business.PlatformNextdoor),
		NotifyOnFeedback:       b.NotifyOnFeedback(),
		SubscriptionStatus:     string(b.Subscription()),
		CustomerRef:            b.CustomerRef(),
		SurveyIndustry:         survey.Industry(),
		SurveyMonthlyCustomers: survey.MonthlyCustomers(),
		SurveyHeardAbout:       survey.HeardAbout(),
		CreatedAt:              b.CreatedAt(),
		UpdatedAt:              b.UpdatedAt(),
	}
}

// TemplateMapper maps business.ReviewTemplate to ReviewTemplateModel.
type TemplateMapper struct{}

// ToDomain converts a model to a domain template.
func (TemplateMapper) ToDomain(m ReviewTemplateModel) business.ReviewTemplate {
	return business.ReconstructReviewTemplate(m.ID, m.BusinessID, business.Platform(m.Platform), m.Body, m.CreatedAt, m.UpdatedAt)
}

// ToModel converts a domain template to a model.
func (TemplateMapper) ToModel(t business.ReviewTemplate) ReviewTemplateModel {
	return ReviewTemplateModel{
		ID:         t.ID(),
		BusinessID: t.BusinessID(),
		Platform:   string(t.Platform()),
		Body:       t.Body(),
		CreatedAt:  t.CreatedAt(),
		UpdatedAt:  t.UpdatedAt(),
	}
}

// ReviewMapper maps review.Review to ReviewModel.
type ReviewMapper struct{}

// ToDomain converts a model to a domain review.
func (ReviewMapper) ToDomain(m ReviewModel) review.Review {
	return review.ReconstructReview(m.ID, m.BusinessID, review.Rating(m.Rating), m.CreatedAt)
}

// ToModel converts a domain review to a model.
func (ReviewMapper) ToModel(r review.Review) ReviewModel {
	return ReviewModel{ID: r.ID(), BusinessID: r.BusinessID(), Rating: r.Rating().Int(), CreatedAt: r.CreatedAt()}
}

// FeedbackMapper maps review.Feedback to FeedbackModel.
type FeedbackMapper struct{}

// ToDomain converts a model to domain feedback.
func (FeedbackMapper) ToDomain(m FeedbackModel) review.Feedback {
	return review.ReconstructFeedback(
		m.ID, m.BusinessID,
		review.Rating(m.Rating),
		m.Message,
		review.ReconstructContact(m.Name, m.Email, m.Phone),
		m.Resolved,
		timeValue(m.ResolvedAt), m.CreatedAt,
	)
}

// ToModel converts domain feedback to a model.
func (FeedbackMapper) ToModel(f review.Feedback) FeedbackModel {
	c := f.Contact()
	return FeedbackModel{
		ID:         f.ID(),
		BusinessID: f.BusinessID(),
		Rating:     f.Rating().Int(),
		Message:    f.Message(),
		Name:       c.Name(),
		Email:      c.Email(),
		Phone:      c.Phone(),
		Resolved:   f.Resolved(),
		ResolvedAt: timePtr(f.ResolvedAt()),
		CreatedAt:  f.CreatedAt(),
	}
}

// LeadMapper maps lead.Lead to LeadModel.
type LeadMapper struct{}

// ToDomain converts a model to a domain lead.
func (LeadMapper) ToDomain(m LeadModel) lead.Lead {
	return lead.ReconstructLead(
		m.ID, m.Email,
		lead.Details{Name: m.Name, BusinessName: m.BusinessName, Phone: m.Phone, Source: m.Source, Message: m.Message},
		lead.Status(m.Status),
		timeValue(m.ConvertedAt), m.CreatedAt, m.UpdatedAt,
	)
}

// ToModel converts a domain lead to a model.
func (LeadMapper) ToModel(l lead.Lead) LeadModel {
	d := l.Details()
	return LeadModel{
		ID:           l.ID(),
		Email:        l.Email(),
		Name:         d.Name,
		BusinessName: d.BusinessName,
		Phone:        d.Phone,
		Source:       d.Source,
		Message:      d.Message,
		Status:       string(l.Status()),
		ConvertedAt:  timePtr(l.ConvertedAt()),
		CreatedAt:    l.CreatedAt(),
		UpdatedAt:    l.UpdatedAt(),
	}
}

// InviteMapper maps lead.InviteCode to InviteCodeModel.
type InviteMapper struct{}

// ToDomain converts a model to a domain invite code.
func (InviteMapper) ToDomain(m InviteCodeModel) lead.InviteCode {
	var usedBy int64
	if m.UsedBy != nil {
		usedBy = *m.UsedBy
	}
	return lead.ReconstructInviteCode(
		m.ID, m.Code, m.Note,
		lead.InviteStatus(m.Status),
		usedBy,
		timeValue(m.UsedAt), timeValue(m.ExpiresAt), m.CreatedAt,
	)
}

// ToModel converts a domain invite code to a model.
func (InviteMapper) ToModel(c lead.InviteCode) InviteCodeModel {
	var usedBy *int64
	if c.UsedBy() != 0 {
		id := c.UsedBy()
		usedBy = &id
	}
	return InviteCodeModel{
		ID:        c.ID(),
		Code:      c.Code(),
		Note:      c.Note(),
		Status:    string(c.Status()),
		UsedBy:    usedBy,
		UsedAt:    timePtr(c.UsedAt()),
		ExpiresAt: timePtr(c.ExpiresAt()),
		CreatedAt: c.CreatedAt(),
	}
}

// SignupMapper maps lead.EarlyAccessSignup to EarlyAccessSignupModel.
type SignupMapper struct{}

// ToDomain converts a model to a domain signup.
func (SignupMapper) ToDomain(m EarlyAccessSignupModel) lead.EarlyAccessSignup {
	return lead.ReconstructEarlyAccessSignup(
		m.ID, m.Email, m.Name, m.BusinessName,
		lead.SignupStatus(m.Status),
		m.CheckoutSessionID, m.AmountCents,
		timeValue(m.PaidAt), m.CreatedAt,
	)
}

// ToModel converts a domain signup to a model.
func (SignupMapper) ToModel(s lead.EarlyAccessSignup) EarlyAccessSignupModel {
	return EarlyAccessSignupModel{
		ID:                s.ID(),
		Email:             s.Email(),
		Name:              s.Name(),
		BusinessName:      s.BusinessName(),
		Status:            string(s.Status()),
		CheckoutSessionID: s.CheckoutSessionID(),
		AmountCents:       s.AmountCents(),
		PaidAt:            timePtr(s.PaidAt()),
		CreatedAt:         s.CreatedAt(),
	}
}

// ResetMapper maps account.PasswordReset to PasswordResetModel.
type ResetMapper struct{}

// ToDomain converts a model to a domain reset.
func (ResetMapper) ToDomain(m PasswordResetModel) account.PasswordReset {
	return account.ReconstructPasswordReset(m.ID, m.UserID, m.TokenHash, m.ExpiresAt, timeValue(m.UsedAt), m.CreatedAt)
}

// ToModel converts a domain reset to a model.
func (ResetMapper) ToModel(r account.PasswordReset) PasswordResetModel {
	return PasswordResetModel{
		ID:        r.ID(),
		UserID:    r.UserID(),
		TokenHash: r.TokenHash(),
		ExpiresAt: r.ExpiresAt(),
		UsedAt:    timePtr(r.UsedAt()),
		CreatedAt: r.CreatedAt(),
	}
}

// EventMapper maps billing.ProcessedEvent to PaymentEventModel.
type EventMapper struct{}

// ToDomain converts a model to a domain processed event.
func (EventMapper) ToDomain(m PaymentEventModel) billing.ProcessedEvent {
	return billing.ReconstructProcessedEvent(m.ID, m.EventID, m.Type, m.ProcessedAt)
}

// ToModel converts a domain processed event to a model.
func (EventMapper) ToModel(e billing.ProcessedEvent) PaymentEventModel {
	return PaymentEventModel{ID: e.ID(), EventID: e.EventID(), Type: e.EventType(), ProcessedAt: e.ProcessedAt()}
}

// TaskMapper maps task.Task to TaskModel.
type TaskMapper struct{}

// ToDomain converts a model to a domain task. An unreadable payload maps to
// an empty one; the handler then rejects it.
func (TaskMapper) ToDomain(m TaskModel) task.Task {
	payload := map[string]any{}
	if m.Payload != "" {
		_ = json.Unmarshal([]byte(m.Payload), &payload)
	}
	return task.ReconstructTask(m.ID, m.DedupKey, task.Operation(m.Type), m.Priority, payload, m.CreatedAt, m.UpdatedAt)
}

// ToModel converts a domain task to a model.
func (TaskMapper) ToModel(t task.Task) TaskModel {
	raw, err := t.PayloadJSON()
	if err != nil {
		raw = []byte("{}")
	}
	return TaskModel{
		ID:        t.ID(),
		DedupKey:  t.DedupKey(),
		Type:      t.Operation().String(),
		Payload:   string(raw),
		Priority:  t.Priority(),
		CreatedAt: t.CreatedAt(),
		UpdatedAt: t.UpdatedAt(),
	}
}
