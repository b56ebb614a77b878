package email

// WelcomeData fills TemplateWelcome.
type WelcomeData struct {
	BusinessName string
	ReviewURL    string
	DashboardURL string
}

// FeedbackAlertData fills TemplateFeedbackAlert. Rating is 0 when the
// customer skipped it.
type FeedbackAlertData struct {
	BusinessName string
	Rating       int
	Message      string
	ContactName  string
	ContactEmail string
	ContactPhone string
	DashboardURL string
}

// PaymentConfirmationData fills TemplatePaymentConfirmation.
type PaymentConfirmationData struct {
	BusinessName string
	DashboardURL string
}

// PasswordResetData fills TemplatePasswordReset.
type PasswordResetData struct {
	ResetURL  string
	ExpiresIn string
}

// EarlyAccessData fills TemplateEarlyAccess.
type EarlyAccessData struct {
	Name   string
	Amount string
}

// LeadNotificationData fills TemplateLeadNotification.
type LeadNotificationData struct {
	Email        string
	Name         string
	BusinessName string
	Phone        string
	Source       string
	Message      string
}
