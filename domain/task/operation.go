package task

import "strings"

// Operation names a kind of queued work. The prefix groups operations by the
// external system they talk to.
type Operation string

// Operation values.
const (
	OperationWelcomeEmail          Operation = "funnel.email.welcome"
	OperationFeedbackAlertEmail    Operation = "funnel.email.feedback_alert"
	OperationPaymentConfirmation   Operation = "funnel.email.payment_confirmation"
	OperationPasswordResetEmail    Operation = "funnel.email.password_reset"
	OperationEarlyAccessConfirmed  Operation = "funnel.email.early_access_confirmation"
	OperationLeadNotificationEmail Operation = "funnel.email.lead_notification"
	OperationCaptureAnalyticsEvent Operation = "funnel.analytics.capture"
)

// String returns the operation name.
func (o Operation) String() string {
	return string(o)
}

// IsEmail reports whether the operation sends an email.
func (o Operation) IsEmail() bool {
	return strings.HasPrefix(string(o), "funnel.email.")
}

// IsAnalytics reports whether the operation reports to product analytics.
func (o Operation) IsAnalytics() bool {
	return strings.HasPrefix(string(o), "funnel.analytics.")
}

// EmailOperations lists every email operation.
func EmailOperations() []Operation {
	return []Operation{
		OperationWelcomeEmail,
		OperationFeedbackAlertEmail,
		OperationPaymentConfirmation,
		OperationPasswordResetEmail,
		OperationEarlyAccessConfirmed,
		OperationLeadNotificationEmail,
	}
}
