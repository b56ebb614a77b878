package task

import (
	"fmt"
	"strconv"
)

// Payload keys.
const (
	KeyUserID     = "user_id"
	KeyBusinessID = "business_id"
	KeyFeedbackID = "feedback_id"
	KeyLeadID     = "lead_id"
	KeySignupID   = "signup_id"
	KeyEmail      = "email"
	KeyResetURL   = "reset_url"
	KeyEvent      = "event"
	KeyDistinctID = "distinct_id"
	KeyProperties = "properties"
)

// NewWelcomeEmail queues the welcome email for a freshly signed up owner.
// One per user.
func NewWelcomeEmail(userID, businessID int64) Task {
	return NewTaskWithKey(OperationWelcomeEmail, PriorityUserInitiated, strconv.FormatInt(userID, 10), map[string]any{
		KeyUserID:     userID,
		KeyBusinessID: businessID,
	})
}

// NewFeedbackAlert queues the owner alert for a piece of private feedback.
func NewFeedbackAlert(feedbackID int64) Task {
	return NewTaskWithKey(OperationFeedbackAlertEmail, PriorityNormal, strconv.FormatInt(feedbackID, 10), map[string]any{
		KeyFeedbackID: feedbackID,
	})
}

// NewPaymentConfirmation queues the subscription receipt for a business.
// eventID keeps provider retries from sending it twice.
func NewPaymentConfirmation(businessID int64, eventID string) Task {
	return NewTaskWithKey(OperationPaymentConfirmation, PriorityNormal, eventID, map[string]any{
		KeyBusinessID: businessID,
	})
}

// NewPasswordResetEmail queues a reset link for a user.
func NewPasswordResetEmail(userID int64, email, resetURL string) Task {
	return NewTask(OperationPasswordResetEmail, PriorityCritical, map[string]any{
		KeyUserID:   userID,
		KeyEmail:    email,
		KeyResetURL: resetURL,
	})
}

// NewEarlyAccessConfirmation queues the receipt for a paid early access
// signup. One per signup.
func NewEarlyAccessConfirmation(signupID int64) Task {
	return NewTaskWithKey(OperationEarlyAccessConfirmed, PriorityNormal, strconv.FormatInt(signupID, 10), map[string]any{
		KeySignupID: signupID,
	})
}

// NewLeadNotification queues the operator notice for a captured lead.
func NewLeadNotification(leadID int64) Task {
	return NewTask(OperationLeadNotificationEmail, PriorityBackground, map[string]any{
		KeyLeadID: leadID,
	})
}

// NewAnalyticsCapture queues a product analytics event.
func NewAnalyticsCapture(event, distinctID string, properties map[string]any) Task {
	if properties == nil {
		properties = map[string]any{}
	}
	return NewTask(OperationCaptureAnalyticsEvent, PriorityBackground, map[string]any{
		KeyEvent:      event,
		KeyDistinctID: distinctID,
		KeyProperties: properties,
	})
}

// UserDistinctID is the analytics identity of a signed up user.
func UserDistinctID(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}
