// Package dto holds the JSON:API request bodies accepted by the v1 routes.
package dto

// Data is the primary data of a JSON:API request.
type Data[T any] struct {
	Type       string `json:"type"`
	Attributes T      `json:"attributes"`
}

// Request is a JSON:API request document.
type Request[T any] struct {
	Data Data[T] `json:"data"`
}

// SignupAttributes registers a business owner.
type SignupAttributes struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	BusinessName string `json:"business_name"`
	InviteCode   string `json:"invite_code,omitempty"`
	Source       string `json:"source,omitempty"`
}

// SignupRequest is the body of POST /signup.
type SignupRequest = Request[SignupAttributes]

// LoginAttributes are sign-in credentials.
type LoginAttributes struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /login.
type LoginRequest = Request[LoginAttributes]

// PasswordResetAttributes asks for a reset link.
type PasswordResetAttributes struct {
	Email string `json:"email"`
}

// PasswordResetRequest is the body of POST /password-reset.
type PasswordResetRequest = Request[PasswordResetAttributes]

// PasswordResetConfirmAttributes sets a new password with a reset token.
type PasswordResetConfirmAttributes struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// PasswordResetConfirmRequest is the body of POST /password-reset/confirm.
type PasswordResetConfirmRequest = Request[PasswordResetConfirmAttributes]

// PasswordChangeAttributes changes a signed-in user's password.
type PasswordChangeAttributes struct {
	CurrentPassword string `json:"current_password"`
	Password        string `json:"password"`
}

// PasswordChangeRequest is the body of PUT /me/password.
type PasswordChangeRequest = Request[PasswordChangeAttributes]

// RatingAttributes is a customer's star rating.
type RatingAttributes struct {
	Rating int `json:"rating"`
}

// RatingRequest is the body of POST /r/{slug}/ratings.
type RatingRequest = Request[RatingAttributes]

// FeedbackAttributes is private customer feedback.
type FeedbackAttributes struct {
	Rating  int    `json:"rating,omitempty"`
	Message string `json:"message"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// FeedbackRequest is the body of POST /r/{slug}/feedback.
type FeedbackRequest = Request[FeedbackAttributes]

// LeadAttributes is a public lead capture.
type LeadAttributes struct {
	Email        string `json:"email"`
	Name         string `json:"name,omitempty"`
	BusinessName string `json:"business_name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Source       string `json:"source,omitempty"`
	Message      string `json:"message,omitempty"`
}

// LeadRequest is the body of POST /leads.
type LeadRequest = Request[LeadAttributes]

// EarlyAccessAttributes is a public early access request.
type EarlyAccessAttributes struct {
	Email        string `json:"email"`
	Name         string `json:"name,omitempty"`
	BusinessName string `json:"business_name,omitempty"`
}

// EarlyAccessRequest is the body of POST /early-access.
type EarlyAccessRequest = Request[EarlyAccessAttributes]
