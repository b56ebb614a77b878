package lead

import (
	"time"
)

// SignupStatus is the payment state of an early access signup.
type SignupStatus string

// SignupStatus values.
const (
	SignupPending SignupStatus = "pending"
	SignupPaid    SignupStatus = "paid"
)

// EarlyAccessSignup is a prospect paying once for pre-launch access.
type EarlyAccessSignup struct {
	id                int64
	email             string
	name              string
	businessName      string
	status            SignupStatus
	checkoutSessionID string
	amountCents       int64
	paidAt            time.Time
	createdAt         time.Time
}

// NewEarlyAccessSignup creates an unsaved pending signup.
func NewEarlyAccessSignup(email, name, businessName string) (EarlyAccessSignup, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return EarlyAccessSignup{}, err
	}
	d := Details{Name: name, BusinessName: businessName}.trimmed()
	return EarlyAccessSignup{
		email:        email,
		name:         d.Name,
		businessName: d.BusinessName,
		status:       SignupPending,
		createdAt:    time.Now().UTC(),
	}, nil
}

// ReconstructEarlyAccessSignup rebuilds a signup from storage.
func ReconstructEarlyAccessSignup(
	id int64,
	email, name, businessName string,
	status SignupStatus,
	checkoutSessionID string,
	amountCents int64,
	paidAt, createdAt time.Time,
) EarlyAccessSignup {
	return EarlyAccessSignup{
		id:                id,
		email:             email,
		name:              name,
		businessName:      businessName,
		status:            status,
		checkoutSessionID: checkoutSessionID,
		amountCents:       amountCents,
		paidAt:            paidAt,
		createdAt:         createdAt,
	}
}

// ID returns the signup ID.
func (s EarlyAccessSignup) ID() int64 { return s.id }

// Email returns the normalized email.
func (s EarlyAccessSignup) Email() string { return s.email }

// Name returns the contact name.
func (s EarlyAccessSignup) Name() string { return s.name }

// BusinessName returns the business name.
func (s EarlyAccessSignup) BusinessName() string { return s.businessName }

// Status returns the payment state.
func (s EarlyAccessSignup) Status() SignupStatus { return s.status }

// CheckoutSessionID returns the latest checkout session.
func (s EarlyAccessSignup) CheckoutSessionID() string { return s.checkoutSessionID }

// AmountCents returns the amount paid.
func (s EarlyAccessSignup) AmountCents() int64 { return s.amountCents }

// PaidAt returns when payment completed.
func (s EarlyAccessSignup) PaidAt() time.Time { return s.paidAt }

// CreatedAt returns when the signup was created.
func (s EarlyAccessSignup) CreatedAt() time.Time { return s.createdAt }

// IsPaid reports whether payment completed.
func (s EarlyAccessSignup) IsPaid() bool { return s.status == SignupPaid }

// WithCheckoutSession returns a copy pointing at a new checkout session.
func (s EarlyAccessSignup) WithCheckoutSession(id string) EarlyAccessSignup {
	s.checkoutSessionID = id
	return s
}

// WithDetails returns a copy with non-empty name fields updated.
func (s EarlyAccessSignup) WithDetails(name, businessName string) EarlyAccessSignup {
	d := Details{Name: name, BusinessName: businessName}.trimmed()
	if d.Name != "" {
		s.name = d.Name
	}
	if d.BusinessName != "" {
		s.businessName = d.BusinessName
	}
	return s
}

// MarkPaid returns a copy marked paid. Paying twice keeps the first time.
func (s EarlyAccessSignup) MarkPaid(amountCents int64, now time.Time) EarlyAccessSignup {
	if s.IsPaid() {
		return s
	}
	s.status = SignupPaid
	s.amountCents = amountCents
	s.paidAt = now.UTC()
	return s
}
