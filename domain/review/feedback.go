package review

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/reviewfunnel/funnel/domain"
)

// Feedback field limits.
const (
	MaxMessageLength = 5000
	MaxContactLength = 200
)

// Contact is optional customer contact information.
type Contact struct {
	name  string
	email string
	phone string
}

// NewContact validates contact details. All fields are optional.
func NewContact(name, email, phone string) (Contact, error) {
	c := Contact{
		name:  strings.TrimSpace(name),
		email: strings.ToLower(strings.TrimSpace(email)),
		phone: strings.TrimSpace(phone),
	}
	if len(c.name) > MaxContactLength || len(c.email) > MaxContactLength || len(c.phone) > MaxContactLength {
		return Contact{}, fmt.Errorf("%w: contact fields exceed %d characters", domain.ErrValidation, MaxContactLength)
	}
	if c.email != "" {
		if _, err := mail.ParseAddress(c.email); err != nil {
			return Contact{}, fmt.Errorf("%w: invalid email", domain.ErrValidation)
		}
	}
	return c, nil
}

// Name returns the customer name.
func (c Contact) Name() string { return c.name }

// Email returns the customer email.
func (c Contact) Email() string { return c.email }

// Phone returns the customer phone number.
func (c Contact) Phone() string { return c.phone }

// IsEmpty reports whether no contact detail was given.
func (c Contact) IsEmpty() bool {
	return c.name == "" && c.email == "" && c.phone == ""
}

// Feedback is a private message left by a customer. Only the resolved state
// changes after creation.
type Feedback struct {
	id         int64
	businessID int64
	rating     Rating
	message    string
	contact    Contact
	resolved   bool
	resolvedAt time.Time
	createdAt  time.Time
}

// NewFeedback creates unsaved feedback. rating may be zero when the customer
// reached the form directly.
func NewFeedback(businessID int64, rating Rating, message string, contact Contact) (Feedback, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Feedback{}, fmt.Errorf("%w: message is required", domain.ErrValidation)
	}
	if len(message) > MaxMessageLength {
		return Feedback{}, fmt.Errorf("%w: message exceeds %d characters", domain.ErrValidation, MaxMessageLength)
	}
	if rating != 0 {
		if _, err := NewRating(int(rating)); err != nil {
			return Feedback{}, err
		}
	}
	return Feedback{
		businessID: businessID,
		rating:     rating,
		message:    message,
		contact:    contact,
		createdAt:  time.Now().UTC(),
	}, nil
}

// ReconstructFeedback rebuilds Feedback from storage.
func ReconstructFeedback(
	id, businessID int64,
	rating Rating,
	message string,
	contact Contact,
	resolved bool,
	resolvedAt, createdAt time.Time,
) Feedback {
	return Feedback{
		id:         id,
		businessID: businessID,
		rating:     rating,
		message:    message,
		contact:    contact,
		resolved:   resolved,
		resolvedAt: resolvedAt,
		createdAt:  createdAt,
	}
}

// ReconstructContact rebuilds a Contact from storage without validation.
func ReconstructContact(name, email, phone string) Contact {
	return Contact{name: name, email: email, phone: phone}
}

// ID returns the feedback ID.
func (f Feedback) ID() int64 { return f.id }

// BusinessID returns the business the feedback is about.
func (f Feedback) BusinessID() int64 { return f.businessID }

// Rating returns the rating that led here, or zero.
func (f Feedback) Rating() Rating { return f.rating }

// Message returns the feedback text.
func (f Feedback) Message() string { return f.message }

// Contact returns the optional contact details.
func (f Feedback) Contact() Contact { return f.contact }

// Resolved reports whether the owner has dealt with the feedback.
func (f Feedback) Resolved() bool { return f.resolved }

// ResolvedAt returns when it was resolved, or the zero time.
func (f Feedback) ResolvedAt() time.Time { return f.resolvedAt }

// CreatedAt returns when the feedback was left.
func (f Feedback) CreatedAt() time.Time { return f.createdAt }

// Resolve returns a copy marked resolved (or unresolved).
func (f Feedback) Resolve(resolved bool) Feedback {
	if resolved == f.resolved {
		return f
	}
	f.resolved = resolved
	if resolved {
		f.resolvedAt = time.Now().UTC()
	} else {
		f.resolvedAt = time.Time{}
	}
	return f
}
