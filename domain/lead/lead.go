// Package lead tracks prospects through the sales funnel: captured leads,
// invite codes handed out during the invite-only period, and paid early
// access signups.
package lead

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/reviewfunnel/funnel/domain"
)

// Status is a lead's position in the funnel.
type Status string

// Status values.
const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusConverted Status = "converted"
	StatusLost      Status = "lost"
)

// ParseStatus validates a lead status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusNew, StatusContacted, StatusConverted, StatusLost:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown lead status %q", domain.ErrValidation, s)
	}
}

// NormalizeEmail trims, lower-cases and validates an email address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email %q", domain.ErrValidation, email)
	}
	return email, nil
}

// Details is the free-form information a prospect submits.
type Details struct {
	Name         string
	BusinessName string
	Phone        string
	Source       string
	Message      string
}

func (d Details) trimmed() Details {
	return Details{
		Name:         strings.TrimSpace(d.Name),
		BusinessName: strings.TrimSpace(d.BusinessName),
		Phone:        strings.TrimSpace(d.Phone),
		Source:       strings.TrimSpace(d.Source),
		Message:      strings.TrimSpace(d.Message),
	}
}

// Lead is a prospective business.
type Lead struct {
	id          int64
	email       string
	details     Details
	status      Status
	convertedAt time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

// NewLead creates an unsaved lead with status new.
func NewLead(email string, details Details) (Lead, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return Lead{}, err
	}
	details = details.trimmed()
	if len(details.Message) > 5000 {
		return Lead{}, fmt.Errorf("%w: message too long", domain.ErrValidation)
	}
	now := time.Now().UTC()
	return Lead{
		email:     email,
		details:   details,
		status:    StatusNew,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructLead rebuilds a Lead from storage.
func ReconstructLead(id int64, email string, details Details, status Status, convertedAt, createdAt, updatedAt time.Time) Lead {
	return Lead{
		id:          id,
		email:       email,
		details:     details,
		status:      status,
		convertedAt: convertedAt,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ID returns the lead ID.
func (l Lead) ID() int64 { return l.id }

// Email returns the normalized email.
func (l Lead) Email() string { return l.email }

// Details returns the submitted details.
func (l Lead) Details() Details { return l.details }

// Status returns the funnel status.
func (l Lead) Status() Status { return l.status }

// ConvertedAt returns when the lead converted, or the zero time.
func (l Lead) ConvertedAt() time.Time { return l.convertedAt }

// CreatedAt returns the capture time.
func (l Lead) CreatedAt() time.Time { return l.createdAt }

// UpdatedAt returns the last modification time.
func (l Lead) UpdatedAt() time.Time { return l.updatedAt }

// WithStatus returns a copy in the given status. Moving to converted stamps
// the conversion time; moving away clears it.
func (l Lead) WithStatus(s Status) Lead {
	if s == l.status {
		return l
	}
	now := time.Now().UTC()
	l.status = s
	if s == StatusConverted {
		l.convertedAt = now
	} else {
		l.convertedAt = time.Time{}
	}
	l.updatedAt = now
	return l
}

// MarkConverted is WithStatus(StatusConverted).
func (l Lead) MarkConverted() Lead {
	return l.WithStatus(StatusConverted)
}

// Merge returns a copy with non-empty fields of d applied, for repeat
// submissions from the same email.
func (l Lead) Merge(d Details) Lead {
	d = d.trimmed()
	if d.Name != "" {
		l.details.Name = d.Name
	}
	if d.BusinessName != "" {
		l.details.BusinessName = d.BusinessName
	}
	if d.Phone != "" {
		l.details.Phone = d.Phone
	}
	if d.Source != "" {
		l.details.Source = d.Source
	}
	if d.Message != "" {
		l.details.Message = d.Message
	}
	l.updatedAt = time.Now().UTC()
	return l
}
