package business

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/reviewfunnel/funnel/domain"
)

// MaxTemplateLength bounds a template body.
const MaxTemplateLength = 2000

// BusinessPlaceholder is substituted with the business name in default
// templates.
const BusinessPlaceholder = "{{business}}"

//go:embed templates.yaml
var defaultTemplatesYAML []byte

// ReviewTemplate is suggested review copy for one platform. A business has
// at most one template per platform.
type ReviewTemplate struct {
	id         int64
	businessID int64
	platform   Platform
	body       string
	createdAt  time.Time
	updatedAt  time.Time
}

// NewReviewTemplate creates an unsaved template.
func NewReviewTemplate(businessID int64, platform Platform, body string) (ReviewTemplate, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return ReviewTemplate{}, fmt.Errorf("%w: template body is required", domain.ErrValidation)
	}
	if len(body) > MaxTemplateLength {
		return ReviewTemplate{}, fmt.Errorf("%w: template body exceeds %d characters", domain.ErrValidation, MaxTemplateLength)
	}
	now := time.Now().UTC()
	return ReviewTemplate{
		businessID: businessID,
		platform:   platform,
		body:       body,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructReviewTemplate rebuilds a template from storage.
func ReconstructReviewTemplate(id, businessID int64, platform Platform, body string, createdAt, updatedAt time.Time) ReviewTemplate {
	return ReviewTemplate{
		id:         id,
		businessID: businessID,
		platform:   platform,
		body:       body,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// ID returns the template ID.
func (t ReviewTemplate) ID() int64 { return t.id }

// BusinessID returns the owning business ID.
func (t ReviewTemplate) BusinessID() int64 { return t.businessID }

// Platform returns the target platform.
func (t ReviewTemplate) Platform() Platform { return t.platform }

// Body returns the template text.
func (t ReviewTemplate) Body() string { return t.body }

// CreatedAt returns the creation time.
func (t ReviewTemplate) CreatedAt() time.Time { return t.createdAt }

// UpdatedAt returns the last modification time.
func (t ReviewTemplate) UpdatedAt() time.Time { return t.updatedAt }

// WithID returns a copy with the given ID, keeping the original creation time.
func (t ReviewTemplate) WithID(id int64, createdAt time.Time) ReviewTemplate {
	t.id = id
	t.createdAt = createdAt
	return t
}

type templateFile struct {
	Templates []struct {
		Platform string `yaml:"platform"`
		Body     string `yaml:"body"`
	} `yaml:"templates"`
}

var (
	defaultsOnce sync.Once
	defaults     map[Platform]string
	defaultOrder []Platform
	defaultsErr  error
)

func loadDefaults() (map[Platform]string, []Platform, error) {
	defaultsOnce.Do(func() {
		var f templateFile
		if err := yaml.Unmarshal(defaultTemplatesYAML, &f); err != nil {
			defaultsErr = fmt.Errorf("parse default templates: %w", err)
			return
		}
		defaults = make(map[Platform]string, len(f.Templates))
		for _, t := range f.Templates {
			p, err := ParsePlatform(t.Platform)
			if err != nil {
				defaultsErr = fmt.Errorf("default templates: %w", err)
				return
			}
			defaults[p] = t.Body
			defaultOrder = append(defaultOrder, p)
		}
	})
	return defaults, defaultOrder, defaultsErr
}

// DefaultTemplates returns the seeded templates for a new business, with the
// business name filled in.
func DefaultTemplates(businessID int64, businessName string) ([]ReviewTemplate, error) {
	bodies, order, err := loadDefaults()
	if err != nil {
		return nil, err
	}
	templates := make([]ReviewTemplate, 0, len(order))
	for _, p := range order {
		body := strings.ReplaceAll(bodies[p], BusinessPlaceholder, businessName)
		t, err := NewReviewTemplate(businessID, p, body)
		if err != nil {
			return nil, fmt.Errorf("default %s template: %w", p, err)
		}
		templates = append(templates, t)
	}
	return templates, nil
}
