package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

// Template names a transactional email.
type Template string

// Template values.
const (
	TemplateWelcome             Template = "welcome"
	TemplateFeedbackAlert       Template = "feedback_alert"
	TemplatePaymentConfirmation Template = "payment_confirmation"
	TemplatePasswordReset       Template = "password_reset"
	TemplateEarlyAccess         Template = "early_access_confirmation"
	TemplateLeadNotification    Template = "lead_notification"
)

// Templates lists every template.
func Templates() []Template {
	return []Template{
		TemplateWelcome,
		TemplateFeedbackAlert,
		TemplatePaymentConfirmation,
		TemplatePasswordReset,
		TemplateEarlyAccess,
		TemplateLeadNotification,
	}
}

// Message is a rendered email body and subject.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

type compiled struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

// Renderer renders the embedded email templates.
type Renderer struct {
	templates map[Template]compiled
}

// NewRenderer parses every embedded template.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[Template]compiled, len(Templates()))}
	for _, name := range Templates() {
		html, err := htmltemplate.ParseFS(templateFS, "templates/layout.html", "templates/"+string(name)+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s html: %w", name, err)
		}
		text, err := texttemplate.ParseFS(templateFS, "templates/"+string(name)+".txt")
		if err != nil {
			return nil, fmt.Errorf("parse %s text: %w", name, err)
		}
		r.templates[name] = compiled{html: html, text: text}
	}
	return r, nil
}

// Render executes template name with data.
func (r *Renderer) Render(name Template, data any) (Message, error) {
	t, ok := r.templates[name]
	if !ok {
		return Message{}, fmt.Errorf("unknown email template %q", name)
	}

	var subject, text, html bytes.Buffer
	if err := t.text.ExecuteTemplate(&subject, "subject", data); err != nil {
		return Message{}, fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := t.text.ExecuteTemplate(&text, "body", data); err != nil {
		return Message{}, fmt.Errorf("render %s text: %w", name, err)
	}
	if err := t.html.ExecuteTemplate(&html, "layout", data); err != nil {
		return Message{}, fmt.Errorf("render %s html: %w", name, err)
	}

	return Message{
		Subject: singleLine(subject.String()),
		HTML:    html.String(),
		Text:    strings.TrimSpace(text.String()) + "\n",
	}, nil
}

// singleLine keeps user-supplied values from breaking the subject header.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
