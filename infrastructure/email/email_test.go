package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewfunnel/funnel/domain/service"
	"github.com/reviewfunnel/funnel/internal/config"
	"github.com/reviewfunnel/funnel/internal/log"
)

func TestRenderer_AllTemplates(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	data := map[Template]any{
		TemplateWelcome:             WelcomeData{BusinessName: "Joe's", ReviewURL: "https://x/r/joe-s", DashboardURL: "https://x/dashboard"},
		TemplateFeedbackAlert:       FeedbackAlertData{BusinessName: "Joe's", Rating: 2, Message: "slow", DashboardURL: "https://x/dashboard"},
		TemplatePaymentConfirmation: PaymentConfirmationData{BusinessName: "Joe's", DashboardURL: "https://x/dashboard"},
		TemplatePasswordReset:       PasswordResetData{ResetURL: "https://x/reset-password?token=abc", ExpiresIn: "1 hour"},
		TemplateEarlyAccess:         EarlyAccessData{Name: "Ed", Amount: "$49.00"},
		TemplateLeadNotification:    LeadNotificationData{Email: "lead@example.com", Source: "landing"},
	}
	for _, name := range Templates() {
		t.Run(string(name), func(t *testing.T) {
			msg, err := r.Render(name, data[name])
			require.NoError(t, err)
			assert.NotEmpty(t, msg.Subject)
			assert.NotContains(t, msg.Subject, "\n")
			assert.Contains(t, msg.HTML, "<html>")
			assert.NotEmpty(t, msg.Text)
		})
	}
}

func TestRenderer_EscapesHTML(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	msg, err := r.Render(TemplateFeedbackAlert, FeedbackAlertData{
		BusinessName: "Joe's",
		Message:      "<script>alert(1)</script>",
		ContactEmail: "sam@example.com",
	})
	require.NoError(t, err)

	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
	assert.Contains(t, msg.Text, "<script>alert(1)</script>", "plain text is not escaped")
	assert.Contains(t, msg.Text, "<sam@example.com>")
	assert.Equal(t, "New feedback for Joe's", msg.Subject)
}

func TestRenderer_SubjectIsSingleLine(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	msg, err := r.Render(TemplateLeadNotification, LeadNotificationData{Email: "a@example.com\r\nBcc: x@example.com"})
	require.NoError(t, err)

	assert.Equal(t, "New lead: a@example.com Bcc: x@example.com", msg.Subject)
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	_, err = r.Render("nope", nil)

	assert.Error(t, err)
}

func testEmail(t *testing.T) service.Email {
	t.Helper()
	e, err := service.NewEmail([]string{"owner@example.com"}, "Hello", "<p>hi</p>", "hi")
	require.NoError(t, err)
	return e.WithTag("welcome").WithReplyTo("support@example.com")
}

func TestResendMailer_Send(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_123"}`))
	}))
	defer srv.Close()

	cfg := config.NewEmailConfig().
		WithFrom("Funnel <hi@example.com>").
		WithEndpoint(config.NewEndpoint(srv.URL).With(config.WithAPIKey("re_test")))
	mailer := NewResendMailer(cfg, log.Discard())

	id, err := mailer.Send(context.Background(), testEmail(t))
	require.NoError(t, err)

	assert.Equal(t, "msg_123", id)
	assert.Equal(t, "Funnel <hi@example.com>", got.From)
	assert.Equal(t, []string{"owner@example.com"}, got.To)
	assert.Equal(t, "support@example.com", got.ReplyTo)
	assert.Equal(t, []tag{{Name: "category", Value: "welcome"}}, got.Tags)
}

func TestResendMailer_Send_ClientError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"validation_error","message":"bad from"}`))
	}))
	defer srv.Close()

	cfg := config.NewEmailConfig().WithEndpoint(config.NewEndpoint(srv.URL).With(
		config.WithAPIKey("re_test"), config.WithMaxRetries(2), config.WithTimeout(time.Second),
	))
	_, err := NewResendMailer(cfg, log.Discard()).Send(context.Background(), testEmail(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "bad from")
	assert.Equal(t, 1, calls, "client errors are not retried")
}

func TestNew_FallsBackToLog(t *testing.T) {
	mailer := New(config.NewEmailConfig(), log.Discard())
	require.IsType(t, &LogMailer{}, mailer)

	id, err := mailer.Send(context.Background(), testEmail(t))
	require.NoError(t, err)
	assert.Contains(t, id, "log-")

	configured := New(config.NewEmailConfig().WithEndpoint(config.NewEndpoint("http://x").With(config.WithAPIKey("k"))), log.Discard())
	assert.IsType(t, &ResendMailer{}, configured)
}
