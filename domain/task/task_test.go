package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask_DedupKeyIsDeterministic(t *testing.T) {
	a := NewTask(OperationWelcomeEmail, PriorityNormal, map[string]any{"user_id": int64(1), "business_id": int64(2)})
	b := NewTask(OperationWelcomeEmail, PriorityNormal, map[string]any{"business_id": int64(2), "user_id": int64(1)})
	c := NewTask(OperationWelcomeEmail, PriorityNormal, map[string]any{"user_id": int64(1), "business_id": int64(3)})

	assert.Equal(t, a.DedupKey(), b.DedupKey())
	assert.NotEqual(t, a.DedupKey(), c.DedupKey())
	assert.Contains(t, a.DedupKey(), "funnel.email.welcome:")
}

func TestNewTask_DifferentOperationsDiffer(t *testing.T) {
	payload := map[string]any{"user_id": int64(1)}

	a := NewTask(OperationWelcomeEmail, PriorityNormal, payload)
	b := NewTask(OperationCaptureAnalyticsEvent, PriorityNormal, payload)

	assert.NotEqual(t, a.DedupKey(), b.DedupKey())
}

func TestNewTaskWithKey(t *testing.T) {
	task := NewTaskWithKey(OperationPasswordResetEmail, PriorityCritical, "reset-9", nil)

	assert.Equal(t, "funnel.email.password_reset:reset-9", task.DedupKey())
	assert.Equal(t, int(PriorityCritical), task.Priority())
	assert.NotNil(t, task.Payload())
}

func TestTask_PayloadIsCopied(t *testing.T) {
	payload := map[string]any{"email": "a@example.com"}
	task := NewTask(OperationWelcomeEmail, PriorityNormal, payload)

	payload["email"] = "changed"
	got := task.Payload()
	got["email"] = "also changed"

	assert.Equal(t, "a@example.com", task.Payload()["email"])
}

func TestOperation_Groups(t *testing.T) {
	for _, op := range EmailOperations() {
		assert.True(t, op.IsEmail(), op)
		assert.False(t, op.IsAnalytics(), op)
	}
	assert.True(t, OperationCaptureAnalyticsEvent.IsAnalytics())
}

func TestPayloadAccessors(t *testing.T) {
	payload := map[string]any{
		"id":    float64(12),
		"name":  "Joe",
		"props": map[string]any{"plan": "pro"},
	}

	id, err := PayloadInt64(payload, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	name, err := PayloadString(payload, "name")
	require.NoError(t, err)
	assert.Equal(t, "Joe", name)

	_, err = PayloadString(payload, "missing")
	assert.ErrorIs(t, err, ErrMissingPayloadKey)

	_, err = PayloadInt64(payload, "name")
	assert.Error(t, err)

	assert.Equal(t, "", PayloadOptionalString(payload, "missing"))
	assert.Equal(t, "pro", PayloadMap(payload, "props")["plan"])
	assert.Empty(t, PayloadMap(payload, "none"))
}

func TestNotificationTasks(t *testing.T) {
	welcome := NewWelcomeEmail(7, 3)
	assert.Equal(t, OperationWelcomeEmail, welcome.Operation())
	assert.Equal(t, "funnel.email.welcome:7", welcome.DedupKey())
	assert.Equal(t, int64(3), welcome.Payload()[KeyBusinessID])

	first := NewPaymentConfirmation(3, "evt_1")
	again := NewPaymentConfirmation(3, "evt_1")
	assert.Equal(t, first.DedupKey(), again.DedupKey())

	capture := NewAnalyticsCapture("signup_completed", UserDistinctID(7), nil)
	assert.Equal(t, int(PriorityBackground), capture.Priority())
	assert.Equal(t, "user:7", capture.Payload()[KeyDistinctID])
	assert.NotNil(t, capture.Payload()[KeyProperties])
}
