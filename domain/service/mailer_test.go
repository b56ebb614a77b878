package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmail(t *testing.T) {
	e, err := NewEmail([]string{" a@example.com ", ""}, "Welcome", "<p>hi</p>", "hi")
	require.NoError(t, err)

	assert.Equal(t, []string{"a@example.com"}, e.To())
	assert.Equal(t, "Welcome", e.Subject())

	tagged := e.WithTag("welcome").WithReplyTo("support@example.com")
	assert.Equal(t, "welcome", tagged.Tag())
	assert.Equal(t, "support@example.com", tagged.ReplyTo())
	assert.Equal(t, "", e.Tag())
}

func TestNewEmail_Validation(t *testing.T) {
	_, err := NewEmail(nil, "Welcome", "", "")
	assert.Error(t, err)

	_, err = NewEmail([]string{"a@example.com"}, " ", "", "")
	assert.Error(t, err)
}
