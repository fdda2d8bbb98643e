package mailer

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/dmitrijs2005/admagic/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Welcome(t *testing.T) {
	b := NewBuilder("http://app.local/")

	m, err := b.Welcome("a@example.com", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", m.To)
	assert.Equal(t, "Welcome to AdMagic!", m.Subject)
	assert.Contains(t, m.Body, "Hi Alice")
	assert.Contains(t, m.Body, "http://app.local.")
}

func TestBuilder_LinksCarryToken(t *testing.T) {
	b := NewBuilder("http://app.local")

	m, err := b.Verification("a@example.com", "Alice", "tok+1", "24h0m0s")
	require.NoError(t, err)
	assert.Contains(t, m.Body, "http://app.local/auth/verify-email?token=tok%2B1")
	assert.Contains(t, m.Body, "24h0m0s")

	m, err = b.PasswordReset("a@example.com", "Alice", "abc", "1h0m0s")
	require.NoError(t, err)
	assert.Equal(t, "Reset your password", m.Subject)
	assert.Contains(t, m.Body, "http://app.local/auth/reset-password?token=abc")
}

func TestLogMailer_Send(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(logging.NewTextLogger(&buf, slog.LevelInfo))

	require.NoError(t, m.Send(context.Background(), Message{To: "a@example.com", Subject: "hi", Body: "x"}))
	assert.Contains(t, buf.String(), "to=a@example.com")
	assert.Contains(t, buf.String(), "subject=hi")
}
