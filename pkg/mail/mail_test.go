package mail

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captureSender struct {
	sent []*gomail.Message
	err  error
}

func (s *captureSender) DialAndSend(m ...*gomail.Message) error {
	s.sent = append(s.sent, m...)
	return s.err
}

func TestSendComposesMessage(t *testing.T) {
	sender := &captureSender{}
	m := NewWithSender(sender, Config{From: "billing@clinic.test"})

	require.NoError(t, m.Send(context.Background(), "pat@example.com", "Receipt", "paid"))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"billing@clinic.test"}, sender.sent[0].GetHeader("From"))
	assert.Equal(t, []string{"pat@example.com"}, sender.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Receipt"}, sender.sent[0].GetHeader("Subject"))
}

func TestSendWrapsSenderError(t *testing.T) {
	sender := &captureSender{err: assert.AnError}
	m := NewWithSender(sender, Config{From: "billing@clinic.test"})

	err := m.Send(context.Background(), "pat@example.com", "Receipt", "paid")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestSendHonoursThrottle(t *testing.T) {
	sender := &captureSender{}
	m := NewWithSender(sender, Config{From: "billing@clinic.test", PerSecond: 0.001, Burst: 1})

	require.NoError(t, m.Send(context.Background(), "a@example.com", "s", "b"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := m.Send(ctx, "b@example.com", "s", "b")
	assert.Error(t, err)
	assert.Len(t, sender.sent, 1)
}
