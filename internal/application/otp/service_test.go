package otp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raknago/parking-backend/internal/domain"
)

type fakeMailer struct {
	sent []Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg Message) error {
	m.sent = append(m.sent, msg)
	return m.err
}

type fakeLimiter struct {
	allow bool
	err   error
	seen  []string
}

func (l *fakeLimiter) Allow(_ context.Context, scope, identity string) (bool, error) {
	l.seen = append(l.seen, scope+"|"+identity)
	return l.allow, l.err
}

func newService(m Mailer, l Limiter) *Service {
	s := NewService(m, l, zerolog.Nop())
	s.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestSend_MissingFields_RelayNotContacted(t *testing.T) {
	cases := []Request{
		{},
		{Email: "a@x.io"},
		{OTP: "123456"},
		{Email: "   ", OTP: "123456"},
		{Email: "a@x.io", OTP: "\t"},
	}
	for _, req := range cases {
		m := &fakeMailer{}
		_, err := newService(m, nil).Send(context.Background(), req)

		require.Error(t, err)
		assert.True(t, domain.Is(err, "invalid_argument"))
		assert.Equal(t, "Email and OTP are required", err.(*domain.Error).Message)
		assert.Empty(t, m.sent, "relay contacted for %+v", req)
	}
}

func TestSend_Success(t *testing.T) {
	m := &fakeMailer{}
	res, err := newService(m, nil).Send(context.Background(), Request{Email: " a@x.io ", OTP: "482913"})

	require.NoError(t, err)
	assert.Equal(t, Result{Success: true, Message: "OTP email sent successfully"}, res)
	require.Len(t, m.sent, 1)

	msg := m.sent[0]
	assert.Equal(t, "a@x.io", msg.To)
	assert.Equal(t, "Your 2FA Verification Code - RaknaGo", msg.Subject)
	assert.Contains(t, msg.Text, "Your RaknaGo 2FA Verification Code is: 482913")
	assert.Contains(t, msg.HTML, "482913")
	assert.Contains(t, msg.HTML, "2026 RaknaGo. All rights reserved.")
}

func TestSend_NumericCodeFromJSON(t *testing.T) {
	var req Request
	require.NoError(t, json.Unmarshal([]byte(`{"email":"a@x.io","otp":123456}`), &req))

	m := &fakeMailer{}
	res, err := newService(m, nil).Send(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.Len(t, m.sent, 1)
	assert.Contains(t, m.sent[0].Text, "Your RaknaGo 2FA Verification Code is: 123456")
}

func TestSend_RelayFailure(t *testing.T) {
	m := &fakeMailer{err: errors.New("connection refused")}
	_, err := newService(m, nil).Send(context.Background(), Request{Email: "a@x.io", OTP: "1"})

	require.Error(t, err)
	assert.True(t, domain.Is(err, "mail_relay_failed"))
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.Equal(t, "Failed to send OTP email: connection refused", err.(*domain.Error).Message)
}

func TestSend_RateLimited(t *testing.T) {
	m := &fakeMailer{}
	l := &fakeLimiter{allow: false}
	_, err := newService(m, l).Send(context.Background(), Request{Email: "A@X.io", OTP: "1"})

	assert.True(t, domain.Is(err, "rate_limited"))
	assert.Empty(t, m.sent)
	assert.Equal(t, []string{"otp.email|a@x.io"}, l.seen)
}

func TestSend_LimiterDown_FailsOpen(t *testing.T) {
	m := &fakeMailer{}
	l := &fakeLimiter{err: domain.ErrRedisUnavailable(errors.New("down"))}
	_, err := newService(m, l).Send(context.Background(), Request{Email: "a@x.io", OTP: "1"})

	assert.NoError(t, err)
	assert.Len(t, m.sent, 1)
}

func TestRender_EscapesCode(t *testing.T) {
	msg, err := Render("a@x.io", "<b>1</b>", 2026)
	require.NoError(t, err)
	assert.False(t, strings.Contains(msg.HTML, "<b>1</b>"))
	assert.Contains(t, msg.HTML, "&lt;b&gt;1&lt;/b&gt;")
	assert.Contains(t, msg.Text, "This code will expire in 5 minutes.")
	assert.Contains(t, msg.Text, "If you didn't request this code, please ignore this email.")
}

type permErr struct{}

func (permErr) Error() string   { return "535 auth" }
func (permErr) Permanent() bool { return true }

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "permanent", failureReason(permErr{}))
	assert.Equal(t, "timeout", failureReason(context.DeadlineExceeded))
	assert.Equal(t, "relay", failureReason(errors.New("x")))
}
