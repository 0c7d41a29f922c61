package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/raknago/parking-backend/internal/application/otp"
)

func TestContainsAny(t *testing.T) {
	if !containsAny("hello world", "x", "world") {
		t.Fatal("expected true")
	}
	if containsAny("hello", "x", "y") {
		t.Fatal("expected false")
	}
	if containsAny("hello", "") {
		t.Fatal("empty needle must not match")
	}
}

func TestSMTPSender_Config(t *testing.T) {
	cfg := SMTPConfig{
		Host:     "smtp.gmail.com",
		Port:     587,
		Username: "raknago@gmail.com",
		Password: "apppassword",
		FromName: "RaknaGo",
		Timeout:  5 * time.Second,
	}
	s := NewSMTPSender(cfg, zerolog.Nop())
	if s.cfg.Host != "smtp.gmail.com" {
		t.Fatalf("unexpected host: %s", s.cfg.Host)
	}
	if s.cfg.From != "raknago@gmail.com" {
		t.Fatalf("from should default to username, got %q", s.cfg.From)
	}
}

func testMessage() otp.Message {
	return otp.Message{
		To:      "driver@x.io",
		Subject: otp.Subject,
		Text:    "code 123456",
		HTML:    "<p>123456</p>",
	}
}

func newStubbedSender(dialErr error) (*SMTPSender, *int) {
	calls := 0
	s := NewSMTPSender(SMTPConfig{
		Host:     "localhost",
		Port:     2525,
		Username: "raknago@gmail.com",
		Password: "pw",
		FromName: "RaknaGo",
		Timeout:  time.Second,
	}, zerolog.Nop())
	s.dial = func(ctx context.Context, _ *mail.Client, m *mail.Msg) error {
		calls++
		return dialErr
	}
	return s, &calls
}

func TestSMTPSender_Send_OK(t *testing.T) {
	s, calls := newStubbedSender(nil)
	require.NoError(t, s.Send(context.Background(), testMessage()))
	assert.Equal(t, 1, *calls)
}

func TestSMTPSender_Send_AuthFailureIsPermanent(t *testing.T) {
	s, _ := newStubbedSender(errors.New("535 5.7.8 Username and Password not accepted"))
	err := s.Send(context.Background(), testMessage())

	var perm PermanentError
	require.True(t, errors.As(err, &perm), "got %T", err)
	assert.True(t, perm.Permanent())
}

func TestSMTPSender_Send_NetworkFailureIsTemporary(t *testing.T) {
	s, _ := newStubbedSender(errors.New("dial tcp: connection refused"))
	err := s.Send(context.Background(), testMessage())

	var temp TemporaryError
	require.True(t, errors.As(err, &temp), "got %T", err)
	assert.True(t, temp.Temporary())
}

func TestSMTPSender_Send_BadRecipient(t *testing.T) {
	s, calls := newStubbedSender(nil)
	msg := testMessage()
	msg.To = "not an address"

	err := s.Send(context.Background(), msg)
	var perm PermanentError
	assert.True(t, errors.As(err, &perm))
	assert.Equal(t, 0, *calls)
}

func TestSMTPSender_BuildMessage_Headers(t *testing.T) {
	s, _ := newStubbedSender(nil)
	m, err := s.buildMessage(testMessage())
	require.NoError(t, err)

	assert.Equal(t, []string{otp.Subject}, m.GetGenHeader(mail.HeaderSubject))
	from := m.GetFromString()
	require.Len(t, from, 1)
	assert.Contains(t, from[0], "RaknaGo")
	assert.Contains(t, from[0], "raknago@gmail.com")
}

func TestFakeSender_RecordsAndFails(t *testing.T) {
	f := NewFakeSender(zerolog.Nop())
	require.NoError(t, f.Send(context.Background(), testMessage()))

	f.Err = errors.New("boom")
	assert.Error(t, f.Send(context.Background(), testMessage()))
	assert.Len(t, f.Sent(), 2)
}
