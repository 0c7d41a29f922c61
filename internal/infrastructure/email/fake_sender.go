package email

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/raknago/parking-backend/internal/application/otp"
)

// FakeSender is a development/testing mailer. It logs and records every
// message and returns Err when set.
type FakeSender struct {
	lg zerolog.Logger

	mu   sync.Mutex
	sent []otp.Message
	Err  error
}

func NewFakeSender(lg zerolog.Logger) *FakeSender {
	return &FakeSender{
		lg: lg.With().Str("component", "fake_sender").Logger(),
	}
}

func (s *FakeSender) Send(ctx context.Context, msg otp.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lg.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("FAKE send email")

	s.sent = append(s.sent, msg)
	return s.Err
}

func (s *FakeSender) Sent() []otp.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]otp.Message(nil), s.sent...)
}
