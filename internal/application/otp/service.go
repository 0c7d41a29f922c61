package otp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/raknago/parking-backend/internal/domain"
	"github.com/raknago/parking-backend/internal/metrics"
)

const (
	ScopeEmail = "otp.email"

	successMessage = "OTP email sent successfully"
)

// Request is the callable payload of sendOTPEmail.
type Request struct {
	Email string `json:"email"`
	OTP   Code   `json:"otp"`
}

type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Service struct {
	mailer  Mailer
	limiter Limiter
	now     func() time.Time
	log     zerolog.Logger
}

// NewService wires the OTP sender. limiter may be nil (no per-email limit).
func NewService(mailer Mailer, limiter Limiter, log zerolog.Logger) *Service {
	return &Service{
		mailer:  mailer,
		limiter: limiter,
		now:     time.Now,
		log:     log.With().Str("component", "otp_service").Logger(),
	}
}

// Send validates the request, renders the email and hands it to the relay once.
func (s *Service) Send(ctx context.Context, req Request) (Result, error) {
	email := strings.TrimSpace(req.Email)
	code := strings.TrimSpace(string(req.OTP))
	if email == "" || code == "" {
		metrics.RecordOTPFailed("invalid_argument")
		return Result{}, domain.ErrInvalidArgument("Email and OTP are required")
	}

	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, ScopeEmail, strings.ToLower(email))
		switch {
		case err != nil:
			// fail open
			s.log.Warn().Err(err).Msg("otp rate limiter unavailable")
		case !ok:
			metrics.RecordOTPFailed("rate_limited")
			return Result{}, domain.ErrRateLimited(ScopeEmail)
		}
	}

	msg, err := Render(email, code, s.now().Year())
	if err != nil {
		metrics.RecordOTPFailed("template")
		return Result{}, domain.ErrInternal(err)
	}

	start := time.Now()
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Error().Err(err).Str("to", email).Msg("error sending otp email")
		metrics.RecordOTPFailed(failureReason(err))
		return Result{}, domain.ErrMailRelay(err)
	}
	metrics.RecordOTPSent(time.Since(start))

	s.log.Info().Str("to", email).Msg("otp email sent")
	return Result{Success: true, Message: successMessage}, nil
}

func failureReason(err error) string {
	var perm interface{ Permanent() bool }
	if errors.As(err, &perm) && perm.Permanent() {
		return "permanent"
	}
	var temp interface{ Temporary() bool }
	if errors.As(err, &temp) && temp.Temporary() {
		return "temporary"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "relay"
}
