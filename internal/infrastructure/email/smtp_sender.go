package email

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/raknago/parking-backend/internal/application/otp"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	FromName string
	From     string // defaults to Username
	Timeout  time.Duration
	Insecure bool
}

type SMTPSender struct {
	lg  zerolog.Logger
	cfg SMTPConfig

	// dial is swapped in tests to avoid a network round trip.
	dial func(ctx context.Context, c *mail.Client, m *mail.Msg) error
}

func NewSMTPSender(cfg SMTPConfig, lg zerolog.Logger) *SMTPSender {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPSender{
		lg:  lg.With().Str("component", "smtp_sender").Logger(),
		cfg: cfg,
		dial: func(ctx context.Context, c *mail.Client, m *mail.Msg) error {
			return c.DialAndSendWithContext(ctx, m)
		},
	}
}

// Send implements otp.Mailer.
func (s *SMTPSender) Send(ctx context.Context, msg otp.Message) error {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	m, err := s.buildMessage(msg)
	if err != nil {
		return err
	}

	tlsPolicy := mail.TLSMandatory
	if s.cfg.Insecure {
		tlsPolicy = mail.TLSOpportunistic
	}
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(tlsPolicy),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	c, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return PermanentError{msg: "smtp client init failed: " + err.Error()}
	}

	s.lg.Info().Str("host", s.cfg.Host).Int("port", s.cfg.Port).Str("subject", msg.Subject).Msg("attempting smtp send")
	if err := s.dial(ctx, c, m); err != nil {
		s.lg.Error().Err(err).Msg("smtp send failed")

		text := err.Error()
		if containsAny(text, "535", "5.7.8", "authentication", "Username and Password not accepted") {
			return PermanentError{msg: "smtp auth failed: " + text}
		}
		return TemporaryError{msg: "smtp transient failure: " + text}
	}

	s.lg.Info().Msg("smtp send ok")
	return nil
}

func (s *SMTPSender) buildMessage(msg otp.Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
		return nil, PermanentError{msg: "invalid from address: " + err.Error()}
	}
	if err := m.To(msg.To); err != nil {
		return nil, PermanentError{msg: "invalid to address: " + err.Error()}
	}
	m.Subject(msg.Subject)

	// Text fallback + HTML alternative
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}

func containsAny(s string, subs ...string) bool {
	for _, x := range subs {
		if x != "" && strings.Contains(s, x) {
			return true
		}
	}
	return false
}

// TemporaryError marks a relay failure that may succeed later (network, 4xx).
type TemporaryError struct{ msg string }

func (e TemporaryError) Error() string   { return e.msg }
func (e TemporaryError) Temporary() bool { return true }

// PermanentError marks a failure that will not succeed on repeat (auth, bad address).
type PermanentError struct{ msg string }

func (e PermanentError) Error() string   { return e.msg }
func (e PermanentError) Permanent() bool { return true }
