package config

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const (
	MailSenderSMTP = "smtp"
	MailSenderFake = "fake"
)

// MailConfig is the explicit relay configuration handed to the OTP sender.
type MailConfig struct {
	Sender   string // smtp | fake
	Host     string
	Port     int
	User     string
	Password string // whitespace removed
	FromName string
	Timeout  time.Duration
	Insecure bool
}

func LoadMail() (MailConfig, error) {
	mc := MailConfig{
		Sender:   getEnv("EMAIL_SENDER", MailSenderFake),
		Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		Port:     getInt("SMTP_PORT", 587),
		User:     getEnv("EMAIL_USER", ""),
		Password: StripSpaces(getEnv("EMAIL_PASSWORD", "")),
		FromName: getEnv("EMAIL_FROM_NAME", "RaknaGo"),
		Insecure: getBool("SMTP_INSECURE", false),
	}

	var err error
	if mc.Timeout, err = getDuration("SMTP_TIMEOUT", 10*time.Second); err != nil {
		return MailConfig{}, err
	}

	switch mc.Sender {
	case MailSenderSMTP:
		if mc.User == "" {
			return MailConfig{}, fmt.Errorf("smtp sender selected but missing EMAIL_USER")
		}
		if mc.Password == "" {
			return MailConfig{}, fmt.Errorf("smtp sender selected but missing EMAIL_PASSWORD")
		}
	case MailSenderFake:
	default:
		return MailConfig{}, fmt.Errorf("invalid EMAIL_SENDER: %q", mc.Sender)
	}
	return mc, nil
}

// StripSpaces removes every whitespace rune. App passwords are often
// pasted in their grouped "abcd efgh ..." form.
func StripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
