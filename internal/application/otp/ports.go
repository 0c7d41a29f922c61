package otp

import "context"

// Message is a rendered email ready for the relay.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers one message through the mail relay.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Limiter answers whether identity may hit scope once more in the current window.
type Limiter interface {
	Allow(ctx context.Context, scope, identity string) (bool, error)
}
