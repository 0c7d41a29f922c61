package memory

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/raknago/parking-backend/internal/application/audit"
)

// NoopPublisher logs audit events instead of sending them.
type NoopPublisher struct {
	log zerolog.Logger
}

func NewNoopPublisher(log zerolog.Logger) *NoopPublisher {
	return &NoopPublisher{log: log.With().Str("component", "noop-pub").Logger()}
}

func (p *NoopPublisher) Publish(ctx context.Context, evt audit.Event) error {
	p.log.Debug().
		Str("routing_key", evt.RoutingKey()).
		Str("collection", evt.Collection).
		Str("doc_id", evt.DocumentID).
		Str("actor", evt.ActorID).
		Msg("audit event")
	return nil
}

// RecordingPublisher keeps every event; tests use it to assert on audit output.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []audit.Event
	Err    error
}

func (p *RecordingPublisher) Publish(ctx context.Context, evt audit.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.Err
}

func (p *RecordingPublisher) Events() []audit.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]audit.Event(nil), p.events...)
}
