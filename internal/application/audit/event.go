package audit

import (
	"context"
	"time"
)

// Routing keys on the audit exchange.
const (
	DocumentCreated = "document.created"
	DocumentUpdated = "document.updated"
	DocumentDeleted = "document.deleted"

	AdminUserPromoted = "admin.user.promoted"
	AdminSetupRun     = "admin.setup.completed"
	AdminBackupTaken  = "admin.backup.created"
)

// Event records who changed which document. Field values are never included.
type Event struct {
	Action     string    `json:"action"`
	Collection string    `json:"collection,omitempty"`
	DocumentID string    `json:"document_id,omitempty"`
	ActorID    string    `json:"actor_id,omitempty"`
	Fields     []string  `json:"fields,omitempty"`
	At         time.Time `json:"at"`
}

func (e Event) RoutingKey() string { return e.Action }

/*
Publisher
---------
Ships audit events to the broker. Callers treat failures as best effort:
the write has already committed.
*/
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}
