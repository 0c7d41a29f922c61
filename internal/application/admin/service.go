package admin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/raknago/parking-backend/internal/application/audit"
	"github.com/raknago/parking-backend/internal/domain"
)

type Service struct {
	store     Store
	pub       audit.Publisher
	uploader  SnapshotUploader
	profiles  ProfileInvalidator
	catalogue *domain.Catalogue

	now   func() time.Time
	newID func() string
	log   zerolog.Logger
}

func NewService(store Store, pub audit.Publisher, log zerolog.Logger) *Service {
	return &Service{
		store:     store,
		pub:       pub,
		catalogue: domain.DefaultCatalogue(),
		now:       time.Now,
		newID:     uuid.NewString,
		log:       log.With().Str("component", "admin").Logger(),
	}
}

// WithUploader enables off-site backup snapshots.
func (s *Service) WithUploader(u SnapshotUploader) *Service {
	s.uploader = u
	return s
}

// WithProfileCache makes role changes visible to a running API that caches
// requester profiles.
func (s *Service) WithProfileCache(inv ProfileInvalidator) *Service {
	s.profiles = inv
	return s
}

// logAction appends to system_logs and publishes the audit event.
// The mutation already happened, so failures are only logged.
func (s *Service) logAction(ctx context.Context, action, userID, collection, docID string, fields []string) {
	entry := domain.SystemLog{Action: action, UserID: userID, Timestamp: s.now().UTC()}
	if _, err := s.store.Create(ctx, domain.Document{
		Collection: domain.CollectionSystemLogs,
		ID:         s.newID(),
		Fields:     entry.Fields(),
	}); err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("system log append failed")
	}

	if s.pub == nil {
		return
	}
	evt := audit.Event{
		Action:     action,
		Collection: collection,
		DocumentID: docID,
		ActorID:    userID,
		Fields:     fields,
		At:         entry.Timestamp,
	}
	if err := s.pub.Publish(ctx, evt); err != nil {
		s.log.Warn().Err(err).Str("routing_key", evt.RoutingKey()).Msg("audit publish failed")
	}
}
