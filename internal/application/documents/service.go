package documents

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/raknago/parking-backend/internal/access"
	"github.com/raknago/parking-backend/internal/application/audit"
	"github.com/raknago/parking-backend/internal/domain"
	"github.com/raknago/parking-backend/internal/metrics"
)

// Service is the client path to the document store. Every operation is
// authorized before anything is returned or written.
type Service struct {
	store     Store
	authz     Authorizer
	pub       audit.Publisher
	profiles  ProfileInvalidator
	catalogue *domain.Catalogue

	now   func() time.Time
	newID func() string
	log   zerolog.Logger
}

func NewService(store Store, authz Authorizer, pub audit.Publisher, log zerolog.Logger) *Service {
	return &Service{
		store:     store,
		authz:     authz,
		pub:       pub,
		catalogue: domain.DefaultCatalogue(),
		now:       time.Now,
		newID:     uuid.NewString,
		log:       log.With().Str("component", "documents").Logger(),
	}
}

// WithProfileCache makes users writes invalidate the cached requester profile.
func (s *Service) WithProfileCache(inv ProfileInvalidator) *Service {
	s.profiles = inv
	return s
}

func (s *Service) Get(ctx context.Context, id access.Identity, collection, docID string) (domain.Document, error) {
	docID = strings.TrimSpace(docID)
	if docID == "" {
		return domain.Document{}, domain.ErrMissingField("id")
	}

	doc, err := s.store.Get(ctx, collection, docID)
	missing := domain.Is(err, "document_not_found")
	if err != nil && !missing {
		return domain.Document{}, err
	}

	// a missing document is evaluated against empty state so a denial
	// never leaks whether it exists
	req := access.Request{Op: access.OpRead, Collection: collection, ID: docID}
	if !missing {
		req.Existing = doc.Fields
	}
	if err := s.authz.Authorize(ctx, id, req); err != nil {
		return domain.Document{}, err
	}
	if missing {
		return domain.Document{}, domain.ErrDocumentNotFound()
	}
	return doc, nil
}

// List returns the documents matching q that the requester may read.
// The limit applies after the read policy.
func (s *Service) List(ctx context.Context, id access.Identity, collection string, q domain.Query) ([]domain.Document, error) {
	if !domain.IsKnownCollection(collection) {
		return nil, s.authz.Authorize(ctx, id, access.Request{Op: access.OpRead, Collection: collection})
	}

	limit := q.Limit
	q.Limit = 0
	docs, err := s.store.List(ctx, collection, q)
	if err != nil {
		return nil, err
	}
	visible := docs[:0]
	for _, d := range docs {
		if d.ID != domain.CollectionInfoID {
			visible = append(visible, d)
		}
	}

	out, err := s.authz.Readable(ctx, id, visible)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Create stores a new document. An empty docID gets a generated one.
func (s *Service) Create(ctx context.Context, id access.Identity, collection, docID string, fields domain.Fields) (domain.Document, error) {
	docID = strings.TrimSpace(docID)
	if docID == "" {
		docID = s.newID()
	}
	fields, err := normalize(fields)
	if err != nil {
		return domain.Document{}, err
	}
	proposed := s.catalogue.Coerce(collection, fields, s.now())

	req := access.Request{Op: access.OpCreate, Collection: collection, ID: docID, Proposed: proposed}
	if err := s.authz.Authorize(ctx, id, req); err != nil {
		return domain.Document{}, err
	}
	if err := domain.ValidateFields(collection, proposed); err != nil {
		return domain.Document{}, err
	}

	doc, err := s.store.Create(ctx, domain.Document{Collection: collection, ID: docID, Fields: proposed})
	if err != nil {
		return domain.Document{}, err
	}
	metrics.RecordDocumentWrite(collection, string(access.OpCreate))
	s.afterWrite(ctx, id, audit.DocumentCreated, collection, docID, sortedKeys(proposed))
	return doc, nil
}

// Update merges patch into the stored document and replaces it.
func (s *Service) Update(ctx context.Context, id access.Identity, collection, docID string, patch domain.Fields) (domain.Document, error) {
	patch, err := normalize(patch)
	if err != nil {
		return domain.Document{}, err
	}
	coerced := s.catalogue.Coerce(collection, patch, s.now())
	existing, err := s.store.Get(ctx, collection, docID)
	if err != nil {
		if domain.Is(err, "document_not_found") {
			return domain.Document{}, s.denyOrMissing(ctx, id, access.Request{
				Op: access.OpUpdate, Collection: collection, ID: docID, Proposed: coerced,
			}, err)
		}
		return domain.Document{}, err
	}

	merged := domain.Merge(existing.Fields, coerced)
	req := access.Request{
		Op:         access.OpUpdate,
		Collection: collection,
		ID:         docID,
		Existing:   existing.Fields,
		Proposed:   merged,
	}
	if err := s.authz.Authorize(ctx, id, req); err != nil {
		return domain.Document{}, err
	}
	if err := domain.ValidateFields(collection, merged); err != nil {
		return domain.Document{}, err
	}

	doc, err := s.store.Set(ctx, domain.Document{Collection: collection, ID: docID, Fields: merged})
	if err != nil {
		return domain.Document{}, err
	}
	metrics.RecordDocumentWrite(collection, string(access.OpUpdate))
	s.afterWrite(ctx, id, audit.DocumentUpdated, collection, docID, domain.AffectedKeys(existing.Fields, merged))
	return doc, nil
}

func (s *Service) Delete(ctx context.Context, id access.Identity, collection, docID string) error {
	existing, err := s.store.Get(ctx, collection, docID)
	if err != nil {
		if domain.Is(err, "document_not_found") {
			return s.denyOrMissing(ctx, id, access.Request{Op: access.OpDelete, Collection: collection, ID: docID}, err)
		}
		return err
	}

	req := access.Request{Op: access.OpDelete, Collection: collection, ID: docID, Existing: existing.Fields}
	if err := s.authz.Authorize(ctx, id, req); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, collection, docID); err != nil {
		return err
	}
	metrics.RecordDocumentWrite(collection, string(access.OpDelete))
	s.afterWrite(ctx, id, audit.DocumentDeleted, collection, docID, nil)
	return nil
}

// denyOrMissing evaluates a write on a missing document against empty state,
// as Get does, so only a requester the rule admits learns it is missing.
func (s *Service) denyOrMissing(ctx context.Context, id access.Identity, req access.Request, notFound error) error {
	if err := s.authz.Authorize(ctx, id, req); err != nil {
		return err
	}
	return notFound
}

// afterWrite runs the post-commit side effects. None of them can fail the write.
func (s *Service) afterWrite(ctx context.Context, id access.Identity, action, collection, docID string, keys []string) {
	if collection == domain.CollectionUsers && s.profiles != nil {
		s.profiles.Invalidate(ctx, docID)
	}
	if s.pub == nil {
		return
	}
	evt := audit.Event{
		Action:     action,
		Collection: collection,
		DocumentID: docID,
		ActorID:    id.UID,
		Fields:     keys,
		At:         s.now().UTC(),
	}
	if err := s.pub.Publish(ctx, evt); err != nil {
		metrics.RecordAuditPublishFailure(evt.RoutingKey())
		s.log.Warn().Err(err).Str("routing_key", evt.RoutingKey()).Str("id", docID).Msg("audit publish failed")
	}
}

func normalize(in domain.Fields) (domain.Fields, error) {
	out, err := domain.NormalizeFields(in)
	if err != nil {
		return nil, domain.ErrInvalidField("fields", err.Error())
	}
	return out, nil
}

func sortedKeys(f domain.Fields) []string {
	return domain.AffectedKeys(nil, f)
}
