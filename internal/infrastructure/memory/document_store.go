package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/raknago/parking-backend/internal/domain"
)

// DocumentStore keeps documents in process. Used by tests and by the
// server when no database is configured in dev.
type DocumentStore struct {
	mu   sync.RWMutex
	data map[string]map[string]domain.Document // collection -> id -> doc
	now  func() time.Time
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		data: make(map[string]map[string]domain.Document),
		now:  time.Now,
	}
}

// WithClock overrides the write clock.
func (s *DocumentStore) WithClock(now func() time.Time) *DocumentStore {
	s.now = now
	return s
}

func copyDoc(d domain.Document) domain.Document {
	d.Fields = d.Fields.Clone()
	return d
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.data[collection][id]
	if !ok {
		return domain.Document{}, domain.ErrDocumentNotFound()
	}
	return copyDoc(d), nil
}

func (s *DocumentStore) List(ctx context.Context, collection string, q domain.Query) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data[collection]))
	for id := range s.data[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []domain.Document
	for _, id := range ids {
		d := s.data[collection][id]
		if !q.Matches(d.Fields) {
			continue
		}
		out = append(out, copyDoc(d))
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

func (s *DocumentStore) Create(ctx context.Context, doc domain.Document) (domain.Document, error) {
	fields, err := domain.NormalizeFields(doc.Fields)
	if err != nil {
		return domain.Document{}, domain.ErrInvalidField("fields", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[doc.Collection][doc.ID]; exists {
		return domain.Document{}, domain.ErrDocumentExists()
	}
	now := s.now().UTC()
	doc.Fields = fields
	doc.CreateTime, doc.UpdateTime = now, now
	s.put(doc)
	return copyDoc(doc), nil
}

func (s *DocumentStore) Set(ctx context.Context, doc domain.Document) (domain.Document, error) {
	fields, err := domain.NormalizeFields(doc.Fields)
	if err != nil {
		return domain.Document{}, domain.ErrInvalidField("fields", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	doc.Fields = fields
	doc.CreateTime, doc.UpdateTime = now, now
	if prev, ok := s.data[doc.Collection][doc.ID]; ok {
		doc.CreateTime = prev.CreateTime
	}
	s.put(doc)
	return copyDoc(doc), nil
}

func (s *DocumentStore) put(doc domain.Document) {
	coll, ok := s.data[doc.Collection]
	if !ok {
		coll = make(map[string]domain.Document)
		s.data[doc.Collection] = coll
	}
	coll[doc.ID] = doc
}

func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[collection][id]; !ok {
		return domain.ErrDocumentNotFound()
	}
	delete(s.data[collection], id)
	return nil
}

func (s *DocumentStore) Count(ctx context.Context, collection string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for id := range s.data[collection] {
		if id != domain.CollectionInfoID {
			n++
		}
	}
	return n, nil
}

func (s *DocumentStore) Ping(ctx context.Context) error { return nil }

func (s *DocumentStore) Profile(ctx context.Context, uid string) (domain.Fields, bool, error) {
	d, err := s.Get(ctx, domain.CollectionUsers, uid)
	if err != nil {
		return nil, false, nil
	}
	return d.Fields, true, nil
}
