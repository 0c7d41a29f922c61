package admin

import (
	"context"

	"github.com/raknago/parking-backend/internal/application/audit"
	"github.com/raknago/parking-backend/internal/domain"
)

// Setup writes the _collection_info descriptor into every catalogued
// collection. Re-running overwrites the descriptors.
func (s *Service) Setup(ctx context.Context) ([]string, error) {
	now := s.now().UTC()
	names := s.catalogue.Names()
	for _, name := range names {
		spec, _ := s.catalogue.Collection(name)
		doc := domain.Document{
			Collection: name,
			ID:         domain.CollectionInfoID,
			Fields: domain.Fields{
				"description": spec.Description,
				"schema":      spec.SchemaDescription(),
				"createdAt":   now,
			},
		}
		if _, err := s.store.Set(ctx, doc); err != nil {
			return nil, err
		}
		s.log.Info().Str("collection", name).Msg("collection ready")
	}

	s.logAction(ctx, audit.AdminSetupRun, "", "", "", nil)
	return names, nil
}
