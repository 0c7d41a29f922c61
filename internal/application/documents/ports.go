package documents

import (
	"context"

	"github.com/raknago/parking-backend/internal/access"
	"github.com/raknago/parking-backend/internal/domain"
)

/*
Store
-----
Persistence port for documents. Both the postgres and the in-memory
stores satisfy it.
*/
type Store interface {
	Get(ctx context.Context, collection, id string) (domain.Document, error)
	List(ctx context.Context, collection string, q domain.Query) ([]domain.Document, error)
	Create(ctx context.Context, doc domain.Document) (domain.Document, error)
	Set(ctx context.Context, doc domain.Document) (domain.Document, error)
	Delete(ctx context.Context, collection, id string) error
}

/*
Authorizer
----------
Decides client reads and writes. Implemented by access.Evaluator.
*/
type Authorizer interface {
	Authorize(ctx context.Context, id access.Identity, req access.Request) error
	Readable(ctx context.Context, id access.Identity, docs []domain.Document) ([]domain.Document, error)
}

// ProfileInvalidator drops a cached requester profile after a users write.
type ProfileInvalidator interface {
	Invalidate(ctx context.Context, uid string)
}
