package admin

import (
	"context"

	"github.com/raknago/parking-backend/internal/domain"
)

/*
Store
-----
Privileged access to the document store. Nothing here goes through the
access evaluator.
*/
type Store interface {
	Get(ctx context.Context, collection, id string) (domain.Document, error)
	List(ctx context.Context, collection string, q domain.Query) ([]domain.Document, error)
	Create(ctx context.Context, doc domain.Document) (domain.Document, error)
	Set(ctx context.Context, doc domain.Document) (domain.Document, error)
	Count(ctx context.Context, collection string) (int64, error)
}

// SnapshotUploader stores a backup snapshot off-site and returns its location.
type SnapshotUploader interface {
	Upload(ctx context.Context, key string, body []byte) (string, error)
}

// ProfileInvalidator drops a cached requester profile after a users write.
type ProfileInvalidator interface {
	Invalidate(ctx context.Context, uid string)
}
