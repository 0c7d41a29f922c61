package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/raknago/parking-backend/internal/domain"
)

// uniqueViolation is the SQLSTATE for a primary key clash.
const uniqueViolation = "23505"

type DocumentStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db, now: time.Now}
}

// ---------- helpers ----------

type documentRow struct {
	Collection string
	ID         string
	Data       []byte
	CreateTime time.Time
	UpdateTime time.Time
}

func scanDocument(scan func(dest ...any) error) (documentRow, error) {
	var dr documentRow
	err := scan(&dr.Collection, &dr.ID, &dr.Data, &dr.CreateTime, &dr.UpdateTime)
	return dr, err
}

func toDomainDocument(dr documentRow) (domain.Document, error) {
	fields, err := domain.DecodeFields(dr.Data)
	if err != nil {
		return domain.Document{}, domain.ErrInternal(err)
	}
	return domain.Document{
		Collection: dr.Collection,
		ID:         dr.ID,
		Fields:     fields,
		CreateTime: dr.CreateTime.UTC(),
		UpdateTime: dr.UpdateTime.UTC(),
	}, nil
}

func validKey(collection, id string) error {
	if strings.TrimSpace(collection) == "" {
		return domain.ErrMissingField("collection")
	}
	if strings.TrimSpace(id) == "" {
		return domain.ErrMissingField("id")
	}
	return nil
}

// ---------- store ----------

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (domain.Document, error) {
	if err := validKey(collection, id); err != nil {
		return domain.Document{}, err
	}
	const q = `
SELECT collection, id, data, create_time, update_time
FROM documents
WHERE collection = $1 AND id = $2
LIMIT 1;
`
	dr, err := scanDocument(s.db.QueryRowContext(ctx, q, collection, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Document{}, domain.ErrDocumentNotFound()
		}
		return domain.Document{}, domain.ErrDBUnavailable(err)
	}
	return toDomainDocument(dr)
}

// List returns documents ordered by id. String equality filters run in SQL
// against the tagged encoding; other value kinds are filtered after decoding.
func (s *DocumentStore) List(ctx context.Context, collection string, q domain.Query) ([]domain.Document, error) {
	if strings.TrimSpace(collection) == "" {
		return nil, domain.ErrMissingField("collection")
	}

	query := `
SELECT collection, id, data, create_time, update_time
FROM documents
WHERE collection = $1`
	args := []any{collection}

	str, sqlFilter := q.Value.(string)
	sqlFilter = sqlFilter && q.Field != ""
	if sqlFilter {
		query += `
  AND data -> $2::text ->> 'stringValue' = $3`
		args = append(args, q.Field, str)
	}
	query += `
ORDER BY id;`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		dr, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		doc, err := toDomainDocument(dr)
		if err != nil {
			return nil, err
		}
		if !sqlFilter && !q.Matches(doc.Fields) {
			continue
		}
		out = append(out, doc)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

func (s *DocumentStore) Create(ctx context.Context, doc domain.Document) (domain.Document, error) {
	if err := validKey(doc.Collection, doc.ID); err != nil {
		return domain.Document{}, err
	}
	data, err := domain.EncodeFields(doc.Fields)
	if err != nil {
		return domain.Document{}, domain.ErrInvalidField("fields", err.Error())
	}
	now := s.now().UTC()

	const q = `
INSERT INTO documents (collection, id, data, create_time, update_time)
VALUES ($1, $2, $3, $4, $4)
RETURNING collection, id, data, create_time, update_time;
`
	dr, err := scanDocument(s.db.QueryRowContext(ctx, q, doc.Collection, doc.ID, string(data), now).Scan)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Document{}, domain.ErrDocumentExists()
		}
		return domain.Document{}, domain.ErrDBUnavailable(err)
	}
	return toDomainDocument(dr)
}

// Set writes the full document, creating it when absent. create_time is kept
// on overwrite.
func (s *DocumentStore) Set(ctx context.Context, doc domain.Document) (domain.Document, error) {
	if err := validKey(doc.Collection, doc.ID); err != nil {
		return domain.Document{}, err
	}
	data, err := domain.EncodeFields(doc.Fields)
	if err != nil {
		return domain.Document{}, domain.ErrInvalidField("fields", err.Error())
	}
	now := s.now().UTC()

	const q = `
INSERT INTO documents (collection, id, data, create_time, update_time)
VALUES ($1, $2, $3, $4, $4)
ON CONFLICT (collection, id)
DO UPDATE SET data = EXCLUDED.data, update_time = EXCLUDED.update_time
RETURNING collection, id, data, create_time, update_time;
`
	dr, err := scanDocument(s.db.QueryRowContext(ctx, q, doc.Collection, doc.ID, string(data), now).Scan)
	if err != nil {
		return domain.Document{}, domain.ErrDBUnavailable(err)
	}
	return toDomainDocument(dr)
}

func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	if err := validKey(collection, id); err != nil {
		return err
	}
	const q = `DELETE FROM documents WHERE collection = $1 AND id = $2;`
	res, err := s.db.ExecContext(ctx, q, collection, id)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	if n == 0 {
		return domain.ErrDocumentNotFound()
	}
	return nil
}

// Count excludes the _collection_info descriptor.
func (s *DocumentStore) Count(ctx context.Context, collection string) (int64, error) {
	const q = `SELECT COUNT(*) FROM documents WHERE collection = $1 AND id <> $2;`
	var n int64
	if err := s.db.QueryRowContext(ctx, q, collection, domain.CollectionInfoID).Scan(&n); err != nil {
		return 0, domain.ErrDBUnavailable(err)
	}
	return n, nil
}

func (s *DocumentStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

// Profile reads users/{uid} for the access evaluator.
func (s *DocumentStore) Profile(ctx context.Context, uid string) (domain.Fields, bool, error) {
	doc, err := s.Get(ctx, domain.CollectionUsers, uid)
	if err != nil {
		if domain.Is(err, "document_not_found") {
			return nil, false, nil
		}
		return nil, false, err
	}
	return doc.Fields, true, nil
}
