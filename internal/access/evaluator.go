package access

import (
	"context"
	_ "embed"

	"github.com/rs/zerolog"

	"github.com/raknago/parking-backend/internal/domain"
	"github.com/raknago/parking-backend/internal/metrics"
)

//go:embed firestore.rules
var rulesDocument string

// RulesDocument returns the declarative rule text the evaluator implements.
// It is published by the admin setup command and never parsed at runtime.
func RulesDocument() string { return rulesDocument }

type Evaluator struct {
	profiles ProfileReader
	log      zerolog.Logger
}

func NewEvaluator(profiles ProfileReader, log zerolog.Logger) *Evaluator {
	return &Evaluator{
		profiles: profiles,
		log:      log.With().Str("component", "access").Logger(),
	}
}

// Authorize returns nil when the request is allowed and a permission_denied
// error otherwise. A profile lookup failure is returned as is.
func (e *Evaluator) Authorize(ctx context.Context, id Identity, req Request) error {
	profile, err := e.profile(ctx, id)
	if err != nil {
		return err
	}
	if !e.record(id, profile, req) {
		return domain.ErrPermissionDenied()
	}
	return nil
}

// Readable keeps the documents the requester may read, loading the
// requester profile once.
func (e *Evaluator) Readable(ctx context.Context, id Identity, docs []domain.Document) ([]domain.Document, error) {
	profile, err := e.profile(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		req := Request{Op: OpRead, Collection: d.Collection, ID: d.ID, Existing: d.Fields}
		if e.record(id, profile, req) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (e *Evaluator) profile(ctx context.Context, id Identity) (Profile, error) {
	if !id.IsAuthenticated() || e.profiles == nil {
		return Profile{}, nil
	}
	fields, ok, err := e.profiles.Profile(ctx, id.UID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{Exists: ok, Fields: fields}, nil
}

func (e *Evaluator) record(id Identity, profile Profile, req Request) bool {
	allowed := decide(id, profile, req)
	metrics.RecordAccessDecision(req.Collection, string(req.Op), allowed)
	e.log.Debug().
		Str("uid", id.UID).
		Str("collection", req.Collection).
		Str("doc_id", req.ID).
		Str("op", string(req.Op)).
		Bool("allowed", allowed).
		Msg("access decision")
	return allowed
}
