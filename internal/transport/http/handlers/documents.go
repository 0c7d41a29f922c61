package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/raknago/parking-backend/internal/access"
	"github.com/raknago/parking-backend/internal/domain"
	"github.com/raknago/parking-backend/internal/logger"
	"github.com/raknago/parking-backend/internal/transport/http/dto"
	"github.com/raknago/parking-backend/internal/transport/http/middleware"
	"github.com/raknago/parking-backend/internal/transport/http/response"
)

const maxListLimit = 500

// DocumentService is the client-path document API.
type DocumentService interface {
	Get(ctx context.Context, id access.Identity, collection, docID string) (domain.Document, error)
	List(ctx context.Context, id access.Identity, collection string, q domain.Query) ([]domain.Document, error)
	Create(ctx context.Context, id access.Identity, collection, docID string, fields domain.Fields) (domain.Document, error)
	Update(ctx context.Context, id access.Identity, collection, docID string, patch domain.Fields) (domain.Document, error)
	Delete(ctx context.Context, id access.Identity, collection, docID string) error
}

type DocumentsHandler struct {
	svc DocumentService
}

func NewDocumentsHandler(svc DocumentService) *DocumentsHandler {
	return &DocumentsHandler{svc: svc}
}

// List handles GET /v1/{collection}?field=&value=&limit=
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := domain.Query{Field: strings.TrimSpace(r.URL.Query().Get("field"))}
	if q.Field != "" {
		q.Value = response.ParseValue(r.URL.Query().Get("value"))
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > maxListLimit {
			response.WriteError(w, r, domain.ErrInvalidField("limit", "must be between 0 and 500"))
			return
		}
		q.Limit = n
	}

	docs, err := h.svc.List(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "collection"), q)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.ToDocumentList(docs))
}

// Get handles GET /v1/{collection}/{id}
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Get(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "collection"), chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.ToDocumentView(doc))
}

// Create handles POST /v1/{collection} (generated id) and PUT /v1/{collection}/{id}.
func (h *DocumentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, err := response.DecodeFields(r)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	id := middleware.IdentityFromContext(r.Context())
	doc, err := h.svc.Create(r.Context(), id, chi.URLParam(r, "collection"), chi.URLParam(r, "id"), fields)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("collection", doc.Collection).
		Str("id", doc.ID).
		Msg("document_created")
	response.Created(w, "/v1/"+doc.Collection+"/"+doc.ID, dto.ToDocumentView(doc))
}

// Update handles PATCH /v1/{collection}/{id}
func (h *DocumentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	patch, err := response.DecodeFields(r)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	doc, err := h.svc.Update(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "collection"), chi.URLParam(r, "id"), patch)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.ToDocumentView(doc))
}

// Delete handles DELETE /v1/{collection}/{id}
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "collection"), chi.URLParam(r, "id")); err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.NoContent(w)
}
