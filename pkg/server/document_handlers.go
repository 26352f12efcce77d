package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tutorhub/tutorhub/pkg/models"
)

type indexDocumentPayload struct {
	models.Document
}

type indexBatchPayload struct {
	Documents []models.Document `json:"documents" validate:"required,min=1,dive"`
}

// IndexDocumentHandler indexes a single document.
//
// POST /api/v1/documents
func IndexDocumentHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload indexDocumentPayload
		if err := decodeAndValidateJSON(r, &payload); err != nil {
			renderError(w, err, http.StatusBadRequest)
			return
		}
		if payload.Content == "" {
			renderError(w, models.ErrBadRequest, http.StatusBadRequest)
			return
		}

		id, err := appState.Search.Index(r.Context(), payload.Document)
		if err != nil {
			renderError(w, err, http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusCreated)
		if err := encodeJSON(w, map[string]string{"id": id}); err != nil {
			renderError(w, err, http.StatusInternalServerError)
		}
	}
}

// IndexBatchHandler indexes documents in batches, returning per-item
// failures rather than failing the request.
//
// POST /api/v1/documents/batch
func IndexBatchHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload indexBatchPayload
		if err := decodeAndValidateJSON(r, &payload); err != nil {
			renderError(w, err, http.StatusBadRequest)
			return
		}

		result, err := appState.Search.IndexBatch(r.Context(), payload.Documents)
		if err != nil {
			renderError(w, err, http.StatusInternalServerError)
			return
		}

		if err := encodeJSON(w, result); err != nil {
			renderError(w, err, http.StatusInternalServerError)
		}
	}
}

// StoreStatsHandler returns aggregate store statistics.
//
// GET /api/v1/documents/stats
func StoreStatsHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := encodeJSON(w, appState.VectorStore.Stats()); err != nil {
			renderError(w, err, http.StatusInternalServerError)
		}
	}
}

// DeleteDocumentHandler removes a single vector from the store.
//
// DELETE /api/v1/documents/{documentID}
func DeleteDocumentHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		documentID := chi.URLParam(r, "documentID")
		if documentID == "" {
			renderError(w, models.ErrBadRequest, http.StatusBadRequest)
			return
		}

		if err := appState.VectorStore.Remove(documentID); err != nil {
			renderError(w, err, http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
