package server

import (
	"net/http"

	"github.com/tutorhub/tutorhub/pkg/models"
)

type searchPayload struct {
	Query string `json:"query" validate:"required"`
	models.SearchOptions
}

type hybridSearchPayload struct {
	Query string `json:"query" validate:"required"`
	models.HybridSearchOptions
}

type recommendPayload struct {
	models.RecommendOptions
}

// SearchHandler runs a relevance-ranked semantic search.
//
// POST /api/v1/search
func SearchHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload searchPayload
		if err := decodeAndValidateJSON(r, &payload); err != nil {
			renderError(w, err, http.StatusBadRequest)
			return
		}

		results, err := appState.Search.Search(r.Context(), payload.Query, payload.SearchOptions)
		if err != nil {
			renderError(w, err, http.StatusInternalServerError)
			return
		}

		if err := encodeJSON(w, results); err != nil {
			renderError(w, err, http.StatusInternalServerError)
		}
	}
}

// HybridSearchHandler blends semantic and keyword-like recall.
//
// POST /api/v1/search/hybrid
func HybridSearchHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload hybridSearchPayload
		if err := decodeAndValidateJSON(r, &payload); err != nil {
			renderError(w, err, http.StatusBadRequest)
			return
		}

		results, err := appState.Search.HybridSearch(r.Context(), payload.Query, payload.HybridSearchOptions)
		if err != nil {
			renderError(w, err, http.StatusInternalServerError)
			return
		}

		if err := encodeJSON(w, results); err != nil {
			renderError(w, err, http.StatusInternalServerError)
		}
	}
}

// RecommendHandler returns diversity-filtered recommendations seeded by
// content or an already-indexed document.
//
// POST /api/v1/recommend
func RecommendHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload recommendPayload
		if err := decodeAndValidateJSON(r, &payload); err != nil {
			renderError(w, err, http.StatusBadRequest)
			return
		}
		if payload.Content == "" && payload.DocumentID == "" {
			renderError(w, models.ErrBadRequest, http.StatusBadRequest)
			return
		}

		results, err := appState.Search.Recommend(r.Context(), payload.RecommendOptions)
		if err != nil {
			renderError(w, err, http.StatusInternalServerError)
			return
		}

		if err := encodeJSON(w, results); err != nil {
			renderError(w, err, http.StatusInternalServerError)
		}
	}
}
