package server

import (
	"net/http"

	"github.com/tutorhub/tutorhub/pkg/models"
)

type generatePayload struct {
	models.GenerationRequest
}

// GenerateHandler runs an orchestrated generation.
//
// POST /api/v1/generate
func GenerateHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload generatePayload
		if err := decodeAndValidateJSON(r, &payload); err != nil {
			renderError(w, err, http.StatusBadRequest)
			return
		}
		if payload.Text() == "" {
			renderError(w, models.ErrBadRequest, http.StatusBadRequest)
			return
		}

		result, err := appState.Generation.Generate(r.Context(), &payload.GenerationRequest)
		if err != nil {
			renderError(w, err, http.StatusBadGateway)
			return
		}

		if err := encodeJSON(w, result); err != nil {
			renderError(w, err, http.StatusInternalServerError)
		}
	}
}

// GenerateStructuredHandler runs a generation with the response format
// forced to JSON and returns the parsed value.
//
// POST /api/v1/generate/structured
func GenerateStructuredHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload generatePayload
		if err := decodeAndValidateJSON(r, &payload); err != nil {
			renderError(w, err, http.StatusBadRequest)
			return
		}
		if payload.Text() == "" {
			renderError(w, models.ErrBadRequest, http.StatusBadRequest)
			return
		}

		result, err := appState.Generation.GenerateStructured(r.Context(), &payload.GenerationRequest)
		if err != nil {
			renderError(w, err, http.StatusBadGateway)
			return
		}

		if err := encodeJSON(w, result); err != nil {
			renderError(w, err, http.StatusInternalServerError)
		}
	}
}
