package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/tutorhub/tutorhub/internal"
	"github.com/tutorhub/tutorhub/pkg/models"
)

var log = internal.GetLogger()

var validate = validator.New()

// encodeJSON encodes data into JSON and writes it to the response writer.
func encodeJSON(w http.ResponseWriter, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(data)
}

// decodeAndValidateJSON decodes a JSON request body into the provided
// struct and runs its validate tags.
func decodeAndValidateJSON(r *http.Request, data interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(data); err != nil {
		return models.ErrBadRequest
	}
	if err := validate.Struct(data); err != nil {
		return err
	}
	return nil
}

// renderError renders an error response with a status appropriate to the
// error type.
func renderError(w http.ResponseWriter, err error, status int) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrBadRequest):
		status = http.StatusBadRequest
	default:
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			status = http.StatusBadRequest
		}
	}

	if status != http.StatusNotFound {
		// Don't log not found errors
		log.Error(err)
	}

	http.Error(w, err.Error(), status)
}
