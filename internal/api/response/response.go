package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/transpass/transpass/internal/core"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListResponse wraps a list of items.
type ListResponse struct {
	Items any `json:"items"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// WriteList writes items as {"items": [...]}.
func WriteList(w http.ResponseWriter, items any) {
	WriteJSON(w, http.StatusOK, ListResponse{Items: items})
}

// WriteServiceError maps a core error to an HTTP status. Unrecognised errors
// are logged and reported as a generic 500.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrValidation):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrConflict):
		WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

// WriteBlob writes a binary body with the given content type.
func WriteBlob(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
