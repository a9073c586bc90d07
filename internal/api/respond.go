package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hammamikhairi/cooksync/internal/domain"
	"github.com/hammamikhairi/cooksync/internal/engine"
	"github.com/hammamikhairi/cooksync/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

// writeFailure maps a service error to a status code. notFound is the
// detail used for domain.ErrNotFound.
func writeFailure(w http.ResponseWriter, log *logger.Logger, err error, notFound string) {
	var verr *engine.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: verr.Error(), Fields: verr.Fields})
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, domain.ErrNoDishes):
		writeError(w, http.StatusBadRequest, "No dishes or tasks found")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, domain.ErrNotImplemented):
		writeError(w, http.StatusNotImplemented, "Google sign-in is not configured on this server")
	default:
		log.Error("api: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decode reads a JSON body. An empty body leaves v untouched when
// allowEmpty is set.
func decode(r *http.Request, v any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if allowEmpty && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
