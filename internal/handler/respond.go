package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/foldervault/foldervault/internal/service"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps the domain error taxonomy to status codes:
// 400 InvalidArgument, 403 Forbidden, 404 NotFound, 500 everything else.
func respondDomainError(w http.ResponseWriter, err error) {
	var domainErr *service.Error
	if errors.As(err, &domainErr) {
		switch domainErr.Kind {
		case service.KindInvalidArgument:
			respondError(w, http.StatusBadRequest, domainErr.Message)
			return
		case service.KindForbidden:
			respondError(w, http.StatusForbidden, domainErr.Message)
			return
		case service.KindNotFound:
			respondError(w, http.StatusNotFound, domainErr.Message)
			return
		case service.KindInternal:
			slog.Error("internal failure", "error", domainErr.Unwrap(), "message", domainErr.Message)
			respondError(w, http.StatusInternalServerError, domainErr.Message)
			return
		}
	}

	slog.Error("unclassified failure", "error", err)
	respondError(w, http.StatusInternalServerError, "internal server error")
}
