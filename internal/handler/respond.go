package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"safetyhub/internal/bootstrap/logging"
	"safetyhub/internal/domain/talk"
	"safetyhub/internal/errs"
	"safetyhub/internal/ports"
	"safetyhub/internal/usecase/documents"
	"safetyhub/internal/usecase/talks"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the error taxonomy onto HTTP statuses: validation to
// 400, lifecycle conflicts to 409, unknown tokens/ids to 404, forbidden
// to 403. Everything else is an opaque 500 with detail only in the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case talk.IsValidation(err) ||
		errors.Is(err, documents.ErrTitleRequired) ||
		errors.Is(err, documents.ErrFileRequired):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case talk.IsStateConflict(err):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, talks.ErrForbidden) || errors.Is(err, documents.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, ports.ErrTalkNotFound) ||
		errors.Is(err, ports.ErrDistributionNotFound) ||
		errors.Is(err, ports.ErrRecipientNotFound) ||
		errors.Is(err, ports.ErrDocumentNotFound) ||
		errors.Is(err, ports.ErrFileNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		logging.Error(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("err", errs.Loggable(err)),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
