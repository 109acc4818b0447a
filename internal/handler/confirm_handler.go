package handler

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"safetyhub/internal/domain/talk"
	"safetyhub/internal/usecase/talks"
)

// ConfirmHandler serves the token-addressed recipient surface. The token
// is the only credential; no session is involved.
type ConfirmHandler struct {
	svc *talks.Service
}

func NewConfirmHandler(svc *talks.Service) *ConfirmHandler {
	return &ConfirmHandler{svc: svc}
}

func (h *ConfirmHandler) view(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.ViewByToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ConfirmHandler) gradeQuiz(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Selections map[uint64]uint64 `json:"selections"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	score, err := h.svc.GradeQuiz(r.Context(), chi.URLParam(r, "token"), payload.Selections)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"score": score})
}

func (h *ConfirmHandler) confirm(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Understood    bool   `json:"understood"`
		SignatureMode string `json:"signature_mode"`
		SignatureData string `json:"signature_data"`
		TypedName     string `json:"typed_name"`
		QuizScore     *int   `json:"quiz_score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	created, err := h.svc.Confirm(r.Context(), talks.ConfirmInput{
		Token:         chi.URLParam(r, "token"),
		Understood:    payload.Understood,
		SignatureMode: talk.SignatureMode(payload.SignatureMode),
		SignatureData: payload.SignatureData,
		TypedName:     payload.TypedName,
		QuizScore:     payload.QuizScore,
		SubmitterIP:   ip,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"confirmation_id": created.ConfirmationID,
		"submitted_at":    created.SubmittedAt,
	})
}
