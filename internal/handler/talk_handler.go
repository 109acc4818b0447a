package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"safetyhub/internal/domain/talk"
	"safetyhub/internal/ports"
	"safetyhub/internal/usecase/talks"
)

type TalkHandler struct {
	svc       *talks.Service
	directory ports.RecipientDirectory
}

func NewTalkHandler(svc *talks.Service, directory ports.RecipientDirectory) *TalkHandler {
	return &TalkHandler{svc: svc, directory: directory}
}

type quizQuestionPayload struct {
	Text    string `json:"text"`
	Answers []struct {
		Text    string `json:"text"`
		Correct bool   `json:"correct"`
	} `json:"answers"`
}

func quizFromPayload(payload []quizQuestionPayload) []talk.QuizQuestionInput {
	quiz := make([]talk.QuizQuestionInput, 0, len(payload))
	for _, q := range payload {
		question := talk.QuizQuestionInput{Text: q.Text}
		for _, a := range q.Answers {
			question.Answers = append(question.Answers, talk.QuizAnswerInput{Text: a.Text, Correct: a.Correct})
		}
		quiz = append(quiz, question)
	}
	return quiz
}

// parseTalkForm reads either a JSON body or a multipart form (the latter
// carries the optional attachment upload).
func (h *TalkHandler) parseTalkForm(r *http.Request) (title string, body string, attachment *talks.AttachmentInput, quiz []talk.QuizQuestionInput, hasQuizField bool, err error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err = r.ParseMultipartForm(64 << 20); err != nil {
			return "", "", nil, nil, false, err
		}
		title = r.FormValue("title")
		body = r.FormValue("body")

		if url := strings.TrimSpace(r.FormValue("attachment_url")); url != "" {
			attachment = &talks.AttachmentInput{URL: url}
		} else if file, header, ferr := r.FormFile("attachment"); ferr == nil {
			attachment = &talks.AttachmentInput{
				FileName: header.Filename,
				File:     file,
				Size:     header.Size,
			}
		}

		if raw := r.FormValue("quiz"); raw != "" {
			hasQuizField = true
			var payload []quizQuestionPayload
			if err = json.Unmarshal([]byte(raw), &payload); err != nil {
				return "", "", nil, nil, false, err
			}
			quiz = quizFromPayload(payload)
		}
		return title, body, attachment, quiz, hasQuizField, nil
	}

	var payload struct {
		Title         string                 `json:"title"`
		Body          string                 `json:"body"`
		AttachmentURL string                 `json:"attachment_url"`
		Quiz          *[]quizQuestionPayload `json:"quiz"`
	}
	if err = json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return "", "", nil, nil, false, err
	}
	if url := strings.TrimSpace(payload.AttachmentURL); url != "" {
		attachment = &talks.AttachmentInput{URL: url}
	}
	if payload.Quiz != nil {
		hasQuizField = true
		quiz = quizFromPayload(*payload.Quiz)
	}
	return payload.Title, payload.Body, attachment, quiz, hasQuizField, nil
}

func (h *TalkHandler) createTalk(w http.ResponseWriter, r *http.Request) {
	title, body, attachment, quiz, _, err := h.parseTalkForm(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	talkID, err := h.svc.CreateTalk(r.Context(), actorFrom(r), talks.CreateTalkInput{
		Title:      title,
		Body:       body,
		Attachment: attachment,
		Quiz:       quiz,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"talk_id": talkID})
}

func (h *TalkHandler) updateTalk(w http.ResponseWriter, r *http.Request) {
	talkID, ok := pathID(w, r, "talkID")
	if !ok {
		return
	}

	title, body, attachment, quiz, hasQuizField, err := h.parseTalkForm(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	input := talks.UpdateTalkInput{Title: title, Body: body, Attachment: attachment}
	if hasQuizField {
		input.Quiz = &quiz
	}

	if err := h.svc.UpdateTalk(r.Context(), actorFrom(r), talkID, input); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"talk_id": talkID})
}

func (h *TalkHandler) listTalks(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("archived") == "true"
	items, err := h.svc.ListTalks(r.Context(), actorFrom(r), includeArchived)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *TalkHandler) getTalk(w http.ResponseWriter, r *http.Request) {
	talkID, ok := pathID(w, r, "talkID")
	if !ok {
		return
	}

	t, questions, err := h.svc.GetTalk(r.Context(), actorFrom(r), talkID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"talk": t, "quiz": questions})
}

func (h *TalkHandler) distribute(w http.ResponseWriter, r *http.Request) {
	talkID, ok := pathID(w, r, "talkID")
	if !ok {
		return
	}

	var payload struct {
		RecipientIDs []uint64 `json:"recipient_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	result, err := h.svc.Distribute(r.Context(), actorFrom(r), talkID, payload.RecipientIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success_count": result.SuccessCount,
		"skipped":       result.Skipped,
		"errors":        result.Errors,
	})
}

func (h *TalkHandler) sendTest(w http.ResponseWriter, r *http.Request) {
	talkID, ok := pathID(w, r, "talkID")
	if !ok {
		return
	}

	var payload struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	result, err := h.svc.SendTest(r.Context(), actorFrom(r), talks.SendTestInput{
		TalkID: talkID,
		Email:  payload.Email,
		Phone:  payload.Phone,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"email_sent": result.EmailSent,
		"sms_sent":   result.SMSSent,
		"success":    result.EmailSent || result.SMSSent,
		"test_url":   result.TestURL,
		"message":    result.Message,
	})
}

func (h *TalkHandler) archiveTalk(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, true)
}

func (h *TalkHandler) unarchiveTalk(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, false)
}

func (h *TalkHandler) setArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	talkID, ok := pathID(w, r, "talkID")
	if !ok {
		return
	}

	var err error
	if archived {
		err = h.svc.ArchiveTalk(r.Context(), actorFrom(r), talkID)
	} else {
		err = h.svc.UnarchiveTalk(r.Context(), actorFrom(r), talkID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TalkHandler) deleteTalk(w http.ResponseWriter, r *http.Request) {
	talkID, ok := pathID(w, r, "talkID")
	if !ok {
		return
	}

	if err := h.svc.DeleteTalk(r.Context(), actorFrom(r), talkID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TalkHandler) resend(w http.ResponseWriter, r *http.Request) {
	talkID, ok := pathID(w, r, "talkID")
	if !ok {
		return
	}

	var payload struct {
		RecipientID uint64 `json:"recipient_id"`
		Channel     string `json:"channel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	if err := h.svc.ResendNotification(r.Context(), actorFrom(r), talkID, payload.RecipientID, payload.Channel); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TalkHandler) pendingReport(w http.ResponseWriter, r *http.Request) {
	windowDays, _ := strconv.Atoi(r.URL.Query().Get("window"))
	rows, err := h.svc.PendingSignatures(r.Context(), actorFrom(r), windowDays)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *TalkHandler) historyReport(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.TalkHistory(r.Context(), actorFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *TalkHandler) listRecipients(w http.ResponseWriter, r *http.Request) {
	items, err := h.directory.ListRecipients(r.Context(), r.URL.Query().Get("group"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, param), 10, 64)
	if err != nil || id == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid " + param})
		return 0, false
	}
	return id, true
}
