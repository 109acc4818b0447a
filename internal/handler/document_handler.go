package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"safetyhub/internal/ports"
	"safetyhub/internal/usecase/documents"
)

type DocumentHandler struct {
	svc *documents.Service
}

func NewDocumentHandler(svc *documents.Service) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

func (h *DocumentHandler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form: " + err.Error()})
		return
	}

	input := documents.CreateDocumentInput{
		Title: r.FormValue("title"),
		Note:  r.FormValue("note"),
	}
	if tags := strings.TrimSpace(r.FormValue("tags")); tags != "" {
		input.Tags = strings.Split(tags, ",")
	}
	if file, header, err := r.FormFile("file"); err == nil {
		input.File = file
		input.FileName = header.Filename
	}

	created, err := h.svc.CreateDocument(r.Context(), actorFrom(r), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *DocumentHandler) list(w http.ResponseWriter, r *http.Request) {
	filter := ports.DocumentFilter{
		Tag:             r.URL.Query().Get("tag"),
		IncludeArchived: r.URL.Query().Get("archived") == "true",
	}
	if r.URL.Query().Get("favorites") == "true" {
		filter.FavoritesOf = actorFrom(r).UserID
	}

	items, err := h.svc.ListDocuments(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *DocumentHandler) get(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathID(w, r, "documentID")
	if !ok {
		return
	}

	doc, err := h.svc.GetDocument(r.Context(), documentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) addRevision(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathID(w, r, "documentID")
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form: " + err.Error()})
		return
	}

	input := documents.AddRevisionInput{
		DocumentID: documentID,
		Note:       r.FormValue("note"),
	}
	if file, header, err := r.FormFile("file"); err == nil {
		input.File = file
		input.FileName = header.Filename
	}

	created, err := h.svc.AddRevision(r.Context(), actorFrom(r), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *DocumentHandler) listRevisions(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathID(w, r, "documentID")
	if !ok {
		return
	}

	items, err := h.svc.ListRevisions(r.Context(), documentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *DocumentHandler) setFlag(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathID(w, r, "documentID")
	if !ok {
		return
	}

	var payload struct {
		Pinned   *bool `json:"pinned"`
		Archived *bool `json:"archived"`
		Favorite *bool `json:"favorite"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	actor := actorFrom(r)
	var err error
	switch {
	case payload.Pinned != nil:
		err = h.svc.SetPinned(r.Context(), actor, documentID, *payload.Pinned)
	case payload.Archived != nil:
		err = h.svc.SetArchived(r.Context(), actor, documentID, *payload.Archived)
	case payload.Favorite != nil:
		err = h.svc.SetFavorite(r.Context(), actor, documentID, *payload.Favorite)
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "one of pinned, archived, favorite is required"})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) tag(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathID(w, r, "documentID")
	if !ok {
		return
	}

	var payload struct {
		Add    string `json:"add"`
		Remove string `json:"remove"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	actor := actorFrom(r)
	var err error
	switch {
	case payload.Add != "":
		err = h.svc.AddTag(r.Context(), actor, documentID, payload.Add)
	case payload.Remove != "":
		err = h.svc.RemoveTag(r.Context(), actor, documentID, payload.Remove)
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "one of add, remove is required"})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
