package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"safetyhub/internal/ports"
)

// FilesHandler proxies stored uploads. Content type is sniffed from the
// first bytes rather than trusted from the stored extension.
type FilesHandler struct {
	files ports.FileStore
}

func NewFilesHandler(files ports.FileStore) *FilesHandler {
	return &FilesHandler{files: files}
}

func (h *FilesHandler) serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	f, err := h.files.Open(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		writeError(w, r, err)
		return
	}
	head = head[:n]

	w.Header().Set("Content-Type", http.DetectContentType(head))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := w.Write(head); err != nil {
		return
	}
	_, _ = io.Copy(w, f)
}
