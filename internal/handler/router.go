package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"safetyhub/internal/ports"
	"safetyhub/internal/usecase/documents"
	"safetyhub/internal/usecase/talks"
)

// NewRouter wires the HTTP surface. /api requires the gateway identity
// headers; the token routes under /t and /preview need none.
func NewRouter(
	talkSvc *talks.Service,
	docSvc *documents.Service,
	directory ports.RecipientDirectory,
	files ports.FileStore,
) http.Handler {
	talkHandler := NewTalkHandler(talkSvc, directory)
	confirmHandler := NewConfirmHandler(talkSvc)
	docHandler := NewDocumentHandler(docSvc)
	filesHandler := NewFilesHandler(files)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Recipient surface, addressed by token only.
	r.Route("/t/{token}", func(r chi.Router) {
		r.Get("/", confirmHandler.view)
		r.Post("/quiz", confirmHandler.gradeQuiz)
		r.Post("/confirm", confirmHandler.confirm)
	})
	r.Get("/preview/{token}", confirmHandler.view)

	r.Route("/api", func(r chi.Router) {
		r.Use(withAuth)

		r.Route("/talks", func(r chi.Router) {
			r.Get("/", talkHandler.listTalks)
			r.Post("/", talkHandler.createTalk)
			r.Route("/{talkID}", func(r chi.Router) {
				r.Get("/", talkHandler.getTalk)
				r.Put("/", talkHandler.updateTalk)
				r.Delete("/", talkHandler.deleteTalk)
				r.Post("/distribute", talkHandler.distribute)
				r.Post("/test", talkHandler.sendTest)
				r.Post("/archive", talkHandler.archiveTalk)
				r.Post("/unarchive", talkHandler.unarchiveTalk)
				r.Post("/resend", talkHandler.resend)
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/pending", talkHandler.pendingReport)
			r.Get("/history", talkHandler.historyReport)
		})

		r.Get("/recipients", talkHandler.listRecipients)

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", docHandler.list)
			r.Post("/", docHandler.create)
			r.Route("/{documentID}", func(r chi.Router) {
				r.Get("/", docHandler.get)
				r.Patch("/", docHandler.setFlag)
				r.Post("/tags", docHandler.tag)
				r.Get("/revisions", docHandler.listRevisions)
				r.Post("/revisions", docHandler.addRevision)
			})
		})

		r.Get("/files/{name}", filesHandler.serve)
	})

	return r
}
