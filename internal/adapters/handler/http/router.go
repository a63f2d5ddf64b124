package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewHandler(sessionHandler *SessionHandler, voteHandler *VoteHandler, tallyHandler *TallyHandler, streamHandler *StreamHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("welcome"))
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.CreateSession)

			r.Route("/{code}", func(r chi.Router) {
				r.Get("/", sessionHandler.GetSession)
				r.Patch("/", sessionHandler.SetOpen)
				r.Get("/tally", tallyHandler.GetTally)
				r.Get("/stream", streamHandler.StreamChanges)

				r.Group(func(r chi.Router) {
					r.Use(RequireDeviceID)
					r.Post("/votes", voteHandler.CastVote)
					r.Get("/votes/mine", voteHandler.MyVote)
				})
			})
		})
	})

	return r
}
