package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Init wires the tracker API routes.
func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withLogging)

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)

		r.Route("/data", func(r chi.Router) {
			r.Get("/", h.getData)
			r.Post("/", h.postData)
			r.Delete("/", h.deleteData)
			r.Post("/findOrCreateProduct", h.findOrCreateProduct)
		})
	})

	return router
}
