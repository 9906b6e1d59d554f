package chi

import (
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kailas-cloud/lexlsh/internal/metrics"
)

// Handler builds the routed HTTP handler with the full middleware chain.
// Authentication is disabled when apiKeys is empty.
func (s *Server) Handler(apiKeys []string) http.Handler {
	r := gochi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEvent(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Post("/encode", s.Encode)
	r.Post("/search", s.Search)
	r.Get("/stats", s.Stats)

	r.Route("/documents", func(r gochi.Router) {
		r.Post("/", s.CreateDocument)
		r.Post("/batch", s.BatchUpsert)
		r.Delete("/batch", s.BatchDelete)
		r.Put("/{id}", s.UpsertDocument)
		r.Get("/{id}", s.GetDocument)
		r.Delete("/{id}", s.DeleteDocument)
		r.Post("/{id}/similar", s.SimilarDocuments)
	})

	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", metrics.Handler())

	return r
}
