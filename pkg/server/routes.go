package server

import (
	"fmt"
	"net/http"
	"time"

	httpLogger "github.com/chi-middleware/logrus-logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tutorhub/tutorhub/config"
	"github.com/tutorhub/tutorhub/pkg/models"
)

const ReadHeaderTimeout = 5 * time.Second

// Create creates a new HTTP server with the given app state
func Create(appState *models.AppState) *http.Server {
	router := setupRouter(appState)
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", appState.Config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}
}

func setupRouter(appState *models.AppState) *chi.Mux {
	router := chi.NewRouter()
	router.Use(httpLogger.Logger("router", log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(SendVersion)
	router.Use(middleware.Heartbeat("/healthz"))

	router.Route("/api/v1", func(r chi.Router) {
		// Generation routes
		r.Route("/generate", func(r chi.Router) {
			r.Post("/", GenerateHandler(appState))
			r.Post("/structured", GenerateStructuredHandler(appState))
		})
		// Document indexing routes
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", IndexDocumentHandler(appState))
			r.Post("/batch", IndexBatchHandler(appState))
			r.Get("/stats", StoreStatsHandler(appState))
			r.Delete("/{documentID}", DeleteDocumentHandler(appState))
		})
		// Search routes
		r.Route("/search", func(r chi.Router) {
			r.Post("/", SearchHandler(appState))
			r.Post("/hybrid", HybridSearchHandler(appState))
		})
		r.Post("/recommend", RecommendHandler(appState))
	})

	return router
}

// SendVersion is a middleware that adds the current version to the response
func SendVersion(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tutorhub-Version", config.VersionString)
		next.ServeHTTP(w, r)
	})
}
