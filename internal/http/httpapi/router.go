package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"adstudio/internal/http/handlers"
	"adstudio/internal/middleware"
)

// NewRouter wires the API surface consumed by the browser front-end.
func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.CORS(app.Config.AllowedOrigins),
		middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute),
		middleware.Logger(app.Logger),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", app.SubmitSession)
		r.Route("/{session_id}", func(r chi.Router) {
			r.Get("/", app.GetSession)
			r.Get("/download", app.DownloadBatch)
			r.Route("/ads/{ad_id}", func(r chi.Router) {
				r.Post("/rating", app.RateAd)
				r.Post("/regenerate", app.RegenerateAd)
				r.Get("/download", app.DownloadAd)
			})
		})
	})

	return r
}
