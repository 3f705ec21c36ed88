package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"server/internal/http/handlers"
	"server/internal/infra"
	"server/internal/middleware"
)

// NewRouter wires middleware and routes. Everything under /v1/tts requires
// an authenticated user; the tier itself is never taken from the token.
func NewRouter(app *handlers.App, cfg *infra.Config, logger zerolog.Logger, country middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		chimw.Recoverer,
		middleware.RequestID,
		middleware.Logger(logger, country),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.RateLimit(cfg.RateLimitPerMin, time.Minute),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/tts", func(r chi.Router) {
		r.Use(middleware.AuthJWT(cfg.JWTSecret))
		r.Post("/speak", app.TTSSpeak)
		r.Post("/stop", app.TTSStop)
		r.Get("/usage", app.TTSUsage)
		r.Get("/stats", app.StatsSummary)
	})

	return r
}
