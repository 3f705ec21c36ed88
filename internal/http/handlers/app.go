package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/gate"
	"server/internal/infra"
	"server/internal/middleware"
	"server/internal/speech"
)

// AdmissionGate is the handlers' view of the action gate.
type AdmissionGate interface {
	Attempt(ctx context.Context, userID, text string) (domain.Decision, error)
	Standing(ctx context.Context, userID string) (gate.Standing, error)
}

// App bundles handler dependencies.
type App struct {
	SQL      infra.SQLExecutor
	Gate     AdmissionGate
	Sessions *speech.Sessions
	Logger   zerolog.Logger
}

func NewApp(sql infra.SQLExecutor, g AdmissionGate, sessions *speech.Sessions, logger zerolog.Logger) *App {
	return &App{SQL: sql, Gate: g, Sessions: sessions, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, message string) {
	a.json(w, code, map[string]string{"error": slug, "message": message})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
