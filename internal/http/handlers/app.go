package handlers

import (
	"encoding/json"
	"net/http"

	"adstudio/internal/infra"
	"adstudio/internal/studio"
)

// App is the handler container: configuration plus the studio orchestrator and
// the in-memory session store.
type App struct {
	Config   *infra.Config
	Logger   infra.Logger
	Studio   *studio.Studio
	Sessions *studio.Store
}

func NewApp(cfg *infra.Config, logger infra.Logger, st *studio.Studio, sessions *studio.Store) *App {
	return &App{Config: cfg, Logger: logger, Studio: st, Sessions: sessions}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]string{"code": code, "message": message})
}
