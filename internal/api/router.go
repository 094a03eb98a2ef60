// Package api wires the HTTP routes of the soundboard service.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Vasu1712/soundboard-backend/internal/api/httpx"
	"github.com/Vasu1712/soundboard-backend/internal/api/sounds"
	"github.com/Vasu1712/soundboard-backend/internal/api/soundboard"
	"github.com/Vasu1712/soundboard-backend/internal/auth"
	"github.com/Vasu1712/soundboard-backend/internal/middleware"
)

type RouterConfig struct {
	Sounds        sounds.SoundStore
	Authenticator auth.Authenticator
	Presence      soundboard.Presence
	Activity      soundboard.Activity
	WS            http.Handler
	AllowedOrigin string
	Logger        *zap.Logger
}

// NewRouter builds the service's HTTP handler.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger.Named("http")
	requireIdentity := middleware.RequireIdentity(cfg.Authenticator, logger)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	sounds.RegisterSoundRoutes(r, &sounds.SoundHandler{Store: cfg.Sounds, Logger: logger}, requireIdentity)
	soundboard.RegisterSoundboardRoutes(r, &soundboard.SoundboardHandler{
		Presence: cfg.Presence,
		Activity: cfg.Activity,
		WS:       cfg.WS,
		Logger:   logger,
	}, requireIdentity)

	// Wrapped outside the router so preflight requests, which match no
	// route, still get CORS headers.
	return middleware.RequestLogger(logger)(middleware.CORS(cfg.AllowedOrigin, logger)(r))
}
