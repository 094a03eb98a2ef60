package soundboard

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSoundboardRoutes registers the presence, activity and websocket
// routes. The websocket authenticates its own handshake.
func RegisterSoundboardRoutes(r *mux.Router, handler *SoundboardHandler, requireIdentity func(http.Handler) http.Handler) {
	api := r.PathPrefix("/api/v1/soundboard").Subrouter()
	api.Use(requireIdentity)
	api.HandleFunc("/presence", handler.GetPresence).Methods(http.MethodGet)
	api.HandleFunc("/activity", handler.GetActivity).Methods(http.MethodGet)

	r.Handle("/ws/soundboard", handler.WS).Methods(http.MethodGet)
}
