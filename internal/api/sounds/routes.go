package sounds

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSoundRoutes registers the catalog routes. Pin routes require an
// identity and go through requireIdentity.
func RegisterSoundRoutes(r *mux.Router, handler *SoundHandler, requireIdentity func(http.Handler) http.Handler) {
	r.HandleFunc("/api/v1/sounds", handler.ListSounds).Methods(http.MethodGet)

	authed := r.PathPrefix("/api/v1/sounds").Subrouter()
	authed.Use(requireIdentity)
	authed.HandleFunc("/pinned", handler.ListPinned).Methods(http.MethodGet)
	authed.HandleFunc("/{id}/pin", handler.TogglePin).Methods(http.MethodPost)
}
