package soundboard

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Vasu1712/soundboard-backend/internal/api/httpx"
	"github.com/Vasu1712/soundboard-backend/internal/middleware"
	"github.com/Vasu1712/soundboard-backend/internal/models"
	apperrors "github.com/Vasu1712/soundboard-backend/pkg/errors"
)

// Presence reports the live roster.
type Presence interface {
	Snapshot() models.Roster
}

// Activity reports recent plays, newest first.
type Activity interface {
	Activity() []models.PlaybackEvent
}

// SoundboardHandler serves the soundboard's read endpoints and its
// websocket.
type SoundboardHandler struct {
	Presence Presence
	Activity Activity
	WS       http.Handler
	Logger   *zap.Logger
}

// GetPresence handles GET /api/v1/soundboard/presence.
func (h *SoundboardHandler) GetPresence(w http.ResponseWriter, r *http.Request) {
	if !h.collaborator(w, r) {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.Presence.Snapshot())
}

// GetActivity handles GET /api/v1/soundboard/activity.
func (h *SoundboardHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	if !h.collaborator(w, r) {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.Activity.Activity())
}

// collaborator writes 403 unless the caller may use the soundboard.
func (h *SoundboardHandler) collaborator(w http.ResponseWriter, r *http.Request) bool {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok || !identity.Role.CanBroadcast() {
		httpx.WriteError(w, h.Logger, apperrors.Forbidden("soundboard access requires a collaborative role"))
		return false
	}
	return true
}
