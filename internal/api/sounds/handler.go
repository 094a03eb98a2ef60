package sounds

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Vasu1712/soundboard-backend/internal/api/httpx"
	"github.com/Vasu1712/soundboard-backend/internal/middleware"
	"github.com/Vasu1712/soundboard-backend/internal/models"
	apperrors "github.com/Vasu1712/soundboard-backend/pkg/errors"
)

// SoundStore is the part of the sound catalog the REST API needs.
type SoundStore interface {
	ListSounds(ctx context.Context) ([]models.Sound, error)
	ListSoundsForUser(ctx context.Context, userID string) ([]models.Sound, error)
	TogglePin(ctx context.Context, userID, soundID string, isPinned bool) error
}

// SoundHandler holds the dependencies for the sound catalog endpoints.
type SoundHandler struct {
	Store  SoundStore
	Logger *zap.Logger
}

// ListSounds handles GET /api/v1/sounds and returns the whole catalog
// ordered by name.
func (h *SoundHandler) ListSounds(w http.ResponseWriter, r *http.Request) {
	sounds, err := h.Store.ListSounds(r.Context())
	if err != nil {
		httpx.WriteError(w, h.Logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sounds)
}

// ListPinned handles GET /api/v1/sounds/pinned. The caller's pinned sounds
// come first.
func (h *SoundHandler) ListPinned(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())

	sounds, err := h.Store.ListSoundsForUser(r.Context(), identity.UserID)
	if err != nil {
		httpx.WriteError(w, h.Logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sounds)
}

// TogglePin handles POST /api/v1/sounds/{id}/pin. The body carries the pin
// state the client currently shows; the handler flips it.
func (h *SoundHandler) TogglePin(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	soundID := strings.TrimSpace(mux.Vars(r)["id"])
	if soundID == "" {
		httpx.WriteError(w, h.Logger, apperrors.ErrInvalidSoundID)
		return
	}

	var req struct {
		IsPinned bool `json:"isPinned"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.Logger, err)
		return
	}

	if err := h.Store.TogglePin(r.Context(), identity.UserID, soundID, req.IsPinned); err != nil {
		httpx.WriteError(w, h.Logger, err)
		return
	}

	h.Logger.Debug("pin toggled",
		zap.String("user_id", identity.UserID),
		zap.String("sound_id", soundID),
		zap.Bool("pinned", !req.IsPinned),
	)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"soundId":  soundID,
		"isPinned": !req.IsPinned,
	})
}
