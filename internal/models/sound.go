package models

import "time"

// DefaultSoundVolume is used when a sound has no stored volume.
const DefaultSoundVolume = 100

// Sound is a soundboard catalog entry.
type Sound struct {
	ID        string    `json:"id"`                 // Unique identifier for the sound (cuid from the site database)
	Name      string    `json:"name"`               // Display name
	URL       string    `json:"url"`                // Playable audio URL
	Volume    int       `json:"soundVolume"`        // Per-sound volume, 0-100
	Emoji     string    `json:"emoji,omitempty"`    // Optional emoji annotation
	IsPinned  bool      `json:"isPinned,omitempty"` // Pinned by the requesting user (only set on per-user listings)
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
