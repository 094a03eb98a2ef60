package models

import "time"

// PlaybackEvent records one accepted broadcast play. It only lives in the
// in-memory activity log.
type PlaybackEvent struct {
	SoundID    string    `json:"soundId"`
	SoundName  string    `json:"soundName"`
	PlayedByID string    `json:"playedById"`
	PlayedBy   string    `json:"playedBy"`
	Timestamp  time.Time `json:"timestamp"`
}

// SoundPlayed is the payload of the sound_played event.
type SoundPlayed struct {
	SoundID     string    `json:"soundId"`
	SoundName   string    `json:"soundName"`
	SoundURL    string    `json:"soundUrl"`
	SoundVolume int       `json:"soundVolume"`
	PlayedBy    string    `json:"playedBy"`
	PlayedByID  string    `json:"playedById"`
	Timestamp   time.Time `json:"timestamp"`
}
