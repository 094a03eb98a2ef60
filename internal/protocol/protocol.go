// Package protocol defines the JSON frames exchanged over the soundboard
// websocket.
package protocol

import (
	"strings"

	"github.com/segmentio/encoding/json"

	apperrors "github.com/Vasu1712/soundboard-backend/pkg/errors"
)

// Client to server events.
const (
	EventPlaySound = "play_sound"
	EventMute      = "mute"
	EventUnmute    = "unmute"
)

// Server to client events.
const (
	EventSoundPlayed    = "sound_played"
	EventConnectedUsers = "connected_users"
	EventAck            = "ack"
)

// Envelope is an outbound frame.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Inbound is a frame received from a client. Data carries the sound id for
// play_sound and is empty for mute/unmute. A non-empty ID asks for an ack.
type Inbound struct {
	Event string `json:"event"`
	Data  string `json:"data,omitempty"`
	ID    string `json:"id,omitempty"`
}

// Ack acknowledges one inbound frame to its sender only.
type Ack struct {
	ID    string    `json:"id"`
	OK    bool      `json:"ok"`
	Error *AckError `json:"error,omitempty"`
}

type AckError struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
}

// Encode serializes one outbound event.
func Encode(event string, payload any) ([]byte, error) {
	return json.Marshal(Envelope{Event: event, Data: payload})
}

type inboundWire struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	ID    string          `json:"id"`
}

// Decode parses one inbound frame. When only data is malformed the event
// and ID are still returned with the error so the sender can be acked.
func Decode(frame []byte) (Inbound, error) {
	var wire inboundWire
	if err := json.Unmarshal(frame, &wire); err != nil {
		return Inbound{}, apperrors.Wrap(apperrors.CodeInvalidArgument, "malformed frame", err)
	}
	in := Inbound{Event: strings.TrimSpace(wire.Event), ID: wire.ID}
	if in.Event == "" {
		return in, apperrors.InvalidArg("frame has no event")
	}
	if len(wire.Data) > 0 && string(wire.Data) != "null" {
		if err := json.Unmarshal(wire.Data, &in.Data); err != nil {
			return in, apperrors.Wrap(apperrors.CodeInvalidArgument, "data must be a string", err)
		}
	}
	return in, nil
}

// NewAck builds the ack for a processed frame; a nil err acknowledges success.
func NewAck(id string, err error) Ack {
	if err == nil {
		return Ack{ID: id, OK: true}
	}
	return Ack{
		ID: id,
		Error: &AckError{
			Code:    apperrors.CodeOf(err),
			Message: apperrors.MessageOf(err),
		},
	}
}
