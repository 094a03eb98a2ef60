package models

import "time"

// Identity is what the session authenticator resolves a token to.
type Identity struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Image  string `json:"image,omitempty"`
}

// Connection is one live soundboard socket session.
type Connection struct {
	ID          string    // Connection ID (UUID), unique per socket
	UserID      string    // Authenticated user ID
	Name        string    // Display name at connect time
	Role        Role      // Fixed for the lifetime of the connection
	Image       string    // Avatar URL
	Muted       bool      // Self-mute flag, visible to peers
	ConnectedAt time.Time // Admission time
}

// NewConnection attaches an identity to a fresh connection ID.
func NewConnection(id string, identity Identity, connectedAt time.Time) Connection {
	return Connection{
		ID:          id,
		UserID:      identity.UserID,
		Name:        identity.Name,
		Role:        identity.Role,
		Image:       identity.Image,
		ConnectedAt: connectedAt,
	}
}

// RosterUser is the public view of a connection in the connected_users event.
type RosterUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
	Image string `json:"image"`
	Muted bool   `json:"muted"`
}

// Roster is the payload of the connected_users event.
type Roster struct {
	Users     []RosterUser `json:"users"`
	Count     int          `json:"count"`
	Timestamp time.Time    `json:"timestamp"`
}
