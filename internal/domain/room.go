package domain

import "time"

type RoomID string

// Meeting is the backend's metadata for a room. Read-only on the client.
type Meeting struct {
	ID          string    `json:"id,omitempty"`
	RoomID      RoomID    `json:"roomId,omitempty"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	HostID      UserID    `json:"hostId,omitempty"`
	Status      string    `json:"status,omitempty"`
	StartedAt   time.Time `json:"startedAt,omitzero"`
}
