package domain

// Participant represents a user's presence in a room.
// Records are never removed during a session; leaving only clears Connected.
type Participant struct {
	ID UserID `json:"id"`
	Profile
	Connected   bool `json:"connected"`
	IsLocalUser bool `json:"isLocalUser"`
}
