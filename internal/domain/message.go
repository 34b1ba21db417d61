package domain

import "time"

// Message is a chat entry. Author carries the denormalized profile when the
// server sent one; nil means the directory has to be consulted.
type Message struct {
	ID        string    `json:"id"`
	UserID    UserID    `json:"userId"`
	Author    *Profile  `json:"author,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
