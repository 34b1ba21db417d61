// Package domain contains entity without logic, just meta-data
package domain

import "strings"

type UserID string

// Profile holds the independently optional profile fields of a user.
type Profile struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
}

func (p Profile) IsZero() bool {
	return p.FirstName == "" && p.LastName == "" && p.Email == ""
}

// FullName joins the known name parts, empty when neither is known.
func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Identity is the user a session acts as.
type Identity struct {
	UserID    UserID
	Profile   Profile
	Anonymous bool
}

// Candidate is a possibly partial profile update keyed by user id.
type Candidate struct {
	ID UserID
	Profile
}
