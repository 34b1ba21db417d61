package core

import (
	"maps"
	"strings"
	"sync"

	"github.com/dkeye/meetsync/internal/domain"
)

// PlaceholderName is shown for users whose profile is not known yet.
const PlaceholderName = "Participant"

// Directory maps user ids to the best known profile.
// Merge is the only write path; a known non-empty field is never replaced
// by an empty one.
type Directory struct {
	mu      sync.RWMutex
	entries map[domain.UserID]domain.Profile
}

func NewDirectory() *Directory {
	return &Directory{entries: make(map[domain.UserID]domain.Profile)}
}

// Merge folds the candidates into the directory and reports whether any
// entry changed. Candidates without an id are ignored.
func (d *Directory) Merge(candidates ...domain.Candidate) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	changed := false
	for _, c := range candidates {
		if c.ID == "" {
			continue
		}
		existing := d.entries[c.ID]
		merged := mergeProfile(existing, c.Profile)
		if merged == existing {
			continue
		}
		d.entries[c.ID] = merged
		changed = true
	}
	return changed
}

func mergeProfile(existing, candidate domain.Profile) domain.Profile {
	return domain.Profile{
		FirstName: pick(candidate.FirstName, existing.FirstName),
		LastName:  pick(candidate.LastName, existing.LastName),
		Email:     pick(candidate.Email, existing.Email),
	}
}

func pick(candidate, existing string) string {
	if strings.TrimSpace(candidate) != "" {
		return candidate
	}
	return existing
}

func (d *Directory) Lookup(id domain.UserID) (domain.Profile, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.entries[id]
	return p, ok
}

// NeedsProfile reports whether no name is known for id.
func (d *Directory) NeedsProfile(id domain.UserID) bool {
	p, _ := d.Lookup(id)
	return p.FullName() == ""
}

// DisplayName falls back from full name to email to PlaceholderName.
func (d *Directory) DisplayName(id domain.UserID) string {
	p, _ := d.Lookup(id)
	if name := p.FullName(); name != "" {
		return name
	}
	if p.Email != "" {
		return p.Email
	}
	return PlaceholderName
}

func (d *Directory) Snapshot() map[domain.UserID]domain.Profile {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return maps.Clone(d.entries)
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}
