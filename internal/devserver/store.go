// Package devserver is an in-memory meeting backend speaking the client wire
// protocol. It exists for local development and end-to-end tests.
package devserver

import (
	"cmp"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/dkeye/meetsync/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/teris-io/shortid"
)

var (
	ErrRoomNotFound  = errors.New("meeting not found")
	ErrAlreadyJoined = errors.New("already joined")
	ErrNotInRoom     = errors.New("not joined to this meeting")
	ErrEmptyMessage  = errors.New("empty message")
)

type RoomInfo struct {
	RoomID       domain.RoomID `json:"roomId"`
	Title        string        `json:"title"`
	Participants int           `json:"participants"`
}

// Store holds rooms and user profiles. Rooms are never removed.
type Store struct {
	policy Policy

	mu    sync.RWMutex
	rooms map[domain.RoomID]*Room
	users map[domain.UserID]domain.Profile
}

func NewStore(policy Policy) *Store {
	if policy == nil {
		policy = KickPolicy{}
	}
	return &Store{
		policy: policy,
		rooms:  make(map[domain.RoomID]*Room),
		users:  make(map[domain.UserID]domain.Profile),
	}
}

// CreateMeeting opens a room under a fresh short id that fits in a link.
func (s *Store) CreateMeeting(host domain.UserID, title, description string) *Room {
	id, err := shortid.Generate()
	if err != nil {
		id = uuid.NewString()
	}
	return s.EnsureRoom(domain.RoomID(id), host, title, description)
}

// EnsureRoom returns the room, creating it with the given metadata if needed.
func (s *Store) EnsureRoom(id domain.RoomID, host domain.UserID, title, description string) *Room {
	s.mu.RLock()
	room, ok := s.rooms[id]
	s.mu.RUnlock()
	if ok {
		return room
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok = s.rooms[id]; ok {
		return room
	}
	room = newRoom(domain.Meeting{
		ID:          uuid.NewString(),
		RoomID:      id,
		Title:       title,
		Description: description,
		HostID:      host,
		Status:      "active",
		StartedAt:   time.Now().UTC(),
	}, s.policy)
	s.rooms[id] = room
	log.Info().Str("module", "devserver.store").Str("room", string(id)).Str("title", title).Msg("room created")
	return room
}

func (s *Store) Room(id domain.RoomID) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	return r, ok
}

func (s *Store) List() []RoomInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RoomInfo, 0, len(s.rooms))
	for id, r := range s.rooms {
		out = append(out, RoomInfo{RoomID: id, Title: r.Meeting().Title, Participants: r.ConnectedCount()})
	}
	slices.SortFunc(out, func(a, b RoomInfo) int { return cmp.Compare(a.RoomID, b.RoomID) })
	return out
}

func (s *Store) PutUser(id domain.UserID, p domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = p
	log.Info().Str("module", "devserver.store").Str("user", string(id)).Msg("profile stored")
}

func (s *Store) User(id domain.UserID) (domain.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.users[id]
	return p, ok
}

// profileOf prefers stored profile fields over the credential's.
func (s *Store) profileOf(id domain.Identity) domain.Profile {
	p := id.Profile
	stored, ok := s.User(id.UserID)
	if !ok {
		return p
	}
	if stored.FirstName != "" {
		p.FirstName = stored.FirstName
	}
	if stored.LastName != "" {
		p.LastName = stored.LastName
	}
	if stored.Email != "" {
		p.Email = stored.Email
	}
	return p
}
