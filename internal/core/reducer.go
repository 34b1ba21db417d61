package core

import (
	"errors"
	"slices"
	"sync"

	"github.com/dkeye/meetsync/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	ErrRoomAttached = errors.New("reducer already attached to a room")
	ErrRoomLeft     = errors.New("room already left")
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseConnecting
	PhaseJoined
	PhaseReconnecting
	PhaseLeft
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseConnecting:
		return "connecting"
	case PhaseJoined:
		return "joined"
	case PhaseReconnecting:
		return "reconnecting"
	case PhaseLeft:
		return "left"
	default:
		return "unknown"
	}
}

// View is a copy of the reducer state, safe to hand to renderers.
type View struct {
	RoomID       domain.RoomID
	Phase        Phase
	Meeting      domain.Meeting
	Participants []domain.Participant
	Messages     []domain.Message
}

// Reducer owns the participant list and message log of the active room.
// Events are applied strictly in the order Apply is called.
type Reducer struct {
	mu        sync.RWMutex
	localUser domain.UserID
	dir       *Directory

	roomID       domain.RoomID
	phase        Phase
	meeting      domain.Meeting
	participants []domain.Participant
	index        map[domain.UserID]int
	messages     []domain.Message
}

func NewReducer(localUser domain.UserID, dir *Directory) *Reducer {
	if dir == nil {
		dir = NewDirectory()
	}
	return &Reducer{
		localUser: localUser,
		dir:       dir,
		index:     make(map[domain.UserID]int),
	}
}

func (r *Reducer) Directory() *Directory { return r.dir }

// Attach binds the reducer to a room resolved out of band and moves it to
// PhaseConnecting. Meeting metadata from the lookup seeds the view.
func (r *Reducer) Attach(roomID domain.RoomID, meeting *domain.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.phase {
	case PhaseIdle:
	case PhaseLeft:
		return ErrRoomLeft
	default:
		return ErrRoomAttached
	}
	r.roomID = roomID
	if meeting != nil {
		r.meeting = mergeMeeting(r.meeting, *meeting)
	}
	r.phase = PhaseConnecting
	log.Debug().Str("module", "core.reducer").Str("room", string(roomID)).Msg("attached")
	return nil
}

// Leave moves to the terminal phase. Returns false if already left.
func (r *Reducer) Leave() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == PhaseLeft {
		return false
	}
	r.phase = PhaseLeft
	log.Debug().Str("module", "core.reducer").Str("room", string(r.roomID)).Msg("left")
	return true
}

// LocalUser is the id of this client, which an anonymous client learns from
// its first snapshot.
func (r *Reducer) LocalUser() domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.localUser
}

func (r *Reducer) Phase() Phase {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.phase
}

func (r *Reducer) View() View {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return View{
		RoomID:       r.roomID,
		Phase:        r.phase,
		Meeting:      r.meeting,
		Participants: slices.Clone(r.participants),
		Messages:     slices.Clone(r.messages),
	}
}

// Apply folds one event into the state and reports whether the view changed.
// Events are ignored before Attach and after Leave.
func (r *Reducer) Apply(ev Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase == PhaseIdle || r.phase == PhaseLeft {
		log.Debug().Str("module", "core.reducer").Str("event", ev.Kind.String()).Str("phase", r.phase.String()).Msg("event dropped")
		return false
	}

	switch ev.Kind {
	case EventConnected, EventError:
		return false
	case EventDisconnected:
		if r.phase == PhaseJoined {
			r.phase = PhaseReconnecting
			return true
		}
		return false
	case EventMeetingState:
		if ev.Snapshot == nil {
			return false
		}
		r.applySnapshot(*ev.Snapshot)
		return true
	case EventParticipantJoined:
		if ev.Participant == nil || ev.Participant.ID == "" {
			return false
		}
		r.upsert(*ev.Participant)
		return true
	case EventParticipantLeft:
		return r.markLeft(ev.ParticipantID)
	case EventMeetingMessage:
		if ev.Message == nil {
			return false
		}
		r.appendMessage(*ev.Message)
		return true
	}
	return false
}

func (r *Reducer) applySnapshot(s Snapshot) {
	r.meeting = mergeMeeting(r.meeting, s.Meeting)
	if r.localUser == "" && s.Self != "" {
		r.localUser = s.Self
		log.Debug().Str("module", "core.reducer").Str("user", string(s.Self)).Msg("local user assigned by server")
	}

	next := make([]domain.Participant, 0, len(s.Participants))
	index := make(map[domain.UserID]int, len(s.Participants))
	for _, p := range s.Participants {
		if p.ID == "" {
			continue
		}
		p.IsLocalUser = p.ID == r.localUser
		if i, ok := index[p.ID]; ok {
			next[i] = p
			continue
		}
		index[p.ID] = len(next)
		next = append(next, p)
	}
	// Records the snapshot no longer names stay, disconnected.
	for _, old := range r.participants {
		if _, ok := index[old.ID]; ok {
			continue
		}
		old.Connected = false
		old.IsLocalUser = old.ID == r.localUser
		index[old.ID] = len(next)
		next = append(next, old)
	}
	r.participants = next
	r.index = index
	r.messages = slices.Clone(s.Messages)

	candidates := make([]domain.Candidate, 0, len(s.Participants)+len(s.Messages))
	for _, p := range s.Participants {
		candidates = append(candidates, domain.Candidate{ID: p.ID, Profile: p.Profile})
	}
	for _, m := range s.Messages {
		if m.Author != nil {
			candidates = append(candidates, domain.Candidate{ID: m.UserID, Profile: *m.Author})
		}
	}
	r.dir.Merge(candidates...)

	r.phase = PhaseJoined
	log.Debug().
		Str("module", "core.reducer").
		Str("room", string(r.roomID)).
		Int("participants", len(r.participants)).
		Int("messages", len(r.messages)).
		Msg("snapshot applied")
}

func (r *Reducer) upsert(p domain.Participant) {
	p.IsLocalUser = p.ID == r.localUser
	if i, ok := r.index[p.ID]; ok {
		r.participants[i] = p
	} else {
		r.index[p.ID] = len(r.participants)
		r.participants = append(r.participants, p)
	}
	r.dir.Merge(domain.Candidate{ID: p.ID, Profile: p.Profile})
}

func (r *Reducer) markLeft(id domain.UserID) bool {
	i, ok := r.index[id]
	if !ok {
		return false
	}
	if !r.participants[i].Connected {
		return false
	}
	r.participants[i].Connected = false
	return true
}

func (r *Reducer) appendMessage(m domain.Message) {
	r.messages = append(r.messages, m)
	if m.Author != nil && !m.Author.IsZero() {
		r.dir.Merge(domain.Candidate{ID: m.UserID, Profile: *m.Author})
	}
}

func mergeMeeting(known, fresh domain.Meeting) domain.Meeting {
	out := known
	if fresh.ID != "" {
		out.ID = fresh.ID
	}
	if fresh.RoomID != "" {
		out.RoomID = fresh.RoomID
	}
	if fresh.Title != "" {
		out.Title = fresh.Title
	}
	if fresh.Description != "" {
		out.Description = fresh.Description
	}
	if fresh.HostID != "" {
		out.HostID = fresh.HostID
	}
	if fresh.Status != "" {
		out.Status = fresh.Status
	}
	if !fresh.StartedAt.IsZero() {
		out.StartedAt = fresh.StartedAt
	}
	return out
}
