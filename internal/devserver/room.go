package devserver

import (
	"encoding/json"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dkeye/meetsync/internal/adapters/signal"
	"github.com/dkeye/meetsync/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PublishResult reports delivery of one broadcast.
type PublishResult struct {
	SentTo  int
	Dropped []*Peer
}

// Room is one meeting. All state changes and their broadcasts happen under
// one lock, so every peer receives events in the same order.
type Room struct {
	policy Policy

	mu           sync.Mutex
	meeting      domain.Meeting
	participants []domain.Participant
	index        map[domain.UserID]int
	registered   map[domain.UserID]struct{}
	messages     []domain.Message
	peers        map[*Peer]domain.UserID
}

func newRoom(m domain.Meeting, policy Policy) *Room {
	return &Room{
		policy:     policy,
		meeting:    m,
		index:      make(map[domain.UserID]int),
		registered: make(map[domain.UserID]struct{}),
		peers:      make(map[*Peer]domain.UserID),
	}
}

func (r *Room) ID() domain.RoomID { return r.meeting.RoomID }

func (r *Room) Meeting() domain.Meeting {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meeting
}

// Register records a join request made outside the socket.
func (r *Room) Register(id domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.registered[id]; ok {
		return ErrAlreadyJoined
	}
	r.registered[id] = struct{}{}
	return nil
}

// Join subscribes p and sends it the room snapshot. A repeated join from the
// same peer only resends the snapshot. A user with several peers keeps one
// participant record.
func (r *Room) Join(p *Peer, profile domain.Profile) {
	id := p.Identity().UserID
	r.mu.Lock()
	_, rejoin := r.peers[p]
	r.peers[p] = id
	r.registered[id] = struct{}{}

	next := domain.Participant{ID: id, Profile: profile, Connected: true}
	changed := true
	if i, ok := r.index[id]; ok {
		changed = r.participants[i] != next
		r.participants[i] = next
	} else {
		r.index[id] = len(r.participants)
		r.participants = append(r.participants, next)
	}

	var res PublishResult
	if err := p.TrySend(r.snapshotLocked(id)); err != nil {
		res.Dropped = append(res.Dropped, p)
	}
	if changed {
		wire := signal.WireParticipantOf(next)
		res.merge(r.broadcastLocked(p, signal.Frame{Type: signal.TypeParticipantJoined, RoomID: r.meeting.RoomID, Participant: &wire}))
	}
	r.mu.Unlock()

	log.Info().Str("module", "devserver.room").Str("room", string(r.meeting.RoomID)).Str("user", string(id)).Bool("rejoin", rejoin).Msg("joined")
	r.handleDropped(res)
}

// Leave unsubscribes p. The participant is marked disconnected once none of
// its peers remain. Records are never deleted.
func (r *Room) Leave(p *Peer) {
	r.mu.Lock()
	id, ok := r.peers[p]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.peers, p)

	var res PublishResult
	if !r.hasPeerLocked(id) {
		if i, ok := r.index[id]; ok && r.participants[i].Connected {
			r.participants[i].Connected = false
			res = r.broadcastLocked(nil, signal.Frame{Type: signal.TypeParticipantLeft, RoomID: r.meeting.RoomID, ParticipantID: id})
		}
	}
	r.mu.Unlock()

	log.Info().Str("module", "devserver.room").Str("room", string(r.meeting.RoomID)).Str("user", string(id)).Msg("left")
	r.handleDropped(res)
}

// Post appends a chat message and echoes it to every peer, sender included.
func (r *Room) Post(p *Peer, content string) (domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Message{}, ErrEmptyMessage
	}
	r.mu.Lock()
	id, ok := r.peers[p]
	if !ok {
		r.mu.Unlock()
		return domain.Message{}, ErrNotInRoom
	}
	m := domain.Message{
		ID:        uuid.NewString(),
		UserID:    id,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if i, ok := r.index[id]; ok && !r.participants[i].Profile.IsZero() {
		author := r.participants[i].Profile
		m.Author = &author
	}
	r.messages = append(r.messages, m)
	wire := signal.WireMessageOf(m)
	res := r.broadcastLocked(nil, signal.Frame{Type: signal.TypeMeetingMessage, RoomID: r.meeting.RoomID, Message: &wire})
	r.mu.Unlock()

	r.handleDropped(res)
	return m, nil
}

func (r *Room) Participants() []domain.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.participants)
}

func (r *Room) Messages() []domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.messages)
}

func (r *Room) ConnectedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.participants {
		if p.Connected {
			n++
		}
	}
	return n
}

func (r *Room) hasPeerLocked(id domain.UserID) bool {
	for _, uid := range r.peers {
		if uid == id {
			return true
		}
	}
	return false
}

// snapshotLocked encodes the room state for the user self.
func (r *Room) snapshotLocked(self domain.UserID) []byte {
	meeting := r.meeting
	f := signal.Frame{
		Type:         signal.TypeMeetingState,
		RoomID:       r.meeting.RoomID,
		Self:         self,
		Meeting:      &meeting,
		Participants: make([]signal.WireParticipant, 0, len(r.participants)),
		Messages:     make([]signal.WireMessage, 0, len(r.messages)),
	}
	for _, p := range r.participants {
		f.Participants = append(f.Participants, signal.WireParticipantOf(p))
	}
	for _, m := range r.messages {
		f.Messages = append(f.Messages, signal.WireMessageOf(m))
	}
	return encodeFrame(f)
}

func (r *Room) broadcastLocked(except *Peer, f signal.Frame) PublishResult {
	data := encodeFrame(f)
	res := PublishResult{}
	for p := range r.peers {
		if p == except {
			continue
		}
		if err := p.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, p)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "devserver.room").Str("type", f.Type).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *Room) handleDropped(res PublishResult) {
	for _, p := range res.Dropped {
		switch r.policy.OnBackpressure(r, p) {
		case KickPeer:
			log.Warn().Str("module", "devserver.room").Str("peer", p.ID()).Msg("slow peer kicked")
			p.Close()
		case DropFrame:
		}
	}
}

func (res *PublishResult) merge(other PublishResult) {
	res.SentTo += other.SentTo
	res.Dropped = append(res.Dropped, other.Dropped...)
}

func encodeFrame(f signal.Frame) []byte {
	b, _ := json.Marshal(f)
	return b
}
