package devserver

import (
	"encoding/json"
	"testing"

	"github.com/dkeye/meetsync/internal/adapters/signal"
	"github.com/dkeye/meetsync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPeer(user domain.UserID, buffer int) *Peer {
	return &Peer{
		id:       "peer-" + string(user),
		identity: domain.Identity{UserID: user},
		send:     make(chan []byte, buffer),
		rooms:    make(map[domain.RoomID]*Room),
	}
}

func drain(t *testing.T, p *Peer) []signal.Frame {
	t.Helper()
	var out []signal.Frame
	for {
		select {
		case data, ok := <-p.send:
			if !ok {
				return out
			}
			var f signal.Frame
			require.NoError(t, json.Unmarshal(data, &f))
			out = append(out, f)
		default:
			return out
		}
	}
}

func types(frames []signal.Frame) []string {
	out := make([]string, 0, len(frames))
	for _, f := range frames {
		out = append(out, f.Type)
	}
	return out
}

func TestRoom_JoinSendsSnapshotAndAnnounces(t *testing.T) {
	store := NewStore(DropPolicy{})
	room := store.EnsureRoom("r1", "host", "Standup", "")
	ann, bob := testPeer("ann", 8), testPeer("bob", 8)

	room.Join(ann, domain.Profile{FirstName: "Ann"})
	frames := drain(t, ann)
	require.Equal(t, []string{signal.TypeMeetingState}, types(frames))
	require.Len(t, frames[0].Participants, 1)
	assert.Equal(t, "Standup", frames[0].Meeting.Title)
	assert.Equal(t, domain.UserID("ann"), frames[0].Self)

	room.Join(bob, domain.Profile{FirstName: "Bob"})
	bobFrames := drain(t, bob)
	require.Equal(t, []string{signal.TypeMeetingState}, types(bobFrames))
	assert.Equal(t, domain.UserID("bob"), bobFrames[0].Self, "each peer learns its own id")
	joined := drain(t, ann)
	require.Equal(t, []string{signal.TypeParticipantJoined}, types(joined))
	assert.Equal(t, domain.UserID("bob"), joined[0].Participant.ID)
	assert.Equal(t, 2, room.ConnectedCount())
}

func TestRoom_RepeatedJoinIsIdempotent(t *testing.T) {
	store := NewStore(DropPolicy{})
	room := store.EnsureRoom("r1", "", "", "")
	ann, bob := testPeer("ann", 8), testPeer("bob", 8)
	room.Join(ann, domain.Profile{FirstName: "Ann"})
	room.Join(bob, domain.Profile{FirstName: "Bob"})
	drain(t, ann)
	drain(t, bob)

	room.Join(bob, domain.Profile{FirstName: "Bob"})
	assert.Equal(t, []string{signal.TypeMeetingState}, types(drain(t, bob)), "rejoin resends the snapshot")
	assert.Empty(t, drain(t, ann), "nothing changed, nothing announced")
	assert.Len(t, room.Participants(), 2)
}

func TestRoom_SameUserSecondPeerCollapses(t *testing.T) {
	store := NewStore(DropPolicy{})
	room := store.EnsureRoom("r1", "", "", "")
	first, second := testPeer("ann", 8), testPeer("ann", 8)
	second.id = "peer-ann-2"

	room.Join(first, domain.Profile{FirstName: "Ann"})
	room.Join(second, domain.Profile{FirstName: "Ann"})
	assert.Len(t, room.Participants(), 1)

	room.Leave(first)
	assert.True(t, room.Participants()[0].Connected, "another peer of the user remains")
	room.Leave(second)
	assert.False(t, room.Participants()[0].Connected)
}

func TestRoom_LeaveKeepsRecord(t *testing.T) {
	store := NewStore(DropPolicy{})
	room := store.EnsureRoom("r1", "", "", "")
	ann, bob := testPeer("ann", 8), testPeer("bob", 8)
	room.Join(ann, domain.Profile{FirstName: "Ann"})
	room.Join(bob, domain.Profile{FirstName: "Bob"})
	drain(t, ann)

	room.Leave(bob)
	room.Leave(bob)
	left := drain(t, ann)
	require.Equal(t, []string{signal.TypeParticipantLeft}, types(left), "left is announced once")
	assert.Equal(t, domain.UserID("bob"), left[0].ParticipantID)

	ps := room.Participants()
	require.Len(t, ps, 2)
	assert.False(t, ps[1].Connected)
	assert.Equal(t, "Bob", ps[1].FirstName)
}

func TestRoom_PostEchoesToEveryone(t *testing.T) {
	store := NewStore(DropPolicy{})
	room := store.EnsureRoom("r1", "", "", "")
	ann, bob, eve := testPeer("ann", 8), testPeer("bob", 8), testPeer("eve", 8)
	room.Join(ann, domain.Profile{FirstName: "Ann"})
	room.Join(bob, domain.Profile{})
	drain(t, ann)
	drain(t, bob)

	m, err := room.Post(ann, "hello")
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	require.NotNil(t, m.Author)
	assert.Equal(t, "Ann", m.Author.FirstName)

	for _, p := range []*Peer{ann, bob} {
		frames := drain(t, p)
		require.Len(t, frames, 1)
		assert.Equal(t, signal.TypeMeetingMessage, frames[0].Type)
		assert.Equal(t, "hello", frames[0].Message.Content)
		assert.Equal(t, "Ann", frames[0].Message.FirstName)
	}

	m, err = room.Post(bob, "anon")
	require.NoError(t, err)
	assert.Nil(t, m.Author, "no profile, no inline author")

	_, err = room.Post(ann, "  ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	_, err = room.Post(eve, "hi")
	assert.ErrorIs(t, err, ErrNotInRoom)
	assert.Len(t, room.Messages(), 2)
}

func TestRoom_SlowPeerPolicy(t *testing.T) {
	store := NewStore(KickPolicy{})
	room := store.EnsureRoom("r1", "", "", "")
	ann, slow := testPeer("ann", 8), testPeer("slow", 1)

	room.Join(slow, domain.Profile{})
	room.Join(ann, domain.Profile{})
	assert.ErrorIs(t, slow.TrySend([]byte("x")), ErrPeerClosed, "queue overflow kicks the peer")
}

func TestRoom_Register(t *testing.T) {
	store := NewStore(nil)
	room := store.EnsureRoom("r1", "", "", "")
	require.NoError(t, room.Register("ann"))
	assert.ErrorIs(t, room.Register("ann"), ErrAlreadyJoined)

	bob := testPeer("bob", 8)
	room.Join(bob, domain.Profile{})
	assert.ErrorIs(t, room.Register("bob"), ErrAlreadyJoined, "socket join counts as joined")
}

func TestStore_Rooms(t *testing.T) {
	store := NewStore(nil)
	a := store.EnsureRoom("a", "", "A", "")
	assert.Same(t, a, store.EnsureRoom("a", "", "ignored", ""))
	created := store.CreateMeeting("host", "B", "desc")
	assert.NotEmpty(t, created.ID())

	got, ok := store.Room(created.ID())
	require.True(t, ok)
	assert.Equal(t, "B", got.Meeting().Title)
	assert.Equal(t, domain.UserID("host"), got.Meeting().HostID)
	assert.Len(t, store.List(), 2)

	_, ok = store.Room("missing")
	assert.False(t, ok)
}
