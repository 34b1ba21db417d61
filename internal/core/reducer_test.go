package core

import (
	"fmt"
	"testing"
	"time"

	"github.com/dkeye/meetsync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAttachedReducer(t *testing.T, local domain.UserID) *Reducer {
	t.Helper()
	r := NewReducer(local, NewDirectory())
	require.NoError(t, r.Attach("room-1", &domain.Meeting{ID: "m1", Title: "Standup"}))
	return r
}

func participant(id domain.UserID, first string) domain.Participant {
	return domain.Participant{ID: id, Profile: domain.Profile{FirstName: first}, Connected: true}
}

func TestReducer_Attach(t *testing.T) {
	r := NewReducer("me", nil)
	assert.Equal(t, PhaseIdle, r.Phase())
	assert.False(t, r.Apply(JoinedEvent(participant("u1", "Ann"))), "events before attach are dropped")

	require.NoError(t, r.Attach("room-1", nil))
	assert.Equal(t, PhaseConnecting, r.Phase())
	assert.ErrorIs(t, r.Attach("room-2", nil), ErrRoomAttached)

	r.Leave()
	assert.ErrorIs(t, r.Attach("room-2", nil), ErrRoomLeft)
}

func TestReducer_AnonymousLearnsSelf(t *testing.T) {
	r := newAttachedReducer(t, "")
	require.True(t, r.Apply(JoinedEvent(participant("guest-1", ""))))
	assert.False(t, r.View().Participants[0].IsLocalUser)

	r.Apply(SnapshotEvent(Snapshot{
		Self:         "guest-1",
		Participants: []domain.Participant{participant("u1", "Ann")},
	}))
	assert.Equal(t, domain.UserID("guest-1"), r.LocalUser())

	v := r.View()
	require.Len(t, v.Participants, 2)
	assert.False(t, v.Participants[0].IsLocalUser)
	assert.True(t, v.Participants[1].IsLocalUser, "kept record is marked as the local user")

	r.Apply(SnapshotEvent(Snapshot{Self: "someone-else", Participants: []domain.Participant{participant("guest-1", "")}}))
	assert.Equal(t, domain.UserID("guest-1"), r.LocalUser(), "a known id is never replaced")
	assert.True(t, r.View().Participants[0].IsLocalUser)
}

func TestReducer_Snapshot(t *testing.T) {
	r := newAttachedReducer(t, "me")

	changed := r.Apply(SnapshotEvent(Snapshot{
		Meeting: domain.Meeting{Status: "live"},
		Participants: []domain.Participant{
			participant("me", "Me"),
			participant("u1", "Ann"),
		},
		Messages: []domain.Message{{ID: "m1", UserID: "u1", Content: "hi"}},
	}))
	require.True(t, changed)

	v := r.View()
	assert.Equal(t, PhaseJoined, v.Phase)
	assert.Equal(t, "Standup", v.Meeting.Title, "known metadata must survive a sparser snapshot")
	assert.Equal(t, "live", v.Meeting.Status)
	require.Len(t, v.Participants, 2)
	assert.True(t, v.Participants[0].IsLocalUser)
	assert.False(t, v.Participants[1].IsLocalUser)
	require.Len(t, v.Messages, 1)

	name, _ := r.Directory().Lookup("u1")
	assert.Equal(t, "Ann", name.FirstName)
}

func TestReducer_SnapshotKeepsOmittedParticipants(t *testing.T) {
	r := newAttachedReducer(t, "me")
	r.Apply(SnapshotEvent(Snapshot{Participants: []domain.Participant{participant("u1", "Ann"), participant("u2", "Bo")}}))
	r.Apply(SnapshotEvent(Snapshot{Participants: []domain.Participant{participant("u2", "Bo")}}))

	v := r.View()
	require.Len(t, v.Participants, 2)
	assert.Equal(t, domain.UserID("u2"), v.Participants[0].ID)
	assert.Equal(t, domain.UserID("u1"), v.Participants[1].ID)
	assert.False(t, v.Participants[1].Connected)
}

func TestReducer_SnapshotCollapsesDuplicateIDs(t *testing.T) {
	r := newAttachedReducer(t, "me")
	stale := participant("u1", "Ann")
	stale.Connected = false
	r.Apply(SnapshotEvent(Snapshot{Participants: []domain.Participant{stale, participant("u1", "Ann")}}))

	v := r.View()
	require.Len(t, v.Participants, 1)
	assert.True(t, v.Participants[0].Connected)
}

func TestReducer_ParticipantJoined(t *testing.T) {
	t.Run("append", func(t *testing.T) {
		r := newAttachedReducer(t, "me")
		r.Apply(SnapshotEvent(Snapshot{Participants: []domain.Participant{participant("u1", "Ann")}}))
		assert.True(t, r.Apply(JoinedEvent(participant("u2", "Bo"))))

		v := r.View()
		require.Len(t, v.Participants, 2)
		assert.Equal(t, domain.UserID("u2"), v.Participants[1].ID)
	})

	t.Run("replace in place", func(t *testing.T) {
		r := newAttachedReducer(t, "me")
		r.Apply(SnapshotEvent(Snapshot{Participants: []domain.Participant{participant("u1", "Ann"), participant("u2", "Bo")}}))
		r.Apply(LeftEvent("u1"))
		r.Apply(JoinedEvent(participant("u1", "")))

		v := r.View()
		require.Len(t, v.Participants, 2, "rejoin collapses into the existing record")
		assert.Equal(t, domain.UserID("u1"), v.Participants[0].ID)
		assert.True(t, v.Participants[0].Connected)
	})

	t.Run("name survives nameless join", func(t *testing.T) {
		r := newAttachedReducer(t, "me")
		r.Apply(SnapshotEvent(Snapshot{Participants: []domain.Participant{{ID: "u1", Profile: domain.Profile{FirstName: "Ann"}}}}))
		r.Apply(JoinedEvent(domain.Participant{ID: "u1", Connected: true}))

		p, ok := r.Directory().Lookup("u1")
		require.True(t, ok)
		assert.Equal(t, "Ann", p.FirstName)
	})

	t.Run("local user flag", func(t *testing.T) {
		r := newAttachedReducer(t, "me")
		r.Apply(JoinedEvent(participant("me", "Me")))
		assert.True(t, r.View().Participants[0].IsLocalUser)
	})
}

func TestReducer_ParticipantLeft(t *testing.T) {
	r := newAttachedReducer(t, "me")
	r.Apply(SnapshotEvent(Snapshot{Participants: []domain.Participant{participant("u1", "Ann")}}))

	t.Run("unknown participant", func(t *testing.T) {
		before := r.View()
		assert.False(t, r.Apply(LeftEvent("u2")))
		assert.Equal(t, before.Participants, r.View().Participants)
	})

	t.Run("known participant", func(t *testing.T) {
		assert.True(t, r.Apply(LeftEvent("u1")))
		v := r.View()
		require.Len(t, v.Participants, 1)
		assert.False(t, v.Participants[0].Connected)
		assert.False(t, r.Apply(LeftEvent("u1")), "second leave changes nothing")
	})
}

func TestReducer_MessagesAppendOnly(t *testing.T) {
	r := newAttachedReducer(t, "me")
	r.Apply(SnapshotEvent(Snapshot{}))

	var history []domain.Message
	for i := 0; i < 20; i++ {
		m := domain.Message{
			ID:        fmt.Sprintf("m%d", i),
			UserID:    "u1",
			Content:   fmt.Sprintf("msg %d", i),
			CreatedAt: time.Unix(int64(100-i), 0),
		}
		assert.True(t, r.Apply(MessageEvent(m)))
		history = append(history, m)

		got := r.View().Messages
		require.Len(t, got, len(history))
		assert.Equal(t, history, got, "log must keep arrival order and content")
	}
}

func TestReducer_MessageAuthorFeedsDirectory(t *testing.T) {
	r := newAttachedReducer(t, "me")
	r.Apply(SnapshotEvent(Snapshot{}))

	r.Apply(MessageEvent(domain.Message{ID: "m1", UserID: "u3", Content: "anon"}))
	assert.Equal(t, PlaceholderName, r.Directory().DisplayName("u3"))

	r.Apply(MessageEvent(domain.Message{ID: "m2", UserID: "u3", Author: &domain.Profile{FirstName: "Cy"}, Content: "named"}))
	assert.Equal(t, "Cy", r.Directory().DisplayName("u3"))
}

func TestReducer_Reconnecting(t *testing.T) {
	r := newAttachedReducer(t, "me")

	assert.False(t, r.Apply(DisconnectedEvent()), "drop before join keeps connecting")
	assert.Equal(t, PhaseConnecting, r.Phase())

	r.Apply(SnapshotEvent(Snapshot{
		Participants: []domain.Participant{participant("u1", "Ann")},
		Messages:     []domain.Message{{ID: "m1", UserID: "u1", Content: "hi"}},
	}))
	assert.True(t, r.Apply(DisconnectedEvent()))

	v := r.View()
	assert.Equal(t, PhaseReconnecting, v.Phase)
	assert.Len(t, v.Participants, 1, "state is kept while reconnecting")
	assert.Len(t, v.Messages, 1)

	r.Apply(ConnectedEvent())
	assert.Equal(t, PhaseReconnecting, r.Phase(), "joined again only after the snapshot")
	r.Apply(SnapshotEvent(Snapshot{Participants: []domain.Participant{participant("u1", "Ann")}}))
	assert.Equal(t, PhaseJoined, r.Phase())
}

func TestReducer_LeftIsTerminal(t *testing.T) {
	r := newAttachedReducer(t, "me")
	r.Apply(SnapshotEvent(Snapshot{Participants: []domain.Participant{participant("u1", "Ann")}}))

	assert.True(t, r.Leave())
	assert.False(t, r.Leave())
	assert.False(t, r.Apply(JoinedEvent(participant("u2", "Bo"))))
	assert.False(t, r.Apply(MessageEvent(domain.Message{ID: "late"})))
	assert.Equal(t, PhaseLeft, r.Phase())
	assert.Len(t, r.View().Participants, 1)
}

func TestReducer_NoParticipantEverDeleted(t *testing.T) {
	r := newAttachedReducer(t, "me")
	events := []Event{
		SnapshotEvent(Snapshot{Participants: []domain.Participant{participant("u1", "Ann")}}),
		JoinedEvent(participant("u2", "Bo")),
		LeftEvent("u1"),
		DisconnectedEvent(),
		SnapshotEvent(Snapshot{Participants: []domain.Participant{participant("u3", "Cy")}}),
		LeftEvent("u2"),
		JoinedEvent(participant("u1", "")),
		SnapshotEvent(Snapshot{}),
	}

	seen := make(map[domain.UserID]bool)
	for i, ev := range events {
		r.Apply(ev)
		present := make(map[domain.UserID]bool)
		for _, p := range r.View().Participants {
			present[p.ID] = true
		}
		for id := range seen {
			require.True(t, present[id], "participant %s vanished after event %d", id, i)
		}
		for id := range present {
			seen[id] = true
		}
	}
	assert.Len(t, seen, 3)
}
