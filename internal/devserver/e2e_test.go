package devserver

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apihttp "github.com/dkeye/meetsync/internal/adapters/http"
	"github.com/dkeye/meetsync/internal/adapters/rtc"
	"github.com/dkeye/meetsync/internal/adapters/signal"
	"github.com/dkeye/meetsync/internal/app"
	"github.com/dkeye/meetsync/internal/app/orch"
	"github.com/dkeye/meetsync/internal/core"
	"github.com/dkeye/meetsync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	o  *orch.Orchestrator
	tr *signal.Client
}

func startClient(t *testing.T, ts *httptest.Server, roomID domain.RoomID, token string) *client {
	t.Helper()
	identity, err := app.ResolveIdentity(token)
	require.NoError(t, err)

	s := app.NewSession(context.Background(), roomID, identity)
	api := apihttp.NewClient(ts.URL+"/api", token, 5*time.Second)
	tr := signal.NewClient(signal.Options{
		URL:        "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws",
		Token:      token,
		MinBackoff: 20 * time.Millisecond,
		MaxBackoff: 100 * time.Millisecond,
	})
	media := rtc.NewCapturer(rtc.Permissions{Camera: true, Microphone: true})
	media.EnableSynthetic()
	o := orch.New(s, api, tr, media)
	require.NoError(t, o.Start(context.Background()))

	c := &client{o: o, tr: tr}
	t.Cleanup(func() {
		o.Leave()
		tr.Close()
	})
	return c
}

// newTestServer registers its teardown first so clients close before it.
func newTestServer(t *testing.T, policy Policy) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(NewStore(policy), Options{Mode: "test", Secret: testSecret})
	ctx, cancel := context.WithCancel(context.Background())
	ts := httptest.NewServer(srv.Router(ctx))
	t.Cleanup(func() {
		cancel()
		ts.Close()
	})
	return srv, ts
}

func participant(ps []domain.Participant, id domain.UserID) (domain.Participant, bool) {
	for _, p := range ps {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Participant{}, false
}

func TestEndToEnd_TwoParticipantsChat(t *testing.T) {
	srv, ts := newTestServer(t, KickPolicy{})

	room := srv.Store().CreateMeeting("ann", "Planning", "")
	srv.Store().PutUser("bob", domain.Profile{FirstName: "Bob", LastName: "Berg"})

	annTok, err := IssueToken(testSecret, "ann", domain.Profile{FirstName: "Ann"}, time.Hour)
	require.NoError(t, err)
	bobTok, err := IssueToken(testSecret, "bob", domain.Profile{}, time.Hour)
	require.NoError(t, err)

	ann := startClient(t, ts, room.ID(), annTok)
	require.Eventually(t, func() bool { return ann.o.Phase() == core.PhaseJoined },
		3*time.Second, 10*time.Millisecond)
	assert.True(t, ann.o.Connected())
	assert.True(t, ann.o.MediaEnabled(core.MediaVideo))
	assert.Equal(t, "Planning", ann.o.View().Meeting.Title)

	bob := startClient(t, ts, room.ID(), bobTok)
	require.Eventually(t, func() bool {
		p, ok := participant(ann.o.Participants(), "bob")
		return ok && p.Connected
	}, 3*time.Second, 10*time.Millisecond, "ann sees bob join")
	assert.Equal(t, "Bob Berg", ann.o.DisplayName("bob"))

	require.Eventually(t, func() bool { return bob.o.Phase() == core.PhaseJoined },
		3*time.Second, 10*time.Millisecond)
	me, ok := participant(bob.o.Participants(), "bob")
	require.True(t, ok)
	assert.True(t, me.IsLocalUser)

	require.NoError(t, bob.o.SendChatMessage("hello ann"))
	require.Eventually(t, func() bool { return len(ann.o.Messages()) == 1 },
		3*time.Second, 10*time.Millisecond)
	msg := ann.o.Messages()[0]
	assert.Equal(t, "hello ann", msg.Content)
	assert.Equal(t, "Bob Berg", ann.o.AuthorName(msg))
	require.Eventually(t, func() bool { return len(bob.o.Messages()) == 1 },
		3*time.Second, 10*time.Millisecond, "sender sees the server echo")

	bob.o.Leave()
	require.Eventually(t, func() bool {
		p, ok := participant(ann.o.Participants(), "bob")
		return ok && !p.Connected
	}, 3*time.Second, 10*time.Millisecond, "departed participants stay listed")
	assert.Equal(t, core.PhaseLeft, bob.o.Phase())
}

func TestEndToEnd_UnknownRoom(t *testing.T) {
	_, ts := newTestServer(t, nil)

	s := app.NewSession(context.Background(), "missing", domain.Identity{Anonymous: true})
	defer s.End()
	tr := signal.NewClient(signal.Options{URL: "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"})
	defer tr.Close()

	o := orch.New(s, apihttp.NewClient(ts.URL+"/api", "", time.Second), tr, nil)
	err := o.Start(context.Background())
	assert.ErrorIs(t, err, orch.ErrRoomUnavailable)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.False(t, tr.Connected(), "transport is never opened")
}
