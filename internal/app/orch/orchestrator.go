// Package orch drives one room visit: startup, event intake, media and teardown.
package orch

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dkeye/meetsync/internal/app"
	"github.com/dkeye/meetsync/internal/core"
	"github.com/dkeye/meetsync/internal/domain"
	"github.com/rs/zerolog"
)

var (
	ErrRoomUnavailable = errors.New("room unavailable")
	ErrNotStarted      = errors.New("room not started")
	ErrNoMedia         = errors.New("no local media of that kind")
)

type Orchestrator struct {
	Session   *app.Session
	API       core.MeetingAPI
	Transport core.Transport
	Media     core.MediaCapture
	Reducer   *core.Reducer
	Directory *core.Directory
	Backfill  *app.Backfiller

	// OnError receives user-visible failures. OnChange receives a fresh
	// view after anything a renderer shows has changed. Both may be called
	// from transport and lookup goroutines.
	OnError  func(error)
	OnChange func(core.View)

	logger    zerolog.Logger
	connected atomic.Bool

	mu      sync.Mutex
	started bool
	left    bool
	media   map[core.MediaKind]core.MediaHandle
}

var _ core.EventHandler = (*Orchestrator)(nil)

// New wires a controller for the session's room. media may be nil when the
// client has no capture devices.
func New(s *app.Session, api core.MeetingAPI, tr core.Transport, media core.MediaCapture) *Orchestrator {
	dir := core.NewDirectory()
	o := &Orchestrator{
		Session:   s,
		API:       api,
		Transport: tr,
		Media:     media,
		Reducer:   core.NewReducer(s.LocalUser(), dir),
		Directory: dir,
		logger:    s.Logger("orch"),
		media:     make(map[core.MediaKind]core.MediaHandle),
	}
	o.Backfill = app.NewBackfiller(s, api, dir, o.changed)
	if !s.Identity.Anonymous {
		dir.Merge(domain.Candidate{ID: s.Identity.UserID, Profile: s.Identity.Profile})
	}
	return o
}

// HandleEvent is the transport callback. Events arriving after Leave are
// dropped.
func (o *Orchestrator) HandleEvent(ev core.Event) {
	if !o.Session.Active() {
		return
	}

	redraw := false
	switch ev.Kind {
	case core.EventConnected:
		redraw = !o.connected.Swap(true)
	case core.EventDisconnected:
		redraw = o.connected.Swap(false)
	case core.EventError:
		o.report(ev.Err)
	}

	if o.Reducer.Apply(ev) {
		redraw = true
	}
	o.Backfill.Request(profileIDs(ev)...)

	if redraw {
		o.changed()
	}
}

func profileIDs(ev core.Event) []domain.UserID {
	var ids []domain.UserID
	switch ev.Kind {
	case core.EventMeetingState:
		if ev.Snapshot == nil {
			return nil
		}
		for _, p := range ev.Snapshot.Participants {
			ids = append(ids, p.ID)
		}
		for _, m := range ev.Snapshot.Messages {
			ids = append(ids, m.UserID)
		}
	case core.EventParticipantJoined:
		if ev.Participant != nil {
			ids = append(ids, ev.Participant.ID)
		}
	case core.EventMeetingMessage:
		if ev.Message != nil {
			ids = append(ids, ev.Message.UserID)
		}
	}
	return ids
}

func (o *Orchestrator) changed() {
	if o.OnChange != nil {
		o.OnChange(o.View())
	}
}

func (o *Orchestrator) report(err error) {
	if err == nil {
		return
	}
	o.logger.Warn().Err(err).Msg("reported")
	if o.OnError != nil {
		o.OnError(err)
	}
}

func (o *Orchestrator) Phase() core.Phase { return o.Reducer.Phase() }

func (o *Orchestrator) Connected() bool { return o.connected.Load() }

// View returns the reducer view with participant profiles taken from the
// directory, which never loses a name once seen.
func (o *Orchestrator) View() core.View {
	v := o.Reducer.View()
	v.Participants = o.decorate(v.Participants)
	return v
}

func (o *Orchestrator) Participants() []domain.Participant {
	return o.decorate(o.Reducer.View().Participants)
}

func (o *Orchestrator) Messages() []domain.Message {
	return o.Reducer.View().Messages
}

// AuthorName resolves a display name for a message sender.
func (o *Orchestrator) AuthorName(m domain.Message) string {
	if o.Directory.NeedsProfile(m.UserID) && m.Author != nil {
		if name := m.Author.FullName(); name != "" {
			return name
		}
	}
	return o.Directory.DisplayName(m.UserID)
}

// DisplayName is the name to render for a participant id.
func (o *Orchestrator) DisplayName(id domain.UserID) string {
	return o.Directory.DisplayName(id)
}

func (o *Orchestrator) decorate(ps []domain.Participant) []domain.Participant {
	for i := range ps {
		if prof, ok := o.Directory.Lookup(ps[i].ID); ok {
			ps[i].Profile = prof
		}
	}
	return ps
}
