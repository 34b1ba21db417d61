package app

import (
	"sync"

	"github.com/dkeye/meetsync/internal/core"
	"github.com/dkeye/meetsync/internal/domain"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
)

// Backfiller looks up profiles the directory has no name for. Each id is
// fetched at most once per session unless the lookup failed.
type Backfiller struct {
	api      core.MeetingAPI
	dir      *core.Directory
	session  *Session
	onUpdate func()
	logger   zerolog.Logger

	mu        sync.Mutex
	attempted map[domain.UserID]struct{}
	closed    bool
	wg        conc.WaitGroup
}

func NewBackfiller(session *Session, api core.MeetingAPI, dir *core.Directory, onUpdate func()) *Backfiller {
	return &Backfiller{
		api:       api,
		dir:       dir,
		session:   session,
		onUpdate:  onUpdate,
		logger:    session.Logger("app.backfill"),
		attempted: make(map[domain.UserID]struct{}),
	}
}

// Request dispatches lookups in parallel and returns how many were started.
func (b *Backfiller) Request(ids ...domain.UserID) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || !b.session.Active() {
		return 0
	}

	n := 0
	for _, id := range ids {
		if id == "" || !b.dir.NeedsProfile(id) {
			continue
		}
		if _, ok := b.attempted[id]; ok {
			continue
		}
		b.attempted[id] = struct{}{}
		b.wg.Go(func() { b.lookup(id) })
		n++
	}
	return n
}

func (b *Backfiller) lookup(id domain.UserID) {
	profile, err := b.api.FetchUserProfile(b.session.Context(), id)
	if !b.session.Active() {
		b.logger.Debug().Str("user", string(id)).Msg("lookup finished after session end, dropped")
		return
	}
	if err != nil {
		b.logger.Warn().Err(err).Str("user", string(id)).Msg("profile lookup failed")
		b.mu.Lock()
		delete(b.attempted, id)
		b.mu.Unlock()
		return
	}
	if b.dir.Merge(domain.Candidate{ID: id, Profile: profile}) && b.onUpdate != nil {
		b.onUpdate()
	}
}

// Attempted reports whether a lookup for id is in flight or succeeded.
func (b *Backfiller) Attempted(id domain.UserID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.attempted[id]
	return ok
}

// Wait stops new lookups and blocks until in-flight ones return.
func (b *Backfiller) Wait() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.wg.Wait()
}
