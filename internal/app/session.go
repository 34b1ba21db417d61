package app

import (
	"context"

	"github.com/dkeye/meetsync/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Session is the explicit context of one room visit. It is created at room
// entry and handed to everything that needs the local identity, so nothing
// reads credentials from ambient state.
type Session struct {
	ID       string
	Identity domain.Identity
	RoomID   domain.RoomID

	ctx    context.Context
	cancel context.CancelFunc
}

func NewSession(parent context.Context, roomID domain.RoomID, identity domain.Identity) *Session {
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		ID:       uuid.NewString(),
		Identity: identity,
		RoomID:   roomID,
		ctx:      ctx,
		cancel:   cancel,
	}
	log.Info().
		Str("module", "app.session").
		Str("session", s.ID).
		Str("room", string(roomID)).
		Str("user", string(identity.UserID)).
		Bool("anonymous", identity.Anonymous).
		Msg("session started")
	return s
}

// Context is cancelled when the session ends.
func (s *Session) Context() context.Context { return s.ctx }

// Active reports whether async results may still be applied.
func (s *Session) Active() bool { return s.ctx.Err() == nil }

func (s *Session) End() {
	if s.Active() {
		log.Info().Str("module", "app.session").Str("session", s.ID).Msg("session ended")
	}
	s.cancel()
}

func (s *Session) LocalUser() domain.UserID { return s.Identity.UserID }

// Logger returns a logger carrying the session fields.
func (s *Session) Logger(module string) zerolog.Logger {
	return log.With().
		Str("module", module).
		Str("session", s.ID).
		Str("room", string(s.RoomID)).
		Logger()
}
