package orch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dkeye/meetsync/internal/core"
	"github.com/dkeye/meetsync/internal/domain"
)

// Start enters the room. A failed meeting lookup is fatal and leaves the
// transport untouched. Calling Start again is a no-op.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.left {
		o.mu.Unlock()
		return core.ErrRoomLeft
	}
	if o.started {
		o.mu.Unlock()
		return nil
	}
	o.started = true
	o.mu.Unlock()

	roomID := o.Session.RoomID
	meeting, err := o.API.FetchMeetingByRoom(ctx, roomID)
	if err == nil && meeting == nil {
		err = core.ErrNotFound
	}
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrRoomUnavailable, roomID, err)
		o.report(err)
		return err
	}
	if err := o.Reducer.Attach(roomID, meeting); err != nil {
		return err
	}
	if meeting.HostID != "" {
		o.Backfill.Request(meeting.HostID)
	}

	if err := o.API.RequestJoinMeeting(ctx, roomID); err != nil {
		switch {
		case errors.Is(err, core.ErrConflict), errors.Is(err, core.ErrBadRequest):
			o.logger.Debug().Err(err).Msg("join request not needed")
		default:
			o.logger.Warn().Err(err).Msg("join request failed, continuing")
		}
	}

	o.acquireLocalMedia()

	if err := o.Transport.SetHandler(o); err != nil {
		o.releaseAllMedia()
		o.report(err)
		return fmt.Errorf("attach transport handler: %w", err)
	}
	if !o.active() {
		o.Transport.ClearHandler()
		o.releaseAllMedia()
		return core.ErrRoomLeft
	}
	if err := o.Transport.Connect(ctx); err != nil {
		o.Transport.ClearHandler()
		o.releaseAllMedia()
		o.report(err)
		return fmt.Errorf("connect transport: %w", err)
	}
	if !o.joinTransport(roomID) {
		o.Transport.ClearHandler()
		o.releaseAllMedia()
		return core.ErrRoomLeft
	}

	o.logger.Info().Str("meeting", meeting.ID).Msg("room started")
	o.changed()
	return nil
}

func (o *Orchestrator) active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return !o.left && o.Session.Active()
}

// joinTransport joins roomID unless the room was left meanwhile. Leave marks
// the room under the same lock before it calls LeaveMeeting, so the join is
// either skipped or undone.
func (o *Orchestrator) joinTransport(roomID domain.RoomID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.left || !o.Session.Active() {
		return false
	}
	o.Transport.JoinMeeting(roomID)
	return true
}

// Leave tears the room down. Safe to call more than once and before Start.
func (o *Orchestrator) Leave() {
	o.mu.Lock()
	if o.left {
		o.mu.Unlock()
		return
	}
	o.left = true
	started := o.started
	o.mu.Unlock()

	if started {
		o.Transport.LeaveMeeting(o.Session.RoomID)
	}
	o.releaseAllMedia()
	if started {
		o.Transport.ClearHandler()
	}
	o.Session.End()
	o.Backfill.Wait()
	o.Reducer.Leave()
	o.connected.Store(false)

	o.logger.Info().Msg("room left")
}

// SendChatMessage hands text to the transport. The message shows up once the
// server echoes it back.
func (o *Orchestrator) SendChatMessage(text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	switch o.Phase() {
	case core.PhaseIdle:
		return ErrNotStarted
	case core.PhaseLeft:
		return core.ErrRoomLeft
	}
	o.Transport.SendMessage(o.Session.RoomID, text)
	return nil
}
