package core

//go:generate mockgen -source=transport_iface.go -destination=mocks/transport_mock.go -package=mocks

import (
	"context"
	"errors"

	"github.com/dkeye/meetsync/internal/domain"
)

var ErrHandlerAttached = errors.New("transport already has an event handler")

// EventHandler consumes transport events. It is called from a single
// goroutine, in emission order.
type EventHandler interface {
	HandleEvent(Event)
}

type EventHandlerFunc func(Event)

func (f EventHandlerFunc) HandleEvent(ev Event) { f(ev) }

// Transport is the real-time channel to the meeting coordination endpoint.
// Connection errors never surface synchronously: they arrive as events.
type Transport interface {
	// Connect starts the channel. Idempotent; reconnects are transparent.
	// The channel lives until Close, not until ctx is done.
	Connect(ctx context.Context) error
	JoinMeeting(roomID domain.RoomID)
	// LeaveMeeting is a no-op for rooms that were never joined.
	LeaveMeeting(roomID domain.RoomID)
	// SendMessage never inserts locally; the message comes back as an event.
	SendMessage(roomID domain.RoomID, text string)

	// SetHandler attaches the single consumer. Fails with ErrHandlerAttached
	// while another handler is attached.
	SetHandler(h EventHandler) error
	ClearHandler()

	Close()
}
