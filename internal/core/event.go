package core

import "github.com/dkeye/meetsync/internal/domain"

type EventKind int

const (
	EventConnected EventKind = iota + 1
	EventDisconnected
	EventError
	EventMeetingState
	EventParticipantJoined
	EventParticipantLeft
	EventMeetingMessage
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventError:
		return "error"
	case EventMeetingState:
		return "meeting-state"
	case EventParticipantJoined:
		return "participant-joined"
	case EventParticipantLeft:
		return "participant-left"
	case EventMeetingMessage:
		return "meeting-message"
	default:
		return "unknown"
	}
}

// Snapshot is the full room state sent by the server after a join.
type Snapshot struct {
	Meeting      domain.Meeting
	Participants []domain.Participant
	Messages     []domain.Message
	// Self is the user id the server bound this connection to.
	Self domain.UserID
}

// Event is a single notification emitted by a Transport.
// Only the field matching Kind is set.
type Event struct {
	Kind          EventKind
	Snapshot      *Snapshot
	Participant   *domain.Participant
	ParticipantID domain.UserID
	Message       *domain.Message
	Err           error
}

func ConnectedEvent() Event    { return Event{Kind: EventConnected} }
func DisconnectedEvent() Event { return Event{Kind: EventDisconnected} }
func ErrorEvent(err error) Event {
	return Event{Kind: EventError, Err: err}
}
func SnapshotEvent(s Snapshot) Event {
	return Event{Kind: EventMeetingState, Snapshot: &s}
}
func JoinedEvent(p domain.Participant) Event {
	return Event{Kind: EventParticipantJoined, Participant: &p}
}
func LeftEvent(id domain.UserID) Event {
	return Event{Kind: EventParticipantLeft, ParticipantID: id}
}
func MessageEvent(m domain.Message) Event {
	return Event{Kind: EventMeetingMessage, Message: &m}
}
