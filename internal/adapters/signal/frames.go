package signal

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/meetsync/internal/core"
	"github.com/dkeye/meetsync/internal/domain"
)

// Frame types of the meeting wire protocol.
const (
	TypeJoinMeeting  = "join-meeting"
	TypeLeaveMeeting = "leave-meeting"
	TypeSendMessage  = "send-message"

	TypeMeetingState      = "meeting-state"
	TypeParticipantJoined = "participant-joined"
	TypeParticipantLeft   = "participant-left"
	TypeMeetingMessage    = "meeting-message"
	TypeError             = "error"
)

var ErrUnknownFrame = errors.New("unknown frame type")

// Frame is the single JSON envelope used in both directions.
type Frame struct {
	Type          string            `json:"type"`
	RoomID        domain.RoomID     `json:"roomId,omitempty"`
	Content       string            `json:"content,omitempty"`
	Meeting       *domain.Meeting   `json:"meeting,omitempty"`
	Participants  []WireParticipant `json:"participants,omitempty"`
	Participant   *WireParticipant  `json:"participant,omitempty"`
	ParticipantID domain.UserID     `json:"participantId,omitempty"`
	Messages      []WireMessage     `json:"messages,omitempty"`
	Message       *WireMessage      `json:"message,omitempty"`
	Error         string            `json:"error,omitempty"`
	Self          domain.UserID     `json:"self,omitempty"`
}

type WireParticipant struct {
	ID        domain.UserID `json:"id"`
	FirstName string        `json:"firstName,omitempty"`
	LastName  string        `json:"lastName,omitempty"`
	Email     string        `json:"email,omitempty"`
	Connected *bool         `json:"connected,omitempty"`
}

// Participant converts to the domain record; a missing status means connected.
func (w WireParticipant) Participant() domain.Participant {
	connected := true
	if w.Connected != nil {
		connected = *w.Connected
	}
	return domain.Participant{
		ID:        w.ID,
		Profile:   domain.Profile{FirstName: w.FirstName, LastName: w.LastName, Email: w.Email},
		Connected: connected,
	}
}

func WireParticipantOf(p domain.Participant) WireParticipant {
	connected := p.Connected
	return WireParticipant{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Connected: &connected,
	}
}

type WireMessage struct {
	ID        string        `json:"id"`
	UserID    domain.UserID `json:"userId"`
	FirstName string        `json:"firstName,omitempty"`
	LastName  string        `json:"lastName,omitempty"`
	Email     string        `json:"email,omitempty"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"createdAt"`
}

func (w WireMessage) Message() domain.Message {
	m := domain.Message{
		ID:        w.ID,
		UserID:    w.UserID,
		Content:   w.Content,
		CreatedAt: w.CreatedAt,
	}
	author := domain.Profile{FirstName: w.FirstName, LastName: w.LastName, Email: w.Email}
	if !author.IsZero() {
		m.Author = &author
	}
	return m
}

func WireMessageOf(m domain.Message) WireMessage {
	w := WireMessage{
		ID:        m.ID,
		UserID:    m.UserID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
	if m.Author != nil {
		w.FirstName = m.Author.FirstName
		w.LastName = m.Author.LastName
		w.Email = m.Author.Email
	}
	return w
}

// DecodeEvent turns a server frame into a transport event.
func DecodeEvent(data []byte) (core.Event, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return core.Event{}, fmt.Errorf("decode frame: %w", err)
	}

	switch f.Type {
	case TypeMeetingState:
		s := core.Snapshot{Self: f.Self}
		if f.Meeting != nil {
			s.Meeting = *f.Meeting
		}
		for _, p := range f.Participants {
			s.Participants = append(s.Participants, p.Participant())
		}
		for _, m := range f.Messages {
			s.Messages = append(s.Messages, m.Message())
		}
		return core.SnapshotEvent(s), nil
	case TypeParticipantJoined:
		if f.Participant == nil {
			return core.Event{}, fmt.Errorf("%s: missing participant", f.Type)
		}
		return core.JoinedEvent(f.Participant.Participant()), nil
	case TypeParticipantLeft:
		return core.LeftEvent(f.ParticipantID), nil
	case TypeMeetingMessage:
		if f.Message == nil {
			return core.Event{}, fmt.Errorf("%s: missing message", f.Type)
		}
		return core.MessageEvent(f.Message.Message()), nil
	case TypeError:
		msg := f.Error
		if msg == "" {
			msg = "server error"
		}
		return core.ErrorEvent(errors.New(msg)), nil
	default:
		return core.Event{}, fmt.Errorf("%w: %q", ErrUnknownFrame, f.Type)
	}
}

func encode(f Frame) []byte {
	b, _ := json.Marshal(f)
	return b
}

func joinFrame(roomID domain.RoomID) []byte {
	return encode(Frame{Type: TypeJoinMeeting, RoomID: roomID})
}

func leaveFrame(roomID domain.RoomID) []byte {
	return encode(Frame{Type: TypeLeaveMeeting, RoomID: roomID})
}

func messageFrame(roomID domain.RoomID, text string) []byte {
	return encode(Frame{Type: TypeSendMessage, RoomID: roomID, Content: text})
}
