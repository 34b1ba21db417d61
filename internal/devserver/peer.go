package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dkeye/meetsync/internal/adapters/signal"
	"github.com/dkeye/meetsync/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrPeerClosed   = errors.New("peer closed")
)

// Peer is one websocket connection. A user may hold several.
type Peer struct {
	id       string
	identity domain.Identity
	conn     *websocket.Conn
	send     chan []byte
	logger   zerolog.Logger

	mu     sync.Mutex
	closed bool
	once   sync.Once

	// rooms is owned by the read pump.
	rooms map[domain.RoomID]*Room
}

func newPeer(conn *websocket.Conn, identity domain.Identity, buffer int) *Peer {
	id := uuid.NewString()
	return &Peer{
		id:       id,
		identity: identity,
		conn:     conn,
		send:     make(chan []byte, buffer),
		logger:   log.With().Str("module", "devserver.peer").Str("peer", id).Str("user", string(identity.UserID)).Logger(),
		rooms:    make(map[domain.RoomID]*Room),
	}
}

func (p *Peer) ID() string { return p.id }

func (p *Peer) Identity() domain.Identity { return p.identity }

func (p *Peer) TrySend(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPeerClosed
	}
	select {
	case p.send <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

func (p *Peer) Close() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.send)
		p.mu.Unlock()
		if p.conn != nil {
			_ = p.conn.Close()
		}
	})
}

func (p *Peer) sendError(msg string) {
	_ = p.TrySend(encodeFrame(signal.Frame{Type: signal.TypeError, Error: msg}))
}

func (s *Server) writePump(ctx context.Context, p *Peer) {
	ticker := time.NewTicker(s.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		p.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-p.send:
			if !ok {
				_ = p.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(s.opts.WriteWait))
				return
			}
			if err := p.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteWait)); err != nil {
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				p.logger.Debug().Err(err).Msg("write failed")
				return
			}
		case <-ticker.C:
			if err := p.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.opts.WriteWait)); err != nil {
				return
			}
		}
	}
}

func (s *Server) readPump(ctx context.Context, p *Peer) {
	defer func() {
		for _, room := range p.rooms {
			room.Leave(p)
		}
		p.Close()
		p.logger.Info().Msg("peer closed")
	}()

	p.conn.SetReadLimit(s.opts.ReadLimit)
	_ = p.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				p.logger.Debug().Err(err).Msg("read failed")
			}
			return
		}
		s.handleFrame(p, data)
	}
}

func (s *Server) handleFrame(p *Peer, data []byte) {
	var f signal.Frame
	if err := json.Unmarshal(data, &f); err != nil {
		p.logger.Warn().Err(err).Msg("bad frame")
		p.sendError("malformed frame")
		return
	}

	switch f.Type {
	case signal.TypeJoinMeeting:
		room, ok := s.store.Room(f.RoomID)
		if !ok {
			p.sendError(ErrRoomNotFound.Error())
			return
		}
		p.rooms[f.RoomID] = room
		room.Join(p, s.store.profileOf(p.identity))
	case signal.TypeLeaveMeeting:
		if room, ok := p.rooms[f.RoomID]; ok {
			delete(p.rooms, f.RoomID)
			room.Leave(p)
		}
	case signal.TypeSendMessage:
		room, ok := p.rooms[f.RoomID]
		if !ok {
			p.sendError(ErrNotInRoom.Error())
			return
		}
		if _, err := room.Post(p, f.Content); err != nil {
			p.sendError(err.Error())
		}
	default:
		p.logger.Warn().Str("type", f.Type).Msg("unknown frame")
		p.sendError("unknown frame type " + f.Type)
	}
}
