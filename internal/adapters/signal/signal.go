// Package signal implements the meeting transport over a websocket.
package signal

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dkeye/meetsync/internal/core"
	"github.com/dkeye/meetsync/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("transport closed")
	ErrNotConnected = errors.New("not connected to the meeting server")
	ErrNotJoined    = errors.New("room not joined")
	ErrRateLimited  = errors.New("sending messages too fast")
)

type Options struct {
	URL   string
	Token string

	MinBackoff time.Duration
	MaxBackoff time.Duration
	PingPeriod time.Duration
	PongWait   time.Duration
	WriteWait  time.Duration
	ReadLimit  int64

	SendBuffer  int
	EventBuffer int

	RateLimit    int
	RateInterval time.Duration

	Dialer *websocket.Dialer
}

func (o Options) withDefaults() Options {
	if o.MinBackoff <= 0 {
		o.MinBackoff = 500 * time.Millisecond
	}
	if o.MaxBackoff < o.MinBackoff {
		o.MaxBackoff = 30 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = (o.PongWait * 9) / 10
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 5 * time.Second
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = 32768
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 32
	}
	if o.EventBuffer <= 0 {
		o.EventBuffer = 128
	}
	if o.Dialer == nil {
		o.Dialer = websocket.DefaultDialer
	}
	return o
}

// Client is a core.Transport. One run loop owns the socket and redials with
// exponential backoff; every redial re-sends join-meeting for the joined
// rooms, and the server treats duplicate joins as idempotent.
type Client struct {
	opts    Options
	limiter *RoomRateLimiter

	mu      sync.Mutex
	conn    *wsConn
	joined  map[domain.RoomID]struct{}
	started bool
	closed  bool
	cancel  context.CancelFunc
	stopped chan struct{}

	handlerMu sync.RWMutex
	handler   core.EventHandler

	events    chan core.Event
	done      chan struct{}
	closeOnce sync.Once
}

var _ core.Transport = (*Client)(nil)

func NewClient(opts Options) *Client {
	opts = opts.withDefaults()
	c := &Client{
		opts:    opts,
		limiter: NewRoomRateLimiter(opts.RateLimit, opts.RateInterval),
		joined:  make(map[domain.RoomID]struct{}),
		stopped: make(chan struct{}),
		events:  make(chan core.Event, opts.EventBuffer),
		done:    make(chan struct{}),
	}
	go c.dispatch()
	return c
}

// Connect starts the run loop. The loop keeps the values of ctx but not its
// deadline or cancellation; it runs until Close.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.started {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.started = true

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel
	go c.run(runCtx)
	log.Info().Str("module", "signal").Str("url", c.opts.URL).Msg("connect")
	return nil
}

func (c *Client) JoinMeeting(roomID domain.RoomID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.joined[roomID] = struct{}{}
	if c.conn == nil {
		log.Debug().Str("module", "signal").Str("room", string(roomID)).Msg("join deferred until connected")
		return
	}
	if err := c.conn.TrySend(joinFrame(roomID)); err != nil {
		c.tryEmit(core.ErrorEvent(err))
	}
}

func (c *Client) LeaveMeeting(roomID domain.RoomID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.joined[roomID]; !ok {
		return
	}
	delete(c.joined, roomID)
	if c.conn == nil {
		return
	}
	if err := c.conn.TrySend(leaveFrame(roomID)); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("room", string(roomID)).Msg("leave not sent")
	}
}

func (c *Client) SendMessage(roomID domain.RoomID, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	switch _, joined := c.joined[roomID]; {
	case c.closed:
		err = ErrClosed
	case !joined:
		err = ErrNotJoined
	case c.conn == nil:
		err = ErrNotConnected
	case !c.limiter.Allow(roomID):
		err = ErrRateLimited
	default:
		err = c.conn.TrySend(messageFrame(roomID, text))
	}
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("room", string(roomID)).Msg("message not sent")
		c.tryEmit(core.ErrorEvent(err))
	}
}

func (c *Client) SetHandler(h core.EventHandler) error {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	if c.handler != nil {
		return core.ErrHandlerAttached
	}
	c.handler = h
	return nil
}

func (c *Client) ClearHandler() {
	c.handlerMu.Lock()
	c.handler = nil
	c.handlerMu.Unlock()
}

// Connected reports whether a socket is currently established.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	started := c.started
	if c.cancel != nil {
		c.cancel()
	}
	if c.conn != nil {
		c.conn.Close()
	}
	c.mu.Unlock()

	if started {
		<-c.stopped
	}
	c.closeOnce.Do(func() { close(c.done) })
	log.Info().Str("module", "signal").Msg("closed")
}

func (c *Client) dispatch() {
	for {
		select {
		case <-c.done:
			return
		case ev := <-c.events:
			c.handlerMu.RLock()
			h := c.handler
			c.handlerMu.RUnlock()
			if h == nil {
				log.Debug().Str("module", "signal").Str("event", ev.Kind.String()).Msg("no handler, event dropped")
				continue
			}
			h.HandleEvent(ev)
		}
	}
}

// emit blocks while the event queue is full so that no event is lost.
func (c *Client) emit(ev core.Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// tryEmit is used on caller goroutines, which may be the dispatcher itself.
func (c *Client) tryEmit(ev core.Event) {
	select {
	case c.events <- ev:
	default:
		log.Warn().Str("module", "signal").Str("event", ev.Kind.String()).Msg("event queue full, dropped")
	}
}

func (c *Client) header() http.Header {
	h := http.Header{}
	if c.opts.Token != "" {
		h.Set("Authorization", "Bearer "+c.opts.Token)
	}
	return h
}

// wsConn pairs a socket with its outbound queue.
type wsConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
	quit   chan struct{}
}

func newWSConn(ws *websocket.Conn, buffer int) *wsConn {
	return &wsConn{
		conn: ws,
		send: make(chan []byte, buffer),
		quit: make(chan struct{}),
	}
}

func (c *wsConn) TrySend(b []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrNotConnected
	}
	select {
	case c.send <- b:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.quit)
	_ = c.conn.Close()
}
