package signal

import (
	"context"
	"time"

	"github.com/dkeye/meetsync/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (c *Client) run(ctx context.Context) {
	defer close(c.stopped)

	backoff := c.opts.MinBackoff
	for {
		if ctx.Err() != nil {
			return
		}
		ws, _, err := c.opts.Dialer.DialContext(ctx, c.opts.URL, c.header())
		if err != nil {
			log.Warn().Err(err).Str("module", "signal").Dur("retry_in", backoff).Msg("dial failed")
			if !sleep(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff, c.opts.MaxBackoff)
			continue
		}
		backoff = c.opts.MinBackoff

		conn := newWSConn(ws, c.opts.SendBuffer)
		if !c.attach(conn) {
			conn.Close()
			return
		}
		c.emit(core.ConnectedEvent())

		c.serve(ctx, conn)

		c.detach(conn)
		if ctx.Err() != nil {
			return
		}
		log.Warn().Str("module", "signal").Dur("retry_in", backoff).Msg("connection lost")
		c.emit(core.DisconnectedEvent())
		if !sleep(ctx, backoff) {
			return
		}
	}
}

// attach publishes conn and queues a join for every joined room.
func (c *Client) attach(conn *wsConn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.conn = conn
	for roomID := range c.joined {
		if err := conn.TrySend(joinFrame(roomID)); err != nil {
			log.Error().Err(err).Str("module", "signal").Str("room", string(roomID)).Msg("rejoin not queued")
			continue
		}
		log.Info().Str("module", "signal").Str("room", string(roomID)).Msg("rejoin queued")
	}
	return true
}

func (c *Client) detach(conn *wsConn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	conn.Close()
}

func (c *Client) serve(ctx context.Context, conn *wsConn) {
	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		c.writePump(ctx, conn)
	}()
	c.readPump(conn)
	conn.Close()
	<-writeDone
}

func (c *Client) writePump(ctx context.Context, conn *wsConn) {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-conn.quit:
			return
		case data := <-conn.send:
			if err := conn.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := conn.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := conn.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.opts.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		}
	}
}

func (c *Client) readPump(conn *wsConn) {
	ws := conn.conn
	ws.SetReadLimit(c.opts.ReadLimit)
	_ = ws.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("module", "signal").Msg("readPump read error")
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(c.opts.PongWait))

		ev, err := DecodeEvent(data)
		if err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("bad frame")
			c.emit(core.ErrorEvent(err))
			continue
		}
		c.emit(ev)
	}
}

func nextBackoff(d, limit time.Duration) time.Duration {
	d *= 2
	if d > limit {
		return limit
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
