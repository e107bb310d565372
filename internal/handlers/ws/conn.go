package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/KirkDiggler/sketchroom/internal/broadcast"
	"github.com/gorilla/websocket"
)

// conn adapts a websocket to broadcast.Conn. Send never blocks: events are
// queued for the write pump and dropped when the queue is full.
type conn struct {
	id  string
	ws  *websocket.Conn
	log *slog.Logger

	send         chan []byte
	closing      chan struct{}
	done         chan struct{}
	writeTimeout time.Duration
	pingEvery    time.Duration

	mu     sync.Mutex
	open   bool
	reason string
}

func newConn(id string, ws *websocket.Conn, log *slog.Logger, cfg *Config) *conn {
	return &conn{
		id:           id,
		ws:           ws,
		log:          log,
		send:         make(chan []byte, cfg.SendBuffer),
		closing:      make(chan struct{}),
		done:         make(chan struct{}),
		writeTimeout: cfg.WriteTimeout,
		pingEvery:    cfg.PongTimeout * 9 / 10,
		open:         true,
	}
}

func (c *conn) ID() string {
	return c.id
}

func (c *conn) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *conn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return broadcast.ErrConnClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close flushes what is already queued, then sends a close frame carrying reason
func (c *conn) Close(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return nil
	}
	c.open = false
	c.reason = reason
	close(c.closing)
	return nil
}

// writePump owns every write to the socket
func (c *conn) writePump() {
	ticker := time.NewTicker(c.pingEvery)
	defer func() {
		ticker.Stop()
		c.ws.Close()
		close(c.done)
	}()

	for {
		select {
		case data := <-c.send:
			if err := c.write(websocket.TextMessage, data); err != nil {
				c.log.Debug("Write failed", "conn", c.id, "error", err)
				c.markClosed()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.log.Debug("Ping failed", "conn", c.id, "error", err)
				c.markClosed()
				return
			}
		case <-c.closing:
			c.flush()
			c.mu.Lock()
			reason := c.reason
			c.mu.Unlock()
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
			if err := c.write(websocket.CloseMessage, msg); err != nil {
				c.log.Debug("Close frame failed", "conn", c.id, "error", err)
			}
			return
		}
	}
}

func (c *conn) flush() {
	for {
		select {
		case data := <-c.send:
			if err := c.write(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *conn) write(messageType int, data []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, data)
}

// markClosed flags a socket that died underneath us
func (c *conn) markClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open {
		c.open = false
		close(c.closing)
	}
}
