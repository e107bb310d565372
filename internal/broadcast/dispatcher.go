// Package broadcast fans room events out to participant connections.
package broadcast

import (
	"log/slog"

	"github.com/KirkDiggler/sketchroom/internal/protocol"
)

// BroadcastError is a custom error type for dispatcher errors
type BroadcastError string

// Error implements the error interface
func (e BroadcastError) Error() string {
	return string(e)
}

const (
	ErrNilConfig  BroadcastError = "config cannot be nil"
	ErrNilLogger  BroadcastError = "logger cannot be nil"
	ErrConnClosed BroadcastError = "connection is closed"
)

// Conn is an outbound participant connection
//
//go:generate mockgen -package=mocks -destination=mocks/mock_conn.go github.com/KirkDiggler/sketchroom/internal/broadcast Conn
type Conn interface {
	ID() string

	// Send queues an encoded message. It must not block.
	Send(data []byte) error

	// Close ends the connection with a reason visible to the client
	Close(reason string) error

	Open() bool
}

// Config holds configuration for the dispatcher
type Config struct {
	Logger *slog.Logger
}

// Dispatcher encodes each event once and delivers it to every eligible connection
type Dispatcher struct {
	log *slog.Logger
}

// New creates a new dispatcher
func New(cfg *Config) (*Dispatcher, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Logger == nil {
		return nil, ErrNilLogger
	}
	return &Dispatcher{log: cfg.Logger}, nil
}

// Publish delivers event to recipients, honouring the event type's echo
// policy relative to originID. It returns how many connections accepted the
// message. Individual failures are logged and never stop delivery.
func (d *Dispatcher) Publish(recipients []Conn, originID string, event protocol.Event) int {
	exclude := ""
	if AudienceFor(event.EventType()) == AudienceOthers {
		exclude = originID
	}
	return d.Broadcast(recipients, event, exclude)
}

// Broadcast delivers event to every open recipient except exclude
func (d *Dispatcher) Broadcast(recipients []Conn, event protocol.Event, exclude string) int {
	data, err := protocol.Encode(event)
	if err != nil {
		d.log.Error("Failed to encode event", "type", event.EventType(), "error", err)
		return 0
	}

	delivered := 0
	for _, conn := range recipients {
		if conn == nil || conn.ID() == exclude || !conn.Open() {
			continue
		}
		if err := conn.Send(data); err != nil {
			d.log.Warn("Failed to deliver event", "type", event.EventType(), "conn", conn.ID(), "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

// Send delivers event to a single connection
func (d *Dispatcher) Send(conn Conn, event protocol.Event) error {
	if !conn.Open() {
		return ErrConnClosed
	}
	data, err := protocol.Encode(event)
	if err != nil {
		return err
	}
	return conn.Send(data)
}
