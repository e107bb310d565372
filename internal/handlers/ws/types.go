package ws

import (
	"log/slog"
	"time"

	"github.com/KirkDiggler/sketchroom/internal/common/uuid"
	"github.com/KirkDiggler/sketchroom/internal/services/session"
)

const (
	DefaultSendBuffer     = 256
	DefaultMaxMessageSize = 64 << 10
	DefaultWriteTimeout   = 10 * time.Second
	DefaultPongTimeout    = 60 * time.Second
)

// Config holds the transport's dependencies and tuning
type Config struct {
	Logger         *slog.Logger
	SessionService session.Service
	UUIDGenerator  uuid.UUID

	// SendBuffer is the number of outbound events queued per connection
	// before new ones are dropped
	SendBuffer int

	// MaxMessageSize caps a single inbound frame
	MaxMessageSize int64

	WriteTimeout time.Duration

	// PongTimeout is how long a silent client is kept. Pings go out at
	// nine tenths of it.
	PongTimeout time.Duration

	// AllowedOrigins restricts the upgrade to these Origin headers. Empty
	// allows any origin.
	AllowedOrigins []string
}
