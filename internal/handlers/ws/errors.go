package ws

// HandlerError is an error returned while building the transport
type HandlerError string

func (e HandlerError) Error() string {
	return string(e)
}

const (
	ErrNilConfig         HandlerError = "config cannot be nil"
	ErrNilLogger         HandlerError = "logger cannot be nil"
	ErrNilSessionService HandlerError = "session service cannot be nil"
	ErrNilUUIDGenerator  HandlerError = "uuid generator cannot be nil"

	// ErrSendBufferFull means the client is not keeping up and the event was dropped
	ErrSendBufferFull HandlerError = "send buffer full"
)
