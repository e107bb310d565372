package session

// SessionError is a custom error type for session errors
type SessionError string

// Error implements the error interface
func (e SessionError) Error() string {
	return string(e)
}

const (
	ErrAgeNotVerified   SessionError = "age verification required"
	ErrNotJoined        SessionError = "connection has not joined a room"
	ErrShuttingDown     SessionError = "service is shutting down"
	ErrNilConn          SessionError = "connection cannot be nil"
	ErrNilConfig        SessionError = "config cannot be nil"
	ErrNilLogger        SessionError = "logger cannot be nil"
	ErrNilClock         SessionError = "clock cannot be nil"
	ErrNilUUIDGenerator SessionError = "UUID generator cannot be nil"
	ErrNilDispatcher    SessionError = "dispatcher cannot be nil"
	ErrNilMessaging     SessionError = "messaging service cannot be nil"
	ErrNilRoomRepo      SessionError = "room repository cannot be nil"
	ErrNilEvictionRepo  SessionError = "eviction repository cannot be nil"
)
