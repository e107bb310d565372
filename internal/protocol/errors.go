package protocol

// ProtocolError is a custom error type for wire errors
type ProtocolError string

// Error implements the error interface
func (e ProtocolError) Error() string {
	return string(e)
}

const (
	ErrMalformedCommand ProtocolError = "malformed command"
	ErrEventNotObject   ProtocolError = "event must encode to a JSON object"
)
