package canvas

// CanvasError is a custom error type for content store errors
type CanvasError string

// Error implements the error interface
func (e CanvasError) Error() string {
	return string(e)
}

const (
	ErrNilConfig        CanvasError = "config cannot be nil"
	ErrNilUUIDGenerator CanvasError = "UUID generator cannot be nil"
)
