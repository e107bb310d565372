package messaging

// ErrorType categorizes a rejected command
type ErrorType string

const (
	ErrorTypeRoomFull          ErrorType = "room_full"
	ErrorTypeAgeNotVerified    ErrorType = "age_not_verified"
	ErrorTypeSectionTooLarge   ErrorType = "section_too_large"
	ErrorTypeAlreadyInSection  ErrorType = "already_in_section"
	ErrorTypeNoEligibleInvitee ErrorType = "no_eligible_invitee"
	ErrorTypeSectionNotFound   ErrorType = "section_not_found"
	ErrorTypeNotInvited        ErrorType = "not_invited"
	ErrorTypeUnknown           ErrorType = "unknown"
)

// CloseType categorizes why the server ended a connection
type CloseType string

const (
	CloseTypeRoomFull       CloseType = "room_full"
	CloseTypeAgeNotVerified CloseType = "age_not_verified"
	CloseTypeEvicted        CloseType = "evicted"
	CloseTypeShutdown       CloseType = "shutdown"
)

// GetErrorMessageInput contains parameters for getting an error message
type GetErrorMessageInput struct {
	ErrorType ErrorType

	// Limit is the section size cap, used by ErrorTypeSectionTooLarge
	Limit int
}

// GetErrorMessageOutput contains the result of getting an error message
type GetErrorMessageOutput struct {
	Reason string
}

// GetCloseReasonInput contains parameters for getting a close reason
type GetCloseReasonInput struct {
	CloseType CloseType
}

// GetCloseReasonOutput contains the close frame reason
type GetCloseReasonOutput struct {
	// Reason fits in a websocket close frame
	Reason string
}
