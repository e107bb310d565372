package messaging

import "context"

// Service turns coordinator outcomes into text shown to participants
type Service interface {
	// GetErrorMessage returns the reason carried by an error event
	GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error)

	// GetCloseReason returns the reason sent in a close frame
	GetCloseReason(ctx context.Context, input *GetCloseReasonInput) (*GetCloseReasonOutput, error)
}
