package messaging

import (
	"context"
	"fmt"
	"math/rand/v2"
)

// MessagingError is a custom error type for messaging errors
type MessagingError string

// Error implements the error interface
func (e MessagingError) Error() string {
	return string(e)
}

const (
	ErrNilInput MessagingError = "input cannot be nil"
)

// Config holds configuration for the messaging service
type Config struct {
	// Pick chooses among n phrasings; defaults to a uniform random pick
	Pick func(n int) int
}

// service implements the Service interface
type service struct {
	pick func(n int) int
}

// NewService creates a new messaging service
func NewService(cfg *Config) (Service, error) {
	pick := rand.IntN
	if cfg != nil && cfg.Pick != nil {
		pick = cfg.Pick
	}
	return &service{pick: pick}, nil
}

// GetErrorMessage returns a human-readable reason for a rejected command
func (s *service) GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	var messages []string
	switch input.ErrorType {
	case ErrorTypeRoomFull:
		messages = []string{
			"The room is full. Try again in a moment.",
			"Every seat is taken right now. Try again shortly.",
		}
	case ErrorTypeAgeNotVerified:
		messages = []string{
			"You must confirm you are of age to join.",
		}
	case ErrorTypeSectionTooLarge:
		limit := input.Limit
		if limit <= 0 {
			limit = 3
		}
		messages = []string{
			fmt.Sprintf("Sections hold at most %d people, including you.", limit),
			fmt.Sprintf("Too many invitees. A section fits %d people in total.", limit),
		}
	case ErrorTypeAlreadyInSection:
		messages = []string{
			"You are already in a section.",
		}
	case ErrorTypeNoEligibleInvitee:
		messages = []string{
			"None of those participants can join a section right now.",
			"Nobody you invited is free to join a section.",
		}
	case ErrorTypeSectionNotFound:
		messages = []string{
			"That section no longer exists.",
		}
	case ErrorTypeNotInvited:
		messages = []string{
			"You were not invited to that section.",
		}
	default:
		messages = []string{
			"Something went wrong. Try again.",
		}
	}

	return &GetErrorMessageOutput{
		Reason: messages[s.pick(len(messages))],
	}, nil
}

// GetCloseReason returns the reason sent when the server closes a connection
func (s *service) GetCloseReason(ctx context.Context, input *GetCloseReasonInput) (*GetCloseReasonOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	reason := "closing"
	switch input.CloseType {
	case CloseTypeRoomFull:
		reason = "room is full"
	case CloseTypeAgeNotVerified:
		reason = "age not verified"
	case CloseTypeEvicted:
		reason = "removed by vote"
	case CloseTypeShutdown:
		reason = "server shutting down"
	}

	return &GetCloseReasonOutput{Reason: reason}, nil
}
