package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode parses and validates one client command. Every failure wraps
// ErrMalformedCommand.
func Decode(data []byte) (Command, error) {
	var envelope struct {
		Type CommandType `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}

	var cmd Command
	switch envelope.Type {
	case CommandJoin:
		cmd = &Join{}
	case CommandDraw:
		cmd = &Draw{}
	case CommandDrawUpdate:
		cmd = &DrawUpdate{}
	case CommandText:
		cmd = &Text{}
	case CommandErase:
		cmd = &Erase{}
	case CommandVoteRemove:
		cmd = &VoteRemove{}
	case CommandCreateSection:
		cmd = &CreateSection{}
	case CommandAcceptSectionInvitation:
		cmd = &AcceptSectionInvitation{}
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformedCommand, envelope.Type)
	}

	if err := json.Unmarshal(data, cmd); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedCommand, envelope.Type, err)
	}
	if err := validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedCommand, envelope.Type, err)
	}
	return cmd, nil
}

// Encode serializes an event with its "type" discriminator as the first field
func Encode(e Event) ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", e.EventType(), err)
	}
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("%w: %T", ErrEventNotObject, e)
	}

	tag, err := json.Marshal(e.EventType())
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(body)+len(tag)+9)
	out = append(out, `{"type":`...)
	out = append(out, tag...)
	if len(body) > 2 {
		out = append(out, ',')
	}
	return append(out, body[1:]...), nil
}
