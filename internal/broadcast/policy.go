package broadcast

import "github.com/KirkDiggler/sketchroom/internal/protocol"

// Audience says whether the originator of an action hears its own event
type Audience int

const (
	// AudienceEveryone includes the originator, confirming the new state
	AudienceEveryone Audience = iota

	// AudienceOthers skips the originator, who already applied the change locally
	AudienceOthers
)

// Unicast and member-only events (joined, waiting, error, section_invitation,
// section_joined) are addressed by choosing the recipients; within those
// recipients they go to everyone.
var echoPolicy = map[protocol.EventType]Audience{
	protocol.EventParticipantJoined: AudienceOthers,
	protocol.EventDrawing:           AudienceOthers,
}

// AudienceFor returns the echo policy for an event type
func AudienceFor(t protocol.EventType) Audience {
	if a, ok := echoPolicy[t]; ok {
		return a
	}
	return AudienceEveryone
}
