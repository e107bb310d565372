package protocol

import (
	"github.com/KirkDiggler/sketchroom/internal/models"
)

// EventType is the discriminator of a server event
type EventType string

const (
	EventJoined             EventType = "joined"
	EventWaiting            EventType = "waiting"
	EventParticipantJoined  EventType = "participant_joined"
	EventParticipantLeft    EventType = "participant_left"
	EventParticipantRemoved EventType = "participant_removed"
	EventDrawing            EventType = "drawing"
	EventTextAdded          EventType = "text_added"
	EventErased             EventType = "erased"
	EventVoteUpdate         EventType = "vote_update"
	EventVotingStarted      EventType = "voting_started"
	EventVotingEnded        EventType = "voting_ended"
	EventSectionsPhase      EventType = "sections_phase"
	EventSectionInvitation  EventType = "section_invitation"
	EventSectionCreated     EventType = "section_created"
	EventSectionJoined      EventType = "section_joined"
	EventSectionLeft        EventType = "section_left"
	EventSectionDissolved   EventType = "section_dissolved"
	EventError              EventType = "error"
)

// Event is a server to client message
type Event interface {
	EventType() EventType
}

// Joined is the admission snapshot sent to a new participant
type Joined struct {
	Number       int               `json:"number"`
	Participants []int             `json:"participants"`
	Strokes      []models.Stroke   `json:"strokes"`
	Labels       []models.Label    `json:"labels"`
	Sections     []*models.Section `json:"sections"`
	Phase        models.PhaseKind  `json:"phase"`
	Round        int               `json:"round"`
}

// Waiting tells a queued connection its 1-based place in line
type Waiting struct {
	Position int `json:"position"`
}

type ParticipantJoined struct {
	Number int `json:"number"`
}

type ParticipantLeft struct {
	Number int `json:"number"`
}

// ParticipantRemoved announces a vote eviction. The evicted participant receives it too.
type ParticipantRemoved struct {
	Number int    `json:"number"`
	Round  int    `json:"round"`
	Reason string `json:"reason"`
}

// Drawing carries a new stroke (Start) or points appended to an existing one
type Drawing struct {
	StrokeID  string         `json:"strokeId"`
	PathID    string         `json:"pathId,omitempty"`
	Number    int            `json:"number"`
	Start     bool           `json:"start"`
	Points    []models.Point `json:"points"`
	Color     string         `json:"color,omitempty"`
	Width     float64        `json:"width,omitempty"`
	SectionID *string        `json:"sectionId"`
}

type TextAdded struct {
	Label models.Label `json:"label"`
}

type Erased struct {
	Number    int      `json:"number"`
	StrokeIDs []string `json:"strokeIds"`
	LabelIDs  []string `json:"labelIds"`
}

// VoteUpdate reports the distinct voter count against a participant
type VoteUpdate struct {
	TargetID  int `json:"targetId"`
	Votes     int `json:"votes"`
	Threshold int `json:"threshold"`
	Round     int `json:"round"`
}

type VotingStarted struct {
	Round int `json:"round"`

	// Seconds is the length of the round
	Seconds int `json:"seconds"`
}

type VotingEnded struct {
	Round int `json:"round"`
}

// SectionsPhase lists the remaining active numbers in ascending order
type SectionsPhase struct {
	Numbers []int `json:"numbers"`
}

type SectionInvitation struct {
	SectionID string `json:"sectionId"`
	Inviter   int    `json:"inviter"`
	Members   []int  `json:"members"`
}

type SectionCreated struct {
	Section *models.Section `json:"section"`
}

// SectionJoined tells section members someone accepted, and whether that locked the section
type SectionJoined struct {
	SectionID string                 `json:"sectionId"`
	Number    int                    `json:"number"`
	Locked    bool                   `json:"locked"`
	Members   []models.SectionMember `json:"members"`
}

// SectionLeft tells the remaining members someone departed. Locked reflects the recomputed state.
type SectionLeft struct {
	SectionID string                 `json:"sectionId"`
	Number    int                    `json:"number"`
	Locked    bool                   `json:"locked"`
	Members   []models.SectionMember `json:"members"`
}

type SectionDissolved struct {
	SectionID string `json:"sectionId"`
}

// Error carries a human-readable reason to the offending connection
type Error struct {
	Reason string `json:"reason"`
}

func (Joined) EventType() EventType             { return EventJoined }
func (Waiting) EventType() EventType            { return EventWaiting }
func (ParticipantJoined) EventType() EventType  { return EventParticipantJoined }
func (ParticipantLeft) EventType() EventType    { return EventParticipantLeft }
func (ParticipantRemoved) EventType() EventType { return EventParticipantRemoved }
func (Drawing) EventType() EventType            { return EventDrawing }
func (TextAdded) EventType() EventType          { return EventTextAdded }
func (Erased) EventType() EventType             { return EventErased }
func (VoteUpdate) EventType() EventType         { return EventVoteUpdate }
func (VotingStarted) EventType() EventType      { return EventVotingStarted }
func (VotingEnded) EventType() EventType        { return EventVotingEnded }
func (SectionsPhase) EventType() EventType      { return EventSectionsPhase }
func (SectionInvitation) EventType() EventType  { return EventSectionInvitation }
func (SectionCreated) EventType() EventType     { return EventSectionCreated }
func (SectionJoined) EventType() EventType      { return EventSectionJoined }
func (SectionLeft) EventType() EventType        { return EventSectionLeft }
func (SectionDissolved) EventType() EventType   { return EventSectionDissolved }
func (Error) EventType() EventType              { return EventError }

// NullableSection maps an empty section tag to JSON null
func NullableSection(sectionID string) *string {
	if sectionID == "" {
		return nil
	}
	return &sectionID
}
