package models

// SectionMember is one seat in a section
type SectionMember struct {
	// ParticipantID is the member's opaque id
	ParticipantID string `json:"-"`

	// Number is the member's public number
	Number int `json:"number"`

	// Accepted is true once the member consented; the inviter is pre-accepted
	Accepted bool `json:"accepted"`
}

// Section is a consent-gated breakout group.
type Section struct {
	// ID is the server-generated identifier
	ID string `json:"id"`

	// Members is ordered; member 0 is the inviter
	Members []SectionMember `json:"members"`

	// Locked is true exactly when every member has accepted
	Locked bool `json:"locked"`
}

// HasMember reports whether participantID holds a seat in the section
func (s *Section) HasMember(participantID string) bool {
	for _, m := range s.Members {
		if m.ParticipantID == participantID {
			return true
		}
	}
	return false
}

// AllAccepted reports whether every member has accepted
func (s *Section) AllAccepted() bool {
	for _, m := range s.Members {
		if !m.Accepted {
			return false
		}
	}
	return true
}

// Clone returns a deep copy safe to hand outside the owning room
func (s *Section) Clone() *Section {
	members := make([]SectionMember, len(s.Members))
	copy(members, s.Members)
	return &Section{ID: s.ID, Members: members, Locked: s.Locked}
}
