// Package sections manages breakout groups: invitation, consent and locking.
package sections

import (
	"github.com/KirkDiggler/sketchroom/internal/common/uuid"
	"github.com/KirkDiggler/sketchroom/internal/models"
	"github.com/samber/lo"
)

// SectionError is a custom error type for section errors
type SectionError string

// Error implements the error interface
func (e SectionError) Error() string {
	return string(e)
}

const (
	ErrSectionTooLarge    SectionError = "section exceeds maximum size"
	ErrAlreadyInSection   SectionError = "participant already belongs to a section"
	ErrNoEligibleInvitees SectionError = "no invitee can join a section"
	ErrSectionNotFound    SectionError = "section not found"
	ErrNotInvited         SectionError = "participant is not a member of the section"
	ErrNilConfig          SectionError = "config cannot be nil"
	ErrNilUUIDGenerator   SectionError = "UUID generator cannot be nil"
	ErrInvalidMaxMembers  SectionError = "max members must be at least 2"
)

// DefaultMaxMembers is the hard cap on section size, inviter included
const DefaultMaxMembers = 3

// Config holds configuration for the section manager
type Config struct {
	UUIDGenerator uuid.UUID

	// MaxMembers defaults to DefaultMaxMembers
	MaxMembers int
}

// Candidate is a participant that can take a seat
type Candidate struct {
	ParticipantID string
	Number        int
}

// CreateInput contains parameters for forming a section
type CreateInput struct {
	Inviter Candidate

	// RequestedCount is how many invitees the client named, resolvable or not
	RequestedCount int

	// Invitees are the resolvable, connected invitees
	Invitees []Candidate
}

// RemoveOutput describes the effect of stripping a member
type RemoveOutput struct {
	// Section is the section after removal
	Section *models.Section

	// Dissolved is true when the last member left
	Dissolved bool

	// JustLocked is true when the departure left only accepted members
	JustLocked bool
}

// Manager tracks a room's sections. It is not safe for concurrent use.
type Manager struct {
	ids        uuid.UUID
	maxMembers int
	sections   map[string]*models.Section
	order      []string
	memberOf   map[string]string
}

// New creates a section manager
func New(cfg *Config) (*Manager, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}
	maxMembers := cfg.MaxMembers
	if maxMembers == 0 {
		maxMembers = DefaultMaxMembers
	}
	if maxMembers < 2 {
		return nil, ErrInvalidMaxMembers
	}

	return &Manager{
		ids:        cfg.UUIDGenerator,
		maxMembers: maxMembers,
		sections:   make(map[string]*models.Section),
		memberOf:   make(map[string]string),
	}, nil
}

// Create builds a section with the inviter pre-accepted and each eligible
// invitee pending. Invitees already seated elsewhere, repeated, or equal to
// the inviter are skipped.
func (m *Manager) Create(input *CreateInput) (*models.Section, error) {
	if input.RequestedCount+1 > m.maxMembers || len(input.Invitees)+1 > m.maxMembers {
		return nil, ErrSectionTooLarge
	}
	if _, seated := m.memberOf[input.Inviter.ParticipantID]; seated {
		return nil, ErrAlreadyInSection
	}

	invitees := lo.UniqBy(input.Invitees, func(c Candidate) string { return c.ParticipantID })
	invitees = lo.Filter(invitees, func(c Candidate, _ int) bool {
		_, seated := m.memberOf[c.ParticipantID]
		return !seated && c.ParticipantID != input.Inviter.ParticipantID
	})
	if len(invitees) == 0 {
		return nil, ErrNoEligibleInvitees
	}

	section := &models.Section{
		ID: m.ids.NewUUID(),
		Members: []models.SectionMember{{
			ParticipantID: input.Inviter.ParticipantID,
			Number:        input.Inviter.Number,
			Accepted:      true,
		}},
	}
	for _, c := range invitees {
		section.Members = append(section.Members, models.SectionMember{
			ParticipantID: c.ParticipantID,
			Number:        c.Number,
		})
	}

	m.sections[section.ID] = section
	m.order = append(m.order, section.ID)
	for _, member := range section.Members {
		m.memberOf[member.ParticipantID] = section.ID
	}
	return section.Clone(), nil
}

// Accept marks the participant's seat accepted. Re-accepting is a no-op.
// The bool reports whether this call locked the section.
func (m *Manager) Accept(participantID, sectionID string) (*models.Section, bool, error) {
	section, ok := m.sections[sectionID]
	if !ok {
		return nil, false, ErrSectionNotFound
	}

	idx := -1
	for i, member := range section.Members {
		if member.ParticipantID == participantID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false, ErrNotInvited
	}
	if section.Members[idx].Accepted {
		return section.Clone(), false, nil
	}

	section.Members[idx].Accepted = true
	justLocked := m.relock(section)
	return section.Clone(), justLocked, nil
}

// RemoveMember strips the participant from its section, dissolving the
// section once nobody is left.
func (m *Manager) RemoveMember(participantID string) (*RemoveOutput, bool) {
	sectionID, ok := m.memberOf[participantID]
	if !ok {
		return nil, false
	}
	delete(m.memberOf, participantID)

	section := m.sections[sectionID]
	section.Members = lo.Reject(section.Members, func(member models.SectionMember, _ int) bool {
		return member.ParticipantID == participantID
	})

	if len(section.Members) == 0 {
		m.dissolve(sectionID)
		return &RemoveOutput{Section: section.Clone(), Dissolved: true}, true
	}

	justLocked := m.relock(section)
	return &RemoveOutput{Section: section.Clone(), JustLocked: justLocked}, true
}

// Expire dissolves the section if it is still unlocked
func (m *Manager) Expire(sectionID string) (*models.Section, bool) {
	section, ok := m.sections[sectionID]
	if !ok || section.Locked {
		return nil, false
	}
	for _, member := range section.Members {
		delete(m.memberOf, member.ParticipantID)
	}
	m.dissolve(sectionID)
	return section.Clone(), true
}

// LockedSectionOf returns the id of the participant's section when it is
// locked, or "" otherwise.
func (m *Manager) LockedSectionOf(participantID string) string {
	sectionID, ok := m.memberOf[participantID]
	if !ok || !m.sections[sectionID].Locked {
		return ""
	}
	return sectionID
}

// Get returns a section by id
func (m *Manager) Get(sectionID string) (*models.Section, bool) {
	section, ok := m.sections[sectionID]
	if !ok {
		return nil, false
	}
	return section.Clone(), true
}

// List returns every section in creation order
func (m *Manager) List() []*models.Section {
	return lo.Map(m.order, func(id string, _ int) *models.Section {
		return m.sections[id].Clone()
	})
}

// relock keeps Locked equal to "every member accepted" and reports a false→true flip
func (m *Manager) relock(section *models.Section) bool {
	wasLocked := section.Locked
	section.Locked = section.AllAccepted()
	return section.Locked && !wasLocked
}

func (m *Manager) dissolve(sectionID string) {
	delete(m.sections, sectionID)
	m.order = lo.Without(m.order, sectionID)
}
