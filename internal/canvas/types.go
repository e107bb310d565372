package canvas

import (
	"github.com/KirkDiggler/sketchroom/internal/common/uuid"
	"github.com/KirkDiggler/sketchroom/internal/models"
)

// Config holds configuration for the content store
type Config struct {
	// UUIDGenerator issues stroke and label ids
	UUIDGenerator uuid.UUID
}

// StartStrokeInput contains parameters for starting a stroke
type StartStrokeInput struct {
	// OwnerID is the participant id of the drawer
	OwnerID string

	// OwnerNumber is the drawer's public number
	OwnerNumber int

	// PathKey is the client's handle for the path, used to match continuations
	PathKey string

	// Point is the first point of the stroke
	Point models.Point

	Color string
	Width float64

	// SectionID tags the stroke; empty when drawn outside a locked section
	SectionID string
}

// ContinueStrokeInput contains parameters for extending a stroke
type ContinueStrokeInput struct {
	OwnerID string

	// PathKey must match the stroke's key when set
	PathKey string

	Points []models.Point
}

// ContinueStrokeOutput describes an applied continuation
type ContinueStrokeOutput struct {
	// StrokeID is the stroke that was extended
	StrokeID string

	// OwnerNumber is the public number of the stroke owner
	OwnerNumber int

	// Points are only the points appended by this call
	Points []models.Point
}

// CreateLabelInput contains parameters for placing a label
type CreateLabelInput struct {
	OwnerID     string
	OwnerNumber int
	Content     string
	X           float64
	Y           float64
	Color       string
	Size        float64
	SectionID   string
}

// EraseScope limits which section tags an erase may touch
type EraseScope struct {
	// Restricted is set during the sections phase
	Restricted bool

	// SectionID is the requester's own section; untagged content is always eligible
	SectionID string
}

// EraseInput contains parameters for an erase sweep
type EraseInput struct {
	X      float64
	Y      float64
	Radius float64
	Scope  EraseScope
}

// EraseOutput lists the removed elements
type EraseOutput struct {
	StrokeIDs []string
	LabelIDs  []string
}

// Empty reports whether the erase removed nothing
func (o *EraseOutput) Empty() bool {
	return len(o.StrokeIDs) == 0 && len(o.LabelIDs) == 0
}
