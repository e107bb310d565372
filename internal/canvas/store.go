// Package canvas holds a room's shared content: freehand strokes and text
// labels, with whole-element erasure.
//
// A Store is not safe for concurrent use; the owning room serializes access.
package canvas

import (
	"math"

	"github.com/KirkDiggler/sketchroom/internal/common/uuid"
	"github.com/KirkDiggler/sketchroom/internal/models"
)

type stroke struct {
	models.Stroke
	ownerID string
	pathKey string
	erased  bool
}

type label struct {
	models.Label
	ownerID string
}

// Store is the append/continue/erase content model for one room
type Store struct {
	ids     uuid.UUID
	strokes []*stroke
	labels  []*label

	// last is each owner's most recently started stroke
	last map[string]*stroke
}

// New creates an empty content store
func New(cfg *Config) (*Store, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	return &Store{
		ids:  cfg.UUIDGenerator,
		last: make(map[string]*stroke),
	}, nil
}

// StartStroke creates a one-point stroke and makes it the owner's continuation target
func (s *Store) StartStroke(input *StartStrokeInput) models.Stroke {
	st := &stroke{
		Stroke: models.Stroke{
			ID:          s.ids.NewUUID(),
			OwnerNumber: input.OwnerNumber,
			Color:       input.Color,
			Width:       input.Width,
			Points:      []models.Point{input.Point},
			SectionID:   input.SectionID,
		},
		ownerID: input.OwnerID,
		pathKey: input.PathKey,
	}
	s.strokes = append(s.strokes, st)
	s.last[input.OwnerID] = st

	return cloneStroke(&st.Stroke)
}

// ContinueStroke appends points to the owner's most recent stroke. It returns
// false without changing anything when that stroke was erased, the owner has
// no stroke, or the path key does not match.
func (s *Store) ContinueStroke(input *ContinueStrokeInput) (*ContinueStrokeOutput, bool) {
	st, ok := s.last[input.OwnerID]
	if !ok || st.erased || st.ownerID != input.OwnerID {
		return nil, false
	}
	if input.PathKey != "" && input.PathKey != st.pathKey {
		return nil, false
	}
	if len(input.Points) == 0 {
		return nil, false
	}

	st.Points = append(st.Points, input.Points...)

	appended := make([]models.Point, len(input.Points))
	copy(appended, input.Points)
	return &ContinueStrokeOutput{
		StrokeID:    st.ID,
		OwnerNumber: st.OwnerNumber,
		Points:      appended,
	}, true
}

// HasActiveStroke reports whether the owner's last stroke is still continuable under pathKey
func (s *Store) HasActiveStroke(ownerID, pathKey string) bool {
	st, ok := s.last[ownerID]
	return ok && !st.erased && st.pathKey == pathKey
}

// CreateLabel appends a label
func (s *Store) CreateLabel(input *CreateLabelInput) models.Label {
	l := &label{
		Label: models.Label{
			ID:          s.ids.NewUUID(),
			OwnerNumber: input.OwnerNumber,
			Content:     input.Content,
			X:           input.X,
			Y:           input.Y,
			Color:       input.Color,
			Size:        input.Size,
			SectionID:   input.SectionID,
		},
		ownerID: input.OwnerID,
	}
	s.labels = append(s.labels, l)
	return l.Label
}

// Erase removes every eligible label strictly within the radius of (x, y) and
// every eligible stroke with at least one point strictly within it.
func (s *Store) Erase(input *EraseInput) *EraseOutput {
	out := &EraseOutput{
		StrokeIDs: []string{},
		LabelIDs:  []string{},
	}

	keptStrokes := s.strokes[:0]
	for _, st := range s.strokes {
		if input.Scope.allows(st.SectionID) && strokeHit(st, input) {
			st.erased = true
			out.StrokeIDs = append(out.StrokeIDs, st.ID)
			continue
		}
		keptStrokes = append(keptStrokes, st)
	}
	clear(s.strokes[len(keptStrokes):])
	s.strokes = keptStrokes

	keptLabels := s.labels[:0]
	for _, l := range s.labels {
		if input.Scope.allows(l.SectionID) && within(l.X, l.Y, input) {
			out.LabelIDs = append(out.LabelIDs, l.ID)
			continue
		}
		keptLabels = append(keptLabels, l)
	}
	clear(s.labels[len(keptLabels):])
	s.labels = keptLabels

	return out
}

// Forget drops the owner's continuation target, e.g. when the owner departs.
// The owner's content stays on the canvas.
func (s *Store) Forget(ownerID string) {
	delete(s.last, ownerID)
}

// Snapshot returns copies of all content in creation order
func (s *Store) Snapshot() ([]models.Stroke, []models.Label) {
	strokes := make([]models.Stroke, 0, len(s.strokes))
	for _, st := range s.strokes {
		strokes = append(strokes, cloneStroke(&st.Stroke))
	}
	labels := make([]models.Label, 0, len(s.labels))
	for _, l := range s.labels {
		labels = append(labels, l.Label)
	}
	return strokes, labels
}

func (sc EraseScope) allows(sectionID string) bool {
	if !sc.Restricted || sectionID == "" {
		return true
	}
	return sectionID == sc.SectionID
}

func strokeHit(st *stroke, input *EraseInput) bool {
	for _, p := range st.Points {
		if within(p.X, p.Y, input) {
			return true
		}
	}
	return false
}

// within is strict: an element exactly on the radius survives
func within(x, y float64, input *EraseInput) bool {
	return math.Hypot(x-input.X, y-input.Y) < input.Radius
}

func cloneStroke(st *models.Stroke) models.Stroke {
	out := *st
	out.Points = make([]models.Point, len(st.Points))
	copy(out.Points, st.Points)
	return out
}
