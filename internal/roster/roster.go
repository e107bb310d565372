// Package roster is a room's participant registry: number allocation,
// capacity enforcement, and the participant records themselves.
//
// A Roster is not safe for concurrent use; the owning room serializes access.
package roster

import (
	"sort"

	"github.com/KirkDiggler/sketchroom/internal/models"
	"github.com/samber/lo"
)

// RosterError is a custom error type for registry errors
type RosterError string

// Error implements the error interface
func (e RosterError) Error() string {
	return string(e)
}

const (
	ErrRoomFull         RosterError = "room is at maximum capacity"
	ErrAlreadyAdmitted  RosterError = "connection already admitted"
	ErrInvalidCapacity  RosterError = "capacity must be positive"
	ErrNilConn          RosterError = "connection cannot be nil"
	ErrEmptyParticipant RosterError = "participant id cannot be empty"
)

// DefaultCapacity is the room size limit
const DefaultCapacity = 20

// Conn is the slice of a connection the registry needs
type Conn interface {
	ID() string
	Open() bool
}

// Entry pairs a participant with its connection
type Entry[C Conn] struct {
	Participant models.Participant
	Conn        C
}

// Roster tracks the active participants of one room
type Roster[C Conn] struct {
	capacity int
	byID     map[string]*Entry[C]
	byNumber map[int]*Entry[C]
	byConn   map[string]*Entry[C]
}

// New creates an empty roster holding at most capacity participants
func New[C Conn](capacity int) (*Roster[C], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Roster[C]{
		capacity: capacity,
		byID:     make(map[string]*Entry[C]),
		byNumber: make(map[int]*Entry[C]),
		byConn:   make(map[string]*Entry[C]),
	}, nil
}

// Capacity returns the configured limit
func (r *Roster[C]) Capacity() int {
	return r.capacity
}

// Admit registers the participant under the lowest free number
func (r *Roster[C]) Admit(participantID string, conn C) (*Entry[C], error) {
	if participantID == "" {
		return nil, ErrEmptyParticipant
	}
	if any(conn) == nil {
		return nil, ErrNilConn
	}
	if _, ok := r.byConn[conn.ID()]; ok {
		return nil, ErrAlreadyAdmitted
	}
	if len(r.byID) >= r.capacity {
		return nil, ErrRoomFull
	}

	number, ok := r.lowestFree()
	if !ok {
		return nil, ErrRoomFull
	}

	entry := &Entry[C]{
		Participant: models.Participant{
			ID:     participantID,
			Number: number,
			ConnID: conn.ID(),
		},
		Conn: conn,
	}
	r.byID[participantID] = entry
	r.byNumber[number] = entry
	r.byConn[conn.ID()] = entry
	return entry, nil
}

// Sweep removes every participant whose connection is no longer open and
// returns the removed entries ordered by number.
func (r *Roster[C]) Sweep() []*Entry[C] {
	dead := lo.Filter(lo.Values(r.byID), func(e *Entry[C], _ int) bool {
		return !e.Conn.Open()
	})
	for _, e := range dead {
		r.drop(e)
	}
	sort.Slice(dead, func(i, j int) bool {
		return dead[i].Participant.Number < dead[j].Participant.Number
	})
	return dead
}

// Remove drops a participant and frees its number
func (r *Roster[C]) Remove(participantID string) (*Entry[C], bool) {
	e, ok := r.byID[participantID]
	if !ok {
		return nil, false
	}
	r.drop(e)
	return e, true
}

// Get looks a participant up by id
func (r *Roster[C]) Get(participantID string) (*Entry[C], bool) {
	e, ok := r.byID[participantID]
	return e, ok
}

// ByNumber looks a participant up by public number
func (r *Roster[C]) ByNumber(number int) (*Entry[C], bool) {
	e, ok := r.byNumber[number]
	return e, ok
}

// ByConn looks a participant up by connection id
func (r *Roster[C]) ByConn(connID string) (*Entry[C], bool) {
	e, ok := r.byConn[connID]
	return e, ok
}

// Active returns all entries ordered by number
func (r *Roster[C]) Active() []*Entry[C] {
	entries := lo.Values(r.byNumber)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Participant.Number < entries[j].Participant.Number
	})
	return entries
}

// Conns returns the connections of all active participants ordered by number
func (r *Roster[C]) Conns() []C {
	return lo.Map(r.Active(), func(e *Entry[C], _ int) C {
		return e.Conn
	})
}

// Numbers returns the sorted active numbers
func (r *Roster[C]) Numbers() []int {
	numbers := lo.Keys(r.byNumber)
	sort.Ints(numbers)
	return numbers
}

// Count returns the number of active participants
func (r *Roster[C]) Count() int {
	return len(r.byID)
}

func (r *Roster[C]) lowestFree() (int, bool) {
	for n := 1; n <= r.capacity; n++ {
		if _, taken := r.byNumber[n]; !taken {
			return n, true
		}
	}
	return 0, false
}

func (r *Roster[C]) drop(e *Entry[C]) {
	delete(r.byID, e.Participant.ID)
	delete(r.byNumber, e.Participant.Number)
	delete(r.byConn, e.Participant.ConnID)
}
