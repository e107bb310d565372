package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/KirkDiggler/sketchroom/internal/broadcast"
	"github.com/KirkDiggler/sketchroom/internal/common/clock"
	"github.com/KirkDiggler/sketchroom/internal/common/uuid"
	"github.com/KirkDiggler/sketchroom/internal/phase"
	evictionRepo "github.com/KirkDiggler/sketchroom/internal/repositories/eviction"
	roomRepo "github.com/KirkDiggler/sketchroom/internal/repositories/room"
	"github.com/KirkDiggler/sketchroom/internal/roster"
	"github.com/KirkDiggler/sketchroom/internal/sections"
	"github.com/KirkDiggler/sketchroom/internal/services/messaging"
	"github.com/KirkDiggler/sketchroom/internal/voting"
)

// service implements the Service interface.
//
// Lock order is service.mu before room.mu, never the reverse.
type service struct {
	cfg        Config
	log        *slog.Logger
	clock      clock.Clock
	uuid       uuid.UUID
	dispatcher *broadcast.Dispatcher
	messaging  messaging.Service
	rooms      roomRepo.Repository
	evictions  evictionRepo.Repository
	directory  *directory

	mu       sync.Mutex
	byID     map[string]*room
	byConn   map[string]*room
	shutdown bool
}

// New creates a new session service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Logger == nil {
		return nil, ErrNilLogger
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}
	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}
	if cfg.Dispatcher == nil {
		return nil, ErrNilDispatcher
	}
	if cfg.Messaging == nil {
		return nil, ErrNilMessaging
	}
	if cfg.RoomRepo == nil {
		return nil, ErrNilRoomRepo
	}
	if cfg.EvictionRepo == nil {
		return nil, ErrNilEvictionRepo
	}

	c := *cfg
	if c.Capacity <= 0 {
		c.Capacity = roster.DefaultCapacity
	}
	if c.SectionCap <= 0 {
		c.SectionCap = sections.DefaultMaxMembers
	}
	if c.EvictionThreshold <= 0 {
		c.EvictionThreshold = voting.DefaultThreshold
	}
	if len(c.Timing.RoundStarts) == 0 {
		c.Timing = phase.DefaultTiming()
	}
	if err := c.Timing.Validate(); err != nil {
		return nil, err
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.RepoTimeout <= 0 {
		c.RepoTimeout = DefaultRepoTimeout
	}
	if c.DefaultRoomID == "" {
		c.DefaultRoomID = DefaultRoomID
	}

	return &service{
		cfg:        c,
		log:        c.Logger,
		clock:      c.Clock,
		uuid:       c.UUIDGenerator,
		dispatcher: c.Dispatcher,
		messaging:  c.Messaging,
		rooms:      c.RoomRepo,
		evictions:  c.EvictionRepo,
		directory:  newDirectory(c.Logger, c.RoomRepo, c.EvictionRepo, c.RepoTimeout),
		byID:       make(map[string]*room),
		byConn:     make(map[string]*room),
	}, nil
}

// Join admits a connection to a room. The room's lock is taken while the
// registry lock is held, so a room can never be torn down between lookup
// and admission.
func (s *service) Join(ctx context.Context, input *JoinInput) (*JoinOutput, error) {
	if input == nil || input.Conn == nil {
		return nil, ErrNilConn
	}
	conn := input.Conn

	s.mu.Lock()
	defer s.mu.Unlock()

	// a repeated join changes nothing, whatever flags it carries
	if r, ok := s.byConn[conn.ID()]; ok {
		return &JoinOutput{RoomID: r.id, Duplicate: true}, nil
	}
	if !input.AgeVerified {
		s.reject(ctx, conn, messaging.ErrorTypeAgeNotVerified, messaging.CloseTypeAgeNotVerified)
		return nil, ErrAgeNotVerified
	}
	if s.shutdown {
		return nil, ErrShuttingDown
	}

	roomID := input.RoomID
	if roomID == "" {
		roomID = s.cfg.DefaultRoomID
	}

	r, ok := s.byID[roomID]
	if !ok {
		var err error
		r, err = newRoom(s, roomID)
		if err != nil {
			return nil, fmt.Errorf("failed to create room %s: %w", roomID, err)
		}
		s.byID[roomID] = r
		s.log.Info("Room created", "room", roomID)
	}

	r.mu.Lock()
	out, err := r.admit(ctx, conn)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.byConn[conn.ID()] = r
	return out, nil
}

// Leave removes a connection from its room
func (s *service) Leave(ctx context.Context, input *LeaveInput) (*LeaveOutput, error) {
	s.mu.Lock()
	r, ok := s.byConn[input.ConnID]
	delete(s.byConn, input.ConnID)
	s.mu.Unlock()
	if !ok {
		return &LeaveOutput{}, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return &LeaveOutput{Number: r.leave(input.ConnID)}, nil
}

// Draw starts or continues a stroke
func (s *service) Draw(ctx context.Context, input *DrawInput) (*DrawOutput, error) {
	r, err := s.roomOf(input.ConnID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draw(input)
}

// UpdateDrawing extends the caller's current stroke
func (s *service) UpdateDrawing(ctx context.Context, input *UpdateDrawingInput) (*DrawOutput, error) {
	r, err := s.roomOf(input.ConnID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateDrawing(input)
}

// AddText places a label
func (s *service) AddText(ctx context.Context, input *AddTextInput) (*AddTextOutput, error) {
	r, err := s.roomOf(input.ConnID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addText(input)
}

// Erase removes content around a point
func (s *service) Erase(ctx context.Context, input *EraseInput) (*EraseOutput, error) {
	r, err := s.roomOf(input.ConnID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.erase(input)
}

// CastVote records a removal vote
func (s *service) CastVote(ctx context.Context, input *CastVoteInput) (*CastVoteOutput, error) {
	r, err := s.roomOf(input.ConnID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.castVote(ctx, input)
}

// CreateSection forms a section with the caller as inviter
func (s *service) CreateSection(ctx context.Context, input *CreateSectionInput) (*CreateSectionOutput, error) {
	r, err := s.roomOf(input.ConnID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createSection(ctx, input)
}

// AcceptInvitation consents to a section
func (s *service) AcceptInvitation(ctx context.Context, input *AcceptInvitationInput) (*AcceptInvitationOutput, error) {
	r, err := s.roomOf(input.ConnID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.acceptInvitation(ctx, input)
}

// ListRooms reads the room directory
func (s *service) ListRooms(ctx context.Context, input *ListRoomsInput) (*ListRoomsOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RepoTimeout)
	defer cancel()

	out, err := s.rooms.GetActiveRooms(ctx, &roomRepo.GetActiveRoomsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return &ListRoomsOutput{Rooms: out.Rooms}, nil
}

// ListEvictions reads a room's eviction ledger
func (s *service) ListEvictions(ctx context.Context, input *ListEvictionsInput) (*ListEvictionsOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RepoTimeout)
	defer cancel()

	out, err := s.evictions.GetEvictionsForRoom(ctx, &evictionRepo.GetEvictionsForRoomInput{RoomID: input.RoomID})
	if err != nil {
		return nil, fmt.Errorf("failed to list evictions: %w", err)
	}
	return &ListEvictionsOutput{Records: out.Records}, nil
}

// Shutdown closes every room and its connections, then drains the directory
func (s *service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return nil
	}
	s.shutdown = true

	reason := s.closeReason(ctx, messaging.CloseTypeShutdown)
	for id, r := range s.byID {
		r.mu.Lock()
		r.shutdown(reason)
		r.mu.Unlock()
		delete(s.byID, id)
	}
	s.byConn = make(map[string]*room)
	s.mu.Unlock()

	if err := s.directory.close(ctx); err != nil {
		return fmt.Errorf("failed to flush room directory: %w", err)
	}
	return nil
}

func (s *service) roomOf(connID string) (*room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byConn[connID]
	if !ok {
		return nil, ErrNotJoined
	}
	return r, nil
}

// reap tears an idle room down if it is still empty
func (s *service) reap(r *room) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || !r.empty() {
		return
	}

	r.close()
	if s.byID[r.id] == r {
		delete(s.byID, r.id)
	}
	for connID, owner := range s.byConn {
		if owner == r {
			delete(s.byConn, connID)
		}
	}
	s.directory.deleteRoom(r.id)
	s.log.Info("Room torn down", "room", r.id)
}

// reject tells a connection why it was refused and closes it
func (s *service) reject(ctx context.Context, conn broadcast.Conn, errType messaging.ErrorType, closeType messaging.CloseType) {
	s.sendError(ctx, conn, errType)
	if err := conn.Close(s.closeReason(ctx, closeType)); err != nil {
		s.log.Debug("Failed to close rejected connection", "conn", conn.ID(), "error", err)
	}
}

func (s *service) sendError(ctx context.Context, conn broadcast.Conn, errType messaging.ErrorType) {
	msg, err := s.messaging.GetErrorMessage(ctx, &messaging.GetErrorMessageInput{
		ErrorType: errType,
		Limit:     s.cfg.SectionCap,
	})
	if err != nil {
		s.log.Error("Failed to build error message", "type", errType, "error", err)
		return
	}
	if err := s.dispatcher.Send(conn, errorEvent(msg.Reason)); err != nil {
		s.log.Debug("Failed to send error event", "conn", conn.ID(), "error", err)
	}
}

func (s *service) closeReason(ctx context.Context, closeType messaging.CloseType) string {
	out, err := s.messaging.GetCloseReason(ctx, &messaging.GetCloseReasonInput{CloseType: closeType})
	if err != nil {
		return string(closeType)
	}
	return out.Reason
}

// errorTypeOf maps a coordinator error to the text category shown to clients
func errorTypeOf(err error) messaging.ErrorType {
	switch {
	case errors.Is(err, roster.ErrRoomFull):
		return messaging.ErrorTypeRoomFull
	case errors.Is(err, ErrAgeNotVerified):
		return messaging.ErrorTypeAgeNotVerified
	case errors.Is(err, sections.ErrSectionTooLarge):
		return messaging.ErrorTypeSectionTooLarge
	case errors.Is(err, sections.ErrAlreadyInSection):
		return messaging.ErrorTypeAlreadyInSection
	case errors.Is(err, sections.ErrNoEligibleInvitees):
		return messaging.ErrorTypeNoEligibleInvitee
	case errors.Is(err, sections.ErrSectionNotFound):
		return messaging.ErrorTypeSectionNotFound
	case errors.Is(err, sections.ErrNotInvited):
		return messaging.ErrorTypeNotInvited
	default:
		return messaging.ErrorTypeUnknown
	}
}
