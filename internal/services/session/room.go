package session

import (
	"context"
	"sync"
	"time"

	"github.com/KirkDiggler/sketchroom/internal/broadcast"
	"github.com/KirkDiggler/sketchroom/internal/canvas"
	"github.com/KirkDiggler/sketchroom/internal/common/clock"
	"github.com/KirkDiggler/sketchroom/internal/models"
	"github.com/KirkDiggler/sketchroom/internal/phase"
	"github.com/KirkDiggler/sketchroom/internal/protocol"
	"github.com/KirkDiggler/sketchroom/internal/roster"
	"github.com/KirkDiggler/sketchroom/internal/sections"
	"github.com/KirkDiggler/sketchroom/internal/services/messaging"
	"github.com/KirkDiggler/sketchroom/internal/voting"
	"github.com/samber/lo"
)

type participant = roster.Entry[broadcast.Conn]

// room coordinates one session. Every field below mu is guarded by it, and
// every timer callback re-checks closed after taking it.
type room struct {
	id  string
	svc *service

	mu          sync.Mutex
	closed      bool
	roster      *roster.Roster[broadcast.Conn]
	canvas      *canvas.Store
	tally       *voting.Tally
	sections    *sections.Manager
	machine     *phase.Machine
	schedule    *phase.Schedule
	ballotOpen  bool
	startedAt   time.Time
	waiting     []broadcast.Conn
	teardown    clock.Timer
	invitations map[string]clock.Timer
}

func newRoom(svc *service, id string) (*room, error) {
	members, err := roster.New[broadcast.Conn](svc.cfg.Capacity)
	if err != nil {
		return nil, err
	}
	store, err := canvas.New(&canvas.Config{UUIDGenerator: svc.uuid})
	if err != nil {
		return nil, err
	}
	secs, err := sections.New(&sections.Config{UUIDGenerator: svc.uuid, MaxMembers: svc.cfg.SectionCap})
	if err != nil {
		return nil, err
	}

	return &room{
		id:          id,
		svc:         svc,
		roster:      members,
		canvas:      store,
		tally:       voting.New(),
		sections:    secs,
		machine:     phase.NewMachine(),
		invitations: make(map[string]clock.Timer),
	}, nil
}

func errorEvent(reason string) protocol.Error {
	return protocol.Error{Reason: reason}
}

// admit runs the whole check-then-allocate sequence under the room lock
func (r *room) admit(ctx context.Context, conn broadcast.Conn) (*JoinOutput, error) {
	r.sweep()

	entry, err := r.roster.Admit(r.svc.uuid.NewUUID(), conn)
	if err == roster.ErrRoomFull && r.svc.cfg.QueueWhenFull {
		r.waiting = append(r.waiting, conn)
		position := len(r.waiting)
		if err := r.svc.dispatcher.Send(conn, protocol.Waiting{Position: position}); err != nil {
			r.svc.log.Debug("Failed to send waiting position", "room", r.id, "conn", conn.ID(), "error", err)
		}
		r.publishSummary()
		r.svc.log.Info("Connection queued", "room", r.id, "position", position)
		return &JoinOutput{RoomID: r.id, Waiting: true, Position: position}, nil
	}
	if err != nil {
		if err == roster.ErrRoomFull {
			r.svc.reject(ctx, conn, messaging.ErrorTypeRoomFull, messaging.CloseTypeRoomFull)
			r.svc.log.Info("Join rejected, room full", "room", r.id)
		}
		r.maybeIdle()
		return nil, err
	}

	r.onAdmitted(entry)
	return &JoinOutput{RoomID: r.id, Number: entry.Participant.Number}, nil
}

func (r *room) onAdmitted(entry *participant) {
	if r.teardown != nil {
		r.teardown.Stop()
		r.teardown = nil
	}
	if r.schedule == nil {
		r.startedAt = r.svc.clock.Now()
		r.schedule = phase.Arm(r.svc.clock, r.startedAt, r.svc.cfg.Timing, phase.Hooks{
			StartRound:    r.startRound,
			EndRound:      r.endRound,
			EnterSections: r.enterSections,
		})
	}

	strokes, labels := r.canvas.Snapshot()
	current := r.machine.Current()
	snapshot := protocol.Joined{
		Number:       entry.Participant.Number,
		Participants: r.roster.Numbers(),
		Strokes:      strokes,
		Labels:       labels,
		Sections:     r.sections.List(),
		Phase:        current.Kind,
		Round:        current.Round,
	}
	if err := r.svc.dispatcher.Send(entry.Conn, snapshot); err != nil {
		r.svc.log.Warn("Failed to send snapshot", "room", r.id, "number", entry.Participant.Number, "error", err)
	}
	r.publish(entry.Conn.ID(), protocol.ParticipantJoined{Number: entry.Participant.Number})
	r.publishSummary()

	r.svc.log.Info("Participant joined", "room", r.id, "number", entry.Participant.Number, "active", r.roster.Count())
}

// sweep drops participants whose connections died without a leave
func (r *room) sweep() {
	for _, dead := range r.roster.Sweep() {
		r.depart(dead)
		r.publish("", protocol.ParticipantLeft{Number: dead.Participant.Number})
		r.svc.log.Info("Swept dead connection", "room", r.id, "number", dead.Participant.Number)
	}
}

// leave handles a disconnect and returns the freed number, if any
func (r *room) leave(connID string) int {
	if r.closed {
		return 0
	}

	entry, ok := r.roster.ByConn(connID)
	if !ok {
		r.dequeue(connID)
		r.maybeIdle()
		return 0
	}

	r.roster.Remove(entry.Participant.ID)
	r.depart(entry)
	r.publish("", protocol.ParticipantLeft{Number: entry.Participant.Number})
	r.svc.log.Info("Participant left", "room", r.id, "number", entry.Participant.Number)

	r.promote()
	r.publishSummary()
	r.maybeIdle()
	return entry.Participant.Number
}

// depart strips an already-removed participant from every other subsystem
func (r *room) depart(entry *participant) {
	pid := entry.Participant.ID
	r.canvas.Forget(pid)
	r.tally.Clear(pid)

	out, ok := r.sections.RemoveMember(pid)
	if !ok {
		return
	}
	if out.Dissolved {
		r.stopInvitation(out.Section.ID)
		r.publish("", protocol.SectionDissolved{SectionID: out.Section.ID})
		return
	}
	if out.JustLocked {
		r.stopInvitation(out.Section.ID)
		r.svc.log.Info("Section locked", "room", r.id, "section", out.Section.ID)
	}
	r.publishTo(r.memberConns(out.Section), protocol.SectionLeft{
		SectionID: out.Section.ID,
		Number:    entry.Participant.Number,
		Locked:    out.Section.Locked,
		Members:   out.Section.Members,
	})
}

// promote admits queued connections while seats are free
func (r *room) promote() {
	promoted := false
	for len(r.waiting) > 0 && r.roster.Count() < r.roster.Capacity() {
		conn := r.waiting[0]
		r.waiting = r.waiting[1:]
		if !conn.Open() {
			continue
		}

		entry, err := r.roster.Admit(r.svc.uuid.NewUUID(), conn)
		if err != nil {
			r.svc.log.Error("Failed to promote queued connection", "room", r.id, "conn", conn.ID(), "error", err)
			r.waiting = append([]broadcast.Conn{conn}, r.waiting...)
			break
		}
		promoted = true
		r.onAdmitted(entry)
	}
	if promoted {
		r.renumberQueue()
	}
}

func (r *room) dequeue(connID string) {
	before := len(r.waiting)
	r.waiting = lo.Reject(r.waiting, func(c broadcast.Conn, _ int) bool {
		return c.ID() == connID
	})
	if len(r.waiting) != before {
		r.renumberQueue()
		r.publishSummary()
	}
}

func (r *room) renumberQueue() {
	for i, conn := range r.waiting {
		if err := r.svc.dispatcher.Send(conn, protocol.Waiting{Position: i + 1}); err != nil {
			r.svc.log.Debug("Failed to send waiting position", "room", r.id, "conn", conn.ID(), "error", err)
		}
	}
}

func (r *room) empty() bool {
	return r.roster.Count() == 0 && len(r.waiting) == 0
}

// maybeIdle arms the teardown timer once the room has nobody left
func (r *room) maybeIdle() {
	if !r.empty() || r.teardown != nil || r.closed {
		return
	}
	r.teardown = r.svc.clock.AfterFunc(r.svc.cfg.IdleTimeout, func() {
		r.svc.reap(r)
	})
}

// close cancels every pending timer. Callers hold mu.
func (r *room) close() {
	r.closed = true
	if r.schedule != nil {
		r.schedule.Stop()
	}
	if r.teardown != nil {
		r.teardown.Stop()
		r.teardown = nil
	}
	for id := range r.invitations {
		r.stopInvitation(id)
	}
}

// shutdown closes the room and every connection in it
func (r *room) shutdown(reason string) {
	if r.closed {
		return
	}
	r.close()
	for _, conn := range append(r.roster.Conns(), r.waiting...) {
		if err := conn.Close(reason); err != nil {
			r.svc.log.Debug("Failed to close connection", "room", r.id, "conn", conn.ID(), "error", err)
		}
	}
	r.svc.directory.deleteRoom(r.id)
}

// canInteract gates draw, text and erase. It returns the section tag new
// content gets, empty outside a locked section.
func (r *room) canInteract(entry *participant) (string, bool) {
	current := r.machine.Current()
	switch {
	case current.IsOpen():
		return "", true
	case current.IsSections():
		sectionID := r.sections.LockedSectionOf(entry.Participant.ID)
		return sectionID, sectionID != ""
	default:
		return "", false
	}
}

func (r *room) participant(connID string) (*participant, error) {
	if r.closed {
		return nil, ErrNotJoined
	}
	entry, ok := r.roster.ByConn(connID)
	if !ok {
		return nil, ErrNotJoined
	}
	return entry, nil
}

func (r *room) publish(originID string, event protocol.Event) {
	r.svc.dispatcher.Publish(r.roster.Conns(), originID, event)
}

func (r *room) publishTo(conns []broadcast.Conn, event protocol.Event) {
	r.svc.dispatcher.Broadcast(conns, event, "")
}

func (r *room) memberConns(section *models.Section) []broadcast.Conn {
	conns := make([]broadcast.Conn, 0, len(section.Members))
	for _, m := range section.Members {
		if entry, ok := r.roster.Get(m.ParticipantID); ok {
			conns = append(conns, entry.Conn)
		}
	}
	return conns
}

func (r *room) summary() *models.RoomSummary {
	return &models.RoomSummary{
		ID:           r.id,
		Phase:        r.machine.Current(),
		Participants: r.roster.Count(),
		Waiting:      len(r.waiting),
		StartedAt:    r.startedAt,
		UpdatedAt:    r.svc.clock.Now(),
	}
}

func (r *room) publishSummary() {
	r.svc.directory.saveRoom(r.summary())
}
