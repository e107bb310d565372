package session

import (
	"context"

	"github.com/KirkDiggler/sketchroom/internal/canvas"
	"github.com/KirkDiggler/sketchroom/internal/models"
	"github.com/KirkDiggler/sketchroom/internal/phase"
	"github.com/KirkDiggler/sketchroom/internal/protocol"
	"github.com/KirkDiggler/sketchroom/internal/sections"
	"github.com/KirkDiggler/sketchroom/internal/services/messaging"
)

func (r *room) draw(input *DrawInput) (*DrawOutput, error) {
	entry, err := r.participant(input.ConnID)
	if err != nil {
		return nil, err
	}
	sectionID, ok := r.canInteract(entry)
	if !ok {
		return &DrawOutput{}, nil
	}

	if input.PathID != "" && r.canvas.HasActiveStroke(entry.Participant.ID, input.PathID) {
		return r.continueStroke(entry, input.PathID, []models.Point{input.Point})
	}

	stroke := r.canvas.StartStroke(&canvas.StartStrokeInput{
		OwnerID:     entry.Participant.ID,
		OwnerNumber: entry.Participant.Number,
		PathKey:     input.PathID,
		Point:       input.Point,
		Color:       input.Color,
		Width:       input.Width,
		SectionID:   sectionID,
	})
	r.publish(entry.Conn.ID(), protocol.Drawing{
		StrokeID:  stroke.ID,
		PathID:    input.PathID,
		Number:    stroke.OwnerNumber,
		Start:     true,
		Points:    stroke.Points,
		Color:     stroke.Color,
		Width:     stroke.Width,
		SectionID: protocol.NullableSection(stroke.SectionID),
	})
	return &DrawOutput{Applied: true, StrokeID: stroke.ID, Started: true}, nil
}

func (r *room) updateDrawing(input *UpdateDrawingInput) (*DrawOutput, error) {
	entry, err := r.participant(input.ConnID)
	if err != nil {
		return nil, err
	}
	if _, ok := r.canInteract(entry); !ok {
		return &DrawOutput{}, nil
	}
	return r.continueStroke(entry, input.PathID, input.Points)
}

// continueStroke extends the owner's latest stroke; stale continuations are ignored
func (r *room) continueStroke(entry *participant, pathID string, points []models.Point) (*DrawOutput, error) {
	out, ok := r.canvas.ContinueStroke(&canvas.ContinueStrokeInput{
		OwnerID: entry.Participant.ID,
		PathKey: pathID,
		Points:  points,
	})
	if !ok {
		return &DrawOutput{}, nil
	}

	r.publish(entry.Conn.ID(), protocol.Drawing{
		StrokeID: out.StrokeID,
		PathID:   pathID,
		Number:   out.OwnerNumber,
		Points:   out.Points,
	})
	return &DrawOutput{Applied: true, StrokeID: out.StrokeID}, nil
}

func (r *room) addText(input *AddTextInput) (*AddTextOutput, error) {
	entry, err := r.participant(input.ConnID)
	if err != nil {
		return nil, err
	}
	sectionID, ok := r.canInteract(entry)
	if !ok {
		return &AddTextOutput{}, nil
	}

	label := r.canvas.CreateLabel(&canvas.CreateLabelInput{
		OwnerID:     entry.Participant.ID,
		OwnerNumber: entry.Participant.Number,
		Content:     input.Content,
		X:           input.X,
		Y:           input.Y,
		Color:       input.Color,
		Size:        input.Size,
		SectionID:   sectionID,
	})
	r.publish(entry.Conn.ID(), protocol.TextAdded{Label: label})
	return &AddTextOutput{Applied: true, LabelID: label.ID}, nil
}

func (r *room) erase(input *EraseInput) (*EraseOutput, error) {
	entry, err := r.participant(input.ConnID)
	if err != nil {
		return nil, err
	}
	sectionID, ok := r.canInteract(entry)
	if !ok {
		return &EraseOutput{}, nil
	}

	out := r.canvas.Erase(&canvas.EraseInput{
		X:      input.X,
		Y:      input.Y,
		Radius: input.Radius,
		Scope: canvas.EraseScope{
			Restricted: r.machine.Current().IsSections(),
			SectionID:  sectionID,
		},
	})
	if out.Empty() {
		return &EraseOutput{Applied: true}, nil
	}

	r.publish(entry.Conn.ID(), protocol.Erased{
		Number:    entry.Participant.Number,
		StrokeIDs: out.StrokeIDs,
		LabelIDs:  out.LabelIDs,
	})
	return &EraseOutput{Applied: true, StrokeIDs: out.StrokeIDs, LabelIDs: out.LabelIDs}, nil
}

func (r *room) castVote(ctx context.Context, input *CastVoteInput) (*CastVoteOutput, error) {
	voter, err := r.participant(input.ConnID)
	if err != nil {
		return nil, err
	}
	if !r.machine.Current().IsVoting() || !r.ballotOpen {
		return &CastVoteOutput{}, nil
	}

	target, ok := r.roster.ByNumber(input.TargetNumber)
	if !ok || target.Participant.ID == voter.Participant.ID {
		return &CastVoteOutput{}, nil
	}

	votes, _ := r.tally.Cast(voter.Participant.ID, target.Participant.ID)
	r.publish(voter.Conn.ID(), r.voteUpdate(target.Participant.Number, votes))

	if votes < r.svc.cfg.EvictionThreshold {
		return &CastVoteOutput{Counted: true, Votes: votes}, nil
	}
	r.evict(ctx, target, votes)
	return &CastVoteOutput{Counted: true, Votes: votes, Evicted: true}, nil
}

func (r *room) voteUpdate(number, votes int) protocol.VoteUpdate {
	return protocol.VoteUpdate{
		TargetID:  number,
		Votes:     votes,
		Threshold: r.svc.cfg.EvictionThreshold,
		Round:     r.tally.Round(),
	}
}

// evict force-removes a participant the moment it reaches the threshold.
// The removal notice goes out while the target is still a recipient.
func (r *room) evict(ctx context.Context, target *participant, votes int) {
	number := target.Participant.Number
	round := r.tally.Round()
	reason := r.svc.closeReason(ctx, messaging.CloseTypeEvicted)

	r.publish("", protocol.ParticipantRemoved{Number: number, Round: round, Reason: reason})

	r.roster.Remove(target.Participant.ID)
	r.depart(target)
	if err := target.Conn.Close(reason); err != nil {
		r.svc.log.Debug("Failed to close evicted connection", "room", r.id, "number", number, "error", err)
	}

	r.svc.directory.recordEviction(&models.EvictionRecord{
		ID:        r.svc.uuid.NewUUID(),
		RoomID:    r.id,
		Round:     round,
		Number:    number,
		Voters:    votes,
		Timestamp: r.svc.clock.Now(),
	})
	r.svc.log.Info("Participant removed by vote", "room", r.id, "number", number, "round", round, "votes", votes)

	r.promote()
	r.publishSummary()
	r.maybeIdle()
}

func (r *room) createSection(ctx context.Context, input *CreateSectionInput) (*CreateSectionOutput, error) {
	inviter, err := r.participant(input.ConnID)
	if err != nil {
		return nil, err
	}

	invitees := make([]sections.Candidate, 0, len(input.InviteeNumbers))
	for _, number := range input.InviteeNumbers {
		entry, ok := r.roster.ByNumber(number)
		if !ok || !entry.Conn.Open() {
			continue
		}
		invitees = append(invitees, sections.Candidate{
			ParticipantID: entry.Participant.ID,
			Number:        entry.Participant.Number,
		})
	}

	section, err := r.sections.Create(&sections.CreateInput{
		Inviter: sections.Candidate{
			ParticipantID: inviter.Participant.ID,
			Number:        inviter.Participant.Number,
		},
		RequestedCount: len(input.InviteeNumbers),
		Invitees:       invitees,
	})
	if err != nil {
		r.svc.sendError(ctx, inviter.Conn, errorTypeOf(err))
		return nil, err
	}

	numbers := make([]int, len(section.Members))
	for i, m := range section.Members {
		numbers[i] = m.Number
	}
	for _, m := range section.Members[1:] {
		entry, ok := r.roster.Get(m.ParticipantID)
		if !ok {
			continue
		}
		if err := r.svc.dispatcher.Send(entry.Conn, protocol.SectionInvitation{
			SectionID: section.ID,
			Inviter:   inviter.Participant.Number,
			Members:   numbers,
		}); err != nil {
			r.svc.log.Debug("Failed to send invitation", "room", r.id, "number", m.Number, "error", err)
		}
	}
	r.publish(inviter.Conn.ID(), protocol.SectionCreated{Section: section})

	if ttl := r.svc.cfg.InvitationTTL; ttl > 0 {
		sectionID := section.ID
		r.invitations[sectionID] = r.svc.clock.AfterFunc(ttl, func() {
			r.expireInvitation(sectionID)
		})
	}

	r.svc.log.Info("Section created", "room", r.id, "section", section.ID, "members", numbers)
	return &CreateSectionOutput{Section: section}, nil
}

func (r *room) acceptInvitation(ctx context.Context, input *AcceptInvitationInput) (*AcceptInvitationOutput, error) {
	entry, err := r.participant(input.ConnID)
	if err != nil {
		return nil, err
	}

	section, justLocked, err := r.sections.Accept(entry.Participant.ID, input.SectionID)
	if err != nil {
		r.svc.sendError(ctx, entry.Conn, errorTypeOf(err))
		return nil, err
	}
	if justLocked {
		r.stopInvitation(section.ID)
		r.svc.log.Info("Section locked", "room", r.id, "section", section.ID)
	}

	r.publishTo(r.memberConns(section), protocol.SectionJoined{
		SectionID: section.ID,
		Number:    entry.Participant.Number,
		Locked:    section.Locked,
		Members:   section.Members,
	})
	return &AcceptInvitationOutput{Section: section, JustLocked: justLocked}, nil
}

// expireInvitation dissolves a section nobody finished accepting
func (r *room) expireInvitation(sectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	delete(r.invitations, sectionID)
	if _, ok := r.sections.Expire(sectionID); !ok {
		return
	}
	r.publish("", protocol.SectionDissolved{SectionID: sectionID})
	r.svc.log.Info("Section invitation expired", "room", r.id, "section", sectionID)
}

func (r *room) stopInvitation(sectionID string) {
	if t, ok := r.invitations[sectionID]; ok {
		t.Stop()
		delete(r.invitations, sectionID)
	}
}

func (r *room) startRound(round int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	if err := r.machine.Advance(phase.Voting(round)); err != nil {
		r.svc.log.Error("Failed to start voting round", "room", r.id, "round", round, "error", err)
		return
	}
	r.tally.Reset(round)
	r.ballotOpen = true

	r.publish("", protocol.VotingStarted{
		Round:   round,
		Seconds: int(r.svc.cfg.Timing.RoundLength.Seconds()),
	})
	r.publishSummary()
	r.svc.log.Info("Voting round started", "room", r.id, "round", round)
}

// endRound closes the ballot. After the last round the phase stays on
// Voting until the settle delay elapses and sections begin.
func (r *room) endRound(round int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	r.ballotOpen = false
	if round < phase.Rounds {
		if err := r.machine.Advance(phase.Open(round)); err != nil {
			r.svc.log.Error("Failed to end voting round", "room", r.id, "round", round, "error", err)
			return
		}
	}

	r.publish("", protocol.VotingEnded{Round: round})
	r.publishSummary()
	r.svc.log.Info("Voting round ended", "room", r.id, "round", round)
}

func (r *room) enterSections() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	if err := r.machine.Advance(phase.Sections()); err != nil {
		r.svc.log.Error("Failed to enter sections", "room", r.id, "error", err)
		return
	}

	r.publish("", protocol.SectionsPhase{Numbers: r.roster.Numbers()})
	r.publishSummary()
	r.svc.log.Info("Sections phase started", "room", r.id, "remaining", r.roster.Count())
}
