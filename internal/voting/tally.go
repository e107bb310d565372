// Package voting keeps per-round eviction vote tallies.
//
// A voter's repeated vote for the same target counts once, and a cast vote
// stands for the rest of the round even if the voter leaves. Tallies reset
// at the start of every round.
package voting

// DefaultThreshold is the distinct-voter count that triggers eviction
const DefaultThreshold = 4

// Tally maps a target participant id to the set of distinct voters for the current round.
// A Tally is not safe for concurrent use.
type Tally struct {
	round int
	votes map[string]map[string]struct{}
}

// New returns an empty tally for round 0
func New() *Tally {
	return &Tally{votes: make(map[string]map[string]struct{})}
}

// Reset discards every vote and starts round
func (t *Tally) Reset(round int) {
	t.round = round
	t.votes = make(map[string]map[string]struct{})
}

// Round returns the round the tally belongs to
func (t *Tally) Round() int {
	return t.round
}

// Cast records voter against target. It returns the target's distinct voter
// count and whether this call changed it. Self votes are ignored.
func (t *Tally) Cast(voterID, targetID string) (int, bool) {
	if voterID == "" || targetID == "" || voterID == targetID {
		return t.Count(targetID), false
	}

	voters, ok := t.votes[targetID]
	if !ok {
		voters = make(map[string]struct{})
		t.votes[targetID] = voters
	}
	if _, dup := voters[voterID]; dup {
		return len(voters), false
	}
	voters[voterID] = struct{}{}
	return len(voters), true
}

// Count returns the distinct voter count for target
func (t *Tally) Count(targetID string) int {
	return len(t.votes[targetID])
}

// Clear drops the votes against target once it is evicted or departs.
// Ballots the target cast stay counted: votes are never retracted.
func (t *Tally) Clear(targetID string) {
	delete(t.votes, targetID)
}
