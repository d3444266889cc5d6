package scheduler

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// NextAvailableRound asks InsertManualMatch to pick the first round that can
// host the match.
const NextAvailableRound = -1

// ManualMatch describes a hand-picked match.
type ManualMatch struct {
	RoundIndex int
	TeamA      [2]string
	TeamB      [2]string
	CourtID    string
}

// Swap replaces one player of an assignment.
type Swap struct {
	RoundIndex   int
	AssignmentID string
	PlayerOut    string
	PlayerIn     string
}

// InsertManualMatch adds a manual assignment, which locks its round.
func (e *Engine) InsertManualMatch(snap Snapshot, schedule *SessionSchedule, m ManualMatch) (*SessionSchedule, error) {
	if schedule == nil {
		return nil, ErrScheduleMissing
	}
	ids := []string{m.TeamA[0], m.TeamA[1], m.TeamB[0], m.TeamB[1]}
	if !distinctNonEmpty(ids) {
		return nil, fmt.Errorf("%w: need 4 distinct players", ErrInvalidRoster)
	}
	rs := newRoster(snap, e.opts.AllowCourtless)
	if _, ok := rs.court(m.CourtID); !ok {
		return nil, fmt.Errorf("%w: unknown court %q", ErrCourtUnavailable, m.CourtID)
	}

	pos := -1
	if m.RoundIndex == NextAvailableRound {
		for i, plan := range schedule.Rounds {
			if checkManual(rs, plan, m, ids) == nil {
				pos = i
				break
			}
		}
		if pos < 0 {
			return nil, ErrNoAvailableRound
		}
	} else {
		p, ok := schedule.roundPos(m.RoundIndex)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrRoundNotFound, m.RoundIndex)
		}
		if err := checkManual(rs, schedule.Rounds[p], m, ids); err != nil {
			return nil, err
		}
		pos = p
	}

	out := schedule.Clone()
	plan := &out.Rounds[pos]
	plan.Assignments = append(plan.Assignments, Assignment{
		ID:         uuid.NewString(),
		RoundIndex: plan.Index,
		CourtID:    m.CourtID,
		TeamA:      m.TeamA,
		TeamB:      m.TeamB,
		Manual:     true,
		Locked:     true,
	})
	rs.sortAssignments(plan)
	plan.Resting = rs.resting(*plan)
	return out, nil
}

func checkManual(rs *roster, plan RoundPlan, m ManualMatch, ids []string) error {
	court, _ := rs.court(m.CourtID)
	if !court.Covers(plan.Round) {
		return fmt.Errorf("%w: court %q in round %d", ErrCourtUnavailable, m.CourtID, plan.Index)
	}
	for _, id := range ids {
		if !rs.eligibleFor(id, plan.Round) {
			return fmt.Errorf("%w: player %q not present for round %d", ErrPlayerUnavailable, id, plan.Index)
		}
	}
	assigned := plan.Assigned()
	for _, id := range ids {
		if assigned[id] {
			return fmt.Errorf("%w: player %q in round %d", ErrPlayerConflict, id, plan.Index)
		}
	}
	for _, a := range plan.Assignments {
		if a.CourtID == m.CourtID {
			return fmt.Errorf("%w: court %q in round %d", ErrCourtConflict, m.CourtID, plan.Index)
		}
	}
	return nil
}

// SwapPlayer replaces PlayerOut with PlayerIn on the same team side and
// marks the assignment manual so regeneration keeps it.
func (e *Engine) SwapPlayer(snap Snapshot, schedule *SessionSchedule, s Swap) (*SessionSchedule, error) {
	if schedule == nil {
		return nil, ErrScheduleMissing
	}
	rpos, ok := schedule.roundPos(s.RoundIndex)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRoundNotFound, s.RoundIndex)
	}
	plan := schedule.Rounds[rpos]
	apos := slices.IndexFunc(plan.Assignments, func(a Assignment) bool { return a.ID == s.AssignmentID })
	if apos < 0 {
		return nil, fmt.Errorf("%w: %q in round %d", ErrAssignmentNotFound, s.AssignmentID, s.RoundIndex)
	}
	target := plan.Assignments[apos]
	if target.Score != nil {
		return nil, fmt.Errorf("%w: %q", ErrAssignmentScored, s.AssignmentID)
	}
	if s.PlayerOut == "" || !target.Has(s.PlayerOut) {
		return nil, fmt.Errorf("%w: %q", ErrPlayerNotInAssignment, s.PlayerOut)
	}

	rs := newRoster(snap, e.opts.AllowCourtless)
	if s.PlayerIn == "" || s.PlayerIn == s.PlayerOut {
		return nil, fmt.Errorf("%w: replacement must be a different player", ErrPlayerUnavailable)
	}
	if plan.Assigned()[s.PlayerIn] {
		return nil, fmt.Errorf("%w: %q already plays in round %d", ErrPlayerUnavailable, s.PlayerIn, plan.Index)
	}
	if !rs.eligibleFor(s.PlayerIn, plan.Round) {
		return nil, fmt.Errorf("%w: %q not present for round %d", ErrPlayerUnavailable, s.PlayerIn, plan.Index)
	}

	out := schedule.Clone()
	edited := &out.Rounds[rpos].Assignments[apos]
	for i := range edited.TeamA {
		if edited.TeamA[i] == s.PlayerOut {
			edited.TeamA[i] = s.PlayerIn
		}
		if edited.TeamB[i] == s.PlayerOut {
			edited.TeamB[i] = s.PlayerIn
		}
	}
	edited.Manual = true
	edited.Locked = true
	out.Rounds[rpos].Resting = rs.resting(out.Rounds[rpos])
	return out, nil
}

// RecordScore stores a result and locks the containing round.
func (e *Engine) RecordScore(schedule *SessionSchedule, assignmentID string, teamA, teamB int) (*SessionSchedule, error) {
	if schedule == nil {
		return nil, ErrScheduleMissing
	}
	if teamA < 0 || teamB < 0 {
		return nil, fmt.Errorf("%w: scores must be non-negative, got %d-%d", ErrInvalidScore, teamA, teamB)
	}
	ri, ai, ok := schedule.findAssignment(assignmentID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAssignmentNotFound, assignmentID)
	}
	out := schedule.Clone()
	a := &out.Rounds[ri].Assignments[ai]
	a.Score = &Score{TeamA: teamA, TeamB: teamB}
	a.Locked = true
	return out, nil
}

// DeleteAssignment removes one assignment. The round stays locked only if
// another scored or manual assignment remains in it. When the round reopens,
// generated assignments whose players left or whose court closed while it
// was locked are dropped too.
func (e *Engine) DeleteAssignment(snap Snapshot, schedule *SessionSchedule, assignmentID string) (*SessionSchedule, error) {
	if schedule == nil {
		return nil, ErrScheduleMissing
	}
	ri, ai, ok := schedule.findAssignment(assignmentID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAssignmentNotFound, assignmentID)
	}
	rs := newRoster(snap, e.opts.AllowCourtless)
	out := schedule.Clone()
	plan := &out.Rounds[ri]
	plan.Assignments = slices.Delete(plan.Assignments, ai, ai+1)
	if plan.Status() == RoundOpen {
		rs.dropStale(plan)
	}
	plan.Resting = rs.resting(*plan)
	return out, nil
}

// DeleteRound clears every assignment of a round, reopening it.
func (e *Engine) DeleteRound(snap Snapshot, schedule *SessionSchedule, roundIndex int) (*SessionSchedule, error) {
	if schedule == nil {
		return nil, ErrScheduleMissing
	}
	pos, ok := schedule.roundPos(roundIndex)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRoundNotFound, roundIndex)
	}
	rs := newRoster(snap, e.opts.AllowCourtless)
	out := schedule.Clone()
	plan := &out.Rounds[pos]
	plan.Assignments = nil
	plan.Resting = rs.resting(*plan)
	return out, nil
}

func distinctNonEmpty(ids []string) bool {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}
