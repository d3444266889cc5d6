package scheduler

import "fmt"

// Validate checks the structural invariants of a schedule against a
// snapshot. Eligibility and court windows are only checked for open
// rounds; locked rounds are history and may predate attendance changes.
func Validate(snap Snapshot, schedule *SessionSchedule, allowCourtless bool) error {
	if schedule == nil {
		return ErrScheduleMissing
	}
	rs := newRoster(snap, allowCourtless)
	seenRounds := make(map[int]bool, len(schedule.Rounds))
	for i, plan := range schedule.Rounds {
		if seenRounds[plan.Index] {
			return fmt.Errorf("%w: round %d appears twice", ErrInvariantViolation, plan.Index)
		}
		seenRounds[plan.Index] = true
		if i > 0 && schedule.Rounds[i-1].Index >= plan.Index {
			return fmt.Errorf("%w: rounds out of order at %d", ErrInvariantViolation, plan.Index)
		}

		inRound := make(map[string]bool)
		courts := make(map[string]bool)
		for _, a := range plan.Assignments {
			ids := a.Players()
			if !distinctNonEmpty(ids[:]) {
				return fmt.Errorf("%w: assignment %q needs 4 distinct players", ErrInvariantViolation, a.ID)
			}
			for _, id := range ids {
				if inRound[id] {
					return fmt.Errorf("%w: player %q twice in round %d", ErrInvariantViolation, id, plan.Index)
				}
				inRound[id] = true
			}
			if courts[a.CourtID] {
				return fmt.Errorf("%w: court %q twice in round %d", ErrInvariantViolation, a.CourtID, plan.Index)
			}
			courts[a.CourtID] = true

			if plan.Status() == RoundLocked {
				continue
			}
			court, ok := rs.court(a.CourtID)
			if !ok || !court.Covers(plan.Round) {
				return fmt.Errorf("%w: court %q unavailable in round %d", ErrInvariantViolation, a.CourtID, plan.Index)
			}
			for _, id := range ids {
				if !rs.eligibleFor(id, plan.Round) {
					return fmt.Errorf("%w: player %q not present in round %d", ErrInvariantViolation, id, plan.Index)
				}
			}
		}
	}
	return nil
}
