package scheduler

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// DefaultCandidateLimit caps how many equally-rested players are
// enumerated when picking the last seats of a group.
const DefaultCandidateLimit = 12

// Options configures an Engine.
type Options struct {
	// AllowCourtless schedules sessions without courts on one implicit
	// court spanning the session window instead of failing.
	AllowCourtless bool
	// CandidateLimit bounds the tie-break enumeration. Zero means default.
	CandidateLimit int
}

// Engine builds and edits session schedules. It holds no state between
// calls and is safe for concurrent use.
type Engine struct {
	opts Options
}

// NewEngine creates an Engine.
func NewEngine(opts Options) *Engine {
	if opts.CandidateLimit < 4 {
		opts.CandidateLimit = DefaultCandidateLimit
	}
	return &Engine{opts: opts}
}

// Generate computes a full schedule for the snapshot.
func (e *Engine) Generate(snap Snapshot) (*SessionSchedule, error) {
	if err := validateSession(snap.Session); err != nil {
		return nil, err
	}
	rs := newRoster(snap, e.opts.AllowCourtless)
	rounds := TileRounds(snap.Session)

	if len(rs.order) < 4 {
		return nil, fmt.Errorf("%w: %d attendees, need at least 4", ErrInsufficientPlayers, len(rs.order))
	}
	if !anyRoundPlayable(rs, rounds) {
		return nil, fmt.Errorf("%w: no round has 4 players present for its full length", ErrInsufficientPlayers)
	}
	if len(rs.courts) == 0 {
		return nil, ErrNoCourtsAvailable
	}

	tracker := NewTracker()
	out := &SessionSchedule{SessionID: snap.Session.ID}
	for _, r := range rounds {
		out.Rounds = append(out.Rounds, e.buildRound(rs, r, tracker))
	}
	return out, nil
}

// Regenerate keeps locked rounds exactly as they are and rebuilds every open
// round from the current attendance and courts. The fairness tracker is
// seeded from the locked rounds only.
func (e *Engine) Regenerate(snap Snapshot, existing *SessionSchedule) (*SessionSchedule, error) {
	if existing == nil {
		return nil, ErrScheduleMissing
	}
	if err := validateSession(snap.Session); err != nil {
		return nil, err
	}
	rs := newRoster(snap, e.opts.AllowCourtless)

	locked := make(map[int]RoundPlan)
	for _, r := range existing.Rounds {
		if r.Status() == RoundLocked {
			locked[r.Index] = r
		}
	}
	tracker := SeedTracker(existing.Rounds)

	out := &SessionSchedule{SessionID: existing.SessionID, Version: existing.Version}
	if out.SessionID == "" {
		out.SessionID = snap.Session.ID
	}
	seen := make(map[int]bool)
	for _, r := range TileRounds(snap.Session) {
		seen[r.Index] = true
		if plan, ok := locked[r.Index]; ok {
			out.Rounds = append(out.Rounds, plan.clone())
			continue
		}
		out.Rounds = append(out.Rounds, e.buildRound(rs, r, tracker))
	}
	// Locked rounds outside a shortened window are history and stay.
	for idx, plan := range locked {
		if !seen[idx] {
			out.Rounds = append(out.Rounds, plan.clone())
		}
	}
	slices.SortFunc(out.Rounds, func(a, b RoundPlan) int { return a.Index - b.Index })
	return out, nil
}

func anyRoundPlayable(rs *roster, rounds []Round) bool {
	for _, r := range rounds {
		if len(rs.eligible(r)) >= 4 {
			return true
		}
	}
	return false
}

// buildRound fills one round greedily, court by court.
func (e *Engine) buildRound(rs *roster, round Round, tracker *Tracker) RoundPlan {
	pool := rs.eligible(round)
	courts := rs.courtsFor(round)
	plan := RoundPlan{Round: round}

	groups := min(len(courts), len(pool)/4)
	for i := 0; i < groups; i++ {
		group := e.pickGroup(pool, rs, tracker)
		split := bestSplit(group, rs, tracker)
		a := Assignment{
			ID:         generatedAssignmentID(rs.session.ID, round.Index, courts[i].ID),
			RoundIndex: round.Index,
			CourtID:    courts[i].ID,
			TeamA:      split.teamA,
			TeamB:      split.teamB,
		}
		tracker.Record(a)
		plan.Assignments = append(plan.Assignments, a)
		pool = slices.DeleteFunc(pool, func(id string) bool {
			return slices.Contains(group[:], id)
		})
	}
	plan.Resting = append([]string{}, pool...)
	return plan
}

// generatedAssignmentID is stable for (session, round, court) so that
// regenerating with unchanged input yields identical assignments.
func generatedAssignmentID(sessionID string, roundIndex int, courtID string) string {
	name := fmt.Sprintf("courtside:%s:%d:%s", sessionID, roundIndex, courtID)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
