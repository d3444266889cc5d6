package scheduler

import (
	"fmt"
	"slices"
)

// VirtualCourtID identifies the implicit court used for courtless sessions.
const VirtualCourtID = "virtual"

// DefaultRating is used for players without a rating.
const DefaultRating = 0.5

// TileRounds splits the session window into full-length rounds. A trailing
// slice shorter than the round length is dropped.
func TileRounds(s Session) []Round {
	length := s.RoundLength()
	if length <= 0 || !s.Start.Before(s.End) {
		return nil
	}
	var rounds []Round
	for start, i := s.Start, 0; !start.Add(length).After(s.End); i++ {
		rounds = append(rounds, Round{Index: i, Start: start, End: start.Add(length)})
		start = start.Add(length)
	}
	return rounds
}

// NewSchedule returns a schedule with every round tiled and no assignments.
func NewSchedule(s Session) *SessionSchedule {
	out := &SessionSchedule{SessionID: s.ID}
	for _, r := range TileRounds(s) {
		out.Rounds = append(out.Rounds, RoundPlan{Round: r})
	}
	return out
}

func validateSession(s Session) error {
	if !s.Start.Before(s.End) {
		return fmt.Errorf("%w: start %s is not before end %s", ErrInvalidSession, s.Start, s.End)
	}
	if s.RoundMinutes <= 0 {
		return fmt.Errorf("%w: round minutes must be positive, got %d", ErrInvalidSession, s.RoundMinutes)
	}
	return nil
}

// roster indexes a snapshot for per-round lookups.
type roster struct {
	session    Session
	ratings    map[string]float64
	attendance map[string]Attendance
	order      []string
	courts     []Court
	courtPos   map[string]int
}

func newRoster(snap Snapshot, allowCourtless bool) *roster {
	r := &roster{
		session:    snap.Session,
		ratings:    make(map[string]float64, len(snap.Players)),
		attendance: make(map[string]Attendance, len(snap.Attendance)),
		courtPos:   make(map[string]int, len(snap.Courts)),
	}
	inactive := make(map[string]bool)
	for _, p := range snap.Players {
		r.ratings[p.ID] = p.Rating
		if !p.Active {
			inactive[p.ID] = true
		}
	}
	for _, a := range snap.Attendance {
		if a.PlayerID == "" || inactive[a.PlayerID] {
			continue
		}
		r.attendance[a.PlayerID] = a
	}
	for id := range r.attendance {
		r.order = append(r.order, id)
	}
	slices.Sort(r.order)

	r.courts = slices.Clone(snap.Courts)
	if len(r.courts) == 0 && allowCourtless {
		r.courts = []Court{{
			ID:    VirtualCourtID,
			Name:  "Court",
			Start: snap.Session.Start,
			End:   snap.Session.End,
		}}
	}
	for i, c := range r.courts {
		r.courtPos[c.ID] = i
	}
	return r
}

func (r *roster) rating(id string) float64 {
	if v, ok := r.ratings[id]; ok {
		return v
	}
	return DefaultRating
}

func (r *roster) eligibleFor(id string, round Round) bool {
	a, ok := r.attendance[id]
	return ok && a.Covers(round)
}

// eligible returns attendees covering the round in id order.
func (r *roster) eligible(round Round) []string {
	var out []string
	for _, id := range r.order {
		if r.attendance[id].Covers(round) {
			out = append(out, id)
		}
	}
	return out
}

// courtsFor returns available courts in creation order.
func (r *roster) courtsFor(round Round) []Court {
	var out []Court
	for _, c := range r.courts {
		if c.Covers(round) {
			out = append(out, c)
		}
	}
	return out
}

func (r *roster) court(id string) (Court, bool) {
	pos, ok := r.courtPos[id]
	if !ok {
		return Court{}, false
	}
	return r.courts[pos], true
}

// resting returns eligible players without an assignment in the plan.
func (r *roster) resting(plan RoundPlan) []string {
	assigned := plan.Assigned()
	out := []string{}
	for _, id := range r.eligible(plan.Round) {
		if !assigned[id] {
			out = append(out, id)
		}
	}
	return out
}

// dropStale removes assignments with an unavailable court or a player who
// no longer covers the round.
func (r *roster) dropStale(plan *RoundPlan) {
	plan.Assignments = slices.DeleteFunc(plan.Assignments, func(a Assignment) bool {
		court, ok := r.court(a.CourtID)
		if !ok || !court.Covers(plan.Round) {
			return true
		}
		for _, id := range a.Players() {
			if !r.eligibleFor(id, plan.Round) {
				return true
			}
		}
		return false
	})
}

// sortAssignments orders a round's assignments by court creation order.
func (r *roster) sortAssignments(plan *RoundPlan) {
	pos := func(courtID string) int {
		if p, ok := r.courtPos[courtID]; ok {
			return p
		}
		return len(r.courts)
	}
	slices.SortStableFunc(plan.Assignments, func(a, b Assignment) int {
		return pos(a.CourtID) - pos(b.CourtID)
	})
}
