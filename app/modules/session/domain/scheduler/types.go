package scheduler

import (
	"slices"
	"time"
)

// Session is the time window a schedule is built for.
type Session struct {
	ID           string
	Start        time.Time
	End          time.Time
	RoundMinutes int
}

// RoundLength returns the fixed duration of every round.
func (s Session) RoundLength() time.Duration {
	return time.Duration(s.RoundMinutes) * time.Minute
}

// Player is a roster entry. Rating is normalized to [0,1].
type Player struct {
	ID          string
	DisplayName string
	Rating      float64
	Active      bool
}

// Attendance is the window during which a player can be assigned.
type Attendance struct {
	PlayerID string
	ArriveAt time.Time
	LeaveAt  time.Time
}

// Covers reports whether the attendance window fully contains the round.
func (a Attendance) Covers(r Round) bool {
	return !a.ArriveAt.After(r.Start) && !a.LeaveAt.Before(r.End)
}

// Court is a playing surface with its own availability window.
type Court struct {
	ID    string
	Name  string
	Start time.Time
	End   time.Time
}

// Covers reports whether the court is available for the whole round.
func (c Court) Covers(r Round) bool {
	return !c.Start.After(r.Start) && !c.End.Before(r.End)
}

// Snapshot is the immutable input of every engine operation.
type Snapshot struct {
	Session    Session
	Players    []Player
	Attendance []Attendance
	Courts     []Court
}

// Score is the result of a finished match.
type Score struct {
	TeamA int `json:"teamAScore"`
	TeamB int `json:"teamBScore"`
}

// Assignment is one court's doubles match in one round.
type Assignment struct {
	ID         string
	RoundIndex int
	CourtID    string
	TeamA      [2]string
	TeamB      [2]string
	Score      *Score
	Manual     bool
	Locked     bool
}

// Players returns the four player ids, team A first.
func (a Assignment) Players() [4]string {
	return [4]string{a.TeamA[0], a.TeamA[1], a.TeamB[0], a.TeamB[1]}
}

// Has reports whether the player is on either team.
func (a Assignment) Has(playerID string) bool {
	for _, id := range a.Players() {
		if id == playerID {
			return true
		}
	}
	return false
}

// IsLocked reports whether the assignment pins its round against regeneration.
func (a Assignment) IsLocked() bool {
	return a.Locked || a.Manual || a.Score != nil
}

func (a Assignment) clone() Assignment {
	out := a
	if a.Score != nil {
		s := *a.Score
		out.Score = &s
	}
	return out
}

// RoundStatus partitions rounds for regeneration.
type RoundStatus int

const (
	RoundOpen RoundStatus = iota
	RoundLocked
)

func (s RoundStatus) String() string {
	if s == RoundLocked {
		return "locked"
	}
	return "open"
}

// Round is a fixed-length slice of the session window.
type Round struct {
	Index int
	Start time.Time
	End   time.Time
}

// RoundPlan is a round with its assignments and resting players.
type RoundPlan struct {
	Round
	Assignments []Assignment
	Resting     []string
}

// Status is Locked when any assignment is scored, manual or flagged locked.
func (p RoundPlan) Status() RoundStatus {
	for _, a := range p.Assignments {
		if a.IsLocked() {
			return RoundLocked
		}
	}
	return RoundOpen
}

// Assigned returns the set of players on a court this round.
func (p RoundPlan) Assigned() map[string]bool {
	out := make(map[string]bool, len(p.Assignments)*4)
	for _, a := range p.Assignments {
		for _, id := range a.Players() {
			out[id] = true
		}
	}
	return out
}

func (p RoundPlan) clone() RoundPlan {
	out := RoundPlan{Round: p.Round, Resting: slices.Clone(p.Resting)}
	if p.Assignments != nil {
		out.Assignments = make([]Assignment, len(p.Assignments))
		for i, a := range p.Assignments {
			out.Assignments[i] = a.clone()
		}
	}
	return out
}

// SessionSchedule is the ordered list of round plans for one session.
// Version is owned by the persistence layer and copied through untouched.
type SessionSchedule struct {
	SessionID string
	Version   int64
	Rounds    []RoundPlan
}

// Clone returns a deep copy.
func (s *SessionSchedule) Clone() *SessionSchedule {
	if s == nil {
		return nil
	}
	out := &SessionSchedule{SessionID: s.SessionID, Version: s.Version}
	if s.Rounds != nil {
		out.Rounds = make([]RoundPlan, len(s.Rounds))
		for i, r := range s.Rounds {
			out.Rounds[i] = r.clone()
		}
	}
	return out
}

// LockedIndices returns the indices of locked rounds in ascending order.
func (s *SessionSchedule) LockedIndices() []int {
	var out []int
	for _, r := range s.Rounds {
		if r.Status() == RoundLocked {
			out = append(out, r.Index)
		}
	}
	return out
}

// HasScores reports whether any assignment carries a score.
func (s *SessionSchedule) HasScores() bool {
	for _, r := range s.Rounds {
		for _, a := range r.Assignments {
			if a.Score != nil {
				return true
			}
		}
	}
	return false
}

// roundPos returns the slice position of the round with the given index.
func (s *SessionSchedule) roundPos(index int) (int, bool) {
	for i, r := range s.Rounds {
		if r.Index == index {
			return i, true
		}
	}
	return -1, false
}

// findAssignment returns slice positions of the round and assignment.
func (s *SessionSchedule) findAssignment(id string) (int, int, bool) {
	for ri, r := range s.Rounds {
		for ai, a := range r.Assignments {
			if a.ID == id {
				return ri, ai, true
			}
		}
	}
	return -1, -1, false
}

// FindAssignment returns a copy of the assignment with the given id.
func (s *SessionSchedule) FindAssignment(id string) (Assignment, bool) {
	ri, ai, ok := s.findAssignment(id)
	if !ok {
		return Assignment{}, false
	}
	return s.Rounds[ri].Assignments[ai].clone(), true
}

// GamesPlayed counts assignments per player across the schedule.
func (s *SessionSchedule) GamesPlayed() map[string]int {
	out := make(map[string]int)
	for _, r := range s.Rounds {
		for _, a := range r.Assignments {
			for _, id := range a.Players() {
				out[id]++
			}
		}
	}
	return out
}
