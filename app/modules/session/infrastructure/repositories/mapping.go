package sessiondb

import (
	"slices"

	"github.com/courtside-club/courtside/app/modules/session/domain/scheduler"
)

// ToSnapshot converts persisted rows into the engine's input.
func ToSnapshot(session *Session, players []Player, attendance []Attendance, courts []Court) scheduler.Snapshot {
	snap := scheduler.Snapshot{
		Session: scheduler.Session{
			ID:           session.ID,
			Start:        session.StartTime,
			End:          session.EndTime,
			RoundMinutes: session.RoundMinutes,
		},
	}
	for _, p := range players {
		rating := scheduler.DefaultRating
		if p.Rating != nil {
			rating = *p.Rating
		}
		snap.Players = append(snap.Players, scheduler.Player{
			ID:          p.PlayerID,
			DisplayName: p.DisplayName,
			Rating:      rating,
			Active:      p.Active,
		})
	}
	for _, a := range attendance {
		snap.Attendance = append(snap.Attendance, scheduler.Attendance{
			PlayerID: a.PlayerID,
			ArriveAt: a.ArriveAt,
			LeaveAt:  a.LeaveAt,
		})
	}
	ordered := slices.Clone(courts)
	slices.SortStableFunc(ordered, func(a, b Court) int { return a.Position - b.Position })
	for _, c := range ordered {
		snap.Courts = append(snap.Courts, scheduler.Court{
			ID:    c.ID,
			Name:  c.CourtName,
			Start: c.StartTime,
			End:   c.EndTime,
		})
	}
	return snap
}

// ToDomainSchedule converts a stored schedule. A nil row yields nil.
func ToDomainSchedule(row *Schedule) *scheduler.SessionSchedule {
	if row == nil {
		return nil
	}
	out := &scheduler.SessionSchedule{
		SessionID: row.SessionID,
		Version:   row.Version,
		Rounds:    make([]scheduler.RoundPlan, 0, len(row.Rounds)),
	}
	for _, r := range row.Rounds {
		plan := scheduler.RoundPlan{
			Round:   scheduler.Round{Index: r.Index, Start: r.StartTime, End: r.EndTime},
			Resting: slices.Clone(r.Resting),
		}
		if plan.Resting == nil {
			plan.Resting = []string{}
		}
		for _, a := range r.Assignments {
			asg := scheduler.Assignment{
				ID:         a.ID,
				RoundIndex: r.Index,
				CourtID:    a.CourtID,
				TeamA:      a.TeamA,
				TeamB:      a.TeamB,
				Manual:     a.Manual,
				Locked:     a.Locked,
			}
			if a.TeamAScore != nil && a.TeamBScore != nil {
				asg.Score = &scheduler.Score{TeamA: *a.TeamAScore, TeamB: *a.TeamBScore}
			}
			plan.Assignments = append(plan.Assignments, asg)
		}
		out.Rounds = append(out.Rounds, plan)
	}
	return out
}

// FromDomainSchedule converts an engine schedule into its stored form.
func FromDomainSchedule(s *scheduler.SessionSchedule) *Schedule {
	row := &Schedule{
		SessionID: s.SessionID,
		Version:   s.Version,
		Rounds:    make([]RoundRecord, 0, len(s.Rounds)),
	}
	for _, r := range s.Rounds {
		rec := RoundRecord{
			Index:       r.Index,
			StartTime:   r.Start,
			EndTime:     r.End,
			Assignments: make([]AssignmentRecord, 0, len(r.Assignments)),
			Resting:     slices.Clone(r.Resting),
		}
		for _, a := range r.Assignments {
			ar := AssignmentRecord{
				ID:      a.ID,
				CourtID: a.CourtID,
				TeamA:   a.TeamA,
				TeamB:   a.TeamB,
				Manual:  a.Manual,
				Locked:  a.Locked,
			}
			if a.Score != nil {
				ta, tb := a.Score.TeamA, a.Score.TeamB
				ar.TeamAScore, ar.TeamBScore = &ta, &tb
			}
			rec.Assignments = append(rec.Assignments, ar)
		}
		row.Rounds = append(row.Rounds, rec)
	}
	return row
}
