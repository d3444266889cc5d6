package sessionevents

import (
	"slices"

	"github.com/courtside-club/courtside/app/modules/session/domain/scheduler"
)

// TopTeamsLimit caps the partnerships reported in a summary.
const TopTeamsLimit = 5

// FromSchedule converts an engine schedule to its wire shape.
func FromSchedule(s *scheduler.SessionSchedule) SessionScheduleV1 {
	if s == nil {
		return SessionScheduleV1{Rounds: []RoundPlanV1{}}
	}
	out := SessionScheduleV1{
		SessionID: s.SessionID,
		Version:   s.Version,
		Rounds:    make([]RoundPlanV1, 0, len(s.Rounds)),
	}
	for _, r := range s.Rounds {
		resting := slices.Clone(r.Resting)
		if resting == nil {
			resting = []string{}
		}
		plan := RoundPlanV1{
			RoundIndex:  r.Index,
			StartTime:   r.Start,
			EndTime:     r.End,
			Status:      r.Status().String(),
			Assignments: make([]RoundAssignmentV1, 0, len(r.Assignments)),
			Resting:     resting,
		}
		for _, a := range r.Assignments {
			ra := RoundAssignmentV1{
				ID:      a.ID,
				CourtID: a.CourtID,
				TeamA:   a.TeamA,
				TeamB:   a.TeamB,
				Resting: resting,
				Manual:  a.Manual,
				Locked:  a.IsLocked(),
			}
			if a.Score != nil {
				ra.Score = &ScoreV1{TeamAScore: a.Score.TeamA, TeamBScore: a.Score.TeamB}
			}
			plan.Assignments = append(plan.Assignments, ra)
		}
		out.Rounds = append(out.Rounds, plan)
	}
	return out
}

// FromSummary converts a summary, keeping the best TopTeamsLimit teams.
func FromSummary(sessionID string, s scheduler.Summary) SessionSummaryPayloadV1 {
	out := SessionSummaryPayloadV1{
		SessionID:     sessionID,
		ScoredMatches: s.ScoredMatches,
		Players:       make([]PlayerStandingV1, 0, len(s.Players)),
		TopTeams:      make([]TeamStandingV1, 0, min(len(s.Teams), TopTeamsLimit)),
	}
	for _, p := range s.Players {
		out.Players = append(out.Players, PlayerStandingV1{
			PlayerID:      p.PlayerID,
			Name:          p.Name,
			Games:         p.Games,
			Wins:          p.Wins,
			Losses:        p.Losses,
			PointsFor:     p.PointsFor,
			PointsAgainst: p.PointsAgainst,
		})
	}
	for i, t := range s.Teams {
		if i == TopTeamsLimit {
			break
		}
		out.TopTeams = append(out.TopTeams, TeamStandingV1{
			PlayerIDs:     t.PlayerIDs,
			PlayerNames:   t.PlayerNames,
			Games:         t.Games,
			Wins:          t.Wins,
			PointsFor:     t.PointsFor,
			PointsAgainst: t.PointsAgainst,
		})
	}
	return out
}
