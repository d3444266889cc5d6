package scheduler

import (
	"cmp"
	"slices"
)

// PlayerStanding aggregates one player's session results.
type PlayerStanding struct {
	PlayerID      string
	Name          string
	Games         int
	Wins          int
	Losses        int
	PointsFor     int
	PointsAgainst int
}

// TeamStanding aggregates the results of a partnership.
type TeamStanding struct {
	PlayerIDs     [2]string
	PlayerNames   [2]string
	Games         int
	Wins          int
	PointsFor     int
	PointsAgainst int
}

// Summary is the end-of-session report. Games counts every assignment;
// wins and points only count scored ones.
type Summary struct {
	SessionID     string
	Players       []PlayerStanding
	Teams         []TeamStanding
	ScoredMatches int
}

// Summarize builds standings ordered by wins, point difference, then id.
func Summarize(schedule *SessionSchedule, players []Player) Summary {
	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.DisplayName
	}
	if schedule == nil {
		return Summary{}
	}

	byPlayer := make(map[string]*PlayerStanding)
	byTeam := make(map[pairKey]*TeamStanding)
	player := func(id string) *PlayerStanding {
		if s, ok := byPlayer[id]; ok {
			return s
		}
		s := &PlayerStanding{PlayerID: id, Name: names[id]}
		byPlayer[id] = s
		return s
	}
	team := func(t [2]string) *TeamStanding {
		k := newPairKey(t[0], t[1])
		if s, ok := byTeam[k]; ok {
			return s
		}
		s := &TeamStanding{PlayerIDs: [2]string{k.a, k.b}, PlayerNames: [2]string{names[k.a], names[k.b]}}
		byTeam[k] = s
		return s
	}

	out := Summary{SessionID: schedule.SessionID}
	for _, r := range schedule.Rounds {
		for _, a := range r.Assignments {
			for _, id := range a.Players() {
				player(id).Games++
			}
			team(a.TeamA).Games++
			team(a.TeamB).Games++
			if a.Score == nil {
				continue
			}
			out.ScoredMatches++
			applyResult(a.TeamA, a.Score.TeamA, a.Score.TeamB, player, team(a.TeamA))
			applyResult(a.TeamB, a.Score.TeamB, a.Score.TeamA, player, team(a.TeamB))
		}
	}

	for _, s := range byPlayer {
		out.Players = append(out.Players, *s)
	}
	for _, s := range byTeam {
		out.Teams = append(out.Teams, *s)
	}
	slices.SortFunc(out.Players, func(a, b PlayerStanding) int {
		if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
			return c
		}
		if c := cmp.Compare(b.PointsFor-b.PointsAgainst, a.PointsFor-a.PointsAgainst); c != 0 {
			return c
		}
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})
	slices.SortFunc(out.Teams, func(a, b TeamStanding) int {
		if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
			return c
		}
		if c := cmp.Compare(b.PointsFor-b.PointsAgainst, a.PointsFor-a.PointsAgainst); c != 0 {
			return c
		}
		return slices.Compare(a.PlayerIDs[:], b.PlayerIDs[:])
	})
	return out
}

func applyResult(side [2]string, pointsFor, pointsAgainst int, player func(string) *PlayerStanding, t *TeamStanding) {
	won := pointsFor > pointsAgainst
	lost := pointsFor < pointsAgainst
	for _, id := range side {
		p := player(id)
		p.PointsFor += pointsFor
		p.PointsAgainst += pointsAgainst
		if won {
			p.Wins++
		}
		if lost {
			p.Losses++
		}
	}
	t.PointsFor += pointsFor
	t.PointsAgainst += pointsAgainst
	if won {
		t.Wins++
	}
}
