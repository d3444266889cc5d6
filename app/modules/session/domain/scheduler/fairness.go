package scheduler

// pairKey is an unordered pair of player ids.
type pairKey struct {
	a, b string
}

func newPairKey(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// Tracker holds the per-session bookkeeping used to balance rounds:
// games played per player and how often two players shared a court as
// partners or opponents.
type Tracker struct {
	games     map[string]int
	partners  map[pairKey]int
	opponents map[pairKey]int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		games:     make(map[string]int),
		partners:  make(map[pairKey]int),
		opponents: make(map[pairKey]int),
	}
}

// SeedTracker builds a tracker from the locked rounds of a schedule.
func SeedTracker(rounds []RoundPlan) *Tracker {
	t := NewTracker()
	for _, r := range rounds {
		if r.Status() != RoundLocked {
			continue
		}
		for _, a := range r.Assignments {
			t.Record(a)
		}
	}
	return t
}

// Record adds one assignment to the counters.
func (t *Tracker) Record(a Assignment) {
	for _, id := range a.Players() {
		t.games[id]++
	}
	t.partners[newPairKey(a.TeamA[0], a.TeamA[1])]++
	t.partners[newPairKey(a.TeamB[0], a.TeamB[1])]++
	for _, x := range a.TeamA {
		for _, y := range a.TeamB {
			t.opponents[newPairKey(x, y)]++
		}
	}
}

// Games returns how many assignments the player appeared in.
func (t *Tracker) Games(playerID string) int {
	return t.games[playerID]
}

// Partners returns how often the two players were on the same team.
func (t *Tracker) Partners(a, b string) int {
	return t.partners[newPairKey(a, b)]
}

// Opponents returns how often the two players faced each other.
func (t *Tracker) Opponents(a, b string) int {
	return t.opponents[newPairKey(a, b)]
}

// History is the combined partner and opponent count of a pair.
func (t *Tracker) History(a, b string) int {
	k := newPairKey(a, b)
	return t.partners[k] + t.opponents[k]
}

// PairCost sums History over every unordered pair of ids.
func (t *Tracker) PairCost(ids ...string) int {
	cost := 0
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			cost += t.History(ids[i], ids[j])
		}
	}
	return cost
}

// Spread returns max-min games played among the given players.
func (t *Tracker) Spread(ids []string) int {
	if len(ids) == 0 {
		return 0
	}
	lo, hi := t.games[ids[0]], t.games[ids[0]]
	for _, id := range ids[1:] {
		g := t.games[id]
		lo = min(lo, g)
		hi = max(hi, g)
	}
	return hi - lo
}

// GamesPlayed returns a copy of the games counter.
func (t *Tracker) GamesPlayed() map[string]int {
	out := make(map[string]int, len(t.games))
	for k, v := range t.games {
		out[k] = v
	}
	return out
}
