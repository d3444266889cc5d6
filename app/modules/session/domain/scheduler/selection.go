package scheduler

import (
	"cmp"
	"math"
	"slices"
)

const ratingEpsilon = 1e-9

// split is one way of dividing four players into two teams.
type split struct {
	teamA, teamB [2]string
	diff         float64
	repeats      int
}

// pairings lists the three ways to split positions 0..3 into 2+2.
var pairings = [3][4]int{
	{0, 1, 2, 3},
	{0, 2, 1, 3},
	{0, 3, 1, 2},
}

// bestSplit picks the pairing with the smallest rating difference between
// teams, preferring fewer repeat partnerships on ties.
func bestSplit(group [4]string, rs *roster, t *Tracker) split {
	var best split
	for i, p := range pairings {
		a := [2]string{group[p[0]], group[p[1]]}
		b := [2]string{group[p[2]], group[p[3]]}
		s := split{
			teamA:   a,
			teamB:   b,
			diff:    math.Abs(rs.rating(a[0]) + rs.rating(a[1]) - rs.rating(b[0]) - rs.rating(b[1])),
			repeats: t.Partners(a[0], a[1]) + t.Partners(b[0], b[1]),
		}
		if i == 0 || s.better(best) {
			best = s
		}
	}
	return best
}

func (s split) better(o split) bool {
	if math.Abs(s.diff-o.diff) > ratingEpsilon {
		return s.diff < o.diff
	}
	return s.repeats < o.repeats
}

// candidate is a scored group of four.
type candidate struct {
	ids      [4]string
	pairCost int
	diff     float64
}

func (c candidate) better(o candidate) bool {
	if c.pairCost != o.pairCost {
		return c.pairCost < o.pairCost
	}
	if math.Abs(c.diff-o.diff) > ratingEpsilon {
		return c.diff < o.diff
	}
	return slices.Compare(c.ids[:], o.ids[:]) < 0
}

// pickGroup selects four players from the pool. Players with fewer games
// are always taken first; the remaining seats are filled from the tier of
// players tied on games, minimizing repeat pairings, then rating spread,
// then id order.
func (e *Engine) pickGroup(pool []string, rs *roster, t *Tracker) [4]string {
	sorted := slices.Clone(pool)
	slices.SortFunc(sorted, func(a, b string) int {
		if c := cmp.Compare(t.Games(a), t.Games(b)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	cutoff := t.Games(sorted[3])
	var mandatory, tier []string
	for _, id := range sorted {
		switch g := t.Games(id); {
		case g < cutoff:
			mandatory = append(mandatory, id)
		case g == cutoff:
			tier = append(tier, id)
		}
	}
	need := 4 - len(mandatory)

	slices.SortStableFunc(tier, func(a, b string) int {
		if c := cmp.Compare(historyWith(t, a, mandatory), historyWith(t, b, mandatory)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if len(tier) > e.opts.CandidateLimit {
		tier = tier[:e.opts.CandidateLimit]
	}

	var best candidate
	found := false
	combinations(len(tier), need, func(idx []int) {
		members := slices.Clone(mandatory)
		for _, i := range idx {
			members = append(members, tier[i])
		}
		slices.Sort(members)
		var ids [4]string
		copy(ids[:], members)

		c := candidate{
			ids:      ids,
			pairCost: t.PairCost(members...),
			diff:     bestSplit(ids, rs, t).diff,
		}
		if !found || c.better(best) {
			best = c
			found = true
		}
	})
	return best.ids
}

func historyWith(t *Tracker, id string, others []string) int {
	total := 0
	for _, o := range others {
		total += t.History(id, o)
	}
	return total
}

// combinations calls fn with every k-subset of 0..n-1 in lexicographic order.
func combinations(n, k int, fn func([]int)) {
	if k < 0 || k > n {
		return
	}
	idx := make([]int, k)
	var rec func(start, depth int)
	rec = func(start, depth int) {
		if depth == k {
			fn(idx)
			return
		}
		for i := start; i <= n-(k-depth); i++ {
			idx[depth] = i
			rec(i+1, depth+1)
		}
	}
	rec(0, 0)
}
