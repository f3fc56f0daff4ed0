package election

import (
	"math/rand"
	"sort"
)

// Ranked is one candidate with its vote count, in final ranked order.
type Ranked[T Candidate] struct {
	Candidate T
	Votes     int
}

// LabelCount is the non-generic form of a ranked candidate, used by
// transports that only need to display a tally.
type LabelCount struct {
	Label string `json:"label"`
	Votes int    `json:"votes"`
}

// Rank orders candidates by descending vote count. Candidates with equal
// counts are ordered by a single random permutation of their tie group: a
// fresh coin flip per pairwise comparison is not transitive once three or
// more candidates tie, and can produce an inconsistent ranking.
func Rank[T Candidate](entries []Ranked[T], rng *rand.Rand) []Ranked[T] {
	ranked := make([]Ranked[T], len(entries))
	copy(ranked, entries)

	// Deterministic order first, so the only randomness is the tie shuffle.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Votes != ranked[j].Votes {
			return ranked[i].Votes > ranked[j].Votes
		}
		return ranked[i].Candidate.Key() < ranked[j].Candidate.Key()
	})

	start := 0
	for i := 1; i <= len(ranked); i++ {
		if i < len(ranked) && ranked[i].Votes == ranked[start].Votes {
			continue
		}
		group := ranked[start:i]
		if len(group) > 1 {
			rng.Shuffle(len(group), func(a, b int) {
				group[a], group[b] = group[b], group[a]
			})
		}
		start = i
	}

	return ranked
}
