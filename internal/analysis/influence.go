package analysis

import (
	"sort"

	"github.com/Benny93/socialnet-go/internal/graph"
)

// SecondDegreeWeight is the credit a user receives per friend-of-friend link.
const SecondDegreeWeight = 0.1

// Ranked pairs a user with its influence score.
type Ranked struct {
	ID    graph.UserID
	Score float64
}

// Score returns deg(u) + 0.1 × Σ deg(f) over u's friends.
func Score(adj [][]graph.UserID, u graph.UserID) (float64, error) {
	if err := checkUser(adj, u); err != nil {
		return 0, err
	}
	return score(adj, u), nil
}

func score(adj [][]graph.UserID, u graph.UserID) float64 {
	second := 0
	for _, f := range adj[u] {
		second += len(adj[f])
	}
	return float64(len(adj[u])) + SecondDegreeWeight*float64(second)
}

// Scores returns the influence score of every user, indexed by identifier.
func Scores(adj [][]graph.UserID) []float64 {
	scores := make([]float64, len(adj))
	for i := range adj {
		scores[i] = score(adj, graph.UserID(i))
	}
	return scores
}

// RankInfluence returns every user ordered by descending score. Ties keep
// ascending identifier order.
func RankInfluence(adj [][]graph.UserID) []Ranked {
	scores := Scores(adj)
	ranking := make([]Ranked, len(scores))
	for i, s := range scores {
		ranking[i] = Ranked{ID: graph.UserID(i), Score: s}
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Score > ranking[j].Score
	})
	return ranking
}

// Top returns at most n leading entries of a ranking.
func Top(ranking []Ranked, n int) []Ranked {
	if n < 0 || n >= len(ranking) {
		return ranking
	}
	return ranking[:n]
}
