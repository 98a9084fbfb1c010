package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Benny93/socialnet-go/internal/graph"
)

func TestScore(t *testing.T) {
	t.Parallel()

	t.Run("SecondDegreeCredit", func(t *testing.T) {
		t.Parallel()
		// User 0 has degree 2; friend 1 has degree 3, friend 2 has degree 1.
		adj := buildAdjacency(t, 5, [][2]graph.UserID{{0, 1}, {0, 2}, {1, 3}, {1, 4}})

		s, err := Score(adj, 0)
		require.NoError(t, err)
		assert.InDelta(t, 2.4, s, 1e-9)
	})

	t.Run("Isolated", func(t *testing.T) {
		t.Parallel()
		adj := buildAdjacency(t, 1, nil)

		s, err := Score(adj, 0)
		require.NoError(t, err)
		assert.Zero(t, s)
	})

	t.Run("InvalidUser", func(t *testing.T) {
		t.Parallel()
		_, err := Score(nil, 0)
		assert.ErrorIs(t, err, graph.ErrInvalidUser)
	})
}

func TestRankInfluence(t *testing.T) {
	t.Parallel()

	t.Run("DescendingScores", func(t *testing.T) {
		t.Parallel()
		// Star around 2 plus a pendant on 0.
		adj := buildAdjacency(t, 5, [][2]graph.UserID{{2, 0}, {2, 1}, {2, 3}, {0, 4}})

		ranking := RankInfluence(adj)

		require.Len(t, ranking, 5)
		assert.Equal(t, graph.UserID(2), ranking[0].ID)
		assert.InDelta(t, 3.4, ranking[0].Score, 1e-9)
		assert.Equal(t, graph.UserID(0), ranking[1].ID)
		assert.InDelta(t, 2.4, ranking[1].Score, 1e-9)
		for i := 1; i < len(ranking); i++ {
			assert.GreaterOrEqual(t, ranking[i-1].Score, ranking[i].Score)
		}
	})

	t.Run("TiesKeepIdentifierOrder", func(t *testing.T) {
		t.Parallel()
		adj := buildAdjacency(t, 6, [][2]graph.UserID{{4, 5}, {0, 1}, {2, 3}})

		ranking := RankInfluence(adj)

		ids := make([]graph.UserID, len(ranking))
		for i, r := range ranking {
			ids[i] = r.ID
		}
		assert.Equal(t, []graph.UserID{0, 1, 2, 3, 4, 5}, ids)
	})

	t.Run("Deterministic", func(t *testing.T) {
		t.Parallel()
		adj := buildAdjacency(t, 8, [][2]graph.UserID{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {6, 7}, {1, 6}})

		assert.Equal(t, RankInfluence(adj), RankInfluence(adj))
	})

	t.Run("Empty", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, RankInfluence(nil))
	})
}

func TestTop(t *testing.T) {
	t.Parallel()

	ranking := []Ranked{{ID: 0, Score: 3}, {ID: 1, Score: 2}, {ID: 2, Score: 1}}

	assert.Len(t, Top(ranking, 2), 2)
	assert.Len(t, Top(ranking, 10), 3)
	assert.Len(t, Top(ranking, -1), 3)
	assert.Empty(t, Top(ranking, 0))
}
