package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/Benny93/socialnet-go/internal/graph"
)

// buildAdjacency creates n users, connects the given pairs through a real
// SocialGraph and returns its adjacency snapshot.
func buildAdjacency(t *testing.T, n int, edges [][2]graph.UserID) [][]graph.UserID {
	t.Helper()
	g := graph.NewSocialGraph(graph.DefaultLimits())
	for i := 0; i < n; i++ {
		_, err := g.AddUser("u")
		require.NoError(t, err)
	}
	for _, e := range edges {
		require.NoError(t, g.AddFriendship(e[0], e[1]))
	}
	return g.Adjacency()
}

// toGonum mirrors an adjacency snapshot into a gonum undirected graph.
func toGonum(adj [][]graph.UserID) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for i := range adj {
		g.AddNode(simple.Node(int64(i)))
	}
	for i, friends := range adj {
		for _, f := range friends {
			if int(f) > i {
				g.SetEdge(g.NewEdge(simple.Node(int64(i)), simple.Node(int64(f))))
			}
		}
	}
	return g
}
