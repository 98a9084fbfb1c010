// Package analysis provides the read-only graph algorithms of socialnet:
// breadth-first distance queries, common-friend intersection, union-find
// community detection and influence ranking.
//
// Every routine works on an adjacency snapshot ([][]graph.UserID indexed by
// identifier, as returned by graph.SocialGraph.Adjacency) and allocates its
// scratch state per call.
package analysis

import (
	"fmt"

	"github.com/Benny93/socialnet-go/internal/graph"
)

// Unreachable is the distance reported for users not connected to the start.
const Unreachable = -1

// Distances returns the minimum hop count from start to every user, or
// Unreachable. The search runs until the queue is exhausted.
func Distances(adj [][]graph.UserID, start graph.UserID) ([]int, error) {
	if err := checkUser(adj, start); err != nil {
		return nil, err
	}

	dist := make([]int, len(adj))
	for i := range dist {
		dist[i] = Unreachable
	}
	dist[start] = 0

	queue := make([]graph.UserID, 0, len(adj))
	queue = append(queue, start)
	for head := 0; head < len(queue); head++ {
		current := queue[head]
		for _, friend := range adj[current] {
			if dist[friend] != Unreachable {
				continue
			}
			dist[friend] = dist[current] + 1
			queue = append(queue, friend)
		}
	}
	return dist, nil
}

// FriendsAtDistance returns, in ascending identifier order, the users whose
// minimum hop count from start is exactly k. No match is not an error.
func FriendsAtDistance(adj [][]graph.UserID, start graph.UserID, k int) ([]graph.UserID, error) {
	dist, err := Distances(adj, start)
	if err != nil {
		return nil, err
	}

	result := make([]graph.UserID, 0)
	if k < 0 {
		return result, nil
	}
	for id, d := range dist {
		if d == k {
			result = append(result, graph.UserID(id))
		}
	}
	return result, nil
}

// CommonFriends returns the friends a and b share, each once, in the order
// they appear in a's friend list.
func CommonFriends(adj [][]graph.UserID, a, b graph.UserID) ([]graph.UserID, error) {
	if err := checkUser(adj, a); err != nil {
		return nil, err
	}
	if err := checkUser(adj, b); err != nil {
		return nil, err
	}

	common := make([]graph.UserID, 0)
	for _, fa := range adj[a] {
		for _, fb := range adj[b] {
			if fa == fb {
				common = append(common, fa)
				break
			}
		}
	}
	return common, nil
}

func checkUser(adj [][]graph.UserID, id graph.UserID) error {
	if id < 0 || int(id) >= len(adj) {
		return fmt.Errorf("%w: id %d", graph.ErrInvalidUser, id)
	}
	return nil
}
