package analysis

import (
	"github.com/Benny93/socialnet-go/internal/graph"
)

// DisjointSet is a union-find structure over identifiers 0..n-1.
type DisjointSet struct {
	parent []graph.UserID
}

// NewDisjointSet returns n singleton sets.
func NewDisjointSet(n int) *DisjointSet {
	parent := make([]graph.UserID, n)
	for i := range parent {
		parent[i] = graph.UserID(i)
	}
	return &DisjointSet{parent: parent}
}

// Find returns the representative of x's set and points every node on the
// way directly at it.
func (d *DisjointSet) Find(x graph.UserID) graph.UserID {
	root := x
	for d.parent[root] != root {
		root = d.parent[root]
	}
	for d.parent[x] != root {
		next := d.parent[x]
		d.parent[x] = root
		x = next
	}
	return root
}

// Union merges the sets of x and y by attaching y's root under x's root.
// It reports whether the sets were distinct.
func (d *DisjointSet) Union(x, y graph.UserID) bool {
	rx, ry := d.Find(x), d.Find(y)
	if rx == ry {
		return false
	}
	d.parent[ry] = rx
	return true
}

// Community is one connected component.
type Community struct {
	// Representative is the union-find root standing for the component.
	Representative graph.UserID

	// Members lists the users of the component in ascending order.
	Members []graph.UserID
}

// Size returns the number of members.
func (c Community) Size() int {
	return len(c.Members)
}

// Partition is the result of community detection.
type Partition struct {
	// Labels maps each identifier to its community representative.
	Labels []graph.UserID

	// Communities are ordered by representative.
	Communities []Community
}

// DetectCommunities partitions users into connected components. It is a pure
// function of the adjacency snapshot and must be rerun after any mutation.
func DetectCommunities(adj [][]graph.UserID) Partition {
	n := len(adj)
	set := NewDisjointSet(n)
	for i, friends := range adj {
		for _, f := range friends {
			set.Union(graph.UserID(i), f)
		}
	}

	labels := make([]graph.UserID, n)
	buckets := make([][]graph.UserID, n)
	for i := range labels {
		rep := set.Find(graph.UserID(i))
		labels[i] = rep
		buckets[rep] = append(buckets[rep], graph.UserID(i))
	}

	communities := make([]Community, 0)
	for rep, members := range buckets {
		if len(members) == 0 {
			continue
		}
		communities = append(communities, Community{
			Representative: graph.UserID(rep),
			Members:        members,
		})
	}

	return Partition{Labels: labels, Communities: communities}
}
