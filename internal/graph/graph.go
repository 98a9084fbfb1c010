// Package graph provides the in-memory social graph for socialnet.
//
// SocialGraph owns every User record and the friendship relation. User
// identifiers are registered in a red-black index for membership tests, and
// display names in a B-tree ordered on (name, id) so that name lookups return
// the earliest created user with that name.
package graph

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/tidwall/btree"

	"github.com/Benny93/socialnet-go/internal/index"
)

type nameEntry struct {
	name string
	id   UserID
}

func nameEntryLess(a, b nameEntry) bool {
	if a.name != b.name {
		return a.name < b.name
	}
	return a.id < b.id
}

// SocialGraph is an undirected graph of users and friendships.
//
// Every friendship is stored once in each endpoint's friend list. All methods
// are safe for concurrent use: mutations take the write lock and queries the
// read lock, so a query always sees a consistent snapshot.
type SocialGraph struct {
	mu          sync.RWMutex
	limits      Limits
	users       []User
	ids         *index.Tree
	names       *btree.BTreeG[nameEntry]
	friendships int
}

// NewSocialGraph creates an empty graph. Zero fields in limits fall back to
// the defaults.
func NewSocialGraph(limits Limits) *SocialGraph {
	def := DefaultLimits()
	if limits.MaxUsers <= 0 {
		limits.MaxUsers = def.MaxUsers
	}
	if limits.MaxConnections <= 0 {
		limits.MaxConnections = def.MaxConnections
	}
	if limits.MaxNameLength <= 0 {
		limits.MaxNameLength = def.MaxNameLength
	}

	return &SocialGraph{
		limits: limits,
		users:  make([]User, 0, min(limits.MaxUsers, 1024)),
		ids:    index.New(min(limits.MaxUsers, 1024)),
		names:  btree.NewBTreeG[nameEntry](nameEntryLess),
	}
}

// Limits returns the capacity limits of the graph.
func (g *SocialGraph) Limits() Limits {
	return g.limits
}

// UserCount returns the number of users.
func (g *SocialGraph) UserCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.users)
}

// FriendshipCount returns the number of friendships (each counted once).
func (g *SocialGraph) FriendshipCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.friendships
}

// AddUser registers a new user and returns its identifier. The name is
// truncated to the configured maximum length; it need not be unique.
func (g *SocialGraph) AddUser(name string) (UserID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.users) >= g.limits.MaxUsers {
		return 0, fmt.Errorf("%w: maximum of %d users reached", ErrCapacityExceeded, g.limits.MaxUsers)
	}

	id := UserID(len(g.users))
	name = truncateName(name, g.limits.MaxNameLength)
	g.users = append(g.users, User{
		ID:        id,
		Name:      name,
		Community: NoCommunity,
	})
	g.ids.Insert(int(id))
	g.names.Set(nameEntry{name: name, id: id})

	return id, nil
}

// AddFriendship connects a and b in both directions.
//
// Existing friendships are left as they are and reported as success. Nothing
// is mutated when an identifier is invalid, when a == b, or when either
// friend list is already full; the latter returns ErrCapacityExceeded.
func (g *SocialGraph) AddFriendship(a, b UserID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.contains(a) {
		return invalidUser(a)
	}
	if !g.contains(b) {
		return invalidUser(b)
	}
	if a == b {
		return fmt.Errorf("%w: id %d", ErrSelfFriendship, a)
	}

	ua, ub := &g.users[a], &g.users[b]
	if ua.hasFriend(b) || ub.hasFriend(a) {
		return nil
	}

	for _, u := range []*User{ua, ub} {
		if len(u.Friends) >= g.limits.MaxConnections {
			return fmt.Errorf("%w: user %d already has %d friends", ErrCapacityExceeded, u.ID, g.limits.MaxConnections)
		}
	}

	ua.Friends = append(ua.Friends, b)
	ub.Friends = append(ub.Friends, a)
	g.friendships++
	return nil
}

// FindByName returns the identifier of the first created user whose name
// matches exactly (case-sensitive).
func (g *SocialGraph) FindByName(name string) (UserID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var (
		found UserID
		ok    bool
	)
	g.names.Ascend(nameEntry{name: name, id: math.MinInt}, func(e nameEntry) bool {
		if e.name == name {
			found, ok = e.id, true
		}
		return false
	})
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUserNotFound, name)
	}
	return found, nil
}

// Resolve turns a user reference into an identifier. A reference that parses
// as an integer is taken as an identifier and must be in range; anything else
// is looked up by name.
func (g *SocialGraph) Resolve(ref string) (UserID, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		id := UserID(n)
		if !g.Contains(id) {
			return 0, invalidUser(id)
		}
		return id, nil
	}
	return g.FindByName(ref)
}

// Contains reports whether id belongs to an existing user.
func (g *SocialGraph) Contains(id UserID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.contains(id)
}

// User returns a copy of the user with the given identifier.
func (g *SocialGraph) User(id UserID) (Profile, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.contains(id) {
		return Profile{}, invalidUser(id)
	}
	return g.users[id].profile(), nil
}

// Users returns copies of all users in creation order.
func (g *SocialGraph) Users() []Profile {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make([]Profile, len(g.users))
	for i := range g.users {
		result[i] = g.users[i].profile()
	}
	return result
}

// Neighbors returns a copy of the friend list of id.
func (g *SocialGraph) Neighbors(id UserID) ([]UserID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.contains(id) {
		return nil, invalidUser(id)
	}
	friends := make([]UserID, len(g.users[id].Friends))
	copy(friends, g.users[id].Friends)
	return friends, nil
}

// Adjacency returns a deep copy of every friend list, indexed by identifier.
// Analysis routines run on this snapshot without holding the graph lock.
func (g *SocialGraph) Adjacency() [][]UserID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	adj := make([][]UserID, len(g.users))
	for i := range g.users {
		adj[i] = make([]UserID, len(g.users[i].Friends))
		copy(adj[i], g.users[i].Friends)
	}
	return adj
}

// AssignCommunities stores community labels, labels[i] belonging to user i.
// Users created after the labels were computed keep their current label.
func (g *SocialGraph) AssignCommunities(labels []UserID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := 0; i < len(labels) && i < len(g.users); i++ {
		g.users[i].Community = labels[i]
	}
}

// AssignInfluence stores influence scores, scores[i] belonging to user i.
func (g *SocialGraph) AssignInfluence(scores []float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := 0; i < len(scores) && i < len(g.users); i++ {
		g.users[i].Influence = scores[i]
	}
}

// Stats returns a summary of graph size.
func (g *SocialGraph) Stats() map[string]int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return map[string]int{
		"users":       len(g.users),
		"friendships": g.friendships,
	}
}

// contains must be called with the lock held.
func (g *SocialGraph) contains(id UserID) bool {
	if id < 0 || int(id) >= len(g.users) {
		return false
	}
	return g.ids.Contains(int(id))
}
