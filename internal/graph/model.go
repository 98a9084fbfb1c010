package graph

// UserID identifies a user. Identifiers are assigned sequentially from 0 and
// are never reused.
type UserID int

// NoCommunity is the community label of a user that has not been through
// community detection yet.
const NoCommunity UserID = -1

// Default capacity limits.
const (
	DefaultMaxUsers       = 1000
	DefaultMaxConnections = 50
	DefaultMaxNameLength  = 49
)

// Limits bounds the size of a SocialGraph.
type Limits struct {
	// MaxUsers is the maximum number of users the graph accepts.
	MaxUsers int

	// MaxConnections is the maximum length of a single friend list.
	// Friendships beyond it are refused; this is a known scalability
	// ceiling of the fixed-size model.
	MaxConnections int

	// MaxNameLength is the number of runes of a display name that are kept.
	MaxNameLength int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxUsers:       DefaultMaxUsers,
		MaxConnections: DefaultMaxConnections,
		MaxNameLength:  DefaultMaxNameLength,
	}
}

// User is a member of the social graph.
type User struct {
	// ID is the sequential identifier assigned at creation.
	ID UserID

	// Name is the display name. It is not required to be unique.
	Name string

	// Friends holds the identifiers of direct friends in the order the
	// friendships were created.
	Friends []UserID

	// Influence is the last computed influence score.
	Influence float64

	// Community is the representative of the user's community as of the
	// last detection, or NoCommunity.
	Community UserID
}

// Profile is a read-only copy of a User handed out to callers.
type Profile struct {
	ID        UserID
	Name      string
	Friends   []UserID
	Influence float64
	Community UserID
}

// Degree returns the number of direct friends.
func (p Profile) Degree() int {
	return len(p.Friends)
}

func (u *User) profile() Profile {
	friends := make([]UserID, len(u.Friends))
	copy(friends, u.Friends)
	return Profile{
		ID:        u.ID,
		Name:      u.Name,
		Friends:   friends,
		Influence: u.Influence,
		Community: u.Community,
	}
}

func (u *User) hasFriend(id UserID) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}

// truncateName keeps at most max runes of name.
func truncateName(name string, max int) string {
	if max <= 0 {
		return name
	}
	n := 0
	for i := range name {
		if n == max {
			return name[:i]
		}
		n++
	}
	return name
}
