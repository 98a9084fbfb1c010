package graph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph(t *testing.T, names ...string) *SocialGraph {
	t.Helper()
	g := NewSocialGraph(DefaultLimits())
	for _, name := range names {
		_, err := g.AddUser(name)
		require.NoError(t, err)
	}
	return g
}

func TestNewSocialGraph(t *testing.T) {
	t.Parallel()

	t.Run("Empty", func(t *testing.T) {
		t.Parallel()
		g := NewSocialGraph(DefaultLimits())

		assert.NotNil(t, g)
		assert.Equal(t, 0, g.UserCount())
		assert.Equal(t, 0, g.FriendshipCount())
		assert.Empty(t, g.Users())
	})

	t.Run("ZeroLimitsFallBackToDefaults", func(t *testing.T) {
		t.Parallel()
		g := NewSocialGraph(Limits{})

		assert.Equal(t, DefaultLimits(), g.Limits())
	})
}

func TestSocialGraph_AddUser(t *testing.T) {
	t.Parallel()

	t.Run("SequentialIDs", func(t *testing.T) {
		t.Parallel()
		g := NewSocialGraph(DefaultLimits())

		for i := 0; i < 5; i++ {
			id, err := g.AddUser(fmt.Sprintf("user%d", i))
			require.NoError(t, err)
			assert.Equal(t, UserID(i), id)
		}
		assert.Equal(t, 5, g.UserCount())
	})

	t.Run("InitialState", func(t *testing.T) {
		t.Parallel()
		g := newTestGraph(t, "alice")

		u, err := g.User(0)
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Name)
		assert.Empty(t, u.Friends)
		assert.Zero(t, u.Influence)
		assert.Equal(t, NoCommunity, u.Community)
		assert.True(t, g.Contains(0))
	})

	t.Run("DuplicateNamesAllowed", func(t *testing.T) {
		t.Parallel()
		g := newTestGraph(t, "sam", "sam")

		assert.Equal(t, 2, g.UserCount())
	})

	t.Run("NameTruncated", func(t *testing.T) {
		t.Parallel()
		g := NewSocialGraph(Limits{MaxNameLength: 4})

		id, err := g.AddUser("Bartholomew")
		require.NoError(t, err)

		u, err := g.User(id)
		require.NoError(t, err)
		assert.Equal(t, "Bart", u.Name)
	})

	t.Run("NameTruncatedOnRuneBoundary", func(t *testing.T) {
		t.Parallel()
		g := NewSocialGraph(Limits{MaxNameLength: 3})

		id, err := g.AddUser("Zoë Ångström")
		require.NoError(t, err)

		u, err := g.User(id)
		require.NoError(t, err)
		assert.Equal(t, "Zoë", u.Name)
	})

	t.Run("CapacityExceeded", func(t *testing.T) {
		t.Parallel()
		g := NewSocialGraph(Limits{MaxUsers: 2})

		_, err := g.AddUser("a")
		require.NoError(t, err)
		_, err = g.AddUser("b")
		require.NoError(t, err)

		_, err = g.AddUser("c")
		assert.ErrorIs(t, err, ErrCapacityExceeded)
		assert.Equal(t, 2, g.UserCount())
		_, err = g.FindByName("c")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestSocialGraph_AddFriendship(t *testing.T) {
	t.Parallel()

	t.Run("Symmetric", func(t *testing.T) {
		t.Parallel()
		g := newTestGraph(t, "a", "b")

		require.NoError(t, g.AddFriendship(0, 1))

		a, _ := g.Neighbors(0)
		b, _ := g.Neighbors(1)
		assert.Equal(t, []UserID{1}, a)
		assert.Equal(t, []UserID{0}, b)
		assert.Equal(t, 1, g.FriendshipCount())
	})

	t.Run("Idempotent", func(t *testing.T) {
		t.Parallel()
		g := newTestGraph(t, "a", "b")

		require.NoError(t, g.AddFriendship(0, 1))
		require.NoError(t, g.AddFriendship(0, 1))
		require.NoError(t, g.AddFriendship(1, 0))

		a, _ := g.Neighbors(0)
		b, _ := g.Neighbors(1)
		assert.Equal(t, []UserID{1}, a)
		assert.Equal(t, []UserID{0}, b)
		assert.Equal(t, 1, g.FriendshipCount())
	})

	t.Run("SelfFriendship", func(t *testing.T) {
		t.Parallel()
		g := newTestGraph(t, "a")

		err := g.AddFriendship(0, 0)
		assert.ErrorIs(t, err, ErrSelfFriendship)
		assert.ErrorIs(t, err, ErrInvalidUser)

		n, _ := g.Neighbors(0)
		assert.Empty(t, n)
		assert.Equal(t, 0, g.FriendshipCount())
	})

	t.Run("OutOfRange", func(t *testing.T) {
		t.Parallel()
		g := newTestGraph(t, "a", "b")

		for _, pair := range [][2]UserID{{0, 2}, {-1, 1}, {5, 0}, {2, 2}} {
			err := g.AddFriendship(pair[0], pair[1])
			assert.ErrorIs(t, err, ErrInvalidUser, "pair %v", pair)
		}
		assert.Equal(t, 0, g.FriendshipCount())
	})

	t.Run("FriendListCapacity", func(t *testing.T) {
		t.Parallel()
		g := NewSocialGraph(Limits{MaxConnections: 2})
		for i := 0; i < 4; i++ {
			_, err := g.AddUser(fmt.Sprintf("u%d", i))
			require.NoError(t, err)
		}

		require.NoError(t, g.AddFriendship(0, 1))
		require.NoError(t, g.AddFriendship(0, 2))

		err := g.AddFriendship(3, 0)
		assert.ErrorIs(t, err, ErrCapacityExceeded)

		zero, _ := g.Neighbors(0)
		three, _ := g.Neighbors(3)
		assert.Equal(t, []UserID{1, 2}, zero)
		assert.Empty(t, three)
		assert.Equal(t, 2, g.FriendshipCount())
	})

	t.Run("ExistingEdgeAtCapacityIsNoOp", func(t *testing.T) {
		t.Parallel()
		g := NewSocialGraph(Limits{MaxConnections: 1})
		for i := 0; i < 2; i++ {
			_, err := g.AddUser(fmt.Sprintf("u%d", i))
			require.NoError(t, err)
		}

		require.NoError(t, g.AddFriendship(0, 1))
		assert.NoError(t, g.AddFriendship(1, 0))
	})
}

func TestSocialGraph_FindByName(t *testing.T) {
	t.Parallel()

	g := newTestGraph(t, "bob", "alice", "Alice", "alice", "alicia")

	t.Run("FirstMatchWins", func(t *testing.T) {
		id, err := g.FindByName("alice")
		require.NoError(t, err)
		assert.Equal(t, UserID(1), id)
	})

	t.Run("CaseSensitive", func(t *testing.T) {
		id, err := g.FindByName("Alice")
		require.NoError(t, err)
		assert.Equal(t, UserID(2), id)
	})

	t.Run("PrefixDoesNotMatch", func(t *testing.T) {
		_, err := g.FindByName("ali")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("EmptyGraph", func(t *testing.T) {
		_, err := NewSocialGraph(DefaultLimits()).FindByName("bob")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestSocialGraph_Resolve(t *testing.T) {
	t.Parallel()

	g := newTestGraph(t, "alice", "bob", "7")

	tests := []struct {
		ref     string
		want    UserID
		wantErr error
	}{
		{ref: "0", want: 0},
		{ref: "1", want: 1},
		{ref: "bob", want: 1},
		{ref: "7", wantErr: ErrInvalidUser},
		{ref: "-1", wantErr: ErrInvalidUser},
		{ref: "carol", wantErr: ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			id, err := g.Resolve(tt.ref)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestSocialGraph_User(t *testing.T) {
	t.Parallel()

	t.Run("ReturnsCopy", func(t *testing.T) {
		t.Parallel()
		g := newTestGraph(t, "a", "b")
		require.NoError(t, g.AddFriendship(0, 1))

		u, err := g.User(0)
		require.NoError(t, err)
		u.Friends[0] = 99

		again, _ := g.User(0)
		assert.Equal(t, []UserID{1}, again.Friends)
		assert.Equal(t, 1, again.Degree())
	})

	t.Run("Invalid", func(t *testing.T) {
		t.Parallel()
		g := newTestGraph(t, "a")

		_, err := g.User(1)
		assert.ErrorIs(t, err, ErrInvalidUser)
		_, err = g.Neighbors(-3)
		assert.ErrorIs(t, err, ErrInvalidUser)
	})
}

func TestSocialGraph_Users(t *testing.T) {
	t.Parallel()

	g := newTestGraph(t, "c", "a", "b")

	users := g.Users()
	require.Len(t, users, 3)
	for i, name := range []string{"c", "a", "b"} {
		assert.Equal(t, UserID(i), users[i].ID)
		assert.Equal(t, name, users[i].Name)
	}
}

func TestSocialGraph_Adjacency(t *testing.T) {
	t.Parallel()

	g := newTestGraph(t, "a", "b", "c")
	require.NoError(t, g.AddFriendship(0, 1))
	require.NoError(t, g.AddFriendship(2, 0))

	adj := g.Adjacency()
	assert.Equal(t, [][]UserID{{1, 2}, {0}, {0}}, adj)

	adj[0][0] = 2
	n, _ := g.Neighbors(0)
	assert.Equal(t, []UserID{1, 2}, n)
}

func TestSocialGraph_Assign(t *testing.T) {
	t.Parallel()

	g := newTestGraph(t, "a", "b")

	g.AssignCommunities([]UserID{0, 0, 0})
	g.AssignInfluence([]float64{1.5})

	a, _ := g.User(0)
	b, _ := g.User(1)
	assert.Equal(t, UserID(0), a.Community)
	assert.Equal(t, UserID(0), b.Community)
	assert.Equal(t, 1.5, a.Influence)
	assert.Zero(t, b.Influence)
}

func TestSocialGraph_Stats(t *testing.T) {
	t.Parallel()

	g := newTestGraph(t, "a", "b")
	require.NoError(t, g.AddFriendship(0, 1))

	assert.Equal(t, map[string]int{"users": 2, "friendships": 1}, g.Stats())
}

func TestSocialGraph_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	g := NewSocialGraph(DefaultLimits())

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func(n int) {
			_, _ = g.AddUser(fmt.Sprintf("user%d", n))
			_ = g.Users()
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	assert.Equal(t, 10, g.UserCount())
	for i := 0; i < 10; i++ {
		assert.True(t, g.Contains(UserID(i)))
	}
}
