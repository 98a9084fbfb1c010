package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Benny93/socialnet-go/internal/graph"
)

const sampleNetwork = `users:
  - alice
  - bob
  - carol
  - dave
friendships:
  - [alice, bob]
  - [bob, "2"]
  - [carol, dave]
`

func writeNetworkFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "network.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseNetworkFile(t *testing.T) {
	t.Parallel()

	t.Run("Valid", func(t *testing.T) {
		t.Parallel()
		file, err := ParseNetworkFile([]byte(sampleNetwork))

		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob", "carol", "dave"}, file.Users)
		assert.Len(t, file.Friendships, 3)
	})

	t.Run("NoFriendships", func(t *testing.T) {
		t.Parallel()
		file, err := ParseNetworkFile([]byte("users: [solo]\n"))

		require.NoError(t, err)
		assert.Empty(t, file.Friendships)
	})

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"NoUsers", "friendships: []\n", "Users"},
		{"ShortPair", "users: [a, b]\nfriendships:\n  - [a]\n", "len"},
		{"EmptyReference", "users: [a, b]\nfriendships:\n  - [a, \"\"]\n", "required"},
		{"UnknownField", "users: [a]\nedges: []\n", "decoding"},
		{"Malformed", "users: [a\n", "decoding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseNetworkFile([]byte(tt.content))

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNetworkFile_Build(t *testing.T) {
	t.Parallel()

	t.Run("ResolvesNamesAndIDs", func(t *testing.T) {
		t.Parallel()
		file, err := ParseNetworkFile([]byte(sampleNetwork))
		require.NoError(t, err)

		g, result, err := file.Build(graph.DefaultLimits())

		require.NoError(t, err)
		assert.Equal(t, &LoadResult{Users: 4, Friendships: 3}, result)
		bob, err := g.Neighbors(1)
		require.NoError(t, err)
		assert.Equal(t, []graph.UserID{0, 2}, bob)
		carol, err := g.Neighbors(2)
		require.NoError(t, err)
		assert.Equal(t, []graph.UserID{1, 3}, carol)
	})

	t.Run("UnknownReference", func(t *testing.T) {
		t.Parallel()
		file := &NetworkFile{Users: []string{"a"}, Friendships: [][]string{{"a", "zed"}}}

		_, _, err := file.Build(graph.DefaultLimits())

		assert.ErrorIs(t, err, graph.ErrUserNotFound)
		assert.Contains(t, err.Error(), "zed")
	})

	t.Run("SelfFriendship", func(t *testing.T) {
		t.Parallel()
		file := &NetworkFile{Users: []string{"a"}, Friendships: [][]string{{"a", "0"}}}

		_, _, err := file.Build(graph.DefaultLimits())

		assert.ErrorIs(t, err, graph.ErrSelfFriendship)
	})

	t.Run("TooManyUsers", func(t *testing.T) {
		t.Parallel()
		file := &NetworkFile{Users: []string{"a", "b", "c"}}

		_, _, err := file.Build(graph.Limits{MaxUsers: 2})

		assert.ErrorIs(t, err, graph.ErrCapacityExceeded)
	})
}

func TestLoadNetworkFile(t *testing.T) {
	t.Parallel()

	t.Run("FromDisk", func(t *testing.T) {
		t.Parallel()
		path := writeNetworkFile(t, t.TempDir(), sampleNetwork)

		g, result, err := LoadNetworkFile(path, graph.DefaultLimits())

		require.NoError(t, err)
		assert.Equal(t, 4, result.Users)
		id, err := g.FindByName("dave")
		require.NoError(t, err)
		assert.Equal(t, graph.UserID(3), id)
	})

	t.Run("MissingFile", func(t *testing.T) {
		t.Parallel()
		_, _, err := LoadNetworkFile(filepath.Join(t.TempDir(), "nope.yaml"), graph.DefaultLimits())

		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("ErrorNamesFile", func(t *testing.T) {
		t.Parallel()
		path := writeNetworkFile(t, t.TempDir(), "users: []\n")

		_, _, err := LoadNetworkFile(path, graph.DefaultLimits())

		require.Error(t, err)
		assert.Contains(t, err.Error(), path)
	})
}
