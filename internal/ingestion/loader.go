// Package ingestion loads social networks from YAML network files and keeps
// a running Network in sync with the file on disk.
package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Benny93/socialnet-go/internal/graph"
)

// NetworkFile is the on-disk description of a social network.
//
// Friendship endpoints are user references: a numeric identifier or a name.
type NetworkFile struct {
	Users       []string   `yaml:"users" validate:"required,min=1"`
	Friendships [][]string `yaml:"friendships" validate:"omitempty,dive,len=2,dive,required"`
}

// LoadResult summarizes a loaded network file.
type LoadResult struct {
	Users       int
	Friendships int
}

var validate = validator.New()

// ParseNetworkFile decodes and validates a network file.
func ParseNetworkFile(data []byte) (*NetworkFile, error) {
	var file NetworkFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding network file: %w", err)
	}

	if err := validate.Struct(&file); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return nil, fmt.Errorf("invalid network file: %s failed %q", fe.Namespace(), fe.Tag())
		}
		return nil, fmt.Errorf("invalid network file: %w", err)
	}
	return &file, nil
}

// Build creates a fresh graph from the file. Users are added in file order,
// so the n-th entry receives identifier n.
func (f *NetworkFile) Build(limits graph.Limits) (*graph.SocialGraph, *LoadResult, error) {
	g := graph.NewSocialGraph(limits)

	for i, name := range f.Users {
		if _, err := g.AddUser(name); err != nil {
			return nil, nil, fmt.Errorf("user %d (%s): %w", i, name, err)
		}
	}

	for i, pair := range f.Friendships {
		a, err := g.Resolve(pair[0])
		if err != nil {
			return nil, nil, fmt.Errorf("friendship %d: %q: %w", i, pair[0], err)
		}
		b, err := g.Resolve(pair[1])
		if err != nil {
			return nil, nil, fmt.Errorf("friendship %d: %q: %w", i, pair[1], err)
		}
		if err := g.AddFriendship(a, b); err != nil {
			return nil, nil, fmt.Errorf("friendship %d (%s, %s): %w", i, pair[0], pair[1], err)
		}
	}

	return g, &LoadResult{Users: g.UserCount(), Friendships: g.FriendshipCount()}, nil
}

// LoadNetworkFile reads, validates and builds the network file at path.
func LoadNetworkFile(path string, limits graph.Limits) (*graph.SocialGraph, *LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading network file: %w", err)
	}

	file, err := ParseNetworkFile(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	g, result, err := file.Build(limits)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, result, nil
}
