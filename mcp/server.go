// Package mcp provides the MCP (Model Context Protocol) server for socialnet.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/Benny93/socialnet-go/internal/graph"
	"github.com/Benny93/socialnet-go/internal/metrics"
	"github.com/Benny93/socialnet-go/internal/network"
)

const (
	serverName    = "socialnet-go"
	serverVersion = "0.1.0"

	defaultInfluenceLimit = 10
)

// Server represents the MCP server.
type Server struct {
	network Backend
	logger  *zap.Logger
	server  *mcp.Server
}

// Backend is the part of network.Network the server needs.
type Backend interface {
	AddUser(name string) (graph.UserID, error)
	AddFriendship(a, b graph.UserID) error
	Resolve(ref string) (graph.UserID, error)
	Profile(id graph.UserID) (graph.Profile, error)
	Users() []graph.Profile
	FriendsAtDistance(ctx context.Context, start graph.UserID, k int) ([]graph.Profile, error)
	CommonFriends(ctx context.Context, a, b graph.UserID) ([]graph.Profile, error)
	RankInfluence(ctx context.Context) []network.RankedUser
	DetectCommunities(ctx context.Context) []network.CommunityView
	Stats() network.Stats
	Limits() graph.Limits
	Metrics() *metrics.Metrics
}

// Tool inputs. Their schemas are declared in registerTools and enforced by
// the SDK before a handler runs.
type (
	AddUserInput struct {
		Name string `json:"name"`
	}

	UserInput struct {
		User string `json:"user"`
	}

	UserPairInput struct {
		UserA string `json:"user_a"`
		UserB string `json:"user_b"`
	}

	DistanceInput struct {
		User     string `json:"user"`
		Distance int    `json:"distance"`
	}

	InfluenceInput struct {
		Limit int `json:"limit,omitempty"`
	}

	NoInput struct{}
)

// NewServer creates a new MCP server with all socialnet tools and resources
// registered. A nil logger disables logging.
func NewServer(backend Backend, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		network: backend,
		logger:  logger,
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	s.registerTools()
	s.registerResources()
	return s
}

// Run serves one session over newline-delimited JSON on stdin and stdout
// until the client disconnects or ctx is cancelled. Neither stream is closed.
func (s *Server) Run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	if stdin == nil || stdout == nil {
		return errors.New("stdin and stdout must not be nil")
	}
	return s.server.Run(ctx, &mcp.IOTransport{
		Reader: io.NopCloser(stdin),
		Writer: nopWriteCloser{stdout},
	})
}

// Connect starts a session over an arbitrary transport.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// Schemas

func objectSchema(required []string, properties map[string]*jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

func userRefSchema(description string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Description: description + " (a numeric identifier selects by ID)",
		MinLength:   jsonschema.Ptr(1),
	}
}

func (s *Server) registerTools() {
	addTool(s, &mcp.Tool{
		Name:        "socialnet_add_user",
		Description: "Register a new user. Returns the assigned identifier.",
		InputSchema: objectSchema([]string{"name"}, map[string]*jsonschema.Schema{
			"name": {
				Type:        "string",
				Description: "Display name, truncated to the configured length",
				MinLength:   jsonschema.Ptr(1),
			},
		}),
	}, s.handleAddUser)

	addTool(s, &mcp.Tool{
		Name:        "socialnet_add_friendship",
		Description: "Create a mutual friendship between two users. Adding an existing friendship is a no-op.",
		InputSchema: objectSchema([]string{"user_a", "user_b"}, map[string]*jsonschema.Schema{
			"user_a": userRefSchema("Identifier or name of the first user"),
			"user_b": userRefSchema("Identifier or name of the second user"),
		}),
	}, s.handleAddFriendship)

	addTool(s, &mcp.Tool{
		Name:        "socialnet_profile",
		Description: "Show a user's name, friends, influence score and community.",
		InputSchema: objectSchema([]string{"user"}, map[string]*jsonschema.Schema{
			"user": userRefSchema("Identifier or name of the user"),
		}),
	}, s.handleProfile)

	addTool(s, &mcp.Tool{
		Name:        "socialnet_list_users",
		Description: "List all users in creation order.",
		InputSchema: objectSchema(nil, map[string]*jsonschema.Schema{}),
	}, s.handleListUsers)

	addTool(s, &mcp.Tool{
		Name:        "socialnet_friends_at_distance",
		Description: "List the users whose shortest friendship path from the given user is exactly the given number of hops.",
		InputSchema: objectSchema([]string{"user", "distance"}, map[string]*jsonschema.Schema{
			"user":     userRefSchema("Identifier or name of the starting user"),
			"distance": {Type: "integer", Description: "Exact number of hops"},
		}),
	}, s.handleFriendsAtDistance)

	addTool(s, &mcp.Tool{
		Name:        "socialnet_common_friends",
		Description: "List the friends two users have in common.",
		InputSchema: objectSchema([]string{"user_a", "user_b"}, map[string]*jsonschema.Schema{
			"user_a": userRefSchema("Identifier or name of the first user"),
			"user_b": userRefSchema("Identifier or name of the second user"),
		}),
	}, s.handleCommonFriends)

	addTool(s, &mcp.Tool{
		Name:        "socialnet_influence",
		Description: "Rank users by influence score (degree plus a tenth of their friends' degrees).",
		InputSchema: objectSchema(nil, map[string]*jsonschema.Schema{
			"limit": {
				Type:        "integer",
				Description: "Maximum number of users to show",
				Minimum:     jsonschema.Ptr(1.0),
				Default:     json.RawMessage(fmt.Sprint(defaultInfluenceLimit)),
			},
		}),
	}, s.handleInfluence)

	addTool(s, &mcp.Tool{
		Name:        "socialnet_communities",
		Description: "Detect communities (connected groups of friends) and list their members.",
		InputSchema: objectSchema(nil, map[string]*jsonschema.Schema{}),
	}, s.handleCommunities)
}

// addTool registers a handler that renders its result as markdown text.
// Handler errors are reported to the client as tool errors.
func addTool[In any](s *Server, tool *mcp.Tool, handler func(context.Context, In) (string, error)) {
	mcp.AddTool(s.server, tool, func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
		text, err := handler(ctx, in)
		if err != nil {
			s.logger.Debug("tool call failed", zap.String("tool", tool.Name), zap.Error(err))
			return nil, nil, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil, nil
	})
}

func (s *Server) registerResources() {
	resources := []struct {
		resource *mcp.Resource
		read     func() (string, error)
	}{
		{
			resource: &mcp.Resource{
				URI:         "socialnet://overview",
				Name:        "Network Overview",
				Description: "User and friendship counts and capacity limits",
				MIMEType:    "text/plain",
			},
			read: func() (string, error) { return s.getOverview(), nil },
		},
		{
			resource: &mcp.Resource{
				URI:         "socialnet://schema",
				Name:        "Network Schema",
				Description: "Description of the social network data model",
				MIMEType:    "text/plain",
			},
			read: func() (string, error) { return getSchema(), nil },
		},
		{
			resource: &mcp.Resource{
				URI:         "socialnet://metrics",
				Name:        "Operation Metrics",
				Description: "Counters and gauges collected since startup",
				MIMEType:    "text/plain",
			},
			read: s.getMetrics,
		},
	}

	for _, r := range resources {
		s.server.AddResource(r.resource, func(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			text, err := r.read()
			if err != nil {
				return nil, err
			}
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{{
					URI:      req.Params.URI,
					MIMEType: r.resource.MIMEType,
					Text:     text,
				}},
			}, nil
		})
	}
}

// resolve turns a user reference argument into an identifier.
func (s *Server) resolve(field, ref string) (graph.UserID, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, fmt.Errorf("%s must not be blank", field)
	}
	id, err := s.network.Resolve(ref)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", field, ref, err)
	}
	return id, nil
}

func (s *Server) resolvePair(in UserPairInput) (graph.UserID, graph.UserID, error) {
	a, err := s.resolve("user_a", in.UserA)
	if err != nil {
		return 0, 0, err
	}
	b, err := s.resolve("user_b", in.UserB)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// Tool Handlers

func (s *Server) handleAddUser(_ context.Context, in AddUserInput) (string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", errors.New("name must not be blank")
	}
	id, err := s.network.AddUser(name)
	if err != nil {
		return "", err
	}
	p, err := s.network.Profile(id)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Added user **%s** with ID %d.", p.Name, id), nil
}

func (s *Server) handleAddFriendship(_ context.Context, in UserPairInput) (string, error) {
	a, b, err := s.resolvePair(in)
	if err != nil {
		return "", err
	}
	if err := s.network.AddFriendship(a, b); err != nil {
		return "", err
	}
	pa, _ := s.network.Profile(a)
	pb, _ := s.network.Profile(b)
	return fmt.Sprintf("**%s** (%d) and **%s** (%d) are now friends.", pa.Name, a, pb.Name, b), nil
}

func (s *Server) handleProfile(_ context.Context, in UserInput) (string, error) {
	id, err := s.resolve("user", in.User)
	if err != nil {
		return "", err
	}
	p, err := s.network.Profile(id)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", p.Name)
	fmt.Fprintf(&sb, "**ID:** %d\n", p.ID)
	fmt.Fprintf(&sb, "**Friends:** %d\n", p.Degree())
	fmt.Fprintf(&sb, "**Influence:** %.2f\n", p.Influence)
	if p.Community == graph.NoCommunity {
		sb.WriteString("**Community:** not computed\n")
	} else {
		fmt.Fprintf(&sb, "**Community:** %d\n", p.Community)
	}

	if len(p.Friends) > 0 {
		sb.WriteString("\n### Friends\n\n")
		for _, fid := range p.Friends {
			friend, err := s.network.Profile(fid)
			if err != nil {
				continue
			}
			fmt.Fprintf(&sb, "- %s (%d)\n", friend.Name, fid)
		}
	}
	return sb.String(), nil
}

func (s *Server) handleListUsers(_ context.Context, _ NoInput) (string, error) {
	users := s.network.Users()
	if len(users) == 0 {
		return "No users yet.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Users (%d)\n\n", len(users))
	for _, u := range users {
		fmt.Fprintf(&sb, "- %d: %s (%d friends)\n", u.ID, u.Name, u.Degree())
	}
	return sb.String(), nil
}

func (s *Server) handleFriendsAtDistance(ctx context.Context, in DistanceInput) (string, error) {
	id, err := s.resolve("user", in.User)
	if err != nil {
		return "", err
	}
	users, err := s.network.FriendsAtDistance(ctx, id, in.Distance)
	if err != nil {
		return "", err
	}
	start, _ := s.network.Profile(id)

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Users at distance %d from %s\n\n", in.Distance, start.Name)
	if len(users) == 0 {
		sb.WriteString("No users found at this distance.\n")
		return sb.String(), nil
	}
	writeProfileList(&sb, users)
	return sb.String(), nil
}

func (s *Server) handleCommonFriends(ctx context.Context, in UserPairInput) (string, error) {
	a, b, err := s.resolvePair(in)
	if err != nil {
		return "", err
	}
	users, err := s.network.CommonFriends(ctx, a, b)
	if err != nil {
		return "", err
	}
	pa, _ := s.network.Profile(a)
	pb, _ := s.network.Profile(b)

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Common friends of %s and %s\n\n", pa.Name, pb.Name)
	if len(users) == 0 {
		sb.WriteString("No common friends.\n")
		return sb.String(), nil
	}
	writeProfileList(&sb, users)
	return sb.String(), nil
}

func (s *Server) handleInfluence(ctx context.Context, in InfluenceInput) (string, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultInfluenceLimit
	}
	ranking := s.network.RankInfluence(ctx)
	if len(ranking) == 0 {
		return "No users yet.", nil
	}
	if limit < len(ranking) {
		ranking = ranking[:limit]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Top %d influential users\n\n", len(ranking))
	sb.WriteString("| Rank | User | ID | Score |\n")
	sb.WriteString("|------|------|----|-------|\n")
	for _, r := range ranking {
		fmt.Fprintf(&sb, "| %d | %s | %d | %.2f |\n", r.Rank, r.User.Name, r.User.ID, r.User.Influence)
	}
	return sb.String(), nil
}

func (s *Server) handleCommunities(ctx context.Context, _ NoInput) (string, error) {
	communities := s.network.DetectCommunities(ctx)
	if len(communities) == 0 {
		return "No users yet.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %d communities\n\n", len(communities))
	for _, c := range communities {
		fmt.Fprintf(&sb, "### Community %d (%d members)\n", c.Representative, len(c.Members))
		writeProfileList(&sb, c.Members)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func writeProfileList(sb *strings.Builder, users []graph.Profile) {
	for _, u := range users {
		fmt.Fprintf(sb, "- %s (%d)\n", u.Name, u.ID)
	}
}

// Resource Handlers

func (s *Server) getOverview() string {
	stats := s.network.Stats()
	limits := s.network.Limits()

	var sb strings.Builder
	sb.WriteString("# Social Network Overview\n\n")
	fmt.Fprintf(&sb, "**Users:** %d / %d\n", stats.Users, limits.MaxUsers)
	fmt.Fprintf(&sb, "**Friendships:** %d\n", stats.Friendships)
	fmt.Fprintf(&sb, "**Max friends per user:** %d\n", limits.MaxConnections)
	fmt.Fprintf(&sb, "**Max name length:** %d\n", limits.MaxNameLength)
	return sb.String()
}

func getSchema() string {
	var sb strings.Builder
	sb.WriteString("# Social Network Schema\n\n")
	sb.WriteString("## User\n\n")
	sb.WriteString("| Field | Description |\n")
	sb.WriteString("|-------|-------------|\n")
	sb.WriteString("| `id` | Sequential identifier assigned at creation, starting at 0 |\n")
	sb.WriteString("| `name` | Display name, not unique |\n")
	sb.WriteString("| `friends` | Identifiers of friends in the order the friendships were made |\n")
	sb.WriteString("| `influence` | Degree plus 0.1 times the sum of the friends' degrees |\n")
	sb.WriteString("| `community` | Representative of the user's connected group |\n")
	sb.WriteString("\n## Friendship\n\n")
	sb.WriteString("Undirected and mutual. A user cannot befriend themselves.\n")
	sb.WriteString("\n## User references\n\n")
	sb.WriteString("Tools accept a numeric identifier or a name. Names resolve to the earliest created user with that name.\n")
	return sb.String()
}

func (s *Server) getMetrics() (string, error) {
	m := s.network.Metrics()
	if m == nil {
		return "Metrics are disabled.", nil
	}
	samples, err := m.Snapshot()
	if err != nil {
		return "", fmt.Errorf("collecting metrics: %w", err)
	}
	return metrics.Format(samples), nil
}
