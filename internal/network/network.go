// Package network provides Network, the context object every socialnet
// front end works through.
//
// A Network is constructed once at startup, passed by reference to the shell,
// the MCP server and the file watcher, and discarded at shutdown. It owns the
// current SocialGraph and wraps each core operation with logging, metrics and
// tracing. Queries hold a shared lock for their whole run and mutations an
// exclusive one, so a query never observes a mutation or a graph reload that
// happens while it runs.
package network

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Benny93/socialnet-go/internal/analysis"
	"github.com/Benny93/socialnet-go/internal/graph"
	"github.com/Benny93/socialnet-go/internal/metrics"
)

var networkTracer = otel.Tracer("socialnet.network")

// Operation names used in logs, metrics and spans.
const (
	OpAddUser           = "add_user"
	OpAddFriendship     = "add_friendship"
	OpFindByName        = "find_by_name"
	OpFriendsAtDistance = "friends_at_distance"
	OpCommonFriends     = "common_friends"
	OpRankInfluence     = "rank_influence"
	OpDetectCommunities = "detect_communities"
	OpReplace           = "replace"
)

// RankedUser is one entry of an influence ranking.
type RankedUser struct {
	// Rank is the 1-based position in the ranking.
	Rank int

	// User carries the freshly computed score in its Influence field.
	User graph.Profile
}

// CommunityView is a detected community with its member profiles.
type CommunityView struct {
	Representative graph.UserID
	Members        []graph.Profile
}

// Stats summarizes the size of the network.
type Stats struct {
	Users       int `json:"users"`
	Friendships int `json:"friendships"`
}

// Network is the shared, explicitly passed state of a socialnet process.
type Network struct {
	mu      sync.RWMutex
	graph   *graph.SocialGraph
	logger  *zap.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Network.
type Option func(*Network)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(n *Network) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(n *Network) {
		n.metrics = m
	}
}

// WithTracer overrides the tracer used for query spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(n *Network) {
		if tracer != nil {
			n.tracer = tracer
		}
	}
}

// New creates a Network around an empty graph with the given limits.
func New(limits graph.Limits, opts ...Option) *Network {
	n := &Network{
		graph:  graph.NewSocialGraph(limits),
		logger: zap.NewNop(),
		tracer: networkTracer,
	}
	for _, opt := range opts {
		opt(n)
	}
	n.metrics.SetSize(0, 0)
	return n
}

// Limits returns the capacity limits of the current graph.
func (n *Network) Limits() graph.Limits {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.graph.Limits()
}

// Metrics returns the metrics sink, which may be nil.
func (n *Network) Metrics() *metrics.Metrics {
	return n.metrics
}

// Stats returns the current user and friendship counts.
func (n *Network) Stats() Stats {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return Stats{Users: n.graph.UserCount(), Friendships: n.graph.FriendshipCount()}
}

// Replace swaps in a new graph, typically one loaded from a network file.
func (n *Network) Replace(g *graph.SocialGraph) {
	start := time.Now()
	n.mu.Lock()
	defer n.mu.Unlock()

	n.graph = g
	n.updateSize()
	n.metrics.Observe(OpReplace, start, nil)
	n.logger.Info("graph replaced",
		zap.Int("users", g.UserCount()),
		zap.Int("friendships", g.FriendshipCount()),
	)
}

// AddUser registers a user and returns its identifier.
func (n *Network) AddUser(name string) (graph.UserID, error) {
	start := time.Now()
	n.mu.Lock()
	defer n.mu.Unlock()

	id, err := n.graph.AddUser(name)
	n.metrics.Observe(OpAddUser, start, err)
	if err != nil {
		n.logger.Warn("add user rejected", zap.String("name", name), zap.Error(err))
		return 0, err
	}
	n.updateSize()
	n.logger.Debug("user added", zap.Int("user_id", int(id)), zap.String("name", name))
	return id, nil
}

// AddFriendship connects two users. See graph.SocialGraph.AddFriendship.
func (n *Network) AddFriendship(a, b graph.UserID) error {
	start := time.Now()
	n.mu.Lock()
	defer n.mu.Unlock()

	err := n.graph.AddFriendship(a, b)
	n.metrics.Observe(OpAddFriendship, start, err)
	if err != nil {
		n.logger.Warn("add friendship rejected",
			zap.Int("user_a", int(a)),
			zap.Int("user_b", int(b)),
			zap.Error(err),
		)
		return err
	}
	n.updateSize()
	n.logger.Debug("friendship added", zap.Int("user_a", int(a)), zap.Int("user_b", int(b)))
	return nil
}

// FindByName returns the first created user with exactly this name.
func (n *Network) FindByName(name string) (graph.UserID, error) {
	start := time.Now()
	n.mu.RLock()
	defer n.mu.RUnlock()

	id, err := n.graph.FindByName(name)
	n.metrics.Observe(OpFindByName, start, err)
	return id, err
}

// Resolve turns a numeric identifier or a name into an identifier.
func (n *Network) Resolve(ref string) (graph.UserID, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.graph.Resolve(ref)
}

// Profile returns a copy of one user.
func (n *Network) Profile(id graph.UserID) (graph.Profile, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.graph.User(id)
}

// Users returns copies of all users in creation order.
func (n *Network) Users() []graph.Profile {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.graph.Users()
}

// FriendsAtDistance returns the users exactly k hops from start, in
// ascending identifier order.
func (n *Network) FriendsAtDistance(ctx context.Context, start graph.UserID, k int) ([]graph.Profile, error) {
	began := time.Now()
	_, span := n.tracer.Start(ctx, "Network.FriendsAtDistance",
		trace.WithAttributes(
			attribute.Int("start", int(start)),
			attribute.Int("distance", k),
		),
	)
	defer span.End()

	n.mu.RLock()
	defer n.mu.RUnlock()

	ids, err := analysis.FriendsAtDistance(n.graph.Adjacency(), start, k)
	n.metrics.Observe(OpFriendsAtDistance, began, err)
	if err != nil {
		n.fail(span, OpFriendsAtDistance, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("result_count", len(ids)))
	return n.profiles(ids), nil
}

// CommonFriends returns the friends a and b share, in a's friend order.
func (n *Network) CommonFriends(ctx context.Context, a, b graph.UserID) ([]graph.Profile, error) {
	began := time.Now()
	_, span := n.tracer.Start(ctx, "Network.CommonFriends",
		trace.WithAttributes(
			attribute.Int("user_a", int(a)),
			attribute.Int("user_b", int(b)),
		),
	)
	defer span.End()

	n.mu.RLock()
	defer n.mu.RUnlock()

	ids, err := analysis.CommonFriends(n.graph.Adjacency(), a, b)
	n.metrics.Observe(OpCommonFriends, began, err)
	if err != nil {
		n.fail(span, OpCommonFriends, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("result_count", len(ids)))
	return n.profiles(ids), nil
}

// RankInfluence recomputes every influence score, stores the scores on the
// users and returns the full ranking, highest first.
func (n *Network) RankInfluence(ctx context.Context) []RankedUser {
	began := time.Now()
	_, span := n.tracer.Start(ctx, "Network.RankInfluence")
	defer span.End()

	n.mu.Lock()
	defer n.mu.Unlock()

	ranking := analysis.RankInfluence(n.graph.Adjacency())
	scores := make([]float64, len(ranking))
	for _, r := range ranking {
		scores[r.ID] = r.Score
	}
	n.graph.AssignInfluence(scores)

	result := make([]RankedUser, 0, len(ranking))
	for _, r := range ranking {
		p, err := n.graph.User(r.ID)
		if err != nil {
			n.logger.Warn("ranked user missing", zap.Int("user_id", int(r.ID)), zap.Error(err))
			continue
		}
		result = append(result, RankedUser{Rank: len(result) + 1, User: p})
	}

	n.metrics.Observe(OpRankInfluence, began, nil)
	span.SetAttributes(attribute.Int("user_count", len(result)))
	n.logger.Debug("influence ranked", zap.Int("users", len(result)))
	return result
}

// DetectCommunities recomputes the connected communities, stores each user's
// label and returns the communities ordered by representative.
func (n *Network) DetectCommunities(ctx context.Context) []CommunityView {
	began := time.Now()
	_, span := n.tracer.Start(ctx, "Network.DetectCommunities")
	defer span.End()

	n.mu.Lock()
	defer n.mu.Unlock()

	partition := analysis.DetectCommunities(n.graph.Adjacency())
	n.graph.AssignCommunities(partition.Labels)

	views := make([]CommunityView, len(partition.Communities))
	for i, c := range partition.Communities {
		views[i] = CommunityView{
			Representative: c.Representative,
			Members:        n.profiles(c.Members),
		}
	}

	n.metrics.Observe(OpDetectCommunities, began, nil)
	n.metrics.SetCommunities(len(views))
	span.SetAttributes(attribute.Int("community_count", len(views)))
	n.logger.Debug("communities detected", zap.Int("communities", len(views)))
	return views
}

// profiles must be called with the lock held.
func (n *Network) profiles(ids []graph.UserID) []graph.Profile {
	result := make([]graph.Profile, 0, len(ids))
	for _, id := range ids {
		if p, err := n.graph.User(id); err == nil {
			result = append(result, p)
		}
	}
	return result
}

// updateSize must be called with the lock held.
func (n *Network) updateSize() {
	n.metrics.SetSize(n.graph.UserCount(), n.graph.FriendshipCount())
}

func (n *Network) fail(span trace.Span, op string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	n.logger.Warn("query rejected", zap.String("operation", op), zap.Error(err))
}
