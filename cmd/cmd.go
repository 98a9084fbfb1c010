// Package cmd provides CLI command implementations for socialnet.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Benny93/socialnet-go/internal/config"
	"github.com/Benny93/socialnet-go/internal/ingestion"
	"github.com/Benny93/socialnet-go/internal/metrics"
	"github.com/Benny93/socialnet-go/internal/network"
	"github.com/Benny93/socialnet-go/mcp"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Globals are the flags shared by every command.
type Globals struct {
	ConfigFile string `name:"config" short:"c" type:"path" env:"SOCIALNET_CONFIG" help:"Path to YAML config file"`
	Verbose    bool   `short:"v" help:"Enable debug logging"`
}

// setup loads the configuration and builds the logger.
func (g *Globals) setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(g.ConfigFile)
	if err != nil {
		return nil, nil, err
	}
	if g.Verbose {
		cfg.LogLevel = "debug"
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newNetwork builds the Network every command works through.
func newNetwork(cfg *config.Config, logger *zap.Logger) *network.Network {
	return network.New(cfg.Limits(),
		network.WithLogger(logger),
		network.WithMetrics(metrics.New()),
	)
}

// loadInto replaces the network's graph with the contents of path.
func loadInto(net *network.Network, path string) (*ingestion.LoadResult, error) {
	g, result, err := ingestion.LoadNetworkFile(path, net.Limits())
	if err != nil {
		return nil, fmt.Errorf("loading network: %w", err)
	}
	net.Replace(g)
	return result, nil
}

// ShellCmd runs the interactive menu.
type ShellCmd struct {
	Network string `short:"n" type:"existingfile" help:"Network file to load before starting"`
}

// Run executes the shell command.
func (c *ShellCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	return c.run(ctx, cfg, logger, os.Stdin, os.Stdout, interactive)
}

func (c *ShellCmd) run(ctx context.Context, cfg *config.Config, logger *zap.Logger, in io.Reader, out io.Writer, interactive bool) error {
	net := newNetwork(cfg, logger)
	if c.Network != "" {
		result, err := loadInto(net, c.Network)
		if err != nil {
			return err
		}
		if interactive {
			color.New(color.FgGreen).Fprintf(out, "Loaded %d users and %d friendships from %s\n",
				result.Users, result.Friendships, c.Network)
		}
	}

	shell := NewShell(net, cfg.TopN, in, out)
	shell.Interactive = interactive
	return shell.Run(ctx)
}

// AnalyzeCmd loads a network file and prints the influence and community
// reports.
type AnalyzeCmd struct {
	File    string `arg:"" type:"existingfile" help:"Network file to analyze"`
	Top     int    `short:"n" help:"Number of influential users to show (defaults to top_n from config)"`
	Metrics bool   `short:"m" help:"Print operation metrics after the reports"`
}

// Run executes the analyze command.
func (c *AnalyzeCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return c.run(context.Background(), cfg, logger, os.Stdout)
}

func (c *AnalyzeCmd) run(ctx context.Context, cfg *config.Config, logger *zap.Logger, out io.Writer) error {
	net := newNetwork(cfg, logger)
	result, err := loadInto(net, c.File)
	if err != nil {
		return err
	}

	top := c.Top
	if top <= 0 {
		top = cfg.TopN
	}

	color.New(color.FgGreen).Fprintf(out, "✓ Loaded %s\n", c.File)
	fmt.Fprintf(out, "  Users:        %d\n", result.Users)
	fmt.Fprintf(out, "  Friendships:  %d\n\n", result.Friendships)

	writeInfluence(out, net.RankInfluence(ctx), top)
	fmt.Fprintln(out)
	writeCommunities(out, net.DetectCommunities(ctx))

	if c.Metrics {
		samples, err := net.Metrics().Snapshot()
		if err != nil {
			return err
		}
		headerColor.Fprintln(out, "Metrics:")
		fmt.Fprint(out, metrics.Format(samples))
	}
	return nil
}

// ServeCmd starts the MCP server with an optional network file and watch mode.
type ServeCmd struct {
	Network string `short:"n" type:"existingfile" help:"Network file to load at startup"`
	Watch   bool   `short:"w" help:"Reload the network file when it changes"`
}

// Run executes the serve command.
func (c *ServeCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Logs go to stderr; stdout carries JSON-RPC only.
	return c.run(ctx, cfg, logger, os.Stdin, os.Stdout)
}

func (c *ServeCmd) run(ctx context.Context, cfg *config.Config, logger *zap.Logger, in io.Reader, out io.Writer) error {
	if c.Watch && c.Network == "" {
		return errors.New("--watch requires --network")
	}

	net := newNetwork(cfg, logger)
	if c.Network != "" {
		if _, err := loadInto(net, c.Network); err != nil {
			return err
		}
	}

	server := mcp.NewServer(net, logger)
	if !c.Watch {
		logger.Info("starting MCP server")
		return ignoreCanceled(server.Run(ctx, in, out))
	}

	logger.Info("starting MCP server with watch mode", zap.String("network", c.Network))

	grp, gctx := errgroup.WithContext(ctx)
	watchCtx, cancelWatch := context.WithCancel(gctx)
	defer cancelWatch()

	grp.Go(func() error {
		// The watcher lives as long as the client connection.
		defer cancelWatch()
		return ignoreCanceled(server.Run(gctx, in, out))
	})
	grp.Go(func() error {
		err := watchNetworkFile(watchCtx, c.Network, net, logger, ingestion.WatchOptions{})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("network watcher stopped", zap.Error(err))
			return fmt.Errorf("watching %s: %w", c.Network, err)
		}
		return nil
	})

	return grp.Wait()
}

// watchNetworkFile is replaced in tests.
var watchNetworkFile = ingestion.WatchNetworkFile

// ignoreCanceled treats a cancelled session as a clean shutdown.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// ConfigCmd prints the effective configuration.
type ConfigCmd struct{}

// Run executes the config command.
func (c *ConfigCmd) Run(g *Globals) error {
	cfg, err := config.Load(g.ConfigFile)
	if err != nil {
		return err
	}
	return c.run(cfg, os.Stdout)
}

func (c *ConfigCmd) run(cfg *config.Config, out io.Writer) error {
	text, err := cfg.YAML()
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, text)
	return err
}

// CLI is the root Kong command structure.
type CLI struct {
	Globals

	Version kong.VersionFlag `help:"Show version information"`

	// Commands
	Shell   ShellCmd   `cmd:"" default:"withargs" help:"Run the interactive social network menu"`
	Analyze AnalyzeCmd `cmd:"" help:"Print influence and community reports for a network file"`
	Serve   ServeCmd   `cmd:"" help:"Start MCP server (stdio transport) with optional watch mode"`
	Config  ConfigCmd  `cmd:"" help:"Print the effective configuration as YAML"`
}

// NewCLI creates a new CLI instance.
func NewCLI() *CLI {
	return &CLI{}
}

// Execute parses command-line arguments and executes the selected command.
func (c *CLI) Execute(args []string) error {
	parser, err := kong.New(c,
		kong.Name("socialnet"),
		kong.Description("In-memory social network analysis: friend distances, influence and communities"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)
	if err != nil {
		return err
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kongCtx.Run(&c.Globals)
}
