package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	// Packages
	kong "github.com/alecthomas/kong"
	version "github.com/dilettacal/digital-twin/pkg/version"
	client "github.com/mutablelogic/go-client"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type Globals struct {
	// Debugging
	Debug   bool `name:"debug" help:"Enable debug logging"`
	Verbose bool `name:"verbose" help:"Trace client requests and responses"`
	LogJSON bool `name:"log-json" env:"LOG_JSON" help:"Write logs as JSON"`

	// Client
	Endpoint string        `name:"endpoint" env:"TWIN_ENDPOINT" default:"http://localhost:8000/api" help:"Chat service endpoint"`
	Timeout  time.Duration `name:"timeout" env:"TWIN_TIMEOUT" default:"60s" help:"Timeout for non-streaming requests"`

	// Private
	ctx      context.Context
	logger   *slog.Logger
	execName string
}

type CLI struct {
	Globals

	// Server
	ServerCommands

	// Client
	Chat     ChatCommand     `cmd:"" help:"Start an interactive conversation" group:"CLIENT"`
	Ask      AskCommand      `cmd:"" help:"Send a single message" group:"CLIENT"`
	History  HistoryCommand  `cmd:"" help:"Show the stored messages of a session" group:"CLIENT"`
	Sessions SessionsCommand `cmd:"" help:"List stored sessions" group:"CLIENT"`
	Health   HealthCommand   `cmd:"" help:"Check the chat service" group:"CLIENT"`

	// Other
	Version VersionCommand `cmd:"" help:"Print version information"`
}

////////////////////////////////////////////////////////////////////////////////
// MAIN

func main() {
	// Create a cli parser
	cli := CLI{}
	cmd := kong.Parse(&cli,
		kong.Name(execName()),
		kong.Description("AI digital twin chat service and client"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	// Create a context
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	cli.Globals.ctx = ctx
	cli.Globals.execName = execName()
	cli.Globals.logger = newLogger(cli.Debug, cli.LogJSON)
	slog.SetDefault(cli.Globals.logger)

	// Run the command
	cmd.FatalIfErrorf(cmd.Run(&cli.Globals))
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func execName() string {
	// The name of the executable
	name, err := os.Executable()
	if err != nil {
		panic(err)
	} else {
		return filepath.Base(name)
	}
}

func newLogger(debug, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
	}
	if json {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// clientOpts returns the options for clients of remote services
func (g *Globals) clientOpts() []client.ClientOpt {
	opts := []client.ClientOpt{
		client.OptUserAgent(version.UserAgent(g.execName)),
	}
	if g.Verbose {
		opts = append(opts, client.OptTrace(os.Stderr, true))
	}
	if g.Timeout > 0 {
		opts = append(opts, client.OptTimeout(g.Timeout))
	}
	return opts
}
