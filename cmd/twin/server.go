package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	// Packages
	twin "github.com/dilettacal/digital-twin"
	httphandler "github.com/dilettacal/digital-twin/pkg/httphandler"
	manager "github.com/dilettacal/digital-twin/pkg/manager"
	prompt "github.com/dilettacal/digital-twin/pkg/prompt"
	bedrock "github.com/dilettacal/digital-twin/pkg/provider/bedrock"
	echo "github.com/dilettacal/digital-twin/pkg/provider/echo"
	ollama "github.com/dilettacal/digital-twin/pkg/provider/ollama"
	openai "github.com/dilettacal/digital-twin/pkg/provider/openai"
	ratelimit "github.com/dilettacal/digital-twin/pkg/ratelimit"
	schema "github.com/dilettacal/digital-twin/pkg/schema"
	store "github.com/dilettacal/digital-twin/pkg/store"
	version "github.com/dilettacal/digital-twin/pkg/version"
	client "github.com/mutablelogic/go-client"
	httprouter "github.com/mutablelogic/go-server/pkg/httprouter"
	httpserver "github.com/mutablelogic/go-server/pkg/httpserver"
	errgroup "golang.org/x/sync/errgroup"
)

type ServerCommands struct {
	// Commands
	RunServer RunServer `cmd:"" name:"run" help:"Run the chat service." group:"SERVER"`
}

type RunServer struct {
	// Listener
	Addr   string `name:"addr" env:"TWIN_ADDR" default:":8000" help:"Address to listen on"`
	Prefix string `name:"prefix" env:"TWIN_PREFIX" default:"/api" help:"Path prefix for all endpoints"`
	Origin string `name:"origin" env:"CORS_ORIGINS" default:"" help:"Allowed CORS origin"`

	// Completion backend
	Provider string `name:"provider" env:"AI_PROVIDER" enum:"bedrock,ollama,openai,echo" default:"bedrock" help:"Completion backend (bedrock, ollama, openai, echo)"`
	Bedrock  struct {
		Model  string `name:"model" env:"BEDROCK_MODEL_ID" help:"Bedrock model or inference profile"`
		Region string `name:"region" env:"DEFAULT_AWS_REGION" help:"AWS region for Bedrock"`
	} `embed:"" prefix:"bedrock."`
	Ollama struct {
		URL   string `name:"url" env:"OLLAMA_BASE_URL" help:"Ollama server"`
		Model string `name:"model" env:"OLLAMA_MODEL" help:"Ollama model"`
	} `embed:"" prefix:"ollama."`
	OpenAI struct {
		Key   string `name:"key" env:"OPENAI_API_KEY" help:"OpenAI API key"`
		Model string `name:"model" env:"OPENAI_MODEL" help:"OpenAI model"`
		URL   string `name:"url" env:"OPENAI_BASE_URL" help:"OpenAI compatible endpoint"`
	} `embed:"" prefix:"openai."`

	// Conversation memory
	UseS3      bool   `name:"s3" env:"USE_S3" help:"Store conversations in S3"`
	S3Bucket   string `name:"s3-bucket" env:"S3_BUCKET" help:"S3 bucket for conversations"`
	S3Prefix   string `name:"s3-prefix" env:"S3_PREFIX" help:"S3 key prefix for conversations"`
	HistoryDir string `name:"history-dir" env:"HISTORY_DIR" help:"Directory for conversations, or memory only when empty"`

	// Persona
	PersonaFile  string `name:"persona" env:"PERSONA_FILE" type:"existingfile" help:"Persona YAML file"`
	TemplateFile string `name:"template" env:"PROMPT_TEMPLATE_FILE" type:"existingfile" help:"System prompt template file"`

	// Rate limiting
	RateLimit struct {
		Max      int     `name:"max" env:"RATE_LIMIT_MAX_REQUESTS" default:"10" help:"Maximum requests per window"`
		Window   int     `name:"window" env:"RATE_LIMIT_WINDOW_SECONDS" default:"60" help:"Rate limit window in seconds"`
		Cooldown float64 `name:"cooldown" env:"RATE_LIMIT_COOLDOWN_SECONDS" default:"2" help:"Minimum seconds between requests"`
	} `embed:"" prefix:"rate-limit."`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *RunServer) Run(ctx *Globals) error {
	// Create the manager
	generator, err := cmd.Generator(ctx)
	if err != nil {
		return err
	}
	store, err := cmd.Store(ctx)
	if err != nil {
		return err
	}
	prompt, err := cmd.Prompt()
	if err != nil {
		return err
	}
	manager, err := manager.New(
		manager.WithGenerator(generator),
		manager.WithStore(store),
		manager.WithPrompt(prompt),
		manager.WithLogger(ctx.logger),
	)
	if err != nil {
		return err
	}

	// Create the rate limiter
	limiter, err := ratelimit.New(
		cmd.RateLimit.Max,
		time.Duration(cmd.RateLimit.Window)*time.Second,
		time.Duration(cmd.RateLimit.Cooldown*float64(time.Second)),
		ratelimit.WithLogger(ctx.logger),
	)
	if err != nil {
		return err
	}

	// Create the HTTP router
	versionTag := version.Version()
	router, err := httprouter.NewRouter(ctx.ctx, cmd.Prefix, cmd.Origin, "AI Digital Twin", versionTag)
	if err != nil {
		return err
	} else if err := httphandler.RegisterHandlers(manager, limiter, router, true); err != nil {
		return err
	}

	// Create the server
	server, err := httpserver.New(cmd.Addr, router, nil)
	if err != nil {
		return err
	}

	// Run the server and the rate limit janitor until cancelled
	ctx.logger.Info("started", "name", ctx.execName, "version", versionTag, "addr", cmd.Addr, "provider", generator.Name(), "model", generator.Model(), "storage", store.Name())
	group, groupctx := errgroup.WithContext(ctx.ctx)
	group.Go(func() error {
		return server.Run(groupctx)
	})
	group.Go(func() error {
		return limiter.Run(groupctx, time.Minute, ratelimit.DefaultMaxAge)
	})
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	// Return success
	ctx.logger.Info("stopped", "name", ctx.execName, "version", versionTag)
	return nil
}

// Generator returns the configured completion backend
func (cmd *RunServer) Generator(ctx *Globals) (twin.Generator, error) {
	switch strings.ToLower(cmd.Provider) {
	case "bedrock":
		cfg, err := bedrock.LoadConfig(ctx.ctx, cmd.Bedrock.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
		}
		return bedrock.NewWithConfig(cfg, cmd.Bedrock.Model, bedrock.WithLogger(ctx.logger))
	case "ollama":
		return ollama.New(cmd.Ollama.URL, cmd.Ollama.Model, ctx.clientOpts()...)
	case "openai":
		opts := ctx.clientOpts()
		if cmd.OpenAI.URL != "" {
			opts = append(opts, client.OptEndpoint(cmd.OpenAI.URL))
		}
		return openai.New(cmd.OpenAI.Key, cmd.OpenAI.Model, opts...)
	case "echo":
		return echo.New()
	default:
		return nil, twin.ErrBadParameter.Withf("unknown provider %q", cmd.Provider)
	}
}

// Store returns the configured conversation store
func (cmd *RunServer) Store(ctx *Globals) (schema.Store, error) {
	switch {
	case cmd.UseS3:
		if cmd.S3Bucket == "" {
			return nil, twin.ErrBadParameter.With("an S3 bucket is required")
		}
		cfg, err := bedrock.LoadConfig(ctx.ctx, cmd.Bedrock.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
		}
		return store.NewS3StoreWithConfig(cfg, cmd.S3Bucket, store.WithPrefix(cmd.S3Prefix))
	case cmd.HistoryDir != "":
		return store.NewFileStore(cmd.HistoryDir)
	default:
		return store.NewMemoryStore(), nil
	}
}

// Prompt returns the system prompt renderer
func (cmd *RunServer) Prompt() (*prompt.Prompt, error) {
	persona := prompt.DefaultPersona()
	if cmd.PersonaFile != "" {
		var err error
		if persona, err = prompt.LoadPersona(cmd.PersonaFile); err != nil {
			return nil, err
		}
	}
	var opts []prompt.Opt
	if cmd.TemplateFile != "" {
		opts = append(opts, prompt.WithTemplateFile(cmd.TemplateFile))
	}
	return prompt.New(persona, opts...)
}
