/*
bedrock implements a completion backend for the AWS Bedrock Converse API.
https://docs.aws.amazon.com/bedrock/latest/APIReference/API_runtime_Converse.html
*/
package bedrock

import (
	"context"
	"log/slog"

	// Packages
	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	bedrockruntime "github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	types "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	twin "github.com/dilettacal/digital-twin"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// API is the subset of the Bedrock runtime client used by Client
type API interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
	ConverseStream(ctx context.Context, params *bedrockruntime.ConverseStreamInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseStreamOutput, error)
}

// eventReader is satisfied by *bedrockruntime.ConverseStreamEventStream
type eventReader interface {
	Events() <-chan types.ConverseStreamOutput
	Close() error
	Err() error
}

type Client struct {
	client      API
	model       string
	maxTokens   int32
	temperature float32
	topP        float32
	logger      *slog.Logger
	stream      func(*bedrockruntime.ConverseStreamOutput) eventReader
}

type Opt func(*Client) error

var _ twin.Generator = (*Client)(nil)
var _ API = (*bedrockruntime.Client)(nil)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	defaultName        = "bedrock"
	DefaultModel       = "eu.amazon.nova-lite-v1:0"
	DefaultRegion      = "eu-central-1"
	defaultMaxTokens   = 2000
	defaultTemperature = 0.7
	defaultTopP        = 0.9
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a generator for a model, using an existing runtime client
func New(client API, model string, opts ...Opt) (*Client, error) {
	if client == nil {
		return nil, twin.ErrBadParameter.With("bedrock client is required")
	}
	if model == "" {
		model = DefaultModel
	}
	c := &Client{
		client:      client,
		model:       model,
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
		topP:        defaultTopP,
		logger:      slog.Default(),
		stream: func(output *bedrockruntime.ConverseStreamOutput) eventReader {
			return output.GetStream()
		},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// NewWithConfig creates a generator from an AWS configuration
func NewWithConfig(cfg aws.Config, model string, opts ...Opt) (*Client, error) {
	return New(bedrockruntime.NewFromConfig(cfg), model, opts...)
}

// LoadConfig loads the default AWS credential chain for a region
func LoadConfig(ctx context.Context, region string) (aws.Config, error) {
	if region == "" {
		region = DefaultRegion
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return aws.Config{}, twin.ErrInternalServerError.Withf("load aws config: %v", err)
	}
	return cfg, nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

func WithMaxTokens(n int32) Opt {
	return func(c *Client) error {
		if n <= 0 {
			return twin.ErrBadParameter.Withf("max tokens %d", n)
		}
		c.maxTokens = n
		return nil
	}
}

func WithTemperature(v float32) Opt {
	return func(c *Client) error {
		if v < 0 || v > 1 {
			return twin.ErrBadParameter.Withf("temperature %v", v)
		}
		c.temperature = v
		return nil
	}
}

func WithTopP(v float32) Opt {
	return func(c *Client) error {
		if v <= 0 || v > 1 {
			return twin.ErrBadParameter.Withf("top_p %v", v)
		}
		c.topP = v
		return nil
	}
}

func WithLogger(logger *slog.Logger) Opt {
	return func(c *Client) error {
		if logger == nil {
			return twin.ErrBadParameter.With("logger is nil")
		}
		c.logger = logger
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Name returns the provider name
func (*Client) Name() string {
	return defaultName
}

// Model returns the model identifier
func (c *Client) Model() string {
	return c.model
}
