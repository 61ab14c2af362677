// Package service exposes the converter as a plugin-style request/response
// adapter and serves it over HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joeshaw/envdecode"
	"github.com/mcncl/json2md/internal/converter"
	"github.com/mcncl/json2md/internal/errors"
	"github.com/mcncl/json2md/internal/renderer"
)

// Config holds the service settings. Defaults come from the struct tags.
type Config struct {
	// Addr to listen on. ENV: JSON2MD_ADDR
	Addr string `env:"JSON2MD_ADDR,default=:8080"`
	// MaxBodyBytes caps the request body. ENV: JSON2MD_MAX_BODY_BYTES
	MaxBodyBytes int64 `env:"JSON2MD_MAX_BODY_BYTES,default=1048576"`
	// MaxDepth is the recursion ceiling for every request. ENV: JSON2MD_MAX_DEPTH
	MaxDepth int `env:"JSON2MD_MAX_DEPTH,default=1000"`
	// ShutdownTimeout bounds graceful shutdown. ENV: JSON2MD_SHUTDOWN_TIMEOUT
	ShutdownTimeout time.Duration `env:"JSON2MD_SHUTDOWN_TIMEOUT,default=10s"`
}

// DefaultConfig returns the settings used when no environment is set.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		MaxBodyBytes:    1 << 20,
		MaxDepth:        renderer.DefaultMaxDepth,
		ShutdownTimeout: 10 * time.Second,
	}
}

// ConfigFromEnv reads Config from the environment.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return Config{}, errors.NewServiceError("failed to read configuration from environment", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the service settings
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.MaxBodyBytes, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.MaxDepth, validation.Required, validation.Min(1)),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
	if err != nil {
		return errors.NewServiceError("invalid service configuration", err)
	}
	return nil
}

// Request is the plugin input: a JSON document as a string plus optional
// render options.
type Request struct {
	JSONData string          `json:"jsonData"`
	Options  *RequestOptions `json:"options,omitempty"`
}

// RequestOptions mirrors the render options a caller may set. Nil fields
// keep their defaults.
type RequestOptions struct {
	MinHeadingLevel     *int  `json:"minHeadingLevel,omitempty"`
	MaxHeadingLevel     *int  `json:"maxHeadingLevel,omitempty"`
	IncludeTypes        *bool `json:"includeTypes,omitempty"`
	ProcessArrayObjects *bool `json:"processArrayObjects,omitempty"`
	UseOrderedLists     *bool `json:"useOrderedLists,omitempty"`
}

// Validate checks that given heading levels are within 1-6. A level of 0 is
// rejected here rather than treated as a default.
func (o *RequestOptions) Validate() error {
	if o == nil {
		return nil
	}
	return validation.ValidateStruct(o,
		validation.Field(&o.MinHeadingLevel, validation.NilOrNotEmpty, validation.Min(renderer.LowestHeadingLevel), validation.Max(renderer.HighestHeadingLevel)),
		validation.Field(&o.MaxHeadingLevel, validation.NilOrNotEmpty, validation.Min(renderer.LowestHeadingLevel), validation.Max(renderer.HighestHeadingLevel)),
	)
}

// RenderOptions converts o into renderer options with the given recursion
// ceiling.
func (o *RequestOptions) RenderOptions(maxDepth int) renderer.Options {
	opts := renderer.Options{MaxDepth: maxDepth}
	if o == nil {
		return opts
	}
	if o.MinHeadingLevel != nil {
		opts.MinHeadingLevel = *o.MinHeadingLevel
	}
	if o.MaxHeadingLevel != nil {
		opts.MaxHeadingLevel = *o.MaxHeadingLevel
	}
	if o.IncludeTypes != nil {
		opts.IncludeTypes = *o.IncludeTypes
	}
	if o.ProcessArrayObjects != nil {
		opts.FlatArrays = !*o.ProcessArrayObjects
	}
	if o.UseOrderedLists != nil {
		opts.UseOrderedLists = *o.UseOrderedLists
	}
	return opts
}

// Response is the plugin output. Data is null unless Code is 200.
type Response struct {
	Code    int     `json:"code"`
	Data    *string `json:"data"`
	Message string  `json:"message"`
}

const (
	MessageOK = "converted successfully"
)

// Service converts requests to responses.
type Service struct {
	cfg Config
	log *slog.Logger
}

// New creates a Service. A nil logger uses slog.Default.
func New(cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}
	return &Service{cfg: cfg, log: logger}
}

// Convert parses and renders req. It never returns an error: failures are
// reported through Response.Code and Response.Message.
func (s *Service) Convert(ctx context.Context, req Request) Response {
	return s.convert(ctx, req, s.log)
}

func (s *Service) convert(ctx context.Context, req Request, log *slog.Logger) Response {
	if err := req.Options.Validate(); err != nil {
		log.WarnContext(ctx, "convert.options.invalid", slog.String("err", err.Error()))
		return failure(400, fmt.Sprintf("invalid options: %v", err))
	}
	opts := req.Options.RenderOptions(s.cfg.MaxDepth)
	if err := opts.Validate(); err != nil {
		log.WarnContext(ctx, "convert.options.invalid", slog.String("err", err.Error()))
		return failure(400, fmt.Sprintf("invalid options: %s", errors.UserFriendlyError(err)))
	}

	markdown, err := converter.ConvertString(req.JSONData, opts)
	if err != nil {
		switch errors.TypeOf(err) {
		case errors.ErrorTypeParsing, errors.ErrorTypeInput:
			log.WarnContext(ctx, "convert.parse.fail", slog.String("err", err.Error()))
			return failure(400, fmt.Sprintf("unable to parse JSON string: %v", err))
		default:
			log.ErrorContext(ctx, "convert.render.fail", slog.String("err", err.Error()))
			return failure(500, fmt.Sprintf("JSON to Markdown conversion failed: %v", err))
		}
	}

	log.InfoContext(ctx, "convert.ok", slog.Int("bytes", len(markdown)))
	return Response{Code: 200, Data: &markdown, Message: MessageOK}
}

func failure(code int, message string) Response {
	return Response{Code: code, Message: message}
}
