package validreducer

import (
	"log/slog"

	"github.com/reoring/validreducer/internal/engine"
	"github.com/reoring/validreducer/internal/logging"
	"github.com/reoring/validreducer/schemadoc"
)

// Draft selects the JSON Schema dialect assumed for documents that carry no
// $schema keyword.
type Draft = engine.Draft

const (
	Draft4    Draft = engine.Draft4
	Draft6    Draft = engine.Draft6
	Draft7    Draft = engine.Draft7
	Draft2019 Draft = engine.Draft2019
	Draft2020 Draft = engine.Draft2020
)

// DefaultSeparator joins violations in a ValidationError message.
const DefaultSeparator = ", "

type config struct {
	schemas   map[string]schemadoc.Document
	draft     Draft
	separator string
	logger    *slog.Logger
}

func newConfig(opts []Option) *config {
	cfg := &config{draft: Draft4, separator: DefaultSeparator}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}
	return cfg
}

// Option configures Wrap and Compile.
type Option func(*config)

// WithSchemas supplies the registry used for $ref resolution and Named lookup.
// The map is read once at wrap time and not retained.
func WithSchemas(schemas map[string]schemadoc.Document) Option {
	return func(c *config) {
		c.schemas = schemas
	}
}

// WithDraft sets the default dialect (Draft4 unless changed).
func WithDraft(d Draft) Option {
	return func(c *config) {
		c.draft = d
	}
}

// WithSeparator sets the string placed between violations in error messages.
func WithSeparator(sep string) Option {
	return func(c *config) {
		c.separator = sep
	}
}

// WithLogger enables debug logging of schema compilation. Wrapped reducers
// never log.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
