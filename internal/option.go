package internal

import (
	"log/slog"

	"github.com/starford/raido/internal/blob"
	"github.com/starford/raido/internal/sink"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	blob   blob.Store
	sink   sink.Sink
	logger *slog.Logger
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithBlobStore overrides the blob store; tests inject blob.Memory here.
func WithBlobStore(s blob.Store) Option {
	return func(a *application) {
		a.blob = s
	}
}

// WithSink overrides the document sink.
func WithSink(s sink.Sink) Option {
	return func(a *application) {
		a.sink = s
	}
}

// WithLogger overrides the default JSON logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *application) {
		a.logger = l
	}
}
