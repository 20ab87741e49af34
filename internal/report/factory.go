package report

import (
	"context"
	"fmt"
	"log/slog"
)

// Backends the factory knows how to build.
const (
	BackendMemory = "memory"
	BackendSheets = "sheets"
)

// NewWriterFunc builds a Writer for one backend name.
type NewWriterFunc func(ctx context.Context) (Writer, error)

// Factory selects a report backend by name.
type Factory struct {
	logger   *slog.Logger
	builders map[string]NewWriterFunc
}

// NewFactory creates a factory with the given backend builders. The memory
// and sheets builders are registered by the callers that can construct them.
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		logger:   logger,
		builders: make(map[string]NewWriterFunc),
	}
}

// Register adds a builder for a backend name.
func (f *Factory) Register(name string, build NewWriterFunc) {
	f.builders[name] = build
}

// Create builds the writer for the named backend.
func (f *Factory) Create(ctx context.Context, name string) (Writer, error) {
	build, ok := f.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown report backend: %s", name)
	}

	w, err := build(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize %s report backend: %w", name, err)
	}

	f.logger.Info("Initialized report backend", "backend", name)
	return w, nil
}
