package engine

import (
	"log/slog"

	"sentinel-hq/sentinel/pkg/evaluators"
)

// Registry maps condition names to evaluator clients. It is populated
// once at startup and read-only afterwards, so concurrent lookups need no
// locking.
//
// Unknown names are not an error: Resolve reports them as unknown and the
// condition runner produces a sentinel outcome that can never pass, so an
// unrecognized condition is never silently treated as passing.
type Registry struct {
	clients map[string]evaluators.Client
	logger  *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		clients: make(map[string]evaluators.Client),
		logger:  logger.With("component", "engine.registry"),
	}
}

// Register binds a condition name to a client. Call only during startup,
// before the registry is shared; later registration is a programming
// error.
func (r *Registry) Register(name string, client evaluators.Client) {
	r.clients[name] = client
	r.logger.Debug("registered evaluator", "condition", name)
}

// Resolve returns the client for a condition name. known is false when
// no client is registered under that name.
func (r *Registry) Resolve(name string) (client evaluators.Client, known bool) {
	client, known = r.clients[name]
	return client, known
}

// Names returns the registered condition names (for introspection).
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	return names
}

// DefaultRegistry creates a registry with the fixed startup mapping:
// content_analysis → content safety, keywords → keyword filter.
func DefaultRegistry(cfg evaluators.ClientConfig, logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	r.Register("content_analysis", evaluators.NewContentSafetyClient(cfg, logger))
	r.Register("keywords", evaluators.NewKeywordFilterClient(cfg, logger))
	return r
}
