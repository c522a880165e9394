package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Router tries registered providers in registration order until one succeeds.
type Router struct {
	providers map[string]Provider
	fallback  []string // ordered fallback chain
	mu        sync.RWMutex
}

// NewRouter creates a new AI router.
func NewRouter() *Router {
	return &Router{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the router. Registering a name twice replaces
// the provider but keeps its original position.
func (r *Router) Register(name string, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[name]; !exists {
		r.fallback = append(r.fallback, name)
	}
	r.providers[name] = provider
}

// Complete routes a request to the first provider that answers.
func (r *Router) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var lastErr error
	for _, name := range r.fallback {
		provider := r.providers[name]

		resp, err := provider.Complete(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return CompletionResponse{}, ctx.Err()
			}
			slog.Warn("AI provider failed, trying next",
				"provider", name,
				"error", err,
			)
			lastErr = err
			continue
		}

		slog.Debug("AI request completed",
			"provider", name,
			"model", resp.Model,
			"input_tokens", resp.InputTokens,
			"output_tokens", resp.OutputTokens,
		)
		return resp, nil
	}

	if lastErr != nil {
		return CompletionResponse{}, fmt.Errorf("all AI providers failed: %w", lastErr)
	}
	return CompletionResponse{}, fmt.Errorf("no AI provider registered")
}

// Prune runs every provider's health check and drops the ones that fail,
// keeping the order of the rest. It returns the dropped names.
func (r *Router) Prune(ctx context.Context) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var kept, dropped []string
	for _, name := range r.fallback {
		if err := r.providers[name].HealthCheck(ctx); err != nil {
			slog.Warn("AI provider unavailable, skipping it",
				"provider", name,
				"error", err,
			)
			delete(r.providers, name)
			dropped = append(dropped, name)
			continue
		}
		kept = append(kept, name)
	}
	r.fallback = kept
	return dropped
}

// HasProvider returns true if at least one provider is registered.
func (r *Router) HasProvider() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers) > 0
}

// Names returns the registered provider names in fallback order.
func (r *Router) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.fallback...)
}
