package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Registry owns a named set of pipelines and runs them together as one
// supervised group: the first pipeline to return an error cancels the
// shared context, and Run waits for every pipeline's components to unwind
// before returning that error. Wiring code can look up the destination
// pipelines it hands to routing switches by tag through Get or MustGet.
type Registry struct {
	mu        sync.RWMutex
	pipelines map[string]*Pipeline
	logger    zerolog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{pipelines: make(map[string]*Pipeline), logger: logger}
}

// Register adds p under tag. It panics if tag is already registered, since
// two pipelines answering to the same tag is always a wiring bug.
func (r *Registry) Register(tag string, p *Pipeline) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.pipelines[tag]; exists {
		panic("pipeline: registry already has a pipeline tagged " + tag)
	}
	r.pipelines[tag] = p
}

// RegisterEmpty builds, registers and returns a new pipeline tagged tag.
func (r *Registry) RegisterEmpty(tag string) *Pipeline {
	p := New(r.logger).Tag(tag)
	r.Register(tag, p)
	return p
}

// Get returns the pipeline registered under tag, if any.
func (r *Registry) Get(tag string) (*Pipeline, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pipelines[tag]
	return p, ok
}

// MustGet returns the pipeline registered under tag, panicking if absent.
// Intended for wiring code that treats a missing destination pipeline as a
// fatal configuration error rather than a per-record condition.
func (r *Registry) MustGet(tag string) *Pipeline {
	p, ok := r.Get(tag)
	if !ok {
		panic(fmt.Sprintf("pipeline: registry has no pipeline tagged %q", tag))
	}
	return p
}

// Run launches every registered pipeline's components into one errgroup
// bound to ctx, then blocks until all of them exit. It returns the first
// non-nil error any component returned, if any.
func (r *Registry) Run(ctx context.Context) error {
	group, gctx := errgroup.WithContext(ctx)

	r.mu.RLock()
	pipelines := make([]*Pipeline, 0, len(r.pipelines))
	for _, p := range r.pipelines {
		pipelines = append(pipelines, p)
	}
	r.mu.RUnlock()

	for _, p := range pipelines {
		p.Run(gctx, group)
	}

	return group.Wait()
}

// StopAll calls Stop on every registered pipeline, cancelling each one's
// own run context so its components exit without an error.
func (r *Registry) StopAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.pipelines {
		p.Stop()
	}
}
