package fetch

import (
	"context"
	"fmt"

	"github.com/statforge/statforge/internal/models"
)

// Adapter turns a reachable source into raw candidate items. One adapter per
// source type; registration order decides precedence when types overlap.
type Adapter interface {
	// Name returns the adapter identifier used in logs and failure records.
	Name() string

	// CanHandle reports whether this adapter fetches the given source type.
	CanHandle(sourceType models.SourceType) bool

	// Fetch retrieves candidate items from the source. A returned error
	// discards the whole source for this run; there is no partial-item
	// salvage.
	Fetch(ctx context.Context, source models.ContentSource) ([]models.SourceItem, error)
}

// NoAdapterError is returned by the registry when no registered adapter
// handles a source's type. The orchestrator records it as a non-fatal source
// failure.
type NoAdapterError struct {
	SourceType models.SourceType
}

func (e *NoAdapterError) Error() string {
	return fmt.Sprintf("no adapter for type %s", e.SourceType)
}

// Registry dispatches sources to adapters with a linear first-capable scan,
// preserving deterministic precedence.
type Registry struct {
	adapters []Adapter
}

// NewRegistry creates a registry with the given adapters in precedence order.
func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters}
}

// Register appends an adapter at the lowest precedence.
func (r *Registry) Register(a Adapter) {
	r.adapters = append(r.adapters, a)
}

// ForSource returns the first adapter capable of handling the source's type.
func (r *Registry) ForSource(source models.ContentSource) (Adapter, error) {
	for _, a := range r.adapters {
		if a.CanHandle(source.Type) {
			return a, nil
		}
	}
	return nil, &NoAdapterError{SourceType: source.Type}
}

// Fetch dispatches and fetches in one step.
func (r *Registry) Fetch(ctx context.Context, source models.ContentSource) ([]models.SourceItem, error) {
	adapter, err := r.ForSource(source)
	if err != nil {
		return nil, err
	}
	return adapter.Fetch(ctx, source)
}
