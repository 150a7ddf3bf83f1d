package endpoint

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nucleus/sharepoint-publisher/internal/logging"
)

// ClientOptions tunes the HTTP client a publisher uses for its remote sessions.
type ClientOptions struct {
	Timeout    time.Duration
	MaxRetries int
	RateLimit  float64
	RateBurst  int
	UserAgent  string
}

// Dependencies are handed to every factory.
type Dependencies struct {
	Logger *logging.Logger
	Client ClientOptions
}

// Factory creates a publisher instance.
type Factory func(deps Dependencies) (Publisher, error)

// Registry holds publisher factories indexed by template ID.
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory for the given template ID.
// Panics if the template ID is already registered.
func (r *Registry) Register(templateID string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[templateID]; exists {
		panic(fmt.Sprintf("publisher factory already registered: %s", templateID))
	}
	r.factories[templateID] = factory
}

// Get returns the factory for the given template ID.
func (r *Registry) Get(templateID string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[templateID]
	return factory, ok
}

// List returns all registered template IDs, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Create instantiates a publisher from the given template ID.
func (r *Registry) Create(templateID string, deps Dependencies) (Publisher, error) {
	factory, ok := r.Get(templateID)
	if !ok {
		return nil, fmt.Errorf("unknown publisher template: %s", templateID)
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	return factory(deps)
}

// --- Default Global Registry ---

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the global publisher registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a factory to the default registry.
func Register(templateID string, factory Factory) {
	defaultRegistry.Register(templateID, factory)
}
