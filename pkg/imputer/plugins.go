package imputer

import (
	"fmt"
	"sort"
	"sync"

	"k8s.io/klog/v2"
)

// Factory builds the executor of one family from the shared options.
type Factory func(opts Options) (Executor, error)

// All registered executor factories.
var (
	factoriesMutex sync.Mutex
	factories      = make(map[string]Factory)
)

// RegisterFactory registers an executor Factory by family name. This is expected to
// happen during package initialisation.
func RegisterFactory(family string, factory Factory) {
	factoriesMutex.Lock()
	defer factoriesMutex.Unlock()
	if _, found := factories[family]; found {
		klog.Fatalf("imputer family %q was registered twice", family)
	}
	klog.V(1).Infof("Registered imputer family %q", family)
	factories[family] = factory
}

// Registry binds family names to executor instances for one benchmark run.
type Registry struct {
	mu        sync.RWMutex
	executors map[string]Executor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{executors: make(map[string]Executor)}
}

// NewDefaultRegistry instantiates every registered factory with opts.
func NewDefaultRegistry(opts Options) (*Registry, error) {
	factoriesMutex.Lock()
	defer factoriesMutex.Unlock()

	r := NewRegistry()
	for name, factory := range factories {
		executor, err := factory(opts)
		if err != nil {
			return nil, fmt.Errorf("could not init imputer %q: %v", name, err)
		}
		r.executors[name] = executor
	}
	return r, nil
}

// Register adds or replaces the executor for its family.
func (r *Registry) Register(executor Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[executor.Family()] = executor
}

// Get returns the executor registered for family.
func (r *Registry) Get(family string) (Executor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.executors[family]
	return e, ok
}

// Resolve returns the executor for family or an UnknownStrategyError.
func (r *Registry) Resolve(family string) (Executor, error) {
	if e, ok := r.Get(family); ok {
		return e, nil
	}
	return nil, &UnknownStrategyError{Family: family}
}

// Families returns the registered family names, sorted.
func (r *Registry) Families() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.executors))
	for name := range r.executors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every family of the grid has an executor.
func (r *Registry) Validate(grid Grid) error {
	for _, f := range grid {
		if _, err := r.Resolve(f.Name); err != nil {
			return err
		}
	}
	return nil
}
