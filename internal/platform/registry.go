package platform

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry = make(map[string]StrategyFactory)
	mu       sync.RWMutex
)

func Register(name string, factory StrategyFactory) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = factory
}

func Get(name string) (StrategyFactory, error) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("fetch strategy %q not registered", name)
	}
	return f, nil
}

func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build instantiates the named strategies in order.
func Build(names []string, opts StrategyOptions) ([]Strategy, error) {
	out := make([]Strategy, 0, len(names))
	for _, name := range names {
		f, err := Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, f(opts))
	}
	return out, nil
}
