package publisher

import (
	"sort"
	"strings"
	"sync"
)

// Registry maps channel names to adapters. Dispatch resolves adapters by
// lookup so adding a channel never touches the dispatcher.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Publisher
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Publisher)}
}

// Register binds an adapter to a channel name. Registering the same channel
// twice replaces the previous adapter.
func (r *Registry) Register(channel string, p Publisher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[strings.ToLower(channel)] = p
}

// Get returns the adapter for a channel, if one is registered.
func (r *Registry) Get(channel string) (Publisher, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.adapters[strings.ToLower(channel)]
	return p, ok
}

// Channels lists the registered channel names, sorted.
func (r *Registry) Channels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
