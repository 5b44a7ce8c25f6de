package service

import "sync"

// Registry is the set of services known to the daemon, keyed by name,
// preserving registration order for listings.
type Registry struct {
	mu       sync.RWMutex
	services map[string]*Service
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{services: make(map[string]*Service)}
}

func (r *Registry) Add(s *Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[s.Name()]; !ok {
		r.order = append(r.order, s.Name())
	}
	r.services[s.Name()] = s
}

func (r *Registry) Get(name string) (*Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.services[name]
	return s, ok
}

func (r *Registry) List() []*Service {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Service, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.services[name])
	}
	return out
}
