package httpclient

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var ErrHostNotRegistered = errors.New("httpclient: host not registered")

// Registry holds one Client per API host, e.g. "github.com" and a GitHub Enterprise
// Server instance. Options passed to NewRegistry apply to every registered host.
type Registry struct {
	clients     map[string]*Client
	fallback    string
	mu          sync.RWMutex
	defaultOpts []Option
}

func NewRegistry(defaultOpts ...Option) *Registry {
	return &Registry{
		clients:     make(map[string]*Client),
		fallback:    "",
		mu:          sync.RWMutex{},
		defaultOpts: defaultOpts,
	}
}

// Register adds or replaces the client for host. The first registered host becomes
// the fallback returned by Resolve("").
func (r *Registry) Register(host, baseURL string, opts ...Option) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()

	allOpts := make([]Option, 0, len(r.defaultOpts)+len(opts))
	allOpts = append(allOpts, r.defaultOpts...)
	allOpts = append(allOpts, opts...)

	r.clients[host] = New(baseURL, allOpts...)

	if r.fallback == "" {
		r.fallback = host
	}

	return r
}

// Resolve returns the client for host, or the fallback host when host is empty.
func (r *Registry) Resolve(host string) (*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if host == "" {
		host = r.fallback
	}

	client, ok := r.clients[host]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrHostNotRegistered, host)
	}

	return client, nil
}

// Hosts returns the registered host names in sorted order.
func (r *Registry) Hosts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hosts := make([]string, 0, len(r.clients))
	for host := range r.clients {
		hosts = append(hosts, host)
	}

	slices.Sort(hosts)

	return hosts
}
