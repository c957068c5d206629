package github

import (
	"maps"
	"slices"
	"sync"
)

const (
	OptionAPIURL       = "api.url"
	OptionAPIToken     = "api.token"
	OptionAPITimeout   = "api.timeout"
	OptionAPIUserAgent = "api.useragent"
	OptionAPIVersion   = "api.version"

	DefaultAPIURL = "https://api.github.com"
)

// Options is a key/value store shared by the resource clients. It is safe for
// concurrent use. Only NewTransport reads keys from it.
type Options struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewOptions(values map[string]string) *Options {
	o := &Options{
		mu:     sync.RWMutex{},
		values: make(map[string]string, len(values)),
	}

	maps.Copy(o.values, values)

	return o
}

// Get returns the value for key, or fallback when the key is unset or empty.
func (o *Options) Get(key, fallback string) string {
	if o == nil {
		return fallback
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	if value, ok := o.values[key]; ok && value != "" {
		return value
	}

	return fallback
}

func (o *Options) Set(key, value string) *Options {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.values[key] = value

	return o
}

func (o *Options) Has(key string) bool {
	if o == nil {
		return false
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	_, ok := o.values[key]

	return ok
}

func (o *Options) Keys() []string {
	if o == nil {
		return nil
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	return slices.Sorted(maps.Keys(o.values))
}
