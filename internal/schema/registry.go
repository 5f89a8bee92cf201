package schema

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Digest identifies a schema binary by content hash.
func Digest(bfbs []byte) uint64 { return xxhash.Sum64(bfbs) }

// Registry caches parsed schema binaries by digest so repeated conversions
// against the same schema skip the parse. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	schemas map[uint64]*Schema
}

func NewRegistry() *Registry {
	return &Registry{schemas: make(map[uint64]*Schema)}
}

// Load returns the parsed schema for bfbs, parsing and caching it on first
// sight.
func (r *Registry) Load(bfbs []byte) (*Schema, error) {
	d := Digest(bfbs)

	r.mu.RLock()
	s, ok := r.schemas[d]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	s, err := Load(bfbs)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if prev, ok := r.schemas[d]; ok {
		s = prev
	} else {
		r.schemas[d] = s
	}
	r.mu.Unlock()
	return s, nil
}

// Len reports how many schemas are cached.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schemas)
}
