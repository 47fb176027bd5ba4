package compile

import (
	"sync"

	"github.com/crillab/goqubo/expr"
	"github.com/crillab/goqubo/qubo"
	"github.com/mitchellh/hashstructure"
	"github.com/pkg/errors"
)

type cacheKey struct {
	g    *expr.Graph
	root expr.NodeID
	hash uint64
}

// A Cache memoizes compiled models. It is safe for concurrent use.
// Models returned by a Cache are shared and must not be modified.
type Cache struct {
	mu     sync.Mutex
	models map[cacheKey]*qubo.Model
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{models: make(map[cacheKey]*qubo.Model)}
}

// Len is the number of cached models.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.models)
}

// Compile returns the cached model for the same graph, root, bindings and options,
// and compiles it otherwise. Errors are not cached.
func (c *Cache) Compile(g *expr.Graph, root expr.NodeID, bindings Bindings, opts ...Option) (*qubo.Model, error) {
	o := newOptions(opts)
	hash, err := hashstructure.Hash(struct {
		Bindings Bindings
		Options  Options
	}{bindings, o}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not hash compilation parameters")
	}
	key := cacheKey{g: g, root: root, hash: hash}
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.models[key]; ok {
		cacheLookups.WithLabelValues("hit").Inc()
		return m, nil
	}
	cacheLookups.WithLabelValues("miss").Inc()
	m, err := Compile(g, root, bindings, WithOptions(o))
	if err != nil {
		return nil, err
	}
	c.models[key] = m
	return m, nil
}
