package testutil

import (
	"fmt"
	"sync"
)

// CountingGenerator mints predictable blank node identifiers
// ("<prefix>-0001", "<prefix>-0002", ...). It satisfies identity.Generator
// and never runs out, unlike identity.FixedGenerator.
type CountingGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewCountingGenerator creates a generator. An empty prefix becomes "blank".
func NewCountingGenerator(prefix string) *CountingGenerator {
	if prefix == "" {
		prefix = "blank"
	}
	return &CountingGenerator{prefix: prefix}
}

// Generate returns the next identifier.
func (g *CountingGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
