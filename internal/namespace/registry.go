package namespace

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps short prefixes to namespace IRIs.
//
// A Registry resolves prefixed names such as "rdf:type" or "foaf:name" to
// full URIs and back. New registries carry the standard rdf, rdfs, owl,
// xsd and foaf prefixes.
//
// Thread-safety: all methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	prefixes map[string]string // prefix -> namespace IRI
}

// New creates a registry preloaded with the standard prefixes.
func New() *Registry {
	return &Registry{
		prefixes: map[string]string{
			"rdf":  RDF,
			"rdfs": RDFS,
			"owl":  OWL,
			"xsd":  XSD,
			"foaf": FOAF,
		},
	}
}

// Bind registers or replaces a prefix.
func (r *Registry) Bind(prefix, iri string) error {
	if prefix == "" || strings.ContainsAny(prefix, ":/#") {
		return fmt.Errorf("invalid prefix %q", prefix)
	}
	if iri == "" {
		return fmt.Errorf("empty namespace for prefix %q", prefix)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefixes[prefix] = iri
	return nil
}

// Lookup returns the namespace bound to prefix.
func (r *Registry) Lookup(prefix string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	iri, ok := r.prefixes[prefix]
	return iri, ok
}

// Expand resolves a prefixed name ("rdf:type") to a full URI.
//
// Names whose prefix is not bound are returned unchanged, so absolute URIs
// ("http://...", "urn:...") pass through.
func (r *Registry) Expand(name string) string {
	prefix, local, ok := strings.Cut(name, ":")
	if !ok || strings.HasPrefix(local, "//") {
		return name
	}
	if iri, bound := r.Lookup(prefix); bound {
		return iri + local
	}
	return name
}

// Compact rewrites a full URI using the longest matching namespace.
// URIs outside every bound namespace are returned unchanged.
func (r *Registry) Compact(uri string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	best, bestLen := "", 0
	for prefix, iri := range r.prefixes {
		if strings.HasPrefix(uri, iri) && len(iri) > bestLen {
			best, bestLen = prefix, len(iri)
		}
	}
	if best == "" {
		return uri
	}
	return best + ":" + uri[bestLen:]
}

// Prefixes returns the bound prefixes in sorted order.
func (r *Registry) Prefixes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.prefixes))
	for p := range r.prefixes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
