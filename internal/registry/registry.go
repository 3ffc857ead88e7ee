// Package registry binds model types to RDF class URIs.
package registry

import (
	"sort"
	"sync"

	"github.com/roach88/activegraph/internal/identity"
	"github.com/roach88/activegraph/internal/ir"
	"github.com/roach88/activegraph/internal/namespace"
)

// ClassRegistry maps each model type to its class URI and back.
//
// The mapping is bijective: registering a type again moves it to the new
// URI (last write wins) and releases the old URI, and registering a URI
// already held by another type unbinds that type. Register types before
// building queries for them; an unregistered type reads as the top type.
//
// Thread-safety: all methods are safe for concurrent use.
type ClassRegistry struct {
	mu       sync.RWMutex
	resolver *identity.Resolver
	classes  map[*ir.Type]*ir.Resource
	types    map[string]*ir.Type // normalized class URI -> type
	top      *ir.Resource
}

// New creates a registry with ir.RootType bound to rdfs:Resource.
func New(resolver *identity.Resolver) *ClassRegistry {
	top := resolver.MustBasic(namespace.RDFSResource)
	return &ClassRegistry{
		resolver: resolver,
		classes:  map[*ir.Type]*ir.Resource{ir.RootType: top},
		types:    map[string]*ir.Type{top.URI(): ir.RootType},
		top:      top,
	}
}

// Register binds typ to classURI.
// Returns ir.ErrInvalidURI for a broken URI and ir.ErrNilResource for a nil type.
func (r *ClassRegistry) Register(typ *ir.Type, classURI string) error {
	if typ == nil {
		return ir.NewError(ir.CodeNilResource, "type is nil", classURI)
	}
	class, err := r.resolver.Basic(classURI)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.classes[typ]; ok {
		delete(r.types, old.URI())
	}
	if holder, ok := r.types[class.URI()]; ok && holder != typ {
		delete(r.classes, holder)
	}
	r.classes[typ] = class
	r.types[class.URI()] = typ
	return nil
}

// ClassURI returns the class bound to typ.
// Unregistered types (and nil) return the top type, rdfs:Resource.
func (r *ClassRegistry) ClassURI(typ *ir.Type) *ir.Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if class, ok := r.classes[typ]; ok {
		return class
	}
	return r.top
}

// IsRegistered reports whether typ has an explicit binding.
func (r *ClassRegistry) IsRegistered(typ *ir.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.classes[typ]
	return ok
}

// TypeFor returns the type bound to classURI, or (nil, false).
func (r *ClassRegistry) TypeFor(classURI string) (*ir.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	typ, ok := r.types[ir.NormalizeURI(classURI)]
	return typ, ok
}

// Bindings returns class URI → type name for every binding, for display.
func (r *ClassRegistry) Bindings() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.types))
	for uri, typ := range r.types {
		out[uri] = typ.Name()
	}
	return out
}

// ClassURIs returns the bound class URIs in sorted order.
func (r *ClassRegistry) ClassURIs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.types))
	for uri := range r.types {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out
}
