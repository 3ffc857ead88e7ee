package identity

import (
	"strings"
	"sync"

	"github.com/roach88/activegraph/internal/ir"
)

type cacheKey struct {
	uri  string
	kind ir.Kind
	typ  *ir.Type
}

// Resolver is a URI → handle cache.
//
// Thread-safety: all methods are safe for concurrent use. Concurrent
// resolution of the same URI yields a single handle.
type Resolver struct {
	mu      sync.Mutex
	handles map[cacheKey]*ir.Resource
	blanks  Generator
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithGenerator sets the generator used for blank node URIs.
func WithGenerator(g Generator) Option {
	return func(r *Resolver) { r.blanks = g }
}

// New creates an empty resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		handles: make(map[cacheKey]*ir.Resource),
		blanks:  UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the canonical handle for (uri, kind).
//
// Variables are not resources: kind must be ir.KindBasic or
// ir.KindIdentified. Returns ir.ErrInvalidURI for empty or structurally
// broken URIs.
func (r *Resolver) Resolve(uri string, kind ir.Kind) (*ir.Resource, error) {
	return r.resolve(uri, kind, nil)
}

// Basic is shorthand for Resolve(uri, ir.KindBasic).
func (r *Resolver) Basic(uri string) (*ir.Resource, error) {
	return r.resolve(uri, ir.KindBasic, nil)
}

// Identify returns the canonical identified handle for (uri, typ).
//
// The model type is part of the identity: the same URI identified as two
// different types yields two handles. A nil typ means ir.IdentifiedType.
func (r *Resolver) Identify(uri string, typ *ir.Type) (*ir.Resource, error) {
	if typ == nil {
		typ = ir.IdentifiedType
	}
	return r.resolve(uri, ir.KindIdentified, typ)
}

// MustBasic is like Basic but panics on an invalid URI.
// Intended for package-level vocabulary handles and tests.
func (r *Resolver) MustBasic(uri string) *ir.Resource {
	res, err := r.Basic(uri)
	if err != nil {
		panic(err)
	}
	return res
}

// Blank mints a fresh basic handle with a generated urn:uuid: URI.
func (r *Resolver) Blank() *ir.Resource {
	res, err := r.Basic("urn:uuid:" + r.blanks.Generate())
	if err != nil {
		// Generated URIs are always well formed.
		panic(err)
	}
	return res
}

// Canonical returns the cached handle equivalent to res, creating one if
// needed. Handles built outside the resolver become canonical this way.
func (r *Resolver) Canonical(res *ir.Resource) (*ir.Resource, error) {
	if res == nil {
		return nil, ir.NewError(ir.CodeNilResource, "resource is nil", "")
	}
	return r.resolve(res.URI(), res.Kind(), res.Type())
}

// Len returns the number of cached handles.
func (r *Resolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Reset drops every cached handle. Handles returned earlier stay valid but
// are no longer identical to handles resolved afterwards.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles = make(map[cacheKey]*ir.Resource)
}

func (r *Resolver) resolve(uri string, kind ir.Kind, typ *ir.Type) (*ir.Resource, error) {
	if kind != ir.KindBasic && kind != ir.KindIdentified {
		return nil, ir.Errorf(ir.CodeTypeMismatch, "cannot resolve a %s handle", kind)
	}
	if err := ValidateURI(uri); err != nil {
		return nil, err
	}

	switch {
	case kind == ir.KindBasic:
		typ = nil
	case typ == nil:
		typ = ir.IdentifiedType
	}
	key := cacheKey{uri: ir.NormalizeURI(uri), kind: kind, typ: typ}

	r.mu.Lock()
	defer r.mu.Unlock()

	if res, ok := r.handles[key]; ok {
		return res, nil
	}
	res := ir.NewResource(key.uri, kind, typ)
	r.handles[key] = res
	return res, nil
}

// ValidateURI checks that uri has a scheme and a non-empty remainder.
func ValidateURI(uri string) error {
	if uri == "" {
		return ir.NewError(ir.CodeInvalidURI, "uri is empty", uri)
	}
	if strings.ContainsAny(uri, " \t\r\n<>\"{}|\\^`") {
		return ir.NewError(ir.CodeInvalidURI, "uri contains illegal characters", uri)
	}
	scheme, rest, ok := strings.Cut(uri, ":")
	if !ok || rest == "" {
		return ir.NewError(ir.CodeInvalidURI, "uri has no scheme separator", uri)
	}
	if !validScheme(scheme) {
		return ir.NewError(ir.CodeInvalidURI, "uri has an invalid scheme", uri)
	}
	return nil
}

// validScheme implements the RFC 3986 scheme production:
// ALPHA *( ALPHA / DIGIT / "+" / "-" / "." )
func validScheme(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}
