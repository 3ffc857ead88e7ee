package ir

// Type is a node in the in-memory object model hierarchy.
//
// The hierarchy mirrors how callers model their domain: RootType is the
// untyped base of every resource, IdentifiedType is the family of resources
// that carry a class, and domain types descend from IdentifiedType:
//
//	person := ir.NewType("Person", ir.IdentifiedType)
//
// Types are compared by pointer. A Type is immutable after creation.
type Type struct {
	name   string
	parent *Type
}

var (
	// RootType is the untyped base of all resources.
	RootType = &Type{name: "Resource"}

	// IdentifiedType is the base of all resources that belong to a class.
	IdentifiedType = &Type{name: "IdentifiedResource", parent: RootType}
)

// NewType creates a model type with the given parent.
// A nil parent defaults to IdentifiedType.
func NewType(name string, parent *Type) *Type {
	if parent == nil {
		parent = IdentifiedType
	}
	return &Type{name: name, parent: parent}
}

// Name returns the type name.
func (t *Type) Name() string { return t.name }

// Parent returns the parent type, nil for RootType.
func (t *Type) Parent() *Type { return t.parent }

// String returns the type name.
func (t *Type) String() string { return t.name }

// IsRoot reports whether t is the untyped root.
func (t *Type) IsRoot() bool { return t == RootType }

// DescendsFrom reports whether ancestor is t itself or one of its ancestors.
func (t *Type) DescendsFrom(ancestor *Type) bool {
	for cur := t; cur != nil; cur = cur.parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// IsClassScoped reports whether queries issued for t carry an implicit
// rdf:type condition: t must be a proper descendant of IdentifiedType.
func (t *Type) IsClassScoped() bool {
	return t != IdentifiedType && t.DescendsFrom(IdentifiedType)
}

// Ancestors returns t followed by its ancestors up to RootType.
func (t *Type) Ancestors() []*Type {
	var out []*Type
	for cur := t; cur != nil; cur = cur.parent {
		out = append(out, cur)
	}
	return out
}
