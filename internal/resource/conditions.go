package resource

// Condition constrains one attribute of a Find to one or more values.
//
// Attribute is a predicate handle (*ir.Resource), a prefixed or absolute
// predicate URI containing ':', or a symbolic attribute name resolved
// through predicate discovery. Each value is a term or a raw Go value
// coerced to a literal.
type Condition struct {
	Attribute any
	Values    []any
}

// Conditions is an ordered conjunction of conditions.
type Conditions []Condition

// Where creates a condition.
func Where(attribute any, values ...any) Condition {
	return Condition{Attribute: attribute, Values: values}
}

// FindOptions modifies a Find.
type FindOptions struct {
	// KeywordSearch matches literal values by substring.
	KeywordSearch bool
}
