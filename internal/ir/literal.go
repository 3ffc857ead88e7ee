package ir

import (
	"fmt"
	"strconv"
	"time"
)

// XML Schema datatype URIs used by the default coercer.
const (
	XSDNamespace = "http://www.w3.org/2001/XMLSchema#"
	XSDString    = XSDNamespace + "string"
	XSDInteger   = XSDNamespace + "integer"
	XSDDouble    = XSDNamespace + "double"
	XSDBoolean   = XSDNamespace + "boolean"
	XSDDateTime  = XSDNamespace + "dateTime"
)

// Coercer turns a raw Go value into a literal.
// Datatype selection is delegated: callers never inspect Go types themselves.
type Coercer interface {
	Coerce(value any) (Literal, error)
}

// CoercerFunc adapts a function to the Coercer interface.
type CoercerFunc func(value any) (Literal, error)

// Coerce calls f(value).
func (f CoercerFunc) Coerce(value any) (Literal, error) { return f(value) }

// XSDCoercer maps Go scalar types to XML Schema datatypes.
type XSDCoercer struct{}

// Coerce implements Coercer.
func (XSDCoercer) Coerce(value any) (Literal, error) {
	switch v := value.(type) {
	case Literal:
		return v, nil
	case string:
		return Literal{Value: v, Datatype: XSDString}, nil
	case bool:
		return Literal{Value: strconv.FormatBool(v), Datatype: XSDBoolean}, nil
	case int:
		return Literal{Value: strconv.FormatInt(int64(v), 10), Datatype: XSDInteger}, nil
	case int32:
		return Literal{Value: strconv.FormatInt(int64(v), 10), Datatype: XSDInteger}, nil
	case int64:
		return Literal{Value: strconv.FormatInt(v, 10), Datatype: XSDInteger}, nil
	case uint:
		return Literal{Value: strconv.FormatUint(uint64(v), 10), Datatype: XSDInteger}, nil
	case uint64:
		return Literal{Value: strconv.FormatUint(v, 10), Datatype: XSDInteger}, nil
	case float32:
		return Literal{Value: strconv.FormatFloat(float64(v), 'g', -1, 32), Datatype: XSDDouble}, nil
	case float64:
		return Literal{Value: strconv.FormatFloat(v, 'g', -1, 64), Datatype: XSDDouble}, nil
	case time.Time:
		return Literal{Value: v.UTC().Format(time.RFC3339Nano), Datatype: XSDDateTime}, nil
	case fmt.Stringer:
		return Literal{Value: v.String(), Datatype: XSDString}, nil
	case nil:
		return Literal{}, NewError(CodeNilResource, "cannot coerce nil to a literal", "")
	default:
		return Literal{}, Errorf(CodeTypeMismatch, "cannot coerce %T to a literal", value)
	}
}
