package ir

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeURI returns the NFC form of a URI.
// Two URIs that differ only in Unicode composition identify the same node.
func NormalizeURI(uri string) string {
	return norm.NFC.String(uri)
}

// NormalizeText returns the NFC form of a literal value.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}

// CanonicalKey returns a deterministic string key for a term.
//
// Keys are what result deduplication compares: two terms with equal keys
// are structurally equal regardless of handle identity or kind. Resources
// compare by normalized URI; literals compare by NFC value and datatype,
// with an empty datatype treated as xsd:string.
func CanonicalKey(t Term) string {
	switch v := t.(type) {
	case *Resource:
		if v == nil {
			return "_"
		}
		return "<" + NormalizeURI(v.uri) + ">"
	case Literal:
		dt := v.Datatype
		if dt == "" {
			dt = XSDString
		}
		return strconv.Quote(NormalizeText(v.Value)) + "^^<" + dt + ">"
	case Variable:
		return "?" + string(v)
	case nil:
		return "_"
	default:
		return t.String()
	}
}

// TupleKey returns the canonical key of a tuple of terms.
// Terms are joined with a tab, which cannot appear unescaped in a key.
func TupleKey(terms []Term) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = CanonicalKey(t)
	}
	return strings.Join(parts, "\t")
}

// Equal reports whether two terms are structurally equal.
func Equal(a, b Term) bool {
	return CanonicalKey(a) == CanonicalKey(b)
}
