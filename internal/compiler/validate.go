package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/activegraph/internal/identity"
	"github.com/roach88/activegraph/internal/ir"
	"github.com/roach88/activegraph/internal/namespace"
)

// Validation error codes (E100-E199)
const (
	ErrInvalidPrefix      = "E100" // prefix cannot be bound
	ErrInvalidURI         = "E101" // uri does not expand to a valid URI
	ErrMalformedPredicate = "E102" // predicate uri has no local name
	ErrDuplicateClass     = "E103" // two classes share a uri
	ErrAmbiguousAttribute = "E104" // two properties share a local name on one domain
	ErrNoDomain           = "E105" // property has no domain and is never discovered
	ErrUnknownPrefix      = "E106" // prefixed name uses an unbound prefix
	ErrUnknownBlank       = "E107" // _: reference names no anonymous resource
)

// uriSchemes are schemes accepted without a prefix binding.
var uriSchemes = map[string]bool{
	"http": true, "https": true, "urn": true, "mailto": true,
	"tag": true, "file": true, "did": true,
}

// ValidationError represents an ontology validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks an ontology for statements that would load but break
// attribute discovery. Returns all errors found (does not fail-fast).
func Validate(o *Ontology) []ValidationError {
	var errs []ValidationError
	ns := namespace.New()

	for _, p := range o.Prefixes {
		if err := ns.Bind(p.Name, p.IRI); err != nil {
			errs = append(errs, ValidationError{
				Field:   "prefix." + p.Name,
				Message: err.Error(),
				Code:    ErrInvalidPrefix,
			})
		}
	}

	checkURI := func(field, name string, line int) (string, bool) {
		uri := ns.Expand(name)
		if prefix, local, ok := strings.Cut(uri, ":"); ok && uri == name &&
			!strings.HasPrefix(local, "//") && !uriSchemes[prefix] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("prefix %q is not bound", prefix),
				Code:    ErrUnknownPrefix,
				Line:    line,
			})
			return "", false
		}
		if err := identity.ValidateURI(uri); err != nil {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%q does not expand to a valid URI", name),
				Code:    ErrInvalidURI,
				Line:    line,
			})
			return "", false
		}
		return uri, true
	}

	classes := make(map[string]string)
	for _, c := range o.Classes {
		field := "class." + c.Name
		line := c.Pos.Line()
		if uri, ok := checkURI(field+".uri", c.URI, line); ok {
			if prev, dup := classes[uri]; dup {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("uri %s is already declared by class %s", uri, prev),
					Code:    ErrDuplicateClass,
					Line:    line,
				})
			} else {
				classes[uri] = c.Name
			}
		}
		for _, s := range c.SubClassOf {
			checkURI(field+".subClassOf", s, line)
		}
	}

	// domain uri -> local name -> property name
	attrs := make(map[string]map[string]string)
	for _, p := range o.Properties {
		field := "property." + p.Name
		line := p.Pos.Line()
		uri, ok := checkURI(field+".uri", p.URI, line)
		if !ok {
			continue
		}
		local, err := ir.LocalName(uri)
		if err != nil || local == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".uri",
				Message: fmt.Sprintf("%s has no local name after '#' or '/'", uri),
				Code:    ErrMalformedPredicate,
				Line:    line,
			})
			continue
		}
		if len(p.Domain) == 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".domain",
				Message: "property has no domain; use owl:Thing for a universal attribute",
				Code:    ErrNoDomain,
				Line:    line,
			})
		}
		for _, d := range p.Domain {
			domain, ok := checkURI(field+".domain", d, line)
			if !ok {
				continue
			}
			if attrs[domain] == nil {
				attrs[domain] = make(map[string]string)
			}
			if prev, dup := attrs[domain][local]; dup {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("attribute %s on %s is already declared by property %s", local, domain, prev),
					Code:    ErrAmbiguousAttribute,
					Line:    line,
				})
				continue
			}
			attrs[domain][local] = p.Name
		}
		if p.Range != "" {
			checkURI(field+".range", p.Range, line)
		}
	}

	anonymous := make(map[string]bool)
	for _, r := range o.Resources {
		if r.URI == "" {
			anonymous[r.Name] = true
		}
	}
	for _, r := range o.Resources {
		field := "resource." + r.Name
		line := r.Pos.Line()
		if r.URI != "" {
			checkURI(field+".uri", r.URI, line)
		}
		for _, t := range r.Types {
			checkURI(field+".type", t, line)
		}
		for _, v := range r.Values {
			checkURI(field+".values", v.Predicate, line)
			for _, obj := range v.Objects {
				if !obj.IsRef() {
					continue
				}
				if name, ok := strings.CutPrefix(obj.Ref, BlankPrefix); ok {
					if !anonymous[name] {
						errs = append(errs, ValidationError{
							Field:   field + ".values." + v.Predicate,
							Message: fmt.Sprintf("no anonymous resource named %q", name),
							Code:    ErrUnknownBlank,
							Line:    line,
						})
					}
					continue
				}
				checkURI(field+".values."+v.Predicate, obj.Ref, line)
			}
		}
	}

	return errs
}
