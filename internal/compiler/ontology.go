// Package compiler compiles CUE ontology files into RDF statements.
//
// An ontology file declares prefixes, classes, properties and resources:
//
//	prefix: ex: "http://ex.org/"
//
//	class: Person: {
//		uri:        "ex:Person"
//		subClassOf: "foaf:Agent"
//	}
//
//	property: firstName: {
//		uri:    "foaf:firstName"
//		domain: "ex:Person"
//	}
//
//	resource: alice: {
//		uri:  "ex:alice"
//		type: "ex:Person"
//		values: "foaf:firstName": "Alice"
//	}
//
// Fields that name classes or predicates accept a single string or a list.
// Values are strings, numbers, booleans, {ref: "..."} for resources, or
// {value: "...", datatype: "..."} for typed literals.
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Ontology is a compiled ontology file, in declaration order.
type Ontology struct {
	Prefixes   []Prefix
	Classes    []ClassDef
	Properties []PropertyDef
	Resources  []ResourceDef
}

// Prefix binds a short name to a namespace IRI.
type Prefix struct {
	Name string
	IRI  string
}

// ClassDef declares an RDF class.
type ClassDef struct {
	Name       string
	URI        string
	Label      string
	SubClassOf []string
	Pos        token.Pos
}

// PropertyDef declares a predicate and the classes it applies to.
type PropertyDef struct {
	Name   string
	URI    string
	Label  string
	Domain []string
	Range  string
	Pos    token.Pos
}

// ResourceDef declares an instance and its statements. A resource without
// a URI is anonymous; other resources refer to it as "_:<name>".
type ResourceDef struct {
	Name   string
	URI    string
	Types  []string
	Values []ValueDef
	Pos    token.Pos
}

// ValueDef is one predicate of a resource with its objects.
type ValueDef struct {
	Predicate string
	Objects   []Object
}

// Object is a resource reference or a literal value.
// Exactly one of Ref and Value is set.
type Object struct {
	Ref      string
	Value    any
	Datatype string
}

// IsRef reports whether the object references a resource.
func (o Object) IsRef() bool { return o.Ref != "" }

// CompileSource compiles CUE source text.
func CompileSource(filename, src string) (*Ontology, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	return CompileOntology(v)
}

// CompileOntology parses a CUE value into an Ontology.
// Uses CUE SDK's Go API directly (not CLI subprocess).
func CompileOntology(v cue.Value) (*Ontology, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	o := &Ontology{}
	var err error

	if o.Prefixes, err = parsePrefixes(v); err != nil {
		return nil, err
	}
	if o.Classes, err = parseClasses(v); err != nil {
		return nil, err
	}
	if o.Properties, err = parseProperties(v); err != nil {
		return nil, err
	}
	if o.Resources, err = parseResources(v); err != nil {
		return nil, err
	}
	return o, nil
}

func parsePrefixes(v cue.Value) ([]Prefix, error) {
	var prefixes []Prefix
	err := eachField(v, "prefix", func(name string, fv cue.Value) error {
		iri, err := fv.String()
		if err != nil {
			return formatCUEError(err)
		}
		prefixes = append(prefixes, Prefix{Name: name, IRI: iri})
		return nil
	})
	return prefixes, err
}

func parseClasses(v cue.Value) ([]ClassDef, error) {
	var classes []ClassDef
	err := eachField(v, "class", func(name string, fv cue.Value) error {
		def := ClassDef{Name: name, Pos: fv.Pos()}
		var err error
		if def.URI, err = requiredString(fv, "uri"); err != nil {
			return err
		}
		if def.Label, err = optionalString(fv, "label"); err != nil {
			return err
		}
		if def.SubClassOf, err = stringOrList(fv, "subClassOf"); err != nil {
			return err
		}
		classes = append(classes, def)
		return nil
	})
	return classes, err
}

func parseProperties(v cue.Value) ([]PropertyDef, error) {
	var props []PropertyDef
	err := eachField(v, "property", func(name string, fv cue.Value) error {
		def := PropertyDef{Name: name, Pos: fv.Pos()}
		var err error
		if def.URI, err = requiredString(fv, "uri"); err != nil {
			return err
		}
		if def.Label, err = optionalString(fv, "label"); err != nil {
			return err
		}
		if def.Domain, err = stringOrList(fv, "domain"); err != nil {
			return err
		}
		if def.Range, err = optionalString(fv, "range"); err != nil {
			return err
		}
		props = append(props, def)
		return nil
	})
	return props, err
}

func parseResources(v cue.Value) ([]ResourceDef, error) {
	var resources []ResourceDef
	err := eachField(v, "resource", func(name string, fv cue.Value) error {
		def := ResourceDef{Name: name, Pos: fv.Pos()}
		var err error
		if def.URI, err = optionalString(fv, "uri"); err != nil {
			return err
		}
		if def.Types, err = stringOrList(fv, "type"); err != nil {
			return err
		}
		err = eachField(fv, "values", func(pred string, pv cue.Value) error {
			objects, err := parseObjects(pv)
			if err != nil {
				return err
			}
			def.Values = append(def.Values, ValueDef{Predicate: pred, Objects: objects})
			return nil
		})
		if err != nil {
			return err
		}
		resources = append(resources, def)
		return nil
	})
	return resources, err
}

// parseObjects parses one value or a list of values.
func parseObjects(v cue.Value) ([]Object, error) {
	if v.Kind() != cue.ListKind {
		o, err := parseObject(v)
		if err != nil {
			return nil, err
		}
		return []Object{o}, nil
	}

	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var objects []Object
	for iter.Next() {
		o, err := parseObject(iter.Value())
		if err != nil {
			return nil, err
		}
		objects = append(objects, o)
	}
	return objects, nil
}

func parseObject(v cue.Value) (Object, error) {
	switch v.Kind() {
	case cue.StringKind:
		s, err := v.String()
		return Object{Value: s}, formatCUEError(err)
	case cue.IntKind:
		n, err := v.Int64()
		return Object{Value: n}, formatCUEError(err)
	case cue.FloatKind:
		f, err := v.Float64()
		return Object{Value: f}, formatCUEError(err)
	case cue.BoolKind:
		b, err := v.Bool()
		return Object{Value: b}, formatCUEError(err)
	case cue.StructKind:
		if ref := v.LookupPath(cue.ParsePath("ref")); ref.Exists() {
			s, err := ref.String()
			return Object{Ref: s}, formatCUEError(err)
		}
		value, err := requiredString(v, "value")
		if err != nil {
			return Object{}, err
		}
		dt, err := optionalString(v, "datatype")
		if err != nil {
			return Object{}, err
		}
		return Object{Value: value, Datatype: dt}, nil
	default:
		return Object{}, &CompileError{
			Field:   "values",
			Message: fmt.Sprintf("unsupported value kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// eachField calls fn for every regular field of the struct at path.
// A missing path is not an error.
func eachField(v cue.Value, path string, fn func(name string, fv cue.Value) error) error {
	sv := v.LookupPath(cue.ParsePath(path))
	if !sv.Exists() {
		return nil
	}
	iter, err := sv.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		if err := fn(fieldName(iter.Selector()), iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

// fieldName returns a field label without quotes, so that
// "foaf:firstName": ... yields foaf:firstName.
func fieldName(sel cue.Selector) string {
	if sel.LabelType() == cue.StringLabel {
		return sel.Unquoted()
	}
	return sel.String()
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// stringOrList reads a field holding a string or a list of strings.
func stringOrList(v cue.Value, field string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	if s, err := fv.String(); err == nil {
		return []string{s}, nil
	}

	iter, err := fv.List()
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: "must be a string or a list of strings",
			Pos:     fv.Pos(),
		}
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
