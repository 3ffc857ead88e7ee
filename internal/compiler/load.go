package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/roach88/activegraph/internal/ir"
)

// FindFiles walks dir and returns every .cue file path in lexical order.
func FindFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// LoadFiles compiles each file on its own and merges the results in the
// order given. Files do not share a CUE scope; cross-file references go
// through prefixed names, which are bound during emission.
func LoadFiles(paths ...string) (*Ontology, error) {
	merged := &Ontology{}
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		o, err := CompileSource(path, string(src))
		if err != nil {
			return nil, err
		}
		merged.Merge(o)
	}
	return merged, nil
}

// Merge appends other's declarations to o.
func (o *Ontology) Merge(other *Ontology) {
	o.Prefixes = append(o.Prefixes, other.Prefixes...)
	o.Classes = append(o.Classes, other.Classes...)
	o.Properties = append(o.Properties, other.Properties...)
	o.Resources = append(o.Resources, other.Resources...)
}

// Empty reports whether o declares nothing.
func (o *Ontology) Empty() bool {
	return len(o.Prefixes) == 0 && len(o.Classes) == 0 &&
		len(o.Properties) == 0 && len(o.Resources) == 0
}

// ClassBinding pairs a model type with the class URI it maps to.
type ClassBinding struct {
	Type *ir.Type
	URI  string
}

// Bindings creates one model type per declared class, named after the
// class, in declaration order. Types descend from ir.IdentifiedType.
func (o *Ontology) Bindings() []ClassBinding {
	out := make([]ClassBinding, 0, len(o.Classes))
	for _, c := range o.Classes {
		out = append(out, ClassBinding{Type: ir.NewType(c.Name, nil), URI: c.URI})
	}
	return out
}
