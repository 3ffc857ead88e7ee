package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario; it also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Ontology lists CUE files loaded into the store before the steps run.
	Ontology []string `yaml:"ontology"`

	// CyclePolicy is "fail" (default) or "tolerate".
	CyclePolicy string `yaml:"cycle_policy,omitempty"`

	// Steps run in order against the loaded store.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final store state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step operations.
const (
	OpFind       = "find"
	OpGet        = "get"
	OpExists     = "exists"
	OpPredicates = "predicates"
	OpIdentify   = "identify"
)

// Step is one read against the store.
type Step struct {
	// Op is one of find, get, exists, predicates, identify.
	Op string `yaml:"op"`

	// Class names a model type; empty means the untyped root.
	Class string `yaml:"class,omitempty"`

	// Where holds find conditions in order.
	Where []ConditionDef `yaml:"where,omitempty"`

	// Keyword enables keyword search for find.
	Keyword bool `yaml:"keyword,omitempty"`

	// Subject is used by get, exists and identify.
	Subject string `yaml:"subject,omitempty"`

	// Predicate is used by get.
	Predicate string `yaml:"predicate,omitempty"`

	// Expect validates the outcome. Unset fields are not checked.
	Expect Expect `yaml:"expect"`
}

// ConditionDef is one find condition. Attr is an attribute name or a
// prefixed predicate; values are literals or {ref: name} maps.
type ConditionDef struct {
	Attr   string `yaml:"attr"`
	Values []any  `yaml:"values,omitempty"`
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// Kind is absent, scalar or collection.
	Kind string `yaml:"kind,omitempty"`

	// Values are compared as a set against the rendered outcome.
	Values []string `yaml:"values,omitempty"`

	// Exists is the expected answer of an exists step.
	Exists *bool `yaml:"exists,omitempty"`

	// Names are the expected attribute names of a predicates step.
	Names []string `yaml:"names,omitempty"`

	// Type is the expected model type of an identify step.
	Type string `yaml:"type,omitempty"`

	// Error is the expected error code; the step must fail with it.
	Error string `yaml:"error,omitempty"`
}

// Assertion types.
const (
	AssertHolds       = "holds"
	AssertAbsent      = "absent"
	AssertTripleCount = "triple_count"
)

// Assertion validates the store after the steps ran.
type Assertion struct {
	Type      string `yaml:"type"`
	Subject   string `yaml:"subject,omitempty"`
	Predicate string `yaml:"predicate,omitempty"`
	Object    any    `yaml:"object,omitempty"`
	Count     int    `yaml:"count,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Ontology paths are
// resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving ontology paths relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Reject unknown fields so typos like "asserts:" fail loudly.
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, p := range scenario.Ontology {
		if !filepath.IsAbs(p) && basePath != "" {
			scenario.Ontology[i] = filepath.Join(basePath, p)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Ontology) == 0 {
		return fmt.Errorf("ontology list is required and must be non-empty")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	switch s.CyclePolicy {
	case "", "fail", "tolerate":
	default:
		return fmt.Errorf("cycle_policy must be fail or tolerate, got %q", s.CyclePolicy)
	}

	for _, p := range s.Ontology {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("ontology file not found: %s", p)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, s *Step) error {
	switch s.Op {
	case OpFind:
		for j, c := range s.Where {
			if c.Attr == "" {
				return fmt.Errorf("steps[%d].where[%d]: attr is required", index, j)
			}
		}
	case OpGet:
		if s.Subject == "" || s.Predicate == "" {
			return fmt.Errorf("steps[%d]: subject and predicate are required for get", index)
		}
	case OpExists, OpIdentify:
		if s.Subject == "" {
			return fmt.Errorf("steps[%d]: subject is required for %s", index, s.Op)
		}
	case OpPredicates:
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, s.Op)
	}

	switch s.Expect.Kind {
	case "", "absent", "scalar", "collection":
	default:
		return fmt.Errorf("steps[%d].expect: unknown kind %q", index, s.Expect.Kind)
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertHolds, AssertAbsent:
		if a.Subject == "" || a.Predicate == "" || a.Object == nil {
			return fmt.Errorf("assertions[%d]: subject, predicate and object are required for %s", index, a.Type)
		}
	case AssertTripleCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
