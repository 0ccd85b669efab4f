// Package abtest buckets visitors into test variants with sticky
// assignments and computes the statistics behind variant comparisons.
package abtest

import "fmt"

// Status is the lifecycle state of a test.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// ControlVariantID is the fallback assignment for tests that are not
// running. It is never persisted, so visitors are re-bucketed once the
// test resumes.
const ControlVariantID = "control"

// Variant is one configuration alternative in a test.
type Variant struct {
	ID          string            `yaml:"id" json:"id"`
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Config      map[string]string `yaml:"config,omitempty" json:"config,omitempty"`
}

// Test is an A/B test definition. Definitions are seed data loaded at
// startup; edits are not persisted.
type Test struct {
	ID             string    `yaml:"id" json:"id"`
	Name           string    `yaml:"name" json:"name"`
	Variants       []Variant `yaml:"variants" json:"variants"`
	TrafficSplit   []int     `yaml:"traffic_split" json:"traffic_split"`
	Status         Status    `yaml:"status" json:"status"`
	ConversionGoal string    `yaml:"conversion_goal,omitempty" json:"conversion_goal,omitempty"`
}

// Variant returns the variant with the given ID, or nil.
func (t *Test) Variant(id string) *Variant {
	for i := range t.Variants {
		if t.Variants[i].ID == id {
			return &t.Variants[i]
		}
	}
	return nil
}

// Validate checks structural consistency of a definition.
func (t *Test) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("test has no id")
	}
	if len(t.Variants) < 2 {
		return fmt.Errorf("test %q needs at least 2 variants", t.ID)
	}
	if len(t.TrafficSplit) != len(t.Variants) {
		return fmt.Errorf("test %q has %d variants but %d traffic split entries",
			t.ID, len(t.Variants), len(t.TrafficSplit))
	}

	total := 0
	for _, pct := range t.TrafficSplit {
		if pct < 0 {
			return fmt.Errorf("test %q has a negative traffic split entry", t.ID)
		}
		total += pct
	}
	if total != 100 {
		return fmt.Errorf("test %q traffic split sums to %d, want 100", t.ID, total)
	}

	seen := make(map[string]bool)
	for _, v := range t.Variants {
		if v.ID == "" {
			return fmt.Errorf("test %q has a variant with no id", t.ID)
		}
		if seen[v.ID] {
			return fmt.Errorf("test %q has duplicate variant %q", t.ID, v.ID)
		}
		seen[v.ID] = true
	}

	return nil
}

// Registry holds the configured test definitions.
type Registry struct {
	tests map[string]*Test
	order []string
}

// NewRegistry validates the definitions and indexes them by ID.
func NewRegistry(tests []Test) (*Registry, error) {
	r := &Registry{tests: make(map[string]*Test)}
	for i := range tests {
		t := &tests[i]
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, ok := r.tests[t.ID]; ok {
			return nil, fmt.Errorf("duplicate test %q", t.ID)
		}
		r.tests[t.ID] = t
		r.order = append(r.order, t.ID)
	}
	return r, nil
}

// Get returns the test with the given ID, or nil.
func (r *Registry) Get(id string) *Test {
	return r.tests[id]
}

// List returns all tests in configuration order.
func (r *Registry) List() []*Test {
	out := make([]*Test, len(r.order))
	for i, id := range r.order {
		out[i] = r.tests[id]
	}
	return out
}
