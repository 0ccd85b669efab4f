package abtest

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/leadlift/leadlift/internal/store"
)

const (
	EventImpression = "impression"
	EventConversion = "conversion"
)

// ErrUnknownTest is returned when a test ID is not in the registry.
var ErrUnknownTest = errors.New("unknown test")

// Assigner buckets visitors into variants. Assignments are sticky: the
// first draw for a (visitor, test) pair is persisted and reused.
type Assigner struct {
	registry *Registry
	store    store.Store
	randPct  func() float64 // uniform draw in [0, 100)
}

func NewAssigner(r *Registry, s store.Store) *Assigner {
	return &Assigner{
		registry: r,
		store:    s,
		randPct:  func() float64 { return rand.Float64() * 100 },
	}
}

// SetRand overrides the random source, for tests. fn must return a
// value in [0, 100).
func (a *Assigner) SetRand(fn func() float64) {
	a.randPct = fn
}

// Variant returns the visitor's sticky variant for a test, assigning on
// first exposure. Running tests record an impression; non-running tests
// fall back to control without persisting so the visitor is
// re-evaluated once the test resumes. On storage errors the test is
// still returned so callers can degrade to control.
func (a *Assigner) Variant(ctx context.Context, testID, visitorID string) (*Test, *Variant, error) {
	test := a.registry.Get(testID)
	if test == nil {
		return nil, nil, ErrUnknownTest
	}

	if test.Status != StatusRunning {
		v := test.Variant(ControlVariantID)
		if v == nil {
			v = &Variant{ID: ControlVariantID, Name: "Control"}
		}
		return test, v, nil
	}

	variantID, err := a.store.GetAssignment(ctx, testID, visitorID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return test, nil, fmt.Errorf("failed to load assignment: %w", err)
	}

	if errors.Is(err, store.ErrNotFound) {
		variantID = a.draw(test)
		if err := a.store.PutAssignment(ctx, testID, visitorID, variantID); err != nil {
			return test, nil, fmt.Errorf("failed to persist assignment: %w", err)
		}
	}

	variant := test.Variant(variantID)
	if variant == nil {
		// Stored assignment predates a definition change.
		variant = &test.Variants[0]
	}

	if err := a.RecordImpression(ctx, testID, variant.ID, visitorID); err != nil {
		return test, nil, err
	}

	return test, variant, nil
}

// draw walks the variant list accumulating traffic split percentages and
// picks the first variant whose cumulative threshold meets the draw.
func (a *Assigner) draw(test *Test) string {
	random := a.randPct()
	cumulative := 0.0

	for i, v := range test.Variants {
		cumulative += float64(test.TrafficSplit[i])
		if random <= cumulative {
			return v.ID
		}
	}

	return test.Variants[0].ID
}

// RecordImpression counts a unique exposure of a visitor to a variant.
func (a *Assigner) RecordImpression(ctx context.Context, testID, variantID, visitorID string) error {
	err := a.store.RecordABEvent(ctx, &store.ABEvent{
		TestID:    testID,
		VariantID: variantID,
		EventType: EventImpression,
		VisitorID: visitorID,
	})
	if err != nil {
		return fmt.Errorf("failed to record impression: %w", err)
	}
	return nil
}

// RecordConversion counts a goal completion for the visitor's variant.
func (a *Assigner) RecordConversion(ctx context.Context, testID, variantID, visitorID string, value float64) error {
	test := a.registry.Get(testID)
	if test == nil {
		return ErrUnknownTest
	}
	if test.Variant(variantID) == nil {
		return fmt.Errorf("test %q has no variant %q", testID, variantID)
	}

	err := a.store.RecordABEvent(ctx, &store.ABEvent{
		TestID:    testID,
		VariantID: variantID,
		EventType: EventConversion,
		VisitorID: visitorID,
		Value:     value,
	})
	if err != nil {
		return fmt.Errorf("failed to record conversion: %w", err)
	}
	return nil
}
