package abtest_test

import (
	"testing"

	"github.com/leadlift/leadlift/internal/abtest"
)

func TestSignificance_ClearWinner(t *testing.T) {
	// 12% vs 15% conversion over 1000 impressions each
	a := abtest.Counts{VariantID: "control", Impressions: 1000, Conversions: 120}
	b := abtest.Counts{VariantID: "variant_a", Impressions: 1000, Conversions: 150}

	result := abtest.Significance(a, b)

	if !result.IsSignificant {
		t.Errorf("expected significance, got confidence %f", result.Confidence)
	}
	if result.Confidence < 95 {
		t.Errorf("expected confidence >= 95, got %f", result.Confidence)
	}
	if result.Winner != "variant_a" {
		t.Errorf("expected variant_a to win, got %s", result.Winner)
	}
}

func TestSignificance_EqualRates(t *testing.T) {
	a := abtest.Counts{VariantID: "control", Impressions: 1000, Conversions: 50}
	b := abtest.Counts{VariantID: "variant_a", Impressions: 1000, Conversions: 50}

	result := abtest.Significance(a, b)

	if result.IsSignificant {
		t.Error("expected no significance for equal rates")
	}
	if result.Confidence > 5 {
		t.Errorf("expected near-zero confidence for equal rates, got %f", result.Confidence)
	}
}

func TestSignificance_SmallSampleGuard(t *testing.T) {
	cases := []struct {
		name string
		a, b abtest.Counts
	}{
		{
			name: "both arms small",
			a:    abtest.Counts{Impressions: 20, Conversions: 10},
			b:    abtest.Counts{Impressions: 20, Conversions: 2},
		},
		{
			name: "one arm small",
			a:    abtest.Counts{Impressions: 1000, Conversions: 300},
			b:    abtest.Counts{Impressions: 99, Conversions: 1},
		},
		{
			name: "no data",
			a:    abtest.Counts{},
			b:    abtest.Counts{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := abtest.Significance(tc.a, tc.b)
			if result.Confidence != 0 {
				t.Errorf("expected zero confidence, got %f", result.Confidence)
			}
			if result.IsSignificant {
				t.Error("expected not significant")
			}
		})
	}
}

func TestSignificance_ZeroStandardError(t *testing.T) {
	// No conversions anywhere: pooled proportion is 0, SE degenerates
	a := abtest.Counts{VariantID: "control", Impressions: 500, Conversions: 0}
	b := abtest.Counts{VariantID: "variant_a", Impressions: 500, Conversions: 0}

	result := abtest.Significance(a, b)

	if result.IsSignificant {
		t.Error("expected not significant with no conversions")
	}
	if result.Confidence != 0 {
		t.Errorf("expected zero confidence, got %f", result.Confidence)
	}
}

func TestSignificance_WinnerIsHigherRate(t *testing.T) {
	// Control converts better
	a := abtest.Counts{VariantID: "control", Impressions: 1000, Conversions: 200}
	b := abtest.Counts{VariantID: "variant_a", Impressions: 1000, Conversions: 100}

	result := abtest.Significance(a, b)

	if result.Winner != "control" {
		t.Errorf("expected control to win, got %s", result.Winner)
	}
	if !result.IsSignificant {
		t.Errorf("expected significance, got confidence %f", result.Confidence)
	}
}

func TestWilsonInterval_Basic(t *testing.T) {
	lower, upper := abtest.WilsonInterval(50, 1000, 0.95)

	// True rate 5%; the interval should bracket it tightly
	if lower >= 0.05 || upper <= 0.05 {
		t.Errorf("interval [%f, %f] does not contain 0.05", lower, upper)
	}
	if upper-lower > 0.04 {
		t.Errorf("interval [%f, %f] wider than expected", lower, upper)
	}
}

func TestWilsonInterval_NoTrials(t *testing.T) {
	lower, upper := abtest.WilsonInterval(0, 0, 0.95)
	if lower != 0 || upper != 0 {
		t.Errorf("expected [0, 0], got [%f, %f]", lower, upper)
	}
}

func TestWilsonInterval_Clamped(t *testing.T) {
	lower, upper := abtest.WilsonInterval(10, 10, 0.95)
	if upper > 1 {
		t.Errorf("upper bound %f exceeds 1", upper)
	}
	if lower < 0 {
		t.Errorf("lower bound %f below 0", lower)
	}
}
