package abtest

import "github.com/leadlift/leadlift/internal/store"

// VariantReport contains the observed statistics for a single variant.
type VariantReport struct {
	VariantID   string  `json:"variant_id"`
	Name        string  `json:"name"`
	Impressions int     `json:"impressions"`
	Conversions int     `json:"conversions"`
	Rate        float64 `json:"rate"`
	CILower     float64 `json:"ci_lower"`
	CIUpper     float64 `json:"ci_upper"`
}

// Report is the full statistical view of one test.
type Report struct {
	Variants     []VariantReport    `json:"variants"`
	Leading      string             `json:"leading_variant"`
	Significance SignificanceResult `json:"significance"`
}

// BuildReport computes per-variant rates with 95% Wilson intervals and
// the significance of the leading variant against the control (the
// first configured variant). Variants with no recorded events appear
// with zero counts.
func BuildReport(test *Test, stats []store.VariantStats) *Report {
	statsMap := make(map[string]store.VariantStats)
	for _, s := range stats {
		statsMap[s.VariantID] = s
	}

	variants := make([]VariantReport, len(test.Variants))
	maxRate := 0.0
	leading := 0

	for i, v := range test.Variants {
		stat := statsMap[v.ID] // Zero-valued if not present

		rate := 0.0
		if stat.Impressions > 0 {
			rate = float64(stat.Conversions) / float64(stat.Impressions)
		}

		ciLower, ciUpper := WilsonInterval(stat.Conversions, stat.Impressions, 0.95)

		variants[i] = VariantReport{
			VariantID:   v.ID,
			Name:        v.Name,
			Impressions: stat.Impressions,
			Conversions: stat.Conversions,
			Rate:        rate,
			CILower:     ciLower,
			CIUpper:     ciUpper,
		}

		if rate > maxRate {
			maxRate = rate
			leading = i
		}
	}

	report := &Report{
		Variants: variants,
		Leading:  variants[leading].VariantID,
	}

	if len(variants) >= 2 {
		challenger := leading
		if challenger == 0 {
			// Control is leading; compare against the best challenger.
			challenger = 1
			for i := 2; i < len(variants); i++ {
				if variants[i].Rate > variants[challenger].Rate {
					challenger = i
				}
			}
		}

		report.Significance = Significance(
			Counts{
				VariantID:   variants[0].VariantID,
				Impressions: variants[0].Impressions,
				Conversions: variants[0].Conversions,
			},
			Counts{
				VariantID:   variants[challenger].VariantID,
				Impressions: variants[challenger].Impressions,
				Conversions: variants[challenger].Conversions,
			},
		)
	}

	return report
}
