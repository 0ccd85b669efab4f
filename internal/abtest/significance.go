package abtest

import "math"

// minSampleSize is the insufficient-power guard: arms with fewer
// impressions than this never report significance.
const minSampleSize = 100

// Counts holds the observed totals for one variant arm.
type Counts struct {
	VariantID   string
	Impressions int
	Conversions int
}

// Rate returns the observed conversion rate.
func (c Counts) Rate() float64 {
	if c.Impressions == 0 {
		return 0
	}
	return float64(c.Conversions) / float64(c.Impressions)
}

// SignificanceResult is the outcome of comparing two variant arms.
type SignificanceResult struct {
	Confidence    float64 `json:"confidence"` // 0-100
	IsSignificant bool    `json:"is_significant"`
	Winner        string  `json:"winner"`
}

// Significance runs a two-proportion z-test between two variant arms.
// Either arm below the minimum sample size yields zero confidence.
// Significance is declared at >= 95% confidence; the winner is the arm
// with the higher observed conversion rate.
func Significance(a, b Counts) SignificanceResult {
	if a.Impressions < minSampleSize || b.Impressions < minSampleSize {
		return SignificanceResult{}
	}

	pA := a.Rate()
	pB := b.Rate()

	winner := a.VariantID
	if pB > pA {
		winner = b.VariantID
	}

	// Pooled proportion under the null hypothesis pA = pB.
	pooled := float64(a.Conversions+b.Conversions) / float64(a.Impressions+b.Impressions)
	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(a.Impressions) + 1/float64(b.Impressions)))
	if se == 0 {
		return SignificanceResult{Winner: winner}
	}

	z := math.Abs(pA-pB) / se

	// Two-tailed confidence that the observed difference is real.
	confidence := (1 - 2*(1-normalCDF(z))) * 100
	if confidence < 0 {
		confidence = 0
	}

	return SignificanceResult{
		Confidence:    confidence,
		IsSignificant: confidence >= 95,
		Winner:        winner,
	}
}

// normalCDF approximates the cumulative distribution function of the
// standard normal distribution.
func normalCDF(x float64) float64 {
	return 0.5 * (1 + erf(x/math.Sqrt2))
}

// erf approximates the error function using the Abramowitz and Stegun
// polynomial (Handbook of Mathematical Functions, formula 7.1.26),
// accurate to about 1.5e-7.
func erf(x float64) float64 {
	a1 := 0.254829592
	a2 := -0.284496736
	a3 := 1.421413741
	a4 := -1.453152027
	a5 := 1.061405429
	p := 0.3275911

	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	x = math.Abs(x)

	t := 1.0 / (1.0 + p*x)
	y := 1.0 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*math.Exp(-x*x)

	return sign * y
}
