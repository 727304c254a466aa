// Package analysis turns stored listings into the two-ward rent verdict.
package analysis

import (
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// WelchResult holds the outcome of an unequal-variance two-sample t-test.
type WelchResult struct {
	TStat  float64 `json:"t_stat"`
	PValue float64 `json:"p_value"` // two-sided
	DF     float64 `json:"df"`     // Welch-Satterthwaite degrees of freedom
}

// WelchTTest runs Welch's t-test over two samples. Each sample needs at
// least two observations for a defined variance; anything less is an error
// rather than a silent NaN.
func WelchTTest(a, b []float64) (WelchResult, error) {
	if len(a) < 2 || len(b) < 2 {
		return WelchResult{}, eris.Errorf("welch: need at least 2 observations per sample, got %d and %d", len(a), len(b))
	}

	meanA, varA := stat.MeanVariance(a, nil)
	meanB, varB := stat.MeanVariance(b, nil)
	na, nb := float64(len(a)), float64(len(b))

	seA := varA / na
	seB := varB / nb
	se := seA + seB
	if se == 0 {
		return WelchResult{}, eris.New("welch: both samples have zero variance")
	}

	t := (meanA - meanB) / math.Sqrt(se)
	df := se * se / (seA*seA/(na-1) + seB*seB/(nb-1))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.CDF(-math.Abs(t))

	return WelchResult{TStat: t, PValue: p, DF: df}, nil
}
