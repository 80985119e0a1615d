package layout

import (
	"github.com/montanaflynn/stats"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// clampAxis repositions outliers in one coordinate column using the box-plot
// fences Q1−1.5·IQR and Q3+1.5·IQR. Values outside a fence move to just
// beyond the nearer fence plus a uniform [0, 0.5) offset away from the data,
// so multiple clamped outliers do not collapse onto the same point. In-range
// values are untouched.
//
// With fewer than four points the quartile fences are undefined and the pass
// is a no-op.
func clampAxis(m *mat.Dense, col int, rng *rand.Rand) {
	n, _ := m.Dims()
	if n < 4 {
		return
	}

	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		vals[i] = m.At(i, col)
	}

	q, err := stats.Quartile(vals)
	if err != nil {
		return
	}
	iqr, err := stats.InterQuartileRange(vals)
	if err != nil {
		return
	}

	lo := q.Q1 - 1.5*iqr
	hi := q.Q3 + 1.5*iqr

	for i := 0; i < n; i++ {
		switch v := m.At(i, col); {
		case v < lo:
			m.Set(i, col, lo-rng.Float64()*0.5)
		case v > hi:
			m.Set(i, col, hi+rng.Float64()*0.5)
		}
	}
}
