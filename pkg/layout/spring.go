package layout

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// springRefine runs a weighted Fruchterman–Reingold spring embedder over pos
// in place. Attraction along each edge is scaled by its biased weight, so the
// community bias computed by the engine carries through to the final
// placement. Starting from the spectral seed keeps the result independent of
// random initial positions; rng is used only to separate exactly coincident
// points.
//
// gonum's graph/layout embedders do not consume per-edge weights, which is
// the entire point of this stage, so the force loop is implemented here over
// the gonum matrix directly.
func springRefine(pos *mat.Dense, edges []edge, iterations int, rng *rand.Rand) {
	n, _ := pos.Dims()
	if n < 2 {
		return
	}

	maxW := 0.0
	for _, e := range edges {
		if e.w > maxW {
			maxW = e.w
		}
	}
	if maxW == 0 {
		maxW = 1
	}

	area := float64(n)
	k := math.Sqrt(area / float64(n)) // ideal pairwise distance
	temp := 0.1 * math.Sqrt(area)
	cool := temp / float64(iterations+1)

	dx := make([]float64, n)
	dy := make([]float64, n)

	for it := 0; it < iterations; it++ {
		for i := range dx {
			dx[i], dy[i] = 0, 0
		}

		// Pairwise repulsion.
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				ddx := pos.At(i, 0) - pos.At(j, 0)
				ddy := pos.At(i, 1) - pos.At(j, 1)
				d := math.Hypot(ddx, ddy)
				if d < 1e-9 {
					// Coincident points get a random nudge so the force has
					// a direction.
					ddx = (rng.Float64() - 0.5) * 1e-3
					ddy = (rng.Float64() - 0.5) * 1e-3
					d = math.Hypot(ddx, ddy)
				}
				f := k * k / d
				dx[i] += ddx / d * f
				dy[i] += ddy / d * f
				dx[j] -= ddx / d * f
				dy[j] -= ddy / d * f
			}
		}

		// Weighted attraction along edges.
		for _, e := range edges {
			ddx := pos.At(e.u, 0) - pos.At(e.v, 0)
			ddy := pos.At(e.u, 1) - pos.At(e.v, 1)
			d := math.Hypot(ddx, ddy)
			if d < 1e-9 {
				continue
			}
			f := d * d / k * (e.w / maxW)
			dx[e.u] -= ddx / d * f
			dy[e.u] -= ddy / d * f
			dx[e.v] += ddx / d * f
			dy[e.v] += ddy / d * f
		}

		// Apply displacements limited by the cooling temperature.
		for i := 0; i < n; i++ {
			d := math.Hypot(dx[i], dy[i])
			if d < 1e-9 {
				continue
			}
			step := math.Min(d, temp)
			pos.Set(i, 0, pos.At(i, 0)+dx[i]/d*step)
			pos.Set(i, 1, pos.At(i, 1)+dy[i]/d*step)
		}

		temp -= cool
		if temp <= 0 {
			break
		}
	}
}
