package layout

import (
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/mds"
)

// spectralSeed computes deterministic initial coordinates by classical
// (Torgerson) multidimensional scaling over all-pairs graph distances, with
// edge length the inverse of the biased weight. Heavily weighted
// same-community edges become short distances, so the seed already groups
// communities before the spring stage runs.
//
// Networks too degenerate for MDS (a single node, or no usable distance
// structure) fall back to evenly spaced points on a unit circle, which is
// equally deterministic.
func spectralSeed(n int, edges []edge) *mat.Dense {
	if n == 1 {
		return mat.NewDense(1, 2, []float64{0, 0})
	}
	if len(edges) == 0 {
		return circleSeed(n)
	}

	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		g.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(e.u),
			T: simple.Node(e.v),
			W: 1 / e.w,
		})
	}

	paths, _ := path.FloydWarshall(g)

	dist := mat.NewSymDense(n, nil)
	maxFinite := 0.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := paths.Weight(int64(i), int64(j))
			if !math.IsInf(d, 1) && d > maxFinite {
				maxFinite = d
			}
		}
	}
	if maxFinite == 0 {
		return circleSeed(n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := paths.Weight(int64(i), int64(j))
			if math.IsInf(d, 1) {
				// Disconnected components sit a little beyond the widest
				// finite distance instead of breaking the scaling.
				d = maxFinite * 1.2
			}
			dist.SetSym(i, j, d)
		}
	}

	var coords mat.Dense
	var eigenvals []float64
	k, _ := mds.TorgersonScaling(&coords, eigenvals, dist)
	if k < 2 {
		return circleSeed(n)
	}

	out := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		out.Set(i, 0, coords.At(i, 0))
		out.Set(i, 1, coords.At(i, 1))
	}
	return out
}

// circleSeed places n nodes evenly on the unit circle.
func circleSeed(n int) *mat.Dense {
	out := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		out.Set(i, 0, math.Cos(theta))
		out.Set(i, 1, math.Sin(theta))
	}
	return out
}
