// Package encode resolves raw facility and transfer attributes into
// render-ready visual channels.
//
// Every rule is a pure function from one attribute value to one visual value,
// applied pointwise over the node or edge collection; the resulting Table
// carries no references back to raw attributes. Encoding is cheap and is
// re-run for every render invocation, since channel modes can change
// independently of the (expensive) layout.
package encode

import (
	"image/color"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/mfleury/transplot/pkg/community"
	"github.com/mfleury/transplot/pkg/errors"
	"github.com/mfleury/transplot/pkg/netgraph"
)

// Shape keys resolved by the encoder and registered by the render registry.
const (
	ShapeCircle   = "circle"
	ShapeSquare   = "square"
	ShapeTriangle = "triangle"
	ShapeStar     = "star"
)

// TypeShapes maps facility types to shape keys. Unknown types render as
// circles.
var TypeShapes = map[string]string{
	"hospital": ShapeCircle,
	"clinic":   ShapeSquare,
	"ltach":    ShapeTriangle,
	"ltcf":     ShapeStar,
}

// Channel constants.
const (
	uniformNodeSize  = 4.0
	minNodeSize      = 1.0
	uniformEdgeWidth = 1.0
	minEdgeWidth     = 0.5

	// Transfer-volume thresholds for the three-tier edge style in all mode.
	lowTransfers  = 35
	highTransfers = 100

	prevalenceBins = 6
)

// LineStyle is the resolved line type of an edge.
type LineStyle int

const (
	LineNone LineStyle = iota
	LineSolid
	LineDashed
	LineDotted
)

func (s LineStyle) String() string {
	return [...]string{"none", "solid", "dashed", "dotted"}[s]
}

// NodeStyle is the fully resolved visual state of one facility.
type NodeStyle struct {
	Size  float64
	Color color.Color
	Shape string
}

// EdgeStyle is the fully resolved visual state of one transfer.
type EdgeStyle struct {
	Color color.Color
	Width float64
	Style LineStyle
}

// Table is the per-node and per-edge visual attribute table, row-aligned
// with the network's facility and transfer order.
type Table struct {
	Nodes []NodeStyle
	Edges []EdgeStyle
}

// Options selects one mode per channel. Highlight, when non-empty, names the
// facility whose color is overridden after the base color rule.
type Options struct {
	NodeSizes  NodeSizeMode
	NodeColors NodeColorMode
	EdgeStyles EdgeStyleMode
	EdgeColors EdgeColorMode
	EdgeWidths EdgeWidthMode
	Highlight  string
}

// Encode resolves the visual attribute table for the network under opts.
// The partition is consulted only in cluster color mode and must cover the
// network when that mode is selected.
func Encode(net *netgraph.Network, part *community.Partition, opts Options) (*Table, error) {
	t := &Table{
		Nodes: make([]NodeStyle, net.Len()),
		Edges: make([]EdgeStyle, len(net.Transfers)),
	}

	ncolors, err := nodeColors(net, part, opts.NodeColors)
	if err != nil {
		return nil, err
	}

	for i, f := range net.Facilities {
		t.Nodes[i] = NodeStyle{
			Size:  nodeSize(opts.NodeSizes, f),
			Color: ncolors[i],
			Shape: shapeFor(f),
		}
	}

	if opts.Highlight != "" {
		idx, ok := net.Index()[opts.Highlight]
		if !ok {
			return nil, errors.New(errors.ErrCodeFacilityNotFound,
				"highlight target %q is not in the network", opts.Highlight)
		}
		t.Nodes[idx].Color = Highlight
	}

	ecolors := edgeColors(net, opts.EdgeColors)
	for i, tr := range net.Transfers {
		t.Edges[i] = EdgeStyle{
			Color: ecolors[i],
			Width: edgeWidth(opts.EdgeWidths, tr),
			Style: edgeStyle(opts.EdgeStyles, tr),
		}
	}

	return t, nil
}

func shapeFor(f netgraph.Facility) string {
	if s, ok := TypeShapes[f.Type]; ok {
		return s
	}
	return ShapeCircle
}

// nodeSize maps one facility to its size channel. Censored (negative) stays
// collapse to their magnitude, and any value whose logarithm would be
// non-positive or undefined floors at the minimum size, so the result is
// always finite and positive.
func nodeSize(mode NodeSizeMode, f netgraph.Facility) float64 {
	switch mode {
	case NodeSizeStays:
		s := math.Abs(float64(f.Stays))
		if s > 1 {
			if v := math.Log(s) / math.Log(5); v > minNodeSize {
				return v
			}
		}
		return minNodeSize
	default:
		return uniformNodeSize
	}
}

func nodeColors(net *netgraph.Network, part *community.Partition, mode NodeColorMode) ([]color.Color, error) {
	out := make([]color.Color, net.Len())

	switch mode {
	case NodeColorCluster:
		if part == nil || part.Len() != net.Len() {
			return nil, errors.New(errors.ErrCodeShapeMismatch,
				"cluster coloring needs a partition covering all %d facilities", net.Len())
		}
		palette := ClusterPalette(part.Count())
		for i := range out {
			out[i] = palette[part.Of(i)-1]
		}

	case NodeColorCases:
		max := 0
		for _, f := range net.Facilities {
			if f.Cases > max {
				max = f.Cases
			}
		}
		if max == 0 {
			// All-zero case counts: flat neutral rather than indexing an
			// empty gradient.
			for i := range out {
				out[i] = Neutral
			}
			break
		}
		for i, f := range net.Facilities {
			out[i] = heatRamp(float64(f.Cases) / float64(max))
		}

	case NodeColorPrevalence:
		prevalenceColors(net, out)
	}

	return out, nil
}

// prevalenceColors buckets log10(prevalence·100) into six heat steps split at
// the box-plot fence thresholds of the finite values. Zero prevalence maps to
// white. With too few finite values for quartiles every finite value takes
// the middle step.
func prevalenceColors(net *netgraph.Network, out []color.Color) {
	steps := heatSteps(prevalenceBins)

	logs := make([]float64, net.Len())
	var finite []float64
	for i, f := range net.Facilities {
		v := math.Log10(f.Prevalence * 100)
		logs[i] = v
		if !math.IsInf(v, -1) {
			finite = append(finite, v)
		}
	}

	var cuts []float64
	if len(finite) >= 4 {
		if q, err := stats.Quartile(finite); err == nil {
			if iqr, err := stats.InterQuartileRange(finite); err == nil {
				cuts = []float64{q.Q1 - 1.5*iqr, q.Q1, q.Q2, q.Q3, q.Q3 + 1.5*iqr}
			}
		}
	}

	for i, v := range logs {
		if math.IsInf(v, -1) {
			out[i] = White
			continue
		}
		if cuts == nil {
			out[i] = steps[prevalenceBins/2]
			continue
		}
		bin := 0
		for _, c := range cuts {
			if v > c {
				bin++
			}
		}
		out[i] = steps[bin]
	}
}

// edgeStyle resolves the line style of one transfer.
//
// In all mode, transfer volume picks one of three tiers (hidden below
// lowTransfers, dashed below highTransfers, solid at or above). In both ari
// and all modes an edge that would be hidden but carries a nonzero ARI count
// gets a dotted override, so weak but medically relevant connections remain
// visible.
func edgeStyle(mode EdgeStyleMode, t netgraph.Transfer) LineStyle {
	switch mode {
	case EdgeStyleSuppress:
		return LineNone

	case EdgeStyleARI:
		if t.ARI > 0 {
			return LineSolid
		}
		return LineNone

	default: // EdgeStyleAll
		var s LineStyle
		switch v := t.Volume(); {
		case v < lowTransfers:
			s = LineNone
		case v < highTransfers:
			s = LineDashed
		default:
			s = LineSolid
		}
		if s == LineNone && t.ARI > 0 {
			s = LineDotted
		}
		return s
	}
}

func edgeColors(net *netgraph.Network, mode EdgeColorMode) []color.Color {
	out := make([]color.Color, len(net.Transfers))

	switch mode {
	case EdgeColorDenominator:
		for i := range out {
			out[i] = Neutral
		}

	case EdgeColorARI:
		max := 0
		for _, t := range net.Transfers {
			if t.ARI > max {
				max = t.ARI
			}
		}
		for i, t := range net.Transfers {
			if t.ARI == 0 || max == 0 {
				out[i] = NeutralFaint
				continue
			}
			out[i] = heatRamp(float64(t.ARI) / float64(max))
		}

	case EdgeColorPercentARI:
		for i, t := range net.Transfers {
			if t.ARI == 0 {
				out[i] = NeutralFaint
				continue
			}
			// Fixed ×1000 bucket resolution; ratios that round past the top
			// bucket clamp rather than overflow.
			bucket := math.Round(t.PercentARI() * 1000)
			if bucket > 1000 {
				bucket = 1000
			}
			if bucket < 0 {
				bucket = 0
			}
			out[i] = heatRamp(bucket / 1000)
		}
	}

	return out
}

// edgeWidth resolves the width channel. Logarithms of non-positive counts
// fall back to the fixed minimum width, never to an undefined value.
func edgeWidth(mode EdgeWidthMode, t netgraph.Transfer) float64 {
	switch mode {
	case EdgeWidthTransfers:
		if t.Transfers > 0 {
			return math.Log10(float64(t.Transfers))
		}
		return minEdgeWidth

	case EdgeWidthARI:
		if t.ARI > 0 {
			return math.Log2(float64(t.ARI) + 1)
		}
		return minEdgeWidth

	default:
		return uniformEdgeWidth
	}
}
