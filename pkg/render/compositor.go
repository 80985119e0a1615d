// Package render assembles coordinates, the visual attribute table and the
// shape registry into final render output.
//
// Two sinks are supported: a raster compositor drawing directly to a gg
// context (PNG), and a DOT emitter with pinned positions rendered to SVG via
// Graphviz.
package render

import (
	"image/color"
	"math"
	"strconv"

	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/mat"

	"github.com/mfleury/transplot/pkg/community"
	"github.com/mfleury/transplot/pkg/encode"
	"github.com/mfleury/transplot/pkg/errors"
	"github.com/mfleury/transplot/pkg/netgraph"
)

// Frame margins in pixels: room for the title band on top and breathing space
// on the remaining sides.
const (
	padTop    = 64.0
	padSide   = 28.0
	padBottom = 28.0

	defaultStarRays = 5
)

// Compositor issues the final render call.
type Compositor struct {
	Width, Height int
	Registry      *Registry

	// LabelClusters overlays one label per community at the mean coordinate
	// of its member nodes.
	LabelClusters bool
}

// NewCompositor returns a compositor with the given frame size and registry.
func NewCompositor(width, height int, reg *Registry) *Compositor {
	return &Compositor{Width: width, Height: height, Registry: reg}
}

// Titles returns the title and subtitle pair for an edge-visibility mode.
func Titles(mode encode.EdgeStyleMode) (title, subtitle string) {
	switch mode {
	case encode.EdgeStyleSuppress:
		return "Patient transfer network", "Transfers hidden"
	case encode.EdgeStyleARI:
		return "Patient transfer network", "Transfers linked to ARI cases"
	default:
		return "Patient transfer network", "All transfers by volume"
	}
}

// Bounds computes the axis bounds of the layout: the data extent on each axis
// expanded by 0.1% of that axis's mean coordinate, so boundary nodes are not
// clipped by the frame.
func Bounds(coords *mat.Dense) (minX, maxX, minY, maxY float64) {
	n, _ := coords.Dims()
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	var sumX, sumY float64

	for i := 0; i < n; i++ {
		x, y := coords.At(i, 0), coords.At(i, 1)
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		sumX += x
		sumY += y
	}

	mx := 0.001 * math.Abs(sumX/float64(n))
	my := 0.001 * math.Abs(sumY/float64(n))
	return minX - mx, maxX + mx, minY - my, maxY + my
}

// Compose draws the full network onto a fresh gg context: edges first (so
// vertices render on top), then nodes through their shape strategies, then
// the optional cluster labels and the title band.
func (c *Compositor) Compose(net *netgraph.Network, coords *mat.Dense, table *encode.Table, part *community.Partition, mode encode.EdgeStyleMode) (*gg.Context, error) {
	n := net.Len()
	if r, cols := coords.Dims(); r != n || cols != 2 {
		return nil, errors.New(errors.ErrCodeShapeMismatch,
			"layout is %dx%d, want %dx2", r, cols, n)
	}
	if len(table.Nodes) != n || len(table.Edges) != len(net.Transfers) {
		return nil, errors.New(errors.ErrCodeShapeMismatch,
			"attribute table covers %d nodes / %d edges, network has %d / %d",
			len(table.Nodes), len(table.Edges), n, len(net.Transfers))
	}

	dc := gg.NewContext(c.Width, c.Height)
	dc.SetColor(color.White)
	dc.Clear()

	minX, maxX, minY, maxY := Bounds(coords)
	px, py := c.projector(minX, maxX, minY, maxY)

	idx := net.Index()
	dim := math.Min(float64(c.Width), float64(c.Height))

	for i, tr := range net.Transfers {
		st := table.Edges[i]
		if st.Style == encode.LineNone {
			continue
		}
		u, v := idx[tr.From], idx[tr.To]

		switch st.Style {
		case encode.LineDashed:
			dc.SetDash(6, 4)
		case encode.LineDotted:
			dc.SetDash(1.5, 3)
		default:
			dc.SetDash()
		}
		dc.SetColor(st.Color)
		dc.SetLineWidth(st.Width)
		dc.DrawLine(px(coords.At(u, 0)), py(coords.At(u, 1)), px(coords.At(v, 0)), py(coords.At(v, 1)))
		dc.Stroke()
	}
	dc.SetDash()

	for i := range net.Facilities {
		st := table.Nodes[i]
		strategy, err := c.Registry.Get(st.Shape)
		if err != nil {
			return nil, err
		}
		strategy.Draw(dc, Vertex{
			X:     px(coords.At(i, 0)),
			Y:     py(coords.At(i, 1)),
			Size:  st.Size,
			Color: st.Color,
			Rays:  defaultStarRays,
		}, dim)
	}

	if c.LabelClusters && part != nil {
		c.drawClusterLabels(dc, coords, part, px, py)
	}

	title, subtitle := Titles(mode)
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(title, float64(c.Width)/2, 22, 0.5, 0.5)
	dc.SetColor(color.NRGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff})
	dc.DrawStringAnchored(subtitle, float64(c.Width)/2, 40, 0.5, 0.5)

	return dc, nil
}

// projector maps data coordinates into the padded pixel frame, flipping y so
// larger values render upward.
func (c *Compositor) projector(minX, maxX, minY, maxY float64) (px, py func(float64) float64) {
	spanX := maxX - minX
	if spanX == 0 {
		spanX = 1
	}
	spanY := maxY - minY
	if spanY == 0 {
		spanY = 1
	}

	innerW := float64(c.Width) - 2*padSide
	innerH := float64(c.Height) - padTop - padBottom

	px = func(x float64) float64 {
		return padSide + (x-minX)/spanX*innerW
	}
	py = func(y float64) float64 {
		return padTop + (1-(y-minY)/spanY)*innerH
	}
	return px, py
}

func (c *Compositor) drawClusterLabels(dc *gg.Context, coords *mat.Dense, part *community.Partition, px, py func(float64) float64) {
	dc.SetColor(color.Black)
	for id := 1; id <= part.Count(); id++ {
		members := part.Members(id)
		if len(members) == 0 {
			continue
		}
		var cx, cy float64
		for _, m := range members {
			cx += coords.At(m, 0)
			cy += coords.At(m, 1)
		}
		cx /= float64(len(members))
		cy /= float64(len(members))
		dc.DrawStringAnchored(communityLabel(id), px(cx), py(cy), 0.5, 0.5)
	}
}

func communityLabel(id int) string {
	return "C" + strconv.Itoa(id)
}
