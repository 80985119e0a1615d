package render

import (
	"image/color"
	"math"
	"sort"

	"github.com/fogleman/gg"

	"github.com/mfleury/transplot/pkg/encode"
	"github.com/mfleury/transplot/pkg/errors"
)

// Vertex carries the per-node draw parameters handed to a shape strategy.
// Strategies are invoked once per node, so heterogeneous color, size and ray
// counts across the node set need no special handling.
type Vertex struct {
	X, Y  float64
	Size  float64
	Color color.Color
	Rays  int // star shapes only; 2 degenerates to a diamond
}

// Strategy draws one vertex shape centered at (X, Y). dim is the reference
// plot dimension in pixels; each strategy applies its own scale constant to
// dim so the numeric size channel maps to rendered area consistently across
// shapes.
type Strategy interface {
	Draw(dc *gg.Context, v Vertex, dim float64)
}

// Registry maps shape keys to draw strategies. It is populated once at
// startup and queried by the compositor for every node.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry returns a registry with the built-in shapes registered:
// circle, square, triangle (clipped to its circumscribed circle) and star.
func NewRegistry() *Registry {
	r := &Registry{strategies: make(map[string]Strategy)}
	r.Register(encode.ShapeCircle, circleShape{})
	r.Register(encode.ShapeSquare, squareShape{})
	r.Register(encode.ShapeTriangle, triangleShape{})
	r.Register(encode.ShapeStar, starShape{})
	return r
}

// Register adds or replaces a strategy under key.
func (r *Registry) Register(key string, s Strategy) {
	r.strategies[key] = s
}

// Get returns the strategy for key.
func (r *Registry) Get(key string) (Strategy, error) {
	s, ok := r.strategies[key]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidShape, "unregistered shape %q", key)
	}
	return s, nil
}

// Keys lists the registered shape keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.strategies))
	for k := range r.strategies {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Per-shape scale divisors. A node of size s renders with characteristic
// radius s·dim/divisor; the divisors are calibrated so equal sizes read as
// roughly equal area across shapes.
const (
	circleScale   = 160.0
	squareScale   = 170.0
	triangleScale = 125.0
	starScale     = 150.0
)

type circleShape struct{}

func (circleShape) Draw(dc *gg.Context, v Vertex, dim float64) {
	r := v.Size * dim / circleScale
	dc.SetColor(v.Color)
	dc.DrawCircle(v.X, v.Y, r)
	dc.Fill()
}

type squareShape struct{}

func (squareShape) Draw(dc *gg.Context, v Vertex, dim float64) {
	h := v.Size * dim / squareScale
	dc.SetColor(v.Color)
	dc.DrawRectangle(v.X-h, v.Y-h, 2*h, 2*h)
	dc.Fill()
}

// triangleShape renders an upward triangle clipped to its circumscribed
// circle, so incident edges terminate at a round boundary like the circle
// shape.
type triangleShape struct{}

func (triangleShape) Draw(dc *gg.Context, v Vertex, dim float64) {
	r := v.Size * dim / triangleScale

	dc.DrawCircle(v.X, v.Y, r)
	dc.Clip()

	dc.SetColor(v.Color)
	for i := 0; i < 3; i++ {
		a := -math.Pi/2 + 2*math.Pi*float64(i)/3
		x := v.X + r*math.Cos(a)
		y := v.Y + r*math.Sin(a)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
	dc.Fill()
	dc.ResetClip()
}

// starShape renders a 2k-vertex star with alternating outer and inner radii.
// Two rays produce a rhombus (diamond). No clip region is applied, so edges
// may render under the vertex.
type starShape struct{}

func (starShape) Draw(dc *gg.Context, v Vertex, dim float64) {
	r := v.Size * dim / starScale
	rays := v.Rays
	if rays < 2 {
		rays = 2
	}
	inner := r * 0.4

	dc.SetColor(v.Color)
	for i := 0; i < 2*rays; i++ {
		radius := r
		if i%2 == 1 {
			radius = inner
		}
		a := -math.Pi/2 + math.Pi*float64(i)/float64(rays)
		x := v.X + radius*math.Cos(a)
		y := v.Y + radius*math.Sin(a)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
	dc.Fill()
}
