package encode

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Fixed colors used by the encoding rules.
var (
	// Neutral is the flat edge color in denominator mode and the degenerate
	// fallback when a gradient-driving attribute is all zero.
	Neutral = color.NRGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}

	// NeutralFaint is the transparent neutral baseline for zero-ARI edges.
	NeutralFaint = color.NRGBA{R: 0x99, G: 0x99, B: 0x99, A: 0x40}

	// White marks facilities with zero prevalence.
	White = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	// Highlight overrides the designated facility's color when highlighting
	// is on, regardless of the selected node color mode.
	Highlight = color.NRGBA{R: 0x1f, G: 0x77, B: 0xe0, A: 0xff}
)

// Gradient endpoints: a reversed heat ramp runs from light yellow at the low
// end to deep red at the high end. Blending happens in HCL so the midpoints
// stay vivid instead of washing through grey.
var (
	heatLow  = colorful.Color{R: 1.00, G: 0.96, B: 0.69}
	heatHigh = colorful.Color{R: 0.80, G: 0.05, B: 0.05}
)

// heatRamp maps t in [0,1] onto the reversed heat gradient. Values outside
// the range are clamped.
func heatRamp(t float64) color.Color {
	switch {
	case t < 0:
		t = 0
	case t > 1:
		t = 1
	}
	c := heatLow.BlendHcl(heatHigh, t).Clamped()
	return toNRGBA(c, 0xff)
}

// heatSteps returns k evenly spaced colors along the heat ramp, low to high.
func heatSteps(k int) []color.Color {
	out := make([]color.Color, k)
	for i := range out {
		out[i] = heatRamp(float64(i) / float64(k-1))
	}
	return out
}

// ClusterPalette returns n maximally distinct qualitative colors for
// community coloring, generated by evenly spacing hue in HCL space. The
// palette is deterministic: the same community count always yields the same
// colors.
func ClusterPalette(n int) []color.Color {
	out := make([]color.Color, n)
	for i := range out {
		h := 360 * float64(i) / float64(n)
		out[i] = toNRGBA(colorful.Hcl(h, 0.55, 0.6).Clamped(), 0xff)
	}
	return out
}

func toNRGBA(c colorful.Color, alpha uint8) color.NRGBA {
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}
}
