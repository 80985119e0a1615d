package render

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"strings"

	"github.com/goccy/go-graphviz"
	"gonum.org/v1/gonum/mat"

	"github.com/mfleury/transplot/pkg/encode"
	"github.com/mfleury/transplot/pkg/netgraph"
)

// dotShapes maps registry shape keys onto the Graphviz shape vocabulary.
// Graphviz has no ray-star primitive, so stars fall back to diamonds.
var dotShapes = map[string]string{
	encode.ShapeCircle:   "circle",
	encode.ShapeSquare:   "box",
	encode.ShapeTriangle: "triangle",
	encode.ShapeStar:     "diamond",
}

// ToDOT converts a laid-out, encoded network to Graphviz DOT with pinned
// node positions (neato with pos!). The resulting string can be rendered
// with [RenderSVG].
//
// Hidden edges (LineNone) are omitted entirely rather than emitted invisible.
func ToDOT(net *netgraph.Network, coords *mat.Dense, table *encode.Table, mode encode.EdgeStyleMode) string {
	title, subtitle := Titles(mode)

	var buf bytes.Buffer
	buf.WriteString("graph transfers {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  splines=line;\n")
	fmt.Fprintf(&buf, "  label=%q;\n", title+"\n"+subtitle)
	buf.WriteString("  labelloc=\"t\";\n")
	buf.WriteString("  node [style=filled, fontsize=10];\n")
	buf.WriteString("\n")

	for i, f := range net.Facilities {
		st := table.Nodes[i]
		attrs := []string{
			fmt.Sprintf("pos=\"%.4f,%.4f!\"", coords.At(i, 0), coords.At(i, 1)),
			fmt.Sprintf("shape=%s", dotShapes[st.Shape]),
			fmt.Sprintf("width=%.3f", st.Size*0.15),
			fmt.Sprintf("fillcolor=%q", hexColor(st.Color)),
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", f.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for i, t := range net.Transfers {
		st := table.Edges[i]
		if st.Style == encode.LineNone {
			continue
		}
		attrs := []string{
			fmt.Sprintf("style=%s", st.Style),
			fmt.Sprintf("color=%q", hexColor(st.Color)),
			fmt.Sprintf("penwidth=%.3f", st.Width),
		}
		fmt.Fprintf(&buf, "  %q -- %q [%s];\n", t.From, t.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// hexColor formats a color as #RRGGBBAA, the form Graphviz accepts for
// translucent strokes.
func hexColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}
