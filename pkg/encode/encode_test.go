package encode

import (
	"image/color"
	"math"
	"testing"

	"github.com/mfleury/transplot/pkg/community"
	"github.com/mfleury/transplot/pkg/errors"
	"github.com/mfleury/transplot/pkg/netgraph"
)

func testNetwork() *netgraph.Network {
	return &netgraph.Network{
		Facilities: []netgraph.Facility{
			{ID: "a", Type: "hospital", Stays: 1200, Cases: 6, Prevalence: 0.05},
			{ID: "b", Type: "ltcf", Stays: -300, Cases: 0, Prevalence: 0},
			{ID: "c", Type: "unknown-kind", Stays: 0, Cases: 2, Prevalence: 0.01},
		},
		Transfers: []netgraph.Transfer{
			{From: "a", To: "b", Transfers: 120, ARI: 3},
			{From: "b", To: "c", Transfers: 40, ARI: 0},
			{From: "a", To: "c", Transfers: 10, ARI: 1},
		},
	}
}

func testPartition(t *testing.T, net *netgraph.Network) *community.Partition {
	t.Helper()
	part, err := community.Detect(net, netgraph.Transfer.Volume, 42)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	return part
}

func TestParseModes(t *testing.T) {
	tests := []struct {
		name  string
		parse func(string) error
		valid []string
	}{
		{"NodeSizes", func(s string) error { _, err := ParseNodeSizeMode(s); return err }, []string{"uniform", "stays"}},
		{"NodeColors", func(s string) error { _, err := ParseNodeColorMode(s); return err }, []string{"cluster", "cases", "prevalence"}},
		{"EdgeStyles", func(s string) error { _, err := ParseEdgeStyleMode(s); return err }, []string{"suppress", "ari", "all"}},
		{"EdgeColors", func(s string) error { _, err := ParseEdgeColorMode(s); return err }, []string{"denominator", "ari", "percent_ari"}},
		{"EdgeWidths", func(s string) error { _, err := ParseEdgeWidthMode(s); return err }, []string{"uniform", "transfers", "ari"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, v := range tt.valid {
				if err := tt.parse(v); err != nil {
					t.Errorf("parse(%q) = %v, want nil", v, err)
				}
			}
			err := tt.parse("bogus")
			if !errors.Is(err, errors.ErrCodeInvalidMode) {
				t.Errorf("parse(bogus) = %v, want INVALID_MODE", err)
			}
		})
	}
}

func TestNodeSizeAlwaysPositive(t *testing.T) {
	tests := []struct {
		name  string
		mode  NodeSizeMode
		stays int
		want  float64 // 0 means "just check finite positive"
	}{
		{"Uniform", NodeSizeUniform, 0, uniformNodeSize},
		{"StaysZero", NodeSizeStays, 0, minNodeSize},
		{"StaysOne", NodeSizeStays, 1, minNodeSize},
		{"StaysSmall", NodeSizeStays, 3, minNodeSize},
		{"StaysNegative", NodeSizeStays, -125, 3}, // log5(125) = 3
		{"StaysLarge", NodeSizeStays, 3125, 5},    // log5(3125) = 5
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nodeSize(tt.mode, netgraph.Facility{Stays: tt.stays})
			if math.IsNaN(got) || math.IsInf(got, 0) || got <= 0 {
				t.Fatalf("nodeSize = %v, want finite positive", got)
			}
			if tt.want != 0 && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("nodeSize = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEdgeStyleTiers(t *testing.T) {
	tests := []struct {
		name      string
		mode      EdgeStyleMode
		transfers int
		ari       int
		want      LineStyle
	}{
		{"SuppressHidesAll", EdgeStyleSuppress, 500, 9, LineNone},
		{"ARIOnlySolid", EdgeStyleARI, 10, 2, LineSolid},
		{"ARIOnlyHidden", EdgeStyleARI, 500, 0, LineNone},
		{"AllBelowLow", EdgeStyleAll, 34, 0, LineNone},
		{"AllBelowLowWithARI", EdgeStyleAll, 34, 1, LineDotted},
		{"AllAtLow", EdgeStyleAll, 35, 0, LineDashed},
		{"AllBelowHigh", EdgeStyleAll, 99, 0, LineDashed},
		{"AllAtHigh", EdgeStyleAll, 100, 0, LineSolid},
		{"AllSuppressedNegative", EdgeStyleAll, -40, 0, LineDashed}, // magnitude
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := edgeStyle(tt.mode, netgraph.Transfer{Transfers: tt.transfers, ARI: tt.ari})
			if got != tt.want {
				t.Errorf("edgeStyle = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEdgeWidth(t *testing.T) {
	tests := []struct {
		name      string
		mode      EdgeWidthMode
		transfers int
		ari       int
		want      float64
	}{
		{"Uniform", EdgeWidthUniform, 500, 9, uniformEdgeWidth},
		{"TransfersOne", EdgeWidthTransfers, 1, 0, 0}, // log10(1)
		{"TransfersHundred", EdgeWidthTransfers, 100, 0, 2},
		{"TransfersZero", EdgeWidthTransfers, 0, 0, minEdgeWidth},
		{"TransfersNegative", EdgeWidthTransfers, -10, 0, minEdgeWidth},
		{"ARIZero", EdgeWidthARI, 10, 0, minEdgeWidth},
		{"ARIThree", EdgeWidthARI, 10, 3, 2}, // log2(4)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := edgeWidth(tt.mode, netgraph.Transfer{Transfers: tt.transfers, ARI: tt.ari})
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("edgeWidth = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEncodeHighlight(t *testing.T) {
	net := testNetwork()
	part := testPartition(t, net)

	for _, mode := range []NodeColorMode{NodeColorCluster, NodeColorCases, NodeColorPrevalence} {
		table, err := Encode(net, part, Options{NodeColors: mode, Highlight: "b"})
		if err != nil {
			t.Fatalf("Encode(%v) error = %v", mode, err)
		}
		highlighted := 0
		for _, n := range table.Nodes {
			if n.Color == color.Color(Highlight) {
				highlighted++
			}
		}
		if highlighted != 1 {
			t.Errorf("mode %v: %d highlighted nodes, want exactly 1", mode, highlighted)
		}
	}

	if _, err := Encode(net, part, Options{Highlight: "ghost"}); !errors.Is(err, errors.ErrCodeFacilityNotFound) {
		t.Errorf("unknown highlight target: got %v, want FACILITY_NOT_FOUND", err)
	}
}

func TestEncodeShapes(t *testing.T) {
	net := testNetwork()
	part := testPartition(t, net)

	table, err := Encode(net, part, Options{})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	wantShapes := []string{ShapeCircle, ShapeStar, ShapeCircle} // unknown type falls back to circle
	for i, n := range table.Nodes {
		if n.Shape != wantShapes[i] {
			t.Errorf("node %d shape = %q, want %q", i, n.Shape, wantShapes[i])
		}
	}
}

func TestEncodeClusterNeedsPartition(t *testing.T) {
	net := testNetwork()
	if _, err := Encode(net, nil, Options{NodeColors: NodeColorCluster}); !errors.Is(err, errors.ErrCodeShapeMismatch) {
		t.Errorf("Encode() without partition = %v, want SHAPE_MISMATCH", err)
	}
}

func TestEncodeDegenerateGradients(t *testing.T) {
	net := &netgraph.Network{
		Facilities: []netgraph.Facility{
			{ID: "a", Cases: 0},
			{ID: "b", Cases: 0},
		},
		Transfers: []netgraph.Transfer{
			{From: "a", To: "b", Transfers: 50, ARI: 0},
		},
	}
	part := testPartition(t, net)

	table, err := Encode(net, part, Options{
		NodeColors: NodeColorCases,
		EdgeColors: EdgeColorARI,
	})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	for i, n := range table.Nodes {
		if n.Color != color.Color(Neutral) {
			t.Errorf("node %d: all-zero cases should map to neutral, got %v", i, n.Color)
		}
	}
	if table.Edges[0].Color != color.Color(NeutralFaint) {
		t.Errorf("zero-ari edge color = %v, want transparent neutral", table.Edges[0].Color)
	}
}

func TestPrevalenceColors(t *testing.T) {
	net := testNetwork()
	part := testPartition(t, net)

	table, err := Encode(net, part, Options{NodeColors: NodeColorPrevalence})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	// Facility b has prevalence 0 → white; the others are finite and must
	// not be white.
	if table.Nodes[1].Color != color.Color(White) {
		t.Errorf("zero prevalence color = %v, want white", table.Nodes[1].Color)
	}
	for _, i := range []int{0, 2} {
		if table.Nodes[i].Color == color.Color(White) {
			t.Errorf("node %d: finite prevalence must not map to white", i)
		}
	}
}

func TestPercentARIBucketsClamp(t *testing.T) {
	net := &netgraph.Network{
		Facilities: []netgraph.Facility{{ID: "a"}, {ID: "b"}},
		Transfers: []netgraph.Transfer{
			// ari > transfers can happen with suppressed denominators; the
			// bucket must clamp instead of overflowing the ramp.
			{From: "a", To: "b", Transfers: 2, ARI: 3},
		},
	}
	part := testPartition(t, net)

	table, err := Encode(net, part, Options{EdgeColors: EdgeColorPercentARI})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if table.Edges[0].Color != heatRamp(1) {
		t.Errorf("overflowing ratio should clamp to the top heat step")
	}
}

func TestClusterPaletteDeterministic(t *testing.T) {
	a, b := ClusterPalette(7), ClusterPalette(7)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("palette entry %d differs across calls", i)
		}
	}
	seen := make(map[color.Color]bool)
	for _, c := range a {
		if seen[c] {
			t.Error("palette colors must be distinct")
		}
		seen[c] = true
	}
}
