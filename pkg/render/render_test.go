package render

import (
	"image/color"
	"math"
	"reflect"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/mfleury/transplot/pkg/community"
	"github.com/mfleury/transplot/pkg/encode"
	"github.com/mfleury/transplot/pkg/errors"
	"github.com/mfleury/transplot/pkg/netgraph"
)

func testScene(t *testing.T) (*netgraph.Network, *mat.Dense, *encode.Table, *community.Partition) {
	t.Helper()
	net := &netgraph.Network{
		Facilities: []netgraph.Facility{
			{ID: "a", Type: "hospital", Stays: 500},
			{ID: "b", Type: "clinic", Stays: 200},
			{ID: "c", Type: "ltach", Stays: 100},
			{ID: "d", Type: "ltcf", Stays: 50},
		},
		Transfers: []netgraph.Transfer{
			{From: "a", To: "b", Transfers: 120, ARI: 2},
			{From: "b", To: "c", Transfers: 60},
			{From: "c", To: "d", Transfers: 10, ARI: 1},
			{From: "a", To: "d", Transfers: 5},
		},
	}
	coords := mat.NewDense(4, 2, []float64{
		-1, -1,
		1, -1,
		1, 1,
		-1, 1,
	})
	part, err := community.Detect(net, netgraph.Transfer.Volume, 42)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	table, err := encode.Encode(net, part, encode.Options{EdgeStyles: encode.EdgeStyleAll})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return net, coords, table, part
}

func TestRegistryBuiltins(t *testing.T) {
	reg := NewRegistry()

	want := []string{"circle", "square", "star", "triangle"}
	if got := reg.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	for _, k := range want {
		if _, err := reg.Get(k); err != nil {
			t.Errorf("Get(%q) error = %v", k, err)
		}
	}

	if _, err := reg.Get("hexagon"); !errors.Is(err, errors.ErrCodeInvalidShape) {
		t.Errorf("Get(hexagon) = %v, want INVALID_SHAPE", err)
	}
}

func TestRegistryRegisterOverride(t *testing.T) {
	reg := NewRegistry()
	reg.Register("blob", circleShape{})
	if _, err := reg.Get("blob"); err != nil {
		t.Fatalf("Get(blob) error = %v", err)
	}
	if got := len(reg.Keys()); got != 5 {
		t.Errorf("Keys() len = %d, want 5", got)
	}
}

func TestBounds(t *testing.T) {
	coords := mat.NewDense(3, 2, []float64{
		10, 100,
		20, 200,
		30, 300,
	})
	minX, maxX, minY, maxY := Bounds(coords)

	// Margin is 0.1% of the axis mean: 0.02 on x, 0.2 on y.
	if math.Abs(minX-9.98) > 1e-9 || math.Abs(maxX-30.02) > 1e-9 {
		t.Errorf("x bounds = [%v, %v], want [9.98, 30.02]", minX, maxX)
	}
	if math.Abs(minY-99.8) > 1e-9 || math.Abs(maxY-300.2) > 1e-9 {
		t.Errorf("y bounds = [%v, %v], want [99.8, 300.2]", minY, maxY)
	}
}

func TestBoundsZeroMean(t *testing.T) {
	coords := mat.NewDense(2, 2, []float64{
		-5, -5,
		5, 5,
	})
	minX, maxX, _, _ := Bounds(coords)
	// Symmetric layouts have zero mean, so the margin collapses to the raw
	// extent.
	if minX != -5 || maxX != 5 {
		t.Errorf("x bounds = [%v, %v], want [-5, 5]", minX, maxX)
	}
}

func TestTitles(t *testing.T) {
	tests := []struct {
		mode     encode.EdgeStyleMode
		subtitle string
	}{
		{encode.EdgeStyleSuppress, "Transfers hidden"},
		{encode.EdgeStyleARI, "Transfers linked to ARI cases"},
		{encode.EdgeStyleAll, "All transfers by volume"},
	}
	for _, tt := range tests {
		title, subtitle := Titles(tt.mode)
		if title != "Patient transfer network" {
			t.Errorf("mode %v: title = %q", tt.mode, title)
		}
		if subtitle != tt.subtitle {
			t.Errorf("mode %v: subtitle = %q, want %q", tt.mode, subtitle, tt.subtitle)
		}
	}
}

func TestCompose(t *testing.T) {
	net, coords, table, part := testScene(t)

	c := NewCompositor(400, 300, NewRegistry())
	c.LabelClusters = true

	dc, err := c.Compose(net, coords, table, part, encode.EdgeStyleAll)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	img := dc.Image()
	b := img.Bounds()
	if b.Dx() != 400 || b.Dy() != 300 {
		t.Errorf("image size = %dx%d, want 400x300", b.Dx(), b.Dy())
	}

	// Something must have been drawn over the white clear.
	drawn := false
	for y := b.Min.Y; y < b.Max.Y && !drawn; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r != 0xffff || g != 0xffff || bl != 0xffff {
				drawn = true
				break
			}
		}
	}
	if !drawn {
		t.Error("Compose() produced a blank canvas")
	}
}

func TestComposeShapeMismatch(t *testing.T) {
	net, coords, table, part := testScene(t)
	c := NewCompositor(400, 300, NewRegistry())

	if _, err := c.Compose(net, mat.NewDense(3, 2, nil), table, part, encode.EdgeStyleAll); !errors.Is(err, errors.ErrCodeShapeMismatch) {
		t.Errorf("wrong row count: got %v, want SHAPE_MISMATCH", err)
	}

	short := &encode.Table{Nodes: table.Nodes[:2], Edges: table.Edges}
	if _, err := c.Compose(net, coords, short, part, encode.EdgeStyleAll); !errors.Is(err, errors.ErrCodeShapeMismatch) {
		t.Errorf("short table: got %v, want SHAPE_MISMATCH", err)
	}
}

func TestComposeUnknownShape(t *testing.T) {
	net, coords, table, part := testScene(t)
	table.Nodes[0].Shape = "pentagon"

	c := NewCompositor(200, 200, NewRegistry())
	if _, err := c.Compose(net, coords, table, part, encode.EdgeStyleAll); !errors.Is(err, errors.ErrCodeInvalidShape) {
		t.Errorf("Compose() = %v, want INVALID_SHAPE", err)
	}
}

func TestToDOT(t *testing.T) {
	net, coords, table, _ := testScene(t)

	dot := ToDOT(net, coords, table, encode.EdgeStyleAll)

	for _, want := range []string{
		"graph transfers {",
		"layout=neato;",
		`label="Patient transfer network\nAll transfers by volume";`,
		`"a" [pos="-1.0000,-1.0000!"`,
		"shape=circle",
		"shape=box",
		"shape=triangle",
		"shape=diamond",
		`"a" -- "b" [style=solid`,
		`"b" -- "c" [style=dashed`,
		`"c" -- "d" [style=dotted`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, dot)
		}
	}

	// Hidden edges are omitted, not emitted invisible.
	if strings.Contains(dot, `"a" -- "d"`) {
		t.Error("ToDOT() emitted a hidden edge")
	}
}

func TestHexColor(t *testing.T) {
	tests := []struct {
		c    color.Color
		want string
	}{
		{color.NRGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}, "#999999ff"},
		{color.NRGBA{R: 0x1f, G: 0x77, B: 0xe0, A: 0x40}, "#1f77e040"},
	}
	for _, tt := range tests {
		if got := hexColor(tt.c); got != tt.want {
			t.Errorf("hexColor(%v) = %q, want %q", tt.c, got, tt.want)
		}
	}
}
