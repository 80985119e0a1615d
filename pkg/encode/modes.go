package encode

import "github.com/mfleury/transplot/pkg/errors"

// Each configuration channel is a closed enum with one variant per mode.
// String values are validated at the boundary by the Parse functions; the
// rest of the package dispatches on the enum exhaustively, never on strings.

// NodeSizeMode selects the node size rule.
type NodeSizeMode int

const (
	NodeSizeUniform NodeSizeMode = iota // constant size for every facility
	NodeSizeStays                       // log base 5 of |stays|
)

// NodeColorMode selects the node color rule.
type NodeColorMode int

const (
	NodeColorCluster    NodeColorMode = iota // qualitative palette by community
	NodeColorCases                           // heat gradient by case count
	NodeColorPrevalence                      // binned log-prevalence heat steps
)

// EdgeStyleMode selects which edges are drawn and with what line style.
type EdgeStyleMode int

const (
	EdgeStyleSuppress EdgeStyleMode = iota // no edges drawn
	EdgeStyleARI                           // only nonzero-ARI edges, solid
	EdgeStyleAll                           // three-tier by transfer volume
)

// EdgeColorMode selects the edge color rule.
type EdgeColorMode int

const (
	EdgeColorDenominator EdgeColorMode = iota // flat neutral
	EdgeColorARI                              // heat gradient by ARI count
	EdgeColorPercentARI                       // heat gradient by ARI ratio
)

// EdgeWidthMode selects the edge width rule.
type EdgeWidthMode int

const (
	EdgeWidthUniform   EdgeWidthMode = iota // constant width
	EdgeWidthTransfers                      // log10 of transfer count
	EdgeWidthARI                            // log2 of ARI count + 1
)

func (m NodeSizeMode) String() string {
	return [...]string{"uniform", "stays"}[m]
}

func (m NodeColorMode) String() string {
	return [...]string{"cluster", "cases", "prevalence"}[m]
}

func (m EdgeStyleMode) String() string {
	return [...]string{"suppress", "ari", "all"}[m]
}

func (m EdgeColorMode) String() string {
	return [...]string{"denominator", "ari", "percent_ari"}[m]
}

func (m EdgeWidthMode) String() string {
	return [...]string{"uniform", "transfers", "ari"}[m]
}

// ParseNodeSizeMode parses a node_sizes mode string.
func ParseNodeSizeMode(s string) (NodeSizeMode, error) {
	switch s {
	case "uniform":
		return NodeSizeUniform, nil
	case "stays":
		return NodeSizeStays, nil
	}
	return 0, errors.ValidateEnum("node_sizes", s, []string{"uniform", "stays"})
}

// ParseNodeColorMode parses a node_colors mode string.
func ParseNodeColorMode(s string) (NodeColorMode, error) {
	switch s {
	case "cluster":
		return NodeColorCluster, nil
	case "cases":
		return NodeColorCases, nil
	case "prevalence":
		return NodeColorPrevalence, nil
	}
	return 0, errors.ValidateEnum("node_colors", s, []string{"cluster", "cases", "prevalence"})
}

// ParseEdgeStyleMode parses an edges_to_plot mode string.
func ParseEdgeStyleMode(s string) (EdgeStyleMode, error) {
	switch s {
	case "suppress":
		return EdgeStyleSuppress, nil
	case "ari":
		return EdgeStyleARI, nil
	case "all":
		return EdgeStyleAll, nil
	}
	return 0, errors.ValidateEnum("edges_to_plot", s, []string{"suppress", "ari", "all"})
}

// ParseEdgeColorMode parses an edge_colors mode string.
func ParseEdgeColorMode(s string) (EdgeColorMode, error) {
	switch s {
	case "denominator":
		return EdgeColorDenominator, nil
	case "ari":
		return EdgeColorARI, nil
	case "percent_ari":
		return EdgeColorPercentARI, nil
	}
	return 0, errors.ValidateEnum("edge_colors", s, []string{"denominator", "ari", "percent_ari"})
}

// ParseEdgeWidthMode parses an edge_widths mode string.
func ParseEdgeWidthMode(s string) (EdgeWidthMode, error) {
	switch s {
	case "uniform":
		return EdgeWidthUniform, nil
	case "transfers":
		return EdgeWidthTransfers, nil
	case "ari":
		return EdgeWidthARI, nil
	}
	return 0, errors.ValidateEnum("edge_widths", s, []string{"uniform", "transfers", "ari"})
}
