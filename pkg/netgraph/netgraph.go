// Package netgraph defines the facility-transfer network consumed by the
// layout and encoding pipeline.
//
// A Network is a set of facilities (nodes) connected by patient transfers
// (edges). Both carry the quantitative attributes the visual encoder maps to
// render channels: stays, cases and prevalence on facilities; transfer volume
// and ARI counts on transfers. The network is immutable for the duration of
// one layout/encode pass.
//
// The JSON serialization format mirrors the node/edge array shape used across
// the rest of the toolchain:
//
//	{
//	  "nodes": [{"id": "A", "type": "hospital", "stays": 1200, ...}, ...],
//	  "edges": [{"from": "A", "to": "B", "transfers": 57, "ari": 2}, ...]
//	}
package netgraph

import (
	"encoding/json"
	"math"
	"os"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/mfleury/transplot/pkg/errors"
)

// Facility is a node in the transfer network.
//
// Stays may be negative: upstream sources suppress small counts by flipping
// the sign, so consumers must treat the value as a magnitude. Prevalence is a
// fraction in [0,1] and may be exactly 0.
type Facility struct {
	ID         string  `json:"id"`
	Type       string  `json:"type,omitempty"`
	Stays      int     `json:"stays"`
	Cases      int     `json:"cases"`
	Prevalence float64 `json:"prevalence"`
}

// Transfer is an edge in the transfer network.
//
// Transfers may be negative for the same suppression reason as
// Facility.Stays; Volume returns the magnitude. ARI counts a secondary event
// type that is prioritized for visibility even when volume is low.
type Transfer struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Transfers int    `json:"transfers"`
	ARI       int    `json:"ari"`
}

// Volume returns the absolute transfer count, the value used whenever the
// edge acts as a weight.
func (t Transfer) Volume() float64 {
	return math.Abs(float64(t.Transfers))
}

// PercentARI returns ARI/Transfers for positive transfer counts, 0 otherwise.
func (t Transfer) PercentARI() float64 {
	if t.Transfers > 0 {
		return float64(t.ARI) / float64(t.Transfers)
	}
	return 0
}

// Network is an attributed facility-transfer graph.
type Network struct {
	Facilities []Facility `json:"nodes"`
	Transfers  []Transfer `json:"edges"`
}

// Len returns the number of facilities.
func (n *Network) Len() int { return len(n.Facilities) }

// Index returns a facility-id → node-index lookup table. Node indices follow
// the order of the Facilities slice and are the row order of every derived
// table (layout matrix, visual attributes).
func (n *Network) Index() map[string]int {
	idx := make(map[string]int, len(n.Facilities))
	for i, f := range n.Facilities {
		idx[f.ID] = i
	}
	return idx
}

// Validate checks structural invariants: non-empty unique facility ids,
// transfers referencing known facilities, prevalence within [0,1].
func (n *Network) Validate() error {
	idx := make(map[string]int, len(n.Facilities))
	for i, f := range n.Facilities {
		if err := errors.ValidateFacilityID(f.ID); err != nil {
			return err
		}
		if _, dup := idx[f.ID]; dup {
			return errors.New(errors.ErrCodeInvalidGraph, "duplicate facility id %q", f.ID)
		}
		if f.Prevalence < 0 || f.Prevalence > 1 {
			return errors.New(errors.ErrCodeInvalidGraph,
				"facility %q: prevalence %v outside [0,1]", f.ID, f.Prevalence)
		}
		idx[f.ID] = i
	}

	for _, t := range n.Transfers {
		if _, ok := idx[t.From]; !ok {
			return errors.New(errors.ErrCodeInvalidGraph, "transfer references unknown facility %q", t.From)
		}
		if _, ok := idx[t.To]; !ok {
			return errors.New(errors.ErrCodeInvalidGraph, "transfer references unknown facility %q", t.To)
		}
		if t.ARI < 0 {
			return errors.New(errors.ErrCodeInvalidGraph,
				"transfer %s→%s: negative ari count %d", t.From, t.To, t.ARI)
		}
	}

	return nil
}

// Weighted projects the network onto a gonum weighted undirected graph with
// node ids equal to facility indices. Edge weights come from weight; parallel
// edges between the same facility pair (for example A→B and B→A) are summed.
// Self-loops are dropped since neither community detection nor layout uses
// them.
func (n *Network) Weighted(weight func(Transfer) float64) *simple.WeightedUndirectedGraph {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for i := range n.Facilities {
		g.AddNode(simple.Node(i))
	}

	idx := n.Index()
	type pair struct{ u, v int }
	sums := make(map[pair]float64)
	for _, t := range n.Transfers {
		u, v := idx[t.From], idx[t.To]
		if u == v {
			continue
		}
		if u > v {
			u, v = v, u
		}
		sums[pair{u, v}] += weight(t)
	}

	for p, w := range sums {
		g.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(p.u),
			T: simple.Node(p.v),
			W: w,
		})
	}

	return g
}

// UnmarshalNetwork deserializes JSON bytes into a validated Network.
func UnmarshalNetwork(data []byte) (*Network, error) {
	var n Network
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "unmarshal network")
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return &n, nil
}

// ReadNetworkFile reads and validates a Network from a JSON file.
func ReadNetworkFile(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
	}
	return UnmarshalNetwork(data)
}
