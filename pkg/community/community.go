// Package community partitions a facility network into communities by
// modularity maximization over transfer volumes.
//
// The partition drives two downstream consumers: the layout engine biases
// same-community nodes together, and the visual encoder colors nodes by
// community in cluster mode. Community ids are contiguous starting at 1 so
// palette indexing and per-community centroids stay straightforward.
package community

import (
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"

	"github.com/mfleury/transplot/pkg/errors"
	"github.com/mfleury/transplot/pkg/netgraph"
)

// Partition assigns every facility (by node index) to exactly one community.
type Partition struct {
	groups []int // node index → community id, 1-based
	count  int
}

// Of returns the community id of node index i.
func (p *Partition) Of(i int) int { return p.groups[i] }

// Count returns the number of communities.
func (p *Partition) Count() int { return p.count }

// Len returns the number of nodes covered by the partition.
func (p *Partition) Len() int { return len(p.groups) }

// Crossing reports whether the edge between node indices u and v spans two
// communities.
func (p *Partition) Crossing(u, v int) bool {
	return p.groups[u] != p.groups[v]
}

// Members returns the node indices belonging to community id, in ascending
// order.
func (p *Partition) Members(id int) []int {
	var m []int
	for i, g := range p.groups {
		if g == id {
			m = append(m, i)
		}
	}
	return m
}

// Groups returns a copy of the node-index → community-id assignment.
func (p *Partition) Groups() []int {
	out := make([]int, len(p.groups))
	copy(out, p.groups)
	return out
}

// Detect partitions the network by Louvain modularity maximization with
// edges weighted by weight (normally Transfer.Volume, the absolute transfer
// count). The algorithm is randomized; seed fixes the random source so the
// same network and seed always produce the same partition.
//
// A network with no transfers gets the trivial singleton partition, one
// community per facility, so downstream consumers that divide by community
// count (palettes, label centroids) stay well defined.
func Detect(net *netgraph.Network, weight func(netgraph.Transfer) float64, seed uint64) (*Partition, error) {
	n := net.Len()
	if n == 0 {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "cannot partition an empty network")
	}

	if len(net.Transfers) == 0 {
		return singleton(n), nil
	}

	g := net.Weighted(weight)
	src := rand.NewSource(seed)
	reduced := community.Modularize(g, 1.0, src)

	groups := make([]int, n)
	comms := reduced.Communities()

	// Renumber communities contiguously from 1, ordered by their smallest
	// member index so ids are stable across runs with the same seed.
	sort.Slice(comms, func(i, j int) bool {
		return minID(comms[i]) < minID(comms[j])
	})
	for id, c := range comms {
		for _, node := range c {
			groups[int(node.ID())] = id + 1
		}
	}

	for i, g := range groups {
		if g == 0 {
			return nil, errors.New(errors.ErrCodeInternal,
				"facility %q missing from modularity partition", net.Facilities[i].ID)
		}
	}

	return &Partition{groups: groups, count: len(comms)}, nil
}

func singleton(n int) *Partition {
	groups := make([]int, n)
	for i := range groups {
		groups[i] = i + 1
	}
	return &Partition{groups: groups, count: n}
}

func minID(nodes []graph.Node) int64 {
	min := nodes[0].ID()
	for _, n := range nodes[1:] {
		if n.ID() < min {
			min = n.ID()
		}
	}
	return min
}
