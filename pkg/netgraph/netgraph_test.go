package netgraph

import (
	"math"
	"testing"

	"github.com/mfleury/transplot/pkg/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		net      Network
		wantCode errors.Code
	}{
		{
			name: "Valid",
			net: Network{
				Facilities: []Facility{{ID: "a"}, {ID: "b"}},
				Transfers:  []Transfer{{From: "a", To: "b", Transfers: 10}},
			},
		},
		{
			name:     "EmptyID",
			net:      Network{Facilities: []Facility{{ID: ""}}},
			wantCode: errors.ErrCodeInvalidGraph,
		},
		{
			name:     "DuplicateID",
			net:      Network{Facilities: []Facility{{ID: "a"}, {ID: "a"}}},
			wantCode: errors.ErrCodeInvalidGraph,
		},
		{
			name: "UnknownEndpoint",
			net: Network{
				Facilities: []Facility{{ID: "a"}},
				Transfers:  []Transfer{{From: "a", To: "ghost"}},
			},
			wantCode: errors.ErrCodeInvalidGraph,
		},
		{
			name:     "PrevalenceOutOfRange",
			net:      Network{Facilities: []Facility{{ID: "a", Prevalence: 1.5}}},
			wantCode: errors.ErrCodeInvalidGraph,
		},
		{
			name: "NegativeARI",
			net: Network{
				Facilities: []Facility{{ID: "a"}, {ID: "b"}},
				Transfers:  []Transfer{{From: "a", To: "b", ARI: -1}},
			},
			wantCode: errors.ErrCodeInvalidGraph,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.net.Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("Validate() = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestTransferDerived(t *testing.T) {
	tests := []struct {
		name        string
		tr          Transfer
		wantVolume  float64
		wantPercent float64
	}{
		{"Positive", Transfer{Transfers: 40, ARI: 10}, 40, 0.25},
		{"Suppressed", Transfer{Transfers: -40, ARI: 10}, 40, 0},
		{"ZeroTransfers", Transfer{Transfers: 0, ARI: 3}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.Volume(); got != tt.wantVolume {
				t.Errorf("Volume() = %v, want %v", got, tt.wantVolume)
			}
			if got := tt.tr.PercentARI(); got != tt.wantPercent {
				t.Errorf("PercentARI() = %v, want %v", got, tt.wantPercent)
			}
		})
	}
}

func TestWeightedSumsParallelEdges(t *testing.T) {
	net := Network{
		Facilities: []Facility{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Transfers: []Transfer{
			{From: "a", To: "b", Transfers: 10},
			{From: "b", To: "a", Transfers: -5}, // same undirected pair
			{From: "a", To: "a", Transfers: 99}, // self-loop dropped
		},
	}

	g := net.Weighted(Transfer.Volume)

	w, ok := g.Weight(0, 1)
	if !ok || w != 15 {
		t.Errorf("Weight(a,b) = %v, %v; want 15, true", w, ok)
	}
	if g.Node(2) == nil {
		t.Error("isolated facility c missing from projection")
	}
	if _, ok := g.Weight(0, 2); ok && g.HasEdgeBetween(0, 2) {
		t.Error("unexpected edge a-c")
	}
}

func TestUnmarshalNetwork(t *testing.T) {
	data := []byte(`{
		"nodes": [
			{"id": "a", "type": "hospital", "stays": -120, "cases": 4, "prevalence": 0.02},
			{"id": "b", "type": "ltcf", "stays": 300, "cases": 0, "prevalence": 0}
		],
		"edges": [{"from": "a", "to": "b", "transfers": 57, "ari": 2}]
	}`)

	net, err := UnmarshalNetwork(data)
	if err != nil {
		t.Fatalf("UnmarshalNetwork() error = %v", err)
	}
	if net.Len() != 2 || len(net.Transfers) != 1 {
		t.Fatalf("got %d nodes, %d edges; want 2, 1", net.Len(), len(net.Transfers))
	}
	if got := net.Transfers[0].Volume(); got != 57 {
		t.Errorf("Volume = %v, want 57", got)
	}
	if math.Abs(net.Facilities[0].Prevalence-0.02) > 1e-12 {
		t.Errorf("prevalence = %v, want 0.02", net.Facilities[0].Prevalence)
	}

	if _, err := UnmarshalNetwork([]byte(`{"nodes": [{"id":`)); err == nil {
		t.Error("truncated JSON should fail")
	}
}
