package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/hindsight/internal/presentation/graph"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name       string
		labels     []string
		transition [][]float64
		cutoff     float64
		contains   []string
		excludes   []string
	}{
		{
			name:       "Node Declarations",
			labels:     []string{"rainy", "sunny"},
			transition: [][]float64{{0.7, 0.3}, {0.3, 0.7}},
			contains: []string{
				"graph LR",
				`rainy(["rainy"])`,
				`sunny(["sunny"])`,
			},
		},
		{
			name:       "Edge Probabilities",
			labels:     []string{"rainy", "sunny"},
			transition: [][]float64{{0.7, 0.3}, {0.3, 0.7}},
			contains: []string{
				`rainy -- "0.70" --> rainy`,
				`rainy -- "0.30" --> sunny`,
				`sunny -- "0.30" --> rainy`,
				`sunny -- "0.70" --> sunny`,
			},
		},
		{
			name:       "Cutoff Hides Rare Edges",
			labels:     []string{"a", "b"},
			transition: [][]float64{{0.95, 0.05}, {0.05, 0.95}},
			cutoff:     0.1,
			contains:   []string{`a -- "0.95" --> a`},
			excludes:   []string{`a -- "0.05" --> b`, `b -- "0.05" --> a`},
		},
		{
			name:       "ID Sanitization",
			labels:     []string{"no rain", "light-rain"},
			transition: [][]float64{{0.5, 0.5}, {0.5, 0.5}},
			contains: []string{
				`no_rain(["no rain"])`,
				`light_rain(["light-rain"])`,
				`no_rain -- "0.50" --> light_rain`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.labels, tt.transition, tt.cutoff)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("GenerateMermaid() = \n%v\nShould not contain: %v", got, bad)
				}
			}
		})
	}
}
