package graph

import (
	"fmt"
	"strings"
)

// GenerateMermaid produces a Mermaid flowchart of the hidden-state
// transition structure. transition[i][j] is the probability of moving from
// state j to state i; edges below cutoff are omitted so dense models stay
// readable. Self-loops render as regular edges.
func GenerateMermaid(labels []string, transition [][]float64, cutoff float64) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, label := range labels {
		safeID := sanitizeMermaidID(label)
		sb.WriteString(fmt.Sprintf("    %s([\"%s\"])\n", safeID, label))
	}

	for j := range labels {
		from := sanitizeMermaidID(labels[j])
		for i := range labels {
			p := transition[i][j]
			if p < cutoff {
				continue
			}
			to := sanitizeMermaidID(labels[i])
			sb.WriteString(fmt.Sprintf("    %s -- \"%.2f\" --> %s\n", from, p, to))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
