package term

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// ReportData carries everything the markdown inference report needs.
type ReportData struct {
	Model         string
	Mode          string
	States        []string
	Observed      []string
	Steps         [][]float64
	LogLikelihood float64
}

// Markdown builds the inference report as a markdown document.
func Markdown(data ReportData) string {
	var sb strings.Builder

	name := data.Model
	if name == "" {
		name = "model"
	}
	sb.WriteString(fmt.Sprintf("# Inference Report: %s\n\n", name))
	sb.WriteString(fmt.Sprintf("**Mode:** %s  \n", data.Mode))
	sb.WriteString(fmt.Sprintf("**Steps:** %d  \n", len(data.Steps)))
	sb.WriteString(fmt.Sprintf("**Log-likelihood:** %.6f\n\n", data.LogLikelihood))

	sb.WriteString("| t | observed |")
	for _, s := range data.States {
		sb.WriteString(fmt.Sprintf(" %s |", s))
	}
	sb.WriteString("\n|---|---|")
	for range data.States {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")

	for t, dist := range data.Steps {
		obs := ""
		if t < len(data.Observed) {
			obs = data.Observed[t]
		}
		sb.WriteString(fmt.Sprintf("| %d | %s |", t, obs))
		for _, p := range dist {
			sb.WriteString(fmt.Sprintf(" %.4f |", p))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// Report renders the markdown inference report for the terminal using
// glamour. It detects light and dark backgrounds automatically.
func Report(data ReportData) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return "", err
	}
	return r.Render(Markdown(data))
}
