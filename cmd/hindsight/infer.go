package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/aretw0/hindsight"
	"github.com/aretw0/hindsight/internal/chart"
	"github.com/aretw0/hindsight/internal/presentation/term"
)

// inferCmd represents the infer command
var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Run posterior inference over an observation sequence",
	Long: `Runs the forward-backward recursions and prints one distribution over
hidden states per timestep. Mode 'smooth' conditions every step on the whole
sequence; 'filter' conditions each step on the prefix seen so far.

Observations are comma-separated symbol indexes or symbol labels, e.g.
-o 0,1,0 or -o umbrella,no-umbrella,umbrella.`,
	Run: func(cmd *cobra.Command, args []string) {
		modelPath, _ := cmd.Flags().GetString("model")
		obsFlag, _ := cmd.Flags().GetString("observations")
		mode, _ := cmd.Flags().GetString("mode")
		jsonMode, _ := cmd.Flags().GetBool("json")
		report, _ := cmd.Flags().GetBool("report")
		plotPath, _ := cmd.Flags().GetString("plot")
		exact, _ := cmd.Flags().GetBool("exact")

		var opts []hindsight.Option
		if exact {
			opts = append(opts, hindsight.WithScaling(false))
		}

		eng, err := hindsight.Open(modelPath, opts...)
		if err != nil {
			fmt.Printf("Error loading model: %v\n", err)
			os.Exit(1)
		}

		observations, err := parseObservations(obsFlag, eng.SymbolLabels())
		if err != nil {
			fmt.Printf("Error parsing observations: %v\n", err)
			os.Exit(1)
		}

		var post *hindsight.Posterior
		switch mode {
		case "smooth":
			post, err = eng.Smooth(observations)
		case "filter":
			post, err = eng.Filter(observations)
		default:
			fmt.Printf("Unknown mode: %s. Supported: smooth, filter\n", mode)
			os.Exit(1)
		}
		if err != nil {
			fmt.Printf("Inference failed: %v\n", err)
			os.Exit(1)
		}

		steps := post.Steps
		timestep := -1
		if cmd.Flags().Changed("timestep") {
			timestep, _ = cmd.Flags().GetInt("timestep")
			if timestep < 0 || timestep >= len(steps) {
				fmt.Printf("Timestep %d out of range [0, %d)\n", timestep, len(steps))
				os.Exit(1)
			}
			steps = steps[timestep : timestep+1]
		}

		if plotPath != "" {
			p, err := chart.PosteriorLines(eng.Name, eng.StateLabels(), post.Steps)
			if err != nil {
				fmt.Printf("Error building chart: %v\n", err)
				os.Exit(1)
			}
			if err := chart.WritePNG(p, plotPath, 8*vg.Inch, 4*vg.Inch); err != nil {
				fmt.Printf("Error writing chart: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Chart written to %s\n", plotPath)
		}

		symbols := eng.SymbolLabels()
		observed := make([]string, len(observations))
		for t, v := range observations {
			observed[t] = symbols[v]
		}

		switch {
		case jsonMode:
			out := map[string]any{
				"model":         eng.Name,
				"mode":          mode,
				"logLikelihood": post.LogLikelihood,
			}
			if timestep >= 0 {
				out["timestep"] = timestep
				out["step"] = steps[0]
			} else {
				out["steps"] = steps
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				fmt.Printf("Error encoding posterior: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(data))

		case report:
			rendered, err := term.Report(term.ReportData{
				Model:         eng.Name,
				Mode:          mode + "ed",
				States:        eng.StateLabels(),
				Observed:      observed,
				Steps:         post.Steps,
				LogLikelihood: post.LogLikelihood,
			})
			if err != nil {
				fmt.Printf("Error rendering report: %v\n", err)
				os.Exit(1)
			}
			fmt.Print(rendered)

		default:
			labels := eng.StateLabels()
			for i, dist := range steps {
				t := i
				if timestep >= 0 {
					t = timestep
				}
				fmt.Printf("t=%d (%s)\n", t, observed[t])
				term.Bars(os.Stdout, labels, dist)
			}
			fmt.Printf("log-likelihood: %.6f\n", post.LogLikelihood)
		}
	},
}

// parseObservations turns "0,1,0" or "umbrella,no-umbrella,umbrella" into
// symbol indexes.
func parseObservations(s string, symbols []string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("no observations given")
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if v, err := strconv.Atoi(token); err == nil {
			out = append(out, v)
			continue
		}
		idx := -1
		for i, label := range symbols {
			if label == token {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("unknown symbol %q", token)
		}
		out = append(out, idx)
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(inferCmd)

	inferCmd.Flags().StringP("model", "m", "", "Path to the model YAML document")
	inferCmd.Flags().StringP("observations", "o", "", "Comma-separated observations (indexes or labels)")
	inferCmd.Flags().String("mode", "smooth", "Conditioning mode: smooth or filter")
	inferCmd.Flags().IntP("timestep", "t", 0, "Only print the distribution at this timestep")
	inferCmd.Flags().Bool("json", false, "Print the posterior as JSON")
	inferCmd.Flags().Bool("report", false, "Render a markdown report")
	inferCmd.Flags().String("plot", "", "Write a PNG line chart of the posterior to this path")
	inferCmd.Flags().Bool("exact", false, "Use the unnormalized reference recursions (underflows on long sequences)")
	inferCmd.MarkFlagRequired("model")
	inferCmd.MarkFlagRequired("observations")
}
