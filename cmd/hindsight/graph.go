package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/hindsight"
	"github.com/aretw0/hindsight/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the transition structure visualization",
	Long:  `Loads the model and outputs a Mermaid diagram (graph LR) of the hidden state transitions.`,
	Run: func(cmd *cobra.Command, args []string) {
		modelPath, _ := cmd.Flags().GetString("model")
		if !cmd.Flags().Changed("model") && len(args) > 0 {
			modelPath = args[0]
		}
		cutoff, _ := cmd.Flags().GetFloat64("cutoff")

		eng, err := hindsight.Open(modelPath)
		if err != nil {
			fmt.Printf("Error loading model: %v\n", err)
			os.Exit(1)
		}

		// Generate and print Mermaid graph
		output := graph.GenerateMermaid(eng.StateLabels(), eng.Model().TransitionMatrix(), cutoff)
		fmt.Print(output)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringP("model", "m", "", "Path to the model YAML document")
	graphCmd.Flags().Float64("cutoff", 0.01, "Hide edges with probability below this value")
}
