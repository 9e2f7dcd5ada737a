package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/hindsight"
)

// sampleCmd represents the sample command
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Draw a synthetic trajectory from a model",
	Long: `Samples a hidden state path from the chain and one observation per step
from the emission distributions. With --seed the draw is reproducible.`,
	Run: func(cmd *cobra.Command, args []string) {
		modelPath, _ := cmd.Flags().GetString("model")
		steps, _ := cmd.Flags().GetInt("steps")
		jsonMode, _ := cmd.Flags().GetBool("json")

		var opts []hindsight.Option
		if cmd.Flags().Changed("seed") {
			seed, _ := cmd.Flags().GetInt64("seed")
			opts = append(opts, hindsight.WithSeed(seed))
		}

		eng, err := hindsight.Open(modelPath, opts...)
		if err != nil {
			fmt.Printf("Error loading model: %v\n", err)
			os.Exit(1)
		}

		traj, err := eng.Sample(steps)
		if err != nil {
			fmt.Printf("Error sampling: %v\n", err)
			os.Exit(1)
		}

		if jsonMode {
			out := map[string]any{
				"model":    eng.Name,
				"hidden":   traj.Hidden,
				"observed": traj.Observed,
				"states":   eng.StateLabels(),
				"symbols":  eng.SymbolLabels(),
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				fmt.Printf("Error encoding trajectory: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(data))
			return
		}

		states := eng.StateLabels()
		symbols := eng.SymbolLabels()
		fmt.Printf("%4s  %-14s %s\n", "t", "hidden", "observed")
		for t := range traj.Hidden {
			fmt.Printf("%4d  %-14s %s\n", t, states[traj.Hidden[t]], symbols[traj.Observed[t]])
		}
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	sampleCmd.Flags().StringP("model", "m", "", "Path to the model YAML document")
	sampleCmd.Flags().IntP("steps", "n", 25, "Number of timesteps to sample")
	sampleCmd.Flags().Int64("seed", 0, "Seed for a reproducible draw")
	sampleCmd.Flags().Bool("json", false, "Print the trajectory as JSON")
	sampleCmd.MarkFlagRequired("model")
}
