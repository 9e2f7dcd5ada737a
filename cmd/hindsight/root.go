package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hindsight",
	Short: "Hindsight is an exact inference engine for discrete hidden Markov models",
	Long: `Hindsight runs forward-backward inference over discrete hidden Markov
models: smoothed and filtered posteriors, sequence likelihoods, and synthetic
trajectory sampling. Models are plain YAML documents.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("log-level", "info", "Log verbosity: debug, info, warn, error")
}
