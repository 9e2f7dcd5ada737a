package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/hindsight"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of hindsight",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hindsight version %s\n", strings.TrimSpace(hindsight.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
