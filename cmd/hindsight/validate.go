package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/hindsight/pkg/modelfile"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a model document for consistency",
	Long: `Parses the model document and compiles it, reporting every stochastic
constraint it breaks: row lengths, negative entries, columns that do not
sum to one.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(args); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Model is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no model file given")
	}

	doc, err := modelfile.Load(args[0])
	if err != nil {
		return err
	}

	model, err := doc.Model()
	if err != nil {
		return err
	}

	name := doc.Name
	if name == "" {
		name = args[0]
	}
	fmt.Printf("%s: %d hidden states, %d symbols\n", name, model.States(), model.Symbols())
	if len(doc.States) > 0 {
		fmt.Printf("  states:  %s\n", strings.Join(doc.States, ", "))
	}
	if len(doc.Symbols) > 0 {
		fmt.Printf("  symbols: %s\n", strings.Join(doc.Symbols, ", "))
	}
	return nil
}
