package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/hindsight/internal/adapters/file"
	"github.com/aretw0/hindsight/pkg/dsl"
	"github.com/aretw0/hindsight/pkg/modelfile"
)

// Writes the starter model documents into a directory, ready for
// `hindsight serve -d <dir>` or the CLI commands.
func main() {
	targetDir := "examples/models"
	if len(os.Args) > 1 {
		targetDir = os.Args[1]
	}

	// Ensure dir exists
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		panic(err)
	}

	fmt.Printf("Generating starter models in: %s\n", targetDir)

	store := file.New(targetDir)
	ctx := context.TODO()

	for _, doc := range []*modelfile.File{weather(), casino()} {
		if err := store.Save(ctx, doc.Name, doc); err != nil {
			panic(err)
		}
		fmt.Printf("  %s.yaml\n", doc.Name)
	}

	fmt.Printf("Done! Serve them with: hindsight serve -d %s\n", targetDir)
}

// weather is the umbrella world, written out as a plain document.
func weather() *modelfile.File {
	return &modelfile.File{
		Name:        "weather",
		Description: "infer rain from umbrella sightings",
		States:      []string{"rainy", "sunny"},
		Symbols:     []string{"umbrella", "no-umbrella"},
		Initial:     []float64{0.5, 0.5},
		Transition: [][]float64{
			{0.7, 0.3},
			{0.3, 0.7},
		},
		Emission: [][]float64{
			{0.9, 0.2},
			{0.1, 0.8},
		},
	}
}

// casino is the occasionally dishonest casino, assembled with the builder.
func casino() *modelfile.File {
	fair := 1.0 / 6.0
	b := dsl.New("casino").
		Describe("fair die swapped for a loaded one between rolls").
		Symbols("1", "2", "3", "4", "5", "6")

	b.State("fair").
		Start(0.9).
		Stay(0.95).Go("loaded", 0.05).
		Emit("1", fair).Emit("2", fair).Emit("3", fair).
		Emit("4", fair).Emit("5", fair).Emit("6", fair)

	b.State("loaded").
		Start(0.1).
		Stay(0.90).Go("fair", 0.10).
		Emit("1", 0.1).Emit("2", 0.1).Emit("3", 0.1).
		Emit("4", 0.1).Emit("5", 0.1).Emit("6", 0.5)

	doc, err := b.Build()
	if err != nil {
		panic(err)
	}
	return doc
}
