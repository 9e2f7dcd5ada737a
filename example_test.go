package hindsight_test

import (
	"fmt"
	"log"

	"github.com/aretw0/hindsight"
	"github.com/aretw0/hindsight/pkg/hmm"
)

// ExampleNew demonstrates how to build a model in pure Go and smooth an
// observation sequence. State 0 is "rainy", state 1 is "sunny"; symbol 0 is
// "umbrella", symbol 1 is "no umbrella".
func ExampleNew() {
	// 1. Columns are source states: transition[i][j] = P(state i | state j),
	// emission[v][j] = P(symbol v | state j).
	model, err := hmm.New(
		[]float64{0.5, 0.5},
		[][]float64{
			{0.7, 0.3},
			{0.3, 0.7},
		},
		[][]float64{
			{0.9, 0.2},
			{0.1, 0.8},
		},
	)
	if err != nil {
		log.Fatal(err)
	}

	// 2. Wrap it in an engine. Rescaled recursions are on by default.
	eng, err := hindsight.New(model)
	if err != nil {
		log.Fatal(err)
	}

	// 3. The umbrella appeared on both days. How likely was rain?
	post, err := eng.Smooth([]int{0, 0})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("log-likelihood: %.3f\n", post.LogLikelihood)
	for t, dist := range post.Steps {
		fmt.Printf("t=%d rainy=%.3f sunny=%.3f\n", t, dist[0], dist[1])
	}
	// Output:
	// log-likelihood: -1.046
	// t=0 rainy=0.883 sunny=0.117
	// t=1 rainy=0.883 sunny=0.117
}
