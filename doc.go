/*
Package hindsight is a discrete hidden Markov model inference toolkit: exact
filtering and smoothing posteriors, sequence likelihoods, and synthetic
trajectory sampling behind one small engine API.

It wraps the pure recursions in pkg/hmm with a model-aware facade. Models are
plain YAML documents (see pkg/modelfile); the engine compiles one and answers
questions about observation sequences over it. The Hexagonal Architecture
keeps the inference core free of I/O, while adapters expose it over CLI,
HTTP, and MCP.

# Key Features

  - Exact inference: forward-backward posteriors with the textbook
    unnormalized semantics available for verification.
  - Numerically safe by default: per-step rescaled recursions that survive
    arbitrarily long sequences and report log-likelihoods.
  - Honest failure modes: impossible evidence is an error, never a silently
    renormalized distribution.
  - Deterministic sampling: seeded trajectory draws for demos and fixtures.

# Usage

Load a model document and ask for the smoothed posterior of an observation
sequence:

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/hindsight"
	)

	func main() {
		eng, err := hindsight.Open("weather.yaml")
		if err != nil {
			log.Fatal(err)
		}

		post, err := eng.Smooth([]int{0, 1, 0, 0})
		if err != nil {
			log.Fatal(err)
		}

		for t, dist := range post.Steps {
			fmt.Printf("t=%d  P(h|v) = %v\n", t, dist)
		}
		fmt.Println("log-likelihood:", post.LogLikelihood)
	}
*/
package hindsight
