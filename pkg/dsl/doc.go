/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically
constructing model documents.

It allows developers to define hidden Markov models using a type-safe, fluent
builder pattern instead of writing probability matrices by hand. Entries are
keyed by label rather than by index, so reordering states never silently
reshuffles a matrix. This is particularly useful for tests, demos, and
leveraging IDE autocompletion/type-checking.

Example usage:

	package main

	import (
		"github.com/aretw0/hindsight"
		"github.com/aretw0/hindsight/pkg/dsl"
	)

	func main() {
		b := dsl.New("weather").
			Symbols("umbrella", "no-umbrella")

		b.State("rainy").
			Start(0.5).
			Stay(0.7).Go("sunny", 0.3).
			Emit("umbrella", 0.9).Emit("no-umbrella", 0.1)

		b.State("sunny").
			Start(0.5).
			Stay(0.7).Go("rainy", 0.3).
			Emit("umbrella", 0.2).Emit("no-umbrella", 0.8)

		// The resulting document compiles like any other model file.
		doc, err := b.Build()
		if err != nil {
			panic(err)
		}
		eng, _ := hindsight.FromFile(doc)
		_ = eng
	}
*/
package dsl
