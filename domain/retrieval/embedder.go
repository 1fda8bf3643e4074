// Package retrieval provides vector ranking and prompt context assembly
// over a user's previously generated forms.
package retrieval

import "context"

// Embedder converts text into embedding vectors.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float64, error)

	// Dimension returns the width of the vectors Embed produces.
	Dimension() int
}
