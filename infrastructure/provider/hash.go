package provider

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// DefaultHashDimension is the default vector width for the hash embedder.
const DefaultHashDimension = 128

// HashEmbedder produces deterministic embeddings without a model or a
// network dependency. The text is lowercased and split into letter-or-digit
// runs; each token hashes into one of dimension buckets and contributes
// weight 1/(i+1) for its 0-based position i, so earlier tokens count more
// and hash collisions simply reinforce a bucket. The result is
// L2-normalized. Identical text yields the identical vector across calls
// and processes, and "Resume!" and "resume" land in the same bucket.
type HashEmbedder struct {
	dimension int
}

// NewHashEmbedder creates a HashEmbedder with the given vector width.
// Non-positive widths fall back to DefaultHashDimension.
func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = DefaultHashDimension
	}
	return &HashEmbedder{dimension: dimension}
}

// Dimension returns the vector width.
func (e *HashEmbedder) Dimension() int { return e.dimension }

// Embed generates one vector per input text. It performs no I/O and never
// fails; the error return only satisfies the Embedder contract.
func (e *HashEmbedder) Embed(_ context.Context, req EmbeddingRequest) (EmbeddingResponse, error) {
	texts := req.Texts()
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vectors[i] = e.embedOne(text)
	}
	return NewEmbeddingResponse(vectors, NewUsage(0, 0, 0)), nil
}

func (e *HashEmbedder) embedOne(text string) []float64 {
	vector := make([]float64, e.dimension)
	for i, token := range hashTokens(text) {
		h := fnv.New32a()
		h.Write([]byte(token))
		bucket := int(h.Sum32() % uint32(e.dimension))
		vector[bucket] += 1 / float64(i+1)
	}
	return normalize(vector)
}

// hashTokens lowercases the text and splits it into maximal letter-or-digit
// runs. Case and punctuation never separate a query token from the same
// word in a stored summary.
func hashTokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// normalize scales the vector to unit length. A zero vector, the output
// for text with no word tokens, is returned unchanged.
func normalize(vector []float64) []float64 {
	var sum float64
	for _, v := range vector {
		sum += v * v
	}
	if sum == 0 {
		return vector
	}
	norm := math.Sqrt(sum)
	for i := range vector {
		vector[i] /= norm
	}
	return vector
}

// SupportsTextGeneration returns false.
func (e *HashEmbedder) SupportsTextGeneration() bool { return false }

// SupportsEmbedding returns true.
func (e *HashEmbedder) SupportsEmbedding() bool { return true }

// Close is a no-op for the hash embedder.
func (e *HashEmbedder) Close() error { return nil }

var _ EmbeddingOnlyProvider = (*HashEmbedder)(nil)
