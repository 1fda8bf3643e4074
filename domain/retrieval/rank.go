package retrieval

import (
	"sort"

	"github.com/codeBunny2022/CentrAlignWebapp/domain/form"
)

// TopKMatches scores candidates against the query vector and returns the
// best k, most similar first. Candidates scoring at or below threshold are
// dropped. Ordering is deterministic: similarity descending, ties by
// created_at descending, then by id descending.
func TopKMatches(query []float64, candidates []form.Form, threshold float64, k int) []Match {
	if k <= 0 || len(candidates) == 0 {
		return []Match{}
	}

	matches := make([]Match, 0, len(candidates))
	for _, f := range candidates {
		matches = append(matches, NewMatch(f, CosineSimilarity(query, f.Embedding())))
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].similarity != matches[j].similarity {
			return matches[i].similarity > matches[j].similarity
		}
		ci, cj := matches[i].form.CreatedAt(), matches[j].form.CreatedAt()
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return matches[i].form.ID() > matches[j].form.ID()
	})

	kept := make([]Match, 0, min(k, len(matches)))
	for _, m := range matches {
		// Sorted descending, so the first failing score ends the scan.
		if m.similarity <= threshold {
			break
		}
		kept = append(kept, m)
		if len(kept) == k {
			break
		}
	}
	return kept
}
