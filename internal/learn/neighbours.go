package learn

import "sort"

// Neighbour is a similar row found by Nearest.
type Neighbour struct {
	Index      int
	Similarity float64
}

// Nearest returns up to k rows most similar to rows[target] by cosine,
// excluding the target itself and rows with non-positive similarity.
// Ties are broken by row index.
func Nearest(rows []Sparse, target, k int) []Neighbour {
	if target < 0 || target >= len(rows) || k <= 0 {
		return nil
	}

	var found []Neighbour
	for i, row := range rows {
		if i == target {
			continue
		}
		if sim := Cosine(rows[target], row); sim > 0 {
			found = append(found, Neighbour{Index: i, Similarity: sim})
		}
	}

	sort.Slice(found, func(a, b int) bool {
		if found[a].Similarity != found[b].Similarity {
			return found[a].Similarity > found[b].Similarity
		}
		return found[a].Index < found[b].Index
	})

	if len(found) > k {
		found = found[:k]
	}
	return found
}
