package dex

import (
	"fmt"
	"math"
	"sort"
)

// ═══════════════════════════════════════════════════════════════════════════════
// BM25 QUERY SCORER
// ═══════════════════════════════════════════════════════════════════════════════
// Fixed BM25 parameters — not configurable, unlike the teacher's tunable
// BM25Parameters. For a query term t with postings P_t (|P_t| = n) over a
// corpus of N documents:
//
//	idf(t)      = ln( ((N - n + 0.5) / (n + 0.5)) + 1 )
//	contrib(d)  = idf(t) * f*(k1+1) / (f + k1*(1 - b + b*docLen/avgDL))
//
// where f is t's frequency in d. Scores accumulate additively across query
// terms, including repeats — "cat cat" weighs "cat" twice, on purpose; the
// scorer performs no deduplication of the query term sequence.
// ═══════════════════════════════════════════════════════════════════════════════

const (
	bm25K1 = 0.9
	bm25B  = 0.4
)

// Result is one ranked hit: a document id and its accumulated BM25 score.
type Result struct {
	DocID uint64
	Score float32
}

// RankBM25 scores query against idx and returns results sorted by score
// descending, ties broken by ascending document id. A query containing no
// terms, or matching no postings, yields a nil slice — not an error.
func RankBM25(idx *DiskIndex, query string) ([]Result, error) {
	terms := NewTerms([]byte(query)).All()
	if len(terms) == 0 {
		return nil, nil
	}

	weights := make(map[uint64]float32)
	n := float64(idx.NumDocs())
	avgDL := float64(idx.AvgDL())

	for _, term := range terms {
		postings, err := idx.Postings(term)
		if err != nil {
			return nil, fmt.Errorf("dex: scoring term %q: %w", term, err)
		}
		if len(postings) == 0 {
			continue
		}

		idf := termIDF(n, float64(len(postings)))

		for _, p := range postings {
			docLen := float64(idx.Document(p.DocID).TermCount)
			weights[p.DocID] += float32(idf * bm25Contribution(float64(p.Frequency), docLen, avgDL))
		}
	}

	return sortedResults(weights), nil
}

// termIDF computes the inverse document frequency for a term appearing in
// termDocFreq of n documents (n is the corpus size N). The +0.5/+1
// smoothing keeps the value finite and non-negative for every termDocFreq
// in [0, n].
func termIDF(n, termDocFreq float64) float64 {
	return math.Log(((n-termDocFreq+0.5)/(termDocFreq+0.5)) + 1)
}

// bm25Contribution is the saturating term-frequency factor, scaled by
// document length relative to the corpus average.
func bm25Contribution(f, docLen, avgDL float64) float64 {
	return f * (bm25K1 + 1) / (f + bm25K1*(1-bm25B+bm25B*docLen/avgDL))
}

// sortedResults turns the per-document weight accumulator into a
// deterministically ordered result slice.
func sortedResults(weights map[uint64]float32) []Result {
	if len(weights) == 0 {
		return nil
	}
	results := make([]Result, 0, len(weights))
	for docID, score := range weights {
		results = append(results, Result{DocID: docID, Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})
	return results
}
