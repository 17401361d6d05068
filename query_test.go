package dex

import (
	"math"
	"strings"
	"testing"
)

func buildTestIndex(t *testing.T, input string) *DiskIndex {
	t.Helper()
	dir := t.TempDir()
	if _, err := BuildIndex(strings.NewReader(input), dir); err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	idx, err := OpenDiskIndex(dir)
	if err != nil {
		t.Fatalf("OpenDiskIndex: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestTermIDFMatchesFormula(t *testing.T) {
	got := termIDF(10, 3)
	want := math.Log(((10.0 - 3.0 + 0.5) / (3.0 + 0.5)) + 1)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("termIDF(10,3) = %v, want %v", got, want)
	}
}

func TestRankBM25EmptyQueryYieldsNoResults(t *testing.T) {
	idx := buildTestIndex(t, "doc1\ncat\ndog\n\n")
	results, err := RankBM25(idx, "   ...  ")
	if err != nil {
		t.Fatalf("RankBM25: %v", err)
	}
	if results != nil {
		t.Fatalf("got %v, want nil", results)
	}
}

func TestRankBM25NoMatchingTermsYieldsNoResults(t *testing.T) {
	idx := buildTestIndex(t, "doc1\ncat\ndog\n\n")
	results, err := RankBM25(idx, "zebra")
	if err != nil {
		t.Fatalf("RankBM25: %v", err)
	}
	if results != nil {
		t.Fatalf("got %v, want nil", results)
	}
}

func TestRankBM25ScoreMatchesFormula(t *testing.T) {
	idx := buildTestIndex(t, "doc1\ncat\ndog\ncat\n\ndoc2\ndog\nfish\n")

	results, err := RankBM25(idx, "cat")
	if err != nil {
		t.Fatalf("RankBM25: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].DocID != 0 {
		t.Fatalf("DocID = %d, want 0", results[0].DocID)
	}

	idf := termIDF(2, 1)
	contrib := bm25Contribution(2, 3, 2.5)
	want := float32(idf * contrib)

	if diff := math.Abs(float64(results[0].Score - want)); diff > 1e-5 {
		t.Fatalf("Score = %v, want %v (diff %v)", results[0].Score, want, diff)
	}
}

func TestRankBM25OrdersByScoreDescending(t *testing.T) {
	// "dog" appears once in each document with the same frequency, but
	// doc2 is shorter than average, so it should score higher.
	idx := buildTestIndex(t, "doc1\ndog\ncat\nbird\nfish\n\ndoc2\ndog\n\n")

	results, err := RankBM25(idx, "dog")
	if err != nil {
		t.Fatalf("RankBM25: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].DocID != 1 {
		t.Fatalf("expected doc 1 (shorter, same tf) to rank first, got %+v", results)
	}
	if results[0].Score <= results[1].Score {
		t.Fatalf("expected strictly descending scores, got %+v", results)
	}
}

// TestRankBM25TinyCorpusQueryRanking is scenario S2: using the tiny
// two-document corpus of S1, querying "dog" must return both documents with
// non-negative scores, and doc0 (longer, same term frequency) must score
// below doc1 (shorter).
func TestRankBM25TinyCorpusQueryRanking(t *testing.T) {
	idx := buildTestIndex(t, "doc1\ncat\ndog\ncat\n\ndoc2\ndog\nfish\n")

	results, err := RankBM25(idx, "dog")
	if err != nil {
		t.Fatalf("RankBM25: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	scores := make(map[uint64]float32, 2)
	for _, r := range results {
		if r.Score < 0 {
			t.Errorf("doc %d has negative score %v", r.DocID, r.Score)
		}
		scores[r.DocID] = r.Score
	}
	if scores[0] >= scores[1] {
		t.Fatalf("doc0 score %v should be less than doc1 score %v", scores[0], scores[1])
	}
}

func TestRankBM25RepeatedQueryTermDoublesContribution(t *testing.T) {
	idx := buildTestIndex(t, "doc1\ncat\ndog\n\ndoc2\nfish\n\n")

	single, err := RankBM25(idx, "cat")
	if err != nil {
		t.Fatalf("RankBM25: %v", err)
	}
	double, err := RankBM25(idx, "cat cat")
	if err != nil {
		t.Fatalf("RankBM25: %v", err)
	}
	if len(single) != 1 || len(double) != 1 {
		t.Fatalf("unexpected result counts: single=%v double=%v", single, double)
	}
	if math.Abs(float64(double[0].Score-2*single[0].Score)) > 1e-5 {
		t.Fatalf("double-term score = %v, want 2x single-term score %v", double[0].Score, single[0].Score)
	}
}
