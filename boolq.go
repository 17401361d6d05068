package dex

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
)

// ═══════════════════════════════════════════════════════════════════════════════
// BOOLEAN FILTER QUERIES
// ═══════════════════════════════════════════════════════════════════════════════
// BoolQuery is a fluent AND/OR/NOT builder over document-id bitmaps, built
// from repeated DiskIndex.Postings lookups. It is document-level only — no
// positions are stored by this index format, so there is no phrase or
// proximity notion here, just set membership. Useful as a precision filter
// ahead of or alongside RankBM25WithFilter.
// ═══════════════════════════════════════════════════════════════════════════════

// BoolQuery accumulates a bitmap of candidate document ids.
type BoolQuery struct {
	idx    *DiskIndex
	bitmap *roaring.Bitmap
	err    error
}

// NewBoolQuery starts an empty boolean query over idx.
func NewBoolQuery(idx *DiskIndex) *BoolQuery {
	return &BoolQuery{idx: idx}
}

func (q *BoolQuery) termBitmap(term string) *roaring.Bitmap {
	if q.err != nil {
		return roaring.NewBitmap()
	}
	postings, err := q.idx.Postings(term)
	if err != nil {
		q.err = fmt.Errorf("dex: bool query term %q: %w", term, err)
		return roaring.NewBitmap()
	}
	bm := roaring.NewBitmap()
	for _, p := range postings {
		bm.Add(uint32(p.DocID))
	}
	return bm
}

// Term intersects the current result set with documents containing term.
// The first Term/Or call on an empty query seeds the bitmap rather than
// intersecting against nothing.
func (q *BoolQuery) Term(term string) *BoolQuery {
	bm := q.termBitmap(term)
	if q.bitmap == nil {
		q.bitmap = bm
		return q
	}
	q.bitmap.And(bm)
	return q
}

// And is an alias for Term, read more naturally when chained.
func (q *BoolQuery) And(term string) *BoolQuery {
	return q.Term(term)
}

// Or unions the current result set with documents containing term.
func (q *BoolQuery) Or(term string) *BoolQuery {
	bm := q.termBitmap(term)
	if q.bitmap == nil {
		q.bitmap = bm
		return q
	}
	q.bitmap.Or(bm)
	return q
}

// Not removes documents containing term from the current result set. A Not
// called before any positive term has no defined universe to subtract
// from, so it is a no-op.
func (q *BoolQuery) Not(term string) *BoolQuery {
	if q.bitmap == nil {
		return q
	}
	q.bitmap.AndNot(q.termBitmap(term))
	return q
}

// Execute returns the matching document ids in ascending order.
func (q *BoolQuery) Execute() ([]uint64, error) {
	if q.err != nil {
		return nil, q.err
	}
	if q.bitmap == nil {
		return nil, nil
	}
	ids := make([]uint64, 0, q.bitmap.GetCardinality())
	it := q.bitmap.Iterator()
	for it.HasNext() {
		ids = append(ids, uint64(it.Next()))
	}
	return ids, nil
}

// RankBM25WithFilter scores query with RankBM25 and keeps only the results
// whose document id appears in allowed. A nil allowed means no filtering.
func RankBM25WithFilter(idx *DiskIndex, query string, allowed []uint64) ([]Result, error) {
	results, err := RankBM25(idx, query)
	if err != nil {
		return nil, err
	}
	if allowed == nil {
		return results, nil
	}

	set := make(map[uint64]struct{}, len(allowed))
	for _, id := range allowed {
		set[id] = struct{}{}
	}

	filtered := make([]Result, 0, len(results))
	for _, r := range results {
		if _, ok := set[r.DocID]; ok {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}
