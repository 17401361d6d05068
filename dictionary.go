package dex

import (
	"math/rand"
)

// ═══════════════════════════════════════════════════════════════════════════════
// DICTIONARY: the builder's in-memory sorted term index
// ═══════════════════════════════════════════════════════════════════════════════
// A skip list keyed by term instead of position. The builder streams
// documents once, in increasing document-id order, and for every term
// occurrence it either bumps the frequency on that term's most recent
// posting (same document) or appends a new one (new document) — so each
// term's posting list comes out already sorted by document id, with no
// extra sort pass needed at flush time.
//
// Go string comparison is already byte-wise lexicographic, which is the
// dictionary's sole ordering rule, so no custom comparator is needed: the
// `<` operator on string keys is the ordering.
// ═══════════════════════════════════════════════════════════════════════════════

const dictMaxHeight = 32

// dictNode is one entry in the dictionary: a term and its accumulating
// postings list, plus the skip list's forward pointers.
type dictNode struct {
	Key      string
	Postings []Posting
	Tower    [dictMaxHeight]*dictNode
}

// Dictionary is the builder's sorted term -> postings map.
type Dictionary struct {
	head   *dictNode
	height int
	size   int
	rng    *rand.Rand
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{
		head:   &dictNode{},
		height: 1,
		rng:    rand.New(rand.NewSource(1)),
	}
}

// Len returns the number of distinct terms seen so far.
func (d *Dictionary) Len() int {
	return d.size
}

// search walks the skip list towards key and returns the exact node (or
// nil) plus the per-level predecessor journey, exactly as in the teacher's
// position-keyed skip list.
func (d *Dictionary) search(key string) (*dictNode, [dictMaxHeight]*dictNode) {
	var journey [dictMaxHeight]*dictNode
	current := d.head

	for level := d.height - 1; level >= 0; level-- {
		next := current.Tower[level]
		for next != nil && next.Key < key {
			current = next
			next = current.Tower[level]
		}
		journey[level] = current
	}

	next := current.Tower[0]
	if next != nil && next.Key == key {
		return next, journey
	}
	return nil, journey
}

// AddOccurrence records one occurrence of term in document docID. docID
// must be monotonically non-decreasing across calls for a fixed term —
// the builder guarantees this by processing documents in stream order.
func (d *Dictionary) AddOccurrence(term string, docID uint64) {
	node, journey := d.search(term)

	if node != nil {
		last := &node.Postings[len(node.Postings)-1]
		if last.DocID == docID {
			last.Frequency++
		} else {
			node.Postings = append(node.Postings, Posting{DocID: docID, Frequency: 1})
		}
		return
	}

	height := d.randomHeight()
	newNode := &dictNode{Key: term, Postings: []Posting{{DocID: docID, Frequency: 1}}}

	for level := 0; level < height; level++ {
		predecessor := journey[level]
		if predecessor == nil {
			predecessor = d.head
		}
		newNode.Tower[level] = predecessor.Tower[level]
		predecessor.Tower[level] = newNode
	}

	if height > d.height {
		d.height = height
	}
	d.size++
}

// randomHeight is the same coin-flip tower-height generator the teacher's
// skip list uses: 50% height 1, 25% height 2, and so on.
func (d *Dictionary) randomHeight() int {
	height := 1
	for d.rng.Float64() < 0.5 && height < dictMaxHeight {
		height++
	}
	return height
}

// All returns every (term, postings) entry in ascending term order. The
// builder calls this exactly once, at flush time, to walk the dictionary
// into leaf blocks.
func (d *Dictionary) All() []DictEntry {
	out := make([]DictEntry, 0, d.size)
	for n := d.head.Tower[0]; n != nil; n = n.Tower[0] {
		out = append(out, DictEntry{Term: n.Key, Postings: n.Postings})
	}
	return out
}

// DictEntry is one flushed dictionary entry: a term and its complete,
// doc-id-ascending postings list.
type DictEntry struct {
	Term     string
	Postings []Posting
}
