package dex

// ═══════════════════════════════════════════════════════════════════════════════
// TERMS ITERATOR
// ═══════════════════════════════════════════════════════════════════════════════
// Terms turns a raw text buffer into the lowercase token stream both the
// index builder and the query engine consume. A term is the longest
// substring matching:
//
//	[A-Za-z0-9]+(?:'[A-Za-z0-9]+)?
//
// i.e. one or more alphanumerics, optionally followed by a single
// apostrophe and more alphanumerics (so contractions like "don't" and
// possessives like "blair's" come out as one term). Every other byte is a
// separator: it does not yield a term of its own. This is deliberately
// simpler than general Unicode word-breaking — no stopword removal, no
// stemming, no length filtering. Those are explicit non-goals; the scorer
// and dictionary key on exactly what this iterator yields.
//
// Terms is lazy, finite, and non-restartable: it walks the buffer forward
// exactly once. Two calls over the same buffer produce identical sequences
// (Next makes no use of external state), satisfying the determinism
// property tests rely on.
// ═══════════════════════════════════════════════════════════════════════════════

// Terms is an iterator over the terms in a text buffer.
type Terms struct {
	buf []byte
	pos int
}

// NewTerms returns a Terms iterator over buf. buf is not copied; the caller
// must not mutate it while the iterator is in use.
func NewTerms(buf []byte) *Terms {
	return &Terms{buf: buf}
}

// Next returns the next term and true, or ("", false) once the buffer is
// exhausted.
func (t *Terms) Next() (string, bool) {
	// Skip separators: anything that isn't an ASCII letter or digit.
	for t.pos < len(t.buf) && !isAlnum(t.buf[t.pos]) {
		t.pos++
	}

	if t.pos >= len(t.buf) {
		return "", false
	}

	start := t.pos
	for t.pos < len(t.buf) && isAlnum(t.buf[t.pos]) {
		t.pos++
	}

	// Optional single apostrophe + alphanumerics suffix, e.g. "don't",
	// "blair's". Only consumed if at least one alnum byte follows the
	// apostrophe — "cats' " leaves the apostrophe for the next call to
	// skip as a separator.
	if t.pos < len(t.buf) && t.buf[t.pos] == '\'' && t.pos+1 < len(t.buf) && isAlnum(t.buf[t.pos+1]) {
		t.pos++ // the apostrophe
		for t.pos < len(t.buf) && isAlnum(t.buf[t.pos]) {
			t.pos++
		}
	}

	return lowerASCII(t.buf[start:t.pos]), true
}

// All drains the iterator into a slice. Convenience for tests and for
// callers that don't need lazy consumption (e.g. the BM25 query path,
// which needs the whole query term list up front).
func (t *Terms) All() []string {
	var out []string
	for {
		term, ok := t.Next()
		if !ok {
			return out
		}
		out = append(out, term)
	}
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// lowerASCII lowercases the ASCII letters in b and returns a new string;
// digits and the apostrophe pass through unchanged.
func lowerASCII(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
