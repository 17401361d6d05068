package dex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// ═══════════════════════════════════════════════════════════════════════════════
// BINARY RECORD CODEC
// ═══════════════════════════════════════════════════════════════════════════════
// Read/write pairs for the four on-disk record shapes. Every multi-byte
// integer is a varint (varint.go) except avg_dl, which is a raw big-endian
// float32 — the one non-varint numeric quantity on disk. Each writer
// returns the number of bytes it produced so the builder can track running
// offsets for the dictionary pointer fields without re-deriving them.
// ═══════════════════════════════════════════════════════════════════════════════

// Document is one entry of the documents file: a human-readable name and
// the number of term occurrences seen in it (its length, for BM25).
type Document struct {
	Name      string
	TermCount uint64
}

// Posting is one (document id, frequency) pair in a term's postings list.
type Posting struct {
	DocID     uint64
	Frequency uint64
}

// writeDocument writes one document record: varint(term_count) ·
// varint(name_length) · name_bytes.
func writeDocument(w io.Writer, d Document) (int, error) {
	n, err := writeVarint(w, d.TermCount)
	if err != nil {
		return n, err
	}
	nameLen, err := writeVarint(w, uint64(len(d.Name)))
	n += nameLen
	if err != nil {
		return n, err
	}
	m, err := io.WriteString(w, d.Name)
	n += m
	return n, err
}

// readDocument reads one document record from r.
func readDocument(r io.ByteReader) (Document, error) {
	termCount, _, err := readVarint(r)
	if err != nil {
		return Document{}, fmt.Errorf("document term count: %w", err)
	}
	nameLen, _, err := readVarint(r)
	if err != nil {
		return Document{}, fmt.Errorf("document name length: %w", err)
	}
	name := make([]byte, nameLen)
	for i := range name {
		b, err := r.ReadByte()
		if err != nil {
			return Document{}, fmt.Errorf("document name: %w", err)
		}
		name[i] = b
	}
	return Document{Name: string(name), TermCount: termCount}, nil
}

// writeDocumentsFile writes the documents file header (varint(N) ·
// float32-be(avgDL)) followed by N document records, in order.
func writeDocumentsFile(w io.Writer, docs []Document, avgDL float32) error {
	if _, err := writeVarint(w, uint64(len(docs))); err != nil {
		return fmt.Errorf("documents header: %w", err)
	}

	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], math.Float32bits(avgDL))
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("avg_dl: %w", err)
	}

	for _, d := range docs {
		if _, err := writeDocument(w, d); err != nil {
			return fmt.Errorf("document record: %w", err)
		}
	}
	return nil
}

// readDocumentsFile reads the full documents file into memory, returning
// the document table and the stored avg_dl.
func readDocumentsFile(r io.Reader) ([]Document, float32, error) {
	br := bufferedByteReader(r)

	n, _, err := readVarint(br)
	if err != nil {
		return nil, 0, fmt.Errorf("documents header: %w", err)
	}

	var fbuf [4]byte
	if _, err := io.ReadFull(br, fbuf[:]); err != nil {
		return nil, 0, fmt.Errorf("avg_dl: %w", err)
	}
	avgDL := math.Float32frombits(binary.BigEndian.Uint32(fbuf[:]))

	docs := make([]Document, 0, n)
	for i := uint64(0); i < n; i++ {
		d, err := readDocument(br)
		if err != nil {
			return nil, 0, fmt.Errorf("document %d: %w", i, err)
		}
		docs = append(docs, d)
	}

	return docs, avgDL, nil
}

// writePostingsRecord writes varint(M) followed by M (delta, frequency)
// pairs: the first delta is measured from 0, every later delta from the
// previous posting's document id. Postings must already be sorted strictly
// ascending by DocID — the builder guarantees this by construction.
func writePostingsRecord(w io.Writer, postings []Posting) (int, error) {
	n, err := writeVarint(w, uint64(len(postings)))
	if err != nil {
		return n, err
	}

	var prev uint64
	for i, p := range postings {
		if i > 0 && p.DocID <= prev {
			return n, fmt.Errorf("postings record: document ids not strictly ascending (%d <= %d)", p.DocID, prev)
		}
		delta := p.DocID - prev
		prev = p.DocID

		m, err := writeVarint(w, delta)
		n += m
		if err != nil {
			return n, err
		}
		m, err = writeVarint(w, p.Frequency)
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// readPostingsRecord decodes one postings record, reversing the delta
// encoding to recover absolute document ids.
func readPostingsRecord(r io.ByteReader) ([]Posting, error) {
	m, _, err := readVarint(r)
	if err != nil {
		return nil, fmt.Errorf("postings count: %w", err)
	}

	postings := make([]Posting, 0, m)
	var prev uint64
	for i := uint64(0); i < m; i++ {
		delta, _, err := readVarint(r)
		if err != nil {
			return nil, fmt.Errorf("posting %d delta: %w", i, err)
		}
		freq, _, err := readVarint(r)
		if err != nil {
			return nil, fmt.Errorf("posting %d frequency: %w", i, err)
		}

		docID := prev + delta
		prev = docID

		postings = append(postings, Posting{DocID: docID, Frequency: freq})
	}
	return postings, nil
}

// writeTermPointer writes one term-with-pointer record: varint(name_length)
// · name_bytes · varint(pointer). Used for both leaf-block entries
// (pointer = postings offset) and root entries (pointer = block offset).
func writeTermPointer(w io.Writer, term string, ptr uint64) (int, error) {
	n, err := writeVarint(w, uint64(len(term)))
	if err != nil {
		return n, err
	}
	m, err := io.WriteString(w, term)
	n += m
	if err != nil {
		return n, err
	}
	m, err = writeVarint(w, ptr)
	n += m
	return n, err
}

// termPointer is a decoded (term, pointer) record.
type termPointer struct {
	Term string
	Ptr  uint64
}

// readTermPointer decodes one term-with-pointer record.
func readTermPointer(r io.ByteReader) (termPointer, error) {
	nameLen, _, err := readVarint(r)
	if err != nil {
		return termPointer{}, fmt.Errorf("term length: %w", err)
	}

	name := make([]byte, nameLen)
	for i := range name {
		b, err := r.ReadByte()
		if err != nil {
			return termPointer{}, fmt.Errorf("term bytes: %w", err)
		}
		name[i] = b
	}

	ptr, _, err := readVarint(r)
	if err != nil {
		return termPointer{}, fmt.Errorf("term pointer: %w", err)
	}

	return termPointer{Term: string(name), Ptr: ptr}, nil
}

// readTermPointerList reads a varint count header followed by that many
// term-with-pointer records — the shape shared by the root file and (when
// read wholesale rather than block-by-block) the blocks file.
func readTermPointerList(r io.Reader) ([]termPointer, error) {
	br := bufferedByteReader(r)

	n, _, err := readVarint(br)
	if err != nil {
		return nil, fmt.Errorf("term-pointer list header: %w", err)
	}

	out := make([]termPointer, 0, n)
	for i := uint64(0); i < n; i++ {
		tp, err := readTermPointer(br)
		if err != nil {
			return nil, fmt.Errorf("term-pointer record %d: %w", i, err)
		}
		out = append(out, tp)
	}
	return out, nil
}

// bufferedByteReader is a small helper so callers that need to seek a file
// and then decode a handful of varint-coded records don't each have to
// remember to wrap the *os.File in a bufio.Reader themselves.
func bufferedByteReader(r io.Reader) *bufio.Reader {
	return bufio.NewReader(r)
}
