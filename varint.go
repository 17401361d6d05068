package dex

import (
	"bufio"
	"fmt"
	"io"
)

// ═══════════════════════════════════════════════════════════════════════════════
// VARINT CODEC
// ═══════════════════════════════════════════════════════════════════════════════
// Every integer on disk — document counts, term counts, name lengths, doc-id
// deltas, frequencies, file pointers — is a base-128 varint: the top bit of
// every byte except the last is a continuation marker, and the low 7 bits of
// each byte concatenate most-significant-first into the value. Zero encodes
// as a single 0x00 byte. This is the MIDI variable-length quantity encoding.
//
// EXAMPLE:
// --------
//
//	16384 (0x4000) in binary: 100_0000_0000_0000
//	Split into 7-bit groups (MSB first): 0000001 0000000 0000000
//	Continuation bits set on all but the last byte:
//	  0x81 0x80 0x00
//
// Decoding fails with an I/O error if the stream ends mid-varint — a byte
// with its continuation bit set followed by EOF is not a valid encoding.
// ═══════════════════════════════════════════════════════════════════════════════

// writeVarint encodes v as a base-128 big-endian varint and returns the
// number of bytes written.
func writeVarint(w io.Writer, v uint64) (int, error) {
	if v == 0 {
		if _, err := w.Write([]byte{0x00}); err != nil {
			return 0, err
		}
		return 1, nil
	}

	// Fill the buffer from its end, lowest 7-bit group first, with the
	// continuation bit set on every group but the lowest; the filled tail
	// of the buffer then holds the most-significant byte first.
	var buf [10]byte
	n := 0
	buf[len(buf)-1] = byte(v & 0x7f)
	n = 1
	v >>= 7
	for v > 0 {
		n++
		buf[len(buf)-n] = byte(v&0x7f) | 0x80
		v >>= 7
	}

	if _, err := w.Write(buf[len(buf)-n:]); err != nil {
		return 0, err
	}
	return n, nil
}

// readVarint decodes a base-128 big-endian varint, returning the value and
// the number of bytes consumed. A short read mid-sequence surfaces as an
// I/O error (wrapping the underlying read error).
func readVarint(r io.ByteReader) (uint64, int, error) {
	var result uint64
	n := 0

	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, n, fmt.Errorf("varint: %w", err)
		}
		n++

		result = (result << 7) | uint64(b&0x7f)

		if b&0x80 == 0 {
			return result, n, nil
		}
	}
}

// byteReader adapts any io.Reader to io.ByteReader without assuming the
// caller already passed something bufio-backed, since readVarint consumes
// its input one byte at a time. A reader that is not already an
// io.ByteReader is wrapped in a bufio.Reader, which may read ahead of the
// varint in the underlying reader.
func byteReader(r io.Reader) io.ByteReader {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return bufio.NewReader(r)
}
