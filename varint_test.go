package dex

import (
	"bytes"
	"testing"
)

func TestVarintVectors(t *testing.T) {
	cases := []struct {
		bytes []byte
		value uint64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x7F}, 127},
		{[]byte{0x81, 0x00}, 128},
		{[]byte{0xC0, 0x00}, 8192},
		{[]byte{0xFF, 0x7F}, 16383},
		{[]byte{0x81, 0x80, 0x00}, 16384},
		{[]byte{0xFF, 0xFF, 0x7F}, 2097151},
		{[]byte{0x81, 0x80, 0x80, 0x00}, 2097152},
		{[]byte{0xC0, 0x80, 0x80, 0x00}, 134217728},
		{[]byte{0xFF, 0xFF, 0xFF, 0x7F}, 268435455},
	}

	for _, c := range cases {
		got, n, err := readVarint(bytes.NewReader(c.bytes))
		if err != nil {
			t.Fatalf("readVarint(%x): %v", c.bytes, err)
		}
		if got != c.value {
			t.Errorf("readVarint(%x) = %d, want %d", c.bytes, got, c.value)
		}
		if n != len(c.bytes) {
			t.Errorf("readVarint(%x) consumed %d bytes, want %d", c.bytes, n, len(c.bytes))
		}

		var buf bytes.Buffer
		m, err := writeVarint(&buf, c.value)
		if err != nil {
			t.Fatalf("writeVarint(%d): %v", c.value, err)
		}
		if m != len(c.bytes) {
			t.Errorf("writeVarint(%d) wrote %d bytes, want %d", c.value, m, len(c.bytes))
		}
		if !bytes.Equal(buf.Bytes(), c.bytes) {
			t.Errorf("writeVarint(%d) = %x, want %x", c.value, buf.Bytes(), c.bytes)
		}
	}
}

func TestVarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 126, 127, 128, 16383, 16384, 2097151, 2097152,
		134217728, 268435455, 1 << 40, 1<<64 - 1}

	for _, v := range values {
		var buf bytes.Buffer
		n, err := writeVarint(&buf, v)
		if err != nil {
			t.Fatalf("writeVarint(%d): %v", v, err)
		}
		got, m, err := readVarint(&buf)
		if err != nil {
			t.Fatalf("readVarint after writeVarint(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round-trip(%d) = %d", v, got)
		}
		if m != n {
			t.Errorf("round-trip(%d): wrote %d bytes, read %d", v, n, m)
		}
	}
}

func TestVarintShortReadIsError(t *testing.T) {
	// A byte with its continuation bit set, then EOF.
	_, _, err := readVarint(bytes.NewReader([]byte{0x81}))
	if err == nil {
		t.Fatal("expected an error decoding a truncated varint")
	}
}
