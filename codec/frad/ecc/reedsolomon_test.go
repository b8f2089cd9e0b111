package ecc

import (
	"bytes"
	"testing"
)

func TestRoundTripNoErrors(t *testing.T) {
	rs, err := NewRSCodec(32, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	data := make([]byte, 96)
	for i := range data {
		data[i] = byte(i * 7)
	}
	enc := rs.Encode(data)
	dec := rs.Decode(enc, true)
	if !bytes.Equal(dec, data) {
		t.Fatalf("round trip mismatch: got %v want %v", dec, data)
	}
}

func TestRoundTripWithCorruption(t *testing.T) {
	rs, err := NewRSCodec(32, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	data := []byte("the quick brown fox jumps over the lazy dog!!!!")
	enc := rs.Encode(data)

	corrupted := append([]byte(nil), enc...)
	// Corrupt up to floor(parity/2) = 5 bytes within the first block.
	for _, i := range []int{0, 5, 10, 20, 30} {
		corrupted[i] ^= 0xFF
	}
	dec := rs.Decode(corrupted, true)
	if !bytes.Equal(dec, data) {
		t.Fatalf("corrupted round trip mismatch: got %q want %q", dec, data)
	}
}

func TestTooManyCorruptionsYieldsZeroBlock(t *testing.T) {
	rs, err := NewRSCodec(72, 24, 0)
	if err != nil {
		t.Fatal(err)
	}
	data := make([]byte, 72)
	for i := range data {
		data[i] = byte(i)
	}
	enc := rs.Encode(data)

	corrupted := append([]byte(nil), enc...)
	for i := 0; i < 25; i++ {
		corrupted[i] ^= 0xAA
	}
	dec := rs.Decode(corrupted, true)
	want := make([]byte, 72)
	if !bytes.Equal(dec, want) {
		t.Fatalf("expected zero-filled block after uncorrectable corruption, got %v", dec)
	}
}

func TestStripOnlyWithoutRepair(t *testing.T) {
	rs, err := NewRSCodec(16, 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	data := []byte("0123456789abcdef")
	enc := rs.Encode(data)
	stripped := rs.Decode(enc, false)
	if !bytes.Equal(stripped, data) {
		t.Fatalf("strip-only mismatch: got %q want %q", stripped, data)
	}
}

func TestMessageTooLong(t *testing.T) {
	if _, err := NewRSCodec(240, 20, 0); err != ErrMessageTooLong {
		t.Fatalf("expected ErrMessageTooLong, got %v", err)
	}
}

func TestDivideByZero(t *testing.T) {
	if _, err := gfDiv(5, 0); err != ErrDivideByZero {
		t.Fatalf("expected ErrDivideByZero, got %v", err)
	}
}

func TestIncompleteFinalChunk(t *testing.T) {
	rs, err := NewRSCodec(32, 8, 0)
	if err != nil {
		t.Fatal(err)
	}
	data := make([]byte, 40) // one full chunk + 8-byte partial chunk.
	for i := range data {
		data[i] = byte(i)
	}
	enc := rs.Encode(data)
	// Two blocks: 32+8 and 8+8.
	if len(enc) != 32+8+8+8 {
		t.Fatalf("unexpected encoded length %d", len(enc))
	}
	dec := rs.Decode(enc, true)
	if !bytes.Equal(dec, data) {
		t.Fatalf("partial-chunk round trip mismatch: got %v want %v", dec, data)
	}
}
