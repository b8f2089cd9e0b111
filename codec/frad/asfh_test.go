package frad

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// asfhSnapshot captures the exported header fields worth diffing; ASFH
// itself also carries unexported parse-cursor state that cmp can't see
// into without an allowlist, so tests compare this instead.
type asfhSnapshot struct {
	Profile       uint8
	Channels      uint16
	Srate         uint32
	Fsize         uint32
	BitDepthIndex uint16
	ECC           bool
	ECCRatio      [2]uint8
	OverlapRatio  uint16
}

func snapshotASFH(a *ASFH) asfhSnapshot {
	return asfhSnapshot{a.Profile, a.Channels, a.Srate, a.Fsize, a.BitDepthIndex, a.ECC, a.ECCRatio, a.OverlapRatio}
}

func TestPFBRoundTrip(t *testing.T) {
	cases := []struct {
		profile       uint8
		ecc, endian   bool
		bitDepthIndex uint16
	}{
		{0, false, false, 0},
		{1, true, true, 5},
		{2, true, false, 6},
		{4, false, true, 3},
	}
	for _, c := range cases {
		pfb := encodePFB(c.profile, c.ecc, c.endian, c.bitDepthIndex)
		gotProfile, gotECC, gotEndian, gotBDI := decodePFB(pfb)
		if gotProfile != c.profile || gotECC != c.ecc || gotEndian != c.endian || gotBDI != c.bitDepthIndex {
			t.Errorf("PFB round trip mismatch for %+v: got profile=%d ecc=%v endian=%v bdi=%d",
				c, gotProfile, gotECC, gotEndian, gotBDI)
		}
	}
}

func TestCSSRoundTrip(t *testing.T) {
	cases := []struct {
		channels   uint16
		srate      uint32
		fsize      uint32
		forceFlush bool
	}{
		{1, 48000, 2048, false},
		{2, 44100, 1024, true},
		{8, 8000, 24576, false},
	}
	for _, c := range cases {
		css := encodeCSS(c.channels, c.srate, c.fsize, c.forceFlush)
		gotChannels, gotSrate, gotFsize, gotFF := decodeCSS(css[:])
		if gotChannels != c.channels || gotSrate != c.srate || gotFsize != c.fsize || gotFF != c.forceFlush {
			t.Errorf("CSS round trip mismatch for %+v: got channels=%d srate=%d fsize=%d forceFlush=%v",
				c, gotChannels, gotSrate, gotFsize, gotFF)
		}
	}
}

func TestASFHWriteReadCompact(t *testing.T) {
	a := NewASFH()
	a.Profile = 1
	a.Channels = 2
	a.Srate = 48000
	a.Fsize = 2048
	a.OverlapRatio = 16
	a.BitDepthIndex = 2
	a.ECC = true
	a.ECCRatio = [2]uint8{96, 24}

	payload := make([]byte, 120)
	for i := range payload {
		payload[i] = byte(i)
	}
	eccPayload := append([]byte(nil), payload...)
	frame := a.Write(eccPayload)

	b := NewASFH()
	buf := append([]byte(nil), frame...)
	result := b.Read(&buf)
	if result != Complete {
		t.Fatalf("ASFH.Read = %v, want Complete", result)
	}
	if diff := cmp.Diff(snapshotASFH(a), snapshotASFH(b)); diff != "" {
		t.Errorf("header round trip mismatch (-want +got):\n%s", diff)
	}
	if int(b.Frmbytes) != len(eccPayload) {
		t.Errorf("Frmbytes = %d, want %d", b.Frmbytes, len(eccPayload))
	}
	if len(buf) != len(eccPayload) {
		t.Errorf("remaining buffer length = %d, want %d (just the payload)", len(buf), len(eccPayload))
	}
}

func TestASFHWriteReadLossless(t *testing.T) {
	a := NewASFH()
	a.Profile = 0
	a.Channels = 1
	a.Srate = 44100
	a.Fsize = 1024
	a.BitDepthIndex = 1
	a.ECCRatio = [2]uint8{1, 0}

	payload := []byte("abcdefgh")
	frame := a.Write(payload)

	b := NewASFH()
	buf := append([]byte(nil), frame...)
	result := b.Read(&buf)
	if result != Complete {
		t.Fatalf("ASFH.Read = %v, want Complete", result)
	}
	if b.Profile != 0 || b.Channels != 1 || b.Srate != 44100 || b.Fsize != 1024 {
		t.Errorf("header mismatch: got %+v", b)
	}
	if b.CRC32 != CRC32(payload) {
		t.Errorf("CRC32 = %#x, want %#x", b.CRC32, CRC32(payload))
	}
}

func TestASFHReadIncompleteThenComplete(t *testing.T) {
	a := NewASFH()
	a.Profile = 1
	a.Channels = 1
	a.Srate = 48000
	a.Fsize = 128
	frame := a.Write([]byte("hi"))

	b := NewASFH()
	partial := append([]byte(nil), frame[:5]...)
	if result := b.Read(&partial); result != Incomplete {
		t.Fatalf("ASFH.Read(partial) = %v, want Incomplete", result)
	}

	rest := append([]byte(nil), frame[5:]...)
	if result := b.Read(&rest); result != Complete {
		t.Fatalf("ASFH.Read(remainder) = %v, want Complete", result)
	}
}

func TestASFHForceFlushCompactOnly(t *testing.T) {
	a := NewASFH()
	a.Profile = 1
	a.Channels = 2
	a.Srate = 48000
	ff := a.ForceFlush()
	if ff == nil {
		t.Fatal("ForceFlush() = nil for a compact profile, want a marker frame")
	}

	b := NewASFH()
	buf := append([]byte(nil), ff...)
	result := b.Read(&buf)
	if result != ForceFlush {
		t.Fatalf("ASFH.Read(forceflush) = %v, want ForceFlush", result)
	}

	c := NewASFH()
	c.Profile = 0
	if got := c.ForceFlush(); got != nil {
		t.Errorf("ForceFlush() for a lossless profile = %v, want nil", got)
	}
}

func TestCriteq(t *testing.T) {
	a := NewASFH()
	a.Channels, a.Srate = 2, 48000
	b := NewASFH()
	b.Channels, b.Srate = 2, 48000
	if !a.Criteq(b) {
		t.Error("Criteq = false for matching channels/srate, want true")
	}
	b.Channels = 1
	if a.Criteq(b) {
		t.Error("Criteq = true after changing channels, want false")
	}
}
