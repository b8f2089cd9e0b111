package frad

import "encoding/binary"

// ParseResult reports the outcome of a single ASFH.Read call.
type ParseResult int

const (
	// Incomplete means the supplied buffer did not carry enough bytes to
	// finish parsing the header; the caller should supply more and retry.
	Incomplete ParseResult = iota
	// Complete means the header (and, transitively, the frame payload
	// length it describes) was fully parsed.
	Complete
	// ForceFlush means the header was a zero-length force-flush marker:
	// there is no payload to read, and any pending overlap buffer should
	// be drained immediately.
	ForceFlush
)

// ASFH is the Audio Stream Frame Header: the per-frame metadata block that
// precedes every frame's payload in a FrAD stream.
type ASFH struct {
	Frmbytes    uint64
	buffer      []byte
	AllSet      bool
	headerBytes int

	Endian        bool
	BitDepthIndex uint16
	Channels      uint16
	Srate         uint32
	Fsize         uint32

	ECC      bool
	ECCRatio [2]uint8

	Profile uint8

	// Lossless-profile fields.
	CRC32 uint32

	// Compact-profile fields.
	OverlapRatio uint16
	CRC16        uint16
}

// NewASFH returns a zeroed, unparsed ASFH ready for Read.
func NewASFH() *ASFH { return &ASFH{} }

// Criteq compares the "critical" stream parameters (channel count and
// sample rate) of two headers.
func (a *ASFH) Criteq(other *ASFH) bool {
	return a.Channels == other.Channels && a.Srate == other.Srate
}

func encodePFB(profile uint8, ecc, endian bool, bitDepthIndex uint16) byte {
	var e, en byte
	if ecc {
		e = 1
	}
	if endian {
		en = 1
	}
	return (profile << 5) | (e << 4) | (en << 3) | byte(bitDepthIndex)
}

func decodePFB(pfb byte) (profile uint8, ecc, endian bool, bitDepthIndex uint16) {
	profile = pfb >> 5
	ecc = (pfb>>4)&1 == 1
	endian = (pfb>>3)&1 == 1
	bitDepthIndex = uint16(pfb & 0b111)
	return
}

func encodeCSS(channels uint16, srate, fsize uint32, forceFlush bool) [2]byte {
	chnl := (channels - 1) << 10
	sr := SrateIndex(srate) << 6
	fi := SamplesIndex(fsize) << 1
	var ff uint16
	if forceFlush {
		ff = 1
	}
	v := chnl | sr | fi | ff
	var out [2]byte
	binary.BigEndian.PutUint16(out[:], v)
	return out
}

func decodeCSS(css []byte) (channels uint16, srate, fsize uint32, forceFlush bool) {
	v := binary.BigEndian.Uint16(css[:2])
	channels = (v >> 10) + 1
	srIdx := int(v>>6) & 0b1111
	if srIdx < len(SampleRates) {
		srate = SampleRates[srIdx]
	}
	fsIdx := int(v>>1) & 0b11111
	if fsIdx < len(SamplesLI) {
		fsize = SamplesLI[fsIdx]
	}
	forceFlush = v&1 == 1
	return
}

// Write assembles a complete frame (header + payload) from frad, the
// already profile-encoded (and, if ECC is enabled, already RS-encoded)
// frame payload.
func (a *ASFH) Write(frad []byte) []byte {
	fhead := make([]byte, 0, 32+len(frad))
	fhead = append(fhead, FrmSign[:]...)

	var lenField [4]byte
	binary.BigEndian.PutUint32(lenField[:], uint32(len(frad)))
	fhead = append(fhead, lenField[:]...)
	fhead = append(fhead, encodePFB(a.Profile, a.ECC, a.Endian, a.BitDepthIndex))

	if IsCompact(a.Profile) {
		css := encodeCSS(a.Channels, a.Srate, a.Fsize, false)
		fhead = append(fhead, css[:]...)
		ratio := a.OverlapRatio
		if ratio == 0 {
			ratio = 1
		}
		fhead = append(fhead, byte(ratio-1))
		if a.ECC {
			fhead = append(fhead, a.ECCRatio[:]...)
			crc := CRC16ANSI(frad)
			var crcBytes [2]byte
			binary.BigEndian.PutUint16(crcBytes[:], crc)
			fhead = append(fhead, crcBytes[:]...)
		}
	} else {
		fhead = append(fhead, byte(a.Channels-1))
		fhead = append(fhead, a.ECCRatio[:]...)
		var srateBytes [4]byte
		binary.BigEndian.PutUint32(srateBytes[:], a.Srate)
		fhead = append(fhead, srateBytes[:]...)
		fhead = append(fhead, make([]byte, 8)...)
		var fsizeBytes [4]byte
		binary.BigEndian.PutUint32(fsizeBytes[:], a.Fsize)
		fhead = append(fhead, fsizeBytes[:]...)
		var crcBytes [4]byte
		binary.BigEndian.PutUint32(crcBytes[:], CRC32(frad))
		fhead = append(fhead, crcBytes[:]...)
	}

	return append(fhead, frad...)
}

// ForceFlush assembles a zero-payload force-flush frame: compact profiles
// only, signalling the decoder to drain its overlap buffer without
// expecting a matching payload.
func (a *ASFH) ForceFlush() []byte {
	fhead := make([]byte, 0, 16)
	fhead = append(fhead, FrmSign[:]...)
	fhead = append(fhead, make([]byte, 4)...)
	fhead = append(fhead, encodePFB(a.Profile, a.ECC, a.Endian, a.BitDepthIndex))

	if !IsCompact(a.Profile) {
		return nil
	}
	channels := a.Channels
	if channels < 1 {
		channels = 1
	}
	css := encodeCSS(channels, a.Srate, a.Fsize, true)
	fhead = append(fhead, css[:]...)
	fhead = append(fhead, 0)
	return fhead
}

// fillBuffer ensures a.buffer holds at least targetSize bytes, pulling
// more from buf as needed, and reports whether it succeeded.
func (a *ASFH) fillBuffer(buf *[]byte, targetSize int) bool {
	if len(a.buffer) < targetSize {
		need := targetSize - len(a.buffer)
		if need > len(*buf) {
			need = len(*buf)
		}
		a.buffer = append(a.buffer, (*buf)[:need]...)
		*buf = (*buf)[need:]
		if len(a.buffer) < targetSize {
			return false
		}
	}
	a.headerBytes = targetSize
	return true
}

// Read parses as much of the header as buf currently supports, consuming
// the bytes it uses. Call it again with more data after Incomplete.
func (a *ASFH) Read(buf *[]byte) ParseResult {
	if !a.fillBuffer(buf, 9) {
		return Incomplete
	}
	a.Frmbytes = uint64(binary.BigEndian.Uint32(a.buffer[0x4:0x8]))
	a.Profile, a.ECC, a.Endian, a.BitDepthIndex = decodePFB(a.buffer[0x8])

	if IsCompact(a.Profile) {
		if !a.fillBuffer(buf, 12) {
			return Incomplete
		}
		channels, srate, fsize, forceFlush := decodeCSS(a.buffer[0x9:0xb])
		if forceFlush {
			a.AllSet = true
			return ForceFlush
		}
		a.Channels, a.Srate, a.Fsize = channels, srate, fsize
		a.OverlapRatio = uint16(a.buffer[0xb])
		if a.OverlapRatio != 0 {
			a.OverlapRatio++
		}
		if a.ECC {
			if !a.fillBuffer(buf, 16) {
				return Incomplete
			}
			a.ECCRatio = [2]uint8{a.buffer[0xc], a.buffer[0xd]}
			a.CRC16 = binary.BigEndian.Uint16(a.buffer[0xe:0x10])
		}
	} else {
		if !a.fillBuffer(buf, 32) {
			return Incomplete
		}
		a.Channels = uint16(a.buffer[0x9]) + 1
		a.ECCRatio = [2]uint8{a.buffer[0xa], a.buffer[0xb]}
		a.Srate = binary.BigEndian.Uint32(a.buffer[0xc:0x10])
		a.Fsize = binary.BigEndian.Uint32(a.buffer[0x18:0x1c])
		a.CRC32 = binary.BigEndian.Uint32(a.buffer[0x1c:0x20])
	}

	if a.Frmbytes == uint64(^uint32(0)) {
		if !a.fillBuffer(buf, a.headerBytes+8) {
			return Incomplete
		}
		a.Frmbytes = binary.BigEndian.Uint64(a.buffer[len(a.buffer)-8:])
	}

	a.AllSet = true
	return Complete
}

// Clear resets the header to its zero state, ready to parse the next
// frame.
func (a *ASFH) Clear() {
	a.AllSet = false
	a.buffer = nil
}

// StartsWithSync reports whether a.buffer already begins with the sync
// word (used by callers to decide whether a fresh resync scan is needed).
func (a *ASFH) StartsWithSync() bool {
	if len(a.buffer) < len(FrmSign) {
		return false
	}
	for i, b := range FrmSign {
		if a.buffer[i] != b {
			return false
		}
	}
	return true
}

// SetSyncBuffer seeds a.buffer with exactly the sync word bytes, as the
// starting point for a fresh Read.
func (a *ASFH) SetSyncBuffer(sync []byte) {
	a.buffer = append([]byte(nil), sync...)
}
