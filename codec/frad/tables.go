package frad

// FrmSign is the four-byte frame sync word every FrAD frame begins with.
var FrmSign = [4]byte{0xff, 0xd0, 0xd2, 0x98}

// legacyFrmSign is an older sync word some encoders still emit; a decoder
// accepts it only to log a warning, never to resync on it.
var legacyFrmSign = [4]byte{0xff, 0xd0, 0xd2, 0x97}

// Signature is the FrAD container's own four-byte magic (distinct from the
// per-frame sync word above).
var Signature = [4]byte{0x66, 0x52, 0x61, 0x64}

// Lossless lists the profiles without psychoacoustic masking: profile 0
// stores packed DCT coefficients and profile 4 packed PCM samples, each at
// the precision of the selected bit depth.
var Lossless = [2]uint8{0, 4}

// Compact lists the profiles that use the shared ASFH compact header
// (channel/sample-rate/frame-size packed byte, overlap, CRC-16).
var Compact = [2]uint8{1, 2}

// Available lists every profile this codec implements. The upstream
// reference only wires up 0, 1 and 4 in its AVAILABLE table; profile 2 is
// fully specified and implemented here, so it is included.
var Available = [4]uint8{0, 1, 2, 4}

// SegMax caps the samples-per-frame value accepted for each profile index
// (0..7), mirroring the reference's SEGMAX table. The compact limits at
// indexes 1 and 2 are filled in from MaxSamples at init time since it
// depends on SamplesLI, defined below.
var SegMax [8]uint32

// BitDepths lists the valid bit depths per profile index (0..7), zero-
// padded to a fixed width for unused profile slots.
var BitDepths [8][]uint16

// SampleRates is the compact-profile sample-rate table, in descending
// order; its index is encoded directly in the ASFH CSS field.
var SampleRates = [12]uint32{96000, 88200, 64000, 48000, 44100, 32000, 24000, 22050, 16000, 12000, 11025, 8000}

// SamplesLI is the full, ascending-sorted list of sample counts a compact
// frame may declare, built by interleaving three families of power-of-two
// multiples (128, 144, 192) the same way the reference's const evaluator
// does: column-major over 8 octaves, 3 bases per octave.
var SamplesLI [24]uint32

// MaxSamples is the largest entry in SamplesLI, i.e. the hard ceiling on
// compact-profile frame size.
var MaxSamples uint32

func init() {
	bases := [3]uint32{128, 144, 192}
	idx := 0
	for octave := 0; octave < 8; octave++ {
		mul := uint32(1) << uint(octave)
		for _, b := range bases {
			SamplesLI[idx] = b * mul
			if SamplesLI[idx] > MaxSamples {
				MaxSamples = SamplesLI[idx]
			}
			idx++
		}
	}

	SegMax[0] = ^uint32(0)
	SegMax[1] = MaxSamples
	SegMax[2] = MaxSamples
	SegMax[3] = 0
	SegMax[4] = ^uint32(0)
	SegMax[5], SegMax[6], SegMax[7] = 0, 0, 0

	BitDepths[0] = []uint16{12, 16, 24, 32, 48, 64, 0, 0}
	BitDepths[1] = []uint16{8, 12, 16, 24, 32, 48, 64, 0}
	BitDepths[2] = []uint16{8, 10, 12, 14, 16, 20, 24}
	BitDepths[3] = []uint16{0, 0, 0, 0, 0, 0, 0, 0}
	BitDepths[4] = []uint16{12, 16, 24, 32, 48, 64, 0, 0}
	BitDepths[5] = []uint16{0, 0, 0, 0, 0, 0, 0, 0}
	BitDepths[6] = []uint16{0, 0, 0, 0, 0, 0, 0, 0}
	BitDepths[7] = []uint16{0, 0, 0, 0, 0, 0, 0, 0}
}

// IsLossless reports whether profile p is one of the Lossless profiles.
func IsLossless(p uint8) bool {
	for _, v := range Lossless {
		if v == p {
			return true
		}
	}
	return false
}

// IsCompact reports whether profile p uses the compact ASFH layout.
func IsCompact(p uint8) bool {
	for _, v := range Compact {
		if v == p {
			return true
		}
	}
	return false
}

// IsAvailable reports whether p names an implemented profile.
func IsAvailable(p uint8) bool {
	for _, v := range Available {
		if v == p {
			return true
		}
	}
	return false
}

// ValidSrate returns the tightest-fitting entry of SampleRates that is
// greater than or equal to srate: the minimum qualifying rate, not the
// smallest table index (SampleRates is stored in descending order). Falls
// back to the table maximum when no entry covers the request.
func ValidSrate(srate uint32) uint32 {
	best := SampleRates[0]
	found := false
	for _, r := range SampleRates {
		if r >= srate {
			if !found || r < best {
				best = r
				found = true
			}
		}
	}
	return best
}

// SrateIndex returns the CSS-field index of the tightest-fitting sample
// rate covering srate, selecting the smallest qualifying value's index
// (not simply the first one found) when ties are impossible by
// construction since all SampleRates entries are distinct.
func SrateIndex(srate uint32) uint16 {
	bestIdx := 0
	bestVal := uint32(0)
	found := false
	for i, r := range SampleRates {
		if r >= srate {
			if !found || r < bestVal {
				bestVal, bestIdx, found = r, i, true
			}
		}
	}
	return uint16(bestIdx)
}

// SamplesMinGE rounds n up to the nearest permitted entry of SamplesLI,
// clamping to MaxSamples if n exceeds every entry.
func SamplesMinGE(n uint32) uint32 {
	for _, v := range SamplesLI {
		if v >= n {
			return v
		}
	}
	return MaxSamples
}

// SamplesIndex returns the CSS-field index (0..23) of fsize within
// SamplesLI, or 0 if fsize is not a permitted value.
func SamplesIndex(fsize uint32) uint16 {
	for i, v := range SamplesLI {
		if v == fsize {
			return uint16(i)
		}
	}
	return 0
}
