package profiles

import "math"

// Depths4 is the bit-depth table for profile 4 (lossless, raw PCM
// float-packed with no transform at all).
var Depths4 = [8]uint16{12, 16, 24, 32, 48, 64, 0, 0}

var floatDRLimits4 = floatDRLimits0

// Profile4Analogue packs an interleaved PCM frame directly, with no DCT,
// at the smallest depth covering both the requested bit_depth and the
// signal's dynamic range, per spec section 5.4.
func Profile4Analogue(pcm []float64, channels int, bitDepth uint16, srate uint32, littleEndian bool) (frad []byte, bitDepthIndex uint16, outChannels uint16, outSrate uint32, err error) {
	if !containsDepth(Depths4[:], bitDepth) || bitDepth == 0 {
		bitDepth = 16
	}

	maxAbs := 0.0
	for _, x := range pcm {
		if a := math.Abs(x); a > maxAbs {
			maxAbs = a
		}
	}

	idx, err := pickDepthIndex(Depths4, floatDRLimits4, bitDepth, maxAbs)
	if err != nil {
		return nil, 0, 0, 0, err
	}

	frad = Pack(pcm, Depths4[idx], littleEndian)
	return frad, uint16(idx), uint16(channels), srate, nil
}

// Profile4Digital unpacks a profile 4 payload back to interleaved PCM.
func Profile4Digital(frad []byte, bitDepthIndex uint16, littleEndian bool) []float64 {
	return Unpack(frad, Depths4[bitDepthIndex], littleEndian)
}
