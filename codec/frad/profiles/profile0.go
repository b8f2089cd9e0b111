package profiles

import (
	"fmt"
	"math"

	"github.com/ausocean/frad/codec/frad/fourier"
)

// Depths0 is the bit-depth table for profile 0 (lossless, DCT-packed
// floats): index i is carried on the wire as bit_depth_index i.
var Depths0 = [8]uint16{12, 16, 24, 32, 48, 64, 0, 0}

// floatDRLimits0 bounds the magnitude profile 0 may carry at each entry
// of Depths0, so packing never silently truncates a coefficient that
// doesn't fit the chosen float width.
var floatDRLimits0 = [8]float64{
	Float16Max, Float16Max, math.MaxFloat32, math.MaxFloat32,
	math.MaxFloat64, math.MaxFloat64, math.Inf(1), math.Inf(1),
}

func pickDepthIndex(depths [8]uint16, limits [8]float64, bitDepth uint16, maxAbs float64) (int, error) {
	for i, v := range depths {
		if v >= bitDepth && v > 0 && maxAbs < limits[i] {
			return i, nil
		}
	}
	return 0, fmt.Errorf("profiles: signal magnitude %g overflows every available bit depth", maxAbs)
}

// Profile0Analogue encodes an interleaved PCM frame into profile 0's
// wire format: per-channel DCT, then raw float packing at the smallest
// depth that covers both the requested bit_depth and the signal's
// dynamic range, per spec section 5.1.
func Profile0Analogue(pcm []float64, channels int, bitDepth uint16, srate uint32, littleEndian bool, planner fourier.Planner) (frad []byte, bitDepthIndex uint16, outChannels uint16, outSrate uint32, err error) {
	if !containsDepth(Depths0[:], bitDepth) || bitDepth == 0 {
		bitDepth = 16
	}

	freqs := make([]float64, len(pcm))
	n := len(pcm) / channels
	for c := 0; c < channels; c++ {
		chnl := make([]float64, n)
		for i := 0; i < n; i++ {
			chnl[i] = pcm[i*channels+c]
		}
		spec := planner.DCT(chnl)
		for i, s := range spec {
			freqs[i*channels+c] = s
		}
	}

	maxAbs := 0.0
	for _, x := range freqs {
		if a := math.Abs(x); a > maxAbs {
			maxAbs = a
		}
	}

	idx, err := pickDepthIndex(Depths0, floatDRLimits0, bitDepth, maxAbs)
	if err != nil {
		return nil, 0, 0, 0, err
	}

	frad = Pack(freqs, Depths0[idx], littleEndian)
	return frad, uint16(idx), uint16(channels), srate, nil
}

// Profile0Digital decodes a profile 0 payload back to interleaved PCM.
func Profile0Digital(frad []byte, bitDepthIndex uint16, channels int, littleEndian bool, planner fourier.Planner) []float64 {
	freqs := Unpack(frad, Depths0[bitDepthIndex], littleEndian)

	pcm := make([]float64, len(freqs))
	n := len(freqs) / channels
	for c := 0; c < channels; c++ {
		chnl := make([]float64, n)
		for i := 0; i < n; i++ {
			chnl[i] = freqs[i*channels+c]
		}
		back := planner.IDCT(chnl)
		for i, s := range back {
			pcm[i*channels+c] = s
		}
	}
	return pcm
}

func containsDepth(depths []uint16, d uint16) bool {
	for _, v := range depths {
		if v == d {
			return true
		}
	}
	return false
}
