package profiles

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
	"math"

	"github.com/ausocean/frad/codec/frad/fourier"
	"github.com/ausocean/frad/codec/frad/golomb"
)

// Depths1 is the bit-depth table for profile 1 (perceptual lossy).
var Depths1 = [8]uint16{8, 12, 16, 24, 32, 48, 64, 0}

// samplesLI mirrors frad.SamplesLI locally: profiles cannot import the
// frad package (frad's encoder/decoder import profiles, so that would be
// a cycle), and this is the only table-driven helper the profile codecs
// need from it.
var samplesLI = [24]uint32{
	128, 144, 192, 256, 288, 384, 512, 576, 768,
	1024, 1152, 1536, 2048, 2304, 3072, 4096, 4608, 6144,
	8192, 9216, 12288, 16384, 18432, 24576,
}

func samplesMinGE(n uint32) uint32 {
	for _, v := range samplesLI {
		if v >= n {
			return v
		}
	}
	return samplesLI[len(samplesLI)-1]
}

// padPCM zero-pads an interleaved PCM frame so its sample count reaches
// the next permitted compact frame size.
func padPCM(pcm []float64, channels int) []float64 {
	samples := len(pcm) / channels
	target := int(samplesMinGE(uint32(samples)))
	if target <= samples {
		return pcm
	}
	out := make([]float64, target*channels)
	copy(out, pcm)
	return out
}

// GetScaleFactors returns the PCM scale factor (2^(bitDepth-1)) and the
// threshold scale factor (sqrt(3)^(16-bitDepth)) profile 1 uses to map
// its floating-point working domain onto the requested bit depth.
func GetScaleFactors(bitDepth uint16) (pcmScale, thresScale float64) {
	pcmScale = math.Pow(2, float64(bitDepth)-1)
	thresScale = math.Pow(math.Sqrt(3), 16-float64(bitDepth))
	return
}

func deflateZlib(data []byte) []byte {
	var buf bytes.Buffer
	w, _ := zlib.NewWriterLevel(&buf, 9)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

func inflateZlib(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Profile1Analogue encodes an interleaved PCM frame to profile 1's wire
// format: DCT, per-channel psychoacoustic masking, non-linear
// quantisation, Exp-Golomb coding and zlib compression, per spec
// section 5.2.
func Profile1Analogue(pcm []float64, channels int, bitDepth uint16, srate uint32, lossLevel float64, planner fourier.Planner) (frad []byte, bitDepthIndex uint16, outChannels uint16, outSrate uint32) {
	if !containsDepth(Depths1[:], bitDepth) || bitDepth == 0 {
		bitDepth = 16
	}
	pcmScale, thresScale := GetScaleFactors(bitDepth)
	lossLevel = math.Max(math.Abs(lossLevel), 0.125)

	pcm = padPCM(pcm, channels)
	n := len(pcm) / channels

	freqs := make([][]float64, channels)
	for c := 0; c < channels; c++ {
		chnl := make([]float64, n)
		for i := 0; i < n; i++ {
			chnl[i] = pcm[i*channels+c]
		}
		freqs[c] = planner.DCT(chnl)
	}

	freqsMasked := make([][]float64, channels)
	thresholds := make([][]float64, channels)
	for c := 0; c < channels; c++ {
		thresChnl := MaskThresMos(freqs[c], srate, lossLevel, SpreadAlpha, pcmScale)
		divFactor := MappingFromOpus(thresChnl, len(freqs[0]), srate)
		masked := make([]float64, len(freqs[c]))
		for i, x := range freqs[c] {
			d := divFactor[i]
			if d == 0 {
				masked[i] = 0
				continue
			}
			masked[i] = x * pcmScale / d
		}
		freqsMasked[c] = masked
		thresholds[c] = thresChnl
	}

	freqsFlat := make([]int64, len(freqs[0])*channels)
	for c := 0; c < channels; c++ {
		for i, x := range freqsMasked[c] {
			freqsFlat[i*channels+c] = int64(math.Round(Quant(x)))
		}
	}
	thresFlat := make([]int64, MOSLen*channels)
	for c := 0; c < channels; c++ {
		for i, x := range thresholds[c] {
			thresFlat[i*channels+c] = int64(math.Round(Quant(x * thresScale)))
		}
	}

	freqsGol := golomb.Encode(freqsFlat)
	thresGol := golomb.Encode(thresFlat)

	body := make([]byte, 0, 4+len(thresGol)+len(freqsGol))
	var lenField [4]byte
	binary.BigEndian.PutUint32(lenField[:], uint32(len(thresGol)))
	body = append(body, lenField[:]...)
	body = append(body, thresGol...)
	body = append(body, freqsGol...)

	frad = deflateZlib(body)
	return frad, uint16(indexOf(Depths1[:], bitDepth)), uint16(channels), srate
}

func indexOf(depths []uint16, d uint16) int {
	for i, v := range depths {
		if v == d {
			return i
		}
	}
	return 0
}

// Profile1Digital decodes a profile 1 payload back to interleaved PCM.
// A corrupt (non-inflating) payload degrades to silence for the declared
// frame, matching the rest of the codec's never-propagate-as-error
// stance on recoverable stream damage.
func Profile1Digital(frad []byte, bitDepthIndex uint16, channels int, srate uint32, fsize int, planner fourier.Planner) []float64 {
	bitDepth := Depths1[bitDepthIndex]
	pcmScale, thresScale := GetScaleFactors(bitDepth)

	body, err := inflateZlib(frad)
	if err != nil {
		return make([]float64, fsize*channels)
	}
	if len(body) < 4 {
		return make([]float64, fsize*channels)
	}

	thresLen := int(binary.BigEndian.Uint32(body[:4]))
	rest := body[4:]
	if thresLen > len(rest) {
		return make([]float64, fsize*channels)
	}
	thresGol := rest[:thresLen]
	freqsGolData := rest[thresLen:]

	freqsDec, ok1 := golomb.Decode(freqsGolData, fsize*channels)
	thresDec, ok2 := golomb.Decode(thresGol, MOSLen*channels)
	if !ok1 || !ok2 {
		return make([]float64, fsize*channels)
	}

	freqsFlat := make([]float64, len(freqsDec))
	for i, x := range freqsDec {
		freqsFlat[i] = Dequant(float64(x))
	}
	thresFlat := make([]float64, len(thresDec))
	for i, x := range thresDec {
		thresFlat[i] = Dequant(float64(x)) / thresScale
	}

	thresholds := make([][]float64, channels)
	freqsMasked := make([][]float64, channels)
	for c := 0; c < channels; c++ {
		thresholds[c] = deinterleave(thresFlat, channels, c)
		freqsMasked[c] = deinterleave(freqsFlat, channels, c)
	}

	pcm := make([]float64, fsize*channels)
	for c := 0; c < channels; c++ {
		divFactor := MappingFromOpus(thresholds[c], fsize, srate)
		chnlFreqs := make([]float64, fsize)
		for i := range chnlFreqs {
			chnlFreqs[i] = freqsMasked[c][i] * divFactor[i] / pcmScale
		}
		back := planner.IDCT(chnlFreqs)
		for i, s := range back {
			pcm[i*channels+c] = s
		}
	}
	return pcm
}
