package profiles

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"io"
	"math"

	"github.com/ausocean/frad/codec/frad/fourier"
	"github.com/ausocean/frad/codec/frad/golomb"
)

// Depths2 is the bit-depth table for profile 2 (perceptual lossy + TNS).
var Depths2 = [7]uint16{8, 10, 12, 14, 16, 20, 24}

// logBase2E is the natural log of e/2, the base profile 2 uses to
// compress masking thresholds into a narrow integer range before
// Exp-Golomb coding.
var logBase2E = math.Log(math.E / 2.0)

func containsDepth2(d uint16) bool {
	for _, v := range Depths2 {
		if v == d {
			return true
		}
	}
	return false
}

func indexOfDepth2(d uint16) int {
	for i, v := range Depths2 {
		if v == d {
			return i
		}
	}
	return 0
}

func deflateRaw(data []byte) []byte {
	var buf bytes.Buffer
	w, _ := flate.NewWriter(&buf, 9)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

func inflateRaw(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	return io.ReadAll(r)
}

// Profile2Analogue encodes an interleaved PCM frame to profile 2's wire
// format: profile 1's DCT + masking pipeline, followed by per-channel
// TNS, Exp-Golomb coding and raw deflate (no zlib wrapper), per spec
// section 5.3.
func Profile2Analogue(pcm []float64, channels int, bitDepth uint16, srate uint32, lossLevel float64, planner fourier.Planner) (frad []byte, bitDepthIndex uint16, outChannels uint16, outSrate uint32) {
	if !containsDepth2(bitDepth) || bitDepth == 0 {
		bitDepth = 16
	}
	pcmScale, _ := GetScaleFactors(bitDepth)
	lossLevel = math.Max(math.Abs(lossLevel), 0.125)

	pcm = padPCM(pcm, channels)
	n := len(pcm) / channels

	freqsMasked := make([]int64, n*channels)
	thres := make([]int64, MOSLen*channels)
	lpcs := make([]int64, (TNSMaxOrder+1)*channels)

	for c := 0; c < channels; c++ {
		chnl := make([]float64, n)
		for i := 0; i < n; i++ {
			chnl[i] = pcm[i*channels+c]
		}
		freqsChnl := planner.DCT(chnl)

		thresChnl := MaskThresMos(freqsChnl, srate, lossLevel, SpreadAlpha, pcmScale)

		divFactor := MappingFromOpus(thresChnl, len(freqsChnl), srate)
		maskedChnl := make([]float64, len(freqsChnl))
		for i, x := range freqsChnl {
			d := divFactor[i]
			if d == 0 {
				maskedChnl[i] = 0
				continue
			}
			maskedChnl[i] = x * pcmScale / d
		}

		maskedChnl, lpcChnl := tnsAnalysisSingle(maskedChnl)

		for i, s := range maskedChnl {
			freqsMasked[i*channels+c] = int64(math.Round(Quant(s)))
		}
		for i, m := range thresChnl {
			log := math.Log(math.Max(m, 1.0)) / logBase2E
			thres[i*channels+c] = int64(math.Round(Dequant(log)))
		}
		for i, l := range lpcChnl {
			lpcs[i*channels+c] = l
		}
	}

	freqsGol := golomb.Encode(freqsMasked)
	thresGol := golomb.Encode(thres)
	lpcGol := golomb.Encode(lpcs)

	body := make([]byte, 0, 2+len(lpcGol)+4+len(thresGol)+len(freqsGol))
	var lpcLen [2]byte
	binary.BigEndian.PutUint16(lpcLen[:], uint16(len(lpcGol)))
	body = append(body, lpcLen[:]...)
	body = append(body, lpcGol...)
	var thresLen [4]byte
	binary.BigEndian.PutUint32(thresLen[:], uint32(len(thresGol)))
	body = append(body, thresLen[:]...)
	body = append(body, thresGol...)
	body = append(body, freqsGol...)

	frad = deflateRaw(body)
	return frad, uint16(indexOfDepth2(bitDepth)), uint16(channels), srate
}

// tnsAnalysisSingle runs TNSAnalysis over a single (non-interleaved)
// channel spectrum, to avoid round-tripping through interleave/
// deinterleave for the common profile-2 per-channel loop.
func tnsAnalysisSingle(freqs []float64) ([]float64, []int64) {
	return TNSAnalysis(freqs, 1)
}

func tnsSynthesisSingle(tnsFreqs []float64, lpcq []int64) []float64 {
	return TNSSynthesis(tnsFreqs, lpcq, 1)
}

// Profile2Digital decodes a profile 2 payload back to interleaved PCM. A
// corrupt (non-inflating) payload degrades to silence for the declared
// frame.
func Profile2Digital(frad []byte, bitDepthIndex uint16, channels int, srate uint32, fsize int, planner fourier.Planner) []float64 {
	pcmScale, _ := GetScaleFactors(Depths2[bitDepthIndex])
	body, err := inflateRaw(frad)
	if err != nil || len(body) < 6 {
		return make([]float64, fsize*channels)
	}

	lpcLen := int(binary.BigEndian.Uint16(body[:2]))
	rest := body[2:]
	if lpcLen > len(rest) {
		return make([]float64, fsize*channels)
	}
	lpcGol := rest[:lpcLen]
	rest = rest[lpcLen:]
	if len(rest) < 4 {
		return make([]float64, fsize*channels)
	}
	thresLen := int(binary.BigEndian.Uint32(rest[:4]))
	rest = rest[4:]
	if thresLen > len(rest) {
		return make([]float64, fsize*channels)
	}
	thresGol := rest[:thresLen]
	freqsGolData := rest[thresLen:]

	freqsMaskedDec, ok1 := golomb.Decode(freqsGolData, fsize*channels)
	thresDec, ok2 := golomb.Decode(thresGol, MOSLen*channels)
	lpcDec, ok3 := golomb.Decode(lpcGol, (TNSMaxOrder+1)*channels)
	if !ok1 || !ok2 || !ok3 {
		return make([]float64, fsize*channels)
	}

	freqsMasked := make([]float64, len(freqsMaskedDec))
	for i, x := range freqsMaskedDec {
		freqsMasked[i] = Dequant(float64(x))
	}
	thres := make([]float64, len(thresDec))
	for i, x := range thresDec {
		thres[i] = math.Pow(math.E/2.0, Quant(float64(x)))
	}

	pcm := make([]float64, fsize*channels)
	for c := 0; c < channels; c++ {
		maskedChnl := deinterleave(freqsMasked, channels, c)
		thresChnl := deinterleave(thres, channels, c)
		lpcChnl := make([]int64, TNSMaxOrder+1)
		for i := range lpcChnl {
			lpcChnl[i] = lpcDec[i*channels+c]
		}

		maskedChnl = tnsSynthesisSingle(maskedChnl, lpcChnl)

		divFactor := MappingFromOpus(thresChnl, fsize, srate)
		freqsChnl := make([]float64, fsize)
		for i := range freqsChnl {
			freqsChnl[i] = maskedChnl[i] * divFactor[i] / pcmScale
		}

		back := planner.IDCT(freqsChnl)
		for i, s := range back {
			pcm[i*channels+c] = s
		}
	}
	return pcm
}
