// Package profiles implements the four FrAD coding profiles (0, 1, 2, 4)
// on top of the fourier, ecc and golomb packages: the DCT-domain
// quantisation, psychoacoustic masking, temporal noise shaping and raw
// float-packing logic that turns a PCM frame into a profile payload and
// back.
package profiles

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// SpreadAlpha is the spreading-function exponent shared by the masking
// threshold calculation in profiles 1 and 2.
const SpreadAlpha = 0.8

// quantAlpha is the exponent of the non-linear (power-law) quantiser
// used to compress DCT coefficients before Exp-Golomb coding.
const quantAlpha = 0.75

// modifiedOpusSubbands are the edges (in Hz) of the 27 psychoacoustic
// subbands profiles 1 and 2 use for masking, adapted from Opus's CELT
// band layout with narrower low-frequency bands.
var modifiedOpusSubbands = [28]float64{
	0, 200, 400, 600, 800, 1000, 1200, 1400,
	1600, 2000, 2400, 2800, 3200, 4000, 4800, 5600,
	6800, 8000, 9600, 12000, 15600, 20000, 24000, 28800,
	34400, 40800, 48000, math.MaxFloat64,
}

// MOSLen is the number of psychoacoustic subbands (28 edges => 27 bands).
const MOSLen = len(modifiedOpusSubbands) - 1

// getBinRange returns the half-open range of DCT bin indices belonging to
// subband i, given a spectrum of length l sampled at srate.
func getBinRange(l int, srate uint32, i int) (start, end int) {
	nyquist := float64(srate) / 2.0
	s := int(math.Round(modifiedOpusSubbands[i] / nyquist * float64(l)))
	e := int(math.Round(modifiedOpusSubbands[i+1] / nyquist * float64(l)))
	if s > l {
		s = l
	}
	if e > l {
		e = l
	}
	return s, e
}

// MaskThresMos computes the masking threshold for each of the 27
// psychoacoustic subbands of freqs (the raw, unscaled DCT output), per
// spec section 4.4: Threshold[i] = max(RMS^alpha * sqrt(pcmScale), ATH)
// * lossLevel, RMS and ATH being two independently-scaled quantities
// rather than one pre-scaled signal raised to alpha.
func MaskThresMos(freqs []float64, srate uint32, lossLevel, alpha, pcmScale float64) []float64 {
	thres := make([]float64, MOSLen)
	pcmScaleSqrt := math.Sqrt(pcmScale)
	for i := 0; i < MOSLen; i++ {
		start, end := getBinRange(len(freqs), srate, i)
		if end <= start {
			continue
		}
		f := (modifiedOpusSubbands[i] + modifiedOpusSubbands[i+1]) / 2
		ath := math.Pow(10, (3.64*math.Pow(f/1000, -0.8)-6.5*math.Exp(-0.6*math.Pow(f/1000-3.3, 2))+1e-3*math.Pow(f/1000, 4))/20)

		band := freqs[start:end]
		sumSq := floats.Dot(band, band)
		rms := math.Sqrt(sumSq / float64(end-start))
		sfq := math.Pow(rms, alpha) * pcmScaleSqrt

		thres[i] = math.Max(sfq, ath) * lossLevel
	}
	return thres
}

// MappingFromOpus expands the per-subband thresholds back out to a
// freqsLen-long array, linearly interpolating between adjacent subband
// values so every DCT bin gets a divisor.
func MappingFromOpus(mappedThres []float64, freqsLen int, srate uint32) []float64 {
	thres := make([]float64, freqsLen)
	for i := 0; i < MOSLen-1; i++ {
		start, end := getBinRange(freqsLen, srate, i)
		num := end - start
		if num <= 0 {
			continue
		}
		ramp := linspace(mappedThres[i], mappedThres[i+1], num+1)
		copy(thres[start:end], ramp[:num])
	}
	return thres
}

// linspace returns num linearly spaced values from start to stop
// inclusive, mirroring the frad package's window-building helper of the
// same name (duplicated locally since profiles must not import frad, to
// avoid a cycle: frad's encoder/decoder import profiles).
func linspace(start, stop float64, num int) []float64 {
	if num == 0 {
		return nil
	}
	if num == 1 {
		return []float64{(start + stop) / 2}
	}
	step := (stop - start) / float64(num-1)
	out := make([]float64, num)
	for i := range out {
		if i == num-1 {
			out[i] = stop
		} else {
			out[i] = start + step*float64(i)
		}
	}
	return out
}

// Quant applies the non-linear (power-law) quantiser used to compress
// DCT coefficients and thresholds before Exp-Golomb coding.
func Quant(x float64) float64 {
	if x == 0 {
		return 0
	}
	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	return sign * math.Pow(math.Abs(x), quantAlpha)
}

// Dequant inverts Quant.
func Dequant(y float64) float64 {
	if y == 0 {
		return 0
	}
	sign := 1.0
	if y < 0 {
		sign = -1.0
	}
	return sign * math.Pow(math.Abs(y), 1.0/quantAlpha)
}
