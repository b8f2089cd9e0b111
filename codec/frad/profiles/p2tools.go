package profiles

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// TNSMaxOrder is the maximum LPC order used by temporal noise shaping.
const TNSMaxOrder = 12

// TNSCoefRes is the bit resolution (including sign) each quantised LPC
// coefficient is packed into.
const TNSCoefRes = 4

// TNSMinPred is the minimum prediction gain, in dB, a TNS filter must
// achieve before it's worth applying (10*log10(2) ~= 3.0103 dB: below
// this, whitening buys less than it costs to transmit the coefficients).
const TNSMinPred = 3.01029995663981195213738894724493027

// calcAutocorr computes the first TNSMaxOrder+1 lags of the
// autocorrelation of freq, windowed by a narrow Gaussian to stabilise the
// short-lag estimate, the same shaping Levinson-Durbin expects.
func calcAutocorr(freq []float64) []float64 {
	out := make([]float64, TNSMaxOrder+1)
	for lag := 0; lag <= TNSMaxOrder; lag++ {
		n := len(freq) - lag
		var sum float64
		if n > 0 {
			sum = floats.Dot(freq[:n], freq[lag:])
		}
		w := math.Exp(-0.5 * math.Pow(float64(lag)*0.4, 2))
		out[lag] = sum * w
	}
	return out
}

// levinsonDurbin derives TNSMaxOrder+1 LPC coefficients (lpc[0] == 1)
// from an autocorrelation sequence, stopping early if the recursion
// becomes unstable (reflection coefficient magnitude >= 1) or the
// prediction error collapses.
func levinsonDurbin(autocorr []float64) []float64 {
	lpc := make([]float64, TNSMaxOrder+1)
	lpc[0] = 1.0
	errv := autocorr[0]
	if errv <= 0 {
		return lpc
	}

	for i := 1; i <= TNSMaxOrder; i++ {
		var acc float64
		for j := 0; j < i; j++ {
			acc += lpc[j] * autocorr[i-j]
		}
		reflection := -acc
		if errv < 1e-9 {
			break
		}
		reflection /= errv
		if math.Abs(reflection) >= 1 {
			break
		}

		prev := append([]float64(nil), lpc...)
		lpc[i] = reflection
		for j := 1; j < i; j++ {
			lpc[j] += reflection * prev[i-j]
		}

		errv *= 1 - reflection*reflection
		if errv <= 0 {
			break
		}
	}
	return lpc
}

func quantiseLPC(lpc []float64) []int64 {
	scale := float64(int64(1)<<(TNSCoefRes-1)) - 1.0
	const eps = 1e-6
	lo := -float64(int64(1)<<(TNSCoefRes-1)) + eps
	hi := float64(int64(1)<<(TNSCoefRes-1)) - 1.0 - eps

	out := make([]int64, len(lpc))
	for i, coef := range lpc {
		scaled := coef * scale
		if scaled < lo {
			scaled = lo
		}
		if scaled > hi {
			scaled = hi
		}
		out[i] = int64(math.Round(scaled))
	}
	return out
}

func dequantiseLPC(lpcq []int64) []float64 {
	scale := float64(int64(1)<<(TNSCoefRes-1)) - 1.0
	out := make([]float64, len(lpcq))
	for i, x := range lpcq {
		out[i] = float64(x) / scale
	}
	return out
}

// predGain returns the prediction gain, in dB, of a filtered signal prc
// against its original orig.
func predGain(orig, prc []float64) float64 {
	origEnergy := floats.Dot(orig, orig)
	diff := make([]float64, len(orig))
	floats.SubTo(diff, orig, prc)
	errEnergy := floats.Dot(diff, diff)
	if origEnergy < 1e-9 || errEnergy < 1e-9 {
		return 0
	}
	return 20 * math.Log10(origEnergy/errEnergy)
}

// directFormFilter applies the standard direct-form difference equation
// y[n] = sum_i b[i]*x[n-i] - sum_{j>=1} a[j]*y[n-j], treating a[0] as an
// implicit leading 1 (never used as feedback), per spec section 4.5's
// TNS filtering.
func directFormFilter(b, a, input []float64) []float64 {
	output := make([]float64, len(input))
	xHist := make([]float64, len(b))
	yHist := make([]float64, 0)
	if len(a) > 1 {
		yHist = make([]float64, len(a)-1)
	}

	for i, x := range input {
		for j := len(xHist) - 1; j > 0; j-- {
			xHist[j] = xHist[j-1]
		}
		if len(xHist) > 0 {
			xHist[0] = x
		}

		var y float64
		for j := range b {
			y += b[j] * xHist[j]
		}
		for j := 0; j < len(a)-1; j++ {
			y -= a[j+1] * yHist[j]
		}
		for j := len(yHist) - 1; j > 0; j-- {
			yHist[j] = yHist[j-1]
		}
		if len(yHist) > 0 {
			yHist[0] = y
		}

		output[i] = y
	}
	return output
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}

func deinterleave(x []float64, channels, c int) []float64 {
	n := len(x) / channels
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = x[i*channels+c]
	}
	return out
}

// TNSAnalysis applies per-channel temporal noise shaping to an
// interleaved masked-DCT spectrum freqs, returning the (possibly
// filtered) spectrum and the interleaved quantised LPC coefficients used
// for each channel, per spec section 4.5.
func TNSAnalysis(freqs []float64, channels int) ([]float64, []int64) {
	tnsFreqs := make([]float64, len(freqs))
	lpcqs := make([]int64, (TNSMaxOrder+1)*channels)

	for c := 0; c < channels; c++ {
		chnl := deinterleave(freqs, channels, c)
		autocorr := calcAutocorr(chnl)
		lpc := levinsonDurbin(autocorr)

		unstable := false
		for _, x := range lpc[1:] {
			if math.Abs(x) >= 1.0 {
				unstable = true
				break
			}
		}
		if unstable {
			for i, s := range chnl {
				tnsFreqs[i*channels+c] = s
			}
			continue
		}

		lpcq := quantiseLPC(lpc)
		lpcdeq := dequantiseLPC(lpcq)
		filtered := directFormFilter(lpcdeq, []float64{1.0}, chnl)

		if !allFinite(filtered) || predGain(chnl, filtered) < TNSMinPred {
			for i, s := range chnl {
				tnsFreqs[i*channels+c] = s
			}
			continue
		}

		for i, s := range filtered {
			tnsFreqs[i*channels+c] = s
		}
		for i, l := range lpcq {
			lpcqs[i*channels+c] = l
		}
	}

	return tnsFreqs, lpcqs
}

// TNSSynthesis inverts TNSAnalysis given the interleaved TNS-domain
// spectrum and quantised LPC coefficients.
func TNSSynthesis(tnsFreqs []float64, lpcqs []int64, channels int) []float64 {
	freqs := make([]float64, len(tnsFreqs))

	for c := 0; c < channels; c++ {
		chnl := deinterleave(tnsFreqs, channels, c)
		lpcqChnl := make([]int64, TNSMaxOrder+1)
		for i := range lpcqChnl {
			lpcqChnl[i] = lpcqs[i*channels+c]
		}

		lpcdeq := dequantiseLPC(lpcqChnl)
		filtered := directFormFilter([]float64{1.0}, lpcdeq, chnl)

		out := filtered
		if !allFinite(filtered) {
			out = chnl
		}
		for i, s := range out {
			freqs[i*channels+c] = s
		}
	}

	return freqs
}
