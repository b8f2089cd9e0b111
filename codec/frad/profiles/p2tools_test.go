package profiles

import (
	"math"
	"testing"
)

func sineSignal(n int, freq, srate float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / srate)
	}
	return out
}

func TestCalcAutocorrZeroLagIsEnergy(t *testing.T) {
	sig := sineSignal(256, 440, 48000)
	ac := calcAutocorr(sig)
	if len(ac) != TNSMaxOrder+1 {
		t.Fatalf("calcAutocorr length = %d, want %d", len(ac), TNSMaxOrder+1)
	}
	var energy float64
	for _, v := range sig {
		energy += v * v
	}
	if ac[0] <= 0 || ac[0] > energy+1e-6 {
		t.Errorf("calcAutocorr[0] = %v, want in (0, %v]", ac[0], energy)
	}
}

func TestCalcAutocorrSilence(t *testing.T) {
	ac := calcAutocorr(make([]float64, 64))
	for i, v := range ac {
		if v != 0 {
			t.Errorf("calcAutocorr(silence)[%d] = %v, want 0", i, v)
		}
	}
}

func TestLevinsonDurbinLeadingOne(t *testing.T) {
	sig := sineSignal(256, 440, 48000)
	lpc := levinsonDurbin(calcAutocorr(sig))
	if lpc[0] != 1.0 {
		t.Errorf("levinsonDurbin lpc[0] = %v, want 1.0", lpc[0])
	}
	if len(lpc) != TNSMaxOrder+1 {
		t.Fatalf("levinsonDurbin length = %d, want %d", len(lpc), TNSMaxOrder+1)
	}
}

func TestLevinsonDurbinZeroEnergyIsIdentity(t *testing.T) {
	ac := make([]float64, TNSMaxOrder+1)
	lpc := levinsonDurbin(ac)
	if lpc[0] != 1.0 {
		t.Errorf("lpc[0] = %v, want 1.0", lpc[0])
	}
	for i := 1; i < len(lpc); i++ {
		if lpc[i] != 0 {
			t.Errorf("lpc[%d] = %v, want 0 for a zero-energy autocorrelation", i, lpc[i])
		}
	}
}

func TestQuantiseDequantiseLPCBounded(t *testing.T) {
	lpc := []float64{1.0, 0.9, -0.9, 0.3, -0.3, 0, 0.05, -0.05, 0.5, -0.5, 0.2, -0.2, 0.1}
	q := quantiseLPC(lpc)
	max := int64(1)<<(TNSCoefRes-1) - 1
	min := -(int64(1) << (TNSCoefRes - 1))
	for i, v := range q {
		if v > max || v < min {
			t.Errorf("quantiseLPC[%d] = %d, out of [%d,%d]", i, v, min, max)
		}
	}
	deq := dequantiseLPC(q)
	if len(deq) != len(lpc) {
		t.Fatalf("dequantiseLPC length = %d, want %d", len(deq), len(lpc))
	}
}

func TestDirectFormFilterIdentity(t *testing.T) {
	input := sineSignal(64, 1000, 48000)
	out := directFormFilter([]float64{1.0}, []float64{1.0}, input)
	for i := range input {
		if math.Abs(out[i]-input[i]) > 1e-12 {
			t.Errorf("identity filter[%d] = %v, want %v", i, out[i], input[i])
		}
	}
}

func TestDirectFormFilterAnalysisSynthesisRoundTrip(t *testing.T) {
	input := sineSignal(256, 523, 48000)
	lpc := []float64{1.0, -0.4, 0.1, -0.05}
	filtered := directFormFilter(lpc, []float64{1.0}, input)
	recovered := directFormFilter([]float64{1.0}, lpc, filtered)
	for i := range input {
		if math.Abs(recovered[i]-input[i]) > 1e-9 {
			t.Fatalf("analysis/synthesis round trip mismatch at %d: got %v, want %v", i, recovered[i], input[i])
		}
	}
}

func TestAllFinite(t *testing.T) {
	if !allFinite([]float64{1, 2, 3}) {
		t.Error("allFinite([1,2,3]) = false, want true")
	}
	if allFinite([]float64{1, math.NaN(), 3}) {
		t.Error("allFinite with NaN = true, want false")
	}
	if allFinite([]float64{1, math.Inf(1), 3}) {
		t.Error("allFinite with +Inf = true, want false")
	}
}

func TestDeinterleave(t *testing.T) {
	x := []float64{1, 10, 2, 20, 3, 30}
	left := deinterleave(x, 2, 0)
	right := deinterleave(x, 2, 1)
	wantLeft := []float64{1, 2, 3}
	wantRight := []float64{10, 20, 30}
	for i := range wantLeft {
		if left[i] != wantLeft[i] || right[i] != wantRight[i] {
			t.Fatalf("deinterleave mismatch at %d: left=%v right=%v", i, left, right)
		}
	}
}

func TestTNSAnalysisSynthesisRoundTrip(t *testing.T) {
	channels := 2
	n := 512
	freqs := make([]float64, n*channels)
	for i := 0; i < n; i++ {
		freqs[i*channels+0] = math.Sin(2 * math.Pi * 220 * float64(i) / 48000)
		freqs[i*channels+1] = math.Sin(2 * math.Pi * 880 * float64(i) / 48000)
	}

	tnsFreqs, lpcqs := TNSAnalysis(freqs, channels)
	if len(tnsFreqs) != len(freqs) {
		t.Fatalf("TNSAnalysis spectrum length = %d, want %d", len(tnsFreqs), len(freqs))
	}
	if len(lpcqs) != (TNSMaxOrder+1)*channels {
		t.Fatalf("TNSAnalysis lpcqs length = %d, want %d", len(lpcqs), (TNSMaxOrder+1)*channels)
	}

	recovered := TNSSynthesis(tnsFreqs, lpcqs, channels)
	if len(recovered) != len(freqs) {
		t.Fatalf("TNSSynthesis length = %d, want %d", len(recovered), len(freqs))
	}
	for i := range freqs {
		if math.Abs(recovered[i]-freqs[i]) > 1e-6 {
			t.Fatalf("TNS round trip mismatch at %d: got %v, want %v", i, recovered[i], freqs[i])
		}
	}
}

func TestPredGainPerfectReconstructionIsZero(t *testing.T) {
	sig := sineSignal(64, 300, 48000)
	if g := predGain(sig, sig); g != 0 {
		t.Errorf("predGain(sig, sig) = %v, want 0 (guarded, identical energy)", g)
	}
}
