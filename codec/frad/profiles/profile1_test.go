package profiles

import (
	"math"
	"testing"

	"github.com/ausocean/frad/codec/frad/fourier"
)

func TestProfile1RoundTripShapeMono(t *testing.T) {
	planner := fourier.NewPlanner()
	pcm := testTone(1000, 1)

	frad, bdIdx, channels, srate := Profile1Analogue(pcm, 1, 16, 48000, 1.0, planner)
	if channels != 1 || srate != 48000 {
		t.Fatalf("unexpected header fields: channels=%d srate=%d", channels, srate)
	}

	fsize := int(samplesMinGE(1000))
	back := Profile1Digital(frad, bdIdx, 1, 48000, fsize, planner)
	if len(back) != fsize {
		t.Fatalf("round trip length = %d, want %d", len(back), fsize)
	}
	for i, v := range back {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("sample %d is non-finite: %v", i, v)
		}
	}
}

func TestProfile1RoundTripPreservesToneEnergy(t *testing.T) {
	planner := fourier.NewPlanner()
	n := 2048
	pcm := testTone(n, 1)

	frad, bdIdx, _, srate := Profile1Analogue(pcm, 1, 16, 48000, 1.0, planner)
	back := Profile1Digital(frad, bdIdx, 1, srate, n, planner)

	var origEnergy, backEnergy float64
	for i := 0; i < n; i++ {
		origEnergy += pcm[i] * pcm[i]
		backEnergy += back[i] * back[i]
	}
	if backEnergy < origEnergy*0.1 || backEnergy > origEnergy*10 {
		t.Errorf("decoded energy %v far from original %v", backEnergy, origEnergy)
	}
}

func TestProfile1DigitalMalformedPayloadDegradesToSilence(t *testing.T) {
	planner := fourier.NewPlanner()
	back := Profile1Digital([]byte{0x00, 0x01, 0x02}, 1, 1, 48000, 128, planner)
	if len(back) != 128 {
		t.Fatalf("malformed payload output length = %d, want 128", len(back))
	}
	for _, v := range back {
		if v != 0 {
			t.Errorf("malformed payload should degrade to silence, got %v", v)
		}
	}
}

func TestGetScaleFactorsMonotonic(t *testing.T) {
	pcmScaleLow, threshLow := GetScaleFactors(8)
	pcmScaleHigh, threshHigh := GetScaleFactors(16)
	if pcmScaleHigh <= pcmScaleLow {
		t.Errorf("pcmScale should grow with bit depth: 8-bit=%v 16-bit=%v", pcmScaleLow, pcmScaleHigh)
	}
	if threshHigh >= threshLow {
		t.Errorf("thresScale should shrink with bit depth: 8-bit=%v 16-bit=%v", threshLow, threshHigh)
	}
}

func TestPadPCMRoundsUpToPermittedFrameSize(t *testing.T) {
	pcm := make([]float64, 100*2)
	padded := padPCM(pcm, 2)
	if len(padded)%2 != 0 {
		t.Fatal("padded length must stay a multiple of channels")
	}
	samples := len(padded) / 2
	if samples != int(samplesMinGE(100)) {
		t.Errorf("padded sample count = %d, want %d", samples, samplesMinGE(100))
	}
}
