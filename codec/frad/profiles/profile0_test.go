package profiles

import (
	"math"
	"testing"

	"github.com/ausocean/frad/codec/frad/fourier"
)

func testTone(n, channels int) []float64 {
	out := make([]float64, n*channels)
	for i := 0; i < n; i++ {
		for c := 0; c < channels; c++ {
			out[i*channels+c] = math.Sin(2*math.Pi*440*float64(i)/48000) * float64(c+1) * 1000
		}
	}
	return out
}

func TestProfile0RoundTripMono(t *testing.T) {
	planner := fourier.NewPlanner()
	pcm := testTone(256, 1)

	frad, bdIdx, channels, srate, err := Profile0Analogue(pcm, 1, 16, 48000, false, planner)
	if err != nil {
		t.Fatalf("Profile0Analogue: %v", err)
	}
	if channels != 1 || srate != 48000 {
		t.Fatalf("unexpected header fields: channels=%d srate=%d", channels, srate)
	}

	back := Profile0Digital(frad, bdIdx, 1, false, planner)
	if len(back) != len(pcm) {
		t.Fatalf("round trip length = %d, want %d", len(back), len(pcm))
	}
	// A 16-bit request stores the DCT coefficients as binary16 (11
	// significant bits); the tone peaks at 1000.
	tol := 1000 * math.Pow(2, -11)
	for i := range pcm {
		if math.Abs(back[i]-pcm[i]) > tol {
			t.Fatalf("sample %d: got %v, want %v", i, back[i], pcm[i])
		}
	}
}

func TestProfile0RoundTripStereoLittleEndian(t *testing.T) {
	planner := fourier.NewPlanner()
	pcm := testTone(128, 2)

	frad, bdIdx, channels, _, err := Profile0Analogue(pcm, 2, 24, 44100, true, planner)
	if err != nil {
		t.Fatalf("Profile0Analogue: %v", err)
	}

	back := Profile0Digital(frad, bdIdx, int(channels), true, planner)
	// A 24-bit request keeps the top 24 bits of each float32 coefficient
	// (15 stored mantissa bits); the louder channel peaks at 2000.
	tol := 2000 * math.Pow(2, -15)
	for i := range pcm {
		if math.Abs(back[i]-pcm[i]) > tol {
			t.Fatalf("sample %d: got %v, want %v", i, back[i], pcm[i])
		}
	}
}

func TestProfile0OverflowsEveryDepthReturnsError(t *testing.T) {
	planner := fourier.NewPlanner()
	pcm := make([]float64, 64)
	for i := range pcm {
		pcm[i] = math.MaxFloat64
	}
	_, _, _, _, err := Profile0Analogue(pcm, 1, 16, 48000, false, planner)
	if err == nil {
		t.Fatal("Profile0Analogue with an out-of-range signal: want an error, got nil")
	}
}

func TestProfile0UnknownBitDepthDefaultsTo16(t *testing.T) {
	planner := fourier.NewPlanner()
	pcm := testTone(64, 1)
	_, bdIdx, _, _, err := Profile0Analogue(pcm, 1, 7, 48000, false, planner)
	if err != nil {
		t.Fatalf("Profile0Analogue: %v", err)
	}
	if Depths0[bdIdx] < 16 {
		t.Errorf("chosen depth = %d, want at least the 16-bit fallback", Depths0[bdIdx])
	}
}
