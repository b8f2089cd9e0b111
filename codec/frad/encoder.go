package frad

import (
	"fmt"

	"github.com/ausocean/frad/codec/frad/fourier"
)

// EncodeResult is the output of a single Encoder.Process or Encoder.Flush
// call: the encoded bytes produced, and how many PCM samples they cover.
type EncodeResult struct {
	Buf     []byte
	Samples int
}

// IsEmpty reports whether r carries no usable output.
func (r EncodeResult) IsEmpty() bool { return len(r.Buf) == 0 || r.Samples == 0 }

// EncoderParams configures an Encoder's critical stream parameters.
type EncoderParams struct {
	Profile   uint8
	Srate     uint32
	Channels  uint16
	BitDepth  uint16
	FrameSize uint32
}

// Encoder turns a stream of interleaved float64 PCM samples into FrAD
// frames, per spec sections 3 and 5.
type Encoder struct {
	asfh            *ASFH
	buffer          []float64
	bitDepth        uint16
	channels        uint16
	fsize           uint32
	srate           uint32
	overlapFragment []float64

	lossLevel float64
	init      bool

	planner fourier.Planner
}

// NewEncoder returns an Encoder configured with params, ready to Process.
func NewEncoder(params EncoderParams) (*Encoder, error) {
	e := &Encoder{
		asfh:      NewASFH(),
		lossLevel: 0.5,
		planner:   fourier.NewPlanner(),
	}
	if _, err := e.SetProfile(params); err != nil {
		return nil, err
	}
	return e, nil
}

func verifyProfile(profile uint8) error {
	if !IsAvailable(profile) {
		return fmt.Errorf("frad: invalid profile, available: %v", Available)
	}
	return nil
}

func verifySrate(profile uint8, srate uint32) error {
	if IsCompact(profile) {
		found := false
		for _, r := range SampleRates {
			if r == srate {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("frad: invalid sample rate for profile %d, valid rates: %v", profile, SampleRates)
		}
	}
	return nil
}

func verifyChannels(channels uint16) error {
	if channels == 0 {
		return fmt.Errorf("frad: channel count cannot be zero")
	}
	return nil
}

func verifyBitDepth(profile uint8, bitDepth uint16) error {
	if bitDepth == 0 {
		return fmt.Errorf("frad: bit depth cannot be zero")
	}
	found := false
	for _, d := range BitDepths[profile] {
		if d == bitDepth {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("frad: invalid bit depth for profile %d, valid depths: %v", profile, BitDepths[profile])
	}
	return nil
}

func verifyFrameSize(profile uint8, frameSize uint32) error {
	if frameSize == 0 {
		return fmt.Errorf("frad: frame size cannot be zero")
	}
	if frameSize > SegMax[profile] {
		return fmt.Errorf("frad: samples per frame cannot exceed %d", SegMax[profile])
	}
	return nil
}

// overlap prepends any carried-over overlap fragment to frame and, unless
// flush is set, carries the frame's tail forward as the next fragment for
// a compact profile with overlap enabled, per spec section 4.6.
func (e *Encoder) overlap(frame []float64, overlapRead int, flush bool) []float64 {
	channels := int(e.channels)
	if channels == 0 {
		channels = 1
	}
	if len(e.overlapFragment) > 0 {
		n := overlapRead * channels
		if n > len(e.overlapFragment) {
			n = len(e.overlapFragment)
		}
		prefix := e.overlapFragment[:n]
		e.overlapFragment = e.overlapFragment[n:]
		combined := make([]float64, 0, len(prefix)+len(frame))
		combined = append(combined, prefix...)
		combined = append(combined, frame...)
		frame = combined
	}

	nextFlag := !flush && IsCompact(e.asfh.Profile) && e.asfh.OverlapRatio > 1 && len(e.overlapFragment) == 0
	if nextFlag {
		overlapRatio := int(e.asfh.OverlapRatio)
		cutoff := (len(frame) / channels) * (overlapRatio - 1) / overlapRatio
		e.overlapFragment = append([]float64(nil), frame[cutoff*channels:]...)
	}
	return frame
}

// inner is the shared encode loop behind Process and Flush.
func (e *Encoder) inner(stream []float64, flush bool) EncodeResult {
	e.buffer = append(e.buffer, stream...)
	var ret []byte
	samples := 0

	if !e.init {
		return EncodeResult{ret, samples}
	}

	channels := int(e.channels)
	if channels == 0 {
		channels = 1
	}

	for {
		overlapLen := len(e.overlapFragment) / channels
		readLen := int(e.fsize)
		if IsCompact(e.asfh.Profile) {
			readLen = int(SamplesMinGE(uint32(readLen)))
		}
		overlapRead := overlapLen
		if readLen < overlapRead {
			overlapRead = readLen
		}
		readLen -= overlapRead
		readLenElems := readLen * channels

		if len(e.buffer) < readLenElems && !flush {
			break
		}
		take := readLenElems
		if take > len(e.buffer) {
			take = len(e.buffer)
		}
		frame := append([]float64(nil), e.buffer[:take]...)
		e.buffer = e.buffer[take:]
		samplesInFrame := len(frame) / channels

		frame = e.overlap(frame, overlapRead, flush)
		if len(frame) == 0 {
			ret = append(ret, e.asfh.ForceFlush()...)
			break
		}
		if IsCompact(e.asfh.Profile) {
			// Pad here, not just inside the profile codec, so the fsize
			// recorded in the header matches the sample count the profile
			// actually transmits (its own padding becomes a no-op).
			padded := int(SamplesMinGE(uint32(len(frame)/channels))) * channels
			if padded > len(frame) {
				grown := make([]float64, padded)
				copy(grown, frame)
				frame = grown
			}
		}
		fsize := uint32(len(frame) / channels)

		fradBytes, bitDepthIndex, outChannels, outSrate, err := encodeFrame(
			e.asfh.Profile, frame, e.bitDepth, e.channels, e.srate, e.lossLevel, e.asfh.Endian, e.planner)
		if err != nil {
			break
		}
		samples += samplesInFrame
		if e.asfh.ECC {
			fradBytes = eccEncode(fradBytes, e.asfh.ECCRatio)
		}

		e.asfh.BitDepthIndex, e.asfh.Channels, e.asfh.Fsize, e.asfh.Srate = bitDepthIndex, outChannels, fsize, outSrate
		ret = append(ret, e.asfh.Write(fradBytes)...)
		if flush {
			ret = append(ret, e.asfh.ForceFlush()...)
		}
	}

	return EncodeResult{ret, samples}
}

// Process encodes as many complete frames as stream, appended to any
// buffered remainder, currently supports.
func (e *Encoder) Process(stream []float64) EncodeResult {
	return e.inner(stream, false)
}

// Flush encodes the remaining buffered samples as a final (possibly
// shorter) frame and, for compact profiles, emits a force-flush marker.
func (e *Encoder) Flush() EncodeResult {
	return e.inner(nil, true)
}

// GetProfile returns the encoder's current coding profile.
func (e *Encoder) GetProfile() uint8 { return e.asfh.Profile }

// SetProfile validates and applies a full parameter set, flushing first if
// the channel count or sample rate is actually changing.
func (e *Encoder) SetProfile(params EncoderParams) (EncodeResult, error) {
	if err := verifyProfile(params.Profile); err != nil {
		return EncodeResult{}, err
	}
	if err := verifySrate(params.Profile, params.Srate); err != nil {
		return EncodeResult{}, err
	}
	if err := verifyChannels(params.Channels); err != nil {
		return EncodeResult{}, err
	}
	if err := verifyBitDepth(params.Profile, params.BitDepth); err != nil {
		return EncodeResult{}, err
	}
	if err := verifyFrameSize(params.Profile, params.FrameSize); err != nil {
		return EncodeResult{}, err
	}

	res := EncodeResult{}
	if (e.channels != 0 && e.channels != params.Channels) || (e.srate != 0 && e.srate != params.Srate) {
		res = e.Flush()
	}

	e.asfh.Profile = params.Profile
	e.srate = params.Srate
	e.channels = params.Channels
	e.bitDepth = params.BitDepth
	e.fsize = params.FrameSize
	e.init = true
	return res, nil
}

// GetChannels returns the encoder's current channel count.
func (e *Encoder) GetChannels() uint16 { return e.channels }

// SetChannels changes the channel count, flushing first if it's actually
// changing.
func (e *Encoder) SetChannels(channels uint16) (EncodeResult, error) {
	if err := verifyChannels(channels); err != nil {
		return EncodeResult{}, err
	}
	res := EncodeResult{}
	if e.channels != 0 && e.channels != channels {
		res = e.Flush()
	}
	e.channels = channels
	return res, nil
}

// GetSrate returns the encoder's current sample rate.
func (e *Encoder) GetSrate() uint32 { return e.srate }

// SetSrate changes the sample rate, flushing first if it's actually
// changing.
func (e *Encoder) SetSrate(srate uint32) (EncodeResult, error) {
	if err := verifySrate(e.GetProfile(), srate); err != nil {
		return EncodeResult{}, err
	}
	res := EncodeResult{}
	if e.srate != 0 && e.srate != srate {
		res = e.Flush()
	}
	e.srate = srate
	return res, nil
}

// GetFrameSize returns the encoder's current target frame size, in samples.
func (e *Encoder) GetFrameSize() uint32 { return e.fsize }

// SetFrameSize changes the target frame size.
func (e *Encoder) SetFrameSize(frameSize uint32) error {
	if err := verifyFrameSize(e.GetProfile(), frameSize); err != nil {
		return err
	}
	e.fsize = frameSize
	return nil
}

// GetBitDepth returns the encoder's current bit depth.
func (e *Encoder) GetBitDepth() uint16 { return e.bitDepth }

// SetBitDepth changes the bit depth.
func (e *Encoder) SetBitDepth(bitDepth uint16) error {
	if err := verifyBitDepth(e.GetProfile(), bitDepth); err != nil {
		return err
	}
	e.bitDepth = bitDepth
	return nil
}

// SetECC enables or disables Reed-Solomon protection and sets its
// data/parity split, coercing an invalid split to the default 96/24 and
// reporting that coercion via the returned warning string (empty if none
// was needed).
func (e *Encoder) SetECC(enabled bool, ratio [2]uint8) string {
	e.asfh.ECC = enabled
	dsizeZero := ratio[0] == 0
	exceed255 := int(ratio[0])+int(ratio[1]) > 255
	warn := ""
	if dsizeZero || exceed255 {
		if dsizeZero {
			warn += "ECC data size must not be zero"
		}
		if exceed255 {
			warn += fmt.Sprintf("ECC data size and check size must not exceed 255, given: %d and %d", ratio[0], ratio[1])
		}
		warn += "\nSetting ECC to default 96/24"
		ratio = [2]uint8{96, 24}
		if Log != nil {
			Log.Warning("frad: invalid ECC ratio, coerced to default", "warning", warn)
		}
	}
	e.asfh.ECCRatio = ratio
	return warn
}

// SetLittleEndian sets the byte order lossless profiles pack floats in.
func (e *Encoder) SetLittleEndian(littleEndian bool) { e.asfh.Endian = littleEndian }

// SetLossLevel sets the perceptual loss level for profiles 1 and 2,
// clamped to a minimum of 0.125.
func (e *Encoder) SetLossLevel(lossLevel float64) {
	if lossLevel < 0 {
		lossLevel = -lossLevel
	}
	if lossLevel < 0.125 {
		lossLevel = 0.125
	}
	e.lossLevel = lossLevel
}

// SetOverlapRatio sets the compact-profile overlap ratio, clamped to
// {0} union [2,256] (0 disables overlap).
func (e *Encoder) SetOverlapRatio(overlapRatio uint16) {
	if overlapRatio != 0 {
		if overlapRatio < 2 {
			overlapRatio = 2
		}
		if overlapRatio > 256 {
			overlapRatio = 256
		}
	}
	e.asfh.OverlapRatio = overlapRatio
}

// GetAsfh returns the encoder's current header state.
func (e *Encoder) GetAsfh() *ASFH { return e.asfh }
