package frad

import "github.com/ausocean/frad/codec/frad/fourier"

// DecodeResult is the output of a single Decoder.Process or Decoder.Flush
// call.
type DecodeResult struct {
	Pcm      []float64
	Channels uint16
	Srate    uint32
	Frames   int
	Crit     bool
}

// IsEmpty reports whether r carries no usable output.
func (r DecodeResult) IsEmpty() bool { return len(r.Pcm) == 0 || r.Channels == 0 || r.Srate == 0 }

// Samples returns the number of per-channel samples carried in r.Pcm.
func (r DecodeResult) Samples() int {
	channels := int(r.Channels)
	if channels == 0 {
		channels = 1
	}
	return len(r.Pcm) / channels
}

// Decoder turns a stream of FrAD frame bytes back into interleaved float64
// PCM, per spec sections 3 and 5.
type Decoder struct {
	asfh *ASFH
	info *ASFH

	buffer          []byte
	overlapFragment []float64
	overlapProg     int

	fixError    bool
	brokenFrame bool

	planner fourier.Planner
}

// NewDecoder returns a Decoder. When fixError is set, a CRC mismatch on an
// ECC-protected frame triggers Reed-Solomon repair rather than a plain
// parity strip.
func NewDecoder(fixError bool) *Decoder {
	return &Decoder{
		asfh:    NewASFH(),
		info:    NewASFH(),
		planner: fourier.NewPlanner(),

		fixError: fixError,
	}
}

// overlap applies forward Hann-windowed overlap-add to a freshly decoded frame
// using the carried-over fragment from the previous frame, per spec
// section 4.6.
func (d *Decoder) overlap(frame []float64) []float64 {
	channels := int(d.asfh.Channels)
	if channels == 0 {
		channels = 1
	}
	overlapLen := len(d.overlapFragment) / channels

	if len(d.overlapFragment) > 0 {
		fadeIn := hanningInOverlap(overlapLen)
		frameSamples := len(frame) / channels
		ovLeft := overlapLen - d.overlapProg
		if frameSamples < ovLeft {
			ovLeft = frameSamples
		}
		for i := 0; i < ovLeft; i++ {
			iOv := i + d.overlapProg
			for j := 0; j < channels; j++ {
				frame[i*channels+j] *= fadeIn[iOv]
				frame[i*channels+j] += d.overlapFragment[iOv*channels+j] * fadeIn[len(fadeIn)-iOv-1]
			}
		}
		d.overlapProg += ovLeft
	}

	if overlapLen <= d.overlapProg {
		d.overlapProg = 0
		d.overlapFragment = nil
		if IsCompact(d.asfh.Profile) && d.asfh.OverlapRatio != 0 {
			overlapRatio := int(d.asfh.OverlapRatio)
			frameCutout := (len(frame) / channels) * (overlapRatio - 1) / overlapRatio
			cut := frameCutout * channels
			d.overlapFragment = append([]float64(nil), frame[cut:]...)
			frame = frame[:cut]
		}
	}
	return frame
}

// IsEmpty reports whether the decoder's internal buffer is too short to
// possibly contain a sync word, or the stream ended mid-frame.
func (d *Decoder) IsEmpty() bool {
	return len(d.buffer) < len(FrmSign) || d.brokenFrame
}

// GetAsfh returns the decoder's current header state.
func (d *Decoder) GetAsfh() *ASFH { return d.asfh }

// Process decodes as many complete frames as stream, appended to any
// buffered remainder, currently supports. It returns early with Crit set
// if the stream's sample rate or channel count changes mid-stream.
func (d *Decoder) Process(stream []byte) DecodeResult {
	d.buffer = append(d.buffer, stream...)
	var retPCM []float64
	frames := 0

	for {
		if d.asfh.AllSet {
			d.brokenFrame = false
			if uint64(len(d.buffer)) < d.asfh.Frmbytes {
				if len(stream) == 0 {
					d.brokenFrame = true
				}
				break
			}

			take := int(d.asfh.Frmbytes)
			frad := append([]byte(nil), d.buffer[:take]...)
			d.buffer = d.buffer[take:]

			if d.asfh.ECC {
				repair := d.fixError && (
					(IsLossless(d.asfh.Profile) && CRC32(frad) != d.asfh.CRC32) ||
						(IsCompact(d.asfh.Profile) && CRC16ANSI(frad) != d.asfh.CRC16))
				frad = eccDecode(frad, d.asfh.ECCRatio, repair)
			}

			pcm := decodeFrame(d.asfh.Profile, frad, d.asfh.BitDepthIndex, d.asfh.Channels, d.asfh.Srate, d.asfh.Fsize, d.asfh.Endian, d.planner)
			pcm = d.overlap(pcm)

			retPCM = append(retPCM, pcm...)
			frames++
			d.asfh.Clear()
		} else {
			if !d.asfh.StartsWithSync() {
				i := findSync(d.buffer)
				if i >= 0 {
					d.buffer = d.buffer[i:]
					sync := append([]byte(nil), d.buffer[:len(FrmSign)]...)
					d.buffer = d.buffer[len(FrmSign):]
					d.asfh.SetSyncBuffer(sync)
				} else {
					keep := len(d.buffer) - (len(FrmSign) - 1)
					if keep < 0 {
						keep = 0
					}
					d.buffer = d.buffer[keep:]
					break
				}
			}

			result := d.asfh.Read(&d.buffer)
			switch result {
			case Complete:
				if !d.asfh.Criteq(d.info) {
					srate, chnl := d.info.Srate, d.info.Channels
					*d.info = *d.asfh
					if srate != 0 || chnl != 0 {
						retPCM = append(retPCM, d.Flush().Pcm...)
						return DecodeResult{retPCM, chnl, srate, frames, true}
					}
				}
			case ForceFlush:
				retPCM = append(retPCM, d.Flush().Pcm...)
				return DecodeResult{retPCM, d.asfh.Channels, d.asfh.Srate, frames, false}
			case Incomplete:
				return DecodeResult{retPCM, d.asfh.Channels, d.asfh.Srate, frames, false}
			}
		}
	}

	return DecodeResult{retPCM, d.asfh.Channels, d.asfh.Srate, frames, false}
}

// Flush drains the carried-over overlap buffer and clears parse state.
func (d *Decoder) Flush() DecodeResult {
	ret := d.overlapFragment
	d.overlapFragment = nil
	d.overlapProg = 0
	channels, srate := d.asfh.Channels, d.asfh.Srate
	d.asfh.Clear()
	return DecodeResult{ret, channels, srate, 0, true}
}
