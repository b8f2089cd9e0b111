// Package frad implements the FrAD (Fourier Analogue-in-Digital) streaming
// audio codec: the shared ASFH frame header, CRC-32/CRC-16 integrity
// checks, Hann overlap-add reconstruction, and the Encoder/Decoder/Repairer
// state machines built on top of codec/frad/profiles, codec/frad/fourier,
// codec/frad/ecc and codec/frad/golomb.
package frad

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/frad/codec/frad/ecc"
	"github.com/ausocean/frad/codec/frad/fourier"
	"github.com/ausocean/frad/codec/frad/profiles"
)

// Log receives warnings about recoverable stream anomalies: a legacy sync
// word seen in the input, an ECC ratio coerced to its default, and so on.
// A nil Log is valid; callers that don't care about codec diagnostics
// leave it unset.
var Log logging.Logger

// eccEncode wraps a Reed-Solomon codec for the ASFH ecc_ratio field: data
// bytes per block followed by parity bytes per block, per spec section 4.1.
func eccEncode(data []byte, ratio [2]uint8) []byte {
	codec, err := ecc.NewRSCodec(int(ratio[0]), int(ratio[1]), 0)
	if err != nil {
		if Log != nil {
			Log.Warning("frad: skipping ECC encode", "error", errors.Wrap(err, "building RS codec").Error())
		}
		return data
	}
	return codec.Encode(data)
}

// eccDecode inverts eccEncode, optionally attempting error correction.
func eccDecode(data []byte, ratio [2]uint8, repair bool) []byte {
	codec, err := ecc.NewRSCodec(int(ratio[0]), int(ratio[1]), 0)
	if err != nil {
		if Log != nil {
			Log.Warning("frad: skipping ECC decode", "error", errors.Wrap(err, "building RS codec").Error())
		}
		return data
	}
	return codec.Decode(data, repair)
}

// encodeFrame dispatches a PCM frame to the coding profile's analogue
// (encode) function.
func encodeFrame(profile uint8, frame []float64, bitDepth uint16, channels uint16, srate uint32, lossLevel float64, endian bool, planner fourier.Planner) (frad []byte, bitDepthIndex, outChannels uint16, outSrate uint32, err error) {
	switch profile {
	case 1:
		frad, bitDepthIndex, outChannels, outSrate = profiles.Profile1Analogue(frame, int(channels), bitDepth, srate, lossLevel, planner)
		return
	case 2:
		frad, bitDepthIndex, outChannels, outSrate = profiles.Profile2Analogue(frame, int(channels), bitDepth, srate, lossLevel, planner)
		return
	case 4:
		return profiles.Profile4Analogue(frame, int(channels), bitDepth, srate, endian)
	default:
		return profiles.Profile0Analogue(frame, int(channels), bitDepth, srate, endian, planner)
	}
}

// decodeFrame dispatches an encoded frame payload to the coding profile's
// digital (decode) function.
func decodeFrame(profile uint8, frad []byte, bitDepthIndex, channels uint16, srate, fsize uint32, endian bool, planner fourier.Planner) []float64 {
	switch profile {
	case 1:
		return profiles.Profile1Digital(frad, bitDepthIndex, int(channels), srate, int(fsize), planner)
	case 2:
		return profiles.Profile2Digital(frad, bitDepthIndex, int(channels), srate, int(fsize), planner)
	case 4:
		return profiles.Profile4Digital(frad, bitDepthIndex, endian)
	default:
		return profiles.Profile0Digital(frad, bitDepthIndex, int(channels), endian, planner)
	}
}

// findSync returns the index of the first occurrence of the frame sync
// word in buf, or -1 if it isn't present. If the authoritative sync word
// isn't found but the legacy one is, a warning is logged: per spec, the
// legacy sync is never treated as authoritative, only reported.
func findSync(buf []byte) int {
	i := bytes.Index(buf, FrmSign[:])
	if i < 0 {
		if j := bytes.Index(buf, legacyFrmSign[:]); j >= 0 && Log != nil {
			Log.Warning("frad: legacy sync word seen in input, ignoring", "offset", j)
		}
	}
	return i
}
