package frad

// Repairer re-encodes a FrAD stream's Reed-Solomon protection at a new
// data/parity ratio, repairing any CRC-mismatched frame it finds along the
// way, per spec section 4.1's repair workflow. Unrecognized bytes between
// frames (e.g. container padding) pass through unmodified.
type Repairer struct {
	asfh *ASFH
	buffer []byte

	eccRatio    [2]uint8
	brokenFrame bool
}

// NewRepairer returns a Repairer that will re-protect every frame it
// passes with the given ECC ratio, coercing an invalid split to the
// default 96/24.
func NewRepairer(ratio [2]uint8) *Repairer {
	if ratio[0] == 0 {
		ratio = [2]uint8{96, 24}
	}
	if int(ratio[0])+int(ratio[1]) > 255 {
		ratio = [2]uint8{96, 24}
	}
	return &Repairer{
		asfh:     NewASFH(),
		eccRatio: ratio,
	}
}

// IsEmpty reports whether the repairer's internal buffer is too short to
// possibly contain a sync word, or the stream ended mid-frame.
func (r *Repairer) IsEmpty() bool {
	return len(r.buffer) < len(FrmSign) || r.brokenFrame
}

// GetAsfh returns the repairer's current header state.
func (r *Repairer) GetAsfh() *ASFH { return r.asfh }

// Process repairs as many complete frames as stream, appended to any
// buffered remainder, currently supports, returning the re-protected
// stream bytes.
func (r *Repairer) Process(stream []byte) []byte {
	r.buffer = append(r.buffer, stream...)
	var ret []byte

	for {
		if r.asfh.AllSet {
			if len(stream) == 0 {
				r.brokenFrame = true
				break
			}
			r.brokenFrame = false
			if uint64(len(r.buffer)) < r.asfh.Frmbytes {
				break
			}

			take := int(r.asfh.Frmbytes)
			frad := append([]byte(nil), r.buffer[:take]...)
			r.buffer = r.buffer[take:]

			if r.asfh.ECC {
				repair := (IsLossless(r.asfh.Profile) && CRC32(frad) != r.asfh.CRC32) ||
					(IsCompact(r.asfh.Profile) && CRC16ANSI(frad) != r.asfh.CRC16)
				frad = eccDecode(frad, r.asfh.ECCRatio, repair)
			}

			frad = eccEncode(frad, r.eccRatio)
			r.asfh.ECC, r.asfh.ECCRatio = true, r.eccRatio

			ret = append(ret, r.asfh.Write(frad)...)
			r.asfh.Clear()
		} else {
			if !r.asfh.StartsWithSync() {
				i := findSync(r.buffer)
				if i >= 0 {
					ret = append(ret, r.buffer[:i]...)
					r.buffer = r.buffer[i:]
					sync := append([]byte(nil), r.buffer[:len(FrmSign)]...)
					r.buffer = r.buffer[len(FrmSign):]
					r.asfh.SetSyncBuffer(sync)
				} else {
					keep := len(r.buffer) - (len(FrmSign) - 1)
					if keep < 0 {
						keep = 0
					}
					ret = append(ret, r.buffer[:keep]...)
					r.buffer = r.buffer[keep:]
					break
				}
			}

			result := r.asfh.Read(&r.buffer)
			switch result {
			case Complete:
			case ForceFlush:
				ret = append(ret, r.asfh.ForceFlush()...)
				return ret
			case Incomplete:
				return ret
			}
		}
	}

	return ret
}

// Flush returns and clears any remaining unprocessed buffer.
func (r *Repairer) Flush() []byte {
	ret := r.buffer
	r.buffer = nil
	return ret
}
