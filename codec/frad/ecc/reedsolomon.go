package ecc

import "errors"

// Error kinds from spec section 4.1. NewRSCodec returns ErrMessageTooLong.
// Decode never returns an error: when a block cannot be repaired it logs
// the reason and emits a zero data block of the correct length instead.
var (
	ErrMessageTooLong         = errors.New("ecc: message exceeds 255 bytes for a GF(2^8) RS block")
	ErrTooManyErasures        = errors.New("ecc: too many erasures to correct")
	ErrTooManyErrors          = errors.New("ecc: too many errors to correct")
	ErrErrorLocationFailure   = errors.New("ecc: error locator roots do not match the declared error count")
	ErrErrorCorrectionFailure = errors.New("ecc: corrected message still fails the syndrome check")
)

// RSCodec is a systematic Reed-Solomon codec over GF(2^8), generator 2,
// primitive polynomial 0x11d, c_exp 8. A codec instance owns the generator
// polynomial for its configured parity size; the field tables themselves
// are package-level compile-time constants (see gf.go) and are never
// recomputed per instance.
type RSCodec struct {
	DataSize   int
	ParitySize int
	FCR        int

	gen polynomial
}

// NewRSCodec returns a codec for the given systematic block shape. DataSize
// must be positive and DataSize+ParitySize must not exceed 255, the largest
// block GF(2^8) symbols can index.
func NewRSCodec(dataSize, paritySize, fcr int) (*RSCodec, error) {
	if dataSize <= 0 {
		return nil, errors.New("ecc: data size must be positive")
	}
	if paritySize < 0 {
		return nil, errors.New("ecc: parity size must not be negative")
	}
	if dataSize+paritySize > fieldSize-1 {
		return nil, ErrMessageTooLong
	}
	return &RSCodec{
		DataSize:   dataSize,
		ParitySize: paritySize,
		FCR:        fcr,
		gen:        generatorPoly(paritySize),
	}, nil
}

// Encode chunks data into DataSize-byte pieces (the final piece may be
// shorter) and appends ParitySize systematic parity bytes to each, per
// spec section 4.1. A zero ParitySize makes Encode the identity.
func (r *RSCodec) Encode(data []byte) []byte {
	if r.ParitySize == 0 {
		out := make([]byte, len(data))
		copy(out, data)
		return out
	}
	out := make([]byte, 0, len(data)+(len(data)/r.DataSize+1)*r.ParitySize)
	for i := 0; i < len(data); i += r.DataSize {
		end := i + r.DataSize
		if end > len(data) {
			end = len(data)
		}
		out = append(out, encodeBlock(data[i:end], r.gen, r.ParitySize)...)
	}
	return out
}

// encodeBlock computes the systematic RS parity for a single chunk via
// polynomial long division by gen, the standard CRC-style technique: the
// chunk is placed at the top of a work buffer padded with ParitySize zero
// bytes, and each non-zero leading coefficient is cancelled by subtracting
// (XORing) a scaled copy of gen, leaving the remainder in the low bytes.
func encodeBlock(chunk []byte, gen polynomial, nsym int) []byte {
	work := make([]byte, len(chunk)+nsym)
	copy(work, chunk)
	for i := 0; i < len(chunk); i++ {
		coef := work[i]
		if coef == 0 {
			continue
		}
		for j, gc := range gen {
			work[i+j] = gfAdd(work[i+j], gfMul(gc, coef))
		}
	}
	out := make([]byte, len(chunk)+nsym)
	copy(out, chunk)
	copy(out[len(chunk):], work[len(chunk):])
	return out
}

// Decode strips or repairs parity from a byte stream chunked into
// DataSize+ParitySize blocks (the final block may be short). If repair is
// false, parity is simply stripped (no error correction is attempted). If
// repair is true, each block is checked via its syndromes and, if
// non-zero, corrected via Berlekamp-Massey/Chien/Forney; a block that
// cannot be corrected is replaced with a zero-filled data block of the
// correct length rather than returning an error to the caller, matching
// spec section 4.1 ("On any failure, return a zero-filled data block").
func (r *RSCodec) Decode(data []byte, repair bool) []byte {
	if r.ParitySize == 0 {
		out := make([]byte, len(data))
		copy(out, data)
		return out
	}
	blockSize := r.DataSize + r.ParitySize
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i += blockSize {
		end := i + blockSize
		if end > len(data) {
			end = len(data)
		}
		block := data[i:end]
		if len(block) <= r.ParitySize {
			// Truncated trailing block: nothing to recover from, no data
			// bytes to emit.
			continue
		}
		dataLen := len(block) - r.ParitySize
		if !repair {
			out = append(out, block[:dataLen]...)
			continue
		}
		decoded, err := decodeBlock(block, r.ParitySize, r.FCR)
		if err != nil {
			if Log != nil {
				Log.Warning("ecc: RS block recovery failed, emitting zero data", "error", err.Error(), "blockOffset", i)
			}
			decoded = make([]byte, dataLen)
		}
		out = append(out, decoded...)
	}
	return out
}

// decodeBlock attempts full error correction of one block via syndromes,
// Berlekamp-Massey, Chien search, and Forney's algorithm.
func decodeBlock(block []byte, nsym, fcr int) ([]byte, error) {
	n := len(block)
	synd := make([]byte, nsym)
	allZero := true
	for i := range synd {
		synd[i] = polyEval(block, gfPow(generator, fcr+i))
		if synd[i] != 0 {
			allZero = false
		}
	}
	if allZero {
		return append([]byte(nil), block[:n-nsym]...), nil
	}

	errLoc, err := berlekampMassey(synd, nsym)
	if err != nil {
		return nil, err
	}
	errs := len(errLoc) - 1
	if errs == 0 {
		return nil, ErrErrorCorrectionFailure
	}

	// Low-degree-first view of the error locator, needed for the Chien
	// search below and for the Forney error-evaluator polynomial and its
	// formal derivative.
	errLocLow := make([]byte, len(errLoc))
	for i, c := range errLoc {
		errLocLow[len(errLoc)-1-i] = c
	}

	// Chien search: the reversed locator has the error locators X_k =
	// alpha^i themselves as roots, so evaluating it at every field element
	// alpha^i finds an error at position n-1-i from the start of the block.
	var errPos []int
	for i := 0; i < n; i++ {
		if polyEval(errLocLow, gfPow(generator, i)) == 0 {
			errPos = append(errPos, n-1-i)
		}
	}
	if len(errPos) != errs {
		return nil, ErrErrorLocationFailure
	}

	// Omega(x) = S(x)*Lambda(x) mod x^nsym, kept low-degree-first.
	prodLen := len(synd) + len(errLocLow) - 1
	omega := make([]byte, prodLen)
	for a, sc := range synd {
		if sc == 0 {
			continue
		}
		for b, lc := range errLocLow {
			omega[a+b] = gfAdd(omega[a+b], gfMul(sc, lc))
		}
	}
	if len(omega) > nsym {
		omega = omega[:nsym]
	}

	corrected := append([]byte(nil), block...)
	for _, p := range errPos {
		i := n - 1 - p
		xi := gfPow(generator, i)
		xiInv, err := gfInverse(xi)
		if err != nil {
			return nil, err
		}

		var omegaVal byte
		for k := len(omega) - 1; k >= 0; k-- {
			omegaVal = gfAdd(gfMul(omegaVal, xiInv), omega[k])
		}

		// Formal derivative of the error locator. In characteristic 2,
		// only odd-degree terms survive differentiation.
		var derivVal byte
		for j := len(errLocLow) - 1; j >= 1; j-- {
			if j%2 == 1 {
				derivVal = gfAdd(derivVal, gfMul(errLocLow[j], gfPow(xiInv, j-1)))
			}
		}
		if derivVal == 0 {
			return nil, ErrErrorCorrectionFailure
		}

		numerator := gfMul(gfPow(xi, 1-fcr), omegaVal)
		mag, err := gfDiv(numerator, derivVal)
		if err != nil {
			return nil, err
		}
		corrected[p] = gfAdd(corrected[p], mag)
	}

	for i := 0; i < nsym; i++ {
		if polyEval(corrected, gfPow(generator, fcr+i)) != 0 {
			return nil, ErrErrorCorrectionFailure
		}
	}
	return corrected[:n-nsym], nil
}

// berlekampMassey finds the error locator polynomial (big-endian, constant
// term last) from the syndromes, without erasure support (the byte-stream
// codec never has erasure positions to feed in -- only raw corrupted
// bytes).
func berlekampMassey(synd []byte, nsym int) (polynomial, error) {
	errLoc := polynomial{1}
	oldLoc := polynomial{1}
	for i := 0; i < nsym; i++ {
		delta := synd[i]
		for j := 1; j < len(errLoc); j++ {
			if i-j < 0 {
				break
			}
			delta = gfAdd(delta, gfMul(errLoc[len(errLoc)-1-j], synd[i-j]))
		}
		oldLoc = append(oldLoc, 0)
		if delta != 0 {
			if len(oldLoc) > len(errLoc) {
				newLoc := polyScale(oldLoc, delta)
				inv, err := gfInverse(delta)
				if err != nil {
					return nil, err
				}
				oldLoc = polyScale(errLoc, inv)
				errLoc = newLoc
			}
			errLoc = polyAdd(errLoc, polyScale(oldLoc, delta))
		}
	}
	start := 0
	for start < len(errLoc)-1 && errLoc[start] == 0 {
		start++
	}
	errLoc = errLoc[start:]
	if (len(errLoc)-1)*2 > nsym {
		return nil, ErrTooManyErrors
	}
	return errLoc, nil
}
