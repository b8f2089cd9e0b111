// Package ecc implements GF(2^8) arithmetic and a systematic Reed-Solomon
// codec over that field, used by the frad codec to protect frame payloads
// against burst corruption on lossy radio links.
package ecc

import "github.com/ausocean/utils/logging"

// Log receives warnings about recovered (non-fatal) decode failures. A nil
// Log is valid; callers that don't care about ECC diagnostics leave it unset.
var Log logging.Logger

const (
	fieldSize = 256
	// prim is the primitive polynomial used to build the field, matching
	// the FrAD reference implementation (0x11d, the standard CCITT/QR
	// polynomial for GF(2^8)).
	prim = 0x11d
	// generator is the field generator used to build the RS generator
	// polynomial.
	generator = 2
)

// gfExp and gfLog are the compile-time exponent/log tables for GF(2^8).
// gfExp is duplicated to length 512 so multiplication never needs a modulo.
var (
	gfExp [512]byte
	gfLog [256]int
)

func init() {
	x := 1
	for i := 0; i < 255; i++ {
		gfExp[i] = byte(x)
		gfLog[x] = i
		x <<= 1
		if x&0x100 != 0 {
			x ^= prim
		}
	}
	for i := 255; i < 512; i++ {
		gfExp[i] = gfExp[i-255]
	}
}

// gfAdd is GF(2^8) addition (and subtraction, which is identical in
// characteristic 2).
func gfAdd(a, b byte) byte { return a ^ b }

// gfMul is GF(2^8) multiplication via the log/exp tables.
func gfMul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return gfExp[gfLog[a]+gfLog[b]]
}

// ErrDivideByZero is returned by gfDiv when the divisor is zero.
var ErrDivideByZero = errDivideByZero{}

type errDivideByZero struct{}

func (errDivideByZero) Error() string { return "ecc: division by zero in GF(2^8)" }

func gfDiv(a, b byte) (byte, error) {
	if b == 0 {
		return 0, ErrDivideByZero
	}
	if a == 0 {
		return 0, nil
	}
	diff := gfLog[a] - gfLog[b]
	if diff < 0 {
		diff += 255
	}
	return gfExp[diff], nil
}

func gfPow(a byte, n int) byte {
	if a == 0 {
		if n == 0 {
			return 1
		}
		return 0
	}
	e := (gfLog[a] * n) % 255
	if e < 0 {
		e += 255
	}
	return gfExp[e]
}

func gfInverse(a byte) (byte, error) {
	if a == 0 {
		return 0, ErrDivideByZero
	}
	return gfExp[255-gfLog[a]], nil
}

// polynomial is a big-endian (highest-degree first) polynomial over GF(2^8).
type polynomial []byte

// polyMul multiplies two polynomials.
func polyMul(a, b polynomial) polynomial {
	out := make(polynomial, len(a)+len(b)-1)
	for i, ac := range a {
		if ac == 0 {
			continue
		}
		for j, bc := range b {
			out[i+j] = gfAdd(out[i+j], gfMul(ac, bc))
		}
	}
	return out
}

// polyEval evaluates p at x using Horner's method.
func polyEval(p polynomial, x byte) byte {
	y := p[0]
	for i := 1; i < len(p); i++ {
		y = gfAdd(gfMul(y, x), p[i])
	}
	return y
}

// polyScale multiplies every coefficient of p by a scalar.
func polyScale(p polynomial, scalar byte) polynomial {
	out := make(polynomial, len(p))
	for i, c := range p {
		out[i] = gfMul(c, scalar)
	}
	return out
}

// polyAdd adds two polynomials, aligning them on their low-order end.
func polyAdd(a, b polynomial) polynomial {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make(polynomial, n)
	copy(out[n-len(a):], a)
	for i, c := range b {
		out[n-len(b)+i] = gfAdd(out[n-len(b)+i], c)
	}
	return out
}

// generatorPoly returns the RS generator polynomial for nsym parity symbols:
// g(x) = (x - g^0)(x - g^1)...(x - g^(nsym-1)).
func generatorPoly(nsym int) polynomial {
	g := polynomial{1}
	for i := 0; i < nsym; i++ {
		g = polyMul(g, polynomial{1, gfPow(generator, i)})
	}
	return g
}
