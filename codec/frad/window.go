package frad

import "math"

// linspace returns num linearly spaced values from start to stop
// inclusive. It returns nil for num == 0 and a single midpoint for num == 1.
func linspace(start, stop float64, num int) []float64 {
	if num == 0 {
		return nil
	}
	if num == 1 {
		return []float64{(start + stop) / 2}
	}
	step := (stop - start) / float64(num-1)
	out := make([]float64, num)
	for i := range out {
		if i == num-1 {
			out[i] = stop
		} else {
			out[i] = start + step*float64(i)
		}
	}
	return out
}

// hanningInOverlap builds the fade-in half of a Hann window, optimized for
// overlap-add: its length always equals olapLen regardless of parity,
// rising monotonically from near 0 to 1. The companion fade-out curve for
// the tail of the previous frame is this slice read back to front.
func hanningInOverlap(olapLen int) []float64 {
	if olapLen == 0 {
		return nil
	}
	half := (olapLen + 1) >> 1
	tailLen := olapLen - half

	tail := make([]float64, tailLen)
	for i := 0; i < tailLen; i++ {
		pos := half + 1 + i
		tail[i] = 0.5 * (1 - math.Cos(math.Pi*float64(pos)/(float64(olapLen)+1)))
	}

	out := make([]float64, 0, olapLen)
	for i := tailLen - 1; i >= 0; i-- {
		out = append(out, 1-tail[i])
	}
	if olapLen&1 == 1 {
		out = append(out, 0.5)
	}
	out = append(out, tail...)
	return out
}
