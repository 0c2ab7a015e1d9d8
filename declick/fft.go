package declick

import (
	"math"
	"math/cmplx"
)

// fft transforms x in place using the iterative radix-2 Cooley-Tukey
// decimation-in-time algorithm: bit-reversal permutation followed by
// butterfly stages with a twiddle-factor recurrence e^{±2πi/len}.
//
// len(x) must be a power of two; a non-power-of-two length is an
// InvalidInput (§4.A's "fails with InvalidArgument"), not a panic, since
// every caller in this package is expected to size its frames correctly and
// a bad length here means an upstream bug, not an exceptional runtime event.
// invert selects the inverse transform, which additionally scales by 1/len(x).
func fft(x []complex128, invert bool) error {
	n := len(x)
	if n == 0 {
		return nil
	}
	if !isPowerOfTwo(n) {
		return invalidInput("fft: length %d is not a power of two", n)
	}

	bitReverse(x)

	sign := -1.0
	if invert {
		sign = 1.0
	}

	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		angle := sign * 2 * math.Pi / float64(size)
		wm := cmplx.Exp(complex(0, angle))
		for start := 0; start < n; start += size {
			w := complex(1, 0)
			for j := 0; j < half; j++ {
				u := x[start+j]
				t := w * x[start+j+half]
				x[start+j] = u + t
				x[start+j+half] = u - t
				w *= wm
			}
		}
	}

	if invert {
		scale := complex(1/float64(n), 0)
		for i := range x {
			x[i] *= scale
		}
	}

	return nil
}

// nextPowerOfTwo returns the smallest power of two >= n (at least 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func bitReverse(x []complex128) {
	n := len(x)
	bits := int(math.Log2(float64(n)))
	for i := 0; i < n; i++ {
		j := reverseBits(i, bits)
		if j > i {
			x[i], x[j] = x[j], x[i]
		}
	}
}

func reverseBits(v, bits int) int {
	r := 0
	for i := 0; i < bits; i++ {
		r = (r << 1) | (v & 1)
		v >>= 1
	}
	return r
}
