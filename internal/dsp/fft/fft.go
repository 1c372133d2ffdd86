// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fft implements the forward/inverse complex FFT and the
// full/valid convolution kernels used by the matched filter and the
// beamformer. Power-of-two lengths use an iterative radix-2 transform;
// other lengths go through Bluestein's algorithm.
//
// The forward transform is unnormalized; Inverse divides by N.
package fft

import "math/cmplx"

// Forward computes the unnormalized forward DFT of x, returning a slice of
// the same length.
func Forward(x []complex128) []complex128 {
	return transform(x, false)
}

// Inverse computes the inverse DFT of X, dividing the result by len(X).
func Inverse(x []complex128) []complex128 {
	return transform(x, true)
}

// RealToComplex embeds a real sequence as the real part of a complex
// buffer, the adapter every real-input transform goes through.
func RealToComplex(x []float64) []complex128 {
	out := make([]complex128, len(x))
	for i, v := range x {
		out[i] = complex(v, 0)
	}
	return out
}

// Real returns the real part of each element of x.
func Real(x []complex128) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = real(v)
	}
	return out
}

func transform(x []complex128, inverse bool) []complex128 {
	n := len(x)
	switch {
	case n == 0:
		return nil
	case n&(n-1) == 0:
		out := append([]complex128(nil), x...)
		fftPow2(out, inverse)
		if inverse {
			scale(out, 1/float64(n))
		}
		return out
	default:
		out := bluestein(x, inverse)
		if inverse {
			scale(out, 1/float64(n))
		}
		return out
	}
}

func scale(x []complex128, s float64) {
	for i := range x {
		x[i] *= complex(s, 0)
	}
}

// fftPow2 performs an in-place iterative radix-2 Cooley-Tukey transform.
// len(a) must be a power of two. The result is unnormalized in both
// directions; callers divide by N for the inverse.
func fftPow2(a []complex128, inverse bool) {
	n := len(a)
	if n <= 1 {
		return
	}

	// Bit-reversal permutation.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}

	sign := -1.0
	if inverse {
		sign = 1.0
	}

	for length := 2; length <= n; length <<= 1 {
		angle := sign * 2 * piConst / float64(length)
		wlen := cmplx.Rect(1, angle)
		for i := 0; i < n; i += length {
			w := complex(1, 0)
			half := length / 2
			for j := 0; j < half; j++ {
				u := a[i+j]
				v := a[i+j+half] * w
				a[i+j] = u + v
				a[i+j+half] = u - v
				w *= wlen
			}
		}
	}
}

const piConst = 3.14159265358979323846

// bluestein computes the DFT of an arbitrary-length sequence via the
// chirp z-transform, reducing it to a power-of-two convolution computed
// with fftPow2.
func bluestein(x []complex128, inverse bool) []complex128 {
	n := len(x)
	sign := -1.0
	if inverse {
		sign = 1.0
	}

	// Precompute chirp: w[k] = exp(sign * i * pi * k^2 / n)
	chirp := make([]complex128, n)
	for k := 0; k < n; k++ {
		// Use k^2 mod 2n to keep the angle well-conditioned for large k.
		kk := (k * k) % (2 * n)
		angle := sign * piConst * float64(kk) / float64(n)
		chirp[k] = cmplx.Rect(1, angle)
	}

	m := 1
	for m < 2*n+1 {
		m <<= 1
	}

	a := make([]complex128, m)
	for k := 0; k < n; k++ {
		a[k] = x[k] * chirp[k]
	}

	b := make([]complex128, m)
	b[0] = cmplx.Conj(chirp[0])
	for k := 1; k < n; k++ {
		conj := cmplx.Conj(chirp[k])
		b[k] = conj
		b[m-k] = conj
	}

	fftPow2(a, false)
	fftPow2(b, false)
	for i := range a {
		a[i] *= b[i]
	}
	fftPow2(a, true)
	scale(a, 1/float64(m))

	out := make([]complex128, n)
	for k := 0; k < n; k++ {
		out[k] = a[k] * chirp[k]
	}
	return out
}
