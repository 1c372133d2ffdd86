// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fft

import (
	"math"
	"testing"

	"github.com/subocean/usbl/internal/frame"
)

func TestRoundTripPowerOfTwo(t *testing.T) {
	n := 256
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(float64(i) * 0.1)
	}
	roundTrip(t, x)
}

func TestRoundTripArbitraryLength(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 7, 17, 100, 257, 4095} {
		x := make([]float64, n)
		for i := range x {
			x[i] = math.Cos(float64(i)*0.07) + 0.5*float64(i%3)
		}
		roundTrip(t, x)
	}
}

func roundTrip(t *testing.T, x []float64) {
	t.Helper()
	if len(x) == 0 {
		return
	}
	X := Forward(RealToComplex(x))
	back := Real(Inverse(X))
	for i := range x {
		if math.Abs(back[i]-x[i]) > 1e-9 {
			t.Fatalf("len=%d index %d: got %v, want %v", len(x), i, back[i], x[i])
		}
	}
}

func TestConvFullUnitImpulse(t *testing.T) {
	a := frame.New(1, 5)
	a.Data[0] = []float64{1, 2, 3, 4, 5}
	delta := frame.New(1, 1)
	delta.Data[0] = []float64{1}

	out, err := ConvFull(a, delta)
	if err != nil {
		t.Fatal(err)
	}
	if out.Length != 5 {
		t.Fatalf("len = %d, want 5", out.Length)
	}
	for i, want := range a.Data[0] {
		if math.Abs(out.Data[0][i]-want) > 1e-9 {
			t.Fatalf("index %d: got %v, want %v", i, out.Data[0][i], want)
		}
	}
}

func TestConvValidLength(t *testing.T) {
	a := frame.New(2, 10)
	b := frame.New(1, 4)
	out, err := ConvValid(a, b)
	if err != nil {
		t.Fatal(err)
	}
	want := a.Length - b.Length + 1
	if out.Length != want {
		t.Fatalf("len = %d, want %d", out.Length, want)
	}
}

func TestConvValidRejectsShortSignal(t *testing.T) {
	a := frame.New(1, 2)
	b := frame.New(1, 4)
	if _, err := ConvValid(a, b); err == nil {
		t.Fatal("expected error when signal shorter than kernel")
	}
}

func TestConvValidRejectsEmptyKernel(t *testing.T) {
	a := frame.New(1, 4)
	b := frame.New(1, 0)
	if _, err := ConvValid(a, b); err == nil {
		t.Fatal("expected error for empty kernel")
	}
}
