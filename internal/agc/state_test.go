// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package agc

import "testing"

func TestAGCUpdateSequence(t *testing.T) {
	s := NewState(0.1, 0.2, 0.8, 1.0, 0, 3.3)
	peaks := []float64{0.9, 0.9, 0.1, 0.1}
	want := []float64{0.9, 0.8, 0.9, 1.0}
	for i, p := range peaks {
		got := s.Update(p)
		if diff := got - want[i]; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("step %d: gain = %v, want %v", i, got, want[i])
		}
	}
}

// TestAGCAlwaysClamped checks that after any sequence of updates from any
// initial value, the gain stays within [0, GMax].
func TestAGCAlwaysClamped(t *testing.T) {
	s := NewState(0.37, 0.2, 0.8, 5.0, 0, 3.3)
	peaks := []float64{0.01, 0.99, 0.5, 0.01, 0.99, 0.01, 0.5, 0.99, 0.99, 0.01}
	for _, p := range peaks {
		g := s.Update(p)
		if g < 0 || g > s.GMax {
			t.Fatalf("gain %v out of [0,%v]", g, s.GMax)
		}
	}
}
