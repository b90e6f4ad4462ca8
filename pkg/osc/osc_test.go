package osc

import (
	"math"
	"testing"
)

func TestPhaseAccumulatorWraps(t *testing.T) {
	p := NewPhaseAccumulator(44100)
	var last float64
	for i := 0; i < 100000; i++ {
		ph := p.Advance(440)
		if ph < 0 || ph >= TwoPi {
			t.Fatalf("phase %f out of [0,2pi) at step %d", ph, i)
		}
		last = ph
	}
	_ = last
}

func TestWaveformKernels(t *testing.T) {
	if math.Abs(Sine(math.Pi/2)-1) > 1e-9 {
		t.Fatal("sine(pi/2) should be 1")
	}
	if Square(0, 0.5) != 1 {
		t.Fatal("square(0) should be +1")
	}
	if Square(3*math.Pi/2, 0.5) != -1 {
		t.Fatal("square past duty should be -1")
	}
	if math.Abs(Sawtooth(0)-(-1)) > 1e-9 {
		t.Fatal("sawtooth(0) should be -1")
	}
	if math.Abs(Triangle(0)-(-1)) > 1e-9 {
		t.Fatal("triangle(0) should be -1")
	}
}

func TestFrequencySweepExponentialFallback(t *testing.T) {
	s := NewFrequencySweep(-1, 100, SweepExponential)
	if !s.Fallback || s.Curve != SweepLinear {
		t.Fatal("non-positive endpoint should fall back to linear")
	}
}

func TestFrequencySweepEndpoints(t *testing.T) {
	s := NewFrequencySweep(100, 200, SweepLinear)
	if s.At(0) != 100 || s.At(1) != 200 {
		t.Fatalf("sweep endpoints wrong: %f %f", s.At(0), s.At(1))
	}
	se := NewFrequencySweep(100, 400, SweepExponential)
	if math.Abs(se.At(0)-100) > 1e-9 || math.Abs(se.At(1)-400) > 1e-6 {
		t.Fatalf("exponential sweep endpoints wrong: %f %f", se.At(0), se.At(1))
	}
}

func TestADSRShapesEnvelope(t *testing.T) {
	buf := make([]float64, 4410)
	for i := range buf {
		buf[i] = 1.0
	}
	e := ADSR{Attack: 0.01, Decay: 0.01, Sustain: 0.5, Release: 0.02}
	e.Apply(buf, 44100)
	if buf[0] != 0 {
		t.Fatalf("attack should start at 0, got %f", buf[0])
	}
	if buf[len(buf)-1] > 0.01 {
		t.Fatalf("release tail should approach 0, got %f", buf[len(buf)-1])
	}
}
