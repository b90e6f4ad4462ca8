package filter

import (
	"math"
	"testing"
)

func TestBiquadLowPassAttenuatesHighFreq(t *testing.T) {
	sr := 44100.0
	lp := NewBiquad(LowPass, 200, 0.707, 0, sr)
	hp := NewBiquad(HighPass, 200, 0.707, 0, sr)

	var lowEnergy, highEnergy float64
	n := 4410
	for i := 0; i < n; i++ {
		x := math.Sin(2 * math.Pi * 5000 * float64(i) / sr)
		y := lp.Process(x)
		if i > n/2 {
			lowEnergy += y * y
		}
	}
	for i := 0; i < n; i++ {
		x := math.Sin(2 * math.Pi * 5000 * float64(i) / sr)
		y := hp.Process(x)
		if i > n/2 {
			highEnergy += y * y
		}
	}
	if lowEnergy >= highEnergy {
		t.Fatalf("low-pass should suppress a 5kHz tone more than high-pass: low=%f high=%f", lowEnergy, highEnergy)
	}
}

func TestBiquadResetClearsState(t *testing.T) {
	b := NewBiquad(LowPass, 1000, 1, 0, 44100)
	b.Process(1)
	b.Process(1)
	b.Reset()
	y := b.Process(0)
	if y != 0 {
		t.Fatalf("expected 0 after reset with 0 input, got %f", y)
	}
}

func TestStateVariableModesDiffer(t *testing.T) {
	svfLP := NewStateVariable(SVFLowPass, 44100)
	svfHP := NewStateVariable(SVFHighPass, 44100)
	same := true
	for i := 0; i < 200; i++ {
		x := math.Sin(2 * math.Pi * 1000 * float64(i) / 44100)
		if svfLP.Process(x, 500, 1) != svfHP.Process(x, 500, 1) {
			same = false
		}
	}
	if same {
		t.Fatal("low-pass and high-pass SVF taps should not be identical")
	}
}

func TestCombImpulseResponse(t *testing.T) {
	c := NewComb(441, 0.7)
	out := make([]float64, 900)
	out[0] = c.Process(1.0)
	for i := 1; i < len(out); i++ {
		out[i] = c.Process(0)
	}
	if math.Abs(out[0]-1.0) > 1e-9 {
		t.Fatalf("output[0] should be ~1.0, got %f", out[0])
	}
	if out[441] <= 0.4 {
		t.Fatalf("output[441] should exceed 0.4, got %f", out[441])
	}
	if out[882] >= out[441] {
		t.Fatalf("output[882] should be smaller than output[441] (decaying echo): %f vs %f", out[882], out[441])
	}
}

func TestCombFeedbackClampedForStability(t *testing.T) {
	c := NewComb(100, 1.5)
	if c.Feedback() > 0.99 {
		t.Fatalf("feedback should be clamped to <= 0.99, got %f", c.Feedback())
	}
	out := make([]float64, 1000)
	out[0] = c.Process(1.0)
	for i := 1; i < len(out); i++ {
		out[i] = c.Process(0)
	}
	for _, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > 10 {
			t.Fatalf("comb filter diverged with clamped feedback: %f", v)
		}
	}
}

func TestFormantBankProducesOutput(t *testing.T) {
	fb := NewFormantBank("a", 44100)
	var energy float64
	for i := 0; i < 2000; i++ {
		x := math.Sin(2*math.Pi*730*float64(i)/44100) * 0.1
		y := fb.Process(x)
		energy += y * y
	}
	if energy == 0 {
		t.Fatal("formant bank produced no energy for an F1-matched tone")
	}
}

func TestFormantBankUnknownVowelFallsBack(t *testing.T) {
	known := NewFormantBank("a", 44100)
	unknown := NewFormantBank("zz", 44100)
	for i := 0; i < 100; i++ {
		x := math.Sin(2 * math.Pi * 500 * float64(i) / 44100)
		if known.Process(x) != unknown.Process(x) {
			t.Fatal("unknown vowel should fall back to the same formants as \"a\"")
		}
	}
}
