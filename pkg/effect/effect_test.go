package effect

import (
	"math"
	"testing"
)

func impulse(n int) []float64 {
	buf := make([]float64, n)
	buf[0] = 1.0
	return buf
}

func TestDelayProducesEcho(t *testing.T) {
	buf := impulse(8000)
	d := Delay{TimeSeconds: 0.05, Feedback: 0.5, Mix: 0.5}
	d.Process(buf, 44100)
	echoIdx := int(0.05 * 44100)
	if buf[echoIdx] == 0 {
		t.Fatalf("expected nonzero echo at sample %d", echoIdx)
	}
}

func TestReverbDeterministic(t *testing.T) {
	a := impulse(4410)
	b := impulse(4410)
	r := Reverb{RoomSize: 0.6, Damping: 0.3}
	r.Process(a, 44100)
	r.Process(b, 44100)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("reverb not deterministic at sample %d", i)
		}
	}
}

func TestReverbStaysBounded(t *testing.T) {
	buf := impulse(8820)
	r := Reverb{RoomSize: 1.0, Damping: 0.0}
	r.Process(buf, 44100)
	for i, v := range buf {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > 20 {
			t.Fatalf("reverb diverged at sample %d: %f", i, v)
		}
	}
}

func TestDistortionClipsTowardUnity(t *testing.T) {
	buf := []float64{0.1, 0.5, 1.0, -1.0}
	d := Distortion{Drive: 8}
	d.Process(buf, 44100)
	for _, v := range buf {
		if math.Abs(v) > 1.0001 {
			t.Fatalf("distorted sample exceeded unity: %f", v)
		}
	}
}

func TestChorusMixZeroIsTransparent(t *testing.T) {
	buf := make([]float64, 1000)
	for i := range buf {
		buf[i] = math.Sin(float64(i) * 0.1)
	}
	orig := append([]float64(nil), buf...)
	c := Chorus{RateHz: 0.5, DepthMs: 5, Mix: 0}
	c.Process(buf, 44100)
	for i := range buf {
		if math.Abs(buf[i]-orig[i]) > 1e-9 {
			t.Fatalf("zero-mix chorus should be transparent at %d", i)
		}
	}
}

func TestFlangerStaysBounded(t *testing.T) {
	buf := make([]float64, 4410)
	for i := range buf {
		buf[i] = math.Sin(float64(i) * 0.05)
	}
	f := Flanger{RateHz: 0.3, DepthMs: 3, Feedback: 0.7, Mix: 0.5}
	f.Process(buf, 44100)
	for i, v := range buf {
		if math.IsNaN(v) || math.Abs(v) > 10 {
			t.Fatalf("flanger diverged at %d: %f", i, v)
		}
	}
}

func TestPhaserStaysBounded(t *testing.T) {
	buf := make([]float64, 4410)
	for i := range buf {
		buf[i] = math.Sin(float64(i) * 0.05)
	}
	p := Phaser{RateHz: 0.5, Stages: 4, Mix: 0.5}
	p.Process(buf, 44100)
	for i, v := range buf {
		if math.IsNaN(v) || math.Abs(v) > 10 {
			t.Fatalf("phaser diverged at %d: %f", i, v)
		}
	}
}

func TestCompressorReducesGainAboveThreshold(t *testing.T) {
	buf := make([]float64, 8820)
	for i := range buf {
		buf[i] = 0.9 * math.Sin(2*math.Pi*440*float64(i)/44100)
	}
	c := Compressor{ThresholdDB: -12, Ratio: 4, AttackMs: 1, ReleaseMs: 50}
	c.Process(buf, 44100)
	var peak float64
	for _, v := range buf[4000:] {
		if math.Abs(v) > peak {
			peak = math.Abs(v)
		}
	}
	if peak >= 0.9 {
		t.Fatalf("compressor should reduce peak level below original 0.9, got %f", peak)
	}
}

func TestChainAppliesInDeclarationOrder(t *testing.T) {
	buf := impulse(4410)
	chain := Chain{Effects: []Effect{
		Distortion{Drive: 2},
		Delay{TimeSeconds: 0.01, Feedback: 0.3, Mix: 0.5},
	}}
	chain.Process(buf, 44100)
	for _, v := range buf {
		if math.IsNaN(v) {
			t.Fatal("chain produced NaN")
		}
	}
}
