package mixer

import (
	"math"
	"testing"
)

func TestConstantPowerPanCenterEqualGain(t *testing.T) {
	l, r := constantPowerPan(0)
	if math.Abs(l-r) > 1e-9 {
		t.Fatalf("centered pan should give equal gains, got %f %f", l, r)
	}
	sumSq := l*l + r*r
	if math.Abs(sumSq-1) > 1e-9 {
		t.Fatalf("constant-power pan should preserve total power, got %f", sumSq)
	}
}

func TestConstantPowerPanHardLeft(t *testing.T) {
	l, r := constantPowerPan(-1)
	if r > 1e-9 {
		t.Fatalf("hard left pan should silence right channel, got %f", r)
	}
	if math.Abs(l-1) > 1e-9 {
		t.Fatalf("hard left pan should give full left gain, got %f", l)
	}
}

func TestMixRespectsDelayOffset(t *testing.T) {
	layers := []Layer{
		{Samples: []float64{1, 1, 1}, Volume: 1, Pan: 0, DelaySamples: 2},
	}
	left, _ := Mix(layers, nil, 44100, false)
	if left[0] != 0 || left[1] != 0 {
		t.Fatal("delayed layer should leave silence before its offset")
	}
	if left[2] == 0 {
		t.Fatal("delayed layer should start producing output at its offset")
	}
}

func TestMixSumsOverlappingLayers(t *testing.T) {
	layers := []Layer{
		{Samples: []float64{0.5, 0.5}, Volume: 1, Pan: 0},
		{Samples: []float64{0.5, 0.5}, Volume: 1, Pan: 0},
	}
	left, _ := Mix(layers, nil, 44100, false)
	// Each centered layer reaches a channel at gain cos(pi/4), so the
	// two 0.5 layers sum to 2*0.5*cos(pi/4) ~= 0.7071 per channel.
	want := 2 * 0.5 * math.Cos(math.Pi/4)
	if math.Abs(left[0]-want) > 1e-9 {
		t.Fatalf("two centered layers at 0.5 should sum to %f per channel, got %f", want, left[0])
	}
}

func TestNormalizePeakScalesToUnity(t *testing.T) {
	left := []float64{0.1, 0.5, 2.0, -1.0}
	right := []float64{0.1, 0.2, 0.3, 0.4}
	normalizePeak(left, right)
	peak := 0.0
	for _, v := range append(append([]float64{}, left...), right...) {
		if math.Abs(v) > peak {
			peak = math.Abs(v)
		}
	}
	if math.Abs(peak-1.0) > 1e-9 {
		t.Fatalf("expected normalized peak of 1.0, got %f", peak)
	}
}

func TestNormalizePeakLeavesSilenceAlone(t *testing.T) {
	left := make([]float64, 10)
	right := make([]float64, 10)
	normalizePeak(left, right)
	for _, v := range left {
		if v != 0 {
			t.Fatal("silent buffer should remain silent after normalization")
		}
	}
}

func TestLinearPanSweepEndpoints(t *testing.T) {
	curve := LinearPanSweep(-1, 1)
	if curve(0, 10) != -1 {
		t.Fatalf("sweep should start at -1, got %f", curve(0, 10))
	}
	if curve(9, 10) != 1 {
		t.Fatalf("sweep should end at 1, got %f", curve(9, 10))
	}
}
