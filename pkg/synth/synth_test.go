package synth

import (
	"math"
	"testing"

	"github.com/speccade/speccade/pkg/osc"
	"github.com/speccade/speccade/pkg/rng"
)

func hasEnergy(t *testing.T, name string, buf []float64) {
	t.Helper()
	var energy float64
	for _, v := range buf {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s produced non-finite sample", name)
		}
		energy += v * v
	}
	if energy == 0 {
		t.Fatalf("%s produced silence", name)
	}
}

func TestOscillatorWaveformsProduceEnergy(t *testing.T) {
	r := rng.New(1)
	for _, w := range []Waveform{WaveSine, WaveSquare, WaveSawtooth, WaveTriangle} {
		o := Oscillator{Waveform: w, Frequency: 220, Duty: 0.5}
		hasEnergy(t, "oscillator", o.Render(2000, 44100, r))
	}
}

func TestOscillatorDeterministic(t *testing.T) {
	o := Oscillator{Waveform: WaveSine, Frequency: 440}
	a := o.Render(1000, 44100, rng.New(1))
	b := o.Render(1000, 44100, rng.New(1))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("oscillator not deterministic at %d", i)
		}
	}
}

func TestFMProducesEnergy(t *testing.T) {
	f := FM{CarrierFreq: 220, ModulatorFreq: 110, ModIndex: 2}
	hasEnergy(t, "fm", f.Render(2000, 44100, rng.New(1)))
}

func TestFeedbackFMClampsFeedback(t *testing.T) {
	f := FeedbackFM{Frequency: 220, Feedback: 5, ModulationIndex: 3}
	buf := f.Render(4000, 44100, rng.New(1))
	for i, v := range buf {
		if math.IsNaN(v) || math.Abs(v) > 1.0001 {
			t.Fatalf("feedback fm unstable at %d: %f", i, v)
		}
	}
}

func TestAMBounded(t *testing.T) {
	a := AM{CarrierFreq: 440, ModulatorFreq: 5, Depth: 1}
	buf := a.Render(2000, 44100, rng.New(1))
	hasEnergy(t, "am", buf)
	for _, v := range buf {
		if math.Abs(v) > 1.0001 {
			t.Fatalf("am exceeded unity: %f", v)
		}
	}
}

func TestRingModSumDifference(t *testing.T) {
	r := RingMod{CarrierFreq: 300, ModulatorFreq: 50}
	hasEnergy(t, "ringmod", r.Render(2000, 44100, rng.New(1)))
}

func TestKarplusStrongDecays(t *testing.T) {
	k := KarplusStrong{Frequency: 220, Damping: 0.3}
	buf := k.Render(8000, 44100, rng.New(3))
	earlyEnergy, lateEnergy := 0.0, 0.0
	for i, v := range buf {
		if i < 1000 {
			earlyEnergy += v * v
		} else if i > 6000 {
			lateEnergy += v * v
		}
	}
	if lateEnergy >= earlyEnergy {
		t.Fatalf("karplus-strong should decay: early=%f late=%f", earlyEnergy, lateEnergy)
	}
}

func TestBowedStringSustains(t *testing.T) {
	b := BowedString{Frequency: 220, BowPressure: 0.6}
	hasEnergy(t, "bowed string", b.Render(4000, 44100, rng.New(5)))
}

func TestAdditiveSumsPartials(t *testing.T) {
	a := Additive{Fundamental: 110, PartialAmps: []float64{1, 0.5, 0.25}}
	hasEnergy(t, "additive", a.Render(2000, 44100, rng.New(1)))
}

func TestModalRings(t *testing.T) {
	m := Modal{Modes: []ModalMode{{FreqHz: 200, Decay: 2, Amp: 1}, {FreqHz: 450, Decay: 3, Amp: 0.5}}}
	hasEnergy(t, "modal", m.Render(4000, 44100, rng.New(1)))
}

func TestMembraneUsesModalRatios(t *testing.T) {
	m := Membrane{Fundamental: 100, Decay: 2}
	hasEnergy(t, "membrane", m.Render(4000, 44100, rng.New(1)))
}

func TestWaveguideStaysBounded(t *testing.T) {
	w := Waveguide{Frequency: 220, LossPole: 0.5}
	buf := w.Render(8000, 44100, rng.New(7))
	for i, v := range buf {
		if math.IsNaN(v) || math.Abs(v) > 5 {
			t.Fatalf("waveguide diverged at %d: %f", i, v)
		}
	}
}

func TestPulsarRespectsDuty(t *testing.T) {
	p := Pulsar{Frequency: 100, FormantFreq: 1000, Duty: 0.3}
	buf := p.Render(4000, 44100, rng.New(1))
	hasEnergy(t, "pulsar", buf)
	// The period is 441 samples and the pulsaret fills the first 30% of
	// it (132.3 samples), so every sample from cycle position 133 on is
	// silent.
	for i, v := range buf {
		if i%441 >= 133 && v != 0 {
			t.Fatalf("pulsar should be silent outside its duty cycle at %d, got %f", i, v)
		}
	}
}

func TestVOSIMProducesEnergy(t *testing.T) {
	v := VOSIM{Frequency: 100, Formant1Hz: 800, Formant2Hz: 1200, Decay: 2}
	hasEnergy(t, "vosim", v.Render(4000, 44100, rng.New(1)))
}

func TestGranularProducesEnergy(t *testing.T) {
	g := Granular{GrainMs: 50, DensityPerSec: 20, JitterMs: 5, PitchScatter: 2}
	hasEnergy(t, "granular", g.Render(8000, 44100, rng.New(1)))
}

func TestWavetableMorphsBetweenTables(t *testing.T) {
	t1 := make([]float64, 64)
	t2 := make([]float64, 64)
	for i := range t1 {
		t1[i] = osc.Sine(2 * math.Pi * float64(i) / 64)
		t2[i] = osc.Sawtooth(2 * math.Pi * float64(i) / 64)
	}
	w := Wavetable{Tables: [][]float64{t1, t2}, Frequency: 220, MorphPosition: 0.5}
	hasEnergy(t, "wavetable", w.Render(2000, 44100, rng.New(1)))
}

func TestVocoderImposesEnvelope(t *testing.T) {
	mod := make([]float64, 4000)
	for i := range mod {
		mod[i] = math.Sin(2 * math.Pi * 150 * float64(i) / 44100)
	}
	v := Vocoder{Modulator: mod, CarrierFreq: 100, NumBands: 8}
	hasEnergy(t, "vocoder", v.Render(4000, 44100, rng.New(1)))
}

func TestFormantVoiceEachVowelProducesEnergy(t *testing.T) {
	for _, vowel := range []string{"a", "e", "i", "o", "u"} {
		fv := FormantVoice{Frequency: 110, Vowel: vowel}
		hasEnergy(t, "formant:"+vowel, fv.Render(4000, 44100, rng.New(1)))
	}
}

func TestVectorSynthBlendsCorners(t *testing.T) {
	mk := func(fn func(float64) float64) []float64 {
		tab := make([]float64, 64)
		for i := range tab {
			tab[i] = fn(2 * math.Pi * float64(i) / 64)
		}
		return tab
	}
	vs := VectorSynth{
		Corners: [4]VectorCorner{
			{Table: mk(osc.Sine)},
			{Table: mk(osc.Sawtooth)},
			{Table: mk(osc.Triangle)},
			{Table: mk(func(p float64) float64 { return osc.Square(p, 0.5) })},
		},
		Frequency: 220,
		X:         0.3,
		Y:         0.7,
	}
	hasEnergy(t, "vector synth", vs.Render(2000, 44100, rng.New(1)))
}

func TestPhaseDistortionZeroAmountIsSine(t *testing.T) {
	pd := PhaseDistortion{Frequency: 440, Amount: 0}
	buf := pd.Render(200, 44100, rng.New(1))
	expectedPhase := 0.0
	step := 440.0 / 44100.0
	for i, v := range buf {
		want := math.Sin(2 * math.Pi * expectedPhase)
		if math.Abs(v-want) > 1e-9 {
			t.Fatalf("zero-amount phase distortion should equal pure sine at %d: got %f want %f", i, v, want)
		}
		expectedPhase += step
		if expectedPhase >= 1 {
			expectedPhase -= 1
		}
	}
}

func TestSpectralFreezeProducesEnergy(t *testing.T) {
	src := make([]float64, 8192)
	for i := range src {
		src[i] = math.Sin(2*math.Pi*440*float64(i)/44100) + 0.3*math.Sin(2*math.Pi*880*float64(i)/44100)
	}
	sf := SpectralFreeze{Source: src, FreezeAtSample: 2048, FFTSize: 1024}
	hasEnergy(t, "spectral freeze", sf.Render(8000, 44100, rng.New(1)))
}
