// Package synth implements the full voice library used to render audio
// layers: oscillator, FM and its feedback variant, amplitude and ring
// modulation, several physical-modeling voices, and a set of
// spectral/granular voices. Every voice is deterministic given the same
// RNG stream and parameters; none of them touch the clock or any global
// state.
package synth

import (
	"math"

	"github.com/speccade/speccade/pkg/osc"
	"github.com/speccade/speccade/pkg/rng"
)

// Voice renders a fixed-length mono buffer at a given sample rate,
// drawing any stochastic parameters it needs from r.
type Voice interface {
	Render(numSamples int, sampleRate float64, r *rng.RNG) []float64
}

// Waveform selects the basic periodic kernel an Oscillator voice uses.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSquare
	WaveSawtooth
	WaveTriangle
)

func waveformAt(w Waveform, phase, duty float64) float64 {
	switch w {
	case WaveSquare:
		return osc.Square(phase, duty)
	case WaveSawtooth:
		return osc.Sawtooth(phase)
	case WaveTriangle:
		return osc.Triangle(phase)
	default:
		return osc.Sine(phase)
	}
}

// Oscillator is the basic periodic voice, with optional detune (cents),
// duty cycle (square/pulse only), and frequency sweep.
type Oscillator struct {
	Waveform  Waveform
	Frequency float64
	DetuneCents float64
	Duty      float64
	Sweep     *osc.FrequencySweep
}

// Render synthesizes the oscillator for numSamples at sampleRate.
func (o Oscillator) Render(numSamples int, sampleRate float64, r *rng.RNG) []float64 {
	out := make([]float64, numSamples)
	pa := osc.NewPhaseAccumulator(sampleRate)
	detuneRatio := math.Pow(2, o.DetuneCents/1200)

	for i := 0; i < numSamples; i++ {
		freq := o.Frequency
		if o.Sweep != nil {
			progress := float64(i) / math.Max(float64(numSamples), 1)
			freq = o.Sweep.At(progress)
		}
		phase := pa.Advance(freq * detuneRatio)
		out[i] = waveformAt(o.Waveform, phase, o.Duty)
	}
	return out
}

// FM is classic two-operator frequency modulation: a carrier phase
// modulated by a modulator oscillator scaled by an index.
type FM struct {
	CarrierFreq   float64
	ModulatorFreq float64
	ModIndex      float64
}

// Render synthesizes the FM voice.
func (f FM) Render(numSamples int, sampleRate float64, r *rng.RNG) []float64 {
	out := make([]float64, numSamples)
	dt := 1.0 / sampleRate
	var carrierPhase, modPhase float64

	for i := 0; i < numSamples; i++ {
		modulator := math.Sin(modPhase) * f.ModIndex
		out[i] = math.Sin(carrierPhase + modulator)

		carrierPhase += osc.TwoPi * f.CarrierFreq * dt
		modPhase += osc.TwoPi * f.ModulatorFreq * dt
		carrierPhase = wrapTwoPi(carrierPhase)
		modPhase = wrapTwoPi(modPhase)
	}
	return out
}

// FeedbackFM is a single self-modulating operator: its own previous
// output feeds back into its phase, scaled by Feedback and
// ModulationIndex. Feedback is clamped to [0, 0.99] to keep the
// self-modulation from diverging into noise.
type FeedbackFM struct {
	Frequency       float64
	Feedback        float64
	ModulationIndex float64
	Sweep           *osc.FrequencySweep
}

// Render synthesizes the feedback-FM voice.
func (f FeedbackFM) Render(numSamples int, sampleRate float64, r *rng.RNG) []float64 {
	out := make([]float64, numSamples)
	dt := 1.0 / sampleRate
	feedback := f.Feedback
	if feedback < 0 {
		feedback = 0
	}
	if feedback > 0.99 {
		feedback = 0.99
	}

	var phase, prevOutput float64
	for i := 0; i < numSamples; i++ {
		freq := f.Frequency
		if f.Sweep != nil {
			progress := float64(i) / math.Max(float64(numSamples), 1)
			freq = f.Sweep.At(progress)
		}

		modulation := feedback * prevOutput * f.ModulationIndex
		current := math.Sin(phase + modulation)
		out[i] = current
		prevOutput = current

		phase += osc.TwoPi * freq * dt
		phase = wrapTwoPi(phase)
	}
	return out
}

// AM is amplitude modulation: a carrier's amplitude is modulated by a
// second oscillator, optionally with a DC offset (Depth controls how
// far the modulator swings the carrier's gain).
type AM struct {
	CarrierFreq   float64
	ModulatorFreq float64
	Depth         float64
}

// Render synthesizes the AM voice.
func (a AM) Render(numSamples int, sampleRate float64, r *rng.RNG) []float64 {
	out := make([]float64, numSamples)
	dt := 1.0 / sampleRate
	var carrierPhase, modPhase float64
	depth := clamp(a.Depth, 0, 1)

	for i := 0; i < numSamples; i++ {
		mod := 1 - depth + depth*(math.Sin(modPhase)+1)/2
		out[i] = math.Sin(carrierPhase) * mod

		carrierPhase = wrapTwoPi(carrierPhase + osc.TwoPi*a.CarrierFreq*dt)
		modPhase = wrapTwoPi(modPhase + osc.TwoPi*a.ModulatorFreq*dt)
	}
	return out
}

// RingMod multiplies two oscillators directly together (no DC offset),
// producing sum/difference sidebands only.
type RingMod struct {
	CarrierFreq   float64
	ModulatorFreq float64
}

// Render synthesizes the ring-modulation voice.
func (r RingMod) Render(numSamples int, sampleRate float64, rr *rng.RNG) []float64 {
	out := make([]float64, numSamples)
	dt := 1.0 / sampleRate
	var carrierPhase, modPhase float64

	for i := 0; i < numSamples; i++ {
		out[i] = math.Sin(carrierPhase) * math.Sin(modPhase)
		carrierPhase = wrapTwoPi(carrierPhase + osc.TwoPi*r.CarrierFreq*dt)
		modPhase = wrapTwoPi(modPhase + osc.TwoPi*r.ModulatorFreq*dt)
	}
	return out
}

func wrapTwoPi(phase float64) float64 {
	for phase >= osc.TwoPi {
		phase -= osc.TwoPi
	}
	for phase < 0 {
		phase += osc.TwoPi
	}
	return phase
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
