package synth

import (
	"math"

	"github.com/speccade/speccade/pkg/rng"
)

// KarplusStrong is the classic plucked-string algorithm: a noise burst
// circulates through a delay line with a lowpass-averaging feedback
// filter, decaying over time.
type KarplusStrong struct {
	Frequency float64
	Damping   float64 // 0..1, higher decays faster
}

// Render synthesizes the plucked-string voice.
func (k KarplusStrong) Render(numSamples int, sampleRate float64, r *rng.RNG) []float64 {
	delayLen := int(sampleRate / math.Max(k.Frequency, 1))
	if delayLen < 2 {
		delayLen = 2
	}
	line := make([]float64, delayLen)
	for i := range line {
		line[i] = r.Float64()*2 - 1
	}

	damping := clamp(k.Damping, 0, 1)
	blend := 0.5 - damping*0.5

	out := make([]float64, numSamples)
	pos := 0
	for i := 0; i < numSamples; i++ {
		next := (pos + 1) % delayLen
		avg := line[pos]*blend + line[next]*(1-blend)
		out[i] = line[pos]
		line[pos] = avg
		pos = next
	}
	return out
}

// BowedString models sustained excitation (as opposed to Karplus-Strong's
// single pluck) using a delay line driven continuously by a
// sawtooth-shaped bow-friction signal, producing a steadier tone.
type BowedString struct {
	Frequency  float64
	BowPressure float64 // 0..1
}

// Render synthesizes the bowed-string voice.
func (b BowedString) Render(numSamples int, sampleRate float64, r *rng.RNG) []float64 {
	delayLen := int(sampleRate / math.Max(b.Frequency, 1))
	if delayLen < 2 {
		delayLen = 2
	}
	line := make([]float64, delayLen)
	pressure := clamp(b.BowPressure, 0, 1)

	out := make([]float64, numSamples)
	pos := 0
	var lastOut float64
	for i := 0; i < numSamples; i++ {
		next := (pos + 1) % delayLen
		friction := stickSlip(lastOut, pressure, r)
		body := line[pos]*0.498 + line[next]*0.498
		driven := body + friction*0.05
		out[i] = driven
		line[pos] = driven
		lastOut = driven
		pos = next
	}
	return out
}

func stickSlip(velocity, pressure float64, r *rng.RNG) float64 {
	threshold := 1 - pressure
	if math.Abs(velocity) < threshold {
		return 1 - math.Abs(velocity)/math.Max(threshold, 1e-9)
	}
	return -(r.Float64()*2 - 1) * 0.3
}

// Additive sums a fixed set of harmonic partials with independent
// amplitudes, the most direct implementation of Fourier synthesis.
type Additive struct {
	Fundamental float64
	PartialAmps []float64 // index 0 = fundamental, index n = (n+1)th harmonic
}

// Render synthesizes the additive voice.
func (a Additive) Render(numSamples int, sampleRate float64, r *rng.RNG) []float64 {
	out := make([]float64, numSamples)
	dt := 1.0 / sampleRate
	phases := make([]float64, len(a.PartialAmps))

	for i := 0; i < numSamples; i++ {
		var sum float64
		for p, amp := range a.PartialAmps {
			sum += math.Sin(phases[p]) * amp
			phases[p] = wrapTwoPi(phases[p] + 2*math.Pi*a.Fundamental*float64(p+1)*dt)
		}
		out[i] = sum
	}
	return out
}

// ModalMode is one resonant mode of a Modal voice: a frequency, decay
// rate, and relative amplitude.
type ModalMode struct {
	FreqHz  float64
	Decay   float64 // per-second amplitude decay constant
	Amp     float64
}

// Modal excites a bank of independent damped resonators simultaneously,
// modeling the way a struck object rings at several characteristic
// frequencies at once.
type Modal struct {
	Modes []ModalMode
}

// Render synthesizes the modal voice.
func (m Modal) Render(numSamples int, sampleRate float64, r *rng.RNG) []float64 {
	out := make([]float64, numSamples)
	for _, mode := range m.Modes {
		phase := 0.0
		step := 2 * math.Pi * mode.FreqHz / sampleRate
		for i := 0; i < numSamples; i++ {
			t := float64(i) / sampleRate
			env := math.Exp(-mode.Decay * t)
			out[i] += math.Sin(phase) * mode.Amp * env
			phase = wrapTwoPi(phase + step)
		}
	}
	return out
}

// Membrane approximates a 2D circular membrane (a drum head) as a small
// set of modal partials at the classic Bessel-function-derived ratios
// of the fundamental, each decaying independently.
type Membrane struct {
	Fundamental float64
	Decay       float64
}

var membraneModeRatios = []float64{1.0, 1.594, 2.136, 2.296, 2.653, 2.918}

// Render synthesizes the membrane voice by delegating to Modal with the
// classic circular-membrane partial ratios.
func (m Membrane) Render(numSamples int, sampleRate float64, r *rng.RNG) []float64 {
	modes := make([]ModalMode, len(membraneModeRatios))
	for i, ratio := range membraneModeRatios {
		modes[i] = ModalMode{
			FreqHz: m.Fundamental * ratio,
			Decay:  m.Decay * (1 + float64(i)*0.4),
			Amp:    1.0 / float64(i+1),
		}
	}
	return Modal{Modes: modes}.Render(numSamples, sampleRate, r)
}

// Waveguide is a single-delay digital waveguide with a one-pole
// lowpass in the feedback path, modeling wave propagation and loss
// along a string or tube.
type Waveguide struct {
	Frequency float64
	LossPole  float64 // 0..1, higher retains more high frequency
}

// Render synthesizes the waveguide voice.
func (w Waveguide) Render(numSamples int, sampleRate float64, r *rng.RNG) []float64 {
	delayLen := int(sampleRate / math.Max(w.Frequency, 1))
	if delayLen < 2 {
		delayLen = 2
	}
	line := make([]float64, delayLen)
	for i := range line {
		line[i] = r.Float64()*2 - 1
	}
	pole := clamp(w.LossPole, 0, 0.999)

	out := make([]float64, numSamples)
	pos := 0
	var lpState float64
	for i := 0; i < numSamples; i++ {
		sample := line[pos]
		lpState = pole*lpState + (1-pole)*sample
		out[i] = sample
		line[pos] = -lpState
		pos = (pos + 1) % delayLen
	}
	return out
}

// Pulsar synthesis repeats a windowed waveform (a "pulsaret") at a
// fundamental rate, with a duty cycle controlling the silence between
// pulses; sweeping the duty cycle is a signature pulsar effect even
// though this voice renders a single static duty cycle per call.
type Pulsar struct {
	Frequency  float64
	FormantFreq float64
	Duty       float64 // fraction of each period occupied by the pulsaret
}

// Render synthesizes the pulsar voice.
func (p Pulsar) Render(numSamples int, sampleRate float64, r *rng.RNG) []float64 {
	out := make([]float64, numSamples)
	duty := clamp(p.Duty, 0.05, 1.0)
	period := sampleRate / math.Max(p.Frequency, 1)
	pulsaretLen := period * duty
	var t float64

	for i := 0; i < numSamples; i++ {
		cyclePos := math.Mod(t, period)
		if cyclePos < pulsaretLen {
			window := 0.5 - 0.5*math.Cos(2*math.Pi*cyclePos/pulsaretLen)
			carrier := math.Sin(2 * math.Pi * p.FormantFreq * cyclePos / sampleRate)
			out[i] = window * carrier
		}
		t++
	}
	return out
}

// VOSIM (VOice SIMulation) sums two impulse trains shaped by
// raised-cosine pulses at formant-related frequencies, an early
// vocal-formant synthesis technique.
type VOSIM struct {
	Frequency  float64
	Formant1Hz float64
	Formant2Hz float64
	Decay      float64
}

// Render synthesizes the VOSIM voice.
func (v VOSIM) Render(numSamples int, sampleRate float64, r *rng.RNG) []float64 {
	out := make([]float64, numSamples)
	period := sampleRate / math.Max(v.Frequency, 1)
	n1 := math.Max(1, math.Round(sampleRate/math.Max(v.Formant1Hz, 1)))
	n2 := math.Max(1, math.Round(sampleRate/math.Max(v.Formant2Hz, 1)))

	for i := 0; i < numSamples; i++ {
		cyclePos := math.Mod(float64(i), period)
		out[i] = vosimPulse(cyclePos, n1, v.Decay) + vosimPulse(cyclePos, n2, v.Decay)
	}
	return out
}

func vosimPulse(cyclePos, subPeriod, decay float64) float64 {
	sub := math.Mod(cyclePos, subPeriod)
	if sub >= subPeriod {
		return 0
	}
	shape := math.Sin(math.Pi * sub / subPeriod)
	env := math.Exp(-decay * cyclePos / subPeriod)
	return shape * shape * env
}
