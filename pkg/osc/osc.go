// Package osc provides the oscillator primitives shared by every voice in
// pkg/synth: a precision-preserving phase accumulator, the four basic
// waveform kernels, frequency sweeps, and a piecewise ADSR envelope.
package osc

import "math"

// TwoPi is 2*pi, the period of a phase accumulator.
const TwoPi = 2 * math.Pi

// PhaseAccumulator tracks phase in radians without letting long runs lose
// precision: instead of phase = fmod(phase + step, 2pi), it subtracts 2pi
// whenever phase overruns, which keeps magnitude bounded without a
// division per sample.
type PhaseAccumulator struct {
	sampleRate float64
	phase      float64
}

// NewPhaseAccumulator creates an accumulator for the given sample rate.
func NewPhaseAccumulator(sampleRate float64) *PhaseAccumulator {
	return &PhaseAccumulator{sampleRate: sampleRate}
}

// Advance steps the accumulator by one sample at freqHz and returns the
// resulting phase in [0, 2pi).
func (p *PhaseAccumulator) Advance(freqHz float64) float64 {
	p.phase += TwoPi * freqHz / p.sampleRate
	for p.phase >= TwoPi {
		p.phase -= TwoPi
	}
	for p.phase < 0 {
		p.phase += TwoPi
	}
	return p.phase
}

// Reset zeroes the accumulated phase.
func (p *PhaseAccumulator) Reset() {
	p.phase = 0
}

// Sine returns sin(phase).
func Sine(phase float64) float64 {
	return math.Sin(phase)
}

// Square returns a bipolar square wave with the given duty cycle in
// (0, 1); phase < 2*pi*duty yields +1, otherwise -1.
func Square(phase float64, duty float64) float64 {
	if duty <= 0 {
		duty = 0.5
	}
	if phase < TwoPi*duty {
		return 1
	}
	return -1
}

// Sawtooth returns a bipolar ramp: 2*(phase/2pi) - 1.
func Sawtooth(phase float64) float64 {
	return 2*(phase/TwoPi) - 1
}

// Triangle returns a bipolar triangle wave: 1 - 4*|phase/2pi - 0.5|.
func Triangle(phase float64) float64 {
	return 1 - 4*math.Abs(phase/TwoPi-0.5)
}

// SweepCurve selects the interpolation law for a FrequencySweep.
type SweepCurve int

const (
	SweepLinear SweepCurve = iota
	SweepExponential
	SweepLogarithmic
)

// FrequencySweep interpolates a frequency trajectory over a normalized
// time axis t in [0, 1].
type FrequencySweep struct {
	Start, End float64
	Curve      SweepCurve
	// Fallback records whether Exponential or Logarithmic was
	// downgraded to Linear because one of the endpoints was
	// non-positive. Generation does not fail on the downgrade, and no
	// caller turns this flag into a report warning.
	Fallback bool
}

// NewFrequencySweep builds a sweep, silently falling back to Linear when
// an Exponential or Logarithmic curve is requested with a non-positive
// endpoint (those curves require strictly positive frequencies).
func NewFrequencySweep(start, end float64, curve SweepCurve) FrequencySweep {
	s := FrequencySweep{Start: start, End: end, Curve: curve}
	if (curve == SweepExponential || curve == SweepLogarithmic) && (start <= 0 || end <= 0) {
		s.Curve = SweepLinear
		s.Fallback = true
	}
	return s
}

// At evaluates the sweep at normalized time t in [0, 1].
func (s FrequencySweep) At(t float64) float64 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	switch s.Curve {
	case SweepExponential:
		if s.Start <= 0 || s.End <= 0 {
			return s.Start + (s.End-s.Start)*t
		}
		ratio := s.End / s.Start
		return s.Start * math.Pow(ratio, t)
	case SweepLogarithmic:
		if s.Start <= 0 || s.End <= 0 {
			return s.Start + (s.End-s.Start)*t
		}
		// Logarithmic perceptual curve: equal ratio change per unit of
		// log-time rather than per unit of linear time.
		logStart, logEnd := math.Log(s.Start), math.Log(s.End)
		return math.Exp(logStart + (logEnd-logStart)*math.Log1p(t*(math.E-1)))
	default:
		return s.Start + (s.End-s.Start)*t
	}
}

// ADSR describes an attack/decay/sustain/release amplitude envelope.
// Attack, Decay, and Release are in seconds; Sustain is a dimensionless
// amplitude in [0, 1].
type ADSR struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// Apply multiplies buf in place by the envelope, assuming the note
// sustains for the full buffer minus the release tail (a one-shot
// envelope, appropriate for offline rendering where there is no
// separate note-off event).
func (e ADSR) Apply(buf []float64, sampleRate float64) {
	n := len(buf)
	if n == 0 {
		return
	}
	attackN := int(e.Attack * sampleRate)
	decayN := int(e.Decay * sampleRate)
	releaseN := int(e.Release * sampleRate)
	if attackN+decayN+releaseN > n {
		// Degenerate case: scale phases down proportionally so the
		// envelope still fits inside a short buffer.
		total := attackN + decayN + releaseN
		scale := float64(n) / float64(total)
		attackN = int(float64(attackN) * scale)
		decayN = int(float64(decayN) * scale)
		releaseN = n - attackN - decayN
	}
	sustainStart := attackN + decayN
	releaseStart := n - releaseN

	for i := 0; i < n; i++ {
		var amp float64
		switch {
		case i < attackN && attackN > 0:
			amp = float64(i) / float64(attackN)
		case i < sustainStart && decayN > 0:
			t := float64(i-attackN) / float64(decayN)
			amp = 1 + (e.Sustain-1)*t
		case i < releaseStart:
			amp = e.Sustain
		case releaseN > 0:
			t := float64(i-releaseStart) / float64(releaseN)
			amp = e.Sustain * (1 - t)
		default:
			amp = 0
		}
		buf[i] *= amp
	}
}
