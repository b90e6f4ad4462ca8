// Package effect implements the master effects chain applied after
// mixing: delay, reverb, distortion, chorus, flanger, phaser, and a
// compressor. Every effect operates on a float64 buffer in place and
// carries no state beyond what it declares, so a chain can be rebuilt
// deterministically from a spec on every run.
package effect

import "math"

// Effect is one stage of the master chain. Effects are applied in
// declaration order; the chain never reorders them.
type Effect interface {
	Process(buf []float64, sampleRate float64)
}

// Delay is a simple feedback delay line used as a standalone delay
// effect.
type Delay struct {
	TimeSeconds float64
	Feedback    float64
	Mix         float64
}

// Process applies the delay in place.
func (d Delay) Process(buf []float64, sampleRate float64) {
	delaySamples := int(d.TimeSeconds * sampleRate)
	if delaySamples < 1 {
		delaySamples = 1
	}
	fb := clamp01(d.Feedback, 0.98)
	mix := clamp01(d.Mix, 1.0)

	line := make([]float64, delaySamples)
	pos := 0
	for i, x := range buf {
		delayed := line[pos]
		line[pos] = x + delayed*fb
		pos++
		if pos >= len(line) {
			pos = 0
		}
		buf[i] = x*(1-mix) + delayed*mix
	}
}

// Reverb is a multi-tap comb-and-allpass reverb in the classic
// Schroeder arrangement: several parallel combs feeding a couple of
// series allpass stages, blended with the dry signal by RoomSize.
type Reverb struct {
	RoomSize float64 // 0..1, drives decay and wet level
	Damping  float64 // 0..1, high-frequency loss per reflection
}

var reverbCombDelaysMs = [4]float64{29.7, 37.1, 41.1, 43.7}
var reverbAllpassDelaysMs = [2]float64{5.0, 1.7}

// Process applies the reverb in place.
func (r Reverb) Process(buf []float64, sampleRate float64) {
	room := clamp01(r.RoomSize, 1.0)
	damp := clamp01(r.Damping, 1.0)
	decay := 0.28 + room*0.7
	wet := room * 0.5
	dry := 1 - room*0.2

	combOut := make([]float64, len(buf))
	for _, ms := range reverbCombDelaysMs {
		delaySamples := int(ms / 1000 * sampleRate)
		if delaySamples < 1 {
			delaySamples = 1
		}
		line := make([]float64, delaySamples)
		pos := 0
		lastLP := 0.0
		for i, x := range buf {
			delayed := line[pos]
			lastLP = delayed*(1-damp) + lastLP*damp
			line[pos] = x + lastLP*decay
			combOut[i] += delayed / float64(len(reverbCombDelaysMs))
			pos++
			if pos >= len(line) {
				pos = 0
			}
		}
	}

	for _, ms := range reverbAllpassDelaysMs {
		delaySamples := int(ms / 1000 * sampleRate)
		if delaySamples < 1 {
			delaySamples = 1
		}
		line := make([]float64, delaySamples)
		pos := 0
		const g = 0.5
		for i, x := range combOut {
			delayed := line[pos]
			out := -g*x + delayed
			line[pos] = x + g*out
			combOut[i] = out
			pos++
			if pos >= len(line) {
				pos = 0
			}
		}
	}

	for i, x := range buf {
		buf[i] = x*dry + combOut[i]*wet
	}
}

// Distortion applies a soft-clip waveshaper. Drive controls how hard
// the signal is pushed into the curve before output gain compensation.
type Distortion struct {
	Drive float64
}

// Process applies the distortion in place.
func (d Distortion) Process(buf []float64, sampleRate float64) {
	drive := d.Drive
	if drive < 1 {
		drive = 1
	}
	norm := math.Tanh(drive)
	for i, x := range buf {
		buf[i] = math.Tanh(x*drive) / norm
	}
}

// Chorus is a single modulated delay voice mixed with the dry signal.
type Chorus struct {
	RateHz float64
	DepthMs float64
	Mix    float64
}

// Process applies the chorus in place.
func (c Chorus) Process(buf []float64, sampleRate float64) {
	rate := c.RateHz
	if rate <= 0 {
		rate = 1.0
	}
	depthSamples := c.DepthMs / 1000 * sampleRate
	baseDelay := depthSamples + 1
	maxDelay := int(baseDelay*2) + 2
	line := make([]float64, maxDelay)
	pos := 0
	mix := clamp01(c.Mix, 1.0)

	for i, x := range buf {
		line[pos] = x
		lfo := (math.Sin(2*math.Pi*rate*float64(i)/sampleRate) + 1) / 2
		delaySamples := baseDelay + lfo*depthSamples
		delayed := fractionalRead(line, pos, delaySamples)
		buf[i] = x*(1-mix) + delayed*mix
		pos++
		if pos >= len(line) {
			pos = 0
		}
	}
}

// Flanger is a short modulated delay with feedback, producing the
// characteristic swept comb-filter sound.
type Flanger struct {
	RateHz   float64
	DepthMs  float64
	Feedback float64
	Mix      float64
}

// Process applies the flanger in place.
func (f Flanger) Process(buf []float64, sampleRate float64) {
	rate := f.RateHz
	if rate <= 0 {
		rate = 0.2
	}
	fb := clamp01(f.Feedback, 0.95)
	mix := clamp01(f.Mix, 1.0)
	depthSamples := f.DepthMs / 1000 * sampleRate
	maxDelay := int(depthSamples*2) + 4
	line := make([]float64, maxDelay)
	pos := 0

	for i, x := range buf {
		lfo := (math.Sin(2*math.Pi*rate*float64(i)/sampleRate) + 1) / 2
		delaySamples := 1 + lfo*depthSamples
		delayed := fractionalRead(line, pos, delaySamples)
		line[pos] = x + delayed*fb
		buf[i] = x*(1-mix) + delayed*mix
		pos++
		if pos >= len(line) {
			pos = 0
		}
	}
}

// Phaser sweeps a cascade of all-pass stages to create notches that
// move through the spectrum.
type Phaser struct {
	RateHz float64
	Stages int
	Mix    float64
}

// Process applies the phaser in place.
func (p Phaser) Process(buf []float64, sampleRate float64) {
	rate := p.RateHz
	if rate <= 0 {
		rate = 0.5
	}
	stages := p.Stages
	if stages < 1 {
		stages = 4
	}
	mix := clamp01(p.Mix, 1.0)
	z := make([]float64, stages)

	for i, x := range buf {
		lfo := (math.Sin(2*math.Pi*rate*float64(i)/sampleRate) + 1) / 2
		freq := 200 + lfo*2000
		w0 := math.Pi * freq / sampleRate
		coeff := (math.Tan(math.Pi/4-w0/2)) / (math.Tan(math.Pi/4+w0/2) + 1e-9)

		stage := x
		for s := 0; s < stages; s++ {
			out := -coeff*stage + z[s]
			z[s] = stage + coeff*out
			stage = out
		}
		buf[i] = x*(1-mix) + stage*mix
	}
}

// Compressor is a feed-forward peak compressor with fixed attack and
// release time constants, driven by ThresholdDB and Ratio.
type Compressor struct {
	ThresholdDB float64
	Ratio       float64
	AttackMs    float64
	ReleaseMs   float64
}

// Process applies gain reduction in place.
func (c Compressor) Process(buf []float64, sampleRate float64) {
	ratio := c.Ratio
	if ratio < 1 {
		ratio = 1
	}
	attackMs, releaseMs := c.AttackMs, c.ReleaseMs
	if attackMs <= 0 {
		attackMs = 5
	}
	if releaseMs <= 0 {
		releaseMs = 80
	}
	attackCoeff := math.Exp(-1 / (attackMs / 1000 * sampleRate))
	releaseCoeff := math.Exp(-1 / (releaseMs / 1000 * sampleRate))

	envelope := 0.0
	for i, x := range buf {
		level := math.Abs(x)
		if level > envelope {
			envelope = attackCoeff*envelope + (1-attackCoeff)*level
		} else {
			envelope = releaseCoeff*envelope + (1-releaseCoeff)*level
		}

		levelDB := 20 * math.Log10(math.Max(envelope, 1e-9))
		var gainDB float64
		if levelDB > c.ThresholdDB {
			gainDB = (c.ThresholdDB - levelDB) * (1 - 1/ratio)
		}
		buf[i] = x * math.Pow(10, gainDB/20)
	}
}

// Chain applies a sequence of effects in order, matching the way the
// spec's master effects declaration is processed: declaration order is
// preserved verbatim, with no reordering for efficiency.
type Chain struct {
	Effects []Effect
}

// Process runs buf through every stage of the chain in place.
func (c Chain) Process(buf []float64, sampleRate float64) {
	for _, e := range c.Effects {
		e.Process(buf, sampleRate)
	}
}

func clamp01(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// fractionalRead linearly interpolates a read from a circular buffer
// `delay` samples behind the current write position.
func fractionalRead(line []float64, writePos int, delay float64) float64 {
	n := len(line)
	d0 := int(delay)
	frac := delay - float64(d0)
	i0 := ((writePos-d0)%n + n) % n
	i1 := ((i0 - 1) % n + n) % n
	return line[i0]*(1-frac) + line[i1]*frac
}
