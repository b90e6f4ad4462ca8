package synth

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/speccade/speccade/pkg/filter"
	"github.com/speccade/speccade/pkg/osc"
	"github.com/speccade/speccade/pkg/rng"
)

// Granular slices a source waveform (typically another rendered voice,
// or a sine when Source is nil) into short overlapping grains, each
// windowed and placed with a randomized jitter drawn from r, the
// standard approach for textured or time-stretched pads.
type Granular struct {
	Source       []float64
	GrainMs      float64
	DensityPerSec float64
	JitterMs     float64
	PitchScatter float64 // semitone range of random per-grain detune
}

// Render synthesizes the granular voice over numSamples.
func (g Granular) Render(numSamples int, sampleRate float64, r *rng.RNG) []float64 {
	src := g.Source
	if len(src) == 0 {
		src = make([]float64, numSamples)
		for i := range src {
			src[i] = math.Sin(2 * math.Pi * 220 * float64(i) / sampleRate)
		}
	}

	out := make([]float64, numSamples)
	grainLen := int(g.GrainMs / 1000 * sampleRate)
	if grainLen < 8 {
		grainLen = 8
	}
	density := g.DensityPerSec
	if density <= 0 {
		density = 20
	}
	hop := sampleRate / density

	for start := 0.0; int(start) < numSamples; start += hop {
		jitter := (r.Float64()*2 - 1) * g.JitterMs / 1000 * sampleRate
		grainStart := int(start + jitter)
		pitchRatio := math.Pow(2, (r.Float64()*2-1)*g.PitchScatter/12)
		srcPos := r.Float64() * math.Max(float64(len(src)-grainLen), 0)

		for i := 0; i < grainLen; i++ {
			dstIdx := grainStart + i
			if dstIdx < 0 || dstIdx >= numSamples {
				continue
			}
			srcIdx := int(srcPos + float64(i)*pitchRatio)
			if srcIdx < 0 || srcIdx >= len(src) {
				continue
			}
			window := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(grainLen))
			out[dstIdx] += src[srcIdx] * window
		}
	}
	return out
}

// Wavetable plays back one or more single-cycle waveform tables,
// crossfading between adjacent tables as MorphPosition moves, the way a
// wavetable synthesizer scans across a table set.
type Wavetable struct {
	Tables       [][]float64 // each table is one cycle, same length
	Frequency    float64
	MorphPosition float64 // 0..1 across the table set; can be swept externally per-call
}

// Render synthesizes the wavetable voice, sampling with linear
// interpolation both within a table and between adjacent tables.
func (w Wavetable) Render(numSamples int, sampleRate float64, r *rng.RNG) []float64 {
	if len(w.Tables) == 0 {
		return make([]float64, numSamples)
	}
	out := make([]float64, numSamples)
	phase := 0.0
	step := w.Frequency / sampleRate

	pos := clamp(w.MorphPosition, 0, 1) * float64(len(w.Tables)-1)
	idx0 := int(pos)
	idx1 := idx0 + 1
	if idx1 >= len(w.Tables) {
		idx1 = idx0
	}
	frac := pos - float64(idx0)

	for i := 0; i < numSamples; i++ {
		s0 := readTableLinear(w.Tables[idx0], phase)
		s1 := readTableLinear(w.Tables[idx1], phase)
		out[i] = s0*(1-frac) + s1*frac
		phase += step
		if phase >= 1 {
			phase -= 1
		}
	}
	return out
}

func readTableLinear(table []float64, phase float64) float64 {
	n := len(table)
	if n == 0 {
		return 0
	}
	pos := phase * float64(n)
	i0 := int(pos) % n
	i1 := (i0 + 1) % n
	frac := pos - math.Floor(pos)
	return table[i0]*(1-frac) + table[i1]*frac
}

// Vocoder imposes the spectral envelope of a modulator signal onto a
// carrier using a bank of parallel bandpass channels, the classic
// channel-vocoder architecture.
type Vocoder struct {
	Modulator  []float64
	CarrierFreq float64
	NumBands   int
}

// Render synthesizes the vocoder voice.
func (v Vocoder) Render(numSamples int, sampleRate float64, r *rng.RNG) []float64 {
	bands := v.NumBands
	if bands < 4 {
		bands = 16
	}
	carrier := make([]float64, numSamples)
	phase := 0.0
	step := 2 * math.Pi * v.CarrierFreq / sampleRate
	for i := range carrier {
		carrier[i] = osc.Sawtooth(phase)
		phase = wrapTwoPi(phase + step)
	}

	out := make([]float64, numSamples)
	minHz, maxHz := 100.0, math.Min(sampleRate/2-100, 8000)
	for b := 0; b < bands; b++ {
		t := float64(b) / float64(bands-1)
		centerHz := minHz * math.Pow(maxHz/minHz, t)

		modFilter := filter.NewBiquad(filter.BandPass, centerHz, 6, 0, sampleRate)
		carFilter := filter.NewBiquad(filter.BandPass, centerHz, 6, 0, sampleRate)

		envState := 0.0
		for i := 0; i < numSamples; i++ {
			modIn := 0.0
			if i < len(v.Modulator) {
				modIn = v.Modulator[i]
			}
			modBand := modFilter.Process(modIn)
			envState = envState*0.995 + math.Abs(modBand)*0.005
			carBand := carFilter.Process(carrier[i])
			out[i] += carBand * envState
		}
	}
	return out
}

// Vowel selects a formant target for the FormantVoice and VectorSynth
// voices.
type Vowel = string

// FormantVoice drives a filter.FormantBank with a harmonically rich
// source (a sawtooth), producing a sustained vowel-like tone.
type FormantVoice struct {
	Frequency float64
	Vowel     Vowel
}

// Render synthesizes the formant voice.
func (f FormantVoice) Render(numSamples int, sampleRate float64, r *rng.RNG) []float64 {
	bank := filter.NewFormantBank(f.Vowel, sampleRate)
	out := make([]float64, numSamples)
	phase := 0.0
	step := 2 * math.Pi * f.Frequency / sampleRate
	for i := 0; i < numSamples; i++ {
		src := osc.Sawtooth(phase)
		out[i] = bank.Process(src)
		phase = wrapTwoPi(phase + step)
	}
	return out
}

// VectorCorner is one of the four waveform sources a VectorSynth
// crossfades between.
type VectorCorner struct {
	Table []float64
}

// VectorSynth crossfades four single-cycle tables arranged at the
// corners of a unit square using bilinear weights from (X, Y), the
// classic vector-synthesis joystick model.
type VectorSynth struct {
	Corners   [4]VectorCorner // order: (0,0), (1,0), (0,1), (1,1)
	Frequency float64
	X, Y      float64 // 0..1
}

// Render synthesizes the vector-synthesis voice.
func (v VectorSynth) Render(numSamples int, sampleRate float64, r *rng.RNG) []float64 {
	x := clamp(v.X, 0, 1)
	y := clamp(v.Y, 0, 1)
	w00 := (1 - x) * (1 - y)
	w10 := x * (1 - y)
	w01 := (1 - x) * y
	w11 := x * y

	out := make([]float64, numSamples)
	phase := 0.0
	step := v.Frequency / sampleRate
	for i := 0; i < numSamples; i++ {
		s := readTableLinear(v.Corners[0].Table, phase)*w00 +
			readTableLinear(v.Corners[1].Table, phase)*w10 +
			readTableLinear(v.Corners[2].Table, phase)*w01 +
			readTableLinear(v.Corners[3].Table, phase)*w11
		out[i] = s
		phase += step
		if phase >= 1 {
			phase -= 1
		}
	}
	return out
}

// PhaseDistortion warps a linear phase ramp through a breakpoint curve
// before reading a sine table, the Casio CZ-series technique for
// cheaply approximating FM-like spectra without true modulation.
type PhaseDistortion struct {
	Frequency float64
	Amount    float64 // 0..1, 0 is a pure sine
}

// Render synthesizes the phase-distortion voice.
func (p PhaseDistortion) Render(numSamples int, sampleRate float64, r *rng.RNG) []float64 {
	out := make([]float64, numSamples)
	phase := 0.0
	step := p.Frequency / sampleRate
	amount := clamp(p.Amount, 0, 1)

	for i := 0; i < numSamples; i++ {
		distorted := distortPhase(phase, amount)
		out[i] = math.Sin(2 * math.Pi * distorted)
		phase += step
		if phase >= 1 {
			phase -= 1
		}
	}
	return out
}

func distortPhase(phase, amount float64) float64 {
	breakpoint := 0.5 - amount*0.45
	if breakpoint <= 0 {
		breakpoint = 0.05
	}
	if phase < breakpoint {
		return phase / breakpoint * 0.5
	}
	return 0.5 + (phase-breakpoint)/(1-breakpoint)*0.5
}

// SpectralFreeze captures the FFT magnitude spectrum of Source at
// FreezeAtSample and resynthesizes it indefinitely with randomized
// phases, the classic "freeze" effect: the timbre is held static while
// the phase relationships are re-randomized to avoid a robotic loop.
type SpectralFreeze struct {
	Source        []float64
	FreezeAtSample int
	FFTSize       int
}

// Render synthesizes the spectral-freeze voice.
func (s SpectralFreeze) Render(numSamples int, sampleRate float64, r *rng.RNG) []float64 {
	n := s.FFTSize
	if n <= 0 {
		n = 2048
	}
	if n%2 != 0 {
		n++
	}

	window := make([]float64, n)
	for i := 0; i < n; i++ {
		start := s.FreezeAtSample + i
		if start >= 0 && start < len(s.Source) {
			window[i] = s.Source[start]
		}
		hann := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		window[i] *= hann
	}

	fft := fourier.NewFFT(n)
	spectrum := fft.Coefficients(nil, window)
	magnitudes := make([]float64, len(spectrum))
	for i, c := range spectrum {
		magnitudes[i] = cmplx.Abs(c)
	}

	out := make([]float64, numSamples)
	hop := n / 4
	grainEnv := make([]float64, n)
	for i := range grainEnv {
		grainEnv[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}

	for start := 0; start < numSamples; start += hop {
		randomized := make([]complex128, len(magnitudes))
		for i, mag := range magnitudes {
			theta := r.Float64() * 2 * math.Pi
			randomized[i] = cmplx.Rect(mag, theta)
		}
		grain := fft.Sequence(nil, randomized)
		for i := 0; i < n && start+i < numSamples; i++ {
			out[start+i] += grain[i] * grainEnv[i] / float64(n)
		}
	}
	return out
}
