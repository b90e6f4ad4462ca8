// Package mixer combines rendered synthesis layers into a final stereo
// buffer: per-layer volume, pan, and delay offset, an optional pan
// curve, the master effects chain, and optional peak normalization.
// Layers are summed strictly in the order they were declared, since
// that order can affect rounding at the margins of float64 precision.
package mixer

import "math"

// PanCurve reshapes a layer's pan position over the buffer, letting a
// layer sweep across the stereo field instead of sitting still.
type PanCurve func(sampleIndex int, sampleCount int) float64

// Layer is one voice's rendered mono signal plus its placement in the
// final mix.
type Layer struct {
	Samples    []float64
	Volume     float64 // linear gain, typically 0..1
	Pan        float64 // -1 (left) .. +1 (right), used when PanCurve is nil
	PanCurve   PanCurve
	DelaySamples int // silence prepended before this layer starts
}

// Effect is anything that can process one channel's buffer in place;
// Mix runs each effect over the left and right buffers separately. The
// pkg/effect types satisfy this interface directly, so mixer needs no
// import of the effects package.
type Effect interface {
	Process(buf []float64, sampleRate float64)
}

// Mix combines layers into left/right buffers, applies masterEffects to
// each channel independently, and optionally normalizes to unit peak.
// sampleRate is needed only to drive masterEffects; the mix itself is
// sample-rate agnostic.
func Mix(layers []Layer, masterEffects []Effect, sampleRate float64, normalize bool) (left, right []float64) {
	length := 0
	for _, l := range layers {
		if end := l.DelaySamples + len(l.Samples); end > length {
			length = end
		}
	}

	left = make([]float64, length)
	right = make([]float64, length)

	for _, l := range layers {
		for i, s := range l.Samples {
			out := i + l.DelaySamples
			pan := l.Pan
			if l.PanCurve != nil {
				pan = l.PanCurve(i, len(l.Samples))
			}
			lg, rg := constantPowerPan(pan)
			left[out] += s * l.Volume * lg
			right[out] += s * l.Volume * rg
		}
	}

	for _, e := range masterEffects {
		e.Process(left, sampleRate)
		e.Process(right, sampleRate)
	}

	if normalize {
		normalizePeak(left, right)
	}

	return left, right
}

// constantPowerPan converts a pan position in [-1, 1] to independent
// left/right gains using the standard constant-power law, so a
// centered signal does not lose perceived loudness relative to a hard
// panned one.
func constantPowerPan(pan float64) (left, right float64) {
	if pan < -1 {
		pan = -1
	}
	if pan > 1 {
		pan = 1
	}
	angle := (pan + 1) * math.Pi / 4
	return math.Cos(angle), math.Sin(angle)
}

// normalizePeak scales both channels in place so the loudest absolute
// sample across either channel reaches exactly 1.0; a silent mix is
// left untouched.
func normalizePeak(left, right []float64) {
	peak := 0.0
	for _, v := range left {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	for _, v := range right {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak <= 1e-12 {
		return
	}
	scale := 1.0 / peak
	for i := range left {
		left[i] *= scale
	}
	for i := range right {
		right[i] *= scale
	}
}

// LinearPanSweep returns a PanCurve that moves linearly from start to
// end across the layer's duration.
func LinearPanSweep(start, end float64) PanCurve {
	return func(i, n int) float64 {
		if n <= 1 {
			return start
		}
		t := float64(i) / float64(n-1)
		return start + (end-start)*t
	}
}
