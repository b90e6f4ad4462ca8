// Package audio orchestrates an audio recipe end to end: it builds one
// or more synth.Voice instances from the recipe's parameters, renders
// each with an RNG stream derived from the spec's seed, mixes and
// applies the master effects chain, and encodes the result to WAV
// bytes. It owns no package-level state; every call is a pure
// function of its spec and parameters, in keeping with the rest of
// the generation core.
package audio

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/speccade/speccade/pkg/effect"
	"github.com/speccade/speccade/pkg/mixer"
	"github.com/speccade/speccade/pkg/osc"
	"github.com/speccade/speccade/pkg/rng"
	"github.com/speccade/speccade/pkg/synth"
	"github.com/speccade/speccade/pkg/wavfile"
)

// RecipeParamsInvalidError reports a malformed or out-of-range audio
// recipe parameter, named after the recipe kind and the offending key.
type RecipeParamsInvalidError struct {
	RecipeKind string
	Param      string
	Reason     string
}

func (e *RecipeParamsInvalidError) Error() string {
	return fmt.Sprintf("audio: recipe %q param %q: %s", e.RecipeKind, e.Param, e.Reason)
}

// Result is the fully rendered audio artifact: the encoded WAV bytes,
// the sample rate used, and whether the output collapsed to mono.
type Result struct {
	WAV        []byte
	SampleRate int
	Mono       bool
	DurationS  float64
}

// RenderVoice builds a single named voice and renders numSamples from
// it. This is the entry point the music composer uses to render
// one-shot instrument samples, sharing the same voice factory as full
// audio recipes rather than duplicating it.
func RenderVoice(kind string, params map[string]interface{}, numSamples int, sampleRate float64, r *rng.RNG) ([]float64, error) {
	voice, err := buildVoice(kind, params, sampleRate, r)
	if err != nil {
		return nil, err
	}
	return voice.Render(numSamples, sampleRate, r), nil
}

// Render builds, mixes, and encodes an audio recipe. recipeKind is
// spec.Recipe.Kind; params is spec.Recipe.Params decoded as a
// map[string]interface{} (the shape json.Number-aware parsing of an
// arbitrary recipe.params object produces). baseSeed is the spec's
// seed.
func Render(recipeKind string, params map[string]interface{}, baseSeed uint32) (Result, error) {
	sampleRate := getFloat(params, "sample_rate", 44100)
	duration := getFloat(params, "duration_seconds", 1.0)
	if duration <= 0 {
		return Result{}, &RecipeParamsInvalidError{RecipeKind: recipeKind, Param: "duration_seconds", Reason: "must be positive"}
	}
	numSamples := int(math.Round(duration * sampleRate))

	layerSpecs, err := layersFor(recipeKind, params)
	if err != nil {
		return Result{}, err
	}

	layers := make([]mixer.Layer, len(layerSpecs))
	for i, ls := range layerSpecs {
		r := rng.NewForLayer(baseSeed, uint32(i))
		voice, err := buildVoice(ls.voice, ls.params, sampleRate, r)
		if err != nil {
			return Result{}, err
		}
		samples := voice.Render(numSamples, sampleRate, r)
		layers[i] = mixer.Layer{
			Samples:      samples,
			Volume:       ls.volume,
			Pan:          ls.pan,
			PanCurve:     ls.panCurve,
			DelaySamples: ls.delaySamples,
		}
	}

	masterEffects, err := effectsFor(params)
	if err != nil {
		return Result{}, err
	}
	normalize := getBool(params, "normalize", false)

	left, right := mixer.Mix(layers, masterEffects, sampleRate, normalize)

	if isMono(layerSpecs) {
		return Result{
			WAV:        wavfile.EncodeMono(left, int(sampleRate)),
			SampleRate: int(sampleRate),
			Mono:       true,
			DurationS:  duration,
		}, nil
	}
	return Result{
		WAV:        wavfile.Encode(left, right, int(sampleRate)),
		SampleRate: int(sampleRate),
		Mono:       false,
		DurationS:  duration,
	}, nil
}

// isMono reports whether every layer sits dead center with no pan
// curve, in which case a stereo file would just duplicate one channel
// into the other: a true single-channel file is written instead.
func isMono(layers []layerSpec) bool {
	for _, l := range layers {
		if l.pan != 0 || l.panCurve != nil {
			return false
		}
	}
	return true
}

type layerSpec struct {
	voice        string
	params       map[string]interface{}
	volume       float64
	pan          float64
	panCurve     mixer.PanCurve
	delaySamples int
}

// layersFor expands a recipe into its constituent layers. A "layered"
// recipe carries an explicit layers[] array; every other recipe kind
// is itself the single layer's voice, with the recipe's own params
// doubling as that voice's params.
func layersFor(recipeKind string, params map[string]interface{}) ([]layerSpec, error) {
	if recipeKind != "layered" {
		return []layerSpec{{voice: recipeKind, params: params, volume: 1, pan: 0}}, nil
	}

	raw, ok := params["layers"].([]interface{})
	if !ok || len(raw) == 0 {
		return nil, &RecipeParamsInvalidError{RecipeKind: recipeKind, Param: "layers", Reason: "layered recipes require a non-empty layers array"}
	}

	out := make([]layerSpec, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, &RecipeParamsInvalidError{RecipeKind: recipeKind, Param: fmt.Sprintf("layers[%d]", i), Reason: "must be an object"}
		}
		voice, _ := m["voice"].(string)
		if voice == "" {
			return nil, &RecipeParamsInvalidError{RecipeKind: recipeKind, Param: fmt.Sprintf("layers[%d].voice", i), Reason: "required"}
		}
		voiceParams, _ := m["params"].(map[string]interface{})
		out[i] = layerSpec{
			voice:        voice,
			params:       voiceParams,
			volume:       getFloat(m, "volume", 1.0),
			pan:          getFloat(m, "pan", 0.0),
			panCurve:     panCurveFrom(m),
			delaySamples: int(getFloat(m, "delay_samples", 0)),
		}
	}
	return out, nil
}

// effectsFor parses the recipe's optional master effects chain.
func effectsFor(params map[string]interface{}) ([]mixer.Effect, error) {
	raw, ok := params["effects"].([]interface{})
	if !ok {
		return nil, nil
	}
	out := make([]mixer.Effect, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, &RecipeParamsInvalidError{RecipeKind: "effects", Param: fmt.Sprintf("effects[%d]", i), Reason: "must be an object"}
		}
		kind, _ := m["type"].(string)
		e, err := buildEffect(kind, m)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func buildEffect(kind string, m map[string]interface{}) (mixer.Effect, error) {
	switch kind {
	case "delay":
		return effect.Delay{
			TimeSeconds: getFloat(m, "time_seconds", 0.25),
			Feedback:    getFloat(m, "feedback", 0.3),
			Mix:         getFloat(m, "mix", 0.3),
		}, nil
	case "reverb":
		return effect.Reverb{
			RoomSize: getFloat(m, "room_size", 0.5),
			Damping:  getFloat(m, "damping", 0.5),
		}, nil
	case "distortion":
		return effect.Distortion{Drive: getFloat(m, "drive", 2.0)}, nil
	case "chorus":
		return effect.Chorus{
			RateHz:  getFloat(m, "rate_hz", 1.0),
			DepthMs: getFloat(m, "depth_ms", 3.0),
			Mix:     getFloat(m, "mix", 0.5),
		}, nil
	case "flanger":
		return effect.Flanger{
			RateHz:   getFloat(m, "rate_hz", 0.2),
			DepthMs:  getFloat(m, "depth_ms", 2.0),
			Feedback: getFloat(m, "feedback", 0.5),
			Mix:      getFloat(m, "mix", 0.5),
		}, nil
	case "phaser":
		return effect.Phaser{
			RateHz: getFloat(m, "rate_hz", 0.5),
			Stages: int(getFloat(m, "stages", 4)),
			Mix:    getFloat(m, "mix", 0.5),
		}, nil
	case "compressor":
		return effect.Compressor{
			ThresholdDB: getFloat(m, "threshold_db", -18),
			Ratio:       getFloat(m, "ratio", 4),
			AttackMs:    getFloat(m, "attack_ms", 5),
			ReleaseMs:   getFloat(m, "release_ms", 80),
		}, nil
	default:
		return nil, &RecipeParamsInvalidError{RecipeKind: "effects", Param: "type", Reason: "unknown effect type " + kind}
	}
}

// buildVoice is the factory mapping a voice kind string to a
// synth.Voice, reading its parameters from m with documented defaults.
func buildVoice(kind string, m map[string]interface{}, sampleRate float64, r *rng.RNG) (synth.Voice, error) {
	switch kind {
	case "oscillator":
		return synth.Oscillator{
			Waveform:    waveformFrom(getString(m, "waveform", "sine")),
			Frequency:   getFloat(m, "frequency", 440),
			DetuneCents: getFloat(m, "detune_cents", 0),
			Duty:        getFloat(m, "duty", 0.5),
			Sweep:       sweepFrom(m),
		}, nil
	case "fm":
		return synth.FM{
			CarrierFreq:   getFloat(m, "carrier_freq", 440),
			ModulatorFreq: getFloat(m, "modulator_freq", 220),
			ModIndex:      getFloat(m, "mod_index", 2),
		}, nil
	case "feedback_fm":
		return synth.FeedbackFM{
			Frequency:       getFloat(m, "frequency", 220),
			Feedback:        getFloat(m, "feedback", 0.5),
			ModulationIndex: getFloat(m, "modulation_index", 1),
			Sweep:           sweepFrom(m),
		}, nil
	case "am":
		return synth.AM{
			CarrierFreq:   getFloat(m, "carrier_freq", 440),
			ModulatorFreq: getFloat(m, "modulator_freq", 30),
			Depth:         getFloat(m, "depth", 0.5),
		}, nil
	case "ring":
		return synth.RingMod{
			CarrierFreq:   getFloat(m, "carrier_freq", 440),
			ModulatorFreq: getFloat(m, "modulator_freq", 300),
		}, nil
	case "karplus_strong":
		return synth.KarplusStrong{
			Frequency: getFloat(m, "frequency", 220),
			Damping:   getFloat(m, "damping", 0.5),
		}, nil
	case "bowed_string":
		return synth.BowedString{
			Frequency:   getFloat(m, "frequency", 220),
			BowPressure: getFloat(m, "bow_pressure", 0.5),
		}, nil
	case "additive":
		return synth.Additive{
			Fundamental: getFloat(m, "fundamental", 220),
			PartialAmps: getFloatSlice(m, "partial_amps", []float64{1, 0.5, 0.25}),
		}, nil
	case "modal":
		return synth.Modal{Modes: modesFrom(m)}, nil
	case "membrane":
		return synth.Membrane{
			Fundamental: getFloat(m, "fundamental", 110),
			Decay:       getFloat(m, "decay", 4),
		}, nil
	case "granular":
		return synth.Granular{
			Source:        getFloatSlice(m, "source", nil),
			GrainMs:       getFloat(m, "grain_ms", 50),
			DensityPerSec: getFloat(m, "density_per_sec", 20),
			JitterMs:      getFloat(m, "jitter_ms", 5),
			PitchScatter:  getFloat(m, "pitch_scatter", 0),
		}, nil
	case "wavetable":
		return synth.Wavetable{
			Tables:        tablesFrom(m),
			Frequency:     getFloat(m, "frequency", 220),
			MorphPosition: getFloat(m, "morph_position", 0),
		}, nil
	case "vocoder":
		return synth.Vocoder{
			Modulator:   getFloatSlice(m, "modulator", nil),
			CarrierFreq: getFloat(m, "carrier_freq", 110),
			NumBands:    int(getFloat(m, "num_bands", 16)),
		}, nil
	case "formant":
		return synth.FormantVoice{
			Frequency: getFloat(m, "frequency", 120),
			Vowel:     getString(m, "vowel", "a"),
		}, nil
	case "vector":
		return synth.VectorSynth{
			Corners:   cornersFrom(m),
			Frequency: getFloat(m, "frequency", 220),
			X:         getFloat(m, "x", 0.5),
			Y:         getFloat(m, "y", 0.5),
		}, nil
	case "phase_distortion":
		return synth.PhaseDistortion{
			Frequency: getFloat(m, "frequency", 220),
			Amount:    getFloat(m, "amount", 0.5),
		}, nil
	case "waveguide":
		return synth.Waveguide{
			Frequency: getFloat(m, "frequency", 220),
			LossPole:  getFloat(m, "loss_pole", 0.5),
		}, nil
	case "pulsar":
		return synth.Pulsar{
			Frequency:   getFloat(m, "frequency", 80),
			FormantFreq: getFloat(m, "formant_freq", 800),
			Duty:        getFloat(m, "duty", 0.3),
		}, nil
	case "vosim":
		return synth.VOSIM{
			Frequency:  getFloat(m, "frequency", 110),
			Formant1Hz: getFloat(m, "formant1_hz", 700),
			Formant2Hz: getFloat(m, "formant2_hz", 1200),
			Decay:      getFloat(m, "decay", 3),
		}, nil
	case "spectral_freeze":
		return synth.SpectralFreeze{
			Source:         getFloatSlice(m, "source", nil),
			FreezeAtSample: int(getFloat(m, "freeze_at_sample", 0)),
			FFTSize:        int(getFloat(m, "fft_size", 2048)),
		}, nil
	default:
		return nil, &RecipeParamsInvalidError{RecipeKind: kind, Param: "voice", Reason: "unknown voice kind"}
	}
}

func waveformFrom(s string) synth.Waveform {
	switch s {
	case "square", "pulse":
		return synth.WaveSquare
	case "sawtooth", "saw":
		return synth.WaveSawtooth
	case "triangle":
		return synth.WaveTriangle
	default:
		return synth.WaveSine
	}
}

// panCurveFrom parses a layer's optional "pan_curve" field. Only
// "linear_sweep" is supported today; an absent or unrecognized field
// leaves the layer at its static pan.
func panCurveFrom(m map[string]interface{}) mixer.PanCurve {
	raw, ok := m["pan_curve"].(map[string]interface{})
	if !ok {
		return nil
	}
	if getString(raw, "type", "") != "linear_sweep" {
		return nil
	}
	return mixer.LinearPanSweep(getFloat(raw, "from", -1), getFloat(raw, "to", 1))
}

func sweepFrom(m map[string]interface{}) *osc.FrequencySweep {
	raw, ok := m["sweep"].(map[string]interface{})
	if !ok {
		return nil
	}
	curve := osc.SweepLinear
	switch getString(raw, "curve", "linear") {
	case "exponential":
		curve = osc.SweepExponential
	case "logarithmic":
		curve = osc.SweepLogarithmic
	}
	sweep := osc.NewFrequencySweep(getFloat(raw, "start", 220), getFloat(raw, "end", 440), curve)
	return &sweep
}

func modesFrom(m map[string]interface{}) []synth.ModalMode {
	raw, ok := m["modes"].([]interface{})
	if !ok {
		return []synth.ModalMode{{FreqHz: 220, Decay: 4, Amp: 1}}
	}
	out := make([]synth.ModalMode, 0, len(raw))
	for _, item := range raw {
		mode, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, synth.ModalMode{
			FreqHz: getFloat(mode, "freq_hz", 220),
			Decay:  getFloat(mode, "decay", 4),
			Amp:    getFloat(mode, "amp", 1),
		})
	}
	return out
}

func tablesFrom(m map[string]interface{}) [][]float64 {
	raw, ok := m["tables"].([]interface{})
	if !ok || len(raw) == 0 {
		table := make([]float64, 64)
		for i := range table {
			table[i] = math.Sin(2 * math.Pi * float64(i) / float64(len(table)))
		}
		return [][]float64{table}
	}
	out := make([][]float64, len(raw))
	for i, item := range raw {
		vals, _ := item.([]interface{})
		table := make([]float64, len(vals))
		for j, v := range vals {
			table[j] = toFloat(v)
		}
		out[i] = table
	}
	return out
}

func cornersFrom(m map[string]interface{}) [4]synth.VectorCorner {
	var corners [4]synth.VectorCorner
	raw, ok := m["corners"].([]interface{})
	if !ok {
		defaultTable := make([]float64, 64)
		for i := range defaultTable {
			defaultTable[i] = math.Sin(2 * math.Pi * float64(i) / float64(len(defaultTable)))
		}
		for i := range corners {
			corners[i] = synth.VectorCorner{Table: defaultTable}
		}
		return corners
	}
	for i := 0; i < 4 && i < len(raw); i++ {
		vals, _ := raw[i].([]interface{})
		table := make([]float64, len(vals))
		for j, v := range vals {
			table[j] = toFloat(v)
		}
		corners[i] = synth.VectorCorner{Table: table}
	}
	return corners
}

func getFloat(m map[string]interface{}, key string, def float64) float64 {
	v, ok := m[key]
	if !ok {
		return def
	}
	return toFloat(v)
}

func getFloatSlice(m map[string]interface{}, key string, def []float64) []float64 {
	raw, ok := m[key].([]interface{})
	if !ok {
		return def
	}
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = toFloat(v)
	}
	return out
}

func getString(m map[string]interface{}, key, def string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return def
}

func getBool(m map[string]interface{}, key string, def bool) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return def
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case json.Number:
		f, _ := n.Float64()
		return f
	case int:
		return float64(n)
	default:
		return 0
	}
}
