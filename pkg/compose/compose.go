// Package compose turns a music recipe's parameters into a complete
// tracker module: it renders each declared instrument through
// pkg/audio's voice factory, expands each declared pattern's program
// tree through pkg/music, converts the resulting cell maps to the
// shared pkg/tracker intermediate, and serializes to XM or IT bytes
// via pkg/tracker/xm or pkg/tracker/it depending on the requested
// output format.
package compose

import (
	"encoding/hex"
	"fmt"
	"math"

	"lukechampine.com/blake3"

	"github.com/speccade/speccade/pkg/audio"
	"github.com/speccade/speccade/pkg/music"
	"github.com/speccade/speccade/pkg/rng"
	"github.com/speccade/speccade/pkg/tracker"
	"github.com/speccade/speccade/pkg/tracker/it"
	"github.com/speccade/speccade/pkg/tracker/xm"
	"github.com/speccade/speccade/pkg/wavfile"
)

// RecipeParamsInvalidError reports a malformed tracker_song recipe
// parameter.
type RecipeParamsInvalidError struct {
	Param  string
	Reason string
}

func (e *RecipeParamsInvalidError) Error() string {
	return fmt.Sprintf("compose: param %q: %s", e.Param, e.Reason)
}

// Result is the serialized tracker module plus its content hash.
type Result struct {
	Bytes     []byte
	Blake3Hex string
}

// Render builds a full tracker module from a tracker_song recipe's
// params and serializes it to outputFormat ("xm" or "it").
func Render(params map[string]interface{}, baseSeed uint32, outputFormat string) (Result, error) {
	format := tracker.FormatXM
	if outputFormat == "it" {
		format = tracker.FormatIT
	}

	channels := int(getFloat(params, "channels", 4))
	if channels < 1 {
		return Result{}, &RecipeParamsInvalidError{Param: "channels", Reason: "must be at least 1"}
	}
	sampleRate := getFloat(params, "sample_rate", 44100)

	instruments, err := buildInstruments(params, baseSeed, sampleRate)
	if err != nil {
		return Result{}, err
	}

	patternsRaw, _ := params["patterns"].(map[string]interface{})
	arrangementRaw, ok := params["arrangement"].([]interface{})
	if !ok || len(arrangementRaw) == 0 {
		return Result{}, &RecipeParamsInvalidError{Param: "arrangement", Reason: "must be a non-empty list of pattern names"}
	}

	names := make([]string, len(arrangementRaw))
	for i, v := range arrangementRaw {
		name, _ := v.(string)
		if name == "" {
			return Result{}, &RecipeParamsInvalidError{Param: fmt.Sprintf("arrangement[%d]", i), Reason: "must be a pattern name"}
		}
		names[i] = name
	}

	patternIndex := make(map[string]int)
	var patternList []tracker.Pattern
	for _, name := range names {
		if _, ok := patternIndex[name]; ok {
			continue
		}
		def, ok := patternsRaw[name].(map[string]interface{})
		if !ok {
			return Result{}, &RecipeParamsInvalidError{Param: "patterns." + name, Reason: "pattern referenced by arrangement is not defined"}
		}
		rows := int(getFloat(def, "rows", 64))
		opsRaw, _ := def["ops"].([]interface{})
		ops := make([]music.Op, 0, len(opsRaw))
		for i, raw := range opsRaw {
			op, err := parseOp(raw)
			if err != nil {
				return Result{}, fmt.Errorf("compose: patterns.%s.ops[%d]: %w", name, i, err)
			}
			ops = append(ops, op)
		}

		ctx := &music.ExpandContext{
			PatternName: name,
			Rows:        rows,
			Channels:    channels,
			Policy:      policyFrom(getString(def, "merge_policy", "last_wins")),
			BaseSeed:    baseSeed,
		}
		cells, err := music.Expand(ctx, ops)
		if err != nil {
			return Result{}, err
		}
		pat, err := buildPattern(cells, rows, channels, format)
		if err != nil {
			return Result{}, err
		}
		patternIndex[name] = len(patternList)
		patternList = append(patternList, pat)
	}

	orderTable := make([]int, len(names))
	for i, name := range names {
		orderTable[i] = patternIndex[name]
	}

	module := tracker.Module{
		Name:        getString(params, "name", ""),
		Channels:    channels,
		Speed:       int(getFloat(params, "speed", 6)),
		BPM:         int(getFloat(params, "bpm", 125)),
		Patterns:    patternList,
		Instruments: instruments,
		OrderTable:  orderTable,
		RestartPos:  int(getFloat(params, "restart_position", 0)),
	}

	var out []byte
	var werr error
	if format == tracker.FormatIT {
		out, werr = it.Write(module)
	} else {
		out, werr = xm.Write(module)
	}
	if werr != nil {
		return Result{}, werr
	}

	sum := blake3.Sum256(out)
	return Result{Bytes: out, Blake3Hex: hex.EncodeToString(sum[:])}, nil
}

func policyFrom(s string) music.MergePolicy {
	switch s {
	case "merge_fields":
		return music.MergeFields
	case "error":
		return music.MergeError
	default:
		return music.MergeLastWins
	}
}

// buildInstruments renders one one-shot PCM sample per declared
// instrument, each from an independent RNG stream keyed by name so
// adding or reordering instruments never perturbs another instrument's
// rendering.
func buildInstruments(params map[string]interface{}, baseSeed uint32, sampleRate float64) ([]tracker.Instrument, error) {
	raw, ok := params["instruments"].([]interface{})
	if !ok || len(raw) == 0 {
		return nil, &RecipeParamsInvalidError{Param: "instruments", Reason: "must be a non-empty list"}
	}

	out := make([]tracker.Instrument, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, &RecipeParamsInvalidError{Param: fmt.Sprintf("instruments[%d]", i), Reason: "must be an object"}
		}
		name := getString(m, "name", fmt.Sprintf("inst%d", i))
		voice := getString(m, "voice", "")
		if voice == "" {
			return nil, &RecipeParamsInvalidError{Param: fmt.Sprintf("instruments[%d].voice", i), Reason: "required"}
		}
		voiceParams, _ := m["params"].(map[string]interface{})
		duration := getFloat(m, "duration_seconds", 0.5)
		numSamples := int(math.Round(duration * sampleRate))

		r := rng.NewForComponent(baseSeed, "instrument:"+name)
		samples, err := audio.RenderVoice(voice, voiceParams, numSamples, sampleRate, r)
		if err != nil {
			return nil, err
		}

		pcm := make([]int16, len(samples))
		for j, s := range samples {
			pcm[j] = wavfile.FloatToPCM16(s)
		}

		out[i] = tracker.Instrument{
			Name:       name,
			SampleData: pcm,
			BaseNote:   int(getFloat(m, "base_note", 48)),
			Loop:       getBool(m, "loop", false),
			LoopStart:  int(getFloat(m, "loop_start", 0)),
			LoopLength: int(getFloat(m, "loop_length", 0)),
		}
	}
	return out, nil
}

// xmNoteOff is XM's key-off note value (97 in its 1..96 note range).
const xmNoteOff = 97

// buildPattern converts one expanded cell map into a tracker.Pattern,
// resolving every symbolic effect name through tracker.Resolve and
// encoding notes in whichever format-native range the target writer
// expects.
func buildPattern(cells music.CellMap, rows, channels int, format tracker.Format) (tracker.Pattern, error) {
	p := tracker.NewPattern(rows, channels)
	for key, cell := range cells {
		if cell == nil {
			continue
		}
		pc := p.CellAt(int(key.Row), int(key.Channel), channels)

		if cell.Note != nil {
			parsed, err := music.ParseNote(*cell.Note)
			if err != nil {
				return tracker.Pattern{}, err
			}
			if !parsed.IsCut {
				pc.Note = encodeNote(parsed, format)
				pc.HasNote = true
			}
		}
		if cell.Inst != nil {
			pc.Instrument = *cell.Inst
			pc.HasInstrument = true
		}
		if cell.Vol != nil {
			pc.Volume = *cell.Vol
			pc.HasVolume = true
		}
		if cell.EffectName != nil {
			eff, ok := effectNameTable[*cell.EffectName]
			if !ok {
				return tracker.Pattern{}, fmt.Errorf("compose: unknown effect name %q", *cell.EffectName)
			}
			var param byte
			if cell.Param != nil {
				param = *cell.Param
			}
			code, out, err := tracker.Resolve(eff, format, param)
			if err != nil {
				return tracker.Pattern{}, err
			}
			pc.Effect = code
			pc.Param = out
			pc.HasEffect = true
		} else if cell.Effect != nil {
			pc.Effect = *cell.Effect
			pc.HasEffect = true
			if cell.Param != nil {
				pc.Param = *cell.Param
			}
		}
	}
	return p, nil
}

func encodeNote(parsed music.ParsedNote, format tracker.Format) byte {
	if format == tracker.FormatIT {
		return it.ConvertNote(parsed.Semitone, parsed.IsOff, parsed.IsCut)
	}
	if parsed.IsOff {
		return xmNoteOff
	}
	n := parsed.Semitone + 1
	if n < 1 {
		n = 1
	}
	if n > 96 {
		n = 96
	}
	return byte(n)
}

var effectNameTable = map[string]tracker.Effect{
	"arpeggio":           tracker.EffectArpeggio,
	"porta_up":           tracker.EffectPortaUp,
	"porta_down":         tracker.EffectPortaDown,
	"tone_porta":         tracker.EffectTonePorta,
	"vibrato":            tracker.EffectVibrato,
	"set_volume":         tracker.EffectSetVolume,
	"set_channel_volume": tracker.EffectSetChannelVolume,
	"set_speed":          tracker.EffectSetSpeed,
	"set_tempo":          tracker.EffectSetTempo,
	"pattern_break":      tracker.EffectPatternBreak,
	"position_jump":      tracker.EffectPositionJump,
	"note_cut":           tracker.EffectNoteCut,
	"note_delay":         tracker.EffectNoteDelay,
	"retrigger":          tracker.EffectRetrigger,
}
