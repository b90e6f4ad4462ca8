package audio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderOscillatorDeterministic(t *testing.T) {
	params := map[string]interface{}{
		"frequency":        440.0,
		"duration_seconds": 0.1,
		"sample_rate":      8000.0,
	}
	r1, err := Render("oscillator", params, 42)
	require.NoError(t, err)
	r2, err := Render("oscillator", params, 42)
	require.NoError(t, err)
	require.Equal(t, r1.WAV, r2.WAV)
	require.True(t, r1.Mono)
}

func TestRenderLayeredProducesStereoWhenPanned(t *testing.T) {
	params := map[string]interface{}{
		"duration_seconds": 0.05,
		"sample_rate":      8000.0,
		"layers": []interface{}{
			map[string]interface{}{"voice": "oscillator", "pan": -1.0, "params": map[string]interface{}{"frequency": 220.0}},
			map[string]interface{}{"voice": "oscillator", "pan": 1.0, "params": map[string]interface{}{"frequency": 440.0}},
		},
	}
	r, err := Render("layered", params, 1)
	require.NoError(t, err)
	require.False(t, r.Mono)
}

func TestRenderRejectsUnknownVoice(t *testing.T) {
	params := map[string]interface{}{"duration_seconds": 0.01}
	_, err := Render("not_a_voice", params, 1)
	require.Error(t, err)
}

func TestRenderLayeredRequiresLayers(t *testing.T) {
	params := map[string]interface{}{"duration_seconds": 0.01}
	_, err := Render("layered", params, 1)
	require.Error(t, err)
}

func TestRenderAppliesMasterEffects(t *testing.T) {
	params := map[string]interface{}{
		"frequency":        220.0,
		"duration_seconds": 0.05,
		"sample_rate":      8000.0,
		"effects": []interface{}{
			map[string]interface{}{"type": "reverb", "room_size": 0.6},
		},
	}
	r, err := Render("oscillator", params, 7)
	require.NoError(t, err)
	require.NotEmpty(t, r.WAV)
}

func TestRenderSeedSensitivity(t *testing.T) {
	params := map[string]interface{}{
		"frequency":        220.0,
		"duration_seconds": 0.05,
		"sample_rate":      8000.0,
	}
	r1, err := Render("granular", params, 1)
	require.NoError(t, err)
	r2, err := Render("granular", params, 2)
	require.NoError(t, err)
	require.NotEqual(t, r1.WAV, r2.WAV)
}
