package compose

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func simpleParams(format string) map[string]interface{} {
	return map[string]interface{}{
		"bpm":         125.0,
		"speed":       6.0,
		"channels":    2.0,
		"sample_rate": 8000.0,
		"instruments": []interface{}{
			map[string]interface{}{
				"name":             "kick",
				"voice":            "oscillator",
				"duration_seconds": 0.05,
				"params":           map[string]interface{}{"frequency": 110.0},
			},
		},
		"patterns": map[string]interface{}{
			"main": map[string]interface{}{
				"rows": 4.0,
				"ops": []interface{}{
					map[string]interface{}{
						"kind": "emit", "row": 0.0, "channel": 0.0,
						"cell": map[string]interface{}{"note": "C-4", "inst": 0.0, "vol": 64.0},
					},
					map[string]interface{}{
						"kind": "emit", "row": 2.0, "channel": 1.0,
						"cell": map[string]interface{}{"note": "E-4", "inst": 0.0, "vol": 48.0, "effect_name": "vibrato", "param": 36.0},
					},
				},
			},
		},
		"arrangement": []interface{}{"main", "main"},
	}
}

func TestRenderXMDeterministic(t *testing.T) {
	params := simpleParams("xm")
	r1, err := Render(params, 42, "xm")
	require.NoError(t, err)
	r2, err := Render(params, 42, "xm")
	require.NoError(t, err)
	require.Equal(t, r1.Bytes, r2.Bytes)
	require.Equal(t, r1.Blake3Hex, r2.Blake3Hex)
	require.NotEmpty(t, r1.Bytes)
}

func TestRenderITProducesDistinctBytes(t *testing.T) {
	params := simpleParams("it")
	xmResult, err := Render(params, 42, "xm")
	require.NoError(t, err)
	itResult, err := Render(params, 42, "it")
	require.NoError(t, err)
	require.NotEqual(t, xmResult.Bytes, itResult.Bytes)
}

func TestRenderRequiresArrangement(t *testing.T) {
	params := simpleParams("xm")
	delete(params, "arrangement")
	_, err := Render(params, 1, "xm")
	require.Error(t, err)
}

func TestRenderRequiresInstruments(t *testing.T) {
	params := simpleParams("xm")
	delete(params, "instruments")
	_, err := Render(params, 1, "xm")
	require.Error(t, err)
}

func TestRenderRejectsUnknownPatternReference(t *testing.T) {
	params := simpleParams("xm")
	params["arrangement"] = []interface{}{"missing"}
	_, err := Render(params, 1, "xm")
	require.Error(t, err)
}

func TestRenderRejectsUnknownEffectName(t *testing.T) {
	params := simpleParams("xm")
	patterns := params["patterns"].(map[string]interface{})
	main := patterns["main"].(map[string]interface{})
	ops := main["ops"].([]interface{})
	cell := ops[1].(map[string]interface{})["cell"].(map[string]interface{})
	cell["effect_name"] = "not_a_real_effect"
	_, err := Render(params, 1, "xm")
	require.Error(t, err)
}

func TestRenderSeedSensitivity(t *testing.T) {
	params := simpleParams("xm")
	r1, err := Render(params, 1, "xm")
	require.NoError(t, err)
	r2, err := Render(params, 2, "xm")
	require.NoError(t, err)
	require.NotEqual(t, r1.Bytes, r2.Bytes)
}
