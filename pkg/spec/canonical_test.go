package spec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleSpec() Spec {
	return Spec{
		SpecVersion: 1,
		AssetID:     "test-sfx-001",
		AssetType:   AssetAudio,
		License:     "CC0",
		Seed:        42,
		Outputs: []OutputSpec{
			{Kind: OutputPrimary, Format: "wav", Path: "out.wav"},
		},
		Recipe: &Recipe{
			Kind: "oscillator",
			Params: map[string]interface{}{
				"frequency": 440.0,
				"duration":  0.5,
			},
		},
	}
}

func TestHashDeterministic(t *testing.T) {
	s := sampleSpec()
	h1, err := Hash(s)
	require.NoError(t, err)
	h2, err := Hash(s)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
	require.Len(t, h1, 64)
}

func TestHashSensitiveToSeed(t *testing.T) {
	a := sampleSpec()
	b := sampleSpec()
	b.Seed = 43
	ha, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)
	require.NotEqual(t, ha, hb)
}

func TestCanonicalizationFailsOnNonFinite(t *testing.T) {
	s := sampleSpec()
	s.Recipe.Params = map[string]interface{}{"frequency": math.NaN()}
	_, err := Hash(s)
	require.Error(t, err)
	var cfe *CanonicalizationFailedError
	require.ErrorAs(t, err, &cfe)
}

func TestCanonicalizationFailsOnInfinity(t *testing.T) {
	s := sampleSpec()
	s.Recipe.Params = map[string]interface{}{"frequency": math.Inf(1)}
	_, err := Hash(s)
	require.Error(t, err)
}

func TestDefaultsDroppedFromCanonicalForm(t *testing.T) {
	withDefault := sampleSpec()
	withDefault.Description = ""

	explicit := sampleSpec()
	explicit.Description = ""

	h1, err := Hash(withDefault)
	require.NoError(t, err)
	h2, err := Hash(explicit)
	require.NoError(t, err)
	require.Equal(t, h1, h2)

	canon, err := CanonicalBytes(explicit)
	require.NoError(t, err)
	require.NotContains(t, string(canon), `"description"`)
}

func TestParseIdempotence(t *testing.T) {
	s := sampleSpec()
	b1, err := CanonicalBytes(s)
	require.NoError(t, err)

	parsed, err := Parse(b1)
	require.NoError(t, err)

	b2, err := CanonicalBytes(parsed)
	require.NoError(t, err)
	require.Equal(t, string(b1), string(b2))
}

func TestCanonicalFormHasNoWhitespaceAndSortedKeys(t *testing.T) {
	s := sampleSpec()
	b, err := CanonicalBytes(s)
	require.NoError(t, err)
	for _, c := range b {
		require.NotEqual(t, byte(' '), c)
		require.NotEqual(t, byte('\n'), c)
		require.NotEqual(t, byte('\t'), c)
	}
	require.Contains(t, string(b), `"asset_id"`)
}

func TestIntegerNumbersHaveNoDecimalPoint(t *testing.T) {
	s := sampleSpec()
	s.Recipe.Params = map[string]interface{}{"count": 4.0}
	b, err := CanonicalBytes(s)
	require.NoError(t, err)
	require.Contains(t, string(b), `"count":4`)
	require.NotContains(t, string(b), `"count":4.0`)
}
