package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilderProducesOKReport(t *testing.T) {
	b := NewBuilder("abc123", "oscillator", "def456", "test-sine", "audio", Backend{Name: "speccade", Version: "0.1.0"})
	b.AddOutput(OutputMetrics{Kind: "primary", Format: "wav", Path: "out.wav", ByteLen: 44100, Blake3Hex: "aaaa"})
	r := b.Finish(5)

	require.True(t, r.OK)
	require.Empty(t, r.Errors)
	require.Len(t, r.Outputs, 1)
	require.Equal(t, ReportVersion, r.ReportVersion)
}

func TestBuilderWithErrorIsNotOK(t *testing.T) {
	b := NewBuilder("abc123", "oscillator", "def456", "test-sine", "audio", Backend{Name: "speccade", Version: "0.1.0"})
	b.AddError("synthesis failed")
	r := b.Finish(1)

	require.False(t, r.OK)
	require.Len(t, r.Errors, 1)
}

func TestMarshalJSONRoundTrips(t *testing.T) {
	b := NewBuilder("abc123", "tracker_song", "def456", "test-song", "music", Backend{Name: "speccade", Version: "0.1.0"})
	r := b.Finish(2)

	data, err := MarshalJSON(r)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, r.SpecHash, decoded.SpecHash)
	require.Equal(t, r.OK, decoded.OK)
}

func TestSetVariantPopulatesLineageFields(t *testing.T) {
	b := NewBuilder("abc123", "oscillator", "def456", "test-sine", "audio", Backend{Name: "speccade", Version: "0.1.0"})
	b.SetVariant("base-hash", "variant-1")
	r := b.Finish(1)

	require.Equal(t, "base-hash", r.BaseSpecHash)
	require.Equal(t, "variant-1", r.VariantID)
}
