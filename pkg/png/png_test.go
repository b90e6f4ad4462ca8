package png

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/speccade/speccade/pkg/texture"
)

func grayValue(w, h int, fill float64) *texture.Value {
	g := texture.NewGrayscale(w, h)
	for i := range g.Data {
		g.Data[i] = fill
	}
	return &texture.Value{Type: texture.TypeGrayscale, Gray: g}
}

func colorValue(w, h int) *texture.Value {
	c := texture.NewColor(w, h)
	for i := range c.R.Data {
		c.R.Data[i] = 0.25
		c.G.Data[i] = 0.5
		c.B.Data[i] = 0.75
	}
	return &texture.Value{Type: texture.TypeColor, Color: c}
}

func TestEncodeDeterministic(t *testing.T) {
	v := grayValue(4, 4, 0.5)
	data1, hash1, err := Encode(v)
	require.NoError(t, err)
	data2, hash2, err := Encode(v)
	require.NoError(t, err)
	require.Equal(t, data1, data2)
	require.Equal(t, hash1, hash2)
}

func TestEncodeGrayAndColorDiffer(t *testing.T) {
	_, grayHash, err := Encode(grayValue(4, 4, 0.5))
	require.NoError(t, err)
	_, colorHash, err := Encode(colorValue(4, 4))
	require.NoError(t, err)
	require.NotEqual(t, grayHash, colorHash)
}

func TestEncodeHasPNGSignature(t *testing.T) {
	data, _, err := Encode(grayValue(2, 2, 1))
	require.NoError(t, err)
	require.Equal(t, []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, data[:8])
}

func TestEncodeSensitiveToContent(t *testing.T) {
	_, hash1, err := Encode(grayValue(4, 4, 0.1))
	require.NoError(t, err)
	_, hash2, err := Encode(grayValue(4, 4, 0.9))
	require.NoError(t, err)
	require.NotEqual(t, hash1, hash2)
}

func TestEncodeClampsOutOfRangeValues(t *testing.T) {
	_, hash1, err := Encode(grayValue(2, 2, 2.0))
	require.NoError(t, err)
	_, hash2, err := Encode(grayValue(2, 2, 1.0))
	require.NoError(t, err)
	require.Equal(t, hash1, hash2)
}
