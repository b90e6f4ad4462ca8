// Package png renders a texture graph's evaluated output to a
// deterministic PNG byte stream: 8-bit grayscale or RGBA, no
// interlacing, a single IDAT chunk compressed at a fixed DEFLATE
// level with no intermediate flushes, and a fixed per-row filter
// choice of None — so the same texture.Value always produces
// byte-identical PNG output on any platform.
//
// Conformance note (spec §9 open question): the exact DEFLATE
// configuration is part of this format's contract. This encoder pins
// klauspost/compress/flate at compression level 9, a single Write
// call per image (no Flush between scanlines, which is what makes
// standard DEFLATE's block-splitting heuristics deterministic for a
// given input), and filter type 0 (None) for every row.
package png

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"hash/adler32"
	"hash/crc32"
	"math"

	"github.com/klauspost/compress/flate"
	"lukechampine.com/blake3"

	"github.com/speccade/speccade/pkg/texture"
)

const deflateLevel = 9

// zlibHeader is the two-byte zlib stream header for a 32K window,
// deflate method, and the "best compression" FLEVEL hint. Its value
// is fixed by the zlib spec's requirement that (CMF*256+FLG) % 31 == 0.
var zlibHeader = [2]byte{0x78, 0xDA}

// Encode renders v to a complete PNG file and returns the bytes
// alongside the lowercase-hex BLAKE3 hash of those bytes.
func Encode(v *texture.Value) ([]byte, string, error) {
	var (
		width, height int
		colorType     byte
		pixels        []byte
	)
	switch v.Type {
	case texture.TypeColor:
		width, height = v.Color.Width, v.Color.Height
		colorType = 6 // RGBA
		pixels = packRGBA(v.Color)
	default:
		width, height = v.Gray.Width, v.Gray.Height
		colorType = 0 // grayscale
		pixels = packGray(v.Gray)
	}

	out := &bytes.Buffer{}
	out.Write([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A})

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(height))
	ihdr[8] = 8 // bit depth
	ihdr[9] = colorType
	ihdr[10] = 0 // compression method
	ihdr[11] = 0 // filter method
	ihdr[12] = 0 // interlace method
	writeChunk(out, "IHDR", ihdr)

	channels := 1
	if colorType == 6 {
		channels = 4
	}
	scanlines := filterScanlines(pixels, width, height, channels)

	compressed, err := deflate(scanlines)
	if err != nil {
		return nil, "", err
	}
	writeChunk(out, "IDAT", compressed)
	writeChunk(out, "IEND", nil)

	data := out.Bytes()
	sum := blake3.Sum256(data)
	return data, hex.EncodeToString(sum[:]), nil
}

// filterScanlines prepends filter byte 0 (None) to every row: PNG's
// filter byte is part of the compressed stream, not a separate chunk.
func filterScanlines(pixels []byte, width, height, channels int) []byte {
	stride := width * channels
	out := make([]byte, 0, height*(stride+1))
	for y := 0; y < height; y++ {
		out = append(out, 0)
		out = append(out, pixels[y*stride:(y+1)*stride]...)
	}
	return out
}

// deflate wraps raw's zlib container (header + DEFLATE stream +
// Adler-32 trailer) that PNG's IDAT chunk requires.
func deflate(raw []byte) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.Write(zlibHeader[:])

	w, err := flate.NewWriter(buf, deflateLevel)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	var trailer [4]byte
	binary.BigEndian.PutUint32(trailer[:], adler32.Checksum(raw))
	buf.Write(trailer[:])
	return buf.Bytes(), nil
}

func packGray(g *texture.Grayscale) []byte {
	out := make([]byte, len(g.Data))
	for i, v := range g.Data {
		out[i] = to8Bit(v)
	}
	return out
}

func packRGBA(c *texture.Color) []byte {
	n := c.Width * c.Height
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		out[i*4+0] = to8Bit(c.R.Data[i])
		out[i*4+1] = to8Bit(c.G.Data[i])
		out[i*4+2] = to8Bit(c.B.Data[i])
		out[i*4+3] = to8Bit(c.A.Data[i])
	}
	return out
}

// to8Bit clamps v to [0,1], scales to [0,255], and rounds half to
// even, matching the WAV encoder's rounding rule so both artifact
// types agree on how fractional samples resolve ties.
func to8Bit(v float64) byte {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return byte(math.RoundToEven(v * 255))
}

func writeChunk(buf *bytes.Buffer, typ string, data []byte) {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))
	buf.Write(length[:])

	body := append([]byte(typ), data...)
	buf.Write(body)

	crc := crc32.ChecksumIEEE(body)
	var crcBytes [4]byte
	binary.BigEndian.PutUint32(crcBytes[:], crc)
	buf.Write(crcBytes[:])
}
