// Package wavfile encodes mixed float64 stereo buffers into canonical
// 16-bit PCM WAV files: a fixed 44-byte RIFF/WAVE header followed by
// interleaved little-endian samples, with no optional chunks that could
// make output vary between encoder runs.
package wavfile

import (
	"bytes"
	"math"
)

// Encode renders interleaved left/right float64 samples (each expected
// in roughly [-1, 1]) into a complete WAV file at the given sample
// rate. left and right must be the same length.
func Encode(left, right []float64, sampleRate int) []byte {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}

	buf := &bytes.Buffer{}
	dataBytes := uint32(n * 4)

	buf.WriteString("RIFF")
	writeUint32(buf, 36+dataBytes)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	writeUint32(buf, 16)
	writeUint16(buf, 1) // PCM
	writeUint16(buf, 2) // stereo
	writeUint32(buf, uint32(sampleRate))
	writeUint32(buf, uint32(sampleRate*4))
	writeUint16(buf, 4)  // block align: 2 channels * 16 bits / 8
	writeUint16(buf, 16) // bits per sample

	buf.WriteString("data")
	writeUint32(buf, dataBytes)

	for i := 0; i < n; i++ {
		writeInt16(buf, floatToPCM16(left[i]))
		writeInt16(buf, floatToPCM16(right[i]))
	}

	return buf.Bytes()
}

// EncodeMono renders a single float64 channel into a complete
// single-channel WAV file. Used when an audio recipe's layers carry no
// stereo placement (no non-zero pan and no pan curve on any layer), so
// the output is a true mono file rather than a stereo file with both
// channels duplicated.
func EncodeMono(samples []float64, sampleRate int) []byte {
	n := len(samples)
	buf := &bytes.Buffer{}
	dataBytes := uint32(n * 2)

	buf.WriteString("RIFF")
	writeUint32(buf, 36+dataBytes)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	writeUint32(buf, 16)
	writeUint16(buf, 1) // PCM
	writeUint16(buf, 1) // mono
	writeUint32(buf, uint32(sampleRate))
	writeUint32(buf, uint32(sampleRate*2))
	writeUint16(buf, 2)  // block align: 1 channel * 16 bits / 8
	writeUint16(buf, 16) // bits per sample

	buf.WriteString("data")
	writeUint32(buf, dataBytes)

	for i := 0; i < n; i++ {
		writeInt16(buf, floatToPCM16(samples[i]))
	}

	return buf.Bytes()
}

// floatToPCM16 converts a float64 sample to a clamped 16-bit signed
// integer using round-half-to-even, matching IEEE 754 default rounding
// so encoding is identical regardless of host platform.
func floatToPCM16(v float64) int16 {
	scaled := v * 32767.0
	rounded := math.RoundToEven(scaled)
	if rounded > 32767 {
		rounded = 32767
	}
	if rounded < -32768 {
		rounded = -32768
	}
	return int16(rounded)
}

// FloatToPCM16 exposes floatToPCM16 for callers outside this package
// that need the same sample quantization, such as pkg/compose when it
// renders instrument one-shot samples into tracker sample data.
func FloatToPCM16(v float64) int16 {
	return floatToPCM16(v)
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	buf.WriteByte(byte(v))
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v >> 16))
	buf.WriteByte(byte(v >> 24))
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	buf.WriteByte(byte(v))
	buf.WriteByte(byte(v >> 8))
}

func writeInt16(buf *bytes.Buffer, v int16) {
	writeUint16(buf, uint16(v))
}
