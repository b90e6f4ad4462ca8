// Package xm writes FastTracker II Extended Module (XM) files from a
// tracker.Module: a fixed 276-byte header, one packed pattern block per
// pattern, and one instrument block per instrument with its sample
// data.
package xm

import (
	"bytes"
	"encoding/binary"

	"lukechampine.com/blake3"

	"github.com/speccade/speccade/pkg/tracker"
)

const (
	magic          = "Extended Module: "
	version        = 0x0104
	headerSize     = 276
	maxChannels    = 32
	maxPatterns    = 256
	maxInstruments = 128
	maxPatternRows = 256
	// middleCNote is note value 49 in XM's 1..96 note range (1 = C-0).
	middleCNote = 49
	linearFreqTableFlag = 1 // bit 0 of header flags
)

// Write serializes m to the FastTracker II XM format.
func Write(m tracker.Module) ([]byte, error) {
	buf := &bytes.Buffer{}

	if err := writeHeader(buf, m); err != nil {
		return nil, err
	}
	for _, p := range m.Patterns {
		writePattern(buf, p, m.Channels)
	}
	for _, inst := range m.Instruments {
		writeInstrument(buf, inst)
	}

	return buf.Bytes(), nil
}

// ComputeHash returns the lowercase hex BLAKE3 hash of the module's
// serialized bytes.
func ComputeHash(m tracker.Module) (string, error) {
	data, err := Write(m)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hexEncode(sum[:]), nil
}

func writeHeader(buf *bytes.Buffer, m tracker.Module) error {
	buf.WriteString(magic) // 17 bytes
	writeFixedString(buf, m.Name, 20)
	buf.WriteByte(0x1A)
	writeFixedString(buf, "speccade", 20)
	writeUint16(buf, version)

	writeUint32(buf, headerSize)
	writeUint16(buf, uint16(len(m.OrderTable)))
	writeUint16(buf, uint16(clampInt(m.RestartPos, 0, 255)))
	writeUint16(buf, uint16(clampInt(m.Channels, 1, maxChannels)))
	writeUint16(buf, uint16(len(m.Patterns)))
	writeUint16(buf, uint16(len(m.Instruments)))
	writeUint16(buf, linearFreqTableFlag)
	writeUint16(buf, uint16(clampInt(m.Speed, 1, 255)))
	writeUint16(buf, uint16(clampInt(m.BPM, 32, 255)))

	order := make([]byte, 256)
	for i, v := range m.OrderTable {
		if i >= 256 {
			break
		}
		order[i] = byte(v)
	}
	buf.Write(order)
	return nil
}

// writePattern packs one pattern's rows using the standard XM
// note-compression scheme: a note cell either writes all five fields
// raw, or writes a mask byte (high bit set) followed by only the
// fields the mask says are present.
func writePattern(buf *bytes.Buffer, p tracker.Pattern, channels int) {
	packed := &bytes.Buffer{}
	rows := p.Rows
	if rows > maxPatternRows {
		rows = maxPatternRows
	}

	for row := 0; row < rows; row++ {
		for ch := 0; ch < channels; ch++ {
			cell := p.Cells[row*channels+ch]
			writeCellPacked(packed, cell)
		}
	}

	writeUint32(buf, 9) // pattern header length
	buf.WriteByte(0)    // packing type, always 0
	writeUint16(buf, uint16(rows))
	writeUint16(buf, uint16(packed.Len()))
	buf.Write(packed.Bytes())
}

func writeCellPacked(buf *bytes.Buffer, cell tracker.PatternCell) {
	var mask byte = 0x80
	if cell.HasNote {
		mask |= 1
	}
	if cell.HasInstrument {
		mask |= 2
	}
	if cell.HasVolume {
		mask |= 4
	}
	if cell.HasEffect {
		mask |= 8
	}
	// Param is only meaningful alongside an effect byte in this packer.
	if cell.HasEffect {
		mask |= 16
	}

	buf.WriteByte(mask)
	if cell.HasNote {
		buf.WriteByte(cell.Note)
	}
	if cell.HasInstrument {
		buf.WriteByte(cell.Instrument)
	}
	if cell.HasVolume {
		buf.WriteByte(cell.Volume)
	}
	if cell.HasEffect {
		buf.WriteByte(cell.Effect)
		buf.WriteByte(cell.Param)
	}
}

func writeInstrument(buf *bytes.Buffer, inst tracker.Instrument) {
	placeholder := &bytes.Buffer{}

	writeFixedString(placeholder, inst.Name, 22)
	placeholder.WriteByte(0) // instrument type, unused
	hasSample := len(inst.SampleData) > 0
	if hasSample {
		writeUint16(placeholder, 1)
	} else {
		writeUint16(placeholder, 0)
	}

	buf.Write(placeholder.Bytes())
	writeUint32(buf, 33) // extra sample-header length, fixed

	if !hasSample {
		return
	}

	sampleBuf := &bytes.Buffer{}
	prev := int16(0)
	for _, s := range inst.SampleData {
		delta := s - prev
		writeUint16(sampleBuf, uint16(delta))
		prev = s
	}

	writeUint32(buf, uint32(len(inst.SampleData)*2))
	loopStart := uint32(inst.LoopStart * 2)
	loopLen := uint32(inst.LoopLength * 2)
	writeUint32(buf, loopStart)
	writeUint32(buf, loopLen)
	buf.WriteByte(64) // default volume
	buf.WriteByte(0)  // finetune
	loopType := byte(0)
	if inst.Loop {
		loopType = 1
	}
	buf.WriteByte(loopType | 0x10) // bit 4 set: 16-bit samples
	buf.WriteByte(0)               // panning
	buf.WriteByte(byte(clampInt(inst.BaseNote-middleCNote, -96, 95)))
	buf.WriteByte(0) // reserved
	writeFixedString(buf, inst.Name, 22)
	buf.Write(sampleBuf.Bytes())
}

func writeFixedString(buf *bytes.Buffer, s string, n int) {
	b := make([]byte, n)
	copy(b, s)
	buf.Write(b)
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	buf.Write(tmp[:])
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

const hexDigits = "0123456789abcdef"

func hexEncode(b []byte) string {
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hexDigits[v>>4]
		out[i*2+1] = hexDigits[v&0xF]
	}
	return string(out)
}

// MiddleCNote is the note value (in XM's 1..96 range) representing
// middle C, exported so callers building Instrument.BaseNote values
// and note-conversion helpers share one constant.
const MiddleCNote = middleCNote
