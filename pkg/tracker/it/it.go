// Package it writes Impulse Tracker (IT) module files from a
// tracker.Module: the IMPM header, a pattern offset table, and packed
// pattern data using IT's channel-variable/mask-byte scheme, in which a
// channel's mask byte is cached and only resent when it changes.
package it

import (
	"bytes"
	"encoding/binary"

	"lukechampine.com/blake3"

	"github.com/speccade/speccade/pkg/tracker"
)

const (
	magic            = "IMPM"
	compatibleWith   = 0x0200
	maxChannels      = 64
	maxPatternRows   = 200
	noteCut          = 254
	noteOff          = 255
	// middleCNote is note value 60 in IT's 0..119 note range (C-5 = 60).
	middleCNote = 60
)

// MiddleCNote is exported so callers converting from semitone numbers
// to IT's native note range share one constant.
const MiddleCNote = middleCNote

// Write serializes m to the Impulse Tracker IT format.
func Write(m tracker.Module) ([]byte, error) {
	header := &bytes.Buffer{}

	patternBlocks := make([][]byte, len(m.Patterns))
	for i, p := range m.Patterns {
		patternBlocks[i] = packPattern(p, m.Channels)
	}

	writeHeader(header, m)

	orderTable := make([]byte, len(m.OrderTable))
	for i, v := range m.OrderTable {
		orderTable[i] = byte(v)
	}
	header.Write(orderTable)

	// Instrument/sample/pattern offset tables follow the order table;
	// instruments and samples are omitted from the offset tables below
	// since every instrument in this pipeline is a single referenced
	// sample with no separate IT instrument envelope.
	patternOffsetTablePos := header.Len()
	offsetPlaceholders := make([]byte, len(patternBlocks)*4)
	header.Write(offsetPlaceholders)

	body := &bytes.Buffer{}
	offsets := make([]uint32, len(patternBlocks))
	baseOffset := uint32(header.Len())
	for i, block := range patternBlocks {
		offsets[i] = baseOffset + uint32(body.Len())
		body.Write(block)
	}

	out := header.Bytes()
	for i, off := range offsets {
		pos := patternOffsetTablePos + i*4
		binary.LittleEndian.PutUint32(out[pos:pos+4], off)
	}

	return append(out, body.Bytes()...), nil
}

// ComputeHash returns the lowercase hex BLAKE3 hash of the module's
// serialized bytes, matching pkg/tracker/xm's ComputeHash.
func ComputeHash(m tracker.Module) (string, error) {
	data, err := Write(m)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hexEncode(sum[:]), nil
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

func writeHeader(buf *bytes.Buffer, m tracker.Module) {
	buf.WriteString(magic)
	writeFixedString(buf, m.Name, 26)
	writeUint16(buf, 0) // pattern-highlight info, unused
	writeUint16(buf, uint16(len(m.OrderTable)))
	writeUint16(buf, uint16(len(m.Instruments)))
	writeUint16(buf, uint16(len(m.Instruments))) // sample count mirrors instrument count
	writeUint16(buf, uint16(len(m.Patterns)))
	writeUint16(buf, compatibleWith)
	writeUint16(buf, compatibleWith)
	writeUint16(buf, 0) // flags
	writeUint16(buf, 0) // special
	buf.WriteByte(64)   // global volume
	buf.WriteByte(128)  // mix volume
	buf.WriteByte(byte(clampInt(m.Speed, 1, 255)))
	buf.WriteByte(byte(clampInt(m.BPM, 32, 255)))
	buf.WriteByte(0)    // pan separation
	buf.WriteByte(0)    // pitch wheel depth
	writeUint16(buf, 0) // message length
	writeUint32(buf, 0) // message offset
	writeUint32(buf, 0) // reserved

	panning := make([]byte, 64)
	for i := range panning {
		panning[i] = 32
	}
	buf.Write(panning)

	volume := make([]byte, 64)
	for i := range volume {
		volume[i] = 64
	}
	buf.Write(volume)
}

// packPattern encodes one pattern using IT's channel-variable/mask
// scheme: each nonzero row entry writes a (channel+1) byte, optionally
// OR'd with 0x80 when a new mask follows, then whatever fields that
// mask selects. A zero byte ends a row.
func packPattern(p tracker.Pattern, channels int) []byte {
	body := &bytes.Buffer{}
	lastMask := make([]byte, channels)
	haveLastMask := make([]bool, channels)
	rows := p.Rows
	if rows > maxPatternRows {
		rows = maxPatternRows
	}

	for row := 0; row < rows; row++ {
		for ch := 0; ch < channels; ch++ {
			cell := p.Cells[row*channels+ch]
			mask := cellMask(cell)
			if mask == 0 {
				continue
			}

			channelVar := byte(ch+1) & 63
			sendMask := !haveLastMask[ch] || lastMask[ch] != mask
			if sendMask {
				channelVar |= 0x80
			}
			body.WriteByte(channelVar)
			if sendMask {
				body.WriteByte(mask)
				lastMask[ch] = mask
				haveLastMask[ch] = true
			}

			if mask&0x01 != 0 {
				body.WriteByte(cell.Note)
			}
			if mask&0x02 != 0 {
				body.WriteByte(cell.Instrument)
			}
			if mask&0x04 != 0 {
				body.WriteByte(cell.Volume)
			}
			if mask&0x08 != 0 {
				body.WriteByte(cell.Effect)
				body.WriteByte(cell.Param)
			}
		}
		body.WriteByte(0) // end of row
	}

	packed := body.Bytes()
	header := &bytes.Buffer{}
	writeUint16(header, uint16(len(packed)))
	writeUint16(header, uint16(rows))
	writeUint32(header, 0) // reserved
	header.Write(packed)
	return header.Bytes()
}

func cellMask(cell tracker.PatternCell) byte {
	var mask byte
	if cell.HasNote {
		mask |= 0x01
	}
	if cell.HasInstrument {
		mask |= 0x02
	}
	if cell.HasVolume {
		mask |= 0x04
	}
	if cell.HasEffect {
		mask |= 0x08
	}
	return mask
}

// ConvertNote maps a note onto IT's native note byte: isOff gives the
// note-off byte (255), isCut the note-cut byte (254), and otherwise the
// semitone (0 = C-0) is passed through, clamped to 0..119.
func ConvertNote(semitone int, isOff, isCut bool) uint8 {
	switch {
	case isOff:
		return noteOff
	case isCut:
		return noteCut
	default:
		n := semitone
		if n < 0 {
			n = 0
		}
		if n > 119 {
			n = 119
		}
		return uint8(n)
	}
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
