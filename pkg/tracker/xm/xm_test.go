package xm

import (
	"encoding/binary"
	"testing"

	"github.com/speccade/speccade/pkg/tracker"
)

func sampleModule() tracker.Module {
	p := tracker.NewPattern(4, 2)
	cell := p.CellAt(0, 0, 2)
	cell.HasNote = true
	cell.Note = 49
	cell.HasInstrument = true
	cell.Instrument = 1

	return tracker.Module{
		Name:       "test",
		Channels:   2,
		Speed:      6,
		BPM:        125,
		Patterns:   []tracker.Pattern{p},
		OrderTable: []int{0},
		Instruments: []tracker.Instrument{
			{Name: "inst", SampleData: []int16{0, 100, -100, 0}, BaseNote: middleCNote},
		},
	}
}

func TestWriteMagicAndVersion(t *testing.T) {
	data, err := Write(sampleModule())
	if err != nil {
		t.Fatal(err)
	}
	if string(data[0:17]) != magic {
		t.Fatalf("expected magic %q, got %q", magic, data[0:17])
	}
	gotVersion := binary.LittleEndian.Uint16(data[58:60])
	if gotVersion != version {
		t.Fatalf("expected version 0x%04X, got 0x%04X", version, gotVersion)
	}
}

func TestWriteHeaderSizeField(t *testing.T) {
	data, err := Write(sampleModule())
	if err != nil {
		t.Fatal(err)
	}
	hs := binary.LittleEndian.Uint32(data[60:64])
	if hs != headerSize {
		t.Fatalf("expected header size %d, got %d", headerSize, hs)
	}
}

func TestWriteDeterministic(t *testing.T) {
	a, err := Write(sampleModule())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Write(sampleModule())
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != len(b) {
		t.Fatal("lengths differ between identical writes")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("byte %d differs between identical writes", i)
		}
	}
}

func TestComputeHashStable(t *testing.T) {
	h1, err := ComputeHash(sampleModule())
	if err != nil {
		t.Fatal(err)
	}
	h2, err := ComputeHash(sampleModule())
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Fatal("hash should be stable across identical writes")
	}
	if len(h1) != 64 {
		t.Fatalf("expected 64 hex chars for a BLAKE3-256 hash, got %d", len(h1))
	}
}
