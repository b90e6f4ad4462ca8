// Package tracker defines the shared intermediate module representation
// that pkg/tracker/xm and pkg/tracker/it serialize into their native
// byte formats. Keeping one format-neutral model means the compose
// pipeline in pkg/music never needs to know which tracker format a
// recipe ultimately targets.
package tracker

// Module is a format-neutral tracker song: patterns, instruments, and
// an order table describing playback sequence.
type Module struct {
	Name        string
	Channels    int
	Speed       int
	BPM         int
	Patterns    []Pattern
	Instruments []Instrument
	OrderTable  []int
	RestartPos  int
}

// Pattern is one pattern's cell grid, Rows x Channels, row-major.
type Pattern struct {
	Rows  int
	Cells []PatternCell // length Rows*Channels, index = row*Channels+channel
}

// PatternCell mirrors pkg/music.Cell but with concrete zero-values
// (0 = unset) instead of pointers, since every cell in a finished
// pattern is fully resolved before a tracker writer ever sees it.
type PatternCell struct {
	Note       uint8 // format-specific note encoding; 0 means empty
	Instrument uint8
	Volume     uint8
	Effect     uint8
	Param      uint8
	HasNote    bool
	HasInstrument bool
	HasVolume  bool
	HasEffect  bool
}

// Instrument is a minimal sample-backed instrument: one PCM sample
// played back at a base note with a volume envelope omitted (flat
// volume), which is all the generation pipeline needs for procedurally
// rendered content.
type Instrument struct {
	Name       string
	SampleData []int16 // signed 16-bit mono PCM, already normalized
	BaseNote   int     // format's own encoding of middle C, see XM/IT packages
	Loop       bool
	LoopStart  int
	LoopLength int
}

// CellAt returns a pointer to the cell at (row, channel) for in-place
// writing by a pattern builder.
func (p *Pattern) CellAt(row, channel, channels int) *PatternCell {
	return &p.Cells[row*channels+channel]
}

// NewPattern allocates an empty pattern with the given dimensions.
func NewPattern(rows, channels int) Pattern {
	return Pattern{Rows: rows, Cells: make([]PatternCell, rows*channels)}
}
