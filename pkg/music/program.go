package music

import (
	"fmt"

	"github.com/speccade/speccade/pkg/rng"
)

// RowsChannelsMismatchError reports a pattern whose declared dimensions
// don't match an emitted cell's coordinates.
type RowsChannelsMismatchError struct {
	PatternRows int
	Channels    int
	Row         int32
	Channel     uint8
}

func (e *RowsChannelsMismatchError) Error() string {
	return fmt.Sprintf("music: cell at row %d channel %d falls outside pattern bounds (rows=%d channels=%d)",
		e.Row, e.Channel, e.PatternRows, e.Channels)
}

// OpKind selects which instruction an Op performs, and with it which of
// the Op's typed fields are meaningful.
type OpKind int

const (
	OpEmit OpKind = iota
	OpEmitSeq
	OpEuclid
	OpTranspose
	OpScaleMap
	OpChord
)

// Op is a single program-tree node; Children holds nested ops for
// container-like kinds (EmitSeq, Euclid, Transpose, ScaleMap).
type Op struct {
	Kind     OpKind
	Row      int32
	Channel  uint8
	Cell     *Cell // for OpEmit
	Children []Op  // for OpEmitSeq, OpTranspose, OpScaleMap, OpEuclid (the op to repeat)
	Steps    int   // OpEuclid
	Pulses   int   // OpEuclid
	RowStep  int32 // OpEmitSeq: row advance between children
	Delta    int   // OpTranspose: semitone delta
	ScaleName string // OpScaleMap, OpChord
	Root     int    // OpScaleMap, OpChord
	ChordName string // OpChord
}

// ExpandContext carries the state shared across one pattern's
// expansion: its merge policy, name (for error messages), dimensions,
// and a base seed for any stochastic sub-operations a future op kind
// might need.
type ExpandContext struct {
	PatternName string
	Rows        int
	Channels    int
	Policy      MergePolicy
	BaseSeed    uint32
}

// RNGFor derives a deterministic RNG for this pattern as a whole.
func (c *ExpandContext) RNGFor() *rng.RNG {
	return rng.NewForComponent(c.BaseSeed, "pattern:"+c.PatternName)
}

// RNGForCell derives a deterministic RNG scoped to one cell, so two
// expansions of the same pattern with the same seed always make the
// same stochastic choices at the same coordinates.
func (c *ExpandContext) RNGForCell(row int32, channel uint8) *rng.RNG {
	key := fmt.Sprintf("pattern:%s:row:%d:ch:%d", c.PatternName, row, channel)
	return rng.NewForComponent(c.BaseSeed, key)
}

// Expand walks a program tree and produces the fully realized cell map,
// validating that every emitted cell falls within the pattern's
// declared row/channel bounds.
func Expand(ctx *ExpandContext, ops []Op) (CellMap, error) {
	m := make(CellMap)
	for _, op := range ops {
		if err := expandOne(ctx, m, op); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func expandOne(ctx *ExpandContext, m CellMap, op Op) error {
	switch op.Kind {
	case OpEmit:
		return emitValidated(ctx, m, op.Row, op.Channel, op.Cell)

	case OpEmitSeq:
		row := op.Row
		for _, child := range op.Children {
			shifted := child
			shifted.Row = row
			if err := expandOne(ctx, m, shifted); err != nil {
				return err
			}
			row += op.RowStep
		}
		return nil

	case OpEuclid:
		pattern := Euclid(op.Pulses, op.Steps)
		if len(op.Children) != 1 {
			return fmt.Errorf("music: euclid op requires exactly one child template, got %d", len(op.Children))
		}
		template := op.Children[0]
		for i, hit := range pattern {
			if !hit {
				continue
			}
			shifted := template
			shifted.Row = op.Row + int32(i)
			if err := expandOne(ctx, m, shifted); err != nil {
				return err
			}
		}
		return nil

	case OpTranspose:
		for _, child := range op.Children {
			if child.Cell != nil && child.Cell.Note != nil {
				transposed := applyTransposeToCell(*child.Cell, op.Delta)
				child.Cell = &transposed
			}
			if err := expandOne(ctx, m, child); err != nil {
				return err
			}
		}
		return nil

	case OpScaleMap:
		scale, ok := LookupScale(op.ScaleName)
		if !ok {
			return fmt.Errorf("music: unknown scale %q", op.ScaleName)
		}
		for _, child := range op.Children {
			if child.Cell != nil && child.Cell.Note != nil {
				degree, err := noteToDegree(*child.Cell.Note)
				if err != nil {
					return err
				}
				semitone := scale.MapToScale(op.Root, degree)
				mapped := *child.Cell
				name := FormatNote(semitone)
				mapped.Note = &name
				child.Cell = &mapped
			}
			if err := expandOne(ctx, m, child); err != nil {
				return err
			}
		}
		return nil

	case OpChord:
		scale, ok := LookupScale(op.ScaleName)
		if !ok {
			scale = namedScales["major"]
		}
		shape, ok := LookupChord(op.ChordName)
		if !ok {
			return fmt.Errorf("music: unknown chord %q", op.ChordName)
		}
		semitones := ChordSemitones(scale, op.Root, shape)
		for i, st := range semitones {
			channel := op.Channel + uint8(i)
			name := FormatNote(st)
			cell := &Cell{Note: &name}
			if err := emitValidated(ctx, m, op.Row, channel, cell); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("music: unknown op kind %d", op.Kind)
}

func emitValidated(ctx *ExpandContext, m CellMap, row int32, channel uint8, cell *Cell) error {
	if int(row) < 0 || int(row) >= ctx.Rows || int(channel) >= ctx.Channels {
		return &RowsChannelsMismatchError{PatternRows: ctx.Rows, Channels: ctx.Channels, Row: row, Channel: channel}
	}
	return InsertMerge(m, CellKey{Row: row, Channel: channel}, cell, ctx.Policy, ctx.PatternName)
}

func applyTransposeToCell(cell Cell, delta int) Cell {
	parsed, err := ParseNote(*cell.Note)
	if err != nil || parsed.IsOff || parsed.IsCut {
		return cell
	}
	name := FormatNote(TransposeSemitones(parsed.Semitone, delta))
	cell.Note = &name
	return cell
}

func noteToDegree(note string) (int, error) {
	parsed, err := ParseNote(note)
	if err != nil {
		return 0, err
	}
	return parsed.Semitone, nil
}
