package compose

import (
	"fmt"

	"github.com/speccade/speccade/pkg/music"
)

// parseOp decodes one JSON-shaped program-tree node into a music.Op.
// The "kind" field selects which other fields are read, mirroring
// music.OpKind's cases exactly.
func parseOp(raw interface{}) (music.Op, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return music.Op{}, fmt.Errorf("compose: op must be an object")
	}
	kind := getString(m, "kind", "")
	switch kind {
	case "emit":
		cell, err := parseCell(m["cell"])
		if err != nil {
			return music.Op{}, err
		}
		return music.Op{
			Kind:    music.OpEmit,
			Row:     int32(getFloat(m, "row", 0)),
			Channel: uint8(getFloat(m, "channel", 0)),
			Cell:    cell,
		}, nil

	case "emit_seq":
		children, err := parseOpList(m["children"])
		if err != nil {
			return music.Op{}, err
		}
		return music.Op{
			Kind:     music.OpEmitSeq,
			Row:      int32(getFloat(m, "row", 0)),
			RowStep:  int32(getFloat(m, "row_step", 1)),
			Children: children,
		}, nil

	case "euclid":
		children, err := parseOpList(m["children"])
		if err != nil {
			return music.Op{}, err
		}
		return music.Op{
			Kind:     music.OpEuclid,
			Row:      int32(getFloat(m, "row", 0)),
			Steps:    int(getFloat(m, "steps", 16)),
			Pulses:   int(getFloat(m, "pulses", 4)),
			Children: children,
		}, nil

	case "transpose":
		children, err := parseOpList(m["children"])
		if err != nil {
			return music.Op{}, err
		}
		return music.Op{
			Kind:     music.OpTranspose,
			Delta:    int(getFloat(m, "delta", 0)),
			Children: children,
		}, nil

	case "scale_map":
		children, err := parseOpList(m["children"])
		if err != nil {
			return music.Op{}, err
		}
		return music.Op{
			Kind:      music.OpScaleMap,
			ScaleName: getString(m, "scale_name", "major"),
			Root:      int(getFloat(m, "root", 0)),
			Children:  children,
		}, nil

	case "chord":
		return music.Op{
			Kind:      music.OpChord,
			Row:       int32(getFloat(m, "row", 0)),
			Channel:   uint8(getFloat(m, "channel", 0)),
			ScaleName: getString(m, "scale_name", "major"),
			ChordName: getString(m, "chord_name", "triad"),
			Root:      int(getFloat(m, "root", 0)),
		}, nil

	default:
		return music.Op{}, fmt.Errorf("compose: unknown op kind %q", kind)
	}
}

func parseOpList(raw interface{}) ([]music.Op, error) {
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("compose: children must be a list of ops")
	}
	out := make([]music.Op, len(list))
	for i, item := range list {
		op, err := parseOp(item)
		if err != nil {
			return nil, fmt.Errorf("children[%d]: %w", i, err)
		}
		out[i] = op
	}
	return out, nil
}

// parseCell decodes a cell object into music.Cell, leaving every field
// nil that the object doesn't mention so merge semantics in
// music.InsertMerge see only what was actually specified.
func parseCell(raw interface{}) (*music.Cell, error) {
	if raw == nil {
		return nil, fmt.Errorf("compose: op requires a cell")
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("compose: cell must be an object")
	}

	cell := &music.Cell{}
	if v, ok := m["note"].(string); ok {
		cell.Note = &v
	}
	if _, ok := m["inst"]; ok {
		v := uint8(getFloat(m, "inst", 0))
		cell.Inst = &v
	}
	if _, ok := m["vol"]; ok {
		v := uint8(getFloat(m, "vol", 0))
		cell.Vol = &v
	}
	if _, ok := m["param"]; ok {
		v := uint8(getFloat(m, "param", 0))
		cell.Param = &v
	}
	if v, ok := m["effect_name"].(string); ok {
		cell.EffectName = &v
	}
	if _, ok := m["effect"]; ok {
		v := uint8(getFloat(m, "effect", 0))
		cell.Effect = &v
	}
	return cell, nil
}
