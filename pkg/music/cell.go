// Package music implements the tracker-pattern compose/expand pipeline:
// a small program tree of emit/sequence/euclidean/transform/scale/chord
// operations is expanded, row by row and channel by channel, into a
// grid of cells that the tracker writers (pkg/tracker/xm,
// pkg/tracker/it) serialize to their native formats.
package music

import (
	"fmt"
	"sort"
)

// CellKey addresses one row/channel intersection in an expanded
// pattern.
type CellKey struct {
	Row     int32
	Channel uint8
}

// Cell is a tracker note with all of its optional fields. A field left
// nil means "not specified by this operation", which matters for merge
// semantics: only fields the incoming operation actually sets can
// conflict with what's already there.
type Cell struct {
	Note       *string
	Inst       *uint8
	Vol        *uint8
	Effect     *uint8
	Param      *uint8
	EffectName *string
	EffectXY   *[2]uint8
}

// MergePolicy controls what happens when two operations write to the
// same cell.
type MergePolicy int

const (
	// MergeLastWins: the later operation's field values overwrite the
	// earlier ones on conflict.
	MergeLastWins MergePolicy = iota
	// MergeFields: non-conflicting fields merge freely; two operations
	// setting the same field to different values is an error.
	MergeFields
	// MergeError: any write to an already-occupied cell is an error,
	// even if every field agrees.
	MergeError
)

// MergeConflictError reports a cell whose merge policy forbade the
// write that was attempted.
type MergeConflictError struct {
	Pattern string
	Row     int32
	Channel uint8
	Field   string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("music: merge conflict in pattern %q at row %d channel %d field %q", e.Pattern, e.Row, e.Channel, e.Field)
}

// CellMap is the expanded grid for one pattern, keyed by (row, channel)
// and always walked in row-major order by SortedKeys.
type CellMap map[CellKey]*Cell

// SortedKeys returns the map's keys in row-major order: the order
// every tracker writer walks a pattern in.
func (m CellMap) SortedKeys() []CellKey {
	keys := make([]CellKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Row != keys[j].Row {
			return keys[i].Row < keys[j].Row
		}
		return keys[i].Channel < keys[j].Channel
	})
	return keys
}

// ShiftRows shifts every cell in the map by offset rows, used when a
// sub-pattern is spliced into a parent at a nonzero row offset.
func ShiftRows(m CellMap, offset int32) CellMap {
	if offset == 0 {
		return m
	}
	shifted := make(CellMap, len(m))
	for k, v := range m {
		shifted[CellKey{Row: k.Row + offset, Channel: k.Channel}] = v
	}
	return shifted
}

// InsertMerge inserts cell at key, applying policy against whatever is
// already there.
func InsertMerge(m CellMap, key CellKey, cell *Cell, policy MergePolicy, patternName string) error {
	existing, ok := m[key]
	if !ok {
		m[key] = cell
		return nil
	}
	if policy == MergeError {
		return &MergeConflictError{Pattern: patternName, Row: key.Row, Channel: key.Channel, Field: "cell"}
	}
	return mergeCellFields(existing, cell, policy, key, patternName)
}

func mergeCellFields(existing, incoming *Cell, policy MergePolicy, key CellKey, patternName string) error {
	if err := mergeStringField(&existing.Note, incoming.Note, policy, key, patternName, "note"); err != nil {
		return err
	}
	if err := mergeUint8Field(&existing.Inst, incoming.Inst, policy, key, patternName, "inst"); err != nil {
		return err
	}
	if err := mergeUint8Field(&existing.Vol, incoming.Vol, policy, key, patternName, "vol"); err != nil {
		return err
	}
	if err := mergeUint8Field(&existing.Effect, incoming.Effect, policy, key, patternName, "effect"); err != nil {
		return err
	}
	if err := mergeUint8Field(&existing.Param, incoming.Param, policy, key, patternName, "param"); err != nil {
		return err
	}
	if err := mergeStringField(&existing.EffectName, incoming.EffectName, policy, key, patternName, "effect_name"); err != nil {
		return err
	}
	return mergeXYField(&existing.EffectXY, incoming.EffectXY, policy, key, patternName, "effect_xy")
}

func mergeStringField(target **string, incoming *string, policy MergePolicy, key CellKey, patternName, field string) error {
	if incoming == nil {
		return nil
	}
	if *target == nil {
		*target = incoming
		return nil
	}
	if **target == *incoming {
		return nil
	}
	if policy == MergeLastWins {
		*target = incoming
		return nil
	}
	return &MergeConflictError{Pattern: patternName, Row: key.Row, Channel: key.Channel, Field: field}
}

func mergeUint8Field(target **uint8, incoming *uint8, policy MergePolicy, key CellKey, patternName, field string) error {
	if incoming == nil {
		return nil
	}
	if *target == nil {
		*target = incoming
		return nil
	}
	if **target == *incoming {
		return nil
	}
	if policy == MergeLastWins {
		*target = incoming
		return nil
	}
	return &MergeConflictError{Pattern: patternName, Row: key.Row, Channel: key.Channel, Field: field}
}

func mergeXYField(target **[2]uint8, incoming *[2]uint8, policy MergePolicy, key CellKey, patternName, field string) error {
	if incoming == nil {
		return nil
	}
	if *target == nil {
		*target = incoming
		return nil
	}
	if **target == *incoming {
		return nil
	}
	if policy == MergeLastWins {
		*target = incoming
		return nil
	}
	return &MergeConflictError{Pattern: patternName, Row: key.Row, Channel: key.Channel, Field: field}
}
