// Package spec defines the input data model — Spec, OutputSpec, and
// Recipe — and the canonical hashing that gives every spec a stable
// content identity. Downstream packages (validate, generate, report)
// depend on this one; it depends on nothing in this module except the
// standard library and blake3.
package spec

import (
	"bytes"
	"encoding/json"
)

// Spec is the top-level, immutable generation request. Once
// constructed it is never mutated; pkg/generate reads it and derives
// everything else (seeds, recipe dispatch, report identity) from it.
type Spec struct {
	SpecVersion    int          `json:"spec_version"`
	AssetID        string       `json:"asset_id"`
	AssetType      AssetType    `json:"asset_type"`
	License        string       `json:"license"`
	Seed           uint32       `json:"seed"`
	Outputs        []OutputSpec `json:"outputs"`
	Recipe         *Recipe      `json:"recipe,omitempty"`
	Description    string       `json:"description,omitempty"`
	MigrationNotes string       `json:"migration_notes,omitempty"`
}

// AssetType enumerates the kinds of asset a Spec can describe. Only
// audio, music, and texture are generated by this repository's core;
// the rest are accepted by validation (so a dispatcher can route them
// to other collaborators) but rejected by generate with
// UnsupportedAssetTypeError.
type AssetType string

const (
	AssetAudio             AssetType = "audio"
	AssetMusic             AssetType = "music"
	AssetTexture           AssetType = "texture"
	AssetSprite            AssetType = "sprite"
	AssetStaticMesh        AssetType = "static_mesh"
	AssetSkeletalMesh      AssetType = "skeletal_mesh"
	AssetSkeletalAnimation AssetType = "skeletal_animation"
	AssetFont              AssetType = "font"
	AssetVFX               AssetType = "vfx"
	AssetUI                AssetType = "ui"
)

// OutputKind distinguishes the role an OutputSpec plays in a Spec's
// outputs list.
type OutputKind string

const (
	OutputPrimary   OutputKind = "primary"
	OutputMetadata  OutputKind = "metadata"
	OutputSecondary OutputKind = "secondary"
)

// OutputSpec describes one artifact a Spec asks to be produced.
type OutputSpec struct {
	Kind   OutputKind `json:"kind"`
	Format string     `json:"format"`
	Path   string     `json:"path"`
	// Source names the texture-graph node whose value this output
	// exposes; only meaningful for texture specs with multiple named
	// outputs. Empty means "the graph's single Output node".
	Source string `json:"source,omitempty"`
}

// Recipe names the generator a Spec invokes and carries its
// generator-specific parameters as an opaque decoded JSON value (so
// this package never needs to know the shape of every recipe kind).
type Recipe struct {
	Kind   string      `json:"kind"`
	Params interface{} `json:"params,omitempty"`
}

// Parse decodes canonical or non-canonical JSON bytes into a Spec.
// Recipe.Params is decoded with json.Number preserved so
// CanonicalBytes can re-render numbers deterministically regardless of
// how the source text spelled them.
func Parse(data []byte) (Spec, error) {
	var raw rawSpec
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return Spec{}, err
	}
	return raw.toSpec()
}

// rawSpec mirrors Spec but keeps Recipe.Params as interface{} decoded
// with UseNumber, and Outputs/AssetType as their raw JSON shapes so
// Parse can validate shape errors distinctly from semantic ones.
type rawSpec struct {
	SpecVersion    int          `json:"spec_version"`
	AssetID        string       `json:"asset_id"`
	AssetType      string       `json:"asset_type"`
	License        string       `json:"license"`
	Seed           uint32       `json:"seed"`
	Outputs        []OutputSpec `json:"outputs"`
	Recipe         *rawRecipe   `json:"recipe,omitempty"`
	Description    string       `json:"description,omitempty"`
	MigrationNotes string       `json:"migration_notes,omitempty"`
}

type rawRecipe struct {
	Kind   string      `json:"kind"`
	Params interface{} `json:"params,omitempty"`
}

func (r rawSpec) toSpec() (Spec, error) {
	s := Spec{
		SpecVersion:    r.SpecVersion,
		AssetID:        r.AssetID,
		AssetType:      AssetType(r.AssetType),
		License:        r.License,
		Seed:           r.Seed,
		Outputs:        r.Outputs,
		Description:    r.Description,
		MigrationNotes: r.MigrationNotes,
	}
	if r.Recipe != nil {
		s.Recipe = &Recipe{Kind: r.Recipe.Kind, Params: r.Recipe.Params}
	}
	return s, nil
}
