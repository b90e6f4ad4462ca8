package validate

import "github.com/speccade/speccade/pkg/spec"

// compatibleRecipeKinds is the fixed asset_type -> allowed recipe.kind
// table required by spec §3. Only audio, music, and texture recipes
// are ever dispatched by this repository's core (pkg/generate); the
// remaining asset types are listed so schema validation of specs
// destined for other collaborators (sprite slicers, mesh importers,
// ...) still succeeds, while pkg/generate rejects them at the
// generation boundary with UnsupportedAssetTypeError.
var compatibleRecipeKinds = map[spec.AssetType][]string{
	spec.AssetAudio:   {"oscillator", "fm", "feedback_fm", "am", "ring", "karplus_strong", "bowed_string", "additive", "modal", "membrane", "granular", "wavetable", "vocoder", "formant", "vector", "phase_distortion", "waveguide", "pulsar", "vosim", "spectral_freeze", "layered"},
	spec.AssetMusic:   {"tracker_song"},
	spec.AssetTexture: {"texture_graph", "texture_trimsheet_v1"},

	// Out-of-core asset types: accepted by schema validation, never
	// dispatched by pkg/generate.
	spec.AssetSprite:            {"sprite_sheet"},
	spec.AssetStaticMesh:        {"static_mesh"},
	spec.AssetSkeletalMesh:      {"skeletal_mesh"},
	spec.AssetSkeletalAnimation: {"skeletal_animation"},
	spec.AssetFont:              {"bitmap_font"},
	spec.AssetVFX:               {"vfx_graph"},
	spec.AssetUI:                {"ui_atlas"},
}

// coreAssetTypes are the asset types pkg/generate can actually
// produce artifacts for.
var coreAssetTypes = map[spec.AssetType]bool{
	spec.AssetAudio:   true,
	spec.AssetMusic:   true,
	spec.AssetTexture: true,
}

// IsCoreAssetType reports whether assetType is one pkg/generate
// dispatches, as opposed to one merely accepted by schema validation
// for an external collaborator to handle.
func IsCoreAssetType(assetType spec.AssetType) bool {
	return coreAssetTypes[assetType]
}

// CheckCompatibility verifies that recipeKind is listed as compatible
// with assetType in the fixed table.
func CheckCompatibility(assetType spec.AssetType, recipeKind string) error {
	kinds, ok := compatibleRecipeKinds[assetType]
	if !ok {
		return &ValidationError{Field: "asset_type", Reason: "unknown asset type " + string(assetType)}
	}
	for _, k := range kinds {
		if k == recipeKind {
			return nil
		}
	}
	return &ValidationError{
		Field:  "recipe.kind",
		Reason: "recipe kind " + recipeKind + " is not compatible with asset_type " + string(assetType),
	}
}
