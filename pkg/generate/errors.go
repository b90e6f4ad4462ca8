package generate

import "fmt"

// RecipeParamsInvalidError reports a malformed recipe.params value
// that passed schema/compatibility validation but cannot actually be
// decoded into the shape its recipe.kind expects.
type RecipeParamsInvalidError struct {
	RecipeKind string
	Param      string
	Reason     string
}

func (e *RecipeParamsInvalidError) Error() string {
	return fmt.Sprintf("generate: recipe %q param %q: %s", e.RecipeKind, e.Param, e.Reason)
}

// UnsupportedAssetTypeError reports an asset_type that passes schema
// validation (it names a real collaborator) but has no generator in
// this repository's core.
type UnsupportedAssetTypeError struct {
	AssetType string
}

func (e *UnsupportedAssetTypeError) Error() string {
	return fmt.Sprintf("generate: asset_type %q has no core generator", e.AssetType)
}
