// Package validate checks a spec.Spec for schema and semantic
// correctness, enforces the asset_type/recipe.kind compatibility
// table, and applies a config.BudgetProfile's resource limits. Every
// failure is a structured error type carrying the error-kind taxonomy
// from the generation pipeline's design: callers switch on type, never
// on a message string.
package validate

import "fmt"

// ValidationError reports a spec schema or cross-field violation:
// invalid asset_id, missing primary output, incompatible recipe kind,
// or an out-of-range field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate: %s: %s", e.Field, e.Reason)
}

// RecipeParamsInvalidError reports a recipe-specific parameter out of
// bounds: zero duration, zero resolution, zero reaction-diffusion
// steps, and similar.
type RecipeParamsInvalidError struct {
	RecipeKind string
	Param      string
	Reason     string
}

func (e *RecipeParamsInvalidError) Error() string {
	return fmt.Sprintf("validate: recipe %q param %q: %s", e.RecipeKind, e.Param, e.Reason)
}

// BudgetExceededError reports a spec whose declared resource usage
// exceeds the active BudgetProfile's limit.
type BudgetExceededError struct {
	Profile string
	Limit   string
	Want    float64
	Max     float64
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("validate: budget %q: %s wants %g, max %g", e.Profile, e.Limit, e.Want, e.Max)
}

// EffectError reports a tracker effect that the target module format
// doesn't support, or an effect parameter that doesn't fit the
// format's nibble/byte range.
type EffectError struct {
	Effect string
	Format string
	Reason string
}

func (e *EffectError) Error() string {
	return fmt.Sprintf("validate: effect %q unsupported for format %q: %s", e.Effect, e.Format, e.Reason)
}

// EncodingError reports an artifact-encoding failure unrelated to
// recipe parameters: a sample count that would overflow a format's
// length field, most commonly the WAV RIFF chunk size.
type EncodingError struct {
	Format string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("validate: encoding %q failed: %s", e.Format, e.Reason)
}
