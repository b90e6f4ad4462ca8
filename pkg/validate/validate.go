package validate

import (
	"regexp"

	"github.com/speccade/speccade/pkg/config"
	"github.com/speccade/speccade/pkg/spec"
)

var assetIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{2,63}$`)

var validOutputFormats = map[string]bool{
	"wav": true, "xm": true, "it": true, "png": true, "glb": true, "json": true,
}

// Schema validates the structural invariants spec.Spec must satisfy
// regardless of whether a recipe is present: asset_id grammar, a
// known asset_type, exactly one primary output, and well-formed
// output entries. This is the check a spec can pass before
// recipe.kind is even decided.
func Schema(s spec.Spec) error {
	if s.SpecVersion != 1 {
		return &ValidationError{Field: "spec_version", Reason: "only spec_version 1 is supported"}
	}
	if !assetIDPattern.MatchString(s.AssetID) {
		return &ValidationError{Field: "asset_id", Reason: "must match [a-z][a-z0-9_-]{2,63}"}
	}
	if _, ok := compatibleRecipeKinds[s.AssetType]; !ok {
		return &ValidationError{Field: "asset_type", Reason: "unknown asset type " + string(s.AssetType)}
	}
	if len(s.Outputs) == 0 {
		return &ValidationError{Field: "outputs", Reason: "at least one output is required"}
	}

	primaryCount := 0
	for i, o := range s.Outputs {
		if err := validateOutput(i, o); err != nil {
			return err
		}
		if o.Kind == spec.OutputPrimary {
			primaryCount++
		}
	}
	if primaryCount != 1 {
		return &ValidationError{Field: "outputs", Reason: "exactly one output must have kind=primary"}
	}
	return nil
}

func validateOutput(index int, o spec.OutputSpec) error {
	switch o.Kind {
	case spec.OutputPrimary, spec.OutputMetadata, spec.OutputSecondary:
	default:
		return &ValidationError{Field: "outputs[].kind", Reason: "unknown output kind " + string(o.Kind)}
	}
	if !validOutputFormats[o.Format] {
		return &ValidationError{Field: "outputs[].format", Reason: "unknown output format " + o.Format}
	}
	if o.Path == "" {
		return &ValidationError{Field: "outputs[].path", Reason: "path must not be empty"}
	}
	if pathEscapesRoot(o.Path) {
		return &ValidationError{Field: "outputs[].path", Reason: "path must not escape the output root: " + o.Path}
	}
	return nil
}

// pathEscapesRoot reports whether a relative output path could resolve
// outside the directory it's joined against: an absolute path, or one
// containing a ".." traversal segment.
func pathEscapesRoot(p string) bool {
	if len(p) > 0 && p[0] == '/' {
		return true
	}
	start := 0
	for i := 0; i <= len(p); i++ {
		if i == len(p) || p[i] == '/' {
			segment := p[start:i]
			if segment == ".." {
				return true
			}
			start = i + 1
		}
	}
	return false
}

// ForGeneration validates everything Schema does, plus the
// generation-only requirements: recipe.kind present and compatible
// with asset_type. A spec that only needs a schema check (no
// generation intended) should call Schema directly.
func ForGeneration(s spec.Spec) error {
	if err := Schema(s); err != nil {
		return err
	}
	if s.Recipe == nil || s.Recipe.Kind == "" {
		return &ValidationError{Field: "recipe.kind", Reason: "recipe.kind is required for generation"}
	}
	return CheckCompatibility(s.AssetType, s.Recipe.Kind)
}

// ResourceRequest is the resource usage one recipe asks for. Callers
// pass whichever fields their recipe kind cares about; zero means "not
// applicable to this recipe" and is never checked.
type ResourceRequest struct {
	ProfileName    string
	DurationSeconds float64
	Channels       int
	Width, Height  int
	PatternRows    int
}

// EnforceBudget checks a requested resource usage against profile's
// limits, returning BudgetExceededError on the first violation.
func EnforceBudget(req ResourceRequest, profile config.BudgetProfile) error {
	if req.DurationSeconds > 0 && profile.MaxDurationSeconds > 0 && req.DurationSeconds > profile.MaxDurationSeconds {
		return &BudgetExceededError{Profile: req.ProfileName, Limit: "duration_seconds", Want: req.DurationSeconds, Max: profile.MaxDurationSeconds}
	}
	if req.Channels > 0 && profile.MaxChannels > 0 && req.Channels > profile.MaxChannels {
		return &BudgetExceededError{Profile: req.ProfileName, Limit: "channels", Want: float64(req.Channels), Max: float64(profile.MaxChannels)}
	}
	if req.Width > 0 && profile.MaxWidth > 0 && req.Width > profile.MaxWidth {
		return &BudgetExceededError{Profile: req.ProfileName, Limit: "width", Want: float64(req.Width), Max: float64(profile.MaxWidth)}
	}
	if req.Height > 0 && profile.MaxHeight > 0 && req.Height > profile.MaxHeight {
		return &BudgetExceededError{Profile: req.ProfileName, Limit: "height", Want: float64(req.Height), Max: float64(profile.MaxHeight)}
	}
	if req.PatternRows > 0 && profile.MaxPatternRows > 0 && req.PatternRows > profile.MaxPatternRows {
		return &BudgetExceededError{Profile: req.ProfileName, Limit: "pattern_rows", Want: float64(req.PatternRows), Max: float64(profile.MaxPatternRows)}
	}
	return nil
}
