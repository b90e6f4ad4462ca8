// Package generate is the synchronous, referentially-transparent core
// entry point: validate a spec, compute its canonical hash, dispatch
// to the audio/music/texture component named by recipe.kind, encode
// the resulting bytes, and assemble a report. It touches no
// filesystem and owns no package-level state — every call is a pure
// function of its arguments, exactly like the components it wires
// together.
package generate

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/speccade/speccade/pkg/audio"
	"github.com/speccade/speccade/pkg/compose"
	"github.com/speccade/speccade/pkg/config"
	"github.com/speccade/speccade/pkg/png"
	"github.com/speccade/speccade/pkg/report"
	"github.com/speccade/speccade/pkg/spec"
	"github.com/speccade/speccade/pkg/texture"
	"github.com/speccade/speccade/pkg/validate"
)

// Backend identifies this build in every report it assembles.
var Backend = report.Backend{Name: "speccade-core", Version: "1.0.0"}

// Artifact is the full output of one generation run: every declared
// output path's bytes, keyed exactly as spec.Outputs[].Path names
// them.
type Artifact struct {
	Files map[string][]byte
}

// Generate validates s, dispatches recipe.kind to the matching core
// component, and returns every declared output's bytes alongside the
// assembled report. profileName identifies which config.BudgetProfile
// the caller resolved profile from; it is only used for error/report
// context, never to look the profile up again.
//
// A validation or canonicalization failure returns before any hash is
// computed and before any artifact bytes exist: no report is returned
// in that case, only the structured error.
func Generate(s spec.Spec, profile config.BudgetProfile, profileName string) (Artifact, report.Report, error) {
	start := time.Now()

	if err := validate.ForGeneration(s); err != nil {
		return Artifact{}, report.Report{}, err
	}

	specHash, err := spec.Hash(s)
	if err != nil {
		return Artifact{}, report.Report{}, err
	}
	recipeHash, err := spec.RecipeHash(s.Recipe)
	if err != nil {
		return Artifact{}, report.Report{}, err
	}

	logrus.WithFields(logrus.Fields{
		"asset_id":    s.AssetID,
		"recipe_kind": s.Recipe.Kind,
		"spec_hash":   specHash,
	}).Debug("generate: dispatching recipe")

	if !validate.IsCoreAssetType(s.AssetType) {
		return Artifact{}, report.Report{}, &UnsupportedAssetTypeError{AssetType: string(s.AssetType)}
	}

	params, _ := s.Recipe.Params.(map[string]interface{})

	builder := report.NewBuilder(specHash, s.Recipe.Kind, recipeHash, s.AssetID, string(s.AssetType), Backend)
	files := make(map[string][]byte, len(s.Outputs))

	var dispatchErr error
	switch s.AssetType {
	case spec.AssetAudio:
		dispatchErr = generateAudio(s, params, profile, profileName, builder, files)
	case spec.AssetMusic:
		dispatchErr = generateMusic(s, params, profile, profileName, builder, files)
	case spec.AssetTexture:
		dispatchErr = generateTexture(s, params, profile, profileName, builder, files)
	default:
		dispatchErr = &UnsupportedAssetTypeError{AssetType: string(s.AssetType)}
	}
	if dispatchErr != nil {
		return Artifact{}, report.Report{}, dispatchErr
	}

	rep := builder.Finish(time.Since(start).Milliseconds())

	if metaBytes, path, ok := reportOutput(s, rep, files); ok {
		files[path] = metaBytes
	}

	return Artifact{Files: files}, rep, nil
}

// primaryOutput returns the spec's single kind=primary output;
// validate.Schema already guarantees exactly one exists.
func primaryOutput(s spec.Spec) spec.OutputSpec {
	for _, o := range s.Outputs {
		if o.Kind == spec.OutputPrimary {
			return o
		}
	}
	return spec.OutputSpec{}
}

// reportOutput renders rep to JSON for any output the spec declared
// with format=json, which this pipeline treats as "emit the
// generation report itself" rather than a separate metadata document
// — unless the dispatch already wrote that path itself (a recipe like
// texture_trimsheet_v1 emits its own JSON metadata for a
// kind=metadata, format=json output, which takes precedence here).
// Only the first unclaimed such output is honored; additional ones
// would just duplicate the same bytes under a different path.
func reportOutput(s spec.Spec, rep report.Report, files map[string][]byte) ([]byte, string, bool) {
	for _, o := range s.Outputs {
		if o.Format != "json" {
			continue
		}
		if _, claimed := files[o.Path]; claimed {
			continue
		}
		data, err := report.MarshalJSON(rep)
		if err != nil {
			return nil, "", false
		}
		return data, o.Path, true
	}
	return nil, "", false
}

func generateAudio(s spec.Spec, params map[string]interface{}, profile config.BudgetProfile, profileName string, builder *report.Builder, files map[string][]byte) error {
	out := primaryOutput(s)
	if out.Path == "" {
		return fmt.Errorf("generate: audio spec has no primary output")
	}

	// Check the declared duration against the budget before rendering
	// a single sample: an adversarial spec asking for an enormous
	// duration must be rejected cheaply, not after paying for the
	// render.
	durationReq := validate.ResourceRequest{ProfileName: profileName, DurationSeconds: getFloat(params, "duration_seconds", 1.0)}
	if err := validate.EnforceBudget(durationReq, profile); err != nil {
		return err
	}

	result, err := audio.Render(s.Recipe.Kind, params, s.Seed)
	if err != nil {
		return err
	}

	channels := 2
	if result.Mono {
		channels = 1
	}
	budgetReq := validate.ResourceRequest{ProfileName: profileName, Channels: channels}
	if err := validate.EnforceBudget(budgetReq, profile); err != nil {
		return err
	}

	if getBool(params, "normalize", false) {
		builder.AddWarning("normalization engaged: master output peak was rescaled to the target level")
	}

	files[out.Path] = result.WAV
	builder.AddOutput(report.OutputMetrics{
		Kind:      string(out.Kind),
		Format:    out.Format,
		Path:      out.Path,
		ByteLen:   len(result.WAV),
		Blake3Hex: blake3Hex(result.WAV),
	})
	return nil
}

func generateMusic(s spec.Spec, params map[string]interface{}, profile config.BudgetProfile, profileName string, builder *report.Builder, files map[string][]byte) error {
	channels := int(getFloat(params, "channels", 4))
	maxRows := musicMaxRows(params)
	budgetReq := validate.ResourceRequest{
		ProfileName: profileName,
		Channels:    channels,
		PatternRows: maxRows,
	}
	if err := validate.EnforceBudget(budgetReq, profile); err != nil {
		return err
	}

	for _, out := range s.Outputs {
		if out.Format != "xm" && out.Format != "it" {
			continue
		}
		result, err := compose.Render(params, s.Seed, out.Format)
		if err != nil {
			return err
		}
		files[out.Path] = result.Bytes
		builder.AddOutput(report.OutputMetrics{
			Kind:      string(out.Kind),
			Format:    out.Format,
			Path:      out.Path,
			ByteLen:   len(result.Bytes),
			Blake3Hex: result.Blake3Hex,
		})
	}
	return nil
}

// musicMaxRows scans every declared pattern for its row count (or its
// bars*beats_per_bar*rows_per_beat equivalent), returning the largest
// so a single budget check covers every pattern the recipe declares.
func musicMaxRows(params map[string]interface{}) int {
	patterns, _ := params["patterns"].(map[string]interface{})
	max := 0
	for _, raw := range patterns {
		def, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		rows := int(getFloat(def, "rows", 0))
		if rows == 0 {
			bars := getFloat(def, "bars", 0)
			beatsPerBar := getFloat(def, "beats_per_bar", 4)
			rowsPerBeat := getFloat(def, "rows_per_beat", 4)
			rows = int(bars * beatsPerBar * rowsPerBeat)
		}
		if rows > max {
			max = rows
		}
	}
	if max == 0 {
		max = 64
	}
	return max
}

func generateTexture(s spec.Spec, params map[string]interface{}, profile config.BudgetProfile, profileName string, builder *report.Builder, files map[string][]byte) error {
	if s.Recipe.Kind == "texture_trimsheet_v1" {
		return generateTrimsheet(s, params, profile, profileName, builder, files)
	}

	graph, err := buildGraph(params, s.Seed)
	if err != nil {
		return err
	}

	budgetReq := validate.ResourceRequest{
		ProfileName: profileName,
		Width:       graph.Width,
		Height:      graph.Height,
	}
	if err := validate.EnforceBudget(budgetReq, profile); err != nil {
		return err
	}

	values, err := texture.EvaluateAll(graph)
	if err != nil {
		return err
	}

	for _, out := range s.Outputs {
		if out.Format != "png" {
			continue
		}
		nodeID := out.Source
		if nodeID == "" {
			nodeID = graph.Output
		}
		val, ok := values[nodeID]
		if !ok {
			return fmt.Errorf("generate: output %q references unknown graph node %q", out.Path, nodeID)
		}
		data, hash, err := png.Encode(val)
		if err != nil {
			return err
		}
		files[out.Path] = data
		builder.AddOutput(report.OutputMetrics{
			Kind:      string(out.Kind),
			Format:    out.Format,
			Path:      out.Path,
			ByteLen:   len(data),
			Blake3Hex: hash,
		})
	}
	return nil
}

// generateTrimsheet packs a texture_trimsheet_v1 recipe's declared
// tiles into a single atlas, emitting the PNG as the primary output
// and, when the spec declares a metadata output, the packed UV rects
// as its JSON body.
func generateTrimsheet(s spec.Spec, params map[string]interface{}, profile config.BudgetProfile, profileName string, builder *report.Builder, files map[string][]byte) error {
	trimParams, err := buildTrimsheetParams(params)
	if err != nil {
		return err
	}

	budgetReq := validate.ResourceRequest{
		ProfileName: profileName,
		Width:       trimParams.Width,
		Height:      trimParams.Height,
	}
	if err := validate.EnforceBudget(budgetReq, profile); err != nil {
		return err
	}

	atlas, meta, err := texture.PackTrimsheet(trimParams, nil)
	if err != nil {
		return err
	}
	val := &texture.Value{Type: texture.TypeColor, Color: atlas}

	for _, out := range s.Outputs {
		switch out.Format {
		case "png":
			data, hash, err := png.Encode(val)
			if err != nil {
				return err
			}
			files[out.Path] = data
			builder.AddOutput(report.OutputMetrics{
				Kind: string(out.Kind), Format: out.Format, Path: out.Path,
				ByteLen: len(data), Blake3Hex: hash,
			})
		case "json":
			if out.Kind != spec.OutputMetadata {
				continue
			}
			data, err := json.Marshal(trimsheetMetadataJSON(meta))
			if err != nil {
				return err
			}
			files[out.Path] = data
			builder.AddOutput(report.OutputMetrics{
				Kind: string(out.Kind), Format: out.Format, Path: out.Path,
				ByteLen: len(data), Blake3Hex: blake3Hex(data),
			})
		}
	}
	return nil
}
