// Package report assembles the JSON document a generation run emits
// alongside its artifact bytes: spec/backend identity, per-output
// metrics and hashes, and pass/fail status with structured errors and
// warnings. Construction logs at Debug via logrus, so a generation
// run's decisions are visible in structured log output without
// touching the report document itself.
package report

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
)

const ReportVersion = 1

// OutputMetrics describes one emitted output file: its declared kind,
// format, and path (echoed from the spec so the report is
// self-describing), plus the measured byte length and BLAKE3 hash of
// what was actually written.
type OutputMetrics struct {
	Kind      string `json:"kind"`
	Format    string `json:"format"`
	Path      string `json:"path"`
	ByteLen   int    `json:"byte_len"`
	Blake3Hex string `json:"blake3_hex"`
}

// StageTiming records how long one named stage of generation took.
// Stage timings are optional; omit entirely when not measured.
type StageTiming struct {
	Stage string `json:"stage"`
	Ms    int64  `json:"ms"`
}

// Backend identifies the implementation that produced a report, so
// reports generated by different builds can be told apart.
type Backend struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Report is the full JSON document returned by a generation run.
// Field order here matches the order it's marshaled in, since Go's
// encoding/json preserves struct field order for object keys.
type Report struct {
	ReportVersion int    `json:"report_version"`
	SpecHash      string `json:"spec_hash"`
	BaseSpecHash  string `json:"base_spec_hash,omitempty"`
	VariantID     string `json:"variant_id,omitempty"`
	RecipeKind    string `json:"recipe_kind"`
	RecipeHash    string `json:"recipe_hash"`
	AssetID       string `json:"asset_id"`
	AssetType     string `json:"asset_type"`

	OK       bool     `json:"ok"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`

	Outputs []OutputMetrics `json:"outputs"`

	DurationMs int64         `json:"duration_ms"`
	Backend    Backend       `json:"backend"`
	Stages     []StageTiming `json:"stages,omitempty"`
}

// Builder accumulates a Report across a generation run. Callers
// append outputs, warnings, and stage timings as they happen, then
// call Finish to fix ok/duration_ms and get the finished Report.
type Builder struct {
	report Report
}

// NewBuilder starts a report for the given spec/recipe identity,
// stamped with the backend that's assembling it.
func NewBuilder(specHash, recipeKind, recipeHash, assetID, assetType string, backend Backend) *Builder {
	logrus.WithFields(logrus.Fields{
		"spec_hash":   specHash,
		"recipe_kind": recipeKind,
		"asset_id":    assetID,
	}).Debug("report builder created")

	return &Builder{report: Report{
		ReportVersion: ReportVersion,
		SpecHash:      specHash,
		RecipeKind:    recipeKind,
		RecipeHash:    recipeHash,
		AssetID:       assetID,
		AssetType:     assetType,
		Errors:        []string{},
		Warnings:      []string{},
		Outputs:       []OutputMetrics{},
		Backend:       backend,
	}}
}

// SetVariant records the optional variant lineage fields for a spec
// derived from a base spec by variation.
func (b *Builder) SetVariant(baseSpecHash, variantID string) {
	b.report.BaseSpecHash = baseSpecHash
	b.report.VariantID = variantID
}

// AddOutput appends one output's metrics, preserving the spec's
// outputs[] declaration order (callers append in that order).
func (b *Builder) AddOutput(m OutputMetrics) {
	logrus.WithFields(logrus.Fields{
		"path":     m.Path,
		"byte_len": m.ByteLen,
	}).Debug("output recorded")
	b.report.Outputs = append(b.report.Outputs, m)
}

// AddWarning appends a non-fatal warning message.
func (b *Builder) AddWarning(msg string) {
	logrus.Warn(msg)
	b.report.Warnings = append(b.report.Warnings, msg)
}

// AddError appends a fatal error message. A report with any errors
// is never ok.
func (b *Builder) AddError(msg string) {
	logrus.Error(msg)
	b.report.Errors = append(b.report.Errors, msg)
}

// AddStage records how long a named generation stage took.
func (b *Builder) AddStage(stage string, ms int64) {
	b.report.Stages = append(b.report.Stages, StageTiming{Stage: stage, Ms: ms})
}

// Finish sets ok (true iff no errors were recorded) and duration_ms,
// then returns the completed Report.
func (b *Builder) Finish(durationMs int64) Report {
	b.report.OK = len(b.report.Errors) == 0
	b.report.DurationMs = durationMs
	logrus.WithFields(logrus.Fields{
		"ok":          b.report.OK,
		"duration_ms": durationMs,
		"outputs":     len(b.report.Outputs),
	}).Info("generation report finished")
	return b.report
}

// MarshalJSON renders r as the canonical report document, keys in
// declaration order with no extra whitespace.
func MarshalJSON(r Report) ([]byte, error) {
	return json.Marshal(r)
}
