package spec

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"lukechampine.com/blake3"
)

// CanonicalizationFailedError reports a spec that cannot be rendered
// to canonical bytes: a non-finite number anywhere in the tree, most
// commonly inside recipe.params.
type CanonicalizationFailedError struct {
	Path   string
	Reason string
}

func (e *CanonicalizationFailedError) Error() string {
	return fmt.Sprintf("spec: canonicalization failed at %s: %s", e.Path, e.Reason)
}

// defaults holds the one published table of optional-field default
// values. A field canonicalizing to its default is dropped from the
// output entirely, so two specs that differ only in whether they wrote
// out a default explicitly hash identically.
var defaults = map[string]interface{}{
	"description":     "",
	"migration_notes": "",
	"outputs[].source": "",
}

// CanonicalBytes renders s to its canonical byte form: JSON with
// object keys sorted lexicographically at every level, no
// insignificant whitespace, numbers in shortest round-trip decimal
// form, UTF-8 throughout. Two specs with byte-equal canonical forms
// are defined to share a SpecHash.
func CanonicalBytes(s Spec) ([]byte, error) {
	obj, err := toCanonicalObject(s)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, 256)
	buf, err = encodeCanonical(buf, obj, "$")
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Hash computes the 256-bit BLAKE3 digest of s's canonical bytes,
// rendered as lowercase hex. Hashing itself never fails; a
// canonicalization failure is returned as an error instead of a hash.
func Hash(s Spec) (string, error) {
	data, err := CanonicalBytes(s)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// RecipeHash computes the BLAKE3 digest of a recipe's canonical form
// independent of the rest of the spec, so the report's recipe_hash
// field identifies "this exact recipe" without needing the whole spec
// hash: two specs that share a recipe (e.g. a base spec and a variant
// that only changes asset_id) report the same recipe_hash.
func RecipeHash(r *Recipe) (string, error) {
	if r == nil {
		return "", nil
	}
	params, err := normalizeNumbers(r.Params, "$.recipe.params")
	if err != nil {
		return "", err
	}
	obj := map[string]interface{}{"kind": r.Kind}
	if params != nil {
		obj["params"] = params
	}
	buf := make([]byte, 0, 128)
	buf, err = encodeCanonical(buf, obj, "$.recipe")
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(buf)
	return hex.EncodeToString(sum[:]), nil
}

func toCanonicalObject(s Spec) (map[string]interface{}, error) {
	outputs := make([]interface{}, len(s.Outputs))
	for i, o := range s.Outputs {
		out := map[string]interface{}{
			"kind":   string(o.Kind),
			"format": o.Format,
			"path":   o.Path,
		}
		if o.Source != defaults["outputs[].source"] {
			out["source"] = o.Source
		}
		outputs[i] = out
	}

	obj := map[string]interface{}{
		"spec_version": int64(s.SpecVersion),
		"asset_id":     s.AssetID,
		"asset_type":   string(s.AssetType),
		"license":      s.License,
		"seed":         int64(s.Seed),
		"outputs":      outputs,
	}
	if s.Recipe != nil {
		params, err := normalizeNumbers(s.Recipe.Params, "$.recipe.params")
		if err != nil {
			return nil, err
		}
		recipe := map[string]interface{}{"kind": s.Recipe.Kind}
		if params != nil {
			recipe["params"] = params
		}
		obj["recipe"] = recipe
	}
	if s.Description != defaults["description"] {
		obj["description"] = s.Description
	}
	if s.MigrationNotes != defaults["migration_notes"] {
		obj["migration_notes"] = s.MigrationNotes
	}
	return obj, nil
}

// normalizeNumbers walks an arbitrary decoded-JSON value (as produced
// by encoding/json with UseNumber, or hand-built from Go literals) and
// converts every number to float64, rejecting non-finite values. This
// is also where json.Number values coming from Parse get resolved to
// a concrete numeric type the encoder can format canonically.
func normalizeNumbers(v interface{}, path string) (interface{}, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, &CanonicalizationFailedError{Path: path, Reason: "not a finite number: " + err.Error()}
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &CanonicalizationFailedError{Path: path, Reason: "non-finite number"}
		}
		return f, nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, &CanonicalizationFailedError{Path: path, Reason: "non-finite number"}
		}
		return x, nil
	case float32:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &CanonicalizationFailedError{Path: path, Reason: "non-finite number"}
		}
		return f, nil
	case int:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case string, bool:
		return x, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, vv := range x {
			nv, err := normalizeNumbers(vv, path+"."+k)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, vv := range x {
			nv, err := normalizeNumbers(vv, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	default:
		return nil, &CanonicalizationFailedError{Path: path, Reason: fmt.Sprintf("unrepresentable value of type %T", v)}
	}
}

// encodeCanonical appends v's canonical JSON encoding to buf.
func encodeCanonical(buf []byte, v interface{}, path string) ([]byte, error) {
	switch x := v.(type) {
	case nil:
		return append(buf, "null"...), nil
	case bool:
		if x {
			return append(buf, "true"...), nil
		}
		return append(buf, "false"...), nil
	case string:
		return encodeCanonicalString(buf, x), nil
	case int64:
		return strconv.AppendInt(buf, x, 10), nil
	case int:
		return strconv.AppendInt(buf, int64(x), 10), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, &CanonicalizationFailedError{Path: path, Reason: "non-finite number"}
		}
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.AppendInt(buf, int64(x), 10), nil
		}
		return strconv.AppendFloat(buf, x, 'g', -1, 64), nil
	case map[string]interface{}:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf = append(buf, '{')
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = encodeCanonicalString(buf, k)
			buf = append(buf, ':')
			var err error
			buf, err = encodeCanonical(buf, x[k], path+"."+k)
			if err != nil {
				return nil, err
			}
		}
		return append(buf, '}'), nil
	case []interface{}:
		buf = append(buf, '[')
		for i, e := range x {
			if i > 0 {
				buf = append(buf, ',')
			}
			var err error
			buf, err = encodeCanonical(buf, e, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
		}
		return append(buf, ']'), nil
	default:
		return nil, &CanonicalizationFailedError{Path: path, Reason: fmt.Sprintf("unrepresentable value of type %T", v)}
	}
}

// encodeCanonicalString appends the JSON-quoted, escaped form of s,
// delegating to encoding/json for the escaping rules so canonical
// output matches standard JSON string grammar exactly.
func encodeCanonicalString(buf []byte, s string) []byte {
	quoted, _ := json.Marshal(s)
	return append(buf, quoted...)
}
