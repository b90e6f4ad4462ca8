package generate

import (
	"fmt"

	"github.com/speccade/speccade/pkg/texture"
)

// buildGraph decodes a texture_graph recipe's params into a
// texture.Graph, defaulting Seed to the spec's top-level seed when the
// recipe doesn't override it.
func buildGraph(params map[string]interface{}, specSeed uint32) (texture.Graph, error) {
	width := int(getFloat(params, "width", 0))
	height := int(getFloat(params, "height", 0))
	if width <= 0 || height <= 0 {
		return texture.Graph{}, &RecipeParamsInvalidError{RecipeKind: "texture_graph", Param: "width/height", Reason: "must be positive"}
	}

	seed := specSeed
	if _, ok := params["seed"]; ok {
		seed = uint32(getFloat(params, "seed", float64(specSeed)))
	}

	output := getString(params, "output", "")
	if output == "" {
		return texture.Graph{}, fmt.Errorf("generate: texture_graph requires an output node id")
	}

	rawNodes, ok := params["nodes"].([]interface{})
	if !ok || len(rawNodes) == 0 {
		return texture.Graph{}, fmt.Errorf("generate: texture_graph requires a non-empty nodes list")
	}

	nodes := make([]texture.Node, len(rawNodes))
	for i, raw := range rawNodes {
		n, err := buildNode(raw)
		if err != nil {
			return texture.Graph{}, fmt.Errorf("nodes[%d]: %w", i, err)
		}
		nodes[i] = n
	}

	return texture.Graph{Width: width, Height: height, Seed: seed, Nodes: nodes, Output: output}, nil
}

// buildTrimsheetParams decodes a texture_trimsheet_v1 recipe's params
// into texture.TrimsheetParams.
func buildTrimsheetParams(params map[string]interface{}) (texture.TrimsheetParams, error) {
	res, ok := params["resolution"].([]interface{})
	if !ok || len(res) != 2 {
		return texture.TrimsheetParams{}, &RecipeParamsInvalidError{RecipeKind: "texture_trimsheet_v1", Param: "resolution", Reason: "must be a [width, height] pair"}
	}
	width := int(toFloat(res[0]))
	height := int(toFloat(res[1]))

	padding := 2
	if _, ok := params["padding"]; ok {
		padding = int(getFloat(params, "padding", 2))
	}

	rawTiles, _ := params["tiles"].([]interface{})
	tiles := make([]texture.TrimsheetTile, 0, len(rawTiles))
	for _, raw := range rawTiles {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		tile := texture.TrimsheetTile{
			ID:      getString(m, "id", ""),
			Width:   int(getFloat(m, "width", 0)),
			Height:  int(getFloat(m, "height", 0)),
			NodeRef: getString(m, "node_ref", ""),
		}
		if tile.NodeRef == "" {
			if raw, ok := m["color"].([]interface{}); ok {
				for i := 0; i < len(raw) && i < 4; i++ {
					tile.Color[i] = toFloat(raw[i])
				}
				if len(raw) < 4 {
					tile.Color[3] = 1
				}
			}
		}
		tiles = append(tiles, tile)
	}

	return texture.TrimsheetParams{Width: width, Height: height, Padding: padding, Tiles: tiles}, nil
}

// trimsheetMetadataJSON converts a texture.TrimsheetMetadata into the
// same field shape its JSON output uses (snake_case, matching every
// other report/metadata document this pipeline emits).
func trimsheetMetadataJSON(meta texture.TrimsheetMetadata) map[string]interface{} {
	tiles := make([]map[string]interface{}, len(meta.Tiles))
	for i, t := range meta.Tiles {
		tiles[i] = map[string]interface{}{
			"id": t.ID, "u_min": t.UMin, "v_min": t.VMin,
			"u_max": t.UMax, "v_max": t.VMax,
			"width": t.Width, "height": t.Height,
		}
	}
	return map[string]interface{}{
		"atlas_width": meta.AtlasWidth, "atlas_height": meta.AtlasHeight,
		"padding": meta.Padding, "tiles": tiles,
	}
}

func buildNode(raw interface{}) (texture.Node, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return texture.Node{}, fmt.Errorf("node must be an object")
	}
	id := getString(m, "id", "")
	op := getString(m, "op", "")
	if id == "" || op == "" {
		return texture.Node{}, fmt.Errorf("node requires id and op")
	}

	var inputs []string
	if raw, ok := m["inputs"].([]interface{}); ok {
		inputs = make([]string, len(raw))
		for i, v := range raw {
			s, _ := v.(string)
			inputs[i] = s
		}
	}

	params := make(map[string]float64)
	if raw, ok := m["params"].(map[string]interface{}); ok {
		for k, v := range raw {
			params[k] = toFloat(v)
		}
	}

	strParams := make(map[string]string)
	if raw, ok := m["str_params"].(map[string]interface{}); ok {
		for k, v := range raw {
			if s, ok := v.(string); ok {
				strParams[k] = s
			}
		}
	}

	return texture.Node{
		ID:        id,
		Op:        op,
		Inputs:    inputs,
		Params:    params,
		StrParams: strParams,
		Tileable:  getBool(m, "tileable", false),
	}, nil
}
