package texture

import (
	"fmt"
)

// TrimsheetTile is one tile request for a trimsheet atlas: either a
// flat color fill or a reference to a node already evaluated in an
// auxiliary graph (EvaluateAll's result map).
type TrimsheetTile struct {
	ID      string
	Width   int
	Height  int
	Color   [4]float64 // used when NodeRef == ""
	NodeRef string
}

// TrimsheetParams is the decoded params of a texture_trimsheet_v1
// recipe: pack every tile into one atlas no larger than Width x
// Height, separated by Padding pixels of gutter on every side.
type TrimsheetParams struct {
	Width   int
	Height  int
	Padding int
	Tiles   []TrimsheetTile
}

// TileUV is the normalized placement of one packed tile, the metadata
// a caller needs to address it inside the finished atlas.
type TileUV struct {
	ID               string
	UMin, VMin       float64
	UMax, VMax       float64
	Width, Height    int
}

// TrimsheetMetadata is the full placement record for a packed atlas.
type TrimsheetMetadata struct {
	AtlasWidth  int
	AtlasHeight int
	Padding     int
	Tiles       []TileUV
}

// TrimsheetError reports a tile that could not be packed: either it
// doesn't fit in the declared atlas at all, or its node_ref names a
// node the caller's graph evaluation never produced.
type TrimsheetError struct {
	TileID string
	Reason string
}

func (e *TrimsheetError) Error() string {
	return fmt.Sprintf("texture: trimsheet tile %q: %s", e.TileID, e.Reason)
}

// PackTrimsheet packs params.Tiles into a single RGBA atlas using
// deterministic shelf packing: tiles are placed left to right in
// declaration order, wrapping to a new shelf (row) whenever the
// current one would overflow the atlas width, with each shelf's
// height set by its tallest tile so far. nodeValues resolves any tile
// whose source is a node_ref rather than a flat color; it may be nil
// if no tile references one.
func PackTrimsheet(params TrimsheetParams, nodeValues map[string]*Value) (*Color, TrimsheetMetadata, error) {
	if params.Width <= 0 || params.Height <= 0 {
		return nil, TrimsheetMetadata{}, fmt.Errorf("texture: trimsheet requires a positive resolution")
	}
	padding := params.Padding
	if padding < 0 {
		padding = 0
	}

	atlas := NewColor(params.Width, params.Height)
	meta := TrimsheetMetadata{AtlasWidth: params.Width, AtlasHeight: params.Height, Padding: padding}

	shelfX := padding
	shelfY := padding
	shelfHeight := 0

	for _, tile := range params.Tiles {
		if tile.Width <= 0 || tile.Height <= 0 {
			return nil, TrimsheetMetadata{}, &TrimsheetError{TileID: tile.ID, Reason: "width/height must be positive"}
		}
		if shelfX+tile.Width+padding > params.Width {
			shelfX = padding
			shelfY += shelfHeight + padding
			shelfHeight = 0
		}
		if shelfX+tile.Width+padding > params.Width || shelfY+tile.Height+padding > params.Height {
			return nil, TrimsheetMetadata{}, &TrimsheetError{TileID: tile.ID, Reason: "does not fit in the declared atlas"}
		}

		if err := blitTile(atlas, tile, shelfX, shelfY, nodeValues); err != nil {
			return nil, TrimsheetMetadata{}, err
		}

		meta.Tiles = append(meta.Tiles, TileUV{
			ID:     tile.ID,
			UMin:   float64(shelfX) / float64(params.Width),
			VMin:   float64(shelfY) / float64(params.Height),
			UMax:   float64(shelfX+tile.Width) / float64(params.Width),
			VMax:   float64(shelfY+tile.Height) / float64(params.Height),
			Width:  tile.Width,
			Height: tile.Height,
		})

		shelfX += tile.Width + padding
		if tile.Height > shelfHeight {
			shelfHeight = tile.Height
		}
	}

	return atlas, meta, nil
}

func blitTile(atlas *Color, tile TrimsheetTile, x0, y0 int, nodeValues map[string]*Value) error {
	if tile.NodeRef != "" {
		src, ok := nodeValues[tile.NodeRef]
		if !ok {
			return &TrimsheetError{TileID: tile.ID, Reason: fmt.Sprintf("node_ref %q not found", tile.NodeRef)}
		}
		return blitNode(atlas, src, tile, x0, y0)
	}
	r, g, b, a := tile.Color[0], tile.Color[1], tile.Color[2], tile.Color[3]
	for y := 0; y < tile.Height; y++ {
		for x := 0; x < tile.Width; x++ {
			atlas.R.Set(x0+x, y0+y, r)
			atlas.G.Set(x0+x, y0+y, g)
			atlas.B.Set(x0+x, y0+y, b)
			atlas.A.Set(x0+x, y0+y, a)
		}
	}
	return nil
}

func blitNode(atlas *Color, src *Value, tile TrimsheetTile, x0, y0 int) error {
	switch src.Type {
	case TypeColor:
		for y := 0; y < tile.Height; y++ {
			sy := y * src.Color.Height / tile.Height
			for x := 0; x < tile.Width; x++ {
				sx := x * src.Color.Width / tile.Width
				atlas.R.Set(x0+x, y0+y, src.Color.R.At(sx, sy))
				atlas.G.Set(x0+x, y0+y, src.Color.G.At(sx, sy))
				atlas.B.Set(x0+x, y0+y, src.Color.B.At(sx, sy))
				atlas.A.Set(x0+x, y0+y, src.Color.A.At(sx, sy))
			}
		}
	case TypeGrayscale:
		for y := 0; y < tile.Height; y++ {
			sy := y * src.Gray.Height / tile.Height
			for x := 0; x < tile.Width; x++ {
				sx := x * src.Gray.Width / tile.Width
				v := src.Gray.At(sx, sy)
				atlas.R.Set(x0+x, y0+y, v)
				atlas.G.Set(x0+x, y0+y, v)
				atlas.B.Set(x0+x, y0+y, v)
				atlas.A.Set(x0+x, y0+y, 1)
			}
		}
	default:
		return &TrimsheetError{TileID: tile.ID, Reason: "node_ref resolved to an unknown value type"}
	}
	return nil
}
