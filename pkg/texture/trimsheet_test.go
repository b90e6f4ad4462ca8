package texture

import "testing"

func TestPackTrimsheetColorTiles(t *testing.T) {
	params := TrimsheetParams{
		Width: 128, Height: 64, Padding: 2,
		Tiles: []TrimsheetTile{
			{ID: "grass", Width: 32, Height: 32, Color: [4]float64{0.2, 0.6, 0.2, 1}},
			{ID: "stone", Width: 32, Height: 32, Color: [4]float64{0.5, 0.5, 0.5, 1}},
		},
	}
	atlas, meta, err := PackTrimsheet(params, nil)
	if err != nil {
		t.Fatal(err)
	}
	if meta.AtlasWidth != 128 || meta.AtlasHeight != 64 {
		t.Fatalf("unexpected atlas size %dx%d", meta.AtlasWidth, meta.AtlasHeight)
	}
	if len(meta.Tiles) != 2 {
		t.Fatalf("expected 2 packed tiles, got %d", len(meta.Tiles))
	}
	if meta.Tiles[0].ID != "grass" || meta.Tiles[1].ID != "stone" {
		t.Fatalf("unexpected tile order: %+v", meta.Tiles)
	}
	// grass sits at the padding origin.
	if got := atlas.R.At(2, 2); got != 0.2 {
		t.Fatalf("expected grass tile color at origin, got %v", got)
	}
}

func TestPackTrimsheetWrapsToNewShelf(t *testing.T) {
	params := TrimsheetParams{
		Width: 40, Height: 128, Padding: 0,
		Tiles: []TrimsheetTile{
			{ID: "a", Width: 32, Height: 16, Color: [4]float64{1, 0, 0, 1}},
			{ID: "b", Width: 32, Height: 16, Color: [4]float64{0, 1, 0, 1}},
		},
	}
	_, meta, err := PackTrimsheet(params, nil)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Tiles[0].VMin == meta.Tiles[1].VMin {
		t.Fatal("expected second tile to wrap onto a new shelf")
	}
}

func TestPackTrimsheetRejectsOversizedTile(t *testing.T) {
	params := TrimsheetParams{
		Width: 16, Height: 16, Padding: 0,
		Tiles: []TrimsheetTile{{ID: "big", Width: 32, Height: 32, Color: [4]float64{1, 1, 1, 1}}},
	}
	_, _, err := PackTrimsheet(params, nil)
	if err == nil {
		t.Fatal("expected an error for an oversized tile")
	}
}

func TestPackTrimsheetNodeRef(t *testing.T) {
	gray := NewGrayscale(4, 4)
	for i := range gray.Data {
		gray.Data[i] = 0.75
	}
	values := map[string]*Value{"noise_output": {Type: TypeGrayscale, Gray: gray}}
	params := TrimsheetParams{
		Width: 16, Height: 16, Padding: 0,
		Tiles: []TrimsheetTile{{ID: "procedural", Width: 8, Height: 8, NodeRef: "noise_output"}},
	}
	atlas, _, err := PackTrimsheet(params, values)
	if err != nil {
		t.Fatal(err)
	}
	if got := atlas.R.At(0, 0); got != 0.75 {
		t.Fatalf("expected sampled node value 0.75, got %v", got)
	}
}

func TestPackTrimsheetMissingNodeRef(t *testing.T) {
	params := TrimsheetParams{
		Width: 16, Height: 16, Padding: 0,
		Tiles: []TrimsheetTile{{ID: "procedural", Width: 8, Height: 8, NodeRef: "missing"}},
	}
	_, _, err := PackTrimsheet(params, nil)
	if err == nil {
		t.Fatal("expected an error for an unresolved node_ref")
	}
}
