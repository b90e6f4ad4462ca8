package texture

import "testing"

func TestThresholdSplitsAtLevel(t *testing.T) {
	g := Graph{
		Width: 2, Height: 1, Seed: 1,
		Nodes: []Node{
			{ID: "c", Op: "constant", Params: map[string]float64{"value": 0.3}},
			{ID: "t", Op: "threshold", Inputs: []string{"c"}, Params: map[string]float64{"threshold": 0.5}},
		},
		Output: "t",
	}
	val, err := Evaluate(g)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range val.Gray.Data {
		if v != 0 {
			t.Fatalf("expected all-zero below threshold, got %v", v)
		}
	}
}

func TestBlurSmoothsConstant(t *testing.T) {
	g := constantGraph(4, 4, 0.75)
	g.Nodes = append(g.Nodes, Node{ID: "b", Op: "blur", Inputs: []string{"c"}, Params: map[string]float64{"radius": 1}})
	g.Output = "b"
	val, err := Evaluate(g)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range val.Gray.Data {
		if v != 0.75 {
			t.Fatalf("blurring a constant field should be a no-op, got %v", v)
		}
	}
}

func TestDilateGrowsBrightRegion(t *testing.T) {
	g := Graph{
		Width: 5, Height: 5, Seed: 1,
		Nodes: []Node{
			{ID: "c", Op: "constant", Params: map[string]float64{"value": 0}},
			{ID: "d", Op: "dilate", Inputs: []string{"c"}, Params: map[string]float64{"radius": 1}},
		},
		Output: "d",
	}
	val, err := Evaluate(g)
	if err != nil {
		t.Fatal(err)
	}
	gray := val.Gray
	gray.Set(2, 2, 1)
	dilated, err := evalErodeDilate(g, g.Nodes[1], []*Value{{Type: TypeGrayscale, Gray: gray}}, true)
	if err != nil {
		t.Fatal(err)
	}
	if dilated.Gray.At(1, 2) != 1 {
		t.Fatal("dilate should spread the bright pixel to its neighbors")
	}
}

func TestLerpBlendsByFactor(t *testing.T) {
	a := NewGrayscale(2, 1)
	b := NewGrayscale(2, 1)
	factor := NewGrayscale(2, 1)
	for i := range b.Data {
		b.Data[i] = 1
		factor.Data[i] = 0.25
	}
	g := Graph{Width: 2, Height: 1}
	out, err := evalLerp(g, Node{ID: "l", Op: "lerp"}, []*Value{
		{Type: TypeGrayscale, Gray: a},
		{Type: TypeGrayscale, Gray: b},
		{Type: TypeGrayscale, Gray: factor},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range out.Gray.Data {
		if v != 0.25 {
			t.Fatalf("expected 0.25, got %v", v)
		}
	}
}

func TestWarpIdentityWithZeroDisplacement(t *testing.T) {
	source := NewGrayscale(4, 4)
	for i := range source.Data {
		source.Data[i] = float64(i) / float64(len(source.Data))
	}
	dx := NewGrayscale(4, 4)
	dy := NewGrayscale(4, 4)
	for i := range dx.Data {
		dx.Data[i] = 0.5 // maps to zero displacement
		dy.Data[i] = 0.5
	}
	g := Graph{Width: 4, Height: 4}
	out, err := evalWarp(g, Node{ID: "w", Op: "warp", Params: map[string]float64{"strength": 1}}, []*Value{
		{Type: TypeGrayscale, Gray: source},
		{Type: TypeGrayscale, Gray: dx},
		{Type: TypeGrayscale, Gray: dy},
	})
	if err != nil {
		t.Fatal(err)
	}
	for i := range out.Gray.Data {
		diff := out.Gray.Data[i] - source.Data[i]
		if diff < -1e-9 || diff > 1e-9 {
			t.Fatalf("zero displacement should reproduce the source at %d: got %v want %v", i, out.Gray.Data[i], source.Data[i])
		}
	}
}
