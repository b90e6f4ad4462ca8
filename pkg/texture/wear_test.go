package texture

import "testing"

func TestEvalScratchesDeterministic(t *testing.T) {
	g := Graph{
		Width: 32, Height: 32, Seed: 7,
		Nodes:  []Node{{ID: "s", Op: "scratches", Params: map[string]float64{"density": 0.05, "length_min": 0.1, "length_max": 0.3, "width": 0.01, "strength": 1}}},
		Output: "s",
	}
	a, err := Evaluate(g)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Evaluate(g)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Gray.Data {
		if a.Gray.Data[i] != b.Gray.Data[i] {
			t.Fatalf("scratches not deterministic at index %d", i)
		}
	}
}

func TestEvalScratchesZeroDensityIsBlank(t *testing.T) {
	g := Graph{
		Width: 8, Height: 8, Seed: 1,
		Nodes:  []Node{{ID: "s", Op: "scratches", Params: map[string]float64{"density": 0}}},
		Output: "s",
	}
	val, err := Evaluate(g)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range val.Gray.Data {
		if v != 0 {
			t.Fatalf("expected blank field, got %v", v)
		}
	}
}

func TestEvalEdgeWearDarkensCenterLess(t *testing.T) {
	g := Graph{
		Width: 32, Height: 32, Seed: 3,
		Nodes:  []Node{{ID: "e", Op: "edge_wear", StrParams: map[string]string{"kind": "perlin"}, Params: map[string]float64{"amount": 1}}},
		Output: "e",
	}
	val, err := Evaluate(g)
	if err != nil {
		t.Fatal(err)
	}
	center := val.Gray.At(16, 16)
	corner := val.Gray.At(0, 0)
	if corner <= center {
		t.Fatalf("expected corner (%v) to wear more than center (%v)", corner, center)
	}
}

func TestEvalWeavePattern(t *testing.T) {
	g := Graph{
		Width: 16, Height: 16, Seed: 1,
		Nodes:  []Node{{ID: "w", Op: "weave", Params: map[string]float64{"thread_width": 4, "gap": 1, "depth": 0.5}}},
		Output: "w",
	}
	val, err := Evaluate(g)
	if err != nil {
		t.Fatal(err)
	}
	if val.Type != TypeGrayscale {
		t.Fatal("expected grayscale value")
	}
	seen := map[float64]bool{}
	for _, v := range val.Gray.Data {
		seen[v] = true
	}
	if len(seen) < 2 {
		t.Fatal("expected a varied weave pattern, got a flat field")
	}
}

func TestEvalBlotchesDirtAndStainsShareEvaluator(t *testing.T) {
	mk := func(op string) Graph {
		return Graph{
			Width: 16, Height: 16, Seed: 5,
			Nodes:  []Node{{ID: "d", Op: op, StrParams: map[string]string{"kind": "perlin"}, Params: map[string]float64{"threshold": 0.5, "strength": 1}}},
			Output: "d",
		}
	}
	for _, op := range []string{"dirt", "stains"} {
		val, err := Evaluate(mk(op))
		if err != nil {
			t.Fatalf("%s: %v", op, err)
		}
		if val.Type != TypeGrayscale {
			t.Fatalf("%s: expected grayscale value", op)
		}
	}
}

func TestEvalPittingBounded(t *testing.T) {
	g := Graph{
		Width: 16, Height: 16, Seed: 9,
		Nodes:  []Node{{ID: "p", Op: "pitting", Params: map[string]float64{"threshold": 0.4, "depth": 0.8}}},
		Output: "p",
	}
	val, err := Evaluate(g)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range val.Gray.Data {
		if v < 0 || v > 1 {
			t.Fatalf("pitting value out of [0,1]: %v", v)
		}
	}
}
