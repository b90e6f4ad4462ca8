package noise

import (
	"math"
	"testing"
)

func TestPerlinDeterministic(t *testing.T) {
	a := NewPerlin(7)
	b := NewPerlin(7)
	for i := 0; i < 50; i++ {
		x, y := float64(i)*0.37, float64(i)*0.13
		if a.Sample(x, y) != b.Sample(x, y) {
			t.Fatalf("perlin diverged at %d", i)
		}
	}
}

func TestPerlinRange(t *testing.T) {
	p := NewPerlin(1)
	for i := 0; i < 500; i++ {
		v := p.Sample(float64(i)*0.11, float64(i)*0.29)
		if v < -1.5 || v > 1.5 {
			t.Fatalf("perlin sample %f out of expected range", v)
		}
	}
}

func TestSimplexDeterministic(t *testing.T) {
	a := NewSimplex(99)
	b := NewSimplex(99)
	for i := 0; i < 50; i++ {
		x, y := float64(i)*0.5, float64(i)*0.7
		if a.Sample(x, y) != b.Sample(x, y) {
			t.Fatalf("simplex diverged at %d", i)
		}
	}
}

func TestWorleyF1NonNegativeDistance(t *testing.T) {
	w := NewWorley(3)
	for i := 0; i < 200; i++ {
		v := w.Sample(float64(i)*0.2, float64(i)*0.05)
		if v < -1 || v > 1 {
			t.Fatalf("worley F1 sample %f out of [-1,1]", v)
		}
	}
}

func TestWorleyDistanceFunctionsDiffer(t *testing.T) {
	we := &Worley{Seed: 5, Jitter: 1.0, Distance: DistanceEuclidean, ReturnType: WorleyF1}
	wc := &Worley{Seed: 5, Jitter: 1.0, Distance: DistanceChebyshev, ReturnType: WorleyF1}
	same := true
	for i := 0; i < 40; i++ {
		x, y := float64(i)*0.31, float64(i)*0.17
		if we.Sample(x, y) != wc.Sample(x, y) {
			same = false
			break
		}
	}
	if same {
		t.Fatal("euclidean and chebyshev distance metrics produced identical output")
	}
}

func TestGaborBounded(t *testing.T) {
	g := NewGabor(11)
	for i := 0; i < 300; i++ {
		v := g.Sample(float64(i)*0.07, float64(i)*0.19)
		if v < -1 || v > 1 {
			t.Fatalf("gabor sample %f outside tanh-bounded range", v)
		}
	}
}

func TestGaborDeterministic(t *testing.T) {
	a := NewGabor(42)
	b := NewGabor(42)
	for i := 0; i < 50; i++ {
		x, y := float64(i)*0.23, float64(i)*0.41
		if a.Sample(x, y) != b.Sample(x, y) {
			t.Fatalf("gabor diverged at %d", i)
		}
	}
}

func TestFBMNormalizedAgainstBase(t *testing.T) {
	p := NewPerlin(4)
	f := NewFBM(p, 4, 2.0, 0.5)
	for i := 0; i < 100; i++ {
		v := f.Sample(float64(i)*0.05, float64(i)*0.09)
		if math.IsNaN(v) || v < -2 || v > 2 {
			t.Fatalf("fbm sample %f out of expected range", v)
		}
	}
}

func TestFBMSingleOctaveMatchesBase(t *testing.T) {
	p := NewPerlin(9)
	f := NewFBM(p, 1, 2.0, 0.5)
	for i := 0; i < 20; i++ {
		x, y := float64(i)*0.3, float64(i)*0.6
		if f.Sample(x, y) != p.Sample(x, y) {
			t.Fatalf("single-octave fbm should equal base field exactly")
		}
	}
}

func TestTileableWrapsExactly(t *testing.T) {
	p := NewPerlin(21)
	tile := &Tileable{Base: p, Period: 8}
	for i := 0; i < 8; i++ {
		y := float64(i) * 0.37
		left := tile.Sample(0, y)
		right := tile.Sample(8, y)
		if math.Abs(left-right) > 1e-9 {
			t.Fatalf("tileable field did not wrap on x axis: %f vs %f", left, right)
		}
	}
}
