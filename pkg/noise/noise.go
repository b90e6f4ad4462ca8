// Package noise implements the deterministic 2D noise fields used by the
// texture graph and by synthesis layers that want organic modulation:
// Perlin, simplex, Worley/cellular, Gabor, and an FBM aggregator over any
// of them.
package noise

import (
	"math"

	"github.com/speccade/speccade/pkg/rng"
)

// Field2D is a deterministic, stateless (after construction) 2D noise
// source: the same (x, y) always yields the same value for a given
// field instance.
type Field2D interface {
	Sample(x, y float64) float64
}

func fastFloor(x float64) int {
	ix := int(x)
	if x < float64(ix) {
		return ix - 1
	}
	return ix
}

// splitmix64 is a fast, well-distributed mixing function used to turn
// lattice coordinates plus a seed into pseudo-random bits.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

func hashCell(seed uint32, cx, cy int32, stream uint64) uint64 {
	x := uint64(seed)
	x ^= uint64(uint32(cx)) * 0x9e3779b185ebca87
	x ^= uint64(uint32(cy)) * 0xc2b2ae3d27d4eb4f
	x ^= stream * 0x165667b19e3779f9
	return splitmix64(x)
}

func hashUnit(seed uint32, cx, cy int32, stream uint64) float64 {
	h := hashCell(seed, cx, cy, stream)
	return float64(uint32(h>>32)) / 4294967295.0
}

// ---- Perlin ----

// Perlin is a classic gradient-noise field seeded by a 256-entry
// permutation table shuffled with the package RNG.
type Perlin struct {
	perm [512]int
}

var perlinGradients = [8][2]float64{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{0.70710678, 0.70710678}, {-0.70710678, 0.70710678},
	{0.70710678, -0.70710678}, {-0.70710678, -0.70710678},
}

// NewPerlin builds a Perlin field from a 32-bit seed.
func NewPerlin(seed uint32) *Perlin {
	p := &Perlin{}
	var table [256]int
	for i := range table {
		table[i] = i
	}
	r := rng.New(seed)
	for i := 255; i > 0; i-- {
		j := r.IntRange(0, i)
		table[i], table[j] = table[j], table[i]
	}
	for i := 0; i < 512; i++ {
		p.perm[i] = table[i&255]
	}
	return p
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func (p *Perlin) gradAt(ix, iy int) [2]float64 {
	idx := p.perm[(p.perm[ix&255]+iy)&511] & 7
	return perlinGradients[idx]
}

// Sample returns gradient noise in roughly [-1, 1].
func (p *Perlin) Sample(x, y float64) float64 {
	ix0, iy0 := fastFloor(x), fastFloor(y)
	fx, fy := x-float64(ix0), y-float64(iy0)

	g00 := p.gradAt(ix0, iy0)
	g10 := p.gradAt(ix0+1, iy0)
	g01 := p.gradAt(ix0, iy0+1)
	g11 := p.gradAt(ix0+1, iy0+1)

	d00 := g00[0]*fx + g00[1]*fy
	d10 := g10[0]*(fx-1) + g10[1]*fy
	d01 := g01[0]*fx + g01[1]*(fy-1)
	d11 := g11[0]*(fx-1) + g11[1]*(fy-1)

	u, v := fade(fx), fade(fy)
	return lerp(v, lerp(u, d00, d10), lerp(u, d01, d11)) * 1.41421356
}

// ---- Simplex ----

// Simplex is a 2D simplex noise field, seeded the same way as Perlin.
type Simplex struct {
	perm [512]int
}

const (
	simplexF2 = 0.36602540378 // (sqrt(3)-1)/2
	simplexG2 = 0.21132486541 // (3-sqrt(3))/6
)

var simplexGrad3 = [12][2]float64{
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
	{1, 0}, {-1, 0}, {1, 0}, {-1, 0},
	{0, 1}, {0, -1}, {0, 1}, {0, -1},
}

// NewSimplex builds a Simplex field from a 32-bit seed.
func NewSimplex(seed uint32) *Simplex {
	s := &Simplex{}
	var table [256]int
	for i := range table {
		table[i] = i
	}
	r := rng.New(seed ^ 0x5EED5EED)
	for i := 255; i > 0; i-- {
		j := r.IntRange(0, i)
		table[i], table[j] = table[j], table[i]
	}
	for i := 0; i < 512; i++ {
		s.perm[i] = table[i&255]
	}
	return s
}

func (s *Simplex) gradIndex(ix, iy int) int {
	return s.perm[(s.perm[ix&255]+iy)&511] % 12
}

// Sample returns simplex noise scaled to approximately [-1, 1].
func (s *Simplex) Sample(x, y float64) float64 {
	sum := (x + y) * simplexF2
	i := fastFloor(x + sum)
	j := fastFloor(y + sum)

	t := float64(i+j) * simplexG2
	x0o := float64(i) - t
	y0o := float64(j) - t
	x0 := x - x0o
	y0 := y - y0o

	var i1, j1 int
	if x0 > y0 {
		i1, j1 = 1, 0
	} else {
		i1, j1 = 0, 1
	}

	x1 := x0 - float64(i1) + simplexG2
	y1 := y0 - float64(j1) + simplexG2
	x2 := x0 - 1 + 2*simplexG2
	y2 := y0 - 1 + 2*simplexG2

	n0 := contribution(s, i, j, x0, y0)
	n1 := contribution(s, i+i1, j+j1, x1, y1)
	n2 := contribution(s, i+1, j+1, x2, y2)

	return 70.0 * (n0 + n1 + n2)
}

func contribution(s *Simplex, i, j int, x, y float64) float64 {
	t := 0.5 - x*x - y*y
	if t < 0 {
		return 0
	}
	t *= t
	g := simplexGrad3[s.gradIndex(i, j)]
	return t * t * (g[0]*x + g[1]*y)
}

// ---- Worley / cellular ----

// DistanceFunc selects the metric used by Worley noise.
type DistanceFunc int

const (
	DistanceEuclidean DistanceFunc = iota
	DistanceManhattan
	DistanceChebyshev
)

// WorleyReturn selects what a Worley field returns.
type WorleyReturn int

const (
	WorleyF1 WorleyReturn = iota
	WorleyF2
	WorleyF2MinusF1
	WorleyF1PlusF2Half
)

// Worley is a cellular noise field: each integer lattice cell owns one
// jittered feature point, derived purely from a hash of (seed, cell).
type Worley struct {
	Seed       uint32
	Jitter     float64
	Distance   DistanceFunc
	ReturnType WorleyReturn
}

// NewWorley builds a Worley field with standard defaults (full jitter,
// Euclidean distance, F1).
func NewWorley(seed uint32) *Worley {
	return &Worley{Seed: seed, Jitter: 1.0, Distance: DistanceEuclidean, ReturnType: WorleyF1}
}

func (w *Worley) cellPoint(cx, cy int32) (float64, float64) {
	rx := hashUnit(w.Seed, cx, cy, 1)
	ry := hashUnit(w.Seed, cx, cy, 2)
	px := float64(cx) + 0.5 + (rx-0.5)*w.Jitter
	py := float64(cy) + 0.5 + (ry-0.5)*w.Jitter
	return px, py
}

func (w *Worley) distance(x1, y1, x2, y2 float64) float64 {
	dx, dy := x1-x2, y1-y2
	switch w.Distance {
	case DistanceManhattan:
		return math.Abs(dx) + math.Abs(dy)
	case DistanceChebyshev:
		return math.Max(math.Abs(dx), math.Abs(dy))
	default:
		return math.Sqrt(dx*dx + dy*dy)
	}
}

// Sample evaluates the configured return type, shifted to roughly
// [-1, 1].
func (w *Worley) Sample(x, y float64) float64 {
	cx0, cy0 := fastFloor(x), fastFloor(y)
	f1, f2 := math.Inf(1), math.Inf(1)

	for cy := int32(cy0 - 2); cy <= int32(cy0+2); cy++ {
		for cx := int32(cx0 - 2); cx <= int32(cx0+2); cx++ {
			px, py := w.cellPoint(cx, cy)
			d := w.distance(x, y, px, py)
			if d < f1 {
				f2 = f1
				f1 = d
			} else if d < f2 {
				f2 = d
			}
		}
	}

	var raw float64
	switch w.ReturnType {
	case WorleyF2:
		raw = f2
	case WorleyF2MinusF1:
		raw = f2 - f1
	case WorleyF1PlusF2Half:
		raw = (f1 + f2) / 2
	default:
		raw = f1
	}
	return raw*2 - 1
}

// ---- Gabor ----

// Gabor is a sparse-convolution Gabor noise field, good for anisotropic
// fiber-like detail. Neighborhood support is bounded to radius-2 cells.
type Gabor struct {
	Seed            uint32
	Frequency       float64
	Sigma           float64
	ImpulsesPerCell int
}

// NewGabor builds a Gabor field with deterministic defaults.
func NewGabor(seed uint32) *Gabor {
	return &Gabor{Seed: seed, Frequency: 0.9, Sigma: 1.2, ImpulsesPerCell: 3}
}

// Sample returns Gabor noise passed through tanh for a bounded range.
func (g *Gabor) Sample(x, y float64) float64 {
	cx0, cy0 := fastFloor(x), fastFloor(y)
	var sum, weightSum float64

	for cy := int32(cy0 - 1); cy <= int32(cy0+1); cy++ {
		for cx := int32(cx0 - 1); cx <= int32(cx0+1); cx++ {
			for k := 0; k < g.ImpulsesPerCell; k++ {
				base := uint64(k) * 8
				ox := hashUnit(g.Seed, cx, cy, base+1)
				oy := hashUnit(g.Seed, cx, cy, base+2)
				theta := hashUnit(g.Seed, cx, cy, base+3) * 2 * math.Pi
				phase := hashUnit(g.Seed, cx, cy, base+4) * 2 * math.Pi
				amp := 1.0
				if hashCell(g.Seed, cx, cy, base+5)&1 != 0 {
					amp = -1.0
				}

				px := float64(cx) + ox
				py := float64(cy) + oy
				dx := x - px
				dy := y - py
				r2 := dx*dx + dy*dy
				if r2 > 4.0 {
					continue
				}

				dir := dx*math.Cos(theta) + dy*math.Sin(theta)
				envelope := math.Exp(-(math.Pi * g.Sigma * g.Sigma) * r2)
				carrier := math.Cos(2*math.Pi*g.Frequency*dir + phase)
				sum += amp * envelope * carrier
				weightSum += math.Abs(envelope)
			}
		}
	}

	if weightSum <= 1e-12 {
		return 0
	}
	return math.Tanh(sum / math.Max(weightSum, 1e-9))
}

// ---- FBM ----

// FBM sums octaves of a base field at geometrically increasing frequency
// and decreasing amplitude, normalized by total amplitude.
type FBM struct {
	Base       Field2D
	Octaves    int
	Lacunarity float64
	Persistence float64
}

// NewFBM builds an FBM aggregator over base with the given parameters.
func NewFBM(base Field2D, octaves int, lacunarity, persistence float64) *FBM {
	if octaves < 1 {
		octaves = 1
	}
	return &FBM{Base: base, Octaves: octaves, Lacunarity: lacunarity, Persistence: persistence}
}

// Sample evaluates the fractal sum, normalized so the result stays
// within the base field's own range.
func (f *FBM) Sample(x, y float64) float64 {
	var sum, amplitude, freq, norm float64
	amplitude = 1.0
	freq = 1.0
	for o := 0; o < f.Octaves; o++ {
		sum += f.Base.Sample(x*freq, y*freq) * amplitude
		norm += amplitude
		amplitude *= f.Persistence
		freq *= f.Lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

// Tileable wraps a Field2D so that sampling across a [0, w) x [0, h)
// window wraps exactly: the left column equals the right column and the
// top row equals the bottom row, by periodically summing the base field
// at integer-period offsets (a standard domain-repeat technique). period
// must be a positive integer number of noise-space units per texture
// axis.
type Tileable struct {
	Base   Field2D
	Period float64
}

// Sample first wraps (x, y) into a single [0, Period) x [0, Period) tile,
// then blends the base field with three period-shifted copies so the
// seam is smooth. Wrapping before sampling, rather than after, is what
// makes Sample(0, y) and Sample(Period, y) land on the exact same
// wrapped coordinate and therefore return identical values.
func (t *Tileable) Sample(x, y float64) float64 {
	p := t.Period
	if p <= 0 {
		return t.Base.Sample(x, y)
	}
	xw := math.Mod(x, p)
	if xw < 0 {
		xw += p
	}
	yw := math.Mod(y, p)
	if yw < 0 {
		yw += p
	}
	u := xw / p
	v := yw / p

	s00 := t.Base.Sample(xw, yw)
	s10 := t.Base.Sample(xw-p, yw)
	s01 := t.Base.Sample(xw, yw-p)
	s11 := t.Base.Sample(xw-p, yw-p)

	a := lerp(u, s00, s10)
	b := lerp(u, s01, s11)
	return lerp(v, a, b)
}
