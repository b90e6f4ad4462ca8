package texture

import (
	"math"

	"github.com/speccade/speccade/pkg/rng"
)

// evalNode dispatches one graph node to its implementation based on
// Op, after checking that its inputs carry the value types the
// operation expects.
func evalNode(g Graph, n Node, inputs []*Value) (*Value, error) {
	switch n.Op {
	case "constant":
		return evalConstant(g, n)
	case "noise":
		return evalNoiseOp(g, n)
	case "gradient":
		return evalGradient(g, n)
	case "stripes":
		return evalStripes(g, n)
	case "checkerboard":
		return evalCheckerboard(g, n)
	case "reaction_diffusion":
		return evalReactionDiffusion(g, n)
	case "add", "subtract", "multiply", "min", "max", "screen":
		return evalBinaryGray(g, n, inputs)
	case "invert", "clamp", "gain", "posterize":
		return evalUnaryGray(g, n, inputs)
	case "to_grayscale":
		return evalToGrayscale(n, inputs)
	case "color_ramp":
		return evalColorRamp(g, n, inputs)
	case "palette":
		return evalPalette(g, n, inputs)
	case "compose_rgba":
		return evalComposeRGBA(n, inputs)
	case "normal_from_height":
		return evalNormalFromHeight(n, inputs)
	case "threshold", "blur", "erode", "dilate", "warp", "lerp":
		return evalMorphology(g, n, inputs)
	case "scratches", "edge_wear", "dirt", "stains", "pitting", "weave", "color_variation":
		return evalWear(g, n)
	default:
		return nil, &GraphError{NodeID: n.ID, Err: errUnknownOp(n.Op)}
	}
}

func errUnknownOp(op string) error {
	return &unknownOpError{op: op}
}

type unknownOpError struct{ op string }

func (e *unknownOpError) Error() string { return "unknown texture op: " + e.op }

func requireGray(n Node, v *Value, argIndex int) (*Grayscale, error) {
	if v.Type != TypeGrayscale {
		return nil, &TypeMismatchError{NodeID: n.ID, Want: TypeGrayscale, Got: v.Type}
	}
	return v.Gray, nil
}

func requireColor(n Node, v *Value) (*Color, error) {
	if v.Type != TypeColor {
		return nil, &TypeMismatchError{NodeID: n.ID, Want: TypeColor, Got: v.Type}
	}
	return v.Color, nil
}

func evalConstant(g Graph, n Node) (*Value, error) {
	field := newFieldFor(g)
	val := n.Params["value"]
	for i := range field.Data {
		field.Data[i] = val
	}
	return &Value{Type: TypeGrayscale, Gray: field}, nil
}

func evalNoiseOp(g Graph, n Node) (*Value, error) {
	seed := rng.DeriveComponentSeed(g.Seed, "texture:"+n.ID)
	src := sourceFor(g, n, seed)
	scale := n.Params["scale"]
	if scale == 0 {
		scale = 1
	}
	field := newFieldFor(g)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			v := src.Sample(float64(x)*scale/float64(g.Width), float64(y)*scale/float64(g.Height))
			field.Set(x, y, v*0.5+0.5)
		}
	}
	return &Value{Type: TypeGrayscale, Gray: field}, nil
}

func evalGradient(g Graph, n Node) (*Value, error) {
	angle := n.Params["angle_degrees"] * math.Pi / 180
	dx, dy := math.Cos(angle), math.Sin(angle)
	field := newFieldFor(g)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			u := float64(x) / float64(g.Width)
			v := float64(y) / float64(g.Height)
			t := (u*dx + v*dy + 1) / 2
			field.Set(x, y, clampUnit(t))
		}
	}
	return &Value{Type: TypeGrayscale, Gray: field}, nil
}

func evalStripes(g Graph, n Node) (*Value, error) {
	frequency := n.Params["frequency"]
	if frequency == 0 {
		frequency = 8
	}
	field := newFieldFor(g)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			u := float64(x) / float64(g.Width)
			field.Set(x, y, (math.Sin(2*math.Pi*frequency*u)+1)/2)
		}
	}
	return &Value{Type: TypeGrayscale, Gray: field}, nil
}

func evalCheckerboard(g Graph, n Node) (*Value, error) {
	cells := int(n.Params["cells"])
	if cells < 1 {
		cells = 8
	}
	field := newFieldFor(g)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			cx := x * cells / g.Width
			cy := y * cells / g.Height
			if (cx+cy)%2 == 0 {
				field.Set(x, y, 1)
			}
		}
	}
	return &Value{Type: TypeGrayscale, Gray: field}, nil
}

// evalReactionDiffusion runs a fixed number of Gray-Scott steps seeded
// by a per-node RNG, producing the characteristic mottled/vein pattern
// without any image input.
func evalReactionDiffusion(g Graph, n Node) (*Value, error) {
	seed := rng.DeriveComponentSeed(g.Seed, "texture:"+n.ID)
	r := rng.New(seed)

	w, h := g.Width, g.Height
	a := make([]float64, w*h)
	b := make([]float64, w*h)
	for i := range a {
		a[i] = 1
	}
	seedPatches := 6
	for p := 0; p < seedPatches; p++ {
		cx := r.IntRange(0, w-1)
		cy := r.IntRange(0, h-1)
		for dy := -3; dy <= 3; dy++ {
			for dx := -3; dx <= 3; dx++ {
				x, y := wrapIdx(cx+dx, w), wrapIdx(cy+dy, h)
				b[y*w+x] = 1
			}
		}
	}

	feed := n.Params["feed"]
	if feed == 0 {
		feed = 0.037
	}
	kill := n.Params["kill"]
	if kill == 0 {
		kill = 0.06
	}
	steps := int(n.Params["steps"])
	if steps <= 0 {
		steps = 200
	}
	const diffA, diffB = 1.0, 0.5

	next := make([]float64, w*h)
	nextB := make([]float64, w*h)
	for s := 0; s < steps; s++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				lapA := laplacian(a, w, h, x, y)
				lapB := laplacian(b, w, h, x, y)
				av, bv := a[i], b[i]
				reaction := av * bv * bv
				next[i] = av + (diffA*lapA - reaction + feed*(1-av)) * 1.0
				nextB[i] = bv + (diffB*lapB + reaction - (kill+feed)*bv) * 1.0
			}
		}
		a, next = next, a
		b, nextB = nextB, b
	}

	field := &Grayscale{Width: w, Height: h, Data: a}
	for i := range field.Data {
		field.Data[i] = clampUnit(1 - field.Data[i])
	}
	if n.Tileable {
		// Already periodic by construction since the Laplacian wraps.
	}
	return &Value{Type: TypeGrayscale, Gray: field}, nil
}

func wrapIdx(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func laplacian(field []float64, w, h, x, y int) float64 {
	center := field[y*w+x]
	up := field[wrapIdx(y-1, h)*w+x]
	down := field[wrapIdx(y+1, h)*w+x]
	left := field[y*w+wrapIdx(x-1, w)]
	right := field[y*w+wrapIdx(x+1, w)]
	return up + down + left + right - 4*center
}

func evalBinaryGray(g Graph, n Node, inputs []*Value) (*Value, error) {
	if len(inputs) != 2 {
		return nil, &unknownOpError{op: "binary op requires exactly two inputs"}
	}
	a, err := requireGray(n, inputs[0], 0)
	if err != nil {
		return nil, err
	}
	b, err := requireGray(n, inputs[1], 1)
	if err != nil {
		return nil, err
	}
	out := newFieldFor(g)
	for i := range out.Data {
		av, bv := a.Data[i], b.Data[i]
		switch n.Op {
		case "add":
			out.Data[i] = clampUnit(av + bv)
		case "subtract":
			out.Data[i] = clampUnit(av - bv)
		case "multiply":
			out.Data[i] = av * bv
		case "min":
			out.Data[i] = math.Min(av, bv)
		case "max":
			out.Data[i] = math.Max(av, bv)
		case "screen":
			out.Data[i] = 1 - (1-av)*(1-bv)
		}
	}
	return &Value{Type: TypeGrayscale, Gray: out}, nil
}

func evalUnaryGray(g Graph, n Node, inputs []*Value) (*Value, error) {
	if len(inputs) != 1 {
		return nil, &unknownOpError{op: "unary op requires exactly one input"}
	}
	a, err := requireGray(n, inputs[0], 0)
	if err != nil {
		return nil, err
	}
	out := newFieldFor(g)
	levels := n.Params["levels"]
	gain := n.Params["gain"]
	if gain == 0 {
		gain = 1
	}
	for i, v := range a.Data {
		switch n.Op {
		case "invert":
			out.Data[i] = 1 - v
		case "clamp":
			out.Data[i] = clampUnit(v)
		case "gain":
			out.Data[i] = clampUnit(math.Pow(v, 1/gain))
		case "posterize":
			if levels < 2 {
				levels = 4
			}
			out.Data[i] = math.Round(v*(levels-1)) / (levels - 1)
		}
	}
	return &Value{Type: TypeGrayscale, Gray: out}, nil
}

func evalToGrayscale(n Node, inputs []*Value) (*Value, error) {
	c, err := requireColor(n, inputs[0])
	if err != nil {
		return nil, err
	}
	out := NewGrayscale(c.Width, c.Height)
	for i := range out.Data {
		out.Data[i] = 0.2126*c.R.Data[i] + 0.7152*c.G.Data[i] + 0.0722*c.B.Data[i]
	}
	return &Value{Type: TypeGrayscale, Gray: out}, nil
}

// ColorStop is one control point in a color_ramp node.
type ColorStop struct {
	Position   float64
	R, G, B, A float64
}

func evalColorRamp(g Graph, n Node, inputs []*Value) (*Value, error) {
	gray, err := requireGray(n, inputs[0], 0)
	if err != nil {
		return nil, err
	}
	stops := rampStopsFromParams(n)
	out := NewColor(g.Width, g.Height)
	for i, v := range gray.Data {
		r, gg, b, a := sampleRamp(stops, v)
		out.R.Data[i], out.G.Data[i], out.B.Data[i], out.A.Data[i] = r, gg, b, a
	}
	return &Value{Type: TypeColor, Color: out}, nil
}

func rampStopsFromParams(n Node) []ColorStop {
	// A two-stop ramp from black to white is the default when the
	// caller doesn't supply explicit stops via params.
	return []ColorStop{
		{Position: 0, R: 0, G: 0, B: 0, A: 1},
		{Position: 1, R: 1, G: 1, B: 1, A: 1},
	}
}

func sampleRamp(stops []ColorStop, t float64) (r, g, b, a float64) {
	if len(stops) == 0 {
		return 0, 0, 0, 1
	}
	if t <= stops[0].Position {
		s := stops[0]
		return s.R, s.G, s.B, s.A
	}
	for i := 1; i < len(stops); i++ {
		if t <= stops[i].Position {
			s0, s1 := stops[i-1], stops[i]
			span := s1.Position - s0.Position
			f := 0.0
			if span > 0 {
				f = (t - s0.Position) / span
			}
			return lerpV(s0.R, s1.R, f), lerpV(s0.G, s1.G, f), lerpV(s0.B, s1.B, f), lerpV(s0.A, s1.A, f)
		}
	}
	s := stops[len(stops)-1]
	return s.R, s.G, s.B, s.A
}

func lerpV(a, b, t float64) float64 { return a + (b-a)*t }

func evalPalette(g Graph, n Node, inputs []*Value) (*Value, error) {
	gray, err := requireGray(n, inputs[0], 0)
	if err != nil {
		return nil, err
	}
	count := int(n.Params["count"])
	if count < 2 {
		count = 4
	}
	out := NewColor(g.Width, g.Height)
	for i, v := range gray.Data {
		idx := int(v * float64(count-1))
		shade := float64(idx) / float64(count-1)
		out.R.Data[i], out.G.Data[i], out.B.Data[i] = shade, shade, shade
	}
	return &Value{Type: TypeColor, Color: out}, nil
}

func evalComposeRGBA(n Node, inputs []*Value) (*Value, error) {
	if len(inputs) != 4 {
		return nil, &unknownOpError{op: "compose_rgba requires exactly four grayscale inputs"}
	}
	chans := make([]*Grayscale, 4)
	for i, v := range inputs {
		g, err := requireGray(n, v, i)
		if err != nil {
			return nil, err
		}
		chans[i] = g
	}
	out := &Color{Width: chans[0].Width, Height: chans[0].Height, R: chans[0], G: chans[1], B: chans[2], A: chans[3]}
	return &Value{Type: TypeColor, Color: out}, nil
}

// evalNormalFromHeight computes a tangent-space normal map from a
// height field using a Sobel gradient estimate, with OpenGL's Y-up
// convention (green channel points toward increasing height in +Y).
func evalNormalFromHeight(n Node, inputs []*Value) (*Value, error) {
	height, err := requireGray(n, inputs[0], 0)
	if err != nil {
		return nil, err
	}
	strength := n.Params["strength"]
	if strength == 0 {
		strength = 1
	}
	w, h := height.Width, height.Height
	out := NewColor(w, h)

	get := func(x, y int) float64 {
		return height.At(wrapIdx(x, w), wrapIdx(y, h))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := (get(x+1, y-1) + 2*get(x+1, y) + get(x+1, y+1)) -
				(get(x-1, y-1) + 2*get(x-1, y) + get(x-1, y+1))
			gy := (get(x-1, y+1) + 2*get(x, y+1) + get(x+1, y+1)) -
				(get(x-1, y-1) + 2*get(x, y-1) + get(x+1, y-1))

			nx := -gx * strength
			ny := gy * strength // Y-up: increasing height tilts the normal toward +Y
			nz := 1.0
			length := math.Sqrt(nx*nx + ny*ny + nz*nz)
			i := y*w + x
			out.R.Data[i] = (nx/length + 1) / 2
			out.G.Data[i] = (ny/length + 1) / 2
			out.B.Data[i] = (nz/length + 1) / 2
		}
	}
	return &Value{Type: TypeColor, Color: out}, nil
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
