package texture

import "math"

// evalMorphology dispatches the neighborhood/blend family of ops that
// evalNode's main switch delegates here: threshold, blur, erode,
// dilate, warp, and lerp. These read either one grayscale field
// (threshold, and blur/erode/dilate over a fixed-radius neighborhood)
// or three aligned grayscale fields (warp, lerp), so they're kept apart
// from the simple per-pixel unary/binary ops in animated.go.
func evalMorphology(g Graph, n Node, inputs []*Value) (*Value, error) {
	switch n.Op {
	case "threshold":
		return evalThreshold(g, n, inputs)
	case "blur":
		return evalBlur(g, n, inputs)
	case "erode":
		return evalErodeDilate(g, n, inputs, false)
	case "dilate":
		return evalErodeDilate(g, n, inputs, true)
	case "warp":
		return evalWarp(g, n, inputs)
	case "lerp":
		return evalLerp(g, n, inputs)
	default:
		return nil, &unknownOpError{op: n.Op}
	}
}

func evalThreshold(g Graph, n Node, inputs []*Value) (*Value, error) {
	if len(inputs) != 1 {
		return nil, &unknownOpError{op: "threshold requires exactly one input"}
	}
	a, err := requireGray(n, inputs[0], 0)
	if err != nil {
		return nil, err
	}
	level := n.Params["threshold"]
	if level == 0 {
		level = 0.5
	}
	out := newFieldFor(g)
	for i, v := range a.Data {
		if v >= level {
			out.Data[i] = 1
		}
	}
	return &Value{Type: TypeGrayscale, Gray: out}, nil
}

// evalBlur applies a separable box blur of the given pixel radius,
// wrapping at the field edges so blurred tileable fields stay
// tileable.
func evalBlur(g Graph, n Node, inputs []*Value) (*Value, error) {
	if len(inputs) != 1 {
		return nil, &unknownOpError{op: "blur requires exactly one input"}
	}
	a, err := requireGray(n, inputs[0], 0)
	if err != nil {
		return nil, err
	}
	radius := int(n.Params["radius"])
	if radius <= 0 {
		radius = 1
	}
	horiz := boxBlurPass(a, radius, true)
	out := boxBlurPass(horiz, radius, false)
	return &Value{Type: TypeGrayscale, Gray: out}, nil
}

func boxBlurPass(src *Grayscale, radius int, horizontal bool) *Grayscale {
	w, h := src.Width, src.Height
	out := NewGrayscale(w, h)
	span := 2*radius + 1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0.0
			for d := -radius; d <= radius; d++ {
				var sx, sy int
				if horizontal {
					sx, sy = wrapIdx(x+d, w), y
				} else {
					sx, sy = x, wrapIdx(y+d, h)
				}
				sum += src.At(sx, sy)
			}
			out.Set(x, y, sum/float64(span))
		}
	}
	return out
}

// evalErodeDilate runs a square min (erode) or max (dilate) filter of
// the given pixel radius.
func evalErodeDilate(g Graph, n Node, inputs []*Value, dilate bool) (*Value, error) {
	if len(inputs) != 1 {
		return nil, &unknownOpError{op: "erode/dilate requires exactly one input"}
	}
	a, err := requireGray(n, inputs[0], 0)
	if err != nil {
		return nil, err
	}
	radius := int(n.Params["radius"])
	if radius <= 0 {
		radius = 1
	}
	w, h := a.Width, a.Height
	out := NewGrayscale(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			best := a.At(x, y)
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					v := a.At(wrapIdx(x+dx, w), wrapIdx(y+dy, h))
					if dilate && v > best {
						best = v
					}
					if !dilate && v < best {
						best = v
					}
				}
			}
			out.Set(x, y, best)
		}
	}
	return &Value{Type: TypeGrayscale, Gray: out}, nil
}

// evalWarp domain-warps a source grayscale field by two displacement
// fields (dx, dy, each in [0,1] mapped to [-strength, strength]
// pixels), sampling the source with bilinear interpolation and
// wrapping at the edges.
func evalWarp(g Graph, n Node, inputs []*Value) (*Value, error) {
	if len(inputs) != 3 {
		return nil, &unknownOpError{op: "warp requires source, dx, and dy inputs"}
	}
	source, err := requireGray(n, inputs[0], 0)
	if err != nil {
		return nil, err
	}
	dxField, err := requireGray(n, inputs[1], 1)
	if err != nil {
		return nil, err
	}
	dyField, err := requireGray(n, inputs[2], 2)
	if err != nil {
		return nil, err
	}
	strength := n.Params["strength"]
	if strength == 0 {
		strength = 1
	}
	out := newFieldFor(g)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			dx := (dxField.At(x, y)*2 - 1) * strength
			dy := (dyField.At(x, y)*2 - 1) * strength
			out.Set(x, y, sampleBilinear(source, float64(x)+dx, float64(y)+dy))
		}
	}
	return &Value{Type: TypeGrayscale, Gray: out}, nil
}

func sampleBilinear(f *Grayscale, x, y float64) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)
	x1, y1 := x0+1, y0+1

	v00 := f.At(wrapIdx(x0, f.Width), wrapIdx(y0, f.Height))
	v10 := f.At(wrapIdx(x1, f.Width), wrapIdx(y0, f.Height))
	v01 := f.At(wrapIdx(x0, f.Width), wrapIdx(y1, f.Height))
	v11 := f.At(wrapIdx(x1, f.Width), wrapIdx(y1, f.Height))

	top := lerpV(v00, v10, fx)
	bottom := lerpV(v01, v11, fx)
	return lerpV(top, bottom, fy)
}

// evalLerp blends two grayscale fields by a third factor field
// (0 = all of a, 1 = all of b).
func evalLerp(g Graph, n Node, inputs []*Value) (*Value, error) {
	if len(inputs) != 3 {
		return nil, &unknownOpError{op: "lerp requires a, b, and factor inputs"}
	}
	a, err := requireGray(n, inputs[0], 0)
	if err != nil {
		return nil, err
	}
	b, err := requireGray(n, inputs[1], 1)
	if err != nil {
		return nil, err
	}
	factor, err := requireGray(n, inputs[2], 2)
	if err != nil {
		return nil, err
	}
	out := newFieldFor(g)
	for i := range out.Data {
		out.Data[i] = lerpV(a.Data[i], b.Data[i], factor.Data[i])
	}
	return &Value{Type: TypeGrayscale, Gray: out}, nil
}
