package texture

import (
	"math"

	"github.com/speccade/speccade/pkg/rng"
)

// evalWear dispatches the surface-detail family of grayscale-mask
// generators: scratches, edge wear, dirt/stain blotches, pitting, and
// woven thread patterns. Every op here produces a standalone mask
// field in [0, 1]; a recipe composites it onto a base image with the
// existing "lerp"/"multiply"/"add" ops rather than this package
// picking a target channel for it, since a graph node here has one
// output value, not a named set of PBR maps.
func evalWear(g Graph, n Node) (*Value, error) {
	switch n.Op {
	case "scratches":
		return evalScratches(g, n)
	case "edge_wear":
		return evalEdgeWear(g, n)
	case "dirt", "stains":
		return evalBlotches(g, n)
	case "pitting":
		return evalPitting(g, n)
	case "weave":
		return evalWeave(g, n)
	case "color_variation":
		return evalColorVariation(g, n)
	default:
		return nil, &GraphError{NodeID: n.ID, Err: errUnknownOp(n.Op)}
	}
}

// evalScratches draws a deterministic set of thin line segments across
// the field, each with a random start point, angle, and length drawn
// from a per-node RNG stream; width and strength come from the node's
// params and are the same for every scratch.
func evalScratches(g Graph, n Node) (*Value, error) {
	field := newFieldFor(g)
	density := n.Params["density"]
	if density <= 0 {
		return &Value{Type: TypeGrayscale, Gray: field}, nil
	}
	lengthMin := n.Params["length_min"]
	lengthMax := n.Params["length_max"]
	if lengthMax <= lengthMin {
		lengthMax = lengthMin + 0.1
	}
	widthFrac := n.Params["width"]
	if widthFrac <= 0 {
		widthFrac = 0.002
	}
	strength := n.Params["strength"]
	if strength <= 0 {
		strength = 1
	}

	r := rng.New(rng.DeriveComponentSeed(g.Seed, "texture:"+n.ID))
	diag := math.Hypot(float64(g.Width), float64(g.Height))
	count := int(density * diag)
	radius := widthFrac * diag / 2
	if radius < 0.5 {
		radius = 0.5
	}

	for i := 0; i < count; i++ {
		x0 := r.Float64() * float64(g.Width)
		y0 := r.Float64() * float64(g.Height)
		angle := r.Float64() * 2 * math.Pi
		length := (lengthMin + r.Float64()*(lengthMax-lengthMin)) * diag
		x1 := x0 + math.Cos(angle)*length
		y1 := y0 + math.Sin(angle)*length
		drawLine(field, x0, y0, x1, y1, radius, strength)
	}
	return &Value{Type: TypeGrayscale, Gray: field}, nil
}

// drawLine stamps a soft line segment into field, accumulating rather
// than overwriting so overlapping scratches deepen.
func drawLine(field *Grayscale, x0, y0, x1, y1, radius, strength float64) {
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	steps := int(length) + 1
	minX := int(math.Max(0, math.Min(x0, x1)-radius-1))
	maxX := int(math.Min(float64(field.Width-1), math.Max(x0, x1)+radius+1))
	minY := int(math.Max(0, math.Min(y0, y1)-radius-1))
	maxY := int(math.Min(float64(field.Height-1), math.Max(y0, y1)+radius+1))
	if minX > maxX || minY > maxY {
		return
	}
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		px := x0 + dx*t
		py := y0 + dy*t
		stampCircle(field, px, py, radius, strength, minX, maxX, minY, maxY)
	}
}

func stampCircle(field *Grayscale, cx, cy, radius, strength float64, minX, maxX, minY, maxY int) {
	r2 := radius * radius
	for y := minY; y <= maxY; y++ {
		dy := float64(y) - cy
		if dy*dy > r2 {
			continue
		}
		for x := minX; x <= maxX; x++ {
			dx := float64(x) - cx
			d2 := dx*dx + dy*dy
			if d2 > r2 {
				continue
			}
			falloff := 1 - d2/r2
			v := field.At(x, y) + strength*falloff
			field.Set(x, y, clampUnit(v))
		}
	}
}

// evalEdgeWear produces a mask that rises toward the field's border,
// scaled by amount and perturbed by low-frequency noise so the wear
// line isn't a perfectly even ring. The mask is clamped to [0, 1], so
// a zero or negative amount yields an all-zero field.
func evalEdgeWear(g Graph, n Node) (*Value, error) {
	amount := n.Params["amount"]
	field := newFieldFor(g)
	seed := rng.DeriveComponentSeed(g.Seed, "texture:"+n.ID)
	noiseSrc := sourceFor(g, n, seed)

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			u := float64(x) / float64(g.Width-1)
			v := float64(y) / float64(g.Height-1)
			distToEdge := math.Min(math.Min(u, 1-u), math.Min(v, 1-v))
			jitter := noiseSrc.Sample(float64(x)/16, float64(y)/16)*0.15 + 1
			wear := amount * clampUnit(1-distToEdge*4*jitter)
			field.Set(x, y, clampUnit(wear))
		}
	}
	return &Value{Type: TypeGrayscale, Gray: field}, nil
}

// evalBlotches implements both "dirt" and "stains": noise thresholded
// into soft irregular patches, scaled by strength. The two differ only
// in their conventional default threshold/strength, which the recipe
// params already carry, so one evaluator covers both ops.
func evalBlotches(g Graph, n Node) (*Value, error) {
	threshold := n.Params["threshold"]
	if threshold <= 0 {
		threshold = 1 - n.Params["density"]
	}
	strength := n.Params["strength"]
	if strength <= 0 {
		strength = 1
	}
	seed := rng.DeriveComponentSeed(g.Seed, "texture:"+n.ID)
	src := sourceFor(g, n, seed)
	scale := n.Params["scale"]
	if scale == 0 {
		scale = 4
	}

	field := newFieldFor(g)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			v := src.Sample(float64(x)*scale/float64(g.Width), float64(y)*scale/float64(g.Height))*0.5 + 0.5
			if v < threshold {
				field.Set(x, y, 0)
				continue
			}
			mask := (v - threshold) / (1 - threshold)
			field.Set(x, y, clampUnit(mask*strength))
		}
	}
	return &Value{Type: TypeGrayscale, Gray: field}, nil
}

// evalPitting marks pits wherever a noise field rises above threshold,
// each pit's value growing from 0 at the threshold to depth at the
// noise peak; it shares nothing with evalScratches' line stamping.
func evalPitting(g Graph, n Node) (*Value, error) {
	threshold := n.Params["threshold"]
	if threshold <= 0 {
		threshold = 0.6
	}
	depth := n.Params["depth"]
	if depth <= 0 {
		depth = 0.5
	}
	seed := rng.DeriveComponentSeed(g.Seed, "texture:"+n.ID)
	src := sourceFor(g, n, seed)
	scale := n.Params["scale"]
	if scale == 0 {
		scale = 12
	}

	field := newFieldFor(g)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			v := src.Sample(float64(x)*scale/float64(g.Width), float64(y)*scale/float64(g.Height))*0.5 + 0.5
			if v > threshold {
				field.Set(x, y, clampUnit(depth*(v-threshold)/(1-threshold)))
			}
		}
	}
	return &Value{Type: TypeGrayscale, Gray: field}, nil
}

// evalWeave produces a basket-weave pattern from thread_width/gap
// geometry alone; it is purely procedural, no RNG stream involved.
func evalWeave(g Graph, n Node) (*Value, error) {
	threadWidth := n.Params["thread_width"]
	if threadWidth <= 0 {
		threadWidth = 8
	}
	gap := n.Params["gap"]
	if gap < 0 {
		gap = 2
	}
	depth := n.Params["depth"]
	if depth <= 0 {
		depth = 0.5
	}
	period := threadWidth + gap

	field := newFieldFor(g)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			fx := math.Mod(float64(x), period*2)
			fy := math.Mod(float64(y), period*2)
			horizontalOnTop := math.Mod(float64(x), period*2) < period
			withinThreadX := math.Mod(fx, period) < threadWidth
			withinThreadY := math.Mod(fy, period) < threadWidth
			var v float64
			switch {
			case withinThreadX && withinThreadY:
				if horizontalOnTop {
					v = 1
				} else {
					v = 1 - depth
				}
			case withinThreadX:
				v = 0.5
			case withinThreadY:
				v = 0.5 - depth/2
			default:
				v = 0
			}
			field.Set(x, y, clampUnit(v))
		}
	}
	return &Value{Type: TypeGrayscale, Gray: field}, nil
}

// evalColorVariation produces a grayscale jitter-intensity mask
// summarizing hue/saturation/value variation strength per pixel; a
// recipe tints a base color with it via "multiply"/"lerp" rather than
// this op picking the target color itself, since graph nodes here
// don't carry a palette to vary.
func evalColorVariation(g Graph, n Node) (*Value, error) {
	hueRange := n.Params["hue_range"]
	satRange := n.Params["saturation_range"]
	valRange := n.Params["value_range"]
	scale := n.Params["noise_scale"]
	if scale == 0 {
		scale = 4
	}
	total := hueRange/360 + satRange + valRange
	if total == 0 {
		total = 1
	}

	seed := rng.DeriveComponentSeed(g.Seed, "texture:"+n.ID)
	src := sourceFor(g, n, seed)
	field := newFieldFor(g)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			v := src.Sample(float64(x)*scale/float64(g.Width), float64(y)*scale/float64(g.Height))*0.5 + 0.5
			field.Set(x, y, clampUnit(v*total))
		}
	}
	return &Value{Type: TypeGrayscale, Gray: field}, nil
}
