// Package texture evaluates a procedural texture graph: a small DAG of
// grayscale and color operations over 2D fields, topologically sorted
// and evaluated node by node into a final RGBA image.
package texture

import (
	"fmt"

	"github.com/speccade/speccade/pkg/noise"
)

// ValueType distinguishes the two kinds of value a node can produce.
// Binary/unary ops are type-checked against their declared inputs; a
// mismatch is a TypeMismatchError rather than a silent coercion.
type ValueType int

const (
	TypeGrayscale ValueType = iota
	TypeColor
)

// Grayscale is a single-channel field sampled in [0, width) x [0,
// height) space, stored row-major.
type Grayscale struct {
	Width, Height int
	Data          []float64
}

// NewGrayscale allocates a zeroed grayscale field.
func NewGrayscale(w, h int) *Grayscale {
	return &Grayscale{Width: w, Height: h, Data: make([]float64, w*h)}
}

// At returns the value at (x, y).
func (g *Grayscale) At(x, y int) float64 {
	return g.Data[y*g.Width+x]
}

// Set stores the value at (x, y).
func (g *Grayscale) Set(x, y int, v float64) {
	g.Data[y*g.Width+x] = v
}

// Color is an RGBA field, each channel stored as a separate Grayscale
// plane so the same per-pixel helpers work for both value types.
type Color struct {
	Width, Height  int
	R, G, B, A *Grayscale
}

// NewColor allocates a zeroed color field with full opacity.
func NewColor(w, h int) *Color {
	c := &Color{
		Width: w, Height: h,
		R: NewGrayscale(w, h), G: NewGrayscale(w, h), B: NewGrayscale(w, h), A: NewGrayscale(w, h),
	}
	for i := range c.A.Data {
		c.A.Data[i] = 1
	}
	return c
}

// TypeMismatchError reports an operation whose input value types don't
// match what it requires.
type TypeMismatchError struct {
	NodeID string
	Want   ValueType
	Got    ValueType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("texture: node %q expected type %v, got %v", e.NodeID, e.Want, e.Got)
}

// Value is the evaluated output of one node: exactly one of Gray or
// Color is populated, selected by Type.
type Value struct {
	Type  ValueType
	Gray  *Grayscale
	Color *Color
}

// Node is one operation in the texture graph.
type Node struct {
	ID       string
	Op       string
	Inputs   []string // IDs of nodes this one depends on, in argument order
	Params   map[string]float64
	StrParams map[string]string
	Tileable bool
}

// Graph is a full texture program: a node list plus the size every
// field is evaluated at.
type Graph struct {
	Width, Height int
	Seed          uint32
	Nodes         []Node
	Output        string // ID of the node whose value is the final image
}

// GraphError wraps a failure encountered while evaluating a graph,
// naming the offending node.
type GraphError struct {
	NodeID string
	Err    error
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("texture: node %q: %v", e.NodeID, e.Err)
}

func (e *GraphError) Unwrap() error { return e.Err }

// Evaluate topologically sorts g's nodes (explicit iterative sort, no
// recursion, so a cyclic graph fails cleanly instead of overflowing the
// stack) and evaluates each in turn, returning the Output node's value.
func Evaluate(g Graph) (*Value, error) {
	values, err := EvaluateAll(g)
	if err != nil {
		return nil, err
	}
	out, ok := values[g.Output]
	if !ok {
		return nil, fmt.Errorf("texture: output node %q not found", g.Output)
	}
	return out, nil
}

// EvaluateAll runs the same topological evaluation as Evaluate but
// returns every node's cached value, not just the graph's declared
// Output. A spec with several named outputs sourcing different nodes
// from one graph (§3's OutputSpec.Source) evaluates the DAG once and
// looks each output up by node id here, rather than re-running the
// whole graph per output.
func EvaluateAll(g Graph) (map[string]*Value, error) {
	order, err := topoSort(g.Nodes)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}

	values := make(map[string]*Value, len(g.Nodes))
	for _, id := range order {
		n := byID[id]
		inputs := make([]*Value, len(n.Inputs))
		for i, depID := range n.Inputs {
			v, ok := values[depID]
			if !ok {
				return nil, &GraphError{NodeID: id, Err: fmt.Errorf("input %q not yet evaluated", depID)}
			}
			inputs[i] = v
		}
		v, err := evalNode(g, n, inputs)
		if err != nil {
			return nil, &GraphError{NodeID: id, Err: err}
		}
		values[id] = v
	}

	return values, nil
}

// topoSort performs Kahn's algorithm over the node dependency graph,
// returning node IDs in an order where every input precedes its
// dependents. A cycle is reported as an error rather than a panic.
func topoSort(nodes []Node) ([]string, error) {
	indegree := make(map[string]int, len(nodes))
	dependents := make(map[string][]string, len(nodes))
	known := make(map[string]bool, len(nodes))

	for _, n := range nodes {
		known[n.ID] = true
		if _, ok := indegree[n.ID]; !ok {
			indegree[n.ID] = 0
		}
	}
	for _, n := range nodes {
		for _, dep := range n.Inputs {
			indegree[n.ID]++
			dependents[dep] = append(dependents[dep], n.ID)
		}
	}

	queue := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if indegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	order := make([]string, 0, len(nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, dep := range dependents[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) != len(nodes) {
		return nil, fmt.Errorf("texture: graph contains a cycle")
	}
	return order, nil
}

func newFieldFor(g Graph) *Grayscale {
	return NewGrayscale(g.Width, g.Height)
}

// sourceFor builds the appropriate noise.Field2D for a node's "kind"
// string param, wrapping it in noise.Tileable when the node requests a
// tileable field.
func sourceFor(g Graph, n Node, seed uint32) noise.Field2D {
	kind := n.StrParams["kind"]
	var base noise.Field2D
	switch kind {
	case "simplex":
		base = noise.NewSimplex(seed)
	case "worley":
		w := noise.NewWorley(seed)
		if df, ok := n.StrParams["distance"]; ok {
			switch df {
			case "manhattan":
				w.Distance = noise.DistanceManhattan
			case "chebyshev":
				w.Distance = noise.DistanceChebyshev
			}
		}
		base = w
	case "gabor":
		base = noise.NewGabor(seed)
	default:
		base = noise.NewPerlin(seed)
	}

	if octaves, ok := n.Params["octaves"]; ok && octaves > 1 {
		lacunarity := n.Params["lacunarity"]
		if lacunarity == 0 {
			lacunarity = 2.0
		}
		persistence := n.Params["persistence"]
		if persistence == 0 {
			persistence = 0.5
		}
		base = noise.NewFBM(base, int(octaves), lacunarity, persistence)
	}

	if n.Tileable {
		period := n.Params["period"]
		if period <= 0 {
			period = 8
		}
		base = &noise.Tileable{Base: base, Period: period}
	}
	return base
}
