package rjmcmc

import (
	"errors"
	"fmt"
)

// ErrUnknownHandle is returned by Graph.Apply when a diff removes an object
// that is not in the configuration, or removes the same object twice.
var ErrUnknownHandle = errors.New("unknown or duplicate handle")

// UnaryEnergy scores a single object.
type UnaryEnergy[T any] interface {
	UnaryEnergy(obj T) float64
}

// BinaryEnergy scores an interacting pair of objects.
type BinaryEnergy[T any] interface {
	BinaryEnergy(a, b T) float64
}

// Neighborhood decides which pairs interact. Only neighbouring pairs
// contribute binary energy.
type Neighborhood[T any] interface {
	AreNeighbors(a, b T) bool
}

// UnaryEnergyFunc adapts a function to UnaryEnergy.
type UnaryEnergyFunc[T any] func(obj T) float64

// UnaryEnergy calls f(obj).
func (f UnaryEnergyFunc[T]) UnaryEnergy(obj T) float64 { return f(obj) }

// BinaryEnergyFunc adapts a function to BinaryEnergy.
type BinaryEnergyFunc[T any] func(a, b T) float64

// BinaryEnergy calls f(a, b).
func (f BinaryEnergyFunc[T]) BinaryEnergy(a, b T) float64 { return f(a, b) }

// NeighborhoodFunc adapts a function to Neighborhood.
type NeighborhoodFunc[T any] func(a, b T) bool

// AreNeighbors calls f(a, b).
func (f NeighborhoodFunc[T]) AreNeighbors(a, b T) bool { return f(a, b) }

type edge struct {
	to     Handle
	energy float64
}

type graphNode[T any] struct {
	obj   T
	unary float64
	pos   int
	edges []edge
}

// Graph is a Configuration storing objects as the vertices of an interaction
// graph. Each vertex caches its unary energy and each edge the binary energy
// of a neighbouring pair, so the total energy is maintained incrementally.
//
// Sums follow the handle order and edge lists, never map iteration, so
// energies are reproducible bit for bit.
type Graph[T any] struct {
	unary     UnaryEnergy[T]
	binary    BinaryEnergy[T]
	neighbors Neighborhood[T]

	nodes map[Handle]*graphNode[T]
	order []Handle
	next  Handle

	unaryEnergy  float64
	binaryEnergy float64
}

// NewGraph creates an empty configuration. binary may be nil for
// non-interacting objects; neighbors may be nil, in which case every pair
// interacts.
func NewGraph[T any](unary UnaryEnergy[T], binary BinaryEnergy[T], neighbors Neighborhood[T]) *Graph[T] {
	return &Graph[T]{
		unary:     unary,
		binary:    binary,
		neighbors: neighbors,
		nodes:     make(map[Handle]*graphNode[T]),
		next:      1,
	}
}

// Len returns the number of objects.
func (g *Graph[T]) Len() int { return len(g.order) }

// HandleAt returns the handle of the i-th object.
func (g *Graph[T]) HandleAt(i int) Handle { return g.order[i] }

// Object returns the object behind h. It panics if h is not present.
func (g *Graph[T]) Object(h Handle) T {
	n, ok := g.nodes[h]
	if !ok {
		panic(fmt.Sprintf("rjmcmc: object %v not in configuration", h))
	}
	return n.obj
}

// Contains reports whether h names a live object.
func (g *Graph[T]) Contains(h Handle) bool {
	_, ok := g.nodes[h]
	return ok
}

// Energy returns the total energy.
func (g *Graph[T]) Energy() float64 { return g.unaryEnergy + g.binaryEnergy }

// UnaryEnergy returns the sum of the unary terms.
func (g *Graph[T]) UnaryEnergy() float64 { return g.unaryEnergy }

// BinaryEnergy returns the sum of the binary terms.
func (g *Graph[T]) BinaryEnergy() float64 { return g.binaryEnergy }

// UnaryEnergyOf returns the cached unary energy of h.
func (g *Graph[T]) UnaryEnergyOf(h Handle) float64 { return g.nodes[h].unary }

// Objects returns the objects in configuration order.
func (g *Graph[T]) Objects() []T {
	out := make([]T, len(g.order))
	for i, h := range g.order {
		out[i] = g.nodes[h].obj
	}
	return out
}

// Handles returns a copy of the handles in configuration order.
func (g *Graph[T]) Handles() []Handle {
	return append([]Handle(nil), g.order...)
}

// interacting reports whether a and b contribute binary energy.
func (g *Graph[T]) interacting(a, b T) bool {
	if g.binary == nil {
		return false
	}
	return g.neighbors == nil || g.neighbors.AreNeighbors(a, b)
}

// DeltaEnergy returns the energy change Apply(d) would cause without
// modifying the graph.
func (g *Graph[T]) DeltaEnergy(d *Diff[T]) float64 {
	deaths := d.Deaths()
	dead := func(h Handle) bool {
		for _, x := range deaths {
			if x == h {
				return true
			}
		}
		return false
	}

	var delta float64
	for _, h := range deaths {
		n, ok := g.nodes[h]
		if !ok {
			continue
		}
		delta -= n.unary
		for _, e := range n.edges {
			// an edge between two dying objects is removed once
			if dead(e.to) && e.to < h {
				continue
			}
			delta -= e.energy
		}
	}

	births := d.Births()
	for i, b := range births {
		delta += g.unary.UnaryEnergy(b)
		for _, h := range g.order {
			if dead(h) {
				continue
			}
			if o := g.nodes[h].obj; g.interacting(b, o) {
				delta += g.binary.BinaryEnergy(b, o)
			}
		}
		for _, o := range births[:i] {
			if g.interacting(b, o) {
				delta += g.binary.BinaryEnergy(b, o)
			}
		}
	}
	return delta
}

// Apply commits d. All death handles are checked before anything changes, so
// a failed Apply leaves the graph untouched.
func (g *Graph[T]) Apply(d *Diff[T]) error {
	deaths := d.Deaths()
	for i, h := range deaths {
		if _, ok := g.nodes[h]; !ok {
			return fmt.Errorf("apply: remove %v: %w", h, ErrUnknownHandle)
		}
		for _, x := range deaths[:i] {
			if x == h {
				return fmt.Errorf("apply: remove %v twice: %w", h, ErrUnknownHandle)
			}
		}
	}

	for _, h := range deaths {
		g.remove(h)
	}
	for _, b := range d.Births() {
		g.Insert(b)
	}
	return nil
}

// Insert adds obj directly, bypassing the sampler, and returns its handle.
func (g *Graph[T]) Insert(obj T) Handle {
	h := g.next
	g.next++

	n := &graphNode[T]{obj: obj, unary: g.unary.UnaryEnergy(obj), pos: len(g.order)}
	for _, o := range g.order {
		other := g.nodes[o]
		if !g.interacting(obj, other.obj) {
			continue
		}
		e := g.binary.BinaryEnergy(obj, other.obj)
		n.edges = append(n.edges, edge{to: o, energy: e})
		other.edges = append(other.edges, edge{to: h, energy: e})
		g.binaryEnergy += e
	}

	g.nodes[h] = n
	g.order = append(g.order, h)
	g.unaryEnergy += n.unary
	return h
}

func (g *Graph[T]) remove(h Handle) {
	n := g.nodes[h]
	for _, e := range n.edges {
		other := g.nodes[e.to]
		for i, back := range other.edges {
			if back.to == h {
				other.edges = append(other.edges[:i], other.edges[i+1:]...)
				break
			}
		}
		g.binaryEnergy -= e.energy
	}
	g.unaryEnergy -= n.unary

	last := len(g.order) - 1
	moved := g.order[last]
	g.order[n.pos] = moved
	g.nodes[moved].pos = n.pos
	g.order = g.order[:last]
	delete(g.nodes, h)
}

// Clone returns a deep copy sharing the energy policies.
func (g *Graph[T]) Clone() *Graph[T] {
	c := &Graph[T]{
		unary:        g.unary,
		binary:       g.binary,
		neighbors:    g.neighbors,
		nodes:        make(map[Handle]*graphNode[T], len(g.nodes)),
		order:        append([]Handle(nil), g.order...),
		next:         g.next,
		unaryEnergy:  g.unaryEnergy,
		binaryEnergy: g.binaryEnergy,
	}
	for h, n := range g.nodes {
		cp := *n
		cp.edges = append([]edge(nil), n.edges...)
		c.nodes[h] = &cp
	}
	return c
}
