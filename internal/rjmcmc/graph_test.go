package rjmcmc

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testGraph builds a configuration of points on a line. Unary energy is the
// position, and points closer than 0.3 repel with energy a*b+1.
func testGraph(xs ...float64) *Graph[float64] {
	g := NewGraph[float64](
		UnaryEnergyFunc[float64](func(x float64) float64 { return x }),
		BinaryEnergyFunc[float64](func(a, b float64) float64 { return a*b + 1 }),
		NeighborhoodFunc[float64](func(a, b float64) bool { return math.Abs(a-b) < 0.3 }),
	)
	for _, x := range xs {
		g.Insert(x)
	}
	return g
}

// bruteEnergy recomputes the total energy from scratch.
func bruteEnergy(g *Graph[float64]) float64 {
	objs := g.Objects()
	var e float64
	for i, a := range objs {
		e += a
		for _, b := range objs[i+1:] {
			if math.Abs(a-b) < 0.3 {
				e += a*b + 1
			}
		}
	}
	return e
}

func TestGraph_InsertTracksEnergy(t *testing.T) {
	g := testGraph(0.1, 0.2, 0.9)

	assert.Equal(t, 3, g.Len())
	assert.InDelta(t, 1.2, g.UnaryEnergy(), 1e-12)
	// only 0.1 and 0.2 interact
	assert.InDelta(t, 0.1*0.2+1, g.BinaryEnergy(), 1e-12)
	assert.InDelta(t, bruteEnergy(g), g.Energy(), 1e-12)
}

func TestGraph_DeltaEnergyMatchesApply(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for trial := 0; trial < 500; trial++ {
		g := testGraph()
		for i := rng.IntN(8); i > 0; i-- {
			g.Insert(rng.Float64())
		}

		var d Diff[float64]
		if n := g.Len(); n > 0 {
			perm := rng.Perm(n)
			for _, i := range perm[:rng.IntN(n+1)] {
				d.InsertDeath(g.HandleAt(i))
			}
		}
		for i := rng.IntN(3); i > 0; i-- {
			d.InsertBirth(rng.Float64())
		}

		before := g.Energy()
		delta := g.DeltaEnergy(&d)
		assert.Equal(t, before, g.Energy(), "DeltaEnergy must not mutate")

		c := g.Clone()
		require.NoError(t, c.Apply(&d))
		assert.InDelta(t, c.Energy()-before, delta, 1e-9, "trial %d", trial)
		assert.InDelta(t, bruteEnergy(c), c.Energy(), 1e-9, "trial %d", trial)
		assert.Equal(t, g.Len()+d.SizeDelta(), c.Len())
	}
}

func TestGraph_DeltaEnergyCountsSharedEdgeOnce(t *testing.T) {
	g := testGraph(0.1, 0.2)

	var d Diff[float64]
	d.InsertDeath(g.HandleAt(0))
	d.InsertDeath(g.HandleAt(1))

	assert.InDelta(t, -g.Energy(), g.DeltaEnergy(&d), 1e-12)
}

func TestGraph_ApplyIsAtomic(t *testing.T) {
	tests := []struct {
		name   string
		deaths func(g *Graph[float64]) []Handle
	}{
		{"unknown handle", func(g *Graph[float64]) []Handle { return []Handle{g.HandleAt(0), 999} }},
		{"duplicate handle", func(g *Graph[float64]) []Handle { return []Handle{g.HandleAt(1), g.HandleAt(1)} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGraph(0.1, 0.2, 0.5)
			before := g.Energy()
			handles := append([]Handle(nil), g.Handles()...)

			var d Diff[float64]
			d.InsertBirth(0.15)
			for _, h := range tt.deaths(g) {
				d.InsertDeath(h)
			}

			err := g.Apply(&d)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnknownHandle))
			assert.Equal(t, before, g.Energy())
			assert.Equal(t, handles, g.Handles())
		})
	}
}

func TestGraph_HandlesAreStable(t *testing.T) {
	g := testGraph()
	a := g.Insert(0.1)
	b := g.Insert(0.5)
	c := g.Insert(0.9)

	var d Diff[float64]
	d.InsertDeath(a)
	require.NoError(t, g.Apply(&d))

	assert.False(t, g.Contains(a))
	assert.Equal(t, 0.5, g.Object(b))
	assert.Equal(t, 0.9, g.Object(c))
	assert.Equal(t, "#2", b.String())
}

func TestGraph_CloneIsIndependent(t *testing.T) {
	g := testGraph(0.1, 0.2)
	c := g.Clone()
	c.Insert(0.25)

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 3, c.Len())
	assert.InDelta(t, bruteEnergy(g), g.Energy(), 1e-12)
	assert.InDelta(t, bruteEnergy(c), c.Energy(), 1e-12)
}

func TestDiff_Clear(t *testing.T) {
	var d Diff[float64]
	d.InsertBirth(1)
	d.InsertBirth(2)
	d.InsertDeath(3)
	assert.Equal(t, 2, d.BirthSize())
	assert.Equal(t, 1, d.DeathSize())
	assert.Equal(t, 1, d.SizeDelta())

	d.Clear()
	assert.True(t, d.Empty())
	assert.Zero(t, d.SizeDelta())
}
