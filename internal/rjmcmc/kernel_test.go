package rjmcmc

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unitGenerator draws points in [0, 1) with density 1.
type unitGenerator struct{}

func (unitGenerator) Generate(rng *rand.Rand) (float64, float64, error) {
	return rng.Float64(), 1, nil
}

func (unitGenerator) Pdf(float64) float64 { return 1 }

// constMove always succeeds with the given densities and stages nothing.
type constMove struct {
	forward, pdf float64
}

func (m constMove) Forward(Configuration[float64], *Diff[float64], *rand.Rand) float64 {
	return m.forward
}

func (m constMove) Pdf(Configuration[float64], *Diff[float64]) float64 { return m.pdf }

func TestDeathMove_Empty(t *testing.T) {
	g := testGraph()
	rng := rand.New(rand.NewPCG(1, 2))

	var d Diff[float64]
	assert.Zero(t, DeathMove[float64]{}.Forward(g, &d, rng))
	assert.True(t, d.Empty())
}

func TestDeathMove_Uniform(t *testing.T) {
	const (
		n      = 5
		trials = 50000
		// chi-square, 4 degrees of freedom, p = 0.001
		critical = 18.47
	)
	g := testGraph(0.1, 0.3, 0.5, 0.7, 0.9)
	rng := rand.New(rand.NewPCG(3, 4))

	counts := make(map[Handle]int)
	var d Diff[float64]
	for i := 0; i < trials; i++ {
		d.Clear()
		p := DeathMove[float64]{}.Forward(g, &d, rng)
		require.Equal(t, 1.0/n, p)
		require.Equal(t, 1, d.DeathSize())
		counts[d.Deaths()[0]]++
	}

	require.Len(t, counts, n)
	expected := float64(trials) / n
	var chi2 float64
	for _, c := range counts {
		diff := float64(c) - expected
		chi2 += diff * diff / expected
	}
	assert.Less(t, chi2, critical)
}

func TestDeathMove_Pdf(t *testing.T) {
	g := testGraph(0.1, 0.5, 0.9)

	var d Diff[float64]
	d.InsertBirth(0.3)
	assert.Equal(t, 0.25, DeathMove[float64]{}.Pdf(g, &d))

	d.InsertBirth(0.4)
	assert.Zero(t, DeathMove[float64]{}.Pdf(g, &d))
}

func TestBirthMove(t *testing.T) {
	g := testGraph(0.5)
	rng := rand.New(rand.NewPCG(5, 6))
	m := NewBirthMove[float64](unitGenerator{})

	var d Diff[float64]
	assert.Equal(t, 1.0, m.Forward(g, &d, rng))
	assert.Equal(t, 1, d.BirthSize())
	assert.Zero(t, m.Pdf(g, &d), "a birth is not reversed by a birth")

	d.Clear()
	d.InsertDeath(g.HandleAt(0))
	assert.Equal(t, 1.0, m.Pdf(g, &d))
}

func TestBinary_Frequency(t *testing.T) {
	const draws = 100000
	b := NewBinary[float64](constMove{1, 1}, constMove{1, 1}, 0.3, 0.7)
	rng := rand.New(rand.NewPCG(8, 9))
	g := testGraph()

	fired := 0
	var d Diff[float64]
	for i := 0; i < draws; i++ {
		_, id := b.Propose(rng.Float64()*b.Probability(), g, &d, rng)
		if id == 0 {
			fired++
		}
	}
	assert.InDelta(t, 0.3, float64(fired)/draws, 0.01)
}

func TestBinary_Ratio(t *testing.T) {
	g := testGraph()
	rng := rand.New(rand.NewPCG(1, 1))
	b := NewBinary[float64](constMove{forward: 2, pdf: 5}, constMove{forward: 4, pdf: 3}, 0.25, 0.75)

	var d Diff[float64]
	r, id := b.Propose(0.1, g, &d, rng)
	assert.Equal(t, 0, id)
	assert.InDelta(t, 0.75*3/(0.25*2), r, 1e-12)

	r, id = b.Propose(0.5, g, &d, rng)
	assert.Equal(t, 1, id)
	assert.InDelta(t, 0.25*5/(0.75*4), r, 1e-12)
}

func TestBinary_ZeroForward(t *testing.T) {
	g := testGraph()
	rng := rand.New(rand.NewPCG(1, 1))
	b := NewBinary[float64](constMove{forward: 0, pdf: 0}, constMove{forward: 1, pdf: 0}, 0.5, 0.5)

	var d Diff[float64]
	r, id := b.Propose(0.1, g, &d, rng)
	assert.Zero(t, r)
	assert.Equal(t, 0, id)
}

func TestBinary_SetProbability(t *testing.T) {
	b := NewBinary[float64](constMove{}, constMove{}, 1, 3)
	b.SetProbability(0.5)
	assert.InDelta(t, 0.125, b.MoveProbability(0), 1e-12)
	assert.InDelta(t, 0.375, b.MoveProbability(1), 1e-12)

	b.SetMoveProbability(0, 0.625)
	assert.InDelta(t, 1.0, b.Probability(), 1e-12)
}

func TestTuple_Resolution(t *testing.T) {
	g := testGraph(0.5)
	rng := rand.New(rand.NewPCG(1, 1))
	bd := NewBinary[float64](constMove{1, 1}, constMove{1, 1}, 0.2, 0.3)
	mod := NewModificationKernel[float64](ModifierFunc[float64](func(in []float64, _ *rand.Rand) ([]float64, float64) {
		return []float64{in[0]}, 1
	}), 0.5, WithSingleProbability(1))
	tu := NewTuple[float64](bd, mod)

	assert.Equal(t, 3, tu.Size())
	assert.InDelta(t, 1.0, tu.Probability(), 1e-12)

	tests := []struct {
		u  float64
		id int
	}{
		{0.0, 0},
		{0.19, 0},
		{0.2, 1},
		{0.49, 1},
		{0.5, 2},
		{0.99, 2},
		{1.0, NoKernel},
		{1.5, NoKernel},
	}
	for _, tt := range tests {
		var d Diff[float64]
		r, id := tu.Propose(tt.u, g, &d, rng)
		assert.Equal(t, tt.id, id, "u=%v", tt.u)
		if tt.id == NoKernel {
			assert.Zero(t, r)
			assert.True(t, d.Empty())
		}
	}
}

func TestTuple_SetProbability(t *testing.T) {
	a := NewBinary[float64](constMove{}, constMove{}, 1, 1)
	b := NewBinary[float64](constMove{}, constMove{}, 2, 4)
	tu := NewTuple[float64](a, b)

	tu.SetProbability(1)
	assert.InDelta(t, 0.25, a.Probability(), 1e-12)
	assert.InDelta(t, 0.75, b.Probability(), 1e-12)
}

func TestModificationKernel(t *testing.T) {
	identity := ModifierFunc[float64](func(in []float64, _ *rand.Rand) ([]float64, float64) {
		return append([]float64(nil), in...), 2
	})

	t.Run("empty configuration", func(t *testing.T) {
		k := NewModificationKernel[float64](identity, 1)
		var d Diff[float64]
		r, _ := k.Propose(0, testGraph(), &d, rand.New(rand.NewPCG(1, 1)))
		assert.Zero(t, r)
		assert.True(t, d.Empty())
	})

	t.Run("single", func(t *testing.T) {
		k := NewModificationKernel[float64](identity, 1, WithSingleProbability(1))
		g := testGraph(0.1, 0.5, 0.9)
		var d Diff[float64]
		r, id := k.Propose(0, g, &d, rand.New(rand.NewPCG(1, 1)))
		assert.Equal(t, 2.0, r)
		assert.Equal(t, 0, id)
		require.Equal(t, 1, d.DeathSize())
		assert.Equal(t, []float64{g.Object(d.Deaths()[0])}, d.Births())
	})

	t.Run("pair picks distinct objects", func(t *testing.T) {
		k := NewModificationKernel[float64](identity, 1, WithSingleProbability(0))
		g := testGraph(0.1, 0.5)
		rng := rand.New(rand.NewPCG(2, 3))
		for i := 0; i < 200; i++ {
			var d Diff[float64]
			r, _ := k.Propose(0, g, &d, rng)
			if r == 0 {
				// retries exhausted
				continue
			}
			require.Equal(t, 2, d.DeathSize())
			assert.NotEqual(t, d.Deaths()[0], d.Deaths()[1])
			assert.Equal(t, 2, d.BirthSize())
		}
	})

	t.Run("pair falls back to single below two objects", func(t *testing.T) {
		k := NewModificationKernel[float64](identity, 1, WithSingleProbability(0))
		var d Diff[float64]
		r, _ := k.Propose(0, testGraph(0.5), &d, rand.New(rand.NewPCG(1, 1)))
		assert.Equal(t, 2.0, r)
		assert.Equal(t, 1, d.DeathSize())
	})

	t.Run("rejected modification", func(t *testing.T) {
		reject := ModifierFunc[float64](func([]float64, *rand.Rand) ([]float64, float64) { return nil, 0 })
		k := NewModificationKernel[float64](reject, 1)
		var d Diff[float64]
		r, _ := k.Propose(0, testGraph(0.5), &d, rand.New(rand.NewPCG(1, 1)))
		assert.Zero(t, r)
	})
}

func TestModificationOptions_Panic(t *testing.T) {
	assert.Panics(t, func() { WithSingleProbability(1.5) })
	assert.Panics(t, func() { WithPairRetries(0) })
}
