package rjmcmc

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoisson_Reversible(t *testing.T) {
	for _, lambda := range []float64{0.5, 1, 3, 40} {
		p, err := NewPoisson(lambda)
		require.NoError(t, err)
		pp, err := NewPointProcess(lambda)
		require.NoError(t, err)
		for n := 0; n < 200; n++ {
			r := p.GreenRatio(n, 1) * p.GreenRatio(n+1, -1)
			assert.InDelta(t, 1, r, 1e-12, "poisson lambda=%v n=%d", lambda, n)
			r = pp.GreenRatio(n, 1) * pp.GreenRatio(n+1, -1)
			assert.InDelta(t, 1, r, 1e-12, "point process lambda=%v n=%d", lambda, n)
		}
	}
}

func TestPoisson_GreenRatio(t *testing.T) {
	p, err := NewPoisson(3)
	require.NoError(t, err)

	tests := []struct {
		name  string
		n, dn int
		want  float64
	}{
		{"no change", 4, 0, 1},
		{"birth at 2", 2, 1, 1},
		{"birth at 5", 5, 1, 2},
		{"death at 4", 4, -1, 0.75},
		{"two births from empty", 0, 2, 2.0 / 9},
		{"two deaths at 4", 4, -2, 9.0 / 12},
		{"split at 4", 4, 1, 5.0 / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, p.GreenRatio(tt.n, tt.dn), 1e-12)
		})
	}
}

func TestPoisson_MatchesFactorialForm(t *testing.T) {
	const lambda = 2.5
	p, err := NewPoisson(lambda)
	require.NoError(t, err)

	lf := func(n int) float64 {
		v, _ := math.Lgamma(float64(n + 1))
		return v
	}
	for n := 0; n < 30; n++ {
		for dn := -n; dn <= 3; dn++ {
			want := math.Exp(-float64(dn)*math.Log(lambda) + lf(n+dn) - lf(n))
			assert.InEpsilon(t, want, p.GreenRatio(n, dn), 1e-9, "n=%d dn=%d", n, dn)
		}
	}
}

func TestPointProcess_GreenRatio(t *testing.T) {
	p, err := NewPointProcess(3)
	require.NoError(t, err)

	assert.Equal(t, 1.0, p.GreenRatio(4, 0))
	assert.Equal(t, 3.0, p.GreenRatio(4, 1))
	assert.Equal(t, 9.0, p.GreenRatio(0, 2))
	assert.InDelta(t, 1.0/3, p.GreenRatio(4, -1), 1e-15)
}

func TestNewPoisson_Invalid(t *testing.T) {
	for _, lambda := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := NewPoisson(lambda)
		assert.True(t, errors.Is(err, ErrInvalidProbability), "lambda=%v", lambda)
		_, err = NewPointProcess(lambda)
		assert.True(t, errors.Is(err, ErrInvalidProbability), "lambda=%v", lambda)
	}
}

func TestUniform_GreenRatio(t *testing.T) {
	u := Uniform{Min: 2, Max: 10}

	tests := []struct {
		name  string
		n, dn int
		want  float64
	}{
		{"birth at max", 10, 1, 0},
		{"death at min", 2, -1, 0},
		{"birth inside", 5, 1, 1},
		{"death inside", 5, -1, 1},
		{"no change", 10, 0, 1},
		{"pair birth over max", 9, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, u.GreenRatio(tt.n, tt.dn))
		})
	}
}

func TestJoint_GreenRatio(t *testing.T) {
	p, err := NewPoisson(3)
	require.NoError(t, err)
	j := Joint{p, Uniform{Min: 0, Max: 5}}

	assert.Equal(t, 1.0, j.GreenRatio(2, 1))
	assert.InDelta(t, 0.75, j.GreenRatio(4, -1), 1e-12)
	assert.Zero(t, j.GreenRatio(5, 1))
	assert.Equal(t, 1.0, Joint(nil).GreenRatio(7, -3))
}
