package building

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ironsheep/footprint-rjmcmc/internal/anneal"
	"github.com/ironsheep/footprint-rjmcmc/internal/geometry"
	"github.com/ironsheep/footprint-rjmcmc/internal/imaging"
	"github.com/ironsheep/footprint-rjmcmc/internal/params"
	"github.com/ironsheep/footprint-rjmcmc/internal/rjmcmc"
)

// Footprint kinds.
const (
	KindRectangle = "rectangle"
	KindCircle    = "circle"
)

// RunInfo identifies one chain.
type RunInfo struct {
	ID    uuid.UUID
	Chain int
	Seed  uint64
}

// VisitorFunc builds the visitor observing one chain. It is called once per
// chain, on the chain's goroutine, before sampling starts.
type VisitorFunc func(RunInfo) anneal.Visitor[geometry.Shape]

// Footprint is an extracted object in world coordinates.
type Footprint struct {
	Kind    string     `json:"kind"`
	Center  r2.Point   `json:"center"`
	Width   float64    `json:"width,omitempty"`
	Height  float64    `json:"height,omitempty"`
	Angle   float64    `json:"angle,omitempty"`
	Radius  float64    `json:"radius,omitempty"`
	Energy  float64    `json:"energy"`
	Outline []r2.Point `json:"outline"`
}

// Result is the outcome of one chain.
type Result struct {
	RunID      uuid.UUID     `json:"run_id"`
	Chain      int           `json:"chain"`
	Seed       uint64        `json:"seed"`
	Iterations int           `json:"iterations"`
	Energy     float64       `json:"energy"`
	Duration   time.Duration `json:"duration"`
	Footprints []Footprint   `json:"footprints"`
}

// Outlines converts the footprints for imaging.DrawOverlay. Scores are the
// unary energies normalized by individual, so 0 is a perfect fit and 1 is no
// better than an empty slot.
func (r *Result) Outlines(individual float64) []imaging.Outline {
	out := make([]imaging.Outline, len(r.Footprints))
	for i, f := range r.Footprints {
		out[i] = imaging.Outline{Points: f.Outline, Score: Score(f.Energy, individual)}
	}
	return out
}

// Score maps a unary energy onto [0, 1].
func Score(energy, individual float64) float64 {
	if individual <= 0 {
		return 0
	}
	return min(1, max(0, energy/individual))
}

// Footprints snapshots the objects of g, in handle order.
func Footprints(g *rjmcmc.Graph[geometry.Shape]) []Footprint {
	out := make([]Footprint, 0, g.Len())
	for i := 0; i < g.Len(); i++ {
		h := g.HandleAt(i)
		out = append(out, NewFootprint(g.Object(h), g.UnaryEnergyOf(h)))
	}
	return out
}

// NewFootprint describes s.
func NewFootprint(s geometry.Shape, energy float64) Footprint {
	f := Footprint{Center: s.Center(), Energy: energy, Outline: s.Outline()}
	switch s := s.(type) {
	case geometry.Rectangle:
		f.Kind = KindRectangle
		f.Width, f.Height, f.Angle = s.Width(), s.Height(), s.Angle()
	case geometry.Circle:
		f.Kind = KindCircle
		f.Radius = s.Radius
	}
	return f
}

// Run samples one chain seeded with Params.Run.Seed + chain, cooling
// geometrically from the initial temperature. The run stops early when ctx
// is done; the partial result is returned together with ctx's error.
func (m *Model) Run(ctx context.Context, chain int, logger *zap.Logger, visitors ...VisitorFunc) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := m.Params
	info := RunInfo{ID: uuid.New(), Chain: chain, Seed: p.Run.Seed + uint64(chain)}
	logger = logger.With(zap.String("run", info.ID.String()), zap.Int("chain", chain))

	s, err := m.NewSampler(info.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to build sampler: %w", err)
	}
	g := m.NewConfiguration()

	v := anneal.Composite[geometry.Shape]{anneal.NewCancel[geometry.Shape](ctx)}
	for _, f := range visitors {
		if x := f(info); x != nil {
			v = append(v, x)
		}
	}

	logger.Info("chain started",
		zap.Uint64("seed", info.Seed),
		zap.Int("iterations", p.Run.Iterations),
		zap.Float64("temperature", p.Run.InitialTemperature),
	)
	start := time.Now()
	sched := anneal.NewGeometric(p.Run.InitialTemperature, p.Run.DecreaseCoefficient)
	n, err := anneal.Optimize[geometry.Shape](g, s, sched, p.Run.Iterations, v)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:      info.ID,
		Chain:      chain,
		Seed:       info.Seed,
		Iterations: n,
		Energy:     g.Energy(),
		Duration:   time.Since(start),
		Footprints: Footprints(g),
	}
	logger.Info("chain finished",
		zap.Int("iterations", n),
		zap.Float64("energy", res.Energy),
		zap.Int("objects", len(res.Footprints)),
		zap.Duration("duration", res.Duration),
	)
	return res, ctx.Err()
}

// RunEnsemble runs chains independent chains, at most parallelism at a time,
// and returns their results sorted by final energy, lowest first.
func (m *Model) RunEnsemble(ctx context.Context, chains, parallelism int, logger *zap.Logger, visitors ...VisitorFunc) ([]*Result, error) {
	results, err := anneal.Ensemble(ctx, chains, parallelism, func(ctx context.Context, chain int) (*Result, error) {
		return m.Run(ctx, chain, logger, visitors...)
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(results, func(a, b *Result) int {
		return cmp.Compare(a.Energy, b.Energy)
	})
	return results, nil
}

// Extract builds a model from p and runs chain 0.
func Extract(ctx context.Context, p *params.Parameters, logger *zap.Logger, visitors ...VisitorFunc) (*Result, error) {
	m, err := NewModel(p, nil, logger)
	if err != nil {
		return nil, err
	}
	return m.Run(ctx, 0, logger, visitors...)
}

// ExtractEnsemble builds a model from p and runs p.Run.Chains chains.
func ExtractEnsemble(ctx context.Context, p *params.Parameters, parallelism int, logger *zap.Logger, visitors ...VisitorFunc) ([]*Result, error) {
	m, err := NewModel(p, nil, logger)
	if err != nil {
		return nil, err
	}
	return m.RunEnsemble(ctx, p.Run.Chains, parallelism, logger, visitors...)
}
