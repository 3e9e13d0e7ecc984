package building

import (
	"fmt"
	"image"
	"math/rand/v2"

	"github.com/golang/geo/r2"
	"go.uber.org/zap"

	"github.com/ironsheep/footprint-rjmcmc/internal/energy"
	"github.com/ironsheep/footprint-rjmcmc/internal/geometry"
	"github.com/ironsheep/footprint-rjmcmc/internal/imaging"
	"github.com/ironsheep/footprint-rjmcmc/internal/params"
	"github.com/ironsheep/footprint-rjmcmc/internal/rjmcmc"
)

// Leaf kernel ids, as reported in rjmcmc.Stats.KernelID.
const (
	KernelBirth = iota
	KernelDeath
	KernelModification
)

// KernelNames names the leaf kernels by id.
var KernelNames = []string{"birth", "death", "modification"}

// pcgStream is the second PCG word; the first is the chain seed.
const pcgStream = 0x853c49e6748fea9b

// Model is a validated parameter set with its evidence loaded. It is
// immutable and shared by all chains of an ensemble.
type Model struct {
	Params   *params.Parameters
	Region   geometry.Region
	Evidence *imaging.Evidence
	Field    *imaging.GradientField

	unary  rjmcmc.UnaryEnergy[geometry.Shape]
	binary energy.Intersection
}

// NewModel validates p, loads the evidence image through cache (a nil cache
// uses a private one) and resolves the running box, which defaults to the
// image bounds.
func NewModel(p *params.Parameters, cache *imaging.ImageCache, logger *zap.Logger) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if cache == nil {
		cache = imaging.NewImageCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	box := r2.EmptyRect()
	if !p.Box.IsZero() {
		box = r2.RectFromPoints(
			r2.Point{X: p.Box.MinX, Y: p.Box.MinY},
			r2.Point{X: p.Box.MaxX, Y: p.Box.MaxY},
		)
	}

	m := &Model{
		Params: p,
		binary: energy.Intersection{Weight: p.Energy.IntersectionWeight},
	}
	if p.Input.Image != "" {
		ev, err := imaging.LoadEvidence(cache, p.Input.Image, box, p.Energy.Subsampling)
		if err != nil {
			return nil, fmt.Errorf("failed to load evidence: %w", err)
		}
		m.Evidence = ev
		box = ev.Bounds()
		logger.Info("evidence loaded",
			zap.String("image", p.Input.Image),
			zap.Int("width", ev.Gray.Bounds().Dx()),
			zap.Int("height", ev.Gray.Bounds().Dy()),
			zap.Float64("step", ev.Step),
		)
	}
	if box.IsEmpty() {
		return nil, fmt.Errorf("%w: a running box is required without an input image", params.ErrInvalid)
	}

	m.Region = geometry.Region{
		Box:      box,
		MinSize:  p.Shape.MinSize,
		MaxSize:  p.Shape.MaxSize,
		MaxRatio: p.Shape.MaxRatio,
	}

	switch p.Energy.Model {
	case params.ModelGradient:
		m.Field = m.Evidence.Gradient(p.Energy.Sigma)
		m.unary = energy.Gradient{Field: m.Field, Default: p.Energy.Individual}
	case params.ModelSurface:
		m.unary = energy.Surface{}
	default:
		return nil, fmt.Errorf("%w: unknown energy model %q", params.ErrInvalid, p.Energy.Model)
	}

	logger.Debug("model ready",
		zap.Float64s("box", []float64{box.X.Lo, box.Y.Lo, box.X.Hi, box.Y.Hi}),
		zap.String("energy", p.Energy.Model),
	)
	return m, nil
}

// NewConfiguration returns an empty configuration scored by the model.
func (m *Model) NewConfiguration() *rjmcmc.Graph[geometry.Shape] {
	return rjmcmc.NewGraph[geometry.Shape](m.unary, m.binary, energy.Overlap{})
}

// UnaryEnergy scores s alone.
func (m *Model) UnaryEnergy(s geometry.Shape) float64 { return m.unary.UnaryEnergy(s) }

// Canvas returns the background for overlays and its world mapping: the
// evidence image when there is one, a blank canvas over the box otherwise.
func (m *Model) Canvas() (img image.Image, origin r2.Point, step float64) {
	if m.Evidence != nil {
		return m.Evidence.Gray, m.Evidence.Origin, m.Evidence.Step
	}
	return imaging.Canvas(m.Region.Box), m.Region.Box.Lo(), 1
}

// NewSampler returns a sampler over birth, death and modification kernels
// drawing from its own PCG stream seeded with seed.
func (m *Model) NewSampler(seed uint64) (*rjmcmc.Sampler[geometry.Shape], error) {
	p := m.Params
	gen := NewGenerator(m.Region, p.Shape.RectangleProbability, p.Shape.GeneratorRetries)
	birthDeath := rjmcmc.NewBirthDeath[geometry.Shape](gen, p.Kernels.Birth, p.Kernels.Death)
	modification := rjmcmc.NewModificationKernel[geometry.Shape](NewModifier(m.Region), p.Kernels.Modification,
		rjmcmc.WithSingleProbability(p.Kernels.SingleModification))

	intensity, err := rjmcmc.NewPointProcess(p.Prior.Lambda)
	if err != nil {
		return nil, err
	}
	prior := rjmcmc.Joint{intensity, rjmcmc.Uniform{Min: p.Prior.MinCount, Max: p.Prior.MaxCount}}

	rng := rand.New(rand.NewPCG(seed, pcgStream))
	return rjmcmc.NewSampler[geometry.Shape](rng, prior, rjmcmc.Metropolis{}, birthDeath, modification)
}
