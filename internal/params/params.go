// Package params holds the parameters of a footprint extraction run.
//
// Parameters are resolved in this order, later sources overriding earlier
// ones: Default, a YAML file, FOOTPRINT_* environment variables, then any
// overrides the caller applies (the CLI's flags). Validate must be called
// once everything is applied.
package params

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FOOTPRINT_"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid parameters")

// Parameters is the full parameter set.
type Parameters struct {
	Run     Run     `yaml:"run" envPrefix:"RUN_"`
	Box     Box     `yaml:"box" envPrefix:"BOX_"`
	Shape   Shape   `yaml:"shape" envPrefix:"SHAPE_"`
	Kernels Kernels `yaml:"kernels" envPrefix:"KERNEL_"`
	Prior   Prior   `yaml:"prior" envPrefix:"PRIOR_"`
	Energy  Energy  `yaml:"energy" envPrefix:"ENERGY_"`
	Input   Input   `yaml:"input" envPrefix:"INPUT_"`
	Output  Output  `yaml:"output" envPrefix:"OUTPUT_"`
}

// Run controls the annealing loop.
type Run struct {
	Iterations          int     `yaml:"iterations" env:"ITERATIONS" validate:"gt=0"`
	InitialTemperature  float64 `yaml:"initial_temperature" env:"INITIAL_TEMPERATURE" validate:"gt=0"`
	DecreaseCoefficient float64 `yaml:"decrease_coefficient" env:"DECREASE_COEFFICIENT" validate:"gt=0,lte=1"`
	Seed                uint64  `yaml:"seed" env:"SEED"`
	Chains              int     `yaml:"chains" env:"CHAINS" validate:"gte=1,lte=256"`
	DumpEvery           int     `yaml:"dump_every" env:"DUMP_EVERY" validate:"gte=0"`
	SaveEvery           int     `yaml:"save_every" env:"SAVE_EVERY" validate:"gte=0"`
}

// Box is the running box in image pixel coordinates. An all-zero box means
// the whole image.
type Box struct {
	MinX float64 `yaml:"min_x" env:"MIN_X"`
	MinY float64 `yaml:"min_y" env:"MIN_Y"`
	MaxX float64 `yaml:"max_x" env:"MAX_X"`
	MaxY float64 `yaml:"max_y" env:"MAX_Y"`
}

// IsZero reports whether the box is unset.
func (b Box) IsZero() bool { return b == Box{} }

// Shape bounds the footprints and their generator.
type Shape struct {
	MinSize              float64 `yaml:"min_size" env:"MIN_SIZE" validate:"gt=0"`
	MaxSize              float64 `yaml:"max_size" env:"MAX_SIZE" validate:"gtfield=MinSize"`
	MaxRatio             float64 `yaml:"max_ratio" env:"MAX_RATIO" validate:"gte=1"`
	RectangleProbability float64 `yaml:"rectangle_probability" env:"RECTANGLE_PROBABILITY" validate:"gte=0,lte=1"`
	GeneratorRetries     int     `yaml:"generator_retries" env:"GENERATOR_RETRIES" validate:"gte=1"`
}

// Kernels holds the proposal masses. They need not sum to one.
type Kernels struct {
	Birth              float64 `yaml:"birth" env:"BIRTH" validate:"gte=0"`
	Death              float64 `yaml:"death" env:"DEATH" validate:"gte=0"`
	Modification       float64 `yaml:"modification" env:"MODIFICATION" validate:"gte=0"`
	SingleModification float64 `yaml:"single_modification" env:"SINGLE_MODIFICATION" validate:"gte=0,lte=1"`
}

// Total returns the sum of the masses.
func (k Kernels) Total() float64 { return k.Birth + k.Death + k.Modification }

// Prior is the population prior: a Poisson point process of mean Lambda
// restricted to [MinCount, MaxCount].
type Prior struct {
	Lambda   float64 `yaml:"lambda" env:"LAMBDA" validate:"gt=0"`
	MinCount int     `yaml:"min_count" env:"MIN_COUNT" validate:"gte=0"`
	MaxCount int     `yaml:"max_count" env:"MAX_COUNT" validate:"gtefield=MinCount"`
}

// Energy model names.
const (
	ModelGradient = "gradient"
	ModelSurface  = "surface"
)

// Energy selects and tunes the energy model.
type Energy struct {
	Model              string  `yaml:"model" env:"MODEL" validate:"oneof=gradient surface"`
	Individual         float64 `yaml:"individual" env:"INDIVIDUAL"`
	IntersectionWeight float64 `yaml:"intersection_weight" env:"INTERSECTION_WEIGHT" validate:"gte=0"`
	Sigma              float64 `yaml:"sigma" env:"SIGMA" validate:"gte=0"`
	Subsampling        int     `yaml:"subsampling" env:"SUBSAMPLING" validate:"gte=1"`
}

// Input names the evidence image.
type Input struct {
	Image string `yaml:"image" env:"IMAGE"`
}

// Output controls where snapshots are written.
type Output struct {
	Dir string `yaml:"dir" env:"DIR"`
}

// Default returns the built-in parameter set.
func Default() *Parameters {
	return &Parameters{
		Run: Run{
			Iterations:          100000,
			InitialTemperature:  150,
			DecreaseCoefficient: 0.99995,
			Seed:                1,
			Chains:              1,
			DumpEvery:           10000,
			SaveEvery:           0,
		},
		Shape: Shape{
			MinSize:              5,
			MaxSize:              200,
			MaxRatio:             5,
			RectangleProbability: 0.8,
			GeneratorRetries:     100,
		},
		Kernels: Kernels{
			Birth:              0.1,
			Death:              0.1,
			Modification:       0.8,
			SingleModification: 0.5,
		},
		Prior: Prior{
			Lambda:   50,
			MinCount: 0,
			MaxCount: 1000,
		},
		Energy: Energy{
			Model:              ModelGradient,
			Individual:         250,
			IntersectionWeight: 10,
			Sigma:              2,
			Subsampling:        1,
		},
		Output: Output{Dir: "out"},
	}
}

// Load returns Default overlaid with the YAML file at path (skipped when
// path is empty) and then with the environment. environ replaces the process
// environment when non-nil. The result is not validated.
func Load(path string, environ map[string]string) (*Parameters, error) {
	p := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read parameters: %w", err)
		}
		if err := p.ApplyYAML(data); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(p, opts); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return p, nil
}

// ApplyYAML overlays the YAML document data onto p. Unknown keys are
// rejected.
func (p *Parameters) ApplyYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// YAML renders p as a YAML document.
func (p *Parameters) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and cross-field rules. Every failure
// wraps ErrInvalid.
func (p *Parameters) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]error, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.ActualTag(), fe.Value()))
			}
			return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(msgs...))
		}
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if !p.Box.IsZero() && (p.Box.MinX >= p.Box.MaxX || p.Box.MinY >= p.Box.MaxY) {
		return fmt.Errorf("%w: box min (%v,%v) must be below max (%v,%v)",
			ErrInvalid, p.Box.MinX, p.Box.MinY, p.Box.MaxX, p.Box.MaxY)
	}
	if !(p.Kernels.Total() > 0) {
		return fmt.Errorf("%w: kernel probabilities must sum to a positive total", ErrInvalid)
	}
	if p.Energy.Model == ModelGradient && p.Input.Image == "" {
		return fmt.Errorf("%w: the gradient energy model needs input.image", ErrInvalid)
	}
	return nil
}
