package visitor

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/golang/geo/r2"
	"go.uber.org/zap"

	"github.com/ironsheep/footprint-rjmcmc/internal/geometry"
	"github.com/ironsheep/footprint-rjmcmc/internal/imaging"
	"github.com/ironsheep/footprint-rjmcmc/internal/rjmcmc"
)

// Overlay saves the configuration drawn over a background image as
// <Dir>/<Prefix>-<iteration>.png every Every iterations, plus
// <Prefix>-begin.png and <Prefix>-end.png. Every <= 0 saves only those two.
//
// A failed save is logged and the run continues.
type Overlay struct {
	Dir    string
	Prefix string
	Every  int

	// Base is drawn under the outlines; Origin and Step map world
	// coordinates onto it as in imaging.DrawOverlay.
	Base   image.Image
	Origin r2.Point
	Step   float64

	// Score maps a footprint to [0, 1] for the colour ramp. Nil scores
	// everything 0.
	Score func(geometry.Shape) float64

	Style  imaging.OverlayStyle
	Logger *zap.Logger

	saved []string
}

// Begin implements anneal.Visitor.
func (o *Overlay) Begin(c rjmcmc.Configuration[geometry.Shape], _ *rjmcmc.Sampler[geometry.Shape], _ float64) {
	o.save("begin", c)
}

// Iterate implements anneal.Visitor. It never stops the run.
func (o *Overlay) Iterate(i int, _ float64, c rjmcmc.Configuration[geometry.Shape], _ *rjmcmc.Sampler[geometry.Shape]) bool {
	if o.Every > 0 && i%o.Every == 0 {
		o.save(fmt.Sprintf("%09d", i), c)
	}
	return true
}

// End implements anneal.Visitor.
func (o *Overlay) End(_ int, _ float64, c rjmcmc.Configuration[geometry.Shape], _ *rjmcmc.Sampler[geometry.Shape]) {
	o.save("end", c)
}

// Saved returns the paths written so far.
func (o *Overlay) Saved() []string { return o.saved }

func (o *Overlay) save(suffix string, c rjmcmc.Configuration[geometry.Shape]) {
	outlines := make([]imaging.Outline, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		s := c.Object(c.HandleAt(i))
		var score float64
		if o.Score != nil {
			score = o.Score(s)
		}
		outlines = append(outlines, imaging.Outline{Points: s.Outline(), Score: score})
	}

	name := suffix + ".png"
	if o.Prefix != "" {
		name = o.Prefix + "-" + name
	}
	path := filepath.Join(o.Dir, name)
	img := imaging.DrawOverlay(o.Base, o.Origin, o.Step, outlines, o.Style)
	if err := imaging.SavePNG(path, img); err != nil {
		if o.Logger != nil {
			o.Logger.Warn("failed to save overlay", zap.String("path", path), zap.Error(err))
		}
		return
	}
	o.saved = append(o.saved, path)
}
