package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/golang/geo/r2"
)

// Evidence is a grayscale, cropped and subsampled view of an input image.
type Evidence struct {
	// Gray holds one luminance sample per subsampled pixel in R=G=B.
	Gray *image.NRGBA

	// Origin is the world position of the top-left corner of Gray.
	Origin r2.Point

	// Step is the world size of one Gray pixel.
	Step float64
}

// NewEvidence crops img to box (world coordinates; an empty or degenerate
// box keeps the whole image), subsamples it by step (values below 2 keep full resolution)
// and converts it to grayscale.
//
// Returns an error when box does not overlap the image or leaves fewer than
// one pixel after subsampling.
func NewEvidence(img image.Image, box r2.Rect, step int) (*Evidence, error) {
	bounds := img.Bounds()
	region := bounds
	if size := box.Size(); !box.IsEmpty() && size.X > 0 && size.Y > 0 {
		region = image.Rect(
			int(math.Floor(box.X.Lo)), int(math.Floor(box.Y.Lo)),
			int(math.Ceil(box.X.Hi)), int(math.Ceil(box.Y.Hi)),
		).Intersect(bounds)
	}
	if region.Empty() {
		return nil, fmt.Errorf("running box %v does not overlap image bounds %v", box, bounds)
	}

	cropped := imaging.Crop(img, region)
	if step < 1 {
		step = 1
	}
	if step > 1 {
		w, h := region.Dx()/step, region.Dy()/step
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("subsampling step %d leaves no pixels in %v", step, region)
		}
		cropped = imaging.Resize(cropped, w, h, imaging.Box)
	}

	return &Evidence{
		Gray:   imaging.Grayscale(cropped),
		Origin: r2.Point{X: float64(region.Min.X), Y: float64(region.Min.Y)},
		Step:   float64(step),
	}, nil
}

// LoadEvidence loads path through cache and builds its Evidence.
func LoadEvidence(cache *ImageCache, path string, box r2.Rect, step int) (*Evidence, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	ev, err := NewEvidence(img, box, step)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare %s: %w", path, err)
	}
	return ev, nil
}

// Bounds returns the world rectangle covered by the evidence.
func (e *Evidence) Bounds() r2.Rect {
	b := e.Gray.Bounds()
	return r2.RectFromPoints(e.Origin, r2.Point{
		X: e.Origin.X + float64(b.Dx())*e.Step,
		Y: e.Origin.Y + float64(b.Dy())*e.Step,
	})
}

// Luminance returns the gray level (0-255) of evidence pixel (x, y).
func (e *Evidence) Luminance(x, y int) float64 {
	return float64(e.Gray.Pix[e.Gray.PixOffset(x, y)])
}
