package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/golang/geo/r2"
)

// GradientField is the smoothed luminance gradient of an Evidence, in gray
// levels per world unit, sampled at evidence pixel centers.
type GradientField struct {
	width, height int
	origin        r2.Point
	step          float64
	gx, gy        []float64
}

// Gradient smooths the evidence with a Gaussian of radius sigma (in
// evidence pixels, passed to bild's blur.Gaussian; zero disables smoothing)
// and differentiates it with central differences. Borders use one-sided
// differences.
func (e *Evidence) Gradient(sigma float64) *GradientField {
	var src image.Image = e.Gray
	if sigma > 0 {
		src = blur.Gaussian(e.Gray, sigma)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	lum := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			lum[y*w+x] = float64(color.GrayModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y)
		}
	}

	f := &GradientField{
		width:  w,
		height: h,
		origin: e.Origin,
		step:   e.Step,
		gx:     make([]float64, w*h),
		gy:     make([]float64, w*h),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, x1 := clamp(x-1, 0, w-1), clamp(x+1, 0, w-1)
			y0, y1 := clamp(y-1, 0, h-1), clamp(y+1, 0, h-1)
			i := y*w + x
			if x1 > x0 {
				f.gx[i] = (lum[y*w+x1] - lum[y*w+x0]) / (float64(x1-x0) * e.Step)
			}
			if y1 > y0 {
				f.gy[i] = (lum[y1*w+x] - lum[y0*w+x]) / (float64(y1-y0) * e.Step)
			}
		}
	}
	return f
}

// Bounds returns the world rectangle covered by the field.
func (f *GradientField) Bounds() r2.Rect {
	return r2.RectFromPoints(f.origin, r2.Point{
		X: f.origin.X + float64(f.width)*f.step,
		Y: f.origin.Y + float64(f.height)*f.step,
	})
}

// At returns the gradient at world point p by bilinear interpolation between
// pixel centers. Points outside the field have a zero gradient.
func (f *GradientField) At(p r2.Point) r2.Point {
	if f.width == 0 || f.height == 0 {
		return r2.Point{}
	}
	u := (p.X-f.origin.X)/f.step - 0.5
	v := (p.Y-f.origin.Y)/f.step - 0.5
	if u < -0.5 || v < -0.5 || u > float64(f.width)-0.5 || v > float64(f.height)-0.5 {
		return r2.Point{}
	}

	x0 := int(math.Floor(u))
	y0 := int(math.Floor(v))
	tx, ty := u-float64(x0), v-float64(y0)
	sample := func(x, y int) (float64, float64) {
		i := clamp(y, 0, f.height-1)*f.width + clamp(x, 0, f.width-1)
		return f.gx[i], f.gy[i]
	}
	ax, ay := sample(x0, y0)
	bx, by := sample(x0+1, y0)
	cx, cy := sample(x0, y0+1)
	dx, dy := sample(x0+1, y0+1)
	return r2.Point{
		X: lerp(lerp(ax, bx, tx), lerp(cx, dx, tx), ty),
		Y: lerp(lerp(ay, by, tx), lerp(cy, dy, tx), ty),
	}
}

// SegmentFlux returns the line integral of the gradient across the segment
// a→b, ∫ g·n ds, with n the unit normal obtained by turning a→b clockwise
// in a y-up frame, n = (dy, -dx)/|ab|. The segment is sampled at one point
// per field pixel.
func (f *GradientField) SegmentFlux(a, b r2.Point) float64 {
	d := b.Sub(a)
	length := d.Norm()
	if length == 0 {
		return 0
	}
	n := r2.Point{X: d.Y, Y: -d.X}.Mul(1 / length)

	samples := max(1, int(math.Ceil(length/f.step)))
	var sum float64
	for k := 0; k < samples; k++ {
		t := (float64(k) + 0.5) / float64(samples)
		sum += f.At(a.Add(d.Mul(t))).Dot(n)
	}
	return sum / float64(samples) * length
}

// CircleFlux returns the outward flux of the gradient through the circle,
// ∮ g·r̂ ds, sampled at one point per field pixel of circumference (at least
// 16 points).
func (f *GradientField) CircleFlux(center r2.Point, radius float64) float64 {
	if radius <= 0 {
		return 0
	}
	perimeter := 2 * math.Pi * radius
	samples := max(16, int(math.Ceil(perimeter/f.step)))
	var sum float64
	for k := 0; k < samples; k++ {
		a := 2 * math.Pi * float64(k) / float64(samples)
		dir := r2.Point{X: math.Cos(a), Y: math.Sin(a)}
		sum += f.At(center.Add(dir.Mul(radius))).Dot(dir)
	}
	return sum / float64(samples) * perimeter
}

// Magnitude renders the gradient norm as a grayscale image scaled so that
// the strongest gradient is white.
func (f *GradientField) Magnitude() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.width, f.height))
	var peak float64
	for i := range f.gx {
		peak = math.Max(peak, math.Hypot(f.gx[i], f.gy[i]))
	}
	if peak == 0 {
		return img
	}
	for i := range f.gx {
		img.Pix[i] = uint8(math.Round(255 * math.Hypot(f.gx[i], f.gy[i]) / peak))
	}
	return img
}

// clamp constrains val to [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
