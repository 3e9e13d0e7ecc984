// Package imaging turns raster images into the evidence footprints are
// fitted to, and renders footprints back onto images.
//
// The pipeline is:
//
//  1. ImageCache.Load decodes the file once (PNG, JPEG, GIF, TIFF, BMP).
//  2. NewEvidence crops to the running box, subsamples by an integer step
//     and converts to grayscale.
//  3. Evidence.Gradient smooths with a Gaussian and takes central
//     differences, giving a GradientField.
//  4. GradientField.SegmentFlux and CircleFlux integrate the gradient
//     across shape boundaries.
//
// # Coordinate System
//
// All geometry is expressed in world coordinates, which are the pixel
// coordinates of the original, uncropped image: X increases rightward and Y
// downward, and the pixel (i, j) covers [i, i+1) × [j, j+1). Evidence and
// GradientField remember the crop origin and subsampling step so callers
// never convert coordinates themselves.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Evidence and GradientField are
// immutable once built and may be shared between chains.
package imaging
