// Package geometry implements the footprint shapes: oriented rectangles and
// circles.
//
// Shape is a closed sum type. The only implementations are Rectangle and
// Circle, and code that branches on the concrete shape uses an exhaustive
// type switch. Points and boxes are github.com/golang/geo/r2 values in image
// coordinates (x right, y down).
package geometry
