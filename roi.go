package carcount

import (
	"image"

	clipper "github.com/ctessum/go.clipper"
)

// roiFilter restricts which detection centers are eligible for crossing
// evaluation.  The default policy excludes a margin along every frame edge
// so partially visible objects entering or leaving the frame are never
// counted.  A custom polygon narrows eligibility further, the polygon is
// inset by the same margin and detection centers are tested point in
// polygon
type roiFilter struct {
	width   int
	height  int
	marginX int
	marginY int
	polygon []image.Point
}

// newROIFilter builds the filter for a frame size.  margin is the excluded
// fraction of each dimension, polygon is optional
func newROIFilter(margin float64, polygon []image.Point, dims FrameDims) *roiFilter {

	f := &roiFilter{
		width:   dims.Width,
		height:  dims.Height,
		marginX: int(margin * float64(dims.Width)),
		marginY: int(margin * float64(dims.Height)),
	}

	if len(polygon) >= 3 {
		inset := f.marginX
		if f.marginY < inset {
			inset = f.marginY
		}
		f.polygon = insetPolygon(polygon, float64(inset))
	}

	return f
}

// eligible reports whether a detection center may take part in counting
func (f *roiFilter) eligible(x, y int) bool {

	if x < f.marginX || x > f.width-f.marginX ||
		y < f.marginY || y > f.height-f.marginY {
		return false
	}

	if f.polygon != nil {
		return pointInPolygon(x, y, f.polygon)
	}

	return true
}

// insetPolygon shrinks a polygon inwards by delta pixels using a polygon
// offset operation.  If the polygon collapses entirely the original is
// returned unchanged
func insetPolygon(polygon []image.Point, delta float64) []image.Point {

	if delta <= 0 {
		return polygon
	}

	// the offset direction follows the winding order, normalise so a
	// negative delta always shrinks
	pts := polygon
	if signedArea(pts) < 0 {
		pts = make([]image.Point, len(polygon))
		for i, pt := range polygon {
			pts[len(polygon)-1-i] = pt
		}
	}

	var path clipper.Path

	for _, pt := range pts {
		path = append(path, &clipper.IntPoint{X: clipper.CInt(pt.X), Y: clipper.CInt(pt.Y)})
	}

	co := clipper.NewClipperOffset()
	co.AddPath(path, clipper.JtMiter, clipper.EtClosedPolygon)

	solution := co.Execute(-delta)

	if len(solution) == 0 || len(solution[0]) < 3 {
		return polygon
	}

	points := make([]image.Point, 0, len(solution[0]))

	for _, pt := range solution[0] {
		points = append(points, image.Point{X: int(pt.X), Y: int(pt.Y)})
	}

	return points
}

// signedArea computes the shoelace sum of a polygon, positive for
// counter-clockwise winding
func signedArea(polygon []image.Point) int {

	area := 0
	j := len(polygon) - 1

	for i := 0; i < len(polygon); i++ {
		area += polygon[j].X*polygon[i].Y - polygon[i].X*polygon[j].Y
		j = i
	}

	return area
}

// pointInPolygon tests a point against a closed polygon using the ray
// casting rule
func pointInPolygon(x, y int, polygon []image.Point) bool {

	inside := false
	j := len(polygon) - 1

	for i := 0; i < len(polygon); i++ {
		pi, pj := polygon[i], polygon[j]

		if (pi.Y > y) != (pj.Y > y) {
			crossX := float64(pj.X-pi.X)*float64(y-pi.Y)/float64(pj.Y-pi.Y) + float64(pi.X)

			if float64(x) < crossX {
				inside = !inside
			}
		}

		j = i
	}

	return inside
}
