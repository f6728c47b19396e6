package tracker

// Rect represents a bounding box in tlwh (top-left x, top-left y, width,
// height) format
type Rect struct {
	X float32
	Y float32
	W float32
	H float32
}

// NewRect creates a new Rect with given tlwh coordinates
func NewRect(x, y, width, height float32) Rect {
	return Rect{X: x, Y: y, W: width, H: height}
}

// NewRectTlbr creates a Rect from tlbr (top-left, bottom-right) corner
// coordinates
func NewRectTlbr(x1, y1, x2, y2 float32) Rect {
	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// BRX returns the bottom-right x coordinate of the rectangle
func (r Rect) BRX() float32 {
	return r.X + r.W
}

// BRY returns the bottom-right y coordinate of the rectangle
func (r Rect) BRY() float32 {
	return r.Y + r.H
}

// CenterX returns the x coordinate of the rectangle center
func (r Rect) CenterX() float32 {
	return r.X + r.W/2
}

// CenterY returns the y coordinate of the rectangle center
func (r Rect) CenterY() float32 {
	return r.Y + r.H/2
}

// Area returns the pixel area of the rectangle
func (r Rect) Area() float32 {
	return r.W * r.H
}

// IoU calculates the Intersection over Union with another rectangle
func (r Rect) IoU(other Rect) float32 {

	ix1 := maxf(r.X, other.X)
	iy1 := maxf(r.Y, other.Y)
	ix2 := minf(r.BRX(), other.BRX())
	iy2 := minf(r.BRY(), other.BRY())

	iw := ix2 - ix1
	ih := iy2 - iy1

	if iw <= 0 || ih <= 0 {
		return 0
	}

	inter := iw * ih
	union := r.Area() + other.Area() - inter

	if union <= 0 {
		return 0
	}

	return inter / union
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
