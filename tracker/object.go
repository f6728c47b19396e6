package tracker

// Object represents an object detection handed to the tracker for identity
// assignment
type Object struct {
	// Rect is the bounding box of the detected object
	Rect Rect
	// Label is the class label of the object detected
	Label int
	// Prob is the confidence/probability of the object detected
	Prob float32
}

// NewObject is a constructor function for the Object struct
func NewObject(rect Rect, label int, prob float32) Object {
	return Object{
		Rect:  rect,
		Label: label,
		Prob:  prob,
	}
}
