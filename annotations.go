package carcount

// DrawHint carries everything a presentation layer needs to render the
// overlay for one detection without re-deriving any counting logic
type DrawHint struct {
	// Box is the detection bounding box in frame pixels
	Box BoxRect
	// Label is the display text for the object, eg: "car #12 0.87"
	Label string
	// CenterX, CenterY is the box center the counting logic evaluated
	CenterX int
	CenterY int
	// TrackID is the object identity, or NoTrackID
	TrackID int64
	// Counted is true once the object has been charged to a counter
	Counted bool
}

// LineHint describes a resolved counting line for rendering
type LineHint struct {
	Name      string
	PositionY int
	Tolerance int
}

// Counts is a point in time snapshot of the named counters.  Total is
// always the sum of the named counters, it is derived and never stored
type Counts struct {
	Counters map[string]int
	Total    int
}

// FrameResult is the outcome of processing one frame of detections
type FrameResult struct {
	Counts  Counts
	Objects []DrawHint
	Lines   []LineHint
}
