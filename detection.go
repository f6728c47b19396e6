package carcount

// NoTrackID is the TrackID value for a detection whose detector could not
// maintain a persistent identity across frames.
const NoTrackID int64 = -1

// BoxRect are the pixel dimensions of the bounding box of a detected object
type BoxRect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Center returns the center point of the bounding box
func (b BoxRect) Center() (x, y int) {
	return (b.Left + b.Right) / 2, (b.Top + b.Bottom) / 2
}

// valid reports whether the box spans a non-empty pixel area
func (b BoxRect) valid() bool {
	return b.Right > b.Left && b.Bottom > b.Top
}

// Detection defines the attributes of a single object reported by the
// detector for one frame.  Detections are ephemeral, the Counter keeps no
// reference to them beyond the Process call they were passed to.
type Detection struct {
	// Box are the bounding box dimensions of the object location
	Box BoxRect
	// Class is the detector class of the object, eg: the line number in the
	// labels file a YOLO model was trained on
	Class int
	// Probability is the confidence score of the object detected
	Probability float32
	// TrackID is the persistent identity assigned by the detector or an
	// upstream tracker, or NoTrackID when identity is unavailable
	TrackID int64
}

// FrameDims are the pixel dimensions of the video frame the detections
// were produced from
type FrameDims struct {
	Width  int
	Height int
}
