package carcount

import (
	"image"
	"time"
)

// CountMode selects the deduplication strategy for a session
type CountMode int

const (
	// ModeTracked counts on confirmed line crossings keyed by track
	// identity.  Detections without a TrackID are still annotated but
	// never counted
	ModeTracked CountMode = iota
	// ModeUntracked counts detections found inside a line's tolerance
	// band, deduplicated by a spatio-temporal event window instead of
	// identity.  Less precise than ModeTracked, it trades accuracy for
	// not requiring a tracking detector
	ModeUntracked
)

// Params holds the configuration for a counting session
type Params struct {
	// Tolerance is the default pixel band either side of a counting line,
	// applied to lines that don't set their own
	Tolerance int
	// TrackTimeout is how long a track may go unseen before it is evicted
	TrackTimeout time.Duration
	// ROIMargin is the fraction of each frame dimension excluded along
	// the edges
	ROIMargin float64
	// ROIPolygon optionally restricts counting to a region of the frame.
	// The polygon is inset by the pixel margin before use
	ROIPolygon []image.Point
	// EventWindow is the time window used to suppress duplicate counts in
	// ModeUntracked
	EventWindow time.Duration
	// EventDistance is the horizontal pixel window used to suppress
	// duplicate counts in ModeUntracked
	EventDistance int
	// MinProb drops detections below this confidence before counting
	MinProb float32
	// EligibleClasses limits counting to these detector class ids.  Empty
	// means all classes are eligible
	EligibleClasses []int
	// Mode selects tracked or untracked counting for the session
	Mode CountMode
	// ClassNames are optional display names indexed by class id, used for
	// annotation labels
	ClassNames []string
}

// DefaultParams returns the recommended session parameters
func DefaultParams() Params {
	return Params{
		Tolerance:     15,
		TrackTimeout:  2500 * time.Millisecond,
		ROIMargin:     0.05,
		EventWindow:   time.Second,
		EventDistance: 50,
		MinProb:       0.25,
		Mode:          ModeTracked,
	}
}
