package carcount

import (
	"errors"
	"fmt"
	"math"
)

// Direction is the vertical direction of travel a vehicle crossed a
// counting line in, relative to image coordinates where y grows downwards.
type Direction int

const (
	// DirectionDown is movement towards increasing y (down the frame)
	DirectionDown Direction = iota + 1
	// DirectionUp is movement towards decreasing y (up the frame)
	DirectionUp
)

// String returns the human readable direction name
func (d Direction) String() string {
	switch d {
	case DirectionDown:
		return "down"
	case DirectionUp:
		return "up"
	}
	return "none"
}

var (
	// ErrNoLines occurs when a Counter is configured without any counting
	// lines
	ErrNoLines = errors.New("at least one counting line is required")
	// ErrBadRatio occurs when a line ratio falls outside the [0,1] range.
	// Ratios are never clamped as an out of range value is a caller bug.
	ErrBadRatio = errors.New("line ratio outside [0,1]")
	// ErrBadTolerance occurs when a line is configured with a negative
	// tolerance band
	ErrBadTolerance = errors.New("line tolerance must not be negative")
)

// LineSpec configures a single counting line
type LineSpec struct {
	// Name identifies the line in annotations and logs
	Name string
	// Ratio is the vertical position of the line as a fraction of the
	// frame height, eg: 0.5 places the line mid frame
	Ratio float64
	// Tolerance is the pixel margin either side of the line a crossing
	// must fully clear before it is confirmed.  Zero uses the session
	// default from Params
	Tolerance int
	// Rule maps a crossing direction to the name of the counter it
	// increments.  Directions absent from the map are not counted
	Rule map[Direction]string
	// FallbackDirection selects which Rule entry is charged when counting
	// without track identities.  Defaults to DirectionDown
	FallbackDirection Direction
}

// countingLine is a LineSpec resolved against a known frame height
type countingLine struct {
	spec      LineSpec
	positionY int
	tolerance int
}

// crossingDirection decides whether a movement from prevY to curY crossed
// the line, and in which direction.  A crossing is only confirmed when both
// positions clear the outer edges of the tolerance band, so an object
// jittering on the line never triggers
func (l *countingLine) crossingDirection(prevY, curY int) (Direction, bool) {
	if prevY < l.positionY-l.tolerance && curY > l.positionY+l.tolerance {
		return DirectionDown, true
	}

	if prevY > l.positionY+l.tolerance && curY < l.positionY-l.tolerance {
		return DirectionUp, true
	}

	return 0, false
}

// withinBand reports whether a y coordinate currently sits inside the
// line's tolerance band
func (l *countingLine) withinBand(y int) bool {
	d := y - l.positionY
	if d < 0 {
		d = -d
	}
	return d <= l.tolerance
}

// lineRegistry holds the session's counting lines.  Specs are validated on
// creation and the pixel positions are resolved once the frame height is
// known, either up front or lazily from the first processed frame
type lineRegistry struct {
	specs       []LineSpec
	lines       []countingLine
	frameHeight int
	resolved    bool
}

// newLineRegistry validates the given line specs and returns an unresolved
// registry.  defaultTolerance replaces a zero Tolerance on any spec
func newLineRegistry(specs []LineSpec, defaultTolerance int) (*lineRegistry, error) {

	if len(specs) == 0 {
		return nil, ErrNoLines
	}

	for i, spec := range specs {
		if spec.Ratio < 0 || spec.Ratio > 1 {
			return nil, fmt.Errorf("line %d (%s): ratio %.3f: %w", i, spec.Name, spec.Ratio, ErrBadRatio)
		}

		if spec.Tolerance < 0 {
			return nil, fmt.Errorf("line %d (%s): tolerance %d: %w", i, spec.Name, spec.Tolerance, ErrBadTolerance)
		}
	}

	reg := &lineRegistry{
		specs: make([]LineSpec, len(specs)),
	}

	copy(reg.specs, specs)

	for i := range reg.specs {
		if reg.specs[i].Tolerance == 0 {
			reg.specs[i].Tolerance = defaultTolerance
		}
		if reg.specs[i].FallbackDirection == 0 {
			reg.specs[i].FallbackDirection = DirectionDown
		}
	}

	return reg, nil
}

// resolve fixes each line's pixel position from the frame height
func (r *lineRegistry) resolve(frameHeight int) {

	r.lines = make([]countingLine, len(r.specs))

	for i, spec := range r.specs {
		r.lines[i] = countingLine{
			spec:      spec,
			positionY: int(math.Round(float64(frameHeight) * spec.Ratio)),
			tolerance: spec.Tolerance,
		}
	}

	r.frameHeight = frameHeight
	r.resolved = true
}

// sameSpecs reports whether another registry describes the same lines,
// used to keep reconfiguration with identical specs a no-op
func (r *lineRegistry) sameSpecs(o *lineRegistry) bool {

	if len(r.specs) != len(o.specs) {
		return false
	}

	for i, spec := range r.specs {
		os := o.specs[i]

		if spec.Name != os.Name || spec.Ratio != os.Ratio ||
			spec.Tolerance != os.Tolerance ||
			spec.FallbackDirection != os.FallbackDirection {
			return false
		}

		if len(spec.Rule) != len(os.Rule) {
			return false
		}

		for dir, counter := range spec.Rule {
			if os.Rule[dir] != counter {
				return false
			}
		}
	}

	return true
}
