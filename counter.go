package carcount

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// ErrNotConfigured occurs when Process is called before Configure has
// resolved the counting line positions
var ErrNotConfigured = errors.New("counter not configured")

// Counter is a single counting session.  It owns all mutable counting
// state: the named counters, the track store and the fallback event
// ledger.  One mutex guards Configure, Process, Reset and Counts so a
// reset can never interleave with a partially applied frame update.
//
// The Counter is a sequential stream processor, one detection batch in,
// one counter snapshot out.  Concurrent Process calls are not a supported
// mode, callers with a separate frame producer must serialise them.
type Counter struct {
	mu sync.Mutex

	params   Params
	registry *lineRegistry
	tracks   *trackStore
	events   *eventLedger
	counts   map[string]int

	roi     *roiFilter
	roiDims FrameDims

	// now is a hook for tests
	now func() time.Time
}

// NewCounter creates a counting session.  Zero valued fields in params are
// replaced with the DefaultParams values
func NewCounter(params Params) *Counter {

	def := DefaultParams()

	if params.Tolerance == 0 {
		params.Tolerance = def.Tolerance
	}
	if params.TrackTimeout == 0 {
		params.TrackTimeout = def.TrackTimeout
	}
	if params.ROIMargin == 0 {
		params.ROIMargin = def.ROIMargin
	}
	if params.EventWindow == 0 {
		params.EventWindow = def.EventWindow
	}
	if params.EventDistance == 0 {
		params.EventDistance = def.EventDistance
	}

	return &Counter{
		params: params,
		tracks: newTrackStore(),
		events: &eventLedger{},
		counts: make(map[string]int),
		now:    time.Now,
	}
}

// Configure validates and installs the session's counting lines.  A zero
// frameHeight defers pixel resolution to the first processed frame.
// Calling Configure again with identical lines is a no-op.  Changing the
// lines mid session clears all track history, a crossing decision is only
// meaningful against the line position in effect at both sampled
// positions, so a moved line makes stored positions unusable
func (c *Counter) Configure(frameHeight int, specs []LineSpec) error {

	c.mu.Lock()
	defer c.mu.Unlock()

	reg, err := newLineRegistry(specs, c.params.Tolerance)

	if err != nil {
		return err
	}

	if frameHeight > 0 {
		reg.resolve(frameHeight)
	}

	if c.registry != nil && c.registry.sameSpecs(reg) {
		if !reg.resolved || (c.registry.resolved && c.registry.frameHeight == frameHeight) {
			// same geometry, keep existing state
			return nil
		}
	}

	c.registry = reg
	c.tracks.clear()
	c.events.clear()

	// give every counter named by a rule a zero slot so snapshots list
	// them before the first count
	for _, spec := range reg.specs {
		for _, name := range spec.Rule {
			if _, ok := c.counts[name]; !ok {
				c.counts[name] = 0
			}
		}
	}

	return nil
}

// Process runs one frame of detections through the counting pipeline and
// returns the updated counter snapshot along with rendering hints.  It
// never blocks on I/O.  Malformed detections are skipped and logged, they
// don't fail the rest of the frame
func (c *Counter) Process(dets []Detection, dims FrameDims) (*FrameResult, error) {

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.registry == nil {
		return nil, ErrNotConfigured
	}

	if !c.registry.resolved {
		if dims.Height <= 0 {
			return nil, fmt.Errorf("%w: frame height unknown", ErrNotConfigured)
		}
		c.registry.resolve(dims.Height)
	}

	if c.roi == nil || c.roiDims != dims {
		c.roi = newROIFilter(c.params.ROIMargin, c.params.ROIPolygon, dims)
		c.roiDims = dims
	}

	now := c.now()

	res := &FrameResult{
		Lines: make([]LineHint, len(c.registry.lines)),
	}

	for i, line := range c.registry.lines {
		res.Lines[i] = LineHint{
			Name:      line.spec.Name,
			PositionY: line.positionY,
			Tolerance: line.tolerance,
		}
	}

	for i, det := range dets {

		if !det.Box.valid() {
			log.Printf("carcount: skipping detection %d with malformed box %+v", i, det.Box)
			continue
		}

		if det.Probability < c.params.MinProb {
			continue
		}

		if !c.classEligible(det.Class) {
			continue
		}

		cx, cy := det.Box.Center()

		hint := DrawHint{
			Box:     det.Box,
			Label:   c.label(det),
			CenterX: cx,
			CenterY: cy,
			TrackID: det.TrackID,
		}

		if c.roi.eligible(cx, cy) {
			switch {
			case c.params.Mode == ModeUntracked:
				hint.Counted = c.countUntracked(cx, cy, now)

			case det.TrackID != NoTrackID:
				c.countTracked(det.TrackID, cx, cy, now)
				hint.Counted = c.tracks.isCounted(det.TrackID)
			}
		}

		res.Objects = append(res.Objects, hint)
	}

	// bound memory, cheap while the store is small
	c.tracks.evictStale(now, c.params.TrackTimeout)
	c.events.prune(now, c.params.EventWindow)

	res.Counts = c.snapshot()

	return res, nil
}

// countTracked updates the track state for an identity and charges a
// counter on the first confirmed crossing.  A track id is counted at most
// once per session, no matter how often it crosses a line afterwards or
// how many lines it crosses
func (c *Counter) countTracked(id int64, x, y int, now time.Time) {

	_, prevY, seen := c.tracks.upsert(id, x, y, now)

	if !seen || c.tracks.isCounted(id) {
		return
	}

	for _, line := range c.registry.lines {

		dir, ok := line.crossingDirection(prevY, y)
		if !ok {
			continue
		}

		counter, ok := line.spec.Rule[dir]
		if !ok {
			continue
		}

		c.counts[counter]++
		c.tracks.markCounted(id)
		return
	}
}

// countUntracked charges a counter for a detection sitting inside a line's
// tolerance band, unless a recent event near the same spot already claimed
// it.  Reports whether a count was recorded
func (c *Counter) countUntracked(x, y int, now time.Time) bool {

	counted := false

	for i, line := range c.registry.lines {

		if !line.withinBand(y) {
			continue
		}

		counter, ok := line.spec.Rule[line.spec.FallbackDirection]
		if !ok {
			continue
		}

		if c.events.seen(i, x, now, c.params.EventWindow, c.params.EventDistance) {
			continue
		}

		c.counts[counter]++
		c.events.add(crossingEvent{
			when:    now,
			x:       x,
			line:    i,
			counter: counter,
		})

		counted = true
	}

	return counted
}

// Reset zeroes all counters and clears the track store and event ledger
// in one atomic step relative to Process.  Calling Reset twice yields the
// same state as once
func (c *Counter) Reset() {

	c.mu.Lock()
	defer c.mu.Unlock()

	for name := range c.counts {
		c.counts[name] = 0
	}

	c.tracks.clear()
	c.events.clear()
}

// Counts returns a read only snapshot of the named counters, safe to call
// between Process calls
func (c *Counter) Counts() Counts {

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshot()
}

// TrackCount returns the number of identities currently held in the track
// store, useful for monitoring store growth
func (c *Counter) TrackCount() int {

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.tracks.size()
}

// snapshot copies the counters and derives the total.  Callers must hold
// the session lock
func (c *Counter) snapshot() Counts {

	out := Counts{
		Counters: make(map[string]int, len(c.counts)),
	}

	for name, n := range c.counts {
		out.Counters[name] = n
		out.Total += n
	}

	return out
}

// classEligible reports whether a detector class takes part in counting
func (c *Counter) classEligible(class int) bool {

	if len(c.params.EligibleClasses) == 0 {
		return true
	}

	for _, id := range c.params.EligibleClasses {
		if id == class {
			return true
		}
	}

	return false
}

// label builds the annotation text for a detection
func (c *Counter) label(det Detection) string {

	name := "vehicle"

	if det.Class >= 0 && det.Class < len(c.params.ClassNames) {
		name = c.params.ClassNames[det.Class]
	}

	if det.TrackID != NoTrackID {
		return fmt.Sprintf("%s #%d %.2f", name, det.TrackID, det.Probability)
	}

	return fmt.Sprintf("%s %.2f", name, det.Probability)
}
