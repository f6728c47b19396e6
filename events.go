package carcount

import "time"

// crossingEvent records a single count taken in untracked fallback mode.
// The ledger exists purely to suppress duplicate counts from repeated
// detections of the same object lingering inside a line's tolerance band
type crossingEvent struct {
	when    time.Time
	x       int
	line    int
	counter string
}

// eventLedger is the short lived, append only record of recent fallback
// counts, pruned by age once per processed frame
type eventLedger struct {
	events []crossingEvent
}

// seen reports whether an event for the same line already exists within
// distance pixels on the x axis and window in time
func (l *eventLedger) seen(line, x int, now time.Time, window time.Duration, distance int) bool {

	for _, ev := range l.events {
		if ev.line != line {
			continue
		}

		if now.Sub(ev.when) > window {
			continue
		}

		dx := x - ev.x
		if dx < 0 {
			dx = -dx
		}

		if dx <= distance {
			return true
		}
	}

	return false
}

// add appends a new event to the ledger
func (l *eventLedger) add(ev crossingEvent) {
	l.events = append(l.events, ev)
}

// prune drops events older than window
func (l *eventLedger) prune(now time.Time, window time.Duration) {

	keep := l.events[:0]

	for _, ev := range l.events {
		if now.Sub(ev.when) <= window {
			keep = append(keep, ev)
		}
	}

	l.events = keep
}

// clear drops all events
func (l *eventLedger) clear() {
	l.events = nil
}
