package tracker

import "sync"

// Point represents the x,y coordinates of the center of a tracked
// bounding box
type Point struct {
	X, Y int
}

// path is the recent center point history for one track id
type path struct {
	points []Point
}

// Trail keeps a short history of track center points used for drawing a
// movement trail behind each tracked object
type Trail struct {
	// size is the maximum number of most recent points to keep in history
	size int
	// history of tracked points keyed by track id
	history map[int64]*path
	sync.Mutex
}

// NewTrail returns a new trail history instance.  Size specifies the
// maximum length of trail to maintain per track
func NewTrail(size int) *Trail {
	return &Trail{
		size:    size,
		history: make(map[int64]*path),
	}
}

// Reset clears all history
func (t *Trail) Reset() {
	t.Lock()
	defer t.Unlock()

	t.history = make(map[int64]*path)
}

// Add records the current center point of a track
func (t *Trail) Add(track *Track) {
	t.Lock()
	defer t.Unlock()

	p, exists := t.history[track.ID]

	if !exists {
		p = &path{}
		t.history[track.ID] = p
	}

	p.points = append(p.points, Point{
		X: int(track.Rect.CenterX()),
		Y: int(track.Rect.CenterY()),
	})

	// drop oldest point once history is exceeded
	if len(p.points) > t.size {
		p.points = p.points[1:]
	}
}

// GetPoints gets the point history for a specific track id
func (t *Trail) GetPoints(id int64) []Point {
	t.Lock()
	defer t.Unlock()

	if p, exists := t.history[id]; exists {
		return p.points
	}

	// no history yet
	return nil
}
