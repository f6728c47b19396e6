package tracker

import "sort"

// TrackState represents the lifecycle state of a track
type TrackState int

const (
	// Tentative is a new track that has not yet accumulated enough hits
	// to be trusted
	Tentative TrackState = iota
	// Confirmed is a stable track with sufficient consecutive hits
	Confirmed
	// Removed is a track that went unmatched for too many frames
	Removed
)

// Track is one tracked object with a stable identity
type Track struct {
	// ID is the unique track identity, assigned from 1 upwards
	ID int64
	// Rect is the last matched bounding box
	Rect Rect
	// Label is the class label of the last matched detection
	Label int
	// Prob is the confidence of the last matched detection
	Prob float32
	// State is the lifecycle state of the track
	State TrackState

	hits   int
	misses int
	kf     *KalmanFilter
}

// Velocity returns the estimated per frame center velocity of the track
func (t *Track) Velocity() (vx, vy float64) {
	_, _, vx, vy = t.kf.State()
	return vx, vy
}

// Tracker assigns stable ids to per frame detections so downstream
// consumers can follow one physical object across frames.  It is a
// lightweight SORT style tracker: constant velocity Kalman prediction of
// each track's center plus greedy IoU association against the incoming
// detections.  Suitable when the detector itself does not track, heavier
// association schemes belong detector side
type Tracker struct {
	iouThresh float32
	maxMisses int
	minHits   int

	processNoise     float64
	measurementNoise float64

	nextID int64
	frame  int
	tracks []*Track
}

// NewTracker initializes and returns a new Tracker.  iouThresh is the
// minimum overlap for association, maxMisses is how many consecutive
// unmatched frames a track survives and minHits is the consecutive hits
// needed before a tentative track is confirmed
func NewTracker(iouThresh float32, maxMisses, minHits int) *Tracker {
	return &Tracker{
		iouThresh:        iouThresh,
		maxMisses:        maxMisses,
		minHits:          minHits,
		processNoise:     1.0,
		measurementNoise: 2.0,
	}
}

// DefaultTracker returns a Tracker with settings that work well for
// vehicles in 25-30 FPS road footage
func DefaultTracker() *Tracker {
	return NewTracker(0.3, 15, 3)
}

// Reset clears the tracked data and resets everything
func (t *Tracker) Reset() {
	t.nextID = 0
	t.frame = 0
	t.tracks = nil
}

// Update runs one frame of detections through the tracker and returns the
// tracks to report: tracks matched this frame that are confirmed plus,
// during the first minHits frames, tentative ones so early objects are not
// dropped
func (t *Tracker) Update(objects []Object) []*Track {

	t.frame++

	// predict all live tracks to the current frame
	for _, track := range t.tracks {
		cx, cy := track.kf.Predict()
		track.Rect = Rect{
			X: float32(cx) - track.Rect.W/2,
			Y: float32(cy) - track.Rect.H/2,
			W: track.Rect.W,
			H: track.Rect.H,
		}
	}

	matchedTrack, matchedObject := t.associate(objects)

	// update matched tracks with their detection
	for ti, oi := range matchedTrack {
		track := t.tracks[ti]
		obj := objects[oi]

		track.kf.Update(float64(obj.Rect.CenterX()), float64(obj.Rect.CenterY()))
		track.Rect = obj.Rect
		track.Label = obj.Label
		track.Prob = obj.Prob
		track.hits++
		track.misses = 0

		if track.State == Tentative && track.hits >= t.minHits {
			track.State = Confirmed
		}
	}

	// age unmatched tracks
	for i, track := range t.tracks {
		if _, ok := matchedTrack[i]; ok {
			continue
		}

		track.misses++
		track.hits = 0

		if track.misses > t.maxMisses {
			track.State = Removed
		}
	}

	// start new tracks from unmatched detections
	for oi, obj := range objects {
		if matchedObject[oi] {
			continue
		}

		t.nextID++

		t.tracks = append(t.tracks, &Track{
			ID:    t.nextID,
			Rect:  obj.Rect,
			Label: obj.Label,
			Prob:  obj.Prob,
			State: Tentative,
			hits:  1,
			kf: NewKalmanFilter(
				float64(obj.Rect.CenterX()), float64(obj.Rect.CenterY()),
				t.processNoise, t.measurementNoise),
		})
	}

	// drop removed tracks
	live := t.tracks[:0]
	for _, track := range t.tracks {
		if track.State != Removed {
			live = append(live, track)
		}
	}
	t.tracks = live

	// only tracks matched this frame are reported, a coasting track's
	// predicted position is kept internally but not surfaced
	var out []*Track

	for _, track := range t.tracks {
		if track.misses > 0 {
			continue
		}

		if track.State == Confirmed || t.frame <= t.minHits {
			out = append(out, track)
		}
	}

	return out
}

// associate greedily matches tracks to detections in decreasing IoU order,
// gated by the IoU threshold.  Returns track index to object index matches
// and the set of claimed object indexes
func (t *Tracker) associate(objects []Object) (map[int]int, map[int]bool) {

	type pair struct {
		ti, oi int
		iou    float32
	}

	var pairs []pair

	for ti, track := range t.tracks {
		for oi, obj := range objects {
			if iou := track.Rect.IoU(obj.Rect); iou >= t.iouThresh {
				pairs = append(pairs, pair{ti: ti, oi: oi, iou: iou})
			}
		}
	}

	sort.Slice(pairs, func(a, b int) bool {
		return pairs[a].iou > pairs[b].iou
	})

	matchedTrack := make(map[int]int)
	matchedObject := make(map[int]bool)
	claimed := make(map[int]bool)

	for _, p := range pairs {
		if claimed[p.ti] || matchedObject[p.oi] {
			continue
		}

		claimed[p.ti] = true
		matchedObject[p.oi] = true
		matchedTrack[p.ti] = p.oi
	}

	return matchedTrack, matchedObject
}
