package carcount

import "time"

// trackState is the per-identity bookkeeping kept between frames
type trackState struct {
	lastX    int
	lastY    int
	counted  bool
	lastSeen time.Time
}

// trackStore maps detector track ids to their last known state.  Entries
// are created on first sighting and removed by evictStale, which runs once
// per processed frame so the store stays bounded under id churn on long
// running sessions
type trackStore struct {
	tracks map[int64]*trackState
}

func newTrackStore() *trackStore {
	return &trackStore{
		tracks: make(map[int64]*trackState),
	}
}

// upsert records the current center position and sighting time for a track
// id, returning the position stored by the previous call.  seen is false on
// the first sighting of an id, in which case no crossing evaluation is
// possible this frame
func (s *trackStore) upsert(id int64, x, y int, now time.Time) (prevX, prevY int, seen bool) {

	if st, ok := s.tracks[id]; ok {
		prevX, prevY = st.lastX, st.lastY
		st.lastX, st.lastY = x, y
		st.lastSeen = now
		return prevX, prevY, true
	}

	s.tracks[id] = &trackState{
		lastX:    x,
		lastY:    y,
		lastSeen: now,
	}

	return 0, 0, false
}

// markCounted flags a track as counted.  Idempotent, the flag stays set
// until the track is evicted or the session is reset
func (s *trackStore) markCounted(id int64) {
	if st, ok := s.tracks[id]; ok {
		st.counted = true
	}
}

// isCounted reports whether a track has already been charged to a counter
func (s *trackStore) isCounted(id int64) bool {
	st, ok := s.tracks[id]
	return ok && st.counted
}

// evictStale removes every track unseen for longer than timeout.  A stale
// id that later reappears is treated as a brand new track, which is an
// accepted source of miscounts at the eviction boundary when a detector
// reuses ids
func (s *trackStore) evictStale(now time.Time, timeout time.Duration) {

	for id, st := range s.tracks {
		if now.Sub(st.lastSeen) > timeout {
			delete(s.tracks, id)
		}
	}
}

// clear drops all track state
func (s *trackStore) clear() {
	s.tracks = make(map[int64]*trackState)
}

func (s *trackStore) size() int {
	return len(s.tracks)
}
