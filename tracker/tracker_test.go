package tracker

import (
	"testing"
)

// carObj builds a car sized detection at the given top-left position
func carObj(x, y float32) Object {
	return NewObject(NewRect(x, y, 80, 60), 2, 0.9)
}

// TestTrackerStableID drives one box across the frame and checks the same
// id follows it every frame
func TestTrackerStableID(t *testing.T) {

	trk := DefaultTracker()

	for frame := 0; frame < 8; frame++ {

		tracks := trk.Update([]Object{carObj(float32(frame*10), 100)})

		if len(tracks) != 1 {
			t.Fatalf("frame %d: expected 1 track, got %d", frame, len(tracks))
		}

		if tracks[0].ID != 1 {
			t.Errorf("frame %d: expected ID 1, got %d", frame, tracks[0].ID)
		}
	}
}

// TestTrackerConfirmation checks the tentative to confirmed transition
func TestTrackerConfirmation(t *testing.T) {

	trk := NewTracker(0.3, 3, 3)

	tracks := trk.Update([]Object{carObj(0, 100)})
	if tracks[0].State != Tentative {
		t.Errorf("expected tentative track on first frame, got %v", tracks[0].State)
	}

	trk.Update([]Object{carObj(10, 100)})
	tracks = trk.Update([]Object{carObj(20, 100)})

	if tracks[0].State != Confirmed {
		t.Errorf("expected confirmed track after 3 hits, got %v", tracks[0].State)
	}
}

// TestTrackerNewIDAfterGap checks a track lost past maxMisses comes back
// under a fresh id
func TestTrackerNewIDAfterGap(t *testing.T) {

	trk := NewTracker(0.3, 3, 3)

	for frame := 0; frame < 5; frame++ {
		trk.Update([]Object{carObj(float32(frame*10), 100)})
	}

	// object vanishes long enough for removal
	for frame := 0; frame < 5; frame++ {
		if tracks := trk.Update(nil); len(tracks) != 0 {
			t.Fatalf("expected no reported tracks during gap, got %d", len(tracks))
		}
	}

	// reappearance builds a new tentative track, reported once confirmed
	var tracks []*Track
	for frame := 0; frame < 3; frame++ {
		tracks = trk.Update([]Object{carObj(float32(200+frame*10), 100)})
	}

	if len(tracks) != 1 {
		t.Fatalf("expected 1 track after reappearance, got %d", len(tracks))
	}

	if tracks[0].ID != 2 {
		t.Errorf("expected fresh ID 2 after gap, got %d", tracks[0].ID)
	}
}

// TestTrackerTwoObjects checks two well separated objects keep distinct,
// stable ids
func TestTrackerTwoObjects(t *testing.T) {

	trk := DefaultTracker()

	var left, right *Track

	for frame := 0; frame < 6; frame++ {

		tracks := trk.Update([]Object{
			carObj(float32(frame*10), 100),
			carObj(float32(400-frame*10), 300),
		})

		if len(tracks) != 2 {
			t.Fatalf("frame %d: expected 2 tracks, got %d", frame, len(tracks))
		}

		left, right = nil, nil
		for _, track := range tracks {
			if track.Rect.CenterY() < 200 {
				left = track
			} else {
				right = track
			}
		}

		if left == nil || right == nil {
			t.Fatalf("frame %d: lost an object", frame)
		}

		if left.ID == right.ID {
			t.Fatalf("frame %d: objects share id %d", frame, left.ID)
		}
	}

	if left.ID != 1 || right.ID != 2 {
		t.Errorf("expected ids 1 and 2, got %d and %d", left.ID, right.ID)
	}
}

// TestTrackerMonotonicIDs checks ids are never reused while the tracker
// runs
func TestTrackerMonotonicIDs(t *testing.T) {

	trk := NewTracker(0.3, 1, 1)

	seen := make(map[int64]bool)

	// each burst confirms a track, then lets it die off, so every burst
	// spawns a new identity
	for burst := 0; burst < 3; burst++ {

		trk.Update([]Object{carObj(0, 0)})

		for _, track := range trk.Update([]Object{carObj(0, 0)}) {
			seen[track.ID] = true
		}

		trk.Update(nil)
		trk.Update(nil)
	}

	if len(seen) < 2 {
		t.Fatalf("expected multiple distinct ids, got %v", seen)
	}

	var max int64
	for id := range seen {
		if id > max {
			max = id
		}
	}

	if int(max) != len(seen) {
		t.Errorf("expected ids 1..%d without reuse, got %v", len(seen), seen)
	}
}

// TestTrackerReset checks reset returns the tracker to its initial state
func TestTrackerReset(t *testing.T) {

	trk := DefaultTracker()

	for frame := 0; frame < 5; frame++ {
		trk.Update([]Object{carObj(float32(frame*10), 100)})
	}

	trk.Reset()

	tracks := trk.Update([]Object{carObj(300, 300)})

	if len(tracks) != 1 || tracks[0].ID != 1 {
		t.Errorf("expected id numbering restarted at 1, got %+v", tracks)
	}
}

// TestTrackVelocity checks the motion estimate picks up a constant drift
func TestTrackVelocity(t *testing.T) {

	trk := DefaultTracker()

	var track *Track

	for frame := 0; frame < 10; frame++ {
		tracks := trk.Update([]Object{carObj(float32(frame*10), 100)})
		track = tracks[0]
	}

	vx, vy := track.Velocity()

	if vx < 5 {
		t.Errorf("expected positive x velocity near 10, got %.2f", vx)
	}

	if vy > 1 || vy < -1 {
		t.Errorf("expected y velocity near 0, got %.2f", vy)
	}
}
