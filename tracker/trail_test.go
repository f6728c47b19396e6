package tracker

import "testing"

func TestTrailHistory(t *testing.T) {

	trail := NewTrail(3)

	track := &Track{ID: 1, Rect: NewRect(0, 0, 80, 60)}

	for i := 0; i < 5; i++ {
		track.Rect.X = float32(i * 10)
		trail.Add(track)
	}

	points := trail.GetPoints(1)

	if len(points) != 3 {
		t.Fatalf("expected history capped at 3 points, got %d", len(points))
	}

	// oldest two points dropped, newest retained in order
	want := []Point{{X: 60, Y: 30}, {X: 70, Y: 30}, {X: 80, Y: 30}}

	for i, pt := range points {
		if pt != want[i] {
			t.Errorf("point %d = %v, want %v", i, pt, want[i])
		}
	}

	if pts := trail.GetPoints(2); pts != nil {
		t.Errorf("expected no history for unknown id, got %v", pts)
	}

	trail.Reset()

	if pts := trail.GetPoints(1); pts != nil {
		t.Errorf("expected empty history after reset, got %v", pts)
	}
}
