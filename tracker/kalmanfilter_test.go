package tracker

import (
	"math"
	"testing"
)

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

// TestKalmanFilterConvergesOnConstantVelocity feeds the filter evenly
// spaced measurements and checks the velocity estimate settles on the
// true per frame displacement
func TestKalmanFilterConvergesOnConstantVelocity(t *testing.T) {

	kf := NewKalmanFilter(0, 0, 1.0, 2.0)

	for frame := 1; frame <= 20; frame++ {
		kf.Predict()
		kf.Update(float64(frame*10), 0)
	}

	cx, cy, vx, vy := kf.State()

	if !almostEqual(cx, 200, 5) {
		t.Errorf("expected cx near 200, got %.2f", cx)
	}
	if !almostEqual(cy, 0, 1) {
		t.Errorf("expected cy near 0, got %.2f", cy)
	}
	if !almostEqual(vx, 10, 1) {
		t.Errorf("expected vx near 10, got %.2f", vx)
	}
	if !almostEqual(vy, 0, 1) {
		t.Errorf("expected vy near 0, got %.2f", vy)
	}
}

// TestKalmanFilterPredictExtrapolates checks prediction carries the
// learned velocity forward without measurements
func TestKalmanFilterPredictExtrapolates(t *testing.T) {

	kf := NewKalmanFilter(0, 100, 1.0, 2.0)

	for frame := 1; frame <= 10; frame++ {
		kf.Predict()
		kf.Update(float64(frame*10), 100)
	}

	// coast three frames
	var cx, cy float64
	for i := 0; i < 3; i++ {
		cx, cy = kf.Predict()
	}

	if !almostEqual(cx, 130, 10) {
		t.Errorf("expected coasted cx near 130, got %.2f", cx)
	}
	if !almostEqual(cy, 100, 5) {
		t.Errorf("expected coasted cy near 100, got %.2f", cy)
	}
}

// TestKalmanFilterStationary checks a motionless measurement stream keeps
// the estimate in place
func TestKalmanFilterStationary(t *testing.T) {

	kf := NewKalmanFilter(320, 240, 1.0, 2.0)

	for frame := 0; frame < 15; frame++ {
		kf.Predict()
		kf.Update(320, 240)
	}

	cx, cy, vx, vy := kf.State()

	if !almostEqual(cx, 320, 0.5) || !almostEqual(cy, 240, 0.5) {
		t.Errorf("expected position held at (320,240), got (%.2f, %.2f)", cx, cy)
	}

	if !almostEqual(vx, 0, 0.1) || !almostEqual(vy, 0, 0.1) {
		t.Errorf("expected zero velocity, got (%.2f, %.2f)", vx, vy)
	}
}

func TestRectIoU(t *testing.T) {

	tests := []struct {
		name string
		a, b Rect
		want float64
	}{
		{"identical", NewRect(0, 0, 100, 100), NewRect(0, 0, 100, 100), 1.0},
		{"disjoint", NewRect(0, 0, 100, 100), NewRect(200, 200, 100, 100), 0},
		{"touching edges", NewRect(0, 0, 100, 100), NewRect(100, 0, 100, 100), 0},
		{"half overlap", NewRect(0, 0, 100, 100), NewRect(50, 0, 100, 100), 1.0 / 3.0},
		{"contained quarter", NewRect(0, 0, 100, 100), NewRect(0, 0, 50, 50), 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := float64(tt.a.IoU(tt.b))

			if !almostEqual(got, tt.want, 0.001) {
				t.Errorf("IoU = %.4f, want %.4f", got, tt.want)
			}
		})
	}
}

func TestRectTlbrConversion(t *testing.T) {

	r := NewRectTlbr(10, 20, 110, 80)

	if r.X != 10 || r.Y != 20 || r.W != 100 || r.H != 60 {
		t.Errorf("unexpected rect %+v", r)
	}

	if r.BRX() != 110 || r.BRY() != 80 {
		t.Errorf("unexpected corners (%.0f, %.0f)", r.BRX(), r.BRY())
	}

	if r.CenterX() != 60 || r.CenterY() != 50 {
		t.Errorf("unexpected center (%.0f, %.0f)", r.CenterX(), r.CenterY())
	}
}
