package tracker

import (
	"gonum.org/v1/gonum/mat"
)

// KalmanFilter estimates a box center under a constant velocity motion
// model.  The state vector is [cx, cy, vx, vy] with measurements [cx, cy],
// one predict/update cycle per frame
type KalmanFilter struct {
	// x is the 4x1 state estimate
	x *mat.VecDense
	// p is the 4x4 state covariance
	p *mat.Dense
	// f is the state transition matrix for dt of one frame
	f *mat.Dense
	// h is the measurement matrix extracting position
	h *mat.Dense
	// q is the process noise covariance
	q *mat.Dense
	// r is the measurement noise covariance
	r *mat.Dense
}

// NewKalmanFilter initializes a filter at the given center position with
// zero velocity and high velocity uncertainty
func NewKalmanFilter(cx, cy float64, processNoise, measurementNoise float64) *KalmanFilter {

	f := mat.NewDense(4, 4, []float64{
		1, 0, 1, 0,
		0, 1, 0, 1,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})

	h := mat.NewDense(2, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
	})

	q := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		q.Set(i, i, processNoise)
	}

	r := mat.NewDense(2, 2, nil)
	for i := 0; i < 2; i++ {
		r.Set(i, i, measurementNoise)
	}

	// start certain about position, uncertain about velocity
	p := mat.NewDense(4, 4, nil)
	p.Set(0, 0, 1)
	p.Set(1, 1, 1)
	p.Set(2, 2, 100)
	p.Set(3, 3, 100)

	return &KalmanFilter{
		x: mat.NewVecDense(4, []float64{cx, cy, 0, 0}),
		p: p,
		f: f,
		h: h,
		q: q,
		r: r,
	}
}

// Predict advances the state one frame and returns the predicted center
func (kf *KalmanFilter) Predict() (cx, cy float64) {

	// x = F x
	var x mat.VecDense
	x.MulVec(kf.f, kf.x)
	kf.x.CopyVec(&x)

	// P = F P Fᵀ + Q
	var fp, fpft mat.Dense
	fp.Mul(kf.f, kf.p)
	fpft.Mul(&fp, kf.f.T())
	fpft.Add(&fpft, kf.q)
	kf.p.Copy(&fpft)

	return kf.x.AtVec(0), kf.x.AtVec(1)
}

// Update corrects the state with a measured center position
func (kf *KalmanFilter) Update(cx, cy float64) {

	z := mat.NewVecDense(2, []float64{cx, cy})

	// innovation y = z - H x
	var hx, y mat.VecDense
	hx.MulVec(kf.h, kf.x)
	y.SubVec(z, &hx)

	// innovation covariance S = H P Hᵀ + R
	var hp, s mat.Dense
	hp.Mul(kf.h, kf.p)
	s.Mul(&hp, kf.h.T())
	s.Add(&s, kf.r)

	var sInv mat.Dense
	if err := sInv.Inverse(&s); err != nil {
		// singular innovation covariance, skip the correction
		return
	}

	// Kalman gain K = P Hᵀ S⁻¹
	var pht, k mat.Dense
	pht.Mul(kf.p, kf.h.T())
	k.Mul(&pht, &sInv)

	// x = x + K y
	var ky mat.VecDense
	ky.MulVec(&k, &y)
	kf.x.AddVec(kf.x, &ky)

	// P = (I - K H) P
	var kh mat.Dense
	kh.Mul(&k, kf.h)

	ikh := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			v := -kh.At(i, j)
			if i == j {
				v += 1
			}
			ikh.Set(i, j, v)
		}
	}

	var p mat.Dense
	p.Mul(ikh, kf.p)
	kf.p.Copy(&p)
}

// State returns the current center and velocity estimates
func (kf *KalmanFilter) State() (cx, cy, vx, vy float64) {
	return kf.x.AtVec(0), kf.x.AtVec(1), kf.x.AtVec(2), kf.x.AtVec(3)
}
