package smoothing

import "gonum.org/v1/gonum/mat"

// Kalman is a linear predict/correct filter with identity transition and
// measurement models. State and covariance start at zero.
type Kalman struct {
	transition       *mat.Dense
	measurement      *mat.Dense
	processNoise     *mat.Dense
	measurementNoise *mat.Dense

	state *mat.VecDense
	cov   *mat.Dense
}

// NewKalman creates a dim-dimensional filter with process noise q·I and
// measurement noise r·I.
func NewKalman(dim int, q, r float64) *Kalman {
	return &Kalman{
		transition:       scaledIdentity(dim, 1),
		measurement:      scaledIdentity(dim, 1),
		processNoise:     scaledIdentity(dim, q),
		measurementNoise: scaledIdentity(dim, r),
		state:            mat.NewVecDense(dim, nil),
		cov:              mat.NewDense(dim, dim, nil),
	}
}

// Update runs one predict step followed by a correct step with measurement z
// and returns the corrected state.
func (k *Kalman) Update(z []float64) []float64 {
	n := k.state.Len()

	// Predict: x' = F x, P' = F P F^T + Q
	var xPred mat.VecDense
	xPred.MulVec(k.transition, k.state)

	var fp, pPred mat.Dense
	fp.Mul(k.transition, k.cov)
	pPred.Mul(&fp, k.transition.T())
	pPred.Add(&pPred, k.processNoise)

	// Innovation covariance S = H P' H^T + R
	var hp, s mat.Dense
	hp.Mul(k.measurement, &pPred)
	s.Mul(&hp, k.measurement.T())
	s.Add(&s, k.measurementNoise)

	var sInv mat.Dense
	if err := sInv.Inverse(&s); err != nil {
		// Singular innovation: keep the prediction.
		k.state.CopyVec(&xPred)
		k.cov.Copy(&pPred)
		return k.State()
	}

	// Gain K = P' H^T S^-1
	var pht, gain mat.Dense
	pht.Mul(&pPred, k.measurement.T())
	gain.Mul(&pht, &sInv)

	measured := make([]float64, n)
	copy(measured, z)
	zv := mat.NewVecDense(n, measured)

	var hx, innovation, correction mat.VecDense
	hx.MulVec(k.measurement, &xPred)
	innovation.SubVec(zv, &hx)
	correction.MulVec(&gain, &innovation)
	k.state.AddVec(&xPred, &correction)

	// P = P' - K H P'
	var khp mat.Dense
	khp.Mul(&gain, &hp)
	k.cov.Sub(&pPred, &khp)

	return k.State()
}

// State returns a copy of the current state estimate.
func (k *Kalman) State() []float64 {
	out := make([]float64, k.state.Len())
	for i := range out {
		out[i] = k.state.AtVec(i)
	}
	return out
}

// Variance returns the diagonal of the current covariance.
func (k *Kalman) Variance() []float64 {
	n, _ := k.cov.Dims()
	out := make([]float64, n)
	for i := range out {
		out[i] = k.cov.At(i, i)
	}
	return out
}

func scaledIdentity(n int, v float64) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, v)
	}
	return m
}
