// Package smoothing holds the per-stream temporal filters applied to noisy
// detector output: an EMA over head pose angles, pose banding, and the gaze
// moving-average + Kalman filter with its direction classifier.
package smoothing

// DefaultAlpha is the weight given to each new head pose reading.
const DefaultAlpha = 0.3

// EMA is an exponential moving average over yaw, pitch and roll.
// It is not safe for concurrent use; callers serialize updates per stream.
type EMA struct {
	alpha float64

	yaw, pitch, roll float64
	initialized      bool
}

// NewEMA creates a smoother with the given alpha (0-1, higher = more weight on new reading).
func NewEMA(alpha float64) *EMA {
	return &EMA{alpha: alpha}
}

// Update folds a raw reading into the running estimate and returns the estimate.
// The first reading initializes the estimate as-is.
func (e *EMA) Update(yaw, pitch, roll float64) (float64, float64, float64) {
	if !e.initialized {
		e.yaw, e.pitch, e.roll = yaw, pitch, roll
		e.initialized = true
		return e.yaw, e.pitch, e.roll
	}

	e.yaw = e.alpha*yaw + (1-e.alpha)*e.yaw
	e.pitch = e.alpha*pitch + (1-e.alpha)*e.pitch
	e.roll = e.alpha*roll + (1-e.alpha)*e.roll
	return e.yaw, e.pitch, e.roll
}

// Initialized reports whether at least one reading has been applied.
func (e *EMA) Initialized() bool {
	return e.initialized
}
