package smoothing

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"EXAM_PROCTOR/go-backend/internal/models"
)

const (
	// GazeHistorySize is the moving-average window over raw gaze vectors.
	GazeHistorySize = 5

	// DefaultGazeYawThreshold is the base horizontal threshold in degrees.
	DefaultGazeYawThreshold = 15.0

	gazeProcessNoise     = 0.003
	gazeMeasurementNoise = 0.03

	pitchDownThreshold = 6.0
	pitchUpThreshold   = 11.0

	epsilon = 1e-6
)

// GazeFilter smooths a stream of 3D gaze vectors and classifies the result.
// One filter belongs to one stream; it is not safe for concurrent use.
type GazeFilter struct {
	history [GazeHistorySize][3]float64
	next    int
	count   int

	kalman       *Kalman
	yawThreshold float64
}

func NewGazeFilter() *GazeFilter {
	return &GazeFilter{
		kalman:       NewKalman(3, gazeProcessNoise, gazeMeasurementNoise),
		yawThreshold: DefaultGazeYawThreshold,
	}
}

// Update appends a raw gaze vector, averages the history, filters the
// average and classifies the filtered vector.
func (g *GazeFilter) Update(vec [3]float64) models.GazeReading {
	g.history[g.next] = vec
	g.next = (g.next + 1) % GazeHistorySize
	if g.count < GazeHistorySize {
		g.count++
	}

	avg := g.mean()
	f := g.kalman.Update(avg[:])
	filtered := [3]float64{f[0], f[1], f[2]}

	direction, yaw, pitch := ClassifyGaze(filtered, g.yawThreshold)
	return models.GazeReading{
		Direction: direction,
		Yaw:       yaw,
		Pitch:     pitch,
		Vector:    filtered,
	}
}

// Len returns how many vectors are in the averaging window.
func (g *GazeFilter) Len() int {
	return g.count
}

func (g *GazeFilter) mean() [3]float64 {
	var out [3]float64
	axis := make([]float64, g.count)
	for a := 0; a < 3; a++ {
		for i := 0; i < g.count; i++ {
			axis[i] = g.history[i][a]
		}
		out[a] = stat.Mean(axis, nil)
	}
	return out
}

// ClassifyGaze converts a gaze vector to yaw/pitch degrees and a direction
// such as "Center", "Left", "Down" or "Up Right".
func ClassifyGaze(vec [3]float64, baseThreshold float64) (string, float64, float64) {
	norm := math.Sqrt(vec[0]*vec[0]+vec[1]*vec[1]+vec[2]*vec[2]) + epsilon
	x, y, z := vec[0]/norm, vec[1]/norm, vec[2]/norm

	yaw := FoldYaw(degrees(math.Atan2(x, z+epsilon)))
	pitch := degrees(math.Asin(clamp(y*0.75, -1, 1)))

	threshold := DynamicYawThreshold(baseThreshold, pitch)

	horizontal := "Center"
	if yaw > threshold {
		horizontal = "Right"
	} else if yaw < -threshold {
		horizontal = "Left"
	}

	vertical := "Center"
	if pitch > pitchDownThreshold {
		vertical = "Down"
	} else if pitch < -pitchUpThreshold {
		vertical = "Up"
	}

	switch {
	case vertical == "Center":
		return horizontal, yaw, pitch
	case horizontal == "Center":
		return vertical, yaw, pitch
	}
	return vertical + " " + horizontal, yaw, pitch
}

// FoldYaw wraps yaw into [-180, 180) and then folds anything beyond ±90
// back by 180 degrees. Exactly ±90 is left alone.
func FoldYaw(yaw float64) float64 {
	yaw = math.Mod(yaw+180, 360)
	if yaw < 0 {
		yaw += 360
	}
	yaw -= 180

	if yaw > 90 {
		yaw -= 180
	} else if yaw < -90 {
		yaw += 180
	}
	return yaw
}

// DynamicYawThreshold narrows the horizontal threshold as the gaze tilts
// up or down. The result never goes below zero.
func DynamicYawThreshold(base, pitch float64) float64 {
	return math.Max(0, base*(1.2-math.Abs(pitch)/45))
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
