package smoothing

import "EXAM_PROCTOR/go-backend/internal/models"

// Angular bands in degrees.
const (
	frontalLimit = 10.0
	rightBelow   = -15.0
	leftAbove    = 20.0
	upAbove      = 20.0
	downBelow    = -15.0
)

// ClassifyPose maps smoothed pitch and yaw to a coarse head pose.
//
// Angles that fall between the frontal box and every other band report
// frontal. That fallback is kept for compatibility with existing score
// histories even though such poses are not strictly frontal.
func ClassifyPose(pitch, yaw float64) models.Pose {
	switch {
	case yaw >= -frontalLimit && yaw <= frontalLimit &&
		pitch >= -frontalLimit && pitch <= frontalLimit:
		return models.PoseFrontal
	case yaw < rightBelow:
		return models.PoseRight
	case yaw > leftAbove:
		return models.PoseLeft
	case pitch > upAbove:
		return models.PoseUp
	case pitch < downBelow:
		return models.PoseDown
	}
	return models.PoseFrontal
}
