package fusion

import (
	"EXAM_PROCTOR/go-backend/internal/models"
	"EXAM_PROCTOR/go-backend/internal/session"
)

const (
	AlertMultipleFaces           = "Multiple faces detected"
	AlertNoFaces                 = "No faces detected"
	AlertNonFrontalPose          = "Non-frontal pose detected"
	AlertNonFrontalPoseConfirmed = "Non-frontal pose detected (3rd consecutive occurrence)"
	AlertSuspiciousObject        = "Suspicious object detected: "
	AlertSuspiciousGaze          = "Suspicious gaze direction: "
	AlertSuspiciousGazeConfirmed = "Suspicious gaze threshold reached (3rd consecutive occurrence)"
)

// Weights are the score increments per rule. The field set matches
// config.Weights so one converts directly into the other.
type Weights struct {
	MultipleFaces    int
	NoFaces          int
	NonFrontalPose   int
	SuspiciousObject int
	SuspiciousGaze   int
}

func DefaultWeights() Weights {
	return Weights{
		MultipleFaces:    20,
		NoFaces:          10,
		NonFrontalPose:   5,
		SuspiciousObject: 15,
		SuspiciousGaze:   5,
	}
}

// signals is one frame's merged collaborator output after smoothing.
type signals struct {
	faces   []models.Face
	facesOK bool
	poses   []models.HeadPose
	objects []models.SuspiciousObject
	gaze    models.GazeResult
}

// evaluate applies the scoring rules in order. Debouncers are only fed
// when the frame belongs to a tracked session.
func (w Weights) evaluate(sig signals, st *session.State, tracked bool) (int, []string) {
	score := 0
	alerts := []string{}

	// A failed face detector is an absent signal, not an empty room.
	if sig.facesOK {
		switch n := len(sig.faces); {
		case n > 1:
			score += w.MultipleFaces
			alerts = append(alerts, AlertMultipleFaces)
		case n == 0:
			score += w.NoFaces
			alerts = append(alerts, AlertNoFaces)
		}
	}

	switch {
	case anyNonFrontal(sig.poses):
		alerts = append(alerts, AlertNonFrontalPose)
		if tracked && st.PoseDebouncer.Step(true) {
			score += w.NonFrontalPose
			alerts = append(alerts, AlertNonFrontalPoseConfirmed)
		}
	case tracked:
		st.PoseDebouncer.Observe(false)
	}

	if len(sig.objects) > 0 {
		score += w.SuspiciousObject
		for _, obj := range sig.objects {
			alerts = append(alerts, AlertSuspiciousObject+obj.Class)
		}
	}

	if sig.gaze.Status == models.GazeSuccess && tracked {
		if SuspiciousGaze(sig.gaze.Direction) {
			alerts = append(alerts, AlertSuspiciousGaze+sig.gaze.Direction)
			if st.GazeDebouncer.Step(true) {
				score += w.SuspiciousGaze
				alerts = append(alerts, AlertSuspiciousGazeConfirmed)
			}
		} else {
			st.GazeDebouncer.Observe(false)
		}
	}

	return score, alerts
}

// SuspiciousGaze reports whether a gaze direction has a lateral component.
func SuspiciousGaze(direction string) bool {
	switch direction {
	case "Center", "Up", "Down":
		return false
	}
	return true
}

func anyNonFrontal(poses []models.HeadPose) bool {
	for _, hp := range poses {
		if hp.Pose != models.PoseFrontal {
			return true
		}
	}
	return false
}
