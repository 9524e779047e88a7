package models

// BoundingBox is [x1, y1, x2, y2] in source image pixels.
type BoundingBox [4]int

type Face struct {
	BoundingBox BoundingBox `json:"bounding_box"`
	Confidence  float64     `json:"confidence"`
}

type Pose string

const (
	PoseFrontal Pose = "frontal"
	PoseLeft    Pose = "left"
	PoseRight   Pose = "right"
	PoseUp      Pose = "up"
	PoseDown    Pose = "down"
)

// RawPose is an unsmoothed head pose estimate in degrees.
type RawPose struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}

type HeadPose struct {
	Pose  Pose    `json:"pose"`
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}

type SuspiciousObject struct {
	Class       string      `json:"class"`
	BoundingBox BoundingBox `json:"bounding_box"`
	Confidence  float64     `json:"confidence"`
}

type GazeStatus string

const (
	GazeSuccess     GazeStatus = "success"
	GazeNoFace      GazeStatus = "no_face_detected"
	GazeNoLandmarks GazeStatus = "no_face_landmarks"
	GazeError       GazeStatus = "error"
)

// GazeObservation is what the gaze collaborator returns: the raw gaze vector
// averaged over both eyes, or a failure status.
type GazeObservation struct {
	Status  GazeStatus `json:"status"`
	Vector  [3]float64 `json:"gaze_vector"`
	Message string     `json:"message,omitempty"`
}

// GazeReading is the filtered and classified gaze for one frame.
type GazeReading struct {
	Direction string
	Yaw       float64
	Pitch     float64
	Vector    [3]float64
}

type GazeResult struct {
	Status       GazeStatus `json:"status"`
	Direction    string     `json:"gaze_direction,omitempty"`
	YawDegrees   *float64   `json:"yaw_degrees,omitempty"`
	PitchDegrees *float64   `json:"pitch_degrees,omitempty"`
	GazeVector   []float64  `json:"gaze_vector,omitempty"`
	Message      string     `json:"message,omitempty"`
}

// FusionResult is the per-frame output of the fusion pipeline.
type FusionResult struct {
	Faces             []Face             `json:"faces"`
	HeadPoses         []HeadPose         `json:"head_poses"`
	SuspiciousObjects []SuspiciousObject `json:"suspicious_objects"`
	GazeResult        GazeResult         `json:"gaze_result"`
	ScoreIncrement    int                `json:"score_increment"`
	Alerts            []string           `json:"alerts"`
}

// NewFusionResult returns a result with empty (non-nil) collections.
func NewFusionResult() FusionResult {
	return FusionResult{
		Faces:             []Face{},
		HeadPoses:         []HeadPose{},
		SuspiciousObjects: []SuspiciousObject{},
		Alerts:            []string{},
	}
}

// DegradedResult is returned when fusion itself fails for a frame.
func DegradedResult(reason string) FusionResult {
	res := NewFusionResult()
	res.GazeResult = GazeResult{Status: GazeError, Message: reason}
	return res
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp int64  `json:"timestamp"`
	Code      string `json:"code,omitempty"`
	Details   any    `json:"details,omitempty"`
}

type HealthStatus struct {
	Status          string `json:"status"`
	DetectorService bool   `json:"detector_service"`
	ActiveObservers int    `json:"active_observers"`
	ActiveSessions  int    `json:"active_sessions"`
	UptimeSec       int64  `json:"uptime_sec"`
	Version         string `json:"version,omitempty"`
}
