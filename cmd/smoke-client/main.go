// Command smoke-client drives a running backend end to end: it checks
// health, attaches a session observer, posts a few frames and prints what
// comes back.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"EXAM_PROCTOR/go-backend/internal/models"
)

var (
	backendURL = flag.String("backend", "http://localhost:8080", "Backend base URL")
	subjectID  = flag.String("subject", "smoke-subject", "Subject id")
	examID     = flag.String("exam", "smoke-exam", "Exam id")
	authToken  = flag.String("token", "", "Bearer token forwarded to the scoring authority")
	adminKey   = flag.String("admin-key", "", "Admin key for the operational endpoints")
	frames     = flag.Int("frames", 3, "Number of frames to post")
)

func generateTestImage() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func testHealth() error {
	fmt.Println("\n[TEST] /api/health")
	resp, err := http.Get(*backendURL + "/api/health")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	var health models.HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("decoding health: %w", err)
	}
	fmt.Printf("  status=%s detector=%v sessions=%d observers=%d\n",
		health.Status, health.DetectorService, health.ActiveSessions, health.ActiveObservers)
	return nil
}

func attachObserver() (*websocket.Conn, error) {
	fmt.Println("\n[TEST] observer channel")
	u, err := url.Parse(*backendURL)
	if err != nil {
		return nil, err
	}
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	u.Path = fmt.Sprintf("/ws/%s/%s", url.PathEscape(*subjectID), url.PathEscape(*examID))

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u, err)
	}
	fmt.Printf("  attached to %s\n", u)
	return conn, nil
}

func watchObserver(conn *websocket.Conn) {
	for {
		var n models.ObserverNotification
		if err := conn.ReadJSON(&n); err != nil {
			return
		}
		fmt.Printf("  <- observer: %s alerts=%v new_score=%d auto_submitted=%v\n",
			n.Type, n.Message, n.NewScore, n.AutoSubmitted)
	}
}

func postFrame(frameData []byte, seq int) error {
	req := models.FrameRequest{
		SubjectID: *subjectID,
		ExamID:    *examID,
		ImageB64:  "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(frameData),
		AuthToken: *authToken,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := http.Post(*backendURL+"/api/frames", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("frame request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("frame rejected: status %d, body: %s", resp.StatusCode, raw)
	}

	var res models.FusionResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}
	fmt.Printf("  frame %d: faces=%d poses=%d objects=%d gaze=%s score=+%d alerts=%v (%s)\n",
		seq, len(res.Faces), len(res.HeadPoses), len(res.SuspiciousObjects),
		res.GazeResult.Status, res.ScoreIncrement, res.Alerts, time.Since(start).Round(time.Millisecond))
	return nil
}

func printMetrics() error {
	fmt.Println("\n[TEST] /api/metrics")
	req, err := http.NewRequest(http.MethodGet, *backendURL+"/api/metrics", nil)
	if err != nil {
		return err
	}
	if *adminKey != "" {
		req.Header.Set("X-Admin-Key", *adminKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("metrics request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("metrics: status %d, body: %s", resp.StatusCode, raw)
	}
	fmt.Printf("  %s\n", bytes.TrimSpace(raw))
	return nil
}

func main() {
	flag.Parse()

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("EXAM PROCTOR - smoke client")
	fmt.Println(strings.Repeat("=", 60))

	frameData, err := generateTestImage()
	if err != nil {
		log.Fatalf("generating test image: %v", err)
	}
	fmt.Printf("generated test image: %d bytes\n", len(frameData))

	if err := testHealth(); err != nil {
		log.Printf("health failed: %v", err)
		os.Exit(1)
	}

	conn, err := attachObserver()
	if err != nil {
		log.Printf("observer failed: %v", err)
		os.Exit(1)
	}
	defer conn.Close()
	go watchObserver(conn)

	fmt.Println("\n[TEST] /api/frames")
	for i := 1; i <= *frames; i++ {
		if err := postFrame(frameData, i); err != nil {
			log.Printf("frame %d failed: %v", i, err)
			os.Exit(1)
		}
	}

	// Give late observer notifications a moment to arrive.
	time.Sleep(500 * time.Millisecond)

	if err := printMetrics(); err != nil {
		log.Printf("metrics failed: %v", err)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("done")
}
