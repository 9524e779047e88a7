// Package frame decodes submitted exam frames and cuts face crops for the
// head pose collaborator.
package frame

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"EXAM_PROCTOR/go-backend/internal/models"
)

const cropQuality = 90

var (
	ErrInvalidEncoding = errors.New("frame: invalid base64 encoding")
	ErrInvalidImage    = errors.New("frame: undecodable image")
	ErrEmptyCrop       = errors.New("frame: crop outside image")
)

// Frame is one submitted image, decoded once and shared read-only by all
// collaborator calls for that frame.
type Frame struct {
	Data   []byte
	Image  image.Image
	Format string
}

// Decode validates and decodes raw image bytes.
func Decode(data []byte) (*Frame, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	return &Frame{Data: data, Image: img, Format: format}, nil
}

// DecodeBase64 accepts plain base64 or a data URL ("data:image/jpeg;base64,...").
func DecodeBase64(s string) (*Frame, error) {
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[i+1:]
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}

	return Decode(data)
}

func (f *Frame) Bounds() image.Rectangle {
	return f.Image.Bounds()
}

// Crop cuts the bounding box out of the frame, clamped to the image, and
// returns it JPEG-encoded.
func (f *Frame) Crop(box models.BoundingBox) ([]byte, error) {
	rect := image.Rect(box[0], box[1], box[2], box[3]).Intersect(f.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("%w: %v", ErrEmptyCrop, box)
	}

	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), f.Image, rect.Min, draw.Src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: cropQuality}); err != nil {
		return nil, fmt.Errorf("encode crop: %w", err)
	}
	return buf.Bytes(), nil
}
