package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
)

const (
	defaultMaxBytes = 5 * 1024 * 1024
	maxDimension    = 1600
)

// ImageProcessor validates and normalizes uploaded images before they reach
// object storage.
type ImageProcessor struct {
	MaxBytes int64
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{MaxBytes: defaultMaxBytes}
}

// Validate accepts jpeg/png under the size cap.
func (p *ImageProcessor) Validate(data []byte) error {
	if int64(len(data)) > p.MaxBytes {
		return fmt.Errorf("image exceeds %dMB", p.MaxBytes/(1024*1024))
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("not an image: %w", err)
	}
	switch format {
	case "jpeg", "png":
		return nil
	default:
		return fmt.Errorf("image format %s not allowed (only jpeg/png)", format)
	}
}

// Normalize downscales images larger than maxDimension on either axis and
// re-encodes them as JPEG. Smaller images pass through untouched.
func (p *ImageProcessor) Normalize(data []byte) ([]byte, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("cannot decode image: %w", err)
	}
	if cfg.Width <= maxDimension && cfg.Height <= maxDimension {
		return data, format, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("cannot decode image: %w", err)
	}
	resized := imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, resized, &jpeg.Options{Quality: 90}); err != nil {
		return nil, "", fmt.Errorf("cannot encode resized image: %w", err)
	}
	return buf.Bytes(), "jpeg", nil
}
