//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"fmt"
	"image"

	"wrist-triage/internal/domain/entity"
)

// GoCVDetector заглушка, если сборка без тега gocv.
type GoCVDetector struct{}

// NewGoCVDetector возвращает ошибку, если сборка без тега gocv.
func NewGoCVDetector(modelPath string, opts DetectorOptions) (*GoCVDetector, error) {
	_ = opts
	return nil, fmt.Errorf("%w: gocv build tag is not enabled (model %s)", ErrBackendUnavailable, modelPath)
}

// Detect возвращает ошибку, если сборка без тега gocv.
func (d *GoCVDetector) Detect(ctx context.Context, img image.Image, threshold float64) ([]entity.Finding, error) {
	_ = ctx
	_ = img
	_ = threshold
	return nil, fmt.Errorf("%w: gocv build tag is not enabled", ErrBackendUnavailable)
}

// Close ничего не делает
func (d *GoCVDetector) Close() error {
	return nil
}
