//go:build !tflite
// +build !tflite

package vision

import (
	"context"
	"fmt"
	"image"

	"wrist-triage/internal/domain/entity"
)

// TFLiteDetector заглушка, если сборка без тега tflite.
type TFLiteDetector struct{}

// NewTFLiteDetector возвращает ошибку, если сборка без тега tflite.
func NewTFLiteDetector(modelPath string, opts DetectorOptions) (*TFLiteDetector, error) {
	_ = opts
	return nil, fmt.Errorf("%w: tflite build tag is not enabled (model %s)", ErrBackendUnavailable, modelPath)
}

// Detect возвращает ошибку, если сборка без тега tflite.
func (d *TFLiteDetector) Detect(ctx context.Context, img image.Image, threshold float64) ([]entity.Finding, error) {
	_ = ctx
	_ = img
	_ = threshold
	return nil, fmt.Errorf("%w: tflite build tag is not enabled", ErrBackendUnavailable)
}

// Close ничего не делает
func (d *TFLiteDetector) Close() error {
	return nil
}
